// Package views resolves the default view for an opened dataset and
// applies the per-dataset presentation policy.
package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claudiaareneee/viewer-backend/internal/core/model"
	"github.com/claudiaareneee/viewer-backend/internal/core/observability"
	"github.com/claudiaareneee/viewer-backend/internal/imodel"
)

// ErrNoViewDefinition is returned when a dataset has no default,
// spatial, or drawing view definition. Fatal to the caller; never
// retried.
var ErrNoViewDefinition = errors.New("dataset has no default, spatial, or drawing view definition")

type Options struct {
	// AspectRatio of the display container; 0 means unknown and no
	// adjustment is made.
	AspectRatio float64
}

type Resolver struct {
	log *slog.Logger
}

func NewResolver(log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{log: log}
}

// ResolveDefaultView picks a view definition for the dataset, loads
// it, and applies the presentation policy to the loaded state before
// returning it. The returned view is owned by the caller.
func (r *Resolver) ResolveDefaultView(ctx context.Context, ds imodel.Dataset, opts Options) (*model.ViewState, error) {
	start := time.Now()

	id, step, err := defaultViewID(ctx, ds)
	if err != nil {
		observability.ObserveResolve(step, err, time.Since(start).Seconds())
		return nil, err
	}
	r.log.Debug("view definition selected",
		"dataset", ds.Name(), "view", string(id), "step", step)

	view, err := ds.LoadView(ctx, id)
	if err != nil {
		observability.ObserveResolve(step, err, time.Since(start).Seconds())
		return nil, fmt.Errorf("load view %s: %w", id, err)
	}

	if err := ApplyPresentationPolicy(ctx, ds, view, opts); err != nil {
		observability.ObserveResolve(step, err, time.Since(start).Seconds())
		return nil, fmt.Errorf("apply presentation policy: %w", err)
	}

	observability.ObserveResolve(step, nil, time.Since(start).Seconds())
	return view, nil
}

// defaultViewID is the three-step fallback: the stored default view
// id, then the first spatial definition, then the first drawing
// definition, both in the order the dataset reports them.
func defaultViewID(ctx context.Context, ds imodel.Dataset) (model.ID, string, error) {
	id, err := ds.DefaultViewID(ctx)
	if err != nil {
		return "", "default", err
	}
	if id.Valid() {
		return id, "default", nil
	}

	for _, class := range []model.ViewClass{model.ViewClassSpatial, model.ViewClassDrawing} {
		ids, err := imodel.ViewDefinitionIDs(ctx, ds, class)
		if err != nil {
			return "", string(class), err
		}
		if len(ids) > 0 {
			return ids[0], string(class), nil
		}
	}
	return "", "none", ErrNoViewDefinition
}
