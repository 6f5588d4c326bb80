// Package viewer ties dataset access, view resolution and the view
// cache together behind one entry point.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claudiaareneee/viewer-backend/internal/cache/keys"
	"github.com/claudiaareneee/viewer-backend/internal/cache/viewstore"
	"github.com/claudiaareneee/viewer-backend/internal/core/model"
	"github.com/claudiaareneee/viewer-backend/internal/footprint"
	"github.com/claudiaareneee/viewer-backend/internal/imodel"
	"github.com/claudiaareneee/viewer-backend/internal/views"
)

// Resolver produces a display-ready default view for an open dataset.
type Resolver interface {
	ResolveDefaultView(ctx context.Context, ds imodel.Dataset, opts views.Options) (*model.ViewState, error)
}

type Service struct {
	log      *slog.Logger
	opener   imodel.Opener
	resolver Resolver
	store    viewstore.ViewStore
	fp       *footprint.Index
	ttl      time.Duration
}

func New(log *slog.Logger, opener imodel.Opener, resolver Resolver, store viewstore.ViewStore, fp *footprint.Index, ttl time.Duration) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		log:      log,
		opener:   opener,
		resolver: resolver,
		store:    store,
		fp:       fp,
		ttl:      ttl,
	}
}

// DefaultView returns the resolved default view for the requested
// dataset, serving from the cache when a fresh entry exists.
func (s *Service) DefaultView(ctx context.Context, req model.ResolveRequest) (*model.ViewState, error) {
	key := keys.ViewKey(req.Dataset, req.AspectRatio, views.ProfileFor(req.Dataset).Signature())

	if s.store != nil {
		vs, ok, err := s.store.Get(ctx, key)
		if err != nil {
			s.log.Warn("view cache read failed", "dataset", req.Dataset, "err", err)
		} else if ok {
			s.log.Debug("view cache hit", "dataset", req.Dataset, "key", key)
			return vs, nil
		}
	}

	ds, err := s.opener.Open(ctx, req.Dataset)
	if err != nil {
		return nil, fmt.Errorf("open dataset %q: %w", req.Dataset, err)
	}

	vs, err := s.resolver.ResolveDefaultView(ctx, ds, views.Options{AspectRatio: req.AspectRatio})
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Put(ctx, req.Dataset, key, vs, s.ttl); err != nil {
			s.log.Warn("view cache write failed", "dataset", req.Dataset, "err", err)
		}
	}
	if s.fp != nil {
		if bb := ds.ProjectExtents(); bb != nil {
			if err := s.fp.Register(ctx, req.Dataset, *bb); err != nil {
				s.log.Warn("footprint register failed", "dataset", req.Dataset, "err", err)
			}
		}
	}
	return vs, nil
}
