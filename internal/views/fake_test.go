package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/claudiaareneee/viewer-backend/internal/core/model"
	"github.com/claudiaareneee/viewer-backend/internal/imodel"
)

// codeRow pairs an element id with its code value.
type codeRow struct {
	id   model.ID
	code string
}

// fakeDataset answers the resolver's queries from in-memory tables,
// matching on fragments of the opaque query text the way the dataset
// seam tests do elsewhere in this repo.
type fakeDataset struct {
	name   string
	closed bool
	crs    *model.GeographicCRS

	defaultID    model.ID
	spatialViews []model.ID
	drawingViews []model.ID
	views        map[model.ID]*model.ViewState

	models     []codeRow
	categories []codeRow
	// subcategory id -> parent category code
	subcategories []codeRow

	queryLog []string
}

func (f *fakeDataset) Name() string                        { return f.name }
func (f *fakeDataset) IsOpen() bool                        { return !f.closed }
func (f *fakeDataset) GeographicCRS() *model.GeographicCRS { return f.crs }
func (f *fakeDataset) ProjectExtents() *model.GeoBBox      { return nil }

func (f *fakeDataset) DefaultViewID(context.Context) (model.ID, error) {
	if f.closed {
		return "", nil
	}
	return f.defaultID, nil
}

func (f *fakeDataset) LoadView(_ context.Context, id model.ID) (*model.ViewState, error) {
	v, ok := f.views[id]
	if !ok {
		return nil, fmt.Errorf("no view %s", id)
	}
	cp := *v
	cp.Categories = model.NewIDSet(v.Categories.IDs()...)
	cp.Models = model.NewIDSet(v.Models.IDs()...)
	return &cp, nil
}

func (f *fakeDataset) Query(_ context.Context, ecsql string, bindings ...any) ([]imodel.Row, error) {
	f.queryLog = append(f.queryLog, ecsql)
	if f.closed {
		return nil, nil
	}

	switch {
	case strings.Contains(ecsql, "SpatialViewDefinition"):
		return idRows(f.spatialViews), nil
	case strings.Contains(ecsql, "DrawingViewDefinition"):
		return idRows(f.drawingViews), nil
	case strings.Contains(ecsql, "PhysicalPartition"):
		return filterRows(f.models, bindings), nil
	case strings.Contains(ecsql, "SubCategory"):
		return filterRows(f.subcategories, bindings), nil
	case strings.Contains(ecsql, "SpatialCategory"):
		return filterRows(f.categories, bindings), nil
	}
	return nil, fmt.Errorf("fake dataset: unrecognized query %q", ecsql)
}

func idRows(ids []model.ID) []imodel.Row {
	out := make([]imodel.Row, len(ids))
	for i, id := range ids {
		out[i] = imodel.Row{"id": string(id)}
	}
	return out
}

func filterRows(rows []codeRow, bindings []any) []imodel.Row {
	var out []imodel.Row
	for _, r := range rows {
		if len(bindings) > 0 && !matches(r.code, bindings) {
			continue
		}
		out = append(out, imodel.Row{"id": string(r.id)})
	}
	return out
}

func matches(code string, bindings []any) bool {
	for _, b := range bindings {
		if s, ok := b.(string); ok && s == code {
			return true
		}
	}
	return false
}

// spatialView returns a minimal loaded spatial 3D view.
func spatialView(id model.ID) *model.ViewState {
	return &model.ViewState{
		ID:    id,
		Class: model.ViewClassSpatial,
		Is3D:  true,
		Style: model.DisplayStyle{
			ShadowsEnabled: true,
			GridEnabled:    true,
			VisibleEdges:   true,
		},
		Categories: model.IDSet{},
		Models:     model.IDSet{},
	}
}

func drawingView(id model.ID) *model.ViewState {
	return &model.ViewState{
		ID:         id,
		Class:      model.ViewClassDrawing,
		Categories: model.IDSet{},
		Models:     model.IDSet{},
	}
}
