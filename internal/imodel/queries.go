package imodel

import (
	"context"
	"fmt"
	"strings"

	"github.com/claudiaareneee/viewer-backend/internal/core/model"
)

// Query text below is a fixed data contract with the external store;
// table and column names are opaque strings, not derived.
const (
	ecsqlDefaultViewID = "SELECT CAST(Val AS TEXT) AS val FROM be_Prop WHERE Namespace='dgn_View' AND Name='DefaultView'"

	ecsqlSpatialViews = "SELECT ECInstanceId AS id FROM bis.SpatialViewDefinition"
	ecsqlDrawingViews = "SELECT ECInstanceId AS id FROM bis.DrawingViewDefinition"

	ecsqlCategories       = "SELECT ECInstanceId AS id FROM bis.SpatialCategory"
	ecsqlCategoriesByCode = "SELECT ECInstanceId AS id FROM bis.SpatialCategory WHERE CodeValue IN (%s)"

	ecsqlModels       = "SELECT p.ECInstanceId AS id FROM bis.PhysicalPartition p JOIN bis.Model m ON m.ModeledElement.Id = p.ECInstanceId"
	ecsqlModelsByCode = ecsqlModels + " WHERE p.CodeValue IN (%s)"

	ecsqlSubCategories      = "SELECT s.ECInstanceId AS id FROM bis.SubCategory s"
	ecsqlSubCategoriesByCat = ecsqlSubCategories + " JOIN bis.SpatialCategory c ON s.Parent.Id = c.ECInstanceId WHERE c.CodeValue IN (%s)"
)

// ViewDefinitionIDs lists stored view definitions of the given class
// in the order the dataset reports them. Source order is authoritative.
func ViewDefinitionIDs(ctx context.Context, ds Dataset, class model.ViewClass) ([]model.ID, error) {
	var q string
	switch class {
	case model.ViewClassSpatial:
		q = ecsqlSpatialViews
	case model.ViewClassDrawing:
		q = ecsqlDrawingViews
	default:
		return nil, fmt.Errorf("unknown view class %q", class)
	}
	rows, err := ds.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s view definitions: %w", class, err)
	}
	return rowIDs(rows), nil
}

// CategoryIDs returns the category identifiers whose code exactly
// matches one of the given codes, or every category when no codes are
// given.
func CategoryIDs(ctx context.Context, ds Dataset, codes ...string) ([]model.ID, error) {
	q, bindings := ecsqlCategories, []any(nil)
	if len(codes) > 0 {
		q, bindings = bindQuery(ecsqlCategoriesByCode, codes)
	}
	rows, err := ds.Query(ctx, q, bindings...)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	return rowIDs(rows), nil
}

// ModelIDs returns the physical-model partition identifiers whose code
// matches one of the given names, or all of them when no names are
// given. A closed dataset yields an empty set.
func ModelIDs(ctx context.Context, ds Dataset, names ...string) (model.IDSet, error) {
	q, bindings := ecsqlModels, []any(nil)
	if len(names) > 0 {
		q, bindings = bindQuery(ecsqlModelsByCode, names)
	}
	rows, err := ds.Query(ctx, q, bindings...)
	if err != nil {
		return nil, fmt.Errorf("models: %w", err)
	}
	return model.NewIDSet(rowIDs(rows)...), nil
}

// SubCategoryIDs returns subcategory identifiers, optionally filtered
// by parent category code. A closed dataset yields an empty set.
func SubCategoryIDs(ctx context.Context, ds Dataset, categoryCodes ...string) (model.IDSet, error) {
	q, bindings := ecsqlSubCategories, []any(nil)
	if len(categoryCodes) > 0 {
		q, bindings = bindQuery(ecsqlSubCategoriesByCat, categoryCodes)
	}
	rows, err := ds.Query(ctx, q, bindings...)
	if err != nil {
		return nil, fmt.Errorf("subcategories: %w", err)
	}
	return model.NewIDSet(rowIDs(rows)...), nil
}

func bindQuery(format string, values []string) (string, []any) {
	bindings := make([]any, len(values))
	for i, v := range values {
		bindings[i] = v
	}
	return fmt.Sprintf(format, placeholders(len(values))), bindings
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func rowIDs(rows []Row) []model.ID {
	out := make([]model.ID, 0, len(rows))
	for _, r := range rows {
		if id := model.ID(r["id"]); id.Valid() {
			out = append(out, id)
		}
	}
	return out
}
