package views

import (
	"context"
	"fmt"

	"github.com/claudiaareneee/viewer-backend/internal/core/model"
	"github.com/claudiaareneee/viewer-backend/internal/imodel"
)

// ApplyPresentationPolicy mutates a loaded view in place: base display
// flags, background map and sky for 3D views, the dataset profile's
// model-selection adjustments for spatial views, and the shown/hidden
// category rules. Query failures propagate unmodified.
func ApplyPresentationPolicy(ctx context.Context, ds imodel.Dataset, view *model.ViewState, opts Options) error {
	if opts.AspectRatio > 0 {
		view.AspectRatio = opts.AspectRatio
	}

	view.Style.ShadowsEnabled = false
	view.Style.GridEnabled = false
	view.Style.VisibleEdges = false

	prof := ProfileFor(ds.Name())

	if view.Is3D {
		if err := applyMapAndSky(ctx, ds, view, prof); err != nil {
			return err
		}
	}
	if view.IsSpatial() {
		if err := applyModelSelection(ctx, ds, view, prof); err != nil {
			return err
		}
	}
	return applyCategorySelection(ctx, ds, view, prof)
}

func applyMapAndSky(ctx context.Context, ds imodel.Dataset, view *model.ViewState, prof Profile) error {
	view.Style.Map.UseDepthBuffer = true

	if prof.GroundBias != nil {
		if bias := prof.GroundBias(ds.GeographicCRS()); bias != nil {
			view.Style.Map.GroundBias = bias
		}
	}

	view.Style.Sky = model.SkyBox{
		Enabled:     true,
		ZenithColor: skyZenithColor,
		NadirColor:  skyNadirColor,
	}

	if prof.MapMaskCategoryCode != "" {
		models, err := imodel.ModelIDs(ctx, ds)
		if err != nil {
			return fmt.Errorf("map mask models: %w", err)
		}
		subcats, err := imodel.SubCategoryIDs(ctx, ds, prof.MapMaskCategoryCode)
		if err != nil {
			return fmt.Errorf("map mask subcategories: %w", err)
		}
		view.Style.Map.Mask = &model.PlanarClipMask{
			Mode:          model.MaskIncludeSubCategories,
			Models:        models,
			SubCategories: subcats,
		}
	}
	return nil
}

func applyModelSelection(ctx context.Context, ds imodel.Dataset, view *model.ViewState, prof Profile) error {
	if len(prof.MaskModelCodes) > 0 {
		masked, err := imodel.ModelIDs(ctx, ds, prof.MaskModelCodes...)
		if err != nil {
			return fmt.Errorf("mask models: %w", err)
		}
		view.Style.Map.Mask = &model.PlanarClipMask{
			Mode:   model.MaskModels,
			Models: masked,
		}
		view.Style.Map.Transparency = prof.MapTransparency

		for _, set := range prof.DropModelCodeSets {
			ids, err := imodel.ModelIDs(ctx, ds, set...)
			if err != nil {
				return fmt.Errorf("drop models %v: %w", set, err)
			}
			view.Models.DropAll(ids)
		}
	}

	if prof.SelectAllModels {
		all, err := imodel.ModelIDs(ctx, ds)
		if err != nil {
			return fmt.Errorf("select all models: %w", err)
		}
		view.Models.AddAll(all)
	}

	if len(prof.DropModelCodes) > 0 {
		ids, err := imodel.ModelIDs(ctx, ds, prof.DropModelCodes...)
		if err != nil {
			return fmt.Errorf("drop models %v: %w", prof.DropModelCodes, err)
		}
		view.Models.DropAll(ids)
	}

	if prof.CameraOverride != nil {
		view.Camera = *prof.CameraOverride
	}
	return nil
}

func applyCategorySelection(ctx context.Context, ds imodel.Dataset, view *model.ViewState, prof Profile) error {
	if prof.ShowAllCategories {
		shown, err := imodel.CategoryIDs(ctx, ds)
		if err != nil {
			return fmt.Errorf("shown categories: %w", err)
		}
		view.Categories.Add(shown...)
	}

	if len(prof.HiddenCategoryCodes) > 0 {
		hidden, err := imodel.CategoryIDs(ctx, ds, prof.HiddenCategoryCodes...)
		if err != nil {
			return fmt.Errorf("hidden categories: %w", err)
		}
		view.Categories.Drop(hidden...)
	}
	return nil
}
