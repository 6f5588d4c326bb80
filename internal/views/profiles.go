package views

import (
	"fmt"
	"strings"

	"github.com/claudiaareneee/viewer-backend/internal/core/model"
)

// Names of the bundled sample datasets. The overrides below are
// closed-world quirks of that sample data, collected in one table so
// the resolution algorithm itself stays generic.
const (
	datasetHouseBIM      = "house bim upload"
	datasetStadium       = "Stadium"
	datasetMetrostation  = "Metrostation Sample"
	datasetMetrostation2 = "Metrostation2"
)

const (
	skyZenithColor = "#DEF2FF"
	skyNadirColor  = "#F0ECE8"
)

// Profile describes the presentation overrides for one dataset. The
// zero value means "no special casing".
type Profile struct {
	// GroundBias returns the background-map vertical offset, or nil
	// when the dataset has no override.
	GroundBias func(crs *model.GeographicCRS) *float64

	HiddenCategoryCodes []string
	ShowAllCategories   bool

	// MapMaskCategoryCode masks the background map with the
	// subcategories of this category (3D views only).
	MapMaskCategoryCode string

	// Spatial-view adjustments.
	MaskModelCodes    []string
	MapTransparency   *float64
	DropModelCodeSets [][]string
	SelectAllModels   bool
	DropModelCodes    []string
	CameraOverride    *model.Camera
}

var metroHiddenCategories = []string{
	"A-FLOR-OTLN",
	"A-Reserved Retail Area",
	"G-ANNO-SYMB",
	"A-SITE",
	"S-BEAM-CONC",
}

// Opaque calibration data for the metro-station sample; preserved
// verbatim, not derivable.
var metroCamera = model.Camera{
	Origin:  model.Vec3{-130.24656, -110.70150, -22.95523},
	Extents: model.Vec3{210.48543, 132.20385, 71.61587},
	Rotation: model.Matrix3{
		{0.70710678, -0.70710678, 0.0},
		{0.40824829, 0.40824829, -0.81649658},
		{0.57735027, 0.57735027, 0.57735027},
	},
}

func metroGroundBias(crs *model.GeographicCRS) *float64 {
	if crs != nil && crs.Vertical == "GEOID" {
		return f64(-31.39)
	}
	return f64(3)
}

var profiles = map[string]Profile{
	datasetHouseBIM: {
		HiddenCategoryCodes: []string{"Callouts"},
	},
	datasetStadium: {
		MaskModelCodes: []string{"Site-Landscape"},
		// transparency below 0.01 lets the planar clip mask punch
		// through the background map
		MapTransparency: f64(0.01),
		DropModelCodeSets: [][]string{
			{"SS-Structural Steel"},
			{"Site-Landscape Detail"},
			{"RD-Road Markings"},
			{"RD-Road Centerlines"},
		},
	},
	datasetMetrostation: {
		GroundBias:          metroGroundBias,
		HiddenCategoryCodes: metroHiddenCategories,
		ShowAllCategories:   true,
		MapMaskCategoryCode: "S-SLAB-CONC",
		SelectAllModels:     true,
		DropModelCodes:      []string{"GT-Geotechnical Investigation"},
		CameraOverride:      &metroCamera,
	},
	datasetMetrostation2: {
		HiddenCategoryCodes: metroHiddenCategories,
		MapMaskCategoryCode: "S-SLAB-CONC",
	},
}

// ProfileFor looks up the presentation profile for a dataset name.
// Unknown datasets get the zero profile.
func ProfileFor(name string) Profile {
	return profiles[name]
}

// Signature is a stable fingerprint of the profile. Cached view keys
// embed it so edits to the table roll the keys.
func (p Profile) Signature() string {
	var b strings.Builder
	if p.GroundBias != nil {
		b.WriteString("gb;")
	}
	fmt.Fprintf(&b, "hide=%s;", strings.Join(p.HiddenCategoryCodes, ","))
	if p.ShowAllCategories {
		b.WriteString("showall;")
	}
	fmt.Fprintf(&b, "mapmask=%s;", p.MapMaskCategoryCode)
	fmt.Fprintf(&b, "mask=%s;", strings.Join(p.MaskModelCodes, ","))
	if p.MapTransparency != nil {
		fmt.Fprintf(&b, "mt=%g;", *p.MapTransparency)
	}
	for _, set := range p.DropModelCodeSets {
		fmt.Fprintf(&b, "drop=%s;", strings.Join(set, ","))
	}
	if p.SelectAllModels {
		b.WriteString("allmodels;")
	}
	fmt.Fprintf(&b, "dropm=%s;", strings.Join(p.DropModelCodes, ","))
	if p.CameraOverride != nil {
		fmt.Fprintf(&b, "cam=%v;", *p.CameraOverride)
	}
	return b.String()
}

func f64(v float64) *float64 { return &v }
