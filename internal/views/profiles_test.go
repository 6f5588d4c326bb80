package views

import "testing"

func TestProfileForUnknownIsZero(t *testing.T) {
	p := ProfileFor("never heard of it")
	if p.GroundBias != nil || len(p.HiddenCategoryCodes) != 0 || p.ShowAllCategories ||
		p.MapMaskCategoryCode != "" || len(p.MaskModelCodes) != 0 || p.CameraOverride != nil {
		t.Fatalf("unknown dataset profile not zero: %+v", p)
	}
}

func TestProfileTableRows(t *testing.T) {
	house := ProfileFor(datasetHouseBIM)
	if len(house.HiddenCategoryCodes) != 1 || house.HiddenCategoryCodes[0] != "Callouts" {
		t.Fatalf("house hidden=%v", house.HiddenCategoryCodes)
	}

	metro := ProfileFor(datasetMetrostation)
	if len(metro.HiddenCategoryCodes) != 5 {
		t.Fatalf("metro hidden=%v", metro.HiddenCategoryCodes)
	}
	if !metro.ShowAllCategories || !metro.SelectAllModels || metro.CameraOverride == nil {
		t.Fatalf("metro profile incomplete: %+v", metro)
	}

	metro2 := ProfileFor(datasetMetrostation2)
	if metro2.ShowAllCategories || metro2.CameraOverride != nil || metro2.GroundBias != nil {
		t.Fatalf("Metrostation2 inherits primary-only overrides: %+v", metro2)
	}
	if metro2.MapMaskCategoryCode != "S-SLAB-CONC" {
		t.Fatalf("Metrostation2 map mask=%q", metro2.MapMaskCategoryCode)
	}

	stadium := ProfileFor(datasetStadium)
	if len(stadium.DropModelCodeSets) != 4 {
		t.Fatalf("stadium drop sets=%v", stadium.DropModelCodeSets)
	}
	if stadium.MapTransparency == nil || *stadium.MapTransparency != 0.01 {
		t.Fatalf("stadium transparency=%v", stadium.MapTransparency)
	}
}

func TestProfileSignatureDistinguishesProfiles(t *testing.T) {
	seen := map[string]string{}
	for _, name := range []string{datasetHouseBIM, datasetStadium, datasetMetrostation, datasetMetrostation2, "unknown"} {
		sig := ProfileFor(name).Signature()
		if prior, ok := seen[sig]; ok {
			t.Fatalf("signature collision between %q and %q", prior, name)
		}
		seen[sig] = name
	}
}

func TestProfileSignatureStable(t *testing.T) {
	a := ProfileFor(datasetMetrostation).Signature()
	b := ProfileFor(datasetMetrostation).Signature()
	if a != b {
		t.Fatalf("signature not stable: %q vs %q", a, b)
	}
}
