package footprint

import (
	"context"
	"testing"

	"github.com/claudiaareneee/viewer-backend/internal/cache/memory"
	"github.com/claudiaareneee/viewer-backend/internal/core/model"
)

var stockholmish = model.GeoBBox{X1: 18.0, Y1: 59.3, X2: 18.1, Y2: 59.35, SRID: "EPSG:4326"}

func TestCellsForBBox(t *testing.T) {
	m := NewMapper()
	cells, err := m.CellsForBBox(stockholmish, 7)
	if err != nil {
		t.Fatalf("CellsForBBox: %v", err)
	}
	if len(cells) == 0 {
		t.Fatal("no cells for non-degenerate bbox")
	}
	for i := 1; i < len(cells); i++ {
		if cells[i-1] >= cells[i] {
			t.Fatalf("cells not sorted/unique at %d: %v", i, cells)
		}
	}
}

func TestCellsForBBoxInvalidRes(t *testing.T) {
	m := NewMapper()
	if _, err := m.CellsForBBox(stockholmish, 16); err == nil {
		t.Fatal("expected error for res 16")
	}
	if _, err := m.CellsForBBox(stockholmish, -1); err == nil {
		t.Fatal("expected error for res -1")
	}
}

func TestIndexRegisterAndLookup(t *testing.T) {
	c, err := memory.New(1024)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	x := NewIndex(c, NewMapper(), 6)
	ctx := context.Background()

	if err := x.Register(ctx, "Metrostation Sample", stockholmish); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := x.Datasets(ctx, stockholmish)
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}
	if len(got) != 1 || got[0] != "Metrostation Sample" {
		t.Fatalf("got=%v", got)
	}

	// disjoint bbox on another continent
	far := model.GeoBBox{X1: -74.1, Y1: 40.6, X2: -74.0, Y2: 40.7, SRID: "EPSG:4326"}
	got, err = x.Datasets(ctx, far)
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("disjoint bbox matched: %v", got)
	}
}

func TestIndexRegisterIsIdempotent(t *testing.T) {
	c, err := memory.New(1024)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	x := NewIndex(c, NewMapper(), 6)
	ctx := context.Background()

	_ = x.Register(ctx, "Stadium", stockholmish)
	_ = x.Register(ctx, "Stadium", stockholmish)

	got, err := x.Datasets(ctx, stockholmish)
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got=%v want single member", got)
	}
}
