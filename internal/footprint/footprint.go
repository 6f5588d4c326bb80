// Package footprint maps dataset project extents to H3 cells and
// keeps a cell-to-dataset index so bbox-addressed change events can be
// matched to cached datasets.
package footprint

import (
	"errors"
	"fmt"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/claudiaareneee/viewer-backend/internal/core/model"
)

type Mapper struct{}

func NewMapper() *Mapper { return &Mapper{} }

// CellsForBBox polyfills a geographic bbox (EPSG:4326, degrees) to H3
// cells at the given resolution, sorted for determinism.
func (m *Mapper) CellsForBBox(bb model.GeoBBox, res int) ([]string, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	outer := h3.GeoLoop{
		{Lat: bb.Y1, Lng: bb.X1},
		{Lat: bb.Y1, Lng: bb.X2},
		{Lat: bb.Y2, Lng: bb.X2},
		{Lat: bb.Y2, Lng: bb.X1},
	}
	return polyfill(outer, res)
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}

func polyfill(outer h3.GeoLoop, res int) ([]string, error) {
	if len(outer) < 4 {
		return nil, errors.New("outer ring has < 4 vertices")
	}
	cells, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: outer}, res)
	if err != nil {
		return nil, fmt.Errorf("h3 polyfill: %w", err)
	}

	seen := make(map[string]struct{}, len(cells))
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		s := c.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}
