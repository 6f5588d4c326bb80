package footprint

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/claudiaareneee/viewer-backend/internal/cache"
	"github.com/claudiaareneee/viewer-backend/internal/cache/keys"
	"github.com/claudiaareneee/viewer-backend/internal/core/model"
)

// Index records which datasets cover which cells. Registration happens
// when a dataset's view is resolved and cached; lookups happen when a
// change event arrives with a bbox instead of a dataset id.
type Index struct {
	c      cache.Interface
	mapper *Mapper
	res    int
}

func NewIndex(c cache.Interface, mapper *Mapper, res int) *Index {
	return &Index{c: c, mapper: mapper, res: res}
}

func (x *Index) Register(ctx context.Context, dataset string, bb model.GeoBBox) error {
	cells, err := x.mapper.CellsForBBox(bb, x.res)
	if err != nil {
		return fmt.Errorf("footprint cells: %w", err)
	}
	for _, cell := range cells {
		if err := x.addMember(ctx, cell, dataset); err != nil {
			return err
		}
	}
	return nil
}

// Datasets returns the datasets whose registered footprints intersect
// the bbox, sorted and deduplicated.
func (x *Index) Datasets(ctx context.Context, bb model.GeoBBox) ([]string, error) {
	cells, err := x.mapper.CellsForBBox(bb, x.res)
	if err != nil {
		return nil, fmt.Errorf("footprint cells: %w", err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	cellKeys := make([]string, len(cells))
	for i, cell := range cells {
		cellKeys[i] = keys.FootprintKey(cell, x.res)
	}
	raw, err := x.c.MGet(ctx, cellKeys)
	if err != nil {
		return nil, fmt.Errorf("footprint mget: %w", err)
	}

	seen := map[string]struct{}{}
	var out []string
	for _, b := range raw {
		var members []string
		if err := json.Unmarshal(b, &members); err != nil {
			return nil, fmt.Errorf("footprint decode: %w", err)
		}
		for _, m := range members {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (x *Index) addMember(ctx context.Context, cell, dataset string) error {
	key := keys.FootprintKey(cell, x.res)

	raw, err := x.c.MGet(ctx, []string{key})
	if err != nil {
		return fmt.Errorf("footprint mget: %w", err)
	}
	var members []string
	if b, ok := raw[key]; ok && len(b) > 0 {
		if err := json.Unmarshal(b, &members); err != nil {
			return fmt.Errorf("footprint decode %q: %w", key, err)
		}
	}
	for _, m := range members {
		if m == dataset {
			return nil
		}
	}
	members = append(members, dataset)

	payload, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("footprint encode: %w", err)
	}
	if err := x.c.Set(ctx, key, payload, 0); err != nil {
		return fmt.Errorf("footprint set %q: %w", key, err)
	}
	return nil
}
