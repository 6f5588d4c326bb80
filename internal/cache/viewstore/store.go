// Package viewstore caches resolved view states per dataset.
package viewstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claudiaareneee/viewer-backend/internal/cache"
	"github.com/claudiaareneee/viewer-backend/internal/cache/keys"
	"github.com/claudiaareneee/viewer-backend/internal/core/model"
)

type ViewStore interface {
	Get(ctx context.Context, key string) (*model.ViewState, bool, error)
	Put(ctx context.Context, dataset, key string, view *model.ViewState, ttl time.Duration) error

	// Invalidate drops every cached view of the dataset and returns
	// how many entries were removed.
	Invalidate(ctx context.Context, dataset string) (int, error)
}

type store struct {
	c          cache.Interface
	defaultTTL time.Duration
}

func New(c cache.Interface, defaultTTL time.Duration) ViewStore {
	return &store{c: c, defaultTTL: defaultTTL}
}

func (s *store) Get(ctx context.Context, key string) (*model.ViewState, bool, error) {
	raw, err := s.c.MGet(ctx, []string{key})
	if err != nil {
		return nil, false, fmt.Errorf("viewstore mget: %w", err)
	}
	b, ok := raw[key]
	if !ok || len(b) == 0 {
		return nil, false, nil
	}

	var vs model.ViewState
	if err := json.Unmarshal(b, &vs); err != nil {
		return nil, false, fmt.Errorf("viewstore decode %q: %w", key, err)
	}
	return &vs, true, nil
}

func (s *store) Put(ctx context.Context, dataset, key string, view *model.ViewState, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("viewstore encode: %w", err)
	}
	if err := s.c.Set(ctx, key, payload, ttl); err != nil {
		return fmt.Errorf("viewstore set %q: %w", key, err)
	}

	return s.indexAdd(ctx, dataset, key)
}

func (s *store) Invalidate(ctx context.Context, dataset string) (int, error) {
	idxKey := keys.DatasetIndexKey(dataset)
	members, err := s.indexRead(ctx, idxKey)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, nil
	}

	if err := s.c.Del(ctx, append(members, idxKey)...); err != nil {
		return 0, fmt.Errorf("viewstore del: %w", err)
	}
	return len(members), nil
}

func (s *store) indexAdd(ctx context.Context, dataset, key string) error {
	idxKey := keys.DatasetIndexKey(dataset)
	members, err := s.indexRead(ctx, idxKey)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m == key {
			return nil
		}
	}
	members = append(members, key)

	payload, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("viewstore encode index: %w", err)
	}
	// the index outlives individual entries; invalidation removes it
	if err := s.c.Set(ctx, idxKey, payload, 0); err != nil {
		return fmt.Errorf("viewstore set index %q: %w", idxKey, err)
	}
	return nil
}

func (s *store) indexRead(ctx context.Context, idxKey string) ([]string, error) {
	raw, err := s.c.MGet(ctx, []string{idxKey})
	if err != nil {
		return nil, fmt.Errorf("viewstore mget index: %w", err)
	}
	b, ok := raw[idxKey]
	if !ok || len(b) == 0 {
		return nil, nil
	}
	var members []string
	if err := json.Unmarshal(b, &members); err != nil {
		return nil, fmt.Errorf("viewstore decode index %q: %w", idxKey, err)
	}
	return members, nil
}
