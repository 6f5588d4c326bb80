// Package memory is an in-process LRU implementation of the cache
// interface, for single-node deployments and tests.
package memory

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/claudiaareneee/viewer-backend/internal/cache"
)

type entry struct {
	val []byte
	exp time.Time
}

type Store struct {
	lru *lru.Cache[string, entry]
	now func() time.Time
}

var _ cache.Interface = (*Store)(nil)

func New(size int) (*Store, error) {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Store{lru: c, now: time.Now}, nil
}

func (s *Store) MGet(_ context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	now := s.now()
	for _, k := range keys {
		e, ok := s.lru.Get(k)
		if !ok {
			continue
		}
		if !e.exp.IsZero() && now.After(e.exp) {
			s.lru.Remove(k)
			continue
		}
		out[k] = e.val
	}
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.lru.Add(key, entry{val: val, exp: exp})
	return nil
}

func (s *Store) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.lru.Remove(k)
	}
	return nil
}
