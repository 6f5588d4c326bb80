package viewstore

import (
	"context"
	"testing"
	"time"

	"github.com/claudiaareneee/viewer-backend/internal/cache/keys"
	"github.com/claudiaareneee/viewer-backend/internal/cache/memory"
	"github.com/claudiaareneee/viewer-backend/internal/core/model"
)

func newStore(t *testing.T) ViewStore {
	t.Helper()
	c, err := memory.New(32)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	return New(c, time.Minute)
}

func sample(id model.ID) *model.ViewState {
	return &model.ViewState{
		ID:         id,
		Class:      model.ViewClassSpatial,
		Is3D:       true,
		Categories: model.NewIDSet("0x1"),
		Models:     model.NewIDSet("0x2"),
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	key := keys.ViewKey("Stadium", 1.5, "sig")
	if err := s.Put(ctx, "Stadium", key, sample("0x9"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.ID != "0x9" || !got.Categories.Has("0x1") || !got.Models.Has("0x2") {
		t.Fatalf("got=%+v", got)
	}
}

func TestGetMiss(t *testing.T) {
	s := newStore(t)
	_, ok, err := s.Get(context.Background(), "view:none")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("miss reported as hit")
	}
}

func TestInvalidateDropsAllDatasetEntries(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	k1 := keys.ViewKey("Stadium", 1.5, "sig")
	k2 := keys.ViewKey("Stadium", 0, "sig")
	other := keys.ViewKey("house bim upload", 0, "sig")

	_ = s.Put(ctx, "Stadium", k1, sample("0x1"), 0)
	_ = s.Put(ctx, "Stadium", k2, sample("0x2"), 0)
	_ = s.Put(ctx, "house bim upload", other, sample("0x3"), 0)

	n, err := s.Invalidate(ctx, "Stadium")
	if err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if n != 2 {
		t.Fatalf("n=%d want 2", n)
	}

	if _, ok, _ := s.Get(ctx, k1); ok {
		t.Fatal("k1 survived invalidation")
	}
	if _, ok, _ := s.Get(ctx, k2); ok {
		t.Fatal("k2 survived invalidation")
	}
	if _, ok, _ := s.Get(ctx, other); !ok {
		t.Fatal("unrelated dataset invalidated")
	}
}

func TestInvalidateUnknownDatasetIsNoOp(t *testing.T) {
	s := newStore(t)
	n, err := s.Invalidate(context.Background(), "never cached")
	if err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if n != 0 {
		t.Fatalf("n=%d want 0", n)
	}
}

func TestPutDeduplicatesIndexMembers(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	key := keys.ViewKey("Stadium", 1.5, "sig")
	_ = s.Put(ctx, "Stadium", key, sample("0x1"), 0)
	_ = s.Put(ctx, "Stadium", key, sample("0x1"), 0)

	n, err := s.Invalidate(ctx, "Stadium")
	if err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if n != 1 {
		t.Fatalf("n=%d want 1", n)
	}
}
