package memory

import (
	"context"
	"testing"
	"time"
)

func TestSetGetDel(t *testing.T) {
	s, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := s.Set(ctx, "a", []byte("va"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.MGet(ctx, []string{"a", "missing"})
	if err != nil {
		t.Fatalf("MGet: %v", err)
	}
	if len(got) != 1 || string(got["a"]) != "va" {
		t.Fatalf("got=%v", got)
	}

	if err := s.Del(ctx, "a"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	got, _ = s.MGet(ctx, []string{"a"})
	if len(got) != 0 {
		t.Fatalf("deleted key present: %v", got)
	}
}

func TestTTLExpiry(t *testing.T) {
	s, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	now := time.Now()
	s.now = func() time.Time { return now }

	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("v"), 10*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(11 * time.Second)
	got, _ := s.MGet(ctx, []string{"k"})
	if len(got) != 0 {
		t.Fatalf("expired key present: %v", got)
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	s, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	now := time.Now()
	s.now = func() time.Time { return now }

	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(24 * time.Hour)
	got, _ := s.MGet(ctx, []string{"k"})
	if len(got) != 1 {
		t.Fatal("zero-ttl key expired")
	}
}

func TestLRUEviction(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	_ = s.Set(ctx, "a", []byte("1"), 0)
	_ = s.Set(ctx, "b", []byte("2"), 0)
	_ = s.Set(ctx, "c", []byte("3"), 0)

	got, _ := s.MGet(ctx, []string{"a", "b", "c"})
	if len(got) != 2 {
		t.Fatalf("size=%d want 2 after eviction", len(got))
	}
	if _, ok := got["a"]; ok {
		t.Fatal("oldest entry survived eviction")
	}
}
