package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.Addr != ":8091" {
		t.Fatalf("Addr=%q", cfg.Addr)
	}
	if cfg.CacheDriver != "memory" {
		t.Fatalf("CacheDriver=%q", cfg.CacheDriver)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Fatalf("CacheTTL=%v", cfg.CacheTTL)
	}
	if cfg.Invalidation.Enabled {
		t.Fatal("invalidation enabled by default")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("CACHE_DRIVER", "Redis")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("FOOTPRINT_RES", "99")
	t.Setenv("INVALIDATION_ENABLED", "true")

	cfg := FromEnv()
	if cfg.Addr != ":9999" {
		t.Fatalf("Addr=%q", cfg.Addr)
	}
	if cfg.CacheDriver != "redis" {
		t.Fatalf("CacheDriver=%q", cfg.CacheDriver)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("CacheTTL=%v", cfg.CacheTTL)
	}
	if cfg.FootprintRes != 15 {
		t.Fatalf("FootprintRes=%d want clamp to 15", cfg.FootprintRes)
	}
	if !cfg.Invalidation.Enabled {
		t.Fatal("invalidation not enabled")
	}
}

func TestFromEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("MEMORY_CACHE_SIZE", "abc")

	cfg := FromEnv()
	if cfg.CacheTTL != 10*time.Minute {
		t.Fatalf("CacheTTL=%v", cfg.CacheTTL)
	}
	if cfg.MemoryCacheSize != 256 {
		t.Fatalf("MemoryCacheSize=%d", cfg.MemoryCacheSize)
	}
}
