// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type InvalidationCfg struct {
	Enabled bool
	Driver  string
	Topic   string
	Brokers string
	GroupID string
}

type Config struct {
	Addr            string
	LogLevel        string
	QueryServiceURL string

	CacheDriver     string // "memory" or "redis"
	RedisAddr       string
	CacheTTL        time.Duration
	CacheOpTimeout  time.Duration
	MemoryCacheSize int

	FootprintRes int

	Invalidation InvalidationCfg
}

func FromEnv() Config {
	res := getint("FOOTPRINT_RES", 7)
	if res < 0 {
		res = 0
	}
	if res > 15 {
		res = 15
	}

	return Config{
		Addr:            getenv("ADDR", ":8091"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		QueryServiceURL: getenv("QUERY_SERVICE_URL", "http://localhost:3001"),

		CacheDriver:     strings.ToLower(getenv("CACHE_DRIVER", "memory")),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:        getduration("CACHE_TTL", 10*time.Minute),
		CacheOpTimeout:  getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		MemoryCacheSize: getint("MEMORY_CACHE_SIZE", 256),

		FootprintRes: res,

		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Driver:  getenv("INVALIDATION_DRIVER", "none"),
			Topic:   getenv("KAFKA_TOPIC", "imodel-changes"),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			GroupID: getenv("KAFKA_GROUP_ID", "viewer-invalidator"),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
