package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/claudiaareneee/viewer-backend/internal/cache"
	"github.com/claudiaareneee/viewer-backend/internal/cache/memory"
	"github.com/claudiaareneee/viewer-backend/internal/cache/redisstore"
	"github.com/claudiaareneee/viewer-backend/internal/cache/viewstore"
	"github.com/claudiaareneee/viewer-backend/internal/core/config"
	"github.com/claudiaareneee/viewer-backend/internal/core/health"
	"github.com/claudiaareneee/viewer-backend/internal/core/observability"
	"github.com/claudiaareneee/viewer-backend/internal/core/server"
	"github.com/claudiaareneee/viewer-backend/internal/footprint"
	"github.com/claudiaareneee/viewer-backend/internal/imodel"
	"github.com/claudiaareneee/viewer-backend/internal/invalidation/kafka"
	"github.com/claudiaareneee/viewer-backend/internal/logger"
	"github.com/claudiaareneee/viewer-backend/internal/viewer"
	"github.com/claudiaareneee/viewer-backend/internal/views"
	"github.com/claudiaareneee/viewer-backend/internal/widgets"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "viewer-server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting viewer backend",
		"addr", cfg.Addr,
		"version", Version,
		"query_service", cfg.QueryServiceURL,
		"cache_driver", cfg.CacheDriver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exec, err := imodel.NewExecutor(appLog, &http.Client{Timeout: 30 * time.Second}, cfg.QueryServiceURL)
	if err != nil {
		appLog.Error("failed to initialize query executor", "err", err)
		return 1
	}
	opener := imodel.NewOpener(exec)

	var store cache.Interface
	switch cfg.CacheDriver {
	case "redis":
		rc, err := redisstore.New(ctx, cfg.RedisAddr,
			redisstore.WithDialTimeout(cfg.CacheOpTimeout),
			redisstore.WithReadTimeout(cfg.CacheOpTimeout),
			redisstore.WithWriteTimeout(cfg.CacheOpTimeout),
		)
		if err != nil {
			appLog.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = rc.Close() }()
		store = rc
	default:
		mc, err := memory.New(cfg.MemoryCacheSize)
		if err != nil {
			appLog.Error("memory cache init failed", "err", err)
			return 1
		}
		store = mc
	}

	viewsCache := viewstore.New(store, cfg.CacheTTL)
	fp := footprint.NewIndex(store, footprint.NewMapper(), cfg.FootprintRes)
	resolver := views.NewResolver(appLog)
	svc := viewer.New(appLog, opener, resolver, viewsCache, fp, cfg.CacheTTL)

	widgets.Register(widgets.InstructionsProvider{})

	var ready health.ReadinessReporter
	runner := kafka.New(kafka.FromApp(cfg.Invalidation), viewsCache, kafka.Options{
		Logger:   appLog,
		Register: prometheus.DefaultRegisterer,
		Locator:  fp,
	})
	if err := runner.Start(ctx); err != nil {
		appLog.Error("invalidation runner start failed", "err", err)
		return 1
	}
	defer runner.Stop()
	if cfg.Invalidation.Enabled {
		ready = runner
	}

	if err := server.Run(ctx, cfg, appLog, svc, ready); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
