package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohammed-shakir/wcs-describe/internal/cache/doccache"
	"github.com/mohammed-shakir/wcs-describe/internal/cache/redisstore"
	"github.com/mohammed-shakir/wcs-describe/internal/catalog"
	"github.com/mohammed-shakir/wcs-describe/internal/core/config"
	"github.com/mohammed-shakir/wcs-describe/internal/core/health"
	"github.com/mohammed-shakir/wcs-describe/internal/core/observability"
	"github.com/mohammed-shakir/wcs-describe/internal/core/server"
	"github.com/mohammed-shakir/wcs-describe/internal/crs"
	"github.com/mohammed-shakir/wcs-describe/internal/describe"
	"github.com/mohammed-shakir/wcs-describe/internal/invalidation/kafkaconsumer"
	"github.com/mohammed-shakir/wcs-describe/internal/logger"
	"github.com/mohammed-shakir/wcs-describe/internal/metrics"
	"github.com/mohammed-shakir/wcs-describe/internal/providers/h3meta"
	"github.com/mohammed-shakir/wcs-describe/internal/wcs"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "wcs-describe",
		Component: "describe-server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := metrics.Init(metrics.Config{
		Enabled: cfg.Metrics.Enabled,
		Addr:    cfg.Metrics.Addr,
		Path:    cfg.Metrics.Path,
		Build: metrics.BuildInfo{
			Version:   os.Getenv("BUILD_VERSION"),
			Revision:  os.Getenv("BUILD_REVISION"),
			Branch:    os.Getenv("BUILD_BRANCH"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})
	observability.Init(p.Registerer(), cfg.Metrics.Enabled)
	observability.ExposeBuildInfo(Version)
	if cfg.Metrics.Enabled && cfg.Metrics.Addr != "" && cfg.Metrics.Addr != cfg.Addr {
		go func() {
			if err := p.Serve(ctx, appLog); err != nil {
				appLog.Error("metrics server exited", "err", err)
			}
		}()
	}

	appLog.Info("starting describe server",
		"addr", cfg.Addr,
		"version", Version,
		"catalog", cfg.CatalogPath,
		"cache", cfg.Cache.Enabled,
		"invalidation", cfg.Invalidation.Enabled)

	reg, err := crs.NewRegistry(cfg.CRSCacheSize)
	if err != nil {
		appLog.Error("crs registry", "err", err)
		return 1
	}
	cat, err := catalog.Open(cfg.CatalogPath, reg, appLog)
	if err != nil {
		appLog.Error("failed to load catalog", "err", err)
		return 1
	}
	cat.WatchSIGHUP(ctx)

	providers := wcs.NewProviders()
	if cfg.H3.Enabled {
		hp, err := h3meta.New(cfg.H3.Res, cfg.H3.MaxCells)
		if err != nil {
			appLog.Error("h3 metadata provider", "err", err)
			return 1
		}
		providers.Add(hp)
	}

	desc := wcs.NewDescriber(cat,
		wcs.WithProviders(providers),
		wcs.WithSchemaBaseURL(cfg.SchemaBaseURL),
		wcs.WithLogger(appLog))

	checks := []health.Check{{Name: "catalog", Fn: func(context.Context) error {
		if cat.Len() == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	}}}

	var store doccache.Store
	if cfg.Cache.Enabled {
		switch cfg.Cache.Driver {
		case config.CacheDriverMemory:
			store = doccache.NewMemory(cfg.Cache.MemorySize, cfg.Cache.TTL)
		default:
			rc, err := redisstore.New(ctx, cfg.Cache.RedisAddr,
				redisstore.WithPoolSize(cfg.Cache.RedisPool),
				redisstore.WithReadTimeout(cfg.Cache.OpTimeout),
				redisstore.WithWriteTimeout(cfg.Cache.OpTimeout),
			)
			if err != nil {
				appLog.Error("redis client", "err", err)
				return 1
			}
			defer func() { _ = rc.Close() }()
			store = doccache.NewRedis(rc)
			checks = append(checks, health.Check{Name: "redis", Fn: rc.Ping})
		}
	}

	if cfg.Invalidation.Enabled {
		target := store
		if target == nil {
			appLog.Warn("invalidation enabled without a document cache; catalog events only trigger reloads")
			target = doccache.NewMemory(1, cfg.Cache.TTL)
		}
		consumer := kafkaconsumer.New(kafkaconsumer.Config{
			Brokers:             kafkaconsumer.SplitCSV(cfg.Invalidation.Brokers),
			Topic:               cfg.Invalidation.Topic,
			GroupID:             cfg.Invalidation.GroupID,
			InitialOffsetOldest: false,
		}, appLog, &zl, target, cat)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				appLog.Error("catalog event consumer stopped", "err", err)
			}
		}()
		checks = append(checks, health.Check{Name: "kafka", Fn: func(context.Context) error {
			if !consumer.Ready() {
				return errors.New("no partitions assigned")
			}
			return nil
		}})
	}

	handler := describe.New(appLog, desc,
		describe.WithCache(store, cfg.Cache.TTL, cfg.Cache.OpTimeout),
		describe.WithRevisions(cat))

	deps := server.Deps{
		Coverages: cat,
		Describe:  handler,
		Ready:     checks,
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = p.Handler()
	}
	if err := server.Run(ctx, cfg, appLog, deps); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
