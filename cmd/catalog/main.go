package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"MiniCatalog/internal/cache"
	"MiniCatalog/internal/catalog"
	"MiniCatalog/internal/config"
	"MiniCatalog/pkg/kit"
)

const startupTimeout = 10 * time.Second

func main() {
	const service = "catalog"

	cfg := config.Load()
	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	access, err := kit.NewAccessLogger(cfg.AccessLogPath)
	if err != nil {
		log.Fatal("open access log failed", zap.Error(err), zap.String("path", cfg.AccessLogPath))
	}
	defer func() { _ = access.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	snap, closeSnap := openSnapshotter(startCtx, cfg, log)
	defer closeSnap()

	rc, closeCache := openCache(cfg, log)
	defer closeCache()

	store := catalog.NewStore(startCtx, snap, log)
	cancel()

	s := &catalog.Server{
		Service: catalog.NewService(store, cache.Instrument(rc, cache.NewMetrics(reg)), cfg.CacheTTL, log),
		Log:     log,
	}
	if cfg.WriteRateLimit > 0 {
		s.WriteLimit = kit.NewWriteLimiter(cfg.WriteRateLimit, time.Minute).Middleware
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		AccessLog:      access,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log, cfg.ShutdownTimeout); err != nil {
		log.Error("http server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func openSnapshotter(ctx context.Context, cfg config.Config, log *zap.Logger) (catalog.Snapshotter, func()) {
	var (
		db      *sql.DB
		dialect catalog.Dialect
		err     error
	)

	switch cfg.PersistDriver {
	case config.PersistPostgres:
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		dialect = catalog.DialectPostgres
	case config.PersistSQLite:
		db, err = sql.Open("sqlite3", cfg.SQLitePath)
		dialect = catalog.DialectSQLite
	default:
		log.Info("using file snapshot", zap.String("path", cfg.ProductsFile))
		return catalog.NewFileSnapshotter(cfg.ProductsFile), func() {}
	}
	if err != nil {
		log.Fatal("open database failed", zap.Error(err), zap.String("driver", cfg.PersistDriver))
	}

	snap := catalog.NewSQLSnapshotter(db, dialect)
	if err := snap.Migrate(ctx); err != nil {
		log.Fatal("migrate products table failed", zap.Error(err))
	}
	log.Info("using sql snapshot", zap.String("driver", cfg.PersistDriver))
	return snap, func() { _ = db.Close() }
}

func openCache(cfg config.Config, log *zap.Logger) (cache.Cache, func()) {
	if cfg.CacheDriver != config.CacheRedis {
		return cache.NewLocal(cfg.CacheTTL, cfg.CacheMaxEntries), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	log.Info("using redis cache", zap.String("addr", cfg.RedisAddr))
	return cache.NewRedis(client, cfg.RedisPrefix), func() { _ = client.Close() }
}
