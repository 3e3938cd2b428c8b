package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/cinepos/internal/catalog"
	"github.com/iliyamo/cinepos/internal/config"
	"github.com/iliyamo/cinepos/internal/database"
	"github.com/iliyamo/cinepos/internal/handler"
	"github.com/iliyamo/cinepos/internal/logger"
	"github.com/iliyamo/cinepos/internal/middleware"
	"github.com/iliyamo/cinepos/internal/queue"
	"github.com/iliyamo/cinepos/internal/repository"
	"github.com/iliyamo/cinepos/internal/router"
	"github.com/iliyamo/cinepos/internal/service"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		ServiceName: "cinepos",
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	cat, db, err := buildCatalog(ctx, cfg, rdb, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}
	if err := cat.Refresh(ctx); err != nil {
		log.Warn("film source unavailable, using built-in catalog", zap.Error(err))
	}
	log.Info("catalog ready", zap.Bool("live", cat.Live()), zap.Int("films", len(cat.Films())))

	occupancy := repository.NewOccupancyRepo()
	ledger := repository.NewLedgerRepo(occupancy)

	var events service.EventPublisher
	if cfg.SaleEvents.Enabled {
		events = queue.NewPublisher(cfg.SaleEvents.URL, cfg.SaleEvents.Queue, log)
		log.Info("sale events enabled", zap.String("queue", cfg.SaleEvents.Queue))
	}
	sales := service.NewSaleService(occupancy, ledger, events, log)

	if cfg.SaleEvents.ConsumerEnabled {
		consumer := queue.NewConsumer(cfg.SaleEvents.URL, cfg.SaleEvents.Queue, cfg.SaleEvents.LogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("sale consumer stopped", zap.Error(err))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e)
	router.RegisterCatalog(e,
		handler.NewCatalogHandler(cat, occupancy, log),
		middleware.Throttle(cfg.RateLimit, rdb, log))
	router.RegisterTill(e, handler.NewTillHandler(cat, sales, ledger, log))

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	sales.Flush()
	return nil
}

// buildCatalog wires the film source named by CATALOG_SOURCE, cached in Redis
// when a client is available.  The returned *sql.DB is non-nil only for the
// mysql source.
func buildCatalog(ctx context.Context, cfg config.Config, rdb *redis.Client, log *zap.Logger) (*catalog.Catalog, *sql.DB, error) {
	opts := catalog.Options{Timeout: cfg.CatalogTimeout, Logger: log}
	var db *sql.DB

	switch cfg.CatalogSource {
	case config.SourceTMDB:
		tmdb := catalog.NewTMDBSource(catalog.TMDBConfig{
			BaseURL:      cfg.TMDB.BaseURL,
			ImageBaseURL: cfg.TMDB.ImageBaseURL,
			Bearer:       cfg.TMDB.Bearer,
			APIKey:       cfg.TMDB.APIKey,
			Language:     cfg.TMDB.Language,
			Limit:        cfg.TMDB.Limit,
		}, &http.Client{Timeout: cfg.CatalogTimeout})
		opts.Source = catalog.NewCachedSource(tmdb, rdb, cfg.CatalogCacheTTL, log)
		opts.Runtime = tmdb
	case config.SourceMySQL:
		var err error
		db, err = database.Open(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("open films database: %w", err)
		}
		opts.Source = catalog.NewCachedSource(catalog.NewMySQLSource(db), rdb, cfg.CatalogCacheTTL, log)
	default:
		opts.Source = catalog.StaticSource{}
	}
	return catalog.New(opts), db, nil
}
