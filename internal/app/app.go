package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/volleystats/external/statsfeed"
	"github.com/riskibarqy/volleystats/internal/boxscore"
	"github.com/riskibarqy/volleystats/internal/config"
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
	"github.com/riskibarqy/volleystats/internal/infrastructure/csvsource"
	"github.com/riskibarqy/volleystats/internal/infrastructure/override"
	"github.com/riskibarqy/volleystats/internal/infrastructure/pdftext"
	repocache "github.com/riskibarqy/volleystats/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/volleystats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/volleystats/internal/infrastructure/repository/postgres"
	reporedis "github.com/riskibarqy/volleystats/internal/infrastructure/repository/redis"
	"github.com/riskibarqy/volleystats/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/volleystats/internal/platform/cache"
	idgen "github.com/riskibarqy/volleystats/internal/platform/id"
	"github.com/riskibarqy/volleystats/internal/platform/logging"
	"github.com/riskibarqy/volleystats/internal/platform/resilience"
	"github.com/riskibarqy/volleystats/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// Services holds the wired use cases shared by the HTTP server and the CLI.
type Services struct {
	Stats     *usecase.StatsService
	Merge     *usecase.MergeService
	Overrides override.Set

	closers []func() error
}

// Close releases the database and redis connections opened by NewServices.
func (s *Services) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func NewServices(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}
	svc := &Services{}

	overrides, err := override.NewLoader(logger).LoadPath(ctx, cfg.OverridesPath)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	svc.Overrides = overrides

	totalsCache, err := newTotalsCache(ctx, cfg, logger, svc)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	statsRepo, runRepo, err := newRepositories(ctx, cfg, logger, svc)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	fetcher := statsfeed.NewClient(statsfeed.ClientConfig{
		UserAgent:         cfg.StatsUserAgent,
		Timeout:           cfg.StatsTimeout,
		MaxRetries:        cfg.StatsMaxRetries,
		RetryDelay:        cfg.StatsRetryDelay,
		RequestsPerSecond: cfg.StatsRequestsPerSecond,
		Logger:            logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StatsCircuitEnabled,
			FailureThreshold: cfg.StatsCircuitFailureCount,
			OpenTimeout:      cfg.StatsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StatsCircuitHalfOpenMaxReq,
		},
	})

	svc.Stats = usecase.NewStatsService(
		fetcher,
		pdftext.NewExtractor(logger),
		boxscore.NewParser(cfg.GlueBounds()),
		totalsCache,
		statsRepo,
		overrides,
		usecase.StatsServiceOptions{WorkerCount: cfg.WorkerCount, Logger: logger},
	)
	svc.Merge = usecase.NewMergeService(
		svc.Stats,
		csvsource.NewDir(cfg.CSVDir),
		overrides,
		runRepo,
		idgen.NewRandomGenerator("run-"),
		usecase.MergeServiceOptions{WorkerCount: cfg.CSVWorkerCount, Logger: logger},
	)

	return svc, nil
}

func newTotalsCache(ctx context.Context, cfg config.Config, logger *logging.Logger, svc *Services) (matchstats.Cache, error) {
	if !cfg.RedisEnabled {
		return repocache.NewTotalsCache(basecache.NewStore(cfg.CacheTTL)), nil
	}

	client, err := reporedis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	svc.closers = append(svc.closers, client.Close)
	logger.InfoContext(ctx, "redis totals cache enabled", "key_prefix", cfg.RedisKeyPrefix, "ttl", cfg.RedisTTL.String())

	return reporedis.NewTotalsCache(client, cfg.RedisKeyPrefix, cfg.RedisTTL), nil
}

func newRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger, svc *Services) (matchstats.Repository, mergedrow.Repository, error) {
	var (
		statsRepo matchstats.Repository
		runRepo   mergedrow.Repository
	)

	if cfg.DBEnabled {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		svc.closers = append(svc.closers, db.Close)
		logger.InfoContext(ctx, "postgres repositories enabled", "db_name", dbNameFromURL(cfg.DBURL))

		statsRepo = postgres.NewMatchStatsRepository(db)
		runRepo = postgres.NewMergedRowRepository(db)
	} else {
		logger.InfoContext(ctx, "postgres disabled, using in-memory repositories", "reason", "DB_ENABLED=false")
		statsRepo = memory.NewMatchStatsRepository()
		runRepo = memory.NewMergedRowRepository()
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		statsRepo = repocache.NewMatchStatsRepository(statsRepo, store)
		runRepo = repocache.NewMergedRowRepository(runRepo, store)
	}

	return statsRepo, runRepo, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := DatabaseURL(cfg)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewHTTPServer builds the API server. The returned Services must be closed
// after the server has shut down.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, *Services, error) {
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	svc, err := NewServices(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	handler := httpapi.NewHandler(svc.Stats, svc.Merge, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.APIToken)
	if cfg.APIToken == "" {
		logger.WarnContext(ctx, "merge endpoint is unauthenticated", "reason", "APP_API_TOKEN empty")
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, svc, nil
}
