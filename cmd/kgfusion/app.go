package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/kogsector/kgfusion/cache"
	"github.com/kogsector/kgfusion/config"
	"github.com/kogsector/kgfusion/embedclient"
	"github.com/kogsector/kgfusion/eventbus"
	"github.com/kogsector/kgfusion/graphstore"
	"github.com/kogsector/kgfusion/httpapi"
	"github.com/kogsector/kgfusion/ingest"
	"github.com/kogsector/kgfusion/linker"
	"github.com/kogsector/kgfusion/query"
)

const defaultEmbeddingTimeout = 30 * time.Second

// App wires together every collaborator named in SPEC_FULL.md §5's "Shared
// resources" and §11's domain stack, following the teacher's App-struct
// pattern (cmd/semspec/app.go): one value built once at boot, passed by
// reference into every handler and background task.
type App struct {
	cfg    config.Config
	logger *slog.Logger

	pool  *pgxpool.Pool
	nc    *natsclient.Client
	store graphstore.Store

	embedder  *embedclient.Client
	bus       *eventbus.Bus
	linker    *linker.Linker
	processor *ingest.Processor
	engine    *query.Engine
	cache     *cache.Cache
}

// NewApp connects every backend named in SPEC_FULL.md §5 and returns a ready
// App. Callers must defer App.Close.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	poolCfg.MaxConns = 10 // §5's default connection-pool size
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	pg := graphstore.NewPostgres(pool, cfg.VectorDimension)

	var store graphstore.Store = pg
	if cfg.VectorStoreEndpoint != "" {
		qstore, err := graphstore.NewQdrantBacked(ctx, pg, cfg.VectorStoreEndpoint)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to qdrant at %s: %w", cfg.VectorStoreEndpoint, err)
		}
		store = qstore
		logger.Info("vector index backend selected", "backend", "qdrant", "endpoint", cfg.VectorStoreEndpoint)
	} else {
		logger.Info("vector index backend selected", "backend", "pgvector")
	}

	if err := store.CreateVectorIndex(ctx, graphstore.ChunkEmbeddingIndex, "chunk", "embedding", cfg.VectorDimension); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create chunk vector index: %w", err)
	}

	embedder := embedclient.New(cfg.EmbeddingServiceURL, defaultEmbeddingTimeout)

	nc, err := eventbus.Dial(ctx, cfg.NatsURL, "kgfusion")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("dial nats: %w", err)
	}
	bus := eventbus.New(nc)

	linkerCfg := linker.Config{
		SimilarityThreshold:     cfg.SimilarityThreshold,
		MaxCrossLinksPerChunk:   cfg.MaxCrossLinksPerChunk,
		TemporalProximityDays:   cfg.TemporalProximityDays,
		EnableTemporalProximity: cfg.EnableTemporalProximity,
		EnableExplicitMentions:  cfg.EnableExplicitMentions,
		EnableAuthorOverlap:     cfg.EnableAuthorOverlap,
	}
	l := linker.New(store, linkerCfg)

	processor := ingest.New(store, embedder, l, bus, logger)
	engine := query.New(store, embedder, cfg.SimilarityThreshold)

	resultCache, err := cache.New(ctx, cfg.RedisURL, 5*time.Minute)
	if err != nil {
		logger.Warn("redis query cache disabled", "error", err)
		resultCache = nil
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		nc:        nc,
		store:     store,
		embedder:  embedder,
		bus:       bus,
		linker:    l,
		processor: processor,
		engine:    engine,
		cache:     resultCache,
	}, nil
}

// Close releases every connection App opened.
func (a *App) Close(ctx context.Context) {
	if a.nc != nil {
		if err := a.nc.Close(ctx); err != nil {
			a.logger.Warn("close nats client", "error", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// Server builds the HTTP surface over this App's collaborators.
func (a *App) Server() *httpapi.Server {
	return httpapi.New(a.store, a.processor, a.linker, a.engine, a.embedder, a.cache, a.logger, Version)
}

// newLogger builds the process-wide structured logger per SPEC_FULL.md §10:
// JSON in production, text when LOG_FORMAT=text.
func newLogger(cfg config.Config) *slog.Logger {
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}
