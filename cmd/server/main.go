// Package main is the entrypoint for the GeoInsight API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geoinsight/geoinsight/internal/ai"
	"github.com/geoinsight/geoinsight/internal/analysis"
	"github.com/geoinsight/geoinsight/internal/api"
	"github.com/geoinsight/geoinsight/internal/api/handler"
	"github.com/geoinsight/geoinsight/internal/cache"
	"github.com/geoinsight/geoinsight/internal/config"
	"github.com/geoinsight/geoinsight/internal/providers/clip"
	"github.com/geoinsight/geoinsight/internal/providers/osm"
	"github.com/geoinsight/geoinsight/internal/providers/tiles"
	"github.com/geoinsight/geoinsight/internal/scoring"
	"github.com/geoinsight/geoinsight/internal/simindex"
	"github.com/geoinsight/geoinsight/internal/store"
	"github.com/geoinsight/geoinsight/pkg/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"ai_provider", cfg.AI.Provider,
		"similarity_backend", cfg.Similarity.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. External providers
	osmClient := osm.NewClient(cfg.Providers.OSM.OverpassURL, cfg.Providers.OSM.NominatimURL,
		cfg.Providers.OSM.Timeout)
	amenities := osm.NewCachedClient(osmClient, redisCache, cfg.Providers.OSM.CacheTTL, logger)

	// The cached client doubles as the geocoder so amenity and imagery
	// subtasks share one Nominatim lookup per address.
	var images models.ImageProvider = tiles.NewClient(cfg.Providers.Tiles.BaseURL,
		cfg.Providers.Tiles.Zoom, amenities, cfg.Providers.Tiles.Timeout)

	var embedder models.Embedder
	if cfg.Providers.Embed.BaseURL != "" {
		embedder = clip.NewClient(cfg.Providers.Embed.BaseURL, cfg.Similarity.Dimension,
			cfg.Providers.Embed.Timeout)
	} else {
		slog.Warn("EMBED_BASE_URL not set, similarity subtask will report unavailable")
		embedder = unavailableEmbedder{}
	}

	// 6. Summarizer
	summarizer, err := ai.NewSummarizer(cfg.AI)
	if err != nil {
		return fmt.Errorf("create summarizer: %w", err)
	}
	slog.Info("summarizer initialized", "provider", summarizer.Name())

	// 7. Store and similarity index
	pgStore := store.NewPostgresStore(pool)

	var index simindex.Index
	switch cfg.Similarity.Backend {
	case "postgres":
		index = simindex.NewPostgres(pool, cfg.Similarity.Dimension)
	case "memory":
		index = simindex.NewMemory(cfg.Similarity.Dimension)
	}

	// 8. Orchestration service
	svc := analysis.NewService(analysis.Deps{
		Store:      pgStore,
		Cache:      redisCache,
		Amenities:  amenities,
		Images:     images,
		Embedder:   embedder,
		Index:      index,
		Summarizer: summarizer,
		Logger:     logger,
	}, analysis.Config{
		SubtaskTimeout: cfg.Analysis.SubtaskTimeout,
		SummaryTimeout: cfg.AI.InferenceTimeout,
		StatusTTL:      cfg.Analysis.StatusTTL,
		Walk: scoring.WalkConfig{
			CutoffM:        cfg.Scoring.WalkCutoffM,
			MaxPerCategory: cfg.Scoring.WalkMaxPerCategory,
			Weights:        scoring.DefaultWalkConfig().Weights,
		},
		Vegetation: scoring.VegetationConfig{
			HueMinDeg:     cfg.Scoring.HueMinDeg,
			HueMaxDeg:     cfg.Scoring.HueMaxDeg,
			SatMin:        cfg.Scoring.SatMin,
			ValMin:        cfg.Scoring.ValMin,
			OpeningRadius: scoring.DefaultVegetationConfig().OpeningRadius,
		},
		Finance: scoring.FinanceConfig{
			IRRGuess:     cfg.Scoring.IRRGuess,
			IRRTolerance: cfg.Scoring.IRRTolerance,
			IRRMaxIter:   cfg.Scoring.IRRMaxIter,
		},
		SimilarLimit:     cfg.Similarity.DefaultLimit,
		SimilarThreshold: cfg.Similarity.DefaultThreshold,
	})

	// 9. Build router with dependencies
	router := api.NewRouter(api.Dependencies{
		HealthHandler: handler.NewHealthHandler(pgStore, redisCache),

		SubmitAnalysisHandler: handler.NewSubmitAnalysisHandler(svc),
		PollAnalysisHandler:   handler.NewPollAnalysisHandler(svc),
		CancelAnalysisHandler: handler.NewCancelAnalysisHandler(svc),

		SimilarSearchHandler: handler.NewSimilarSearchHandler(index, cfg.Similarity.DefaultThreshold),
		SimilarStatsHandler:  handler.NewSimilarStatsHandler(index),

		UpsertEmbeddingHandler: handler.NewUpsertEmbeddingHandler(index),
		DeleteEmbeddingHandler: handler.NewDeleteEmbeddingHandler(index),
	})

	// 10. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Let in-flight analyses finish before the process exits.
	done := make(chan struct{})
	go func() {
		svc.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		slog.Warn("shutdown timeout reached with analyses still running")
	}

	slog.Info("server stopped gracefully")
	return nil
}

// unavailableEmbedder stands in when no embedding service is configured.
type unavailableEmbedder struct{}

func (unavailableEmbedder) Embed(context.Context, []byte) ([]float32, error) {
	return nil, errors.New("no embedding service configured")
}
