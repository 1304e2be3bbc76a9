// Package app wires configuration, storage, and the pipeline stages
// into runnable operating modes: a thin struct holding shared
// dependencies, with one method per mode the binary can run.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rs/zerolog"

	"github.com/indiabias/newsbias-pipeline/internal/embedding"
	"github.com/indiabias/newsbias-pipeline/internal/entity"
	"github.com/indiabias/newsbias-pipeline/internal/enrich"
	"github.com/indiabias/newsbias-pipeline/internal/labeler"
	"github.com/indiabias/newsbias-pipeline/internal/pipeline"
	"github.com/indiabias/newsbias-pipeline/internal/platform/config"
	"github.com/indiabias/newsbias-pipeline/internal/platform/observability"
	"github.com/indiabias/newsbias-pipeline/internal/refiner"
	"github.com/indiabias/newsbias-pipeline/internal/store"
)

const mockEmbeddingDimensions = 384

// Store is the persistence contract app wiring needs from either
// *store.PostgresStore or *store.MemoryStore.
type Store interface {
	pipeline.Store
	refiner.Store
	observability.Pinger
}

// App holds the shared dependencies every operating mode is built from.
type App struct {
	cfg    *config.Config
	db     Store
	logger zerolog.Logger
}

func New(cfg *config.Config, db Store, logger zerolog.Logger) *App {
	return &App{cfg: cfg, db: db, logger: logger}
}

// StartHealthServer runs the health/metrics HTTP server until ctx is
// canceled.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.db, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunOnce executes a single pipeline run and returns.
func (a *App) RunOnce(ctx context.Context) error {
	a.logger.Info().Msg("starting single pipeline run")

	coordinator := a.newCoordinator()

	result, err := coordinator.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	a.logger.Info().Int("clusters_generated", result.ClustersGenerated).Msg("pipeline run complete")

	return nil
}

// RunWorker polls for new work on Config.WorkerPollInterval until ctx is
// canceled, running one pipeline cycle per tick.
func (a *App) RunWorker(ctx context.Context) error {
	a.logger.Info().Dur("interval", a.cfg.WorkerPollInterval).Msg("starting worker mode")

	coordinator := a.newCoordinator()

	ticker := time.NewTicker(a.cfg.WorkerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case <-ticker.C:
			a.runTick(ctx, coordinator)
		}
	}
}

func (a *App) runTick(ctx context.Context, coordinator *pipeline.Coordinator) {
	result, err := coordinator.Run(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			a.logger.Debug().Msg("skipping tick: previous run still in progress")
			return
		}

		a.logger.Error().Err(err).Msg("pipeline run failed")

		return
	}

	a.logger.Info().Int("clusters_generated", result.ClustersGenerated).Msg("pipeline tick complete")
}

// RunRefiner runs the coherence refiner once, independent of a pipeline
// run, so it can be scheduled on its own cadence.
func (a *App) RunRefiner(ctx context.Context) error {
	a.logger.Info().Msg("starting standalone refiner pass")

	r := a.newRefiner()

	if err := r.Refine(ctx); err != nil {
		return fmt.Errorf("refiner run: %w", err)
	}

	return nil
}

func (a *App) newCoordinator() *pipeline.Coordinator {
	enricher := a.newEnricher()
	lbl := a.newLabeler()
	r := a.newRefiner()

	cfg := pipeline.Config{
		UnclusteredMaxAgeHours: a.cfg.UnclusteredMaxAgeHours,
		UnclusteredBatchLimit:  a.cfg.UnclusteredBatchLimit,
	}

	return pipeline.New(a.db, enricher, lbl, r, cfg, a.logger)
}

func (a *App) newRefiner() *refiner.Refiner {
	lbl := a.newLabeler()

	cfg := refiner.Config{
		LookbackHours:  a.cfg.RefinerLookbackHours,
		MinMembers:     a.cfg.RefinerMinMembers,
		CoherenceFloor: a.cfg.RefinerCoherenceFloor,
	}

	var locker refiner.Locker
	if l, ok := a.db.(refiner.Locker); ok {
		locker = l
	}

	return refiner.New(a.db, locker, lbl, cfg, a.logger)
}

func (a *App) newEnricher() *enrich.Enricher {
	embedder := a.newEmbedder()
	extractor := entity.NewExtractor(entity.NewHeuristicTagger())

	return enrich.New(embedder, extractor)
}

func (a *App) newEmbedder() embedding.Embedder {
	if a.cfg.EmbeddingAPIKey == "" {
		a.logger.Warn().Msg("no embedding API key configured, using deterministic mock embedder")
		return embedding.NewMockEmbedder(mockEmbeddingDimensions)
	}

	return embedding.NewOpenAIEmbedder(embedding.Config{
		APIKey:     a.cfg.EmbeddingAPIKey,
		Model:      a.cfg.EmbeddingModel,
		Dimensions: a.cfg.EmbeddingDimensions,
		RateLimit:  a.cfg.EmbeddingRateLimitRPS,
	})
}

func (a *App) newLabeler() *labeler.Labeler {
	client := openai.NewClient(a.cfg.ExternalLabelerAPIKey)
	return labeler.New(client, a.cfg.LabelerModel, a.cfg.LabelerTimeout)
}

// OpenStore opens the persistent Store, falling back to an in-process
// MemoryStore when DBPath is unset or unreachable.
func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Store, func(), error) {
	if cfg.DBPath == "" {
		logger.Warn().Msg("DB_PATH unset, falling back to in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}

	pg, err := store.Open(ctx, cfg.DBPath, cfg.DBMaxConnections, cfg.DBMinConnections,
		cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime, cfg.DBHealthCheckPeriod)
	if err != nil {
		logger.Warn().Err(err).Msg("postgres unreachable, falling back to in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}

	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return pg, pg.Close, nil
}
