// Package pipeline drives one end-to-end run of the analysis pipeline:
// load unclustered articles, enrich, persist, cluster, label, compute
// stats, commit, then hand off to the CoherenceRefiner.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/indiabias/newsbias-pipeline/internal/cluster"
	"github.com/indiabias/newsbias-pipeline/internal/domain"
	"github.com/indiabias/newsbias-pipeline/internal/labeler"
	"github.com/indiabias/newsbias-pipeline/internal/platform/observability"
	"github.com/indiabias/newsbias-pipeline/internal/stats"
)

// ErrRunInProgress is returned when a run is triggered while another is
// still in flight; the coordinator allows at most one concurrent run per
// process.
var ErrRunInProgress = errors.New("pipeline run already in progress")

const minUnclusteredToRun = 2

// Store is the subset of internal/store.Store the coordinator drives.
type Store interface {
	SelectUnclustered(ctx context.Context, maxAgeHours, limit int) ([]domain.Article, error)
	PersistEnrichment(ctx context.Context, articles []domain.Article) error
	CommitClusters(ctx context.Context, clusters []domain.Cluster, assignment map[string]string) error
}

// Enricher is the subset of internal/enrich.Enricher the coordinator
// needs.
type Enricher interface {
	EnrichAll(ctx context.Context, articles []domain.Article) []domain.Article
}

// Labeler is the subset of internal/labeler.Labeler the coordinator
// needs.
type Labeler interface {
	LabelBatches(ctx context.Context, memberSets [][]domain.Article) ([]labeler.Label, error)
}

// Refiner is invoked at the end of every run.
type Refiner interface {
	Refine(ctx context.Context) error
}

// Config bounds one run's article selection.
type Config struct {
	UnclusteredMaxAgeHours int
	UnclusteredBatchLimit  int
}

// Result summarizes one run.
type Result struct {
	ClustersGenerated int
}

// Coordinator drives one pipeline run at a time.
type Coordinator struct {
	store    Store
	enricher Enricher
	labeler  Labeler
	refiner  Refiner
	cfg      Config
	logger   zerolog.Logger

	mu sync.Mutex
}

func New(store Store, enricher Enricher, lbl Labeler, refiner Refiner, cfg Config, logger zerolog.Logger) *Coordinator {
	return &Coordinator{store: store, enricher: enricher, labeler: lbl, refiner: refiner, cfg: cfg, logger: logger}
}

// Run executes one pipeline cycle. It returns ErrRunInProgress instead
// of blocking if another run is already executing in this process.
func (c *Coordinator) Run(ctx context.Context) (Result, error) {
	if !c.mu.TryLock() {
		return Result{}, ErrRunInProgress
	}
	defer c.mu.Unlock()

	start := time.Now()

	correlationID := uuid.New().String()
	log := c.logger.With().Str("correlation_id", correlationID).Logger()

	articles, err := c.store.SelectUnclustered(ctx, c.cfg.UnclusteredMaxAgeHours, c.cfg.UnclusteredBatchLimit)
	if err != nil {
		observability.PipelineRunsTotal.WithLabelValues("error").Inc()
		observability.PipelineRunDurationSeconds.Observe(time.Since(start).Seconds())

		return Result{}, fmt.Errorf("select unclustered: %w", err)
	}

	observability.ArticlesSelectedTotal.Add(float64(len(articles)))
	log.Info().Int("count", len(articles)).Msg("loaded unclustered articles")

	var result Result

	if len(articles) >= minUnclusteredToRun {
		result, err = c.runOnArticles(ctx, log, articles)
		if err != nil {
			observability.PipelineRunsTotal.WithLabelValues("error").Inc()
			observability.PipelineRunDurationSeconds.Observe(time.Since(start).Seconds())

			return Result{}, err
		}
	}

	if c.refiner != nil {
		if err := c.refiner.Refine(ctx); err != nil {
			log.Error().Err(err).Msg("coherence refiner failed")
		}
	}

	observability.PipelineRunsTotal.WithLabelValues("success").Inc()
	observability.PipelineRunDurationSeconds.Observe(time.Since(start).Seconds())

	return result, nil
}

func (c *Coordinator) runOnArticles(ctx context.Context, log zerolog.Logger, articles []domain.Article) (Result, error) {
	enriched := c.enricher.EnrichAll(ctx, articles)

	if err := c.store.PersistEnrichment(ctx, enriched); err != nil {
		return Result{}, fmt.Errorf("persist enrichment: %w", err)
	}

	microClusters := cluster.Cluster(enriched)
	if len(microClusters) == 0 {
		return Result{}, nil
	}

	memberSets := make([][]domain.Article, len(microClusters))
	for i, mc := range microClusters {
		memberSets[i] = mc.Members
	}

	labels, err := c.labeler.LabelBatches(ctx, memberSets)
	if err != nil {
		return Result{}, fmt.Errorf("label clusters: %w", err)
	}

	clusters := make([]domain.Cluster, len(microClusters))
	assignment := make(map[string]string)
	now := time.Now()

	for i, mc := range microClusters {
		label := labels[i]

		clusters[i] = domain.Cluster{
			ID:           uuid.New().String(),
			Headline:     label.Headline,
			Summary:      label.Summary,
			Category:     label.Category,
			MainImageURL: stats.MainImageURL(mc.Members),
			CreatedAt:    now,
			Stats:        stats.Compute(mc.Members),
		}

		for _, m := range mc.Members {
			assignment[m.ID] = clusters[i].ID
		}
	}

	if err := c.store.CommitClusters(ctx, clusters, assignment); err != nil {
		return Result{}, fmt.Errorf("commit clusters: %w", err)
	}

	observability.ClustersGeneratedTotal.Add(float64(len(clusters)))
	log.Info().Int("clusters", len(clusters)).Msg("pipeline run committed clusters")

	return Result{ClustersGenerated: len(clusters)}, nil
}
