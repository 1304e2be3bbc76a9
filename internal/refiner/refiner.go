// Package refiner implements the CoherenceRefiner: it audits recently
// created clusters, and splits any whose members have drifted apart
// below a coherence floor.
package refiner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/indiabias/newsbias-pipeline/internal/cluster"
	"github.com/indiabias/newsbias-pipeline/internal/domain"
	"github.com/indiabias/newsbias-pipeline/internal/labeler"
	"github.com/indiabias/newsbias-pipeline/internal/platform/observability"
	"github.com/indiabias/newsbias-pipeline/internal/stats"
	"github.com/indiabias/newsbias-pipeline/internal/vecmath"
)

const minSubClustersToSplit = 2

// Store is the subset of internal/store.Store the refiner needs.
type Store interface {
	LoadRecentClusters(ctx context.Context, maxAgeHours int) ([]domain.Cluster, error)
	LoadClusterArticles(ctx context.Context, clusterID string) ([]domain.Article, error)
	SplitCluster(ctx context.Context, oldID string, replacements []domain.Cluster, assignment map[string]string) error
}

// Locker coordinates a refine pass across processes sharing one Store,
// so that two processes never audit and split the same cluster at once.
type Locker interface {
	TryAcquireRefinerLock(ctx context.Context) (bool, error)
	ReleaseRefinerLock(ctx context.Context) error
}

// Labeler is the subset of internal/labeler.Labeler needed to re-label
// sub-clusters produced by a split.
type Labeler interface {
	LabelBatches(ctx context.Context, memberSets [][]domain.Article) ([]labeler.Label, error)
}

// Config bounds which clusters are audited and how they're judged.
type Config struct {
	LookbackHours  int
	MinMembers     int
	CoherenceFloor float32
}

// Refiner implements the CoherenceRefiner.
type Refiner struct {
	store   Store
	locker  Locker
	labeler Labeler
	cfg     Config
	logger  zerolog.Logger
}

func New(store Store, locker Locker, lbl Labeler, cfg Config, logger zerolog.Logger) *Refiner {
	return &Refiner{store: store, locker: locker, labeler: lbl, cfg: cfg, logger: logger}
}

// Refine audits every cluster created within Config.LookbackHours, one
// at a time, and splits any cluster whose average member-to-centroid
// similarity falls below Config.CoherenceFloor.
func (r *Refiner) Refine(ctx context.Context) error {
	if r.locker != nil {
		acquired, err := r.locker.TryAcquireRefinerLock(ctx)
		if err != nil {
			return err
		}

		if !acquired {
			r.logger.Info().Msg("refiner lock held elsewhere, skipping this pass")
			return nil
		}

		defer func() {
			_ = r.locker.ReleaseRefinerLock(ctx)
		}()
	}

	clusters, err := r.store.LoadRecentClusters(ctx, r.cfg.LookbackHours)
	if err != nil {
		return err
	}

	for _, c := range clusters {
		observability.RefinerAuditedTotal.Inc()

		if err := r.auditCluster(ctx, c); err != nil {
			r.logger.Error().Err(err).Str("cluster_id", c.ID).Msg("coherence audit failed")
		}
	}

	return nil
}

func (r *Refiner) auditCluster(ctx context.Context, c domain.Cluster) error {
	members, err := r.store.LoadClusterArticles(ctx, c.ID)
	if err != nil {
		return err
	}

	var withEmbeddings []domain.Article

	for _, m := range members {
		if m.HasEmbedding() {
			withEmbeddings = append(withEmbeddings, m)
		}
	}

	if len(withEmbeddings) < r.cfg.MinMembers {
		return nil
	}

	centroid := vecmath.L2Normalize(vecmath.Mean(embeddingsOf(withEmbeddings)))
	if averageCosine(withEmbeddings, centroid) >= r.cfg.CoherenceFloor {
		return nil
	}

	subClusters := cluster.Cluster(withEmbeddings)
	if len(subClusters) < minSubClustersToSplit {
		return nil
	}

	return r.split(ctx, c.ID, subClusters)
}

func (r *Refiner) split(ctx context.Context, oldID string, subClusters []*cluster.MicroCluster) error {
	memberSets := make([][]domain.Article, len(subClusters))
	for i, sc := range subClusters {
		memberSets[i] = sc.Members
	}

	labels, err := r.labeler.LabelBatches(ctx, memberSets)
	if err != nil {
		return err
	}

	replacements := make([]domain.Cluster, len(subClusters))
	assignment := make(map[string]string)
	now := time.Now()

	for i, sc := range subClusters {
		label := labels[i]

		replacements[i] = domain.Cluster{
			ID:           uuid.New().String(),
			Headline:     label.Headline,
			Summary:      label.Summary,
			Category:     label.Category,
			MainImageURL: stats.MainImageURL(sc.Members),
			CreatedAt:    now,
			Stats:        stats.Compute(sc.Members),
		}

		for _, m := range sc.Members {
			assignment[m.ID] = replacements[i].ID
		}
	}

	if err := r.store.SplitCluster(ctx, oldID, replacements, assignment); err != nil {
		return err
	}

	observability.RefinerSplitsTotal.Inc()

	return nil
}

func embeddingsOf(articles []domain.Article) [][]float32 {
	out := make([][]float32, len(articles))
	for i, a := range articles {
		out[i] = a.Embedding
	}

	return out
}

func averageCosine(members []domain.Article, centroid []float32) float32 {
	var sum float32

	for _, m := range members {
		sum += vecmath.CosineSimilarity(m.Embedding, centroid)
	}

	return sum / float32(len(members))
}
