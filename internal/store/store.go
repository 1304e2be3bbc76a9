// Package store is the persistent article/cluster repository. It is the
// only component allowed to see raw database rows; every other
// component works exclusively in terms of internal/domain types, so
// untyped data never crosses a component boundary.
package store

import (
	"context"
	"time"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
)

// Store exposes article/cluster selection and the transactional writes
// the pipeline needs.
type Store interface {
	// SelectUnclustered returns unclustered articles newer than
	// maxAgeHours, oldest pubDate first, capped at limit.
	SelectUnclustered(ctx context.Context, maxAgeHours, limit int) ([]domain.Article, error)

	// PersistEnrichment writes embedding and entities for each article in
	// one transaction.
	PersistEnrichment(ctx context.Context, articles []domain.Article) error

	// LoadRecentClusters returns clusters created within maxAgeHours.
	LoadRecentClusters(ctx context.Context, maxAgeHours int) ([]domain.Cluster, error)

	// LoadClusterArticles returns a cluster's member articles, including
	// embeddings.
	LoadClusterArticles(ctx context.Context, clusterID string) ([]domain.Article, error)

	// CommitClusters inserts clusters and assigns articleId -> clusterId
	// atomically.
	CommitClusters(ctx context.Context, clusters []domain.Cluster, assignment map[string]string) error

	// SplitCluster deletes oldID and inserts replacements with their
	// article assignment, atomically. If oldID no longer exists the
	// split aborts silently (no error) rather than fighting whatever
	// concurrent run already replaced it.
	SplitCluster(ctx context.Context, oldID string, replacements []domain.Cluster, assignment map[string]string) error

	// UpsertArticles is the external ingestor's write path. An existing
	// non-empty ImageURL is preserved; FetchedAt and Headline are always
	// updated (conflict rule).
	UpsertArticles(ctx context.Context, articles []domain.Article) error
}

// RefinerLocker is implemented by Store backends that can coordinate a
// CoherenceRefiner pass across processes. Both PostgresStore and
// MemoryStore implement it; MemoryStore's lock always succeeds since it
// has no cross-process audience.
type RefinerLocker interface {
	TryAcquireRefinerLock(ctx context.Context) (bool, error)
	ReleaseRefinerLock(ctx context.Context) error
}

// Clock is overridable for tests; production code calls time.Now.
var Clock = time.Now
