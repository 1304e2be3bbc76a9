package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
)

func TestMemoryStoreSelectUnclusteredFiltersAgeAndClustered(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	old := domain.Article{ID: uuid.New().String(), URL: "https://a", PubDate: time.Now().Add(-100 * time.Hour)}
	fresh := domain.Article{ID: uuid.New().String(), URL: "https://b", PubDate: time.Now().Add(-1 * time.Hour)}
	clustered := domain.Article{ID: uuid.New().String(), URL: "https://c", PubDate: time.Now(), ClusterID: "x"}

	require.NoError(t, s.UpsertArticles(ctx, []domain.Article{old, fresh, clustered}))

	got, err := s.SelectUnclustered(ctx, 72, 50)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, fresh.ID, got[0].ID)
}

func TestMemoryStoreUpsertPreservesImageURL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id := uuid.New().String()
	first := domain.Article{ID: id, URL: "https://a", Headline: "v1", ImageURL: "https://img", PubDate: time.Now()}
	require.NoError(t, s.UpsertArticles(ctx, []domain.Article{first}))

	second := domain.Article{ID: uuid.New().String(), URL: "https://a", Headline: "v2", ImageURL: ""}
	require.NoError(t, s.UpsertArticles(ctx, []domain.Article{second}))

	got, err := s.SelectUnclustered(ctx, 72, 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v2", got[0].Headline)
	assert.Equal(t, "https://img", got[0].ImageURL)
}

func TestMemoryStoreCommitAndLoadClusters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	article := domain.Article{ID: uuid.New().String(), URL: "https://a", PubDate: time.Now()}
	require.NoError(t, s.UpsertArticles(ctx, []domain.Article{article}))

	cluster := domain.Cluster{ID: uuid.New().String(), Headline: "h", CreatedAt: time.Now()}
	require.NoError(t, s.CommitClusters(ctx, []domain.Cluster{cluster}, map[string]string{article.ID: cluster.ID}))

	clusters, err := s.LoadRecentClusters(ctx, 24)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, cluster.ID, clusters[0].ID)

	members, err := s.LoadClusterArticles(ctx, cluster.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, article.ID, members[0].ID)
}

func TestMemoryStoreSplitClusterAbortsSilentlyIfGone(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.SplitCluster(ctx, "does-not-exist", []domain.Cluster{{ID: uuid.New().String()}}, nil)
	assert.NoError(t, err)

	clusters, err := s.LoadRecentClusters(ctx, 24)
	require.NoError(t, err)
	assert.Len(t, clusters, 0)
}

func TestMemoryStoreSplitClusterReplacesExisting(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	article := domain.Article{ID: uuid.New().String(), URL: "https://a", PubDate: time.Now()}
	require.NoError(t, s.UpsertArticles(ctx, []domain.Article{article}))

	old := domain.Cluster{ID: uuid.New().String(), Headline: "old", CreatedAt: time.Now()}
	require.NoError(t, s.CommitClusters(ctx, []domain.Cluster{old}, map[string]string{article.ID: old.ID}))

	replacement := domain.Cluster{ID: uuid.New().String(), Headline: "new", CreatedAt: time.Now()}
	require.NoError(t, s.SplitCluster(ctx, old.ID, []domain.Cluster{replacement}, map[string]string{article.ID: replacement.ID}))

	clusters, err := s.LoadRecentClusters(ctx, 24)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, replacement.ID, clusters[0].ID)

	members, err := s.LoadClusterArticles(ctx, replacement.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestMemoryStorePersistEnrichmentSkipsUnknownArticle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.PersistEnrichment(ctx, []domain.Article{{ID: "unknown", Embedding: []float32{1}}})
	assert.NoError(t, err)
}
