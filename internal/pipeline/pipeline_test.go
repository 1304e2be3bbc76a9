package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
	"github.com/indiabias/newsbias-pipeline/internal/labeler"
)

type fakeStore struct {
	mu          sync.Mutex
	unclustered []domain.Article
	enriched    []domain.Article
	committed   []domain.Cluster
	assignment  map[string]string
	persistErr  error
	commitErr   error
}

func (f *fakeStore) SelectUnclustered(ctx context.Context, maxAgeHours, limit int) ([]domain.Article, error) {
	return f.unclustered, nil
}

func (f *fakeStore) PersistEnrichment(ctx context.Context, articles []domain.Article) error {
	if f.persistErr != nil {
		return f.persistErr
	}

	f.mu.Lock()
	f.enriched = articles
	f.mu.Unlock()

	return nil
}

func (f *fakeStore) CommitClusters(ctx context.Context, clusters []domain.Cluster, assignment map[string]string) error {
	if f.commitErr != nil {
		return f.commitErr
	}

	f.mu.Lock()
	f.committed = clusters
	f.assignment = assignment
	f.mu.Unlock()

	return nil
}

type fakeEnricher struct{}

func (fakeEnricher) EnrichAll(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	for i, a := range articles {
		a.Embedding = []float32{1, 0}
		out[i] = a
	}

	return out
}

type fakeLabeler struct{}

func (fakeLabeler) LabelBatches(ctx context.Context, memberSets [][]domain.Article) ([]labeler.Label, error) {
	out := make([]labeler.Label, len(memberSets))
	for i := range memberSets {
		out[i] = labeler.Label{Headline: "h", Summary: "s", Category: domain.CategoryGeneral}
	}

	return out, nil
}

type fakeRefiner struct {
	calls int
}

func (f *fakeRefiner) Refine(ctx context.Context) error {
	f.calls++
	return nil
}

func testArticles(n int) []domain.Article {
	t0 := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	out := make([]domain.Article, n)
	for i := range out {
		out[i] = domain.Article{ID: "a" + string(rune('0'+i)), Headline: "headline", PubDate: t0.Add(time.Duration(i) * time.Minute)}
	}

	return out
}

func TestRunSkipsToRefinerBelowMinimum(t *testing.T) {
	store := &fakeStore{unclustered: testArticles(1)}
	refiner := &fakeRefiner{}

	c := New(store, fakeEnricher{}, fakeLabeler{}, refiner, Config{UnclusteredMaxAgeHours: 72, UnclusteredBatchLimit: 50}, zerolog.Nop())

	result, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.ClustersGenerated)
	assert.Equal(t, 1, refiner.calls)
	assert.Nil(t, store.committed)
}

func TestRunEnrichesClustersLabelsAndCommits(t *testing.T) {
	store := &fakeStore{unclustered: testArticles(3)}
	refiner := &fakeRefiner{}

	c := New(store, fakeEnricher{}, fakeLabeler{}, refiner, Config{UnclusteredMaxAgeHours: 72, UnclusteredBatchLimit: 50}, zerolog.Nop())

	result, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ClustersGenerated)
	assert.Len(t, store.committed, 1)
	assert.Len(t, store.assignment, 3)
	assert.Equal(t, 1, refiner.calls)
}

func TestRunAbortsOnPersistEnrichmentFailure(t *testing.T) {
	store := &fakeStore{unclustered: testArticles(3), persistErr: assertError("persist failed")}
	c := New(store, fakeEnricher{}, fakeLabeler{}, &fakeRefiner{}, Config{UnclusteredMaxAgeHours: 72, UnclusteredBatchLimit: 50}, zerolog.Nop())

	_, err := c.Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, store.committed)
}

func TestRunAbortsOnCommitFailure(t *testing.T) {
	store := &fakeStore{unclustered: testArticles(3), commitErr: assertError("commit failed")}
	c := New(store, fakeEnricher{}, fakeLabeler{}, &fakeRefiner{}, Config{UnclusteredMaxAgeHours: 72, UnclusteredBatchLimit: 50}, zerolog.Nop())

	_, err := c.Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, store.committed)
}

func TestRunRejectsConcurrentInvocation(t *testing.T) {
	store := &fakeStore{unclustered: testArticles(3)}
	c := New(store, fakeEnricher{}, fakeLabeler{}, &fakeRefiner{}, Config{UnclusteredMaxAgeHours: 72, UnclusteredBatchLimit: 50}, zerolog.Nop())

	c.mu.Lock()
	_, err := c.Run(context.Background())
	c.mu.Unlock()

	assert.ErrorIs(t, err, ErrRunInProgress)
}

type stringErr string

func (e stringErr) Error() string { return string(e) }

func assertError(msg string) error {
	return stringErr(msg)
}
