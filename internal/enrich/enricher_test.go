package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}

	if v, ok := f.vectors[text]; ok {
		return v, nil
	}

	return []float32{1, 0}, nil
}

type fakeExtractor struct {
	enabled  bool
	entities []string
}

func (f *fakeExtractor) Enabled() bool {
	return f.enabled
}

func (f *fakeExtractor) Extract(text string) []string {
	return f.entities
}

func TestEnrichFusesWhenEntitiesPresent(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"h. s":  {1, 0},
		"Delhi": {0, 1},
	}}
	extractor := &fakeExtractor{enabled: true, entities: []string{"Delhi"}}

	e := New(embedder, extractor)
	got := e.Enrich(context.Background(), domain.Article{Headline: "h", Summary: "s"})

	assert.Equal(t, []string{"Delhi"}, got.Entities)
	assert.NotEqual(t, []float32{1, 0}, got.Embedding)
	assert.Greater(t, got.Embedding[1], float32(0))
}

func TestEnrichUsesTextVectorWhenNoEntities(t *testing.T) {
	embedder := &fakeEmbedder{}
	extractor := &fakeExtractor{enabled: true, entities: nil}

	e := New(embedder, extractor)
	got := e.Enrich(context.Background(), domain.Article{Headline: "h", Summary: "s"})

	assert.Equal(t, []float32{1, 0}, got.Embedding)
	assert.Empty(t, got.Entities)
}

func TestEnrichUsesTextVectorWhenExtractorDisabled(t *testing.T) {
	embedder := &fakeEmbedder{}
	extractor := &fakeExtractor{enabled: false, entities: []string{"Delhi"}}

	e := New(embedder, extractor)
	got := e.Enrich(context.Background(), domain.Article{Headline: "h", Summary: "s"})

	assert.Equal(t, []float32{1, 0}, got.Embedding)
}

func TestEnrichIsolatesPerArticleFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("boom")}
	e := New(embedder, &fakeExtractor{enabled: true})

	original := domain.Article{ID: "a1", Headline: "h", Summary: "s"}
	got := e.Enrich(context.Background(), original)

	assert.Nil(t, got.Embedding)
	assert.Equal(t, original.ID, got.ID)
}

func TestEnrichAllProcessesEveryArticle(t *testing.T) {
	embedder := &fakeEmbedder{}
	e := New(embedder, &fakeExtractor{enabled: false})

	articles := []domain.Article{{ID: "a1"}, {ID: "a2"}}
	got := e.EnrichAll(context.Background(), articles)

	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "a2", got[1].ID)
}
