// Package enrich orchestrates the Embedder and EntityExtractor into a
// single fused vector plus entity list per article.
package enrich

import (
	"context"
	"strings"

	"github.com/indiabias/newsbias-pipeline/internal/domain"
	"github.com/indiabias/newsbias-pipeline/internal/platform/observability"
	"github.com/indiabias/newsbias-pipeline/internal/vecmath"
)

// Embedder is the subset of internal/embedding.Embedder the Enricher
// needs; kept narrow so tests don't have to depend on the embedding
// package's OpenAI wiring.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EntityExtractor is the subset of internal/entity.Extractor the
// Enricher needs.
type EntityExtractor interface {
	Enabled() bool
	Extract(text string) []string
}

const (
	textWeight   = 0.7
	entityWeight = 0.3
)

// Enricher fuses a text embedding with an entity-derived embedding into
// one vector per article.
type Enricher struct {
	embedder  Embedder
	extractor EntityExtractor
}

func New(embedder Embedder, extractor EntityExtractor) *Enricher {
	return &Enricher{embedder: embedder, extractor: extractor}
}

// EnrichAll enriches articles sequentially, since the model instances
// backing Embedder/EntityExtractor are not required to be reentrant.
// A per-article failure is isolated: that article comes back with its
// original (possibly nil) embedding and the pipeline continues.
func (e *Enricher) EnrichAll(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))

	for i, a := range articles {
		out[i] = e.Enrich(ctx, a)
	}

	return out
}

// Enrich embeds an article's text, extracts entities if the extractor
// is enabled, and fuses an entity embedding into the text embedding
// when entities were found.
func (e *Enricher) Enrich(ctx context.Context, a domain.Article) domain.Article {
	text := a.Headline + ". " + a.Summary

	vText, err := e.embedder.Embed(ctx, text)
	if err != nil {
		observability.EnrichmentFailuresTotal.Inc()
		return a
	}

	var entities []string
	if e.extractor != nil && e.extractor.Enabled() {
		entities = e.extractor.Extract(text)
	}

	v := vText

	if len(entities) > 0 {
		vEnt, err := e.embedder.Embed(ctx, strings.Join(entities, " "))
		if err == nil {
			v = vecmath.WeightedSum(vText, textWeight, vEnt, entityWeight)
		}
	}

	a.Embedding = v
	a.Entities = entities

	return a
}
