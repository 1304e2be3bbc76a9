// Package embedding turns article text into the fixed-dimension,
// L2-normalized vectors the Clusterer and CoherenceRefiner compare by
// cosine similarity, simplified to the single-provider contract this
// pipeline needs: one Embedder, not a priority-ordered fallback
// registry.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/indiabias/newsbias-pipeline/internal/platform/observability"
	"github.com/indiabias/newsbias-pipeline/internal/vecmath"
)

// ErrEmptyResponse is returned when the embedding provider's response
// carries no vectors.
var ErrEmptyResponse = errors.New("empty embedding response")

// Embedder turns text into a mean-pooled, L2-normalized vector of fixed
// dimension D. Dimension is fixed for the lifetime of a Store: mixing
// dimensions corrupts stored embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

const rateLimiterBurst = 5

// Config configures the OpenAI-backed Embedder.
type Config struct {
	APIKey     string
	Model      string
	Dimensions int
	RateLimit  int // requests per second
}

// OpenAIEmbedder is the production Embedder, backed by an OpenAI-compatible
// embeddings endpoint via sashabaranov/go-openai.
type OpenAIEmbedder struct {
	client      *openai.Client
	model       string
	dimensions  int
	rateLimiter *rate.Limiter
}

func NewOpenAIEmbedder(cfg Config) *OpenAIEmbedder {
	rateLimit := cfg.RateLimit
	if rateLimit == 0 {
		rateLimit = 1
	}

	return &OpenAIEmbedder{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		dimensions:  cfg.Dimensions,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimiterBurst),
	}
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Embed implements the Embedder contract. The API already returns a
// mean-pooled sentence vector; Embed re-normalizes it to guard against a
// provider that doesn't guarantee unit norm, keeping stored embeddings
// at unit L2 norm within 1e-5.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limiter: %w", err)
	}

	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	}

	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	observability.EmbeddingRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}

	return vecmath.L2Normalize(resp.Data[0].Embedding), nil
}
