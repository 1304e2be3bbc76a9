package embedding

import (
	"context"
	"hash/fnv"

	"github.com/indiabias/newsbias-pipeline/internal/vecmath"
)

// MockEmbedder generates a deterministic, L2-normalized vector from a
// hash of the input text. internal/app falls back to it when no embedding
// API key is configured, so the pipeline can run without network access.
type MockEmbedder struct {
	dims int
}

func NewMockEmbedder(dims int) *MockEmbedder {
	return &MockEmbedder{dims: dims}
}

func (m *MockEmbedder) Dimensions() int {
	return m.dims
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	v := make([]float32, m.dims)
	for i := range v {
		seed = seed*6364136223846793005 + 1442695040888963407
		v[i] = float32(int64(seed>>40)%1000) / 1000
	}

	return vecmath.L2Normalize(v), nil
}
