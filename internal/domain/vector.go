package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorItem is the embedding of one rate plus the attributes filters need.
type VectorItem struct {
	RateCode   string    `json:"rate_code"`
	UnitType   string    `json:"unit_type"`
	TotalCost  float64   `json:"total_cost"`
	Categories []string  `json:"categories,omitempty"`
	Vector     []float64 `json:"vector"`
}

// Matches evaluates f against the item's payload.
func (it VectorItem) Matches(f Filters) bool {
	return f.Match(it.UnitType, it.TotalCost, it.Categories)
}

// VectorHit is a nearest-neighbour match. Distance is cosine distance
// (1 - similarity): lower is better, matching the full-text convention.
type VectorHit struct {
	RateCode string
	Distance float64
}

// VectorStore persists rate embeddings and supports filtered similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, items []VectorItem) error
	Search(ctx context.Context, vector []float64, topK int, f Filters) ([]VectorHit, error)
	Clear(ctx context.Context) error
}
