package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"estimator/internal/domain"
	"estimator/internal/vectorstore"
)

// Storage is an in-memory vector store using brute-force cosine similarity.
// Upserting an existing rate code replaces its vector.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	items     []domain.VectorItem
	byCode    map[string]int
}

func NewStorage() *Storage { return &Storage{byCode: make(map[string]int)} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.items = nil
	s.byCode = make(map[string]int)
	return nil
}

func (s *Storage) Upsert(_ context.Context, items []domain.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		if len(it.Vector) != s.dimension {
			return vectorstore.ErrDimensionMismatch
		}
	}
	for _, it := range items {
		if i, ok := s.byCode[it.RateCode]; ok {
			s.items[i] = it
			continue
		}
		s.byCode[it.RateCode] = len(s.items)
		s.items = append(s.items, it)
	}
	return nil
}

func (s *Storage) Search(_ context.Context, vector []float64, topK int, f domain.Filters) ([]domain.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hits := make([]domain.VectorHit, 0, len(s.items))
	for _, it := range s.items {
		if !it.Matches(f) {
			continue
		}
		hits = append(hits, domain.VectorHit{RateCode: it.RateCode, Distance: vectorstore.CosineDistance(it.Vector, vector)})
	}
	slices.SortFunc(hits, vectorstore.CompareHits)
	return hits[:min(vectorstore.TopK(topK), len(hits))], nil
}

func (s *Storage) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.byCode = make(map[string]int)
	return nil
}

// Len returns the number of stored vectors.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
