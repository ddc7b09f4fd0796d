package search

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"estimator/internal/domain"
)

const buildBatch = 500

// SemanticOptions tune the vector strategy.
type SemanticOptions struct {
	// Threshold is the minimum cosine similarity a hit needs. Zero keeps every hit.
	Threshold float64
}

// Semantic ranks rates by embedding similarity to the query.
// The vector store must be populated with Build before searching.
type Semantic struct {
	catalog  domain.CatalogReader
	embedder domain.Embedder
	store    domain.VectorStore
	opts     SemanticOptions
	log      *zap.Logger

	mu    sync.RWMutex
	built bool
}

func NewSemantic(catalog domain.CatalogReader, embedder domain.Embedder, store domain.VectorStore, opts SemanticOptions, log *zap.Logger) *Semantic {
	if log == nil {
		log = zap.NewNop()
	}
	return &Semantic{
		catalog:  catalog,
		embedder: embedder,
		store:    store,
		opts:     opts,
		log:      log.With(zap.String("component", "semantic"), zap.String("embedder", embedder.Name())),
	}
}

func (s *Semantic) Name() string { return "semantic" }

// Build embeds every catalog rate and replaces the vector store contents.
// It returns the number of rates embedded.
func (s *Semantic) Build(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rates []domain.Rate
	if err := s.catalog.EachRate(ctx, buildBatch, func(batch []domain.Rate) error {
		rates = append(rates, batch...)
		return nil
	}); err != nil {
		return 0, err
	}
	if len(rates) == 0 {
		return 0, nil
	}
	corpus := make([]string, len(rates))
	for i, r := range rates {
		corpus[i] = searchText(r)
	}
	if err := s.embedder.Prepare(ctx, corpus); err != nil {
		return 0, fmt.Errorf("prepare embedder: %w", err)
	}

	items := make([]domain.VectorItem, 0, len(rates))
	for i, r := range rates {
		vec, err := s.embedder.Embed(ctx, corpus[i])
		if err != nil {
			return 0, fmt.Errorf("embed %s: %w", r.Code, err)
		}
		items = append(items, domain.VectorItem{
			RateCode:   r.Code,
			UnitType:   r.UnitType,
			TotalCost:  r.TotalCost,
			Categories: r.Hierarchy.Codes(),
			Vector:     vec,
		})
	}
	// Clear before Init: the Qdrant store drops the whole collection on Clear.
	if err := s.store.Clear(ctx); err != nil {
		return 0, fmt.Errorf("clear vector store: %w", err)
	}
	if err := s.store.Init(ctx, len(items[0].Vector)); err != nil {
		return 0, fmt.Errorf("init vector store: %w", err)
	}
	for start := 0; start < len(items); start += buildBatch {
		end := min(start+buildBatch, len(items))
		if err := s.store.Upsert(ctx, items[start:end]); err != nil {
			return 0, fmt.Errorf("upsert vectors: %w", err)
		}
	}
	s.built = true
	s.log.Info("vector index built", zap.Int("rates", len(items)), zap.Int("dimension", len(items[0].Vector)))
	return len(items), nil
}

// corpusIndependent is implemented by embedders whose vectors do not depend
// on the corpus passed to Prepare.
type corpusIndependent interface {
	CorpusIndependent() bool
}

// counter is implemented by vector stores that keep vectors between runs.
type counter interface {
	Count(ctx context.Context) (int, error)
}

// Attach reuses the vectors already in the store instead of rebuilding them.
// It succeeds only when the embedder does not need Prepare and the store
// holds exactly one vector per catalog rate. It reports whether the
// existing vectors are in use; otherwise the caller should Build.
func (s *Semantic) Attach(ctx context.Context, rates int) (bool, error) {
	ci, ok := s.embedder.(corpusIndependent)
	if !ok || !ci.CorpusIndependent() {
		return false, nil
	}
	c, ok := s.store.(counter)
	if !ok {
		return false, nil
	}
	n, err := c.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count vectors: %w", err)
	}
	if rates == 0 || n != rates {
		s.log.Info("stored vectors do not match the catalog, rebuild needed", zap.Int("vectors", n), zap.Int("rates", rates))
		return false, nil
	}
	s.mu.Lock()
	s.built = true
	s.mu.Unlock()
	s.log.Info("vector index attached", zap.Int("vectors", n))
	return true, nil
}

// Built reports whether Build or Attach has completed.
func (s *Semantic) Built() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.built
}

func (s *Semantic) Search(ctx context.Context, raw string, f domain.Filters, limit int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.built {
		return nil, fmt.Errorf("semantic index is not built")
	}
	vec, err := s.embedder.Embed(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if isZero(vec) {
		return []domain.SearchResult{}, nil
	}
	found, err := s.store.Search(ctx, vec, limit, f)
	if err != nil {
		return nil, err
	}
	hits := make([]domain.IndexHit, 0, len(found))
	for _, h := range found {
		if s.opts.Threshold > 0 && 1-h.Distance < s.opts.Threshold {
			continue
		}
		hits = append(hits, domain.IndexHit{RateCode: h.RateCode, Score: h.Distance})
	}
	return hydrate(ctx, s.catalog, hits)
}

func searchText(r domain.Rate) string {
	if r.SearchText != "" {
		return r.SearchText
	}
	return domain.BuildSearchText(r)
}

func isZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
