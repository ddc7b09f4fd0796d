package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"estimator/internal/domain"
	"estimator/internal/normalizer"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Strategy executes a raw query against some index of the catalog.
type Strategy interface {
	Name() string
	Search(ctx context.Context, raw string, f domain.Filters, limit int) ([]domain.SearchResult, error)
}

// ClampLimit applies the default to non-positive limits and silently caps
// the rest at MaxLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// Engine is the entry point for catalog searches.
type Engine struct {
	catalog  domain.CatalogReader
	strategy Strategy
	log      *zap.Logger
}

// NewEngine builds an engine over catalog. A nil strategy means full-text search.
func NewEngine(catalog domain.CatalogReader, strategy Strategy, log *zap.Logger) *Engine {
	if strategy == nil {
		strategy = NewFullText(catalog, normalizer.New())
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{catalog: catalog, strategy: strategy, log: log.With(zap.String("component", "search"))}
}

// StrategyName names the active strategy.
func (e *Engine) StrategyName() string { return e.strategy.Name() }

// Search returns up to limit rates matching raw, best first.
// No match is an empty result, not an error.
func (e *Engine) Search(ctx context.Context, raw string, f domain.Filters, limit int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.InvalidInput("search query is empty")
	}
	if f.MinCost != nil && f.MaxCost != nil && *f.MinCost > *f.MaxCost {
		return nil, domain.InvalidInput("min cost %v is greater than max cost %v", *f.MinCost, *f.MaxCost)
	}
	limit = ClampLimit(limit)
	res, err := e.strategy.Search(ctx, raw, f, limit)
	if err != nil {
		return nil, err
	}
	e.log.Debug("search",
		zap.String("strategy", e.strategy.Name()),
		zap.String("query", raw),
		zap.Int("limit", limit),
		zap.Int("results", len(res)))
	return res, nil
}

// SearchByCode matches rate codes exactly or by prefix, in code order.
func (e *Engine) SearchByCode(ctx context.Context, code string) ([]domain.SearchResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.InvalidInput("rate code is empty")
	}
	rates, err := e.catalog.SearchByCodePrefix(ctx, code)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SearchResult, len(rates))
	for i, r := range rates {
		out[i] = domain.NewSearchResult(r, 0)
	}
	return out, nil
}

// hydrate turns ranked hits into search results, keeping their order.
func hydrate(ctx context.Context, catalog domain.CatalogReader, hits []domain.IndexHit) ([]domain.SearchResult, error) {
	if len(hits) == 0 {
		return []domain.SearchResult{}, nil
	}
	codes := make([]string, len(hits))
	for i, h := range hits {
		codes[i] = h.RateCode
	}
	rates, err := catalog.GetRates(ctx, codes)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		r, ok := rates[h.RateCode]
		if !ok {
			return nil, domain.IndexDrift("index returned %s which is not in the catalog", h.RateCode)
		}
		out = append(out, domain.NewSearchResult(r, h.Score))
	}
	return out, nil
}
