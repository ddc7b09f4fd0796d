package search

import (
	"context"

	"estimator/internal/domain"
	"estimator/internal/normalizer"
)

// FullText searches the catalog's inverted index.
type FullText struct {
	catalog    domain.CatalogReader
	normalizer *normalizer.Normalizer
}

func NewFullText(catalog domain.CatalogReader, n *normalizer.Normalizer) *FullText {
	return &FullText{catalog: catalog, normalizer: n}
}

func (ft *FullText) Name() string { return "fulltext" }

func (ft *FullText) Search(ctx context.Context, raw string, f domain.Filters, limit int) ([]domain.SearchResult, error) {
	q, err := ft.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	hits, err := ft.catalog.SearchIndex(ctx, q, f, limit)
	if err != nil {
		return nil, err
	}
	return hydrate(ctx, ft.catalog, hits)
}
