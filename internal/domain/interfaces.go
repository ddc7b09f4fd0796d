package domain

import "context"

//go:generate mockgen -destination=mocks/mock_catalog.go -package=mocks estimator/internal/domain CatalogReader

// CatalogReader is the read side of the rate catalog shared by every component.
// Implementations must be safe for concurrent use.
type CatalogReader interface {
	GetRate(ctx context.Context, code string) (Rate, error)
	// GetRates returns the rates that exist among codes; missing codes are absent from the map.
	GetRates(ctx context.Context, codes []string) (map[string]Rate, error)
	GetResources(ctx context.Context, code string) ([]Resource, error)
	// SearchIndex returns hits ordered by CompareByRelevance, filters applied before limit.
	SearchIndex(ctx context.Context, q Query, f Filters, limit int) ([]IndexHit, error)
	// SearchByCodePrefix matches codes exactly or by prefix, ascending by code.
	SearchByCodePrefix(ctx context.Context, prefix string) ([]Rate, error)
	// EachRate streams every rate in batches of at most batchSize.
	EachRate(ctx context.Context, batchSize int, fn func([]Rate) error) error
}

// CatalogWriter is the bulk-load boundary. Every write updates the search
// index in the same transaction.
type CatalogWriter interface {
	UpsertRate(ctx context.Context, rec RateRecord) error
	BulkLoad(ctx context.Context, recs []RateRecord) error
	DeleteRate(ctx context.Context, code string) error
}
