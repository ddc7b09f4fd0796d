package search

import (
	"context"

	"go.uber.org/zap"

	"estimator/internal/domain"
)

// Hybrid lists semantic results first, then the full-text results not
// already present, each leg in its own order. A failing semantic leg
// degrades to full-text only.
type Hybrid struct {
	semantic Strategy
	fulltext Strategy
	log      *zap.Logger
}

func NewHybrid(semantic, fulltext Strategy, log *zap.Logger) *Hybrid {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hybrid{semantic: semantic, fulltext: fulltext, log: log}
}

func (h *Hybrid) Name() string { return "hybrid" }

func (h *Hybrid) Search(ctx context.Context, raw string, f domain.Filters, limit int) ([]domain.SearchResult, error) {
	lexical, err := h.fulltext.Search(ctx, raw, f, limit)
	if err != nil {
		return nil, err
	}
	vector, err := h.semantic.Search(ctx, raw, f, limit)
	if err != nil {
		h.log.Warn("semantic search failed, using full-text only", zap.Error(err))
		return lexical, nil
	}

	seen := make(map[string]struct{}, len(lexical)+len(vector))
	merged := make([]domain.SearchResult, 0, len(lexical)+len(vector))
	for _, list := range [][]domain.SearchResult{vector, lexical} {
		for _, r := range list {
			if _, ok := seen[r.RateCode]; ok {
				continue
			}
			seen[r.RateCode] = struct{}{}
			merged = append(merged, r)
		}
	}
	// Scores of the two legs are on different scales, so the legs are
	// concatenated rather than re-ranked.
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}
