package domain

import (
	"cmp"
	"strings"
)

// Filters are optional structured constraints on a search. All set fields are ANDed.
type Filters struct {
	// UnitType matches exactly.
	UnitType string `json:"unit_type,omitempty"`
	// MinCost and MaxCost bound total_cost inclusively.
	MinCost *float64 `json:"min_cost,omitempty"`
	MaxCost *float64 `json:"max_cost,omitempty"`
	// Category matches any hierarchy level code exactly or by prefix.
	Category string `json:"category,omitempty"`
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.UnitType == "" && f.MinCost == nil && f.MaxCost == nil && f.Category == ""
}

// Match evaluates the filters against a rate's filterable attributes.
func (f Filters) Match(unitType string, totalCost float64, hierarchyCodes []string) bool {
	if f.UnitType != "" && unitType != f.UnitType {
		return false
	}
	if f.MinCost != nil && totalCost < *f.MinCost {
		return false
	}
	if f.MaxCost != nil && totalCost > *f.MaxCost {
		return false
	}
	if f.Category != "" {
		for _, c := range hierarchyCodes {
			if strings.HasPrefix(c, f.Category) {
				return true
			}
		}
		return false
	}
	return true
}

// IndexHit is a raw match from the catalog's full-text index.
type IndexHit struct {
	RateCode string
	Score    float64
}

func (h IndexHit) relevance() (float64, string) { return h.Score, h.RateCode }

// SearchResult is the projection of a rate returned by searches.
type SearchResult struct {
	RateCode     string  `json:"rate_code"`
	FullName     string  `json:"full_name"`
	ShortName    string  `json:"short_name,omitempty"`
	UnitType     string  `json:"unit_type"`
	UnitQuantity float64 `json:"unit_quantity"`
	CostPerUnit  float64 `json:"cost_per_unit"`
	TotalCost    float64 `json:"total_cost"`
	Score        float64 `json:"score"`
}

func (r SearchResult) relevance() (float64, string) { return r.Score, r.RateCode }

// NewSearchResult projects a rate into a search result with the given score.
func NewSearchResult(r Rate, score float64) SearchResult {
	return SearchResult{
		RateCode:     r.Code,
		FullName:     r.FullName,
		ShortName:    r.ShortName,
		UnitType:     r.UnitType,
		UnitQuantity: r.UnitQuantity,
		CostPerUnit:  r.CostPerUnit(),
		TotalCost:    r.TotalCost,
		Score:        score,
	}
}

// Ranked is anything ordered by relevance.
type Ranked interface {
	IndexHit | SearchResult
	relevance() (float64, string)
}

// CompareByRelevance orders by relevance score ascending (lower is a better
// match, zero is perfect) and breaks ties by rate code ascending.
// Every ranking in the module goes through this function.
func CompareByRelevance[T Ranked](a, b T) int {
	sa, ca := a.relevance()
	sb, cb := b.relevance()
	if c := cmp.Compare(sa, sb); c != 0 {
		return c
	}
	return strings.Compare(ca, cb)
}
