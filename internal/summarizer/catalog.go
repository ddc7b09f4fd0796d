// Package summarizer describes a catalog in one line: its size, the most
// common measurement units and the most frequent words in rate names.
package summarizer

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"estimator/internal/domain"
	"estimator/internal/normalizer"
)

const (
	defaultTopTerms = 5
	defaultTopUnits = 3
	batchSize       = 1000
)

// Summary is the frequency profile of a catalog.
type Summary struct {
	Rates int
	Units []Count
	Terms []Count
}

// Count is a value with the number of rates it occurs in.
type Count struct {
	Value string
	N     int
}

// FrequencySummarizer ranks name terms and unit types by how many rates use them.
type FrequencySummarizer struct {
	normalizer *normalizer.Normalizer
	topTerms   int
	topUnits   int
}

// NewFrequencySummarizer creates a summarizer. A nil normalizer uses the defaults.
func NewFrequencySummarizer(n *normalizer.Normalizer, topTerms int) *FrequencySummarizer {
	if n == nil {
		n = normalizer.New()
	}
	if topTerms <= 0 {
		topTerms = defaultTopTerms
	}
	return &FrequencySummarizer{normalizer: n, topTerms: topTerms, topUnits: defaultTopUnits}
}

// Summarize streams the catalog once and counts document frequencies.
func (s *FrequencySummarizer) Summarize(ctx context.Context, catalog domain.CatalogReader) (Summary, error) {
	terms := map[string]int{}
	units := map[string]int{}
	var sum Summary
	err := catalog.EachRate(ctx, batchSize, func(rates []domain.Rate) error {
		for _, r := range rates {
			sum.Rates++
			if r.UnitType != "" {
				units[r.UnitType]++
			}
			// a term counts once per rate
			for _, tok := range s.normalizer.Keywords(r.FullName, -1) {
				terms[tok]++
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("summarize catalog: %w", err)
	}
	sum.Units = top(units, s.topUnits)
	sum.Terms = top(terms, s.topTerms)
	return sum, nil
}

// top returns the n most frequent values, ties broken alphabetically.
func top(freq map[string]int, n int) []Count {
	out := make([]Count, 0, len(freq))
	for v, c := range freq {
		out = append(out, Count{Value: v, N: c})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.N, a.N); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})
	return out[:min(n, len(out))]
}

// String renders the summary as a single header line.
func (s Summary) String() string {
	if s.Rates == 0 {
		return "Catalog is empty. Load rates with `estimator load`."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d rates", s.Rates)
	if len(s.Units) > 0 {
		b.WriteString(" · units: ")
		b.WriteString(join(s.Units))
	}
	if len(s.Terms) > 0 {
		b.WriteString(" · common: ")
		b.WriteString(join(s.Terms))
	}
	return b.String()
}

func join(cs []Count) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("%s (%d)", c.Value, c.N)
	}
	return strings.Join(parts, ", ")
}
