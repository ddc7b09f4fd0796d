package comparator

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"estimator/internal/calculator"
	"estimator/internal/domain"
)

// SimilarOptions tune FindSimilar.
type SimilarOptions struct {
	// Quantity to compare at. Zero means the source rate's unit quantity.
	Quantity float64
	// AnyUnit admits candidates whose unit type differs from the source's.
	AnyUnit bool
}

// ClampSimilar applies DefaultSimilar to non-positive values and caps at MaxSimilar.
func ClampSimilar(n int) int {
	switch {
	case n <= 0:
		return DefaultSimilar
	case n > MaxSimilar:
		return MaxSimilar
	}
	return n
}

// FindSimilar returns the source rate followed by up to maxResults
// alternatives found by searching the first keywords of its name. The
// source row is the baseline: alternatives carry their difference from it,
// negative when cheaper, and are sorted by total.
//
// Alternatives are restricted to the source's unit type, so totals compare
// like with like; set opts.AnyUnit to search across all units.
func (c *Comparator) FindSimilar(ctx context.Context, code string, maxResults int, opts SimilarOptions) ([]domain.ComparisonRow, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.InvalidInput("rate code is empty")
	}
	maxResults = ClampSimilar(maxResults)
	source, err := c.catalog.GetRate(ctx, code)
	if err != nil {
		return nil, err
	}
	quantity := opts.Quantity
	if quantity == 0 {
		quantity = source.UnitQuantity
	}
	if err := calculator.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	srcCost, err := calculator.Scale(source, quantity)
	if err != nil {
		return nil, err
	}

	candidates, err := c.candidates(ctx, source, maxResults, opts)
	if err != nil {
		return nil, err
	}
	costs, err := c.calculateAll(ctx, candidates, quantity)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ComparisonRow, 0, len(costs)+1)
	rows = append(rows, newRow(srcCost))
	alternatives := make([]domain.ComparisonRow, len(costs))
	for i, cost := range costs {
		alternatives[i] = newRow(cost)
	}
	sortRows(alternatives)
	applyDifferences(alternatives, srcCost.Total)
	rows[0].Difference = decimal.Zero
	rows[0].DifferencePercent = decimal.Zero
	rows = append(rows, alternatives...)

	c.log.Debug("find similar",
		zap.String("rate_code", source.Code),
		zap.Int("alternatives", len(alternatives)))
	return rows, nil
}

// candidates returns up to limit rate codes similar to source, excluding it.
func (c *Comparator) candidates(ctx context.Context, source domain.Rate, limit int, opts SimilarOptions) ([]string, error) {
	keywords := c.normalizer.Keywords(source.FullName, c.keywords)
	if len(keywords) == 0 {
		text := source.SearchText
		if text == "" {
			text = domain.BuildSearchText(source)
		}
		keywords = c.normalizer.Keywords(text, c.keywords)
	}
	if len(keywords) == 0 {
		return nil, nil
	}

	var f domain.Filters
	if !opts.AnyUnit {
		f.UnitType = source.UnitType
	}
	found, err := c.searcher.Search(ctx, strings.Join(keywords, " "), f, limit+1)
	if errors.Is(err, domain.ErrInvalidInput) {
		c.log.Debug("no usable keywords", zap.String("rate_code", source.Code), zap.Strings("keywords", keywords))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, limit)
	for _, r := range found {
		if r.RateCode == source.Code {
			continue
		}
		codes = append(codes, r.RateCode)
		if len(codes) == limit {
			break
		}
	}
	return codes, nil
}
