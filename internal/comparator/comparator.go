// Package comparator puts rates side by side at a common quantity and
// finds alternatives to a given rate.
package comparator

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"estimator/internal/calculator"
	"estimator/internal/domain"
	"estimator/internal/normalizer"
)

const (
	DefaultConcurrency = 4
	DefaultKeywords    = 3
	DefaultSimilar     = 5
	MaxSimilar         = 20
)

var hundred = decimal.NewFromInt(100)

// Searcher finds candidate rates for FindSimilar. *search.Engine satisfies it.
type Searcher interface {
	Search(ctx context.Context, raw string, f domain.Filters, limit int) ([]domain.SearchResult, error)
}

// Comparator compares rates through the cost calculator.
type Comparator struct {
	catalog     domain.CatalogReader
	calc        *calculator.Calculator
	searcher    Searcher
	normalizer  *normalizer.Normalizer
	concurrency int
	keywords    int
	log         *zap.Logger
}

type Option func(*Comparator)

// WithConcurrency bounds the number of rates calculated at once.
func WithConcurrency(n int) Option {
	return func(c *Comparator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithKeywords sets how many keywords of the source name seed FindSimilar.
func WithKeywords(n int) Option {
	return func(c *Comparator) {
		if n > 0 {
			c.keywords = n
		}
	}
}

// WithNormalizer sets the normalizer used to extract keywords.
func WithNormalizer(n *normalizer.Normalizer) Option {
	return func(c *Comparator) { c.normalizer = n }
}

func New(catalog domain.CatalogReader, calc *calculator.Calculator, searcher Searcher, log *zap.Logger, opts ...Option) *Comparator {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Comparator{
		catalog:     catalog,
		calc:        calc,
		searcher:    searcher,
		concurrency: DefaultConcurrency,
		keywords:    DefaultKeywords,
		log:         log.With(zap.String("component", "comparator")),
	}
	for _, o := range opts {
		o(c)
	}
	if c.normalizer == nil {
		c.normalizer = normalizer.New()
	}
	return c
}

// Compare calculates every rate at quantity and sorts the rows by total,
// cheapest first. Differences are relative to the cheapest row.
func (c *Comparator) Compare(ctx context.Context, codes []string, quantity float64) ([]domain.ComparisonRow, error) {
	if len(codes) == 0 {
		return nil, domain.InvalidInput("rate codes must not be empty")
	}
	if err := calculator.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	unique := dedupe(codes)
	if len(unique) == 0 {
		return nil, domain.InvalidInput("rate codes must not be blank")
	}
	costs, err := c.calculateAll(ctx, unique, quantity)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.ComparisonRow, len(costs))
	for i, cost := range costs {
		rows[i] = newRow(cost)
	}
	sortRows(rows)
	applyDifferences(rows[1:], rows[0].Total)
	rows[0].Difference = decimal.Zero
	rows[0].DifferencePercent = decimal.Zero

	c.log.Debug("compare", zap.Int("rates", len(rows)), zap.Float64("quantity", quantity))
	return rows, nil
}

// calculateAll runs the calculator for codes concurrently. Every code is
// attempted; the first failure in input order is returned.
func (c *Comparator) calculateAll(ctx context.Context, codes []string, quantity float64) ([]domain.CostResult, error) {
	costs := make([]domain.CostResult, len(codes))
	errs := make([]error, len(codes))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, code := range codes {
		g.Go(func() error {
			costs[i], errs[i] = c.calc.Calculate(ctx, code, quantity)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return costs, nil
}

func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

func newRow(cost domain.CostResult) domain.ComparisonRow {
	return domain.ComparisonRow{
		RateCode:     cost.RateCode,
		RateName:     cost.RateName,
		UnitType:     cost.UnitType,
		UnitQuantity: cost.UnitQuantity,
		CostPerUnit:  cost.CostPerUnit,
		Total:        cost.Total,
		Materials:    cost.Materials,
	}
}

// sortRows orders by total ascending, ties by rate code.
func sortRows(rows []domain.ComparisonRow) {
	slices.SortStableFunc(rows, func(a, b domain.ComparisonRow) int {
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c
		}
		return strings.Compare(a.RateCode, b.RateCode)
	})
}

// applyDifferences sets each row's difference against base. The percentage
// is zero when base is zero.
func applyDifferences(rows []domain.ComparisonRow, base decimal.Decimal) {
	for i := range rows {
		diff := rows[i].Total.Sub(base)
		rows[i].Difference = diff
		if base.IsZero() {
			rows[i].DifferencePercent = decimal.Zero
			continue
		}
		rows[i].DifferencePercent = diff.Div(base).Mul(hundred)
	}
}
