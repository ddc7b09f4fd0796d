// Package calculator rescales a rate's base economics to arbitrary work
// quantities. All arithmetic is decimal; rounding happens on output only.
package calculator

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"estimator/internal/composition"
	"estimator/internal/domain"
)

// MoneyPlaces is the number of decimal places money is rounded to.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Calculator computes costs for rates read from the catalog.
type Calculator struct {
	catalog domain.CatalogReader
	steps   *composition.Splitter
	log     *zap.Logger
}

func New(catalog domain.CatalogReader, log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{
		catalog: catalog,
		steps:   composition.NewSplitter(),
		log:     log.With(zap.String("component", "calculator")),
	}
}

// ValidateQuantity rejects quantities that are not finite and positive.
func ValidateQuantity(quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return domain.InvalidInput("quantity must be a finite number greater than zero, got %v", quantity)
	}
	return nil
}

// Calculate scales the rate identified by code to quantity units of its unit type.
func (c *Calculator) Calculate(ctx context.Context, code string, quantity float64) (domain.CostResult, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return domain.CostResult{}, err
	}
	rate, err := c.rate(ctx, code)
	if err != nil {
		return domain.CostResult{}, err
	}
	return Scale(rate, quantity)
}

// Scale computes the cost of quantity units of an already loaded rate.
func Scale(rate domain.Rate, quantity float64) (domain.CostResult, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return domain.CostResult{}, err
	}
	if rate.UnitQuantity <= 0 || math.IsNaN(rate.UnitQuantity) || math.IsInf(rate.UnitQuantity, 0) {
		return domain.CostResult{}, domain.InvalidRateData("rate %s has invalid unit quantity %v", rate.Code, rate.UnitQuantity)
	}
	q := decimal.NewFromFloat(quantity)
	uq := decimal.NewFromFloat(rate.UnitQuantity)
	scale := func(base float64) decimal.Decimal {
		return decimal.NewFromFloat(base).Mul(q).Div(uq)
	}

	total := scale(rate.TotalCost)
	overhead := percentOf(total, rate.OverheadRate)
	profit := percentOf(total, rate.ProfitMargin)
	res := domain.CostResult{
		RateCode:     rate.Code,
		RateName:     rate.FullName,
		ShortName:    rate.ShortName,
		UnitType:     rate.UnitType,
		UnitQuantity: rate.UnitQuantity,
		Quantity:     q,
		ScaleFactor:  q.Div(uq),
		CostPerUnit:  decimal.NewFromFloat(rate.TotalCost).Div(uq),
		BaseTotal:    decimal.NewFromFloat(rate.TotalCost),
		Total:        total.Round(MoneyPlaces),
		Materials:    scale(rate.MaterialsCost).Round(MoneyPlaces),
		Resources:    scale(rate.ResourcesCost).Round(MoneyPlaces),
		Overhead:     overhead,
		Profit:       profit,
	}
	res.GrandTotal = res.Total.Add(res.Overhead).Add(res.Profit)
	return res, nil
}

func percentOf(amount decimal.Decimal, pct float64) decimal.Decimal {
	if pct == 0 {
		return decimal.Zero
	}
	return amount.Mul(decimal.NewFromFloat(pct)).Div(hundred).Round(MoneyPlaces)
}

// BreakdownOptions control the shape of a breakdown.
type BreakdownOptions struct {
	// SortByCost orders lines by descending adjusted cost instead of catalog order.
	SortByCost bool
}

// Breakdown is Calculate plus every resource line scaled by the same factor.
func (c *Calculator) Breakdown(ctx context.Context, code string, quantity float64, opts BreakdownOptions) (domain.Breakdown, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return domain.Breakdown{}, err
	}
	rate, err := c.rate(ctx, code)
	if err != nil {
		return domain.Breakdown{}, err
	}
	cost, err := Scale(rate, quantity)
	if err != nil {
		return domain.Breakdown{}, err
	}
	resources, err := c.catalog.GetResources(ctx, rate.Code)
	if err != nil {
		return domain.Breakdown{}, err
	}

	lines := make([]domain.ResourceLine, len(resources))
	sums := make(map[domain.ResourceKind]decimal.Decimal)
	counts := make(map[domain.ResourceKind]int)
	var kinds []domain.ResourceKind
	for i, r := range resources {
		kind := domain.ClassifyResource(r.Type, r.Code)
		adjusted := decimal.NewFromFloat(r.TotalCost).Mul(cost.ScaleFactor)
		lines[i] = domain.ResourceLine{
			Code:             r.Code,
			Name:             r.Name,
			Type:             r.Type,
			Kind:             kind,
			Unit:             r.Unit,
			OriginalQuantity: decimal.NewFromFloat(r.Quantity),
			AdjustedQuantity: decimal.NewFromFloat(r.Quantity).Mul(cost.ScaleFactor),
			UnitCost:         decimal.NewFromFloat(r.UnitCost),
			AdjustedCost:     adjusted,
		}
		if _, ok := sums[kind]; !ok {
			kinds = append(kinds, kind)
		}
		sums[kind] = sums[kind].Add(adjusted)
		counts[kind]++
	}
	if opts.SortByCost {
		slices.SortStableFunc(lines, func(a, b domain.ResourceLine) int {
			if d := b.AdjustedCost.Cmp(a.AdjustedCost); d != 0 {
				return d
			}
			return cmp.Compare(a.Code, b.Code)
		})
	}
	subtotals := make([]domain.KindSubtotal, len(kinds))
	for i, k := range kinds {
		subtotals[i] = domain.KindSubtotal{Kind: k, Lines: counts[k], Cost: sums[k].Round(MoneyPlaces)}
	}

	c.log.Debug("breakdown",
		zap.String("rate_code", rate.Code),
		zap.Float64("quantity", quantity),
		zap.Int("resources", len(lines)))
	return domain.Breakdown{
		CostResult: cost,
		Lines:      lines,
		Subtotals:  subtotals,
		WorkSteps:  c.steps.Split(rate.Composition),
	}, nil
}

func (c *Calculator) rate(ctx context.Context, code string) (domain.Rate, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Rate{}, domain.InvalidInput("rate code is empty")
	}
	return c.catalog.GetRate(ctx, code)
}
