package calculator_test

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"estimator/internal/calculator"
	"estimator/internal/catalog/catalogtest"
	"estimator/internal/domain"
	"estimator/internal/domain/mocks"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestCalculateScalesProportionally(t *testing.T) {
	calc := calculator.New(catalogtest.OpenSeeded(t), nil)

	res, err := calc.Calculate(context.Background(), "X-1", 150)
	require.NoError(t, err)
	assert.Equal(t, "X-1", res.RateCode)
	assert.Equal(t, "м2", res.UnitType)
	assertDecimal(t, "1.5", res.ScaleFactor)
	assertDecimal(t, "1383.2018", res.CostPerUnit)
	assertDecimal(t, "207480.27", res.Total)
	assertDecimal(t, "52678.2", res.Materials)
	assertDecimal(t, "154802.07", res.Resources)
	assertDecimal(t, "24897.63", res.Overhead)
	assertDecimal(t, "16598.42", res.Profit)
	assertDecimal(t, "248976.32", res.GrandTotal)
}

func TestCalculateAtBaseQuantityIsIdentity(t *testing.T) {
	ctx := context.Background()
	calc := calculator.New(catalogtest.OpenSeeded(t), nil)
	for _, rec := range catalogtest.Fixtures() {
		res, err := calc.Calculate(ctx, rec.Rate.Code, rec.Rate.UnitQuantity)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromFloat(rec.Rate.TotalCost).Round(2).Equal(res.Total), rec.Rate.Code)
		assertDecimal(t, "1", res.ScaleFactor)
	}
}

func TestCalculateIsLinear(t *testing.T) {
	ctx := context.Background()
	calc := calculator.New(catalogtest.OpenSeeded(t), nil)

	one, err := calc.Calculate(ctx, "ГЭСН08-02-001-01", 1)
	require.NoError(t, err)
	for _, q := range []float64{2, 3.5, 10, 0.25} {
		res, err := calc.Calculate(ctx, "ГЭСН08-02-001-01", q)
		require.NoError(t, err)
		want := one.CostPerUnit.Mul(decimal.NewFromFloat(q)).Round(2)
		assert.True(t, want.Equal(res.Total), "q=%v want %s got %s", q, want, res.Total)
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	calc := calculator.New(catalogtest.OpenSeeded(t), nil)
	a, err := calc.Calculate(ctx, "X-3", 42.5)
	require.NoError(t, err)
	b, err := calc.Calculate(ctx, "X-3", 42.5)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCalculateErrors(t *testing.T) {
	ctx := context.Background()
	calc := calculator.New(catalogtest.OpenSeeded(t), nil)

	for _, q := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := calc.Calculate(ctx, "X-1", q)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "q=%v", q)
	}
	_, err := calc.Calculate(ctx, "", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = calc.Calculate(ctx, "NOPE-1", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "NOPE-1")
}

func TestCalculateRejectsInvalidUnitQuantity(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockCatalogReader(ctrl)
	reader.EXPECT().GetRate(gomock.Any(), "BAD").Return(domain.Rate{Code: "BAD", UnitQuantity: 0, TotalCost: 10}, nil)

	_, err := calculator.New(reader, nil).Calculate(context.Background(), "BAD", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidRateData)
}

func TestRoundingIsHalfAwayFromZero(t *testing.T) {
	res, err := calculator.Scale(domain.Rate{Code: "R", UnitQuantity: 1, TotalCost: 0.125, MaterialsCost: 0.005}, 1)
	require.NoError(t, err)
	assertDecimal(t, "0.13", res.Total)
	assertDecimal(t, "0.01", res.Materials)
}

func TestBreakdown(t *testing.T) {
	calc := calculator.New(catalogtest.OpenSeeded(t), nil)

	b, err := calc.Breakdown(context.Background(), "X-1", 150, calculator.BreakdownOptions{})
	require.NoError(t, err)
	assertDecimal(t, "207480.27", b.Total)
	require.Len(t, b.Lines, 4)

	labor := b.Lines[0]
	assert.Equal(t, "1-100-20", labor.Code)
	assert.Equal(t, domain.ResourceLabor, labor.Kind)
	assertDecimal(t, "125.4", labor.OriginalQuantity)
	assertDecimal(t, "188.1", labor.AdjustedQuantity)
	assertDecimal(t, "500", labor.UnitCost)
	assertDecimal(t, "94050", labor.AdjustedCost)
	assert.Equal(t, domain.ResourceMachinery, b.Lines[2].Kind)

	require.Len(t, b.Subtotals, 3)
	assert.Equal(t, domain.KindSubtotal{Kind: domain.ResourceLabor, Lines: 1, Cost: b.Subtotals[0].Cost}, b.Subtotals[0])
	assertDecimal(t, "94050", b.Subtotals[0].Cost)
	assert.Equal(t, domain.ResourceMaterial, b.Subtotals[1].Kind)
	assert.Equal(t, 2, b.Subtotals[1].Lines)
	assertDecimal(t, "52678.35", b.Subtotals[1].Cost)
	assertDecimal(t, "787.5", b.Subtotals[2].Cost)

	assert.Equal(t, []string{"Разметка мест установки", "Установка каркаса", "Обшивка листами"}, b.WorkSteps)
}

func TestBreakdownSortByCost(t *testing.T) {
	calc := calculator.New(catalogtest.OpenSeeded(t), nil)

	b, err := calc.Breakdown(context.Background(), "X-1", 150, calculator.BreakdownOptions{SortByCost: true})
	require.NoError(t, err)
	var got []string
	for _, l := range b.Lines {
		got = append(got, l.Code)
	}
	assert.Equal(t, []string{"1-100-20", "М101-1", "М101-2", "1-91.05"}, got)
}

func TestBreakdownWithoutResources(t *testing.T) {
	calc := calculator.New(catalogtest.OpenSeeded(t), nil)

	b, err := calc.Breakdown(context.Background(), "X-2", 1, calculator.BreakdownOptions{})
	require.NoError(t, err)
	assert.Empty(t, b.Lines)
	assert.Empty(t, b.Subtotals)
	assertDecimal(t, "1650", b.Total)
}
