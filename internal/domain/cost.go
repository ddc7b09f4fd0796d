package domain

import "github.com/shopspring/decimal"

// CostResult is a rate's economics rescaled to a requested quantity.
// Total, Materials, Resources, Overhead, Profit and GrandTotal are rounded to
// cents; ScaleFactor and CostPerUnit are kept unrounded.
type CostResult struct {
	RateCode     string
	RateName     string
	ShortName    string
	UnitType     string
	UnitQuantity float64
	Quantity     decimal.Decimal
	ScaleFactor  decimal.Decimal
	CostPerUnit  decimal.Decimal
	BaseTotal    decimal.Decimal
	Total        decimal.Decimal
	Materials    decimal.Decimal
	Resources    decimal.Decimal
	Overhead     decimal.Decimal
	Profit       decimal.Decimal
	GrandTotal   decimal.Decimal
}

// ResourceLine is one resource scaled by its rate's scale factor.
// AdjustedQuantity and AdjustedCost are unrounded.
type ResourceLine struct {
	Code             string
	Name             string
	Type             string
	Kind             ResourceKind
	Unit             string
	OriginalQuantity decimal.Decimal
	AdjustedQuantity decimal.Decimal
	UnitCost         decimal.Decimal
	AdjustedCost     decimal.Decimal
}

// KindSubtotal is the rounded sum of adjusted costs for one resource kind.
type KindSubtotal struct {
	Kind  ResourceKind
	Lines int
	Cost  decimal.Decimal
}

// Breakdown is a CostResult with per-resource detail at the same scale.
type Breakdown struct {
	CostResult
	Lines     []ResourceLine
	Subtotals []KindSubtotal
	WorkSteps []string
}

// ComparisonRow is one rate's figures at a quantity shared by a comparison.
// Difference and DifferencePercent are relative to the comparison's baseline row.
type ComparisonRow struct {
	RateCode          string
	RateName          string
	UnitType          string
	UnitQuantity      float64
	CostPerUnit       decimal.Decimal
	Total             decimal.Decimal
	Materials         decimal.Decimal
	Difference        decimal.Decimal
	DifferencePercent decimal.Decimal
}
