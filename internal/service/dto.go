package service

import (
	"github.com/shopspring/decimal"

	"estimator/internal/domain"
)

const (
	moneyPlaces    = 2
	quantityPlaces = 4
)

func money(d decimal.Decimal) float64 { return d.Round(moneyPlaces).InexactFloat64() }

func moneyFloat(f float64) float64 { return money(decimal.NewFromFloat(f)) }

func qty(d decimal.Decimal) float64 { return d.Round(quantityPlaces).InexactFloat64() }

func qtyFloat(f float64) float64 { return qty(decimal.NewFromFloat(f)) }

type SearchRequest struct {
	Query    string   `json:"query"`
	UnitType string   `json:"unit_type,omitempty"`
	Category string   `json:"category,omitempty"`
	MinCost  *float64 `json:"min_cost,omitempty"`
	MaxCost  *float64 `json:"max_cost,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

type SearchHit struct {
	Rank         int     `json:"rank"`
	RateCode     string  `json:"rate_code"`
	FullName     string  `json:"full_name"`
	ShortName    string  `json:"short_name,omitempty"`
	UnitType     string  `json:"unit_type"`
	UnitQuantity float64 `json:"unit_quantity"`
	CostPerUnit  float64 `json:"cost_per_unit"`
	TotalCost    float64 `json:"total_cost"`
	Score        float64 `json:"score"`
}

type SearchResponse struct {
	Query    string      `json:"query"`
	Strategy string      `json:"strategy"`
	Count    int         `json:"count"`
	Results  []SearchHit `json:"results"`
}

func newSearchHits(res []domain.SearchResult) []SearchHit {
	hits := make([]SearchHit, len(res))
	for i, r := range res {
		hits[i] = SearchHit{
			Rank:         i + 1,
			RateCode:     r.RateCode,
			FullName:     r.FullName,
			ShortName:    r.ShortName,
			UnitType:     r.UnitType,
			UnitQuantity: qtyFloat(r.UnitQuantity),
			CostPerUnit:  moneyFloat(r.CostPerUnit),
			TotalCost:    moneyFloat(r.TotalCost),
			Score:        r.Score,
		}
	}
	return hits
}

type CalculateRequest struct {
	// Identifier is a rate code or a description of the work.
	Identifier string  `json:"identifier"`
	Quantity   float64 `json:"quantity"`
}

// Cost is the JSON projection of a domain.CostResult.
type Cost struct {
	RateCode     string  `json:"rate_code"`
	RateName     string  `json:"rate_name"`
	ShortName    string  `json:"short_name,omitempty"`
	UnitType     string  `json:"unit_type"`
	UnitQuantity float64 `json:"unit_quantity"`
	Quantity     float64 `json:"quantity"`
	ScaleFactor  float64 `json:"scale_factor"`
	CostPerUnit  float64 `json:"cost_per_unit"`
	Total        float64 `json:"total"`
	Materials    float64 `json:"materials"`
	Resources    float64 `json:"resources"`
	Overhead     float64 `json:"overhead"`
	Profit       float64 `json:"profit"`
	GrandTotal   float64 `json:"grand_total"`
}

func newCost(c domain.CostResult) Cost {
	return Cost{
		RateCode:     c.RateCode,
		RateName:     c.RateName,
		ShortName:    c.ShortName,
		UnitType:     c.UnitType,
		UnitQuantity: qtyFloat(c.UnitQuantity),
		Quantity:     qty(c.Quantity),
		ScaleFactor:  qty(c.ScaleFactor),
		CostPerUnit:  money(c.CostPerUnit),
		Total:        money(c.Total),
		Materials:    money(c.Materials),
		Resources:    money(c.Resources),
		Overhead:     money(c.Overhead),
		Profit:       money(c.Profit),
		GrandTotal:   money(c.GrandTotal),
	}
}

type CalculateResponse struct {
	Cost
	SearchUsed   bool   `json:"search_used"`
	MatchedQuery string `json:"matched_query,omitempty"`
}

type DetailsRequest struct {
	RateCode string `json:"rate_code"`
	// Quantity defaults to 1.
	Quantity   float64 `json:"quantity,omitempty"`
	SortByCost bool    `json:"sort_by_cost,omitempty"`
}

type ResourceLine struct {
	Code             string  `json:"resource_code"`
	Name             string  `json:"resource_name"`
	Type             string  `json:"resource_type"`
	Kind             string  `json:"kind"`
	Unit             string  `json:"unit"`
	OriginalQuantity float64 `json:"original_quantity"`
	AdjustedQuantity float64 `json:"adjusted_quantity"`
	UnitCost         float64 `json:"unit_cost"`
	AdjustedCost     float64 `json:"adjusted_cost"`
}

type Subtotal struct {
	Kind  string  `json:"kind"`
	Lines int     `json:"lines"`
	Cost  float64 `json:"cost"`
}

type DetailsResponse struct {
	Cost
	Breakdown []ResourceLine `json:"breakdown"`
	Subtotals []Subtotal     `json:"subtotals"`
	WorkSteps []string       `json:"work_steps,omitempty"`
}

func newDetails(b domain.Breakdown) DetailsResponse {
	lines := make([]ResourceLine, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = ResourceLine{
			Code:             l.Code,
			Name:             l.Name,
			Type:             l.Type,
			Kind:             string(l.Kind),
			Unit:             l.Unit,
			OriginalQuantity: qty(l.OriginalQuantity),
			AdjustedQuantity: qty(l.AdjustedQuantity),
			UnitCost:         money(l.UnitCost),
			AdjustedCost:     money(l.AdjustedCost),
		}
	}
	subtotals := make([]Subtotal, len(b.Subtotals))
	for i, s := range b.Subtotals {
		subtotals[i] = Subtotal{Kind: string(s.Kind), Lines: s.Lines, Cost: money(s.Cost)}
	}
	return DetailsResponse{
		Cost:      newCost(b.CostResult),
		Breakdown: lines,
		Subtotals: subtotals,
		WorkSteps: b.WorkSteps,
	}
}

type CompareRequest struct {
	RateCodes []string `json:"rate_codes"`
	Quantity  float64  `json:"quantity"`
}

type ComparisonRow struct {
	RateCode          string  `json:"rate_code"`
	RateName          string  `json:"rate_name"`
	UnitType          string  `json:"unit_type"`
	UnitQuantity      float64 `json:"unit_quantity"`
	CostPerUnit       float64 `json:"cost_per_unit"`
	Total             float64 `json:"total"`
	Materials         float64 `json:"materials"`
	Difference        float64 `json:"difference"`
	DifferencePercent float64 `json:"difference_percent"`
}

type CompareResponse struct {
	Quantity float64         `json:"quantity"`
	Count    int             `json:"count"`
	Rows     []ComparisonRow `json:"rows"`
}

func newRows(rows []domain.ComparisonRow) []ComparisonRow {
	out := make([]ComparisonRow, len(rows))
	for i, r := range rows {
		out[i] = ComparisonRow{
			RateCode:          r.RateCode,
			RateName:          r.RateName,
			UnitType:          r.UnitType,
			UnitQuantity:      qtyFloat(r.UnitQuantity),
			CostPerUnit:       money(r.CostPerUnit),
			Total:             money(r.Total),
			Materials:         money(r.Materials),
			Difference:        money(r.Difference),
			DifferencePercent: money(r.DifferencePercent),
		}
	}
	return out
}

type FindSimilarRequest struct {
	RateCode   string `json:"rate_code"`
	MaxResults int    `json:"max_results,omitempty"`
	// Quantity defaults to the source rate's unit quantity.
	Quantity float64 `json:"quantity,omitempty"`
	AnyUnit  bool    `json:"any_unit,omitempty"`
}

type FindSimilarResponse struct {
	Source string          `json:"source"`
	Count  int             `json:"count"`
	Rows   []ComparisonRow `json:"rows"`
}
