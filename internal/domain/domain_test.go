package domain_test

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"estimator/internal/domain"
)

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("calculate: %w", domain.RateNotFound("X-9"))

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.False(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.Equal(t, `calculate: rate "X-9" not found`, err.Error())

	assert.Equal(t, domain.ErrorKind(""), domain.KindOf(errors.New("plain")))
	assert.Equal(t, domain.ErrorKind(""), domain.KindOf(nil))

	wrapped := &domain.Error{Kind: domain.KindIndexDrift, Message: "hydrate", Err: errors.New("missing row")}
	assert.Equal(t, "hydrate: missing row", wrapped.Error())
	assert.True(t, errors.Is(wrapped, domain.ErrIndexDrift))
}

func TestCompareByRelevance(t *testing.T) {
	hits := []domain.IndexHit{
		{RateCode: "B", Score: 0.5},
		{RateCode: "C", Score: 0.1},
		{RateCode: "A", Score: 0.5},
		{RateCode: "D", Score: 0},
	}
	slices.SortFunc(hits, domain.CompareByRelevance[domain.IndexHit])

	codes := make([]string, len(hits))
	for i, h := range hits {
		codes[i] = h.RateCode
	}
	assert.Equal(t, []string{"D", "C", "A", "B"}, codes)

	a := domain.SearchResult{RateCode: "A", Score: 0.2}
	b := domain.SearchResult{RateCode: "B", Score: 0.2}
	assert.Negative(t, domain.CompareByRelevance(a, b))
	assert.Zero(t, domain.CompareByRelevance(a, a))
}

func TestFiltersMatch(t *testing.T) {
	lo, hi := 100.0, 200.0
	codes := []string{"ГЭСН", "ГЭСН10", "ГЭСН10-01"}

	tests := []struct {
		name string
		f    domain.Filters
		unit string
		cost float64
		want bool
	}{
		{"no filters", domain.Filters{}, "м2", 5, true},
		{"unit exact", domain.Filters{UnitType: "м2"}, "м2", 5, true},
		{"unit differs", domain.Filters{UnitType: "м3"}, "м2", 5, false},
		{"cost inclusive low", domain.Filters{MinCost: &lo, MaxCost: &hi}, "м2", 100, true},
		{"cost inclusive high", domain.Filters{MinCost: &lo, MaxCost: &hi}, "м2", 200, true},
		{"cost below", domain.Filters{MinCost: &lo}, "м2", 99.99, false},
		{"cost above", domain.Filters{MaxCost: &hi}, "м2", 200.01, false},
		{"category prefix", domain.Filters{Category: "ГЭСН10-0"}, "м2", 5, true},
		{"category missing", domain.Filters{Category: "ГЭСН15"}, "м2", 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Match(tt.unit, tt.cost, codes))
		})
	}
	assert.True(t, domain.Filters{}.IsZero())
	assert.False(t, domain.Filters{MinCost: &lo}.IsZero())
}

func TestBuildSearchText(t *testing.T) {
	r := domain.Rate{
		Code:      "ГЭСН10-01-034-01",
		FullName:  "Устройство перегородок",
		ShortName: " ",
		Hierarchy: domain.Hierarchy{
			Category: domain.Level{Code: "ГЭСН", Name: "Сметные нормы"},
			Table:    domain.Level{Name: "Перегородки каркасные"},
		},
		Composition: "Установка каркаса.",
	}
	assert.Equal(t, "ГЭСН10-01-034-01 Устройство перегородок Сметные нормы Перегородки каркасные Установка каркаса.",
		domain.BuildSearchText(r))
	assert.Equal(t, []string{"ГЭСН"}, r.Hierarchy.Codes())
}

func TestCostPerUnit(t *testing.T) {
	assert.Equal(t, 25.0, domain.Rate{UnitQuantity: 100, TotalCost: 2500}.CostPerUnit())
	assert.Zero(t, domain.Rate{UnitQuantity: 0, TotalCost: 2500}.CostPerUnit())
}

func TestClassifyResource(t *testing.T) {
	tests := []struct {
		typ, code string
		want      domain.ResourceKind
	}{
		{"Состав работ", "1-100-20", domain.ResourceLabor},
		{"Ресурс", "М101-1", domain.ResourceMaterial},
		{"ресурс", "M101-2", domain.ResourceMaterial},
		{"Ресурс", "1-91.05", domain.ResourceMachinery},
		{"Ресурс", "X-1", domain.ResourceEquipment},
		{"machinery", "", domain.ResourceMachinery},
		{" Labor ", "", domain.ResourceLabor},
		{"", "", domain.ResourceEquipment},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.ClassifyResource(tt.typ, tt.code), "%s/%s", tt.typ, tt.code)
	}
}

func TestQueryString(t *testing.T) {
	q := domain.Query{Clauses: []domain.Clause{
		{Alternatives: []domain.Alternative{{Words: []string{"устройство"}, Prefix: true}}},
		{Alternatives: []domain.Alternative{
			{Words: []string{"гкл"}, Prefix: true},
			{Words: []string{"гипсокартон"}, Prefix: true},
		}},
		{Alternatives: []domain.Alternative{{Words: []string{"сухая", "штукатурка"}}}},
		{Alternatives: []domain.Alternative{{Words: []string{"2"}}}},
	}}
	assert.Equal(t, `устройство* (гкл* OR гипсокартон*) "сухая штукатурка" 2`, q.String())
	assert.False(t, q.IsEmpty())
	assert.True(t, domain.Query{}.IsEmpty())
}
