package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"estimator/internal/catalog/catalogtest"
	"estimator/internal/domain"
	"estimator/internal/domain/mocks"
	"estimator/internal/search"
)

func codes(res []domain.SearchResult) []string {
	out := make([]string, len(res))
	for i, r := range res {
		out[i] = r.RateCode
	}
	return out
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, search.DefaultLimit, search.ClampLimit(0))
	assert.Equal(t, search.DefaultLimit, search.ClampLimit(-1))
	assert.Equal(t, 25, search.ClampLimit(25))
	assert.Equal(t, search.MaxLimit, search.ClampLimit(500))
}

func TestFullTextSearch(t *testing.T) {
	ctx := context.Background()
	engine := search.NewEngine(catalogtest.OpenSeeded(t), nil, nil)
	assert.Equal(t, "fulltext", engine.StrategyName())

	res, err := engine.Search(ctx, "перегородки ГКЛ", domain.Filters{}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Equal(t, "X-1", res[0].RateCode)
	assert.InDelta(t, 1383.2018, res[0].CostPerUnit, 1e-9)
	for i := 1; i < len(res); i++ {
		assert.LessOrEqual(t, domain.CompareByRelevance(res[i-1], res[i]), 0)
	}
	for _, r := range res {
		assert.Greater(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
}

func TestSearchFiltersAndLimit(t *testing.T) {
	ctx := context.Background()
	engine := search.NewEngine(catalogtest.OpenSeeded(t), nil, nil)

	res, err := engine.Search(ctx, "кладка стен", domain.Filters{UnitType: "м3"}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "м3", res[0].UnitType)

	maxCost := 1200.0
	res, err = engine.Search(ctx, "окраска стен", domain.Filters{MaxCost: &maxCost}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, codes(res))

	res, err = engine.Search(ctx, "окраска", domain.Filters{Category: "ГЭСН08"}, 10)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.NotNil(t, res)
}

func TestSearchRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	engine := search.NewEngine(catalogtest.OpenSeeded(t), nil, nil)

	_, err := engine.Search(ctx, "   ", domain.Filters{}, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = engine.Search(ctx, "из в на", domain.Filters{}, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	lo, hi := 10.0, 5.0
	_, err = engine.Search(ctx, "кладка", domain.Filters{MinCost: &lo, MaxCost: &hi}, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchNoMatchIsEmpty(t *testing.T) {
	engine := search.NewEngine(catalogtest.OpenSeeded(t), nil, nil)
	res, err := engine.Search(context.Background(), "бетононасос", domain.Filters{}, 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearchByCode(t *testing.T) {
	ctx := context.Background()
	engine := search.NewEngine(catalogtest.OpenSeeded(t), nil, nil)

	res, err := engine.SearchByCode(ctx, "ГЭСН08-02-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"ГЭСН08-02-001-01", "ГЭСН08-02-001-02"}, codes(res))

	res, err = engine.SearchByCode(ctx, "ГЭСН08-02-001-01")
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, err = engine.SearchByCode(ctx, "Z-404")
	require.NoError(t, err)
	assert.Empty(t, res)

	_, err = engine.SearchByCode(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchReportsIndexDrift(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockCatalogReader(ctrl)
	reader.EXPECT().
		SearchIndex(gomock.Any(), gomock.Any(), gomock.Any(), 10).
		Return([]domain.IndexHit{{RateCode: "A", Score: 0.2}, {RateCode: "GONE", Score: 0.3}}, nil)
	reader.EXPECT().
		GetRates(gomock.Any(), []string{"A", "GONE"}).
		Return(map[string]domain.Rate{"A": {Code: "A", UnitType: "м2", UnitQuantity: 100, TotalCost: 1000}}, nil)

	engine := search.NewEngine(reader, nil, nil)
	_, err := engine.Search(context.Background(), "окраска", domain.Filters{}, 10)
	assert.ErrorIs(t, err, domain.ErrIndexDrift)
}

func TestSearchPropagatesStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockCatalogReader(ctrl)
	boom := errors.New("disk I/O error")
	reader.EXPECT().SearchIndex(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := search.NewEngine(reader, nil, nil).Search(context.Background(), "окраска", domain.Filters{}, 10)
	assert.ErrorIs(t, err, boom)
}
