package catalog_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estimator/internal/catalog"
	"estimator/internal/catalog/catalogtest"
	"estimator/internal/domain"
	"estimator/internal/normalizer"
)

func query(t *testing.T, raw string) domain.Query {
	t.Helper()
	q, err := normalizer.New().Normalize(raw)
	require.NoError(t, err)
	return q
}

func codes(hits []domain.IndexHit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.RateCode
	}
	return out
}

func TestOpenUsesWAL(t *testing.T) {
	store := catalogtest.Open(t)
	mode, err := store.JournalMode()
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

func TestGetRate(t *testing.T) {
	store := catalogtest.OpenSeeded(t)
	ctx := context.Background()

	r, err := store.GetRate(ctx, "X-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, r.UnitQuantity)
	assert.Equal(t, 138320.18, r.TotalCost)
	assert.Equal(t, "ГЭСН10-01", r.Hierarchy.Department.Code)
	assert.Contains(t, r.SearchText, "Перегородки каркасные")
	assert.False(t, r.CreatedAt.IsZero())

	_, err = store.GetRate(ctx, "NONEXISTENT-CODE")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "NONEXISTENT-CODE")
}

func TestGetRates(t *testing.T) {
	store := catalogtest.OpenSeeded(t)
	got, err := store.GetRates(context.Background(), []string{"A", "B", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1500.0, got["B"].TotalCost)
}

func TestGetResourcesKeepsInsertionOrder(t *testing.T) {
	store := catalogtest.OpenSeeded(t)
	res, err := store.GetResources(context.Background(), "X-1")
	require.NoError(t, err)
	require.Len(t, res, 4)
	assert.Equal(t, []string{"1-100-20", "М101-1", "1-91.05", "М101-2"},
		[]string{res[0].Code, res[1].Code, res[2].Code, res[3].Code})

	crane := res[2]
	assert.Equal(t, 420.5, crane.Extra.MachinistWage)
	require.NotNil(t, crane.Extra.MachinistGrade)
	assert.Equal(t, 5, *crane.Extra.MachinistGrade)
	assert.Equal(t, "Машины", crane.Extra.Sections["section2"])
}

func TestSearchByCodePrefix(t *testing.T) {
	store := catalogtest.OpenSeeded(t)
	ctx := context.Background()

	tests := []struct {
		prefix string
		want   []string
	}{
		{"X-", []string{"X-1", "X-2", "X-3", "X-4"}},
		{"ГЭСН08-02-001", []string{"ГЭСН08-02-001-01", "ГЭСН08-02-001-02"}},
		{"ГЭСН08-02-001-02", []string{"ГЭСН08-02-001-02"}},
		{"Z", nil},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			rates, err := store.SearchByCodePrefix(ctx, tt.prefix)
			require.NoError(t, err)
			var got []string
			for _, r := range rates {
				got = append(got, r.Code)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := store.SearchByCodePrefix(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchIndex(t *testing.T) {
	store := catalogtest.OpenSeeded(t)
	ctx := context.Background()
	minCost, maxCost := 7000.0, 8000.0

	tests := []struct {
		name    string
		query   string
		filters domain.Filters
		limit   int
		want    []string
	}{
		{name: "all terms must match", query: "перегородок гипсокартонных", want: []string{"X-1", "X-2"}},
		{name: "synonym matches both spellings", query: "ГКЛ", want: []string{"X-1", "X-2", "X-4"}},
		{name: "phrase needs adjacency", query: `"в два слоя"`, want: []string{"X-2"}},
		{name: "phrase order matters", query: `"слоя два"`, want: nil},
		{name: "unit filter", query: "кладка", filters: domain.Filters{UnitType: "м3"}, want: []string{"ГЭСН08-02-001-01", "ГЭСН08-02-001-02"}},
		{name: "cost range", query: "кладка", filters: domain.Filters{MinCost: &minCost, MaxCost: &maxCost}, want: []string{"ГЭСН08-02-001-02"}},
		{name: "category prefix", query: "стен", filters: domain.Filters{Category: "ГЭСН15"}, want: []string{"A", "B"}},
		{name: "no match", query: "zzzznonexistentquery9999", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := store.SearchIndex(ctx, query(t, tt.query), tt.filters, tt.limit)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, codes(hits))
			for _, h := range hits {
				assert.Greater(t, h.Score, 0.0)
				assert.LessOrEqual(t, h.Score, 1.0)
			}
		})
	}
}

func TestSearchIndexOrderAndLimit(t *testing.T) {
	store := catalogtest.OpenSeeded(t)
	ctx := context.Background()

	hits, err := store.SearchIndex(ctx, query(t, "стен"), domain.Filters{}, 0)
	require.NoError(t, err)
	require.Greater(t, len(hits), 2)
	assert.IsNonDecreasing(t, scores(hits))

	limited, err := store.SearchIndex(ctx, query(t, "стен"), domain.Filters{}, 2)
	require.NoError(t, err)
	assert.Equal(t, hits[:2], limited)

	// limit counts filtered rows
	filtered, err := store.SearchIndex(ctx, query(t, "стен"), domain.Filters{UnitType: "м3"}, 2)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func scores(hits []domain.IndexHit) []float64 {
	out := make([]float64, len(hits))
	for i, h := range hits {
		out[i] = h.Score
	}
	return out
}

func TestUpsertRateReindexes(t *testing.T) {
	store := catalogtest.OpenSeeded(t)
	ctx := context.Background()

	rec := catalogtest.Record("A", "Шпатлевка потолков", "м2", 100, 1200, 500, 700)
	require.NoError(t, store.UpsertRate(ctx, rec))

	hits, err := store.SearchIndex(ctx, query(t, "водоэмульсионной"), domain.Filters{}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = store.SearchIndex(ctx, query(t, "шпатлевка"), domain.Filters{}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, codes(hits))

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, st.Rates, st.Documents)
	assert.EqualValues(t, len(catalogtest.Fixtures()), st.Rates)
}

func TestDeleteRateCascades(t *testing.T) {
	store := catalogtest.OpenSeeded(t)
	ctx := context.Background()

	before, err := store.Stats(ctx)
	require.NoError(t, err)

	require.NoError(t, store.DeleteRate(ctx, "X-1"))

	res, err := store.GetResources(ctx, "X-1")
	require.NoError(t, err)
	assert.Empty(t, res)

	hits, err := store.SearchIndex(ctx, query(t, "ГКЛ"), domain.Filters{}, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"X-2", "X-4"}, codes(hits))

	after, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Rates-1, after.Rates)
	assert.Equal(t, before.Resources-4, after.Resources)
	assert.Equal(t, after.Rates, after.Documents)

	rep, err := store.VerifyIndex(ctx)
	require.NoError(t, err)
	assert.False(t, rep.Drifted())

	err = store.DeleteRate(ctx, "X-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWritesRejectInvalidRates(t *testing.T) {
	store := catalogtest.Open(t)
	ctx := context.Background()

	tests := []domain.RateRecord{
		catalogtest.Record("", "Без кода", "м2", 100, 1, 1, 0),
		catalogtest.Record("Z-1", "Нулевая база", "м2", 0, 1, 1, 0),
		catalogtest.Record("Z-2", "Отрицательная стоимость", "м2", 1, -5, 0, 0),
		catalogtest.Record("Z-3", "Плохой ресурс", "м2", 1, 5, 5, 0, domain.Resource{Code: "R", Quantity: -1}),
	}
	for _, rec := range tests {
		err := store.UpsertRate(ctx, rec)
		assert.ErrorIs(t, err, domain.ErrConstraintViolation, rec.Rate.Code)
	}

	good := catalogtest.Record("Z-4", "Годная", "м2", 1, 5, 5, 0)
	err := store.BulkLoad(ctx, []domain.RateRecord{good, tests[1]})
	require.ErrorIs(t, err, domain.ErrConstraintViolation)
	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Rates)
}

func TestVerifyIndexReportsCostWarnings(t *testing.T) {
	store := catalogtest.OpenSeeded(t)
	ctx := context.Background()
	catalogtest.Seed(t, store, catalogtest.Record("W-1", "Несходящаяся расценка", "т", 1, 1000, 300, 600))

	rep, err := store.VerifyIndex(ctx)
	require.NoError(t, err)
	require.Len(t, rep.CostWarnings, 1)
	assert.Equal(t, "W-1", rep.CostWarnings[0].RateCode)
	assert.Equal(t, 10.0, rep.CostWarnings[0].Deviation)
}

func TestConcurrentReads(t *testing.T) {
	store := catalogtest.OpenSeeded(t)
	ctx := context.Background()
	q := query(t, "стен")

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.SearchIndex(ctx, q, domain.Filters{}, 10); err != nil {
				errs <- err
			}
			if _, err := store.GetRate(ctx, "X-1"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

var _ domain.CatalogReader = (*catalog.Store)(nil)
