package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estimator/internal/domain"
	"estimator/internal/vectorstore"
)

func items() []domain.VectorItem {
	return []domain.VectorItem{
		{RateCode: "X-1", UnitType: "м2", TotalCost: 138320.18, Categories: []string{"ГЭСН", "ГЭСН10"}, Vector: []float64{1, 0, 0}},
		{RateCode: "X-2", UnitType: "м2", TotalCost: 165000, Categories: []string{"ГЭСН", "ГЭСН10"}, Vector: []float64{0.9, 0.1, 0}},
		{RateCode: "B-1", UnitType: "м3", TotalCost: 8540.25, Categories: []string{"ГЭСН", "ГЭСН08"}, Vector: []float64{0, 1, 0}},
	}
}

func TestSearchOrdersByDistance(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 3))
	require.NoError(t, s.Upsert(ctx, items()))

	hits, err := s.Search(ctx, []float64{1, 0, 0}, 0, domain.Filters{})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "X-1", hits[0].RateCode)
	assert.InDelta(t, 0, hits[0].Distance, 1e-12)
	assert.Equal(t, "X-2", hits[1].RateCode)
	assert.Equal(t, "B-1", hits[2].RateCode)

	hits, err = s.Search(ctx, []float64{1, 0, 0}, 1, domain.Filters{})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearchAppliesFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 3))
	require.NoError(t, s.Upsert(ctx, items()))

	maxCost := 150000.0
	hits, err := s.Search(ctx, []float64{1, 0, 0}, 10, domain.Filters{UnitType: "м2", MaxCost: &maxCost})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "X-1", hits[0].RateCode)

	hits, err = s.Search(ctx, []float64{1, 0, 0}, 10, domain.Filters{Category: "ГЭСН08"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "B-1", hits[0].RateCode)
}

func TestUpsertReplacesAndValidates(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 3))
	require.NoError(t, s.Upsert(ctx, items()))
	require.NoError(t, s.Upsert(ctx, []domain.VectorItem{{RateCode: "X-1", UnitType: "м2", Vector: []float64{0, 0, 1}}}))
	assert.Equal(t, 3, s.Len())

	hits, err := s.Search(ctx, []float64{0, 0, 1}, 1, domain.Filters{})
	require.NoError(t, err)
	assert.Equal(t, "X-1", hits[0].RateCode)

	err = s.Upsert(ctx, []domain.VectorItem{{RateCode: "Z", Vector: []float64{1}}})
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)

	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, s.Len())
	assert.Error(t, s.Init(ctx, 0))
}
