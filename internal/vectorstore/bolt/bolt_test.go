package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estimator/internal/domain"
	"estimator/internal/vectorstore"
)

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []domain.VectorItem{
		{RateCode: "A", UnitType: "м2", TotalCost: 1000, Vector: []float64{1, 0}},
		{RateCode: "B", UnitType: "м2", TotalCost: 1500, Vector: []float64{0.6, 0.8}},
		{RateCode: "C", UnitType: "м3", TotalCost: 900, Vector: []float64{0, 1}},
	}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	dim, err := s.Dimension()
	require.NoError(t, err)
	assert.Equal(t, 2, dim)

	hits, err := s.Search(ctx, []float64{1, 0}, 5, domain.Filters{UnitType: "м2"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "A", hits[0].RateCode)
	assert.Equal(t, "B", hits[1].RateCode)
	assert.InDelta(t, 0.4, hits[1].Distance, 1e-9)
}

func TestInitWithNewDimensionDropsVectors(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "vectors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []domain.VectorItem{{RateCode: "A", Vector: []float64{1, 0}}}))
	require.NoError(t, s.Init(ctx, 2))
	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Init(ctx, 3))
	n, err = s.Len()
	require.NoError(t, err)
	assert.Zero(t, n)

	err = s.Upsert(ctx, []domain.VectorItem{{RateCode: "A", Vector: []float64{1, 0}}})
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "vectors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Init(ctx, 1))
	require.NoError(t, s.Upsert(ctx, []domain.VectorItem{{RateCode: "A", Vector: []float64{1}}}))
	require.NoError(t, s.Clear(ctx))

	hits, err := s.Search(ctx, []float64{1}, 5, domain.Filters{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}
