package summarizer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estimator/internal/catalog/catalogtest"
	"estimator/internal/summarizer"
)

func TestSummarizeCountsTermsOncePerRate(t *testing.T) {
	store := catalogtest.Open(t)
	catalogtest.Seed(t, store,
		catalogtest.Record("K-1", "Кладка кирпича кладка", "м3", 1, 100, 60, 40),
		catalogtest.Record("K-2", "Кладка блоков", "м3", 1, 90, 50, 40),
		catalogtest.Record("P-1", "Окраска стен", "м2", 100, 500, 200, 300),
	)

	sum, err := summarizer.NewFrequencySummarizer(nil, 2).Summarize(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Rates)
	assert.Equal(t, []summarizer.Count{{Value: "м3", N: 2}, {Value: "м2", N: 1}}, sum.Units)
	assert.Equal(t, []summarizer.Count{{Value: "кладка", N: 2}, {Value: "блоков", N: 1}}, sum.Terms)
	assert.Equal(t, "3 rates · units: м3 (2), м2 (1) · common: кладка (2), блоков (1)", sum.String())
}

func TestSummarizeEmptyCatalog(t *testing.T) {
	sum, err := summarizer.NewFrequencySummarizer(nil, 0).Summarize(context.Background(), catalogtest.Open(t))
	require.NoError(t, err)
	assert.Zero(t, sum.Rates)
	assert.Empty(t, sum.Terms)
	assert.Contains(t, sum.String(), "empty")
}
