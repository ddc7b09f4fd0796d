package normalizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estimator/internal/domain"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"punctuation", "Кладка стен, кирпич.", []string{"кладка", "стен", "кирпич"}},
		{"yo folds to ye", "Ёмкость", []string{"емкость"}},
		{"short i survives", "Йод и краска", []string{"йод", "и", "краска"}},
		{"latin diacritics", "Café Über", []string{"cafe", "uber"}},
		{"superscript unit", "100 м²", []string{"100", "м2"}},
		{"codes split on hyphens", "ГЭСН08-02-001", []string{"гэсн08", "02", "001"}},
		{"blank", "  ,;  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	n := New()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"stopwords dropped and prefixes added", "Устройство перегородок из досок", "устройство* перегородок* досок*"},
		{"synonym added not replaced", "облицовка ГКЛ", "облицовка* (гкл* OR гипсокартон*)"},
		{"multi-word synonyms become phrases", "штукатурка м2", `штукатурка* (м2* OR "квадратный метр" OR "кв метр" OR "кв м")`},
		{"quoted phrase kept whole", `"сухая штукатурка" стен`, `"сухая штукатурка" стен*`},
		{"phrase keeps its stopwords", `«кладка из кирпича»`, `"кладка из кирпича"`},
		{"single rune not prefixed", "т бетон", "т бетон*"},
		{"duplicates collapse", "бетон Бетон БЕТОН", "бетон*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := n.Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.String())
		})
	}
}

func TestNormalizeErrors(t *testing.T) {
	n := New()
	for _, in := range []string{"", "   ", "и в на", `"" , .`} {
		_, err := n.Normalize(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	}

	_, err := n.Normalize("для и по")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too generic")
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := New()
	a, err := n.Normalize("монтаж ГКЛ м3 \"в два слоя\"")
	require.NoError(t, err)
	b, err := n.Normalize("монтаж ГКЛ м3 \"в два слоя\"")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestOptions(t *testing.T) {
	n := New(
		WithMinPrefixLen(4),
		WithStopwords("монтаж"),
		WithSynonyms(map[string][]string{"ЖБИ": {"железобетон"}}),
	)
	q, err := n.Normalize("монтаж жби опор")
	require.NoError(t, err)
	assert.Equal(t, "(жби OR железобетон*) опор*", q.String())
}

func TestKeywords(t *testing.T) {
	n := New()
	got := n.Keywords("Устройство перегородок из гипсокартонных листов в один слой", 3)
	assert.Equal(t, []string{"устройство", "перегородок", "гипсокартонных"}, got)
	assert.Empty(t, n.Keywords("и в на", 3))
}
