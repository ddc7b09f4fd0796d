package tfidf

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"

	"estimator/internal/normalizer"
)

// DefaultMaxFeatures caps the vocabulary so dense vectors stay small on a
// catalog-sized corpus.
const DefaultMaxFeatures = 2048

// Embedder is a TF-IDF vectorizer over the catalog's folded tokens.
// The vocabulary keeps the MaxFeatures terms with the highest document frequency.
type Embedder struct {
	vocabulary  map[string]int
	idf         []float64
	dimension   int
	prepared    bool
	maxFeatures int
	stopword    func(string) bool
}

type Option func(*Embedder)

// WithMaxFeatures overrides DefaultMaxFeatures. Non-positive keeps every term.
func WithMaxFeatures(n int) Option {
	return func(e *Embedder) { e.maxFeatures = n }
}

// WithStopwords uses n's stopword list instead of the built-in one.
func WithStopwords(n *normalizer.Normalizer) Option {
	return func(e *Embedder) { e.stopword = n.IsStopword }
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder(opts ...Option) *Embedder {
	e := &Embedder{
		vocabulary:  make(map[string]int),
		maxFeatures: DefaultMaxFeatures,
	}
	for _, o := range opts {
		o(e)
	}
	if e.stopword == nil {
		e.stopword = normalizer.New().IsStopword
	}
	return e
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (e *Embedder) Prepare(ctx context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for i, text := range corpus {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return errors.New("no tokens found in corpus")
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	// most frequent first, then alphabetical for a stable vocabulary
	slices.SortFunc(terms, func(a, b string) int {
		if c := cmp.Compare(df[b], df[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if e.maxFeatures > 0 && len(terms) > e.maxFeatures {
		terms = terms[:e.maxFeatures]
	}
	slices.Sort(terms)

	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		// smoothed
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.dimension = len(terms)
	e.prepared = true
	return nil
}

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the L2-normalized TF-IDF vector of text. Text with no
// known terms yields the zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	vec := make([]float64, e.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (e *Embedder) tokenize(text string) []string {
	raw := normalizer.Tokenize(text)
	out := raw[:0]
	for _, t := range raw {
		if e.stopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
