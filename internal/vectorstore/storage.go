// Package vectorstore holds helpers shared by the vector store backends.
package vectorstore

import (
	"cmp"
	"errors"
	"math"
	"strings"

	"estimator/internal/domain"
)

const DefaultTopK = 5

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// TopK applies DefaultTopK to non-positive values.
func TopK(k int) int {
	if k <= 0 {
		return DefaultTopK
	}
	return k
}

// CosineDistance is 1 - cosine similarity. Zero vectors are at distance 1.
func CosineDistance(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// CompareHits orders by distance, then rate code.
func CompareHits(a, b domain.VectorHit) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	return strings.Compare(a.RateCode, b.RateCode)
}
