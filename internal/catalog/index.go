package catalog

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"estimator/internal/domain"
	"estimator/internal/normalizer"
)

// BM25 parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

var hierarchyCodeColumns = []string{
	"category_code", "collection_code", "department_code",
	"section_code", "subsection_code", "table_code",
}

// indexRate replaces the index entry of one rate. Must run inside the
// transaction that wrote the rate.
func indexRate(tx *gorm.DB, code, text string) error {
	if err := unindexRate(tx, code); err != nil {
		return err
	}
	terms := normalizer.Tokenize(text)
	if err := tx.Create(&indexDocument{RateCode: code, Length: len(terms)}).Error; err != nil {
		return fmt.Errorf("index %s: %w", code, err)
	}

	positions := make(map[string][]int)
	var order []string
	for i, t := range terms {
		if _, ok := positions[t]; !ok {
			order = append(order, t)
		}
		positions[t] = append(positions[t], i)
	}
	if len(order) == 0 {
		return nil
	}
	rows := make([]posting, len(order))
	for i, t := range order {
		rows[i] = posting{
			Term:      t,
			RateCode:  code,
			Frequency: len(positions[t]),
			Positions: datatypes.NewJSONSlice(positions[t]),
		}
	}
	if err := tx.CreateInBatches(rows, 500).Error; err != nil {
		return fmt.Errorf("index %s: %w", code, err)
	}
	return nil
}

func unindexRate(tx *gorm.DB, code string) error {
	if err := tx.Where("rate_code = ?", code).Delete(&posting{}).Error; err != nil {
		return err
	}
	return tx.Where("rate_code = ?", code).Delete(&indexDocument{}).Error
}

type corpusStats struct {
	Docs   int64
	AvgLen float64
}

type postingRow struct {
	RateCode  string
	Term      string
	Frequency int
	Positions datatypes.JSONSlice[int]
	Length    *int
}

// docMatch is how often an alternative occurs in one rate.
type docMatch struct {
	freq   int
	length int
}

// SearchIndex runs a normalized query against the index. Every clause must
// match; a clause scores as its best alternative and clause scores add up
// (BM25). The returned score is 1/(1+bm25): in (0, 1], lower is better.
func (s *Store) SearchIndex(ctx context.Context, q domain.Query, f domain.Filters, limit int) ([]domain.IndexHit, error) {
	if q.IsEmpty() {
		return nil, domain.InvalidInput("index query is empty")
	}
	db := s.db.WithContext(ctx)

	var st corpusStats
	err := db.Model(&indexDocument{}).
		Select("COUNT(*) AS docs, COALESCE(AVG(length), 0) AS avg_len").
		Scan(&st).Error
	if err != nil {
		return nil, fmt.Errorf("index stats: %w", err)
	}

	var scores map[string]float64
	for _, c := range q.Clauses {
		cs, err := clauseScores(db, c, st)
		if err != nil {
			return nil, err
		}
		if scores == nil {
			scores = cs
		} else {
			for code := range scores {
				if v, ok := cs[code]; ok {
					scores[code] += v
				} else {
					delete(scores, code)
				}
			}
		}
		if len(scores) == 0 {
			return []domain.IndexHit{}, nil
		}
	}

	passing, err := filterCodes(db, slices.Sorted(maps.Keys(scores)), f)
	if err != nil {
		return nil, err
	}
	hits := make([]domain.IndexHit, len(passing))
	for i, code := range passing {
		hits[i] = domain.IndexHit{RateCode: code, Score: 1 / (1 + scores[code])}
	}
	slices.SortFunc(hits, domain.CompareByRelevance[domain.IndexHit])
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func clauseScores(db *gorm.DB, c domain.Clause, st corpusStats) (map[string]float64, error) {
	best := make(map[string]float64)
	for _, alt := range c.Alternatives {
		matches, err := matchAlternative(db, alt)
		if err != nil {
			return nil, err
		}
		df := float64(len(matches))
		idf := math.Log(1 + (float64(st.Docs)-df+0.5)/(df+0.5))
		for code, m := range matches {
			tf := float64(m.freq)
			norm := 1 - bm25B
			if st.AvgLen > 0 {
				norm += bm25B * float64(m.length) / st.AvgLen
			}
			score := idf * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
			if cur, ok := best[code]; !ok || score > cur {
				best[code] = score
			}
		}
	}
	return best, nil
}

func matchAlternative(db *gorm.DB, alt domain.Alternative) (map[string]docMatch, error) {
	if alt.IsPhrase() {
		return matchPhrase(db, alt.Words)
	}
	if len(alt.Words) == 0 {
		return nil, nil
	}
	word := alt.Words[0]
	var rows []postingRow
	var err error
	if alt.Prefix {
		rows, err = loadPostings(db, "p.term >= ? AND p.term < ?", word, word+string(utf8.MaxRune))
	} else {
		rows, err = loadPostings(db, "p.term = ?", word)
	}
	if err != nil {
		return nil, err
	}
	out := make(map[string]docMatch)
	for _, r := range rows {
		m := out[r.RateCode]
		m.freq += r.Frequency
		m.length = *r.Length
		out[r.RateCode] = m
	}
	return out, nil
}

// matchPhrase finds rates where words occur at consecutive positions.
func matchPhrase(db *gorm.DB, words []string) (map[string]docMatch, error) {
	var (
		candidates map[string][]int
		lengths    = make(map[string]int)
	)
	for i, w := range words {
		rows, err := loadPostings(db, "p.term = ?", w)
		if err != nil {
			return nil, err
		}
		next := make(map[string][]int)
		for _, r := range rows {
			lengths[r.RateCode] = *r.Length
			if i == 0 {
				next[r.RateCode] = r.Positions
				continue
			}
			starts, ok := candidates[r.RateCode]
			if !ok {
				continue
			}
			at := make(map[int]struct{}, len(r.Positions))
			for _, p := range r.Positions {
				at[p] = struct{}{}
			}
			var kept []int
			for _, s := range starts {
				if _, ok := at[s+i]; ok {
					kept = append(kept, s)
				}
			}
			if len(kept) > 0 {
				next[r.RateCode] = kept
			}
		}
		candidates = next
		if len(candidates) == 0 {
			return nil, nil
		}
	}
	out := make(map[string]docMatch, len(candidates))
	for code, starts := range candidates {
		out[code] = docMatch{freq: len(starts), length: lengths[code]}
	}
	return out, nil
}

func loadPostings(db *gorm.DB, where string, args ...any) ([]postingRow, error) {
	var rows []postingRow
	err := db.Table("rate_index_postings AS p").
		Select("p.rate_code, p.term, p.frequency, p.positions, d.length").
		Joins("LEFT JOIN rate_index_docs AS d ON d.rate_code = p.rate_code").
		Where(where, args...).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load postings: %w", err)
	}
	for _, r := range rows {
		if r.Length == nil {
			return nil, domain.IndexDrift("posting %q of rate %s has no index document", r.Term, r.RateCode)
		}
	}
	return rows, nil
}

type filterRow struct {
	RateCode string
	Passes   int
}

// filterCodes keeps the candidate codes whose rows satisfy f.
// A candidate without a rate row means the index has drifted.
func filterCodes(db *gorm.DB, codes []string, f domain.Filters) ([]string, error) {
	sel := "rate_code, 1 AS passes"
	var args []any
	if !f.IsZero() {
		var cond string
		cond, args = filterCondition(f)
		sel = "rate_code, CASE WHEN " + cond + " THEN 1 ELSE 0 END AS passes"
	}
	out := make([]string, 0, len(codes))
	for batch := range slices.Chunk(codes, inBatch) {
		var rows []filterRow
		q := db.Model(&rateModel{})
		if len(args) > 0 {
			q = q.Select(sel, args...)
		} else {
			q = q.Select(sel)
		}
		if err := q.Where("rate_code IN ?", batch).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("filter candidates: %w", err)
		}
		if len(rows) != len(batch) {
			found := make(map[string]struct{}, len(rows))
			for _, r := range rows {
				found[r.RateCode] = struct{}{}
			}
			for _, code := range batch {
				if _, ok := found[code]; !ok {
					return nil, domain.IndexDrift("index entry %s has no rate row", code)
				}
			}
		}
		for _, r := range rows {
			if r.Passes == 1 {
				out = append(out, r.RateCode)
			}
		}
	}
	return out, nil
}

func filterCondition(f domain.Filters) (string, []any) {
	var (
		parts []string
		args  []any
	)
	if f.UnitType != "" {
		parts = append(parts, "unit_type = ?")
		args = append(args, f.UnitType)
	}
	if f.MinCost != nil {
		parts = append(parts, "total_cost >= ?")
		args = append(args, *f.MinCost)
	}
	if f.MaxCost != nil {
		parts = append(parts, "total_cost <= ?")
		args = append(args, *f.MaxCost)
	}
	if f.Category != "" {
		n := utf8.RuneCountInString(f.Category)
		ors := make([]string, len(hierarchyCodeColumns))
		for i, col := range hierarchyCodeColumns {
			ors[i] = "substr(" + col + ", 1, ?) = ?"
			args = append(args, n, f.Category)
		}
		parts = append(parts, "("+strings.Join(ors, " OR ")+")")
	}
	return strings.Join(parts, " AND "), args
}
