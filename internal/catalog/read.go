package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"estimator/internal/domain"
)

// inBatch bounds the size of IN (...) lists sent to SQLite.
const inBatch = 500

func (s *Store) GetRate(ctx context.Context, code string) (domain.Rate, error) {
	var m rateModel
	err := s.db.WithContext(ctx).Where("rate_code = ?", code).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Rate{}, domain.RateNotFound(code)
	}
	if err != nil {
		return domain.Rate{}, fmt.Errorf("get rate %s: %w", code, err)
	}
	return m.toDomain(), nil
}

func (s *Store) GetRates(ctx context.Context, codes []string) (map[string]domain.Rate, error) {
	out := make(map[string]domain.Rate, len(codes))
	for batch := range slices.Chunk(codes, inBatch) {
		var ms []rateModel
		if err := s.db.WithContext(ctx).Where("rate_code IN ?", batch).Find(&ms).Error; err != nil {
			return nil, fmt.Errorf("get rates: %w", err)
		}
		for _, m := range ms {
			out[m.RateCode] = m.toDomain()
		}
	}
	return out, nil
}

// GetResources returns a rate's resources in insertion order.
func (s *Store) GetResources(ctx context.Context, code string) ([]domain.Resource, error) {
	var ms []resourceModel
	if err := s.db.WithContext(ctx).Where("rate_code = ?", code).Order("id").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("get resources of %s: %w", code, err)
	}
	out := make([]domain.Resource, len(ms))
	for i, m := range ms {
		out[i] = m.toDomain()
	}
	return out, nil
}

func (s *Store) SearchByCodePrefix(ctx context.Context, prefix string) ([]domain.Rate, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, domain.InvalidInput("code prefix is empty")
	}
	var ms []rateModel
	err := s.db.WithContext(ctx).
		Where("substr(rate_code, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix).
		Order("rate_code").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("search by code %q: %w", prefix, err)
	}
	out := make([]domain.Rate, len(ms))
	for i, m := range ms {
		out[i] = m.toDomain()
	}
	return out, nil
}

func (s *Store) EachRate(ctx context.Context, batchSize int, fn func([]domain.Rate) error) error {
	if batchSize <= 0 {
		batchSize = 1000
	}
	var ms []rateModel
	res := s.db.WithContext(ctx).FindInBatches(&ms, batchSize, func(_ *gorm.DB, _ int) error {
		rates := make([]domain.Rate, len(ms))
		for i, m := range ms {
			rates[i] = m.toDomain()
		}
		return fn(rates)
	})
	return res.Error
}

// Stats are row counts of the catalog tables.
type Stats struct {
	Rates     int64 `json:"rates"`
	Resources int64 `json:"resources"`
	Documents int64 `json:"index_documents"`
	Postings  int64 `json:"index_postings"`
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	db := s.db.WithContext(ctx)
	var st Stats
	for _, c := range []struct {
		model any
		dst   *int64
	}{
		{&rateModel{}, &st.Rates},
		{&resourceModel{}, &st.Resources},
		{&indexDocument{}, &st.Documents},
		{&posting{}, &st.Postings},
	} {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return Stats{}, fmt.Errorf("count: %w", err)
		}
	}
	return st, nil
}
