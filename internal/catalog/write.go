package catalog

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"estimator/internal/domain"
)

// UpsertRate inserts or replaces a rate with its resources. The rate's
// search text and index entry are rebuilt in the same transaction.
func (s *Store) UpsertRate(ctx context.Context, rec domain.RateRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return writeRecord(tx, rec)
	})
}

// BulkLoad upserts many records in one transaction. Nothing is written
// when any record is invalid.
func (s *Store) BulkLoad(ctx context.Context, recs []domain.RateRecord) error {
	for _, rec := range recs {
		if err := validate(rec); err != nil {
			return err
		}
	}
	start := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range recs {
			if err := writeRecord(tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("catalog loaded", zap.Int("rates", len(recs)), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// DeleteRate removes a rate and its index entry. Resources follow by cascade.
func (s *Store) DeleteRate(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("rate_code = ?", code).Delete(&rateModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.RateNotFound(code)
		}
		return unindexRate(tx, code)
	})
}

func writeRecord(tx *gorm.DB, rec domain.RateRecord) error {
	r := rec.Rate
	r.Code = strings.TrimSpace(r.Code)
	r.SearchText = domain.BuildSearchText(r)

	m := toRateModel(r)
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "rate_code"}},
		UpdateAll: true,
	}).Create(&m).Error
	if err != nil {
		return err
	}

	if err := tx.Where("rate_code = ?", r.Code).Delete(&resourceModel{}).Error; err != nil {
		return err
	}
	if len(rec.Resources) > 0 {
		rows := make([]resourceModel, len(rec.Resources))
		for i, res := range rec.Resources {
			rows[i] = toResourceModel(r.Code, res)
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return err
		}
	}
	return indexRate(tx, r.Code, r.SearchText)
}

func validate(rec domain.RateRecord) error {
	r := rec.Rate
	code := strings.TrimSpace(r.Code)
	if code == "" {
		return domain.ConstraintViolation("rate code is empty")
	}
	if strings.TrimSpace(r.FullName) == "" {
		return domain.ConstraintViolation("rate %s: full name is empty", code)
	}
	if !(r.UnitQuantity > 0) || math.IsInf(r.UnitQuantity, 0) {
		return domain.ConstraintViolation("rate %s: unit_quantity must be positive, got %v", code, r.UnitQuantity)
	}
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"total_cost", r.TotalCost},
		{"materials_cost", r.MaterialsCost},
		{"resources_cost", r.ResourcesCost},
	} {
		if !nonNegative(c.v) {
			return domain.ConstraintViolation("rate %s: %s must be non-negative, got %v", code, c.name, c.v)
		}
	}
	for i, res := range rec.Resources {
		if !nonNegative(res.Quantity) || !nonNegative(res.UnitCost) || !nonNegative(res.TotalCost) {
			return domain.ConstraintViolation("rate %s: resource #%d (%s) has a negative quantity or cost", code, i+1, res.Code)
		}
	}
	return nil
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
