package catalog

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"estimator/internal/domain"
)

// CostWarning flags a rate whose component costs stray from its total by
// more than the tolerance. It is informational; the catalog keeps the data.
type CostWarning struct {
	RateCode      string  `json:"rate_code"`
	TotalCost     float64 `json:"total_cost"`
	MaterialsCost float64 `json:"materials_cost"`
	ResourcesCost float64 `json:"resources_cost"`
	Deviation     float64 `json:"deviation_percent"`
}

// IndexReport describes the consistency of the catalog and its index.
type IndexReport struct {
	Stats
	MissingDocuments []string      `json:"missing_documents,omitempty"`
	OrphanDocuments  []string      `json:"orphan_documents,omitempty"`
	OrphanPostings   int64         `json:"orphan_postings"`
	OrphanResources  int64         `json:"orphan_resources"`
	CostWarnings     []CostWarning `json:"cost_warnings,omitempty"`
	CostTolerancePct float64       `json:"cost_tolerance_percent"`
}

// Drifted reports whether the index disagrees with the rate table.
func (r IndexReport) Drifted() bool {
	return r.Rates != r.Documents || len(r.MissingDocuments) > 0 ||
		len(r.OrphanDocuments) > 0 || r.OrphanPostings > 0 || r.OrphanResources > 0
}

const (
	costTolerancePct = 1.0
	reportSampleSize = 100
)

// VerifyIndex checks that every rate has exactly one index entry and nothing
// in the index or resources outlives its rate. It returns an IndexDrift error
// alongside the report when they disagree.
func (s *Store) VerifyIndex(ctx context.Context) (IndexReport, error) {
	st, err := s.Stats(ctx)
	if err != nil {
		return IndexReport{}, err
	}
	rep := IndexReport{Stats: st, CostTolerancePct: costTolerancePct}
	db := s.db.WithContext(ctx)

	err = db.Raw(`SELECT r.rate_code FROM rates r
		LEFT JOIN rate_index_docs d ON d.rate_code = r.rate_code
		WHERE d.rate_code IS NULL ORDER BY r.rate_code LIMIT ?`, reportSampleSize).
		Scan(&rep.MissingDocuments).Error
	if err != nil {
		return rep, fmt.Errorf("verify index: %w", err)
	}
	err = db.Raw(`SELECT d.rate_code FROM rate_index_docs d
		LEFT JOIN rates r ON r.rate_code = d.rate_code
		WHERE r.rate_code IS NULL ORDER BY d.rate_code LIMIT ?`, reportSampleSize).
		Scan(&rep.OrphanDocuments).Error
	if err != nil {
		return rep, fmt.Errorf("verify index: %w", err)
	}
	err = db.Raw(`SELECT COUNT(*) FROM rate_index_postings p
		LEFT JOIN rates r ON r.rate_code = p.rate_code
		WHERE r.rate_code IS NULL`).Scan(&rep.OrphanPostings).Error
	if err != nil {
		return rep, fmt.Errorf("verify index: %w", err)
	}
	err = db.Raw(`SELECT COUNT(*) FROM resources x
		LEFT JOIN rates r ON r.rate_code = x.rate_code
		WHERE r.rate_code IS NULL`).Scan(&rep.OrphanResources).Error
	if err != nil {
		return rep, fmt.Errorf("verify resources: %w", err)
	}

	var rows []rateModel
	err = db.Select("rate_code", "total_cost", "materials_cost", "resources_cost").
		Where("total_cost > 0 AND ABS(total_cost - materials_cost - resources_cost) > total_cost * ?", costTolerancePct/100).
		Order("rate_code").
		Limit(reportSampleSize).
		Find(&rows).Error
	if err != nil {
		return rep, fmt.Errorf("verify costs: %w", err)
	}
	for _, m := range rows {
		dev := math.Abs(m.TotalCost-m.MaterialsCost-m.ResourcesCost) / m.TotalCost * 100
		rep.CostWarnings = append(rep.CostWarnings, CostWarning{
			RateCode:      m.RateCode,
			TotalCost:     m.TotalCost,
			MaterialsCost: m.MaterialsCost,
			ResourcesCost: m.ResourcesCost,
			Deviation:     math.Round(dev*100) / 100,
		})
	}

	if rep.Drifted() {
		s.log.Error("index drift detected",
			zap.Int64("rates", rep.Rates),
			zap.Int64("documents", rep.Documents),
			zap.Int64("orphan_postings", rep.OrphanPostings))
		return rep, indexDriftError(rep)
	}
	return rep, nil
}

func indexDriftError(rep IndexReport) error {
	return domain.IndexDrift("rates=%d documents=%d missing=%d orphan_documents=%d orphan_postings=%d orphan_resources=%d",
		rep.Rates, rep.Documents, len(rep.MissingDocuments), len(rep.OrphanDocuments), rep.OrphanPostings, rep.OrphanResources)
}
