package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"estimator/internal/domain"
)

func tableSQL(t *testing.T, s *Store, table string) string {
	t.Helper()
	var sql string
	require.NoError(t, s.db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&sql).Error)
	require.NotEmpty(t, sql, table)
	return sql
}

func TestResourcesOwnTheForeignKey(t *testing.T) {
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "schema.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	resources := tableSQL(t, s, "resources")
	assert.Contains(t, resources, "REFERENCES `rates`")
	assert.Contains(t, resources, "ON DELETE CASCADE")
	assert.NotContains(t, tableSQL(t, s, "rates"), "REFERENCES")

	ctx := context.Background()
	rec := domain.RateRecord{
		Rate: domain.Rate{Code: "K-1", FullName: "Кладка", UnitType: "м3", UnitQuantity: 1, TotalCost: 10, MaterialsCost: 6, ResourcesCost: 4},
		Resources: []domain.Resource{
			{Code: "М1", Type: "Ресурс", Name: "Кирпич", Quantity: 400, Unit: "шт", UnitCost: 0.01, TotalCost: 4},
		},
	}
	require.NoError(t, s.UpsertRate(ctx, rec))

	// bypass DeleteRate so only the database cascade can remove the resources
	require.NoError(t, s.db.Exec("DELETE FROM rates WHERE rate_code = ?", "K-1").Error)
	var left int64
	require.NoError(t, s.db.Model(&resourceModel{}).Where("rate_code = ?", "K-1").Count(&left).Error)
	assert.Zero(t, left)
}
