// Package catalogtest provides a throwaway on-disk catalog and fixture rates for tests.
package catalogtest

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"estimator/internal/catalog"
	"estimator/internal/domain"
)

// Open creates an empty catalog in a temp dir, closed on cleanup.
func Open(tb testing.TB) *catalog.Store {
	tb.Helper()
	store, err := catalog.Open(catalog.Config{
		Path:         filepath.Join(tb.TempDir(), "catalog.db"),
		MaxOpenConns: 4,
	}, zap.NewNop())
	if err != nil {
		tb.Fatalf("open catalog: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })
	return store
}

// Seed bulk-loads records into store.
func Seed(tb testing.TB, store *catalog.Store, recs ...domain.RateRecord) {
	tb.Helper()
	if err := store.BulkLoad(context.Background(), recs); err != nil {
		tb.Fatalf("seed catalog: %v", err)
	}
}

// OpenSeeded opens a catalog loaded with Fixtures.
func OpenSeeded(tb testing.TB) *catalog.Store {
	tb.Helper()
	store := Open(tb)
	Seed(tb, store, Fixtures()...)
	return store
}

// Record builds a rate record with the given base figures.
func Record(code, name, unitType string, unitQty, total, materials, resources float64, res ...domain.Resource) domain.RateRecord {
	return domain.RateRecord{
		Rate: domain.Rate{
			Code:          code,
			FullName:      name,
			UnitType:      unitType,
			UnitQuantity:  unitQty,
			TotalCost:     total,
			MaterialsCost: materials,
			ResourcesCost: resources,
		},
		Resources: res,
	}
}

func ptr[T any](v T) *T { return &v }

// Fixtures is a small catalog covering partitions, painting and masonry.
func Fixtures() []domain.RateRecord {
	partitions := domain.Hierarchy{
		Category:   domain.Level{Code: "ГЭСН", Name: "Государственные элементные сметные нормы"},
		Collection: domain.Level{Code: "ГЭСН10", Name: "Деревянные конструкции"},
		Department: domain.Level{Code: "ГЭСН10-01", Name: "Перегородки"},
		Table:      domain.Level{Code: "ГЭСН10-01-001", Name: "Перегородки каркасные"},
	}
	painting := domain.Hierarchy{
		Category:   domain.Level{Code: "ГЭСН", Name: "Государственные элементные сметные нормы"},
		Collection: domain.Level{Code: "ГЭСН15", Name: "Отделочные работы"},
	}

	x1 := Record("X-1", "Устройство перегородок из гипсокартонных листов (ГКЛ) в один слой", "м2", 100,
		138320.18, 35118.80, 103201.38,
		domain.Resource{Code: "1-100-20", Type: "Состав работ", Name: "Затраты труда рабочих", Quantity: 125.4, Unit: "чел.-ч", UnitCost: 500, TotalCost: 62700},
		domain.Resource{Code: "М101-1", Type: "Ресурс", Name: "Листы гипсокартонные", Quantity: 105, Unit: "м2", UnitCost: 250.5, TotalCost: 26302.5},
		domain.Resource{Code: "1-91.05", Type: "Ресурс", Name: "Краны на автомобильном ходу", Quantity: 0.35, Unit: "маш.-ч", UnitCost: 1500, TotalCost: 525,
			Extra: domain.ResourceExtra{MachinistWage: 420.5, MachineHours: 0.35, MachinistGrade: ptr(5), Sections: map[string]string{"section2": "Машины"}}},
		domain.Resource{Code: "М101-2", Type: "Ресурс", Name: "Профиль направляющий", Quantity: 80, Unit: "м", UnitCost: 110.205, TotalCost: 8816.4},
	)
	x1.Rate.ShortName = "Перегородки ГКЛ"
	x1.Rate.Composition = "Разметка мест установки. Установка каркаса. Обшивка листами."
	x1.Rate.Hierarchy = partitions
	x1.Rate.OverheadRate = 12
	x1.Rate.ProfitMargin = 8

	x2 := Record("X-2", "Устройство перегородок из гипсокартонных листов в два слоя", "м2", 100, 165000, 45000, 120000)
	x2.Rate.Hierarchy = partitions
	x3 := Record("X-3", "Устройство перегородок из гипсоволокнистых листов", "м2", 100, 120500.50, 40000, 80500.50)
	x3.Rate.Hierarchy = partitions
	x4 := Record("X-4", "Облицовка стен гипсокартоном по металлическому каркасу", "м2", 100, 98000, 30000, 68000)
	x4.Rate.Hierarchy = partitions

	a := Record("A", "Окраска стен водоэмульсионной краской", "м2", 100, 1000, 400, 600)
	a.Rate.Hierarchy = painting
	b := Record("B", "Окраска стен масляной краской", "м2", 100, 1500, 700, 800)
	b.Rate.Hierarchy = painting

	brick := Record("ГЭСН08-02-001-01", "Кладка стен из кирпича наружных простых", "м3", 1, 8540.25, 5200, 3340.25,
		domain.Resource{Code: "М404-0005", Type: "Ресурс", Name: "Кирпич керамический", Quantity: 0.394, Unit: "1000 шт", UnitCost: 15000, TotalCost: 5910},
		domain.Resource{Code: "1-100-30", Type: "Состав работ", Name: "Затраты труда рабочих", Quantity: 5.4, Unit: "чел.-ч", UnitCost: 487.08, TotalCost: 2630.25},
	)
	brick.Rate.Hierarchy = domain.Hierarchy{
		Category:   domain.Level{Code: "ГЭСН", Name: "Государственные элементные сметные нормы"},
		Collection: domain.Level{Code: "ГЭСН08", Name: "Конструкции из кирпича и блоков"},
	}
	brick2 := Record("ГЭСН08-02-001-02", "Кладка стен из кирпича внутренних", "м3", 1, 7900, 4800, 3100)
	brick2.Rate.Hierarchy = brick.Rate.Hierarchy

	return []domain.RateRecord{x1, x2, x3, x4, a, b, brick, brick2}
}
