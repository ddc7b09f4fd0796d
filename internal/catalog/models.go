package catalog

import (
	"time"

	"gorm.io/datatypes"

	"estimator/internal/domain"
)

type rateModel struct {
	ID             uint   `gorm:"primaryKey"`
	RateCode       string `gorm:"uniqueIndex;not null"`
	FullName       string `gorm:"not null"`
	ShortName      string
	Composition    string
	SearchText     string
	UnitQuantity   float64 `gorm:"not null"`
	UnitType       string  `gorm:"index"`
	TotalCost      float64 `gorm:"not null;default:0"`
	MaterialsCost  float64 `gorm:"not null;default:0"`
	ResourcesCost  float64 `gorm:"not null;default:0"`
	CategoryCode   string  `gorm:"index"`
	CategoryName   string
	CategoryType   string
	CollectionCode string
	CollectionName string
	DepartmentCode string
	DepartmentName string
	DepartmentType string
	SectionCode    string
	SectionName    string
	SectionType    string
	SubsectionCode string
	SubsectionName string
	TblCode        string `gorm:"column:table_code"`
	TblName        string `gorm:"column:table_name"`
	OverheadRate   float64
	ProfitMargin   float64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Resources is declared for the schema only: it puts the cascading
	// foreign key on resources.rate_code. Writes never populate it.
	Resources []resourceModel `gorm:"foreignKey:RateCode;references:RateCode;constraint:OnDelete:CASCADE"`
}

func (rateModel) TableName() string { return "rates" }

type resourceModel struct {
	ID                     uint   `gorm:"primaryKey"`
	RateCode               string `gorm:"index;not null"`
	ResourceCode           string `gorm:"index"`
	ResourceType           string
	ResourceName           string
	Quantity               float64
	Unit                   string
	UnitCost               float64
	TotalCost              float64
	Specifications         string
	MachinistWage          float64
	MachinistLaborHours    float64
	MachineHours           float64
	CostWithoutWages       float64
	RelocationIncluded     bool
	PersonnelCode          string
	MachinistGrade         *int
	ElectricityConsumption float64
	ElectricityCost        float64
	QuantityParameter      string
	Sections               datatypes.JSONType[map[string]string]
}

func (resourceModel) TableName() string { return "resources" }

// indexDocument is the one index entry every rate owns.
type indexDocument struct {
	RateCode  string `gorm:"primaryKey"`
	Length    int    `gorm:"not null"`
	UpdatedAt time.Time
}

func (indexDocument) TableName() string { return "rate_index_docs" }

// posting records the occurrences of one term in one rate's search text.
type posting struct {
	ID        uint   `gorm:"primaryKey"`
	Term      string `gorm:"index:idx_postings_term;not null"`
	RateCode  string `gorm:"index:idx_postings_rate;not null"`
	Frequency int    `gorm:"not null"`
	Positions datatypes.JSONSlice[int]
}

func (posting) TableName() string { return "rate_index_postings" }

func toRateModel(r domain.Rate) rateModel {
	h := r.Hierarchy
	return rateModel{
		RateCode:       r.Code,
		FullName:       r.FullName,
		ShortName:      r.ShortName,
		Composition:    r.Composition,
		SearchText:     r.SearchText,
		UnitQuantity:   r.UnitQuantity,
		UnitType:       r.UnitType,
		TotalCost:      r.TotalCost,
		MaterialsCost:  r.MaterialsCost,
		ResourcesCost:  r.ResourcesCost,
		CategoryCode:   h.Category.Code,
		CategoryName:   h.Category.Name,
		CategoryType:   h.CategoryType,
		CollectionCode: h.Collection.Code,
		CollectionName: h.Collection.Name,
		DepartmentCode: h.Department.Code,
		DepartmentName: h.Department.Name,
		DepartmentType: h.DepartmentType,
		SectionCode:    h.Section.Code,
		SectionName:    h.Section.Name,
		SectionType:    h.SectionType,
		SubsectionCode: h.Subsection.Code,
		SubsectionName: h.Subsection.Name,
		TblCode:        h.Table.Code,
		TblName:        h.Table.Name,
		OverheadRate:   r.OverheadRate,
		ProfitMargin:   r.ProfitMargin,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (m rateModel) toDomain() domain.Rate {
	return domain.Rate{
		Code:          m.RateCode,
		FullName:      m.FullName,
		ShortName:     m.ShortName,
		Composition:   m.Composition,
		SearchText:    m.SearchText,
		UnitQuantity:  m.UnitQuantity,
		UnitType:      m.UnitType,
		TotalCost:     m.TotalCost,
		MaterialsCost: m.MaterialsCost,
		ResourcesCost: m.ResourcesCost,
		Hierarchy: domain.Hierarchy{
			Category:       domain.Level{Code: m.CategoryCode, Name: m.CategoryName},
			CategoryType:   m.CategoryType,
			Collection:     domain.Level{Code: m.CollectionCode, Name: m.CollectionName},
			Department:     domain.Level{Code: m.DepartmentCode, Name: m.DepartmentName},
			DepartmentType: m.DepartmentType,
			Section:        domain.Level{Code: m.SectionCode, Name: m.SectionName},
			SectionType:    m.SectionType,
			Subsection:     domain.Level{Code: m.SubsectionCode, Name: m.SubsectionName},
			Table:          domain.Level{Code: m.TblCode, Name: m.TblName},
		},
		OverheadRate: m.OverheadRate,
		ProfitMargin: m.ProfitMargin,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toResourceModel(rateCode string, r domain.Resource) resourceModel {
	x := r.Extra
	return resourceModel{
		RateCode:               rateCode,
		ResourceCode:           r.Code,
		ResourceType:           r.Type,
		ResourceName:           r.Name,
		Quantity:               r.Quantity,
		Unit:                   r.Unit,
		UnitCost:               r.UnitCost,
		TotalCost:              r.TotalCost,
		Specifications:         r.Specifications,
		MachinistWage:          x.MachinistWage,
		MachinistLaborHours:    x.MachinistLaborHours,
		MachineHours:           x.MachineHours,
		CostWithoutWages:       x.CostWithoutWages,
		RelocationIncluded:     x.RelocationIncluded,
		PersonnelCode:          x.PersonnelCode,
		MachinistGrade:         x.MachinistGrade,
		ElectricityConsumption: x.ElectricityConsumption,
		ElectricityCost:        x.ElectricityCost,
		QuantityParameter:      x.QuantityParameter,
		Sections:               datatypes.NewJSONType(x.Sections),
	}
}

func (m resourceModel) toDomain() domain.Resource {
	return domain.Resource{
		ID:             m.ID,
		RateCode:       m.RateCode,
		Code:           m.ResourceCode,
		Type:           m.ResourceType,
		Name:           m.ResourceName,
		Quantity:       m.Quantity,
		Unit:           m.Unit,
		UnitCost:       m.UnitCost,
		TotalCost:      m.TotalCost,
		Specifications: m.Specifications,
		Extra: domain.ResourceExtra{
			MachinistWage:          m.MachinistWage,
			MachinistLaborHours:    m.MachinistLaborHours,
			MachineHours:           m.MachineHours,
			CostWithoutWages:       m.CostWithoutWages,
			RelocationIncluded:     m.RelocationIncluded,
			PersonnelCode:          m.PersonnelCode,
			MachinistGrade:         m.MachinistGrade,
			ElectricityConsumption: m.ElectricityConsumption,
			ElectricityCost:        m.ElectricityCost,
			QuantityParameter:      m.QuantityParameter,
			Sections:               m.Sections.Data(),
		},
	}
}
