package domain

import (
	"strings"
	"time"
)

// Level is one node of a rate's classification hierarchy.
// Both fields are optional; a rate may carry only part of the hierarchy.
type Level struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// Hierarchy is the six-level classification of a rate,
// from the broadest level (category) down to the table.
type Hierarchy struct {
	Category       Level  `json:"category"`
	CategoryType   string `json:"category_type,omitempty"`
	Collection     Level  `json:"collection"`
	Department     Level  `json:"department"`
	DepartmentType string `json:"department_type,omitempty"`
	Section        Level  `json:"section"`
	SectionType    string `json:"section_type,omitempty"`
	Subsection     Level  `json:"subsection"`
	Table          Level  `json:"table"`
}

// Levels returns the six levels top-down.
func (h Hierarchy) Levels() []Level {
	return []Level{h.Category, h.Collection, h.Department, h.Section, h.Subsection, h.Table}
}

// Codes returns the non-empty level codes top-down.
func (h Hierarchy) Codes() []string {
	var out []string
	for _, l := range h.Levels() {
		if l.Code != "" {
			out = append(out, l.Code)
		}
	}
	return out
}

// Rate is a priced, standardized unit of construction work.
// Costs apply to UnitQuantity units of UnitType (e.g. 100 m²).
type Rate struct {
	Code          string    `json:"rate_code"`
	FullName      string    `json:"full_name"`
	ShortName     string    `json:"short_name,omitempty"`
	Composition   string    `json:"composition,omitempty"`
	SearchText    string    `json:"search_text,omitempty"`
	UnitQuantity  float64   `json:"unit_quantity"`
	UnitType      string    `json:"unit_type"`
	TotalCost     float64   `json:"total_cost"`
	MaterialsCost float64   `json:"materials_cost"`
	ResourcesCost float64   `json:"resources_cost"`
	Hierarchy     Hierarchy `json:"hierarchy"`
	OverheadRate  float64   `json:"overhead_rate,omitempty"`
	ProfitMargin  float64   `json:"profit_margin,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// CostPerUnit is the total cost of a single unit of UnitType.
// Zero when the rate has no valid base quantity.
func (r Rate) CostPerUnit() float64 {
	if r.UnitQuantity <= 0 {
		return 0
	}
	return r.TotalCost / r.UnitQuantity
}

// BuildSearchText concatenates every searchable descriptive field of a rate.
func BuildSearchText(r Rate) string {
	h := r.Hierarchy
	parts := []string{
		r.Code,
		r.FullName,
		r.ShortName,
		h.Category.Name,
		h.Collection.Name,
		h.Department.Name,
		h.Section.Name,
		h.Subsection.Name,
		h.Table.Name,
		r.Composition,
	}
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}

// Resource is a material, labor or equipment line consumed by one rate
// at the rate's base quantity.
type Resource struct {
	ID             uint          `json:"id,omitempty"`
	RateCode       string        `json:"rate_code,omitempty"`
	Code           string        `json:"resource_code"`
	Type           string        `json:"resource_type"`
	Name           string        `json:"resource_name"`
	Quantity       float64       `json:"quantity"`
	Unit           string        `json:"unit"`
	UnitCost       float64       `json:"unit_cost"`
	TotalCost      float64       `json:"total_cost"`
	Specifications string        `json:"specifications,omitempty"`
	Extra          ResourceExtra `json:"extra"`
}

// ResourceExtra holds the optional machinery and labor attributes.
type ResourceExtra struct {
	MachinistWage          float64           `json:"machinist_wage,omitempty"`
	MachinistLaborHours    float64           `json:"machinist_labor_hours,omitempty"`
	MachineHours           float64           `json:"machine_hours,omitempty"`
	CostWithoutWages       float64           `json:"cost_without_wages,omitempty"`
	RelocationIncluded     bool              `json:"relocation_included,omitempty"`
	PersonnelCode          string            `json:"personnel_code,omitempty"`
	MachinistGrade         *int              `json:"machinist_grade,omitempty"`
	ElectricityConsumption float64           `json:"electricity_consumption,omitempty"`
	ElectricityCost        float64           `json:"electricity_cost,omitempty"`
	QuantityParameter      string            `json:"quantity_parameter,omitempty"`
	Sections               map[string]string `json:"sections,omitempty"`
}

// RateRecord is a rate together with its resources, the unit of bulk loading.
type RateRecord struct {
	Rate      Rate       `json:"rate"`
	Resources []Resource `json:"resources"`
}

// ResourceKind is the normalized classification of a resource line.
type ResourceKind string

const (
	ResourceLabor     ResourceKind = "labor"
	ResourceMaterial  ResourceKind = "material"
	ResourceMachinery ResourceKind = "machinery"
	ResourceEquipment ResourceKind = "equipment"
)

// ClassifyResource derives a ResourceKind from the free-form resource type
// and the resource code. Catalog row types ("Состав работ", "Ресурс") are
// mapped by code prefix; types that already name a kind are kept.
func ClassifyResource(resourceType, code string) ResourceKind {
	t := strings.ToLower(strings.TrimSpace(resourceType))
	code = strings.TrimSpace(code)
	switch t {
	case "состав работ", string(ResourceLabor):
		return ResourceLabor
	case string(ResourceMaterial):
		return ResourceMaterial
	case string(ResourceMachinery):
		return ResourceMachinery
	case "ресурс", "resource":
		switch {
		case strings.HasPrefix(code, "M"), strings.HasPrefix(code, "М"):
			return ResourceMaterial
		case strings.HasPrefix(code, "1-"):
			return ResourceMachinery
		}
	}
	return ResourceEquipment
}
