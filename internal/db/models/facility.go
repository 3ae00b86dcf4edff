package models

import (
	"gorm.io/datatypes"
)

// Playground is a playground listing.
type Playground struct {
	ID      string `gorm:"primaryKey;size:64" json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Kindergarten is a kindergarten listing keyed by its government code.
type Kindergarten struct {
	Code    string `gorm:"primaryKey;size:64" json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Childcare is a childcare center listing keyed by its government code.
type Childcare struct {
	Code    string `gorm:"primaryKey;size:64" json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// TableName overrides the default plural.
func (Childcare) TableName() string { return "childcare_centers" }

// MealFields are the columns shared by the meal tables. MealDate lives on the
// concrete types since it is part of their unique index.
type MealFields struct {
	MealImages      datatypes.JSONSlice[string] `json:"meal_images"`
	MenuDescription string                      `json:"menu_description"`
	IsActive        bool                        `json:"is_active"`
}

// KindergartenMeal is the menu of one day at a kindergarten.
type KindergartenMeal struct {
	Base
	KindergartenCode string `gorm:"size:64;uniqueIndex:idx_kindergarten_meal_day" json:"kindergarten_code"`
	MealFields
	MealDate string `gorm:"size:10;uniqueIndex:idx_kindergarten_meal_day" json:"meal_date"` // YYYY-MM-DD
}

// ChildcareMeal is the menu of one day at a childcare center.
type ChildcareMeal struct {
	Base
	ChildcareCode string `gorm:"size:64;uniqueIndex:idx_childcare_meal_day" json:"childcare_code"`
	MealFields
	MealDate string `gorm:"size:10;uniqueIndex:idx_childcare_meal_day" json:"meal_date"` // YYYY-MM-DD
}

// CustomInfoFields are the columns shared by the admin maintained facility info tables.
type CustomInfoFields struct {
	Fields   datatypes.JSONMap `json:"fields"`
	IsActive bool              `json:"is_active"`
}

// KindergartenCustomInfo holds admin entered details of a kindergarten.
type KindergartenCustomInfo struct {
	Base
	KindergartenCode string `gorm:"size:64;uniqueIndex" json:"kindergarten_code"`
	CustomInfoFields
}

// TableName keeps the singular table name.
func (KindergartenCustomInfo) TableName() string { return "kindergarten_custom_info" }

// ChildcareCustomInfo holds admin entered details of a childcare center.
type ChildcareCustomInfo struct {
	Base
	ChildcareCode string `gorm:"size:64;uniqueIndex" json:"childcare_code"`
	CustomInfoFields
}

// TableName keeps the singular table name.
func (ChildcareCustomInfo) TableName() string { return "childcare_custom_info" }

// Facility kinds with government codes.
const (
	FacilityKindergarten = "kindergarten"
	FacilityChildcare    = "childcare"
)

// FacilityTables describes where the admin maintained data of a facility
// kind is stored.
type FacilityTables struct {
	Kind       string
	CodeColumn string
	MealTable  string
	InfoTable  string
	// NewMeal and NewInfo return empty rows for model based statements.
	NewMeal func(code string, fields MealFields, date string) interface{}
	NewInfo func(code string, fields CustomInfoFields) interface{}
}

var facilityTables = map[string]FacilityTables{ //nolint:gochecknoglobals
	FacilityKindergarten: {
		Kind:       FacilityKindergarten,
		CodeColumn: "kindergarten_code",
		MealTable:  "kindergarten_meals",
		InfoTable:  "kindergarten_custom_info",
		NewMeal: func(code string, f MealFields, date string) interface{} {
			return &KindergartenMeal{KindergartenCode: code, MealFields: f, MealDate: date}
		},
		NewInfo: func(code string, f CustomInfoFields) interface{} {
			return &KindergartenCustomInfo{KindergartenCode: code, CustomInfoFields: f}
		},
	},
	FacilityChildcare: {
		Kind:       FacilityChildcare,
		CodeColumn: "childcare_code",
		MealTable:  "childcare_meals",
		InfoTable:  "childcare_custom_info",
		NewMeal: func(code string, f MealFields, date string) interface{} {
			return &ChildcareMeal{ChildcareCode: code, MealFields: f, MealDate: date}
		},
		NewInfo: func(code string, f CustomInfoFields) interface{} {
			return &ChildcareCustomInfo{ChildcareCode: code, CustomInfoFields: f}
		},
	},
}

// FacilityTablesFor returns the tables of a facility kind.
func FacilityTablesFor(kind string) (FacilityTables, bool) {
	ft, ok := facilityTables[kind]
	return ft, ok
}
