// Package meal stores the daily menus of kindergartens and childcare centers.
package meal

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/models"
)

var (
	// ErrUnknownKind is returned for a facility kind without meals.
	ErrUnknownKind = errors.New("unknown facility kind")
	// ErrCodeEmpty is returned when no facility code is given.
	ErrCodeEmpty = errors.New("facility code is required")
	// ErrInvalidDate is returned when a meal date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("meal_date must be YYYY-MM-DD")
)

// Meal is one day of a facility menu.
type Meal struct {
	ID              string                      `json:"id"`
	Code            string                      `json:"code"`
	MealDate        string                      `json:"meal_date"`
	MealImages      datatypes.JSONSlice[string] `json:"meal_images"`
	MenuDescription string                      `json:"menu_description"`
	IsActive        bool                        `json:"is_active"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// Input is a meal to store.
type Input struct {
	MealDate        string   `json:"meal_date"`
	MealImages      []string `json:"meal_images"`
	MenuDescription string   `json:"menu_description"`
	IsActive        *bool    `json:"is_active"`
}

// Result reports the outcome for one date of an upsert.
type Result struct {
	Date    string `json:"date"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// List returns the active meals of a facility, newest date first.
func List(db *gorm.DB, kind, code string) ([]Meal, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	ft, ok := models.FacilityTablesFor(kind)
	if !ok {
		return nil, ErrUnknownKind
	}

	meals := make([]Meal, 0)
	err := db.Table(ft.MealTable).
		Select("id, "+ft.CodeColumn+" AS code, meal_date, meal_images, menu_description, is_active, created_at, updated_at").
		Where(ft.CodeColumn+" = ? AND is_active = ?", code, true).
		Order("meal_date DESC").
		Scan(&meals).Error

	return meals, err
}

// Upsert stores each meal, replacing the menu of a date that already exists.
// Every input gets a result; one failing date does not stop the others.
func Upsert(db *gorm.DB, kind, code string, meals []Input) ([]Result, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	ft, ok := models.FacilityTablesFor(kind)
	if !ok {
		return nil, ErrUnknownKind
	}

	if code == "" {
		return nil, ErrCodeEmpty
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: ft.CodeColumn}, {Name: "meal_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"meal_images", "menu_description", "is_active", "updated_at"}),
	}

	results := make([]Result, 0, len(meals))

	for _, m := range meals {
		r := Result{Date: m.MealDate}

		if _, err := time.Parse(time.DateOnly, m.MealDate); err != nil {
			r.Error = ErrInvalidDate.Error()
			results = append(results, r)

			continue
		}

		images := m.MealImages
		if images == nil {
			images = []string{}
		}

		fields := models.MealFields{
			MealImages:      datatypes.JSONSlice[string](images),
			MenuDescription: m.MenuDescription,
			IsActive:        m.IsActive == nil || *m.IsActive,
		}

		if err := db.Clauses(onConflict).Create(ft.NewMeal(code, fields, m.MealDate)).Error; err != nil {
			r.Error = err.Error()
		} else {
			r.Success = true
		}

		results = append(results, r)
	}

	return results, nil
}
