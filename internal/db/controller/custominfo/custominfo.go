// Package custominfo stores facility details entered by admins on top of the
// government data.
package custominfo

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
	// ErrNotFound is returned when a facility has no custom info.
	ErrNotFound = errors.New("custom info not found")
	// ErrUnknownKind is returned for a facility kind without custom info.
	ErrUnknownKind = errors.New("unknown facility kind")
	// ErrCodeEmpty is returned when no facility code is given.
	ErrCodeEmpty = errors.New("facility code is required")
)

// Info is the custom info of one facility.
type Info struct {
	ID        string            `json:"id"`
	Code      string            `json:"code"`
	Fields    datatypes.JSONMap `json:"fields"`
	IsActive  bool              `json:"is_active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func find(db *gorm.DB, kind, code string, activeOnly bool) (*Info, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	ft, ok := models.FacilityTablesFor(kind)
	if !ok {
		return nil, ErrUnknownKind
	}

	q := db.Table(ft.InfoTable).
		Select("id, "+ft.CodeColumn+" AS code, fields, is_active, created_at, updated_at").
		Where(ft.CodeColumn+" = ?", code)

	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	rows := make([]Info, 0, 1)
	if err := q.Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	return &rows[0], nil
}

// Get returns the custom info of a facility whether active or not.
func Get(db *gorm.DB, kind, code string) (*Info, error) {
	return find(db, kind, code, false)
}

// Active returns the custom info of a facility when it is switched on.
func Active(db *gorm.DB, kind, code string) (*Info, error) {
	return find(db, kind, code, true)
}

// Set replaces the custom info of a facility.
func Set(db *gorm.DB, kind, code string, fields map[string]interface{}, active bool) (*Info, error) {
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

	if fields == nil {
		fields = map[string]interface{}{}
	}

	row := ft.NewInfo(code, models.CustomInfoFields{Fields: datatypes.JSONMap(fields), IsActive: active})

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: ft.CodeColumn}},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "is_active", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}

	return Get(db, kind, code)
}
