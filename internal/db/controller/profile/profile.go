// Package profile provides lookups over app user profiles.
package profile

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/models"
)

var (
	// ErrNotFound is returned when a profile does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrLookupEmpty is returned when neither phone nor email is given.
	ErrLookupEmpty = errors.New("phone or email is required")
)

// List returns every profile, newest first.
func List(db *gorm.DB) ([]models.Profile, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	profiles := make([]models.Profile, 0)
	err := db.Order("created_at DESC").Find(&profiles).Error

	return profiles, err
}

// ActiveIDs returns the ids of every active profile.
func ActiveIDs(db *gorm.DB) ([]string, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	ids := make([]string, 0)
	err := db.Model(&models.Profile{}).Where("is_active = ?", true).Order("created_at ASC").Pluck("id", &ids).Error

	return ids, err
}

// AllIDs returns the ids of every profile regardless of state.
func AllIDs(db *gorm.DB) ([]string, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	ids := make([]string, 0)
	err := db.Model(&models.Profile{}).Order("created_at ASC").Pluck("id", &ids).Error

	return ids, err
}

// Get returns one profile.
func Get(db *gorm.DB, id string) (*models.Profile, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	if id == "" {
		return nil, controller.ErrIDEmpty
	}

	var p models.Profile
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &p, nil
}

// ByIDs loads the profiles of the given ids keyed by id.
func ByIDs(db *gorm.DB, ids []string) (map[string]models.Profile, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	out := make(map[string]models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var profiles []models.Profile
	if err := db.Where("id IN ?", controller.Unique(ids)).Find(&profiles).Error; err != nil {
		return nil, err
	}

	for _, p := range profiles {
		out[p.ID] = p
	}

	return out, nil
}

// SetActive toggles the active flag of a profile.
func SetActive(db *gorm.DB, id string, active bool) (*models.Profile, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	result := db.Model(&models.Profile{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return Get(db, id)
}

// NormalizePhone strips hyphens and spaces.
func NormalizePhone(phone string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(phone))
}

// FindByContact finds a profile by phone, ignoring hyphens and spaces, or by
// email, ignoring case. Phone wins when both are given.
func FindByContact(db *gorm.DB, phone, email string) (*models.Profile, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	phone = NormalizePhone(phone)
	email = strings.TrimSpace(email)

	q := db.Model(&models.Profile{})

	switch {
	case phone != "":
		q = q.Where("REPLACE(REPLACE(phone, '-', ''), ' ', '') = ?", phone)
	case email != "":
		q = q.Where("LOWER(email) = ?", strings.ToLower(email))
	default:
		return nil, ErrLookupEmpty
	}

	var p models.Profile
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &p, nil
}
