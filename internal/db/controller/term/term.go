// Package term manages the versioned terms documents.
package term

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/models"
)

var (
	// ErrNotFound is returned when a term does not exist.
	ErrNotFound = errors.New("term not found")
	// ErrFieldsEmpty is returned when category, title or content is missing.
	ErrFieldsEmpty = errors.New("category, title and content are required")
)

// List returns every term by category, newest version first.
func List(db *gorm.DB) ([]models.Term, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	terms := make([]models.Term, 0)
	err := db.Order("category ASC").Order("version DESC").Find(&terms).Error

	return terms, err
}

// Get returns one term.
func Get(db *gorm.DB, id string) (*models.Term, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var t models.Term
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &t, nil
}

func deactivateOthers(tx *gorm.DB, category, keep string) error {
	return tx.Model(&models.Term{}).
		Where("category = ? AND id <> ? AND is_active = ?", category, keep, true).
		Update("is_active", false).Error
}

// Create stores the next version of a category. An active term replaces the
// previously active one.
func Create(db *gorm.DB, category, title, content string, active bool) (*models.Term, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	if category == "" || title == "" || content == "" {
		return nil, ErrFieldsEmpty
	}

	t := models.Term{Category: category, Title: title, Content: content, IsActive: active}

	err := db.Transaction(func(tx *gorm.DB) error {
		var latest int
		if err := tx.Model(&models.Term{}).
			Where("category = ?", category).
			Select("COALESCE(MAX(version), 0)").
			Scan(&latest).Error; err != nil {
			return err
		}

		t.Version = latest + 1

		if err := tx.Create(&t).Error; err != nil {
			return err
		}

		if active {
			return deactivateOthers(tx, category, t.ID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// Patch holds the term fields to change. Nil fields are left alone.
type Patch struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsActive *bool   `json:"is_active"`
}

// Update changes a term in place.
func Update(db *gorm.DB, id string, p Patch) (*models.Term, error) {
	t, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	cols := make(map[string]interface{})

	if p.Title != nil {
		if *p.Title == "" {
			return nil, ErrFieldsEmpty
		}

		cols["title"] = *p.Title
	}

	if p.Content != nil {
		if *p.Content == "" {
			return nil, ErrFieldsEmpty
		}

		cols["content"] = *p.Content
	}

	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}

	if len(cols) == 0 {
		return t, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(t).Updates(cols).Error; err != nil {
			return err
		}

		if p.IsActive != nil && *p.IsActive {
			return deactivateOthers(tx, t.Category, t.ID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return Get(db, id)
}

// Delete removes a term.
func Delete(db *gorm.DB, id string) error {
	if db == nil {
		return controller.ErrDBNil
	}

	res := db.Where("id = ?", id).Delete(&models.Term{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
