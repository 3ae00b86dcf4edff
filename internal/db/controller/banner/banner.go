// Package banner manages the advertisement banners shown in the app.
package banner

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/models"
)

var (
	// ErrNotFound is returned when a banner does not exist.
	ErrNotFound = errors.New("banner not found")
	// ErrInvalidType is returned for a banner type other than splash, modal or main.
	ErrInvalidType = errors.New("banner_type must be splash, modal or main")
	// ErrImageEmpty is returned when a banner has no image.
	ErrImageEmpty = errors.New("image_url is required")
)

// ValidType reports whether t is a known banner type.
func ValidType(t string) bool {
	switch t {
	case models.BannerSplash, models.BannerModal, models.BannerMain:
		return true
	}

	return false
}

// List returns the banners of one type ordered for display.
func List(db *gorm.DB, bannerType string) ([]models.AdBanner, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	if bannerType == "" {
		bannerType = models.BannerSplash
	}

	if !ValidType(bannerType) {
		return nil, ErrInvalidType
	}

	banners := make([]models.AdBanner, 0)
	err := db.Where("banner_type = ?", bannerType).
		Order("order_index ASC").
		Order("created_at DESC").
		Find(&banners).Error

	return banners, err
}

// Get returns one banner.
func Get(db *gorm.DB, id string) (*models.AdBanner, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var b models.AdBanner
	if err := db.Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &b, nil
}

// Create stores a new banner.
func Create(db *gorm.DB, b *models.AdBanner) error {
	if db == nil {
		return controller.ErrDBNil
	}

	if !ValidType(b.BannerType) {
		return ErrInvalidType
	}

	if b.ImageURL == "" {
		return ErrImageEmpty
	}

	b.ID = ""

	return db.Create(b).Error
}

// Patch holds the banner fields to change. Nil fields are left alone.
type Patch struct {
	BannerType    *string    `json:"banner_type"`
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	ImageURL      *string    `json:"image_url"`
	LinkURL       *string    `json:"link_url"`
	OrderIndex    *int       `json:"order_index"`
	IsActive      *bool      `json:"is_active"`
	ShowClickText *bool      `json:"show_click_text"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

func (p Patch) columns() (map[string]interface{}, error) {
	cols := make(map[string]interface{})

	if p.BannerType != nil {
		if !ValidType(*p.BannerType) {
			return nil, ErrInvalidType
		}

		cols["banner_type"] = *p.BannerType
	}

	if p.ImageURL != nil {
		if *p.ImageURL == "" {
			return nil, ErrImageEmpty
		}

		cols["image_url"] = *p.ImageURL
	}

	if p.Title != nil {
		cols["title"] = *p.Title
	}

	if p.Description != nil {
		cols["description"] = *p.Description
	}

	if p.LinkURL != nil {
		cols["link_url"] = *p.LinkURL
	}

	if p.OrderIndex != nil {
		cols["order_index"] = *p.OrderIndex
	}

	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}

	if p.ShowClickText != nil {
		cols["show_click_text"] = *p.ShowClickText
	}

	if p.StartDate != nil {
		cols["start_date"] = p.StartDate.UTC()
	}

	if p.EndDate != nil {
		cols["end_date"] = p.EndDate.UTC()
	}

	return cols, nil
}

// Update applies a partial change and returns the stored banner.
func Update(db *gorm.DB, id string, p Patch) (*models.AdBanner, error) {
	b, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	cols, err := p.columns()
	if err != nil {
		return nil, err
	}

	if len(cols) > 0 {
		if err = db.Model(b).Updates(cols).Error; err != nil {
			return nil, err
		}
	}

	return Get(db, id)
}

// Delete removes a banner and returns it so its image can be purged.
func Delete(db *gorm.DB, id string) (*models.AdBanner, error) {
	b, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if err = db.Delete(b).Error; err != nil {
		return nil, err
	}

	return b, nil
}
