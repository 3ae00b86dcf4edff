// Package setting provides CRUD operations for the key value app settings.
package setting

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/models"
)

const (
	keyQueryPattern = "setting_key = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingKeyEmpty is returned when attempting to read or write a setting without a key.
	ErrSettingKeyEmpty = errors.New("setting key cannot be empty")
	// ErrSettingValueInvalid is returned when the value is not valid JSON.
	ErrSettingValueInvalid = errors.New("setting value must be valid json")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = controller.ErrDBNil
)

// Get retrieves a setting by its key.
func Get(db *gorm.DB, key string) (*models.AppSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var setting models.AppSetting

	result := db.Where(keyQueryPattern, key).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, result.Error
	}

	return &setting, nil
}

// GetAll retrieves all settings ordered by key.
func GetAll(db *gorm.DB) ([]models.AppSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	settings := make([]models.AppSetting, 0)

	result := db.Order("setting_key ASC").Find(&settings)
	if result.Error != nil {
		return nil, result.Error
	}

	return settings, nil
}

// Set creates or updates a setting by key (upsert operation).
// The description is only overwritten when not empty.
func Set(db *gorm.DB, key string, value json.RawMessage, description string) (*models.AppSetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	if !json.Valid(value) {
		return nil, ErrSettingValueInvalid
	}

	var setting models.AppSetting

	result := db.Where(keyQueryPattern, key).First(&setting)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		// Setting doesn't exist, create it
		setting = models.AppSetting{
			Key:         key,
			Value:       models.JSONText(value),
			Description: description,
		}

		if err := db.Create(&setting).Error; err != nil {
			return nil, err
		}

		return &setting, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	// Setting exists, update it
	setting.Value = models.JSONText(value)
	if description != "" {
		setting.Description = description
	}

	result = db.Save(&setting)
	if result.Error != nil {
		return nil, result.Error
	}

	return &setting, nil
}

// Delete deletes a setting by key.
func Delete(db *gorm.DB, key string) error {
	if db == nil {
		return ErrDBNil
	}

	if key == "" {
		return ErrSettingKeyEmpty
	}

	result := db.Where(keyQueryPattern, key).Delete(&models.AppSetting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}
