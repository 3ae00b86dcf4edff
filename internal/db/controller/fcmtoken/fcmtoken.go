// Package fcmtoken stores device push tokens.
package fcmtoken

import (
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/models"
)

// ForUser lists the push tokens of a user.
func ForUser(db *gorm.DB, userID string) ([]models.FCMToken, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	tokens := make([]models.FCMToken, 0)
	err := db.Where("user_id = ?", userID).Find(&tokens).Error

	return tokens, err
}

// Register stores a token for a user, moving it over if another user owned it.
func Register(db *gorm.DB, userID, token, platform string) (*models.FCMToken, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var t models.FCMToken

	err := db.Where(models.FCMToken{Token: token}).
		Assign(models.FCMToken{UserID: userID, Platform: platform}).
		FirstOrCreate(&t).Error
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// Delete removes the given tokens. Unknown tokens are ignored.
func Delete(db *gorm.DB, tokens ...string) (int64, error) {
	if db == nil {
		return 0, controller.ErrDBNil
	}

	if len(tokens) == 0 {
		return 0, nil
	}

	result := db.Where("token IN ?", tokens).Delete(&models.FCMToken{})

	return result.RowsAffected, result.Error
}
