// Package notificationsetting answers which users accept push messages of a
// notification category.
package notificationsetting

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/models"
)

// Category is a push opt-in column of notification_settings.
type Category string

// Categories.
const (
	Notice  Category = "notice"
	Post    Category = "post"
	Comment Category = "comment"
	Reply   Category = "reply"
	Review  Category = "review"
)

// ErrUnknownCategory is returned for a category without a column.
var ErrUnknownCategory = errors.New("unknown notification category")

func enabled(s *models.NotificationSetting, c Category) (bool, error) {
	switch c {
	case Notice:
		return s.Notice, nil
	case Post:
		return s.Post, nil
	case Comment:
		return s.Comment, nil
	case Reply:
		return s.Reply, nil
	case Review:
		return s.Review, nil
	default:
		return false, ErrUnknownCategory
	}
}

// FilterEnabled returns the users that accept pushes of the category, keeping
// input order. Users without a settings row are enabled.
func FilterEnabled(db *gorm.DB, userIDs []string, c Category) ([]string, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	if _, err := enabled(&models.NotificationSetting{}, c); err != nil {
		return nil, err
	}

	if len(userIDs) == 0 {
		return []string{}, nil
	}

	var settings []models.NotificationSetting
	if err := db.Where("user_id IN ?", userIDs).Find(&settings).Error; err != nil {
		return nil, err
	}

	disabled := make(map[string]bool, len(settings))

	for i := range settings {
		on, _ := enabled(&settings[i], c)
		if !on {
			disabled[settings[i].UserID] = true
		}
	}

	out := make([]string, 0, len(userIDs))

	for _, id := range userIDs {
		if !disabled[id] {
			out = append(out, id)
		}
	}

	return out, nil
}

// Enabled reports whether one user accepts pushes of the category.
func Enabled(db *gorm.DB, userID string, c Category) (bool, error) {
	ids, err := FilterEnabled(db, []string{userID}, c)
	if err != nil {
		return false, err
	}

	return len(ids) == 1, nil
}
