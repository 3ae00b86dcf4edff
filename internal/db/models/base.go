// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base holds the columns shared by every uuid keyed table.
type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a random uuid unless the caller already set one.
func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	return nil
}

// All returns every model for auto migration.
func All() []interface{} {
	return []interface{}{
		&Admin{},
		&Profile{},
		&CommunityPost{},
		&Comment{},
		&PostLike{},
		&Favorite{},
		&Playground{},
		&Kindergarten{},
		&Childcare{},
		&PlaygroundReview{},
		&KindergartenReview{},
		&ChildcareReview{},
		&PlaygroundReviewImage{},
		&KindergartenReviewImage{},
		&ChildcareReviewImage{},
		&ReviewHelpful{},
		&ReviewDeleteRequest{},
		&AdBanner{},
		&Term{},
		&AppSetting{},
		&Report{},
		&ScheduledNotification{},
		&Notification{},
		&NotificationSetting{},
		&FCMToken{},
		&KindergartenMeal{},
		&ChildcareMeal{},
		&KindergartenCustomInfo{},
		&ChildcareCustomInfo{},
	}
}
