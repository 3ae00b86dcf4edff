package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Scheduled notification states. pending -> processing -> sent is driven by the
// dispatcher, pending -> cancelled by an admin.
const (
	ScheduledPending    = "pending"
	ScheduledProcessing = "processing"
	ScheduledSent       = "sent"
	ScheduledCancelled  = "cancelled"
)

// ScheduledNotification is an announcement to be delivered to every active
// user at ScheduledAt.
type ScheduledNotification struct {
	Base
	Title       string    `gorm:"size:255;not null" json:"title"`
	Body        string    `gorm:"not null" json:"body"`
	ScheduledAt time.Time `gorm:"index" json:"scheduled_at"`
	Status      string    `gorm:"size:20;index;not null" json:"status"`
	// Attempts counts claims, so rows stuck in revert loops are visible.
	Attempts int `json:"attempts"`
}

// BeforeSave stores the schedule in UTC so range queries compare consistently.
func (s *ScheduledNotification) BeforeSave(_ *gorm.DB) error {
	s.ScheduledAt = s.ScheduledAt.UTC()

	return nil
}

// Notification types.
const (
	NotificationSystem = "system"
	NotificationNotice = "notice"
)

// NotificationPayload is the JSON payload of an in-app notification.
type NotificationPayload struct {
	Title                   string `json:"title"`
	Content                 string `json:"content"`
	Message                 string `json:"message,omitempty"`
	NoticeID                string `json:"notice_id,omitempty"`
	ImageURL                string `json:"image_url,omitempty"`
	ScheduledNotificationID string `json:"scheduled_notification_id,omitempty"`
}

// Notification is one in-app notification of one recipient.
type Notification struct {
	Base
	Type       string                                  `gorm:"size:20;index" json:"type"`
	ToUserID   string                                  `gorm:"size:36;index" json:"to_user_id"`
	FromUserID *string                                 `gorm:"size:36" json:"from_user_id"`
	NoticeID   *string                                 `gorm:"size:36;index" json:"notice_id"`
	Payload    datatypes.JSONType[NotificationPayload] `json:"payload"`
	IsRead     bool                                    `json:"is_read"`
}

// NotificationSetting holds the per category push opt-ins of a user.
// A missing row means every category is enabled.
type NotificationSetting struct {
	Base
	UserID  string `gorm:"size:36;uniqueIndex" json:"user_id"`
	Notice  bool   `json:"notice"`
	Post    bool   `json:"post"`
	Comment bool   `json:"comment"`
	Reply   bool   `json:"reply"`
	Review  bool   `json:"review"`
}

// Push platforms.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformWeb     = "web"
)

// FCMToken is a device push token of a user.
type FCMToken struct {
	Base
	UserID   string `gorm:"size:36;index" json:"user_id"`
	Token    string `gorm:"size:255;uniqueIndex" json:"token"`
	Platform string `gorm:"size:16" json:"platform"`
}
