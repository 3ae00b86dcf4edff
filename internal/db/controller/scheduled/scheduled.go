// Package scheduled stores scheduled notifications and implements their
// status transitions as conditional updates.
package scheduled

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/models"
)

var (
	// ErrNotFound is returned when a scheduled notification does not exist.
	ErrNotFound = errors.New("scheduled notification not found")
	// ErrNotPending is returned when a transition requires the pending state.
	ErrNotPending = errors.New("scheduled notification is not pending")
	// ErrTitleEmpty is returned when creating without a title.
	ErrTitleEmpty = errors.New("title is required")
	// ErrBodyEmpty is returned when creating without a body.
	ErrBodyEmpty = errors.New("body is required")
	// ErrNotInFuture is returned when the scheduled time is not after now.
	ErrNotInFuture = errors.New("scheduled time must be in the future")
)

// Active lists pending and processing rows, earliest first.
func Active(db *gorm.DB) ([]models.ScheduledNotification, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	rows := make([]models.ScheduledNotification, 0)

	err := db.Where("status IN ?", []string{models.ScheduledPending, models.ScheduledProcessing}).
		Order("scheduled_at ASC").
		Find(&rows).Error

	return rows, err
}

// Get returns one scheduled notification.
func Get(db *gorm.DB, id string) (*models.ScheduledNotification, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var row models.ScheduledNotification
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &row, nil
}

// Create inserts a pending scheduled notification. scheduledAt must be after now.
func Create(db *gorm.DB, title, body string, scheduledAt, now time.Time) (*models.ScheduledNotification, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)

	switch {
	case title == "":
		return nil, ErrTitleEmpty
	case body == "":
		return nil, ErrBodyEmpty
	case !scheduledAt.After(now):
		return nil, ErrNotInFuture
	}

	row := models.ScheduledNotification{
		Title:       title,
		Body:        body,
		ScheduledAt: scheduledAt.UTC(),
		Status:      models.ScheduledPending,
	}

	if err := db.Create(&row).Error; err != nil {
		return nil, err
	}

	return &row, nil
}

// Due lists pending rows whose scheduled time is not after now, earliest first.
func Due(db *gorm.DB, now time.Time) ([]models.ScheduledNotification, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	rows := make([]models.ScheduledNotification, 0)

	err := db.Where("status = ? AND scheduled_at <= ?", models.ScheduledPending, now.UTC()).
		Order("scheduled_at ASC").
		Find(&rows).Error

	return rows, err
}

// transition moves a row from one status to another only if it is still in
// the expected status. It reports whether this caller won the update.
func transition(db *gorm.DB, id string, from, to string, extra map[string]interface{}) (bool, error) {
	if db == nil {
		return false, controller.ErrDBNil
	}

	updates := map[string]interface{}{
		"status":     to,
		"updated_at": db.NowFunc(),
	}

	for k, v := range extra {
		updates[k] = v
	}

	result := db.Model(&models.ScheduledNotification{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// Claim moves a row from pending to processing. false means another worker
// claimed it first or its status changed.
func Claim(db *gorm.DB, id string) (bool, error) {
	return transition(db, id, models.ScheduledPending, models.ScheduledProcessing,
		map[string]interface{}{"attempts": gorm.Expr("attempts + 1")})
}

// Release moves a claimed row back to pending so the next cycle retries it.
func Release(db *gorm.DB, id string) error {
	_, err := transition(db, id, models.ScheduledProcessing, models.ScheduledPending, nil)
	return err
}

// MarkSent moves a claimed row to sent.
func MarkSent(db *gorm.DB, id string) (bool, error) {
	return transition(db, id, models.ScheduledProcessing, models.ScheduledSent, nil)
}

// Cancel moves a pending row to cancelled. It returns ErrNotFound for unknown
// ids and ErrNotPending when the row already left the pending state.
func Cancel(db *gorm.DB, id string) (*models.ScheduledNotification, error) {
	ok, err := transition(db, id, models.ScheduledPending, models.ScheduledCancelled, nil)
	if err != nil {
		return nil, err
	}

	row, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if !ok {
		return row, ErrNotPending
	}

	return row, nil
}
