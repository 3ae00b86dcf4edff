// Package notification stores in-app notifications, including notices which
// are notifications grouped by a shared notice id.
package notification

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/models"
)

const insertBatchSize = 500

var (
	// ErrNoticeNotFound is returned when no notification carries the notice id.
	ErrNoticeNotFound = errors.New("notice not found")
	// ErrNoRecipients is returned when a fan-out has nobody to deliver to.
	ErrNoRecipients = errors.New("no recipients")
)

// New builds an unsaved notification for one recipient.
func New(kind, toUserID string, payload models.NotificationPayload) models.Notification {
	n := models.Notification{
		Type:     kind,
		ToUserID: toUserID,
		Payload:  datatypes.NewJSONType(payload),
	}

	if payload.NoticeID != "" {
		noticeID := payload.NoticeID
		n.NoticeID = &noticeID
	}

	return n
}

// FanOut builds one notification per recipient and inserts them in one batch.
func FanOut(db *gorm.DB, kind string, recipients []string, payload models.NotificationPayload) ([]models.Notification, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	rows := make([]models.Notification, 0, len(recipients))
	for _, id := range recipients {
		rows = append(rows, New(kind, id, payload))
	}

	if err := db.CreateInBatches(&rows, insertBatchSize).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// HasDuplicate reports whether a system notification with the same title and
// content was created within window of at.
func HasDuplicate(db *gorm.DB, title, content string, at time.Time, window time.Duration) (bool, error) {
	if db == nil {
		return false, controller.ErrDBNil
	}

	rows, err := db.Model(&models.Notification{}).
		Select("payload").
		Where("type = ? AND created_at >= ? AND created_at <= ?",
			models.NotificationSystem, at.Add(-window).UTC(), at.Add(window).UTC()).
		Rows()
	if err != nil {
		return false, err
	}

	defer rows.Close()

	for rows.Next() {
		var n models.Notification
		if err = db.ScanRows(rows, &n); err != nil {
			return false, err
		}

		p := n.Payload.Data()
		if p.Title == title && p.Content == content {
			return true, nil
		}
	}

	return false, rows.Err()
}

// ForUser lists the notifications of one user, newest first.
func ForUser(db *gorm.DB, userID string) ([]models.Notification, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	rows := make([]models.Notification, 0)
	err := db.Where("to_user_id = ?", userID).Order("created_at DESC").Find(&rows).Error

	return rows, err
}

// Notice is one notice as shown to admins, deduplicated over its recipients.
type Notice struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Recipients int       `json:"recipients"`
}

// Notices lists every notice once, newest first.
func Notices(db *gorm.DB) ([]Notice, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var rows []models.Notification
	if err := db.Where("type = ? AND notice_id IS NOT NULL", models.NotificationNotice).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]*Notice)
	out := make([]*Notice, 0)

	for i := range rows {
		id := *rows[i].NoticeID
		if n, ok := byID[id]; ok {
			n.Recipients++
			continue
		}

		p := rows[i].Payload.Data()
		n := &Notice{
			ID:         id,
			Title:      p.Title,
			Content:    p.Content,
			ImageURL:   p.ImageURL,
			CreatedAt:  rows[i].CreatedAt,
			Recipients: 1,
		}
		byID[id] = n
		out = append(out, n)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	notices := make([]Notice, 0, len(out))
	for _, n := range out {
		notices = append(notices, *n)
	}

	return notices, nil
}

// CreateNotice fans a notice out to the recipients under a fresh notice id.
func CreateNotice(db *gorm.DB, recipients []string, title, content, imageURL string) (*Notice, error) {
	p := models.NotificationPayload{
		Title:    title,
		Content:  content,
		Message:  content,
		ImageURL: imageURL,
		NoticeID: uuid.NewString(),
	}

	rows, err := FanOut(db, models.NotificationNotice, recipients, p)
	if err != nil {
		return nil, err
	}

	return &Notice{
		ID:         p.NoticeID,
		Title:      title,
		Content:    content,
		ImageURL:   imageURL,
		CreatedAt:  rows[0].CreatedAt,
		Recipients: len(rows),
	}, nil
}

// UpdateNotice rewrites the payload of every row of a notice.
func UpdateNotice(db *gorm.DB, noticeID, title, content, imageURL string) (int64, error) {
	if db == nil {
		return 0, controller.ErrDBNil
	}

	p := models.NotificationPayload{
		Title:    title,
		Content:  content,
		Message:  content,
		ImageURL: imageURL,
		NoticeID: noticeID,
	}

	result := db.Model(&models.Notification{}).
		Where("type = ? AND notice_id = ?", models.NotificationNotice, noticeID).
		Update("payload", datatypes.NewJSONType(p))
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		return 0, ErrNoticeNotFound
	}

	return result.RowsAffected, nil
}

// DeleteNotice removes every row of a notice.
func DeleteNotice(db *gorm.DB, noticeID string) (int64, error) {
	if db == nil {
		return 0, controller.ErrDBNil
	}

	result := db.Where("type = ? AND notice_id = ?", models.NotificationNotice, noticeID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		return 0, ErrNoticeNotFound
	}

	return result.RowsAffected, nil
}
