// Package notify creates in-app notifications for many users and pushes them
// to their devices in batches.
package notify

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller/notification"
	"github.com/mompick/mompick-admin/internal/db/controller/notificationsetting"
	"github.com/mompick/mompick-admin/internal/db/controller/profile"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/push"
)

// DefaultBatchSize is the number of users pushed to concurrently.
const DefaultBatchSize = 10

// Pusher sends a message to every device of one user.
type Pusher interface {
	SendToUser(ctx context.Context, m push.Message) (push.Result, error)
}

// Summary counts push outcomes per user.
type Summary struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// PushBatched sends one message per user. Users of one batch are pushed to
// concurrently, batches run one after another. A failing user does not stop
// the others, neither does one that panics.
func PushBatched(ctx context.Context, p Pusher, userIDs []string, batchSize int, build func(userID string) push.Message) Summary {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	var success, failed, skipped atomic.Int64

	for start := 0; start < len(userIDs); start += batchSize {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("abandoned", len(userIDs)-start).Int("total", len(userIDs)).
				Msg("push fan-out cut short")
			failed.Add(int64(len(userIDs) - start))

			break
		}

		end := min(start+batchSize, len(userIDs))

		var g errgroup.Group

		for _, id := range userIDs[start:end] {
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						log.Error().Interface("panic", r).Str("user", id).Msg("push panicked")
						failed.Add(1)
					}
				}()

				res, err := p.SendToUser(ctx, build(id))

				switch {
				case err != nil:
					log.Warn().Err(err).Str("user", id).Msg("push failed")
					failed.Add(1)
				case res.Skipped:
					skipped.Add(1)
				case res.OK():
					success.Add(1)
				default:
					failed.Add(1)
				}

				return nil
			})
		}

		_ = g.Wait()
	}

	return Summary{Success: int(success.Load()), Failed: int(failed.Load()), Skipped: int(skipped.Load())}
}

// Notifier creates notifications and pushes them.
type Notifier struct {
	db        *gorm.DB
	pusher    Pusher
	batchSize int
}

// New creates a notifier.
func New(db *gorm.DB, pusher Pusher, batchSize int) *Notifier {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	return &Notifier{db: db, pusher: pusher, batchSize: batchSize}
}

// BroadcastResult reports a broadcast.
type BroadcastResult struct {
	NotificationCount int `json:"notificationCount"`
	FCMSuccess        int `json:"fcmSuccess"`
	FCMFailed         int `json:"fcmFailed"`
	FCMSkipped        int `json:"fcmSkipped"`
}

// NotificationIDKey is the push data key naming the in-app notification row.
const NotificationIDKey = "notificationId"

func message(kind, userID, title, body string, data map[string]string) push.Message {
	d := map[string]string{"type": kind}
	for k, v := range data {
		d[k] = v
	}

	return push.Message{UserID: userID, Title: title, Body: body, Data: d}
}

// SystemMessage builds the push message of a system notification for a user.
func SystemMessage(title, body string, data map[string]string) func(string) push.Message {
	return func(userID string) push.Message {
		return message(models.NotificationSystem, userID, title, body, data)
	}
}

// NoticeMessage builds a push on the notice channel that opens the
// recipient's own notification row, looked up in rowIDs by user id.
func NoticeMessage(title, body string, rowIDs, data map[string]string) func(string) push.Message {
	return func(userID string) push.Message {
		m := message(models.NotificationNotice, userID, title, body, data)
		if id, ok := rowIDs[userID]; ok {
			m.Data[NotificationIDKey] = id
		}

		return m
	}
}

// RowIDs maps each recipient to the id of their notification row.
func RowIDs(rows []models.Notification) map[string]string {
	ids := make(map[string]string, len(rows))
	for _, r := range rows {
		ids[r.ToUserID] = r.ID
	}

	return ids
}

// Broadcast stores a system notification for every active user and pushes it
// to all of them regardless of their settings.
func (n *Notifier) Broadcast(ctx context.Context, title, body string) (BroadcastResult, error) {
	recipients, err := profile.ActiveIDs(n.db)
	if err != nil {
		return BroadcastResult{}, err
	}

	rows, err := notification.FanOut(n.db, models.NotificationSystem, recipients, models.NotificationPayload{
		Title:   title,
		Content: body,
		Message: body,
	})
	if err != nil {
		return BroadcastResult{}, err
	}

	s := PushBatched(ctx, n.pusher, recipients, n.batchSize, SystemMessage(title, body, nil))

	log.Info().Int("notifications", len(rows)).Int("pushed", s.Success).Int("failed", s.Failed).
		Msg("broadcast sent")

	return BroadcastResult{
		NotificationCount: len(rows),
		FCMSuccess:        s.Success,
		FCMFailed:         s.Failed,
		FCMSkipped:        s.Skipped,
	}, nil
}

// Push outcomes of an individual notification.
const (
	PushSent     = "sent"
	PushFailed   = "failed"
	PushSkipped  = "skipped"
	PushDisabled = "disabled"
)

// IndividualResult reports a notification to one user.
type IndividualResult struct {
	User         *models.Profile      `json:"user"`
	Notification *models.Notification `json:"notification"`
	Push         string               `json:"push"`
	PushError    string               `json:"pushError,omitempty"`
}

// Individual stores a system notification for the user matching phone or
// email and pushes it when the user accepts notices.
func (n *Notifier) Individual(ctx context.Context, title, body, phone, email string) (*IndividualResult, error) {
	user, err := profile.FindByContact(n.db, phone, email)
	if err != nil {
		return nil, err
	}

	row := notification.New(models.NotificationSystem, user.ID, models.NotificationPayload{
		Title:   title,
		Content: body,
		Message: body,
	})
	if err = n.db.Create(&row).Error; err != nil {
		return nil, err
	}

	res := &IndividualResult{User: user, Notification: &row}

	ok, err := notificationsetting.Enabled(n.db, user.ID, notificationsetting.Notice)
	if err != nil {
		return nil, err
	}

	if !ok {
		res.Push = PushDisabled
		return res, nil
	}

	build := NoticeMessage(title, body, map[string]string{user.ID: row.ID}, nil)

	pr, err := n.pusher.SendToUser(ctx, build(user.ID))

	switch {
	case err != nil:
		res.Push = PushFailed
		res.PushError = err.Error()
	case pr.Skipped:
		res.Push = PushSkipped
	case pr.OK():
		res.Push = PushSent
	default:
		res.Push = PushFailed
		if len(pr.Errors) > 0 {
			res.PushError = pr.Errors[0]
		}
	}

	return res, nil
}

// ToOptedIn pushes to the recipients whose category setting is not off.
func (n *Notifier) ToOptedIn(ctx context.Context, recipients []string, c notificationsetting.Category, build func(string) push.Message) (Summary, int, error) {
	opted, err := notificationsetting.FilterEnabled(n.db, recipients, c)
	if err != nil {
		return Summary{}, 0, err
	}

	return PushBatched(ctx, n.pusher, opted, n.batchSize, build), len(opted), nil
}
