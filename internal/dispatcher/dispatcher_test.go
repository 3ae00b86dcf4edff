package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/notification"
	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/notify"
	"github.com/mompick/mompick-admin/internal/push"
)

type recordingPusher struct {
	mu    sync.Mutex
	users []string
	msgs  []push.Message
	err   error
	panic bool
}

func (p *recordingPusher) SendToUser(_ context.Context, m push.Message) (push.Result, error) {
	if p.panic {
		panic("transport exploded")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.users = append(p.users, m.UserID)
	p.msgs = append(p.msgs, m)

	if p.err != nil {
		return push.Result{}, p.err
	}

	return push.Result{Sent: 1}, nil
}

func newDispatcher(db *gorm.DB, p notify.Pusher) *Dispatcher {
	return New(db, notify.New(db, p, 10), config.Dispatcher{DuplicateWindow: 5 * time.Minute})
}

func schedule(t *testing.T, db *gorm.DB, title, body string, at time.Time) models.ScheduledNotification {
	t.Helper()

	row := models.ScheduledNotification{Title: title, Body: body, ScheduledAt: at, Status: models.ScheduledPending}
	require.NoError(t, db.Create(&row).Error)

	return row
}

func status(t *testing.T, db *gorm.DB, id string) string {
	t.Helper()

	var row models.ScheduledNotification
	require.NoError(t, db.First(&row, "id = ?", id).Error)

	return row.Status
}

func countNotifications(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&n).Error)

	return n
}

func TestRunDeliversDueNotification(t *testing.T) {
	db := dbtest.New(t)
	a := dbtest.Profile(t, db, "a", true)
	b := dbtest.Profile(t, db, "b", true)
	dbtest.Profile(t, db, "gone", false)

	row := schedule(t, db, "T", "B", time.Now().Add(-time.Second))
	p := &recordingPusher{}

	report, err := newDispatcher(db, p).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Processed)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, OutcomeSent, report.Rows[0].Outcome)
	assert.Equal(t, 2, report.Rows[0].Notifications)
	assert.Equal(t, 2, report.Rows[0].Push.Success)

	assert.Equal(t, models.ScheduledSent, status(t, db, row.ID))

	var rows []models.Notification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 2)

	recipients := []string{}
	for _, n := range rows {
		assert.Equal(t, models.NotificationSystem, n.Type)
		assert.Equal(t, "T", n.Payload.Data().Title)
		assert.Equal(t, "B", n.Payload.Data().Content)
		assert.Equal(t, row.ID, n.Payload.Data().ScheduledNotificationID)
		recipients = append(recipients, n.ToUserID)
	}

	assert.ElementsMatch(t, []string{a.ID, b.ID}, recipients)

	rowOf := map[string]string{}
	for _, n := range rows {
		rowOf[n.ToUserID] = n.ID
	}

	// pushes go to the notice channel and open the recipient's own row
	require.Len(t, p.msgs, 2)

	for _, m := range p.msgs {
		assert.Equal(t, models.NotificationNotice, m.Data["type"])
		assert.Equal(t, rowOf[m.UserID], m.Data[notify.NotificationIDKey])
		assert.NotEmpty(t, m.Data[notify.NotificationIDKey])
		assert.Equal(t, row.ID, m.Data["scheduled_notification_id"])
		assert.Equal(t, push.ChannelNotice, push.Channel(m.Data["type"]))
	}

	var processing int64
	require.NoError(t, db.Model(&models.ScheduledNotification{}).Where("status = ?", models.ScheduledProcessing).Count(&processing).Error)
	assert.Zero(t, processing)
}

func TestRunNeverSelectsFutureRows(t *testing.T) {
	db := dbtest.New(t)
	dbtest.Profile(t, db, "a", true)

	future := schedule(t, db, "later", "B", time.Now().Add(time.Hour))

	report, err := newDispatcher(db, &recordingPusher{}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Equal(t, models.ScheduledPending, status(t, db, future.ID))
	assert.Zero(t, countNotifications(t, db))
}

func TestRunProcessesEarliestFirst(t *testing.T) {
	db := dbtest.New(t)
	dbtest.Profile(t, db, "a", true)

	late := schedule(t, db, "second", "B", time.Now().Add(-time.Minute))
	early := schedule(t, db, "first", "B", time.Now().Add(-time.Hour))

	report, err := newDispatcher(db, &recordingPusher{}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, early.ID, report.Rows[0].ID)
	assert.Equal(t, late.ID, report.Rows[1].ID)
}

func TestRunSkipsDuplicates(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.Profile(t, db, "a", true)

	at := time.Now().Add(-time.Minute)

	_, err := notification.FanOut(db, models.NotificationSystem, []string{user.ID}, models.NotificationPayload{Title: "T", Content: "B"})
	require.NoError(t, err)

	row := schedule(t, db, "T", "B", at)
	p := &recordingPusher{}

	report, err := newDispatcher(db, p).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, OutcomeDuplicate, report.Rows[0].Outcome)
	assert.Equal(t, models.ScheduledSent, status(t, db, row.ID))
	assert.Equal(t, int64(1), countNotifications(t, db), "no new notification rows")
	assert.Empty(t, p.users)
}

func TestRunDuplicateWindowIsBounded(t *testing.T) {
	db := dbtest.New(t)
	user := dbtest.Profile(t, db, "a", true)

	old := notification.New(models.NotificationSystem, user.ID, models.NotificationPayload{Title: "T", Content: "B"})
	old.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, db.Create(&old).Error)

	row := schedule(t, db, "T", "B", time.Now().Add(-time.Second))

	report, err := newDispatcher(db, &recordingPusher{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, report.Rows[0].Outcome)
	assert.Equal(t, models.ScheduledSent, status(t, db, row.ID))
	assert.Equal(t, int64(2), countNotifications(t, db))
}

func TestRunPushesOnlyOptedInUsers(t *testing.T) {
	db := dbtest.New(t)
	in := dbtest.Profile(t, db, "in", true)
	out := dbtest.Profile(t, db, "out", true)
	require.NoError(t, db.Create(&models.NotificationSetting{UserID: out.ID, Notice: false, Post: true}).Error)

	schedule(t, db, "T", "B", time.Now().Add(-time.Second))
	p := &recordingPusher{}

	report, err := newDispatcher(db, p).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Rows[0].Notifications)
	assert.Equal(t, 1, report.Rows[0].PushTargets)
	assert.Equal(t, []string{in.ID}, p.users)
	assert.Equal(t, int64(2), countNotifications(t, db))
}

func TestRunPushFailuresDoNotRevert(t *testing.T) {
	db := dbtest.New(t)
	dbtest.Profile(t, db, "a", true)

	row := schedule(t, db, "T", "B", time.Now().Add(-time.Second))
	p := &recordingPusher{err: errors.New("provider down")}

	report, err := newDispatcher(db, p).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, report.Rows[0].Outcome)
	assert.Equal(t, 1, report.Rows[0].Push.Failed)
	assert.Equal(t, models.ScheduledSent, status(t, db, row.ID))
}

func TestRunRevertsWithoutRecipients(t *testing.T) {
	db := dbtest.New(t)
	dbtest.Profile(t, db, "inactive", false)

	row := schedule(t, db, "T", "B", time.Now().Add(-time.Second))

	report, err := newDispatcher(db, &recordingPusher{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, OutcomeReverted, report.Rows[0].Outcome)
	assert.Contains(t, report.Rows[0].Error, notification.ErrNoRecipients.Error())
	assert.Equal(t, models.ScheduledPending, status(t, db, row.ID))

	var got models.ScheduledNotification
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	assert.Equal(t, 1, got.Attempts)
}

func TestRunSurvivesPanickingTransport(t *testing.T) {
	db := dbtest.New(t)
	dbtest.Profile(t, db, "a", true)

	row := schedule(t, db, "T", "B", time.Now().Add(-time.Second))

	report, err := newDispatcher(db, &recordingPusher{panic: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, report.Rows[0].Outcome)
	assert.Equal(t, 1, report.Rows[0].Push.Failed)
	assert.Equal(t, models.ScheduledSent, status(t, db, row.ID))
}

func TestRunSkipsRowsClaimedElsewhere(t *testing.T) {
	db := dbtest.New(t)
	dbtest.Profile(t, db, "a", true)

	row := schedule(t, db, "T", "B", time.Now().Add(-time.Second))
	d := newDispatcher(db, &recordingPusher{})

	// another worker claims the row between selection and claim
	r := d.process(context.Background(), row)
	assert.Equal(t, OutcomeSent, r.Outcome)

	again := d.process(context.Background(), row)
	assert.Equal(t, OutcomeSkipped, again.Outcome)
	assert.Equal(t, int64(1), countNotifications(t, db), "no second fan-out")
}

func TestConcurrentRunsFanOutOnce(t *testing.T) {
	db := dbtest.New(t)
	dbtest.Profile(t, db, "a", true)
	dbtest.Profile(t, db, "b", true)

	row := schedule(t, db, "T", "B", time.Now().Add(-time.Second))

	const workers = 4

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		reports []Report
	)

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			report, err := newDispatcher(db, &recordingPusher{}).Run(context.Background())
			assert.NoError(t, err)

			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
		}()
	}

	wg.Wait()

	processed := 0
	for _, r := range reports {
		processed += r.Processed
	}

	assert.Equal(t, 1, processed)
	assert.Equal(t, models.ScheduledSent, status(t, db, row.ID))
	assert.Equal(t, int64(2), countNotifications(t, db))
}
