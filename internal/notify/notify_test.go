package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/push"
)

type fakePusher struct {
	mu       sync.Mutex
	calls    []push.Message
	results  map[string]push.Result
	errs     map[string]error
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (f *fakePusher) SendToUser(_ context.Context, m push.Message) (push.Result, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)

	for {
		peak := f.peak.Load()
		if cur <= peak || f.peak.CompareAndSwap(peak, cur) {
			break
		}
	}

	time.Sleep(f.delay)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, m)

	if err, ok := f.errs[m.UserID]; ok {
		return push.Result{}, err
	}

	if r, ok := f.results[m.UserID]; ok {
		return r, nil
	}

	return push.Result{Sent: 1}, nil
}

func TestPushBatched(t *testing.T) {
	ids := make([]string, 0, 25)
	for i := range 25 {
		ids = append(ids, string(rune('a'+i)))
	}

	p := &fakePusher{
		delay:   5 * time.Millisecond,
		errs:    map[string]error{"b": errors.New("boom")},
		results: map[string]push.Result{"c": {Skipped: true}, "d": {Failed: 1}},
	}

	s := PushBatched(context.Background(), p, ids, 10, func(id string) push.Message {
		return push.Message{UserID: id, Title: "t"}
	})

	assert.Equal(t, Summary{Success: 22, Failed: 2, Skipped: 1}, s)
	assert.Len(t, p.calls, 25)
	assert.LessOrEqual(t, p.peak.Load(), int32(10), "no more than one batch in flight")
}

func TestPushBatchedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakePusher{}
	s := PushBatched(ctx, p, []string{"a", "b"}, 1, func(id string) push.Message { return push.Message{UserID: id} })

	assert.Empty(t, p.calls)
	assert.Equal(t, 2, s.Failed)
}

func TestPushBatchedLogsAbandonedUsers(t *testing.T) {
	var buf bytes.Buffer

	prev := log.Logger
	log.Logger = zerolog.New(&buf)

	t.Cleanup(func() { log.Logger = prev })

	ctx, cancel := context.WithCancel(context.Background())
	p := &fakePusher{}

	var sent atomic.Int32

	s := PushBatched(ctx, p, []string{"a", "b", "c"}, 1, func(id string) push.Message {
		if sent.Add(1) == 1 {
			cancel()
		}

		return push.Message{UserID: id}
	})

	assert.Equal(t, 1, s.Success)
	assert.Equal(t, 2, s.Failed)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"abandoned":2`)
	assert.Contains(t, buf.String(), "push fan-out cut short")
}

func TestNoticeMessage(t *testing.T) {
	rows := []models.Notification{
		{Base: models.Base{ID: "n1"}, ToUserID: "u1"},
		{Base: models.Base{ID: "n2"}, ToUserID: "u2"},
	}

	build := NoticeMessage("T", "B", RowIDs(rows), map[string]string{"extra": "x"})

	m := build("u2")
	assert.Equal(t, "u2", m.UserID)
	assert.Equal(t, map[string]string{"type": models.NotificationNotice, NotificationIDKey: "n2", "extra": "x"}, m.Data)

	// no row, no id
	assert.NotContains(t, build("u3").Data, NotificationIDKey)
}

func TestBroadcast(t *testing.T) {
	db := dbtest.New(t)
	a := dbtest.Profile(t, db, "a", true)
	b := dbtest.Profile(t, db, "b", true)
	dbtest.Profile(t, db, "inactive", false)

	// broadcasts ignore the notice setting
	require.NoError(t, db.Create(&models.NotificationSetting{UserID: b.ID, Notice: false}).Error)

	p := &fakePusher{results: map[string]push.Result{a.ID: {Skipped: true}}}

	res, err := New(db, p, 10).Broadcast(context.Background(), "Hello", "World")
	require.NoError(t, err)
	assert.Equal(t, BroadcastResult{NotificationCount: 2, FCMSuccess: 1, FCMSkipped: 1}, res)

	var rows []models.Notification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, models.NotificationSystem, rows[0].Type)
	assert.Equal(t, "Hello", rows[0].Payload.Data().Title)
	assert.Equal(t, "World", rows[0].Payload.Data().Content)

	require.Len(t, p.calls, 2)
	assert.Equal(t, models.NotificationSystem, p.calls[0].Data["type"])
}

func TestIndividual(t *testing.T) {
	db := dbtest.New(t)

	mom := models.Profile{Nickname: "mom", Email: "Mom@Example.com", Phone: "010-1234-5678", IsActive: true}
	require.NoError(t, db.Create(&mom).Error)

	quiet := models.Profile{Nickname: "quiet", Email: "quiet@example.com", IsActive: true}
	require.NoError(t, db.Create(&quiet).Error)
	require.NoError(t, db.Create(&models.NotificationSetting{UserID: quiet.ID, Notice: false}).Error)

	t.Run("by phone", func(t *testing.T) {
		p := &fakePusher{}

		res, err := New(db, p, 10).Individual(context.Background(), "T", "B", "010 1234 5678", "")
		require.NoError(t, err)
		assert.Equal(t, mom.ID, res.User.ID)
		assert.Equal(t, PushSent, res.Push)
		require.Len(t, p.calls, 1)
		assert.Equal(t, models.NotificationNotice, p.calls[0].Data["type"])
		assert.Equal(t, res.Notification.ID, p.calls[0].Data[NotificationIDKey])
	})

	t.Run("by email", func(t *testing.T) {
		p := &fakePusher{errs: map[string]error{mom.ID: errors.New("down")}}

		res, err := New(db, p, 10).Individual(context.Background(), "T", "B", "", "mom@example.com")
		require.NoError(t, err)
		assert.Equal(t, PushFailed, res.Push)
		assert.Equal(t, "down", res.PushError)
	})

	t.Run("opted out", func(t *testing.T) {
		p := &fakePusher{}

		res, err := New(db, p, 10).Individual(context.Background(), "T", "B", "", "quiet@example.com")
		require.NoError(t, err)
		assert.Equal(t, PushDisabled, res.Push)
		assert.NotNil(t, res.Notification)
		assert.Empty(t, p.calls)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(db, &fakePusher{}, 10).Individual(context.Background(), "T", "B", "", "who@example.com")
		require.Error(t, err)
	})

	var n int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&n).Error)
	assert.Equal(t, int64(3), n)
}
