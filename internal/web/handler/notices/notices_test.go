package notices

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller/notification"
	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/notify"
	"github.com/mompick/mompick-admin/internal/push"
	"github.com/mompick/mompick-admin/internal/storage"
	"github.com/mompick/mompick-admin/internal/web/webtest"
)

type recorder struct {
	mu   sync.Mutex
	sent []push.Message
}

func (r *recorder) SendToUser(_ context.Context, m push.Message) (push.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, m)

	return push.Result{Sent: 1}, nil
}

func setup(t *testing.T) (*fiber.App, *gorm.DB, *recorder) {
	t.Helper()

	db := dbtest.New(t)
	rec := &recorder{}
	app := webtest.NewApp()

	var s Service
	require.NoError(t, s.Init(app, webtest.Config(), db, storage.NewMemory(""), notify.New(db, rec, 2)))

	return app, db, rec
}

func TestLifecycle(t *testing.T) {
	app, db, rec := setup(t)

	mom := dbtest.Profile(t, db, "mom", true)
	quiet := dbtest.Profile(t, db, "quiet", true)
	dbtest.Profile(t, db, "gone", false)
	require.NoError(t, db.Create(&models.NotificationSetting{UserID: quiet.ID, Notice: false}).Error)

	var out webtest.JSON
	assert.Equal(t, http.StatusBadRequest, webtest.Do(t, app, webtest.Request(t, http.MethodPost, Path+"/", map[string]string{"title": "t"}), &out))
	assert.Equal(t, "content is required", out["error"])

	var created struct {
		Notice      notification.Notice `json:"notice"`
		Push        notify.Summary      `json:"push"`
		PushTargets int                 `json:"pushTargets"`
	}
	require.Equal(t, http.StatusCreated, webtest.Do(t, app, webtest.Request(t, http.MethodPost, Path+"/",
		map[string]string{"title": "Holiday", "content": "Closed on Monday"}), &created))
	assert.Equal(t, 2, created.Notice.Recipients)
	assert.Equal(t, 1, created.PushTargets)
	assert.Equal(t, 1, created.Push.Success)

	require.Len(t, rec.sent, 1)
	assert.Equal(t, mom.ID, rec.sent[0].UserID)
	assert.Equal(t, models.NotificationNotice, rec.sent[0].Data["type"])
	assert.Equal(t, created.Notice.ID, rec.sent[0].Data["notice_id"])

	var list struct {
		Notices []notification.Notice `json:"notices"`
	}
	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodGet, Path+"/", nil), &list))
	require.Len(t, list.Notices, 1)

	target := Path + "/" + created.Notice.ID
	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodPut, target,
		map[string]string{"title": "Holiday", "content": "Closed on Tuesday"}), nil))

	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodGet, Path+"/", nil), &list))
	assert.Equal(t, "Closed on Tuesday", list.Notices[0].Content)

	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodDelete, target, nil), nil))
	assert.Equal(t, http.StatusNotFound, webtest.Do(t, app, webtest.Request(t, http.MethodDelete, target, nil), nil))
	assert.Equal(t, http.StatusNotFound, webtest.Do(t, app, webtest.Request(t, http.MethodPut, target,
		map[string]string{"title": "x", "content": "y"}), nil))
}

func TestCreateWithoutRecipients(t *testing.T) {
	app, _, _ := setup(t)

	assert.Equal(t, http.StatusBadRequest, webtest.Do(t, app, webtest.Request(t, http.MethodPost, Path+"/",
		map[string]string{"title": "t", "content": "c"}), nil))
}
