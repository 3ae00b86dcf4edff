package scheduled

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/dispatcher"
	"github.com/mompick/mompick-admin/internal/web/webtest"
)

type fakeRunner struct {
	runs int
	err  error
}

func (f *fakeRunner) Run(context.Context) (dispatcher.Report, error) {
	f.runs++

	return dispatcher.Report{Total: 1, Processed: 1}, f.err
}

var now = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

func setup(t *testing.T) (*fiber.App, *gorm.DB, *fakeRunner) {
	t.Helper()

	db := dbtest.New(t)
	runner := &fakeRunner{}
	app := webtest.NewApp()

	s := Service{now: func() time.Time { return now }}
	require.NoError(t, s.Init(app, webtest.Config(), db, runner))

	return app, db, runner
}

func TestCreateAndList(t *testing.T) {
	app, _, _ := setup(t)

	tests := []struct {
		name   string
		body   webtest.JSON
		status int
		errMsg string
	}{
		{"missing time", webtest.JSON{"title": "t", "body": "b"}, http.StatusBadRequest, "scheduledAt is required"},
		{"blank title", webtest.JSON{"title": "  ", "body": "b", "scheduledAt": now.Add(time.Hour)}, http.StatusBadRequest, "title is required"},
		{"past", webtest.JSON{"title": "t", "body": "b", "scheduledAt": now.Add(-time.Minute)}, http.StatusBadRequest, "scheduled time must be in the future"},
		{"ok", webtest.JSON{"title": "Sale", "body": "Tomorrow", "scheduledAt": now.Add(time.Hour)}, http.StatusCreated, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out webtest.JSON
			require.Equal(t, tt.status, webtest.Do(t, app, webtest.Request(t, http.MethodPost, Path+"/", tt.body), &out))

			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, out["error"])
			}
		})
	}

	var list struct {
		Scheduled []models.ScheduledNotification `json:"scheduled"`
	}
	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodGet, Path+"/", nil), &list))
	require.Len(t, list.Scheduled, 1)
	assert.Equal(t, "Sale", list.Scheduled[0].Title)
	assert.Equal(t, models.ScheduledPending, list.Scheduled[0].Status)
}

func TestCancel(t *testing.T) {
	app, db, _ := setup(t)

	row := models.ScheduledNotification{Title: "t", Body: "b", ScheduledAt: now.Add(time.Hour), Status: models.ScheduledPending}
	require.NoError(t, db.Create(&row).Error)

	sent := models.ScheduledNotification{Title: "t", Body: "b", ScheduledAt: now, Status: models.ScheduledSent}
	require.NoError(t, db.Create(&sent).Error)

	assert.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodDelete, Path+"/"+row.ID, nil), nil))
	assert.Equal(t, http.StatusConflict, webtest.Do(t, app, webtest.Request(t, http.MethodDelete, Path+"/"+row.ID, nil), nil))
	assert.Equal(t, http.StatusConflict, webtest.Do(t, app, webtest.Request(t, http.MethodDelete, Path+"/"+sent.ID, nil), nil))
	assert.Equal(t, http.StatusNotFound, webtest.Do(t, app, webtest.Request(t, http.MethodDelete, Path+"/nope", nil), nil))

	var stored models.ScheduledNotification
	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	assert.Equal(t, models.ScheduledCancelled, stored.Status)
}

func TestProcess(t *testing.T) {
	app, _, runner := setup(t)

	var out struct {
		Report dispatcher.Report `json:"report"`
	}
	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodPost, Path+"/process", nil), &out))
	assert.Equal(t, 1, out.Report.Processed)
	assert.Equal(t, 1, runner.runs)

	runner.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, webtest.Do(t, app, webtest.Request(t, http.MethodPost, Path+"/process", nil), nil))
}
