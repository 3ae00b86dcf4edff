package web

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/dispatcher"
	"github.com/mompick/mompick-admin/internal/facility"
	"github.com/mompick/mompick-admin/internal/notify"
	"github.com/mompick/mompick-admin/internal/opendata"
	"github.com/mompick/mompick-admin/internal/push"
	"github.com/mompick/mompick-admin/internal/storage"
	"github.com/mompick/mompick-admin/internal/web/session"
	"github.com/mompick/mompick-admin/internal/web/webtest"
)

func newService(t *testing.T) (*Service, *config.Config) {
	t.Helper()

	webtest.InitSessions()

	cfg := webtest.Config()
	db := dbtest.New(t)
	store := storage.NewMemory("")
	notifier := notify.New(db, push.NewService(db, push.Noop{}), cfg.Dispatcher.BatchSize)

	s, err := New(cfg, Deps{
		DB:       db,
		Store:    store,
		Cache:    facility.New(store, cfg.Storage.Buckets.FacilityCache, opendata.New(cfg.OpenData)),
		Notifier: notifier,
		Runner:   dispatcher.New(db, notifier, cfg.Dispatcher),
	})
	require.NoError(t, err)

	return s, cfg
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(b)
}

func TestNewRequiresDeps(t *testing.T) {
	webtest.InitSessions()

	cfg := webtest.Config()
	_, err := New(cfg, Deps{DB: dbtest.New(t)})
	assert.Error(t, err)
}

func TestGate(t *testing.T) {
	s, cfg := newService(t)

	resp, err := s.App.Test(webtest.Request(t, http.MethodGet, "/api/users", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body(t, resp), "unauthorized")

	req := webtest.Request(t, http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+cfg.Admin.APIToken)
	resp, err = s.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = s.App.Test(webtest.Request(t, http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login"))
}

func TestPublicRoutes(t *testing.T) {
	s, _ := newService(t)

	resp, err := s.App.Test(webtest.Request(t, http.MethodGet, "/checkalive", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	s.alive.Store(true)

	resp, err = s.App.Test(webtest.Request(t, http.MethodGet, "/checkalive", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = s.App.Test(webtest.Request(t, http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "go_goroutines")

	resp, err = s.App.Test(webtest.Request(t, http.MethodGet, "/static/app.js", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = s.App.Test(webtest.Request(t, http.MethodGet, "/login", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), `action="/login"`)
}

func TestPagesRender(t *testing.T) {
	s, cfg := newService(t)

	sess := session.Data{Admin: models.Admin{ID: 1, Active: true, Email: "admin@example.com"}, CreatedAt: time.Now()}
	require.NoError(t, sess.Write("sid", time.Minute))

	for _, path := range []string{"/dashboard", "/notifications"} {
		req := webtest.Request(t, http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: cfg.Webserver.Session.CookieName, Value: "sid"})

		resp, err := s.App.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)

		html := body(t, resp)
		assert.Contains(t, html, "admin@example.com", path)
		assert.Contains(t, html, cfg.Title, path)
	}
}

func TestAPINotFoundIsJSON(t *testing.T) {
	s, cfg := newService(t)

	req := webtest.Request(t, http.MethodGet, "/api/nothing-here", nil)
	req.Header.Set("Authorization", "Bearer "+cfg.Admin.APIToken)

	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body(t, resp), `"error"`)
}
