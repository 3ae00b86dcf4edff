package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/web/session"
	"github.com/mompick/mompick-admin/internal/web/webtest"
)

func newApp(cfg *config.Config) *fiber.App {
	app := webtest.NewApp()
	app.Use(New(cfg))

	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/static/app.css", ok)
	app.Get("/metrics", ok)
	app.Get("/login", ok)
	app.Get("/api/auth/session", ok)
	app.Get("/api/users", ok)
	app.Get("/notifications", ok)

	return app
}

func TestGate(t *testing.T) {
	cfg := webtest.Config()
	webtest.InitSessions()

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)
	require.NoError(t, (&session.Data{Admin: models.Admin{ID: 1, Email: "a@example.com"}}).Write(sessionID, time.Minute))

	staleID, err := session.GenerateSessionID()
	require.NoError(t, err)

	app := newApp(cfg)

	tests := []struct {
		name     string
		path     string
		cookie   string
		bearer   string
		status   int
		location string
	}{
		{name: "static is public", path: "/static/app.css", status: http.StatusOK},
		{name: "metrics is public", path: "/metrics", status: http.StatusOK},
		{name: "login is public", path: "/login", status: http.StatusOK},
		{name: "auth api is public", path: "/api/auth/session", status: http.StatusOK},
		{name: "api without credentials", path: "/api/users", status: http.StatusUnauthorized},
		{name: "page without credentials", path: "/notifications", status: http.StatusFound, location: "/login?redirect=%2Fnotifications"},
		{name: "unknown session", path: "/api/users", cookie: staleID, status: http.StatusUnauthorized},
		{name: "valid session", path: "/api/users", cookie: sessionID, status: http.StatusOK},
		{name: "valid session page", path: "/notifications", cookie: sessionID, status: http.StatusOK},
		{name: "bearer token", path: "/api/users", bearer: "cron-token", status: http.StatusOK},
		{name: "wrong bearer token", path: "/api/users", bearer: "cron-token2", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := webtest.Request(t, http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: config.DefaultCookieName, Value: tt.cookie})
			}

			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			_ = resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.location != "" {
				assert.Equal(t, tt.location, resp.Header.Get("Location"))
			}
		})
	}
}

func TestBearerDisabledWithoutToken(t *testing.T) {
	cfg := webtest.Config()
	cfg.Admin.APIToken = ""
	webtest.InitSessions()

	app := newApp(cfg)

	req := webtest.Request(t, http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer ")

	assert.Equal(t, http.StatusUnauthorized, webtest.Do(t, app, req, nil))
}
