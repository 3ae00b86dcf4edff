// Package webtest provides a fiber app, config and request helpers for
// handler tests.
package webtest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/require"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/web/session"
)

// NoOpViews is a minimal Fiber Views engine used for tests.
// It writes the "error" field from the provided fiber.Map (if any)
// so tests can assert error messages rendered by handlers.
type NoOpViews struct{}

// Load implements fiber.Views.
func (NoOpViews) Load() error { return nil }

// Render implements fiber.Views.
func (NoOpViews) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	if m, ok := data.(fiber.Map); ok {
		if v, exists := m["error"]; exists && v != nil {
			_, _ = io.WriteString(w, v.(string))
			return nil
		}
	}
	// write template name to have some content
	_, _ = io.WriteString(w, name)

	return nil
}

// NewApp returns a fiber app rendering with NoOpViews.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{Views: NoOpViews{}})
}

// Config returns a config suitable for handler tests.
func Config() *config.Config {
	return &config.Config{
		Title: "MomPick Admin",
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute, CookieName: config.DefaultCookieName},
		},
		Admin: config.Admin{
			Email:    "admin@example.com",
			Password: "secret",
			APIToken: "cron-token",
		},
		Storage: config.Storage{
			Driver: config.StorageMemory,
			Buckets: config.Buckets{
				ProfileImages: "profile-images",
				Banners:       "banners",
				Notices:       "notices",
				ReviewImages:  "review-images",
				FacilityCache: "facility-cache",
			},
		},
		Dispatcher: config.Dispatcher{
			BatchSize:       config.DefaultBatchSize,
			DuplicateWindow: config.DefaultDuplicateWindow,
		},
	}
}

// InitSessions points the session store at a fresh in-memory storage.
func InitSessions() {
	session.Init(memory.New())
}

// Request builds a request with an optional JSON body.
func Request(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)

		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	return req
}

// Multipart builds a multipart upload request carrying one file field.
func Multipart(t *testing.T, target, field, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)

	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

	return req
}

// Do runs req against app and decodes a JSON response into out when out is
// not nil. It returns the status code.
func Do(t *testing.T, app *fiber.App, req *http.Request, out interface{}) int {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

// JSON is a decoded JSON object.
type JSON map[string]interface{}
