package dashboard

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mompick/mompick-admin/internal/db/controller/stats"
	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/web/webtest"
)

func TestDashboard(t *testing.T) {
	db := dbtest.New(t)
	app := webtest.NewApp()

	var s Service
	require.NoError(t, s.Init(app, webtest.Config(), db))

	dbtest.Profile(t, db, "mom", true)

	var out struct {
		Stats stats.Counts `json:"stats"`
	}
	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodGet, APIPath, nil), &out))
	assert.Equal(t, int64(1), out.Stats.Users)
	assert.Equal(t, int64(1), out.Stats.ActiveUsers)

	resp, err := app.Test(webtest.Request(t, http.MethodGet, Path, nil), -1)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, TemplateName, string(body))
}
