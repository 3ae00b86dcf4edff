package banners

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/dbtest"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/storage"
	"github.com/mompick/mompick-admin/internal/web/webtest"
)

func setup(t *testing.T) (*fiber.App, *gorm.DB, *storage.Memory) {
	t.Helper()

	db := dbtest.New(t)
	store := storage.NewMemory("")
	app := webtest.NewApp()

	var s Service
	require.NoError(t, s.Init(app, webtest.Config(), db, store))

	return app, db, store
}

func TestCreateValidation(t *testing.T) {
	app, _, _ := setup(t)

	tests := []struct {
		name string
		body map[string]interface{}
		want string
	}{
		{"missing type", map[string]interface{}{"image_url": "u"}, "banner_type is required"},
		{"bad type", map[string]interface{}{"banner_type": "popup", "image_url": "u"}, "banner_type must be one of splash modal main"},
		{"missing image", map[string]interface{}{"banner_type": "main"}, "image_url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out webtest.JSON
			assert.Equal(t, http.StatusBadRequest, webtest.Do(t, app, webtest.Request(t, http.MethodPost, Path+"/", tt.body), &out))
			assert.Equal(t, tt.want, out["error"])
		})
	}
}

func TestCRUD(t *testing.T) {
	app, _, _ := setup(t)

	var created struct {
		Banner models.AdBanner `json:"banner"`
	}
	require.Equal(t, http.StatusCreated, webtest.Do(t, app, webtest.Request(t, http.MethodPost, Path+"/", map[string]interface{}{
		"banner_type": "modal", "image_url": "https://cdn/m.png", "title": "Sale", "order_index": 2,
	}), &created))
	assert.True(t, created.Banner.IsActive)

	var list struct {
		Banners []models.AdBanner `json:"banners"`
	}
	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodGet, Path+"/?type=modal", nil), &list))
	require.Len(t, list.Banners, 1)

	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodGet, Path+"/", nil), &list))
	assert.Empty(t, list.Banners, "splash is the default type")

	assert.Equal(t, http.StatusBadRequest, webtest.Do(t, app, webtest.Request(t, http.MethodGet, Path+"/?type=popup", nil), nil))

	target := Path + "/" + created.Banner.ID

	var updated struct {
		Banner models.AdBanner `json:"banner"`
	}
	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodPatch, target, map[string]interface{}{"is_active": false}), &updated))
	assert.False(t, updated.Banner.IsActive)
	assert.Equal(t, "Sale", updated.Banner.Title)

	assert.Equal(t, http.StatusBadRequest, webtest.Do(t, app, webtest.Request(t, http.MethodPatch, target, map[string]interface{}{"image_url": ""}), nil))
	assert.Equal(t, http.StatusNotFound, webtest.Do(t, app, webtest.Request(t, http.MethodPatch, Path+"/missing", map[string]interface{}{}), nil))

	assert.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodDelete, target, nil), nil))
	assert.Equal(t, http.StatusNotFound, webtest.Do(t, app, webtest.Request(t, http.MethodDelete, target, nil), nil))
}

func TestUploadAndPurge(t *testing.T) {
	app, _, store := setup(t)

	var up struct {
		Success bool   `json:"success"`
		URL     string `json:"url"`
		Key     string `json:"key"`
	}
	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Multipart(t, Path+"/upload", "file", "Banner.PNG", []byte("png")), &up))
	assert.True(t, up.Success)
	assert.True(t, strings.HasPrefix(up.Key, "banners/"))
	assert.True(t, strings.HasSuffix(up.Key, ".png"))

	body, err := store.Get(context.Background(), "banners", up.Key)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), body)

	assert.Equal(t, http.StatusBadRequest, webtest.Do(t, app, webtest.Multipart(t, Path+"/upload", "file", "notes.txt", []byte("x")), nil))
	assert.Equal(t, http.StatusBadRequest, webtest.Do(t, app, webtest.Multipart(t, Path+"/upload", "other", "a.png", []byte("x")), nil))

	var created struct {
		Banner models.AdBanner `json:"banner"`
	}
	require.Equal(t, http.StatusCreated, webtest.Do(t, app, webtest.Request(t, http.MethodPost, Path+"/", map[string]interface{}{
		"banner_type": "splash", "image_url": up.URL,
	}), &created))

	require.Equal(t, http.StatusOK, webtest.Do(t, app, webtest.Request(t, http.MethodDelete, Path+"/"+created.Banner.ID, nil), nil))

	_, err = store.Get(context.Background(), "banners", up.Key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
