package daemon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/admin"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		Title: "MomPick Admin",
		DB:    config.DB{GormEngine: config.EngineSQLite},
		Admin: config.Admin{Email: "Admin@Example.com", Password: "secret"},
		Storage: config.Storage{
			Driver:  config.StorageMemory,
			Buckets: config.Buckets{FacilityCache: "facility-cache"},
		},
		Push:       config.Push{Provider: config.PushNone},
		Dispatcher: config.Dispatcher{BatchSize: config.DefaultBatchSize},
	}
}

func TestOpen(t *testing.T) {
	svc, err := Open(context.Background(), testConfig())
	require.NoError(t, err)

	assert.IsType(t, &storage.Memory{}, svc.Store)
	assert.NotNil(t, svc.Cache)
	assert.NotNil(t, svc.Notifier)

	a, err := admin.Authenticate(svc.DB, "admin@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, a.Active)

	// a second seed leaves the existing account alone
	require.NoError(t, seed(testConfig(), svc.DB))

	var n int64
	require.NoError(t, svc.DB.Model(&models.Admin{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	report, err := svc.Dispatcher.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Total)
}

func TestNew(t *testing.T) {
	cfg := testConfig()
	cfg.Dispatcher.Enabled = true
	cfg.Dispatcher.CronSpec = "not a schedule"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)

	cfg.Dispatcher.CronSpec = config.DefaultCronSpec

	d, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, d.scheduler)

	_, err = New(context.Background(), nil)
	assert.Error(t, err)
}
