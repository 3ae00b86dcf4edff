// Package daemon assembles the admin server from the configuration.
package daemon

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	sessionmemory "github.com/gofiber/storage/memory/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db"
	"github.com/mompick/mompick-admin/internal/db/dsn"
	"github.com/mompick/mompick-admin/internal/dispatcher"
	"github.com/mompick/mompick-admin/internal/facility"
	"github.com/mompick/mompick-admin/internal/notify"
	"github.com/mompick/mompick-admin/internal/opendata"
	"github.com/mompick/mompick-admin/internal/push"
	"github.com/mompick/mompick-admin/internal/storage"
	"github.com/mompick/mompick-admin/internal/web"
	"github.com/mompick/mompick-admin/internal/web/session"
)

const sessionTable = "admin_sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	scheduler  *dispatcher.Scheduler
}

// Services are the long lived dependencies shared by the server and the
// command line tools.
type Services struct {
	DB         *gorm.DB
	Store      storage.Store
	Cache      *facility.Cache
	Notifier   *notify.Notifier
	Dispatcher *dispatcher.Dispatcher
}

// Open connects the database, migrates it, seeds the admin account and
// builds the storage, push and dispatch services.
func Open(ctx context.Context, cfg *config.Config) (*Services, error) {
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(conn); err != nil {
		return nil, err
	}

	if err = seed(cfg, conn); err != nil {
		return nil, err
	}

	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	transport, err := push.NewTransport(ctx, cfg.Push)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create push transport")
	}

	log.Info().Str("provider", transport.Name()).Msg("push transport ready")

	notifier := notify.New(conn, push.NewService(conn, transport), cfg.Dispatcher.BatchSize)

	return &Services{
		DB:         conn,
		Store:      store,
		Cache:      facility.New(store, cfg.Storage.Buckets.FacilityCache, opendata.New(cfg.OpenData)),
		Notifier:   notifier,
		Dispatcher: dispatcher.New(conn, notifier, cfg.Dispatcher),
	}, nil
}

func newStore(ctx context.Context, cfg config.Storage) (storage.Store, error) {
	if cfg.Driver != config.StorageS3 {
		log.Warn().Msg("using in-memory object storage, uploads are lost on restart")

		return storage.NewMemory(cfg.PublicBaseURL), nil
	}

	s3, err := storage.NewS3(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create s3 storage")
	}

	return s3, nil
}

// newSessionStorage keeps sessions next to the data, so admins stay logged
// in across restarts. A sqlite setup keeps them in memory.
func newSessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.SessionURI(cfg),
			Table:         sessionTable,
		})
	case config.EngineSQLite:
		return sessionmemory.New()
	default:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.SessionURI(cfg),
			Table:         sessionTable,
		})
	}
}

// New creates a new Daemon instance with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	svc, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	session.Init(newSessionStorage(cfg))

	webService, err := web.New(cfg, web.Deps{
		DB:       svc.DB,
		Store:    svc.Store,
		Cache:    svc.Cache,
		Notifier: svc.Notifier,
		Runner:   svc.Dispatcher,
	})
	if err != nil {
		return nil, err
	}

	d := &Daemon{cfg: cfg, webService: webService}

	if cfg.Dispatcher.Enabled {
		if d.scheduler, err = dispatcher.NewScheduler(ctx, svc.Dispatcher, cfg.Dispatcher.CronSpec); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Start runs the dispatcher schedule and serves until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	if d.scheduler != nil {
		d.scheduler.Start()
		defer d.scheduler.Stop()

		log.Info().Str("spec", d.cfg.Dispatcher.CronSpec).Msg("dispatcher scheduled")
	}

	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}
