// Package web wires the admin pages and the JSON API into one fiber app.
package web

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/dispatcher"
	"github.com/mompick/mompick-admin/internal/facility"
	fiberlogger "github.com/mompick/mompick-admin/internal/logger/adapter/fiber"
	"github.com/mompick/mompick-admin/internal/notify"
	"github.com/mompick/mompick-admin/internal/storage"
	"github.com/mompick/mompick-admin/internal/web/handler"
	"github.com/mompick/mompick-admin/internal/web/handler/banners"
	"github.com/mompick/mompick-admin/internal/web/handler/dashboard"
	"github.com/mompick/mompick-admin/internal/web/handler/facilities"
	"github.com/mompick/mompick-admin/internal/web/handler/login"
	"github.com/mompick/mompick-admin/internal/web/handler/logout"
	"github.com/mompick/mompick-admin/internal/web/handler/notices"
	"github.com/mompick/mompick-admin/internal/web/handler/notifications"
	"github.com/mompick/mompick-admin/internal/web/handler/notifications/scheduled"
	"github.com/mompick/mompick-admin/internal/web/handler/posts"
	"github.com/mompick/mompick-admin/internal/web/handler/reports"
	"github.com/mompick/mompick-admin/internal/web/handler/reviews"
	"github.com/mompick/mompick-admin/internal/web/handler/settings"
	"github.com/mompick/mompick-admin/internal/web/handler/terms"
	"github.com/mompick/mompick-admin/internal/web/handler/users"
	"github.com/mompick/mompick-admin/internal/web/middleware/auth"
)

// Deps are the services the handlers work on.
type Deps struct {
	DB       *gorm.DB
	Store    storage.Store
	Cache    *facility.Cache
	Notifier *notify.Notifier
	Runner   dispatcher.Runner
}

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	s.alive.Store(true)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive answers 200 while the server accepts traffic and 503 while it
// drains.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// ErrorHandler answers JSON for API routes and plain text for pages.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	if strings.HasPrefix(c.Path(), handler.APIPath+"/") {
		return handler.Error(c, code, err.Error())
	}

	return c.Status(code).SendString(err.Error())
}

// accessUser names the caller in access lines.
func accessUser(c *fiber.Ctx) string {
	if a, ok := c.Locals(handler.LocalsAdmin).(models.Admin); ok {
		return a.Email
	}

	if c.Locals(auth.LocalsToken) != nil {
		return "api-token"
	}

	return ""
}

func newTemplateEngine(cfg *config.Config) *html.Engine {
	httpFS := http.FS(subFS("templates"))
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("datetime", func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	})

	return templateEngine
}

// New creates the web service and registers every handler.
func New(cfg *config.Config, deps Deps) (*Service, error) {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if deps.DB == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			BodyLimit:      handler.MaxUploadSize + 1<<20,
			Views:          newTemplateEngine(cfg),
			ErrorHandler:   ErrorHandler,
		},
	)

	service := &Service{
		cfg: cfg,
		App: app,
	}

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: handler.CheckAlivePath,
		SkipPrefixes:  []string{"/static", handler.MetricsPath},
		User:          accessUser,
	}))

	app.Get(handler.CheckAlivePath, service.CheckAlive)
	app.Get(handler.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:   http.FS(subFS("static")),
				Browse: cfg.Webserver.BrowseStatic,
			},
		),
	)

	app.Use(auth.New(cfg))

	db := deps.DB

	logout.Handler.Init(app, cfg)

	for _, h := range []handler.Service{
		&login.Handler,
		&dashboard.Handler,
		&posts.Handler,
		&settings.Handler,
		&terms.Handler,
		&reports.Handler,
	} {
		if err := h.Init(app, cfg, db); err != nil {
			return nil, errors.Wrapf(err, "init %T", h)
		}
	}

	inits := []struct {
		name string
		init func() error
	}{
		{"users", func() error { return users.Handler.Init(app, cfg, db, deps.Store) }},
		{"reviews", func() error { return reviews.Handler.Init(app, cfg, db, deps.Store) }},
		{"banners", func() error { return banners.Handler.Init(app, cfg, db, deps.Store) }},
		{"notices", func() error { return notices.Handler.Init(app, cfg, db, deps.Store, deps.Notifier) }},
		{"facilities", func() error { return facilities.Handler.Init(app, cfg, db, deps.Cache) }},
		{"notifications", func() error { return notifications.Handler.Init(app, cfg, db, deps.Notifier) }},
		{"scheduled", func() error { return scheduled.Handler.Init(app, cfg, db, deps.Runner) }},
	}

	for _, h := range inits {
		if err := h.init(); err != nil {
			return nil, errors.Wrapf(err, "init %s handler", h.name)
		}
	}

	// redirect root to dashboard
	app.Get(handler.RootPath, func(c *fiber.Ctx) error {
		return c.Redirect(dashboard.Path)
	})

	return service, nil
}
