// Package scheduled serves the scheduled notification API and the manual
// dispatch hook.
package scheduled

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/scheduled"
	"github.com/mompick/mompick-admin/internal/dispatcher"
	"github.com/mompick/mompick-admin/internal/web/handler"
)

// Path is the scheduled notifications API prefix.
const Path = handler.APIPath + "/notifications/scheduled"

// CreateRequest is the body of a new scheduled notification.
type CreateRequest struct {
	Title       string     `json:"title" validate:"required"`
	Body        string     `json:"body" validate:"required"`
	ScheduledAt *time.Time `json:"scheduledAt" validate:"required"`
}

// Service is the scheduled notifications handler service.
type Service struct {
	handler.Service
	cfg    *config.Config
	db     *gorm.DB
	runner dispatcher.Runner
	now    func() time.Time
}

// Handler is the scheduled notifications handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the scheduled notifications handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, runner dispatcher.Runner) error {
	if app == nil || cfg == nil || db == nil || runner == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.runner = runner

	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Create)
		router.Post("/process", s.Process)
		router.Delete("/:id", s.Cancel)
	})

	return nil
}

// List returns the pending and processing notifications.
func (s *Service) List(c *fiber.Ctx) error {
	rows, err := scheduled.Active(s.db)
	if err != nil {
		return handler.Internal(c, "failed to list scheduled notifications", err)
	}

	return c.JSON(fiber.Map{"scheduled": rows})
}

// Create schedules a notification for every active user.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(CreateRequest)
	if ok, err := handler.Parse(c, req); !ok {
		return err
	}

	row, err := scheduled.Create(s.db, req.Title, req.Body, *req.ScheduledAt, s.now())
	if err != nil {
		switch {
		case errors.Is(err, scheduled.ErrTitleEmpty),
			errors.Is(err, scheduled.ErrBodyEmpty),
			errors.Is(err, scheduled.ErrNotInFuture):
			return handler.BadRequest(c, err)
		default:
			return handler.Internal(c, "failed to schedule notification", err)
		}
	}

	log.Info().Str("id", row.ID).Time("at", row.ScheduledAt).Msg("notification scheduled")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"message":   "notification scheduled",
		"scheduled": row,
	})
}

// Cancel moves a pending notification to cancelled.
func (s *Service) Cancel(c *fiber.Ctx) error {
	row, err := scheduled.Cancel(s.db, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, scheduled.ErrNotFound):
			return handler.NotFound(c, err)
		case errors.Is(err, scheduled.ErrNotPending):
			return handler.Conflict(c, err)
		default:
			return handler.Internal(c, "failed to cancel scheduled notification", err)
		}
	}

	return c.JSON(fiber.Map{"success": true, "scheduled": row})
}

// Process runs one dispatch cycle and reports it.
func (s *Service) Process(c *fiber.Ctx) error {
	report, err := s.runner.Run(c.UserContext())
	if err != nil {
		return handler.Internal(c, "dispatch failed", err)
	}

	return c.JSON(fiber.Map{"success": true, "report": report})
}
