// Package reports serves the user report API.
package reports

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/report"
	"github.com/mompick/mompick-admin/internal/web/handler"
)

// Path is the reports API prefix.
const Path = handler.APIPath + "/reports"

// Service is the reports handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the reports handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the reports handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

// List returns every report with reporter and target.
func (s *Service) List(c *fiber.Ctx) error {
	reports, err := report.List(s.db)
	if err != nil {
		return handler.Internal(c, "failed to list reports", err)
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"count":   len(reports),
	})
}

// Delete removes a report.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := report.Delete(s.db, c.Params("id")); err != nil {
		if errors.Is(err, report.ErrNotFound) {
			return handler.NotFound(c, err)
		}

		return handler.Internal(c, "failed to delete report", err)
	}

	return c.JSON(fiber.Map{"success": true})
}
