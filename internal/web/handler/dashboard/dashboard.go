// Package dashboard provides the dashboard page and its JSON counters.
package dashboard

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/review"
	"github.com/mompick/mompick-admin/internal/db/controller/stats"
	"github.com/mompick/mompick-admin/internal/web/handler"
	"github.com/mompick/mompick-admin/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// APIPath is the path of the dashboard counters.
	APIPath = handler.APIPath + "/dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard"

	latestReviews = 5
)

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the dashboard handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	app.Get(Path, s.Get)
	app.Get(APIPath, s.API)

	return nil
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	counts, err := stats.Dashboard(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load dashboard counters")

		return c.Render(TemplateName, fiber.Map{
			"Title":        s.cfg.Title,
			"Navigation":   navigation.ForSection(navigation.SectionDashboard),
			"CurrentAdmin": c.Locals(handler.LocalsAdmin),
			"error":        err.Error(),
		}, handler.BaseLayout)
	}

	latest, err := review.Latest(s.db, latestReviews)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load latest reviews")
	}

	daily, err := review.Daily(s.db, time.Now(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load daily review counts")
	}

	return c.Render(TemplateName, fiber.Map{
		"Title":         s.cfg.Title,
		"Navigation":    navigation.ForSection(navigation.SectionDashboard),
		"CurrentAdmin":  c.Locals(handler.LocalsAdmin),
		"Counts":        counts,
		"LatestReviews": latest,
		"Daily":         daily,
	}, handler.BaseLayout)
}

// API returns the dashboard counters.
func (s *Service) API(c *fiber.Ctx) error {
	counts, err := stats.Dashboard(s.db)
	if err != nil {
		return handler.Internal(c, "failed to load dashboard", err)
	}

	return c.JSON(fiber.Map{"stats": counts})
}
