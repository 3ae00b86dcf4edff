// Package settings serves the app settings API.
package settings

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/setting"
	"github.com/mompick/mompick-admin/internal/web/handler"
)

// Path is the settings API prefix.
const Path = handler.APIPath + "/settings"

// Request is the body of a setting upsert.
type Request struct {
	Key         string          `json:"key" validate:"required"`
	Value       json.RawMessage `json:"value" validate:"required"`
	Description string          `json:"description"`
}

// Service is the settings handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the settings handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Put(handler.RootPath, s.Put)
		router.Delete("/:key", s.Delete)
	})

	return nil
}

// Get returns one setting when key is given, every setting otherwise.
func (s *Service) Get(c *fiber.Ctx) error {
	if key := c.Query("key"); key != "" {
		st, err := setting.Get(s.db, key)
		if err != nil {
			if errors.Is(err, setting.ErrSettingNotFound) {
				return handler.NotFound(c, err)
			}

			return handler.Internal(c, "failed to load setting", err)
		}

		return c.JSON(fiber.Map{"setting": st})
	}

	settings, err := setting.GetAll(s.db)
	if err != nil {
		return handler.Internal(c, "failed to list settings", err)
	}

	return c.JSON(fiber.Map{"settings": settings})
}

// Put creates or replaces a setting.
func (s *Service) Put(c *fiber.Ctx) error {
	req := new(Request)
	if ok, err := handler.Parse(c, req); !ok {
		return err
	}

	st, err := setting.Set(s.db, req.Key, req.Value, req.Description)
	if err != nil {
		if errors.Is(err, setting.ErrSettingValueInvalid) || errors.Is(err, setting.ErrSettingKeyEmpty) {
			return handler.BadRequest(c, err)
		}

		return handler.Internal(c, "failed to save setting", err)
	}

	log.Info().Str("key", st.Key).Msg("setting saved")

	return c.JSON(fiber.Map{
		"success": true,
		"setting": st,
	})
}

// Delete removes a setting.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := setting.Delete(s.db, c.Params("key")); err != nil {
		if errors.Is(err, setting.ErrSettingNotFound) {
			return handler.NotFound(c, err)
		}

		return handler.Internal(c, "failed to delete setting", err)
	}

	return c.JSON(fiber.Map{"success": true})
}
