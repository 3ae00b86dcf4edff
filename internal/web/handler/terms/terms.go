// Package terms serves the terms of service API.
package terms

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/term"
	"github.com/mompick/mompick-admin/internal/web/handler"
)

// Path is the terms API prefix.
const Path = handler.APIPath + "/terms"

// CreateRequest is the body of a new term version.
type CreateRequest struct {
	Category string `json:"category" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	IsActive bool   `json:"is_active"`
}

// Service is the terms handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the terms handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the terms handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Create)
		router.Get("/:id", s.Get)
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

func fail(c *fiber.Ctx, msg string, err error) error {
	switch {
	case errors.Is(err, term.ErrNotFound):
		return handler.NotFound(c, err)
	case errors.Is(err, term.ErrFieldsEmpty):
		return handler.BadRequest(c, err)
	}

	return handler.Internal(c, msg, err)
}

// List returns every term version.
func (s *Service) List(c *fiber.Ctx) error {
	terms, err := term.List(s.db)
	if err != nil {
		return fail(c, "failed to list terms", err)
	}

	return c.JSON(fiber.Map{"terms": terms})
}

// Get returns one term version.
func (s *Service) Get(c *fiber.Ctx) error {
	t, err := term.Get(s.db, c.Params("id"))
	if err != nil {
		return fail(c, "failed to load term", err)
	}

	return c.JSON(fiber.Map{"term": t})
}

// Create stores the next version of a category.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(CreateRequest)
	if ok, err := handler.Parse(c, req); !ok {
		return err
	}

	t, err := term.Create(s.db, req.Category, req.Title, req.Content, req.IsActive)
	if err != nil {
		return fail(c, "failed to create term", err)
	}

	log.Info().Str("category", t.Category).Int("version", t.Version).Msg("term created")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"term":    t,
	})
}

// Update changes title, content or activation of a term version.
func (s *Service) Update(c *fiber.Ctx) error {
	p := term.Patch{}
	if err := c.BodyParser(&p); err != nil {
		return handler.BadRequest(c, handler.ErrInvalidBody)
	}

	t, err := term.Update(s.db, c.Params("id"), p)
	if err != nil {
		return fail(c, "failed to update term", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"term":    t,
	})
}

// Delete removes a term version.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := term.Delete(s.db, c.Params("id")); err != nil {
		return fail(c, "failed to delete term", err)
	}

	return c.JSON(fiber.Map{"success": true})
}
