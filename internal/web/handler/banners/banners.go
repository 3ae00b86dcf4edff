// Package banners serves the advertisement banner API.
package banners

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/banner"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/storage"
	"github.com/mompick/mompick-admin/internal/web/handler"
)

// Path is the banners API prefix.
const Path = handler.APIPath + "/banners"

// CreateRequest is the body of a new banner.
type CreateRequest struct {
	BannerType    string     `json:"banner_type" validate:"required,oneof=splash modal main"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ImageURL      string     `json:"image_url" validate:"required"`
	LinkURL       string     `json:"link_url"`
	OrderIndex    int        `json:"order_index"`
	IsActive      *bool      `json:"is_active"`
	ShowClickText bool       `json:"show_click_text"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

func (r *CreateRequest) model() *models.AdBanner {
	b := &models.AdBanner{
		BannerType:    r.BannerType,
		Title:         r.Title,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		LinkURL:       r.LinkURL,
		OrderIndex:    r.OrderIndex,
		IsActive:      true,
		ShowClickText: r.ShowClickText,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
	}

	if r.IsActive != nil {
		b.IsActive = *r.IsActive
	}

	return b
}

// Service is the banners handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	db    *gorm.DB
	store storage.Store
}

// Handler is the banners handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the banners handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store storage.Store) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.store = store

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Create)
		router.Post("/upload", s.Upload)
		router.Patch("/:id", s.Update)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

func (s *Service) fail(c *fiber.Ctx, msg string, err error) error {
	switch {
	case errors.Is(err, banner.ErrNotFound):
		return handler.NotFound(c, err)
	case errors.Is(err, banner.ErrInvalidType), errors.Is(err, banner.ErrImageEmpty):
		return handler.BadRequest(c, err)
	}

	return handler.Internal(c, msg, err)
}

// List returns the banners of one type, splash by default.
func (s *Service) List(c *fiber.Ctx) error {
	banners, err := banner.List(s.db, c.Query("type"))
	if err != nil {
		return s.fail(c, "failed to list banners", err)
	}

	return c.JSON(fiber.Map{"banners": banners})
}

// Create stores a new banner.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(CreateRequest)
	if ok, err := handler.Parse(c, req); !ok {
		return err
	}

	b := req.model()
	if err := banner.Create(s.db, b); err != nil {
		return s.fail(c, "failed to create banner", err)
	}

	log.Info().Str("id", b.ID).Str("type", b.BannerType).Msg("banner created")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"banner":  b,
	})
}

// Update changes the given banner fields.
func (s *Service) Update(c *fiber.Ctx) error {
	p := banner.Patch{}
	if err := c.BodyParser(&p); err != nil {
		return handler.BadRequest(c, handler.ErrInvalidBody)
	}

	b, err := banner.Update(s.db, c.Params("id"), p)
	if err != nil {
		return s.fail(c, "failed to update banner", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"banner":  b,
	})
}

// Delete removes a banner and its uploaded image.
func (s *Service) Delete(c *fiber.Ctx) error {
	b, err := banner.Delete(s.db, c.Params("id"))
	if err != nil {
		return s.fail(c, "failed to delete banner", err)
	}

	handler.PurgeURLs(c.UserContext(), s.store, s.cfg.Storage.Buckets.Banners, []string{b.ImageURL})

	log.Info().Str("id", b.ID).Msg("banner deleted")

	return c.JSON(fiber.Map{"success": true})
}

// Upload stores a banner image.
func (s *Service) Upload(c *fiber.Ctx) error {
	return handler.Upload(c, s.store, s.cfg.Storage.Buckets.Banners, "banners")
}
