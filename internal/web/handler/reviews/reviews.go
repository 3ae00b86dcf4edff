// Package reviews serves the moderation API over the facility reviews and
// the review delete requests.
package reviews

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/deleterequest"
	"github.com/mompick/mompick-admin/internal/db/controller/review"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/storage"
	"github.com/mompick/mompick-admin/internal/web/handler"
)

const (
	// Path is the reviews API prefix.
	Path = handler.APIPath + "/reviews"

	// DeleteRequestsPath is the review delete requests API prefix.
	DeleteRequestsPath = handler.APIPath + "/review-delete-requests"

	// Timezone is used to bucket the daily review counts.
	Timezone = "Asia/Seoul"
)

// HiddenRequest is the body of the visibility update.
type HiddenRequest struct {
	IsHidden *bool `json:"is_hidden" validate:"required"`
}

// ProcessRequest is the body of a delete request decision.
type ProcessRequest struct {
	Status     string `json:"status" validate:"required,oneof=pending approved rejected"`
	AdminNotes string `json:"admin_notes"`
}

// Service is the reviews handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	db    *gorm.DB
	store storage.Store
	loc   *time.Location
}

// Handler is the reviews handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the reviews handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store storage.Store) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.store = store

	loc, err := time.LoadLocation(Timezone)
	if err != nil {
		log.Warn().Err(err).Msg("timezone data missing, daily review counts use UTC")

		loc = time.UTC
	}

	s.loc = loc

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Get("/latest", s.Latest)
		router.Get("/daily", s.Daily)
		router.Patch("/:type/:id", s.SetHidden)
		router.Delete("/:type/:id", s.Delete)
	})

	app.Route(DeleteRequestsPath, func(router fiber.Router) {
		router.Get(handler.RootPath, s.ListDeleteRequests)
		router.Patch("/:id", s.ProcessDeleteRequest)
		router.Delete("/:id", s.DeleteDeleteRequest)
	})

	return nil
}

// List returns one page of reviews of every or one type.
func (s *Service) List(c *fiber.Ctx) error {
	rows, page, err := review.List(s.db, review.Query{
		Type:   c.Query("type", review.TypeAll),
		Search: c.Query("search"),
		Page:   handler.QueryInt(c, "page", 1),
		Limit:  handler.QueryInt(c, "limit", review.DefaultLimit),
	})
	if err != nil {
		if errors.Is(err, review.ErrUnknownType) {
			return handler.BadRequest(c, err)
		}

		return handler.Internal(c, "failed to list reviews", err)
	}

	return c.JSON(fiber.Map{
		"reviews":    rows,
		"pagination": page,
	})
}

// Latest returns the newest reviews.
func (s *Service) Latest(c *fiber.Ctx) error {
	rows, err := review.Latest(s.db, handler.QueryInt(c, "limit", 5)) //nolint:mnd
	if err != nil {
		return handler.Internal(c, "failed to list latest reviews", err)
	}

	return c.JSON(fiber.Map{"reviews": rows})
}

// Daily returns the review counts of the last days.
func (s *Service) Daily(c *fiber.Ctx) error {
	daily, err := review.Daily(s.db, time.Now(), s.loc)
	if err != nil {
		return handler.Internal(c, "failed to count reviews", err)
	}

	return c.JSON(fiber.Map{"daily": daily})
}

func reviewType(c *fiber.Ctx) (models.ReviewType, bool) {
	t := models.ReviewType(c.Params("type"))
	_, ok := models.TableFor(t)

	return t, ok
}

// SetHidden hides or shows a review.
func (s *Service) SetHidden(c *fiber.Ctx) error {
	t, ok := reviewType(c)
	if !ok {
		return handler.BadRequest(c, review.ErrUnknownType)
	}

	req := new(HiddenRequest)
	if ok, err := handler.Parse(c, req); !ok {
		return err
	}

	row, err := review.SetHidden(s.db, t, c.Params("id"), *req.IsHidden)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			return handler.NotFound(c, err)
		}

		return handler.Internal(c, "failed to update review", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"review":  row,
	})
}

// Delete soft deletes a review and purges its images.
func (s *Service) Delete(c *fiber.Ctx) error {
	t, ok := reviewType(c)
	if !ok {
		return handler.BadRequest(c, review.ErrUnknownType)
	}

	id := c.Params("id")

	urls, err := review.SoftDelete(s.db, t, id)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			return handler.NotFound(c, err)
		}

		return handler.Internal(c, "failed to delete review", err)
	}

	purged := handler.PurgeURLs(c.UserContext(), s.store, s.cfg.Storage.Buckets.ReviewImages, urls)

	log.Info().Str("id", id).Str("type", string(t)).Int("images", len(urls)).Msg("review deleted")

	return c.JSON(fiber.Map{
		"success":        true,
		"deleted_images": len(urls),
		"purged_objects": purged,
	})
}

// ListDeleteRequests returns the delete requests with requester and review.
func (s *Service) ListDeleteRequests(c *fiber.Ctx) error {
	requests, err := deleterequest.List(s.db)
	if err != nil {
		return handler.Internal(c, "failed to list review delete requests", err)
	}

	return c.JSON(fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

// ProcessDeleteRequest approves or rejects a delete request. Approval
// deletes the review.
func (s *Service) ProcessDeleteRequest(c *fiber.Ctx) error {
	req := new(ProcessRequest)
	if ok, err := handler.Parse(c, req); !ok {
		return err
	}

	r, urls, err := deleterequest.Process(s.db, c.Params("id"), req.Status, req.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, deleterequest.ErrNotFound):
			return handler.NotFound(c, err)
		case errors.Is(err, deleterequest.ErrInvalidStatus):
			return handler.BadRequest(c, err)
		}

		return handler.Internal(c, "failed to process review delete request", err)
	}

	handler.PurgeURLs(c.UserContext(), s.store, s.cfg.Storage.Buckets.ReviewImages, urls)

	log.Info().Str("id", r.ID).Str("status", r.Status).Msg("review delete request processed")

	return c.JSON(fiber.Map{
		"success": true,
		"request": r,
	})
}

// DeleteDeleteRequest removes a delete request.
func (s *Service) DeleteDeleteRequest(c *fiber.Ctx) error {
	if err := deleterequest.Delete(s.db, c.Params("id")); err != nil {
		if errors.Is(err, deleterequest.ErrNotFound) {
			return handler.NotFound(c, err)
		}

		return handler.Internal(c, "failed to delete review delete request", err)
	}

	return c.JSON(fiber.Map{"success": true})
}
