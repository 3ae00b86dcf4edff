// Package facilities serves the kindergarten and childcare center details,
// their admin maintained custom info and their meal menus.
package facilities

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/custominfo"
	"github.com/mompick/mompick-admin/internal/db/controller/meal"
	"github.com/mompick/mompick-admin/internal/db/controller/review"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/facility"
	"github.com/mompick/mompick-admin/internal/opendata"
	"github.com/mompick/mompick-admin/internal/web/handler"
)

const (
	// KindergartensPath is the kindergarten API prefix.
	KindergartensPath = handler.APIPath + "/kindergartens"

	// ChildcarePath is the childcare center API prefix.
	ChildcarePath = handler.APIPath + "/childcare"
)

// CacheRequest is the body of a cache update. Without custom info the cached
// data is fetched again from the upstream.
type CacheRequest struct {
	ArCode     string                 `json:"arcode"`
	CustomInfo map[string]interface{} `json:"customInfo"`
}

// CustomRequest replaces the custom info of a facility.
type CustomRequest struct {
	Fields   map[string]interface{} `json:"fields" validate:"required"`
	IsActive *bool                  `json:"is_active"`
}

// MealsRequest stores the menus of several days.
type MealsRequest struct {
	Code  string       `json:"code" validate:"required"`
	Meals []meal.Input `json:"meals" validate:"required,min=1"`
}

// Service is the facilities handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	db    *gorm.DB
	cache *facility.Cache
}

// Handler is the facilities handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the facilities handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, cache *facility.Cache) error {
	if app == nil || cfg == nil || db == nil || cache == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.cache = cache

	s.routes(app, KindergartensPath, models.FacilityKindergarten)
	s.routes(app, ChildcarePath, models.FacilityChildcare)

	return nil
}

func (s *Service) routes(app *fiber.App, prefix, kind string) {
	app.Route(prefix, func(router fiber.Router) {
		router.Post("/meals", s.SaveMeals(kind))
		router.Get("/:code", s.Detail(kind))
		router.Patch("/:code/cache", s.UpdateCache(kind))
		router.Get("/:code/custom", s.Custom(kind))
		router.Put("/:code/custom", s.SetCustom(kind))
		router.Get("/:code/meals", s.Meals(kind))
		router.Get("/:code/reviews", s.Reviews(kind))
	})
}

func status(err error) int {
	switch {
	case errors.Is(err, facility.ErrUnknownKind),
		errors.Is(err, facility.ErrCodeEmpty),
		errors.Is(err, custominfo.ErrCodeEmpty),
		errors.Is(err, meal.ErrCodeEmpty),
		errors.Is(err, opendata.ErrCodeEmpty):
		return fiber.StatusBadRequest
	case errors.Is(err, opendata.ErrNotFound),
		errors.Is(err, custominfo.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, opendata.ErrKeyMissing):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadGateway
	}
}

// Detail returns the cached facility document together with its active
// custom info and its reviews.
func (s *Service) Detail(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Params("code")

		env, err := s.cache.Detail(c.UserContext(), kind, code, c.Query("arcode"))
		if err != nil {
			log.Warn().Err(err).Str("kind", kind).Str("code", code).Msg("facility detail failed")
			return handler.Error(c, status(err), err.Error())
		}

		var custom *custominfo.Info

		custom, err = custominfo.Active(s.db, kind, code)
		if err != nil && !errors.Is(err, custominfo.ErrNotFound) {
			return handler.Internal(c, "failed to load custom info", err)
		}

		rows, avg, err := review.ForFacility(s.db, models.ReviewType(kind), code)
		if err != nil {
			return handler.Internal(c, "failed to load reviews", err)
		}

		return c.JSON(fiber.Map{
			"detail":        env,
			"source":        env.Meta.Source,
			"customInfo":    custom,
			"reviews":       rows,
			"reviewCount":   len(rows),
			"averageRating": fmt.Sprintf("%.1f", avg),
		})
	}
}

// UpdateCache merges custom info into the cached document, or refetches
// the upstream data when none is given.
func (s *Service) UpdateCache(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(CacheRequest)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(req); err != nil {
				return handler.BadRequest(c, handler.ErrInvalidBody)
			}
		}

		var (
			env *facility.Envelope
			err error
		)

		if len(req.CustomInfo) > 0 {
			env, err = s.cache.MergeCustom(c.UserContext(), kind, c.Params("code"), req.CustomInfo)
		} else {
			env, err = s.cache.Refresh(c.UserContext(), kind, c.Params("code"), req.ArCode)
		}

		if err != nil {
			return handler.Error(c, status(err), err.Error())
		}

		return c.JSON(fiber.Map{"success": true, "detail": env})
	}
}

// Custom returns the custom info row of a facility.
func (s *Service) Custom(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, err := custominfo.Get(s.db, kind, c.Params("code"))
		if err != nil {
			if errors.Is(err, custominfo.ErrNotFound) {
				return handler.NotFound(c, err)
			}

			return handler.Internal(c, "failed to load custom info", err)
		}

		return c.JSON(fiber.Map{"customInfo": info})
	}
}

// SetCustom replaces the custom info row of a facility and mirrors the fields
// into the cached document.
func (s *Service) SetCustom(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(CustomRequest)
		if ok, err := handler.Parse(c, req); !ok {
			return err
		}

		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}

		code := c.Params("code")

		info, err := custominfo.Set(s.db, kind, code, req.Fields, active)
		if err != nil {
			if errors.Is(err, custominfo.ErrCodeEmpty) {
				return handler.BadRequest(c, err)
			}

			return handler.Internal(c, "failed to save custom info", err)
		}

		if _, err = s.cache.MergeCustom(c.UserContext(), kind, code, req.Fields); err != nil {
			log.Warn().Err(err).Str("kind", kind).Str("code", code).Msg("custom info not mirrored into cache")
		}

		return c.JSON(fiber.Map{"success": true, "customInfo": info})
	}
}

// Meals returns the active menus of a facility.
func (s *Service) Meals(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		meals, err := meal.List(s.db, kind, c.Params("code"))
		if err != nil {
			return handler.Internal(c, "failed to list meals", err)
		}

		return c.JSON(fiber.Map{"meals": meals, "count": len(meals)})
	}
}

// SaveMeals upserts the menus of several days, reporting each date.
func (s *Service) SaveMeals(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(MealsRequest)
		if ok, err := handler.Parse(c, req); !ok {
			return err
		}

		results, err := meal.Upsert(s.db, kind, req.Code, req.Meals)
		if err != nil {
			if errors.Is(err, meal.ErrCodeEmpty) {
				return handler.BadRequest(c, err)
			}

			return handler.Internal(c, "failed to save meals", err)
		}

		saved := 0

		for _, r := range results {
			if r.Success {
				saved++
			}
		}

		return c.JSON(fiber.Map{
			"success": saved == len(results),
			"saved":   saved,
			"results": results,
		})
	}
}

// Reviews returns the visible reviews of a facility.
func (s *Service) Reviews(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, avg, err := review.ForFacility(s.db, models.ReviewType(kind), c.Params("code"))
		if err != nil {
			return handler.Internal(c, "failed to list reviews", err)
		}

		return c.JSON(fiber.Map{
			"reviews":       rows,
			"count":         len(rows),
			"averageRating": fmt.Sprintf("%.1f", avg),
		})
	}
}
