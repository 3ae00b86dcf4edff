// Package users serves the app user administration API.
package users

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/profile"
	"github.com/mompick/mompick-admin/internal/db/controller/user"
	"github.com/mompick/mompick-admin/internal/storage"
	"github.com/mompick/mompick-admin/internal/web/handler"
)

const (
	// Path is the users API prefix.
	Path = handler.APIPath + "/users"

	childrenFolder = "children/"
	listWorkers    = 8
)

// View is a user as listed to admins.
type View struct {
	user.Summary
	ProfileImages  []storage.Object `json:"profile_images"`
	ChildrenImages []storage.Object `json:"children_images"`
}

// StatusRequest is the body of the status update.
type StatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// Service is the users handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	db    *gorm.DB
	store storage.Store
}

// Handler is the users handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the users handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store storage.Store) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.store = store

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Patch("/:id/status", s.SetStatus)
		router.Delete("/:id", s.Delete)
		router.Get("/:id/posts", s.Posts)
		router.Get("/:id/comments", s.Comments)
	})

	return nil
}

// List returns every user with counts and stored images.
func (s *Service) List(c *fiber.Ctx) error {
	summaries, err := user.List(s.db)
	if err != nil {
		return handler.Internal(c, "failed to list users", err)
	}

	views := make([]View, len(summaries))

	g, ctx := errgroup.WithContext(c.UserContext())
	g.SetLimit(listWorkers)

	for i := range summaries {
		views[i].Summary = summaries[i]

		g.Go(func() error {
			views[i].ProfileImages, views[i].ChildrenImages = s.images(ctx, summaries[i].StorageFolder())
			return nil
		})
	}

	_ = g.Wait()

	return c.JSON(fiber.Map{
		"users": views,
		"count": len(views),
	})
}

// images lists the profile image history and the children images of a user.
// Storage failures are logged and yield empty lists.
func (s *Service) images(ctx context.Context, folder string) ([]storage.Object, []storage.Object) {
	profileImages := make([]storage.Object, 0)
	childrenImages := make([]storage.Object, 0)

	objects, err := s.store.List(ctx, s.cfg.Storage.Buckets.ProfileImages, folder+"/")
	if err != nil {
		log.Warn().Err(err).Str("folder", folder).Msg("failed to list profile images")
		return profileImages, childrenImages
	}

	children := folder + "/" + childrenFolder

	for _, o := range objects {
		if strings.HasPrefix(o.Key, children) {
			childrenImages = append(childrenImages, o)
			continue
		}

		profileImages = append(profileImages, o)
	}

	return profileImages, childrenImages
}

// SetStatus activates or deactivates a user.
func (s *Service) SetStatus(c *fiber.Ctx) error {
	req := new(StatusRequest)
	if ok, err := handler.Parse(c, req); !ok {
		return err
	}

	p, err := profile.SetActive(s.db, c.Params("id"), *req.IsActive)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return handler.NotFound(c, err)
		}

		return handler.Internal(c, "failed to update user status", err)
	}

	log.Info().Str("id", p.ID).Bool("active", p.IsActive).Msg("user status changed")

	return c.JSON(fiber.Map{
		"success": true,
		"user":    p,
	})
}

// Delete removes a user with everything the user created, including the
// stored images.
func (s *Service) Delete(c *fiber.Ctx) error {
	p, results, err := user.Delete(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return handler.NotFound(c, err)
		}

		if p == nil {
			return handler.Internal(c, "failed to delete user", err)
		}
	}

	storageResult := user.StepResult{}

	bucket := s.cfg.Storage.Buckets.ProfileImages
	if objects, listErr := s.store.List(c.UserContext(), bucket, p.StorageFolder()+"/"); listErr != nil {
		storageResult.Error = listErr.Error()
	} else if len(objects) > 0 {
		keys := make([]string, 0, len(objects))
		for _, o := range objects {
			keys = append(keys, o.Key)
		}

		if delErr := s.store.Delete(c.UserContext(), bucket, keys...); delErr != nil {
			storageResult.Error = delErr.Error()
		} else {
			storageResult.Deleted = int64(len(keys))
		}
	}

	results["storage"] = storageResult

	if err != nil {
		log.Error().Err(err).Str("id", p.ID).Msg("failed to delete user profile")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "failed to delete user: " + err.Error(),
			"results": results,
		})
	}

	log.Info().Str("id", p.ID).Msg("user deleted")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "user deleted",
		"results": results,
	})
}

// Posts lists the posts of a user.
func (s *Service) Posts(c *fiber.Ctx) error {
	posts, err := user.Posts(s.db, c.Params("id"))
	if err != nil {
		return handler.Internal(c, "failed to list user posts", err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// Comments lists the comments of a user.
func (s *Service) Comments(c *fiber.Ctx) error {
	comments, err := user.Comments(s.db, c.Params("id"))
	if err != nil {
		return handler.Internal(c, "failed to list user comments", err)
	}

	return c.JSON(fiber.Map{"comments": comments})
}
