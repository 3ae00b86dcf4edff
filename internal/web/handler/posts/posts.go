// Package posts serves the community moderation API for posts and comments.
package posts

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/post"
	"github.com/mompick/mompick-admin/internal/web/handler"
)

const (
	// Path is the posts API prefix.
	Path = handler.APIPath + "/posts"

	// CommentsPath is the comments API prefix.
	CommentsPath = handler.APIPath + "/comments"
)

// Service is the posts handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the posts handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the posts handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Get("/:id/details", s.Details)
		router.Delete("/:id", s.Delete)
	})

	app.Delete(CommentsPath+"/:id", s.DeleteComment)

	return nil
}

// List returns the posts, optionally filtered by category.
func (s *Service) List(c *fiber.Ctx) error {
	posts, err := post.List(s.db, c.Query("category"))
	if err != nil {
		return handler.Internal(c, "failed to list posts", err)
	}

	return c.JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}

// Details returns a post with comments and likes.
func (s *Service) Details(c *fiber.Ctx) error {
	d, err := post.GetDetails(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			return handler.NotFound(c, err)
		}

		return handler.Internal(c, "failed to load post", err)
	}

	return c.JSON(d)
}

// Delete removes a post.
func (s *Service) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := post.Delete(s.db, id); err != nil {
		if errors.Is(err, post.ErrNotFound) {
			return handler.NotFound(c, err)
		}

		return handler.Internal(c, "failed to delete post", err)
	}

	log.Info().Str("id", id).Msg("post deleted")

	return c.JSON(fiber.Map{"success": true})
}

// DeleteComment soft deletes a comment.
func (s *Service) DeleteComment(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := post.DeleteComment(s.db, id); err != nil {
		if errors.Is(err, post.ErrCommentNotFound) {
			return handler.NotFound(c, err)
		}

		return handler.Internal(c, "failed to delete comment", err)
	}

	log.Info().Str("id", id).Msg("comment deleted")

	return c.JSON(fiber.Map{"success": true})
}
