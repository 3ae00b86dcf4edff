// Package notices serves the notice API. A notice is a notification of type
// notice fanned out to every active user under one notice id.
package notices

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/notification"
	"github.com/mompick/mompick-admin/internal/db/controller/notificationsetting"
	"github.com/mompick/mompick-admin/internal/db/controller/profile"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/notify"
	"github.com/mompick/mompick-admin/internal/push"
	"github.com/mompick/mompick-admin/internal/storage"
	"github.com/mompick/mompick-admin/internal/web/handler"
)

// Path is the notices API prefix.
const Path = handler.APIPath + "/notices"

// Request is the body of a new or rewritten notice.
type Request struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	ImageURL string `json:"image_url"`
}

// Service is the notices handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	store    storage.Store
	notifier *notify.Notifier
}

// Handler is the notices handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the notices handler. A nil notifier disables pushes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store storage.Store, notifier *notify.Notifier) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.store = store
	s.notifier = notifier

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Create)
		router.Post("/upload", s.Upload)
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

// Message builds the push message of a notice for a user.
func Message(title, body, noticeID string) func(string) push.Message {
	return func(userID string) push.Message {
		return push.Message{
			UserID: userID,
			Title:  title,
			Body:   body,
			Data: map[string]string{
				"type":      models.NotificationNotice,
				"notice_id": noticeID,
			},
		}
	}
}

// List returns every notice once.
func (s *Service) List(c *fiber.Ctx) error {
	notices, err := notification.Notices(s.db)
	if err != nil {
		return handler.Internal(c, "failed to list notices", err)
	}

	return c.JSON(fiber.Map{"notices": notices})
}

// Create fans a notice out to every active user and pushes it to those who
// accept notices.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(Request)
	if ok, err := handler.Parse(c, req); !ok {
		return err
	}

	recipients, err := profile.ActiveIDs(s.db)
	if err != nil {
		return handler.Internal(c, "failed to load recipients", err)
	}

	n, err := notification.CreateNotice(s.db, recipients, req.Title, req.Content, req.ImageURL)
	if err != nil {
		if errors.Is(err, notification.ErrNoRecipients) {
			return handler.BadRequest(c, err)
		}

		return handler.Internal(c, "failed to create notice", err)
	}

	res := fiber.Map{
		"success": true,
		"notice":  n,
	}

	if s.notifier != nil {
		summary, targets, pushErr := s.notifier.ToOptedIn(c.UserContext(), recipients, notificationsetting.Notice,
			Message(req.Title, req.Content, n.ID))
		if pushErr != nil {
			log.Error().Err(pushErr).Str("notice", n.ID).Msg("failed to push notice")
		}

		res["push"] = summary
		res["pushTargets"] = targets
	}

	log.Info().Str("notice", n.ID).Int("recipients", n.Recipients).Msg("notice created")

	return c.Status(fiber.StatusCreated).JSON(res)
}

// Update rewrites every copy of a notice.
func (s *Service) Update(c *fiber.Ctx) error {
	req := new(Request)
	if ok, err := handler.Parse(c, req); !ok {
		return err
	}

	updated, err := notification.UpdateNotice(s.db, c.Params("id"), req.Title, req.Content, req.ImageURL)
	if err != nil {
		if errors.Is(err, notification.ErrNoticeNotFound) {
			return handler.NotFound(c, err)
		}

		return handler.Internal(c, "failed to update notice", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"updated": updated,
	})
}

// Delete removes every copy of a notice.
func (s *Service) Delete(c *fiber.Ctx) error {
	deleted, err := notification.DeleteNotice(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, notification.ErrNoticeNotFound) {
			return handler.NotFound(c, err)
		}

		return handler.Internal(c, "failed to delete notice", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"deleted": deleted,
	})
}

// Upload stores a notice image.
func (s *Service) Upload(c *fiber.Ctx) error {
	return handler.Upload(c, s.store, s.cfg.Storage.Buckets.Notices, "notices")
}
