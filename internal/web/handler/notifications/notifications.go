// Package notifications provides the notification composer page together
// with the broadcast and individual notification API.
package notifications

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/profile"
	"github.com/mompick/mompick-admin/internal/db/controller/scheduled"
	"github.com/mompick/mompick-admin/internal/notify"
	"github.com/mompick/mompick-admin/internal/web/handler"
	"github.com/mompick/mompick-admin/internal/web/navigation"
)

const (
	// Path is the path to the composer page.
	Path = handler.RootPath + "notifications"

	// SendPath broadcasts a system notification to every active user.
	SendPath = handler.APIPath + "/send-notification"

	// IndividualPath sends a system notification to one user.
	IndividualPath = handler.APIPath + "/notifications/individual"

	// TemplateName is the name of the composer template.
	TemplateName = "notifications"
)

// BroadcastRequest is the body of a broadcast.
type BroadcastRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

// IndividualRequest is the body of a notification to one user found by
// phone or email.
type IndividualRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
	Phone string `json:"phone" validate:"required_without=Email"`
	Email string `json:"email" validate:"required_without=Phone"`
}

// Service is the notifications handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	notifier *notify.Notifier
}

// Handler is the notifications handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the notifications handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, notifier *notify.Notifier) error {
	if app == nil || cfg == nil || db == nil || notifier == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.notifier = notifier

	app.Get(Path, s.Page)
	app.Post(SendPath, s.Broadcast)
	app.Post(IndividualPath, s.Individual)

	return nil
}

// Page renders the composer with the pending scheduled notifications.
func (s *Service) Page(c *fiber.Ctx) error {
	data := fiber.Map{
		"Title":        s.cfg.Title,
		"Navigation":   navigation.ForSection(navigation.SectionNotifications),
		"CurrentAdmin": c.Locals(handler.LocalsAdmin),
	}

	rows, err := scheduled.Active(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list scheduled notifications")

		data["error"] = err.Error()
	}

	data["Scheduled"] = rows

	return c.Render(TemplateName, data, handler.BaseLayout)
}

// Broadcast stores a system notification for every active user and pushes it.
func (s *Service) Broadcast(c *fiber.Ctx) error {
	req := new(BroadcastRequest)
	if ok, err := handler.Parse(c, req); !ok {
		return err
	}

	res, err := s.notifier.Broadcast(c.UserContext(), req.Title, req.Body)
	if err != nil {
		return handler.Internal(c, "failed to send notification", err)
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"message":           "notification sent",
		"notificationCount": res.NotificationCount,
		"fcmSuccess":        res.FCMSuccess,
		"fcmFailed":         res.FCMFailed,
		"fcmSkipped":        res.FCMSkipped,
	})
}

// Individual stores a system notification for one user and pushes it when
// the user accepts notices.
func (s *Service) Individual(c *fiber.Ctx) error {
	req := new(IndividualRequest)
	if ok, err := handler.Parse(c, req); !ok {
		return err
	}

	res, err := s.notifier.Individual(c.UserContext(), req.Title, req.Body, req.Phone, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrLookupEmpty):
			return handler.BadRequest(c, err)
		case errors.Is(err, profile.ErrNotFound):
			return handler.NotFound(c, err)
		default:
			return handler.Internal(c, "failed to send notification", err)
		}
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      individualMessage(res),
		"user":         res.User,
		"notification": res.Notification,
		"push":         res.Push,
		"pushError":    res.PushError,
	})
}

func individualMessage(res *notify.IndividualResult) string {
	switch res.Push {
	case notify.PushSent:
		return "notification stored and pushed"
	case notify.PushDisabled:
		return "notification stored, push is turned off by the user"
	case notify.PushSkipped:
		return "notification stored, the user has no registered device"
	default:
		return "notification stored, push failed"
	}
}
