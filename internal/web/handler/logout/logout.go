package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/web/handler"
	"github.com/mompick/mompick-admin/internal/web/handler/login"
	"github.com/mompick/mompick-admin/internal/web/session"
)

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg *config.Config
}

// Handler is the logout handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config) {
	if app == nil || cfg == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg

	// logout routes (outside auth middleware protection)
	app.Get(login.LogoutPath, s.Logout)
	app.Post(login.LogoutPath, s.Logout)
	app.Post(login.APIPath+"/logout", s.APILogout)
}

// Logout handles admin logout by clearing the session.
func (s *Service) Logout(c *fiber.Ctx) error {
	s.clear(c)

	return c.Redirect(login.Path)
}

// APILogout is the JSON variant of Logout.
func (s *Service) APILogout(c *fiber.Ctx) error {
	s.clear(c)

	return c.JSON(fiber.Map{"success": true})
}

func (s *Service) clear(c *fiber.Ctx) {
	// Delete session from store
	if err := session.Delete(c.Cookies(s.cfg.Webserver.Session.CookieName)); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
	}

	// Clear the session cookie
	login.SetCookie(c, s.cfg, "", -1)
}
