package login

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/admin"
	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/web/handler"
	"github.com/mompick/mompick-admin/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// LogoutPath is the path to the logout page.
	LogoutPath = "/logout"

	// APIPath is the prefix of the JSON auth routes.
	APIPath = handler.APIPath + "/auth"

	// HomePath is where a login without redirect target lands.
	HomePath = "/notifications"

	// TemplateName is the name of the login template.
	TemplateName = "login"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Redirect string `json:"-" form:"redirect"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the login handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Post(handler.RootPath, s.Post)
	})

	app.Route(APIPath, func(router fiber.Router) {
		router.Post("/login", s.APILogin)
		router.Get("/session", s.APISession)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	if _, ok := session.FromCookie(c, s.cfg.Webserver.Session.CookieName); ok {
		return c.Redirect(SafeRedirect(c.Query("redirect")))
	}

	return s.render(c, c.Query("redirect"), nil)
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	creds := new(Credentials)

	if err := c.BodyParser(creds); err != nil {
		return s.render(c, "", ErrInvalidFormData)
	}

	if _, err := s.login(c, creds); err != nil {
		return s.render(c, creds.Redirect, err)
	}

	return c.Redirect(SafeRedirect(creds.Redirect))
}

// APILogin handles the JSON login.
func (s *Service) APILogin(c *fiber.Ctx) error {
	creds := new(Credentials)

	if err := c.BodyParser(creds); err != nil {
		return handler.BadRequest(c, ErrInvalidFormData)
	}

	a, err := s.login(c, creds)

	switch {
	case errors.Is(err, ErrCredentialsMissing):
		return handler.BadRequest(c, err)
	case errors.Is(err, ErrInvalidCredentials):
		return handler.Error(c, fiber.StatusUnauthorized, err.Error())
	case err != nil:
		return handler.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"admin":   a,
	})
}

// APISession reports whether the cookie carries a valid session.
func (s *Service) APISession(c *fiber.Ctx) error {
	sessData, ok := session.FromCookie(c, s.cfg.Webserver.Session.CookieName)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"authenticated": false})
	}

	return c.JSON(fiber.Map{
		"authenticated": true,
		"admin":         sessData.Admin,
	})
}

func (s *Service) render(c *fiber.Ctx, redirect string, err error) error {
	data := fiber.Map{
		"Title":    s.cfg.Title,
		"redirect": redirect,
	}

	if err != nil {
		data["error"] = err.Error()
	}

	return c.Render(TemplateName, data)
}

// login verifies the credentials, stores a new session and sets its cookie.
func (s *Service) login(c *fiber.Ctx, creds *Credentials) (*models.Admin, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, ErrCredentialsMissing
	}

	a, err := admin.Authenticate(s.db, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, admin.ErrInvalidCredentials) || errors.Is(err, admin.ErrInactive) {
			log.Warn().Str("email", creds.Email).Msg("failed admin login")
			return nil, ErrInvalidCredentials
		}

		log.Error().Err(err).Msg("failed to authenticate admin")

		return nil, ErrInternalServerError
	}

	sessionID, err := session.Start(*a, s.cfg.Webserver.Session.ExpiryTime)
	if err != nil {
		log.Error().Err(err).Msg("failed to start session")
		return nil, ErrInternalServerError
	}

	SetCookie(c, s.cfg, sessionID, int(s.cfg.Webserver.Session.ExpiryTime.Seconds()))

	log.Info().Str("email", a.Email).Msg("admin logged in")

	return a, nil
}

// SetCookie sets the session cookie. A negative maxAge clears it.
func SetCookie(c *fiber.Ctx, cfg *config.Config, value string, maxAge int) {
	cookieSettings := &fiber.Cookie{
		Name:     cfg.Webserver.Session.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Webserver.Domain,
		MaxAge:   maxAge,
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	if maxAge < 0 {
		cookieSettings.Expires = time.Unix(0, 0)
	}

	if cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)
}

// SafeRedirect returns target when it is a local path, HomePath otherwise.
func SafeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return HomePath
	}

	if strings.HasPrefix(target, Path) || strings.HasPrefix(target, LogoutPath) {
		return HomePath
	}

	return target
}
