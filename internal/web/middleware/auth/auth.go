package auth

import (
	"crypto/subtle"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/web/handler"
	"github.com/mompick/mompick-admin/internal/web/handler/login"
	"github.com/mompick/mompick-admin/internal/web/session"
)

const (
	// LocalsToken is set when the request authenticated with the API token.
	LocalsToken = "APIToken"

	bearerPrefix = "Bearer "
)

// publicPrefixes are reachable without authentication.
var publicPrefixes = []string{ //nolint:gochecknoglobals
	"/static",
	handler.MetricsPath,
	handler.CheckAlivePath,
	login.Path,
	login.LogoutPath,
	login.APIPath,
}

// New returns the gate middleware.
func New(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IsPublic(c) {
			return c.Next()
		}

		if BearerValid(c, cfg.Admin.APIToken) {
			c.Locals(LocalsToken, true)
			return c.Next()
		}

		if sessData, ok := session.FromCookie(c, cfg.Webserver.Session.CookieName); ok {
			c.Locals(handler.LocalsAdmin, sessData.Admin)
			return c.Next()
		}

		if IsAPI(c) {
			return handler.Error(c, fiber.StatusUnauthorized, "unauthorized")
		}

		return c.Redirect(login.Path + "?redirect=" + url.QueryEscape(c.OriginalURL()))
	}
}

// IsPublic checks if the current request needs no authentication.
func IsPublic(c *fiber.Ctx) bool {
	p := strings.ToLower(c.Path())
	for _, prefix := range publicPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}

	return false
}

// IsAPI checks if the current request targets the JSON API.
func IsAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return p == handler.APIPath || strings.HasPrefix(p, handler.APIPath+"/")
}

// BearerValid reports whether the Authorization header carries token.
// An empty token never matches.
func BearerValid(c *fiber.Ctx, token string) bool {
	if token == "" {
		return false
	}

	h := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(h, bearerPrefix) {
		return false
	}

	got := strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))

	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}
