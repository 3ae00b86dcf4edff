// Package auth provides the authentication gate of the admin web application.
//
// A request passes the gate when it carries either a session cookie created
// by the login handler or an Authorization header with the configured API
// bearer token. The token is compared in constant time and an empty token
// never matches.
//
// The middleware performs the following tasks:
//   - Lets static assets, metrics, the login and logout pages and the auth API through
//   - Adds the current admin to fiber.Locals for template access
//   - Redirects unauthenticated page requests to the login page with a redirect target
//   - Answers unauthenticated API requests with a 401 error envelope
//
// Usage:
//
//	app.Use(auth.New(cfg))
package auth
