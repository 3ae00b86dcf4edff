// Package session keeps admin sessions in a fiber storage backend keyed by an
// opaque random token.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/pkg/errors"

	"github.com/mompick/mompick-admin/internal/db/models"
)

const idBytes = 32

// ErrNoSession is returned when the token is unknown or expired.
var ErrNoSession = errors.New("session not found")

// Store holds the storage backend shared by every handler.
var Store *session.Store //nolint:gochecknoglobals

// Data is what a session token resolves to.
type Data struct {
	Admin     models.Admin
	CreatedAt time.Time
}

// Write stores the data under sessionID for exp.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}

	return errors.Wrap(Store.Storage.Set(sessionID, out, exp), "store session")
}

// Read loads the data stored under sessionID.
func (s *Data) Read(sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}

	raw, err := Store.Storage.Get(sessionID)
	if err != nil {
		return errors.Wrap(err, "load session")
	}

	if len(raw) == 0 {
		return ErrNoSession
	}

	return errors.Wrap(json.Unmarshal(raw, s), "decode session")
}

// Valid reports whether the session belongs to an admin.
func (s *Data) Valid() bool {
	return s.Admin.ID > 0
}

// FromCookie resolves the session named by the cookie of the request.
func FromCookie(c *fiber.Ctx, cookie string) (*Data, bool) {
	d := new(Data)
	if err := d.Read(c.Cookies(cookie)); err != nil || !d.Valid() {
		return nil, false
	}

	return d, true
}

// Start stores a new session for the admin and returns its token.
func Start(a models.Admin, exp time.Duration) (string, error) {
	id, err := GenerateSessionID()
	if err != nil {
		return "", err
	}

	d := Data{Admin: a, CreatedAt: time.Now().UTC()}
	if err := d.Write(id, exp); err != nil {
		return "", err
	}

	return id, nil
}

// Delete removes the session with the given ID.
func Delete(sessionID string) error {
	if sessionID == "" {
		return nil
	}

	return errors.Wrap(Store.Storage.Delete(sessionID), "delete session")
}

// Init sets the storage backend of Store.
func Init(storage fiber.Storage) {
	if storage == nil {
		panic("session storage is nil")
	}

	Store = session.New(session.Config{Storage: storage})
}

// GenerateSessionID returns a hex encoded 256 bit token.
func GenerateSessionID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "read random")
	}

	return hex.EncodeToString(b), nil
}
