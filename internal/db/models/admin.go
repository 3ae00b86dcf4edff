package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// Admin is an operator account of the admin dashboard.
type Admin struct {
	// ID is the unique identifier for the admin.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Active indicates whether the account can log in.
	Active bool `json:"active"`
	// Email is the login name.
	Email string `gorm:"unique;size:255;not null" json:"email"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255" json:"-"`
	// LastLoginAt is set on every successful login.
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the stored hash.
// Returns true if the password matches, false otherwise.
func (a *Admin) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, a.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
