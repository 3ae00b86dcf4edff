// Package admin manages the dashboard operator accounts.
package admin

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/db/controller"
	"github.com/mompick/mompick-admin/internal/db/models"
)

var (
	// ErrNotFound is returned when no admin has the email.
	ErrNotFound = errors.New("admin not found")
	// ErrInactive is returned when the admin account is disabled.
	ErrInactive = errors.New("admin is inactive")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// GetByEmail finds an admin by email, ignoring case.
func GetByEmail(db *gorm.DB, email string) (*models.Admin, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var a models.Admin
	if err := db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &a, nil
}

// Authenticate verifies the credentials and stamps the login time.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func Authenticate(db *gorm.DB, email, password string) (*models.Admin, error) {
	a, err := GetByEmail(db, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if !a.Active {
		return nil, ErrInactive
	}

	if !a.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	a.LastLoginAt = &now

	if err = db.Model(a).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}

	return a, nil
}

// Seed creates the admin account if no admin exists yet.
// It reports whether an account was created.
func Seed(db *gorm.DB, email, password string) (bool, error) {
	if db == nil {
		return false, controller.ErrDBNil
	}

	var count int64
	if err := db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return false, err
	}

	if count > 0 || email == "" || password == "" {
		return false, nil
	}

	err := db.Create(&models.Admin{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: models.HashPassword(password),
		Active:   true,
	}).Error

	return err == nil, err
}
