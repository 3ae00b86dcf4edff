package daemon

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/controller/admin"
)

// seed creates the configured admin account on an empty admins table.
func seed(cfg *config.Config, db *gorm.DB) error {
	created, err := admin.Seed(db, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return errors.Wrap(err, "failed to seed admin account")
	}

	if created {
		log.Info().Str("email", cfg.Admin.Email).Msg("admin account created")
	}

	return nil
}
