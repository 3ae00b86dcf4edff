// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mompick/mompick-admin/internal/config"
)

// sqliteMemory is the sqlite DSN of a private in-memory database.
const sqliteMemory = ":memory:"

// Create builds the gorm Data Source Name from the configuration.
func Create(dbCfg *config.Config) string {
	switch dbCfg.DB.GormEngine {
	case config.EngineMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			dbCfg.DB.User,
			dbCfg.DB.Password,
			dbCfg.DB.Host,
			dbCfg.DB.Port,
			dbCfg.DB.Name,
			dbCfg.DB.Extras,
		)
	case config.EngineSQLite:
		if dbCfg.DB.Path == "" {
			return sqliteMemory
		}

		return dbCfg.DB.Path
	default:
		return strings.TrimSpace(fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s %s",
			dbCfg.DB.Host,
			dbCfg.DB.Port,
			dbCfg.DB.User,
			dbCfg.DB.Password,
			dbCfg.DB.Name,
			dbCfg.DB.Extras,
		))
	}
}

// SessionURI builds the connection URI used by the fiber session storages.
// The postgres storage expects a URL, the mysql storage the gorm DSN.
func SessionURI(dbCfg *config.Config) string {
	if dbCfg.DB.GormEngine != config.EnginePostgres {
		return Create(dbCfg)
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(dbCfg.DB.User, dbCfg.DB.Password),
		Host:   fmt.Sprintf("%s:%d", dbCfg.DB.Host, dbCfg.DB.Port),
		Path:   "/" + dbCfg.DB.Name,
	}

	// key=value extras become query parameters
	q := url.Values{}
	for _, kv := range strings.Fields(dbCfg.DB.Extras) {
		if k, v, ok := strings.Cut(kv, "="); ok {
			q.Set(k, v)
		}
	}

	u.RawQuery = q.Encode()

	return u.String()
}
