package config

import "time"

// Supported gorm engines.
const (
	EnginePostgres = "postgres"
	EngineMySQL    = "mysql"
	EngineSQLite   = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	Extras     string // engine specific DSN parameters, e.g. "sslmode=disable" or "parseTime=true"
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	Path       string // sqlite file, empty means in-memory
	GormEngine string
	SlowQuery  time.Duration // queries above are logged as slow, 0 keeps the gorm default
}
