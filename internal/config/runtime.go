package config

import (
	"fmt"
	"time"
)

// RuntimeConfig is the complete resolved configuration injected into use
// cases and adapters.
type RuntimeConfig struct {
	// Core settings
	ProjectRoot  string // directory holding the indexer manifest and abis/
	ManifestPath string
	AbisDir      string

	// Indexer process settings
	IndexerBinary  string
	IndexerLogFile string
	IndexerPort    int // port the indexer's own API listens on
	GraceTimeout   time.Duration
	SettleDelay    time.Duration

	// HTTP surfaces
	RESTPort       int
	ProxyPort      int
	AllowedOrigins []string

	// Database
	Database DatabaseConfig

	Debug bool
}

// DatabaseConfig holds the Postgres connection settings, supplied via
// the POSTGRES_* environment variables.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// DSN renders the connection string for pgx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}
