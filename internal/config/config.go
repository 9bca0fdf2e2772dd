// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Store driver names accepted by store_driver.
const (
	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory change-event queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of leaderboard rebuild workers.
	WorkerCount int `koanf:"worker_count"`

	// StoreDriver selects the document store backend: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the SQLite data source name; ignored by the memory driver.
	StoreDSN string `koanf:"store_dsn"`

	// AuthSecret signs session tokens. Override it in every deployment.
	AuthSecret string `koanf:"auth_secret"`

	// TokenTTLMinutes bounds session token lifetime.
	TokenTTLMinutes int `koanf:"token_ttl_minutes"`

	// WatchBuffer sets the per-subscriber change feed buffer.
	WatchBuffer int `koanf:"watch_buffer"`

	// CORSOrigins is the browser origin allow-list.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		QueueSize:       4096,
		WorkerCount:     runtime.NumCPU(),
		StoreDriver:     StoreDriverSQLite,
		StoreDSN:        "file:ringside.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)",
		AuthSecret:      "dev-secret-change-me",
		TokenTTLMinutes: 480,
		WatchBuffer:     256,
		CORSOrigins:     []string{"*"},
	}
}
