package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	// Without a DSN the server runs in memory: no archive store, no ledger.
	PostgresDSN string `env:"POSTGRES_DSN"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminAPIKey string            `env:"ADMIN_API_KEY"`
	// PlayerKeys maps player id to the key a caller must present to act or
	// read pockets as that player, e.g. "alice:k1,bob:k2". Empty trusts
	// every caller.
	PlayerKeys  map[string]string `env:"PLAYER_KEYS"`

	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"1s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Tables          []string      `env:"TABLES" envDefault:"main" envSeparator:","`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
