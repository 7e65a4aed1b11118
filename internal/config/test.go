package config

import "github.com/caarlos0/env/v11"

// TestConfig drives the Postgres backed tests. They skip when PostgresDSN is
// unset.
type TestConfig struct {
	PostgresDSN  string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
	SchemaPrefix string `env:"TEST_SCHEMA_PREFIX" envDefault:"holdem_test"`
	// KeepSchema leaves each test's schema behind for inspection.
	KeepSchema bool `env:"TEST_KEEP_SCHEMA" envDefault:"false"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
