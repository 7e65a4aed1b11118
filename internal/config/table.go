package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type TableConfig struct {
	SmallBlind        int64         `env:"TABLE_SMALL_BLIND" envDefault:"5"`
	BigBlind          int64         `env:"TABLE_BIG_BLIND" envDefault:"10"`
	Ante              int64         `env:"TABLE_ANTE" envDefault:"0"`
	MaxSeats          int           `env:"TABLE_MAX_SEATS" envDefault:"9"`
	MinBuyIn          int64         `env:"TABLE_MIN_BUY_IN" envDefault:"100"`
	DecisionTimeout   time.Duration `env:"TABLE_DECISION_TIMEOUT" envDefault:"30s"`
	LiveHands         int           `env:"TABLE_LIVE_HANDS" envDefault:"3"`
	ShortAllInReopens bool          `env:"TABLE_SHORT_ALLIN_REOPENS" envDefault:"false"`
	RevealPolicy      string        `env:"TABLE_REVEAL_POLICY" envDefault:"standard"`
	AutoStartDelay    time.Duration `env:"TABLE_AUTO_START_DELAY" envDefault:"0s"`
}

func LoadTable() (TableConfig, error) {
	var cfg TableConfig
	err := env.Parse(&cfg)
	return cfg, err
}
