package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	APIURL   string `env:"API_URL" envDefault:"http://localhost:8080"`
	WSURL    string `env:"WS_URL" envDefault:"ws://localhost:8080"`
	TableID  string `env:"TABLE_ID" envDefault:"main"`
	PlayerID string `env:"PLAYER_ID" envDefault:"bot"`
	Seat     int    `env:"SEAT" envDefault:"-1"`
	BuyIn    int64  `env:"BUY_IN" envDefault:"1000"`
	Seed     int64  `env:"BOT_SEED" envDefault:"0"`

	// PlayerKey is sent as X-Player-Key when the server has PLAYER_KEYS set.
	PlayerKey string `env:"PLAYER_KEY"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
