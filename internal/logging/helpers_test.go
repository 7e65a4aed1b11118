package logging

import "holdem-core/internal/config"

func testLogConfig() config.LogConfig {
	return config.LogConfig{Level: "info", MaxMB: 1, Service: "test"}
}
