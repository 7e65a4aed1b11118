package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"holdem-core/internal/config"
)

var (
	mu     sync.RWMutex
	writer io.Writer = os.Stdout
)

// Init configures the global zerolog logger. When cfg.File is set, output
// goes to both stdout and a rotating file.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return err
		}
		level = parsed
	}

	var sink io.Writer = os.Stdout
	if cfg.File != "" {
		fw, err := openRotatingFile(cfg.File, cfg.MaxMB, cfg.Backups)
		if err != nil {
			return err
		}
		sink = io.MultiWriter(os.Stdout, fw)
	}

	var output io.Writer = sink
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: sink}
	}

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(output).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger

	mu.Lock()
	writer = sink
	mu.Unlock()
	return nil
}

// Writer is the raw sink behind the global logger, for libraries that bring
// their own log format.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return writer
}
