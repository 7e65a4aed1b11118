package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"holdem-core/internal/config"
	"holdem-core/internal/ledger"
	"holdem-core/internal/logging"
	"holdem-core/internal/store"
	"holdem-core/internal/table"
	httptransport "holdem-core/internal/transport/http"
	"holdem-core/internal/ws"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}
	if err := logging.Init(cfg.Log); err != nil {
		log.Fatal().Err(err).Msg("init logging failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.AppConfig) error {
	st, err := openStore(ctx, cfg.Server)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	opts := table.Options{Settler: ledger.New(st)}
	if st != nil {
		opts.Archive = st
		opts.Balances = st
	}
	reg := table.NewRegistry(cfg.Table, opts, cfg.Server.Tables...)
	for _, id := range cfg.Server.Tables {
		if _, err := reg.Get(id); err != nil {
			return err
		}
	}

	r := httptransport.NewRouter(st, cfg.Server, reg, ws.NewServer())
	httptransport.LogRoutes(r)
	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return reg.RunJanitor(gctx, cfg.Server.JanitorInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore returns nil when no DSN is configured; tables then live in
// memory only.
func openStore(ctx context.Context, cfg config.ServerConfig) (*store.Store, error) {
	if cfg.PostgresDSN == "" {
		log.Warn().Msg("POSTGRES_DSN not set; running without persistence")
		return nil, nil
	}
	st, err := store.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := st.Ping(ctx); err != nil {
		st.Close()
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
