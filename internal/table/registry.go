package table

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"holdem-core/internal/config"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
)

// Registry holds the tables of one server, keyed by id.
type Registry struct {
	cfg  config.TableConfig
	opts Options

	mu      sync.Mutex
	tables  map[string]*Table
	allowed map[string]bool
}

// NewRegistry creates tables lazily on first use. When ids are given only
// those tables exist; otherwise any id is accepted and creates a table, so
// servers facing untrusted callers should always pass ids.
func NewRegistry(cfg config.TableConfig, opts Options, ids ...string) *Registry {
	r := &Registry{
		cfg:    cfg,
		opts:   opts,
		tables: map[string]*Table{},
	}
	if len(ids) > 0 {
		r.allowed = make(map[string]bool, len(ids))
		for _, id := range ids {
			r.allowed[id] = true
		}
	}
	return r
}

func (r *Registry) Get(id string) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tables[id]; ok {
		return t, nil
	}
	if id == "" || (r.allowed != nil && !r.allowed[id]) {
		return nil, ErrTableNotFound
	}
	t, err := New(id, r.cfg, r.opts)
	if err != nil {
		return nil, err
	}
	r.tables[id] = t
	log.Info().Str("table_id", id).Msg("table opened")
	return t, nil
}

// Tables returns the open tables ordered by id.
func (r *Registry) Tables() []*Table {
	r.mu.Lock()
	out := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// SweepTimeouts sweeps every open table and returns how many players were
// forced to act.
func (r *Registry) SweepTimeouts(ctx context.Context) int {
	n := 0
	for _, t := range r.Tables() {
		for {
			if _, forced := t.SweepTimeouts(ctx); !forced {
				break
			}
			n++
		}
	}
	return n
}

// RunJanitor sweeps on every tick until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	clock := r.opts.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	w := clock.TickerFunc(ctx, interval, func() error {
		r.SweepTimeouts(ctx)
		return nil
	}, "table", "janitor")
	err := w.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		if err := r.RunJanitor(ctx, interval); err != nil {
			log.Error().Err(err).Msg("janitor stopped")
		}
	}()
}
