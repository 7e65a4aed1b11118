package table

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"holdem-core/internal/actionlog"
	"holdem-core/internal/config"
	"holdem-core/internal/game"
	"holdem-core/internal/ledger"
	"holdem-core/internal/store"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrSeatTaken      = errors.New("seat_taken")
	ErrTableNotFound  = errors.New("table_not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ArchiveStore receives log entries that left the live window.
type ArchiveStore interface {
	AppendArchive(ctx context.Context, tableID string, entries []actionlog.Entry) error
	ListArchive(ctx context.Context, tableID string, afterSeq uint64, limit int) ([]actionlog.Entry, error)
}

type Settler interface {
	SettleHand(ctx context.Context, s ledger.Settlement) error
}

type BalanceStore interface {
	SetBalance(ctx context.Context, tableID, playerID string, stack int64) error
}

type Options struct {
	Clock    quartz.Clock
	Archive  ArchiveStore
	Settler  Settler
	Balances BalanceStore
	// Engine is passed through to game.NewEngine, e.g. a seeded rand.
	Engine []game.Option
}

type seat struct {
	id    game.PlayerID
	name  string
	seat  int
	stack int64
}

type job struct {
	name string
	run  func(ctx context.Context) error
}

// Table owns one engine and its log. A single mutex serializes every
// mutation; persistence runs after the mutex is released.
type Table struct {
	id       string
	cfg      config.TableConfig
	clock    quartz.Clock
	log      *actionlog.Log
	archive  ArchiveStore
	settler  Settler
	balances BalanceStore

	mu          sync.Mutex
	engine      *game.Engine
	seats       map[game.PlayerID]*seat
	turn        game.PlayerID
	deadline    time.Time
	startStacks map[string]int64
	settled     bool
	autoStart   *quartz.Timer
	pending     []job
}

// EngineConfig maps table settings onto the engine's rules.
func EngineConfig(id string, cfg config.TableConfig) game.Config {
	return game.Config{
		TableID:         id,
		SmallBlind:      cfg.SmallBlind,
		BigBlind:        cfg.BigBlind,
		Ante:            cfg.Ante,
		DecisionTimeout: cfg.DecisionTimeout,
		MinRaise:        game.MinRaisePolicy{ShortAllInReopens: cfg.ShortAllInReopens},
		Reveal:          game.RevealPolicy(cfg.RevealPolicy),
	}
}

func New(id string, cfg config.TableConfig, opts Options) (*Table, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty table id", ErrInvalidRequest)
	}
	if cfg.MaxSeats < 2 || cfg.MaxSeats > game.MaxPlayers {
		return nil, fmt.Errorf("%w: max seats %d not in 2..%d", game.ErrInvalidConfig, cfg.MaxSeats, game.MaxPlayers)
	}
	t := &Table{
		id:       id,
		cfg:      cfg,
		clock:    opts.Clock,
		log:      actionlog.New(cfg.LiveHands),
		archive:  opts.Archive,
		settler:  opts.Settler,
		balances: opts.Balances,
		seats:    map[game.PlayerID]*seat{},
	}
	if t.clock == nil {
		t.clock = quartz.NewReal()
	}
	engineOpts := append([]game.Option{game.WithHandIDs(store.NewHandID)}, opts.Engine...)
	engine, err := game.NewEngine(EngineConfig(id, cfg), t.log, engineOpts...)
	if err != nil {
		return nil, err
	}
	t.engine = engine
	// Append only runs with t.mu held, so the callback may touch pending.
	t.log.OnArchive(func(entries []actionlog.Entry) {
		if t.archive == nil {
			return
		}
		t.pending = append(t.pending, job{name: "archive", run: func(ctx context.Context) error {
			return t.archive.AppendArchive(ctx, t.id, entries)
		}})
	})
	return t, nil
}

func (t *Table) ID() string { return t.id }

func (t *Table) Config() config.TableConfig { return t.cfg }

func (t *Table) Log() *actionlog.Log { return t.log }

// SitDown seats a player. seatNo < 0 picks the lowest free seat.
func (t *Table) SitDown(ctx context.Context, player game.PlayerID, name string, seatNo int, buyIn int64) (int, error) {
	if player == "" {
		return 0, fmt.Errorf("%w: player_id required", ErrInvalidRequest)
	}
	if buyIn < t.cfg.MinBuyIn || buyIn <= 0 {
		return 0, fmt.Errorf("%w: buy-in %d below minimum %d", ErrInvalidRequest, buyIn, t.cfg.MinBuyIn)
	}
	if seatNo >= t.cfg.MaxSeats {
		return 0, fmt.Errorf("%w: seat %d out of range", ErrInvalidRequest, seatNo)
	}

	t.mu.Lock()
	if _, ok := t.seats[player]; ok {
		t.mu.Unlock()
		return 0, fmt.Errorf("%w: %s already seated", ErrSeatTaken, player)
	}
	taken := make(map[int]bool, len(t.seats))
	for _, s := range t.seats {
		taken[s.seat] = true
	}
	if seatNo < 0 {
		for i := 0; i < t.cfg.MaxSeats; i++ {
			if !taken[i] {
				seatNo = i
				break
			}
		}
		if seatNo < 0 {
			t.mu.Unlock()
			return 0, fmt.Errorf("%w: table full", ErrSeatTaken)
		}
	} else if taken[seatNo] {
		t.mu.Unlock()
		return 0, fmt.Errorf("%w: seat %d", ErrSeatTaken, seatNo)
	}
	if name == "" {
		name = string(player)
	}
	t.seats[player] = &seat{id: player, name: name, seat: seatNo, stack: buyIn}
	t.log.Append(actionlog.PlayerSitDown{PlayerID: string(player), Name: name, Seat: seatNo, Stack: buyIn})
	t.queueBalanceLocked(player, buyIn)
	t.scheduleAutoStartLocked()
	jobs := t.takeJobsLocked()
	t.mu.Unlock()

	log.Info().Str("table_id", t.id).Str("player_id", string(player)).Int("seat", seatNo).Int64("stack", buyIn).Msg("player sat down")
	t.runJobs(ctx, jobs)
	return seatNo, nil
}

// StandUp removes a player who is not live in the current hand and returns
// their stack.
func (t *Table) StandUp(ctx context.Context, player game.PlayerID) (int64, error) {
	t.mu.Lock()
	s, ok := t.seats[player]
	if !ok {
		t.mu.Unlock()
		return 0, game.ErrUnknownPlayer
	}
	stack := s.stack
	if t.engine.InProgress() {
		for _, p := range t.engine.Players() {
			if p.ID != player {
				continue
			}
			if p.Status != game.StatusFolded && p.Status != game.StatusSittingOut {
				t.mu.Unlock()
				return 0, fmt.Errorf("%w: %s is in the hand", game.ErrHandInProgress, player)
			}
			stack = p.Stack
		}
	}
	delete(t.seats, player)
	t.log.Append(actionlog.PlayerStandUp{PlayerID: string(player), Seat: s.seat, Stack: stack})
	t.queueBalanceLocked(player, stack)
	jobs := t.takeJobsLocked()
	t.mu.Unlock()

	log.Info().Str("table_id", t.id).Str("player_id", string(player)).Int64("stack", stack).Msg("player stood up")
	t.runJobs(ctx, jobs)
	return stack, nil
}

// Reconnect clears a player's sit-out flag so they are dealt in again.
func (t *Table) Reconnect(player game.PlayerID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seats[player]; !ok {
		return game.ErrUnknownPlayer
	}
	t.engine.Reconnect(player)
	t.scheduleAutoStartLocked()
	return nil
}

// Disconnect flags a seated player to sit out from the next hand until
// Reconnect.
func (t *Table) Disconnect(player game.PlayerID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seats[player]; ok {
		t.engine.SitOut(player)
	}
}

// StartHand deals a new hand to every seated player with chips.
func (t *Table) StartHand(ctx context.Context) (string, error) {
	t.mu.Lock()
	seats := make([]game.Seat, 0, len(t.seats))
	start := make(map[string]int64, len(t.seats))
	for _, s := range t.seats {
		seats = append(seats, game.Seat{ID: s.id, Name: s.name, Seat: s.seat, Stack: s.stack})
		start[string(s.id)] = s.stack
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i].Seat < seats[j].Seat })
	if err := t.engine.StartHand(seats); err != nil {
		t.mu.Unlock()
		return "", err
	}
	t.stopAutoStartLocked()
	t.startStacks = start
	t.settled = false
	handID := t.engine.HandID()
	handNumber := t.engine.HandNumber()
	t.afterMoveLocked()
	jobs := t.takeJobsLocked()
	t.mu.Unlock()

	log.Info().Str("table_id", t.id).Str("hand_id", handID).Uint64("hand_number", handNumber).Int("players", len(seats)).Msg("hand started")
	t.runJobs(ctx, jobs)
	return handID, nil
}

func (t *Table) Act(ctx context.Context, a game.Action) error {
	t.mu.Lock()
	if _, ok := t.seats[a.Player]; !ok {
		t.mu.Unlock()
		return game.ErrUnknownPlayer
	}
	if err := t.engine.Apply(a); err != nil {
		t.mu.Unlock()
		return err
	}
	t.afterMoveLocked()
	jobs := t.takeJobsLocked()
	t.mu.Unlock()

	t.runJobs(ctx, jobs)
	return nil
}

// Reveal shows a player's pocket after the hand ended.
func (t *Table) Reveal(ctx context.Context, player game.PlayerID) error {
	t.mu.Lock()
	err := t.engine.Reveal(player)
	jobs := t.takeJobsLocked()
	t.mu.Unlock()
	t.runJobs(ctx, jobs)
	return err
}

// ForceEnd aborts the current hand and refunds every contribution.
func (t *Table) ForceEnd(ctx context.Context, reason string) error {
	t.mu.Lock()
	handID := t.engine.HandID()
	if err := t.engine.ForceEnd(reason); err != nil {
		t.mu.Unlock()
		return err
	}
	t.afterMoveLocked()
	jobs := t.takeJobsLocked()
	t.mu.Unlock()

	log.Warn().Str("table_id", t.id).Str("hand_id", handID).Str("reason", reason).Msg("hand force ended")
	t.runJobs(ctx, jobs)
	return nil
}

// LogsSince is safe without the table mutex; the log has its own lock.
func (t *Table) LogsSince(seq uint64, player game.PlayerID) ([]actionlog.Entry, uint64) {
	return t.log.LogsSince(seq, string(player))
}

// Snapshot is the engine snapshot plus seated players who are not in the
// current hand.
func (t *Table) Snapshot(viewer game.PlayerID) game.TableSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.engine.Snapshot(viewer)
	inHand := make(map[string]bool, len(snap.Epoch.Seats))
	for _, s := range snap.Epoch.Seats {
		inHand[s.PlayerID] = true
	}
	for _, s := range t.seats {
		if inHand[string(s.id)] {
			continue
		}
		snap.Epoch.Seats = append(snap.Epoch.Seats, actionlog.EpochSeat{
			Seat:     s.seat,
			PlayerID: string(s.id),
			Name:     s.name,
			Stack:    s.stack,
			Status:   string(game.StatusSittingOut),
		})
	}
	sort.Slice(snap.Epoch.Seats, func(i, j int) bool { return snap.Epoch.Seats[i].Seat < snap.Epoch.Seats[j].Seat })
	return snap
}

// Deadline reports whose turn it is and when the turn expires.
func (t *Table) Deadline() (game.PlayerID, time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.turn == "" || t.deadline.IsZero() {
		return "", time.Time{}, false
	}
	return t.turn, t.deadline, true
}

// Archive lists entries that left the live window, from the store when one
// is configured.
func (t *Table) Archive(ctx context.Context, since uint64, limit int) ([]actionlog.Entry, error) {
	if t.archive != nil {
		return t.archive.ListArchive(ctx, t.id, since, limit)
	}
	return t.log.ArchiveSince(since, limit), nil
}

// Stack returns a seated player's stack between hands.
func (t *Table) Stack(player game.PlayerID) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.seats[player]
	if !ok {
		return 0, false
	}
	return s.stack, true
}

func (t *Table) HandNumber() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.HandNumber()
}

func (t *Table) Street() game.Street {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.Street()
}

// SweepTimeouts forces the default action for a player whose deadline has
// passed.
func (t *Table) SweepTimeouts(ctx context.Context) (game.Action, bool) {
	t.mu.Lock()
	if t.turn == "" || t.deadline.IsZero() || t.clock.Now().Before(t.deadline) {
		t.mu.Unlock()
		return game.Action{}, false
	}
	player := t.turn
	a, err := t.engine.ForceActionFor(player)
	if err != nil {
		t.turn, t.deadline = "", time.Time{}
		t.mu.Unlock()
		log.Error().Err(err).Str("table_id", t.id).Str("player_id", string(player)).Msg("force action failed")
		return game.Action{}, false
	}
	t.afterMoveLocked()
	jobs := t.takeJobsLocked()
	t.mu.Unlock()

	log.Info().Str("table_id", t.id).Str("player_id", string(player)).Str("action", string(a.Type)).Msg("decision timed out")
	t.runJobs(ctx, jobs)
	return a, true
}

// afterMoveLocked arms the next turn deadline and settles a finished hand.
func (t *Table) afterMoveLocked() {
	t.turn, t.deadline = "", time.Time{}
	if id, ok := t.engine.ToAct(); ok {
		t.turn = id
		if t.cfg.DecisionTimeout > 0 {
			t.deadline = t.clock.Now().Add(t.cfg.DecisionTimeout)
		}
	}
	res, ok := t.engine.Result()
	if !ok || t.settled {
		return
	}
	t.settled = true
	end := make(map[string]int64, len(res.Stacks))
	for id, stack := range res.Stacks {
		end[string(id)] = stack
		if s, ok := t.seats[id]; ok {
			s.stack = stack
		}
	}
	settlement := ledger.Settlement{
		TableID:    t.id,
		HandID:     res.HandID,
		HandNumber: t.engine.HandNumber(),
		Aborted:    res.Aborted,
		Start:      t.startStacks,
		End:        end,
	}
	if t.settler != nil {
		t.pending = append(t.pending, job{name: "settle", run: func(ctx context.Context) error {
			return t.settler.SettleHand(ctx, settlement)
		}})
	}
	log.Info().Str("table_id", t.id).Str("hand_id", res.HandID).Bool("aborted", res.Aborted).Msg("hand finished")
	t.scheduleAutoStartLocked()
}

func (t *Table) queueBalanceLocked(player game.PlayerID, stack int64) {
	if t.balances == nil {
		return
	}
	t.pending = append(t.pending, job{name: "balance", run: func(ctx context.Context) error {
		return t.balances.SetBalance(ctx, t.id, string(player), stack)
	}})
}

func (t *Table) scheduleAutoStartLocked() {
	if t.cfg.AutoStartDelay <= 0 || t.autoStart != nil || t.engine.InProgress() {
		return
	}
	ready := 0
	for _, s := range t.seats {
		if s.stack > 0 && !t.engine.SittingOutNext(s.id) {
			ready++
		}
	}
	if ready < 2 {
		return
	}
	var timer *quartz.Timer
	timer = t.clock.AfterFunc(t.cfg.AutoStartDelay, func() {
		t.mu.Lock()
		if t.autoStart != timer {
			t.mu.Unlock()
			return
		}
		t.autoStart = nil
		t.mu.Unlock()
		_, err := t.StartHand(context.Background())
		if err != nil && !errors.Is(err, game.ErrNotEnoughPlayers) && !errors.Is(err, game.ErrHandInProgress) {
			log.Warn().Err(err).Str("table_id", t.id).Msg("auto start failed")
		}
	}, "table", "auto_start")
	t.autoStart = timer
}

func (t *Table) stopAutoStartLocked() {
	if t.autoStart != nil {
		t.autoStart.Stop()
		t.autoStart = nil
	}
}

func (t *Table) takeJobsLocked() []job {
	jobs := t.pending
	t.pending = nil
	return jobs
}

// runJobs runs persistence without the table lock. Each job stands alone: a
// failed settle never cancels an archive write. Failures are logged and the
// in-memory table stays authoritative.
func (t *Table) runJobs(ctx context.Context, jobs []job) {
	if len(jobs) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var g errgroup.Group
	for _, j := range jobs {
		g.Go(func() error {
			if err := j.run(ctx); err != nil {
				log.Error().Err(err).Str("table_id", t.id).Str("job", j.name).Msg("persist table state failed")
				return fmt.Errorf("%s: %w", j.name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
