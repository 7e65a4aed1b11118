package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"holdem-core/internal/actionlog"
	"holdem-core/internal/poker"
)

// Engine runs the hands of one table. It is not safe for concurrent use;
// callers serialize every method.
type Engine struct {
	cfg     Config
	log     *actionlog.Log
	rng     *rand.Rand
	newDeck func() *poker.Deck
	newID   func() string

	handNumber uint64
	handID     string
	street     Street
	players    []*Player
	byID       map[PlayerID]*Player
	buttonSeat int
	sbSeat     int
	bbSeat     int
	community  []poker.Card
	deck       *poker.Deck
	pots       *PotAccountant

	highWager  int64
	lastRaise  int64
	raiseRound int
	lastActor  int
	aggressor  PlayerID

	sitOut map[PlayerID]bool
	result *Result
}

type Option func(*Engine)

func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithDeck replaces shuffling with a deck factory, mostly for tests.
func WithDeck(fn func() *poker.Deck) Option {
	return func(e *Engine) { e.newDeck = fn }
}

func WithHandIDs(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

func NewEngine(cfg Config, log *actionlog.Log, opts ...Option) (*Engine, error) {
	if cfg.Reveal == "" {
		cfg.Reveal = RevealStandard
	}
	switch {
	case cfg.BigBlind <= 0:
		return nil, fmt.Errorf("%w: big blind must be positive", ErrInvalidConfig)
	case cfg.SmallBlind < 0 || cfg.SmallBlind > cfg.BigBlind:
		return nil, fmt.Errorf("%w: small blind must be between 0 and the big blind", ErrInvalidConfig)
	case cfg.Ante < 0:
		return nil, fmt.Errorf("%w: negative ante", ErrInvalidConfig)
	case !cfg.Reveal.Valid():
		return nil, fmt.Errorf("%w: reveal policy %q", ErrInvalidConfig, cfg.Reveal)
	}
	e := &Engine{
		cfg:        cfg,
		log:        log,
		street:     StreetNotStarted,
		byID:       map[PlayerID]*Player{},
		buttonSeat: -1,
		sitOut:     map[PlayerID]bool{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		var seed [8]byte
		_, _ = crand.Read(seed[:])
		e.rng = rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
	}
	if e.newDeck == nil {
		e.newDeck = func() *poker.Deck {
			d := poker.NewDeck()
			d.Shuffle(e.rng)
			return d
		}
	}
	if e.newID == nil {
		e.newID = func() string { return cfg.TableID + "-" + strconv.FormatUint(e.handNumber, 10) }
	}
	return e, nil
}

func (e *Engine) Config() Config     { return e.cfg }
func (e *Engine) Street() Street     { return e.street }
func (e *Engine) HandID() string     { return e.handID }
func (e *Engine) HandNumber() uint64 { return e.handNumber }
func (e *Engine) ButtonSeat() int    { return e.buttonSeat }

func (e *Engine) InProgress() bool {
	return e.street == StreetDealing || e.street.Betting()
}

// Community returns a copy of the board.
func (e *Engine) Community() []poker.Card {
	return append([]poker.Card(nil), e.community...)
}

// Players returns copies of the hand's players in seat order. Pockets are
// not included.
func (e *Engine) Players() []Player {
	out := make([]Player, 0, len(e.players))
	for _, p := range e.players {
		c := *p
		c.pocket = [2]poker.Card{}
		out = append(out, c)
	}
	return out
}

// Pocket returns one player's cards. It is the only accessor for pockets.
func (e *Engine) Pocket(id PlayerID) ([2]poker.Card, bool) {
	p, ok := e.byID[id]
	if !ok || !p.dealt {
		return [2]poker.Card{}, false
	}
	return p.pocket, true
}

// PotTotal is everything wagered this hand, committed or not.
func (e *Engine) PotTotal() int64 {
	if e.pots == nil {
		return 0
	}
	total := e.pots.Total()
	for _, p := range e.players {
		total += p.Wager
	}
	return total
}

func (e *Engine) Pots() []Pot {
	if e.pots == nil {
		return nil
	}
	return e.pots.Pots(e.folded())
}

// Result is set once the hand reaches EndOfHand.
func (e *Engine) Result() (Result, bool) {
	if e.result == nil {
		return Result{}, false
	}
	return *e.result, true
}

func (e *Engine) StartHand(seats []Seat) error {
	if e.InProgress() {
		return ErrHandInProgress
	}
	sorted := append([]Seat(nil), seats...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seat < sorted[j].Seat })

	players := make([]*Player, 0, len(sorted))
	byID := make(map[PlayerID]*Player, len(sorted))
	dealt := 0
	for i, s := range sorted {
		if s.ID == "" || s.Seat < 0 || s.Stack < 0 {
			return fmt.Errorf("%w: bad seat %+v", ErrIllegalAction, s)
		}
		if _, dup := byID[s.ID]; dup || (i > 0 && sorted[i-1].Seat == s.Seat) {
			return fmt.Errorf("%w: duplicate player or seat %+v", ErrIllegalAction, s)
		}
		p := &Player{ID: s.ID, Name: s.Name, Seat: s.Seat, Stack: s.Stack, Status: StatusWaiting}
		if s.Stack == 0 || e.sitOut[s.ID] {
			p.Status = StatusSittingOut
		} else {
			p.dealt = true
			dealt++
		}
		players = append(players, p)
		byID[p.ID] = p
	}
	if dealt < 2 {
		return ErrNotEnoughPlayers
	}
	if dealt > MaxPlayers {
		return fmt.Errorf("%w: %d dealt, at most %d", ErrTooManyPlayers, dealt, MaxPlayers)
	}

	e.players = players
	e.byID = byID
	e.handNumber++
	e.handID = e.newID()
	e.street = StreetDealing
	e.community = []poker.Card{}
	e.result = nil
	e.highWager, e.lastRaise, e.raiseRound, e.aggressor = 0, e.cfg.BigBlind, 0, ""

	e.buttonSeat = e.nextDealtSeat(e.buttonSeat)
	if dealt == 2 {
		e.sbSeat = e.buttonSeat
	} else {
		e.sbSeat = e.nextDealtSeat(e.buttonSeat)
	}
	e.bbSeat = e.nextDealtSeat(e.sbSeat)
	e.pots = NewPotAccountant(e.dealtOrder())

	e.log.Append(e.epoch())

	if e.cfg.Ante > 0 {
		antes := map[PlayerID]int64{}
		for _, id := range e.dealtOrder() {
			p := e.byID[id]
			amt := min(e.cfg.Ante, p.Stack)
			p.Stack -= amt
			p.Contributed += amt
			antes[id] = amt
			if p.Stack == 0 {
				p.Status = StatusAllIn
			}
			e.log.Append(actionlog.BetAction{PlayerID: string(id), Action: actionlog.BetAnte, Total: amt})
		}
		e.pots.CommitStreet(antes)
	}
	e.postBlind(e.seatPlayer(e.sbSeat), e.cfg.SmallBlind, actionlog.BetSmallBlind)
	e.postBlind(e.seatPlayer(e.bbSeat), e.cfg.BigBlind, actionlog.BetBigBlind)
	e.highWager = e.cfg.BigBlind

	e.deck = e.newDeck()
	order := e.dealtOrder()
	for round := 0; round < 2; round++ {
		for _, id := range order {
			c, err := e.deck.Deal(1)
			if err != nil {
				return fmt.Errorf("deal pockets: %w", err)
			}
			e.byID[id].pocket[round] = c[0]
		}
	}
	for _, id := range order {
		p := e.byID[id]
		e.log.Append(actionlog.PocketDealt{PlayerID: string(id), Cards: p.pocket})
	}

	e.street = StreetPreFlop
	e.lastActor = e.bbSeat
	e.log.Append(actionlog.StreetChanged{Street: string(StreetPreFlop)})
	return e.progress()
}

func (e *Engine) postBlind(p *Player, amount int64, kind actionlog.BetKind) {
	if p.Status == StatusAllIn {
		// Ante took the whole stack.
		return
	}
	amt := min(amount, p.Stack)
	p.Stack -= amt
	p.Wager += amt
	p.Contributed += amt
	if p.Stack == 0 {
		p.Status = StatusAllIn
	}
	e.log.Append(actionlog.BetAction{PlayerID: string(p.ID), Action: kind, Total: p.Wager})
}

func (e *Engine) Fold(id PlayerID) error  { return e.Apply(Action{Player: id, Type: ActionFold}) }
func (e *Engine) Check(id PlayerID) error { return e.Apply(Action{Player: id, Type: ActionCheck}) }
func (e *Engine) Call(id PlayerID) error  { return e.Apply(Action{Player: id, Type: ActionCall}) }

func (e *Engine) Bet(id PlayerID, total int64) error {
	return e.Apply(Action{Player: id, Type: ActionBet, Amount: total})
}

func (e *Engine) Raise(id PlayerID, total int64) error {
	return e.Apply(Action{Player: id, Type: ActionRaise, Amount: total})
}

// Apply validates and applies one player intent. On error nothing changes.
func (e *Engine) Apply(a Action) error {
	p, err := e.actor(a.Player)
	if err != nil {
		return err
	}
	return e.apply(p, a)
}

func (e *Engine) apply(p *Player, a Action) error {
	m, err := e.validate(p, a)
	if err != nil {
		return err
	}
	delta := m.wager - p.Wager
	p.Stack -= delta
	p.Wager = m.wager
	p.Contributed += delta
	p.Status = m.status
	if m.wager > e.highWager {
		if m.full {
			e.lastRaise = max(m.wager-e.highWager, e.lastRaise)
			e.raiseRound++
		}
		e.highWager = m.wager
		e.aggressor = p.ID
	}
	p.raiseRound = e.raiseRound
	e.lastActor = p.Seat
	e.log.Append(actionlog.BetAction{PlayerID: string(p.ID), Action: m.kind, Total: p.Wager})
	return e.progress()
}

// actor resolves the player for an action and checks it is their turn.
func (e *Engine) actor(id PlayerID) (*Player, error) {
	switch {
	case e.street == StreetEndOfHand:
		return nil, ErrHandAlreadyOver
	case !e.street.Betting():
		return nil, fmt.Errorf("%w: no hand in progress", ErrIllegalAction)
	}
	p, ok := e.byID[id]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	next, ok := e.ToAct()
	if !ok || next != id {
		return nil, fmt.Errorf("%w: not %s's turn", ErrIllegalAction, id)
	}
	return p, nil
}

// ToAct derives whose turn it is from the current state: the first player
// after the last actor who can still act and either has not acted this
// street or has not matched the high wager.
func (e *Engine) ToAct() (PlayerID, bool) {
	if !e.street.Betting() || e.roundComplete() {
		return "", false
	}
	n := len(e.players)
	start := 0
	for i, p := range e.players {
		if p.Seat > e.lastActor {
			start = i
			break
		}
	}
	for i := 0; i < n; i++ {
		p := e.players[(start+i)%n]
		if p.canAct() && (p.Status == StatusWaiting || p.Wager < e.highWager) {
			return p.ID, true
		}
	}
	return "", false
}

// LegalActions is the menu for the player to act, or false when it is not
// that player's turn.
func (e *Engine) LegalActions(id PlayerID) (LegalActions, bool) {
	next, ok := e.ToAct()
	if !ok || next != id {
		return LegalActions{}, false
	}
	return e.legalFor(e.byID[id]), true
}

func (e *Engine) roundComplete() bool {
	active := 0
	var last *Player
	for _, p := range e.players {
		if p.canAct() {
			active++
			last = p
		}
	}
	// A lone player who covers every all-in has nobody left to bet against,
	// even when a short big blind left highWager above anything posted.
	if active == 1 && last.Wager >= e.liveWagerExcept(last) {
		return true
	}
	for _, p := range e.players {
		if p.canAct() && p.Wager != e.highWager {
			return false
		}
	}
	if active <= 1 {
		return true
	}
	for _, p := range e.players {
		if p.canAct() && p.Status == StatusWaiting {
			return false
		}
	}
	return true
}

// liveWagerExcept is the largest wager this street among players still in
// the hand other than p.
func (e *Engine) liveWagerExcept(p *Player) int64 {
	var high int64
	for _, o := range e.players {
		if o != p && o.inHand() && o.Wager > high {
			high = o.Wager
		}
	}
	return high
}

func (e *Engine) progress() error {
	if e.countInHand() == 1 {
		e.finishUncontested()
		return nil
	}
	for e.street.Betting() && e.roundComplete() {
		if err := e.endStreet(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) endStreet() error {
	wagers := make(map[PlayerID]int64, len(e.players))
	for _, p := range e.players {
		if p.Wager > 0 {
			wagers[p.ID] = p.Wager
		}
		p.Wager = 0
		p.raiseRound = 0
		if p.canAct() {
			p.Status = StatusWaiting
		}
	}
	e.pots.CommitStreet(wagers)
	if e.street == StreetRiver {
		return e.showdown()
	}

	e.street = e.street.next()
	e.highWager, e.lastRaise, e.raiseRound, e.aggressor = 0, e.cfg.BigBlind, 0, ""
	e.lastActor = e.buttonSeat
	cards, err := e.deck.Deal(e.street.boardCards())
	if err != nil {
		return fmt.Errorf("deal %s: %w", e.street, err)
	}
	e.community = append(e.community, cards...)
	e.log.Append(actionlog.CommunityCards{Street: string(e.street), Cards: cards})
	e.log.Append(actionlog.StreetChanged{Street: string(e.street)})
	return nil
}

func (e *Engine) finishUncontested() {
	var winner *Player
	for _, p := range e.players {
		if p.inHand() {
			winner = p
		}
	}
	amount := e.PotTotal()
	for _, p := range e.players {
		p.Wager = 0
	}
	winner.Stack += amount
	e.log.Append(actionlog.PotAwarded{
		Pot:     0,
		Amount:  amount,
		Winners: []actionlog.Award{{PlayerID: string(winner.ID), Amount: amount}},
	})
	e.endHand(map[PlayerID]int64{winner.ID: amount}, false)
}

func (e *Engine) showdown() error {
	contenders := e.contenders()
	ranks := make(map[PlayerID]int32, len(contenders))
	hands := make(map[PlayerID]poker.HandRank, len(contenders))
	for _, p := range contenders {
		hr, err := poker.EvaluateHolding(p.pocket, e.community)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", p.ID, err)
		}
		hands[p.ID] = hr
		ranks[p.ID] = hr.Strength()
	}

	folded := e.folded()
	awards := e.pots.Awards(folded, ranks)
	payouts := map[PlayerID]int64{}
	for _, aw := range awards {
		for id, amt := range aw.Shares {
			payouts[id] += amt
		}
	}

	for _, id := range e.revealOrder(contenders, ranks, payouts) {
		p := e.byID[id]
		p.revealed = true
		e.log.Append(actionlog.Reveal{PlayerID: string(id), Cards: p.pocket, Hand: hands[id].String()})
	}
	for i, aw := range awards {
		winners := make([]actionlog.Award, 0, len(aw.Shares))
		for _, id := range aw.Pot.Eligible {
			if amt, ok := aw.Shares[id]; ok {
				winners = append(winners, actionlog.Award{PlayerID: string(id), Amount: amt})
			}
		}
		e.log.Append(actionlog.PotAwarded{Pot: i, Amount: aw.Pot.Amount, Winners: winners})
	}
	for id, amt := range payouts {
		e.byID[id].Stack += amt
	}
	e.endHand(payouts, false)
	return nil
}

// revealOrder lists who shows at showdown, in the order they show.
func (e *Engine) revealOrder(contenders []*Player, ranks map[PlayerID]int32, payouts map[PlayerID]int64) []PlayerID {
	var out []PlayerID
	switch e.cfg.Reveal {
	case RevealAll:
		for _, p := range contenders {
			out = append(out, p.ID)
		}
		return out
	case RevealWinners:
		for _, p := range contenders {
			if payouts[p.ID] > 0 {
				out = append(out, p.ID)
			}
		}
		return out
	}

	for _, p := range contenders {
		if p.Status == StatusAllIn {
			for _, c := range contenders {
				out = append(out, c.ID)
			}
			return out
		}
	}
	first := 0
	for i, p := range contenders {
		if p.ID == e.aggressor {
			first = i
		}
	}
	best := int32(-1)
	for i := range contenders {
		p := contenders[(first+i)%len(contenders)]
		if ranks[p.ID] >= best {
			best = ranks[p.ID]
			out = append(out, p.ID)
		}
	}
	return out
}

func (e *Engine) endHand(payouts map[PlayerID]int64, aborted bool) {
	stacks := make(map[PlayerID]int64, len(e.players))
	for _, p := range e.players {
		p.Wager = 0
		stacks[p.ID] = p.Stack
	}
	e.pots = NewPotAccountant(nil)
	e.street = StreetEndOfHand
	e.result = &Result{HandID: e.handID, Payouts: payouts, Stacks: stacks, Aborted: aborted}
	e.log.Append(actionlog.StreetChanged{Street: string(StreetEndOfHand)})
}

// Reveal shows a player's pocket to the table after the hand ended.
func (e *Engine) Reveal(id PlayerID) error {
	if e.street != StreetEndOfHand || e.result == nil || e.result.Aborted {
		return fmt.Errorf("%w: reveal only after a finished hand", ErrIllegalAction)
	}
	p, ok := e.byID[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if !p.dealt || p.revealed {
		return fmt.Errorf("%w: nothing to reveal", ErrIllegalAction)
	}
	p.revealed = true
	item := actionlog.Reveal{PlayerID: string(id), Cards: p.pocket}
	if hr, err := poker.EvaluateHolding(p.pocket, e.community); err == nil {
		item.Hand = hr.String()
	}
	e.log.Append(item)
	return nil
}

// ForceEnd aborts the hand in progress and gives every player back what
// they put in. No pocket is disclosed.
func (e *Engine) ForceEnd(reason string) error {
	if e.street == StreetEndOfHand {
		return ErrHandAlreadyOver
	}
	if !e.InProgress() {
		return fmt.Errorf("%w: no hand in progress", ErrIllegalAction)
	}
	refunds := map[PlayerID]int64{}
	for _, p := range e.players {
		if p.Contributed > 0 {
			p.Stack += p.Contributed
			refunds[p.ID] = p.Contributed
		}
	}
	e.log.Append(actionlog.HandAborted{HandID: e.handID, Reason: reason})
	e.endHand(refunds, true)
	return nil
}

func (e *Engine) countInHand() int {
	n := 0
	for _, p := range e.players {
		if p.inHand() {
			n++
		}
	}
	return n
}

func (e *Engine) folded() map[PlayerID]bool {
	out := map[PlayerID]bool{}
	for _, p := range e.players {
		if p.Status == StatusFolded {
			out[p.ID] = true
		}
	}
	return out
}

// contenders are the players still holding cards, in seat order starting
// after the button.
func (e *Engine) contenders() []*Player {
	var out []*Player
	for _, id := range e.dealtOrder() {
		if p := e.byID[id]; p.inHand() {
			out = append(out, p)
		}
	}
	return out
}

// dealtOrder lists dealt players starting with the seat after the button.
func (e *Engine) dealtOrder() []PlayerID {
	var after, before []PlayerID
	for _, p := range e.players {
		if !p.dealt {
			continue
		}
		if p.Seat > e.buttonSeat {
			after = append(after, p.ID)
		} else {
			before = append(before, p.ID)
		}
	}
	return append(after, before...)
}

func (e *Engine) nextDealtSeat(from int) int {
	first := -1
	for _, p := range e.players {
		if !p.dealt {
			continue
		}
		if first < 0 {
			first = p.Seat
		}
		if p.Seat > from {
			return p.Seat
		}
	}
	return first
}

func (e *Engine) seatPlayer(seat int) *Player {
	for _, p := range e.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}
