package game

import (
	"fmt"

	"holdem-core/internal/actionlog"
)

// move is a validated action ready to apply.
type move struct {
	wager  int64
	status BetStatus
	kind   actionlog.BetKind
	full   bool
}

func (e *Engine) legalFor(p *Player) LegalActions {
	toCall := e.highWager - p.Wager
	if toCall < 0 {
		toCall = 0
	}
	maxTotal := p.Wager + p.Stack
	la := LegalActions{
		Player:      p.ID,
		CanCheck:    toCall == 0,
		CanCall:     toCall > 0,
		CallAmount:  min(toCall, p.Stack),
		MaxTotal:    maxTotal,
		HighWager:   e.highWager,
		PlayerWager: p.Wager,
	}
	others := e.othersCanAct(p)
	if e.highWager == 0 {
		la.CanBet = p.Stack > 0 && others
		la.MinTotal = min(e.cfg.BigBlind, maxTotal)
	} else {
		la.CanRaise = maxTotal > e.highWager && others && e.raiseOpen(p)
		la.MinTotal = min(e.highWager+e.lastRaise, maxTotal)
	}
	if !la.CanBet && !la.CanRaise {
		la.MinTotal, la.MaxTotal = 0, 0
	}
	return la
}

// raiseOpen is false when the player already acted and has only faced an
// all-in that was smaller than a full raise since.
func (e *Engine) raiseOpen(p *Player) bool {
	return p.Status == StatusWaiting || p.raiseRound < e.raiseRound
}

func (e *Engine) othersCanAct(p *Player) bool {
	for _, o := range e.players {
		if o != p && o.canAct() {
			return true
		}
	}
	return false
}

func (e *Engine) validate(p *Player, a Action) (move, error) {
	maxTotal := p.Wager + p.Stack
	switch a.Type {
	case ActionFold:
		return move{wager: p.Wager, status: StatusFolded, kind: actionlog.BetFold}, nil

	case ActionCheck:
		if p.Wager != e.highWager {
			return move{}, fmt.Errorf("%w: cannot check facing %d", ErrIllegalAction, e.highWager)
		}
		return move{wager: p.Wager, status: StatusChecked, kind: actionlog.BetCheck}, nil

	case ActionCall:
		if e.highWager <= p.Wager {
			return move{}, fmt.Errorf("%w: nothing to call", ErrIllegalAction)
		}
		if e.highWager >= maxTotal {
			return move{wager: maxTotal, status: StatusAllIn, kind: actionlog.BetAllIn}, nil
		}
		return move{wager: e.highWager, status: StatusCalled, kind: actionlog.BetCall}, nil

	case ActionBet, ActionRaise:
		if a.Amount < 0 {
			return move{}, fmt.Errorf("%w: negative amount", ErrInvalidWager)
		}
		if a.Type == ActionBet && e.highWager != 0 {
			return move{}, fmt.Errorf("%w: bet facing %d, raise instead", ErrIllegalAction, e.highWager)
		}
		if a.Type == ActionRaise && e.highWager == 0 {
			return move{}, fmt.Errorf("%w: nothing to raise, bet instead", ErrIllegalAction)
		}
		if a.Type == ActionRaise && !e.raiseOpen(p) {
			return move{}, fmt.Errorf("%w: betting not reopened", ErrIllegalAction)
		}
		if !e.othersCanAct(p) {
			return move{}, fmt.Errorf("%w: no opponent can respond", ErrIllegalAction)
		}
		if a.Amount <= e.highWager {
			return move{}, fmt.Errorf("%w: total %d does not exceed %d", ErrInvalidWager, a.Amount, e.highWager)
		}
		if a.Amount > maxTotal {
			return move{}, fmt.Errorf("%w: total %d exceeds stack", ErrInvalidWager, a.Amount)
		}
		allIn := a.Amount == maxTotal
		minTotal := e.highWager + e.lastRaise
		if a.Amount < minTotal && !allIn {
			return move{}, fmt.Errorf("%w: minimum total is %d", ErrInvalidWager, minTotal)
		}
		m := move{wager: a.Amount, full: a.Amount >= minTotal}
		switch {
		case allIn:
			m.status, m.kind = StatusAllIn, actionlog.BetAllIn
		case a.Type == ActionBet:
			m.status, m.kind = StatusBet, actionlog.BetBet
		default:
			m.status, m.kind = StatusRaised, actionlog.BetRaise
		}
		if e.cfg.MinRaise.ShortAllInReopens {
			m.full = true
		}
		return m, nil

	default:
		return move{}, fmt.Errorf("%w: unknown action %q", ErrIllegalAction, a.Type)
	}
}
