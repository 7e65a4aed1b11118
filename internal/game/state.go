package game

import (
	"time"

	"holdem-core/internal/poker"
)

type PlayerID string

type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionBet   ActionType = "bet"
	ActionRaise ActionType = "raise"
)

// Action is a player intent. Amount is the total wagered this street after
// the action and is only read for bets and raises.
type Action struct {
	Player PlayerID
	Type   ActionType
	Amount int64
}

type BetStatus string

const (
	StatusWaiting    BetStatus = "waiting"
	StatusChecked    BetStatus = "checked"
	StatusCalled     BetStatus = "called"
	StatusBet        BetStatus = "bet"
	StatusRaised     BetStatus = "raised"
	StatusFolded     BetStatus = "folded"
	StatusAllIn      BetStatus = "all_in"
	StatusSittingOut BetStatus = "sitting_out"
)

type Street string

const (
	StreetNotStarted Street = "not_started"
	StreetDealing    Street = "dealing"
	StreetPreFlop    Street = "preflop"
	StreetFlop       Street = "flop"
	StreetTurn       Street = "turn"
	StreetRiver      Street = "river"
	StreetEndOfHand  Street = "end_of_hand"
)

func (s Street) Betting() bool {
	switch s {
	case StreetPreFlop, StreetFlop, StreetTurn, StreetRiver:
		return true
	}
	return false
}

func (s Street) next() Street {
	switch s {
	case StreetPreFlop:
		return StreetFlop
	case StreetFlop:
		return StreetTurn
	case StreetTurn:
		return StreetRiver
	default:
		return StreetEndOfHand
	}
}

// boardCards is how many community cards are dealt when entering s.
func (s Street) boardCards() int {
	switch s {
	case StreetFlop:
		return 3
	case StreetTurn, StreetRiver:
		return 1
	}
	return 0
}

// Seat is a player handed to StartHand.
type Seat struct {
	ID    PlayerID
	Name  string
	Seat  int
	Stack int64
}

type Player struct {
	ID          PlayerID
	Name        string
	Seat        int
	Stack       int64
	Wager       int64
	Contributed int64
	Status      BetStatus

	pocket [2]poker.Card
	dealt  bool
	// raiseRound is the full-raise counter the player last acted against.
	raiseRound int
	revealed   bool
}

func (p *Player) inHand() bool {
	return p.dealt && p.Status != StatusFolded
}

// canAct reports whether the player still makes betting decisions.
func (p *Player) canAct() bool {
	return p.dealt && p.Status != StatusFolded && p.Status != StatusAllIn && p.Status != StatusSittingOut
}

// MaxPlayers is the most players one deck can deal pockets and a full board to.
const MaxPlayers = (poker.DeckSize - 5) / 2

type Config struct {
	TableID         string
	SmallBlind      int64
	BigBlind        int64
	Ante            int64
	DecisionTimeout time.Duration
	MinRaise        MinRaisePolicy
	Reveal          RevealPolicy
}

func DefaultConfig() Config {
	return Config{
		SmallBlind:      5,
		BigBlind:        10,
		DecisionTimeout: 30 * time.Second,
		Reveal:          RevealStandard,
	}
}

// MinRaisePolicy controls raise reopening after an all-in for less than a
// full raise.
type MinRaisePolicy struct {
	ShortAllInReopens bool
}

type RevealPolicy string

const (
	// RevealStandard: all hands show when nobody could act; otherwise the
	// last river aggressor (or first seat after the button) shows and each
	// later player shows only a hand that beats or ties the best shown.
	RevealStandard RevealPolicy = "standard"
	RevealWinners  RevealPolicy = "winners"
	RevealAll      RevealPolicy = "all"
)

func (p RevealPolicy) Valid() bool {
	switch p {
	case RevealStandard, RevealWinners, RevealAll:
		return true
	}
	return false
}

// LegalActions is the action menu for the player to act.
type LegalActions struct {
	Player      PlayerID `json:"player_id"`
	CanCheck    bool     `json:"can_check"`
	CanCall     bool     `json:"can_call"`
	CallAmount  int64    `json:"call_amount"`
	CanBet      bool     `json:"can_bet"`
	CanRaise    bool     `json:"can_raise"`
	MinTotal    int64    `json:"min_total"`
	MaxTotal    int64    `json:"max_total"`
	HighWager   int64    `json:"high_wager"`
	PlayerWager int64    `json:"player_wager"`
}

type Pot struct {
	Amount   int64      `json:"amount"`
	Eligible []PlayerID `json:"eligible"`
}

// Result summarises a finished hand.
type Result struct {
	HandID  string
	Payouts map[PlayerID]int64
	Stacks  map[PlayerID]int64
	Aborted bool
}
