package actionlog

import (
	"encoding/json"
	"errors"
	"fmt"

	"holdem-core/internal/poker"
)

var ErrUnknownKind = errors.New("unknown_log_kind")

type Kind string

const (
	KindEpoch          Kind = "epoch"
	KindPlayerSitDown  Kind = "player_sit_down"
	KindPlayerStandUp  Kind = "player_stand_up"
	KindPocketDealt    Kind = "pocket_dealt"
	KindBetAction      Kind = "bet_action"
	KindCommunityCards Kind = "community_cards"
	KindReveal         Kind = "reveal"
	KindStreetChanged  Kind = "street_changed"
	KindPotAwarded     Kind = "pot_awarded"
	KindHandAborted    Kind = "hand_aborted"
)

// Item is one log record. The set of implementations is closed; consumers
// switch over the concrete types.
type Item interface {
	Kind() Kind
	item()
}

type BetKind string

const (
	BetSmallBlind BetKind = "small_blind"
	BetBigBlind   BetKind = "big_blind"
	BetAnte       BetKind = "ante"
	BetFold       BetKind = "fold"
	BetCheck      BetKind = "check"
	BetCall       BetKind = "call"
	BetBet        BetKind = "bet"
	BetRaise      BetKind = "raise"
	BetAllIn      BetKind = "all_in"
)

type EpochSeat struct {
	Seat        int    `json:"seat"`
	PlayerID    string `json:"player_id"`
	Name        string `json:"name"`
	Stack       int64  `json:"stack"`
	Wager       int64  `json:"wager"`
	Contributed int64  `json:"contributed"`
	Status      string `json:"status"`
}

type PotInfo struct {
	Amount   int64    `json:"amount"`
	Eligible []string `json:"eligible"`
}

// Epoch is a full table snapshot. One is appended when each hand starts and
// marks the hand boundary for retention.
type Epoch struct {
	TableID           string       `json:"table_id"`
	HandID            string       `json:"hand_id"`
	HandNumber        uint64       `json:"hand_number"`
	Street            string       `json:"street"`
	SmallBlind        int64        `json:"small_blind"`
	BigBlind          int64        `json:"big_blind"`
	Ante              int64        `json:"ante"`
	ButtonSeat        int          `json:"button_seat"`
	SmallBlindSeat    int          `json:"small_blind_seat"`
	BigBlindSeat      int          `json:"big_blind_seat"`
	DecisionTimeoutMS int64        `json:"decision_timeout_ms"`
	Seats             []EpochSeat  `json:"seats"`
	Community         []poker.Card `json:"community"`
	Pots              []PotInfo    `json:"pots"`
	ToAct             string       `json:"to_act,omitempty"`
}

type PlayerSitDown struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
	Stack    int64  `json:"stack"`
}

type PlayerStandUp struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
	Stack    int64  `json:"stack"`
}

// PocketDealt is visible only to PlayerID.
type PocketDealt struct {
	PlayerID string        `json:"player_id"`
	Cards    [2]poker.Card `json:"cards"`
}

// BetAction carries the player's total wager for the street after the action.
type BetAction struct {
	PlayerID string  `json:"player_id"`
	Action   BetKind `json:"action"`
	Total    int64   `json:"total"`
}

type CommunityCards struct {
	Street string       `json:"street"`
	Cards  []poker.Card `json:"cards"`
}

type Reveal struct {
	PlayerID string        `json:"player_id"`
	Cards    [2]poker.Card `json:"cards"`
	Hand     string        `json:"hand,omitempty"`
}

type StreetChanged struct {
	Street string `json:"street"`
}

type Award struct {
	PlayerID string `json:"player_id"`
	Amount   int64  `json:"amount"`
}

type PotAwarded struct {
	Pot     int     `json:"pot"`
	Amount  int64   `json:"amount"`
	Winners []Award `json:"winners"`
}

type HandAborted struct {
	HandID string `json:"hand_id"`
	Reason string `json:"reason,omitempty"`
}

func (Epoch) Kind() Kind          { return KindEpoch }
func (PlayerSitDown) Kind() Kind  { return KindPlayerSitDown }
func (PlayerStandUp) Kind() Kind  { return KindPlayerStandUp }
func (PocketDealt) Kind() Kind    { return KindPocketDealt }
func (BetAction) Kind() Kind      { return KindBetAction }
func (CommunityCards) Kind() Kind { return KindCommunityCards }
func (Reveal) Kind() Kind         { return KindReveal }
func (StreetChanged) Kind() Kind  { return KindStreetChanged }
func (PotAwarded) Kind() Kind     { return KindPotAwarded }
func (HandAborted) Kind() Kind    { return KindHandAborted }

func (Epoch) item()          {}
func (PlayerSitDown) item()  {}
func (PlayerStandUp) item()  {}
func (PocketDealt) item()    {}
func (BetAction) item()      {}
func (CommunityCards) item() {}
func (Reveal) item()         {}
func (StreetChanged) item()  {}
func (PotAwarded) item()     {}
func (HandAborted) item()    {}

// VisibleTo reports whether item may be sent to player. An empty player is a
// spectator and sees no pockets.
func VisibleTo(item Item, player string) bool {
	switch it := item.(type) {
	case PocketDealt:
		return player != "" && it.PlayerID == player
	default:
		return true
	}
}

type Entry struct {
	Seq  uint64
	Item Item
}

type wireEntry struct {
	Seq  uint64          `json:"seq"`
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Item == nil {
		return nil, fmt.Errorf("%w: nil item at seq %d", ErrUnknownKind, e.Seq)
	}
	data, err := json.Marshal(e.Item)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEntry{Seq: e.Seq, Kind: e.Item.Kind(), Data: data})
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var w wireEntry
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	item, err := DecodeItem(w.Kind, w.Data)
	if err != nil {
		return err
	}
	e.Seq = w.Seq
	e.Item = item
	return nil
}

// DecodeItem rebuilds an item from its kind and JSON payload.
func DecodeItem(kind Kind, data []byte) (Item, error) {
	switch kind {
	case KindEpoch:
		return decodeAs[Epoch](data)
	case KindPlayerSitDown:
		return decodeAs[PlayerSitDown](data)
	case KindPlayerStandUp:
		return decodeAs[PlayerStandUp](data)
	case KindPocketDealt:
		return decodeAs[PocketDealt](data)
	case KindBetAction:
		return decodeAs[BetAction](data)
	case KindCommunityCards:
		return decodeAs[CommunityCards](data)
	case KindReveal:
		return decodeAs[Reveal](data)
	case KindStreetChanged:
		return decodeAs[StreetChanged](data)
	case KindPotAwarded:
		return decodeAs[PotAwarded](data)
	case KindHandAborted:
		return decodeAs[HandAborted](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func decodeAs[T Item](data []byte) (Item, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
