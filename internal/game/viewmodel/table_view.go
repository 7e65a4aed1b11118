package viewmodel

import "holdem-core/internal/game"

type SeatView struct {
	SeatID             int    `json:"seat_id"`
	PlayerID           string `json:"player_id"`
	Name               string `json:"name"`
	Stack              int64  `json:"stack"`
	StreetContribution int64  `json:"street_contribution"`
	ToCall             int64  `json:"to_call"`
	Status             string `json:"status"`
	IsActive           bool   `json:"is_active"`
	IsButton           bool   `json:"is_button"`
}

type PotView struct {
	Amount   int64    `json:"amount"`
	Eligible []string `json:"eligible"`
}

// StateView is the "state" message pushed to a player after each log delta.
type StateView struct {
	Type            string             `json:"type"`
	HandID          string             `json:"hand_id"`
	HandNumber      uint64             `json:"hand_number"`
	Street          string             `json:"street"`
	Pot             int64              `json:"pot"`
	Pots            []PotView          `json:"pots"`
	CommunityCards  []string           `json:"community_cards"`
	ToAct           string             `json:"to_act,omitempty"`
	ActionTimeoutMS int64              `json:"action_timeout_ms"`
	DeadlineMS      int64              `json:"deadline_ms,omitempty"`
	MyHoleCards     []string           `json:"my_hole_cards,omitempty"`
	Legal           *game.LegalActions `json:"legal,omitempty"`
	SittingOutNext  bool               `json:"sitting_out_next"`
	LatestSeq       uint64             `json:"latest_seq"`
	Seats           []SeatView         `json:"seats"`
}

func BuildState(snap game.TableSnapshot) StateView {
	ep := snap.Epoch
	community := make([]string, 0, len(ep.Community))
	for _, c := range ep.Community {
		community = append(community, c.String())
	}

	var high int64
	for _, s := range ep.Seats {
		if s.Wager > high {
			high = s.Wager
		}
	}

	var pot int64
	seats := make([]SeatView, 0, len(ep.Seats))
	for _, s := range ep.Seats {
		toCall := high - s.Wager
		if toCall > s.Stack {
			toCall = s.Stack
		}
		pot += s.Wager
		active := s.Status != string(game.StatusFolded) && s.Status != string(game.StatusSittingOut)
		if !active || ep.Street == string(game.StreetEndOfHand) {
			toCall = 0
		}
		seats = append(seats, SeatView{
			SeatID:             s.Seat,
			PlayerID:           s.PlayerID,
			Name:               s.Name,
			Stack:              s.Stack,
			StreetContribution: s.Wager,
			ToCall:             toCall,
			Status:             s.Status,
			IsActive:           active,
			IsButton:           s.Seat == ep.ButtonSeat,
		})
	}

	pots := make([]PotView, 0, len(ep.Pots))
	for _, p := range ep.Pots {
		pot += p.Amount
		pots = append(pots, PotView{Amount: p.Amount, Eligible: p.Eligible})
	}

	var hole []string
	for _, c := range snap.Pocket {
		hole = append(hole, c.String())
	}

	return StateView{
		Type:            "state",
		HandID:          ep.HandID,
		HandNumber:      ep.HandNumber,
		Street:          ep.Street,
		Pot:             pot,
		Pots:            pots,
		CommunityCards:  community,
		ToAct:           ep.ToAct,
		ActionTimeoutMS: ep.DecisionTimeoutMS,
		MyHoleCards:     hole,
		Legal:           snap.Legal,
		SittingOutNext:  snap.SittingOutNext,
		LatestSeq:       snap.LatestSeq,
		Seats:           seats,
	}
}
