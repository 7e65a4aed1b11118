package game

import (
	"holdem-core/internal/actionlog"
	"holdem-core/internal/poker"
)

// TableSnapshot is what a late joiner needs to render the table without
// replaying the log. Pocket holds the viewer's own cards only.
type TableSnapshot struct {
	Epoch          actionlog.Epoch `json:"epoch"`
	Pocket         []poker.Card    `json:"pocket,omitempty"`
	Legal          *LegalActions   `json:"legal,omitempty"`
	SittingOutNext bool            `json:"sitting_out_next"`
	LatestSeq      uint64          `json:"latest_seq"`
}

func (e *Engine) Snapshot(viewer PlayerID) TableSnapshot {
	snap := TableSnapshot{
		Epoch:          e.epoch(),
		SittingOutNext: viewer != "" && e.sitOut[viewer],
		LatestSeq:      e.log.LatestSeq(),
	}
	if viewer == "" {
		return snap
	}
	if pocket, ok := e.Pocket(viewer); ok {
		snap.Pocket = []poker.Card{pocket[0], pocket[1]}
	}
	if la, ok := e.LegalActions(viewer); ok {
		snap.Legal = &la
	}
	return snap
}

func (e *Engine) epoch() actionlog.Epoch {
	ep := actionlog.Epoch{
		TableID:           e.cfg.TableID,
		HandID:            e.handID,
		HandNumber:        e.handNumber,
		Street:            string(e.street),
		SmallBlind:        e.cfg.SmallBlind,
		BigBlind:          e.cfg.BigBlind,
		Ante:              e.cfg.Ante,
		ButtonSeat:        e.buttonSeat,
		SmallBlindSeat:    e.sbSeat,
		BigBlindSeat:      e.bbSeat,
		DecisionTimeoutMS: e.cfg.DecisionTimeout.Milliseconds(),
		Seats:             make([]actionlog.EpochSeat, 0, len(e.players)),
		Community:         e.Community(),
		Pots:              []actionlog.PotInfo{},
	}
	if ep.Community == nil {
		ep.Community = []poker.Card{}
	}
	for _, p := range e.players {
		ep.Seats = append(ep.Seats, actionlog.EpochSeat{
			Seat:        p.Seat,
			PlayerID:    string(p.ID),
			Name:        p.Name,
			Stack:       p.Stack,
			Wager:       p.Wager,
			Contributed: p.Contributed,
			Status:      string(p.Status),
		})
	}
	for _, pot := range e.Pots() {
		info := actionlog.PotInfo{Amount: pot.Amount, Eligible: make([]string, 0, len(pot.Eligible))}
		for _, id := range pot.Eligible {
			info.Eligible = append(info.Eligible, string(id))
		}
		ep.Pots = append(ep.Pots, info)
	}
	if id, ok := e.ToAct(); ok {
		ep.ToAct = string(id)
	}
	return ep
}
