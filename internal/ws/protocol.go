package ws

import (
	"holdem-core/internal/actionlog"
	"holdem-core/internal/game"
	"holdem-core/internal/game/viewmodel"
	"holdem-core/internal/table"
)

// LogMessage carries the entries after the client's cursor that the
// connected player may see.
type LogMessage struct {
	Type      string            `json:"type"`
	Entries   []actionlog.Entry `json:"entries"`
	LatestSeq uint64            `json:"latest_seq"`
}

type ActionMessage struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Amount int64  `json:"amount"`
}

type ActionResult struct {
	Type      string `json:"type"`
	Ok        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	LatestSeq uint64 `json:"latest_seq,omitempty"`
}

func newLogMessage(entries []actionlog.Entry, latest uint64) LogMessage {
	if entries == nil {
		entries = []actionlog.Entry{}
	}
	return LogMessage{Type: "log", Entries: entries, LatestSeq: latest}
}

// StateFor builds the state view pushed after each log delta.
func StateFor(tbl *table.Table, player game.PlayerID) viewmodel.StateView {
	view := viewmodel.BuildState(tbl.Snapshot(player))
	if who, deadline, ok := tbl.Deadline(); ok && string(who) == view.ToAct {
		view.DeadlineMS = deadline.UnixMilli()
	}
	return view
}
