package httptransport

import (
	"encoding/json"
	"net/http"

	"holdem-core/internal/actionlog"
	"holdem-core/internal/game"
	"holdem-core/internal/table"
	"holdem-core/internal/ws"

	"github.com/go-chi/chi/v5"
)

type TableHandlers struct {
	registry *table.Registry
	stream   *ws.Server
	auth     PlayerAuth
}

func NewTableHandlers(reg *table.Registry, stream *ws.Server, auth PlayerAuth) *TableHandlers {
	return &TableHandlers{registry: reg, stream: stream, auth: auth}
}

func (h *TableHandlers) allow(w http.ResponseWriter, r *http.Request, player string) bool {
	if h.auth.Allow(r, player) {
		return true
	}
	WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
	return false
}

// withTable resolves {table_id} before calling fn.
func (h *TableHandlers) withTable(fn func(w http.ResponseWriter, r *http.Request, tbl *table.Table)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tbl, err := h.registry.Get(chi.URLParam(r, "table_id"))
		if err != nil {
			WriteTableError(w, r, err)
			return
		}
		fn(w, r, tbl)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
		return false
	}
	return true
}

type sitDownRequest struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Seat     *int   `json:"seat,omitempty"`
	BuyIn    int64  `json:"buy_in"`
}

func (h *TableHandlers) SitDown() http.HandlerFunc {
	return h.withTable(func(w http.ResponseWriter, r *http.Request, tbl *table.Table) {
		var req sitDownRequest
		if !decodeBody(w, r, &req) || !h.allow(w, r, req.PlayerID) {
			return
		}
		seat := -1
		if req.Seat != nil {
			seat = *req.Seat
		}
		got, err := tbl.SitDown(r.Context(), game.PlayerID(req.PlayerID), req.Name, seat, req.BuyIn)
		if err != nil {
			WriteTableError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true, "seat": got, "stack": req.BuyIn})
	})
}

func (h *TableHandlers) StandUp() http.HandlerFunc {
	return h.withTable(func(w http.ResponseWriter, r *http.Request, tbl *table.Table) {
		player := chi.URLParam(r, "player_id")
		if !h.allow(w, r, player) {
			return
		}
		stack, err := tbl.StandUp(r.Context(), game.PlayerID(player))
		if err != nil {
			WriteTableError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true, "stack": stack})
	})
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

func (h *TableHandlers) Reconnect() http.HandlerFunc {
	return h.withTable(func(w http.ResponseWriter, r *http.Request, tbl *table.Table) {
		var req playerRequest
		if !decodeBody(w, r, &req) || !h.allow(w, r, req.PlayerID) {
			return
		}
		if err := tbl.Reconnect(game.PlayerID(req.PlayerID)); err != nil {
			WriteTableError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	})
}

func (h *TableHandlers) StartHand() http.HandlerFunc {
	return h.withTable(func(w http.ResponseWriter, r *http.Request, tbl *table.Table) {
		handID, err := tbl.StartHand(r.Context())
		if err != nil {
			WriteTableError(w, r, err)
			return
		}
		metricHandsStartedTotal.Add(1)
		writeJSON(w, map[string]any{"ok": true, "hand_id": handID})
	})
}

type actionRequest struct {
	PlayerID string `json:"player_id"`
	Action   string `json:"action"`
	Amount   int64  `json:"amount"`
}

func (h *TableHandlers) Act() http.HandlerFunc {
	return h.withTable(func(w http.ResponseWriter, r *http.Request, tbl *table.Table) {
		metricActionSubmitTotal.Add(1)
		var req actionRequest
		if !decodeBody(w, r, &req) || !h.allow(w, r, req.PlayerID) {
			metricActionSubmitErrors.Add(1)
			return
		}
		a := game.Action{Player: game.PlayerID(req.PlayerID), Type: game.ActionType(req.Action), Amount: req.Amount}
		if err := tbl.Act(r.Context(), a); err != nil {
			metricActionSubmitErrors.Add(1)
			WriteTableError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true, "latest_seq": tbl.Log().LatestSeq()})
	})
}

func (h *TableHandlers) Reveal() http.HandlerFunc {
	return h.withTable(func(w http.ResponseWriter, r *http.Request, tbl *table.Table) {
		var req playerRequest
		if !decodeBody(w, r, &req) || !h.allow(w, r, req.PlayerID) {
			return
		}
		if err := tbl.Reveal(r.Context(), game.PlayerID(req.PlayerID)); err != nil {
			WriteTableError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	})
}

type logsResponse struct {
	Entries   []actionlog.Entry `json:"entries"`
	LatestSeq uint64            `json:"latest_seq"`
}

func (h *TableHandlers) Logs() http.HandlerFunc {
	return h.withTable(func(w http.ResponseWriter, r *http.Request, tbl *table.Table) {
		since, _, ok := ParseCursor(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		player := r.URL.Query().Get("player_id")
		if !h.allow(w, r, player) {
			return
		}
		entries, latest := tbl.LogsSince(since, game.PlayerID(player))
		if entries == nil {
			entries = []actionlog.Entry{}
		}
		writeJSON(w, logsResponse{Entries: entries, LatestSeq: latest})
	})
}

func (h *TableHandlers) Snapshot() http.HandlerFunc {
	return h.withTable(func(w http.ResponseWriter, r *http.Request, tbl *table.Table) {
		player := r.URL.Query().Get("player_id")
		if !h.allow(w, r, player) {
			return
		}
		writeJSON(w, tbl.Snapshot(game.PlayerID(player)))
	})
}

func (h *TableHandlers) Archive() http.HandlerFunc {
	return h.withTable(func(w http.ResponseWriter, r *http.Request, tbl *table.Table) {
		since, limit, ok := ParseCursor(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		entries, err := tbl.Archive(r.Context(), since, limit)
		if err != nil {
			WriteTableError(w, r, err)
			return
		}
		if entries == nil {
			entries = []actionlog.Entry{}
		}
		writeJSON(w, map[string]any{"entries": entries, "live_floor": tbl.Log().LiveFloor()})
	})
}

func (h *TableHandlers) Stream() http.HandlerFunc {
	return h.withTable(func(w http.ResponseWriter, r *http.Request, tbl *table.Table) {
		since, _, ok := ParseCursor(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		player := r.URL.Query().Get("player_id")
		if !h.allow(w, r, player) {
			return
		}
		metricStreamConnectionsTotal.Add(1)
		h.stream.HandleStream(w, r, tbl, game.PlayerID(player), since)
	})
}
