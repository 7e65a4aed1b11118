package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"holdem-core/internal/store"
	"holdem-core/internal/table"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type AdminHandlers struct {
	store    *store.Store
	registry *table.Registry
}

// NewAdminHandlers accepts a nil store when the server runs without a
// database.
func NewAdminHandlers(st *store.Store, reg *table.Registry) *AdminHandlers {
	return &AdminHandlers{store: st, registry: reg}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.store == nil {
			writeJSON(w, map[string]any{"ok": true, "db": "disabled"})
			return
		}
		if err := h.store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) ForceEnd() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if body.Reason == "" {
			body.Reason = "admin"
		}
		tbl, err := h.registry.Get(chi.URLParam(r, "table_id"))
		if err != nil {
			WriteTableError(w, r, err)
			return
		}
		if err := tbl.ForceEnd(r.Context(), body.Reason); err != nil {
			WriteTableError(w, r, err)
			return
		}
		log.Warn().Str("table_id", tbl.ID()).Str("reason", body.Reason).Msg("admin force end")
		writeJSON(w, map[string]any{"ok": true})
	}
}
