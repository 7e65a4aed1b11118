// Package spectator serves a table's public log as server-sent events.
package spectator

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"holdem-core/internal/table"
)

var pingInterval = 15 * time.Second

// EventsHandler streams entries after the cursor taken from Last-Event-ID or
// ?since. Pockets are masked exactly as for any non-seated viewer.
func EventsHandler(reg *table.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tbl, err := reg.Get(chi.URLParam(r, "table_id"))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"table_not_found"}`))
			return
		}
		cursor, err := parseCursor(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_request"}`))
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		SetSSEHeaders(w)
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		signal, unsubscribe := tbl.Log().Subscribe()
		defer unsubscribe()
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		log.Debug().Str("table_id", tbl.ID()).Uint64("since", cursor).Msg("spectator stream opened")

		for {
			entries, latest := tbl.LogsSince(cursor, "")
			for _, e := range entries {
				if err := WriteEntry(w, e); err != nil {
					return
				}
			}
			if latest > cursor {
				cursor = latest
				flusher.Flush()
			}
			select {
			case <-r.Context().Done():
				return
			case <-signal:
			case <-ticker.C:
				ts := []byte(fmt.Sprintf(`{"ts":%d}`, time.Now().UnixMilli()))
				if err := writeEvent(w, "", "ping", ts); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func parseCursor(r *http.Request) (uint64, error) {
	raw := r.Header.Get("Last-Event-ID")
	if raw == "" {
		raw = r.URL.Query().Get("since")
	}
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}
