package spectator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"holdem-core/internal/actionlog"
)

// SetSSEHeaders applies headers that keep event streams stable across proxies.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("X-Content-Type-Options", "nosniff")
}

// WriteEntry writes one log entry as an event. The entry's seq is the event
// id so a reconnecting client resumes with Last-Event-ID.
func WriteEntry(w http.ResponseWriter, e actionlog.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return writeEvent(w, strconv.FormatUint(e.Seq, 10), string(e.Item.Kind()), data)
}

func writeEvent(w http.ResponseWriter, id, event string, data []byte) error {
	if id != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
