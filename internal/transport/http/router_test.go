package httptransport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-core/internal/actionlog"
	"holdem-core/internal/config"
	"holdem-core/internal/table"
	"holdem-core/internal/ws"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, config.ServerConfig{AdminAPIKey: "secret"})
}

func newTestServerWith(t *testing.T, serverCfg config.ServerConfig) *httptest.Server {
	t.Helper()
	tableCfg := config.TableConfig{
		SmallBlind:      5,
		BigBlind:        10,
		MaxSeats:        6,
		MinBuyIn:        100,
		DecisionTimeout: 30 * time.Second,
		LiveHands:       3,
		RevealPolicy:    "standard",
	}
	reg := table.NewRegistry(tableCfg, table.Options{Clock: quartz.NewMock(t)}, "main")
	r := NewRouter(nil, serverCfg, reg, ws.NewServer())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func seatTwo(t *testing.T, srv *httptest.Server) {
	t.Helper()
	for _, p := range []string{"alice", "bob"} {
		status, body := do(t, srv, http.MethodPost, "/api/tables/main/seats", map[string]any{"player_id": p, "buy_in": 1000})
		require.Equal(t, http.StatusOK, status, body)
	}
}

func TestHealthWithoutDatabase(t *testing.T) {
	srv := newTestServer(t)
	status, body := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "disabled", body["db"])
}

func TestSeatsAndHandFlow(t *testing.T) {
	srv := newTestServer(t)
	seatTwo(t, srv)

	status, body := do(t, srv, http.MethodPost, "/api/tables/main/seats", map[string]any{"player_id": "carol", "seat": 0, "buy_in": 1000})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "seat_taken", body["error"])

	status, body = do(t, srv, http.MethodPost, "/api/tables/main/hands", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.NotEmpty(t, body["hand_id"])

	status, body = do(t, srv, http.MethodPost, "/api/tables/main/hands", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "hand_in_progress", body["error"])

	status, body = do(t, srv, http.MethodPost, "/api/tables/main/actions", map[string]any{"player_id": "bob", "action": "check"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "illegal_action", body["error"])

	status, body = do(t, srv, http.MethodPost, "/api/tables/main/actions", map[string]any{"player_id": "alice", "action": "raise", "amount": 12})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_wager", body["error"])

	status, body = do(t, srv, http.MethodPost, "/api/tables/main/actions", map[string]any{"player_id": "zed", "action": "call"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "unknown_player", body["error"])

	status, body = do(t, srv, http.MethodPost, "/api/tables/main/actions", map[string]any{"player_id": "alice", "action": "call"})
	require.Equal(t, http.StatusOK, status, body)

	status, body = do(t, srv, http.MethodGet, "/api/tables/main/snapshot?player_id=bob", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotNil(t, body["legal"])
	assert.Len(t, body["pocket"], 2)
}

func TestLogsHideOtherPockets(t *testing.T) {
	srv := newTestServer(t)
	seatTwo(t, srv)
	status, _ := do(t, srv, http.MethodPost, "/api/tables/main/hands", nil)
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(srv.URL + "/api/tables/main/logs?since=0&player_id=alice")
	require.NoError(t, err)
	defer resp.Body.Close()
	var logs struct {
		Entries   []actionlog.Entry `json:"entries"`
		LatestSeq uint64            `json:"latest_seq"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&logs))
	require.NotEmpty(t, logs.Entries)
	for _, e := range logs.Entries {
		if pd, ok := e.Item.(actionlog.PocketDealt); ok {
			assert.Equal(t, "alice", pd.PlayerID)
		}
	}
	assert.GreaterOrEqual(t, logs.LatestSeq, logs.Entries[len(logs.Entries)-1].Seq)

	status, body := do(t, srv, http.MethodGet, "/api/tables/main/logs?since=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", body["error"])
}

func TestUnknownTable(t *testing.T) {
	srv := newTestServer(t)
	status, body := do(t, srv, http.MethodGet, "/api/tables/nope/logs", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "table_not_found", body["error"])
}

func TestAdminForceEnd(t *testing.T) {
	srv := newTestServer(t)
	seatTwo(t, srv)
	status, _ := do(t, srv, http.MethodPost, "/api/tables/main/hands", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, srv, http.MethodPost, "/api/admin/tables/main/force_end", map[string]any{"reason": "test"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := do(t, srv, http.MethodPost, "/api/admin/tables/main/force_end", map[string]any{"reason": "test"}, "X-Admin-Key", "secret")
	require.Equal(t, http.StatusOK, status, body)

	status, body = do(t, srv, http.MethodPost, "/api/admin/tables/main/force_end", nil, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "hand_already_over", body["error"])

	status, body = do(t, srv, http.MethodDelete, "/api/tables/main/seats/alice", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(1000), body["stack"])

	status, body = do(t, srv, http.MethodGet, "/api/tables/main/archive?since=0&limit=10", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Empty(t, body["entries"])
}

func TestStreamThroughRouter(t *testing.T) {
	srv := newTestServer(t)
	seatTwo(t, srv)
	status, _ := do(t, srv, http.MethodPost, "/api/tables/main/hands", nil)
	require.Equal(t, http.StatusOK, status)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/tables/main/ws?player_id=bob&since=0"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg struct {
		Type      string `json:"type"`
		LatestSeq uint64 `json:"latest_seq"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "log", msg.Type)
	assert.NotZero(t, msg.LatestSeq)
}

func TestPlayerKeysGuardSeatsActionsAndPockets(t *testing.T) {
	srv := newTestServerWith(t, config.ServerConfig{PlayerKeys: map[string]string{"alice": "ka", "bob": "kb"}})

	status, body := do(t, srv, http.MethodPost, "/api/tables/main/seats", map[string]any{"player_id": "alice", "buy_in": 1000})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["error"])
	status, _ = do(t, srv, http.MethodPost, "/api/tables/main/seats", map[string]any{"player_id": "carol", "buy_in": 1000}, "X-Player-Key", "ka")
	assert.Equal(t, http.StatusUnauthorized, status)

	for _, p := range [][2]string{{"alice", "ka"}, {"bob", "kb"}} {
		status, body := do(t, srv, http.MethodPost, "/api/tables/main/seats", map[string]any{"player_id": p[0], "buy_in": 1000}, "X-Player-Key", p[1])
		require.Equal(t, http.StatusOK, status, body)
	}
	status, _ = do(t, srv, http.MethodPost, "/api/tables/main/hands", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, srv, http.MethodPost, "/api/tables/main/actions", map[string]any{"player_id": "alice", "action": "call"}, "X-Player-Key", "kb")
	assert.Equal(t, http.StatusUnauthorized, status)
	status, body = do(t, srv, http.MethodPost, "/api/tables/main/actions", map[string]any{"player_id": "alice", "action": "call"}, "X-Player-Key", "ka")
	require.Equal(t, http.StatusOK, status, body)

	status, _ = do(t, srv, http.MethodGet, "/api/tables/main/snapshot?player_id=bob", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, body = do(t, srv, http.MethodGet, "/api/tables/main/snapshot?player_id=bob&player_key=kb", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["pocket"], 2)

	status, body = do(t, srv, http.MethodGet, "/api/tables/main/snapshot", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["pocket"])

	status, _ = do(t, srv, http.MethodGet, "/api/tables/main/logs?player_id=alice", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/tables/main/ws?player_id=bob"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
