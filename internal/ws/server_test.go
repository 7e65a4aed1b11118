package ws

import (
	"context"
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
	"holdem-core/internal/game"
	"holdem-core/internal/table"
)

func newStreamTable(t *testing.T) *table.Table {
	t.Helper()
	cfg := config.TableConfig{
		SmallBlind:      5,
		BigBlind:        10,
		MaxSeats:        6,
		MinBuyIn:        100,
		DecisionTimeout: 30 * time.Second,
		LiveHands:       3,
		RevealPolicy:    "standard",
	}
	tbl, err := table.New("t1", cfg, table.Options{Clock: quartz.NewMock(t)})
	require.NoError(t, err)
	ctx := context.Background()
	for _, p := range []game.PlayerID{"alice", "bob"} {
		_, err := tbl.SitDown(ctx, p, "", -1, 1000)
		require.NoError(t, err)
	}
	_, err = tbl.StartHand(ctx)
	require.NoError(t, err)
	return tbl
}

type frame struct {
	Type      string            `json:"type"`
	Entries   []actionlog.Entry `json:"entries"`
	LatestSeq uint64            `json:"latest_seq"`
	Ok        bool              `json:"ok"`
	Error     string            `json:"error"`
	ToAct     string            `json:"to_act"`
	HoleCards []string          `json:"my_hole_cards"`
}

func dial(t *testing.T, tbl *table.Table, player game.PlayerID) *websocket.Conn {
	t.Helper()
	srv := NewServer()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.HandleStream(w, r, tbl, player, 0)
	}))
	t.Cleanup(ts.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var f frame
	require.NoError(t, json.Unmarshal(msg, &f))
	return f
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) frame {
	t.Helper()
	for i := 0; i < 20; i++ {
		f := readFrame(t, conn)
		if f.Type == typ {
			return f
		}
	}
	t.Fatalf("no %s frame", typ)
	return frame{}
}

func TestStreamSendsFilteredLogThenState(t *testing.T) {
	tbl := newStreamTable(t)
	conn := dial(t, tbl, "alice")

	first := readFrame(t, conn)
	require.Equal(t, "log", first.Type)
	assert.Equal(t, tbl.Log().LatestSeq(), first.LatestSeq)
	pockets := 0
	for _, e := range first.Entries {
		if pd, ok := e.Item.(actionlog.PocketDealt); ok {
			pockets++
			assert.Equal(t, "alice", pd.PlayerID)
		}
	}
	assert.Equal(t, 1, pockets)

	state := readFrame(t, conn)
	require.Equal(t, "state", state.Type)
	assert.Len(t, state.HoleCards, 2)
	assert.Equal(t, "alice", state.ToAct)
}

func TestStreamAcceptsActions(t *testing.T) {
	tbl := newStreamTable(t)
	conn := dial(t, tbl, "alice")
	readUntil(t, conn, "state")

	require.NoError(t, conn.WriteJSON(ActionMessage{Type: "action", Action: "check"}))
	res := readUntil(t, conn, "action_result")
	assert.False(t, res.Ok)
	assert.Equal(t, "illegal_action", res.Error)

	require.NoError(t, conn.WriteJSON(ActionMessage{Type: "action", Action: "call"}))
	res = readUntil(t, conn, "action_result")
	assert.True(t, res.Ok)

	to, _, ok := tbl.Deadline()
	require.True(t, ok)
	assert.Equal(t, game.PlayerID("bob"), to)
}

func TestSpectatorCannotAct(t *testing.T) {
	tbl := newStreamTable(t)
	conn := dial(t, tbl, "")
	first := readFrame(t, conn)
	for _, e := range first.Entries {
		_, isPocket := e.Item.(actionlog.PocketDealt)
		assert.False(t, isPocket)
	}
	require.NoError(t, conn.WriteJSON(ActionMessage{Type: "action", Action: "call"}))
	res := readUntil(t, conn, "action_result")
	assert.Equal(t, "unknown_player", res.Error)
}
