package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"holdem-core/internal/game"
	"holdem-core/internal/table"
)

const writeWait = 10 * time.Second

type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	player game.PlayerID
	table  *table.Table
}

type Server struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*Client]bool
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  map[*Client]bool{},
	}
}

// Connections returns the number of open streams.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// HandleStream upgrades the request and streams the table's log to player
// from seq since. An empty player is a spectator and cannot act.
func (s *Server) HandleStream(w http.ResponseWriter, r *http.Request, tbl *table.Table, player game.PlayerID, since uint64) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &Client{conn: conn, send: make(chan []byte, 16), player: player, table: tbl}
	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		s.unregister(c)
		_ = conn.Close()
	}()
	log.Info().Str("table_id", tbl.ID()).Str("player_id", string(player)).Uint64("since", since).Msg("stream opened")

	go s.writeLoop(ctx, c)
	go s.pump(ctx, c, since)
	s.readLoop(ctx, c)
}

func (s *Server) readLoop(ctx context.Context, c *Client) {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		switch base.Type {
		case "action":
			var am ActionMessage
			if err := json.Unmarshal(msg, &am); err != nil {
				continue
			}
			s.handleAction(ctx, c, am)
		}
	}
}

func (s *Server) handleAction(ctx context.Context, c *Client, am ActionMessage) {
	if c.player == "" {
		c.write(ctx, ActionResult{Type: "action_result", Ok: false, Error: "unknown_player"})
		return
	}
	a := game.Action{Player: c.player, Type: game.ActionType(am.Action), Amount: am.Amount}
	if err := c.table.Act(ctx, a); err != nil {
		_, code := table.MapError(err)
		c.write(ctx, ActionResult{Type: "action_result", Ok: false, Error: code})
		return
	}
	c.write(ctx, ActionResult{Type: "action_result", Ok: true, LatestSeq: c.table.Log().LatestSeq()})
}

// pump sends a log delta and a state view whenever the log grows.
func (s *Server) pump(ctx context.Context, c *Client, cursor uint64) {
	signal, unsubscribe := c.table.Log().Subscribe()
	defer unsubscribe()
	first := true
	for {
		entries, latest := c.table.LogsSince(cursor, c.player)
		if first || latest > cursor {
			first = false
			cursor = latest
			c.write(ctx, newLogMessage(entries, latest))
			c.write(ctx, StateFor(c.table, c.player))
		}
		select {
		case <-ctx.Done():
			return
		case <-signal:
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(ctx context.Context, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("encode stream message")
		return
	}
	select {
	case c.send <- msg:
	case <-ctx.Done():
	}
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	if c.player != "" {
		c.table.Disconnect(c.player)
	}
	log.Info().Str("table_id", c.table.ID()).Str("player_id", string(c.player)).Msg("stream closed")
}
