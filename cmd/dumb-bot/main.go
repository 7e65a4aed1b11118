package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"holdem-core/internal/config"
	"holdem-core/internal/game"
	"holdem-core/internal/logging"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type State struct {
	Type       string             `json:"type"`
	HandNumber uint64             `json:"hand_number"`
	Street     string             `json:"street"`
	ToAct      string             `json:"to_act"`
	Legal      *game.LegalActions `json:"legal"`
}

type Action struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Amount int64  `json:"amount,omitempty"`
}

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))
	base := cfg.APIURL + "/api/tables/" + url.PathEscape(cfg.TableID)

	if err := post(cfg.PlayerKey, base+"/seats", map[string]any{"player_id": cfg.PlayerID, "seat": cfg.Seat, "buy_in": cfg.BuyIn}); err != nil {
		log.Warn().Err(err).Msg("sit down")
	}
	if err := post(cfg.PlayerKey, base+"/reconnect", map[string]any{"player_id": cfg.PlayerID}); err != nil {
		log.Warn().Err(err).Msg("reconnect")
	}

	wsURL := fmt.Sprintf("%s/api/tables/%s/ws?player_id=%s", cfg.WSURL, url.PathEscape(cfg.TableID), url.QueryEscape(cfg.PlayerID))
	if cfg.PlayerKey != "" {
		wsURL += "&player_key=" + url.QueryEscape(cfg.PlayerKey)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", wsURL).Msg("dial failed")
	}
	defer conn.Close()
	log.Info().Str("table_id", cfg.TableID).Str("player_id", cfg.PlayerID).Msg("bot connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Msg("stream closed")
			return
		}
		var st State
		if err := json.Unmarshal(data, &st); err != nil || st.Type != "state" {
			continue
		}
		switch {
		case st.Street == string(game.StreetNotStarted) || st.Street == string(game.StreetEndOfHand):
			time.Sleep(500 * time.Millisecond)
			_ = post(cfg.PlayerKey, base+"/hands", map[string]any{})
		case st.ToAct == cfg.PlayerID && st.Legal != nil:
			a := decide(rnd, *st.Legal)
			log.Debug().Uint64("hand_number", st.HandNumber).Str("action", a.Action).Int64("amount", a.Amount).Msg("acting")
			if err := conn.WriteJSON(a); err != nil {
				return
			}
		}
	}
}

// decide picks uniformly among the legal moves; sizes are uniform between
// the minimum and maximum total.
func decide(rnd *rand.Rand, la game.LegalActions) Action {
	options := []Action{{Type: "action", Action: string(game.ActionFold)}}
	if la.CanCheck {
		options = append(options, Action{Type: "action", Action: string(game.ActionCheck)})
	}
	if la.CanCall {
		options = append(options, Action{Type: "action", Action: string(game.ActionCall)})
	}
	size := la.MinTotal
	if la.MaxTotal > la.MinTotal {
		size += rnd.Int63n(la.MaxTotal - la.MinTotal + 1)
	}
	if la.CanBet {
		options = append(options, Action{Type: "action", Action: string(game.ActionBet), Amount: size})
	}
	if la.CanRaise {
		options = append(options, Action{Type: "action", Action: string(game.ActionRaise), Amount: size})
	}
	return options[rnd.Intn(len(options))]
}

func post(key, u string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Player-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s: %d %s", u, resp.StatusCode, e.Error)
	}
	return nil
}
