package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"holdem-core/internal/actionlog"
	"holdem-core/internal/config"
	"holdem-core/internal/game"
	"holdem-core/internal/ledger"
	"holdem-core/internal/logging"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
)

type CLI struct {
	Hands      int    `default:"1000" help:"Number of hands to simulate"`
	Players    int    `default:"6" help:"Players at the table (2-9)"`
	Stack      int64  `default:"1000" help:"Starting stack per player"`
	SmallBlind int64  `default:"5" help:"Small blind"`
	BigBlind   int64  `default:"10" help:"Big blind"`
	Ante       int64  `default:"0" help:"Ante"`
	Reveal     string `default:"standard" enum:"standard,winners,all" help:"Showdown reveal policy"`
	Seed       int64  `default:"0" help:"RNG seed (0 for random)"`
	Verbose    bool   `short:"v" help:"Log every hand"`
}

type summary struct {
	hands     int
	showdowns int
	aborted   int
	stacks    map[game.PlayerID]int64
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, kong.Description("Simulate random hands and check that chips are conserved."))

	level := "warn"
	if cli.Verbose {
		level = "debug"
	}
	if err := logging.Init(config.LogConfig{Level: level, Pretty: true}); err != nil {
		ctx.FatalIfErrorf(err)
	}
	if cli.Players < 2 || cli.Players > 9 {
		ctx.Fatalf("players must be between 2 and 9")
	}
	if cli.Seed == 0 {
		cli.Seed = time.Now().UnixNano()
	}

	sum, err := simulate(cli)
	ctx.FatalIfErrorf(err)

	fmt.Fprintf(os.Stdout, "seed %d: %d hands, %d reached showdown\n", cli.Seed, sum.hands, sum.showdowns)
	for i := 0; i < cli.Players; i++ {
		id := playerID(i)
		fmt.Fprintf(os.Stdout, "  %-4s %6d\n", id, sum.stacks[id])
	}
	ctx.Exit(0)
}

func playerID(i int) game.PlayerID {
	return game.PlayerID(fmt.Sprintf("p%d", i+1))
}

func simulate(cli CLI) (summary, error) {
	rng := rand.New(rand.NewSource(cli.Seed))
	cfg := game.Config{
		TableID:    "sim",
		SmallBlind: cli.SmallBlind,
		BigBlind:   cli.BigBlind,
		Ante:       cli.Ante,
		Reveal:     game.RevealPolicy(cli.Reveal),
	}
	alog := actionlog.New(0)
	engine, err := game.NewEngine(cfg, alog, game.WithRand(rng))
	if err != nil {
		return summary{}, err
	}
	checker := ledger.New(nil)

	sum := summary{stacks: map[game.PlayerID]int64{}}
	seats := make([]game.Seat, cli.Players)
	total := int64(0)
	for i := range seats {
		seats[i] = game.Seat{ID: playerID(i), Name: string(playerID(i)), Seat: i, Stack: cli.Stack}
		total += cli.Stack
	}

	for h := 0; h < cli.Hands; h++ {
		start := make(map[string]int64, len(seats))
		for _, s := range seats {
			start[string(s.ID)] = s.Stack
		}
		if err := engine.StartHand(seats); err != nil {
			if errors.Is(err, game.ErrNotEnoughPlayers) {
				log.Info().Int("hand", h).Msg("one player has every chip")
				break
			}
			return sum, err
		}
		for engine.InProgress() {
			id, ok := engine.ToAct()
			if !ok {
				return sum, fmt.Errorf("hand %d stalled on %s", engine.HandNumber(), engine.Street())
			}
			la, _ := engine.LegalActions(id)
			if err := engine.Apply(randomAction(rng, la)); err != nil {
				return sum, fmt.Errorf("hand %d: %w", engine.HandNumber(), err)
			}
		}
		res, ok := engine.Result()
		if !ok {
			return sum, fmt.Errorf("hand %d ended without a result", engine.HandNumber())
		}
		end := make(map[string]int64, len(res.Stacks))
		var after int64
		for i := range seats {
			seats[i].Stack = res.Stacks[seats[i].ID]
			end[string(seats[i].ID)] = seats[i].Stack
			after += seats[i].Stack
		}
		if after != total {
			return sum, fmt.Errorf("hand %d: chips %d, want %d", engine.HandNumber(), after, total)
		}
		if err := checker.SettleHand(context.Background(), ledger.Settlement{TableID: cfg.TableID, HandID: res.HandID, HandNumber: engine.HandNumber(), Aborted: res.Aborted, Start: start, End: end}); err != nil {
			return sum, err
		}
		sum.hands++
		if len(engine.Community()) == 5 && len(res.Payouts) > 0 {
			sum.showdowns++
		}
		log.Debug().Str("hand_id", res.HandID).Interface("payouts", res.Payouts).Msg("hand done")
	}
	for _, s := range seats {
		sum.stacks[s.ID] = s.Stack
	}
	return sum, nil
}

func randomAction(rng *rand.Rand, la game.LegalActions) game.Action {
	options := []game.Action{{Player: la.Player, Type: game.ActionFold}}
	if la.CanCheck {
		options = append(options, game.Action{Player: la.Player, Type: game.ActionCheck})
	}
	if la.CanCall {
		options = append(options, game.Action{Player: la.Player, Type: game.ActionCall})
	}
	size := la.MinTotal
	if la.MaxTotal > la.MinTotal {
		size += rng.Int63n(la.MaxTotal - la.MinTotal + 1)
	}
	if la.CanBet {
		options = append(options, game.Action{Player: la.Player, Type: game.ActionBet, Amount: size})
	}
	if la.CanRaise {
		options = append(options, game.Action{Player: la.Player, Type: game.ActionRaise, Amount: size})
	}
	return options[rng.Intn(len(options))]
}
