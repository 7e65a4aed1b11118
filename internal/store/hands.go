package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

type HandResult struct {
	TableID    string
	HandID     string
	HandNumber uint64
	Aborted    bool
	// Deltas is each player's net change over the hand.
	Deltas map[string]int64
	// Stacks is each seated player's stack after the hand.
	Stacks map[string]int64
}

// RecordHandResult writes the hand, its ledger entries and the resulting
// balances in one transaction.
func (s *Store) RecordHandResult(ctx context.Context, r HandResult) error {
	return pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO hand_results (id, table_id, hand_id, hand_number, aborted)
			 VALUES ($1, $2, $3, $4, $5)`,
			NewID(), r.TableID, r.HandID, int64(r.HandNumber), r.Aborted,
		); err != nil {
			return err
		}
		for player, delta := range r.Deltas {
			if delta == 0 {
				continue
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO ledger_entries (id, hand_id, player_id, delta) VALUES ($1, $2, $3, $4)`,
				NewID(), r.HandID, player, delta,
			); err != nil {
				return err
			}
		}
		for player, stack := range r.Stacks {
			if _, err := tx.Exec(ctx,
				`INSERT INTO player_balances (table_id, player_id, stack) VALUES ($1, $2, $3)
				 ON CONFLICT (table_id, player_id)
				 DO UPDATE SET stack = EXCLUDED.stack, updated_at = now()`,
				r.TableID, player, stack,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Balance(ctx context.Context, tableID, playerID string) (int64, error) {
	var stack int64
	err := s.Pool.QueryRow(ctx,
		`SELECT stack FROM player_balances WHERE table_id = $1 AND player_id = $2`,
		tableID, playerID,
	).Scan(&stack)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return stack, err
}

// SetBalance records a stack outside of a hand, e.g. on sit down or stand up.
func (s *Store) SetBalance(ctx context.Context, tableID, playerID string, stack int64) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO player_balances (table_id, player_id, stack) VALUES ($1, $2, $3)
		 ON CONFLICT (table_id, player_id)
		 DO UPDATE SET stack = EXCLUDED.stack, updated_at = now()`,
		tableID, playerID, stack,
	)
	return err
}

// NetResult sums a player's ledger deltas across every recorded hand.
func (s *Store) NetResult(ctx context.Context, playerID string) (int64, error) {
	var net int64
	err := s.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(delta), 0) FROM ledger_entries WHERE player_id = $1`,
		playerID,
	).Scan(&net)
	return net, err
}
