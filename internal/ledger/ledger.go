package ledger

import (
	"context"
	"errors"
	"fmt"

	"holdem-core/internal/store"
)

var ErrUnbalanced = errors.New("ledger_unbalanced")

// Settlement is one finished hand as seen by the table.
type Settlement struct {
	TableID    string
	HandID     string
	HandNumber uint64
	Aborted    bool
	// Start is each dealt player's stack before the hand, End after it.
	Start map[string]int64
	End   map[string]int64
}

// Deltas returns each player's net change. Chips never leave the table
// during a hand, so the deltas must sum to zero.
func (s Settlement) Deltas() (map[string]int64, error) {
	out := make(map[string]int64, len(s.Start))
	var sum int64
	for id, start := range s.Start {
		end, ok := s.End[id]
		if !ok {
			return nil, fmt.Errorf("%w: no end stack for %s", ErrUnbalanced, id)
		}
		out[id] = end - start
		sum += end - start
	}
	if sum != 0 {
		return nil, fmt.Errorf("%w: hand %s moved %d chips", ErrUnbalanced, s.HandID, sum)
	}
	return out, nil
}

type recorder interface {
	RecordHandResult(ctx context.Context, r store.HandResult) error
}

type Ledger struct {
	store recorder
}

// New returns a ledger backed by st. A nil store gives a ledger that only
// checks balance.
func New(st *store.Store) *Ledger {
	if st == nil {
		return &Ledger{}
	}
	return &Ledger{store: st}
}

func (l *Ledger) SettleHand(ctx context.Context, s Settlement) error {
	deltas, err := s.Deltas()
	if err != nil {
		return err
	}
	if l.store == nil {
		return nil
	}
	return l.store.RecordHandResult(ctx, store.HandResult{
		TableID:    s.TableID,
		HandID:     s.HandID,
		HandNumber: s.HandNumber,
		Aborted:    s.Aborted,
		Deltas:     deltas,
		Stacks:     s.End,
	})
}
