package store_test

import (
	"context"
	"errors"
	"testing"

	"holdem-core/internal/actionlog"
	"holdem-core/internal/poker"
	"holdem-core/internal/store"
	"holdem-core/internal/testutil"
)

func TestArchiveRoundTrip(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	entries := []actionlog.Entry{
		{Seq: 1, Item: actionlog.PlayerSitDown{PlayerID: "alice", Name: "Alice", Seat: 0, Stack: 1000}},
		{Seq: 2, Item: actionlog.BetAction{PlayerID: "alice", Action: actionlog.BetSmallBlind, Total: 5}},
		{Seq: 3, Item: actionlog.CommunityCards{Street: "flop", Cards: poker.MustParseCards("As Kd 7c")}},
	}
	if err := st.AppendArchive(ctx, "main", entries); err != nil {
		t.Fatalf("append: %v", err)
	}
	// Re-archiving the same seqs is a no-op.
	if err := st.AppendArchive(ctx, "main", entries[1:]); err != nil {
		t.Fatalf("append again: %v", err)
	}

	got, err := st.ListArchive(ctx, "main", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 2 || got[1].Seq != 3 {
		t.Fatalf("unexpected entries %+v", got)
	}
	bet, ok := got[0].Item.(actionlog.BetAction)
	if !ok || bet.Total != 5 || bet.PlayerID != "alice" {
		t.Fatalf("bet decoded as %#v", got[0].Item)
	}
	cc, ok := got[1].Item.(actionlog.CommunityCards)
	if !ok || len(cc.Cards) != 3 || cc.Cards[0].String() != "As" {
		t.Fatalf("community decoded as %#v", got[1].Item)
	}

	other, err := st.ListArchive(ctx, "other", 0, 10)
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no entries for other table, got %d", len(other))
	}
}

func TestRecordHandResult(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.Balance(ctx, "main", "alice"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	err := st.RecordHandResult(ctx, store.HandResult{
		TableID:    "main",
		HandID:     store.NewHandID(),
		HandNumber: 1,
		Deltas:     map[string]int64{"alice": 10, "bob": -10},
		Stacks:     map[string]int64{"alice": 1010, "bob": 990},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	bal, err := st.Balance(ctx, "main", "alice")
	if err != nil || bal != 1010 {
		t.Fatalf("alice balance = %d, %v", bal, err)
	}
	net, err := st.NetResult(ctx, "bob")
	if err != nil || net != -10 {
		t.Fatalf("bob net = %d, %v", net, err)
	}

	if err := st.SetBalance(ctx, "main", "bob", 0); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	bal, err = st.Balance(ctx, "main", "bob")
	if err != nil || bal != 0 {
		t.Fatalf("bob balance = %d, %v", bal, err)
	}
}
