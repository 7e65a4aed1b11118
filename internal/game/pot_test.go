package game

import "testing"

func TestPotsEqualContributions(t *testing.T) {
	a := NewPotAccountant([]PlayerID{"a", "b"})
	a.CommitStreet(map[PlayerID]int64{"a": 100, "b": 100})
	pots := a.Pots(nil)
	if len(pots) != 1 || pots[0].Amount != 200 || len(pots[0].Eligible) != 2 {
		t.Fatalf("expected one pot of 200 for both, got %+v", pots)
	}
}

func TestPotsSideLevels(t *testing.T) {
	a := NewPotAccountant([]PlayerID{"a", "b", "c"})
	a.CommitStreet(map[PlayerID]int64{"a": 50, "b": 200, "c": 200})
	a.CommitStreet(map[PlayerID]int64{"b": 100, "c": 100})
	pots := a.Pots(nil)
	if len(pots) != 2 {
		t.Fatalf("expected main and side pot, got %+v", pots)
	}
	if pots[0].Amount != 150 || len(pots[0].Eligible) != 3 {
		t.Fatalf("main pot = %+v, want 150 for 3 players", pots[0])
	}
	if pots[1].Amount != 500 || len(pots[1].Eligible) != 2 {
		t.Fatalf("side pot = %+v, want 500 for b and c", pots[1])
	}
	if a.Total() != 650 {
		t.Fatalf("total = %d, want 650", a.Total())
	}
}

func TestPotsFoldedPlayerMoneyStaysIn(t *testing.T) {
	a := NewPotAccountant([]PlayerID{"a", "b", "c"})
	a.CommitStreet(map[PlayerID]int64{"a": 5, "b": 10, "c": 10})
	pots := a.Pots(map[PlayerID]bool{"a": true})
	if len(pots) != 1 {
		t.Fatalf("levels with the same eligible players should merge, got %+v", pots)
	}
	if pots[0].Amount != 25 {
		t.Fatalf("pot = %d, want 25", pots[0].Amount)
	}
}

func TestPotsTopLevelOnlyFolded(t *testing.T) {
	// b put in more than anyone still holding cards, then folded.
	a := NewPotAccountant([]PlayerID{"a", "b", "c"})
	a.CommitStreet(map[PlayerID]int64{"a": 40, "b": 100, "c": 40})
	pots := a.Pots(map[PlayerID]bool{"b": true})
	var sum int64
	for _, p := range pots {
		sum += p.Amount
		for _, id := range p.Eligible {
			if id == "b" {
				t.Fatalf("folded player eligible: %+v", p)
			}
		}
	}
	if sum != 180 {
		t.Fatalf("pots sum = %d, want 180", sum)
	}
}

func TestResolveSidePotWinners(t *testing.T) {
	a := NewPotAccountant([]PlayerID{"a", "b", "c"})
	a.CommitStreet(map[PlayerID]int64{"a": 50, "b": 300, "c": 300})
	// a has the best hand but only wins the main pot.
	payouts := a.Resolve(nil, map[PlayerID]int32{"a": 900, "b": 500, "c": 400})
	if payouts["a"] != 150 || payouts["b"] != 500 || payouts["c"] != 0 {
		t.Fatalf("payouts = %v", payouts)
	}
}

func TestResolveOddChipGoesFirstAfterButton(t *testing.T) {
	// Order starts after the button: c is first to the left.
	a := NewPotAccountant([]PlayerID{"c", "a", "b"})
	a.CommitStreet(map[PlayerID]int64{"a": 5, "b": 10, "c": 10})
	payouts := a.Resolve(map[PlayerID]bool{"a": true}, map[PlayerID]int32{"b": 700, "c": 700})
	if payouts["c"] != 13 || payouts["b"] != 12 {
		t.Fatalf("payouts = %v, want c=13 b=12", payouts)
	}
}

func TestRefundReturnsContributions(t *testing.T) {
	a := NewPotAccountant([]PlayerID{"a", "b"})
	a.CommitStreet(map[PlayerID]int64{"a": 5, "b": 10})
	r := a.Refund()
	if r["a"] != 5 || r["b"] != 10 {
		t.Fatalf("refund = %v", r)
	}
}
