package game

import "sort"

// PotAccountant tracks what each player has put in this hand and splits it
// into a main pot and side pots.
type PotAccountant struct {
	order       []PlayerID
	contributed map[PlayerID]int64
}

// NewPotAccountant takes the dealt players in seat order starting with the
// first seat after the button. That order decides odd chips.
func NewPotAccountant(order []PlayerID) *PotAccountant {
	return &PotAccountant{
		order:       append([]PlayerID(nil), order...),
		contributed: make(map[PlayerID]int64, len(order)),
	}
}

func (a *PotAccountant) CommitStreet(contributions map[PlayerID]int64) {
	for id, amt := range contributions {
		if amt <= 0 {
			continue
		}
		if _, ok := a.contributed[id]; !ok && !containsPlayer(a.order, id) {
			a.order = append(a.order, id)
		}
		a.contributed[id] += amt
	}
}

func (a *PotAccountant) Contributed(id PlayerID) int64 {
	return a.contributed[id]
}

func (a *PotAccountant) Total() int64 {
	var sum int64
	for _, v := range a.contributed {
		sum += v
	}
	return sum
}

// Pots builds pots from the distinct contribution levels, smallest first.
func (a *PotAccountant) Pots(folded map[PlayerID]bool) []Pot {
	levels := make([]int64, 0, len(a.contributed))
	seen := map[int64]bool{}
	for _, v := range a.contributed {
		if v > 0 && !seen[v] {
			seen[v] = true
			levels = append(levels, v)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	var pots []Pot
	var carry, prev int64
	for _, level := range levels {
		var count int64
		var eligible []PlayerID
		for _, id := range a.order {
			if a.contributed[id] >= level {
				count++
				if !folded[id] {
					eligible = append(eligible, id)
				}
			}
		}
		amount := (level - prev) * count
		prev = level
		switch {
		case len(eligible) == 0 && len(pots) > 0:
			pots[len(pots)-1].Amount += amount
		case len(eligible) == 0:
			carry += amount
		case len(pots) > 0 && samePlayers(pots[len(pots)-1].Eligible, eligible):
			pots[len(pots)-1].Amount += amount + carry
			carry = 0
		default:
			pots = append(pots, Pot{Amount: amount + carry, Eligible: eligible})
			carry = 0
		}
	}
	if carry > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += carry
	}
	return pots
}

type PotAward struct {
	Pot    Pot
	Shares map[PlayerID]int64
}

// Awards resolves each pot separately against the same ranks.
func (a *PotAccountant) Awards(folded map[PlayerID]bool, ranks map[PlayerID]int32) []PotAward {
	pots := a.Pots(folded)
	out := make([]PotAward, 0, len(pots))
	for _, pot := range pots {
		out = append(out, PotAward{Pot: pot, Shares: a.award(pot, ranks)})
	}
	return out
}

// Resolve pays every pot to its best ranked eligible players. Higher rank
// wins. Ties split evenly and leftover chips go one at a time to the tied
// winners in seat order after the button.
func (a *PotAccountant) Resolve(folded map[PlayerID]bool, ranks map[PlayerID]int32) map[PlayerID]int64 {
	payouts := map[PlayerID]int64{}
	for _, aw := range a.Awards(folded, ranks) {
		for id, amt := range aw.Shares {
			payouts[id] += amt
		}
	}
	return payouts
}

func (a *PotAccountant) award(pot Pot, ranks map[PlayerID]int32) map[PlayerID]int64 {
	winners := pot.Eligible
	if len(winners) > 1 {
		best := ranks[winners[0]]
		for _, id := range winners[1:] {
			if ranks[id] > best {
				best = ranks[id]
			}
		}
		winners = winners[:0:0]
		for _, id := range pot.Eligible {
			if ranks[id] == best {
				winners = append(winners, id)
			}
		}
	}
	out := make(map[PlayerID]int64, len(winners))
	share := pot.Amount / int64(len(winners))
	rem := pot.Amount % int64(len(winners))
	// Eligible is already in seat order after the button.
	for _, id := range winners {
		out[id] = share
		if rem > 0 {
			out[id]++
			rem--
		}
	}
	return out
}

// Refund returns every contribution to its owner.
func (a *PotAccountant) Refund() map[PlayerID]int64 {
	out := make(map[PlayerID]int64, len(a.contributed))
	for id, v := range a.contributed {
		if v > 0 {
			out[id] = v
		}
	}
	return out
}

func containsPlayer(ids []PlayerID, id PlayerID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func samePlayers(a, b []PlayerID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
