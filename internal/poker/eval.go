package poker

import (
	"errors"
	"fmt"

	cactus "github.com/chehsunliu/poker"
)

var ErrHandSize = errors.New("hand_size")

type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	"High Card", "Pair", "Two Pair", "Three of a Kind", "Straight",
	"Flush", "Full House", "Four of a Kind", "Straight Flush",
}

func (c Category) String() string {
	if c < HighCard || c > StraightFlush {
		return "Unknown"
	}
	return categoryNames[c]
}

// worstRank is one past the weakest distinct 5-card hand in the lookup tables.
const worstRank = 7463

// HandRank is the value of the best 5-card hand found in 5 to 7 cards.
type HandRank struct {
	raw int32
}

// Strength orders hands: a larger value beats a smaller one, equal values tie.
func (h HandRank) Strength() int32 {
	return worstRank - h.raw
}

func (h HandRank) Category() Category {
	switch cactus.RankClass(h.raw) {
	case 1:
		return StraightFlush
	case 2:
		return FourOfAKind
	case 3:
		return FullHouse
	case 4:
		return Flush
	case 5:
		return Straight
	case 6:
		return ThreeOfAKind
	case 7:
		return TwoPair
	case 8:
		return OnePair
	default:
		return HighCard
	}
}

func (h HandRank) String() string {
	return h.Category().String()
}

func Evaluate(cards []Card) (HandRank, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return HandRank{}, fmt.Errorf("%w: %d cards", ErrHandSize, len(cards))
	}
	seen := make(map[Card]bool, len(cards))
	converted := make([]cactus.Card, len(cards))
	for i, c := range cards {
		if !c.Valid() || seen[c] {
			return HandRank{}, fmt.Errorf("%w: %v", ErrInvalidCard, c)
		}
		seen[c] = true
		converted[i] = cactus.NewCard(c.String())
	}
	return HandRank{raw: cactus.Evaluate(converted)}, nil
}

// EvaluateHolding ranks a two card pocket against the board.
func EvaluateHolding(pocket [2]Card, board []Card) (HandRank, error) {
	cards := make([]Card, 0, 2+len(board))
	cards = append(cards, pocket[0], pocket[1])
	cards = append(cards, board...)
	return Evaluate(cards)
}

func Compare(a, b HandRank) int {
	switch {
	case a.Strength() > b.Strength():
		return 1
	case a.Strength() < b.Strength():
		return -1
	default:
		return 0
	}
}
