package poker

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

var (
	ErrInvalidCard   = errors.New("invalid_card")
	ErrDeckExhausted = errors.New("deck_exhausted")
)

type Suit int

type Rank int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "shdc"
)

type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) Valid() bool {
	return c.Rank >= Two && c.Rank <= Ace && c.Suit >= Spades && c.Suit <= Clubs
}

// String renders the two character form used on the wire, e.g. "As" or "Td".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]byte{rankChars[c.Rank-Two], suitChars[c.Suit]})
}

func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	r := strings.IndexByte(rankChars, upper(s[0]))
	u := strings.IndexByte(suitChars, lower(s[1]))
	if r < 0 || u < 0 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	return Card{Rank: Two + Rank(r), Suit: Suit(u)}, nil
}

// MustParseCards parses a space separated list like "As Kd 7c" and panics on
// bad input. Intended for tests and fixtures.
func MustParseCards(s string) []Card {
	fields := strings.Fields(s)
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrInvalidCard
	}
	return []byte(c.String()), nil
}

func (c *Card) UnmarshalText(b []byte) error {
	parsed, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

const DeckSize = 52

type Deck struct {
	cards []Card
}

func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for s := Spades; s <= Clubs; s++ {
		for r := Two; r <= Ace; r++ {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return &Deck{cards: cards}
}

// NewStackedDeck returns a full deck whose first cards are top, in order.
// The rest of the deck keeps canonical order and is not shuffled.
func NewStackedDeck(top ...Card) *Deck {
	used := make(map[Card]bool, len(top))
	cards := make([]Card, 0, 52)
	for _, c := range top {
		used[c] = true
		cards = append(cards, c)
	}
	for _, c := range NewDeck().cards {
		if !used[c] {
			cards = append(cards, c)
		}
	}
	return &Deck{cards: cards}
}

func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	out := make([]Card, n)
	copy(out, d.cards[:n])
	d.cards = d.cards[n:]
	return out, nil
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}
