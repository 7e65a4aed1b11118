package actionlog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-core/internal/poker"
)

func pocket(player, cards string) PocketDealt {
	c := poker.MustParseCards(cards)
	return PocketDealt{PlayerID: player, Cards: [2]poker.Card{c[0], c[1]}}
}

func appendHand(l *Log, n uint64) {
	l.Append(Epoch{HandID: "h", HandNumber: n, Street: "dealing"})
	l.Append(pocket("alice", "As Kd"))
	l.Append(pocket("bob", "7c 7d"))
	l.Append(BetAction{PlayerID: "alice", Action: BetFold})
}

func TestAppendAssignsSequenceFromOne(t *testing.T) {
	l := New(3)
	for i := 1; i <= 10; i++ {
		e := l.Append(StreetChanged{Street: "flop"})
		require.Equal(t, uint64(i), e.Seq)
	}
	assert.Equal(t, uint64(10), l.LatestSeq())
}

func TestConcurrentAppendsNeverShareSeq(t *testing.T) {
	l := New(3)
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[uint64]bool{}
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				e := l.Append(StreetChanged{Street: "turn"})
				mu.Lock()
				seen[e.Seq] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, 400)
	for s := uint64(1); s <= 400; s++ {
		assert.True(t, seen[s], "missing seq %d", s)
	}
}

func TestLogsSinceFiltersOtherPockets(t *testing.T) {
	l := New(3)
	appendHand(l, 1)

	items, latest := l.LogsSince(0, "alice")
	assert.Equal(t, uint64(4), latest)
	require.Len(t, items, 3)
	for _, e := range items {
		if p, ok := e.Item.(PocketDealt); ok {
			assert.Equal(t, "alice", p.PlayerID)
		}
	}

	spectator, latest := l.LogsSince(0, "")
	assert.Equal(t, uint64(4), latest)
	require.Len(t, spectator, 2)
	assert.Equal(t, KindEpoch, spectator[0].Item.Kind())
	assert.Equal(t, KindBetAction, spectator[1].Item.Kind())
}

func TestLogsSinceReportsLatestEvenWhenFiltered(t *testing.T) {
	l := New(3)
	appendHand(l, 1)
	l.Append(pocket("bob", "2c 3c"))

	items, latest := l.LogsSince(4, "alice")
	assert.Empty(t, items)
	assert.Equal(t, uint64(5), latest)
}

func TestLogsSinceIsIdempotent(t *testing.T) {
	l := New(3)
	appendHand(l, 1)
	l.Append(Reveal{PlayerID: "bob", Cards: [2]poker.Card{{Rank: poker.Seven, Suit: poker.Clubs}, {Rank: poker.Seven, Suit: poker.Diamonds}}})

	a, la := l.LogsSince(2, "bob")
	b, lb := l.LogsSince(2, "bob")
	assert.Equal(t, a, b)
	assert.Equal(t, la, lb)
}

func TestRetentionMovesOldestHandsToArchive(t *testing.T) {
	l := New(2)
	var archived []Entry
	l.OnArchive(func(es []Entry) { archived = append(archived, es...) })

	l.Append(PlayerSitDown{PlayerID: "alice", Seat: 0, Stack: 100})
	appendHand(l, 1) // seqs 2..5
	appendHand(l, 2) // 6..9
	appendHand(l, 3) // 10..13, two completed hands
	assert.Empty(t, archived)
	assert.Equal(t, uint64(1), l.LiveFloor())

	appendHand(l, 4) // 14..17, three completed hands so hand 1 goes
	require.Len(t, archived, 5)
	assert.Equal(t, uint64(1), archived[0].Seq)
	assert.Equal(t, uint64(5), archived[4].Seq)
	assert.Equal(t, uint64(6), l.LiveFloor())
	assert.Equal(t, 3, l.LiveHands())

	items, latest := l.LogsSince(0, "alice")
	assert.Equal(t, uint64(17), latest)
	assert.Equal(t, uint64(6), items[0].Seq)

	arch := l.ArchiveSince(0, 0)
	require.Len(t, arch, 5)
	assert.Equal(t, archived, arch)
	assert.Len(t, l.ArchiveSince(2, 2), 2)
}

func TestRetentionZeroKeepsOnlyCurrentHand(t *testing.T) {
	l := New(0)
	appendHand(l, 1)
	appendHand(l, 2)
	assert.Equal(t, uint64(5), l.LiveFloor())
	assert.Len(t, l.ArchiveSince(0, 0), 4)
}

func TestSubscribeSignalsAppends(t *testing.T) {
	l := New(3)
	ch, cancel := l.Subscribe()
	defer cancel()

	l.Append(StreetChanged{Street: "flop"})
	l.Append(StreetChanged{Street: "turn"})
	select {
	case <-ch:
	default:
		t.Fatal("expected a signal")
	}
	select {
	case <-ch:
		t.Fatal("signals should coalesce")
	default:
	}
	cancel()
	l.Append(StreetChanged{Street: "river"})
	select {
	case <-ch:
		t.Fatal("unsubscribed watcher signalled")
	default:
	}
}
