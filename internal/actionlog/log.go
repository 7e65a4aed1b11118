package actionlog

import (
	"sort"
	"sync"
)

const DefaultLiveHands = 3

// Log is the append-only record of one table. Entries in the live window
// cover the most recent hands; older hands move to the archive with their
// original sequence numbers. Entries are never modified after Append.
type Log struct {
	mu         sync.RWMutex
	liveHands  int
	lastSeq    uint64
	live       []Entry
	handStarts []int
	archive    []Entry
	watchers   map[chan struct{}]struct{}
	onArchive  func([]Entry)
}

func New(liveHands int) *Log {
	if liveHands < 0 {
		liveHands = 0
	}
	return &Log{
		liveHands: liveHands,
		watchers:  map[chan struct{}]struct{}{},
	}
}

// OnArchive registers fn to receive entries as they leave the live window.
// fn runs on the appending goroutine after the log lock is released.
func (l *Log) OnArchive(fn func([]Entry)) {
	l.mu.Lock()
	l.onArchive = fn
	l.mu.Unlock()
}

func (l *Log) Append(item Item) Entry {
	l.mu.Lock()
	var evicted []Entry
	if item.Kind() == KindEpoch {
		evicted = l.rotateLocked()
		l.handStarts = append(l.handStarts, len(l.live))
	}
	l.lastSeq++
	e := Entry{Seq: l.lastSeq, Item: item}
	l.live = append(l.live, e)
	sink := l.onArchive
	watchers := make([]chan struct{}, 0, len(l.watchers))
	for ch := range l.watchers {
		watchers = append(watchers, ch)
	}
	l.mu.Unlock()

	if len(evicted) > 0 && sink != nil {
		sink(evicted)
	}
	for _, ch := range watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return e
}

// rotateLocked runs before a new hand starts. Every hand already in the live
// window is complete at that point; the oldest ones beyond the cap move to
// the archive together with any items that precede them.
func (l *Log) rotateLocked() []Entry {
	excess := len(l.handStarts) - l.liveHands
	if excess <= 0 {
		return nil
	}
	cut := len(l.live)
	if excess < len(l.handStarts) {
		cut = l.handStarts[excess]
	}
	evicted := make([]Entry, cut)
	copy(evicted, l.live[:cut])
	l.archive = append(l.archive, evicted...)

	rest := make([]Entry, len(l.live)-cut, cap(l.live))
	copy(rest, l.live[cut:])
	l.live = rest

	starts := l.handStarts[excess:]
	l.handStarts = make([]int, len(starts))
	for i, s := range starts {
		l.handStarts[i] = s - cut
	}
	return evicted
}

// LogsSince returns live entries after seq that player may see, and the
// sequence number of the newest live entry.
func (l *Log) LogsSince(seq uint64, player string) ([]Entry, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var latest uint64
	if n := len(l.live); n > 0 {
		latest = l.live[n-1].Seq
	}
	start := sort.Search(len(l.live), func(i int) bool { return l.live[i].Seq > seq })
	out := make([]Entry, 0, len(l.live)-start)
	for _, e := range l.live[start:] {
		if VisibleTo(e.Item, player) {
			out = append(out, e)
		}
	}
	return out, latest
}

// ArchiveSince returns up to limit archived entries after seq, unfiltered.
// A limit of zero or less means no limit.
func (l *Log) ArchiveSince(seq uint64, limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := sort.Search(len(l.archive), func(i int) bool { return l.archive[i].Seq > seq })
	end := len(l.archive)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out := make([]Entry, end-start)
	copy(out, l.archive[start:end])
	return out
}

// LiveFloor is the oldest sequence number still served by LogsSince, or 0
// when the log is empty. A client whose cursor is below LiveFloor()-1 has
// missed archived entries.
func (l *Log) LiveFloor() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.live) == 0 {
		return 0
	}
	return l.live[0].Seq
}

func (l *Log) LatestSeq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastSeq
}

// LiveHands reports how many hands currently have entries in the live window.
func (l *Log) LiveHands() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.handStarts)
}

// Subscribe returns a channel that receives a signal after appends. Signals
// coalesce: a slow reader sees one pending signal, then calls LogsSince.
func (l *Log) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	l.mu.Lock()
	l.watchers[ch] = struct{}{}
	l.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.watchers, ch)
			l.mu.Unlock()
		})
	}
}
