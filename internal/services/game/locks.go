package game

import (
	"sync"

	"github.com/mcoot/chessgame-go/internal/model"
)

// Locks serializes work per game id. Games never contend with each other.
// Entries exist only while some goroutine holds or waits on them.
type Locks struct {
	mu      sync.Mutex
	entries map[model.GameID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewLocks creates an empty lock table
func NewLocks() *Locks {
	return &Locks{entries: make(map[model.GameID]*lockEntry)}
}

// Lock blocks until the caller owns game id and returns the matching unlock.
// The unlock func must be called exactly once.
func (l *Locks) Lock(id model.GameID) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[id]
	if !ok {
		e = &lockEntry{}
		l.entries[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.entries, id)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of games currently locked or awaited
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
