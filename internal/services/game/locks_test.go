package game

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocksSerializeSameGame(t *testing.T) {
	locks := NewLocks()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(1)
			defer unlock()

			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, locks.Len())
}

func TestLocksIndependentGames(t *testing.T) {
	locks := NewLocks()

	unlock1 := locks.Lock(1)
	defer unlock1()

	done := make(chan struct{})
	go func() {
		unlock2 := locks.Lock(2)
		unlock2()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on game 2 blocked behind game 1")
	}
}

func TestLocksUnlockIsIdempotent(t *testing.T) {
	locks := NewLocks()

	unlock := locks.Lock(7)
	assert.Equal(t, 1, locks.Len())
	unlock()
	unlock()
	assert.Equal(t, 0, locks.Len())

	// still usable afterwards
	locks.Lock(7)()
	assert.Equal(t, 0, locks.Len())
}
