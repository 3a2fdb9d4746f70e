package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestUserLocker_SerializesPerUser(t *testing.T) {
	l := NewUserLocker()

	// Unsynchronized counter; the per-user lock must make this race-free.
	counter := 0
	var g errgroup.Group
	for range 100 {
		g.Go(func() error {
			unlock := l.Lock(1)
			defer unlock()
			counter++
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 100, counter)
}

func TestUserLocker_IndependentUsers(t *testing.T) {
	l := NewUserLocker()

	unlock := l.Lock(1)
	defer unlock()

	// A different user's lock is acquirable while user 1 holds theirs.
	done := make(chan struct{})
	go func() {
		unlock2 := l.Lock(2)
		unlock2()
		close(done)
	}()
	<-done
}
