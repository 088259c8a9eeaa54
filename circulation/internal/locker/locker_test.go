package locker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-circulation/circulation/internal/locker"
)

func TestLocker_MutualExclusion(t *testing.T) {
	l := locker.New()
	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), locker.Item("x"))
			require.NoError(t, err)
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, 1, maxSeen)
	require.Zero(t, l.Len())
}

func TestLocker_OppositeOrderDoesNotDeadlock(t *testing.T) {
	l := locker.New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), locker.Item("i"), locker.Member("m"))
			require.NoError(t, err)
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), locker.Member("m"), locker.Item("i"))
			require.NoError(t, err)
			unlock()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock")
	}
	require.Zero(t, l.Len())
}

func TestLocker_ContextCancel(t *testing.T) {
	l := locker.New()
	unlock, err := l.Lock(context.Background(), locker.Item("x"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, locker.Member("m"), locker.Item("x"))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the member key taken before the timeout must be free again
	unlockM, err := l.Lock(context.Background(), locker.Member("m"))
	require.NoError(t, err)
	unlockM()

	unlock()
	unlock()
	require.Zero(t, l.Len())
}

func TestLocker_DuplicateKeys(t *testing.T) {
	l := locker.New()
	unlock, err := l.Lock(context.Background(), locker.Item("x"), locker.Item("x"), locker.Item(""))
	require.NoError(t, err)
	unlock()
	require.Zero(t, l.Len())
}
