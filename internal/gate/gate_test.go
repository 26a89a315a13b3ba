package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	ctx := context.Background()
	g := New(2)

	require.NoError(t, g.Acquire(ctx))
	require.NoError(t, g.Acquire(ctx))
	assert.Equal(t, 2, g.InFlight())

	g.Release()
	assert.Equal(t, 1, g.InFlight())
	g.Release()
	assert.Zero(t, g.InFlight())
}

func TestCapacityClamp(t *testing.T) {
	assert.Equal(t, 1, New(0).Capacity())
	assert.Equal(t, 1, New(-5).Capacity())
	assert.Equal(t, 25, New(25).Capacity())
}

func TestAcquireBlocksAtCapacity(t *testing.T) {
	ctx := context.Background()
	g := New(1)
	require.NoError(t, g.Acquire(ctx))

	blocked, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, g.Acquire(blocked), context.DeadlineExceeded)

	g.Release()
	require.NoError(t, g.Acquire(ctx))
	g.Release()
}

func TestReleaseWithoutAcquirePanics(t *testing.T) {
	g := New(1)
	assert.Panics(t, func() { g.Release() })
}

func TestBoundUnderContention(t *testing.T) {
	const capacity = 4
	const tasks = 64

	ctx := context.Background()
	g := New(capacity)

	var inFlight atomic.Int32
	var peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < tasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !assert.NoError(t, g.Acquire(ctx)) {
				return
			}
			defer g.Release()

			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(capacity))
}
