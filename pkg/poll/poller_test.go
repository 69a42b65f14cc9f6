package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoller_RunsImmediately(t *testing.T) {
	var count atomic.Int32
	p := New(time.Hour, func(context.Context) {
		count.Add(1)
	})

	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool {
		return count.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPoller_RepeatsAtInterval(t *testing.T) {
	var count atomic.Int32
	p := New(20*time.Millisecond, func(context.Context) {
		count.Add(1)
	})

	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool {
		return count.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPoller_StopWaitsForInflightRun(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool

	p := New(time.Hour, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		finished.Store(true)
	})

	p.Start(context.Background())
	<-started
	p.Stop()

	assert.True(t, finished.Load())
	assert.False(t, p.Running())
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := New(time.Hour, func(context.Context) {})

	// Stop before start is a no-op
	p.Stop()

	p.Start(context.Background())
	p.Stop()
	p.Stop()

	assert.False(t, p.Running())
}

func TestPoller_StartWhileRunningIsNoOp(t *testing.T) {
	var count atomic.Int32
	p := New(time.Hour, func(context.Context) {
		count.Add(1)
	})

	p.Start(context.Background())
	defer p.Stop()
	p.Start(context.Background())

	assert.Eventually(t, func() bool {
		return count.Load() == 1
	}, time.Second, 10*time.Millisecond)
	assert.True(t, p.Running())
}

func TestPoller_ParentContextCancelStopsRuns(t *testing.T) {
	var count atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	p := New(10*time.Millisecond, func(context.Context) {
		count.Add(1)
	})
	p.Start(ctx)
	defer p.Stop()

	assert.Eventually(t, func() bool {
		return count.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	settled := count.Load()
	time.Sleep(50 * time.Millisecond)
	// At most one in-flight tick after cancellation
	assert.LessOrEqual(t, count.Load(), settled+1)
}
