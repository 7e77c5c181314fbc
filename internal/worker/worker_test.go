// internal/worker/worker_test.go
package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsQueuedJobs(t *testing.T) {
	pool := NewPool(2, 8, time.Second)

	var ran int32
	for i := 0; i < 5; i++ {
		err := pool.Enqueue(Job{
			Name: "count",
			Run: func(ctx context.Context) error {
				atomic.AddInt32(&ran, 1)
				return nil
			},
		})
		require.NoError(t, err)
	}

	pool.Stop()
	assert.EqualValues(t, 5, atomic.LoadInt32(&ran))
}

func TestEnqueueReportsFullQueue(t *testing.T) {
	pool := NewPool(1, 1, time.Second)

	block := make(chan struct{})
	// Occupy the single worker, then fill the single queue slot.
	require.NoError(t, pool.Enqueue(Job{Name: "blocker", Run: func(ctx context.Context) error {
		<-block
		return nil
	}}))

	// Give the worker a moment to pick up the blocker.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, pool.Enqueue(Job{Name: "queued", Run: func(ctx context.Context) error { return nil }}))

	err := pool.Enqueue(Job{Name: "overflow", Run: func(ctx context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(block)
	pool.Stop()
}

func TestStopDrainsInFlightJobs(t *testing.T) {
	pool := NewPool(1, 4, time.Second)

	var done int32
	require.NoError(t, pool.Enqueue(Job{Name: "slow", Run: func(ctx context.Context) error {
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&done, 1)
		return nil
	}}))

	pool.Stop()
	assert.EqualValues(t, 1, atomic.LoadInt32(&done))
}
