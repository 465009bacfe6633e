package msgworker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_DispatchNonBlocking(t *testing.T) {
	pool := NewDeliveryWorkerPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	start := time.Now()
	ok := pool.TryDispatch(DeliveryJob{
		DeliveryID: "d1",
		Key:        "reminder:appt1:3600:email",
		Handler: func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	})
	elapsed := time.Since(start)

	require.True(t, ok)
	assert.Less(t, elapsed, 10*time.Millisecond, "TryDispatch must not block on the handler")
}

func TestPool_SameKeySequentialProcessing(t *testing.T) {
	pool := NewDeliveryWorkerPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var results []int
	var mu sync.Mutex

	key := "reminder:appt1:3600:email"
	for i := 1; i <= 5; i++ {
		val := i
		pool.TryDispatch(DeliveryJob{
			DeliveryID: "d1",
			Key:        key,
			Handler: func(ctx context.Context) error {
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				results = append(results, val)
				mu.Unlock()
				return nil
			},
		})
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3, 4, 5}, results, "jobs sharing a key must run in order")
}

func TestPool_DifferentKeysRunInParallel(t *testing.T) {
	pool := NewDeliveryWorkerPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var activeCount int32
	var maxActive int32

	keys := []string{"k-a", "k-b", "k-c2", "k-d1"}
	for _, k := range keys {
		pool.TryDispatch(DeliveryJob{
			DeliveryID: k,
			Key:        k,
			Handler: func(ctx context.Context) error {
				n := atomic.AddInt32(&activeCount, 1)
				for {
					prev := atomic.LoadInt32(&maxActive)
					if n <= prev || atomic.CompareAndSwapInt32(&maxActive, prev, n) {
						break
					}
				}
				time.Sleep(50 * time.Millisecond)
				atomic.AddInt32(&activeCount, -1)
				return nil
			},
		})
	}

	time.Sleep(200 * time.Millisecond)
	assert.Greater(t, atomic.LoadInt32(&maxActive), int32(1), "distinct keys should overlap")
}

func TestPool_TryDispatchAfterStop(t *testing.T) {
	pool := NewDeliveryWorkerPool(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	pool.Stop()

	ok := pool.TryDispatch(DeliveryJob{DeliveryID: "d", Key: "k", Handler: func(ctx context.Context) error { return nil }})
	assert.False(t, ok)

	stats := pool.GetStats()
	assert.Equal(t, int64(1), stats.TotalDropped)
}

func TestPool_StatsCountProcessedAndErrors(t *testing.T) {
	pool := NewDeliveryWorkerPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)

	pool.TryDispatch(DeliveryJob{DeliveryID: "ok", Key: "ok", Handler: func(ctx context.Context) error { return nil }})
	pool.TryDispatch(DeliveryJob{DeliveryID: "bad", Key: "bad", Handler: func(ctx context.Context) error { return assert.AnError }})

	time.Sleep(100 * time.Millisecond)
	pool.Stop()

	stats := pool.GetStats()
	assert.Equal(t, int64(2), stats.TotalDispatched)
	assert.Equal(t, int64(2), stats.TotalProcessed)
	assert.Equal(t, int64(1), stats.TotalErrors)
}
