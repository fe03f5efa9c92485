package threading

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[int]()

	for i := 0; i < 25; i++ {
		q.Put(i)
	}

	for i := 0; i < 25; i++ {
		v, ok := q.Get()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestQueue_GetOnEmptyTimesOutFalse(t *testing.T) {
	q := NewQueue[int]()

	start := time.Now()
	_, ok := q.Get()
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, DefaultPollInterval)
}

func TestQueue_ProducerConsumerSum(t *testing.T) {
	q := NewQueue[int]()
	const n = 100_000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Put(i)
		}
		q.Flush()
	}()

	sum := 0
	got := 0
	for got < n {
		v, ok := q.Get()
		if !ok {
			continue
		}
		sum += v
		got++
	}
	wg.Wait()

	assert.Equal(t, n*(n-1)/2, sum)
}

func TestQueue_ReadyReflectsBufferedAndStaged(t *testing.T) {
	q := NewQueue[int]()
	assert.False(t, q.Ready())

	q.Put(1)
	assert.True(t, q.Ready())

	v, ok := q.Get()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.False(t, q.Ready())
}

func TestQueue_MaybeReadyIsLockFreeApproximation(t *testing.T) {
	q := NewQueue[int]()
	assert.False(t, q.MaybeReady())

	q.Put(1)
	assert.True(t, q.MaybeReady())

	_, ok := q.Get()
	require.True(t, ok)
	assert.False(t, q.MaybeReady())
}

func TestQueue_FlushSplicesSubThresholdTail(t *testing.T) {
	q := NewQueue[int]()

	// Fill and splice one full batch, then pop a single element so
	// consumerLocal is left non-empty: consumerEmpty now reads false,
	// reproducing the state in which a later sub-threshold burst would
	// otherwise be stranded in producerLocal forever.
	for i := 0; i < DefaultBatchThreshold; i++ {
		q.Put(i)
	}
	v, ok := q.Get()
	require.True(t, ok)
	assert.Equal(t, 0, v)

	for i := DefaultBatchThreshold; i < DefaultBatchThreshold+3; i++ {
		q.Put(i)
	}
	stats := q.Stats()
	assert.Equal(t, 3, stats.ProducerSize, "sub-threshold tail must sit unspliced in producerLocal")
	assert.Equal(t, 0, stats.StagingSize, "sub-threshold tail must not reach staging before Flush")

	q.Flush()

	stats = q.Stats()
	assert.Equal(t, 0, stats.ProducerSize)
	assert.Equal(t, 3, stats.StagingSize, "Flush must splice the stranded tail into staging")

	for i := 1; i < DefaultBatchThreshold+3; i++ {
		v, ok := q.Get()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestQueue_StatsCounters(t *testing.T) {
	q := NewQueue[string]()
	q.Put("a")
	q.Put("b")

	_, ok := q.Get()
	require.True(t, ok)

	stats := q.Stats()
	assert.Equal(t, uint64(2), stats.Enqueued)
	assert.Equal(t, uint64(1), stats.Dequeued)
}
