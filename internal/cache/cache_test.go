package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCanonicalization(t *testing.T) {
	a := Key("search_player", map[string]any{"name": "Pelé", "limit": 10})
	b := Key("search_player", map[string]any{"limit": 10, "name": "Pelé"})
	assert.Equal(t, a, b, "parameter order must not matter")

	c := Key("search_player", map[string]any{"name": "Pelé", "limit": 20})
	assert.NotEqual(t, a, c)

	d := Key("search_team", map[string]any{"name": "Pelé", "limit": 10})
	assert.NotEqual(t, a, d, "tool name is part of the key")
}

func TestGetSetAndExpiry(t *testing.T) {
	c := New(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	time.Sleep(50 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok, "expired entry must not be served")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 0, stats.Entries, "expired entry evicted on access")
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32

	compute := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "result", nil
	}

	got, hit, err := c.GetOrCompute(context.Background(), "k", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "result", got)

	got, hit, err = c.GetOrCompute(context.Background(), "k", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "result", got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrComputeCountsOneMissPerComputation(t *testing.T) {
	c := New(time.Minute)

	_, hit, err := c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (any, error) {
		return "result", nil
	})
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (any, error) {
		t.Fatal("cached key must not recompute")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, hit)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Misses, "the in-flight double check must not count a second miss")
	assert.Equal(t, int64(1), stats.Hits)
}

func TestGetOrComputeSingleflight(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	compute := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "result", nil
	}

	const waiters = 10
	var wg sync.WaitGroup
	results := make([]any, waiters)
	errs := make([]error, waiters)

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = c.GetOrCompute(context.Background(), "k", compute)
		}(i)
	}

	// Let the goroutines stack up behind the one in-flight computation.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "stampede must collapse to one computation")
	for i := 0; i < waiters; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "result", results[i])
	}
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	boom := errors.New("store down")

	_, _, err := c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	got, _, err := c.GetOrCompute(context.Background(), "k", func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, int32(2), calls.Load(), "failures must not poison the cache")
}

func TestGetOrComputeCancellationReleasesWaiters(t *testing.T) {
	c := New(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	compute := func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	var wg sync.WaitGroup
	errs := make([]error, 3)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _, errs[0] = c.GetOrCompute(ctx, "k", compute)
	}()

	<-started
	for i := 1; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = c.GetOrCompute(context.Background(), "k", compute)
		}(i)
	}

	time.Sleep(10 * time.Millisecond)
	cancel()
	wg.Wait()

	for i, err := range errs {
		require.Error(t, err, "caller %d", i)
		assert.ErrorIs(t, err, context.Canceled, "caller %d", i)
	}

	_, ok := c.Get("k")
	assert.False(t, ok, "cancelled computation must cache nothing")
}

func TestInvalidateAndPurge(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestBackgroundSweeper(t *testing.T) {
	c := New(20 * time.Millisecond)
	defer c.Stop()
	c.StartSweeper(10 * time.Millisecond)

	c.Set("k", "v")
	require.Eventually(t, func() bool {
		return c.Stats().Entries == 0
	}, time.Second, 5*time.Millisecond, "sweeper must reclaim expired entries without access")
}
