package dispatcher

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/adrianco/demo-brazil/internal/cache"
	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/tool"
	"github.com/adrianco/demo-brazil/internal/types"
)

func newTestDispatcher(t *testing.T, config Config, opts ...Option) (*Dispatcher, *graph.MockClient) {
	t.Helper()
	mock := graph.NewMockClient()
	registry, err := tool.NewRegistry(mock)
	require.NoError(t, err)
	return New(registry, config, nil, opts...), mock
}

func TestDispatchUnknownTool(t *testing.T) {
	d, mock := newTestDispatcher(t, DefaultConfig())

	_, err := d.Dispatch(context.Background(), "search_playr", map[string]any{"name": "x"})
	require.Error(t, err)
	assert.Equal(t, types.UNKNOWN_TOOL, types.CodeOf(err))
	assert.Empty(t, mock.Calls())
}

func TestDispatchInvalidParameter(t *testing.T) {
	d, mock := newTestDispatcher(t, DefaultConfig())

	_, err := d.Dispatch(context.Background(), "search_player", map[string]any{"limit": 5})
	require.Error(t, err)
	assert.Equal(t, types.INVALID_PARAMETER, types.CodeOf(err))
	assert.Empty(t, mock.Calls(), "validation failures must not reach the store")
}

func TestDispatchSuccess(t *testing.T) {
	d, mock := newTestDispatcher(t, DefaultConfig())
	mock.QueueResult(graph.QueryResult{Records: []map[string]any{
		{"id": "p-1", "name": "Pelé"},
	}})

	result, err := d.Dispatch(context.Background(), "search_player", map[string]any{"name": "Pelé"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalFound)
}

func TestDispatchTimeout(t *testing.T) {
	config := DefaultConfig()
	config.CallTimeout = 50 * time.Millisecond
	d, mock := newTestDispatcher(t, config)
	mock.SetQueryDelay(time.Second)

	start := time.Now()
	_, err := d.Dispatch(context.Background(), "search_player", map[string]any{"name": "Pelé"})
	require.Error(t, err)
	assert.Equal(t, types.TIMEOUT, types.CodeOf(err))
	assert.Less(t, time.Since(start), 500*time.Millisecond, "must not wait out the store delay")
}

func TestDispatchMapsStoreErrors(t *testing.T) {
	d, mock := newTestDispatcher(t, DefaultConfig())
	mock.SetQueryError(types.NewError(graph.ErrCodeGraphQueryFailed, "syntax error"))

	_, err := d.Dispatch(context.Background(), "search_player", map[string]any{"name": "Pelé"})
	require.Error(t, err)
	assert.Equal(t, types.STORE_UNAVAILABLE, types.CodeOf(err))

	var terr *types.Error
	require.ErrorAs(t, err, &terr)
	assert.True(t, terr.Retryable)
}

func TestDispatchCacheHit(t *testing.T) {
	c := cache.New(time.Minute)
	d, mock := newTestDispatcher(t, DefaultConfig(), WithCache(c))
	mock.QueueResult(graph.QueryResult{Records: []map[string]any{{"id": "t-1", "name": "Santos"}}})

	first, err := d.Dispatch(context.Background(), "search_team", map[string]any{"name": "Santos"})
	require.NoError(t, err)

	// Same logical call with explicit default limit: one store round trip.
	second, err := d.Dispatch(context.Background(), "search_team", map[string]any{"name": "Santos", "limit": 10})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, mock.Calls(), 1, "second call must be served from cache")
}

func TestDispatchCacheMissOnDifferentParams(t *testing.T) {
	c := cache.New(time.Minute)
	d, mock := newTestDispatcher(t, DefaultConfig(), WithCache(c))

	_, err := d.Dispatch(context.Background(), "search_team", map[string]any{"name": "Santos"})
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), "search_team", map[string]any{"name": "Palmeiras"})
	require.NoError(t, err)

	assert.Len(t, mock.Calls(), 2)
}

func TestDispatchErrorsAreNotCached(t *testing.T) {
	c := cache.New(time.Minute)
	d, mock := newTestDispatcher(t, DefaultConfig(), WithCache(c))

	mock.SetQueryError(types.NewError(graph.ErrCodeGraphQueryFailed, "boom"))
	_, err := d.Dispatch(context.Background(), "search_team", map[string]any{"name": "Santos"})
	require.Error(t, err)

	mock.SetQueryError(nil)
	result, err := d.Dispatch(context.Background(), "search_team", map[string]any{"name": "Santos"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalFound)
	assert.Len(t, mock.Calls(), 2, "failed call must be retried, not served from cache")
}

func TestDispatchStampedeCollapses(t *testing.T) {
	c := cache.New(time.Minute)
	d, mock := newTestDispatcher(t, DefaultConfig(), WithCache(c))
	mock.SetQueryDelay(30 * time.Millisecond)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Dispatch(context.Background(), "search_team", map[string]any{"name": "Santos"}); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, failures.Load())
	assert.Len(t, mock.Calls(), 1, "concurrent identical calls must collapse to one store query")
}

func TestDispatchBoundsInFlightExecutions(t *testing.T) {
	config := DefaultConfig()
	config.MaxInFlight = 1
	config.CallTimeout = 100 * time.Millisecond
	d, mock := newTestDispatcher(t, config)
	mock.SetQueryDelay(300 * time.Millisecond)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Distinct params so the calls cannot share a flight.
			name := []string{"Santos", "Palmeiras"}[i]
			_, errs[i] = d.Dispatch(context.Background(), "search_team", map[string]any{"name": name})
		}(i)
	}
	wg.Wait()

	// With one slot and a store slower than the deadline, both calls time
	// out: one inside the query, one waiting for the slot.
	for i, err := range errs {
		require.Error(t, err, "call %d", i)
		assert.Equal(t, types.TIMEOUT, types.CodeOf(err), "call %d", i)
	}
}

func TestDispatchEmitsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	d, _ := newTestDispatcher(t, DefaultConfig(), WithTracerProvider(tp))

	_, err := d.Dispatch(context.Background(), "search_team", map[string]any{"name": "Santos"})
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "dispatch.search_team", spans[0].Name)

	attrs := make(map[string]any)
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "search_team", attrs["tool.name"])
	assert.NotEmpty(t, attrs["tool.params_digest"])
	assert.Equal(t, false, attrs["cache.hit"])
}
