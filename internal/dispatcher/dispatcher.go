// Package dispatcher is the single entry point for query-tool calls. It
// owns the per-call timeout, the in-flight execution bound, the result
// cache consult, and the mapping of lower-layer failures onto the stable
// error taxonomy. Every call is logged and traced.
package dispatcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/semaphore"

	"github.com/adrianco/demo-brazil/internal/cache"
	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/tool"
	"github.com/adrianco/demo-brazil/internal/types"
)

const tracerName = "github.com/adrianco/demo-brazil/internal/dispatcher"

// Config bounds dispatcher behavior.
type Config struct {
	// CallTimeout is the deadline for one call, covering any wait for an
	// execution slot.
	CallTimeout time.Duration

	// MaxInFlight bounds concurrent tool executions.
	MaxInFlight int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		CallTimeout: 30 * time.Second,
		MaxInFlight: 64,
	}
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithTracerProvider installs a tracer provider. The default is a noop
// tracer; span recording is opt-in.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) {
		d.tracer = tp.Tracer(tracerName)
	}
}

// WithCache installs a result cache. Without one every call reaches the
// store.
func WithCache(c *cache.TTLCache) Option {
	return func(d *Dispatcher) {
		d.cache = c
	}
}

// Dispatcher routes tool calls through validation, the cache, and the
// in-flight bound to the registry.
type Dispatcher struct {
	registry *tool.Registry
	cache    *cache.TTLCache
	sem      *semaphore.Weighted
	config   Config
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a Dispatcher over the given registry.
func New(registry *tool.Registry, config Config, logger *slog.Logger, opts ...Option) *Dispatcher {
	if config.CallTimeout <= 0 {
		config.CallTimeout = DefaultConfig().CallTimeout
	}
	if config.MaxInFlight <= 0 {
		config.MaxInFlight = DefaultConfig().MaxInFlight
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		registry: registry,
		sem:      semaphore.NewWeighted(int64(config.MaxInFlight)),
		config:   config,
		logger:   logger,
		tracer:   noop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch executes one tool call end to end: name resolution, parameter
// validation, cache consult, bounded execution, and error mapping. The
// per-call timeout covers the wait for an execution slot.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, params map[string]any) (*tool.Result, error) {
	start := time.Now()

	t, err := d.registry.Get(name)
	if err != nil {
		d.logCall(name, "", start, false, err)
		return nil, err
	}

	validated, err := tool.ValidateParams(t.Parameters(), params)
	if err != nil {
		d.logCall(name, "", start, false, err)
		return nil, err
	}

	key := cache.Key(name, validated)
	digest := paramDigest(key)

	ctx, cancel := context.WithTimeout(ctx, d.config.CallTimeout)
	defer cancel()

	ctx, span := d.tracer.Start(ctx, "dispatch."+name, trace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.params_digest", digest),
	))
	defer span.End()

	result, hit, err := d.execute(ctx, name, key, validated)
	if err != nil {
		mapped := d.mapError(err)
		span.RecordError(mapped)
		span.SetStatus(codes.Error, mapped.Error())
		d.logCall(name, digest, start, hit, mapped)
		return nil, mapped
	}

	span.SetAttributes(
		attribute.Bool("cache.hit", hit),
		attribute.Int("tool.total_found", result.TotalFound),
	)
	d.logCall(name, digest, start, hit, nil)
	return result, nil
}

// execute runs the call through the cache when one is installed. The
// in-flight bound applies only to executions that reach the registry;
// cache hits bypass it.
func (d *Dispatcher) execute(ctx context.Context, name, key string, params map[string]any) (*tool.Result, bool, error) {
	run := func(ctx context.Context) (*tool.Result, error) {
		if err := d.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer d.sem.Release(1)
		// Params were validated in Dispatch; skip the registry's pass.
		return d.registry.ExecuteValidated(ctx, name, params)
	}

	if d.cache == nil {
		result, err := run(ctx)
		return result, false, err
	}

	value, hit, err := d.cache.GetOrCompute(ctx, key, func(ctx context.Context) (any, error) {
		return run(ctx)
	})
	if err != nil {
		return nil, false, err
	}
	result, ok := value.(*tool.Result)
	if !ok {
		return nil, false, types.NewError(types.STORE_UNAVAILABLE, "cache returned unexpected value type")
	}
	return result, hit, nil
}

// mapError translates lower-layer failures onto the stable taxonomy.
// Caller-facing codes pass through untouched.
func (d *Dispatcher) mapError(err error) error {
	switch types.CodeOf(err) {
	case types.INVALID_PARAMETER, types.UNKNOWN_TOOL, types.TIMEOUT,
		types.STORE_UNAVAILABLE, types.MALFORMED_RECORD, types.CONFLICTING_IDENTITY:
		return err
	case graph.ErrCodeGraphQueryTimeout:
		return types.WrapError(types.TIMEOUT, "call exceeded its deadline", err)
	case graph.ErrCodeGraphConnectionFailed, graph.ErrCodeGraphConnectionLost,
		graph.ErrCodeGraphConnectionClosed, graph.ErrCodeGraphQueryFailed,
		graph.ErrCodeGraphResultParsing, graph.ErrCodeGraphInvalidConfig:
		wrapped := types.WrapError(types.STORE_UNAVAILABLE, "store request failed", err)
		wrapped.Retryable = true
		return wrapped
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.WrapError(types.TIMEOUT, "call exceeded its deadline", err)
	}
	if errors.Is(err, context.Canceled) {
		return types.WrapError(types.TIMEOUT, "call cancelled", err)
	}
	wrapped := types.WrapError(types.STORE_UNAVAILABLE, "store request failed", err)
	wrapped.Retryable = true
	return wrapped
}

func (d *Dispatcher) logCall(name, digest string, start time.Time, cacheHit bool, err error) {
	attrs := []any{
		"tool", name,
		"params", digest,
		"latency", time.Since(start),
		"cache_hit", cacheHit,
	}
	if err != nil {
		attrs = append(attrs, "outcome", string(types.CodeOf(err)), "error", err)
		d.logger.Warn("tool call failed", attrs...)
		return
	}
	attrs = append(attrs, "outcome", "ok")
	d.logger.Info("tool call", attrs...)
}

// paramDigest is a stable short fingerprint of the canonical call key,
// logged instead of raw parameter values.
func paramDigest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:6])
}
