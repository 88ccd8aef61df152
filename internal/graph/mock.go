package graph

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/adrianco/demo-brazil/internal/types"
)

// MockCall represents a recorded query against the mock graph client.
type MockCall struct {
	Method    string
	Cypher    string
	Params    map[string]any
	Timestamp time.Time
}

// MockClient is a mock implementation of Client for testing.
// It records every query and serves configurable responses, either from a
// FIFO queue or from a handler function keyed on the query text.
type MockClient struct {
	mu sync.RWMutex

	connected    bool
	healthStatus types.HealthStatus
	calls        []MockCall

	// Configurable responses
	queuedResults []QueryResult
	handlers      []mockHandler
	queryError    error
	connectError  error
	closeError    error

	// Optional per-query delay, used by timeout tests.
	queryDelay time.Duration
}

type mockHandler struct {
	substr string
	fn     func(cypher string, params map[string]any) (QueryResult, error)
}

// NewMockClient creates a new mock graph client for testing.
func NewMockClient() *MockClient {
	return &MockClient{
		healthStatus: types.Healthy("mock graph client"),
		calls:        make([]MockCall, 0),
	}
}

// QueueResult appends a result to the FIFO response queue.
// Queued results are consumed by Read and Write in order; when the queue is
// empty and no handler matches, an empty QueryResult is returned.
func (m *MockClient) QueueResult(result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queuedResults = append(m.queuedResults, result)
}

// HandleQuery registers a response function for queries whose text contains
// substr. Handlers are consulted before the queue and match in registration
// order.
func (m *MockClient) HandleQuery(substr string, fn func(cypher string, params map[string]any) (QueryResult, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, mockHandler{substr: substr, fn: fn})
}

// SetQueryError configures all subsequent queries to fail with err.
func (m *MockClient) SetQueryError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryError = err
}

// SetConnectError configures Connect to fail with err.
func (m *MockClient) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

// SetQueryDelay makes every query block for d before responding, honoring
// context cancellation.
func (m *MockClient) SetQueryDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryDelay = d
}

// SetHealth overrides the health status returned by Health.
func (m *MockClient) SetHealth(status types.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
}

// Calls returns a copy of all recorded calls.
func (m *MockClient) Calls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsMatching returns recorded calls whose query text contains substr.
func (m *MockClient) CallsMatching(substr string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []MockCall
	for _, c := range m.calls {
		if strings.Contains(c.Cypher, substr) {
			out = append(out, c)
		}
	}
	return out
}

// Connect records the call and simulates connection.
func (m *MockClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connectError != nil {
		return m.connectError
	}
	m.connected = true
	return nil
}

// Close records the call and simulates disconnection.
func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = false
	return m.closeError
}

// Health returns the configured health status.
func (m *MockClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthStatus
}

// Read records the call and serves a configured response.
func (m *MockClient) Read(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return m.respond(ctx, "Read", cypher, params)
}

// Write records the call and serves a configured response.
func (m *MockClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return m.respond(ctx, "Write", cypher, params)
}

// WriteBatch records and responds to each statement in order. Like the real
// client, it fails the whole batch on the first statement error.
func (m *MockClient) WriteBatch(ctx context.Context, statements []Statement) ([]QueryResult, error) {
	results := make([]QueryResult, 0, len(statements))
	for _, stmt := range statements {
		result, err := m.respond(ctx, "WriteBatch", stmt.Cypher, stmt.Params)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (m *MockClient) respond(ctx context.Context, method, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{
		Method:    method,
		Cypher:    cypher,
		Params:    params,
		Timestamp: time.Now(),
	})
	delay := m.queryDelay
	queryErr := m.queryError
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return QueryResult{}, types.WrapError(ErrCodeGraphQueryTimeout,
				"query cancelled", ctx.Err())
		}
	}

	if queryErr != nil {
		return QueryResult{}, queryErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range m.handlers {
		if strings.Contains(cypher, h.substr) {
			return h.fn(cypher, params)
		}
	}

	if len(m.queuedResults) > 0 {
		result := m.queuedResults[0]
		m.queuedResults = m.queuedResults[1:]
		return result, nil
	}

	return QueryResult{}, nil
}
