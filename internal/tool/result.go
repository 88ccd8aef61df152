package tool

import "time"

// Result is the uniform envelope every tool returns: the validated
// parameters echoed back, the result count, and the result rows. An empty
// Results slice with TotalFound zero is a successful "nothing matched".
type Result struct {
	Tool       string           `json:"tool"`
	Params     map[string]any   `json:"params"`
	TotalFound int              `json:"total_found"`
	Results    []map[string]any `json:"results"`
}

// NewResult builds a Result envelope. TotalFound defaults to the number of
// rows; tools that aggregate (head-to-head) override it afterwards.
func NewResult(tool string, params map[string]any, rows []map[string]any) *Result {
	if rows == nil {
		rows = []map[string]any{}
	}
	return &Result{
		Tool:       tool,
		Params:     params,
		TotalFound: len(rows),
		Results:    rows,
	}
}

// Descriptor contains tool metadata for discovery and introspection.
type Descriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamSpec `json:"parameters"`
}

// NewDescriptor creates a Descriptor from a Tool.
func NewDescriptor(t Tool) Descriptor {
	return Descriptor{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// Metrics tracks tool execution statistics for monitoring and observability.
// Metrics are thread-safe and updated automatically by the registry during
// execution.
type Metrics struct {
	TotalCalls     int64         `json:"total_calls"`
	SuccessCalls   int64         `json:"success_calls"`
	FailedCalls    int64         `json:"failed_calls"`
	TotalDuration  time.Duration `json:"total_duration"`
	AvgDuration    time.Duration `json:"avg_duration"`
	LastExecutedAt *time.Time    `json:"last_executed_at,omitempty"`
}

// RecordSuccess records a successful tool execution with the given duration.
func (m *Metrics) RecordSuccess(duration time.Duration) {
	m.TotalCalls++
	m.SuccessCalls++
	m.TotalDuration += duration
	m.AvgDuration = m.TotalDuration / time.Duration(m.TotalCalls)
	now := time.Now()
	m.LastExecutedAt = &now
}

// RecordFailure records a failed tool execution with the given duration.
func (m *Metrics) RecordFailure(duration time.Duration) {
	m.TotalCalls++
	m.FailedCalls++
	m.TotalDuration += duration
	m.AvgDuration = m.TotalDuration / time.Duration(m.TotalCalls)
	now := time.Now()
	m.LastExecutedAt = &now
}

// SuccessRate returns the success rate between 0.0 and 1.0. Returns 0.0 if
// no calls have been made.
func (m *Metrics) SuccessRate() float64 {
	if m.TotalCalls == 0 {
		return 0.0
	}
	return float64(m.SuccessCalls) / float64(m.TotalCalls)
}

// FailureRate returns the failure rate between 0.0 and 1.0. Returns 0.0 if
// no calls have been made.
func (m *Metrics) FailureRate() float64 {
	if m.TotalCalls == 0 {
		return 0.0
	}
	return float64(m.FailedCalls) / float64(m.TotalCalls)
}
