package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/types"
)

// Registry manages the tool catalogue: registration, discovery, parameter
// validation, and execution with metrics tracking.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	metrics map[string]*Metrics
}

// NewRegistry creates a Registry holding the full query-tool catalogue
// backed by the given store client. A duplicate or malformed tool
// definition fails construction; the catalogue is static for the life of
// the process.
func NewRegistry(client graph.Client) (*Registry, error) {
	r := &Registry{
		tools:   make(map[string]Tool),
		metrics: make(map[string]*Metrics),
	}

	catalogue := []Tool{
		newSearchPlayerTool(client),
		newPlayerStatsTool(client),
		newPlayerCareerTool(client),
		newSearchPlayersByPositionTool(client),
		newComparePlayersTool(client),
		newSearchTeamTool(client),
		newSearchTeamsByLeagueTool(client),
		newTeamRosterTool(client),
		newTeamStatsTool(client),
		newCompareTeamsTool(client),
		newMatchDetailsTool(client),
		newSearchMatchesTool(client),
		newSearchMatchesByDateTool(client),
		newHeadToHeadTool(client),
		newStandingsTool(client),
		newTopScorersTool(client),
		newCommonTeammatesTool(client),
		newEntityTool(client),
	}

	for _, t := range catalogue {
		if err := r.register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(t Tool) error {
	name := t.Name()
	if name == "" {
		return types.NewError(ErrToolInvalidCatalog, "tool with empty name")
	}
	if err := validateSpecs(name, t.Parameters()); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return types.NewError(ErrToolAlreadyExists,
			fmt.Sprintf("tool %q already registered", name))
	}
	r.tools[name] = t
	r.metrics[name] = &Metrics{}
	return nil
}

// Get retrieves a tool by name. Returns UNKNOWN_TOOL if it doesn't exist.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tools[name]
	if !exists {
		return nil, types.NewError(types.UNKNOWN_TOOL,
			fmt.Sprintf("unknown tool %q", name))
	}
	return t, nil
}

// List returns descriptors for all registered tools, sorted by name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		descriptors = append(descriptors, NewDescriptor(t))
	}
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})
	return descriptors
}

// Execute validates the parameters against the tool's specs and runs it,
// recording metrics. Returns UNKNOWN_TOOL for unregistered names and
// INVALID_PARAMETER before any store access on a spec violation.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (*Result, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	validated, err := ValidateParams(t.Parameters(), params)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, name, t, validated)
}

// ExecuteValidated runs a tool with parameters that already passed
// ValidateParams, for callers that validate up front themselves and must
// not pay for (or re-trigger) a second pass.
func (r *Registry) ExecuteValidated(ctx context.Context, name string, params map[string]any) (*Result, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, name, t, params)
}

func (r *Registry) run(ctx context.Context, name string, t Tool, params map[string]any) (*Result, error) {
	start := time.Now()
	result, execErr := t.Execute(ctx, params)
	duration := time.Since(start)

	r.mu.Lock()
	if metrics, exists := r.metrics[name]; exists {
		if execErr != nil {
			metrics.RecordFailure(duration)
		} else {
			metrics.RecordSuccess(duration)
		}
	}
	r.mu.Unlock()

	if execErr != nil {
		return nil, execErr
	}
	return result, nil
}

// Health returns the overall health of the catalogue. All tools share the
// store client, so one representative check suffices per tool.
func (r *Registry) Health(ctx context.Context) types.HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.tools) == 0 {
		return types.Unhealthy("no tools registered")
	}

	healthy := 0
	for _, t := range r.tools {
		if t.Health(ctx).IsHealthy() {
			healthy++
		}
	}
	total := len(r.tools)
	switch healthy {
	case total:
		return types.Healthy(fmt.Sprintf("all %d tools healthy", total))
	case 0:
		return types.Unhealthy(fmt.Sprintf("all %d tools unhealthy", total))
	default:
		return types.Degraded(fmt.Sprintf("%d/%d tools healthy", healthy, total))
	}
}

// Metrics returns a copy of the execution metrics for a tool. Returns
// UNKNOWN_TOOL if the tool doesn't exist.
func (r *Registry) Metrics(name string) (Metrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metrics, exists := r.metrics[name]
	if !exists {
		return Metrics{}, types.NewError(types.UNKNOWN_TOOL,
			fmt.Sprintf("unknown tool %q", name))
	}
	return *metrics, nil
}
