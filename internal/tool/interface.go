package tool

import (
	"context"

	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/types"
)

// Tool represents one parameterized, read-only query over the knowledge
// graph. Tools are stateless: all call state travels in the parameter map,
// which the registry validates against the tool's ParamSpecs before Execute
// runs.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Parameters returns the declarative parameter specs validated before
	// execution.
	Parameters() []ParamSpec

	// Execute runs the query with validated parameters. An empty result set
	// is a success with TotalFound zero, never an error. Context carries
	// cancellation and the per-call deadline.
	Execute(ctx context.Context, params map[string]any) (*Result, error)

	// Health returns the current health status of this tool.
	Health(ctx context.Context) types.HealthStatus
}

// graphTool carries the metadata and store client shared by every tool in
// the catalogue. Concrete tools embed it and implement Execute.
type graphTool struct {
	name        string
	description string
	params      []ParamSpec
	client      graph.Client
}

func (t *graphTool) Name() string            { return t.name }
func (t *graphTool) Description() string     { return t.description }
func (t *graphTool) Parameters() []ParamSpec { return t.params }

func (t *graphTool) Health(ctx context.Context) types.HealthStatus {
	return t.client.Health(ctx)
}

// read runs a read query and returns its records as result rows.
func (t *graphTool) read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	result, err := t.client.Read(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}
