package tool

import "github.com/adrianco/demo-brazil/internal/types"

// Registry error codes
const (
	ErrToolAlreadyExists   types.ErrorCode = "TOOL_ALREADY_EXISTS"
	ErrToolInvalidCatalog  types.ErrorCode = "TOOL_INVALID_CATALOG"
	ErrToolExecutionFailed types.ErrorCode = "TOOL_EXECUTION_FAILED"
)
