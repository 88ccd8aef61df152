package tool

import (
	"fmt"
	"time"

	"github.com/adrianco/demo-brazil/internal/schema"
	"github.com/adrianco/demo-brazil/internal/types"
)

// ParamType is the declared type of a tool parameter.
type ParamType string

const (
	ParamString ParamType = "string"
	ParamInt    ParamType = "int"
	ParamDate   ParamType = "date" // YYYY-MM-DD
	ParamEnum   ParamType = "enum"
)

// ParamSpec declares one tool parameter. Validation runs before any store
// access; every violation is INVALID_PARAMETER naming the field.
type ParamSpec struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`

	// Enum lists the accepted values for ParamEnum.
	Enum []string `json:"enum,omitempty"`

	// Min and Max bound ParamInt values inclusively. Both zero means
	// unbounded.
	Min int `json:"min,omitempty"`
	Max int `json:"max,omitempty"`

	// Default is applied when an optional parameter is absent.
	Default any `json:"default,omitempty"`
}

// limitSpec is the shared pagination parameter of the search tools.
func limitSpec() ParamSpec {
	return ParamSpec{
		Name:        "limit",
		Type:        ParamInt,
		Description: "maximum number of results",
		Min:         1,
		Max:         100,
		Default:     10,
	}
}

func invalidParam(field, reason string) *types.Error {
	return types.NewError(types.INVALID_PARAMETER,
		fmt.Sprintf("parameter %q: %s", field, reason))
}

// ValidateParams checks a raw parameter map against the specs and returns
// the validated map with defaults applied and integers coerced. Unknown
// parameters are rejected.
func ValidateParams(specs []ParamSpec, params map[string]any) (map[string]any, error) {
	known := make(map[string]bool, len(specs))
	for _, spec := range specs {
		known[spec.Name] = true
	}
	for name := range params {
		if !known[name] {
			return nil, invalidParam(name, "unknown parameter")
		}
	}

	validated := make(map[string]any, len(specs))
	for _, spec := range specs {
		raw, present := params[spec.Name]
		if !present || raw == nil || raw == "" {
			if spec.Required {
				return nil, invalidParam(spec.Name, "required")
			}
			if spec.Default != nil {
				validated[spec.Name] = spec.Default
			}
			continue
		}

		value, err := spec.coerce(raw)
		if err != nil {
			return nil, err
		}
		validated[spec.Name] = value
	}
	return validated, nil
}

func (s ParamSpec) coerce(raw any) (any, error) {
	switch s.Type {
	case ParamString:
		str, ok := raw.(string)
		if !ok {
			return nil, invalidParam(s.Name, fmt.Sprintf("expected string, got %T", raw))
		}
		return str, nil

	case ParamInt:
		n, err := intParam(raw)
		if err != nil {
			return nil, invalidParam(s.Name, err.Error())
		}
		if s.Min != 0 || s.Max != 0 {
			if n < s.Min || n > s.Max {
				return nil, invalidParam(s.Name,
					fmt.Sprintf("must be between %d and %d, got %d", s.Min, s.Max, n))
			}
		}
		return n, nil

	case ParamDate:
		str, ok := raw.(string)
		if !ok {
			return nil, invalidParam(s.Name, fmt.Sprintf("expected date string, got %T", raw))
		}
		if _, err := time.Parse(schema.DateFormat, str); err != nil {
			return nil, invalidParam(s.Name,
				fmt.Sprintf("expected YYYY-MM-DD date, got %q", str))
		}
		return str, nil

	case ParamEnum:
		str, ok := raw.(string)
		if !ok {
			return nil, invalidParam(s.Name, fmt.Sprintf("expected string, got %T", raw))
		}
		for _, allowed := range s.Enum {
			if str == allowed {
				return str, nil
			}
		}
		return nil, invalidParam(s.Name,
			fmt.Sprintf("must be one of %v, got %q", s.Enum, str))

	default:
		return nil, invalidParam(s.Name, fmt.Sprintf("unsupported parameter type %q", s.Type))
	}
}

// intParam accepts the integer encodings that survive JSON transport.
func intParam(raw any) (int, error) {
	switch n := raw.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}

// validateSpecs rejects malformed parameter declarations at registry
// construction so a bad catalogue never reaches serving.
func validateSpecs(toolName string, specs []ParamSpec) error {
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return types.NewError(ErrToolInvalidCatalog,
				fmt.Sprintf("tool %q: parameter with empty name", toolName))
		}
		if seen[spec.Name] {
			return types.NewError(ErrToolInvalidCatalog,
				fmt.Sprintf("tool %q: duplicate parameter %q", toolName, spec.Name))
		}
		seen[spec.Name] = true

		switch spec.Type {
		case ParamString, ParamInt, ParamDate:
		case ParamEnum:
			if len(spec.Enum) == 0 {
				return types.NewError(ErrToolInvalidCatalog,
					fmt.Sprintf("tool %q: enum parameter %q without values", toolName, spec.Name))
			}
		default:
			return types.NewError(ErrToolInvalidCatalog,
				fmt.Sprintf("tool %q: parameter %q has unknown type %q", toolName, spec.Name, spec.Type))
		}
	}
	return nil
}
