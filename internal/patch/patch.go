// Package patch applies ordered field-level edits to an in-memory entity.
// Fields are exposed through typed accessors registered per entity, so a
// patch can never reach a field the entity did not explicitly offer.
package patch

import (
	"fmt"
	"strings"

	"taxiline/internal/apperrors"
)

const (
	OpSet     = "set"
	OpReplace = "replace"
	OpRemove  = "remove"
)

// Operation is a single declarative edit targeting one field path.
type Operation struct {
	Op    string      `json:"op" binding:"required"`
	Path  string      `json:"path" binding:"required"`
	Value interface{} `json:"value,omitempty"`
}

// Field is a typed accessor pair for one patchable field. Set must reject
// values of the wrong type.
type Field struct {
	Set   func(value interface{}) error
	Clear func()
}

// Registry maps field names to their accessors for one entity instance.
type Registry map[string]Field

// Apply runs the operations in order against the registry. The first invalid
// operation aborts the whole patch; callers only persist after Apply succeeds,
// so an aborted patch has no partial effect. Edits addressed at the identity
// field are stripped rather than rejected.
func Apply(ops []Operation, fields Registry) error {
	for _, op := range ops {
		name := strings.TrimPrefix(op.Path, "/")
		if name == "_id" || name == "id" {
			continue
		}
		field, ok := fields[name]
		if !ok {
			return apperrors.NewFieldValidation(name, "field cannot be patched")
		}
		switch op.Op {
		case OpSet, OpReplace:
			if err := field.Set(op.Value); err != nil {
				return apperrors.NewFieldValidation(name, err.Error())
			}
		case OpRemove:
			field.Clear()
		default:
			return apperrors.NewFieldValidation(name, fmt.Sprintf("unsupported patch op %q", op.Op))
		}
	}
	return nil
}

// String exposes a string field.
func String(target *string) Field {
	return Field{
		Set: func(value interface{}) error {
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("expected string, got %T", value)
			}
			*target = s
			return nil
		},
		Clear: func() { *target = "" },
	}
}

// Float64 exposes a numeric field. JSON numbers arrive as float64; integer
// values are accepted as well.
func Float64(target *float64) Field {
	return Field{
		Set: func(value interface{}) error {
			switch v := value.(type) {
			case float64:
				*target = v
			case int:
				*target = float64(v)
			case int64:
				*target = float64(v)
			default:
				return fmt.Errorf("expected number, got %T", value)
			}
			return nil
		},
		Clear: func() { *target = 0 },
	}
}

// Bool exposes a boolean field.
func Bool(target *bool) Field {
	return Field{
		Set: func(value interface{}) error {
			b, ok := value.(bool)
			if !ok {
				return fmt.Errorf("expected boolean, got %T", value)
			}
			*target = b
			return nil
		},
		Clear: func() { *target = false },
	}
}

// StringSlice exposes a list-of-strings field.
func StringSlice(target *[]string) Field {
	return Field{
		Set: func(value interface{}) error {
			raw, ok := value.([]interface{})
			if !ok {
				return fmt.Errorf("expected array of strings, got %T", value)
			}
			items := make([]string, len(raw))
			for i, item := range raw {
				s, ok := item.(string)
				if !ok {
					return fmt.Errorf("expected string at index %d, got %T", i, item)
				}
				items[i] = s
			}
			*target = items
			return nil
		},
		Clear: func() { *target = nil },
	}
}
