package server

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/mcperrors"
)

// inputSchema is a compiled subset of JSON Schema sufficient for tool
// argument validation: object type, properties with scalar/array/object
// types, required lists, and enums. Unknown schema keywords are ignored
// rather than rejected.
type inputSchema struct {
	properties map[string]propertySchema
	required   []string
}

type propertySchema struct {
	types []string // accepted type names; empty means any
	enum  []interface{}
}

// compileInputSchema parses a raw schema document. A nil or empty schema
// accepts any object.
func compileInputSchema(raw json.RawMessage) (*inputSchema, error) {
	compiled := &inputSchema{properties: map[string]propertySchema{}}
	if len(raw) == 0 {
		return compiled, nil
	}

	var doc struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("schema is not valid JSON: %w", err)
	}
	if doc.Type != "" && doc.Type != "object" {
		return nil, fmt.Errorf("top-level schema type must be object, got %q", doc.Type)
	}

	for name, rawProp := range doc.Properties {
		var prop struct {
			Type interface{}   `json:"type"`
			Enum []interface{} `json:"enum"`
		}
		if err := json.Unmarshal(rawProp, &prop); err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}

		var types []string
		switch t := prop.Type.(type) {
		case nil:
		case string:
			types = []string{t}
		case []interface{}:
			for _, item := range t {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("property %q: type list must contain strings", name)
				}
				types = append(types, s)
			}
		default:
			return nil, fmt.Errorf("property %q: type must be a string or list", name)
		}
		for _, t := range types {
			switch t {
			case "string", "number", "integer", "boolean", "array", "object", "null":
			default:
				return nil, fmt.Errorf("property %q: unknown type %q", name, t)
			}
		}

		compiled.properties[name] = propertySchema{types: types, enum: prop.Enum}
	}
	compiled.required = doc.Required
	return compiled, nil
}

// validate checks decoded arguments against the schema and returns one
// FieldError per violation. Arguments must be a JSON object; absent
// arguments count as an empty object.
func (s *inputSchema) validate(args json.RawMessage) []mcperrors.FieldError {
	values := map[string]interface{}{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &values); err != nil {
			return []mcperrors.FieldError{{
				Field:   "(arguments)",
				Message: "arguments must be a JSON object",
			}}
		}
	}

	var fields []mcperrors.FieldError
	for _, name := range s.required {
		if _, ok := values[name]; !ok {
			fields = append(fields, mcperrors.FieldError{
				Field:   name,
				Message: "required field is missing",
			})
		}
	}

	for name, value := range values {
		prop, ok := s.properties[name]
		if !ok {
			continue
		}
		if len(prop.types) > 0 && !matchesAnyType(value, prop.types) {
			fields = append(fields, mcperrors.FieldError{
				Field:   name,
				Message: fmt.Sprintf("expected type %s", joinTypes(prop.types)),
			})
			continue
		}
		if len(prop.enum) > 0 && !matchesEnum(value, prop.enum) {
			fields = append(fields, mcperrors.FieldError{
				Field:   name,
				Message: "value is not one of the allowed options",
			})
		}
	}
	return fields
}

func matchesAnyType(value interface{}, types []string) bool {
	for _, t := range types {
		if matchesType(value, t) {
			return true
		}
	}
	return false
}

func matchesType(value interface{}, schemaType string) bool {
	switch schemaType {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		_, ok := value.(float64)
		return ok
	case "integer":
		f, ok := value.(float64)
		return ok && f == math.Trunc(f)
	case "array":
		_, ok := value.([]interface{})
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	case "null":
		return value == nil
	default:
		return false
	}
}

func matchesEnum(value interface{}, enum []interface{}) bool {
	for _, candidate := range enum {
		if value == candidate {
			return true
		}
	}
	return false
}

func joinTypes(types []string) string {
	if len(types) == 1 {
		return types[0]
	}
	out := types[0]
	for _, t := range types[1:] {
		out += " or " + t
	}
	return out
}
