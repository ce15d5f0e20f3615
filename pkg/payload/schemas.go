package payload

import (
	"fmt"
	"strings"
)

// FieldTypes lists every field type Payload supports.
var FieldTypes = []string{
	"text", "textarea", "email", "code", "number", "date", "checkbox",
	"select", "relationship", "upload", "array", "blocks", "group", "row",
	"collapsible", "tabs", "richText", "json", "radio", "point",
}

// IsFieldType reports whether t is a supported field type.
func IsFieldType(t string) bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

func expectObject(v interface{}, context string) (map[string]interface{}, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an object", context)
	}
	return m, nil
}

func requireStringProp(m map[string]interface{}, key string) (string, error) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("missing or invalid string property '%s'", key)
	}
	return s, nil
}

func validateFieldsArray(fields []interface{}) error {
	for i, field := range fields {
		if err := validateFieldSchema(field); err != nil {
			return fmt.Errorf("field at index %d failed validation: %w", i, err)
		}
	}
	return nil
}

func validateFieldSchema(v interface{}) error {
	m, err := expectObject(v, "Field")
	if err != nil {
		return err
	}

	if _, err := requireStringProp(m, "name"); err != nil {
		return err
	}
	fieldType, err := requireStringProp(m, "type")
	if err != nil {
		return err
	}
	if !IsFieldType(fieldType) {
		return fmt.Errorf("unsupported field type '%s'. Supported types: %s",
			fieldType, strings.Join(FieldTypes, ", "))
	}

	if admin, ok := m["admin"]; ok {
		if _, err := expectObject(admin, "Field.admin"); err != nil {
			return err
		}
	}
	if access, ok := m["access"]; ok {
		if _, err := expectObject(access, "Field.access"); err != nil {
			return err
		}
	}

	switch fieldType {
	case "select":
		if options, ok := m["options"]; ok {
			arr, ok := options.([]interface{})
			if !ok {
				return fmt.Errorf("Field.options must be an array")
			}
			if len(arr) == 0 {
				return fmt.Errorf("Field.options must include at least one option")
			}
		}
	case "relationship":
		if relationTo, ok := m["relationTo"]; ok {
			switch relationTo.(type) {
			case string, []interface{}:
			default:
				return fmt.Errorf("Field.relationTo must be a string or array")
			}
		}
	case "array", "group", "tabs":
		if fields, ok := m["fields"]; ok {
			arr, ok := fields.([]interface{})
			if !ok {
				return fmt.Errorf("Field.fields must be an array")
			}
			if err := validateFieldsArray(arr); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateCollectionSchema(v interface{}) error {
	m, err := expectObject(v, "Collection")
	if err != nil {
		return err
	}
	if _, err := requireStringProp(m, "slug"); err != nil {
		return err
	}

	fields, ok := m["fields"].([]interface{})
	if !ok {
		return fmt.Errorf("Collection must include a 'fields' array")
	}
	if len(fields) == 0 {
		return fmt.Errorf("Collection.fields must contain at least one field")
	}
	if err := validateFieldsArray(fields); err != nil {
		return err
	}

	if admin, ok := m["admin"]; ok {
		if _, err := expectObject(admin, "Collection.admin"); err != nil {
			return err
		}
	}
	if access, ok := m["access"]; ok {
		if _, err := expectObject(access, "Collection.access"); err != nil {
			return err
		}
	}
	return nil
}

func validateGlobalSchema(v interface{}) error {
	m, err := expectObject(v, "Global")
	if err != nil {
		return err
	}
	if _, err := requireStringProp(m, "slug"); err != nil {
		return err
	}

	fields, ok := m["fields"].([]interface{})
	if !ok {
		return fmt.Errorf("Global must include a 'fields' array")
	}
	if err := validateFieldsArray(fields); err != nil {
		return err
	}

	if access, ok := m["access"]; ok {
		if _, err := expectObject(access, "Global.access"); err != nil {
			return err
		}
	}
	return nil
}

func validateConfigSchema(v interface{}) error {
	m, err := expectObject(v, "Config")
	if err != nil {
		return err
	}

	if collections, ok := m["collections"]; ok {
		arr, ok := collections.([]interface{})
		if !ok {
			return fmt.Errorf("Config.collections must be an array")
		}
		for i, c := range arr {
			if err := validateCollectionSchema(c); err != nil {
				return fmt.Errorf("collections[%d]: %w", i, err)
			}
		}
	}

	if globals, ok := m["globals"]; ok {
		arr, ok := globals.([]interface{})
		if !ok {
			return fmt.Errorf("Config.globals must be an array")
		}
		for i, g := range arr {
			if err := validateGlobalSchema(g); err != nil {
				return fmt.Errorf("globals[%d]: %w", i, err)
			}
		}
	}

	if admin, ok := m["admin"]; ok {
		if _, err := expectObject(admin, "Config.admin"); err != nil {
			return err
		}
	}
	if plugins, ok := m["plugins"]; ok {
		if _, isArr := plugins.([]interface{}); !isArr {
			return fmt.Errorf("Config.plugins must be an array")
		}
	}
	return nil
}
