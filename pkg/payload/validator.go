package payload

import (
	"fmt"
	"strings"
	"unicode"
)

// Suggestion is an advisory improvement with an optional code snippet.
type Suggestion struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Reference points at relevant Payload documentation.
type Reference struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ValidationResult is the outcome of validating a piece of Payload code.
// ViolatedRules carries the catalog ids of every rule behind a reported
// error or warning; suggestions are advisory and not counted.
type ValidationResult struct {
	Valid         bool         `json:"valid"`
	Errors        []string     `json:"errors"`
	Warnings      []string     `json:"warnings"`
	Suggestions   []Suggestion `json:"suggestions"`
	ViolatedRules []string     `json:"violatedRules"`
	References    []Reference  `json:"references"`
}

type resultBuilder struct {
	result ValidationResult
	seen   map[string]bool
}

func newResultBuilder(refs ...Reference) *resultBuilder {
	return &resultBuilder{
		result: ValidationResult{
			Errors:        []string{},
			Warnings:      []string{},
			Suggestions:   []Suggestion{},
			ViolatedRules: []string{},
			References:    refs,
		},
		seen: map[string]bool{},
	}
}

func (b *resultBuilder) errorf(rule, format string, args ...interface{}) {
	b.result.Errors = append(b.result.Errors, fmt.Sprintf(format, args...))
	b.violate(rule)
}

func (b *resultBuilder) warnf(rule, format string, args ...interface{}) {
	b.result.Warnings = append(b.result.Warnings, fmt.Sprintf(format, args...))
	b.violate(rule)
}

func (b *resultBuilder) suggest(message, code string) {
	b.result.Suggestions = append(b.result.Suggestions, Suggestion{Message: message, Code: code})
}

func (b *resultBuilder) violate(rule string) {
	if rule != "" && !b.seen[rule] {
		b.seen[rule] = true
		b.result.ViolatedRules = append(b.result.ViolatedRules, rule)
	}
}

func (b *resultBuilder) build() ValidationResult {
	b.result.Valid = len(b.result.Errors) == 0
	return b.result
}

func (b *resultBuilder) fail(message string) ValidationResult {
	b.result.Errors = append(b.result.Errors, message)
	b.result.Valid = false
	return b.result
}

var reservedNames = []string{"constructor", "prototype", "__proto__", "toString", "toJSON", "valueOf"}

func (b *resultBuilder) checkName(name string) {
	if strings.Contains(name, " ") {
		b.errorf("naming-conventions",
			"Name %q should not contain spaces. Use camelCase or snake_case instead.", name)
	}
	hasUpper := strings.IndexFunc(name, unicode.IsUpper) >= 0
	if hasUpper && strings.Contains(name, "_") {
		b.errorf("naming-conventions",
			"Name %q mixes camelCase and snake_case. Choose one convention.", name)
	}
	for _, reserved := range reservedNames {
		if name == reserved {
			b.errorf("reserved-words",
				"Name %q is a reserved JavaScript word and should be avoided.", name)
		}
	}
}

var (
	collectionReference = Reference{
		Title: "Payload CMS Collections Documentation",
		URL:   "https://payloadcms.com/docs/configuration/collections",
	}
	fieldReference = Reference{
		Title: "Payload CMS Fields Documentation",
		URL:   "https://payloadcms.com/docs/fields/overview",
	}
	globalReference = Reference{
		Title: "Payload CMS Globals Documentation",
		URL:   "https://payloadcms.com/docs/configuration/globals",
	}
	configReference = Reference{
		Title: "Payload CMS Configuration Documentation",
		URL:   "https://payloadcms.com/docs/configuration/overview",
	}
)

// Validate runs static structural checks against code for the given file
// type (collection, field, global, config).
func Validate(code, fileType string) (ValidationResult, error) {
	switch fileType {
	case "collection":
		return validateCollection(code), nil
	case "field":
		return validateField(code), nil
	case "global":
		return validateGlobal(code), nil
	case "config":
		return validateConfig(code), nil
	default:
		return ValidationResult{}, fmt.Errorf("unsupported file type %q: use collection, field, global or config", fileType)
	}
}

// parsePayloadObject extracts the object literal from code. Generated
// templates wrap the literal in import/const/export statements, so when
// the code is not a bare literal we slice from the assigned '{' (the one
// following '=') to the last '}'.
func parsePayloadObject(code string) (interface{}, error) {
	trimmed := strings.TrimSpace(code)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		start := -1
		for i := 0; i < len(trimmed)-1; i++ {
			if trimmed[i] != '=' {
				continue
			}
			j := i + 1
			for j < len(trimmed) && (trimmed[j] == ' ' || trimmed[j] == '\n' || trimmed[j] == '\t') {
				j++
			}
			if j < len(trimmed) && trimmed[j] == '{' {
				start = j
				break
			}
		}
		if start < 0 {
			start = strings.Index(trimmed, "{")
		}
		end := strings.LastIndex(trimmed, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no object literal found in code")
		}
		trimmed = trimmed[start : end+1]
	}
	value, err := ParseObjectLiteral(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse code as an object literal: %w", err)
	}
	return value, nil
}

func validateCollection(code string) ValidationResult {
	b := newResultBuilder(collectionReference)

	value, err := parsePayloadObject(code)
	if err != nil {
		return b.fail(err.Error())
	}
	if err := validateCollectionSchema(value); err != nil {
		return b.fail(err.Error())
	}

	m := value.(map[string]interface{})
	if slug, ok := m["slug"].(string); ok {
		b.checkName(slug)
	}

	if fields, ok := m["fields"].([]interface{}); ok {
		for _, f := range fields {
			field, ok := f.(map[string]interface{})
			if !ok {
				continue
			}
			name, _ := field["name"].(string)
			if name != "" {
				b.checkName(name)
			}

			lowered := strings.ToLower(name)
			if strings.Contains(lowered, "password") ||
				strings.Contains(lowered, "token") ||
				strings.Contains(lowered, "secret") {
				if !hasAccessRead(field) {
					b.warnf("sensitive-fields",
						"Sensitive field %q should have explicit read access control.", lowered)
				}
			}

			fieldType, _ := field["type"].(string)
			switch fieldType {
			case "text", "email", "textarea":
				unique, _ := field["unique"].(bool)
				indexed, _ := field["index"].(bool)
				if unique && !indexed {
					displayName := name
					if displayName == "" {
						displayName = "field"
					}
					b.warnf("indexed-fields",
						"Field %q is unique but not indexed. Consider adding 'index: true' for better performance.", displayName)
				}
			}
		}
	}

	if _, ok := m["access"]; !ok {
		b.warnf("access-control",
			"No access control defined. This might expose data to unauthorized users.")
	}

	if !hasAdminTitle(m) {
		b.suggest("Consider adding 'useAsTitle' to specify which field to use as the title in the admin UI.",
			"admin: { useAsTitle: 'title' }")
	}
	if ts, _ := m["timestamps"].(bool); !ts {
		b.suggest("Consider enabling timestamps to automatically track creation and update times.",
			"timestamps: true")
	}

	return b.build()
}

func validateField(code string) ValidationResult {
	b := newResultBuilder(fieldReference)

	value, err := parsePayloadObject(code)
	if err != nil {
		return b.fail(err.Error())
	}
	if err := validateFieldSchema(value); err != nil {
		return b.fail(err.Error())
	}

	m := value.(map[string]interface{})
	if name, ok := m["name"].(string); ok {
		b.checkName(name)
	}

	fieldType, _ := m["type"].(string)
	if fieldType == "relationship" {
		if _, ok := m["maxDepth"]; !ok {
			b.warnf("relationship-depth",
				"Relationship field without maxDepth could lead to deep queries. Consider adding a maxDepth limit.")
			b.suggest("Add maxDepth to limit relationship depth", "maxDepth: 1")
		}
	}

	if fieldType == "text" {
		required, _ := m["required"].(bool)
		if required {
			if _, ok := m["validate"]; !ok {
				b.suggest("Consider adding validation for required text fields",
					"validate: (value) => {\n  if (!value || value.trim() === '') {\n    return 'This field is required';\n  }\n  return true;\n}")
			}
		}
	}

	return b.build()
}

func validateGlobal(code string) ValidationResult {
	b := newResultBuilder(globalReference)

	value, err := parsePayloadObject(code)
	if err != nil {
		return b.fail(err.Error())
	}
	if err := validateGlobalSchema(value); err != nil {
		return b.fail(err.Error())
	}

	m := value.(map[string]interface{})
	if slug, ok := m["slug"].(string); ok {
		b.checkName(slug)
	}
	if fields, ok := m["fields"].([]interface{}); ok {
		for _, f := range fields {
			if field, ok := f.(map[string]interface{}); ok {
				if name, ok := field["name"].(string); ok {
					b.checkName(name)
				}
			}
		}
	}

	if _, ok := m["access"]; !ok {
		b.warnf("access-control",
			"No access control defined. This might expose data to unauthorized users.")
	}

	return b.build()
}

func validateConfig(code string) ValidationResult {
	b := newResultBuilder(configReference)

	value, err := parsePayloadObject(code)
	if err != nil {
		return b.fail(err.Error())
	}
	if err := validateConfigSchema(value); err != nil {
		return b.fail(err.Error())
	}

	m := value.(map[string]interface{})
	if _, ok := m["serverURL"]; !ok {
		b.result.Warnings = append(b.result.Warnings,
			"Missing serverURL in config. This is required for proper URL generation.")
		b.suggest("Add serverURL to your config", "serverURL: 'http://localhost:3000'")
	}
	if _, ok := m["admin"]; !ok {
		b.suggest("Consider configuring the admin panel",
			"admin: {\n  user: 'users',\n  meta: {\n    titleSuffix: '- My Payload App',\n    favicon: '/favicon.ico',\n  }\n}")
	}

	return b.build()
}

func hasAccessRead(field map[string]interface{}) bool {
	access, ok := field["access"].(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = access["read"]
	return ok
}

func hasAdminTitle(m map[string]interface{}) bool {
	admin, ok := m["admin"].(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = admin["useAsTitle"]
	return ok
}
