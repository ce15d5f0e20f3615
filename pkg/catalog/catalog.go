// Package catalog holds the in-memory validation rule catalog. The catalog
// is loaded once at startup and is read-only for the life of the process.
package catalog

import "fmt"

// RuleRecord is one validation rule flattened to a single file type.
type RuleRecord struct {
	ID          string `json:"id"`
	FileType    string `json:"file_type"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
}

// FieldNames lists the queryable attributes of a RuleRecord, in their
// canonical projection order.
var FieldNames = []string{"id", "file_type", "category", "severity", "description", "example"}

// Field returns the named attribute of the record. The second return is
// false for attributes that do not exist on RuleRecord.
func (r RuleRecord) Field(name string) (string, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "file_type":
		return r.FileType, true
	case "category":
		return r.Category, true
	case "severity":
		return r.Severity, true
	case "description":
		return r.Description, true
	case "example":
		return r.Example, true
	default:
		return "", false
	}
}

// HasField reports whether name is a RuleRecord attribute.
func HasField(name string) bool {
	for _, f := range FieldNames {
		if f == name {
			return true
		}
	}
	return false
}

// Catalog is an immutable set of rule records.
type Catalog struct {
	records []RuleRecord
}

// New builds a catalog from the given records. The slice is copied so
// later mutation by the caller cannot reach the catalog.
func New(records []RuleRecord) *Catalog {
	copied := make([]RuleRecord, len(records))
	copy(copied, records)
	return &Catalog{records: copied}
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Records returns a copy of all records.
func (c *Catalog) Records() []RuleRecord {
	out := make([]RuleRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Each calls fn for every record in catalog order.
func (c *Catalog) Each(fn func(RuleRecord)) {
	for _, r := range c.records {
		fn(r)
	}
}

// ByID returns every record sharing the given rule id. A rule applying to
// several file types is flattened into one record per type, all with the
// same id.
func (c *Catalog) ByID(id string) []RuleRecord {
	var out []RuleRecord
	for _, r := range c.records {
		if r.ID == id {
			out = append(out, r)
		}
	}
	return out
}

// Describe returns a short human-readable summary of the catalog.
func (c *Catalog) Describe() string {
	ids := make(map[string]struct{})
	for _, r := range c.records {
		ids[r.ID] = struct{}{}
	}
	return fmt.Sprintf("%d rules across %d records", len(ids), len(c.records))
}
