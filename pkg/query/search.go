package query

import (
	"strings"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/catalog"
)

// Filters are the explicit equality filters accepted by free-text search.
// Empty values match everything.
type Filters struct {
	FileType string
	Category string
	Severity string
}

// Search runs a case-insensitive substring search over description,
// category and file_type, ANDed with the explicit filters.
func Search(cat *catalog.Catalog, text string, filters Filters) []catalog.RuleRecord {
	needle := strings.ToLower(strings.TrimSpace(text))

	var out []catalog.RuleRecord
	cat.Each(func(r catalog.RuleRecord) {
		if filters.FileType != "" && r.FileType != filters.FileType {
			return
		}
		if filters.Category != "" && r.Category != filters.Category {
			return
		}
		if filters.Severity != "" && r.Severity != filters.Severity {
			return
		}
		if needle != "" {
			haystack := strings.ToLower(r.Description + " " + r.Category + " " + r.FileType)
			if !strings.Contains(haystack, needle) {
				return
			}
		}
		out = append(out, r)
	})
	return out
}
