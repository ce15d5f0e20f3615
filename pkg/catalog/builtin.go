package catalog

// Severity levels used by the built-in rules.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// File types a rule can apply to.
const (
	FileTypeCollection = "collection"
	FileTypeField      = "field"
	FileTypeGlobal     = "global"
	FileTypeConfig     = "config"
)

type ruleDef struct {
	id          string
	category    string
	severity    string
	description string
	example     string
	fileTypes   []string
}

var builtinRules = []ruleDef{
	{
		id:          "naming-conventions",
		category:    "best-practices",
		severity:    SeverityInfo,
		description: "Names should follow consistent conventions (camelCase or snake_case)",
		example:     "myField",
		fileTypes:   []string{FileTypeCollection, FileTypeField, FileTypeGlobal, FileTypeConfig},
	},
	{
		id:          "reserved-words",
		category:    "best-practices",
		severity:    SeverityInfo,
		description: "Avoid using JavaScript reserved words for names",
		example:     "title",
		fileTypes:   []string{FileTypeCollection, FileTypeField, FileTypeGlobal, FileTypeConfig},
	},
	{
		id:          "access-control",
		category:    "security",
		severity:    SeverityError,
		description: "Define access control for collections and fields",
		example:     "access: { read: () => true, update: () => true }",
		fileTypes:   []string{FileTypeCollection, FileTypeField, FileTypeGlobal},
	},
	{
		id:          "sensitive-fields",
		category:    "security",
		severity:    SeverityError,
		description: "Sensitive fields should have explicit read access control",
		example:     `{ name: "password", type: "text", access: { read: () => false } }`,
		fileTypes:   []string{FileTypeField},
	},
	{
		id:          "indexed-fields",
		category:    "performance",
		severity:    SeverityWarning,
		description: "Fields used for searching or filtering should be indexed",
		example:     `{ name: "email", type: "email", index: true }`,
		fileTypes:   []string{FileTypeField},
	},
	{
		id:          "relationship-depth",
		category:    "performance",
		severity:    SeverityWarning,
		description: "Relationship fields should have a maxDepth to prevent deep queries",
		example:     `{ type: "relationship", relationTo: "posts", maxDepth: 1 }`,
		fileTypes:   []string{FileTypeField},
	},
	{
		id:          "field-validation",
		category:    "data-integrity",
		severity:    SeverityError,
		description: "Required fields should have validation",
		example:     `{ name: "title", type: "text", required: true, validate: (value) => value ? true : "Required" }`,
		fileTypes:   []string{FileTypeField},
	},
	{
		id:          "timestamps",
		category:    "best-practices",
		severity:    SeverityInfo,
		description: "Collections should have timestamps enabled",
		example:     `{ slug: "posts", timestamps: true }`,
		fileTypes:   []string{FileTypeCollection},
	},
	{
		id:          "admin-ui",
		category:    "usability",
		severity:    SeverityInfo,
		description: "Collections should specify which field to use as title in admin UI",
		example:     `{ admin: { useAsTitle: "title" } }`,
		fileTypes:   []string{FileTypeCollection},
	},
}

// BuiltIn returns the catalog of built-in Payload validation rules. Rules
// that apply to several file types are flattened into one record per type.
func BuiltIn() *Catalog {
	var records []RuleRecord
	for _, def := range builtinRules {
		for _, ft := range def.fileTypes {
			records = append(records, RuleRecord{
				ID:          def.id,
				FileType:    ft,
				Category:    def.category,
				Severity:    def.severity,
				Description: def.description,
				Example:     def.example,
			})
		}
	}
	return New(records)
}
