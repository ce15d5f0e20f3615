package server

import (
	"context"
	"encoding/json"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/payload"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
)

const instructionsText = `# Payload CMS MCP Server

This server exposes Payload CMS code generation and validation tools.

## Tools

- validate: structural validation for collection, field, global and
  config code. Returns errors, warnings, suggestions and the ids of the
  violated rules.
- query: free-text search over the validation rule catalog, filterable
  by file_type, category and severity.
- mcp_query: a constrained SELECT language over the rule catalog.
  Example: SELECT category, COUNT(*) FROM rules GROUP BY category.
- generate_template: TypeScript templates for ten Payload building
  blocks (collection, field, global, config, access-control, hook,
  endpoint, plugin, block, migration).
- generate_collection / generate_field: shorthand generators.
- scaffold_project: minimal project layout; writes to disk only when
  outputDir is supplied.
- connect_payload, get_collection_schema, list_collections,
  validate_against_live: talk to a running Payload instance.

## Workflow

Generate code with generate_template, then run validate on the result
before committing it to a project.
`

func registerBuiltinResources(s *Server) error {
	resources := s.Resources()

	err := resources.Register(protocol.Resource{
		URI:         "file://instructions",
		Name:        "Usage instructions",
		Description: "How to use the Payload CMS tools on this server",
		MimeType:    "text/markdown",
	}, func(ctx context.Context) (*protocol.ResourceContents, error) {
		return &protocol.ResourceContents{Text: instructionsText}, nil
	})
	if err != nil {
		return err
	}

	err = resources.Register(protocol.Resource{
		URI:         "payload://templates",
		Name:        "Template catalog",
		Description: "Supported template types and their option keys",
		MimeType:    "application/json",
	}, func(ctx context.Context) (*protocol.ResourceContents, error) {
		descriptor := map[string]interface{}{
			"templateTypes": payload.TemplateTypes,
			"fieldTypes":    payload.FieldTypes,
			"options": map[string]interface{}{
				"collection": []string{"slug", "fields", "auth", "timestamps", "admin", "hooks", "access", "versions"},
				"field":      []string{"name", "type", "required", "unique", "localized", "access", "admin", "validation", "default_value"},
				"global":     []string{"slug", "fields", "access", "versions", "admin"},
				"config":     []string{"serverURL", "collections", "globals", "plugins", "db", "admin"},
			},
		}
		text, err := json.MarshalIndent(descriptor, "", "  ")
		if err != nil {
			return nil, err
		}
		return &protocol.ResourceContents{Text: string(text)}, nil
	})
	if err != nil {
		return err
	}

	return resources.Register(protocol.Resource{
		URI:         "payload://scaffold",
		Name:        "Scaffold descriptor",
		Description: "Files produced by scaffold_project",
		MimeType:    "application/json",
	}, func(ctx context.Context) (*protocol.ResourceContents, error) {
		descriptor := map[string]interface{}{
			"options": map[string]string{
				"projectName": "required, name of the project directory",
				"outputDir":   "optional, parent directory to write into",
			},
			"files": []string{"README.md", "src/index.js"},
		}
		text, err := json.MarshalIndent(descriptor, "", "  ")
		if err != nil {
			return nil, err
		}
		return &protocol.ResourceContents{Text: string(text)}, nil
	})
}
