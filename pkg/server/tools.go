package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/catalog"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/mcperrors"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/payload"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/query"
)

// BuiltinConfig supplies the dependencies of the built-in tool set.
type BuiltinConfig struct {
	Catalog *catalog.Catalog
	Version string

	// Connections reports active connection counts per transport kind.
	// Used by the health tool; nil means no transports are running yet.
	Connections func() map[string]int
}

// RegisterBuiltins registers every built-in tool and resource. Call once
// during startup, before Freeze.
func RegisterBuiltins(s *Server, cfg BuiltinConfig) error {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.BuiltIn()
	}

	type reg struct {
		tool    protocol.Tool
		handler ToolHandler
	}
	regs := []reg{
		{echoTool(), echoHandler()},
		{healthTool(), healthHandler(s, cfg)},
		{validateTool(), validateHandler()},
		{queryTool(), queryHandler(cfg.Catalog)},
		{mcpQueryTool(), mcpQueryHandler(cfg.Catalog)},
		{generateTemplateTool(), generateTemplateHandler()},
		{generateCollectionTool(), generateCollectionHandler()},
		{generateFieldTool(), generateFieldHandler()},
		{scaffoldProjectTool(), scaffoldProjectHandler()},
		{connectPayloadTool(), connectPayloadHandler()},
		{getCollectionSchemaTool(), getCollectionSchemaHandler()},
		{listCollectionsTool(), listCollectionsHandler()},
		{validateAgainstLiveTool(), validateAgainstLiveHandler()},
	}
	for _, r := range regs {
		if err := s.Tools().Register(r.tool, r.handler); err != nil {
			return err
		}
	}
	return registerBuiltinResources(s)
}

func echoTool() protocol.Tool {
	return protocol.Tool{
		Name:        "echo",
		Description: "Echo a message back unchanged",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"message": {"type": "string", "description": "Message to echo"}
			},
			"required": ["message"]
		}`),
	}
}

func echoHandler() ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		var params struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, err
		}
		return protocol.NewToolResultText(params.Message), nil
	}
}

func healthTool() protocol.Tool {
	return protocol.Tool{
		Name:        "health",
		Description: "Report server version, uptime and active transports",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"verbose": {"type": "boolean", "description": "Include per-transport connection counts"}
			}
		}`),
	}
}

func healthHandler(s *Server, cfg BuiltinConfig) ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		var params struct {
			Verbose bool `json:"verbose"`
		}
		if len(args) > 0 {
			if err := json.Unmarshal(args, &params); err != nil {
				return nil, err
			}
		}

		var connections map[string]int
		if cfg.Connections != nil {
			connections = cfg.Connections()
		}
		transports := make([]string, 0, len(connections))
		for kind := range connections {
			transports = append(transports, kind)
		}

		result := map[string]interface{}{
			"status":        "ok",
			"version":       cfg.Version,
			"uptimeSeconds": int64(s.Uptime().Seconds()),
			"transports":    transports,
		}
		if params.Verbose {
			result["connections"] = connections
		}
		return protocol.NewToolResultJSON(result)
	}
}

func validateTool() protocol.Tool {
	return protocol.Tool{
		Name:        "validate",
		Description: "Validate Payload CMS code for a collection, field, global or config",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {"type": "string", "description": "The code to validate"},
				"file_type": {
					"type": "string",
					"enum": ["collection", "field", "global", "config"],
					"description": "What kind of Payload file the code represents"
				}
			},
			"required": ["code", "file_type"]
		}`),
	}
}

func validateHandler() ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		var params struct {
			Code     string `json:"code"`
			FileType string `json:"file_type"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, err
		}
		result, err := payload.Validate(params.Code, params.FileType)
		if err != nil {
			return nil, err
		}
		return protocol.NewToolResultJSON(result)
	}
}

func queryTool() protocol.Tool {
	return protocol.Tool{
		Name:        "query",
		Description: "Search the validation rule catalog by free text and filters",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Free-text search over rule descriptions"},
				"file_type": {"type": "string", "enum": ["collection", "field", "global", "config"]},
				"category": {"type": "string"},
				"severity": {"type": "string", "enum": ["error", "warning", "info"]}
			}
		}`),
	}
}

func queryHandler(cat *catalog.Catalog) ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		var params struct {
			Query    string `json:"query"`
			FileType string `json:"file_type"`
			Category string `json:"category"`
			Severity string `json:"severity"`
		}
		if len(args) > 0 {
			if err := json.Unmarshal(args, &params); err != nil {
				return nil, err
			}
		}
		hits := query.Search(cat, params.Query, query.Filters{
			FileType: params.FileType,
			Category: params.Category,
			Severity: params.Severity,
		})
		return protocol.NewToolResultJSON(map[string]interface{}{
			"rules": hits,
			"count": len(hits),
		})
	}
}

func mcpQueryTool() protocol.Tool {
	return protocol.Tool{
		Name:        "mcp_query",
		Description: "Run a constrained SELECT query against the rule catalog",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"sql": {"type": "string", "description": "SELECT statement over the rules table"}
			},
			"required": ["sql"]
		}`),
	}
}

func mcpQueryHandler(cat *catalog.Catalog) ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		var params struct {
			SQL string `json:"sql"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, err
		}

		result, err := query.Run(cat, params.SQL)
		if err != nil {
			switch {
			case query.IsFieldError(err):
				return nil, mcperrors.NewQueryError("FIELD_ERROR", err.Error())
			case query.IsParseError(err):
				return nil, mcperrors.NewQueryError("PARSE_ERROR", err.Error())
			default:
				return nil, err
			}
		}
		return protocol.NewToolResultJSON(result)
	}
}

func generateTemplateTool() protocol.Tool {
	return protocol.Tool{
		Name:        "generate_template",
		Description: "Generate TypeScript source for a Payload building block",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"template_type": {
					"type": "string",
					"enum": ["collection", "field", "global", "config", "access-control", "hook", "endpoint", "plugin", "block", "migration"]
				},
				"options": {"type": "object", "description": "Template-specific options"}
			},
			"required": ["template_type"]
		}`),
	}
}

func generateTemplateHandler() ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		var params struct {
			TemplateType string                 `json:"template_type"`
			Options      map[string]interface{} `json:"options"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, err
		}
		code, err := payload.GenerateTemplate(params.TemplateType, params.Options)
		if err != nil {
			return nil, err
		}
		return protocol.NewToolResultText(code), nil
	}
}

func generateCollectionTool() protocol.Tool {
	return protocol.Tool{
		Name:        "generate_collection",
		Description: "Generate a Payload collection config from structured options",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"slug": {"type": "string"},
				"fields": {"type": "array"},
				"auth": {"type": "boolean"},
				"timestamps": {"type": "boolean"},
				"admin": {"type": "object"},
				"hooks": {"type": "boolean"},
				"access": {"type": "boolean"},
				"versions": {"type": "boolean"}
			},
			"required": ["slug"]
		}`),
	}
}

func generateCollectionHandler() ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		options, err := decodeOptions(args)
		if err != nil {
			return nil, err
		}
		code, err := payload.GenerateTemplate("collection", options)
		if err != nil {
			return nil, err
		}
		return protocol.NewToolResultText(code), nil
	}
}

func generateFieldTool() protocol.Tool {
	return protocol.Tool{
		Name:        "generate_field",
		Description: "Generate a Payload field definition",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string"},
				"type": {"type": "string"},
				"required": {"type": "boolean"},
				"unique": {"type": "boolean"},
				"localized": {"type": "boolean"},
				"access": {"type": "boolean"},
				"admin": {"type": "object"},
				"validation": {"type": "boolean"},
				"default_value": {"description": "Default value for the field"}
			},
			"required": ["name", "type"]
		}`),
	}
}

func generateFieldHandler() ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		options, err := decodeOptions(args)
		if err != nil {
			return nil, err
		}
		// The generator keys field options the way Payload spells them.
		if v, ok := options["default_value"]; ok {
			delete(options, "default_value")
			options["defaultValue"] = v
		}
		code, err := payload.GenerateTemplate("field", options)
		if err != nil {
			return nil, err
		}
		return protocol.NewToolResultText(code), nil
	}
}

func scaffoldProjectTool() protocol.Tool {
	return protocol.Tool{
		Name:        "scaffold_project",
		Description: "Scaffold a minimal Payload project layout",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"projectName": {"type": "string"},
				"outputDir": {"type": "string", "description": "Directory to write into; omit for a dry run"}
			},
			"required": ["projectName"]
		}`),
	}
}

func scaffoldProjectHandler() ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		var opts payload.ScaffoldOptions
		if err := json.Unmarshal(args, &opts); err != nil {
			return nil, err
		}
		result, err := payload.ScaffoldProject(opts)
		if err != nil {
			return nil, err
		}
		return protocol.NewToolResultJSON(result)
	}
}

func connectPayloadTool() protocol.Tool {
	return protocol.Tool{
		Name:        "connect_payload",
		Description: "Test the connection to a running Payload instance",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"connection_string": {"type": "string", "description": "Base URL or host:port of the instance"},
				"api_key": {"type": "string"}
			},
			"required": ["connection_string"]
		}`),
	}
}

func connectPayloadHandler() ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		var params liveParams
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, err
		}
		info, err := payload.NewClient(params.ConnectionString, params.APIKey).TestConnection(ctx)
		if err != nil {
			return nil, mcperrors.NewHandlerError("connect_payload", err)
		}
		return protocol.NewToolResultJSON(info)
	}
}

func getCollectionSchemaTool() protocol.Tool {
	return protocol.Tool{
		Name:        "get_collection_schema",
		Description: "Fetch a collection schema from a running Payload instance",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"connection_string": {"type": "string"},
				"slug": {"type": "string"},
				"api_key": {"type": "string"}
			},
			"required": ["connection_string", "slug"]
		}`),
	}
}

func getCollectionSchemaHandler() ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		var params liveParams
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, err
		}
		info, err := payload.NewClient(params.ConnectionString, params.APIKey).GetCollection(ctx, params.Slug)
		if err != nil {
			return nil, mcperrors.NewHandlerError("get_collection_schema", err)
		}
		return protocol.NewToolResultJSON(info)
	}
}

func listCollectionsTool() protocol.Tool {
	return protocol.Tool{
		Name:        "list_collections",
		Description: "List the collections of a running Payload instance",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"connection_string": {"type": "string"},
				"api_key": {"type": "string"}
			},
			"required": ["connection_string"]
		}`),
	}
}

func listCollectionsHandler() ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		var params liveParams
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, err
		}
		slugs, err := payload.NewClient(params.ConnectionString, params.APIKey).ListCollections(ctx)
		if err != nil {
			return nil, mcperrors.NewHandlerError("list_collections", err)
		}
		return protocol.NewToolResultJSON(map[string]interface{}{
			"collections": slugs,
			"count":       len(slugs),
		})
	}
}

func validateAgainstLiveTool() protocol.Tool {
	return protocol.Tool{
		Name:        "validate_against_live",
		Description: "Compare a collection config against a running Payload instance",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"connection_string": {"type": "string"},
				"slug": {"type": "string"},
				"config": {"type": "object"},
				"api_key": {"type": "string"}
			},
			"required": ["connection_string", "slug", "config"]
		}`),
	}
}

func validateAgainstLiveHandler() ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		var params struct {
			liveParams
			Config map[string]interface{} `json:"config"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, err
		}
		issues, err := payload.NewClient(params.ConnectionString, params.APIKey).
			ValidateCollectionConfig(ctx, params.Slug, params.Config)
		if err != nil {
			return nil, mcperrors.NewHandlerError("validate_against_live", err)
		}
		return protocol.NewToolResultJSON(map[string]interface{}{
			"slug":   params.Slug,
			"issues": issues,
			"valid":  len(issues) == 0,
		})
	}
}

type liveParams struct {
	ConnectionString string `json:"connection_string"`
	Slug             string `json:"slug"`
	APIKey           string `json:"api_key"`
}

func decodeOptions(args json.RawMessage) (map[string]interface{}, error) {
	options := map[string]interface{}{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &options); err != nil {
			return nil, fmt.Errorf("options must be a JSON object: %w", err)
		}
	}
	return options, nil
}
