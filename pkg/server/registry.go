package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/mcperrors"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
)

// ToolHandler executes a tool call with already schema-validated
// arguments.
type ToolHandler func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error)

type registeredTool struct {
	tool    protocol.Tool
	schema  *inputSchema
	handler ToolHandler
}

// ToolRegistry holds the server's tools. Registration happens during
// startup; Freeze makes the registry immutable before serving begins.
type ToolRegistry struct {
	mu     sync.RWMutex
	tools  map[string]registeredTool
	order  []string
	frozen bool
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]registeredTool)}
}

// Register adds a tool. The input schema is compiled eagerly so malformed
// schemas fail at startup, not at call time.
func (r *ToolRegistry) Register(tool protocol.Tool, handler ToolHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("tool registry is frozen")
	}
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name)
	}
	if handler == nil {
		return fmt.Errorf("tool %q has no handler", tool.Name)
	}

	schema, err := compileInputSchema(tool.InputSchema)
	if err != nil {
		return fmt.Errorf("tool %q has an invalid input schema: %w", tool.Name, err)
	}

	r.tools[tool.Name] = registeredTool{tool: tool, schema: schema, handler: handler}
	r.order = append(r.order, tool.Name)
	return nil
}

// Freeze locks the registry against further registration.
func (r *ToolRegistry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// List returns tool definitions in registration order.
func (r *ToolRegistry) List() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]protocol.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].tool)
	}
	return out
}

// Call validates arguments against the tool's schema and invokes its
// handler. Validation failure returns before the handler runs.
func (r *ToolRegistry) Call(ctx context.Context, name string, args json.RawMessage) (*protocol.CallToolResult, error) {
	r.mu.RLock()
	entry, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, mcperrors.NewToolNotFound(name)
	}
	if fields := entry.schema.validate(args); len(fields) > 0 {
		return nil, mcperrors.NewValidationError(name, fields)
	}
	return entry.handler(ctx, args)
}

// ResourceProvider produces the contents for a registered resource.
type ResourceProvider func(ctx context.Context) (*protocol.ResourceContents, error)

type registeredResource struct {
	resource protocol.Resource
	provider ResourceProvider
}

// ResourceRegistry holds the server's resources, frozen before serving
// like the tool registry.
type ResourceRegistry struct {
	mu        sync.RWMutex
	resources map[string]registeredResource
	order     []string
	frozen    bool
}

// NewResourceRegistry creates an empty registry.
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{resources: make(map[string]registeredResource)}
}

// Register adds a resource keyed by URI.
func (r *ResourceRegistry) Register(resource protocol.Resource, provider ResourceProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("resource registry is frozen")
	}
	if resource.URI == "" {
		return fmt.Errorf("resource URI is required")
	}
	if _, exists := r.resources[resource.URI]; exists {
		return fmt.Errorf("resource %q already registered", resource.URI)
	}
	if provider == nil {
		return fmt.Errorf("resource %q has no provider", resource.URI)
	}

	r.resources[resource.URI] = registeredResource{resource: resource, provider: provider}
	r.order = append(r.order, resource.URI)
	return nil
}

// Freeze locks the registry.
func (r *ResourceRegistry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// List returns resource definitions in registration order.
func (r *ResourceRegistry) List() []protocol.Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]protocol.Resource, 0, len(r.order))
	for _, uri := range r.order {
		out = append(out, r.resources[uri].resource)
	}
	return out
}

// Read resolves a resource's contents by URI.
func (r *ResourceRegistry) Read(ctx context.Context, uri string) (*protocol.ResourceContents, error) {
	r.mu.RLock()
	entry, ok := r.resources[uri]
	r.mu.RUnlock()

	if !ok {
		return nil, mcperrors.NewResourceNotFound(uri)
	}
	contents, err := entry.provider(ctx)
	if err != nil {
		return nil, err
	}
	if contents.URI == "" {
		contents.URI = uri
	}
	if contents.MimeType == "" {
		contents.MimeType = entry.resource.MimeType
	}
	return contents, nil
}
