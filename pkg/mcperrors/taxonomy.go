package mcperrors

import (
	"fmt"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
)

// FieldError is one field-level violation reported by input validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewConfigurationError reports an unusable startup configuration. It is
// the only error category that terminates the process.
func NewConfigurationError(message string) MCPError {
	return NewError(protocol.InternalError, message, CategoryConfiguration, SeverityCritical)
}

// NewConfigurationErrorf is NewConfigurationError with formatting.
func NewConfigurationErrorf(format string, args ...interface{}) MCPError {
	return NewConfigurationError(fmt.Sprintf(format, args...))
}

// NewParseError reports malformed JSON received on a transport.
func NewParseError(detail string) MCPError {
	return NewError(protocol.ParseError, "Parse error", CategoryProtocol, SeverityError).
		WithDetail(detail)
}

// NewInvalidRequest reports a structurally invalid JSON-RPC request.
func NewInvalidRequest(detail string) MCPError {
	return NewError(protocol.InvalidRequest, "Invalid Request", CategoryProtocol, SeverityError).
		WithDetail(detail)
}

// NewMethodNotFound reports an unknown method name.
func NewMethodNotFound(method string) MCPError {
	return NewErrorf(protocol.MethodNotFound, CategoryProtocol, SeverityError,
		"Method not found: %s", method)
}

// NewNotInitialized reports a request that arrived before initialize.
func NewNotInitialized(method string) MCPError {
	return NewErrorf(protocol.NotInitialized, CategoryProtocol, SeverityError,
		"Session not initialized: %s requires a prior initialize", method)
}

// NewInvalidParams reports parameters that could not be decoded at all.
func NewInvalidParams(method string, detail string) MCPError {
	return NewErrorf(protocol.InvalidParams, CategoryValidation, SeverityError,
		"Invalid params for %s", method).WithDetail(detail)
}

// NewValidationError reports tool arguments that failed schema validation.
// The offending fields travel in the error data so callers can repair the
// call without guessing.
func NewValidationError(tool string, fields []FieldError) MCPError {
	return NewErrorf(protocol.ValidationFailed, CategoryValidation, SeverityError,
		"Invalid arguments for tool %s", tool).
		WithData(map[string]interface{}{"fields": fields})
}

// NewToolNotFound reports a tools/call for an unregistered tool.
func NewToolNotFound(name string) MCPError {
	return NewErrorf(protocol.ToolNotFound, CategoryNotFound, SeverityError,
		"Tool not found: %s", name)
}

// NewResourceNotFound reports a resources/read for an unknown uri.
func NewResourceNotFound(uri string) MCPError {
	return NewErrorf(protocol.ResourceNotFound, CategoryNotFound, SeverityError,
		"Resource not found: %s", uri)
}

// NewQueryError reports a rejected or failed catalog query. stage names
// the terminal state the query reached (PARSE_ERROR or FIELD_ERROR).
func NewQueryError(stage string, detail string) MCPError {
	return NewError(protocol.QueryFailed, "Query failed", CategoryQuery, SeverityError).
		WithDetail(detail).
		WithData(map[string]interface{}{"stage": stage})
}

// NewHandlerError wraps a tool handler failure. The connection stays open;
// the failure is reported to the caller only.
func NewHandlerError(tool string, cause error) MCPError {
	return WrapError(cause, protocol.HandlerFailed,
		fmt.Sprintf("Tool %s failed", tool), CategoryHandler, SeverityError).
		WithDetail(cause.Error())
}

// NewTransportError wraps a transport-level failure.
func NewTransportError(kind string, cause error) MCPError {
	return WrapError(cause, protocol.InternalError,
		fmt.Sprintf("Transport %s failed", kind), CategoryTransport, SeverityError)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(cause error) MCPError {
	return WrapError(cause, protocol.InternalError, "Internal error",
		CategoryInternal, SeverityError)
}
