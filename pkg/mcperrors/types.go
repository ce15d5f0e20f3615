// Package mcperrors provides structured error handling for the server.
// It defines error types that map to JSON-RPC error codes and carry
// enough context for debugging and programmatic handling.
package mcperrors

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
)

// Category classifies an error for handling decisions at the router
// boundary. Only CategoryConfiguration is fatal; every other category
// becomes a JSON-RPC error response.
type Category string

const (
	CategoryConfiguration Category = "configuration"
	CategoryProtocol      Category = "protocol"
	CategoryValidation    Category = "validation"
	CategoryNotFound      Category = "not_found"
	CategoryQuery         Category = "query"
	CategoryHandler       Category = "handler"
	CategoryTransport     Category = "transport"
	CategoryInternal      Category = "internal"
)

// Severity indicates how critical an error is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Context records where and when an error occurred
type Context struct {
	RequestID string    `json:"request_id,omitempty"`
	Method    string    `json:"method,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Tool      string    `json:"tool,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MCPError is the interface implemented by all server errors
type MCPError interface {
	error

	// Code returns the JSON-RPC error code
	Code() protocol.ErrorCode

	// Message returns a human-readable error message
	Message() string

	// Details returns detailed technical description for debugging
	Details() string

	// Data returns structured error data for programmatic handling
	Data() interface{}

	// Category returns the error category for classification
	Category() Category

	// Severity returns the error severity level
	Severity() Severity

	// Context returns the error context information
	Context() *Context

	// WithContext returns a new error with the provided context
	WithContext(ctx *Context) MCPError

	// WithDetail returns a new error with additional detail
	WithDetail(detail string) MCPError

	// WithData returns a new error with structured data
	WithData(data interface{}) MCPError

	// Unwrap returns the underlying error for error chain traversal
	Unwrap() error
}

type baseError struct {
	code     protocol.ErrorCode
	message  string
	details  string
	data     interface{}
	category Category
	severity Severity
	context  *Context
	cause    error
}

func (e *baseError) Error() string {
	if e.details != "" {
		return fmt.Sprintf("%s: %s", e.message, e.details)
	}
	return e.message
}

func (e *baseError) Code() protocol.ErrorCode { return e.code }
func (e *baseError) Message() string          { return e.message }
func (e *baseError) Details() string          { return e.details }
func (e *baseError) Data() interface{}        { return e.data }
func (e *baseError) Category() Category       { return e.category }
func (e *baseError) Severity() Severity       { return e.severity }
func (e *baseError) Context() *Context        { return e.context }
func (e *baseError) Unwrap() error            { return e.cause }

// WithContext returns a new error with the provided context
func (e *baseError) WithContext(ctx *Context) MCPError {
	newErr := *e
	newErr.context = ctx
	return &newErr
}

// WithDetail returns a new error with additional detail
func (e *baseError) WithDetail(detail string) MCPError {
	newErr := *e
	if newErr.details != "" {
		newErr.details = fmt.Sprintf("%s; %s", newErr.details, detail)
	} else {
		newErr.details = detail
	}
	return &newErr
}

// WithData returns a new error with structured data
func (e *baseError) WithData(data interface{}) MCPError {
	newErr := *e
	newErr.data = data
	return &newErr
}

// MarshalJSON implements json.Marshaler for baseError
func (e *baseError) MarshalJSON() ([]byte, error) {
	result := map[string]interface{}{
		"code":     e.code,
		"message":  e.message,
		"category": string(e.category),
		"severity": string(e.severity),
	}
	if e.details != "" {
		result["details"] = e.details
	}
	if e.data != nil {
		result["data"] = e.data
	}
	if e.context != nil {
		result["context"] = e.context
	}
	if e.cause != nil {
		result["cause"] = e.cause.Error()
	}
	return json.Marshal(result)
}

// NewError creates a new MCPError with the specified parameters
func NewError(code protocol.ErrorCode, message string, category Category, severity Severity) MCPError {
	return &baseError{
		code:     code,
		message:  message,
		category: category,
		severity: severity,
		context:  &Context{Timestamp: time.Now()},
	}
}

// NewErrorf creates a new MCPError with formatted message
func NewErrorf(code protocol.ErrorCode, category Category, severity Severity, format string, args ...interface{}) MCPError {
	return &baseError{
		code:     code,
		message:  fmt.Sprintf(format, args...),
		category: category,
		severity: severity,
		context:  &Context{Timestamp: time.Now()},
	}
}

// WrapError wraps an existing error as an MCPError
func WrapError(err error, code protocol.ErrorCode, message string, category Category, severity Severity) MCPError {
	return &baseError{
		code:     code,
		message:  message,
		category: category,
		severity: severity,
		cause:    err,
		context:  &Context{Timestamp: time.Now()},
	}
}

// AsMCPError extracts an MCPError from any error
func AsMCPError(err error) (MCPError, bool) {
	if err == nil {
		return nil, false
	}
	if mcpErr, ok := err.(MCPError); ok {
		return mcpErr, true
	}
	return nil, false
}

// IsMCPError checks if an error is an MCPError
func IsMCPError(err error) bool {
	_, ok := AsMCPError(err)
	return ok
}

// IsCategory checks if an error is of a specific category
func IsCategory(err error, category Category) bool {
	if mcpErr, ok := AsMCPError(err); ok {
		return mcpErr.Category() == category
	}
	return false
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code protocol.ErrorCode) bool {
	if mcpErr, ok := AsMCPError(err); ok {
		return mcpErr.Code() == code
	}
	return false
}
