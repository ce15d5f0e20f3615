package mcperrors

import (
	"fmt"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
)

// ToProtocolError converts any error to a JSON-RPC error object. Errors
// that are not MCPErrors are reported as internal errors.
func ToProtocolError(err error) *protocol.Error {
	if err == nil {
		return nil
	}
	if mcpErr, ok := AsMCPError(err); ok {
		return &protocol.Error{
			Code:    mcpErr.Code(),
			Message: mcpErr.Message(),
			Data:    mcpErr.Data(),
		}
	}
	return &protocol.Error{
		Code:    protocol.InternalError,
		Message: err.Error(),
	}
}

// ToResponse converts any error to a JSON-RPC error response for the
// given request id.
func ToResponse(id interface{}, err error) (*protocol.Response, error) {
	if err == nil {
		return nil, fmt.Errorf("cannot build an error response from a nil error")
	}
	pe := ToProtocolError(err)
	return protocol.NewErrorResponse(id, pe.Code, pe.Message, pe.Data)
}

// FromProtocolError converts a JSON-RPC error object back into an MCPError.
func FromProtocolError(pe *protocol.Error) MCPError {
	if pe == nil {
		return nil
	}
	err := NewError(pe.Code, pe.Message, categoryForCode(pe.Code), SeverityError)
	if pe.Data != nil {
		err = err.WithData(pe.Data)
	}
	return err
}

func categoryForCode(code protocol.ErrorCode) Category {
	switch code {
	case protocol.ParseError, protocol.InvalidRequest, protocol.MethodNotFound, protocol.NotInitialized:
		return CategoryProtocol
	case protocol.InvalidParams, protocol.ValidationFailed:
		return CategoryValidation
	case protocol.ToolNotFound, protocol.ResourceNotFound:
		return CategoryNotFound
	case protocol.QueryFailed:
		return CategoryQuery
	case protocol.HandlerFailed:
		return CategoryHandler
	default:
		return CategoryInternal
	}
}
