package mcperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
)

func TestTaxonomyCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      MCPError
		code     protocol.ErrorCode
		category Category
	}{
		{"configuration", NewConfigurationError("no transports"), protocol.InternalError, CategoryConfiguration},
		{"parse", NewParseError("unexpected end of input"), protocol.ParseError, CategoryProtocol},
		{"method not found", NewMethodNotFound("tools/destroy"), protocol.MethodNotFound, CategoryProtocol},
		{"not initialized", NewNotInitialized("ping"), protocol.NotInitialized, CategoryProtocol},
		{"validation", NewValidationError("echo", nil), protocol.ValidationFailed, CategoryValidation},
		{"tool not found", NewToolNotFound("nope"), protocol.ToolNotFound, CategoryNotFound},
		{"resource not found", NewResourceNotFound("payload://missing"), protocol.ResourceNotFound, CategoryNotFound},
		{"query", NewQueryError("PARSE_ERROR", "unknown keyword LIMIT"), protocol.QueryFailed, CategoryQuery},
		{"handler", NewHandlerError("health", errors.New("boom")), protocol.HandlerFailed, CategoryHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code())
			assert.Equal(t, tt.category, tt.err.Category())
		})
	}
}

func TestValidationErrorCarriesFields(t *testing.T) {
	err := NewValidationError("generate_field", []FieldError{
		{Field: "name", Message: "required"},
		{Field: "type", Message: "must be one of the field types"},
	})

	data, ok := err.Data().(map[string]interface{})
	require.True(t, ok)
	fields, ok := data["fields"].([]FieldError)
	require.True(t, ok)
	require.Len(t, fields, 2)
	assert.Equal(t, "name", fields[0].Field)
}

func TestQueryErrorStage(t *testing.T) {
	err := NewQueryError("FIELD_ERROR", "unknown field owner")

	data, ok := err.Data().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "FIELD_ERROR", data["stage"])
	assert.Contains(t, err.Error(), "unknown field owner")
}

func TestWithDetailAppends(t *testing.T) {
	base := NewParseError("first")
	detailed := base.WithDetail("second")

	assert.Contains(t, detailed.Details(), "first")
	assert.Contains(t, detailed.Details(), "second")
	// the original is unchanged
	assert.Equal(t, "first", base.Details())
}

func TestHandlerErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewHandlerError("connect_payload", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, SeverityError, err.Severity())
}

func TestToProtocolError(t *testing.T) {
	pe := ToProtocolError(NewToolNotFound("ghost"))
	require.NotNil(t, pe)
	assert.Equal(t, protocol.ToolNotFound, pe.Code)
	assert.Contains(t, pe.Message, "ghost")

	// plain errors become internal errors
	pe = ToProtocolError(errors.New("plain"))
	assert.Equal(t, protocol.InternalError, pe.Code)
}

func TestToResponse(t *testing.T) {
	resp, err := ToResponse(42, NewNotInitialized("tools/list"))
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.NotInitialized, resp.Error.Code)
	assert.Equal(t, 42, resp.ID)

	_, err = ToResponse(1, nil)
	assert.Error(t, err)
}

func TestFromProtocolErrorRoundTrip(t *testing.T) {
	orig := NewQueryError("PARSE_ERROR", "bad token")
	back := FromProtocolError(ToProtocolError(orig))

	assert.Equal(t, orig.Code(), back.Code())
	assert.Equal(t, CategoryQuery, back.Category())
}
