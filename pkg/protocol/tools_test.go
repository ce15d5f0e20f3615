package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToolResultText(t *testing.T) {
	res := NewToolResultText("hello")
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	assert.Equal(t, "hello", res.Content[0].Text)
	assert.False(t, res.IsError)
}

func TestNewToolResultJSON(t *testing.T) {
	res, err := NewToolResultJSON(map[string]interface{}{"valid": true})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &decoded))
	assert.Equal(t, true, decoded["valid"])
}

func TestToolWireShape(t *testing.T) {
	tool := Tool{
		Name:        "echo",
		Description: "Echo a message back",
		InputSchema: json.RawMessage(`{"type":"object"}`),
	}

	data, err := json.Marshal(tool)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"name":"echo","description":"Echo a message back","inputSchema":{"type":"object"}}`,
		string(data))
}

func TestCallToolParamsDecoding(t *testing.T) {
	raw := `{"name":"validate","arguments":{"code":"{}","file_type":"collection"}}`

	var params CallToolParams
	require.NoError(t, json.Unmarshal([]byte(raw), &params))
	assert.Equal(t, "validate", params.Name)

	var args map[string]string
	require.NoError(t, json.Unmarshal(params.Arguments, &args))
	assert.Equal(t, "collection", args["file_type"])
}
