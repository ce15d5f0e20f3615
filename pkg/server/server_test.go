package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(WithName("payload-mcp"), WithVersion("1.0.0"))
	require.NoError(t, RegisterBuiltins(s, BuiltinConfig{Version: "1.0.0"}))
	s.Freeze()
	return s
}

func mustRequest(t *testing.T, id interface{}, method string, params interface{}) *protocol.Request {
	t.Helper()
	req, err := protocol.NewRequest(id, method, params)
	require.NoError(t, err)
	return req
}

func initSession(t *testing.T, s *Server, sess *Session) {
	t.Helper()
	resp := s.Dispatch(context.Background(), sess, mustRequest(t, 1, protocol.MethodInitialize,
		protocol.InitializeParams{
			ProtocolVersion: protocol.ProtocolVersion,
			ClientInfo:      protocol.ClientInfo{Name: "test-client", Version: "0.1"},
		}))
	require.Nil(t, resp.Error)
	require.True(t, sess.Initialized())
}

func callTool(t *testing.T, s *Server, sess *Session, name string, args interface{}) *protocol.Response {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return s.Dispatch(context.Background(), sess, mustRequest(t, 2, protocol.MethodCallTool,
		protocol.CallToolParams{Name: name, Arguments: raw}))
}

func decodeToolResult(t *testing.T, resp *protocol.Response) protocol.CallToolResult {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	return result
}

func TestInitializeFirstEnforcedOnEveryMethod(t *testing.T) {
	s := newTestServer(t)

	methods := []string{
		protocol.MethodPing,
		protocol.MethodListTools,
		protocol.MethodCallTool,
		protocol.MethodListResources,
		protocol.MethodReadResource,
	}
	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			sess := NewSession("test")
			resp := s.Dispatch(context.Background(), sess, mustRequest(t, 1, method, nil))
			require.NotNil(t, resp.Error)
			assert.Equal(t, protocol.NotInitialized, resp.Error.Code)
		})
	}
}

func TestInitializeResult(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")

	resp := s.Dispatch(context.Background(), sess, mustRequest(t, 1, protocol.MethodInitialize,
		protocol.InitializeParams{ClientInfo: protocol.ClientInfo{Name: "client"}}))
	require.Nil(t, resp.Error)

	var result protocol.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))

	assert.Equal(t, protocol.ProtocolVersion, result.ProtocolVersion)
	assert.Equal(t, "payload-mcp", result.ServerInfo.Name)
	assert.NotNil(t, result.Capabilities.Tools)
	assert.NotNil(t, result.Capabilities.Resources)
	assert.NotEmpty(t, result.Tools)
	assert.NotEmpty(t, result.Resources)
	assert.Equal(t, "client", sess.ClientInfo().Name)
}

func TestPingAfterInitialize(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := s.Dispatch(context.Background(), sess, mustRequest(t, 2, protocol.MethodPing, nil))
	assert.Nil(t, resp.Error)
	assert.Equal(t, "{}", string(resp.Result))
}

func TestUnknownMethod(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := s.Dispatch(context.Background(), sess, mustRequest(t, 2, "tools/destroy", nil))
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.MethodNotFound, resp.Error.Code)
}

func TestEchoRoundTrip(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := callTool(t, s, sess, "echo", map[string]string{"message": "hello"})
	result := decodeToolResult(t, resp)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "hello", result.Content[0].Text)
}

func TestEchoLargePayload(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	big := strings.Repeat("x", 64*1024)
	resp := callTool(t, s, sess, "echo", map[string]string{"message": big})
	result := decodeToolResult(t, resp)
	require.Len(t, result.Content, 1)
	assert.Equal(t, big, result.Content[0].Text)
}

func TestCallUnknownTool(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := callTool(t, s, sess, "transmogrify", map[string]string{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ToolNotFound, resp.Error.Code)
}

func TestSchemaValidationRejectsBeforeHandler(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	// message is required and must be a string
	resp := callTool(t, s, sess, "echo", map[string]interface{}{"message": 42})
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ValidationFailed, resp.Error.Code)

	data, err := json.Marshal(resp.Error.Data)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message"`)

	resp = callTool(t, s, sess, "echo", map[string]interface{}{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ValidationFailed, resp.Error.Code)
}

func TestSchemaEnumRejected(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := callTool(t, s, sess, "validate", map[string]string{
		"code":      "{}",
		"file_type": "widget",
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ValidationFailed, resp.Error.Code)
}

func TestValidateTool(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := callTool(t, s, sess, "validate", map[string]string{
		"code":      "{ slug: 'posts', access: {}, fields: [{ name: 'title', type: 'text' }] }",
		"file_type": "collection",
	})
	result := decodeToolResult(t, resp)
	require.Len(t, result.Content, 1)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &report))
	assert.Equal(t, true, report["valid"])
}

func TestToolParamNamesAreSnakeCase(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := callTool(t, s, sess, "validate", map[string]string{
		"code":      "{ slug: 'posts', fields: [] }",
		"file_type": "collection",
	})
	require.Nil(t, resp.Error)
	require.NotEmpty(t, decodeToolResult(t, resp).Content)

	resp = callTool(t, s, sess, "generate_template", map[string]interface{}{
		"template_type": "collection",
		"options":       map[string]interface{}{"slug": "posts"},
	})
	require.Nil(t, resp.Error)
	assert.Contains(t, decodeToolResult(t, resp).Content[0].Text, "slug: 'posts'")

	resp = callTool(t, s, sess, "generate_field", map[string]interface{}{
		"name":          "status",
		"type":          "text",
		"default_value": "draft",
	})
	require.Nil(t, resp.Error)
	assert.Contains(t, decodeToolResult(t, resp).Content[0].Text, "defaultValue: 'draft',")
}

func TestQueryToolSearch(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := callTool(t, s, sess, "query", map[string]string{"severity": "error"})
	result := decodeToolResult(t, resp)

	var report struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &report))
	assert.Greater(t, report.Count, 0)
}

func TestMcpQueryTool(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := callTool(t, s, sess, "mcp_query", map[string]string{
		"sql": "SELECT category, COUNT(*) FROM rules GROUP BY category",
	})
	result := decodeToolResult(t, resp)
	assert.Contains(t, result.Content[0].Text, "count")
}

func TestMcpQueryToolRejectsBadSQL(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := callTool(t, s, sess, "mcp_query", map[string]string{"sql": "DELETE FROM rules"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.QueryFailed, resp.Error.Code)

	data, err := json.Marshal(resp.Error.Data)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PARSE_ERROR")
}

func TestGenerateFieldValidatesRoundTrip(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	genResp := callTool(t, s, sess, "generate_field", map[string]interface{}{
		"name": "title",
		"type": "text",
	})
	code := decodeToolResult(t, genResp).Content[0].Text

	valResp := callTool(t, s, sess, "validate", map[string]string{
		"code":      code,
		"file_type": "field",
	})
	result := decodeToolResult(t, valResp)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &report))
	assert.Equal(t, true, report["valid"])
	assert.Empty(t, report["violatedRules"])
}

func TestHandlerPanicRecovered(t *testing.T) {
	s := NewServer()
	require.NoError(t, s.Tools().Register(protocol.Tool{
		Name:        "boom",
		Description: "panics",
	}, func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		panic("kaboom")
	}))
	s.Freeze()

	sess := NewSession("test")
	initSession(t, s, sess)

	resp := callTool(t, s, sess, "boom", map[string]string{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.HandlerFailed, resp.Error.Code)
}

func TestResourcesListAndRead(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := s.Dispatch(context.Background(), sess, mustRequest(t, 2, protocol.MethodListResources, nil))
	require.Nil(t, resp.Error)

	var list protocol.ListResourcesResult
	require.NoError(t, json.Unmarshal(resp.Result, &list))
	require.Len(t, list.Resources, 3)

	resp = s.Dispatch(context.Background(), sess, mustRequest(t, 3, protocol.MethodReadResource,
		protocol.ReadResourceParams{URI: "file://instructions"}))
	require.Nil(t, resp.Error)

	var read protocol.ReadResourceResult
	require.NoError(t, json.Unmarshal(resp.Result, &read))
	require.Len(t, read.Contents, 1)
	assert.Equal(t, "file://instructions", read.Contents[0].URI)
	assert.Equal(t, "text/markdown", read.Contents[0].MimeType)
	assert.Contains(t, read.Contents[0].Text, "validate")
}

func TestReadUnknownResource(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")
	initSession(t, s, sess)

	resp := s.Dispatch(context.Background(), sess, mustRequest(t, 2, protocol.MethodReadResource,
		protocol.ReadResourceParams{URI: "payload://nope"}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ResourceNotFound, resp.Error.Code)
}

func TestHandleMessageParseErrorWithRecoverableID(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")

	out, err := s.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","id":7,"method":"ping","params":{`))
	require.NoError(t, err)
	require.NotNil(t, out)

	var resp protocol.Response
	require.NoError(t, json.Unmarshal(out, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ParseError, resp.Error.Code)
	assert.Equal(t, float64(7), resp.ID)
}

func TestHandleMessageUnrecoverableFrame(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")

	out, err := s.HandleMessage(context.Background(), sess, []byte(`{"id": not-json`))
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestHandleMessageNotificationProducesNoResponse(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")

	out, err := s.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","method":"notifications/progress"}`))
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestHandleMessageFullCycle(t *testing.T) {
	s := newTestServer(t)
	sess := NewSession("test")

	out, err := s.HandleMessage(context.Background(), sess,
		[]byte(`{"jsonrpc":"2.0","id":"init-1","method":"initialize","params":{"clientInfo":{"name":"c","version":"1"}}}`))
	require.NoError(t, err)

	var resp protocol.Response
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Nil(t, resp.Error)
	assert.Equal(t, "init-1", resp.ID)
	assert.True(t, sess.Initialized())
}

func TestRegistryFrozenAfterServing(t *testing.T) {
	s := newTestServer(t)

	err := s.Tools().Register(protocol.Tool{Name: "late"}, func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
		return protocol.NewToolResultText("late"), nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frozen")
}
