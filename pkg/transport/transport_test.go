package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/server"
)

func newDispatcher(t *testing.T) *server.Server {
	t.Helper()
	s := server.NewServer(server.WithVersion("test"))
	require.NoError(t, server.RegisterBuiltins(s, server.BuiltinConfig{Version: "test"}))
	s.Freeze()
	return s
}

const initFrame = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"clientInfo":{"name":"test","version":"0"}}}`

func echoFrame(id int, message string) string {
	return fmt.Sprintf(
		`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":"echo","arguments":{"message":%q}}}`,
		id, message)
}

func decodeResponse(t *testing.T, raw []byte) *protocol.Response {
	t.Helper()
	var resp protocol.Response
	require.NoError(t, json.Unmarshal(raw, &resp))
	return &resp
}

func TestStdioSequentialRoundTrip(t *testing.T) {
	input := initFrame + "\n" + echoFrame(2, "first") + "\n" + echoFrame(3, "second") + "\n"
	var out bytes.Buffer

	tr := NewStdioPipe(newDispatcher(t), strings.NewReader(input), &out, Options{})
	assert.Equal(t, "stdio", tr.Kind())
	require.NoError(t, tr.Start(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	resp := decodeResponse(t, []byte(lines[0]))
	assert.Nil(t, resp.Error)
	assert.Equal(t, float64(1), resp.ID)

	// sequential processing keeps responses in request order
	assert.Equal(t, float64(2), decodeResponse(t, []byte(lines[1])).ID)
	assert.Equal(t, float64(3), decodeResponse(t, []byte(lines[2])).ID)
}

func TestStdioSkipsNotificationsAndBlankLines(t *testing.T) {
	input := initFrame + "\n\n" +
		`{"jsonrpc":"2.0","method":"notifications/progress"}` + "\n" +
		echoFrame(2, "hi") + "\n"
	var out bytes.Buffer

	tr := NewStdioPipe(newDispatcher(t), strings.NewReader(input), &out, Options{})
	require.NoError(t, tr.Start(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestStdioStopsOnUnrecoverableFrame(t *testing.T) {
	input := initFrame + "\n" + `{"bogus` + "\n" + echoFrame(2, "never") + "\n"
	var out bytes.Buffer

	tr := NewStdioPipe(newDispatcher(t), strings.NewReader(input), &out, Options{})
	require.Error(t, tr.Start(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 1)
}

func startSocket(t *testing.T, tr *Socket) net.Addr {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("transport did not stop")
		}
	})

	require.Eventually(t, func() bool { return tr.Addr() != nil },
		2*time.Second, 10*time.Millisecond)
	return tr.Addr()
}

func TestTCPRoundTrip(t *testing.T) {
	tr := NewTCP("127.0.0.1:0", newDispatcher(t), Options{})
	addr := startSocket(t, tr)

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	reader := bufio.NewReaderSize(conn, maxFrameSize)

	fmt.Fprintln(conn, initFrame)
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)
	resp := decodeResponse(t, line)
	require.Nil(t, resp.Error)

	big := strings.Repeat("y", 64*1024)
	fmt.Fprintln(conn, echoFrame(2, big))
	line, err = reader.ReadBytes('\n')
	require.NoError(t, err)
	resp = decodeResponse(t, line)
	require.Nil(t, resp.Error)

	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, big, result.Content[0].Text)
}

func TestTCPParseErrorWithRecoverableID(t *testing.T) {
	tr := NewTCP("127.0.0.1:0", newDispatcher(t), Options{})
	addr := startSocket(t, tr)

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	fmt.Fprintln(conn, `{"jsonrpc":"2.0","id":9,"method":"ping","params":{`)
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	resp := decodeResponse(t, line)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ParseError, resp.Error.Code)
	assert.Equal(t, float64(9), resp.ID)
}

func TestTCPClosesOnUnrecoverableFrame(t *testing.T) {
	tr := NewTCP("127.0.0.1:0", newDispatcher(t), Options{})
	addr := startSocket(t, tr)

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	fmt.Fprintln(conn, `{"bogus`)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = bufio.NewReader(conn).ReadBytes('\n')
	require.Error(t, err, "connection should close without a response")
}

func TestTCPConnectionCount(t *testing.T) {
	tr := NewTCP("127.0.0.1:0", newDispatcher(t), Options{})
	addr := startSocket(t, tr)

	assert.Equal(t, 0, tr.ConnectionCount())

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return tr.ConnectionCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return tr.ConnectionCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestUnixSocketRoundTrip(t *testing.T) {
	path := t.TempDir() + "/mcp.sock"
	tr := NewUnix(path, newDispatcher(t), Options{})
	assert.Equal(t, "unix", tr.Kind())
	startSocket(t, tr)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	fmt.Fprintln(conn, initFrame)
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)
	assert.Nil(t, decodeResponse(t, line).Error)
}
