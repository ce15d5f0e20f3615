package transport

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
)

// sseClient reads one event at a time from an open stream.
type sseClient struct {
	reader *bufio.Reader
}

func (c *sseClient) next(t *testing.T) (event string, data string) {
	t.Helper()
	var dataLines []string
	for {
		line, err := c.reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case line == "" && event != "":
			return event, strings.Join(dataLines, "\n")
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		}
	}
}

func openStream(t *testing.T, ts *httptest.Server) (*sseClient, string, func()) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + "/sse")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	client := &sseClient{reader: bufio.NewReaderSize(resp.Body, maxFrameSize)}
	event, endpoint := client.next(t)
	require.Equal(t, "endpoint", event)
	require.True(t, strings.HasPrefix(endpoint, "/message?session="))

	return client, endpoint, func() { resp.Body.Close() }
}

func TestSSEAnnouncesEndpointAndDeliversResponses(t *testing.T) {
	tr := NewSSE("127.0.0.1:0", newDispatcher(t), Options{})
	ts := httptest.NewServer(tr.Handler())
	defer ts.Close()

	client, endpoint, closeStream := openStream(t, ts)
	defer closeStream()

	post, err := ts.Client().Post(ts.URL+endpoint, "application/json", strings.NewReader(initFrame))
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusAccepted, post.StatusCode)

	event, data := client.next(t)
	require.Equal(t, "message", event)

	var initResp protocol.Response
	require.NoError(t, json.Unmarshal([]byte(data), &initResp))
	require.Nil(t, initResp.Error)

	post, err = ts.Client().Post(ts.URL+endpoint, "application/json", strings.NewReader(echoFrame(2, "via sse")))
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusAccepted, post.StatusCode)

	event, data = client.next(t)
	require.Equal(t, "message", event)

	var callResp protocol.Response
	require.NoError(t, json.Unmarshal([]byte(data), &callResp))
	require.Nil(t, callResp.Error)

	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(callResp.Result, &result))
	assert.Equal(t, "via sse", result.Content[0].Text)
}

func TestSSERejectsUnknownSession(t *testing.T) {
	tr := NewSSE("127.0.0.1:0", newDispatcher(t), Options{})
	ts := httptest.NewServer(tr.Handler())
	defer ts.Close()

	resp, err := ts.Client().Post(ts.URL+"/message?session=nope", "application/json",
		strings.NewReader(initFrame))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSSESessionEndsWithStream(t *testing.T) {
	tr := NewSSE("127.0.0.1:0", newDispatcher(t), Options{})
	ts := httptest.NewServer(tr.Handler())
	defer ts.Close()

	client, endpoint, closeStream := openStream(t, ts)
	_ = client
	closeStream()

	// give the handler a moment to tear the session down
	require.Eventually(t, func() bool {
		resp, err := ts.Client().Post(ts.URL+endpoint, "application/json",
			strings.NewReader(initFrame))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusBadRequest
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSSEMethodChecks(t *testing.T) {
	tr := NewSSE("127.0.0.1:0", newDispatcher(t), Options{})
	ts := httptest.NewServer(tr.Handler())
	defer ts.Close()

	resp, err := ts.Client().Post(ts.URL+"/sse", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = ts.Client().Get(ts.URL + "/message")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
