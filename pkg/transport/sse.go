package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/logging"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/mcperrors"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/server"
)

// SSE serves the dedicated SSE transport: GET /sse opens the event
// stream and announces the POST endpoint, POST /message enqueues one
// request and responses come back as SSE message events on the stream.
type SSE struct {
	address    string
	dispatcher Dispatcher
	logger     logging.Logger
	tracker    connTracker

	sessions *server.SessionStore
	mux      *http.ServeMux

	mu      sync.Mutex
	ln      net.Listener
	hs      *http.Server
	streams map[string]chan []byte
}

// NewSSE creates the dedicated SSE adapter.
func NewSSE(address string, d Dispatcher, opts Options) *SSE {
	t := &SSE{
		address:    address,
		dispatcher: d,
		logger:     opts.logger("sse"),
		tracker:    connTracker{kind: "sse", metrics: opts.Metrics},
		sessions:   server.NewSessionStore(),
		mux:        http.NewServeMux(),
		streams:    make(map[string]chan []byte),
	}
	t.mux.HandleFunc("/sse", t.handleStream)
	t.mux.HandleFunc("/message", t.handleMessage)
	t.mux.HandleFunc("/healthz", handleHealthz)
	return t
}

func (t *SSE) Kind() string { return "sse" }

// Handler exposes the mux for tests and embedders.
func (t *SSE) Handler() http.Handler { return t.mux }

// Addr reports the listener address, or nil before Start.
func (t *SSE) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ln == nil {
		return nil
	}
	return t.ln.Addr()
}

// Start binds the listener and serves until the context is cancelled.
func (t *SSE) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", t.address)
	if err != nil {
		return mcperrors.NewTransportError("sse", err)
	}
	hs := &http.Server{
		Handler:     t.mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	t.mu.Lock()
	t.ln = ln
	t.hs = hs
	t.mu.Unlock()

	t.logger.Info("listening", logging.String("address", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hs.Shutdown(shutdownCtx)
	}()

	if err := hs.Serve(ln); err != nil && err != http.ErrServerClosed {
		return mcperrors.NewTransportError("sse", err)
	}
	return nil
}

// Stop shuts the HTTP server down.
func (t *SSE) Stop(ctx context.Context) error {
	t.mu.Lock()
	hs := t.hs
	t.mu.Unlock()
	if hs == nil {
		return nil
	}
	return hs.Shutdown(ctx)
}

func (t *SSE) ConnectionCount() int { return t.tracker.current() }

// handleStream opens the event stream. The first event names the POST
// endpoint for this session; every response is delivered afterwards as
// a message event.
func (t *SSE) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sess := server.NewSession("sse")
	stream := make(chan []byte, 16)
	t.sessions.Add(sess)
	t.mu.Lock()
	t.streams[sess.ID()] = stream
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.streams, sess.ID())
		t.mu.Unlock()
		t.sessions.Remove(sess.ID())
	}()

	t.tracker.open()
	defer t.tracker.close()

	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	writeSSEEvent(w, "endpoint", []byte(fmt.Sprintf("/message?session=%s", sess.ID())))
	flusher.Flush()

	t.logger.Debug("stream opened", logging.String("session_id", sess.ID()))

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case out := <-stream:
			writeSSEEvent(w, "message", out)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// handleMessage accepts one request for an open stream. The HTTP reply
// is always 202; the JSON-RPC response travels over the stream.
func (t *SSE) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("session")
	sess, ok := t.sessions.Get(id)
	if !ok {
		http.Error(w, "unknown session", http.StatusBadRequest)
		return
	}
	t.mu.Lock()
	stream, ok := t.streams[id]
	t.mu.Unlock()
	if !ok {
		http.Error(w, "stream closed", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxFrameSize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	go func() {
		out, err := t.dispatcher.HandleMessage(context.WithoutCancel(ctx), sess, body)
		if err != nil {
			t.logger.Warn("dropping unrecoverable frame",
				logging.String("session_id", sess.ID()),
				logging.ErrorField(err))
			return
		}
		if out == nil {
			return
		}
		select {
		case stream <- out:
		default:
			t.logger.Warn("stream backlog full, dropping response",
				logging.String("session_id", sess.ID()))
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

// writeSSEEvent frames one event, splitting multi-line data per the SSE
// wire format.
func writeSSEEvent(w io.Writer, event string, data []byte) {
	fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range bytes.Split(data, []byte("\n")) {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
