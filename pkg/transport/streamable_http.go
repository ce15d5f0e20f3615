package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/logging"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/mcperrors"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/observability"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/server"
)

const sessionHeader = "Mcp-Session-Id"

// Per-stream keepalive cadence. Comments only; no protocol frames.
const keepaliveInterval = 15 * time.Second

// StreamableHTTP serves the streamable HTTP transport: POST /mcp
// carries one request with the response in the POST body, GET /mcp
// opens an optional SSE stream bound to the session. The same mux
// exposes /healthz and, when metrics are attached, /metrics.
type StreamableHTTP struct {
	address    string
	dispatcher Dispatcher
	logger     logging.Logger
	metrics    *observability.Metrics
	tracker    connTracker

	sessions *server.SessionStore
	mux      *http.ServeMux

	mu sync.Mutex
	ln net.Listener
	hs *http.Server
}

// NewStreamableHTTP creates the streamable HTTP adapter.
func NewStreamableHTTP(address string, d Dispatcher, opts Options) *StreamableHTTP {
	t := &StreamableHTTP{
		address:    address,
		dispatcher: d,
		logger:     opts.logger("http"),
		metrics:    opts.Metrics,
		tracker:    connTracker{kind: "http", metrics: opts.Metrics},
		sessions:   server.NewSessionStore(),
		mux:        http.NewServeMux(),
	}
	t.mux.HandleFunc("/mcp", t.handleMCP)
	t.mux.HandleFunc("/healthz", handleHealthz)
	if t.metrics != nil {
		t.mux.Handle("/metrics", t.metrics.Handler())
	}
	return t
}

func (t *StreamableHTTP) Kind() string { return "http" }

// Handler exposes the mux for tests and embedders.
func (t *StreamableHTTP) Handler() http.Handler { return t.mux }

// Addr reports the listener address, or nil before Start.
func (t *StreamableHTTP) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ln == nil {
		return nil
	}
	return t.ln.Addr()
}

// Start binds the listener and serves until the context is cancelled.
func (t *StreamableHTTP) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", t.address)
	if err != nil {
		return mcperrors.NewTransportError("http", err)
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
		return mcperrors.NewTransportError("http", err)
	}
	return nil
}

// Stop shuts the HTTP server down, draining in-flight requests.
func (t *StreamableHTTP) Stop(ctx context.Context) error {
	t.mu.Lock()
	hs := t.hs
	t.mu.Unlock()
	if hs == nil {
		return nil
	}
	return hs.Shutdown(ctx)
}

func (t *StreamableHTTP) ConnectionCount() int { return t.tracker.current() }

func (t *StreamableHTTP) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		t.handlePost(w, r)
	case http.MethodGet:
		t.handleStream(w, r)
	case http.MethodDelete:
		t.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleDelete terminates a session explicitly. Clients that never open
// a GET stream use this to release server-side state.
func (t *StreamableHTTP) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := t.session(r)
	if !ok {
		http.Error(w, "unknown or missing "+sessionHeader, http.StatusNotFound)
		return
	}
	t.sessions.Remove(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

// handlePost carries one JSON-RPC message per request. A missing
// session header starts a new session; the assigned id is echoed back
// so the client can reuse it.
func (t *StreamableHTTP) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFrameSize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	sess, ok := t.session(r)
	if !ok {
		sess = server.NewSession("http")
		t.sessions.Add(sess)
	}
	w.Header().Set(sessionHeader, sess.ID())

	t.tracker.open()
	defer t.tracker.close()

	out, err := t.dispatcher.HandleMessage(r.Context(), sess, body)
	if err != nil {
		t.sessions.Remove(sess.ID())
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if out == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

// handleStream opens the optional SSE stream for an existing session.
// The stream carries keepalives; responses always travel in POST
// bodies. The session ends with the stream, like the dedicated SSE
// adapter.
func (t *StreamableHTTP) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := t.session(r)
	if !ok {
		http.Error(w, "unknown or missing "+sessionHeader, http.StatusBadRequest)
		return
	}
	defer t.sessions.Remove(sess.ID())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)
	w.Header().Set(sessionHeader, sess.ID())
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, ": stream open\n\n")
	flusher.Flush()

	t.tracker.open()
	defer t.tracker.close()

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (t *StreamableHTTP) session(r *http.Request) (*server.Session, bool) {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		return nil, false
	}
	return t.sessions.Get(id)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}
