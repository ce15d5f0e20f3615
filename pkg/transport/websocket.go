package transport

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/logging"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/mcperrors"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/server"
)

// WebSocket serves one JSON-RPC message per text frame. Requests run in
// per-message goroutines; outbound frames are serialized through a
// single writer goroutine per connection.
type WebSocket struct {
	address    string
	dispatcher Dispatcher
	logger     logging.Logger
	tracker    connTracker

	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu sync.Mutex
	ln net.Listener
	hs *http.Server
	wg sync.WaitGroup
}

// NewWebSocket creates the WebSocket adapter serving /ws.
func NewWebSocket(address string, d Dispatcher, opts Options) *WebSocket {
	t := &WebSocket{
		address:    address,
		dispatcher: d,
		logger:     opts.logger("ws"),
		tracker:    connTracker{kind: "ws", metrics: opts.Metrics},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  initialFrameSize,
			WriteBufferSize: initialFrameSize,
		},
		mux: http.NewServeMux(),
	}
	t.mux.HandleFunc("/ws", t.handleUpgrade)
	t.mux.HandleFunc("/healthz", handleHealthz)
	return t
}

func (t *WebSocket) Kind() string { return "ws" }

// Handler exposes the mux for tests and embedders.
func (t *WebSocket) Handler() http.Handler { return t.mux }

// Addr reports the listener address, or nil before Start.
func (t *WebSocket) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ln == nil {
		return nil
	}
	return t.ln.Addr()
}

// Start binds the listener and serves until the context is cancelled.
func (t *WebSocket) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", t.address)
	if err != nil {
		return mcperrors.NewTransportError("ws", err)
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
		return mcperrors.NewTransportError("ws", err)
	}
	return nil
}

// Stop shuts the HTTP server down and waits for open connections.
func (t *WebSocket) Stop(ctx context.Context) error {
	t.mu.Lock()
	hs := t.hs
	t.mu.Unlock()
	if hs != nil {
		if err := hs.Shutdown(ctx); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *WebSocket) ConnectionCount() int { return t.tracker.current() }

func (t *WebSocket) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.logger.Warn("upgrade failed", logging.ErrorField(err))
		return
	}
	// The request context is cancelled when this handler returns, so
	// the serve loop runs inline.
	t.wg.Add(1)
	defer t.wg.Done()
	t.serve(r.Context(), conn)
}

func (t *WebSocket) serve(ctx context.Context, conn *websocket.Conn) {
	sess := server.NewSession("ws")
	t.tracker.open()
	defer t.tracker.close()
	defer conn.Close()

	t.logger.Debug("connection opened", logging.String("session_id", sess.ID()))
	defer t.logger.Debug("connection closed", logging.String("session_id", sess.ID()))

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// All writes funnel through one goroutine; gorilla connections do
	// not allow concurrent writers.
	outbound := make(chan []byte, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-connCtx.Done():
				return
			case out := <-outbound:
				if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		cancel()
		<-writerDone
	}()

	for {
		msgType, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage || len(frame) == 0 {
			continue
		}

		wg.Add(1)
		go func(frame []byte) {
			defer wg.Done()
			out, err := t.dispatcher.HandleMessage(connCtx, sess, frame)
			if err != nil {
				t.logger.Warn("closing connection on unrecoverable frame",
					logging.String("session_id", sess.ID()),
					logging.ErrorField(err))
				cancel()
				conn.Close()
				return
			}
			if out == nil {
				return
			}
			select {
			case outbound <- out:
			case <-connCtx.Done():
			}
		}(frame)
	}
}
