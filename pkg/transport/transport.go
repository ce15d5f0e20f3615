// Package transport contains the six adapters that carry MCP frames to
// the dispatcher: stdio, TCP, Unix socket, streamable HTTP, dedicated
// SSE and WebSocket. Adapters own their sessions and converge on the
// same HandleMessage entry point; protocol semantics never leak into
// this package.
package transport

import (
	"bufio"
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/logging"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/observability"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/server"
)

// Frames larger than the initial scanner buffer grow up to maxFrameSize.
const (
	initialFrameSize = 64 * 1024
	maxFrameSize     = 4 * 1024 * 1024
)

// Transport is one serving adapter. Start blocks until the context is
// cancelled or the listener fails; Stop releases resources held past
// cancellation.
type Transport interface {
	Kind() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	ConnectionCount() int
}

// Dispatcher is the server surface adapters need: one raw frame in,
// zero or one serialized response out. A returned error means the frame
// was unrecoverable and the connection must close.
type Dispatcher interface {
	HandleMessage(ctx context.Context, sess *server.Session, raw []byte) ([]byte, error)
}

// Options carries the ambient dependencies shared by all adapters.
type Options struct {
	Logger  logging.Logger
	Metrics *observability.Metrics
}

func (o Options) logger(kind string) logging.Logger {
	l := o.Logger
	if l == nil {
		l = logging.NewNop()
	}
	return l.WithFields(logging.String("transport", kind))
}

// connTracker maintains the per-transport connection gauge.
type connTracker struct {
	kind    string
	count   atomic.Int64
	metrics *observability.Metrics
}

func (t *connTracker) open() {
	t.count.Add(1)
	if t.metrics != nil {
		t.metrics.ConnectionOpened(t.kind)
	}
}

func (t *connTracker) close() {
	t.count.Add(-1)
	if t.metrics != nil {
		t.metrics.ConnectionClosed(t.kind)
	}
}

func (t *connTracker) current() int {
	return int(t.count.Load())
}

// frameScanner wraps a reader in a newline-delimited scanner sized for
// large tool payloads.
func frameScanner(conn net.Conn) *bufio.Scanner {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, initialFrameSize), maxFrameSize)
	return scanner
}

// serveConn runs the shared per-connection loop used by the TCP and
// Unix adapters: one session per connection, one goroutine per request,
// a write mutex keeping outbound frames atomic. It returns when the
// peer disconnects, the context is cancelled, or a frame proves
// unrecoverable.
func serveConn(ctx context.Context, d Dispatcher, kind string, conn net.Conn, logger logging.Logger, tracker *connTracker) {
	sess := server.NewSession(kind)
	tracker.open()
	defer tracker.close()
	defer conn.Close()

	logger.Debug("connection opened", logging.String("session_id", sess.ID()))
	defer logger.Debug("connection closed", logging.String("session_id", sess.ID()))

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Closing the conn on cancellation unblocks the scanner.
	go func() {
		<-connCtx.Done()
		conn.Close()
	}()

	var (
		writeMu sync.Mutex
		wg      sync.WaitGroup
	)
	defer wg.Wait()

	scanner := frameScanner(conn)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		// The scanner reuses its buffer across frames.
		frame := append([]byte(nil), scanner.Bytes()...)

		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := d.HandleMessage(connCtx, sess, frame)
			if err != nil {
				logger.Warn("closing connection on unrecoverable frame",
					logging.String("session_id", sess.ID()),
					logging.ErrorField(err))
				cancel()
				return
			}
			if out == nil {
				return
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			if _, err := conn.Write(append(out, '\n')); err != nil {
				logger.Warn("write failed", logging.ErrorField(err))
				cancel()
			}
		}()
	}
}
