package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/logging"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/mcperrors"
)

// Socket serves newline-delimited JSON-RPC over a stream listener. The
// same adapter backs the TCP and Unix socket transports; they differ
// only in how the listener is created.
type Socket struct {
	kind       string
	network    string
	address    string
	dispatcher Dispatcher
	logger     logging.Logger
	tracker    connTracker

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

// NewTCP creates the TCP adapter. An address with port 0 binds an
// ephemeral port; Addr reports the bound address once serving.
func NewTCP(address string, d Dispatcher, opts Options) *Socket {
	return &Socket{
		kind:       "tcp",
		network:    "tcp",
		address:    address,
		dispatcher: d,
		logger:     opts.logger("tcp"),
		tracker:    connTracker{kind: "tcp", metrics: opts.Metrics},
	}
}

// NewUnix creates the Unix socket adapter. A stale socket file at the
// path is removed before binding.
func NewUnix(path string, d Dispatcher, opts Options) *Socket {
	return &Socket{
		kind:       "unix",
		network:    "unix",
		address:    path,
		dispatcher: d,
		logger:     opts.logger("unix"),
		tracker:    connTracker{kind: "unix", metrics: opts.Metrics},
	}
}

func (s *Socket) Kind() string { return s.kind }

// Addr reports the listener address, or nil before Start has bound it.
func (s *Socket) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start binds the listener and accepts connections until the context is
// cancelled. Each connection gets its own session and goroutine.
func (s *Socket) Start(ctx context.Context) error {
	if s.network == "unix" {
		if err := os.Remove(s.address); err != nil && !os.IsNotExist(err) {
			return mcperrors.NewTransportError(s.kind, err)
		}
	}

	ln, err := net.Listen(s.network, s.address)
	if err != nil {
		return mcperrors.NewTransportError(s.kind, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("listening", logging.String("address", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return mcperrors.NewTransportError(s.kind, err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			serveConn(ctx, s.dispatcher, s.kind, conn, s.logger, &s.tracker)
		}()
	}
}

// Stop closes the listener and waits for in-flight connections.
func (s *Socket) Stop(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln != nil {
		ln.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if s.network == "unix" {
		os.Remove(s.address)
	}
	return nil
}

func (s *Socket) ConnectionCount() int { return s.tracker.current() }
