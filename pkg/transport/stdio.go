package transport

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/logging"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/server"
)

// Stdio serves newline-delimited JSON-RPC on stdin/stdout. It is fully
// sequential: one implicit connection, responses in request order.
// Stdout carries protocol frames only; logs go to stderr.
type Stdio struct {
	dispatcher Dispatcher
	logger     logging.Logger
	tracker    connTracker

	in  io.Reader
	out io.Writer
}

// NewStdio creates the stdio adapter reading os.Stdin and writing
// os.Stdout.
func NewStdio(d Dispatcher, opts Options) *Stdio {
	return &Stdio{
		dispatcher: d,
		logger:     opts.logger("stdio"),
		tracker:    connTracker{kind: "stdio", metrics: opts.Metrics},
		in:         os.Stdin,
		out:        os.Stdout,
	}
}

// NewStdioPipe creates a stdio adapter over explicit streams. Used by
// tests and by embedders that own the process's pipes.
func NewStdioPipe(d Dispatcher, in io.Reader, out io.Writer, opts Options) *Stdio {
	s := NewStdio(d, opts)
	s.in = in
	s.out = out
	return s
}

func (s *Stdio) Kind() string { return "stdio" }

// Start reads frames until EOF, context cancellation, or an
// unrecoverable frame. Each request completes before the next is read.
func (s *Stdio) Start(ctx context.Context) error {
	sess := server.NewSession("stdio")
	s.tracker.open()
	defer s.tracker.close()

	s.logger.Info("stdio transport started", logging.String("session_id", sess.ID()))

	writer := bufio.NewWriter(s.out)
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, initialFrameSize), maxFrameSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		frame := scanner.Bytes()
		if len(frame) == 0 {
			continue
		}

		out, err := s.dispatcher.HandleMessage(ctx, sess, frame)
		if err != nil {
			s.logger.Warn("stopping on unrecoverable frame", logging.ErrorField(err))
			return err
		}
		if out == nil {
			continue
		}
		if _, err := writer.Write(append(out, '\n')); err != nil {
			return err
		}
		if err := writer.Flush(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Stop is a no-op: the loop ends when stdin closes or the context is
// cancelled.
func (s *Stdio) Stop(ctx context.Context) error { return nil }

func (s *Stdio) ConnectionCount() int { return s.tracker.current() }
