// Command payload-mcp runs the Payload CMS MCP server over whichever
// transports the environment enables. Configuration is entirely
// env-driven; see pkg/config for the MCP_* variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/config"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/logging"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/observability"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/server"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "payload-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)
	logger.Info("starting",
		logging.String("name", cfg.ServerName),
		logging.String("version", cfg.ServerVersion))

	metrics := observability.NewMetrics(observability.MetricsConfig{
		ServiceName:    cfg.ServerName,
		ServiceVersion: cfg.ServerVersion,
	})

	opts := []server.Option{
		server.WithName(cfg.ServerName),
		server.WithVersion(cfg.ServerVersion),
		server.WithDescription(cfg.ServerDescription),
		server.WithLogger(logger),
		server.WithMetrics(metrics),
	}

	var tracing *observability.TracingProvider
	if cfg.TraceExporter != "" {
		tp, err := observability.NewTracingProvider(observability.TracingConfig{
			ServiceName:    cfg.ServerName,
			ServiceVersion: cfg.ServerVersion,
			ExporterType:   observability.ExporterType(cfg.TraceExporter),
			Endpoint:       cfg.TraceEndpoint,
		})
		if err != nil {
			return err
		}
		tracing = tp
		opts = append(opts, server.WithTracing(tp))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracing shutdown failed", logging.ErrorField(err))
			}
		}()
	}

	srv := server.NewServer(opts...)

	transports := buildTransports(cfg, srv, transport.Options{Logger: logger, Metrics: metrics})

	err := server.RegisterBuiltins(srv, server.BuiltinConfig{
		Version: cfg.ServerVersion,
		Connections: func() map[string]int {
			counts := make(map[string]int, len(transports))
			for _, tr := range transports {
				counts[tr.Kind()] = tr.ConnectionCount()
			}
			return counts
		},
	})
	if err != nil {
		return err
	}
	srv.Freeze()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, tr := range transports {
		tr := tr
		logger.Info("enabling transport", logging.String("transport", tr.Kind()))
		g.Go(func() error { return tr.Start(gctx) })
	}

	err = g.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, tr := range transports {
		if stopErr := tr.Stop(stopCtx); stopErr != nil {
			logger.Warn("transport stop failed",
				logging.String("transport", tr.Kind()),
				logging.ErrorField(stopErr))
		}
	}

	if err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("stopped")
	return nil
}

func newLogger(cfg *config.Config) logging.Logger {
	var formatter logging.Formatter
	if cfg.LogFormat == "json" {
		formatter = logging.NewJSONFormatter()
	} else {
		formatter = logging.NewTextFormatter()
	}

	// Stderr always: stdout may carry the stdio protocol stream.
	logger := logging.New(os.Stderr, formatter)
	switch cfg.LogLevel {
	case "debug":
		logger.SetLevel(logging.DebugLevel)
	case "warn":
		logger.SetLevel(logging.WarnLevel)
	case "error":
		logger.SetLevel(logging.ErrorLevel)
	default:
		logger.SetLevel(logging.InfoLevel)
	}
	return logger
}

func buildTransports(cfg *config.Config, d transport.Dispatcher, opts transport.Options) []transport.Transport {
	var transports []transport.Transport
	if cfg.EnableStdio {
		transports = append(transports, transport.NewStdio(d, opts))
	}
	if cfg.EnableTCP {
		transports = append(transports, transport.NewTCP(cfg.TCPAddr, d, opts))
	}
	if cfg.EnableUnix {
		transports = append(transports, transport.NewUnix(cfg.UnixPath, d, opts))
	}
	if cfg.EnableHTTP {
		transports = append(transports, transport.NewStreamableHTTP(cfg.HTTPAddr, d, opts))
	}
	if cfg.EnableSSE {
		transports = append(transports, transport.NewSSE(cfg.SSEAddr, d, opts))
	}
	if cfg.EnableWS {
		transports = append(transports, transport.NewWebSocket(cfg.WSAddr, d, opts))
	}
	return transports
}
