// Package config resolves the server's runtime configuration from the
// environment. Transport toggles and bind targets follow the MCP_* variable
// convention; validation runs once at startup and a bad configuration is
// the only error that terminates the process.
package config

import (
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/mcperrors"
)

// Config holds the resolved server configuration.
type Config struct {
	ServerName        string
	ServerVersion     string
	ServerDescription string

	EnableStdio bool
	EnableTCP   bool
	EnableUnix  bool
	EnableHTTP  bool
	EnableSSE   bool
	EnableWS    bool

	TCPAddr  string
	HTTPAddr string
	SSEAddr  string
	WSAddr   string
	UnixPath string

	LogLevel  string
	LogFormat string

	// Tracing is off unless an exporter is named (otlp-grpc, otlp-http).
	TraceExporter string
	TraceEndpoint string
}

// Default returns the built-in configuration: stdio, streamable HTTP and
// dedicated SSE on; TCP, Unix socket and WebSocket off.
func Default() *Config {
	return &Config{
		ServerName:        "payload-mcp",
		ServerVersion:     Version,
		ServerDescription: "Payload CMS code generation and validation over MCP",
		EnableStdio:       true,
		EnableHTTP:        true,
		EnableSSE:         true,
		TCPAddr:           "127.0.0.1:0",
		HTTPAddr:          "0.0.0.0:0",
		SSEAddr:           "0.0.0.0:0",
		WSAddr:            "0.0.0.0:0",
		UnixPath:          "/tmp/payload-mcp.sock",
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// FromEnv builds a Config from defaults overridden by MCP_* environment
// variables.
func FromEnv() *Config {
	cfg := Default()

	cfg.EnableStdio = envBool("MCP_ENABLE_STDIO", cfg.EnableStdio)
	cfg.EnableTCP = envBool("MCP_ENABLE_TCP", cfg.EnableTCP)
	cfg.EnableUnix = envBool("MCP_ENABLE_UNIX", cfg.EnableUnix)
	cfg.EnableHTTP = envBool("MCP_ENABLE_HTTP", cfg.EnableHTTP)
	cfg.EnableSSE = envBool("MCP_ENABLE_SSE", cfg.EnableSSE)
	cfg.EnableWS = envBool("MCP_ENABLE_WS", cfg.EnableWS)

	cfg.TCPAddr = envString("MCP_TCP_ADDR", cfg.TCPAddr)
	cfg.HTTPAddr = envString("MCP_HTTP_ADDR", cfg.HTTPAddr)
	cfg.SSEAddr = envString("MCP_SSE_ADDR", cfg.SSEAddr)
	cfg.WSAddr = envString("MCP_WS_ADDR", cfg.WSAddr)
	cfg.UnixPath = envString("MCP_UNIX_PATH", cfg.UnixPath)

	cfg.LogLevel = envString("MCP_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envString("MCP_LOG_FORMAT", cfg.LogFormat)

	cfg.TraceExporter = envString("MCP_TRACE_EXPORTER", cfg.TraceExporter)
	cfg.TraceEndpoint = envString("MCP_TRACE_ENDPOINT", cfg.TraceEndpoint)

	return cfg
}

// Validate checks the configuration. It returns a ConfigurationError when
// no transport is enabled or a bind target is malformed.
func (c *Config) Validate() error {
	if !c.EnableStdio && !c.EnableTCP && !c.EnableUnix && !c.EnableHTTP && !c.EnableSSE && !c.EnableWS {
		return mcperrors.NewConfigurationError(
			"enable at least one transport (stdio, tcp, unix, http, sse, ws)")
	}

	if c.EnableTCP {
		if err := checkAddr("MCP_TCP_ADDR", c.TCPAddr); err != nil {
			return err
		}
	}
	if c.EnableHTTP {
		if err := checkAddr("MCP_HTTP_ADDR", c.HTTPAddr); err != nil {
			return err
		}
	}
	if c.EnableSSE {
		if err := checkAddr("MCP_SSE_ADDR", c.SSEAddr); err != nil {
			return err
		}
	}
	if c.EnableWS {
		if err := checkAddr("MCP_WS_ADDR", c.WSAddr); err != nil {
			return err
		}
	}
	if c.EnableUnix && strings.TrimSpace(c.UnixPath) == "" {
		return mcperrors.NewConfigurationError(
			"MCP_UNIX_PATH cannot be empty when the unix transport is enabled")
	}

	switch c.TraceExporter {
	case "", "otlp-grpc", "otlp-http", "noop":
	default:
		return mcperrors.NewConfigurationErrorf(
			"invalid MCP_TRACE_EXPORTER %q: use otlp-grpc, otlp-http or noop", c.TraceExporter)
	}

	return nil
}

func checkAddr(name, addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return mcperrors.NewConfigurationErrorf("invalid %s %q: %v", name, addr, err)
	}
	if host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return mcperrors.NewConfigurationErrorf("invalid %s %q: host must be an IP address", name, addr)
		}
	}
	if _, err := strconv.Atoi(port); err != nil {
		return mcperrors.NewConfigurationErrorf("invalid %s %q: port must be numeric", name, addr)
	}
	return nil
}

func envBool(name string, fallback bool) bool {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func envString(name, fallback string) string {
	if raw, ok := os.LookupEnv(name); ok && raw != "" {
		return raw
	}
	return fallback
}
