// Package server implements the MCP protocol runtime: sessions, the
// tool/resource registries, and the request dispatcher shared by every
// transport adapter.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DakineMI/mcp-payloadcms-go/pkg/logging"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/mcperrors"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/observability"
	"github.com/DakineMI/mcp-payloadcms-go/pkg/protocol"
)

// Server is the transport-agnostic MCP dispatcher. Adapters parse frames
// and hand requests to Dispatch; everything protocol-level lives here.
type Server struct {
	name        string
	version     string
	description string

	logger    logging.Logger
	metrics   *observability.Metrics
	tracing   *observability.TracingProvider
	tools     *ToolRegistry
	resources *ResourceRegistry
	startedAt time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithName sets the server name reported during initialize.
func WithName(name string) Option {
	return func(s *Server) { s.name = name }
}

// WithVersion sets the reported server version.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// WithDescription sets the reported server description.
func WithDescription(description string) Option {
	return func(s *Server) { s.description = description }
}

// WithLogger sets the structured logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics attaches a Prometheus metric set.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithTracing attaches a tracing provider.
func WithTracing(tp *observability.TracingProvider) Option {
	return func(s *Server) { s.tracing = tp }
}

// NewServer creates a server with empty registries.
func NewServer(opts ...Option) *Server {
	s := &Server{
		name:      "payload-mcp",
		version:   "0.0.0",
		logger:    logging.NewNop(),
		tools:     NewToolRegistry(),
		resources: NewResourceRegistry(),
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields(logging.String("component", "server"))
	return s
}

// Tools exposes the tool registry for registration during startup.
func (s *Server) Tools() *ToolRegistry {
	return s.tools
}

// Resources exposes the resource registry.
func (s *Server) Resources() *ResourceRegistry {
	return s.resources
}

// Freeze locks both registries. Called once, before any transport starts.
func (s *Server) Freeze() {
	s.tools.Freeze()
	s.resources.Freeze()
}

// Uptime reports how long the server has been running.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startedAt)
}

// HandleMessage processes one raw frame from a transport. It returns the
// serialized response, or nil for notifications. A frame whose id cannot
// be recovered returns an error; the adapter closes the connection.
func (s *Server) HandleMessage(ctx context.Context, sess *Session, raw []byte) ([]byte, error) {
	var probe struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      interface{}     `json:"id"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		id := recoverID(raw)
		if id == nil {
			return nil, mcperrors.NewParseError(err.Error())
		}
		return s.marshalError(id, mcperrors.NewParseError(err.Error()))
	}

	if probe.Method == "" {
		if probe.ID == nil {
			return nil, mcperrors.NewInvalidRequest("missing method")
		}
		return s.marshalError(probe.ID, mcperrors.NewInvalidRequest("missing method"))
	}
	if probe.ID == nil {
		// Notifications are accepted and dropped; the protocol subset
		// served here defines none with side effects.
		s.logger.Debug("notification ignored",
			logging.String("method", probe.Method),
			logging.String("session_id", sess.ID()))
		return nil, nil
	}

	req := &protocol.Request{
		JSONRPCMessage: protocol.JSONRPCMessage{JSONRPC: protocol.JSONRPCVersion},
		ID:             probe.ID,
		Method:         probe.Method,
		Params:         probe.Params,
	}
	resp := s.Dispatch(ctx, sess, req)
	return json.Marshal(resp)
}

// recoverID makes a best effort at extracting the id from a frame that
// failed full decoding.
func recoverID(raw []byte) interface{} {
	var partial struct {
		ID interface{} `json:"id"`
	}
	if err := json.Unmarshal(raw, &partial); err != nil {
		return nil
	}
	return partial.ID
}

// Dispatch routes one request and always produces a response. Handler
// panics are recovered and reported as handler failures; a bad request
// never takes down the connection.
func (s *Server) Dispatch(ctx context.Context, sess *Session, req *protocol.Request) *protocol.Response {
	start := time.Now()

	if s.tracing != nil {
		spanCtx, span := s.tracing.StartMethodSpan(ctx, req.Method, sess.Transport())
		ctx = spanCtx
		defer span.End()
	}

	result, err := s.dispatch(ctx, sess, req)

	status := "ok"
	if err != nil {
		status = "error"
		if s.tracing != nil {
			s.tracing.RecordError(ctx, err)
		}
		if s.metrics != nil {
			if mcpErr, ok := mcperrors.AsMCPError(err); ok {
				s.metrics.RecordError(string(mcpErr.Category()), req.Method)
			} else {
				s.metrics.RecordError("internal", req.Method)
			}
		}
		s.logger.WithError(err).Warn("request failed",
			logging.String("method", req.Method),
			logging.String("session_id", sess.ID()),
			logging.String("transport", sess.Transport()))
	} else {
		s.logger.Debug("request handled",
			logging.String("method", req.Method),
			logging.String("session_id", sess.ID()),
			logging.Duration("duration", time.Since(start)))
	}

	if s.metrics != nil {
		s.metrics.RecordRequest(req.Method, sess.Transport(), status, time.Since(start))
	}

	if err != nil {
		resp, convErr := mcperrors.ToResponse(req.ID, err)
		if convErr != nil {
			resp, _ = protocol.NewErrorResponse(req.ID, protocol.InternalError, "Internal error", nil)
		}
		return resp
	}

	resp, marshalErr := protocol.NewResponse(req.ID, result)
	if marshalErr != nil {
		resp, _ = protocol.NewErrorResponse(req.ID, protocol.InternalError,
			"failed to encode result", nil)
	}
	return resp
}

func (s *Server) dispatch(ctx context.Context, sess *Session, req *protocol.Request) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = mcperrors.NewHandlerError(req.Method, fmt.Errorf("panic: %v", r))
			s.logger.Error("handler panicked",
				logging.String("method", req.Method),
				logging.Any("panic", r))
		}
	}()

	if req.Method != protocol.MethodInitialize && !sess.Initialized() {
		return nil, mcperrors.NewNotInitialized(req.Method)
	}

	switch req.Method {
	case protocol.MethodInitialize:
		return s.handleInitialize(sess, req)
	case protocol.MethodPing:
		return protocol.PingResult{}, nil
	case protocol.MethodListTools:
		return protocol.ListToolsResult{Tools: s.tools.List()}, nil
	case protocol.MethodCallTool:
		return s.handleCallTool(ctx, req)
	case protocol.MethodListResources:
		return protocol.ListResourcesResult{Resources: s.resources.List()}, nil
	case protocol.MethodReadResource:
		return s.handleReadResource(ctx, req)
	default:
		return nil, mcperrors.NewMethodNotFound(req.Method)
	}
}

func (s *Server) handleInitialize(sess *Session, req *protocol.Request) (interface{}, error) {
	var params protocol.InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, mcperrors.NewInvalidParams(req.Method, err.Error())
		}
	}

	sess.initialize(&params.ClientInfo, &params.Capabilities)
	s.logger.Info("session initialized",
		logging.String("session_id", sess.ID()),
		logging.String("transport", sess.Transport()))

	return protocol.InitializeResult{
		ProtocolVersion: protocol.ProtocolVersion,
		ServerInfo: protocol.ServerInfo{
			Name:        s.name,
			Version:     s.version,
			Description: s.description,
		},
		Capabilities: protocol.ServerCapabilities{
			Tools:     &protocol.ToolsCapability{},
			Resources: &protocol.ResourcesCapability{},
		},
		Tools:     s.tools.List(),
		Resources: s.resources.List(),
	}, nil
}

func (s *Server) handleCallTool(ctx context.Context, req *protocol.Request) (interface{}, error) {
	var params protocol.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, mcperrors.NewInvalidParams(req.Method, err.Error())
	}
	if params.Name == "" {
		return nil, mcperrors.NewInvalidParams(req.Method, "tool name is required")
	}

	start := time.Now()
	result, err := s.tools.Call(ctx, params.Name, params.Arguments)

	status := "ok"
	if err != nil {
		status = "error"
		if !mcperrors.IsMCPError(err) {
			err = mcperrors.NewHandlerError(params.Name, err)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordToolCall(params.Name, status, time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Server) handleReadResource(ctx context.Context, req *protocol.Request) (interface{}, error) {
	var params protocol.ReadResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, mcperrors.NewInvalidParams(req.Method, err.Error())
	}
	if params.URI == "" {
		return nil, mcperrors.NewInvalidParams(req.Method, "resource uri is required")
	}

	contents, err := s.resources.Read(ctx, params.URI)
	if err != nil {
		return nil, err
	}
	return protocol.ReadResourceResult{
		Contents: []protocol.ResourceContents{*contents},
	}, nil
}

func (s *Server) marshalError(id interface{}, err error) ([]byte, error) {
	resp, convErr := mcperrors.ToResponse(id, err)
	if convErr != nil {
		return nil, convErr
	}
	return json.Marshal(resp)
}
