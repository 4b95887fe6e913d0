package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// SessionKey is the context key for the ledger session identifier tying
	// a client connection to its recorded history.
	SessionKey contextKey = "session"

	// ClientAddrKey is the context key for the client's remote address.
	ClientAddrKey contextKey = "client_addr"

	// UpstreamKey is the context key for the selected upstream proxy's
	// host:port.
	UpstreamKey contextKey = "upstream"

	// ProtocolKey is the context key for the negotiated client protocol
	// (http, https, socks4, socks5).
	ProtocolKey contextKey = "protocol"

	// ProbeIDKey is the context key for a judge probe attempt's correlation
	// ID.
	ProbeIDKey contextKey = "probe_id"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span IDs.
	SpanIDKey contextKey = "span_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithSession adds a ledger session identifier to the context.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSession retrieves the session identifier from the context.
func GetSession(ctx context.Context) string {
	if session, ok := ctx.Value(SessionKey).(string); ok {
		return session
	}
	return ""
}

// WithClientAddr adds the client's remote address to the context.
func WithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, ClientAddrKey, addr)
}

// GetClientAddr retrieves the client's remote address from the context.
func GetClientAddr(ctx context.Context) string {
	if addr, ok := ctx.Value(ClientAddrKey).(string); ok {
		return addr
	}
	return ""
}

// WithUpstream adds the selected upstream proxy's host:port to the context.
func WithUpstream(ctx context.Context, upstream string) context.Context {
	return context.WithValue(ctx, UpstreamKey, upstream)
}

// GetUpstream retrieves the selected upstream proxy's host:port from the
// context.
func GetUpstream(ctx context.Context) string {
	if upstream, ok := ctx.Value(UpstreamKey).(string); ok {
		return upstream
	}
	return ""
}

// WithProtocol adds the negotiated client protocol to the context.
func WithProtocol(ctx context.Context, protocol string) context.Context {
	return context.WithValue(ctx, ProtocolKey, protocol)
}

// GetProtocol retrieves the negotiated client protocol from the context.
func GetProtocol(ctx context.Context) string {
	if protocol, ok := ctx.Value(ProtocolKey).(string); ok {
		return protocol
	}
	return ""
}

// WithProbeID adds a judge probe attempt's correlation ID to the context.
func WithProbeID(ctx context.Context, probeID string) context.Context {
	return context.WithValue(ctx, ProbeIDKey, probeID)
}

// GetProbeID retrieves the judge probe attempt's correlation ID from the
// context.
func GetProbeID(ctx context.Context) string {
	if probeID, ok := ctx.Value(ProbeIDKey).(string); ok {
		return probeID
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSpanID adds a span ID to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span ID from the context.
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if session := GetSession(ctx); session != "" {
		fields = append(fields, "session", session)
	}

	if addr := GetClientAddr(ctx); addr != "" {
		fields = append(fields, "client_addr", addr)
	}

	if upstream := GetUpstream(ctx); upstream != "" {
		fields = append(fields, "upstream", upstream)
	}

	if protocol := GetProtocol(ctx); protocol != "" {
		fields = append(fields, "protocol", protocol)
	}

	if probeID := GetProbeID(ctx); probeID != "" {
		fields = append(fields, "probe_id", probeID)
	}

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, "span_id", spanID)
	}

	return fields
}

// ContextLogger is a logger that automatically includes context fields.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger that automatically includes context fields.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger.WithContext(ctx),
		ctx:    ctx,
	}
}

// Debug logs a debug message with context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning message with context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error message with context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// With creates a new context logger with additional fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}
