package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on spans.
// They use semantic conventions where applicable and ensure consistent attribute
// naming across the codebase.
//
// # Attribute Keys
//
// Standard attribute keys follow OpenTelemetry semantic conventions:
//   - net.*: network-related attributes
//
// Custom attribute keys use the "warren.*" namespace:
//   - warren.protocol: negotiated client protocol
//   - warren.upstream: selected upstream proxy
//   - warren.session: client session ID

// Common attribute keys used throughout the system
const (
	// Protocol attributes
	AttrProtocol = "warren.protocol"
	AttrUpstream = "warren.upstream"

	// Session attributes
	AttrSessionID  = "warren.session"
	AttrClientAddr = "warren.client_addr"
	AttrProbeID    = "warren.probe_id"

	// Pool attributes
	AttrPoolSize       = "warren.pool.size"
	AttrSelectionPolicy = "warren.pool.selection_policy"

	// Judge attributes
	AttrJudgeURL    = "warren.judge.url"
	AttrAnonymity   = "warren.judge.anonymity"

	// Error attributes
	AttrErrorType    = "warren.error.type"
	AttrErrorMessage = "error.message"

	// Performance attributes
	AttrDuration   = "warren.duration_ms"
	AttrRetryCount = "warren.retry_count"

	// Bridge attributes (bytes copied in each direction of a CONNECT/relay tunnel)
	AttrBytesClientToUpstream = "warren.bytes.client_to_upstream"
	AttrBytesUpstreamToClient = "warren.bytes.upstream_to_client"
)

// SetUpstreamAttributes sets upstream selection attributes on a span.
//
// Example:
//
//	SetUpstreamAttributes(span, "socks5", "203.0.113.4:1080")
func SetUpstreamAttributes(span trace.Span, protocol, upstream string) {
	span.SetAttributes(
		attribute.String(AttrProtocol, protocol),
		attribute.String(AttrUpstream, RedactProxyURL(upstream)),
	)
}

// SetSessionAttributes sets session-identifying attributes on a span.
//
// Example:
//
//	SetSessionAttributes(span, "sess-123", "203.0.113.9:54231")
func SetSessionAttributes(span trace.Span, sessionID, clientAddr string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrSessionID, sessionID),
	}
	if clientAddr != "" {
		attrs = append(attrs, attribute.String(AttrClientAddr, clientAddr))
	}
	span.SetAttributes(attrs...)
}

// SetPoolAttributes sets pool-state attributes on a span.
//
// Example:
//
//	SetPoolAttributes(span, 212, "round_robin")
func SetPoolAttributes(span trace.Span, size int, policy string) {
	span.SetAttributes(
		attribute.Int(AttrPoolSize, size),
		attribute.String(AttrSelectionPolicy, policy),
	)
}

// SetJudgeAttributes sets judge-probe attributes on a span.
//
// Example:
//
//	SetJudgeAttributes(span, "https://azenv.net/", "elite")
func SetJudgeAttributes(span trace.Span, judgeURL, anonymity string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrJudgeURL, judgeURL),
	}
	if anonymity != "" {
		attrs = append(attrs, attribute.String(AttrAnonymity, anonymity))
	}
	span.SetAttributes(attrs...)
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "dial_timeout")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the duration attribute on a span.
// Duration is recorded in milliseconds.
//
// Example:
//
//	start := time.Now()
//	// ... do work ...
//	SetDurationAttribute(span, time.Since(start).Milliseconds())
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// SetRetryAttribute sets the retry count attribute on a span.
//
// Example:
//
//	SetRetryAttribute(span, 2)
func SetRetryAttribute(span trace.Span, retryCount int) {
	span.SetAttributes(attribute.Int(AttrRetryCount, retryCount))
}

// SetBridgeByteAttributes records the bytes bridged in each direction of a
// relayed connection.
//
// Example:
//
//	SetBridgeByteAttributes(span, 45213, 1302044)
func SetBridgeByteAttributes(span trace.Span, clientToUpstream, upstreamToClient int64) {
	span.SetAttributes(
		attribute.Int64(AttrBytesClientToUpstream, clientToUpstream),
		attribute.Int64(AttrBytesUpstreamToClient, upstreamToClient),
	)
}

// AddEvent adds a named event to the span with optional attributes.
// Events represent interesting points in the span's lifetime.
//
// Example:
//
//	AddEvent(span, "judge_probe_failed",
//	    attribute.String("judge", "https://azenv.net/"),
//	    attribute.String("reason", "timeout"),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordException records an exception event on the span.
// This is a convenience wrapper around span.RecordError for errors.
//
// Example:
//
//	RecordException(span, err)
func RecordException(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// AttributeBuilder provides a fluent interface for building span attributes.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 10),
	}
}

// WithUpstream adds protocol and upstream attributes.
func (ab *AttributeBuilder) WithUpstream(protocol, upstream string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrProtocol, protocol),
		attribute.String(AttrUpstream, RedactProxyURL(upstream)),
	)
	return ab
}

// WithSession adds session-identifying attributes.
func (ab *AttributeBuilder) WithSession(sessionID, clientAddr string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrSessionID, sessionID))
	if clientAddr != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrClientAddr, clientAddr))
	}
	return ab
}

// WithJudge adds judge-probe attributes.
func (ab *AttributeBuilder) WithJudge(judgeURL, anonymity string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrJudgeURL, judgeURL))
	if anonymity != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrAnonymity, anonymity))
	}
	return ab
}

// WithRetry adds the retry count attribute.
func (ab *AttributeBuilder) WithRetry(retryCount int) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.Int(AttrRetryCount, retryCount))
	return ab
}

// WithCustom adds a custom attribute.
func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}

// RedactProxyURL masks the credential portion of a proxy URL for safe
// inclusion in span attributes. It mirrors the redaction the structured
// logger applies so a trace backend never surfaces upstream passwords.
func RedactProxyURL(rawURL string) string {
	at := -1
	for i, c := range rawURL {
		if c == '@' {
			at = i
		}
	}
	schemeEnd := -1
	for i := 0; i+2 < len(rawURL); i++ {
		if rawURL[i] == ':' && rawURL[i+1] == '/' && rawURL[i+2] == '/' {
			schemeEnd = i + 3
			break
		}
	}
	if at == -1 || schemeEnd == -1 || at < schemeEnd {
		return rawURL
	}
	return rawURL[:schemeEnd] + "***:***@" + rawURL[at+1:]
}
