package logging

import (
	"context"
	"testing"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	ctx = WithRequestID(ctx, "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-123")
	}

	ctx = WithSession(ctx, "session-xyz")
	if got := GetSession(ctx); got != "session-xyz" {
		t.Errorf("GetSession() = %q, want %q", got, "session-xyz")
	}

	ctx = WithClientAddr(ctx, "198.51.100.7:54321")
	if got := GetClientAddr(ctx); got != "198.51.100.7:54321" {
		t.Errorf("GetClientAddr() = %q, want %q", got, "198.51.100.7:54321")
	}

	ctx = WithUpstream(ctx, "203.0.113.4:8080")
	if got := GetUpstream(ctx); got != "203.0.113.4:8080" {
		t.Errorf("GetUpstream() = %q, want %q", got, "203.0.113.4:8080")
	}

	ctx = WithProtocol(ctx, "socks5")
	if got := GetProtocol(ctx); got != "socks5" {
		t.Errorf("GetProtocol() = %q, want %q", got, "socks5")
	}

	ctx = WithProbeID(ctx, "probe-abc")
	if got := GetProbeID(ctx); got != "probe-abc" {
		t.Errorf("GetProbeID() = %q, want %q", got, "probe-abc")
	}

	ctx = WithTraceID(ctx, "trace-abc")
	if got := GetTraceID(ctx); got != "trace-abc" {
		t.Errorf("GetTraceID() = %q, want %q", got, "trace-abc")
	}

	ctx = WithSpanID(ctx, "span-def")
	if got := GetSpanID(ctx); got != "span-def" {
		t.Errorf("GetSpanID() = %q, want %q", got, "span-def")
	}
}

func TestContextKeys_Empty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		get  func(context.Context) string
	}{
		{"RequestID", GetRequestID},
		{"Session", GetSession},
		{"ClientAddr", GetClientAddr},
		{"Upstream", GetUpstream},
		{"Protocol", GetProtocol},
		{"ProbeID", GetProbeID},
		{"TraceID", GetTraceID},
		{"SpanID", GetSpanID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.get(ctx); got != "" {
				t.Errorf("Get%s() = %q, want empty string", tt.name, got)
			}
		})
	}
}

func TestExtractContextFields(t *testing.T) {
	tests := []struct {
		name       string
		setupCtx   func(context.Context) context.Context
		wantFields map[string]string
	}{
		{
			name: "empty context",
			setupCtx: func(ctx context.Context) context.Context {
				return ctx
			},
			wantFields: map[string]string{},
		},
		{
			name: "request ID only",
			setupCtx: func(ctx context.Context) context.Context {
				return WithRequestID(ctx, "req-123")
			},
			wantFields: map[string]string{
				"request_id": "req-123",
			},
		},
		{
			name: "multiple fields",
			setupCtx: func(ctx context.Context) context.Context {
				ctx = WithRequestID(ctx, "req-456")
				ctx = WithSession(ctx, "sess-456")
				ctx = WithUpstream(ctx, "203.0.113.4:8080")
				ctx = WithProtocol(ctx, "http")
				return ctx
			},
			wantFields: map[string]string{
				"request_id": "req-456",
				"session":    "sess-456",
				"upstream":   "203.0.113.4:8080",
				"protocol":   "http",
			},
		},
		{
			name: "all fields",
			setupCtx: func(ctx context.Context) context.Context {
				ctx = WithRequestID(ctx, "req-789")
				ctx = WithSession(ctx, "sess-1")
				ctx = WithClientAddr(ctx, "198.51.100.7:1234")
				ctx = WithUpstream(ctx, "203.0.113.4:8080")
				ctx = WithProtocol(ctx, "socks5")
				ctx = WithProbeID(ctx, "probe-1")
				ctx = WithTraceID(ctx, "trace-1")
				ctx = WithSpanID(ctx, "span-1")
				return ctx
			},
			wantFields: map[string]string{
				"request_id":  "req-789",
				"session":     "sess-1",
				"client_addr": "198.51.100.7:1234",
				"upstream":    "203.0.113.4:8080",
				"protocol":    "socks5",
				"probe_id":    "probe-1",
				"trace_id":    "trace-1",
				"span_id":     "span-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.setupCtx(context.Background())
			fields := extractContextFields(ctx)

			fieldsMap := make(map[string]string)
			for i := 0; i < len(fields); i += 2 {
				key := fields[i].(string)
				value := fields[i+1].(string)
				fieldsMap[key] = value
			}

			for key, expectedValue := range tt.wantFields {
				if gotValue, ok := fieldsMap[key]; !ok {
					t.Errorf("Expected field %q not found", key)
				} else if gotValue != expectedValue {
					t.Errorf("Field %q = %q, want %q", key, gotValue, expectedValue)
				}
			}

			if len(fieldsMap) != len(tt.wantFields) {
				t.Errorf("Got %d fields, want %d. Fields: %v",
					len(fieldsMap), len(tt.wantFields), fieldsMap)
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-cl-1")
	ctx = WithSession(ctx, "sess-cl-1")

	logger, err := New(Config{
		Level:             "info",
		Format:            "json",
		RedactCredentials: false,
		BufferSize:        100,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Shutdown()

	ctxLogger := NewContextLogger(logger, ctx)
	if ctxLogger == nil {
		t.Fatal("NewContextLogger returned nil")
	}

	ctxLogger.Debug("debug message")
	ctxLogger.Info("info message")
	ctxLogger.Warn("warn message")
	ctxLogger.Error("error message")

	childLogger := ctxLogger.With("extra", "value")
	if childLogger == nil {
		t.Fatal("ContextLogger.With returned nil")
	}

	childLogger.Info("child message")
}

func TestContextLogger_With(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-with-1")

	logger, err := New(Config{
		Level:             "info",
		Format:            "json",
		RedactCredentials: false,
		BufferSize:        100,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Shutdown()

	ctxLogger := NewContextLogger(logger, ctx)

	childLogger := ctxLogger.With("key1", "value1", "key2", 42)
	if childLogger == nil {
		t.Fatal("ContextLogger.With returned nil")
	}

	childLogger.Info("test message")
}

func TestContextChaining(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-chain-1")
	ctx = WithSession(ctx, "sess-chain-1")
	ctx = WithProtocol(ctx, "http")

	if got := GetRequestID(ctx); got != "req-chain-1" {
		t.Errorf("After chaining, GetRequestID() = %q, want %q", got, "req-chain-1")
	}
	if got := GetSession(ctx); got != "sess-chain-1" {
		t.Errorf("After chaining, GetSession() = %q, want %q", got, "sess-chain-1")
	}
	if got := GetProtocol(ctx); got != "http" {
		t.Errorf("After chaining, GetProtocol() = %q, want %q", got, "http")
	}

	ctx = WithUpstream(ctx, "203.0.113.4:8080")
	ctx = WithProbeID(ctx, "probe-chain-1")

	if got := GetUpstream(ctx); got != "203.0.113.4:8080" {
		t.Errorf("After more chaining, GetUpstream() = %q, want %q", got, "203.0.113.4:8080")
	}
	if got := GetProbeID(ctx); got != "probe-chain-1" {
		t.Errorf("After more chaining, GetProbeID() = %q, want %q", got, "probe-chain-1")
	}

	if got := GetRequestID(ctx); got != "req-chain-1" {
		t.Errorf("Original value changed: GetRequestID() = %q, want %q", got, "req-chain-1")
	}
}

func TestContextOverwrite(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-old")

	if got := GetRequestID(ctx); got != "req-old" {
		t.Errorf("Initial GetRequestID() = %q, want %q", got, "req-old")
	}

	ctx = WithRequestID(ctx, "req-new")

	if got := GetRequestID(ctx); got != "req-new" {
		t.Errorf("After overwrite, GetRequestID() = %q, want %q", got, "req-new")
	}
}

func BenchmarkExtractContextFields(b *testing.B) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-bench")
	ctx = WithSession(ctx, "sess-bench")
	ctx = WithUpstream(ctx, "203.0.113.4:8080")
	ctx = WithProtocol(ctx, "http")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = extractContextFields(ctx)
	}
}

func BenchmarkWithRequestID(b *testing.B) {
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = WithRequestID(ctx, "req-123")
	}
}

func BenchmarkGetRequestID(b *testing.B) {
	ctx := WithRequestID(context.Background(), "req-123")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetRequestID(ctx)
	}
}
