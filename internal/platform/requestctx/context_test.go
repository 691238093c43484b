package requestctx

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func TestStateSettersDoNotLeakIntoParent(t *testing.T) {
	parent := WithRequestID(context.Background(), "req-1")
	logger := zap.NewExample()
	child := WithTrace(WithLogger(parent, logger), TraceInfo{TraceID: "trace-1"})

	if got := RequestID(child); got != "req-1" {
		t.Fatalf("expected request id to survive later setters, got %q", got)
	}
	if Logger(child) != logger {
		t.Fatalf("expected child logger")
	}
	if got := TraceID(child); got != "trace-1" {
		t.Fatalf("expected trace id, got %q", got)
	}

	if Logger(parent) != NoopLogger() {
		t.Fatalf("parent context must keep the noop logger")
	}
	if _, ok := Trace(parent); ok {
		t.Fatalf("parent context must not see child trace")
	}
}

func TestRequestIDSharedWithChi(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-2")
	if got := middleware.GetReqID(ctx); got != "req-2" {
		t.Fatalf("expected chi to see request id, got %q", got)
	}

	chiOnly := context.WithValue(context.Background(), middleware.RequestIDKey, "req-3")
	if got := RequestID(chiOnly); got != "req-3" {
		t.Fatalf("expected fallback to chi request id, got %q", got)
	}
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}
