// Package requestctx carries per-request state (logger, request id and trace) on context.Context.
package requestctx

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type stateKey struct{}

var noopLogger = zap.NewNop()

// TraceInfo captures trace metadata propagated through request context.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

// state is stored once per derived context; each setter copies it so parent contexts are
// never mutated.
type state struct {
	logger    *zap.Logger
	requestID string
	trace     TraceInfo
	hasTrace  bool
}

func load(ctx context.Context) state {
	if ctx == nil {
		return state{}
	}
	s, _ := ctx.Value(stateKey{}).(state)
	return s
}

func store(ctx context.Context, s state) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, stateKey{}, s)
}

// WithLogger stores the logger in context for downstream consumers.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = noopLogger
	}
	s := load(ctx)
	s.logger = logger
	return store(ctx, s)
}

// Logger retrieves the zap logger from context or returns a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if logger := load(ctx).logger; logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger exposes the shared noop logger instance used across the package.
func NoopLogger() *zap.Logger { return noopLogger }

// WithRequestID records the request identifier. It is also stored under chi's RequestIDKey so
// middleware.GetReqID keeps working for chi's own handlers.
func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, middleware.RequestIDKey, id)
	s := load(ctx)
	s.requestID = id
	return store(ctx, s)
}

// RequestID returns the request identifier, falling back to one set by chi's RequestID middleware.
func RequestID(ctx context.Context) string {
	if id := load(ctx).requestID; id != "" {
		return id
	}
	if ctx == nil {
		return ""
	}
	return middleware.GetReqID(ctx)
}

// WithTrace stores the trace metadata on the context for downstream usage.
func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	s := load(ctx)
	s.trace = info
	s.hasTrace = true
	return store(ctx, s)
}

// Trace retrieves the trace metadata from context when available.
func Trace(ctx context.Context) (TraceInfo, bool) {
	s := load(ctx)
	return s.trace, s.hasTrace
}

// TraceID extracts the trace identifier from context when present.
func TraceID(ctx context.Context) string {
	return load(ctx).trace.TraceID
}
