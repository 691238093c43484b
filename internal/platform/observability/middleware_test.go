package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kidsafisha/api/internal/platform/requestctx"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("mints ulid", func(t *testing.T) {
		var seen string
		handler := RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = middleware.GetReqID(r.Context())
		}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/public/events", nil))

		if _, err := ulid.Parse(seen); err != nil {
			t.Fatalf("expected ulid request id, got %q: %v", seen, err)
		}
		if got := rr.Header().Get(RequestIDHeader); got != seen {
			t.Fatalf("expected response header %q, got %q", seen, got)
		}
	})

	t.Run("reuses client id", func(t *testing.T) {
		var seen string
		handler := RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = middleware.GetReqID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, "  edge-42\x00 ")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if seen != "edge-42" {
			t.Fatalf("expected sanitised client id, got %q", seen)
		}
	})
}

func TestRequestLoggerMiddlewareLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	handler := InjectLoggerMiddleware(logger)(RequestIDMiddleware(RequestLoggerMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))

	completed := logs.FilterMessage("request completed").All()
	if len(completed) != 1 {
		t.Fatalf("expected one completion entry, got %d", len(completed))
	}
	entry := completed[0]
	if entry.Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level for 503, got %s", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["status"] != int64(http.StatusServiceUnavailable) {
		t.Fatalf("expected status field, got %v", fields["status"])
	}
	if fields["request_id"] == "" {
		t.Fatalf("expected request_id field")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/public/events", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "internal_server_error" {
		t.Fatalf("unexpected error code %v", body["error"])
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatalf("expected panic to be logged")
	}
}

func TestEventLoggerPrefersRequestLogger(t *testing.T) {
	fallbackCore, fallbackLogs := observer.New(zapcore.DebugLevel)
	requestCore, requestLogs := observer.New(zapcore.DebugLevel)
	log := EventLogger(zap.New(fallbackCore), "listing")

	log(context.Background(), "listing.page_token.reset", map[string]any{"sort": "new"})
	log(requestctx.WithLogger(context.Background(), zap.New(requestCore)), "listing.page_token.reset", nil)

	if fallbackLogs.Len() != 1 || requestLogs.Len() != 1 {
		t.Fatalf("expected one entry per logger, got fallback=%d request=%d", fallbackLogs.Len(), requestLogs.Len())
	}
	fields := fallbackLogs.All()[0].ContextMap()
	if fields["event"] != "listing.page_token.reset" || fields["sort"] != "new" || fields["component"] != "listing" {
		t.Fatalf("unexpected fields %v", fields)
	}
}
