package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIKeyHeader = "X-Admin-Key"
	bearerPrefix        = "bearer "
)

// Logger matches printf-style loggers such as the observability adapter.
type Logger interface {
	Printf(format string, args ...any)
}

// MetricsRecorder records verification outcomes for observability.
type MetricsRecorder interface {
	RecordVerification(ctx context.Context, kind string, success bool, reason string, duration time.Duration)
}

// MetricsRecorderFunc adapts a function to MetricsRecorder.
type MetricsRecorderFunc func(context.Context, string, bool, string, time.Duration)

// RecordVerification implements MetricsRecorder.
func (f MetricsRecorderFunc) RecordVerification(ctx context.Context, kind string, success bool, reason string, duration time.Duration) {
	if f != nil {
		f(ctx, kind, success, reason, duration)
	}
}

// APIKeyValidator guards administrative routes with a shared key. The key is accepted from the
// X-Admin-Key header or an Authorization bearer token.
type APIKeyValidator struct {
	digest  [sha256.Size]byte
	enabled bool
	header  string
	logger  Logger
	metrics MetricsRecorder
	now     func() time.Time
}

// APIKeyOption customises the validator.
type APIKeyOption func(*APIKeyValidator)

// NewAPIKeyValidator builds a validator for key. A blank key rejects every request with 503.
func NewAPIKeyValidator(key string, opts ...APIKeyOption) *APIKeyValidator {
	key = strings.TrimSpace(key)
	validator := &APIKeyValidator{
		digest:  sha256.Sum256([]byte(key)),
		enabled: key != "",
		header:  defaultAPIKeyHeader,
		logger:  log.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(validator)
		}
	}
	return validator
}

// WithAPIKeyHeader overrides the header consulted before Authorization.
func WithAPIKeyHeader(header string) APIKeyOption {
	return func(v *APIKeyValidator) {
		if trimmed := strings.TrimSpace(header); trimmed != "" {
			v.header = trimmed
		}
	}
}

// WithAPIKeyLogger overrides the validator logger.
func WithAPIKeyLogger(logger Logger) APIKeyOption {
	return func(v *APIKeyValidator) {
		v.logger = logger
	}
}

// WithAPIKeyMetrics sets the metrics recorder.
func WithAPIKeyMetrics(metrics MetricsRecorder) APIKeyOption {
	return func(v *APIKeyValidator) {
		v.metrics = metrics
	}
}

// WithAPIKeyClock injects a clock for latency measurements.
func WithAPIKeyClock(now func() time.Time) APIKeyOption {
	return func(v *APIKeyValidator) {
		if now != nil {
			v.now = now
		}
	}
}

// RequireAPIKey rejects requests that do not present the configured key.
func (v *APIKeyValidator) RequireAPIKey() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := v.now()
			ctx := r.Context()

			if !v.enabled {
				if v.logger != nil {
					v.logger.Printf("auth: admin api key not configured; rejecting %s %s", r.Method, r.URL.Path)
				}
				v.record(ctx, false, "key_not_configured", start)
				respondAuthError(w, http.StatusServiceUnavailable, "admin_disabled", "admin api key not configured")
				return
			}

			presented := v.presentedKey(r)
			if presented == "" {
				v.record(ctx, false, "key_missing", start)
				respondAuthError(w, http.StatusUnauthorized, "unauthenticated", "admin api key required")
				return
			}

			digest := sha256.Sum256([]byte(presented))
			if subtle.ConstantTimeCompare(digest[:], v.digest[:]) != 1 {
				v.record(ctx, false, "key_mismatch", start)
				respondAuthError(w, http.StatusForbidden, "permission_denied", "admin api key invalid")
				return
			}

			v.record(ctx, true, "ok", start)
			next.ServeHTTP(w, r)
		})
	}
}

func (v *APIKeyValidator) presentedKey(r *http.Request) string {
	if value := strings.TrimSpace(r.Header.Get(v.header)); value != "" {
		return value
	}
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authz) > len(bearerPrefix) && strings.EqualFold(authz[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(authz[len(bearerPrefix):])
	}
	return ""
}

func (v *APIKeyValidator) record(ctx context.Context, success bool, reason string, start time.Time) {
	if v == nil || v.metrics == nil {
		return
	}
	v.metrics.RecordVerification(ctx, "api_key", success, reason, v.now().Sub(start))
}

func respondAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   code,
		"message": message,
		"status":  status,
	})
}
