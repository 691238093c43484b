package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/kidsafisha/api/internal/di"
	"github.com/kidsafisha/api/internal/handlers"
	"github.com/kidsafisha/api/internal/platform/auth"
	"github.com/kidsafisha/api/internal/platform/config"
	"github.com/kidsafisha/api/internal/platform/httpx"
	"github.com/kidsafisha/api/internal/platform/observability"
	"github.com/kidsafisha/api/internal/platform/secrets"
	"github.com/kidsafisha/api/internal/services"
)

const meterName = "github.com/kidsafisha/api"

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	envValues, err := config.EnvironmentValues()
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	fetcher, err := newSecretFetcher(ctx, logger, envValues)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx,
		config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)),
		config.WithRequiredSecrets(requiredSecretNames(envValues)...),
	)
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			logger.Fatal("missing required secrets", zap.Strings("secrets", missing.RedactedNames()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	buildInfo := buildInfoFromEnv(envValues, cfg, startedAt)
	meter := otel.GetMeterProvider().Meter(meterName)

	containerOpts := []di.Option{
		di.WithLogger(logger),
		di.WithMeter(meter),
		di.WithBuildInfo(buildInfo),
	}
	if strings.TrimSpace(envValues["API_SECRETS_PROJECT_ID"]) != "" {
		containerOpts = append(containerOpts, di.WithSecretResolver(fetcher.Resolve))
	}

	registry, err := di.OpenRegistry(ctx, cfg, containerOpts...)
	if err != nil {
		logger.Fatal("failed to initialise storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	container, err := di.NewContainer(ctx, cfg, registry, containerOpts...)
	if err != nil {
		_ = registry.Close(ctx)
		logger.Fatal("failed to initialise services", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			logger.Warn("storage close error", zap.Error(err))
		}
	}()

	projectID := strings.TrimSpace(cfg.Secrets.ProjectID)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.RequestIDMiddleware,
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
		httpx.CORS(cfg.CORS.AllowedOrigins),
	}

	adminGate := buildAdminMiddleware(logger.Named("auth"), meter, cfg)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfo),
		handlers.WithHealthSystemService(container.Services.System),
	)
	eventHandlers := handlers.NewEventHandlers(container.Services.Listing)
	catalogHandlers := handlers.NewCatalogHandlers(container.Services.Catalog)
	searchHandlers := handlers.NewSearchIndexHandlers(container.Services.SearchIndex)

	var opts []handlers.Option
	opts = append(opts, handlers.WithMiddlewares(middlewares...))
	opts = append(opts, handlers.WithHealthHandlers(healthHandlers))
	opts = append(opts, handlers.WithPublicRoutes(func(r chi.Router) {
		eventHandlers.Routes(r)
		catalogHandlers.Routes(r)
	}))
	opts = append(opts, handlers.WithPublicMiddlewares(handlers.RateLimitMiddleware(cfg.RateLimits.PublicPerMinute, time.Minute, nil)))
	opts = append(opts, handlers.WithAdminRoutes(catalogHandlers.AdminRoutes))
	opts = append(opts, handlers.WithAdminMiddlewares(adminGate))
	opts = append(opts, handlers.WithInternalRoutes(searchHandlers.Routes))
	opts = append(opts, handlers.WithInternalMiddlewares(adminGate))

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(
		zap.String("addr", server.Addr),
		zap.String("storage", cfg.Storage.Driver),
	)
	go func() {
		serverLogger.Info("kidsafisha api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildInfoFromEnv(env map[string]string, cfg config.Config, started time.Time) services.BuildInfo {
	version := strings.TrimSpace(env["API_BUILD_VERSION"])
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(env["API_BUILD_COMMIT_SHA"])
	if commit == "" {
		commit = "unknown"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "local"
	}
	return services.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}

func buildAdminMiddleware(logger *zap.Logger, meter metric.Meter, cfg config.Config) func(http.Handler) http.Handler {
	if strings.TrimSpace(cfg.Admin.APIKey) == "" {
		logger.Warn("auth: admin api key not configured; admin and internal routes are disabled")
	}

	opts := []auth.APIKeyOption{
		auth.WithAPIKeyLogger(observability.NewPrintfAdapter(logger)),
	}
	if counter, err := meter.Int64Counter(
		"auth.requests",
		metric.WithDescription("Admin key checks, by outcome"),
	); err == nil {
		opts = append(opts, auth.WithAPIKeyMetrics(auth.MetricsRecorderFunc(func(ctx context.Context, kind string, success bool, reason string, _ time.Duration) {
			counter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("kind", kind),
				attribute.Bool("success", success),
				attribute.String("reason", reason),
			))
		})))
	} else {
		logger.Warn("auth: metrics disabled", zap.Error(err))
	}

	return auth.NewAPIKeyValidator(cfg.Admin.APIKey, opts...).RequireAPIKey()
}

func newSecretFetcher(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Fetcher, error) {
	lookup := func(key string) string {
		if env == nil {
			return ""
		}
		return strings.TrimSpace(env[key])
	}

	fallbackPath := lookup("API_SECRETS_FALLBACK_FILE")
	if fallbackPath == "" {
		fallbackPath = ".secrets.local"
	}

	opts := []secrets.Option{
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithFallbackFile(fallbackPath),
	}
	if project := lookup("API_SECRETS_PROJECT_ID"); project != "" {
		opts = append(opts, secrets.WithProject(project))
	}
	if raw := lookup("API_SECRETS_CACHE_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil {
			opts = append(opts, secrets.WithCacheTTL(ttl))
		}
	}
	if credentialsFile := lookup("API_SECRETS_CREDENTIALS_FILE"); credentialsFile != "" {
		opts = append(opts, secrets.WithClientOptions(option.WithCredentialsFile(credentialsFile)))
	}

	return secrets.NewFetcher(ctx, opts...)
}

// requiredSecretNames lists the secrets that must resolve to a non-empty value before startup.
func requiredSecretNames(env map[string]string) []string {
	var required []string
	driver := strings.ToLower(strings.TrimSpace(env["API_STORAGE_DRIVER"]))
	if driver == "" || driver == config.StorageDriverPostgres {
		required = append(required, "Database.URL")
	}
	if environment := strings.ToLower(strings.TrimSpace(env["API_ENVIRONMENT"])); environment == "prod" || environment == "production" {
		required = append(required, "Admin.APIKey")
	}
	return required
}
