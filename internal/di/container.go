package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/kidsafisha/api/internal/platform/config"
	"github.com/kidsafisha/api/internal/platform/observability"
	"github.com/kidsafisha/api/internal/platform/pagination"
	"github.com/kidsafisha/api/internal/repositories"
	"github.com/kidsafisha/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Listing     services.ListingService
	Catalog     services.CatalogService
	SearchIndex services.SearchIndexService
	System      services.SystemService
}

// Container wires repositories and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// Option customises container and registry construction.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	meter   metric.Meter
	build   services.BuildInfo
	secrets func(ctx context.Context, ref string) (string, error)
	clock   func() time.Time
}

// WithLogger sets the base logger handed to services.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeter sets the OpenTelemetry meter used by instrumented services.
func WithMeter(meter metric.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithBuildInfo records the build metadata reported by the system service.
func WithBuildInfo(build services.BuildInfo) Option {
	return func(o *options) {
		o.build = build
	}
}

// WithSecretResolver enables the optional Secret Manager readiness check.
func WithSecretResolver(resolve func(ctx context.Context, ref string) (string, error)) Option {
	return func(o *options) {
		o.secrets = resolve
	}
}

// WithClock overrides the service clock.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// NewContainer constructs the runtime dependencies on top of reg. The memory driver carries no
// precomputed search text, so its index is rebuilt before the container is returned.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, opts ...Option) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}
	o := applyOptions(opts)

	svc, err := buildServices(reg, cfg, o)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Driver == config.StorageDriverMemory {
		report, err := svc.SearchIndex.Reindex(ctx)
		if err != nil {
			return nil, fmt.Errorf("build memory search index: %w", err)
		}
		o.logger.Info("memory search index built",
			zap.Int("scanned", report.Scanned),
			zap.Int("updated", report.Updated),
		)
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Services:     svc,
	}, nil
}

// Close releases resources such as the connection pool.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(reg repositories.Registry, cfg config.Config, o options) (Services, error) {
	var svc Services

	listingSvc, err := services.NewListingService(services.ListingServiceDeps{
		Events: reg.Events(),
		Cities: reg.Cities(),
		Pagination: pagination.Options{
			DefaultPageSize: cfg.Listing.DefaultPageSize,
			MaxPageSize:     cfg.Listing.MaxPageSize,
		},
		UpcomingOnly: cfg.Listing.UpcomingOnly,
		Clock:        o.clock,
		Meter:        o.meter,
		Logger:       observability.EventLogger(o.logger, "listing"),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build listing service: %w", err)
	}
	svc.Listing = listingSvc

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Cities:     reg.Cities(),
		Categories: reg.Categories(),
		Venues:     reg.Venues(),
		Orderer:    services.NewCityOrderer(cfg.Cities.PrimarySlug, cfg.Cities.SecondarySlug),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalogSvc

	searchSvc, err := services.NewSearchIndexService(services.SearchIndexServiceDeps{
		Events:     reg.Events(),
		Venues:     reg.Venues(),
		UnitOfWork: reg,
		Clock:      o.clock,
		Logger:     observability.EventLogger(o.logger, "search"),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build search index service: %w", err)
	}
	svc.SearchIndex = searchSvc

	if healthRepo := reg.Health(); healthRepo != nil {
		build := o.build
		if build.Environment == "" {
			build.Environment = cfg.Environment
		}
		systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
			HealthRepository: healthRepo,
			Clock:            o.clock,
			Build:            build,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build system service: %w", err)
		}
		svc.System = systemSvc
	}

	return svc, nil
}
