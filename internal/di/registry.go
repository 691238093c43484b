package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kidsafisha/api/internal/platform/config"
	ppostgres "github.com/kidsafisha/api/internal/platform/postgres"
	"github.com/kidsafisha/api/internal/repositories"
	"github.com/kidsafisha/api/internal/repositories/memory"
	pgrepo "github.com/kidsafisha/api/internal/repositories/postgres"
)

const (
	secretHealthReference = "secret://system/healthz?version=latest"
	defaultCheckTimeout   = 2 * time.Second
)

// OpenRegistry builds the storage driver selected by cfg.Storage.Driver and attaches a
// dependency health repository to it.
func OpenRegistry(ctx context.Context, cfg config.Config, opts ...Option) (repositories.Registry, error) {
	o := applyOptions(opts)

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		return openPostgres(ctx, cfg, o)
	case config.StorageDriverMemory:
		return openMemory(cfg, o)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.Config, o options) (repositories.Registry, error) {
	provider := ppostgres.NewProvider(cfg.Database, ppostgres.WithDialTimeout(5*time.Second))

	if cfg.Database.Migrate {
		pool, err := provider.Pool(ctx)
		if err != nil {
			provider.Close()
			return nil, fmt.Errorf("open postgres pool: %w", err)
		}
		if err := ppostgres.Migrate(ctx, pool); err != nil {
			provider.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		o.logger.Info("postgres migrations applied")
	}

	reg, err := pgrepo.NewRegistry(provider)
	if err != nil {
		provider.Close()
		return nil, err
	}

	health, err := newHealthRepository(repositories.DependencyCheck{
		Name:     "postgres",
		Required: true,
		Timeout:  1500 * time.Millisecond,
		Check:    provider.Ping,
	}, o)
	if err != nil {
		provider.Close()
		return nil, err
	}
	reg.SetHealth(health)
	return reg, nil
}

func openMemory(cfg config.Config, o options) (repositories.Registry, error) {
	var seed memory.Seed
	if path := strings.TrimSpace(cfg.Storage.SeedFile); path != "" {
		loaded, err := memory.LoadSeedFile(path)
		if err != nil {
			return nil, err
		}
		seed = loaded
	} else {
		o.logger.Warn("memory storage started without a seed file")
	}

	store := memory.NewStore(seed)
	health, err := newHealthRepository(repositories.DependencyCheck{
		Name:     "memory",
		Required: true,
		Check:    store.Ping,
	}, o)
	if err != nil {
		return nil, err
	}
	store.SetHealth(health)
	o.logger.Info("memory storage ready",
		zap.Int("cities", len(seed.Cities)),
		zap.Int("events", len(seed.Events)),
	)
	return store, nil
}

func newHealthRepository(storage repositories.DependencyCheck, o options) (repositories.HealthRepository, error) {
	checks := []repositories.DependencyCheck{storage}
	if resolve := o.secrets; resolve != nil {
		checks = append(checks, repositories.DependencyCheck{
			Name:    "secretManager",
			Timeout: time.Second,
			Check: func(ctx context.Context) error {
				return secretReachable(resolve(ctx, secretHealthReference))
			},
		})
	}
	return repositories.NewDependencyHealthRepository(checks,
		repositories.WithDependencyTimeout(defaultCheckTimeout),
		repositories.WithDependencyClock(o.clock),
	)
}

// secretReachable treats a missing health secret as healthy since Secret Manager answered.
func secretReachable(_ string, err error) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
		return nil
	}
	return err
}
