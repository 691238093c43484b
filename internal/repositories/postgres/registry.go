// Package postgres implements the repositories on top of a pgx connection pool.
package postgres

import (
	"context"
	"errors"

	ppostgres "github.com/kidsafisha/api/internal/platform/postgres"
	"github.com/kidsafisha/api/internal/repositories"
)

// Registry implements repositories.Registry backed by Postgres.
type Registry struct {
	provider *ppostgres.Provider
	health   repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry constructs a registry. health may be nil until attached with SetHealth.
func NewRegistry(provider *ppostgres.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("postgres registry requires provider")
	}
	return &Registry{provider: provider}, nil
}

// SetHealth attaches the health repository returned by Health.
func (r *Registry) SetHealth(health repositories.HealthRepository) {
	r.health = health
}

// Close releases the pool.
func (r *Registry) Close(context.Context) error {
	r.provider.Close()
	return nil
}

func (r *Registry) Events() repositories.EventRepository {
	return &EventRepository{provider: r.provider}
}

func (r *Registry) Cities() repositories.CityRepository {
	return &CityRepository{provider: r.provider}
}

func (r *Registry) Categories() repositories.CategoryRepository {
	return &CategoryRepository{provider: r.provider}
}

func (r *Registry) Venues() repositories.VenueRepository {
	return &VenueRepository{provider: r.provider}
}

func (r *Registry) Health() repositories.HealthRepository { return r.health }

// RunInTx runs fn in a transaction; repository calls made with the supplied ctx join it.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	pool, err := r.provider.Pool(ctx)
	if err != nil {
		return ppostgres.WrapError("transaction", err)
	}
	return ppostgres.RunTransaction(ctx, pool, fn)
}

func querier(ctx context.Context, provider *ppostgres.Provider) (ppostgres.Querier, error) {
	pool, err := provider.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return ppostgres.Conn(ctx, pool), nil
}
