package repositories

import (
	"context"

	domain "github.com/kidsafisha/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Events() EventRepository
	Cities() CityRepository
	Categories() CategoryRepository
	Venues() VenueRepository
	Health() HealthRepository
	UnitOfWork
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork allows grouping repository operations in a transactional boundary when supported.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventListing is one page of events plus whether rows remain after it.
type EventListing struct {
	Items   []domain.EventSummary
	HasMore bool
}

// EventRepository executes listing queries and exposes event records.
type EventRepository interface {
	// ListEvents applies the predicate and ordering of query and returns the window
	// [Offset, Offset+Limit).
	ListEvents(ctx context.Context, query domain.ListingQuery) (EventListing, error)
	// GetEvent returns the event with tickets. Should return a RepositoryError with IsNotFound
	// when the event is absent.
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	// ListAllEvents returns every event with tickets, for reindexing.
	ListAllEvents(ctx context.Context) ([]domain.Event, error)
	// UpdateDerived stores recomputed search text and minimum price for an event.
	UpdateDerived(ctx context.Context, eventID string, searchText string, minPrice *float64) error
}

// CityRepository reads cities.
type CityRepository interface {
	ListCities(ctx context.Context, includeHidden bool) ([]domain.City, error)
	// FindCity resolves a city by slug or id.
	FindCity(ctx context.Context, ref string) (domain.City, error)
}

// CategoryRepository reads event categories.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// VenueRepository reads venues.
type VenueRepository interface {
	ListVenues(ctx context.Context, filter domain.VenueFilter) ([]domain.Venue, error)
	UpdateSearchText(ctx context.Context, venueID string, searchText string) error
}

// HealthRepository reports dependency health for readiness checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
