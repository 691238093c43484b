// Package memory is an in-process storage driver used for local runs and tests.
// It evaluates listing queries with the same semantics as the Postgres driver.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	domain "github.com/kidsafisha/api/internal/domain"
	"github.com/kidsafisha/api/internal/repositories"
)

var errNotFound = errors.New("not found")

// Store holds the seeded catalog and implements repositories.Registry.
type Store struct {
	mu         sync.RWMutex
	txMu       sync.Mutex
	cities     []domain.City
	categories []domain.Category
	venues     []domain.Venue
	events     []domain.Event
	eventIndex map[string]int
	health     repositories.HealthRepository
}

var _ repositories.Registry = (*Store)(nil)

// NewStore builds a store from seed content. The seed is copied.
func NewStore(seed Seed) *Store {
	store := &Store{
		cities:     append([]domain.City(nil), seed.Cities...),
		categories: append([]domain.Category(nil), seed.Categories...),
		venues:     append([]domain.Venue(nil), seed.Venues...),
		events:     make([]domain.Event, 0, len(seed.Events)),
		eventIndex: make(map[string]int, len(seed.Events)),
	}
	for _, event := range seed.Events {
		store.eventIndex[event.ID] = len(store.events)
		store.events = append(store.events, cloneEvent(event))
	}
	return store
}

// SetHealth attaches the health repository returned by Health.
func (s *Store) SetHealth(health repositories.HealthRepository) {
	s.health = health
}

// Ping always succeeds; it exists so the store can back a readiness check.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) Events() repositories.EventRepository { return eventRepository{s} }

func (s *Store) Cities() repositories.CityRepository { return cityRepository{s} }

func (s *Store) Categories() repositories.CategoryRepository { return categoryRepository{s} }

func (s *Store) Venues() repositories.VenueRepository { return venueRepository{s} }

func (s *Store) Health() repositories.HealthRepository { return s.health }

// RunInTx serialises transactional work. Writes are not rolled back on error.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return errors.New("memory store: transaction function is required")
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

type cityRepository struct{ store *Store }

func (r cityRepository) ListCities(ctx context.Context, includeHidden bool) ([]domain.City, error) {
	if err := ctx.Err(); err != nil {
		return nil, repositories.NewUnavailable("cities.list", err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	cities := make([]domain.City, 0, len(r.store.cities))
	for _, city := range r.store.cities {
		if !includeHidden && !city.IsPublic {
			continue
		}
		cities = append(cities, city)
	}
	return cities, nil
}

func (r cityRepository) FindCity(ctx context.Context, ref string) (domain.City, error) {
	if err := ctx.Err(); err != nil {
		return domain.City{}, repositories.NewUnavailable("cities.find", err)
	}
	ref = strings.TrimSpace(ref)
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, city := range r.store.cities {
		if city.Slug == ref || city.ID == ref {
			return city, nil
		}
	}
	return domain.City{}, repositories.NewNotFound("cities.find", errNotFound)
}

type categoryRepository struct{ store *Store }

func (r categoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, repositories.NewUnavailable("categories.list", err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.Category(nil), r.store.categories...), nil
}

type venueRepository struct{ store *Store }

func (r venueRepository) ListVenues(ctx context.Context, filter domain.VenueFilter) ([]domain.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, repositories.NewUnavailable("venues.list", err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	venues := make([]domain.Venue, 0, len(r.store.venues))
	for _, venue := range r.store.venues {
		if !filter.IncludeHidden && !venue.IsPublic {
			continue
		}
		if filter.CityID != "" && venue.CityID != filter.CityID {
			continue
		}
		if !containsAllTerms(venue.SearchText, filter.SearchTerms) {
			continue
		}
		venues = append(venues, venue)
	}
	return venues, nil
}

func (r venueRepository) UpdateSearchText(ctx context.Context, venueID string, searchText string) error {
	if err := ctx.Err(); err != nil {
		return repositories.NewUnavailable("venues.update_search_text", err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.venues {
		if r.store.venues[i].ID == venueID {
			r.store.venues[i].SearchText = searchText
			return nil
		}
	}
	return repositories.NewNotFound("venues.update_search_text", errNotFound)
}

func cloneEvent(event domain.Event) domain.Event {
	out := event
	out.Tags = append([]string(nil), event.Tags...)
	out.Tickets = make([]domain.TicketType, len(event.Tickets))
	for i, ticket := range event.Tickets {
		out.Tickets[i] = ticket
		if ticket.Price != nil {
			price := *ticket.Price
			out.Tickets[i].Price = &price
		}
	}
	out.AgeFrom = copyInt(event.AgeFrom)
	out.AgeTo = copyInt(event.AgeTo)
	if event.MinPrice != nil {
		price := *event.MinPrice
		out.MinPrice = &price
	}
	return out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}
