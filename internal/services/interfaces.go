package services

import (
	"context"
	"net/url"

	domain "github.com/kidsafisha/api/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Event              = domain.Event
	EventSummary       = domain.EventSummary
	TicketType         = domain.TicketType
	City               = domain.City
	CityListItem       = domain.CityListItem
	Category           = domain.Category
	Venue              = domain.Venue
	FilterParams       = domain.FilterParams
	SortKey            = domain.SortKey
	SystemHealthReport = domain.SystemHealthReport
	ReindexReport      = domain.ReindexReport
)

// ListingService runs the public event listing: it parses raw query values, resolves the
// ordering and predicate, applies the page token and queries storage.
type ListingService interface {
	ListEvents(ctx context.Context, values url.Values) (EventListPage, error)
	GetEvent(ctx context.Context, eventID string) (EventDetail, error)
}

// EventListPage is one page of listing results plus the state needed to render filters.
type EventListPage struct {
	Events        []EventSummary
	NextPageToken string
	Sort          SortKey
	Applied       FilterParams
	SortOptions   []SortOption
	// PageReset reports that a stale page token was dropped and the first page served.
	PageReset bool
	// Truncated reports that more events match but lie past the deepest pageable offset.
	Truncated bool
}

// SortOption is a link to the same listing under another ordering. Query never carries page state.
type SortOption struct {
	Key      SortKey
	Query    string
	Selected bool
}

// EventDetail is an event with its description rendered to sanitised HTML.
type EventDetail struct {
	Event
	DescriptionHTML string
}

// CatalogService exposes reference lists used by listing filters.
type CatalogService interface {
	ListCities(ctx context.Context, opts CityListOptions) ([]CityListItem, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListVenues(ctx context.Context, req VenueListRequest) ([]Venue, error)
}

// CityListOptions toggles the administrative city view.
type CityListOptions struct {
	// IncludeHidden returns hidden cities and populates IsPublic on each item.
	IncludeHidden bool
}

// VenueListRequest narrows the venue list. City accepts a slug or id.
type VenueListRequest struct {
	City  string
	Query string
}

// SearchIndexService recomputes derived listing fields.
type SearchIndexService interface {
	Reindex(ctx context.Context) (ReindexReport, error)
}

// SystemService aggregates utility endpoints (health checks).
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}
