package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	domain "github.com/kidsafisha/api/internal/domain"
	"github.com/kidsafisha/api/internal/platform/pagination"
	"github.com/kidsafisha/api/internal/platform/queryparams"
	"github.com/kidsafisha/api/internal/platform/textutil"
	"github.com/kidsafisha/api/internal/repositories"
)

const listingMeterName = "github.com/kidsafisha/api/internal/services/listing"

var (
	// ErrListingInvalidInput indicates a malformed paging parameter.
	ErrListingInvalidInput = errors.New("listing: invalid input")
	// ErrListingNotFound indicates the event does not exist or is not published.
	ErrListingNotFound = errors.New("listing: not found")
	// ErrListingUnavailable indicates the persistence layer is unavailable.
	ErrListingUnavailable = errors.New("listing: repository unavailable")
	// ErrListingRepositoryFailure wraps unexpected repository failures.
	ErrListingRepositoryFailure = errors.New("listing: repository failure")
)

// ListingServiceDeps wires dependencies for the listing service implementation.
// UpcomingOnly hides events that already started.
type ListingServiceDeps struct {
	Events       repositories.EventRepository
	Cities       repositories.CityRepository
	Pagination   pagination.Options
	UpcomingOnly bool
	Clock        func() time.Time
	Meter        metric.Meter
	Logger       func(ctx context.Context, event string, fields map[string]any)
}

type listingService struct {
	events       repositories.EventRepository
	cities       repositories.CityRepository
	pageOpts     pagination.Options
	upcomingOnly bool
	clock        func() time.Time
	requests     metric.Int64Counter
	logger       func(context.Context, string, map[string]any)
}

var _ ListingService = (*listingService)(nil)

// NewListingService constructs the public listing service.
func NewListingService(deps ListingServiceDeps) (ListingService, error) {
	if deps.Events == nil {
		return nil, errors.New("listing service: event repository is required")
	}
	if deps.Cities == nil {
		return nil, errors.New("listing service: city repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(listingMeterName)
	}
	requests, err := meter.Int64Counter(
		"listing.requests",
		metric.WithDescription("Listing queries served, by resolved sort key"),
	)
	if err != nil {
		return nil, fmt.Errorf("listing service: register metrics: %w", err)
	}

	return &listingService{
		events:       deps.Events,
		cities:       deps.Cities,
		pageOpts:     deps.Pagination,
		upcomingOnly: deps.UpcomingOnly,
		clock: func() time.Time {
			return clock().UTC()
		},
		requests: requests,
		logger:   logger,
	}, nil
}

func (s *listingService) ListEvents(ctx context.Context, values url.Values) (EventListPage, error) {
	if values == nil {
		values = url.Values{}
	}

	params := ParseFilterParams(values)
	if params.CityID != "" {
		cityID, err := s.resolveCity(ctx, params.CityID)
		if err != nil {
			return EventListPage{}, err
		}
		params.CityID = cityID
	}

	resolution := ResolveListing(params)
	resolution.Predicate.PublishedOnly = true
	if s.upcomingOnly {
		now := s.clock()
		resolution.Predicate.StartsAfter = &now
	}

	page, err := pagination.Parse(values, string(resolution.Sort), s.pageOpts)
	if err != nil {
		return EventListPage{}, fmt.Errorf("%w: %v", ErrListingInvalidInput, err)
	}
	if page.Reset {
		s.logger(ctx, "listing.page_token.reset", map[string]any{"sort": string(resolution.Sort)})
	}

	listing, err := s.events.ListEvents(ctx, domain.ListingQuery{
		Sort:      resolution.Sort,
		OrderBy:   resolution.OrderBy,
		Predicate: resolution.Predicate,
		Offset:    page.Offset(),
		Limit:     page.PageSize,
	})
	if err != nil {
		return EventListPage{}, s.mapRepositoryError(err)
	}

	s.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("sort", string(resolution.Sort))))

	events := listing.Items
	if events == nil {
		events = []EventSummary{}
	}
	next, truncated := page.Next(listing.HasMore)
	if truncated {
		s.logger(ctx, "listing.page_limit.reached", map[string]any{
			"sort":   string(resolution.Sort),
			"offset": page.Offset(),
			"limit":  pagination.MaxOffset(),
		})
	}

	params.Sort = resolution.Sort
	return EventListPage{
		Events:        events,
		NextPageToken: next,
		Sort:          resolution.Sort,
		Applied:       params,
		SortOptions:   sortOptions(values, resolution.Sort),
		PageReset:     page.Reset,
		Truncated:     truncated,
	}, nil
}

func (s *listingService) GetEvent(ctx context.Context, eventID string) (EventDetail, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return EventDetail{}, fmt.Errorf("%w: event id is required", ErrListingInvalidInput)
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return EventDetail{}, s.mapRepositoryError(err)
	}
	if !event.IsPublished {
		return EventDetail{}, ErrListingNotFound
	}

	event.MinPrice = MinPrice(event.Tickets)
	html, err := textutil.RenderMarkdown(event.Description)
	if err != nil {
		s.logger(ctx, "listing.description.render_failed", map[string]any{"eventID": event.ID, "error": err.Error()})
		html = ""
	}
	return EventDetail{Event: event, DescriptionHTML: html}, nil
}

// resolveCity maps a slug or id onto the city id. An unknown reference is kept as-is and
// matches no events.
func (s *listingService) resolveCity(ctx context.Context, ref string) (string, error) {
	city, err := s.cities.FindCity(ctx, ref)
	if err != nil {
		if repositories.IsNotFound(err) {
			return ref, nil
		}
		return "", s.mapRepositoryError(err)
	}
	return city.ID, nil
}

func (s *listingService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrListingUnavailable, err)
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrListingNotFound
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrListingUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrListingRepositoryFailure, err)
}

// sortOptions links every sort key to the current filters. Paging parameters are dropped.
func sortOptions(values url.Values, selected domain.SortKey) []SortOption {
	keys := domain.SortKeys()
	options := make([]SortOption, 0, len(keys))
	for _, key := range keys {
		options = append(options, SortOption{
			Key:      key,
			Query:    queryparams.Encode(queryparams.WithSort(values, string(key))),
			Selected: key == selected,
		})
	}
	return options
}
