package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/kidsafisha/api/internal/domain"
	"github.com/kidsafisha/api/internal/platform/textutil"
	"github.com/kidsafisha/api/internal/repositories"
)

// ErrSearchIndexUnavailable indicates storage could not be reached during a reindex.
var ErrSearchIndexUnavailable = errors.New("search index: repository unavailable")

// SearchIndexServiceDeps wires dependencies for the reindex service.
type SearchIndexServiceDeps struct {
	Events     repositories.EventRepository
	Venues     repositories.VenueRepository
	UnitOfWork repositories.UnitOfWork
	Clock      func() time.Time
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type searchIndexService struct {
	events repositories.EventRepository
	venues repositories.VenueRepository
	uow    repositories.UnitOfWork
	clock  func() time.Time
	logger func(context.Context, string, map[string]any)
}

var _ SearchIndexService = (*searchIndexService)(nil)

// NewSearchIndexService constructs the service that recomputes search text and minimum prices.
func NewSearchIndexService(deps SearchIndexServiceDeps) (SearchIndexService, error) {
	if deps.Events == nil {
		return nil, errors.New("search index service: event repository is required")
	}
	if deps.UnitOfWork == nil {
		return nil, errors.New("search index service: unit of work is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &searchIndexService{
		events: deps.Events,
		venues: deps.Venues,
		uow:    deps.UnitOfWork,
		clock:  clock,
		logger: logger,
	}, nil
}

// Reindex rewrites derived fields for every event (and venue, when configured) in one transaction.
// Rows whose derived values are already current are left untouched.
func (s *searchIndexService) Reindex(ctx context.Context) (ReindexReport, error) {
	started := s.clock()
	report := ReindexReport{StartedAt: started.UTC()}

	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		events, err := s.events.ListAllEvents(ctx)
		if err != nil {
			return err
		}
		for _, event := range events {
			report.Scanned++
			text := textutil.BuildSearchText(textutil.SearchFields{
				Title:       event.Title,
				Description: event.Description,
				CitySlug:    event.CitySlug,
				Tags:        event.Tags,
			})
			price := MinPrice(event.Tickets)
			if text == event.SearchText && equalFloatPtr(price, event.MinPrice) {
				continue
			}
			if err := s.events.UpdateDerived(ctx, event.ID, text, price); err != nil {
				return fmt.Errorf("event %s: %w", event.ID, err)
			}
			report.Updated++
		}

		if s.venues == nil {
			return nil
		}
		venues, err := s.venues.ListVenues(ctx, domain.VenueFilter{IncludeHidden: true})
		if err != nil {
			return err
		}
		for _, venue := range venues {
			report.Scanned++
			text := textutil.BuildSearchText(textutil.SearchFields{
				Title:       venue.Name,
				Description: venue.Address,
				CitySlug:    venue.CitySlug,
			})
			if text == venue.SearchText {
				continue
			}
			if err := s.venues.UpdateSearchText(ctx, venue.ID, text); err != nil {
				return fmt.Errorf("venue %s: %w", venue.ID, err)
			}
			report.Updated++
		}
		return nil
	})
	report.Duration = s.clock().Sub(started)
	if err != nil {
		if repositories.IsUnavailable(err) {
			return ReindexReport{}, fmt.Errorf("%w: %v", ErrSearchIndexUnavailable, err)
		}
		return ReindexReport{}, fmt.Errorf("search index: reindex: %w", err)
	}

	s.logger(ctx, "search.reindex.completed", map[string]any{
		"scanned":    report.Scanned,
		"updated":    report.Updated,
		"durationMs": report.Duration.Milliseconds(),
	})
	return report, nil
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
