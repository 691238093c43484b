package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	domain "github.com/kidsafisha/api/internal/domain"
	"github.com/kidsafisha/api/internal/repositories"
)

type eventRepository struct{ store *Store }

func (r eventRepository) ListEvents(ctx context.Context, query domain.ListingQuery) (repositories.EventListing, error) {
	if err := ctx.Err(); err != nil {
		return repositories.EventListing{}, repositories.NewUnavailable("events.list", err)
	}

	r.store.mu.RLock()
	matched := make([]domain.EventSummary, 0, len(r.store.events))
	for _, event := range r.store.events {
		if matchesPredicate(event, query.Predicate) {
			matched = append(matched, cloneEvent(event).EventSummary)
		}
	}
	r.store.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return compareEvents(matched[i], matched[j], query.OrderBy) < 0
	})

	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return repositories.EventListing{Items: []domain.EventSummary{}}, nil
	}
	end := len(matched)
	if query.Limit > 0 && offset+query.Limit < end {
		end = offset + query.Limit
	}
	return repositories.EventListing{
		Items:   matched[offset:end],
		HasMore: end < len(matched),
	}, nil
}

func (r eventRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, repositories.NewUnavailable("events.get", err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	idx, ok := r.store.eventIndex[strings.TrimSpace(eventID)]
	if !ok {
		return domain.Event{}, repositories.NewNotFound("events.get", errNotFound)
	}
	return cloneEvent(r.store.events[idx]), nil
}

func (r eventRepository) ListAllEvents(ctx context.Context) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, repositories.NewUnavailable("events.list_all", err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	events := make([]domain.Event, 0, len(r.store.events))
	for _, event := range r.store.events {
		events = append(events, cloneEvent(event))
	}
	return events, nil
}

func (r eventRepository) UpdateDerived(ctx context.Context, eventID string, searchText string, minPrice *float64) error {
	if err := ctx.Err(); err != nil {
		return repositories.NewUnavailable("events.update_derived", err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idx, ok := r.store.eventIndex[eventID]
	if !ok {
		return repositories.NewNotFound("events.update_derived", errNotFound)
	}
	event := &r.store.events[idx]
	event.SearchText = searchText
	if minPrice != nil {
		price := *minPrice
		event.MinPrice = &price
	} else {
		event.MinPrice = nil
	}
	event.UpdatedAt = time.Now().UTC()
	return nil
}

func matchesPredicate(event domain.Event, predicate domain.PredicateSpec) bool {
	if predicate.PublishedOnly && !event.IsPublished {
		return false
	}
	if predicate.StartsAfter != nil && event.StartsAt.Before(*predicate.StartsAfter) {
		return false
	}
	if predicate.CityID != "" && event.CityID != predicate.CityID {
		return false
	}
	if len(predicate.CategoryIDs) > 0 && !containsString(predicate.CategoryIDs, event.CategoryID) {
		return false
	}
	if predicate.QuickFilter != "" && !containsString(event.Tags, predicate.QuickFilter) {
		return false
	}
	if predicate.AgeRange != nil && !ageOverlaps(event, *predicate.AgeRange) {
		return false
	}
	if predicate.PriceMax != nil {
		if event.MinPrice == nil || *event.MinPrice > *predicate.PriceMax {
			return false
		}
	}
	return containsAllTerms(event.SearchText, predicate.SearchTerms)
}

// ageOverlaps treats missing event bounds as open.
func ageOverlaps(event domain.Event, r domain.AgeRange) bool {
	if r.To != nil && event.AgeFrom != nil && *event.AgeFrom > *r.To {
		return false
	}
	if r.From != nil && event.AgeTo != nil && *event.AgeTo < *r.From {
		return false
	}
	return true
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func containsAllTerms(text string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// compareEvents mirrors SQL ordering: without NullsLast, NULL sorts as the largest value.
func compareEvents(a, b domain.EventSummary, orderBy []domain.OrderSpec) int {
	for _, spec := range orderBy {
		var cmp int
		switch spec.Field {
		case domain.OrderFieldCreatedAt:
			cmp = compareTime(a.CreatedAt, b.CreatedAt)
		case domain.OrderFieldStartsAt:
			cmp = compareTime(a.StartsAt, b.StartsAt)
		case domain.OrderFieldID:
			cmp = strings.Compare(a.ID, b.ID)
		case domain.OrderFieldMinPrice:
			if a.MinPrice == nil || b.MinPrice == nil {
				if cmp = compareNulls(a.MinPrice == nil, b.MinPrice == nil, spec); cmp != 0 {
					return cmp
				}
				continue
			}
			cmp = compareFloat(*a.MinPrice, *b.MinPrice)
		}
		if spec.Desc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp
		}
	}
	return 0
}

func compareNulls(aNull, bNull bool, spec domain.OrderSpec) int {
	if aNull == bNull {
		return 0
	}
	nullFirst := spec.Desc && !spec.NullsLast
	if aNull == nullFirst {
		return -1
	}
	return 1
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
