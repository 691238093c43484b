package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	domain "github.com/kidsafisha/api/internal/domain"
	ppostgres "github.com/kidsafisha/api/internal/platform/postgres"
	"github.com/kidsafisha/api/internal/repositories"
)

// EventRepository implements repositories.EventRepository.
type EventRepository struct {
	provider *ppostgres.Provider
}

var _ repositories.EventRepository = (*EventRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EventRepository) ListEvents(ctx context.Context, query domain.ListingQuery) (repositories.EventListing, error) {
	sql, args, err := buildListingSQL(query)
	if err != nil {
		return repositories.EventListing{}, err
	}
	q, err := querier(ctx, r.provider)
	if err != nil {
		return repositories.EventListing{}, ppostgres.WrapError("events.list", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return repositories.EventListing{}, ppostgres.WrapError("events.list", err)
	}
	defer rows.Close()

	items := make([]domain.EventSummary, 0, max(query.Limit, 0))
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return repositories.EventListing{}, ppostgres.WrapError("events.list", err)
		}
		items = append(items, summary)
	}
	if err := rows.Err(); err != nil {
		return repositories.EventListing{}, ppostgres.WrapError("events.list", err)
	}

	hasMore := false
	if query.Limit > 0 && len(items) > query.Limit {
		items = items[:query.Limit]
		hasMore = true
	}
	return repositories.EventListing{Items: items, HasMore: hasMore}, nil
}

func (r *EventRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return domain.Event{}, repositories.NewNotFound("events.get", errors.New("event id is required"))
	}
	q, err := querier(ctx, r.provider)
	if err != nil {
		return domain.Event{}, ppostgres.WrapError("events.get", err)
	}

	row := q.QueryRow(ctx, `SELECT `+eventSummaryColumns+`, e.description, e.search_text
FROM events e
JOIN cities c ON c.id = e.city_id
WHERE e.id::text = $1 OR e.slug = $1`, eventID)
	event, err := scanEvent(row)
	if err != nil {
		return domain.Event{}, ppostgres.WrapError("events.get", err)
	}

	tickets, err := loadTickets(ctx, q, []string{event.ID})
	if err != nil {
		return domain.Event{}, ppostgres.WrapError("events.get", err)
	}
	event.Tickets = tickets[event.ID]
	if event.Tickets == nil {
		event.Tickets = []domain.TicketType{}
	}
	return event, nil
}

func (r *EventRepository) ListAllEvents(ctx context.Context) ([]domain.Event, error) {
	q, err := querier(ctx, r.provider)
	if err != nil {
		return nil, ppostgres.WrapError("events.list_all", err)
	}

	rows, err := q.Query(ctx, `SELECT `+eventSummaryColumns+`, e.description, e.search_text
FROM events e
JOIN cities c ON c.id = e.city_id
ORDER BY e.id`)
	if err != nil {
		return nil, ppostgres.WrapError("events.list_all", err)
	}
	events := make([]domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, ppostgres.WrapError("events.list_all", err)
		}
		events = append(events, event)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, ppostgres.WrapError("events.list_all", err)
	}

	ids := make([]string, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	tickets, err := loadTickets(ctx, q, ids)
	if err != nil {
		return nil, ppostgres.WrapError("events.list_all", err)
	}
	for i := range events {
		events[i].Tickets = tickets[events[i].ID]
	}
	return events, nil
}

func (r *EventRepository) UpdateDerived(ctx context.Context, eventID string, searchText string, minPrice *float64) error {
	q, err := querier(ctx, r.provider)
	if err != nil {
		return ppostgres.WrapError("events.update_derived", err)
	}
	tag, err := q.Exec(ctx, `UPDATE events
SET search_text = $2, min_price = $3::float8, updated_at = NOW()
WHERE id = $1`, eventID, searchText, minPrice)
	if err != nil {
		return ppostgres.WrapError("events.update_derived", err)
	}
	if tag.RowsAffected() == 0 {
		return ppostgres.WrapError("events.update_derived", pgx.ErrNoRows)
	}
	return nil
}

func loadTickets(ctx context.Context, q ppostgres.Querier, eventIDs []string) (map[string][]domain.TicketType, error) {
	out := make(map[string][]domain.TicketType, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `SELECT event_id::text, id::text, name, price::float8
FROM ticket_types
WHERE event_id::text = ANY($1)
ORDER BY event_id, position, id`, eventIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			eventID string
			ticket  domain.TicketType
		)
		if err := rows.Scan(&eventID, &ticket.ID, &ticket.Name, &ticket.Price); err != nil {
			return nil, err
		}
		out[eventID] = append(out[eventID], ticket)
	}
	return out, rows.Err()
}

func scanSummary(row rowScanner) (domain.EventSummary, error) {
	var s domain.EventSummary
	err := row.Scan(
		&s.ID, &s.Title, &s.Slug, &s.CityID, &s.CitySlug,
		&s.CategoryID, &s.VenueID, &s.VendorID, &s.Tags,
		&s.AgeFrom, &s.AgeTo, &s.MinPrice, &s.StartsAt, &s.IsPublished, &s.CreatedAt, &s.UpdatedAt,
	)
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s, err
}

func scanEvent(row rowScanner) (domain.Event, error) {
	var e domain.Event
	s := &e.EventSummary
	err := row.Scan(
		&s.ID, &s.Title, &s.Slug, &s.CityID, &s.CitySlug,
		&s.CategoryID, &s.VenueID, &s.VendorID, &s.Tags,
		&s.AgeFrom, &s.AgeTo, &s.MinPrice, &s.StartsAt, &s.IsPublished, &s.CreatedAt, &s.UpdatedAt,
		&e.Description, &e.SearchText,
	)
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return e, err
}
