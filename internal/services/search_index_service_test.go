package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/kidsafisha/api/internal/domain"
	"github.com/kidsafisha/api/internal/repositories"
)

func TestSearchIndexServiceReindex(t *testing.T) {
	events := &stubEventRepository{
		order: []string{"e1", "e2"},
		events: map[string]domain.Event{
			"e1": {
				EventSummary: domain.EventSummary{ID: "e1", Title: "Ёлка в Театре", CitySlug: "moskva", Tags: []string{"weekend"}},
				Description:  "Новогодний  спектакль",
				Tickets: []domain.TicketType{
					{ID: "t1", Price: floatRef(1500)},
					{ID: "t2", Price: floatRef(500)},
				},
			},
			"e2": {
				EventSummary: domain.EventSummary{ID: "e2", Title: "Лего", CitySlug: "kazan"},
				Tickets:      []domain.TicketType{{ID: "t3"}},
			},
		},
	}
	venues := &stubVenueRepository{venues: []domain.Venue{
		{ID: "v-1", Name: "Театр Кукол", Address: "ул. Пушкина 1", CitySlug: "moskva"},
	}}
	uow := &stubUnitOfWork{}
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	ticks := []time.Time{start, start.Add(1500 * time.Millisecond)}
	var logged []map[string]any

	svc, err := NewSearchIndexService(SearchIndexServiceDeps{
		Events:     events,
		Venues:     venues,
		UnitOfWork: uow,
		Clock: func() time.Time {
			next := ticks[0]
			if len(ticks) > 1 {
				ticks = ticks[1:]
			}
			return next
		},
		Logger: func(_ context.Context, event string, fields map[string]any) {
			if event == "search.reindex.completed" {
				logged = append(logged, fields)
			}
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := svc.Reindex(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Scanned != 3 || report.Updated != 3 {
		t.Fatalf("expected 3 scanned and 3 updated, got %+v", report)
	}
	if !report.StartedAt.Equal(start) || report.Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected timing %+v", report)
	}
	if uow.calls != 1 {
		t.Fatalf("expected a single transaction, got %d", uow.calls)
	}

	first := events.updates["e1"]
	if first.searchText != "елка в театре новогодний спектакль moskva weekend" {
		t.Fatalf("unexpected search text %q", first.searchText)
	}
	if first.minPrice == nil || *first.minPrice != 500 {
		t.Fatalf("expected min price 500, got %v", first.minPrice)
	}
	if second := events.updates["e2"]; second.minPrice != nil {
		t.Fatalf("expected nil min price for unpriced tickets, got %v", *second.minPrice)
	}
	if got := venues.searchText["v-1"]; got != "театр кукол ул. пушкина 1 moskva" {
		t.Fatalf("unexpected venue search text %q", got)
	}
	if len(logged) != 1 || logged[0]["updated"] != 3 {
		t.Fatalf("expected completion log, got %v", logged)
	}

	again, err := svc.Reindex(context.Background())
	if err != nil {
		t.Fatalf("unexpected error on second run: %v", err)
	}
	if again.Scanned != 3 || again.Updated != 0 {
		t.Fatalf("expected idempotent second run, got %+v", again)
	}
}

func TestSearchIndexServiceReindexErrors(t *testing.T) {
	newEvents := func(updateErr error) *stubEventRepository {
		return &stubEventRepository{
			order:     []string{"e1"},
			events:    map[string]domain.Event{"e1": {EventSummary: domain.EventSummary{ID: "e1", Title: "Цирк"}}},
			updateErr: updateErr,
		}
	}

	t.Run("requires dependencies", func(t *testing.T) {
		if _, err := NewSearchIndexService(SearchIndexServiceDeps{}); err == nil {
			t.Fatalf("expected error when events missing")
		}
		if _, err := NewSearchIndexService(SearchIndexServiceDeps{Events: newEvents(nil)}); err == nil {
			t.Fatalf("expected error when unit of work missing")
		}
	})

	t.Run("unavailable", func(t *testing.T) {
		svc, err := NewSearchIndexService(SearchIndexServiceDeps{
			Events:     newEvents(repositories.NewUnavailable("events.update", errors.New("down"))),
			UnitOfWork: &stubUnitOfWork{},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.Reindex(context.Background()); !errors.Is(err, ErrSearchIndexUnavailable) {
			t.Fatalf("expected ErrSearchIndexUnavailable, got %v", err)
		}
	})

	t.Run("other failure", func(t *testing.T) {
		svc, err := NewSearchIndexService(SearchIndexServiceDeps{
			Events:     newEvents(errors.New("boom")),
			UnitOfWork: &stubUnitOfWork{},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = svc.Reindex(context.Background())
		if err == nil || errors.Is(err, ErrSearchIndexUnavailable) {
			t.Fatalf("expected generic reindex failure, got %v", err)
		}
	})
}

type stubUnitOfWork struct {
	calls int
}

func (s *stubUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calls++
	return fn(ctx)
}
