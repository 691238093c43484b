package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "github.com/kidsafisha/api/internal/domain"
	"github.com/kidsafisha/api/internal/repositories"
)

func TestNewCatalogServiceRequiresRepositories(t *testing.T) {
	if _, err := NewCatalogService(CatalogServiceDeps{}); err == nil {
		t.Fatalf("expected error when repositories missing")
	}
}

func TestCatalogServiceListCities(t *testing.T) {
	svc := newTestCatalogService(t, newStubCityRepository(), &stubVenueRepository{})

	t.Run("public", func(t *testing.T) {
		items, err := svc.ListCities(context.Background(), CityListOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := catalogCitySlugs(items); got != "moskva,sankt-peterburg,kazan" {
			t.Fatalf("unexpected order %q", got)
		}
		for _, item := range items {
			if item.IsPublic != nil {
				t.Fatalf("expected visibility omitted for public listing, got %v for %s", *item.IsPublic, item.Slug)
			}
		}
	})

	t.Run("include hidden", func(t *testing.T) {
		cities := newStubCityRepository()
		cities.cities = append(cities.cities, domain.City{ID: "c-abk", Name: "Абакан", Slug: "abakan", IsPublic: false})
		svc := newTestCatalogService(t, cities, &stubVenueRepository{})

		items, err := svc.ListCities(context.Background(), CityListOptions{IncludeHidden: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := catalogCitySlugs(items); got != "moskva,sankt-peterburg,kazan,abakan,tver" {
			t.Fatalf("unexpected order %q", got)
		}
		if items[3].IsPublic == nil || *items[3].IsPublic {
			t.Fatalf("expected hidden flag on abakan")
		}
	})

	t.Run("unavailable", func(t *testing.T) {
		cities := newStubCityRepository()
		cities.listErr = repositories.NewUnavailable("cities.list", errors.New("down"))
		svc := newTestCatalogService(t, cities, &stubVenueRepository{})
		if _, err := svc.ListCities(context.Background(), CityListOptions{}); !errors.Is(err, ErrCatalogUnavailable) {
			t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
		}
	})
}

func TestCatalogServiceListCategoriesCollated(t *testing.T) {
	svc, err := NewCatalogService(CatalogServiceDeps{
		Cities: newStubCityRepository(),
		Categories: stubCategoryRepository{categories: []domain.Category{
			{ID: "3", Name: "Цирк"},
			{ID: "1", Name: "Ёлки"},
			{ID: "2", Name: "Выставки"},
			{ID: "4", Name: "Мастер-классы"},
		}},
		Venues: &stubVenueRepository{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	categories, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}
	if got := strings.Join(names, ","); got != "Выставки,Ёлки,Мастер-классы,Цирк" {
		t.Fatalf("unexpected category order %q", got)
	}
}

func TestCatalogServiceListVenues(t *testing.T) {
	venues := &stubVenueRepository{venues: []domain.Venue{
		{ID: "v-2", Name: "Театр кукол", CityID: "c-msk"},
		{ID: "v-1", Name: "Лофт", CityID: "c-msk"},
	}}
	svc := newTestCatalogService(t, newStubCityRepository(), venues)

	t.Run("city slug and query", func(t *testing.T) {
		result, err := svc.ListVenues(context.Background(), VenueListRequest{City: "moskva", Query: " Театр  Кукол "})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if venues.lastFilter.CityID != "c-msk" {
			t.Fatalf("expected city resolved to id, got %q", venues.lastFilter.CityID)
		}
		if got := strings.Join(venues.lastFilter.SearchTerms, ","); got != "театр,кукол" {
			t.Fatalf("unexpected search terms %q", got)
		}
		if venues.lastFilter.IncludeHidden {
			t.Fatalf("public venue listing must not include hidden venues")
		}
		if len(result) != 2 || result[0].ID != "v-1" {
			t.Fatalf("expected venues sorted by name, got %#v", result)
		}
	})

	t.Run("unknown city", func(t *testing.T) {
		venues.calls = 0
		result, err := svc.ListVenues(context.Background(), VenueListRequest{City: "atlantis"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 0 || result == nil {
			t.Fatalf("expected empty list, got %#v", result)
		}
		if venues.calls != 0 {
			t.Fatalf("expected venue repository not to be queried")
		}
	})

	t.Run("repository failure", func(t *testing.T) {
		failing := &stubVenueRepository{listErr: errors.New("boom")}
		svc := newTestCatalogService(t, newStubCityRepository(), failing)
		if _, err := svc.ListVenues(context.Background(), VenueListRequest{}); !errors.Is(err, ErrCatalogRepositoryFailure) {
			t.Fatalf("expected ErrCatalogRepositoryFailure, got %v", err)
		}
	})
}

func newTestCatalogService(t *testing.T, cities *stubCityRepository, venues *stubVenueRepository) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{
		Cities:     cities,
		Categories: stubCategoryRepository{},
		Venues:     venues,
		Orderer:    NewCityOrderer("moskva", "sankt-peterburg"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func catalogCitySlugs(items []CityListItem) string {
	slugs := make([]string, 0, len(items))
	for _, item := range items {
		slugs = append(slugs, item.Slug)
	}
	return strings.Join(slugs, ",")
}

type stubCategoryRepository struct {
	categories []domain.Category
}

func (s stubCategoryRepository) ListCategories(context.Context) ([]domain.Category, error) {
	return append([]domain.Category(nil), s.categories...), nil
}

type stubVenueRepository struct {
	venues     []domain.Venue
	listErr    error
	lastFilter domain.VenueFilter
	calls      int
	searchText map[string]string
}

func (s *stubVenueRepository) ListVenues(_ context.Context, filter domain.VenueFilter) ([]domain.Venue, error) {
	s.calls++
	s.lastFilter = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.Venue(nil), s.venues...), nil
}

func (s *stubVenueRepository) UpdateSearchText(_ context.Context, venueID string, searchText string) error {
	if s.searchText == nil {
		s.searchText = make(map[string]string)
	}
	s.searchText[venueID] = searchText
	for i := range s.venues {
		if s.venues[i].ID == venueID {
			s.venues[i].SearchText = searchText
		}
	}
	return nil
}
