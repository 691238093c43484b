package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	domain "github.com/kidsafisha/api/internal/domain"
	"github.com/kidsafisha/api/internal/platform/textutil"
	"github.com/kidsafisha/api/internal/repositories"
)

var (
	// ErrCatalogUnavailable indicates the persistence layer is unavailable.
	ErrCatalogUnavailable = errors.New("catalog service: repository unavailable")
	// ErrCatalogRepositoryFailure wraps unexpected repository failures.
	ErrCatalogRepositoryFailure = errors.New("catalog service: repository failure")
)

// CatalogServiceDeps wires dependencies for the catalog service.
type CatalogServiceDeps struct {
	Cities     repositories.CityRepository
	Categories repositories.CategoryRepository
	Venues     repositories.VenueRepository
	Orderer    CityOrderer
}

type catalogService struct {
	cities     repositories.CityRepository
	categories repositories.CategoryRepository
	venues     repositories.VenueRepository
	orderer    CityOrderer
}

var _ CatalogService = (*catalogService)(nil)

// NewCatalogService constructs the catalog service.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Cities == nil || deps.Categories == nil || deps.Venues == nil {
		return nil, errors.New("catalog service: city, category and venue repositories are required")
	}
	return &catalogService{
		cities:     deps.Cities,
		categories: deps.Categories,
		venues:     deps.Venues,
		orderer:    deps.Orderer,
	}, nil
}

func (s *catalogService) ListCities(ctx context.Context, opts CityListOptions) ([]CityListItem, error) {
	cities, err := s.cities.ListCities(ctx, opts.IncludeHidden)
	if err != nil {
		return nil, mapCatalogError(err)
	}

	items := make([]CityListItem, 0, len(cities))
	for _, city := range cities {
		item := CityListItem{ID: city.ID, Name: city.Name, Slug: city.Slug}
		if opts.IncludeHidden {
			public := city.IsPublic
			item.IsPublic = &public
		}
		items = append(items, item)
	}
	return s.orderer.Order(items), nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, mapCatalogError(err)
	}
	collator := collate.New(language.Russian)
	sort.SliceStable(categories, func(i, j int) bool {
		return collator.CompareString(categories[i].Name, categories[j].Name) < 0
	})
	return categories, nil
}

func (s *catalogService) ListVenues(ctx context.Context, req VenueListRequest) ([]Venue, error) {
	filter := domain.VenueFilter{SearchTerms: textutil.SearchTerms(req.Query)}

	if ref := strings.TrimSpace(req.City); ref != "" {
		city, err := s.cities.FindCity(ctx, ref)
		switch {
		case repositories.IsNotFound(err):
			return []Venue{}, nil
		case err != nil:
			return nil, mapCatalogError(err)
		}
		filter.CityID = city.ID
	}

	venues, err := s.venues.ListVenues(ctx, filter)
	if err != nil {
		return nil, mapCatalogError(err)
	}
	collator := collate.New(language.Russian)
	sort.SliceStable(venues, func(i, j int) bool {
		return collator.CompareString(venues[i].Name, venues[j].Name) < 0
	})
	return venues, nil
}

func mapCatalogError(err error) error {
	if repositories.IsUnavailable(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrCatalogRepositoryFailure, err)
}
