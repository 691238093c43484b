package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	domain "github.com/kidsafisha/api/internal/domain"
	ppostgres "github.com/kidsafisha/api/internal/platform/postgres"
	"github.com/kidsafisha/api/internal/repositories"
)

// CityRepository implements repositories.CityRepository.
type CityRepository struct {
	provider *ppostgres.Provider
}

var _ repositories.CityRepository = (*CityRepository)(nil)

func (r *CityRepository) ListCities(ctx context.Context, includeHidden bool) ([]domain.City, error) {
	q, err := querier(ctx, r.provider)
	if err != nil {
		return nil, ppostgres.WrapError("cities.list", err)
	}
	rows, err := q.Query(ctx, `SELECT id::text, name, slug, is_public
FROM cities
WHERE is_public OR $1
ORDER BY slug`, includeHidden)
	if err != nil {
		return nil, ppostgres.WrapError("cities.list", err)
	}
	cities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.City, error) {
		var city domain.City
		err := row.Scan(&city.ID, &city.Name, &city.Slug, &city.IsPublic)
		return city, err
	})
	if err != nil {
		return nil, ppostgres.WrapError("cities.list", err)
	}
	return cities, nil
}

func (r *CityRepository) FindCity(ctx context.Context, ref string) (domain.City, error) {
	q, err := querier(ctx, r.provider)
	if err != nil {
		return domain.City{}, ppostgres.WrapError("cities.find", err)
	}
	var city domain.City
	err = q.QueryRow(ctx, `SELECT id::text, name, slug, is_public
FROM cities
WHERE slug = $1 OR id::text = $1
LIMIT 1`, strings.TrimSpace(ref)).Scan(&city.ID, &city.Name, &city.Slug, &city.IsPublic)
	if err != nil {
		return domain.City{}, ppostgres.WrapError("cities.find", err)
	}
	return city, nil
}

// CategoryRepository implements repositories.CategoryRepository.
type CategoryRepository struct {
	provider *ppostgres.Provider
}

var _ repositories.CategoryRepository = (*CategoryRepository)(nil)

func (r *CategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	q, err := querier(ctx, r.provider)
	if err != nil {
		return nil, ppostgres.WrapError("categories.list", err)
	}
	rows, err := q.Query(ctx, `SELECT id::text, name, slug FROM categories ORDER BY slug`)
	if err != nil {
		return nil, ppostgres.WrapError("categories.list", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		var category domain.Category
		err := row.Scan(&category.ID, &category.Name, &category.Slug)
		return category, err
	})
	if err != nil {
		return nil, ppostgres.WrapError("categories.list", err)
	}
	return categories, nil
}

// VenueRepository implements repositories.VenueRepository.
type VenueRepository struct {
	provider *ppostgres.Provider
}

var _ repositories.VenueRepository = (*VenueRepository)(nil)

func (r *VenueRepository) ListVenues(ctx context.Context, filter domain.VenueFilter) ([]domain.Venue, error) {
	q, err := querier(ctx, r.provider)
	if err != nil {
		return nil, ppostgres.WrapError("venues.list", err)
	}

	args := &sqlArgs{}
	var where []string
	if !filter.IncludeHidden {
		where = append(where, "v.is_public")
	}
	if filter.CityID != "" {
		where = append(where, "v.city_id::text = "+args.add(filter.CityID))
	}
	for _, term := range filter.SearchTerms {
		where = append(where, likeContains("v.search_text", term, args))
	}

	sql := `SELECT v.id::text, v.name, v.address, v.city_id::text, c.slug, v.search_text, v.is_public
FROM venues v
JOIN cities c ON c.id = v.city_id`
	if len(where) > 0 {
		sql += "\nWHERE " + strings.Join(where, "\n  AND ")
	}
	sql += "\nORDER BY v.id"

	rows, err := q.Query(ctx, sql, args.values...)
	if err != nil {
		return nil, ppostgres.WrapError("venues.list", err)
	}
	venues, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Venue, error) {
		var venue domain.Venue
		err := row.Scan(&venue.ID, &venue.Name, &venue.Address, &venue.CityID, &venue.CitySlug, &venue.SearchText, &venue.IsPublic)
		return venue, err
	})
	if err != nil {
		return nil, ppostgres.WrapError("venues.list", err)
	}
	return venues, nil
}

func (r *VenueRepository) UpdateSearchText(ctx context.Context, venueID string, searchText string) error {
	q, err := querier(ctx, r.provider)
	if err != nil {
		return ppostgres.WrapError("venues.update_search_text", err)
	}
	tag, err := q.Exec(ctx, `UPDATE venues SET search_text = $2 WHERE id = $1`, venueID, searchText)
	if err != nil {
		return ppostgres.WrapError("venues.update_search_text", err)
	}
	if tag.RowsAffected() == 0 {
		return ppostgres.WrapError("venues.update_search_text", pgx.ErrNoRows)
	}
	return nil
}
