package postgres

import (
	"errors"
	"fmt"
	"strings"

	domain "github.com/kidsafisha/api/internal/domain"
)

const eventSummaryColumns = `e.id::text, e.title, e.slug, e.city_id::text, c.slug,
	COALESCE(e.category_id::text, ''), COALESCE(e.venue_id::text, ''), e.vendor_id, e.tags,
	e.age_from, e.age_to, e.min_price::float8, e.starts_at, e.is_published, e.created_at, e.updated_at`

var orderColumns = map[domain.OrderField]string{
	domain.OrderFieldCreatedAt: "e.created_at",
	domain.OrderFieldStartsAt:  "e.starts_at",
	domain.OrderFieldMinPrice:  "e.min_price",
	domain.OrderFieldID:        "e.id",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type sqlArgs struct {
	values []any
}

func (a *sqlArgs) add(value any) string {
	a.values = append(a.values, value)
	return fmt.Sprintf("$%d", len(a.values))
}

// buildListingSQL renders query as a single SELECT. It fetches one row past Limit so the caller
// can tell whether another page exists.
func buildListingSQL(query domain.ListingQuery) (string, []any, error) {
	args := &sqlArgs{}
	where := listingConditions(query.Predicate, args)

	orderBy, err := orderClause(query.OrderBy)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(eventSummaryColumns)
	b.WriteString("\nFROM events e\nJOIN cities c ON c.id = e.city_id")
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(where, "\n  AND "))
	}
	if orderBy != "" {
		b.WriteString("\nORDER BY ")
		b.WriteString(orderBy)
	}
	if query.Limit > 0 {
		b.WriteString("\nLIMIT ")
		b.WriteString(args.add(query.Limit + 1))
	}
	if query.Offset > 0 {
		b.WriteString("\nOFFSET ")
		b.WriteString(args.add(query.Offset))
	}
	return b.String(), args.values, nil
}

func listingConditions(predicate domain.PredicateSpec, args *sqlArgs) []string {
	var where []string
	if predicate.PublishedOnly {
		where = append(where, "e.is_published")
	}
	if predicate.StartsAfter != nil {
		where = append(where, "e.starts_at >= "+args.add(*predicate.StartsAfter))
	}
	if predicate.CityID != "" {
		where = append(where, "e.city_id::text = "+args.add(predicate.CityID))
	}
	if len(predicate.CategoryIDs) > 0 {
		where = append(where, "e.category_id::text = ANY("+args.add(predicate.CategoryIDs)+")")
	}
	if predicate.QuickFilter != "" {
		where = append(where, args.add(predicate.QuickFilter)+" = ANY(e.tags)")
	}
	if r := predicate.AgeRange; r != nil {
		if r.To != nil {
			where = append(where, "(e.age_from IS NULL OR e.age_from <= "+args.add(*r.To)+")")
		}
		if r.From != nil {
			where = append(where, "(e.age_to IS NULL OR e.age_to >= "+args.add(*r.From)+")")
		}
	}
	if predicate.PriceMax != nil {
		where = append(where, "e.min_price IS NOT NULL AND e.min_price <= "+args.add(*predicate.PriceMax))
	}
	for _, term := range predicate.SearchTerms {
		where = append(where, likeContains("e.search_text", term, args))
	}
	return where
}

func likeContains(column, term string, args *sqlArgs) string {
	return column + ` LIKE '%' || ` + args.add(likeEscaper.Replace(term)) + ` || '%' ESCAPE '\'`
}

func orderClause(specs []domain.OrderSpec) (string, error) {
	parts := make([]string, 0, len(specs))
	for _, spec := range specs {
		column, ok := orderColumns[spec.Field]
		if !ok {
			return "", fmt.Errorf("postgres: unsupported order field %q", spec.Field)
		}
		term := column
		if spec.Desc {
			term += " DESC"
		} else {
			term += " ASC"
		}
		if spec.NullsLast {
			term += " NULLS LAST"
		}
		parts = append(parts, term)
	}
	if len(parts) == 0 {
		return "", errors.New("postgres: listing query has no ordering")
	}
	return strings.Join(parts, ", "), nil
}
