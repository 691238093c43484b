package services

import (
	"math"
	"strings"

	domain "github.com/kidsafisha/api/internal/domain"
	"github.com/kidsafisha/api/internal/platform/textutil"
)

// ListingResolution is the ordering and predicate pair handed to the event repository.
type ListingResolution struct {
	Sort      domain.SortKey
	OrderBy   []domain.OrderSpec
	Predicate domain.PredicateSpec
}

var sortOrderings = map[domain.SortKey][]domain.OrderSpec{
	domain.SortNew: {
		{Field: domain.OrderFieldCreatedAt, Desc: true},
	},
	domain.SortDateAsc: {
		{Field: domain.OrderFieldStartsAt},
	},
	domain.SortPriceAsc: {
		{Field: domain.OrderFieldMinPrice, NullsLast: true},
	},
	domain.SortPriceDesc: {
		{Field: domain.OrderFieldMinPrice, Desc: true, NullsLast: true},
	},
}

var idTiebreaker = domain.OrderSpec{Field: domain.OrderFieldID}

// ResolveSortKey maps a raw sort parameter onto the vocabulary, falling back to the default.
func ResolveSortKey(raw string) domain.SortKey {
	key := domain.SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if key.IsKnown() {
		return key
	}
	return domain.DefaultSortKey
}

// ResolveListing translates filter params into an ordering and an AND-combined predicate.
// It never fails: unknown sort keys resolve to the default and empty facets add no constraint.
func ResolveListing(params domain.FilterParams) ListingResolution {
	sortKey := ResolveSortKey(string(params.Sort))

	base := sortOrderings[sortKey]
	orderBy := make([]domain.OrderSpec, 0, len(base)+1)
	orderBy = append(orderBy, base...)
	orderBy = append(orderBy, idTiebreaker)

	return ListingResolution{
		Sort:      sortKey,
		OrderBy:   orderBy,
		Predicate: resolvePredicate(params),
	}
}

func resolvePredicate(params domain.FilterParams) domain.PredicateSpec {
	predicate := domain.PredicateSpec{
		CityID:      strings.TrimSpace(params.CityID),
		QuickFilter: strings.TrimSpace(params.QuickFilter),
		SearchTerms: textutil.SearchTerms(params.Search),
	}

	if len(params.CategoryIDs) > 0 {
		seen := make(map[string]struct{}, len(params.CategoryIDs))
		for _, id := range params.CategoryIDs {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			predicate.CategoryIDs = append(predicate.CategoryIDs, id)
		}
	}

	if params.AgeRange != nil && !params.AgeRange.IsUnrestricted() {
		ageRange := normalizeAgeRange(*params.AgeRange)
		predicate.AgeRange = &ageRange
	}

	if params.PriceMax != nil {
		ceiling := *params.PriceMax
		if !math.IsNaN(ceiling) && !math.IsInf(ceiling, 0) && ceiling >= 0 {
			predicate.PriceMax = &ceiling
		}
	}

	return predicate
}

// normalizeAgeRange copies the range and swaps inverted bounds.
func normalizeAgeRange(in domain.AgeRange) domain.AgeRange {
	var out domain.AgeRange
	if in.From != nil {
		from := *in.From
		out.From = &from
	}
	if in.To != nil {
		to := *in.To
		out.To = &to
	}
	if out.From != nil && out.To != nil && *out.From > *out.To {
		out.From, out.To = out.To, out.From
	}
	return out
}
