package services

import (
	"math"
	"reflect"
	"testing"

	domain "github.com/kidsafisha/api/internal/domain"
)

func TestResolveListingSortTable(t *testing.T) {
	id := domain.OrderSpec{Field: domain.OrderFieldID}
	cases := []struct {
		sort     domain.SortKey
		wantSort domain.SortKey
		want     []domain.OrderSpec
	}{
		{sort: domain.SortNew, wantSort: domain.SortNew, want: []domain.OrderSpec{{Field: domain.OrderFieldCreatedAt, Desc: true}, id}},
		{sort: domain.SortDateAsc, wantSort: domain.SortDateAsc, want: []domain.OrderSpec{{Field: domain.OrderFieldStartsAt}, id}},
		{sort: domain.SortPriceAsc, wantSort: domain.SortPriceAsc, want: []domain.OrderSpec{{Field: domain.OrderFieldMinPrice, NullsLast: true}, id}},
		{sort: domain.SortPriceDesc, wantSort: domain.SortPriceDesc, want: []domain.OrderSpec{{Field: domain.OrderFieldMinPrice, Desc: true, NullsLast: true}, id}},
		{sort: "", wantSort: domain.SortNew, want: []domain.OrderSpec{{Field: domain.OrderFieldCreatedAt, Desc: true}, id}},
		{sort: "popular", wantSort: domain.SortNew, want: []domain.OrderSpec{{Field: domain.OrderFieldCreatedAt, Desc: true}, id}},
		{sort: " PRICE_ASC ", wantSort: domain.SortPriceAsc, want: []domain.OrderSpec{{Field: domain.OrderFieldMinPrice, NullsLast: true}, id}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.sort), func(t *testing.T) {
			got := ResolveListing(domain.FilterParams{Sort: tc.sort})
			if got.Sort != tc.wantSort {
				t.Fatalf("expected sort %q, got %q", tc.wantSort, got.Sort)
			}
			if !reflect.DeepEqual(got.OrderBy, tc.want) {
				t.Fatalf("expected order %#v, got %#v", tc.want, got.OrderBy)
			}
		})
	}
}

func TestResolveListingDoesNotAliasSortTable(t *testing.T) {
	first := ResolveListing(domain.FilterParams{Sort: domain.SortDateAsc})
	first.OrderBy[0].Desc = true
	second := ResolveListing(domain.FilterParams{Sort: domain.SortDateAsc})
	if second.OrderBy[0].Desc {
		t.Fatalf("expected resolution to return a fresh ordering")
	}
}

func TestResolveListingEmptyFacetsAddNoConstraint(t *testing.T) {
	got := ResolveListing(domain.FilterParams{
		CityID:      "  ",
		CategoryIDs: []string{"", " "},
		AgeRange:    &domain.AgeRange{},
		Search:      " \t ",
	})
	if !reflect.DeepEqual(got.Predicate, domain.PredicateSpec{}) {
		t.Fatalf("expected empty predicate, got %#v", got.Predicate)
	}
}

func TestResolveListingCombinesFacets(t *testing.T) {
	params := domain.FilterParams{
		CityID:      "city-1",
		CategoryIDs: []string{"theatre", "music", "theatre"},
		QuickFilter: "weekend",
		AgeRange:    &domain.AgeRange{From: intRef(4), To: intRef(10)},
		PriceMax:    floatRef(1500),
		Search:      "Ёлка в  ЛЕСУ",
	}
	got := ResolveListing(params).Predicate

	if got.CityID != "city-1" || got.QuickFilter != "weekend" {
		t.Fatalf("unexpected scalar facets %#v", got)
	}
	if !reflect.DeepEqual(got.CategoryIDs, []string{"theatre", "music"}) {
		t.Fatalf("expected deduplicated categories in order, got %v", got.CategoryIDs)
	}
	if got.AgeRange == nil || *got.AgeRange.From != 4 || *got.AgeRange.To != 10 {
		t.Fatalf("unexpected age range %#v", got.AgeRange)
	}
	if got.AgeRange.From == params.AgeRange.From {
		t.Fatalf("expected age range to be copied")
	}
	if got.PriceMax == nil || *got.PriceMax != 1500 {
		t.Fatalf("unexpected price ceiling %v", got.PriceMax)
	}
	if !reflect.DeepEqual(got.SearchTerms, []string{"елка", "в", "лесу"}) {
		t.Fatalf("unexpected search terms %v", got.SearchTerms)
	}
}

func TestResolveListingDropsInvalidPriceCeiling(t *testing.T) {
	for _, value := range []float64{-1, math.NaN(), math.Inf(1)} {
		got := ResolveListing(domain.FilterParams{PriceMax: floatRef(value)})
		if got.Predicate.PriceMax != nil {
			t.Fatalf("expected ceiling %v to be dropped", value)
		}
	}
}

func TestResolveListingSwapsInvertedAgeRange(t *testing.T) {
	got := ResolveListing(domain.FilterParams{AgeRange: &domain.AgeRange{From: intRef(10), To: intRef(3)}})
	if got.Predicate.AgeRange == nil || *got.Predicate.AgeRange.From != 3 || *got.Predicate.AgeRange.To != 10 {
		t.Fatalf("expected swapped range, got %#v", got.Predicate.AgeRange)
	}
}
