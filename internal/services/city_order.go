package services

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	domain "github.com/kidsafisha/api/internal/domain"
)

// CityOrderer pins two configured cities ahead of the rest of a city list.
type CityOrderer struct {
	Primary   string
	Secondary string
}

// NewCityOrderer builds an orderer for the given pinned slugs.
func NewCityOrderer(primary, secondary string) CityOrderer {
	return CityOrderer{
		Primary:   strings.TrimSpace(primary),
		Secondary: strings.TrimSpace(secondary),
	}
}

// Order returns a sorted copy of items: primary slug, secondary slug, public before hidden,
// then Russian collation of the display name. An item without visibility counts as public.
// Items that compare equal keep their input order.
func (o CityOrderer) Order(items []domain.CityListItem) []domain.CityListItem {
	ordered := make([]domain.CityListItem, len(items))
	copy(ordered, items)
	if len(ordered) < 2 {
		return ordered
	}

	// Collators are not safe for concurrent use.
	collator := collate.New(language.Russian)
	sort.SliceStable(ordered, func(i, j int) bool {
		return o.compare(collator, ordered[i], ordered[j]) < 0
	})
	return ordered
}

func (o CityOrderer) compare(collator *collate.Collator, a, b domain.CityListItem) int {
	if ra, rb := o.rank(a.Slug), o.rank(b.Slug); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	if pa, pb := isPublic(a), isPublic(b); pa != pb {
		if pa {
			return -1
		}
		return 1
	}

	return collator.CompareString(a.Name, b.Name)
}

func (o CityOrderer) rank(slug string) int {
	switch {
	case o.Primary != "" && slug == o.Primary:
		return 0
	case o.Secondary != "" && slug == o.Secondary:
		return 1
	default:
		return 2
	}
}

func isPublic(item domain.CityListItem) bool {
	return item.IsPublic == nil || *item.IsPublic
}
