package domain

import "time"

// AgeBand identifies a coarse age category shown as a filter chip.
type AgeBand string

const (
	AgeBandToddler   AgeBand = "0-3"
	AgeBandPreschool AgeBand = "4-6"
	AgeBandSchool    AgeBand = "7-10"
	AgeBandTeen      AgeBand = "10+"
)

// AgeBounds is the inclusive numeric range covered by an AgeBand. A nil Max means open-ended.
type AgeBounds struct {
	Min int
	Max *int
}

var ageBandBounds = map[AgeBand]AgeBounds{
	AgeBandToddler:   {Min: 0, Max: intPtr(3)},
	AgeBandPreschool: {Min: 4, Max: intPtr(6)},
	AgeBandSchool:    {Min: 7, Max: intPtr(10)},
	AgeBandTeen:      {Min: 10},
}

// AgeBands lists the closed band vocabulary in display order.
func AgeBands() []AgeBand {
	return []AgeBand{AgeBandToddler, AgeBandPreschool, AgeBandSchool, AgeBandTeen}
}

// Bounds returns the numeric range for the band. Unknown bands report false.
func (b AgeBand) Bounds() (AgeBounds, bool) {
	bounds, ok := ageBandBounds[b]
	if !ok {
		return AgeBounds{}, false
	}
	if bounds.Max != nil {
		bounds.Max = intPtr(*bounds.Max)
	}
	return bounds, true
}

// AgeRange is an inclusive age interval. Nil ends are unrestricted.
type AgeRange struct {
	From *int
	To   *int
}

// IsUnrestricted reports whether the range constrains nothing.
func (r AgeRange) IsUnrestricted() bool {
	return r.From == nil && r.To == nil
}

// SortKey selects one of the fixed listing orderings.
type SortKey string

const (
	SortNew       SortKey = "new"
	SortDateAsc   SortKey = "date_asc"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
)

// DefaultSortKey is applied when the request omits or garbles the sort parameter.
const DefaultSortKey = SortNew

// SortKeys lists the sort vocabulary in the order offered to clients.
func SortKeys() []SortKey {
	return []SortKey{SortNew, SortDateAsc, SortPriceAsc, SortPriceDesc}
}

// IsKnown reports whether the key belongs to the sort vocabulary.
func (k SortKey) IsKnown() bool {
	switch k {
	case SortNew, SortDateAsc, SortPriceAsc, SortPriceDesc:
		return true
	default:
		return false
	}
}

// FilterParams is the typed view of a listing request, built once per request.
type FilterParams struct {
	CityID      string
	CategoryIDs []string
	QuickFilter string
	Sort        SortKey
	AgeRange    *AgeRange
	PriceMax    *float64
	Search      string
}

// OrderField enumerates columns the storage layer may order by.
type OrderField string

const (
	OrderFieldCreatedAt OrderField = "created_at"
	OrderFieldStartsAt  OrderField = "starts_at"
	OrderFieldMinPrice  OrderField = "min_price"
	OrderFieldID        OrderField = "id"
)

// OrderSpec describes one ORDER BY term.
type OrderSpec struct {
	Field     OrderField
	Desc      bool
	NullsLast bool
}

// PredicateSpec lists AND-combined listing constraints. Zero-valued facets add no constraint.
type PredicateSpec struct {
	CityID        string
	CategoryIDs   []string
	QuickFilter   string
	AgeRange      *AgeRange
	PriceMax      *float64
	SearchTerms   []string
	PublishedOnly bool
	StartsAfter   *time.Time
}

// ListingQuery is what the event repository executes.
type ListingQuery struct {
	Sort      SortKey
	OrderBy   []OrderSpec
	Predicate PredicateSpec
	Offset    int
	Limit     int
}

func intPtr(v int) *int {
	return &v
}
