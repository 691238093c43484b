package domain

import "time"

// City is a listing location. Hidden cities are only visible to admins.
type City struct {
	ID       string
	Name     string
	Slug     string
	IsPublic bool
}

// CityListItem is the display shape ordered by the city orderer.
// IsPublic is only populated for administrative listings.
type CityListItem struct {
	ID       string
	Name     string
	Slug     string
	IsPublic *bool
}

// Category groups events (theatre, workshops, sport, ...).
type Category struct {
	ID   string
	Name string
	Slug string
}

// Venue is a place hosting events.
type Venue struct {
	ID         string
	Name       string
	Address    string
	CityID     string
	CitySlug   string
	SearchText string
	IsPublic   bool
}

// VenueFilter narrows venue listings.
type VenueFilter struct {
	CityID        string
	SearchTerms   []string
	IncludeHidden bool
}

// TicketType is one purchasable ticket option. Price is nil when not set.
type TicketType struct {
	ID    string
	Name  string
	Price *float64
}

// EventSummary carries listing fields for an event.
type EventSummary struct {
	ID          string
	Title       string
	Slug        string
	CityID      string
	CitySlug    string
	CategoryID  string
	VenueID     string
	VendorID    string
	Tags        []string
	AgeFrom     *int
	AgeTo       *int
	MinPrice    *float64
	StartsAt    time.Time
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Event is the full event record including its description and tickets.
type Event struct {
	EventSummary
	Description string
	SearchText  string
	Tickets     []TicketType
}
