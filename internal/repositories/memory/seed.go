package memory

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	domain "github.com/kidsafisha/api/internal/domain"
)

// Seed is the initial content of an in-memory store.
type Seed struct {
	Cities     []domain.City
	Categories []domain.Category
	Venues     []domain.Venue
	Events     []domain.Event
}

type seedFile struct {
	Cities     []seedCity     `yaml:"cities"`
	Categories []seedCategory `yaml:"categories"`
	Venues     []seedVenue    `yaml:"venues"`
	Events     []seedEvent    `yaml:"events"`
}

type seedCity struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Slug   string `yaml:"slug"`
	Public *bool  `yaml:"public"`
}

type seedCategory struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type seedVenue struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	City    string `yaml:"city"`
	Public  *bool  `yaml:"public"`
}

type seedTicket struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Price *float64 `yaml:"price"`
}

type seedEvent struct {
	ID          string       `yaml:"id"`
	Title       string       `yaml:"title"`
	Slug        string       `yaml:"slug"`
	Description string       `yaml:"description"`
	City        string       `yaml:"city"`
	Category    string       `yaml:"category"`
	Venue       string       `yaml:"venue"`
	Vendor      string       `yaml:"vendor"`
	Tags        []string     `yaml:"tags"`
	AgeFrom     *int         `yaml:"age_from"`
	AgeTo       *int         `yaml:"age_to"`
	StartsAt    time.Time    `yaml:"starts_at"`
	CreatedAt   time.Time    `yaml:"created_at"`
	Published   *bool        `yaml:"published"`
	Tickets     []seedTicket `yaml:"tickets"`
}

// LoadSeedFile reads a YAML seed document from disk.
func LoadSeedFile(path string) (Seed, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Seed{}, errors.New("memory seed: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("memory seed: read %s: %w", path, err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML seed document. City and venue references may be given as id or slug.
// Missing ids are generated and visibility flags default to true.
func ParseSeed(data []byte) (Seed, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Seed{}, fmt.Errorf("memory seed: decode: %w", err)
	}

	var seed Seed
	cityRefs := make(map[string]domain.City)
	for _, raw := range file.Cities {
		city := domain.City{
			ID:       idOrNew(raw.ID),
			Name:     strings.TrimSpace(raw.Name),
			Slug:     strings.TrimSpace(raw.Slug),
			IsPublic: boolOr(raw.Public, true),
		}
		if city.Slug == "" {
			return Seed{}, fmt.Errorf("memory seed: city %q has no slug", city.Name)
		}
		if _, dup := cityRefs[city.Slug]; dup {
			return Seed{}, fmt.Errorf("memory seed: duplicate city slug %q", city.Slug)
		}
		cityRefs[city.ID] = city
		cityRefs[city.Slug] = city
		seed.Cities = append(seed.Cities, city)
	}

	categoryRefs := make(map[string]string)
	for _, raw := range file.Categories {
		category := domain.Category{
			ID:   idOrNew(raw.ID),
			Name: strings.TrimSpace(raw.Name),
			Slug: strings.TrimSpace(raw.Slug),
		}
		categoryRefs[category.ID] = category.ID
		if category.Slug != "" {
			categoryRefs[category.Slug] = category.ID
		}
		seed.Categories = append(seed.Categories, category)
	}

	venueRefs := make(map[string]string)
	for _, raw := range file.Venues {
		city, ok := cityRefs[strings.TrimSpace(raw.City)]
		if !ok {
			return Seed{}, fmt.Errorf("memory seed: venue %q references unknown city %q", raw.Name, raw.City)
		}
		venue := domain.Venue{
			ID:       idOrNew(raw.ID),
			Name:     strings.TrimSpace(raw.Name),
			Address:  strings.TrimSpace(raw.Address),
			CityID:   city.ID,
			CitySlug: city.Slug,
			IsPublic: boolOr(raw.Public, true),
		}
		venueRefs[venue.ID] = venue.ID
		venueRefs[strings.ToLower(venue.Name)] = venue.ID
		seed.Venues = append(seed.Venues, venue)
	}

	for _, raw := range file.Events {
		city, ok := cityRefs[strings.TrimSpace(raw.City)]
		if !ok {
			return Seed{}, fmt.Errorf("memory seed: event %q references unknown city %q", raw.Title, raw.City)
		}
		createdAt := raw.CreatedAt
		if createdAt.IsZero() {
			createdAt = raw.StartsAt
		}
		event := domain.Event{
			EventSummary: domain.EventSummary{
				ID:          idOrNew(raw.ID),
				Title:       strings.TrimSpace(raw.Title),
				Slug:        strings.TrimSpace(raw.Slug),
				CityID:      city.ID,
				CitySlug:    city.Slug,
				CategoryID:  categoryRefs[strings.TrimSpace(raw.Category)],
				VenueID:     venueRefs[strings.ToLower(strings.TrimSpace(raw.Venue))],
				VendorID:    strings.TrimSpace(raw.Vendor),
				Tags:        append([]string(nil), raw.Tags...),
				AgeFrom:     raw.AgeFrom,
				AgeTo:       raw.AgeTo,
				StartsAt:    raw.StartsAt.UTC(),
				IsPublished: boolOr(raw.Published, true),
				CreatedAt:   createdAt.UTC(),
				UpdatedAt:   createdAt.UTC(),
			},
			Description: raw.Description,
		}
		if raw.Venue != "" && event.VenueID == "" {
			return Seed{}, fmt.Errorf("memory seed: event %q references unknown venue %q", raw.Title, raw.Venue)
		}
		for _, ticket := range raw.Tickets {
			event.Tickets = append(event.Tickets, domain.TicketType{
				ID:    idOrNew(ticket.ID),
				Name:  strings.TrimSpace(ticket.Name),
				Price: ticket.Price,
			})
		}
		seed.Events = append(seed.Events, event)
	}

	return seed, nil
}

func idOrNew(raw string) string {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}
	return uuid.NewString()
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
