package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kidsafisha/api/internal/platform/httpx"
	"github.com/kidsafisha/api/internal/services"
)

const (
	listingCacheControl = "public, max-age=60"
	detailCacheControl  = "public, max-age=120"
)

// EventHandlers exposes the public event listing and detail endpoints.
type EventHandlers struct {
	listing services.ListingService
}

// NewEventHandlers constructs event handlers backed by the listing service.
func NewEventHandlers(listing services.ListingService) *EventHandlers {
	return &EventHandlers{listing: listing}
}

// Routes registers event endpoints against the public router group.
func (h *EventHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/events", h.listEvents)
	r.Get("/events/{eventID}", h.getEvent)
}

func (h *EventHandlers) listEvents(w http.ResponseWriter, r *http.Request) {
	if h.listing == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("listing_unavailable", "listing service is unavailable", http.StatusServiceUnavailable))
		return
	}

	page, err := h.listing.ListEvents(r.Context(), r.URL.Query())
	if err != nil {
		writeListingError(r.Context(), w, err)
		return
	}

	items := make([]eventSummaryPayload, 0, len(page.Events))
	for _, event := range page.Events {
		items = append(items, newEventSummaryPayload(event))
	}

	options := make([]sortOptionPayload, 0, len(page.SortOptions))
	for _, option := range page.SortOptions {
		options = append(options, sortOptionPayload{
			Key:      string(option.Key),
			Query:    option.Query,
			Selected: option.Selected,
		})
	}

	applied := page.Applied
	response := eventListResponse{
		Events:        items,
		NextPageToken: page.NextPageToken,
		Sort:          string(page.Sort),
		Applied: appliedFiltersPayload{
			Search:      applied.Search,
			City:        applied.CityID,
			Categories:  copyStringSlice(applied.CategoryIDs),
			QuickFilter: applied.QuickFilter,
			PriceMax:    applied.PriceMax,
		},
		SortOptions: options,
		PageReset:   page.PageReset,
		Truncated:   page.Truncated,
	}
	if applied.AgeRange != nil {
		response.Applied.AgeFrom = applied.AgeRange.From
		response.Applied.AgeTo = applied.AgeRange.To
	}

	w.Header().Set("Cache-Control", listingCacheControl)
	writeJSON(w, http.StatusOK, response)
}

func (h *EventHandlers) getEvent(w http.ResponseWriter, r *http.Request) {
	if h.listing == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("listing_unavailable", "listing service is unavailable", http.StatusServiceUnavailable))
		return
	}

	eventID := strings.TrimSpace(chi.URLParam(r, "eventID"))
	detail, err := h.listing.GetEvent(r.Context(), eventID)
	if err != nil {
		writeListingError(r.Context(), w, err)
		return
	}

	tickets := make([]ticketPayload, 0, len(detail.Tickets))
	for _, ticket := range detail.Tickets {
		tickets = append(tickets, ticketPayload{ID: ticket.ID, Name: ticket.Name, Price: ticket.Price})
	}

	w.Header().Set("Cache-Control", detailCacheControl)
	writeJSON(w, http.StatusOK, eventDetailPayload{
		eventSummaryPayload: newEventSummaryPayload(detail.EventSummary),
		Description:         detail.Description,
		DescriptionHTML:     detail.DescriptionHTML,
		Tickets:             tickets,
	})
}

func newEventSummaryPayload(event services.EventSummary) eventSummaryPayload {
	return eventSummaryPayload{
		ID:         event.ID,
		Title:      event.Title,
		Slug:       event.Slug,
		CityID:     event.CityID,
		CitySlug:   event.CitySlug,
		CategoryID: event.CategoryID,
		VenueID:    event.VenueID,
		Tags:       copyStringSlice(event.Tags),
		AgeFrom:    event.AgeFrom,
		AgeTo:      event.AgeTo,
		MinPrice:   event.MinPrice,
		StartsAt:   formatTimestamp(event.StartsAt),
		CreatedAt:  formatTimestamp(event.CreatedAt),
	}
}

func writeListingError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrListingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrListingNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("event_not_found", "event not found", http.StatusNotFound))
	case errors.Is(err, services.ErrListingUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("listing_unavailable", "event store unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("listing_error", "failed to load events", http.StatusInternalServerError))
	}
}

type eventListResponse struct {
	Events        []eventSummaryPayload `json:"events"`
	NextPageToken string                `json:"next_page_token,omitempty"`
	Sort          string                `json:"sort"`
	Applied       appliedFiltersPayload `json:"applied"`
	SortOptions   []sortOptionPayload   `json:"sort_options"`
	PageReset     bool                  `json:"page_reset,omitempty"`
	Truncated     bool                  `json:"truncated,omitempty"`
}

type appliedFiltersPayload struct {
	Search      string   `json:"q,omitempty"`
	AgeFrom     *int     `json:"age_from,omitempty"`
	AgeTo       *int     `json:"age_to,omitempty"`
	City        string   `json:"city,omitempty"`
	Categories  []string `json:"category,omitempty"`
	QuickFilter string   `json:"quick,omitempty"`
	PriceMax    *float64 `json:"price_max,omitempty"`
}

type sortOptionPayload struct {
	Key      string `json:"key"`
	Query    string `json:"query"`
	Selected bool   `json:"selected"`
}

type eventSummaryPayload struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug,omitempty"`
	CityID     string   `json:"city_id"`
	CitySlug   string   `json:"city_slug,omitempty"`
	CategoryID string   `json:"category_id,omitempty"`
	VenueID    string   `json:"venue_id,omitempty"`
	Tags       []string `json:"tags"`
	AgeFrom    *int     `json:"age_from"`
	AgeTo      *int     `json:"age_to"`
	MinPrice   *float64 `json:"min_price"`
	StartsAt   string   `json:"starts_at,omitempty"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

type eventDetailPayload struct {
	eventSummaryPayload
	Description     string          `json:"description,omitempty"`
	DescriptionHTML string          `json:"description_html,omitempty"`
	Tickets         []ticketPayload `json:"tickets"`
}

type ticketPayload struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}
