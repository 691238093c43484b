package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kidsafisha/api/internal/platform/httpx"
	"github.com/kidsafisha/api/internal/platform/queryparams"
	"github.com/kidsafisha/api/internal/services"
)

const catalogCacheControl = "public, max-age=300"

// CatalogHandlers exposes the reference lists used to build filter controls.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs catalog handlers.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes registers public catalog endpoints.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/cities", h.listCities)
	r.Get("/categories", h.listCategories)
	r.Get("/venues", h.listVenues)
}

// AdminRoutes registers administrative catalog endpoints.
func (h *CatalogHandlers) AdminRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/cities", h.listAllCities)
}

func (h *CatalogHandlers) listCities(w http.ResponseWriter, r *http.Request) {
	h.writeCities(w, r, false)
}

func (h *CatalogHandlers) listAllCities(w http.ResponseWriter, r *http.Request) {
	h.writeCities(w, r, true)
}

func (h *CatalogHandlers) writeCities(w http.ResponseWriter, r *http.Request, includeHidden bool) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	cities, err := h.catalog.ListCities(r.Context(), services.CityListOptions{IncludeHidden: includeHidden})
	if err != nil {
		writeCatalogError(r.Context(), w, err)
		return
	}

	items := make([]cityPayload, 0, len(cities))
	for _, city := range cities {
		items = append(items, cityPayload{
			ID:       city.ID,
			Name:     city.Name,
			Slug:     city.Slug,
			IsPublic: city.IsPublic,
		})
	}
	if includeHidden {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", catalogCacheControl)
	}
	writeJSON(w, http.StatusOK, cityListResponse{Cities: items})
}

func (h *CatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeCatalogError(r.Context(), w, err)
		return
	}

	items := make([]categoryPayload, 0, len(categories))
	for _, category := range categories {
		items = append(items, categoryPayload{ID: category.ID, Name: category.Name, Slug: category.Slug})
	}
	w.Header().Set("Cache-Control", catalogCacheControl)
	writeJSON(w, http.StatusOK, categoryListResponse{Categories: items})
}

func (h *CatalogHandlers) listVenues(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	query := r.URL.Query()
	city, _ := queryparams.Scalar(query, queryparams.City)
	search, _ := queryparams.Scalar(query, queryparams.Search)
	venues, err := h.catalog.ListVenues(r.Context(), services.VenueListRequest{City: city, Query: search})
	if err != nil {
		writeCatalogError(r.Context(), w, err)
		return
	}

	items := make([]venuePayload, 0, len(venues))
	for _, venue := range venues {
		items = append(items, venuePayload{
			ID:       venue.ID,
			Name:     venue.Name,
			Address:  venue.Address,
			CityID:   venue.CityID,
			CitySlug: venue.CitySlug,
		})
	}
	w.Header().Set("Cache-Control", catalogCacheControl)
	writeJSON(w, http.StatusOK, venueListResponse{Venues: items})
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrCatalogUnavailable) {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog repository unavailable", http.StatusServiceUnavailable))
		return
	}
	httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to load catalog", http.StatusInternalServerError))
}

type cityListResponse struct {
	Cities []cityPayload `json:"cities"`
}

type cityPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsPublic *bool  `json:"is_public,omitempty"`
}

type categoryListResponse struct {
	Categories []categoryPayload `json:"categories"`
}

type categoryPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type venueListResponse struct {
	Venues []venuePayload `json:"venues"`
}

type venuePayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	CityID   string `json:"city_id"`
	CitySlug string `json:"city_slug,omitempty"`
}
