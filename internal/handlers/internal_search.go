package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kidsafisha/api/internal/platform/httpx"
	"github.com/kidsafisha/api/internal/services"
)

// SearchIndexHandlers exposes maintenance endpoints for derived search fields.
type SearchIndexHandlers struct {
	index services.SearchIndexService
}

// NewSearchIndexHandlers constructs the reindex handlers.
func NewSearchIndexHandlers(index services.SearchIndexService) *SearchIndexHandlers {
	return &SearchIndexHandlers{index: index}
}

// Routes registers the reindex endpoint on the internal group.
func (h *SearchIndexHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/search:reindex", h.reindex)
}

func (h *SearchIndexHandlers) reindex(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("search_index_unavailable", "search index service is unavailable", http.StatusServiceUnavailable))
		return
	}

	report, err := h.index.Reindex(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrSearchIndexUnavailable) {
			httpx.WriteError(r.Context(), w, httpx.NewError("search_index_unavailable", "event store unavailable", http.StatusServiceUnavailable))
			return
		}
		httpx.WriteError(r.Context(), w, httpx.NewError("reindex_failed", err.Error(), http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusOK, reindexPayload{
		Scanned:    report.Scanned,
		Updated:    report.Updated,
		StartedAt:  formatTimestamp(report.StartedAt),
		DurationMS: report.Duration.Milliseconds(),
	})
}

type reindexPayload struct {
	Scanned    int    `json:"scanned"`
	Updated    int    `json:"updated"`
	StartedAt  string `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
}
