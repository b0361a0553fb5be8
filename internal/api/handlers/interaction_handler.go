package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/query/services"
)

// InteractionQuerier runs filtered, paginated interaction queries
type InteractionQuerier interface {
	QueryInteractions(ctx context.Context, criteria services.FilterCriteria) (*services.InteractionPage, error)
}

// InteractionHandler handles interaction list requests
type InteractionHandler struct {
	engine          InteractionQuerier
	defaultPageSize int
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(engine InteractionQuerier, defaultPageSize int) *InteractionHandler {
	return &InteractionHandler{engine: engine, defaultPageSize: defaultPageSize}
}

type interactionListResponse struct {
	Rows       []*entities.FlatInteractionRow `json:"rows"`
	Total      int64                          `json:"total"`
	Page       int                            `json:"page"`
	Limit      int                            `json:"limit"`
	TotalPages int64                          `json:"total_pages"`
}

// ListInteractions handles GET /api/interactions
func (h *InteractionHandler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", h.defaultPageSize)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	q := r.URL.Query()
	result, err := h.engine.QueryInteractions(r.Context(), services.FilterCriteria{
		Date:          q.Get("date"),
		CustomerName:  q.Get("customerName"),
		CustomerEmail: q.Get("customerEmail"),
		CustomerPhone: q.Get("customerPhone"),
		Page:          page,
		PageSize:      limit,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, interactionListResponse{
		Rows:       result.Rows,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.PageSize,
		TotalPages: result.TotalPages(),
	})
}
