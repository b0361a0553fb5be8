package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/collectionsdesk/internal/application/services"
)

// CustomerDirectory lists and fetches customers with their last contact
type CustomerDirectory interface {
	List(ctx context.Context, page, limit int) (*services.CustomerPage, error)
	Get(ctx context.Context, id string) (*services.CustomerSummary, error)
}

// CustomerHandler handles customer directory requests
type CustomerHandler struct {
	directory       CustomerDirectory
	defaultPageSize int
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(directory CustomerDirectory, defaultPageSize int) *CustomerHandler {
	return &CustomerHandler{directory: directory, defaultPageSize: defaultPageSize}
}

// ListCustomers handles GET /api/customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.directory.List(r.Context(), page, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetCustomer handles GET /api/customers/{id}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "customer ID is required")
		return
	}

	customer, err := h.directory.Get(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, customer)
}
