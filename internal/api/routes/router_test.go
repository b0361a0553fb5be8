package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/collectionsdesk/internal/api/handlers"
	"github.com/zatekoja/collectionsdesk/internal/api/routes"
	appservices "github.com/zatekoja/collectionsdesk/internal/application/services"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/query/services"
)

type emptyEngine struct{}

func (emptyEngine) QueryInteractions(ctx context.Context, c services.FilterCriteria) (*services.InteractionPage, error) {
	return &services.InteractionPage{Rows: []*entities.FlatInteractionRow{}, Page: c.Page, PageSize: c.PageSize}, nil
}

type emptyDirectory struct{}

func (emptyDirectory) List(ctx context.Context, page, limit int) (*appservices.CustomerPage, error) {
	return &appservices.CustomerPage{Customers: []*appservices.CustomerSummary{}, Page: page, Limit: limit}, nil
}

func (emptyDirectory) Get(ctx context.Context, id string) (*appservices.CustomerSummary, error) {
	return &appservices.CustomerSummary{Customer: &entities.Customer{ID: id}}, nil
}

func TestRouter_SetupRoutes(t *testing.T) {
	router := routes.NewRouter(
		handlers.NewInteractionHandler(emptyEngine{}, 10),
		handlers.NewCustomerHandler(emptyDirectory{}, 10),
		nil,
		[]string{"*"},
		nil,
	)
	handler := router.SetupRoutes()

	tests := []struct {
		method, path string
		status       int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/api/interactions?page=1", http.StatusOK},
		{"GET", "/api/customers", http.StatusOK},
		{"GET", "/api/customers/c1", http.StatusOK},
		{"POST", "/api/interactions", http.StatusMethodNotAllowed},
		{"GET", "/api/settings", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
