package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/collectionsdesk/internal/api/handlers"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/query/services"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
)

type stubEngine struct {
	got    services.FilterCriteria
	result *services.InteractionPage
	err    error
}

func (s *stubEngine) QueryInteractions(ctx context.Context, criteria services.FilterCriteria) (*services.InteractionPage, error) {
	s.got = criteria
	return s.result, s.err
}

func TestInteractionHandler_ListInteractions(t *testing.T) {
	engine := &stubEngine{result: &services.InteractionPage{
		Rows:     []*entities.FlatInteractionRow{{ID: "r1", CustomerName: "Jane Doe", Transcript: []entities.TranscriptTurn{}}},
		Total:    21,
		Page:     2,
		PageSize: 10,
	}}
	handler := handlers.NewInteractionHandler(engine, 25)

	req := httptest.NewRequest("GET", "/api/interactions?date=2024-03-01&customerName=jane&customerEmail=ex&customerPhone=555&page=2&limit=10", nil)
	w := httptest.NewRecorder()
	handler.ListInteractions(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.FilterCriteria{
		Date:          "2024-03-01",
		CustomerName:  "jane",
		CustomerEmail: "ex",
		CustomerPhone: "555",
		Page:          2,
		PageSize:      10,
	}, engine.got)

	var body struct {
		Rows       []map[string]interface{} `json:"rows"`
		Total      int64                    `json:"total"`
		Page       int                      `json:"page"`
		Limit      int                      `json:"limit"`
		TotalPages int64                    `json:"total_pages"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Len(t, body.Rows, 1)
	assert.Equal(t, "Jane Doe", body.Rows[0]["customer_name"])
	assert.Equal(t, int64(21), body.Total)
	assert.Equal(t, 10, body.Limit)
	assert.Equal(t, int64(3), body.TotalPages)
}

func TestInteractionHandler_Defaults(t *testing.T) {
	engine := &stubEngine{result: &services.InteractionPage{Rows: []*entities.FlatInteractionRow{}, Page: 1, PageSize: 25}}
	handler := handlers.NewInteractionHandler(engine, 25)

	w := httptest.NewRecorder()
	handler.ListInteractions(w, httptest.NewRequest("GET", "/api/interactions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, engine.got.Page)
	assert.Equal(t, 25, engine.got.PageSize)
	assert.JSONEq(t, `{"rows":[],"total":0,"page":1,"limit":25,"total_pages":0}`, w.Body.String())
}

func TestInteractionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid criteria", apperrors.NewInvalidCriteriaError("invalid date"), http.StatusBadRequest},
		{"store unavailable", apperrors.NewStoreUnavailableError("timed out", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.NewInteractionHandler(&stubEngine{err: tt.err}, 25)
			w := httptest.NewRecorder()
			handler.ListInteractions(w, httptest.NewRequest("GET", "/api/interactions?date=bad", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestInteractionHandler_BadPage(t *testing.T) {
	engine := &stubEngine{}
	handler := handlers.NewInteractionHandler(engine, 25)

	w := httptest.NewRecorder()
	handler.ListInteractions(w, httptest.NewRequest("GET", "/api/interactions?page=two", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "page must be an integer")
	assert.Zero(t, engine.got.PageSize, "engine must not be called")
}
