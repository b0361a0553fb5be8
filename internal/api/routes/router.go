package routes

import (
	"net/http"

	"github.com/zatekoja/collectionsdesk/internal/api/handlers"
	"github.com/zatekoja/collectionsdesk/internal/api/middleware"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	interactionHandler *handlers.InteractionHandler
	customerHandler    *handlers.CustomerHandler
	settingsHandler    *handlers.SettingsHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	interactionHandler *handlers.InteractionHandler,
	customerHandler *handlers.CustomerHandler,
	settingsHandler *handlers.SettingsHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		interactionHandler: interactionHandler,
		customerHandler:    customerHandler,
		settingsHandler:    settingsHandler,
		allowedOrigins:     allowedOrigins,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Interaction endpoints
	r.mux.HandleFunc("GET /api/interactions", r.interactionHandler.ListInteractions)

	// Customer directory endpoints
	r.mux.HandleFunc("GET /api/customers", r.customerHandler.ListCustomers)
	r.mux.HandleFunc("GET /api/customers/{id}", r.customerHandler.GetCustomer)

	// Settings and live session endpoints
	if r.settingsHandler != nil {
		r.mux.HandleFunc("GET /api/settings", r.settingsHandler.GetSettings)
		r.mux.HandleFunc("PUT /api/settings", r.settingsHandler.UpdateSettings)
		r.mux.HandleFunc("POST /api/live/token", r.settingsHandler.IssueLiveToken)
		r.mux.HandleFunc("GET /api/live/rooms", r.settingsHandler.ListLiveRooms)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// Observability sits outside logging so access logs carry trace ids.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.Tracing(r.metrics)(handler)

	// CORS wraps everything so preflight never reaches the handlers
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
