package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zatekoja/collectionsdesk/internal/application/services"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
)

// SettingsManager reads and updates the application settings
type SettingsManager interface {
	Get(ctx context.Context) (*entities.Settings, error)
	Update(ctx context.Context, update entities.Settings) (*entities.Settings, error)
}

// LiveSessions mints access tokens for and lists the rooms of the live session server
type LiveSessions interface {
	IssueToken(ctx context.Context, room, identity string) (*services.LiveToken, error)
	ListRooms(ctx context.Context) ([]services.LiveRoom, error)
}

// SettingsHandler handles settings and live session requests
type SettingsHandler struct {
	settings SettingsManager
	live     LiveSessions
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings SettingsManager, live LiveSessions) *SettingsHandler {
	return &SettingsHandler{settings: settings, live: live}
}

// GetSettings handles GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var update entities.Settings
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.settings.Update(r.Context(), update)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

type liveTokenRequest struct {
	RoomName string `json:"roomName"`
	Identity string `json:"identity"`
}

// IssueLiveToken handles POST /api/live/token
func (h *SettingsHandler) IssueLiveToken(w http.ResponseWriter, r *http.Request) {
	var req liveTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.live.IssueToken(r.Context(), req.RoomName, req.Identity)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, token)
}

// ListLiveRooms handles GET /api/live/rooms
func (h *SettingsHandler) ListLiveRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.live.ListRooms(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"rooms": rooms})
}
