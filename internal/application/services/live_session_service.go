package services

import (
	"context"
	"strings"
	"time"

	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
)

// LiveToken is an access token for joining a monitored call
type LiveToken struct {
	Token     string    `json:"token"`
	Host      string    `json:"host"`
	Room      string    `json:"room"`
	Identity  string    `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LiveRoom is a call currently open on the live session server
type LiveRoom struct {
	SID             string    `json:"sid"`
	Name            string    `json:"name"`
	NumParticipants uint32    `json:"num_participants"`
	CreatedAt       time.Time `json:"created_at"`
	Metadata        string    `json:"metadata,omitempty"`
}

// RoomLister is the part of the live session server's room service used here
type RoomLister interface {
	ListRooms(ctx context.Context, req *livekit.ListRoomsRequest) (*livekit.ListRoomsResponse, error)
}

// RoomListerFactory connects a RoomLister to one server with one credential pair
type RoomListerFactory func(host, apiKey, apiSecret string) RoomLister

// LiveSessionOption configures a LiveSessionService
type LiveSessionOption func(*LiveSessionService)

// WithRoomListerFactory replaces the room service client constructor
func WithRoomListerFactory(factory RoomListerFactory) LiveSessionOption {
	return func(s *LiveSessionService) {
		s.rooms = factory
	}
}

// LiveSessionService issues access tokens and lists rooms for live call monitoring.
type LiveSessionService struct {
	settings *SettingsService
	ttl      time.Duration
	rooms    RoomListerFactory
	now      func() time.Time
}

// NewLiveSessionService creates a new live session service.
func NewLiveSessionService(settings *SettingsService, ttl time.Duration, opts ...LiveSessionOption) *LiveSessionService {
	s := &LiveSessionService{
		settings: settings,
		ttl:      ttl,
		rooms:    newRoomServiceClient,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newRoomServiceClient(host, apiKey, apiSecret string) RoomLister {
	return lksdk.NewRoomServiceClient(serviceURL(host), apiKey, apiSecret)
}

// serviceURL turns the client-facing websocket host into the server API address
func serviceURL(host string) string {
	switch {
	case strings.HasPrefix(host, "wss://"):
		return "https://" + strings.TrimPrefix(host, "wss://")
	case strings.HasPrefix(host, "ws://"):
		return "http://" + strings.TrimPrefix(host, "ws://")
	}
	return host
}

// IssueToken signs a room-join token for identity using the configured key and secret.
func (s *LiveSessionService) IssueToken(ctx context.Context, room, identity string) (*LiveToken, error) {
	room = strings.TrimSpace(room)
	identity = strings.TrimSpace(identity)
	if room == "" || identity == "" {
		return nil, apperrors.NewValidationError("missing roomName or identity")
	}

	settings, err := s.settings.RequireLiveKit(ctx)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.ttl)
	at := auth.NewAccessToken(settings.LiveKitAPIKey, settings.LiveKitAPISecret)
	at.AddGrant(&auth.VideoGrant{RoomJoin: true, Room: room}).
		SetIdentity(identity).
		SetValidFor(s.ttl)

	token, err := at.ToJWT()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to sign live session token", err)
	}

	return &LiveToken{
		Token:     token,
		Host:      settings.LiveKitHost,
		Room:      room,
		Identity:  identity,
		ExpiresAt: expiresAt,
	}, nil
}

// ListRooms returns the rooms open on the configured live session server
func (s *LiveSessionService) ListRooms(ctx context.Context) ([]LiveRoom, error) {
	ctx, span := observability.StartSpan(ctx, "LiveSessionService.ListRooms")
	defer span.End()

	settings, err := s.settings.RequireLiveKit(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.rooms(settings.LiveKitHost, settings.LiveKitAPIKey, settings.LiveKitAPISecret).
		ListRooms(ctx, &livekit.ListRoomsRequest{})
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewExternalError("failed to fetch rooms", err)
	}

	rooms := make([]LiveRoom, 0, len(resp.GetRooms()))
	for _, room := range resp.GetRooms() {
		rooms = append(rooms, LiveRoom{
			SID:             room.GetSid(),
			Name:            room.GetName(),
			NumParticipants: room.GetNumParticipants(),
			CreatedAt:       time.Unix(room.GetCreationTime(), 0).UTC(),
			Metadata:        room.GetMetadata(),
		})
	}
	return rooms, nil
}
