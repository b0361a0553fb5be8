package entities

import "strings"

// MaskedSecret replaces the live session secret whenever settings leave the server.
// Writing it back means "keep the stored secret".
const MaskedSecret = "********"

// Settings is the single application configuration document
type Settings struct {
	APIURL           string `json:"apiUrl" bson:"apiUrl,omitempty" db:"api_url"`
	LiveKitHost      string `json:"livekit_host" bson:"livekit_host,omitempty" db:"livekit_host"`
	LiveKitAPIKey    string `json:"livekit_api_key" bson:"livekit_api_key,omitempty" db:"livekit_api_key"`
	LiveKitAPISecret string `json:"livekit_api_secret" bson:"livekit_api_secret,omitempty" db:"livekit_api_secret"`
}

// Masked returns a copy safe to send to clients
func (s Settings) Masked() Settings {
	if s.LiveKitAPISecret != "" {
		s.LiveKitAPISecret = MaskedSecret
	}
	return s
}

// LiveKitConfigured reports whether host, key and secret are all present
func (s *Settings) LiveKitConfigured() bool {
	return s != nil &&
		strings.TrimSpace(s.LiveKitHost) != "" &&
		strings.TrimSpace(s.LiveKitAPIKey) != "" &&
		strings.TrimSpace(s.LiveKitAPISecret) != ""
}

// SubmitsSecret reports whether a client update carries a new secret
func (s Settings) SubmitsSecret() bool {
	return s.LiveKitAPISecret != "" && s.LiveKitAPISecret != MaskedSecret
}

// MergeUpdate applies an update submitted by a client. A masked or empty secret keeps
// the current one.
func (s Settings) MergeUpdate(update Settings) Settings {
	merged := update
	if !update.SubmitsSecret() {
		merged.LiveKitAPISecret = s.LiveKitAPISecret
	}
	return merged
}
