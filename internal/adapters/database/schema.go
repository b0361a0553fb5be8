package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
)

// Schema is the relational layout: interaction events are first-class rows keyed by
// their parent log and position, so the store joins, filters and pages them directly.
// interaction_at and start_offset (milliseconds after midnight) hold the parsed
// forms of interaction_date and start_time and are NULL when those do not parse.
const Schema = `
CREATE TABLE IF NOT EXISTS customers (
	id                TEXT PRIMARY KEY,
	first_name        TEXT NOT NULL DEFAULT '',
	middle_name       TEXT NOT NULL DEFAULT '',
	last_name         TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	mob_number        TEXT NOT NULL DEFAULT '',
	house_number      TEXT NOT NULL DEFAULT '',
	street_name       TEXT NOT NULL DEFAULT '',
	suburb            TEXT NOT NULL DEFAULT '',
	state             TEXT NOT NULL DEFAULT '',
	post_code         TEXT NOT NULL DEFAULT '',
	total_outstanding NUMERIC(14, 2) NOT NULL DEFAULT 0,
	payment_plan      JSONB
);

CREATE TABLE IF NOT EXISTS interaction_logs (
	id          TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS interaction_logs_customer_id_idx ON interaction_logs (customer_id);

CREATE TABLE IF NOT EXISTS interaction_events (
	log_id            TEXT NOT NULL REFERENCES interaction_logs (id) ON DELETE CASCADE,
	position          INTEGER NOT NULL,
	event_id          TEXT,
	interaction_date  TEXT NOT NULL DEFAULT '',
	interaction_at    TIMESTAMPTZ,
	start_time        TEXT NOT NULL DEFAULT '',
	start_offset      BIGINT,
	end_time          TEXT NOT NULL DEFAULT '',
	agent_id          TEXT NOT NULL DEFAULT '',
	agent_name        TEXT NOT NULL DEFAULT '',
	job_id            TEXT NOT NULL DEFAULT '',
	audio_file        TEXT NOT NULL DEFAULT '',
	sentiment         TEXT NOT NULL DEFAULT '',
	agent_notes       TEXT NOT NULL DEFAULT '',
	followup_required BOOLEAN NOT NULL DEFAULT FALSE,
	followup_date     TEXT NOT NULL DEFAULT '',
	cost              NUMERIC(12, 4),
	transcript        JSONB NOT NULL DEFAULT '[]',
	PRIMARY KEY (log_id, position)
);
ALTER TABLE interaction_events ADD COLUMN IF NOT EXISTS start_offset BIGINT;
CREATE INDEX IF NOT EXISTS interaction_events_interaction_at_idx ON interaction_events (interaction_at);

CREATE TABLE IF NOT EXISTS app_settings (
	id                 SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	api_url            TEXT NOT NULL DEFAULT '',
	livekit_host       TEXT NOT NULL DEFAULT '',
	livekit_api_key    TEXT NOT NULL DEFAULT '',
	livekit_api_secret TEXT NOT NULL DEFAULT ''
);
`

// ApplySchema creates missing tables and indexes
func ApplySchema(ctx context.Context, client *postgres.Client) error {
	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := client.DB().ExecContext(ctx, stmt); err != nil {
			return apperrors.NewStoreUnavailableError("failed to apply schema", err)
		}
	}
	return nil
}

// readError maps a read failure to an application error
func readError(msg string, err error) error {
	if err == sql.ErrNoRows {
		return apperrors.NewNotFoundError(msg)
	}
	return apperrors.NewStoreUnavailableError(msg, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching fragment literally anywhere
func containsPattern(fragment string) string {
	return "%" + likeEscaper.Replace(fragment) + "%"
}
