package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
)

// InteractionAdapter implements InteractionJoinExecutor over first-class event rows
type InteractionAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewInteractionAdapter creates a new interaction adapter
func NewInteractionAdapter(client *postgres.Client, metrics *observability.Metrics) *InteractionAdapter {
	return &InteractionAdapter{
		client:  client,
		db:      client.Goqu(),
		metrics: metrics,
	}
}

// scoped applies the scope predicate shared by the rows and count queries
func (a *InteractionAdapter) scoped(ds *goqu.SelectDataset, scope repositories.InteractionScope) *goqu.SelectDataset {
	ds = ds.From(goqu.T("interaction_events").As("e")).
		Join(
			goqu.T("interaction_logs").As("l"),
			goqu.On(goqu.I("l.id").Eq(goqu.I("e.log_id"))),
		)

	if scope.Restricted {
		ds = ds.Where(goqu.I("l.customer_id").In(scope.CustomerIDs))
	}
	if scope.HasDateRange() {
		ds = ds.Where(goqu.I("e.interaction_at").Between(goqu.Range(scope.DayStart.UTC(), scope.DayEnd.UTC())))
	}
	return ds
}

// rowOrder matches entities.CompareRows: civil day then start time of day, newest
// first with unparseable values last, then source identity. Raw strings break ties
// among unparseable values and compare bytewise.
var rowOrder = []exp.OrderedExpression{
	goqu.L(`date_trunc('day', e.interaction_at AT TIME ZONE 'UTC')`).Desc().NullsLast(),
	goqu.L(`(CASE WHEN e.interaction_at IS NULL THEN e.interaction_date END) COLLATE "C"`).Desc().NullsLast(),
	goqu.I("e.start_offset").Desc().NullsLast(),
	goqu.L(`(CASE WHEN e.start_offset IS NULL THEN e.start_time END) COLLATE "C"`).Desc().NullsLast(),
	goqu.L(`l.id COLLATE "C"`).Asc(),
	goqu.I("e.position").Asc(),
}

// RowsQuery builds the ordered, windowed row query
func (a *InteractionAdapter) RowsQuery(scope repositories.InteractionScope, window repositories.Window) (string, []interface{}, error) {
	ds := a.scoped(a.db.Select(
		"e.event_id", "l.id", "e.position", "l.customer_id",
		"c.first_name", "c.last_name",
		"e.interaction_date", "e.start_time", "e.end_time",
		"e.agent_id", "e.agent_name", "e.job_id", "e.audio_file",
		"e.sentiment", "e.agent_notes", "e.followup_required", "e.followup_date",
		"e.cost", "e.transcript",
	), scope).
		LeftJoin(
			goqu.T("customers").As("c"),
			goqu.On(goqu.I("c.id").Eq(goqu.I("l.customer_id"))),
		).
		Order(rowOrder...).
		Limit(uint(window.Limit)).
		Offset(uint(window.Offset))

	return ds.ToSQL()
}

// CountQuery builds the count over the same scope as RowsQuery
func (a *InteractionAdapter) CountQuery(scope repositories.InteractionScope) (string, []interface{}, error) {
	return a.scoped(a.db.Select(goqu.COUNT(goqu.Star())), scope).ToSQL()
}

// FlattenedRows implements repositories.InteractionJoinExecutor
func (a *InteractionAdapter) FlattenedRows(ctx context.Context, scope repositories.InteractionScope, window repositories.Window) ([]*entities.FlatInteractionRow, error) {
	rows := []*entities.FlatInteractionRow{}
	if window.Limit <= 0 || (scope.Restricted && len(scope.CustomerIDs) == 0) {
		return rows, nil
	}

	query, args, err := a.RowsQuery(scope, window)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build interaction query", err)
	}

	start := time.Now()
	result, err := a.client.DB().QueryContext(ctx, query, args...)
	observability.RecordStoreMetric(ctx, a.metrics, "interaction_events.select", time.Since(start))
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to query interactions", err)
	}
	defer result.Close()

	for result.Next() {
		var (
			eventID, firstName, lastName sql.NullString
			logID, customerID            string
			position                     int
			cost                         sql.NullFloat64
			transcript                   []byte
			event                        entities.InteractionEvent
		)

		err := result.Scan(
			&eventID, &logID, &position, &customerID,
			&firstName, &lastName,
			&event.InteractionDate, &event.StartTime, &event.EndTime,
			&event.AgentID, &event.AgentName, &event.JobID, &event.AudioFile,
			&event.Sentiment, &event.AgentNotes, &event.FollowupRequired, &event.FollowupDate,
			&cost, &transcript,
		)
		if err != nil {
			return nil, apperrors.NewStoreUnavailableError("failed to scan interaction", err)
		}

		event.ID = eventID.String
		if cost.Valid {
			event.Cost = &cost.Float64
		}
		if len(transcript) > 0 {
			if err := json.Unmarshal(transcript, &event.Transcript.Items); err != nil {
				return nil, apperrors.NewInternalError("failed to decode transcript", err)
			}
		}

		name := scope.CustomerNames[customerID]
		if !scope.Restricted && firstName.Valid {
			name = (&entities.Customer{FirstName: firstName.String, LastName: lastName.String}).DisplayName()
		}

		rows = append(rows, entities.NewFlatInteractionRow(logID, customerID, position, event, name))
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to read interactions", err)
	}

	return rows, nil
}

// CountRows implements repositories.InteractionJoinExecutor
func (a *InteractionAdapter) CountRows(ctx context.Context, scope repositories.InteractionScope) (int64, error) {
	if scope.Restricted && len(scope.CustomerIDs) == 0 {
		return 0, nil
	}

	query, args, err := a.CountQuery(scope)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	start := time.Now()
	var total int64
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&total)
	observability.RecordStoreMetric(ctx, a.metrics, "interaction_events.count", time.Since(start))
	if err != nil {
		return 0, apperrors.NewStoreUnavailableError("failed to count interactions", err)
	}
	return total, nil
}

// InsertLog writes a log and its events as rows, replacing any previous copy
func (a *InteractionAdapter) InsertLog(ctx context.Context, log *entities.InteractionLog) error {
	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreUnavailableError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmts := []*goqu.InsertDataset{
		a.db.Insert("interaction_logs").
			Rows(goqu.Record{"id": log.ID, "customer_id": log.CustomerID}).
			OnConflict(goqu.DoUpdate("id", goqu.Record{"customer_id": log.CustomerID})),
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM "interaction_events" WHERE "log_id" = $1`, log.ID); err != nil {
		return apperrors.NewStoreUnavailableError("failed to clear interaction events", err)
	}

	if len(log.Events) > 0 {
		records := make([]interface{}, 0, len(log.Events))
		for i, event := range log.Events {
			transcript, err := json.Marshal(event.Transcript.Items)
			if err != nil {
				return apperrors.NewInternalError("failed to encode transcript", err)
			}

			var at, startOffset interface{}
			if t, ok := entities.ParseInteractionDate(event.InteractionDate); ok {
				at = t
			}
			if ms, ok := entities.TimeOfDayMillis(event.StartTime); ok {
				startOffset = ms
			}
			var cost interface{}
			if event.Cost != nil {
				cost = *event.Cost
			}

			records = append(records, goqu.Record{
				"log_id":            log.ID,
				"position":          i,
				"event_id":          sql.NullString{String: event.ID, Valid: event.ID != ""},
				"interaction_date":  event.InteractionDate,
				"interaction_at":    at,
				"start_time":        event.StartTime,
				"start_offset":      startOffset,
				"end_time":          event.EndTime,
				"agent_id":          event.AgentID,
				"agent_name":        event.AgentName,
				"job_id":            event.JobID,
				"audio_file":        event.AudioFile,
				"sentiment":         event.Sentiment,
				"agent_notes":       event.AgentNotes,
				"followup_required": event.FollowupRequired,
				"followup_date":     event.FollowupDate,
				"cost":              cost,
				"transcript":        string(transcript),
			})
		}
		stmts = append(stmts, a.db.Insert("interaction_events").Rows(records...))
	}

	for _, stmt := range stmts {
		query, args, err := stmt.ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewStoreUnavailableError("failed to write interaction log", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreUnavailableError("failed to commit interaction log", err)
	}
	return nil
}
