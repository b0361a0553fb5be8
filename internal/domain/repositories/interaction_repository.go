package repositories

import (
	"context"
	"math"
	"time"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
)

// InteractionScope is the compiled predicate over the flattened interaction universe
type InteractionScope struct {
	// Restricted limits rows to logs whose customer_id is in CustomerIDs.
	// A restricted scope with no ids is never executed.
	Restricted  bool
	CustomerIDs []string

	// CustomerNames maps matched customer ids to display names
	CustomerNames map[string]string

	// DayStart and DayEnd bound the parsed interaction date, both inclusive
	DayStart *time.Time
	DayEnd   *time.Time
}

// HasDateRange reports whether the scope restricts interaction dates
func (s InteractionScope) HasDateRange() bool {
	return s.DayStart != nil && s.DayEnd != nil
}

// AcceptsDate reports whether a stored interaction_date falls inside the date range.
// Unparseable dates never satisfy a date restriction.
func (s InteractionScope) AcceptsDate(value string) bool {
	if !s.HasDateRange() {
		return true
	}
	t, ok := entities.ParseInteractionDate(value)
	if !ok {
		return false
	}
	return !t.Before(*s.DayStart) && !t.After(*s.DayEnd)
}

// Window selects a contiguous slice of the ordered universe
type Window struct {
	Offset int
	Limit  int
}

// PageWindow maps a 1-based page to a store window. It reports false when the page
// cannot contain rows: below 1, or so far out that its offset overflows.
func PageWindow(page, pageSize int) (Window, bool) {
	if page < 1 || pageSize <= 0 {
		return Window{}, false
	}
	if page-1 > (math.MaxInt32-pageSize)/pageSize {
		return Window{}, false
	}
	return Window{Offset: (page - 1) * pageSize, Limit: pageSize}, true
}

// InteractionJoinExecutor flattens interaction logs joined with their customers.
// Implementations must apply the same scope to rows and count, and order rows with
// entities.CompareRows semantics.
type InteractionJoinExecutor interface {
	// FlattenedRows returns the window of the ordered filtered universe
	FlattenedRows(ctx context.Context, scope InteractionScope, window Window) ([]*entities.FlatInteractionRow, error)

	// CountRows returns the cardinality of the filtered universe
	CountRows(ctx context.Context, scope InteractionScope) (int64, error)
}

// InteractionLogRepository defines the read operations on the interaction log store
type InteractionLogRepository interface {
	// List returns the logs of the given customers, or every log when customerIDs is nil
	List(ctx context.Context, customerIDs []string) ([]*entities.InteractionLog, error)
}
