package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
)

func TestParseInteractionDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-01T23:59:59.999Z", time.Date(2024, 3, 1, 23, 59, 59, 999_000_000, time.UTC), true},
		{"2024-03-01T10:15:00", time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), true},
		{"2024-03-01 10:15:00", time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), true},
		{"2024-03-02T01:00:00+02:00", time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC), true},
		{"01/03/2024", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := entities.ParseInteractionDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestDayRange(t *testing.T) {
	start, end := entities.DayRange(time.Date(2024, 3, 1, 17, 4, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, 999_000_000, time.UTC), end)
}

func TestParseTimeOfDay(t *testing.T) {
	d, ok := entities.ParseTimeOfDay("09:30:15")
	require.True(t, ok)
	assert.Equal(t, 9*time.Hour+30*time.Minute+15*time.Second, d)

	d, ok = entities.ParseTimeOfDay("2:05 PM")
	require.True(t, ok)
	assert.Equal(t, 14*time.Hour+5*time.Minute, d)

	d, ok = entities.ParseTimeOfDay("2024-03-01T08:00:00Z")
	require.True(t, ok)
	assert.Equal(t, 8*time.Hour, d)

	_, ok = entities.ParseTimeOfDay("morning")
	assert.False(t, ok)
}

func TestTimeOfDayMillis(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{"9:30", (9*60 + 30) * 60_000, true},
		{"10:15", (10*60 + 15) * 60_000, true},
		{" 09:30:15.2509 ", ((9*60+30)*60+15)*1000 + 250, true},
		{"9:00 am", 9 * 3_600_000, true},
		{"11:00PM", 23 * 3_600_000, true},
		{"12:10 AM", 10 * 60_000, true},
		{"2024-03-01T08:00:00+02:00", 6 * 3_600_000, true},
		{"13:00 PM", 0, false},
		{"0:30 AM", 0, false},
		{"24:00", 0, false},
		{"10:60", 0, false},
		{"", 0, false},
		{"soon", 0, false},
	}

	for _, tt := range tests {
		got, ok := entities.TimeOfDayMillis(tt.value)
		assert.Equal(t, tt.ok, ok, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}
}

func TestSortRows_ClockReadingsCompareAsTimes(t *testing.T) {
	rows := []*entities.FlatInteractionRow{
		{LogID: "a", InteractionDate: "2024-03-01", StartTime: "9:30"},
		{LogID: "b", InteractionDate: "2024-03-01", StartTime: "10:15"},
		{LogID: "c", InteractionDate: "2024-03-01", StartTime: "11:00 PM"},
		{LogID: "d", InteractionDate: "2024-03-01", StartTime: "9:00 AM"},
		{LogID: "e", InteractionDate: "2024-03-01", StartTime: "later"},
		{LogID: "f", InteractionDate: "2024-03-01", StartTime: "afternoon"},
	}

	entities.SortRows(rows)

	var order []string
	for _, r := range rows {
		order = append(order, r.LogID)
	}
	assert.Equal(t, []string{"c", "b", "a", "d", "e", "f"}, order)
}

func TestInteractionLog_Flatten(t *testing.T) {
	cost := 1.25
	log := &entities.InteractionLog{
		ID:         "log-1",
		CustomerID: "cust-1",
		Events: []entities.InteractionEvent{
			{InteractionDate: "2024-03-01", StartTime: "10:00", Cost: &cost},
			{ID: "evt-2", InteractionDate: "2024-03-02", StartTime: "11:00"},
		},
	}

	rows := log.Flatten("Jane Doe", nil)
	require.Len(t, rows, 2)

	assert.Equal(t, "Jane Doe", rows[0].CustomerName)
	assert.Equal(t, 1.25, rows[0].Cost)
	assert.Equal(t, 0.0, rows[1].Cost)
	assert.Equal(t, "evt-2", rows[1].ID)
	assert.Equal(t, 1, rows[1].EventIndex)
	assert.NotEmpty(t, rows[0].ID)
	assert.Equal(t, rows[0].ID, entities.RowID("log-1", 0, ""), "derived ids must be stable")
	assert.NotEqual(t, entities.RowID("log-1", 0, ""), entities.RowID("log-1", 1, ""))
	assert.NotNil(t, rows[0].Transcript)

	onlySecond := log.Flatten("", func(e entities.InteractionEvent) bool { return e.ID == "evt-2" })
	require.Len(t, onlySecond, 1)
	assert.Equal(t, entities.UnknownCustomerName, onlySecond[0].CustomerName)
}

func TestSortRows(t *testing.T) {
	row := func(logID string, idx int, date, start string) *entities.FlatInteractionRow {
		return &entities.FlatInteractionRow{LogID: logID, EventIndex: idx, InteractionDate: date, StartTime: start}
	}

	rows := []*entities.FlatInteractionRow{
		row("b", 0, "2024-03-01", "09:00"),
		row("a", 1, "2024-03-01T18:00:00Z", "09:00"),
		row("a", 0, "2024-03-01", "09:00"),
		row("c", 0, "not-a-date", "23:00"),
		row("d", 0, "2024-03-02", "08:00"),
		row("e", 0, "2024-03-01", "17:30"),
	}

	entities.SortRows(rows)

	var order []string
	for _, r := range rows {
		order = append(order, r.LogID)
	}
	// civil date first, so the 18:00 timestamp ties with the bare date on start time
	assert.Equal(t, []string{"d", "e", "a", "a", "b", "c"}, order)
	assert.Equal(t, 0, rows[2].EventIndex)
	assert.Equal(t, 1, rows[3].EventIndex)
}
