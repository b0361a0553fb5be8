// Package conformance holds one interaction dataset and the pages every join executor
// must return for it. The in-process executor, the aggregation pipeline and the
// relational store all run the same cases, so an ordering or filtering difference
// between them fails here first.
package conformance

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/query/services"
)

// Identifiers are ObjectID hex so the document store keeps them as ObjectIDs, whose
// byte order matches the string order the other stores use.
const (
	JaneID  = "65f000000000000000000c01"
	JohnID  = "65f000000000000000000c02"
	PriyaID = "65f000000000000000000c03"
	GhostID = "65f000000000000000000c99"

	JaneLog  = "65f000000000000000000a01"
	JohnLog  = "65f000000000000000000a02"
	GhostLog = "65f000000000000000000a03"
	PriyaLog = "65f000000000000000000a04"
)

// RowKey identifies a flattened row by its source
type RowKey struct {
	LogID      string
	EventIndex int
}

func (k RowKey) String() string {
	return fmt.Sprintf("%s#%d", k.LogID, k.EventIndex)
}

// Dataset is the shared fixture
type Dataset struct {
	Customers []*entities.Customer
	Logs      []*entities.InteractionLog
}

func event(date, start string) entities.InteractionEvent {
	return entities.InteractionEvent{InteractionDate: date, StartTime: start, AgentName: "Agent Smith"}
}

// NewDataset builds customers and logs covering day boundaries, clock readings that
// sort differently as strings, full timestamps with offsets, unparseable values and
// a log whose customer does not exist
func NewDataset() Dataset {
	return Dataset{
		Customers: []*entities.Customer{
			{ID: JaneID, FirstName: "Jane", LastName: "Doe", Email: "jane.doe@example.com", Phone: "098-765-4321"},
			{ID: JohnID, FirstName: "John", LastName: "Smith", Email: "john.smith@example.com", Phone: "012-345-6789"},
			{ID: PriyaID, FirstName: "Priya", LastName: "Patel", Email: "priya@example.org", Phone: "555-0100"},
		},
		Logs: []*entities.InteractionLog{
			{ID: JaneLog, CustomerID: JaneID, Events: []entities.InteractionEvent{
				event("2024-03-01T00:00:00.000Z", "9:30"),
				event("2024-03-01T23:59:59.999Z", "10:15"),
				event("2024-03-02T00:00:00.000Z", "00:00:00"),
				event("2024-03-01", "11:00 PM"),
			}},
			{ID: JohnLog, CustomerID: JohnID, Events: []entities.InteractionEvent{
				event("2024-03-01", "9:00 AM"),
				event("2024-03-01T18:00:00+02:00", "2024-03-01T10:15:00Z"),
				event("2024-03-01", "whenever"),
				event("2024-03-01", "afterwards"),
			}},
			{ID: GhostLog, CustomerID: GhostID, Events: []entities.InteractionEvent{
				event("not-a-date", "08:00"),
				event("garbage", "07:00"),
				event("2024-02-29", "12:00:00.5"),
			}},
			{ID: PriyaLog, CustomerID: PriyaID},
		},
	}
}

// Seed replaces the contents of a store with the dataset
func Seed(ctx context.Context, w repositories.StoreWriter, d Dataset) error {
	if err := w.Reset(ctx); err != nil {
		return err
	}
	for _, c := range d.Customers {
		if err := w.SaveCustomer(ctx, c); err != nil {
			return err
		}
	}
	for _, l := range d.Logs {
		if err := w.SaveInteractionLog(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// FullOrder is the whole unfiltered universe in result order
var FullOrder = []RowKey{
	{JaneLog, 2},  // 2024-03-02 00:00
	{JaneLog, 3},  // 2024-03-01 23:00
	{JaneLog, 1},  // 2024-03-01 10:15
	{JohnLog, 1},  // 2024-03-01 10:15 (16:00Z), later log id
	{JaneLog, 0},  // 2024-03-01 9:30
	{JohnLog, 0},  // 2024-03-01 9:00
	{JohnLog, 2},  // 2024-03-01 "whenever"
	{JohnLog, 3},  // 2024-03-01 "afterwards"
	{GhostLog, 2}, // 2024-02-29 12:00:00.5
	{GhostLog, 0}, // "not-a-date"
	{GhostLog, 1}, // "garbage"
}

// Names are the display names rows must carry per log
var Names = map[string]string{
	JaneLog:  "Jane Doe",
	JohnLog:  "John Smith",
	GhostLog: entities.UnknownCustomerName,
}

// Case is one query and the rows it must select, in order
type Case struct {
	Name     string
	Criteria services.FilterCriteria
	Want     []RowKey
}

// Cases lists the queries every executor must answer identically
func Cases() []Case {
	return []Case{
		{Name: "unfiltered", Criteria: services.FilterCriteria{}, Want: FullOrder},
		{
			Name:     "single day keeps both boundary instants",
			Criteria: services.FilterCriteria{Date: "2024-03-01"},
			Want: []RowKey{
				{JaneLog, 3}, {JaneLog, 1}, {JohnLog, 1}, {JaneLog, 0}, {JohnLog, 0}, {JohnLog, 2}, {JohnLog, 3},
			},
		},
		{
			Name:     "name fragment",
			Criteria: services.FilterCriteria{CustomerName: "jane"},
			Want:     []RowKey{{JaneLog, 2}, {JaneLog, 3}, {JaneLog, 1}, {JaneLog, 0}},
		},
		{
			Name:     "email fragment with day",
			Criteria: services.FilterCriteria{CustomerEmail: "JOHN.smith", Date: "2024-03-01"},
			Want:     []RowKey{{JohnLog, 1}, {JohnLog, 0}, {JohnLog, 2}, {JohnLog, 3}},
		},
		{
			Name:     "day with only an orphan log",
			Criteria: services.FilterCriteria{Date: "2024-02-29"},
			Want:     []RowKey{{GhostLog, 2}},
		},
		{
			Name:     "customer without interactions",
			Criteria: services.FilterCriteria{CustomerName: "Priya"},
			Want:     []RowKey{},
		},
		{
			Name:     "no matching customer",
			Criteria: services.FilterCriteria{CustomerName: "Nobody"},
			Want:     []RowKey{},
		},
	}
}

// Run checks every case against engine, reading each result whole and in pages
func Run(t *testing.T, engine *services.InteractionQueryService) {
	t.Helper()

	for _, tc := range Cases() {
		t.Run(tc.Name, func(t *testing.T) {
			ctx := context.Background()

			whole := tc.Criteria
			whole.Page, whole.PageSize = 1, 100
			page, err := engine.QueryInteractions(ctx, whole)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.Want)), page.Total)
			assert.Equal(t, keys(tc.Want), keys(rowKeys(page.Rows)))
			for _, row := range page.Rows {
				assert.Equal(t, Names[row.LogID], row.CustomerName, row.LogID)
			}

			var paged []RowKey
			paging := tc.Criteria
			paging.PageSize = 3
			for paging.Page = 1; paging.Page <= 5; paging.Page++ {
				page, err := engine.QueryInteractions(ctx, paging)
				require.NoError(t, err)
				assert.Equal(t, int64(len(tc.Want)), page.Total, "page %d", paging.Page)
				assert.LessOrEqual(t, len(page.Rows), paging.PageSize)
				paged = append(paged, rowKeys(page.Rows)...)
			}
			assert.Equal(t, keys(tc.Want), keys(paged), "pages must partition the result")
		})
	}
}

func rowKeys(rows []*entities.FlatInteractionRow) []RowKey {
	out := make([]RowKey, 0, len(rows))
	for _, r := range rows {
		out = append(out, RowKey{LogID: r.LogID, EventIndex: r.EventIndex})
	}
	return out
}

// keys renders row keys for readable diffs
func keys(rows []RowKey) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.String())
	}
	return out
}
