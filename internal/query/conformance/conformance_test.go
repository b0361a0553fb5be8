package conformance_test

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/query/conformance"
	"github.com/zatekoja/collectionsdesk/internal/query/services"
)

// memoryStore keeps the dataset in maps and serves it through the read interfaces
type memoryStore struct {
	mu        sync.Mutex
	customers []*entities.Customer
	logs      []*entities.InteractionLog
}

func (m *memoryStore) SaveCustomer(_ context.Context, c *entities.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = append(m.customers, c)
	return nil
}

func (m *memoryStore) SaveInteractionLog(_ context.Context, l *entities.InteractionLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, l)
	return nil
}

func (m *memoryStore) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers, m.logs = nil, nil
	return nil
}

func (m *memoryStore) FindMatching(_ context.Context, filter repositories.CustomerFilter) ([]*entities.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Customer
	for _, c := range m.customers {
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryStore) GetByID(_ context.Context, id string) (*entities.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) GetByIDs(_ context.Context, ids []string) ([]*entities.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Customer
	for _, c := range m.customers {
		if slices.Contains(ids, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryStore) List(_ context.Context, limit, offset int) ([]*entities.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset >= len(m.customers) {
		return nil, nil
	}
	return m.customers[offset:min(offset+limit, len(m.customers))], nil
}

func (m *memoryStore) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.customers)), nil
}

// memoryLogs exposes the log side of memoryStore; List clashes with the customer method
type memoryLogs struct{ store *memoryStore }

func (m memoryLogs) List(_ context.Context, customerIDs []string) ([]*entities.InteractionLog, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*entities.InteractionLog
	for _, l := range m.store.logs {
		if customerIDs == nil || slices.Contains(customerIDs, l.CustomerID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func TestInProcessExecutorConformance(t *testing.T) {
	store := &memoryStore{}
	require.NoError(t, conformance.Seed(context.Background(), store, conformance.NewDataset()))

	executor := services.NewInProcessJoinExecutor(memoryLogs{store: store}, store, nil)
	conformance.Run(t, services.NewInteractionQueryService(store, executor, 0, nil))
}

func TestFullOrderFollowsCompareRows(t *testing.T) {
	var rows []*entities.FlatInteractionRow
	for _, l := range conformance.NewDataset().Logs {
		rows = append(rows, l.Flatten("", nil)...)
	}
	slices.Reverse(rows)
	entities.SortRows(rows)

	got := make([]conformance.RowKey, 0, len(rows))
	for _, r := range rows {
		got = append(got, conformance.RowKey{LogID: r.LogID, EventIndex: r.EventIndex})
	}
	assert.Equal(t, conformance.FullOrder, got)
}
