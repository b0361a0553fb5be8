package services_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
)

// memoryCustomers is an in-memory CustomerRepository
type memoryCustomers struct {
	mu        sync.Mutex
	customers []*entities.Customer
	findCalls atomic.Int32
	getCalls  atomic.Int32
	findErr   error
}

func (m *memoryCustomers) FindMatching(_ context.Context, filter repositories.CustomerFilter) ([]*entities.Customer, error) {
	m.findCalls.Add(1)
	if m.findErr != nil {
		return nil, m.findErr
	}
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

func (m *memoryCustomers) GetByID(_ context.Context, id string) (*entities.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memoryCustomers) GetByIDs(_ context.Context, ids []string) ([]*entities.Customer, error) {
	m.getCalls.Add(1)
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

func (m *memoryCustomers) List(_ context.Context, limit, offset int) ([]*entities.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset >= len(m.customers) {
		return nil, nil
	}
	end := min(offset+limit, len(m.customers))
	return m.customers[offset:end], nil
}

func (m *memoryCustomers) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.customers)), nil
}

// memoryLogs is an in-memory InteractionLogRepository
type memoryLogs struct {
	logs    []*entities.InteractionLog
	calls   atomic.Int32
	listErr error
	block   bool
}

func (m *memoryLogs) List(ctx context.Context, customerIDs []string) ([]*entities.InteractionLog, error) {
	m.calls.Add(1)
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*entities.InteractionLog
	for _, l := range m.logs {
		if customerIDs == nil || slices.Contains(customerIDs, l.CustomerID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func event(date, start string) entities.InteractionEvent {
	return entities.InteractionEvent{InteractionDate: date, StartTime: start, AgentName: "Agent Smith"}
}

// fixture builds two known customers, one dangling log and a spread of dates
func fixture() (*memoryCustomers, *memoryLogs) {
	customers := &memoryCustomers{customers: []*entities.Customer{
		{ID: "c1", FirstName: "Jane", LastName: "Doe", Email: "jane.doe@example.com", Phone: "098-765-4321"},
		{ID: "c2", FirstName: "John", LastName: "Smith", Email: "john.smith@example.com", Phone: "012-345-6789"},
		{ID: "c3", FirstName: "Janet", LastName: "Jones", Email: "janet@example.org", Phone: "555-0100"},
	}}

	logs := &memoryLogs{logs: []*entities.InteractionLog{
		{ID: "log-a", CustomerID: "c1", Events: []entities.InteractionEvent{
			event("2024-03-01T00:00:00.000Z", "00:00:00"),
			event("2024-03-01T23:59:59.999Z", "23:59:59"),
			event("2024-03-02T00:00:00.000Z", "00:00:00"),
			event("2024-02-29", "10:00:00"),
		}},
		{ID: "log-b", CustomerID: "c2", Events: []entities.InteractionEvent{
			event("2024-03-01", "12:00:00"),
			event("2024-03-03", "09:30:00"),
			event("2024-03-01", "12:00:00"),
		}},
		{ID: "log-c", CustomerID: "ghost", Events: []entities.InteractionEvent{
			event("2024-03-01", "08:15:00"),
			event("garbage", "11:00:00"),
		}},
		{ID: "log-d", CustomerID: "c3", Events: nil},
	}}

	return customers, logs
}
