package repositories

import (
	"context"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
)

// StoreWriter loads customers and interaction logs into a store. The engine never writes;
// this is used by the seeder and by tests that need a populated store.
type StoreWriter interface {
	// SaveCustomer inserts or replaces a customer by ID
	SaveCustomer(ctx context.Context, customer *entities.Customer) error
	// SaveInteractionLog inserts or replaces a log and all of its events by ID
	SaveInteractionLog(ctx context.Context, log *entities.InteractionLog) error
	// Reset removes every customer and interaction log
	Reset(ctx context.Context) error
}
