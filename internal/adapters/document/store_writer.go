package document

import (
	"context"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type customerWrite struct {
	ID                interface{} `bson:"_id"`
	entities.Customer `bson:",inline"`
}

type interactionLogWrite struct {
	ID                      interface{} `bson:"_id"`
	entities.InteractionLog `bson:",inline"`
}

// StoreWriter implements repositories.StoreWriter over the customers and interaction
// log collections
type StoreWriter struct {
	customers    *mongo.Collection
	interactions *mongo.Collection
}

// NewStoreWriter creates a new document store writer
func NewStoreWriter(customers, interactions *mongo.Collection) repositories.StoreWriter {
	return &StoreWriter{customers: customers, interactions: interactions}
}

// storedID keeps hex ids as ObjectIDs, the way documents created by the driver look
func storedID(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// SaveCustomer implements repositories.StoreWriter
func (w *StoreWriter) SaveCustomer(ctx context.Context, customer *entities.Customer) error {
	id := storedID(customer.ID)
	_, err := w.customers.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		customerWrite{ID: id, Customer: *customer},
		options.Replace().SetUpsert(true),
	)
	return storeError("failed to save customer", err)
}

// SaveInteractionLog implements repositories.StoreWriter
func (w *StoreWriter) SaveInteractionLog(ctx context.Context, log *entities.InteractionLog) error {
	id := storedID(log.ID)
	_, err := w.interactions.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		interactionLogWrite{ID: id, InteractionLog: *log},
		options.Replace().SetUpsert(true),
	)
	return storeError("failed to save interaction log", err)
}

// Reset implements repositories.StoreWriter
func (w *StoreWriter) Reset(ctx context.Context) error {
	if _, err := w.interactions.DeleteMany(ctx, bson.D{}); err != nil {
		return storeError("failed to clear interaction logs", err)
	}
	if _, err := w.customers.DeleteMany(ctx, bson.D{}); err != nil {
		return storeError("failed to clear customers", err)
	}
	return nil
}
