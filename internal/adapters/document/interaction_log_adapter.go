package document

import (
	"context"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type interactionLogDocument struct {
	ID                      bson.RawValue `bson:"_id"`
	entities.InteractionLog `bson:",inline"`
}

// InteractionLogAdapter implements the InteractionLogRepository interface over the
// interaction log collection
type InteractionLogAdapter struct {
	coll    *mongo.Collection
	metrics *observability.Metrics
}

// NewInteractionLogAdapter creates a new interaction log adapter
func NewInteractionLogAdapter(coll *mongo.Collection, metrics *observability.Metrics) repositories.InteractionLogRepository {
	return &InteractionLogAdapter{coll: coll, metrics: metrics}
}

// List returns the logs owned by customerIDs, or every log when customerIDs is nil
func (a *InteractionLogAdapter) List(ctx context.Context, customerIDs []string) ([]*entities.InteractionLog, error) {
	defer timed(ctx, a.metrics, "interaction_logs.list")()

	filter := bson.D{}
	if customerIDs != nil {
		filter = bson.D{{Key: "customer_id", Value: bson.D{{Key: "$in", Value: customerIDs}}}}
	}

	cursor, err := a.coll.Find(ctx, filter)
	if err != nil {
		return nil, storeError("failed to query interaction logs", err)
	}
	defer cursor.Close(ctx)

	logs := make([]*entities.InteractionLog, 0)
	for cursor.Next(ctx) {
		var doc interactionLogDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, storeError("failed to decode interaction log", err)
		}
		log := doc.InteractionLog
		log.ID = idString(doc.ID)
		logs = append(logs, &log)
	}
	if err := cursor.Err(); err != nil {
		return nil, storeError("failed to iterate interaction logs", err)
	}
	return logs, nil
}
