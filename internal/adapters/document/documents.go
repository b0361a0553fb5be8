package document

import (
	"context"
	"errors"
	"time"

	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// idString renders a document _id the way it is referenced from other collections:
// ObjectIDs as hex, strings verbatim
func idString(raw bson.RawValue) string {
	switch raw.Type {
	case bsontype.ObjectID:
		return raw.ObjectID().Hex()
	case bsontype.String:
		return raw.StringValue()
	case 0:
		return ""
	default:
		return raw.String()
	}
}

// idCandidates returns the _id values an externally supplied id may be stored as
func idCandidates(ids []string) bson.A {
	candidates := make(bson.A, 0, len(ids)*2)
	for _, id := range ids {
		candidates = append(candidates, id)
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			candidates = append(candidates, oid)
		}
	}
	return candidates
}

// storeError maps driver failures to application errors
func storeError(msg string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NewNotFoundError(msg)
	}
	return apperrors.NewStoreUnavailableError(msg, err)
}

func timed(ctx context.Context, metrics *observability.Metrics, operation string) func() {
	start := time.Now()
	return func() {
		observability.RecordStoreMetric(ctx, metrics, operation, time.Since(start))
	}
}
