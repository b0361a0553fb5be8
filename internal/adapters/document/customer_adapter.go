package document

import (
	"context"
	"regexp"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// customerDocument is a customer as stored, keeping the raw _id
type customerDocument struct {
	ID                bson.RawValue `bson:"_id"`
	entities.Customer `bson:",inline"`
}

func (d *customerDocument) entity() *entities.Customer {
	c := d.Customer
	c.ID = idString(d.ID)
	return &c
}

// CustomerAdapter implements the CustomerRepository interface over the customers collection
type CustomerAdapter struct {
	coll    *mongo.Collection
	metrics *observability.Metrics
}

// NewCustomerAdapter creates a new customer adapter
func NewCustomerAdapter(coll *mongo.Collection, metrics *observability.Metrics) repositories.CustomerRepository {
	return &CustomerAdapter{coll: coll, metrics: metrics}
}

// CustomerFilterDocument translates fragments into a query document.
// Each fragment is a case-insensitive literal substring match.
func CustomerFilterDocument(filter repositories.CustomerFilter) bson.D {
	var clauses bson.A
	for _, token := range filter.NameTokens {
		clauses = append(clauses, bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "first_name", Value: containsPattern(token)}},
			bson.D{{Key: "last_name", Value: containsPattern(token)}},
		}}})
	}
	if filter.Email != "" {
		clauses = append(clauses, bson.D{{Key: "email", Value: containsPattern(filter.Email)}})
	}
	if filter.Phone != "" {
		clauses = append(clauses, bson.D{{Key: "mob_number", Value: containsPattern(filter.Phone)}})
	}
	if len(clauses) == 0 {
		return bson.D{}
	}
	return bson.D{{Key: "$and", Value: clauses}}
}

func containsPattern(fragment string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(fragment), Options: "i"}
}

// FindMatching returns every customer satisfying all fragments
func (a *CustomerAdapter) FindMatching(ctx context.Context, filter repositories.CustomerFilter) ([]*entities.Customer, error) {
	defer timed(ctx, a.metrics, "customers.find_matching")()

	opts := options.Find().SetProjection(bson.D{
		{Key: "first_name", Value: 1},
		{Key: "last_name", Value: 1},
		{Key: "email", Value: 1},
		{Key: "mob_number", Value: 1},
	})
	return a.find(ctx, CustomerFilterDocument(filter), opts)
}

// GetByID retrieves a customer by ID
func (a *CustomerAdapter) GetByID(ctx context.Context, id string) (*entities.Customer, error) {
	defer timed(ctx, a.metrics, "customers.get")()

	var doc customerDocument
	err := a.coll.FindOne(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: idCandidates([]string{id})}}}}).Decode(&doc)
	if err != nil {
		return nil, storeError("customer "+id+" not found", err)
	}
	return doc.entity(), nil
}

// GetByIDs retrieves the customers that exist among ids
func (a *CustomerAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Customer, error) {
	if len(ids) == 0 {
		return []*entities.Customer{}, nil
	}
	defer timed(ctx, a.metrics, "customers.get_many")()

	return a.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: idCandidates(ids)}}}})
}

// List retrieves a page of customers ordered by name
func (a *CustomerAdapter) List(ctx context.Context, limit, offset int) ([]*entities.Customer, error) {
	defer timed(ctx, a.metrics, "customers.list")()

	opts := options.Find().
		SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return a.find(ctx, bson.D{}, opts)
}

// Count returns the number of customers
func (a *CustomerAdapter) Count(ctx context.Context) (int64, error) {
	defer timed(ctx, a.metrics, "customers.count")()

	n, err := a.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, storeError("failed to count customers", err)
	}
	return n, nil
}

func (a *CustomerAdapter) find(ctx context.Context, filter bson.D, opts ...*options.FindOptions) ([]*entities.Customer, error) {
	cursor, err := a.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, storeError("failed to query customers", err)
	}
	defer cursor.Close(ctx)

	customers := make([]*entities.Customer, 0)
	for cursor.Next(ctx) {
		var doc customerDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, storeError("failed to decode customer", err)
		}
		customers = append(customers, doc.entity())
	}
	if err := cursor.Err(); err != nil {
		return nil, storeError("failed to iterate customers", err)
	}
	return customers, nil
}
