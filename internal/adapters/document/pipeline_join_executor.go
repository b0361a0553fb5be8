package document

import (
	"context"

	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
)

// maxPrealloc bounds the row buffer reserved up front; the page size comes from the caller
const maxPrealloc = 256

// flatDocument is one unwound interaction event as produced by the rows pipeline
type flatDocument struct {
	LogID      bson.RawValue             `bson:"_id"`
	CustomerID string                    `bson:"customer_id"`
	Event      entities.InteractionEvent `bson:"interactions"`
	EventIndex int64                     `bson:"event_index"`
	Customer   []struct {
		FirstName string `bson:"first_name"`
		LastName  string `bson:"last_name"`
	} `bson:"customer"`
}

// PipelineJoinExecutor pushes the join, filter, sort and window into a single
// aggregation over the interaction log collection
type PipelineJoinExecutor struct {
	interactions        *mongo.Collection
	customersCollection string
	metrics             *observability.Metrics
}

// NewPipelineJoinExecutor creates a new aggregation-backed join executor.
// customersCollection names the collection looked up for display names.
func NewPipelineJoinExecutor(interactions *mongo.Collection, customersCollection string, metrics *observability.Metrics) *PipelineJoinExecutor {
	return &PipelineJoinExecutor{
		interactions:        interactions,
		customersCollection: customersCollection,
		metrics:             metrics,
	}
}

// scopeStages returns the stages shared by the rows and count pipelines so both
// see exactly the same universe
func scopeStages(scope repositories.InteractionScope) mongo.Pipeline {
	var stages mongo.Pipeline

	if scope.Restricted {
		stages = append(stages, bson.D{{Key: "$match", Value: bson.D{
			{Key: "customer_id", Value: bson.D{{Key: "$in", Value: scope.CustomerIDs}}},
		}}})
	}

	stages = append(stages,
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$interactions"},
			{Key: "includeArrayIndex", Value: "event_index"},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "interaction_at", Value: bson.D{{Key: "$convert", Value: bson.D{
				{Key: "input", Value: "$interactions.interaction_date"},
				{Key: "to", Value: "date"},
				{Key: "onError", Value: nil},
				{Key: "onNull", Value: nil},
			}}}},
		}}},
	)

	if scope.HasDateRange() {
		stages = append(stages, bson.D{{Key: "$match", Value: bson.D{
			{Key: "interaction_at", Value: bson.D{
				{Key: "$gte", Value: scope.DayStart.UTC()},
				{Key: "$lte", Value: scope.DayEnd.UTC()},
			}},
		}}})
	}

	return stages
}

// Sort keys computed per row. Unparseable values become null, which sorts after
// every string and number in a descending sort, and the raw fallbacks are only set
// when the parsed key is null so they break ties among unparseable rows alone.
const (
	sortDayField      = "interaction_day"
	sortRawDateField  = "sort_raw_date"
	sortStartField    = "start_ms"
	sortRawStartField = "sort_raw_start"
)

// stringOrEmpty yields the field when it holds a string and "" otherwise
func stringOrEmpty(field string) bson.D {
	return bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{bson.D{{Key: "$type", Value: field}}, "string"}}},
		field,
		"",
	}}}
}

// startMillisExpr evaluates entities.TimeOfDayMillis in the aggregation language:
// a clock reading matched by entities.TimeOfDayPattern, otherwise the UTC clock
// of anything that converts to a date.
func startMillisExpr(field string) bson.D {
	capture := func(i int) bson.D {
		return bson.D{{Key: "$arrayElemAt", Value: bson.A{"$$m.captures", i}}}
	}
	toInt := func(v interface{}) bson.D {
		return bson.D{{Key: "$toInt", Value: v}}
	}

	reading := bson.D{{Key: "$let", Value: bson.D{
		{Key: "vars", Value: bson.D{
			{Key: "h", Value: toInt(capture(0))},
			{Key: "mi", Value: toInt(capture(1))},
			{Key: "s", Value: toInt(bson.D{{Key: "$ifNull", Value: bson.A{capture(2), "0"}}})},
			{Key: "ms", Value: toInt(bson.D{{Key: "$substrCP", Value: bson.A{
				bson.D{{Key: "$concat", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{capture(3), ""}}}, "000"}}},
				0, 3,
			}}})},
			{Key: "mer", Value: bson.D{{Key: "$toUpper", Value: bson.D{{Key: "$ifNull", Value: bson.A{capture(4), ""}}}}}},
		}},
		{Key: "in", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "$lte", Value: bson.A{"$$mi", 59}}},
				bson.D{{Key: "$lte", Value: bson.A{"$$s", 59}}},
				bson.D{{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$$mer", ""}}},
					bson.D{{Key: "$lte", Value: bson.A{"$$h", 23}}},
					bson.D{{Key: "$and", Value: bson.A{
						bson.D{{Key: "$gte", Value: bson.A{"$$h", 1}}},
						bson.D{{Key: "$lte", Value: bson.A{"$$h", 12}}},
					}}},
				}}},
			}}},
			bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$multiply", Value: bson.A{
					bson.D{{Key: "$cond", Value: bson.A{
						bson.D{{Key: "$eq", Value: bson.A{"$$mer", ""}}},
						"$$h",
						bson.D{{Key: "$add", Value: bson.A{
							bson.D{{Key: "$mod", Value: bson.A{"$$h", 12}}},
							bson.D{{Key: "$cond", Value: bson.A{bson.D{{Key: "$eq", Value: bson.A{"$$mer", "PM"}}}, 12, 0}}},
						}}},
					}}},
					3_600_000,
				}}},
				bson.D{{Key: "$multiply", Value: bson.A{"$$mi", 60_000}}},
				bson.D{{Key: "$multiply", Value: bson.A{"$$s", 1000}}},
				"$$ms",
			}}},
			nil,
		}}}},
	}}}

	timestamp := bson.D{{Key: "$let", Value: bson.D{
		{Key: "vars", Value: bson.D{{Key: "d", Value: bson.D{{Key: "$convert", Value: bson.D{
			{Key: "input", Value: "$$raw"},
			{Key: "to", Value: "date"},
			{Key: "onError", Value: nil},
			{Key: "onNull", Value: nil},
		}}}}}},
		{Key: "in", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$$d", nil}}},
			nil,
			bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$multiply", Value: bson.A{bson.D{{Key: "$hour", Value: "$$d"}}, 3_600_000}}},
				bson.D{{Key: "$multiply", Value: bson.A{bson.D{{Key: "$minute", Value: "$$d"}}, 60_000}}},
				bson.D{{Key: "$multiply", Value: bson.A{bson.D{{Key: "$second", Value: "$$d"}}, 1000}}},
				bson.D{{Key: "$millisecond", Value: "$$d"}},
			}}},
		}}}},
	}}}

	return bson.D{{Key: "$let", Value: bson.D{
		{Key: "vars", Value: bson.D{{Key: "raw", Value: bson.D{{Key: "$trim", Value: bson.D{{Key: "input", Value: stringOrEmpty(field)}}}}}}},
		{Key: "in", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$$raw", ""}}},
			nil,
			bson.D{{Key: "$let", Value: bson.D{
				{Key: "vars", Value: bson.D{{Key: "m", Value: bson.D{{Key: "$regexFind", Value: bson.D{
					{Key: "input", Value: "$$raw"},
					{Key: "regex", Value: entities.TimeOfDayPattern},
				}}}}}},
				{Key: "in", Value: bson.D{{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$$m", nil}}},
					timestamp,
					reading,
				}}}},
			}}},
		}}}},
	}}}
}

// sortKeyStages adds the ordering keys and sorts by them. The order matches
// entities.CompareRows: civil day, start time of day, then source identity.
func sortKeyStages() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: sortDayField, Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$interaction_at"},
				{Key: "timezone", Value: "UTC"},
				{Key: "onNull", Value: nil},
			}}}},
			{Key: sortStartField, Value: startMillisExpr("$interactions.start_time")},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: sortRawDateField, Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$" + sortDayField, nil}}},
				stringOrEmpty("$interactions.interaction_date"),
				nil,
			}}}},
			{Key: sortRawStartField, Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$" + sortStartField, nil}}},
				stringOrEmpty("$interactions.start_time"),
				nil,
			}}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: sortDayField, Value: -1},
			{Key: sortRawDateField, Value: -1},
			{Key: sortStartField, Value: -1},
			{Key: sortRawStartField, Value: -1},
			{Key: "_id", Value: 1},
			{Key: "event_index", Value: 1},
		}}},
	}
}

// RowsPipeline builds the aggregation returning the requested window of ordered rows
func RowsPipeline(scope repositories.InteractionScope, window repositories.Window, customersCollection string) mongo.Pipeline {
	stages := scopeStages(scope)

	stages = append(stages, sortKeyStages()...)
	stages = append(stages,
		bson.D{{Key: "$skip", Value: int64(window.Offset)}},
		bson.D{{Key: "$limit", Value: int64(window.Limit)}},
	)

	// names of matched customers are already known, so only unrestricted queries look them up
	if !scope.Restricted {
		stages = append(stages, bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: customersCollection},
			{Key: "let", Value: bson.D{{Key: "cid", Value: "$customer_id"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
					{Key: "$eq", Value: bson.A{bson.D{{Key: "$toString", Value: "$_id"}}, "$$cid"}},
				}}}}},
				bson.D{{Key: "$project", Value: bson.D{{Key: "first_name", Value: 1}, {Key: "last_name", Value: 1}}}},
				bson.D{{Key: "$limit", Value: 1}},
			}},
			{Key: "as", Value: "customer"},
		}}})
	}

	return stages
}

// CountPipeline builds the aggregation counting the rows of scope
func CountPipeline(scope repositories.InteractionScope) mongo.Pipeline {
	return append(scopeStages(scope), bson.D{{Key: "$count", Value: "total"}})
}

// FlattenedRows implements repositories.InteractionJoinExecutor
func (e *PipelineJoinExecutor) FlattenedRows(ctx context.Context, scope repositories.InteractionScope, window repositories.Window) ([]*entities.FlatInteractionRow, error) {
	ctx, span := observability.StartSpan(ctx, "PipelineJoinExecutor.FlattenedRows")
	defer span.End()
	defer timed(ctx, e.metrics, "interactions.aggregate_rows")()

	rows := make([]*entities.FlatInteractionRow, 0, min(window.Limit, maxPrealloc))
	if window.Limit <= 0 || (scope.Restricted && len(scope.CustomerIDs) == 0) {
		return rows, nil
	}

	cursor, err := e.interactions.Aggregate(ctx, RowsPipeline(scope, window, e.customersCollection))
	if err != nil {
		observability.RecordError(span, err)
		return nil, storeError("failed to aggregate interaction rows", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc flatDocument
		if err := cursor.Decode(&doc); err != nil {
			observability.RecordError(span, err)
			return nil, storeError("failed to decode interaction row", err)
		}

		name := scope.CustomerNames[doc.CustomerID]
		if !scope.Restricted && len(doc.Customer) > 0 {
			name = (&entities.Customer{FirstName: doc.Customer[0].FirstName, LastName: doc.Customer[0].LastName}).DisplayName()
		}

		rows = append(rows, entities.NewFlatInteractionRow(idString(doc.LogID), doc.CustomerID, int(doc.EventIndex), doc.Event, name))
	}
	if err := cursor.Err(); err != nil {
		observability.RecordError(span, err)
		return nil, storeError("failed to iterate interaction rows", err)
	}

	span.SetAttributes(attribute.Int("rows.returned", len(rows)))
	return rows, nil
}

// CountRows implements repositories.InteractionJoinExecutor
func (e *PipelineJoinExecutor) CountRows(ctx context.Context, scope repositories.InteractionScope) (int64, error) {
	ctx, span := observability.StartSpan(ctx, "PipelineJoinExecutor.CountRows")
	defer span.End()
	defer timed(ctx, e.metrics, "interactions.aggregate_count")()

	if scope.Restricted && len(scope.CustomerIDs) == 0 {
		return 0, nil
	}

	cursor, err := e.interactions.Aggregate(ctx, CountPipeline(scope))
	if err != nil {
		observability.RecordError(span, err)
		return 0, storeError("failed to count interaction rows", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total int64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, storeError("failed to decode interaction count", err)
		}
	}
	if err := cursor.Err(); err != nil {
		observability.RecordError(span, err)
		return 0, storeError("failed to count interaction rows", err)
	}
	return result.Total, nil
}
