package document_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/collectionsdesk/internal/adapters/document"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/repositories"
	apperrors "github.com/zatekoja/collectionsdesk/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func stageNames(p mongo.Pipeline) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func ns(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func dayScope(scope repositories.InteractionScope) repositories.InteractionScope {
	start, end := entities.DayRange(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	scope.DayStart, scope.DayEnd = &start, &end
	return scope
}

func TestRowsPipeline_Stages(t *testing.T) {
	unrestricted := document.RowsPipeline(repositories.InteractionScope{}, repositories.Window{Offset: 20, Limit: 10}, "customers")
	assert.Equal(t, []string{"$unwind", "$addFields", "$addFields", "$addFields", "$sort", "$skip", "$limit", "$lookup"}, stageNames(unrestricted))
	assert.Equal(t, int64(20), unrestricted[5][0].Value)
	assert.Equal(t, int64(10), unrestricted[6][0].Value)

	restricted := document.RowsPipeline(dayScope(repositories.InteractionScope{
		Restricted:  true,
		CustomerIDs: []string{"c1"},
	}), repositories.Window{Limit: 10}, "customers")
	assert.Equal(t, []string{"$match", "$unwind", "$addFields", "$match", "$addFields", "$addFields", "$sort", "$skip", "$limit"}, stageNames(restricted))

	sort := restricted[6][0].Value.(bson.D)
	var keys []string
	for _, key := range sort {
		keys = append(keys, key.Key)
	}
	assert.Equal(t, []string{"interaction_day", "sort_raw_date", "start_ms", "sort_raw_start", "_id", "event_index"}, keys)
	assert.Equal(t, -1, sort[2].Value)
	assert.Equal(t, 1, sort[4].Value)
}

// findKey returns the first value stored under key anywhere in v
func findKey(v interface{}, key string) (interface{}, bool) {
	switch x := v.(type) {
	case bson.D:
		for _, e := range x {
			if e.Key == key {
				return e.Value, true
			}
			if found, ok := findKey(e.Value, key); ok {
				return found, true
			}
		}
	case bson.A:
		for _, e := range x {
			if found, ok := findKey(e, key); ok {
				return found, true
			}
		}
	}
	return nil, false
}

func TestRowsPipeline_StartTimeParsedLikeEntities(t *testing.T) {
	p := document.RowsPipeline(repositories.InteractionScope{}, repositories.Window{Limit: 10}, "customers")
	keys := p[2][0].Value.(bson.D)
	require.Equal(t, "start_ms", keys[1].Key)

	regex, ok := findKey(keys[1].Value, "regex")
	require.True(t, ok)
	assert.Equal(t, entities.TimeOfDayPattern, regex)

	input, ok := findKey(keys[1].Value, "$type")
	require.True(t, ok)
	assert.Equal(t, "$interactions.start_time", input)
}

func TestPipelineJoinExecutor_UnboundedLimitDoesNotPanic(t *testing.T) {
	executor := document.NewPipelineJoinExecutor(nil, "customers", nil)

	assert.NotPanics(t, func() {
		rows, err := executor.FlattenedRows(context.Background(), repositories.InteractionScope{Restricted: true}, repositories.Window{Limit: math.MaxInt})
		assert.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestCountPipeline_SharesScopeStages(t *testing.T) {
	scope := dayScope(repositories.InteractionScope{Restricted: true, CustomerIDs: []string{"c1", "c2"}})

	rows := document.RowsPipeline(scope, repositories.Window{Limit: 5}, "customers")
	count := document.CountPipeline(scope)

	assert.Equal(t, []string{"$match", "$unwind", "$addFields", "$match", "$count"}, stageNames(count))
	assert.Equal(t, rows[:4], count[:4], "rows and count must filter the same universe")

	dateMatch := count[3][0].Value.(bson.D)[0].Value.(bson.D)
	assert.True(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Equal(dateMatch[0].Value.(time.Time)))
	assert.True(t, time.Date(2024, 3, 1, 23, 59, 59, 999_000_000, time.UTC).Equal(dateMatch[1].Value.(time.Time)))
}

func TestPipelineJoinExecutor(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	logID := primitive.NewObjectID()

	mt.Run("unrestricted rows take names from lookup", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: logID},
				{Key: "customer_id", Value: "c1"},
				{Key: "interactions", Value: bson.D{
					{Key: "interaction_date", Value: "2024-03-01"},
					{Key: "start_time", Value: "10:00:00"},
					{Key: "cost", Value: 2.5},
				}},
				{Key: "event_index", Value: int64(1)},
				{Key: "customer", Value: bson.A{bson.D{{Key: "first_name", Value: "Jane"}, {Key: "last_name", Value: "Doe"}}}},
			},
			bson.D{
				{Key: "_id", Value: "log-ghost"},
				{Key: "customer_id", Value: "ghost"},
				{Key: "interactions", Value: bson.D{{Key: "interaction_date", Value: "2024-03-01"}}},
				{Key: "event_index", Value: int64(0)},
				{Key: "customer", Value: bson.A{}},
			},
		))

		executor := document.NewPipelineJoinExecutor(mt.Coll, "customers", nil)
		rows, err := executor.FlattenedRows(mt.Context(), repositories.InteractionScope{}, repositories.Window{Limit: 10})
		require.NoError(mt, err)
		require.Len(mt, rows, 2)

		assert.Equal(mt, logID.Hex(), rows[0].LogID)
		assert.Equal(mt, 1, rows[0].EventIndex)
		assert.Equal(mt, "Jane Doe", rows[0].CustomerName)
		assert.Equal(mt, 2.5, rows[0].Cost)
		assert.Equal(mt, entities.RowID(logID.Hex(), 1, ""), rows[0].ID)

		assert.Equal(mt, entities.UnknownCustomerName, rows[1].CustomerName)
		assert.Equal(mt, 0.0, rows[1].Cost)
	})

	mt.Run("restricted rows take names from the match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: logID},
				{Key: "customer_id", Value: "c1"},
				{Key: "interactions", Value: bson.D{{Key: "id", Value: "evt-9"}, {Key: "interaction_date", Value: "2024-03-01"}}},
				{Key: "event_index", Value: int64(0)},
			},
		))

		executor := document.NewPipelineJoinExecutor(mt.Coll, "customers", nil)
		rows, err := executor.FlattenedRows(mt.Context(), repositories.InteractionScope{
			Restricted:    true,
			CustomerIDs:   []string{"c1"},
			CustomerNames: map[string]string{"c1": "Jane Doe"},
		}, repositories.Window{Limit: 10})
		require.NoError(mt, err)
		require.Len(mt, rows, 1)
		assert.Equal(mt, "Jane Doe", rows[0].CustomerName)
		assert.Equal(mt, "evt-9", rows[0].ID)
	})

	mt.Run("unbounded limit reaches the store without preallocating", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		executor := document.NewPipelineJoinExecutor(mt.Coll, "customers", nil)
		assert.NotPanics(mt, func() {
			rows, err := executor.FlattenedRows(mt.Context(), repositories.InteractionScope{}, repositories.Window{Limit: math.MaxInt})
			require.NoError(mt, err)
			assert.Empty(mt, rows)
		})
	})

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{{Key: "total", Value: int32(7)}}))

		executor := document.NewPipelineJoinExecutor(mt.Coll, "customers", nil)
		total, err := executor.CountRows(mt.Context(), repositories.InteractionScope{})
		require.NoError(mt, err)
		assert.Equal(mt, int64(7), total)
	})

	mt.Run("count of empty universe", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		executor := document.NewPipelineJoinExecutor(mt.Coll, "customers", nil)
		total, err := executor.CountRows(mt.Context(), repositories.InteractionScope{})
		require.NoError(mt, err)
		assert.Equal(mt, int64(0), total)
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Name:    "ShutdownInProgress",
			Message: "shutting down",
		}))

		executor := document.NewPipelineJoinExecutor(mt.Coll, "customers", nil)
		_, err := executor.FlattenedRows(mt.Context(), repositories.InteractionScope{}, repositories.Window{Limit: 10})
		assert.True(mt, apperrors.IsType(err, apperrors.ErrorTypeStoreUnavailable))
	})

	mt.Run("empty restriction never reaches the store", func(mt *mtest.T) {
		executor := document.NewPipelineJoinExecutor(mt.Coll, "customers", nil)

		rows, err := executor.FlattenedRows(mt.Context(), repositories.InteractionScope{Restricted: true}, repositories.Window{Limit: 10})
		require.NoError(mt, err)
		assert.Empty(mt, rows)

		total, err := executor.CountRows(mt.Context(), repositories.InteractionScope{Restricted: true})
		require.NoError(mt, err)
		assert.Zero(mt, total)
	})
}
