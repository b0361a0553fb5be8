//go:build integration

package conformance_test

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/zatekoja/collectionsdesk/internal/adapters/database"
	"github.com/zatekoja/collectionsdesk/internal/adapters/document"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/mongo"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/collectionsdesk/internal/query/conformance"
	"github.com/zatekoja/collectionsdesk/internal/query/services"
	"github.com/zatekoja/collectionsdesk/pkg/config"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// StoreConformanceSuite seeds the shared dataset into live stores and runs the
// conformance cases through every executor they back
type StoreConformanceSuite struct {
	suite.Suite
	mongo    *mongo.Client
	mongoCfg config.MongoConfig
	postgres *postgres.Client
}

func (s *StoreConformanceSuite) SetupSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.mongoCfg = config.MongoConfig{
		URI:                   getEnv("TEST_MONGO_URI", "mongodb://localhost:27017"),
		Database:              getEnv("TEST_MONGO_DATABASE", "collectionsdesk_conformance"),
		CustomersCollection:   "customers",
		InteractionCollection: "interaction_logs",
		SettingsCollection:    "app_settings",
		ConnectTimeout:        5 * time.Second,
	}
	if client, err := mongo.NewClient(ctx, &s.mongoCfg); err != nil {
		s.T().Logf("MongoDB unavailable: %v", err)
	} else {
		s.mongo = client
	}

	dbCfg := &config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "collectionsdesk_conformance"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}
	if client, err := postgres.NewClient(ctx, dbCfg); err != nil {
		s.T().Logf("PostgreSQL unavailable: %v", err)
	} else {
		s.postgres = client
	}
}

func (s *StoreConformanceSuite) TearDownSuite() {
	if s.mongo != nil {
		_ = s.mongo.Database().Drop(context.Background())
		_ = s.mongo.Close(context.Background())
	}
	if s.postgres != nil {
		_ = s.postgres.Close()
	}
}

func (s *StoreConformanceSuite) seedMongo() {
	if s.mongo == nil {
		s.T().Skip("MongoDB not available")
	}
	writer := document.NewStoreWriter(s.mongo.Customers(), s.mongo.Interactions())
	require.NoError(s.T(), conformance.Seed(context.Background(), writer, conformance.NewDataset()))
}

func (s *StoreConformanceSuite) TestAggregationPipeline() {
	s.seedMongo()

	customers := document.NewCustomerAdapter(s.mongo.Customers(), nil)
	executor := document.NewPipelineJoinExecutor(s.mongo.Interactions(), s.mongoCfg.CustomersCollection, nil)
	conformance.Run(s.T(), services.NewInteractionQueryService(customers, executor, 0, nil))
}

func (s *StoreConformanceSuite) TestInProcessOverDocumentStore() {
	s.seedMongo()

	customers := document.NewCustomerAdapter(s.mongo.Customers(), nil)
	executor := services.NewInProcessJoinExecutor(document.NewInteractionLogAdapter(s.mongo.Interactions(), nil), customers, nil)
	conformance.Run(s.T(), services.NewInteractionQueryService(customers, executor, 0, nil))
}

func (s *StoreConformanceSuite) TestRelationalStore() {
	if s.postgres == nil {
		s.T().Skip("PostgreSQL not available")
	}
	ctx := context.Background()
	require.NoError(s.T(), database.ApplySchema(ctx, s.postgres))
	require.NoError(s.T(), conformance.Seed(ctx, database.NewStoreWriter(s.postgres), conformance.NewDataset()))

	customers := database.NewCustomerAdapter(s.postgres)
	executor := database.NewInteractionAdapter(s.postgres, nil)
	conformance.Run(s.T(), services.NewInteractionQueryService(customers, executor, 0, nil))
}

func TestStoreConformance(t *testing.T) {
	suite.Run(t, new(StoreConformanceSuite))
}
