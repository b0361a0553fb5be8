package mongo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/collectionsdesk/pkg/config"
	"github.com/zatekoja/collectionsdesk/pkg/retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client represents a MongoDB client bound to the application database
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    config.MongoConfig
}

// NewClient connects to MongoDB with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.MongoConfig) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAppName("collectionsdesk")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	err = retry.Connect(ctx, retry.DefaultConfig(), "MongoDB", &log.Logger, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		return client.Ping(pingCtx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to MongoDB after retries: %w", err)
	}

	log.Info().Str("database", cfg.Database).Msg("Successfully connected to MongoDB")
	return NewFromDatabase(client.Database(cfg.Database), *cfg), nil
}

// NewFromDatabase wraps an existing database handle
func NewFromDatabase(db *mongo.Database, cfg config.MongoConfig) *Client {
	return &Client{client: db.Client(), db: db, cfg: cfg}
}

// Database returns the application database
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Customers returns the customer collection
func (c *Client) Customers() *mongo.Collection {
	return c.db.Collection(c.cfg.CustomersCollection)
}

// Interactions returns the interaction log collection
func (c *Client) Interactions() *mongo.Collection {
	return c.db.Collection(c.cfg.InteractionCollection)
}

// Settings returns the application settings collection
func (c *Client) Settings() *mongo.Collection {
	return c.db.Collection(c.cfg.SettingsCollection)
}

// Ping verifies the connection to MongoDB
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
