package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	StoreBackendMongo    = "mongo"
	StoreBackendPostgres = "postgres"
)

// Join strategies for the document store
const (
	JoinStrategyPipeline  = "pipeline"
	JoinStrategyInProcess = "inprocess"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Mongo       MongoConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Engine      EngineConfig
	LiveSession LiveSessionConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI                   string
	Database              string
	CustomersCollection   string
	InteractionCollection string
	SettingsCollection    string
	ConnectTimeout        time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// EngineConfig controls the interaction retrieval engine
type EngineConfig struct {
	StoreBackend    string
	JoinStrategy    string
	QueryTimeout    time.Duration
	DefaultPageSize int
}

// LiveSessionConfig holds live call token settings
type LiveSessionConfig struct {
	TokenTTL time.Duration
	// SecretKey seals the live session API secret in the settings store: 32 bytes,
	// base64 or hex encoded. Without it the secret can be neither set nor used.
	SecretKey string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("SERVICE_ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			// wildcard only suits development; set ALLOWED_ORIGINS in production
			AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		},
		Mongo: MongoConfig{
			URI:                   getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:              getEnv("MONGO_DATABASE", "debt_collection_agency"),
			CustomersCollection:   getEnv("MONGO_CUSTOMERS_COLLECTION", "customers"),
			InteractionCollection: getEnv("MONGO_INTERACTIONS_COLLECTION", "customer_interaction"),
			SettingsCollection:    getEnv("MONGO_SETTINGS_COLLECTION", "app_settings"),
			ConnectTimeout:        getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "debt_collection_agency"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Engine: EngineConfig{
			StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", StoreBackendMongo)),
			JoinStrategy:    strings.ToLower(getEnv("JOIN_STRATEGY", JoinStrategyPipeline)),
			QueryTimeout:    getEnvAsDuration("QUERY_TIMEOUT", 15*time.Second),
			DefaultPageSize: getEnvAsInt("DEFAULT_PAGE_SIZE", 10),
		},
		LiveSession: LiveSessionConfig{
			TokenTTL:  getEnvAsDuration("LIVE_TOKEN_TTL", 6*time.Hour),
			SecretKey: getEnv("SETTINGS_ENCRYPTION_KEY", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "collectionsdesk"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects unknown backends and strategies
func (c *EngineConfig) Validate() error {
	switch c.StoreBackend {
	case StoreBackendMongo, StoreBackendPostgres:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q (supported: mongo, postgres)", c.StoreBackend)
	}

	switch c.JoinStrategy {
	case JoinStrategyPipeline, JoinStrategyInProcess:
	default:
		return fmt.Errorf("unsupported JOIN_STRATEGY %q (supported: pipeline, inprocess)", c.JoinStrategy)
	}

	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", c.DefaultPageSize)
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the HTTP listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
