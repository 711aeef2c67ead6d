package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Sources    SourcesConfig
	Automation AutomationConfig
	Sync       SyncConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:4200"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"meeting_manager"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// JWTConfig holds the access-token settings for the auth boundary.
type JWTConfig struct {
	AccessSecret string        `envconfig:"JWT_ACCESS_SECRET" default:"change-me-in-production"`
	AccessExpiry time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"15m"`
}

// SourcesConfig holds the meeting source endpoints and fetch limits.
type SourcesConfig struct {
	PrimaryBaseURL string        `envconfig:"PRIMARY_STORE_URL" default:"http://localhost:8081/api"`
	FetchTimeout   time.Duration `envconfig:"SOURCE_FETCH_TIMEOUT" default:"10s"`
	RetryDegraded  bool          `envconfig:"SOURCE_RETRY_DEGRADED" default:"true"`
}

// AutomationConfig holds the N8N-style automation webhook settings. An empty
// WebhookURL means the integration is not configured; callers report that as
// unavailable, not as an error.
type AutomationConfig struct {
	Enabled    bool          `envconfig:"N8N_ENABLED" default:"false"`
	WebhookURL string        `envconfig:"N8N_WEBHOOK_URL" default:""`
	APIKey     string        `envconfig:"N8N_API_KEY" default:""`
	Timeout    time.Duration `envconfig:"N8N_TIMEOUT" default:"10s"`
}

// SyncConfig controls the background external-operation sync.
type SyncConfig struct {
	// Interval between background sync runs; zero disables the ticker and
	// leaves sync on-demand only.
	Interval time.Duration `envconfig:"SYNC_INTERVAL" default:"0"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Sources.PrimaryBaseURL == "" {
		return fmt.Errorf("PRIMARY_STORE_URL is required")
	}
	if c.Automation.Enabled && c.Automation.WebhookURL == "" {
		return fmt.Errorf("N8N_WEBHOOK_URL is required when N8N_ENABLED is true")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
