package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by CATALOG_BACKEND, PROFILE_BACKEND, IDENTITY_BACKEND and SESSION_BACKEND.
const (
	BackendFixture  = "fixture"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendRedis    = "redis"
)

// Config holds all configuration for the application
type Config struct {
	App App

	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Google OAuth configuration
	GoogleOAuth GoogleOAuthConfig

	// CORS configuration
	CORS CORSConfig

	Log     LogConfig
	Redis   RedisConfig
	Mongo   MongoConfig
	GenAI   GenAIConfig
	Session SessionConfig
	Chat    ChatConfig

	// Storage backends per concern
	Backends BackendsConfig
}

// App holds deployment-wide settings.
type App struct {
	Env         string
	FrontendURL string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxConns     int32
	MinConns     int32
	MaxLifetime  time.Duration
	ConnTimeout  time.Duration
	QueryTimeout time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// GoogleOAuthConfig holds Google OAuth configuration
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Format string // json or console
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// GenAIConfig configures the trip spark suggestion generator.
type GenAIConfig struct {
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

type SessionConfig struct {
	TTL         time.Duration
	RedisPrefix string
}

type ChatConfig struct {
	HistoryLimit int
}

type BackendsConfig struct {
	Catalog  string
	Profile  string
	Identity string
	Session  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// A missing .env is fine; the environment may already be populated.
	if err := godotenv.Load("../.env"); err != nil {
		_ = godotenv.Load(".env")
	}

	config := &Config{
		App: App{
			Env:         getEnv("APP_ENV", "development"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:9002"),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "postgres"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxConns:     getInt32Env("DB_MAX_CONNS", 5),
			MinConns:     getInt32Env("DB_MIN_CONNS", 0),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", time.Hour),
			ConnTimeout:  getDurationEnv("DB_CONN_TIMEOUT", 10*time.Second),
			QueryTimeout: getDurationEnv("DB_QUERY_TIMEOUT", 30*time.Second),
		},
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getDurationEnv("JWT_ACCESS_TTL", 7*24*time.Hour), // 7 days
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getStringSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getStringSliceEnv("CORS_ALLOWED_HEADERS", []string{"*"}),
			AllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DATABASE", "roammate"),
			ConnectTimeout: getDurationEnv("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		GenAI: GenAIConfig{
			APIKey:       getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
			Model:        getEnv("GENAI_MODEL", "gemini-2.0-flash"),
			Timeout:      getDurationEnv("GENAI_TIMEOUT", 30*time.Second),
			MaxAttempts:  getIntEnv("GENAI_MAX_ATTEMPTS", 3),
			RetryBackoff: getDurationEnv("GENAI_RETRY_BACKOFF", 500*time.Millisecond),
		},
		Session: SessionConfig{
			TTL:         getDurationEnv("SESSION_TTL", 7*24*time.Hour),
			RedisPrefix: getEnv("SESSION_REDIS_PREFIX", "roammate:"),
		},
		Chat: ChatConfig{
			HistoryLimit: getIntEnv("CHAT_HISTORY_LIMIT", 200),
		},
		Backends: BackendsConfig{
			Catalog:  strings.ToLower(getEnv("CATALOG_BACKEND", BackendFixture)),
			Profile:  strings.ToLower(getEnv("PROFILE_BACKEND", BackendMemory)),
			Identity: strings.ToLower(getEnv("IDENTITY_BACKEND", BackendMemory)),
			Session:  strings.ToLower(getEnv("SESSION_BACKEND", BackendMemory)),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if !oneOf(c.Backends.Catalog, BackendFixture, BackendPostgres, BackendMongo) {
		errs = append(errs, fmt.Errorf("CATALOG_BACKEND %q must be fixture, postgres or mongo", c.Backends.Catalog))
	}
	if !oneOf(c.Backends.Profile, BackendMemory, BackendPostgres) {
		errs = append(errs, fmt.Errorf("PROFILE_BACKEND %q must be memory or postgres", c.Backends.Profile))
	}
	if !oneOf(c.Backends.Identity, BackendMemory, BackendPostgres) {
		errs = append(errs, fmt.Errorf("IDENTITY_BACKEND %q must be memory or postgres", c.Backends.Identity))
	}
	if !oneOf(c.Backends.Session, BackendMemory, BackendRedis) {
		errs = append(errs, fmt.Errorf("SESSION_BACKEND %q must be memory or redis", c.Backends.Session))
	}

	// Check required database configuration
	if c.UsesPostgres() && c.Database.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.GenAI.MaxAttempts < 1 {
		errs = append(errs, errors.New("GENAI_MAX_ATTEMPTS must be at least 1"))
	}

	return errors.Join(errs...)
}

// Warnings lists settings that leave a feature disabled or unsafe.
func (c *Config) Warnings() []string {
	var out []string
	if !c.IsGoogleOAuthConfigured() {
		out = append(out, "Google OAuth credentials not configured. Google login will not work.")
	}
	if !c.IsGenAIConfigured() {
		out = append(out, "GEMINI_API_KEY not configured. Trip spark suggestions will not work.")
	}
	if c.JWT.Secret == "your-secret-key-change-in-production" && c.IsProduction() {
		out = append(out, "JWT_SECRET is the default value.")
	}
	return out
}

// UsesPostgres reports whether any backend needs the database pool.
func (c *Config) UsesPostgres() bool {
	return c.Backends.Catalog == BackendPostgres ||
		c.Backends.Profile == BackendPostgres ||
		c.Backends.Identity == BackendPostgres
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&connect_timeout=%d",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
		int(c.Database.ConnTimeout.Seconds()),
	)
}

// IsGoogleOAuthConfigured checks if Google OAuth is properly configured
func (c *Config) IsGoogleOAuthConfigured() bool {
	return c.GoogleOAuth.ClientID != "" && c.GoogleOAuth.ClientSecret != ""
}

func (c *Config) IsGenAIConfigured() bool {
	return c.GenAI.APIKey != ""
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt32Env(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intValue)
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := []string{}
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
