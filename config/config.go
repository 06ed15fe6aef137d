package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"articles-service/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StoreGorm   = "gorm"
	StoreSQL    = "sql"
	StoreMemory = "memory"

	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds everything main needs to wire the service.
type Config struct {
	Port string `validate:"required,numeric"`

	Store      string `validate:"oneof=gorm sql memory"`
	DBDriver   string `validate:"oneof=postgres mysql"`
	DBHost     string `validate:"required_unless=Store memory"`
	DBPort     int    `validate:"gt=0,lt=65536"`
	DBUser     string `validate:"required_unless=Store memory"`
	DBPassword string
	DBName     string `validate:"required_unless=Store memory"`
	DBSSLMode  string
	DBLogLevel string `validate:"oneof=silent error warn info"`

	BodyLimitBytes  int `validate:"gt=0"`
	AllowedOrigins  string
	RateLimitMax    int `validate:"gte=0"` // 0 disables the limiter
	RateLimitWindow time.Duration

	IdempotencyEnabled bool

	LogLevel       string `validate:"oneof=debug info warn error"`
	OTelEnabled    bool
	ServiceName    string `validate:"required"`
	ServiceVersion string
	Environment    string
}

var validate = validator.New()

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	return utils.ParseIntDefault(os.Getenv(key), def)
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() (*Config, error) {
	driver := envString("DB_DRIVER", DriverPostgres)
	defaultDBPort := 5432
	if driver == DriverMySQL {
		defaultDBPort = 3306
	}

	// Fiber default BodyLimit is 4 MiB; BODY_LIMIT_BYTES wins over BODY_LIMIT_MB.
	bodyLimit := envInt("BODY_LIMIT_BYTES", 0)
	if bodyLimit <= 0 {
		bodyLimit = envInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	cfg := &Config{
		Port:       envString("PORT", "8080"),
		Store:      envString("STORE", StoreGorm),
		DBDriver:   driver,
		DBHost:     envString("DB_HOST", "db"),
		DBPort:     envInt("DB_PORT", defaultDBPort),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  envString("DB_SSLMODE", "disable"),
		DBLogLevel: envString("DB_LOG_LEVEL", "warn"),

		BodyLimitBytes:  bodyLimit,
		AllowedOrigins:  envString("ALLOWED_ORIGINS", "*"),
		RateLimitMax:    envInt("RATE_LIMIT_MAX", 60),
		RateLimitWindow: time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		IdempotencyEnabled: utils.ParseBoolDefault(os.Getenv("IDEMPOTENCY_ENABLED"), true),

		LogLevel:       envString("LOG_LEVEL", "info"),
		OTelEnabled:    utils.ParseBoolDefault(os.Getenv("OTEL_ENABLED"), false),
		ServiceName:    envString("SERVICE_NAME", "articles-service"),
		ServiceVersion: envString("SERVICE_VERSION", "dev"),
		Environment:    envString("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags plus the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Store == StoreSQL && c.DBDriver != DriverPostgres {
		return fmt.Errorf("invalid configuration: STORE=sql requires DB_DRIVER=postgres, got %q", c.DBDriver)
	}
	return nil
}

// DSN renders the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
