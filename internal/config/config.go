package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// DriverMySQL selects the MySQL backend.
	DriverMySQL = "mysql"
	// DriverPostgres selects the PostgreSQL backend.
	DriverPostgres = "postgres"
	// DriverSQLite selects the embedded SQLite backend.
	DriverSQLite = "sqlite"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort      string
	DBDriver        string
	MySQLDSN        string
	PostgresDSN     string
	SQLitePath      string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	StoreTimeout    time.Duration
	CacheTTL        time.Duration
	SwaggerHost     string
	ResetDB         bool
	LogLevel        string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DBDriver:        getEnv("DB_DRIVER", DriverSQLite),
		MySQLDSN:        getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/academics?charset=utf8mb4&parseTime=True&loc=Local"),
		PostgresDSN:     getEnv("POSTGRES_DSN", "host=localhost user=academics password=academics dbname=academics port=5432 sslmode=disable"),
		SQLitePath:      getEnv("SQLITE_PATH", "academics.db"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisPass:       os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       getEnv("JWT_SECRET", "change-me"),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		StoreTimeout:    getEnvDuration("STORE_TIMEOUT", 3*time.Second),
		CacheTTL:        getEnvDuration("CACHE_TTL", 5*time.Minute),
		SwaggerHost:     os.Getenv("SWAGGER_HOST"),
		ResetDB:         os.Getenv("RESET_DB") == "true",
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}
	return nil
}

// String returns a representation safe for logs.
func (c *Config) String() string {
	return fmt.Sprintf("Config{port: %s, db: %s, redis: %s, jwt: ***, access: %s, refresh: %s}",
		c.ServerPort, c.DBDriver, c.RedisAddr, c.AccessTokenTTL, c.RefreshTokenTTL)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
