// Package config loads the catalog service settings from the environment.
// A .env file in the working directory is read first when present; real
// environment variables win over it.
//
// Environment variables:
//   - PORT: listen port (default: 8082)
//   - LOG_LEVEL: debug, info, warn or error (default: info)
//   - ACCESS_LOG_PATH: per-request access log file (default: request.log)
//   - PERSIST_DRIVER: file, postgres or sqlite (default: file)
//   - PRODUCTS_FILE: JSON snapshot path for the file driver (default: products.json)
//   - DATABASE_URL: postgres DSN, required for the postgres driver
//   - SQLITE_PATH: database file for the sqlite driver (default: catalog.db)
//   - CACHE_DRIVER: memory or redis (default: memory)
//   - CACHE_TTL: response cache TTL (default: 60s)
//   - CACHE_MAX_ENTRIES: memory cache capacity (default: 1000)
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, REDIS_PREFIX: redis cache settings
//   - METRICS_ENABLED, METRICS_TOKEN: /metrics exposure and its bearer token
//   - WRITE_RATE_LIMIT: mutating requests per minute per IP, 0 disables
//   - SHUTDOWN_TIMEOUT: graceful shutdown budget (default: 10s)
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	PersistFile     = "file"
	PersistPostgres = "postgres"
	PersistSQLite   = "sqlite"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Port          string
	LogLevel      string
	AccessLogPath string

	PersistDriver string
	ProductsFile  string
	DatabaseURL   string
	SQLitePath    string

	CacheDriver     string
	CacheTTL        time.Duration
	CacheMaxEntries int
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisPrefix     string

	MetricsEnabled bool
	MetricsToken   string

	WriteRateLimit  int
	ShutdownTimeout time.Duration
}

// Load reads .env (if any) and the environment. Malformed numbers fall back
// to their defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:          getenv("PORT", "8082"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		AccessLogPath: getenv("ACCESS_LOG_PATH", "request.log"),

		PersistDriver: getenv("PERSIST_DRIVER", PersistFile),
		ProductsFile:  getenv("PRODUCTS_FILE", "products.json"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getenv("SQLITE_PATH", "catalog.db"),

		CacheDriver:     getenv("CACHE_DRIVER", CacheMemory),
		CacheTTL:        durenv("CACHE_TTL", 60*time.Second),
		CacheMaxEntries: atoienv("CACHE_MAX_ENTRIES", 1000),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         atoienv("REDIS_DB", 0),
		RedisPrefix:     getenv("REDIS_PREFIX", "catalog:"),

		MetricsEnabled: boolenv("METRICS_ENABLED", true),
		MetricsToken:   os.Getenv("METRICS_TOKEN"),

		WriteRateLimit:  atoienv("WRITE_RATE_LIMIT", 0),
		ShutdownTimeout: durenv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c Config) Validate() error {
	var errs []error

	switch c.PersistDriver {
	case PersistFile, PersistSQLite:
	case PersistPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown PERSIST_DRIVER %q", c.PersistDriver))
	}

	switch c.CacheDriver {
	case CacheMemory, CacheRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_DRIVER %q", c.CacheDriver))
	}

	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if c.CacheMaxEntries <= 0 {
		errs = append(errs, errors.New("CACHE_MAX_ENTRIES must be positive"))
	}
	if c.WriteRateLimit < 0 {
		errs = append(errs, errors.New("WRITE_RATE_LIMIT must not be negative"))
	}

	return errors.Join(errs...)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoienv(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

// durenv accepts Go durations ("90s") or plain seconds ("90").
func durenv(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if sec, err := strconv.Atoi(v); err == nil {
		return time.Duration(sec) * time.Second
	}
	return def
}

func boolenv(k string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return b
}
