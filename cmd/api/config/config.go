package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	StoreDriver    string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QueryCacheTTL time.Duration

	MaxPageSize  int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	LogLevel  string
	LogFormat string
}

func NewConfig() *Config {
	return &Config{
		Port:           "3000",
		AllowedOrigins: []string{"http://localhost:5173"},
		StoreDriver:    StorePostgres,
		DBHost:         "localhost",
		DBPort:         "5432",
		DBName:         "papers",
		MongoURI:       "mongodb://localhost:27017",
		MongoDatabase:  "papers",
		QueryCacheTTL:  time.Minute,
		MaxPageSize:    100,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// Load overlays environment variables on the defaults. Unset variables keep
// their default values; malformed ones are reported.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := NewConfig()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("PORT", &cfg.Port)
	str("STORE_DRIVER", &cfg.StoreDriver)
	str("DB_HOST", &cfg.DBHost)
	str("DB_USER", &cfg.DBUser)
	str("DB_PASSWORD", &cfg.DBPassword)
	str("DB_NAME", &cfg.DBName)
	str("DB_PORT", &cfg.DBPort)
	str("MONGO_URI", &cfg.MongoURI)
	str("MONGO_DATABASE", &cfg.MongoDatabase)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	if v, ok := lookup("ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		var origins []string
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.AllowedOrigins = origins
	}

	var err error
	if cfg.RedisDB, err = intEnv(lookup, "REDIS_DB", cfg.RedisDB); err != nil {
		return nil, err
	}
	if cfg.MaxPageSize, err = intEnv(lookup, "MAX_PAGE_SIZE", cfg.MaxPageSize); err != nil {
		return nil, err
	}
	if cfg.QueryCacheTTL, err = durationEnv(lookup, "QUERY_CACHE_TTL", cfg.QueryCacheTTL); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = durationEnv(lookup, "READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = durationEnv(lookup, "WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return nil, err
	}

	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	switch cfg.StoreDriver {
	case StorePostgres, StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be one of %s, %s, %s (got %q)", StorePostgres, StoreMongo, StoreMemory, cfg.StoreDriver)
	}
	if cfg.MaxPageSize < 1 {
		return nil, fmt.Errorf("MAX_PAGE_SIZE must be positive (got %d)", cfg.MaxPageSize)
	}
	return cfg, nil
}

func intEnv(lookup func(string) (string, bool), key string, fallback int) (int, error) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func durationEnv(lookup func(string) (string, bool), key string, fallback time.Duration) (time.Duration, error) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
