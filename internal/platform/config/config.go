package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	liststrings "twigascan/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr               string
	LogLevel           string
	LogFormat          string
	ProviderRegistry   string
	ScanTimeout        time.Duration
	DomainCheckTimeout time.Duration
	DomainCacheTTL     time.Duration
	ShutdownTimeout    time.Duration

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// DatabaseConfig configures the PostgreSQL history store. An empty URL keeps
// history in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the lock and domain cache backend. An empty URL
// disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures scan event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers   []string
	ScanTopic string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var errs []string
	duration := func(key string, def time.Duration) time.Duration {
		d, err := envDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return d
	}
	integer := func(key string, def int) int {
		n, err := envInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return n
	}

	cfg := Server{
		Addr:               envString("TWIGA_ADDR", ":8080"),
		LogLevel:           envString("LOG_LEVEL", "info"),
		LogFormat:          envString("LOG_FORMAT", "json"),
		ProviderRegistry:   os.Getenv("PROVIDER_REGISTRY_FILE"),
		ScanTimeout:        duration("SCAN_TIMEOUT", 30*time.Second),
		DomainCheckTimeout: duration("DOMAIN_CHECK_TIMEOUT", 10*time.Second),
		DomainCacheTTL:     duration("DOMAIN_CHECK_CACHE_TTL", 5*time.Minute),
		ShutdownTimeout:    duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    integer("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    integer("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: duration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:   liststrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			ScanTopic: envString("KAFKA_SCAN_TOPIC", "twigascan.scans"),
		},
	}

	if cfg.ScanTimeout <= 0 {
		errs = append(errs, "SCAN_TIMEOUT must be positive")
	}
	if cfg.DomainCheckTimeout <= 0 {
		errs = append(errs, "DOMAIN_CHECK_TIMEOUT must be positive")
	}
	if len(errs) > 0 {
		return Server{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
