package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// PostgresConfig configures the database pool. An empty DSN selects the
// in-memory stores.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrateOnStart  bool
}

// RedisConfig configures the enriched-parcel cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit sink. No brokers disables it.
type KafkaConfig struct {
	Brokers           []string
	AuditTopic        string
	Partitions        int32
	ReplicationFactor int16
}

// CacheConfig holds retention windows.
type CacheConfig struct {
	EnrichmentTTL time.Duration
	EvaluationTTL time.Duration
}

// Config is the full runtime configuration.
type Config struct {
	Server        Server
	LogLevel      string
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Cache         CacheConfig
	ProvidersFile string
	AuditQueue    int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            env("MUTAFRICHES_ADDR", ":8080"),
			ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		LogLevel: env("LOG_LEVEL", "info"),
		Postgres: PostgresConfig{
			DSN:             env("POSTGRES_DSN", ""),
			MaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
			MigrateOnStart:  envBool("POSTGRES_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:          env("REDIS_URL", ""),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           envList("KAFKA_BROKERS"),
			AuditTopic:        env("KAFKA_AUDIT_TOPIC", "mutafriches.enrichment-logs"),
			Partitions:        int32(envInt("KAFKA_AUDIT_PARTITIONS", 3)),
			ReplicationFactor: int16(envInt("KAFKA_REPLICATION_FACTOR", 1)),
		},
		Cache: CacheConfig{
			EnrichmentTTL: envDuration("ENRICHMENT_CACHE_TTL", 24*time.Hour),
			EvaluationTTL: envDuration("EVALUATION_CACHE_TTL", 24*time.Hour),
		},
		ProvidersFile: env("PROVIDERS_FILE", ""),
		AuditQueue:    envInt("AUDIT_QUEUE_SIZE", 1024),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
