// Package config loads process configuration from the environment so main
// stays lean. Missing optional backends (redis, kafka) leave their URL fields
// empty and the corresponding feature degrades instead of failing startup.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full configuration for the server and worker binaries.
type Config struct {
	Server   Server
	Database Database
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     Auth
	Worker   Worker
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Database configures the Postgres pool. Empty URL selects in-memory stores.
type Database struct {
	URL string
}

// RedisConfig configures the notification bus client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit trail producer and consumer.
type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	ConsumerGroup string
}

// Auth captures token issuance settings.
type Auth struct {
	JWTSigningKey string
	TokenTTL      time.Duration
	SeedAdmin     string
	SeedPassword  string
}

// Worker captures background worker settings.
type Worker struct {
	PollInterval time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: envOr("BROKERDESK_ADDR", ":8080"),
		},
		Database: Database{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:    envOr("KAFKA_AUDIT_TOPIC", "crm.audit"),
			ConsumerGroup: envOr("KAFKA_CONSUMER_GROUP", "brokerdesk-worker"),
		},
		Auth: Auth{
			JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			TokenTTL:      envDuration("TOKEN_TTL", 12*time.Hour),
			SeedAdmin:     envOr("SEED_ADMIN_EMAIL", "admin@brokerdesk.local"),
			SeedPassword:  os.Getenv("SEED_ADMIN_PASSWORD"),
		},
		Worker: Worker{
			PollInterval: envDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
