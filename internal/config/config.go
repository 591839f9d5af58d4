package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	AutoMigrate bool
	GinMode     string
	LogLevel    string

	RedisURL          string
	FeePolicyCacheTTL time.Duration

	KafkaBrokers      []string
	KafkaPaymentTopic string

	OTLPEndpoint string

	PGAttemptTimeout time.Duration
	TestPGBaseURL    string
	TestPGAPIKey     string
	TestPGIV         string
	TestPGTimeout    time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "pgfacade"),
		DBPassword:  getEnv("DB_PASSWORD", "pgfacade_secret"),
		DBName:      getEnv("DB_NAME", "pgfacade"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		AutoMigrate: getEnv("AUTO_MIGRATE", "false") == "true",
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		RedisURL:          getEnv("REDIS_URL", ""),
		FeePolicyCacheTTL: getEnvDuration("FEE_POLICY_CACHE_TTL", 5*time.Minute),

		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaPaymentTopic: getEnv("KAFKA_PAYMENT_TOPIC", "payment.created"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		PGAttemptTimeout: getEnvDuration("PG_ATTEMPT_TIMEOUT", 0),
		TestPGBaseURL:    getEnv("TESTPG_BASE_URL", "https://api-test-pg.bigs.im"),
		TestPGAPIKey:     getEnv("TESTPG_API_KEY", ""),
		TestPGIV:         getEnv("TESTPG_IV", ""),
		TestPGTimeout:    getEnvDuration("TESTPG_TIMEOUT", 10*time.Second),
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvDuration accepts Go durations ("750ms") or whole seconds ("3").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Warn().Str("key", key).Str("value", raw).Msg("invalid duration, using default")
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
