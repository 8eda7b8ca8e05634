// Package config loads the daemon configuration from the environment.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config carries everything the sync daemon needs to start.
type Config struct {
	CouchbaseURL      string
	CouchbaseUsername string
	CouchbasePassword string
	CouchbaseBucket   string

	PollInterval time.Duration
	APIPort      string

	ElasticsearchURL string
}

// getEnv retrieves environment variable with fallback default
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().
			Str("key", key).
			Str("value", v).
			Msg("Invalid duration, using default")
		return def
	}
	return d
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Info().Msg("No .env file found, assuming environment variables are set")
	}

	return Config{
		CouchbaseURL:      getEnv("COUCHBASE_URL", "couchbase://hospsync-db"),
		CouchbaseUsername: getEnv("COUCHBASE_USERNAME", "hospsync_user"),
		CouchbasePassword: getEnv("COUCHBASE_PASSWORD", "password"),
		CouchbaseBucket:   getEnv("COUCHBASE_BUCKET", "hospsync"),
		PollInterval:      getDuration("STORE_POLL_INTERVAL", 5*time.Second),
		APIPort:           getEnv("API_PORT", "8080"),
		ElasticsearchURL:  getEnv("ELASTICSEARCH_URL", ""),
	}
}
