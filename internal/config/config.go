package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DBPath              string
	LogLevel            string
	AdminToken          string
	RedisAddr           string
	RatingK             int
	PairExclusionSize   int
	LeaderboardLimit    int
	ImportWorkerCount   int
	ImportQueueSize     int
	PrefetchWorkerCount int
	PrefetchQueueSize   int
	VoteTimeoutMS       int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:alumnirank.db"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		AdminToken:          envOr("ADMIN_TOKEN", ""),
		RedisAddr:           envOr("REDIS_ADDR", ""),
		RatingK:             envIntOr("RATING_K", 15),
		PairExclusionSize:   envIntOr("PAIR_EXCLUSION_SIZE", 20),
		LeaderboardLimit:    envIntOr("LEADERBOARD_LIMIT", 100),
		ImportWorkerCount:   envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:     envIntOr("IMPORT_QUEUE_SIZE", 32),
		PrefetchWorkerCount: envIntOr("PREFETCH_WORKER_COUNT", 1),
		PrefetchQueueSize:   envIntOr("PREFETCH_QUEUE_SIZE", 8),
		VoteTimeoutMS:       envIntOr("VOTE_TIMEOUT_MS", 5000),
	}
}

// Validate checks the configuration for values the server cannot start with.
// All problems are reported at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a known level", c.LogLevel))
	}
	if c.RatingK <= 0 {
		problems = append(problems, "RATING_K must be positive")
	}
	if c.PairExclusionSize < 0 {
		problems = append(problems, "PAIR_EXCLUSION_SIZE cannot be negative")
	}
	if c.LeaderboardLimit <= 0 {
		problems = append(problems, "LEADERBOARD_LIMIT must be positive")
	}
	if c.ImportWorkerCount <= 0 {
		problems = append(problems, "IMPORT_WORKER_COUNT must be positive")
	}
	if c.ImportQueueSize <= 0 {
		problems = append(problems, "IMPORT_QUEUE_SIZE must be positive")
	}
	if c.PrefetchWorkerCount <= 0 {
		problems = append(problems, "PREFETCH_WORKER_COUNT must be positive")
	}
	if c.VoteTimeoutMS <= 0 {
		problems = append(problems, "VOTE_TIMEOUT_MS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
