package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process configuration for the ranking service
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Ranking core
	Ranking RankingConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL            string
	MigrationsPath string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RankingConfig holds runtime knobs of the ranking computation.
// Scoring weights are NOT here; they live in scoring configuration files.
type RankingConfig struct {
	ScoringConfigDir string
	CacheBackend     string        // redis | memory
	CacheTTL         time.Duration // fresh entries
	CacheStaleTTL    time.Duration // last-good fallback entries
	ComputeTimeout   time.Duration // hard wall-clock budget per computation
	LeaseTTL         time.Duration // distributed lease per fingerprint
	Concurrency      int           // per-player signal workers

	// INVALIDATE_ATTENTION_BATCH: attention events needed before rankings are dropped
	AttentionBatch int

	// DATA_FIXTURE: JSON fixture served instead of PostgreSQL (local runs, demos)
	DataFixture string

	// RANKING_HISTORY_ENABLED: persist each refreshed ranking to scout.ranking_results
	HistoryEnabled bool
}

// SchedulerConfig holds periodic refresh configuration
type SchedulerConfig struct {
	RefreshSchedule  string
	RefreshConfigIDs []string

	// DATA_WATCH_SCHEDULE: polling of ingestion timestamps for invalidation
	WatchSchedule string

	// Retry policy of every job
	MaxRetries int
	RetryDelay time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MigrationsPath:  getEnv("DB_MIGRATIONS_PATH", "migrations"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Ranking: RankingConfig{
			ScoringConfigDir: getEnv("SCORING_CONFIG_DIR", "config/scoring"),
			CacheBackend:     getEnv("CACHE_BACKEND", "redis"),
			CacheTTL:         getEnvAsDuration("CACHE_TTL", "6h"),
			CacheStaleTTL:    getEnvAsDuration("CACHE_STALE_TTL", "72h"),
			ComputeTimeout:   getEnvAsDuration("COMPUTE_TIMEOUT", "2m"),
			LeaseTTL:         getEnvAsDuration("LEASE_TTL", "3m"),
			Concurrency:      getEnvAsInt("SIGNAL_CONCURRENCY", 8),
			AttentionBatch:   getEnvAsInt("INVALIDATE_ATTENTION_BATCH", 500),
			DataFixture:      getEnv("DATA_FIXTURE", ""),
			HistoryEnabled:   getEnvAsBool("RANKING_HISTORY_ENABLED", false),
		},

		Scheduler: SchedulerConfig{
			RefreshSchedule:  getEnv("REFRESH_SCHEDULE", "0 15 * * * *"), // every hour at :15 (with seconds)
			RefreshConfigIDs: getEnvAsList("REFRESH_CONFIG_IDS"),
			WatchSchedule:    getEnv("DATA_WATCH_SCHEDULE", "0 */5 * * * *"),
			MaxRetries:       getEnvAsInt("JOB_MAX_RETRIES", 3),
			RetryDelay:       getEnvAsDuration("JOB_RETRY_DELAY", "1m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// UsesFixture reports whether raw data is served from a JSON fixture
func (c *Config) UsesFixture() bool {
	return c.Ranking.DataFixture != ""
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" && c.Ranking.DataFixture == "" {
		return fmt.Errorf("DATABASE_URL is required (or DATA_FIXTURE for a fixture run)")
	}
	if c.Ranking.HistoryEnabled && c.Database.URL == "" {
		return fmt.Errorf("RANKING_HISTORY_ENABLED requires DATABASE_URL")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Ranking.CacheBackend != "redis" && c.Ranking.CacheBackend != "memory" {
		return fmt.Errorf("CACHE_BACKEND must be one of: redis, memory")
	}
	if c.Ranking.CacheBackend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("CACHE_BACKEND=redis requires REDIS_ENABLED=true")
	}

	if c.Ranking.ComputeTimeout <= 0 {
		return fmt.Errorf("COMPUTE_TIMEOUT must be > 0")
	}
	if c.Ranking.CacheTTL <= 0 || c.Ranking.CacheStaleTTL < c.Ranking.CacheTTL {
		return fmt.Errorf("CACHE_TTL must be > 0 and CACHE_STALE_TTL >= CACHE_TTL")
	}
	// 리스는 계산 예산보다 길어야 함 (계산 중 만료 방지)
	if c.Ranking.LeaseTTL < c.Ranking.ComputeTimeout {
		return fmt.Errorf("LEASE_TTL must be >= COMPUTE_TIMEOUT")
	}
	if c.Ranking.Concurrency < 1 {
		return fmt.Errorf("SIGNAL_CONCURRENCY must be >= 1")
	}
	if c.Ranking.AttentionBatch < 1 {
		return fmt.Errorf("INVALIDATE_ATTENTION_BATCH must be >= 1")
	}
	if c.Scheduler.MaxRetries < 0 {
		return fmt.Errorf("JOB_MAX_RETRIES must be >= 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
