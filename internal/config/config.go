package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppPort string

	// 全局访问密码（Basic Auth），为空则不启用
	BasicAuthUser string
	BasicAuthPass string

	DBDriver    string // postgres / sqlite
	PostgresDSN string
	SQLitePath  string
	RedisAddr   string // 为空则不使用 Redis

	FetchInterval        time.Duration
	MaxArticlesPerSource int
	FetchConcurrency     int
	CourtesyDelay        time.Duration
	RequestTimeout       time.Duration
	FetchRetries         int
	UserAgent            string

	SourcesFile string

	LogLevel string
	LogJSON  bool

	RateLimitRPS   float64
	RateLimitBurst int
}

const DefaultUserAgent = "NewsHubBot/1.0 (+https://newshub.local)"

func Load() *Config {
	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "9000"),
		BasicAuthUser: getEnv("APP_BASIC_USER", ""),
		BasicAuthPass: getEnv("APP_BASIC_PASS", ""),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=newshub password=newshub dbname=newshub port=5432 sslmode=disable TimeZone=UTC"),
		SQLitePath:  getEnv("SQLITE_PATH", "newshub.db"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),

		FetchInterval:        time.Duration(getInt("FETCH_INTERVAL_MINUTES", 30)) * time.Minute,
		MaxArticlesPerSource: getInt("MAX_ARTICLES_PER_SOURCE", 50),
		FetchConcurrency:     getInt("FETCH_CONCURRENCY", 1),
		CourtesyDelay:        getDuration("COURTESY_DELAY", 2*time.Second),
		RequestTimeout:       getDuration("REQUEST_TIMEOUT", 30*time.Second),
		FetchRetries:         getInt("FETCH_RETRIES", 3),
		UserAgent:            getEnv("USER_AGENT", DefaultUserAgent),

		SourcesFile: getEnv("SOURCES_FILE", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getBool("LOG_JSON", false),

		RateLimitRPS:   getFloat("API_RATE_LIMIT_RPS", 10),
		RateLimitBurst: getInt("API_RATE_LIMIT_BURST", 20),
	}

	if cfg.FetchInterval <= 0 {
		cfg.FetchInterval = 30 * time.Minute
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}

	log.Info().
		Str("port", cfg.AppPort).
		Str("db", cfg.DBDriver).
		Dur("interval", cfg.FetchInterval).
		Int("max_per_source", cfg.MaxArticlesPerSource).
		Msg("config loaded")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid int env, using default")
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid float env, using default")
		return def
	}
	return f
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// getDuration 同时接受 "2s" 这类写法和纯数字（按秒）
func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Warn().Str("key", key).Str("value", v).Msg("invalid duration env, using default")
	return def
}
