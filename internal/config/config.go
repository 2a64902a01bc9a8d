package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"clinical-dashboard/internal/classifier"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Upstream struct {
		BaseURL string
		Timeout time.Duration
		Retries int
		Token   string
	}
	API struct {
		Port     string
		BasePath string
	}
	Logging struct {
		Dir   string
		Level string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr     string
		DB       int
		CacheTTL time.Duration
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	Telegram struct {
		BotToken      string
		ChatID        int64
		RatePerSecond float64
	}
	Stream struct {
		QueueSize  int
		MaxWorkers int
	}
	Thresholds classifier.Thresholds
}

// Load reads the optional .env file and the environment, applies defaults,
// and returns a Config.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// Load .env if present
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	var cfg Config
	var bad []string

	intVar := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				bad = append(bad, key)
				return
			}
			*dst = n
		}
	}
	floatVar := func(key string, dst *float64) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				bad = append(bad, key)
				return
			}
			*dst = f
		}
	}

	// Upstream API
	cfg.Upstream.BaseURL = strings.TrimRight(getenv("UPSTREAM_BASE_URL"), "/")
	cfg.Upstream.Token = getenv("UPSTREAM_TOKEN")
	timeoutMS := 10000
	intVar("UPSTREAM_TIMEOUT_MS", &timeoutMS)
	cfg.Upstream.Timeout = time.Duration(timeoutMS) * time.Millisecond
	intVar("UPSTREAM_RETRIES", &cfg.Upstream.Retries)

	// API settings
	cfg.API.Port = getenv("API_PORT")
	cfg.API.BasePath = getenv("API_BASE_PATH")

	// Logging
	cfg.Logging.Dir = getenv("LOG_DIR")
	cfg.Logging.Level = getenv("LOG_LEVEL")

	// Classification thresholds
	cfg.Thresholds = classifier.DefaultThresholds()
	floatVar("HR_WARNING_ABOVE", &cfg.Thresholds.HeartRateWarningAbove)
	floatVar("HR_CRITICAL_ABOVE", &cfg.Thresholds.HeartRateCriticalAbove)
	floatVar("SPO2_WARNING_BELOW", &cfg.Thresholds.SpO2WarningBelow)
	floatVar("SPO2_CRITICAL_BELOW", &cfg.Thresholds.SpO2CriticalBelow)
	floatVar("BP_WARNING_ABOVE", &cfg.Thresholds.SystolicWarningAbove)
	floatVar("BP_CRITICAL_ABOVE", &cfg.Thresholds.SystolicCriticalAbove)
	floatVar("HEALTH_STABLE_MIN", &cfg.Thresholds.HealthStableMin)
	floatVar("HEALTH_WARNING_MIN", &cfg.Thresholds.HealthWarningMin)

	// Database DSN
	cfg.DB.DSN = getenv("DB_DSN")

	// Redis roster cache
	cfg.Redis.Addr = getenv("REDIS_ADDR")
	intVar("REDIS_DB", &cfg.Redis.DB)
	ttl := 30
	intVar("CACHE_TTL_SECONDS", &ttl)
	cfg.Redis.CacheTTL = time.Duration(ttl) * time.Second

	// Kafka settings
	cfg.Kafka.Broker = getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = getenv("KAFKA_GROUP_ID")

	// Telegram escalation
	cfg.Telegram.BotToken = getenv("TELEGRAM_BOT_TOKEN")
	if v := strings.TrimSpace(getenv("TELEGRAM_CHAT_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			bad = append(bad, "TELEGRAM_CHAT_ID")
		}
		cfg.Telegram.ChatID = id
	}
	floatVar("TELEGRAM_RATE_PER_SECOND", &cfg.Telegram.RatePerSecond)

	// Alert stream worker settings
	intVar("QUEUE_SIZE", &cfg.Stream.QueueSize)
	intVar("MAX_WORKERS", &cfg.Stream.MaxWorkers)

	if len(bad) > 0 {
		return Config{}, fmt.Errorf("malformed configurations: %v", bad)
	}

	// Validate required settings
	missing := []string{}
	if cfg.Upstream.BaseURL == "" {
		missing = append(missing, "UPSTREAM_BASE_URL")
	}
	if cfg.Kafka.Broker != "" && cfg.Kafka.Topic == "" {
		missing = append(missing, "KAFKA_TOPIC")
	}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID == 0 {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.Upstream.Retries < 0 {
		return Config{}, fmt.Errorf("UPSTREAM_RETRIES must not be negative")
	}
	if cfg.Stream.QueueSize < 0 {
		return Config{}, fmt.Errorf("QUEUE_SIZE must not be negative")
	}
	if cfg.Stream.MaxWorkers < 0 {
		return Config{}, fmt.Errorf("MAX_WORKERS must not be negative")
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if !strings.HasPrefix(cfg.API.Port, ":") && !strings.Contains(cfg.API.Port, ":") {
		cfg.API.Port = ":" + cfg.API.Port
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v1"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "clinical-dashboard"
	}
	if cfg.Telegram.RatePerSecond <= 0 {
		cfg.Telegram.RatePerSecond = 1
	}
	if cfg.Stream.QueueSize == 0 {
		cfg.Stream.QueueSize = 500
	}
	if cfg.Stream.MaxWorkers == 0 {
		cfg.Stream.MaxWorkers = 10
	}

	return cfg, nil
}
