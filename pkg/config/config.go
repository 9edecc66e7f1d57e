package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	TelegramModePolling = "polling"
	TelegramModeWebhook = "webhook"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Env  string
	Port int

	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Telegram TelegramConfig
	Access   AccessConfig
	Dialogue DialogueConfig
	Catalog  CatalogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	QueryTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// TelegramConfig configures the bot transport.
type TelegramConfig struct {
	Token         string
	Mode          string
	WebhookURL    string
	WebhookPath   string
	WebhookSecret string
	PollTimeout   int
	Debug         bool
}

// AccessConfig holds the operator allow-list. Zero ids are dropped.
type AccessConfig struct {
	OperatorIDs []int64
}

// DialogueConfig tunes edit dialogue lifecycle and dispatch.
type DialogueConfig struct {
	IdleTimeout      time.Duration
	SweepInterval    time.Duration
	Workers          int
	SessionBackend   string
	SessionKeyPrefix string
}

// CatalogConfig governs caching of catalog listings.
type CatalogConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		QueryTimeout: parseDuration(v.GetString("DB_QUERY_TIMEOUT"), 30*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	mode := strings.ToLower(strings.TrimSpace(v.GetString("TELEGRAM_MODE")))
	if mode != TelegramModeWebhook {
		mode = TelegramModePolling
	}
	cfg.Telegram = TelegramConfig{
		Token:         v.GetString("TELEGRAM_TOKEN"),
		Mode:          mode,
		WebhookURL:    v.GetString("TELEGRAM_WEBHOOK_URL"),
		WebhookPath:   v.GetString("TELEGRAM_WEBHOOK_PATH"),
		WebhookSecret: v.GetString("TELEGRAM_WEBHOOK_SECRET"),
		PollTimeout:   v.GetInt("TELEGRAM_POLL_TIMEOUT"),
		Debug:         v.GetBool("TELEGRAM_DEBUG"),
	}

	ids := []string{v.GetString("ADMIN_ID"), v.GetString("HEADMAN_ID")}
	ids = append(ids, splitAndTrim(v.GetString("ADMIN_IDS"))...)
	cfg.Access = AccessConfig{OperatorIDs: parseIDs(ids)}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("SESSION_BACKEND")))
	if backend != SessionBackendRedis {
		backend = SessionBackendMemory
	}
	cfg.Dialogue = DialogueConfig{
		IdleTimeout:      parseDuration(v.GetString("DIALOGUE_IDLE_TIMEOUT"), 0),
		SweepInterval:    parseDuration(v.GetString("DIALOGUE_SWEEP_INTERVAL"), time.Minute),
		Workers:          v.GetInt("DIALOGUE_WORKERS"),
		SessionBackend:   backend,
		SessionKeyPrefix: v.GetString("SESSION_KEY_PREFIX"),
	}

	cfg.Catalog = CatalogConfig{
		CacheEnabled: v.GetBool("ENABLE_CATALOG_CACHE"),
		CacheTTL:     parseDuration(v.GetString("CATALOG_CACHE_TTL"), 5*time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "istz22")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_QUERY_TIMEOUT", "30s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("TELEGRAM_MODE", TelegramModePolling)
	v.SetDefault("TELEGRAM_WEBHOOK_URL", "")
	v.SetDefault("TELEGRAM_WEBHOOK_PATH", "/telegram/webhook")
	v.SetDefault("TELEGRAM_WEBHOOK_SECRET", "")
	v.SetDefault("TELEGRAM_POLL_TIMEOUT", 60)
	v.SetDefault("TELEGRAM_DEBUG", false)

	v.SetDefault("ADMIN_ID", "0")
	v.SetDefault("HEADMAN_ID", "0")
	v.SetDefault("ADMIN_IDS", "")

	v.SetDefault("DIALOGUE_IDLE_TIMEOUT", "0")
	v.SetDefault("DIALOGUE_SWEEP_INTERVAL", "1m")
	v.SetDefault("DIALOGUE_WORKERS", 4)
	v.SetDefault("SESSION_BACKEND", SessionBackendMemory)
	v.SetDefault("SESSION_KEY_PREFIX", "dialogue:session:")

	v.SetDefault("ENABLE_CATALOG_CACHE", false)
	v.SetDefault("CATALOG_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" || raw == "0" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func parseIDs(raw []string) []int64 {
	seen := make(map[int64]struct{}, len(raw))
	result := make([]int64, 0, len(raw))
	for _, item := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(item), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
