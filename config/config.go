package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
	HTTP     HTTPConfig
	Line     LineConfig
	Weather  WeatherConfig
	Alerts   AlertsConfig
	Digest   DigestConfig
	Registry RegistryConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// HTTPConfig applies to every outbound call
type HTTPConfig struct {
	Timeout time.Duration
}

type LineConfig struct {
	AccessToken   string
	ChannelSecret string // optional; enables X-Line-Signature verification
	APIBase       string
	PushRate      float64 // pushes per second
}

type WeatherConfig struct {
	APIKey  string
	APIBase string
	Lang    string
	Units   string
}

type AlertsConfig struct {
	FeedURL string
	Region  string
}

type DigestConfig struct {
	Platform          string // discord or telegram
	DiscordToken      string
	DiscordChannelID  string
	DiscordAPIBase    string
	TelegramToken     string
	TelegramChannelID int64
	TelegramAPIBase   string
	City              string
	Latitude          float64
	Longitude         float64
	Timezone          string
	Mention           string
}

type RegistryConfig struct {
	Backend   string // file, memory, redis or postgres
	UsersFile string
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	URL string
	Key string
}

const (
	PlatformDiscord  = "discord"
	PlatformTelegram = "telegram"

	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Load reads an optional .env file, then builds the configuration from
// environment variables with defaults
func Load() (*Config, error) {
	// A missing .env is the normal case in deployments.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 5000),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", false),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		HTTP: HTTPConfig{
			Timeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),
		},
		Line: LineConfig{
			AccessToken:   getEnv("LINE_ACCESS_TOKEN", ""),
			ChannelSecret: getEnv("LINE_CHANNEL_SECRET", ""),
			APIBase:       strings.TrimRight(getEnv("LINE_API_BASE", "https://api.line.me"), "/"),
			PushRate:      getEnvFloat("LINE_PUSH_RATE", 10),
		},
		Weather: WeatherConfig{
			APIKey:  getEnv("OPENWEATHER_API_KEY", ""),
			APIBase: strings.TrimRight(getEnv("OPENWEATHER_API_BASE", "https://api.openweathermap.org"), "/"),
			Lang:    getEnv("OPENWEATHER_LANG", "ja"),
			Units:   getEnv("OPENWEATHER_UNITS", "metric"),
		},
		Alerts: AlertsConfig{
			FeedURL: getEnv("JMA_FEED_URL", "https://www.data.jma.go.jp/developer/xml/feed/other.xml"),
			Region:  getEnv("ALERT_REGION", "兵庫県"),
		},
		Digest: DigestConfig{
			Platform:          strings.ToLower(getEnv("DIGEST_PLATFORM", PlatformDiscord)),
			DiscordToken:      getEnv("DISCORD_BOT_TOKEN", ""),
			DiscordChannelID:  getEnv("DISCORD_CHANNEL_ID", ""),
			DiscordAPIBase:    strings.TrimRight(getEnv("DISCORD_API_BASE", "https://discord.com/api/v10"), "/"),
			TelegramToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramChannelID: getEnvInt64("TELEGRAM_CHANNEL_ID", 0),
			TelegramAPIBase:   getEnv("TELEGRAM_API_BASE", ""),
			City:              getEnv("DIGEST_CITY", "神戸市"),
			Latitude:          getEnvFloat("DIGEST_LAT", 34.6913),
			Longitude:         getEnvFloat("DIGEST_LON", 135.1830),
			Timezone:          getEnv("DIGEST_TIMEZONE", "Asia/Tokyo"),
			Mention:           getEnv("DIGEST_MENTION", "@everyone"),
		},
		Registry: RegistryConfig{
			Backend:   strings.ToLower(getEnv("REGISTRY_BACKEND", BackendFile)),
			UsersFile: getEnv("USERS_FILE", "users.json"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 4),
			MinConns:        getEnvInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 1*time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			Key: getEnv("REDIS_KEY", "bousai:users"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks settings shared by both binaries
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	switch c.Registry.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown registry backend: %q", c.Registry.Backend)
	}
	if c.Registry.Backend == BackendPostgres && c.Database.URL == "" {
		return fmt.Errorf("registry backend postgres requires DATABASE_URL")
	}
	if c.Registry.Backend == BackendRedis && c.Redis.URL == "" {
		return fmt.Errorf("registry backend redis requires REDIS_URL")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	return nil
}

// ValidateWebhook checks the credentials the webhook server needs
func (c *Config) ValidateWebhook() error {
	if c.Line.AccessToken == "" {
		return fmt.Errorf("LINE_ACCESS_TOKEN is required")
	}
	if c.Weather.APIKey == "" {
		return fmt.Errorf("OPENWEATHER_API_KEY is required")
	}
	if c.Line.PushRate <= 0 {
		return fmt.Errorf("LINE_PUSH_RATE must be positive")
	}
	return nil
}

// ValidateDigest checks the credentials the digest publisher needs
func (c *Config) ValidateDigest() error {
	if c.Weather.APIKey == "" {
		return fmt.Errorf("OPENWEATHER_API_KEY is required")
	}
	if c.Alerts.Region == "" {
		return fmt.Errorf("ALERT_REGION must not be empty")
	}
	if _, err := time.LoadLocation(c.Digest.Timezone); err != nil {
		return fmt.Errorf("invalid DIGEST_TIMEZONE %q: %w", c.Digest.Timezone, err)
	}
	switch c.Digest.Platform {
	case PlatformDiscord:
		if c.Digest.DiscordToken == "" {
			return fmt.Errorf("DISCORD_BOT_TOKEN is required")
		}
		if c.Digest.DiscordChannelID == "" {
			return fmt.Errorf("DISCORD_CHANNEL_ID is required")
		}
	case PlatformTelegram:
		if c.Digest.TelegramToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
		}
		if c.Digest.TelegramChannelID == 0 {
			return fmt.Errorf("TELEGRAM_CHANNEL_ID is required")
		}
	default:
		return fmt.Errorf("unknown digest platform: %q", c.Digest.Platform)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
