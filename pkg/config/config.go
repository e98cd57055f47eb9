package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Auth      AuthConfig
	Email     EmailConfig
	Chat      ChatConfig
	Shop      ShopConfig
	Intro     IntroConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// DatabaseConfig is optional: an empty URL keeps quotes, contact messages and
// rate limits in memory.
type DatabaseConfig struct {
	URL         string
	MaxConns    int
	MinConns    int
	MaxLifetime time.Duration
}

// RedisConfig is used when Enabled or when the intro store driver is redis.
// It then also backs rate limits and the idempotency cache.
type RedisConfig struct {
	Enabled  bool
	URL      string
	Password string
	DB       int
}

type NATSConfig struct {
	URL string
}

type AuthConfig struct {
	VisitorSecret     string
	VisitorTTL        time.Duration
	VisitorCookieName string
	CookieSecure      bool
}

type EmailConfig struct {
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPFrom      string
	SMTPUseTLS    bool
	MailerSendKey string
	FromName      string
	ShopEmail     string
	DevMode       bool // print emails to logs instead of sending
}

type ChatConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	Temperature  float64
	HistoryLimit int
	Timeout      time.Duration
}

type ShopConfig struct {
	Timezone string
	Schedule string // empty means the built-in opening table
}

type IntroConfig struct {
	StoreDriver string // memory, redis or postgres
	Window      time.Duration
	MaxShows    int
}

type RateLimitConfig struct {
	ChatRequests int
	ChatWindow   time.Duration
	FormRequests int
	FormWindow   time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			ReadTimeout:    getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:   getDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:    getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			URL:         getEnv("DATABASE_URL", ""),
			MaxConns:    getInt("DB_MAX_CONNS", 10),
			MinConns:    getInt("DB_MIN_CONNS", 1),
			MaxLifetime: getDuration("DB_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			Enabled:  getBool("REDIS_ENABLED", false),
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Auth: AuthConfig{
			VisitorSecret:     getEnv("VISITOR_SECRET", "dev-only-secret-change-in-prod"),
			VisitorTTL:        getDuration("VISITOR_TTL", 365*24*time.Hour),
			VisitorCookieName: getEnv("VISITOR_COOKIE", "salvatore_visitor"),
			CookieSecure:      getBool("COOKIE_SECURE", false),
		},
		Email: EmailConfig{
			SMTPHost:      getEnv("SMTP_HOST", "localhost"),
			SMTPPort:      getInt("SMTP_PORT", 1025),
			SMTPUser:      getEnv("SMTP_USER", ""),
			SMTPPass:      getEnv("SMTP_PASS", ""),
			SMTPFrom:      getEnv("SMTP_FROM", "noreply@salvatoreshoes.local"),
			SMTPUseTLS:    getBool("SMTP_USE_TLS", false),
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
			FromName:      getEnv("MAILER_FROM_NAME", "Salvatore Shoes Repair"),
			ShopEmail:     getEnv("SHOP_EMAIL", "taller@salvatoreshoes.local"),
			DevMode:       getBool("EMAIL_DEV_MODE", true),
		},
		Chat: ChatConfig{
			APIKey:       getEnv("OPENAI_API_KEY", ""),
			BaseURL:      getEnv("OPENAI_BASE_URL", ""),
			Model:        getEnv("CHAT_MODEL", "gpt-3.5-turbo"),
			MaxTokens:    getInt("CHAT_MAX_TOKENS", 500),
			Temperature:  getFloat("CHAT_TEMPERATURE", 0.7),
			HistoryLimit: getInt("CHAT_HISTORY_LIMIT", 10),
			Timeout:      getDuration("CHAT_TIMEOUT", 30*time.Second),
		},
		Shop: ShopConfig{
			Timezone: getEnv("SHOP_TIMEZONE", "Local"),
			Schedule: getEnv("SHOP_SCHEDULE", ""),
		},
		Intro: IntroConfig{
			StoreDriver: getEnv("INTRO_STORE", "memory"),
			Window:      getDuration("INTRO_WINDOW", 12*time.Hour),
			MaxShows:    getInt("INTRO_MAX_SHOWS", 2),
		},
		RateLimit: RateLimitConfig{
			ChatRequests: getInt("CHAT_RATE_LIMIT", 20),
			ChatWindow:   getDuration("CHAT_RATE_WINDOW", time.Minute),
			FormRequests: getInt("FORM_RATE_LIMIT", 5),
			FormWindow:   getDuration("FORM_RATE_WINDOW", 10*time.Minute),
		},
	}
}

// Location resolves the shop timezone. "Local" (the default) keeps the
// server's local time.
func (c ShopConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
