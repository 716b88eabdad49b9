package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, read from the environment after an
// optional .env file has been loaded.
type Config struct {
	Port   string
	AppEnv string

	SessionSecret  string
	SessionBackend string // memory, postgres or redis
	SessionTTL     time.Duration
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	MaxUploadMB    int64
	FrontendURL    string

	GeneratorProvider string // gemini, openai or local
	GeminiAPIKey      string
	GeminiModel       string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	CloudflareAccountID string
	R2BucketName        string
	R2AccessKeyID       string
	R2SecretAccessKey   string
	R2PublicURL         string

	DiscordWebhookURL string
}

// LoadDotEnv loads the given .env files (or ".env" when none are given).
// A missing file is only a warning.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		log.Println("Warning: .env file not found. Relying on system environment variables.")
		return nil
	}
	return fmt.Errorf("loading .env file: %w", err)
}

// FromEnv builds a Config from environment variables.
func FromEnv() (*Config, error) {
	ttl, err := duration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	maxUpload, err := integer("MAX_UPLOAD_MB", 32)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Port:   str("PORT", "8080"),
		AppEnv: str("APP_ENV", "dev"),

		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionBackend: strings.ToLower(str("SESSION_BACKEND", "memory")),
		SessionTTL:     ttl,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      str("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		MaxUploadMB:    int64(maxUpload),
		FrontendURL:    os.Getenv("FRONTEND_URL"),

		GeneratorProvider: strings.ToLower(os.Getenv("GENERATOR_PROVIDER")),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       str("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       str("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		CloudflareAccountID: os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2BucketName:        os.Getenv("R2_BUCKET_NAME"),
		R2AccessKeyID:       os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:   os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2PublicURL:         os.Getenv("R2_PUBLIC_URL"),

		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
	}
	if cfg.GeneratorProvider == "" {
		cfg.GeneratorProvider = defaultProvider(cfg)
	}
	return cfg, cfg.Validate()
}

func defaultProvider(cfg *Config) string {
	switch {
	case cfg.GeminiAPIKey != "":
		return "gemini"
	case cfg.OpenAIAPIKey != "":
		return "openai"
	default:
		return "local"
	}
}

// Validate checks combinations of settings that cannot work together.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case "memory", "redis":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("SESSION_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	switch c.GeneratorProvider {
	case "local":
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GENERATOR_PROVIDER=gemini requires GEMINI_API_KEY")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("GENERATOR_PROVIDER=openai requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown GENERATOR_PROVIDER %q", c.GeneratorProvider)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// GoogleLoginEnabled reports whether all Google OAuth settings are present.
func (c *Config) GoogleLoginEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

// R2Enabled reports whether all Cloudflare R2 settings are present.
func (c *Config) R2Enabled() bool {
	return c.CloudflareAccountID != "" && c.R2BucketName != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2PublicURL != ""
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

func str(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func integer(name string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return i, nil
}

func duration(name string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return d, nil
}
