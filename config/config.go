package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Where team configuration, staff and shifts live: "notion" or "mongo".
	StoreBackend string `mapstructure:"STORE_BACKEND"`

	// Notion.
	NotionToken      string  `mapstructure:"NOTION_TOKEN"`
	NotionVersion    string  `mapstructure:"NOTION_VERSION"`
	NotionBaseURL    string  `mapstructure:"NOTION_BASE_URL"`
	NotionRatePerSec float64 `mapstructure:"NOTION_RATE_PER_SEC"`
	NotionStaffDBID  string  `mapstructure:"NOTION_STAFF_DB_ID"`

	// Team mapping. SubmissionDBID is shared by the built-in teams.
	SubmissionDBID      string      `mapstructure:"SUBMISSION_DB_ID"`
	VietQConfigID       string      `mapstructure:"VIETQ_CONFIG_ID"`
	NoHeadlinerConfigID string      `mapstructure:"NOHEADLINER_CONFIG_ID"`
	VICConfigID         string      `mapstructure:"VIC_CONFIG_ID"`
	Teams               []TeamEntry `mapstructure:"TEAMS"`

	// MongoDB backend.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Sessions: "memory" or "redis".
	SessionStore   string        `mapstructure:"SESSION_STORE"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int           `mapstructure:"REDIS_SESSION_DB"`

	// Remote call limits.
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	SubmitTimeout  time.Duration `mapstructure:"SUBMIT_TIMEOUT"`
	// "overwrite" archives old rows before creating new ones; "staged" creates first.
	SubmitMode string `mapstructure:"SUBMIT_MODE"`

	// Summary image upload; empty disables it.
	CloudinaryURL    string `mapstructure:"CLOUDINARY_URL"`
	CloudinaryFolder string `mapstructure:"CLOUDINARY_FOLDER"`
}

const (
	BackendNotion = "notion"
	BackendMongo  = "mongo"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	SubmitModeOverwrite = "overwrite"
	SubmitModeStaged    = "staged"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("STORE_BACKEND", BackendNotion)
	v.SetDefault("NOTION_TOKEN", "")
	v.SetDefault("NOTION_VERSION", "2025-09-03")
	v.SetDefault("NOTION_BASE_URL", "https://api.notion.com/v1")
	v.SetDefault("NOTION_RATE_PER_SEC", 3.0)
	v.SetDefault("NOTION_STAFF_DB_ID", "")
	v.SetDefault("SUBMISSION_DB_ID", "")
	v.SetDefault("VIETQ_CONFIG_ID", "")
	v.SetDefault("NOHEADLINER_CONFIG_ID", "")
	v.SetDefault("VIC_CONFIG_ID", "")
	v.SetDefault("TEAMS", []TeamEntry{})
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "office_scheduler")
	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_TTL", 2*time.Hour)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 0)
	v.SetDefault("REQUEST_TIMEOUT", 15*time.Second)
	v.SetDefault("SUBMIT_TIMEOUT", 60*time.Second)
	v.SetDefault("SUBMIT_MODE", SubmitModeOverwrite)
	v.SetDefault("CLOUDINARY_URL", "")
	v.SetDefault("CLOUDINARY_FOLDER", "schedules")
}

// LoadConfig reads config.yaml from "." or "./config" if present, then lets
// environment variables override every key.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.SessionStore = strings.ToLower(strings.TrimSpace(c.SessionStore))
	c.SubmitMode = strings.ToLower(strings.TrimSpace(c.SubmitMode))

	switch c.StoreBackend {
	case BackendNotion, BackendMongo:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
	}
	switch c.SubmitMode {
	case SubmitModeOverwrite, SubmitModeStaged:
	default:
		return fmt.Errorf("config: unknown SUBMIT_MODE %q", c.SubmitMode)
	}
	if c.RequestTimeout <= 0 || c.SubmitTimeout <= 0 {
		return errors.New("config: REQUEST_TIMEOUT and SUBMIT_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction checks if the environment is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
