package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Hermes    HermesConfig    `yaml:"hermes"`
	Mail      MailConfig      `yaml:"mail"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port              int    `yaml:"port"`
	MetricsPort       int    `yaml:"metrics_port"`
	AdminToken        string `yaml:"admin_token"`
	MaxUploadMB       int    `yaml:"max_upload_mb"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	URL    string `yaml:"url"`    // postgres connection string
	Path   string `yaml:"path"`   // sqlite file
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

// MailConfig configures the SMTP account used to e-mail results.
type MailConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Subject  string `yaml:"subject"`
	Body     string `yaml:"body"`
}

type DeliveryConfig struct {
	TickIntervalMs int `yaml:"tick_interval_ms"`
	MaxAttempts    int `yaml:"max_attempts"`
	BatchSize      int `yaml:"batch_size"`
}

type RetentionConfig struct {
	Schedule    string `yaml:"schedule"`
	MaxAgeHours int    `yaml:"max_age_hours"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Delivery.TickIntervalMs) * time.Millisecond
}

func (c *Config) MaxAge() time.Duration {
	return time.Duration(c.Retention.MaxAgeHours) * time.Hour
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              8700,
			MetricsPort:       8701,
			MaxUploadMB:       10,
			RequestsPerMinute: 120,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "topsis.db",
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Mail: MailConfig{
			Server:  "smtp.gmail.com",
			Port:    587,
			Subject: "TOPSIS Result",
			Body:    "Find attached your TOPSIS result.",
		},
		Delivery: DeliveryConfig{
			TickIntervalMs: 5000,
			MaxAttempts:    3,
			BatchSize:      20,
		},
		Retention: RetentionConfig{
			Schedule:    "0 3 * * *",
			MaxAgeHours: 720,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TOPSIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("TOPSIS_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("TOPSIS_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("TOPSIS_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("TOPSIS_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("TOPSIS_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TOPSIS_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	// Mail variables keep the names used by existing deployments' .env files.
	if v := os.Getenv("EMAIL_ADDRESS"); v != "" {
		cfg.Mail.Address = v
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		cfg.Mail.Password = v
	}
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		cfg.Mail.Server = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Mail.Port = n
		}
	}
	if v := os.Getenv("TOPSIS_DELIVERY_TICK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Delivery.TickIntervalMs = n
		}
	}
	if v := os.Getenv("TOPSIS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// NewLogger builds the process logger from the logging section.
func NewLogger(lc LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(lc.Level)}
	if strings.EqualFold(lc.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
