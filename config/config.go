package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is loaded once at startup and passed by value afterwards.
type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`
	HTTPPort int    `yaml:"http_port"`

	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	JWTSecret   string   `yaml:"jwt_secret"`
	CORSOrigins []string `yaml:"cors_origins"`

	LockTimeout  time.Duration `yaml:"lock_timeout"`
	MaxTxRetries int           `yaml:"max_tx_retries"`

	PromoSweepSchedule string `yaml:"promo_sweep_schedule"`
	Timezone           string `yaml:"timezone"`

	KafkaBrokers   string        `yaml:"kafka_brokers"`
	KafkaTopic     string        `yaml:"kafka_topic"`
	WebhookURL     string        `yaml:"webhook_url"`
	OutboxInterval time.Duration `yaml:"outbox_interval"`
	OutboxBatch    int           `yaml:"outbox_batch"`
}

func Defaults() Config {
	return Config{
		AppEnv:             "dev",
		LogLevel:           "info",
		HTTPPort:           8080,
		DBDriver:           "mysql",
		CORSOrigins:        []string{"http://localhost:4200", "https://www.amexan.store"},
		LockTimeout:        5 * time.Second,
		MaxTxRetries:       3,
		PromoSweepSchedule: "30 17 * * *",
		Timezone:           "Local",
		KafkaTopic:         "order-events",
		OutboxInterval:     5 * time.Second,
		OutboxBatch:        100,
	}
}

// Load reads .env (if present), the optional YAML file named by CONFIG_FILE,
// and finally the process environment, in increasing order of precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.PromoSweepSchedule = getEnv("PROMO_SWEEP_SCHEDULE", cfg.PromoSweepSchedule)
	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)
	cfg.KafkaBrokers = getEnv("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.WebhookURL = getEnv("WEBHOOK_URL", cfg.WebhookURL)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}

	var err error
	if cfg.HTTPPort, err = getEnvInt("HTTP_PORT", cfg.HTTPPort); err != nil {
		return err
	}
	if cfg.MaxTxRetries, err = getEnvInt("MAX_TX_RETRIES", cfg.MaxTxRetries); err != nil {
		return err
	}
	if cfg.OutboxBatch, err = getEnvInt("OUTBOX_BATCH", cfg.OutboxBatch); err != nil {
		return err
	}
	if cfg.LockTimeout, err = getEnvDuration("LOCK_TIMEOUT", cfg.LockTimeout); err != nil {
		return err
	}
	if cfg.OutboxInterval, err = getEnvDuration("OUTBOX_INTERVAL", cfg.OutboxInterval); err != nil {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}
	if c.LockTimeout <= 0 {
		return errors.New("LOCK_TIMEOUT must be positive")
	}
	if c.MaxTxRetries < 0 {
		return errors.New("MAX_TX_RETRIES cannot be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return nil
}

// Location is the zone "today" is evaluated in for promo expiry.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
