package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-config/cfgx"
)

// Config captures SDK-level configuration knobs. Feature packages (transport,
// storage, fingerprint, logging) pull from these nested structs.
type Config struct {
	BaseURL                string            `mapstructure:"base_url" json:"base_url" yaml:"base_url" validate:"required,url"`
	APIKey                 string            `mapstructure:"api_key" json:"api_key" yaml:"api_key"`
	Debug                  bool              `mapstructure:"debug" json:"debug" yaml:"debug"`
	AttributionWindowHours int               `mapstructure:"attribution_window_hours" json:"attribution_window_hours" yaml:"attribution_window_hours" validate:"gte=1,lte=2160"`
	Request                RequestConfig     `mapstructure:"request" json:"request" yaml:"request"`
	Storage                StorageConfig     `mapstructure:"storage" json:"storage" yaml:"storage"`
	Fingerprint            FingerprintConfig `mapstructure:"fingerprint" json:"fingerprint" yaml:"fingerprint"`
	Logging                LoggingConfig     `mapstructure:"logging" json:"logging" yaml:"logging"`
	Metrics                MetricsConfig     `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
	Sink                   SinkConfig        `mapstructure:"sink" json:"sink" yaml:"sink"`
}

// RequestConfig controls the outbound HTTP request function.
// MaxRetries of zero means each call is attempted exactly once.
type RequestConfig struct {
	Timeout        time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" validate:"gte=0"`
	MaxRetries     int           `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" json:"retry_base_delay" yaml:"retry_base_delay" validate:"gte=0"`
	RetryMaxDelay  time.Duration `mapstructure:"retry_max_delay" json:"retry_max_delay" yaml:"retry_max_delay" validate:"gte=0"`
	UserAgent      string        `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent"`
}

// StorageConfig selects where install state is persisted.
type StorageConfig struct {
	Driver        string `mapstructure:"driver" json:"driver" yaml:"driver" validate:"oneof=memory sqlite redis"`
	DSN           string `mapstructure:"dsn" json:"dsn" yaml:"dsn"`
	RedisAddr     string `mapstructure:"redis_addr" json:"redis_addr" yaml:"redis_addr"`
	RedisDB       int    `mapstructure:"redis_db" json:"redis_db" yaml:"redis_db" validate:"gte=0"`
	KeyPrefix     string `mapstructure:"key_prefix" json:"key_prefix" yaml:"key_prefix"`
	EncryptionKey string `mapstructure:"encryption_key" json:"encryption_key" yaml:"encryption_key" validate:"omitempty,hexadecimal,len=64"`
}

// FingerprintConfig scopes device signal collection.
type FingerprintConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl" json:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`
}

// LoggingConfig configures the zerolog backend.
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" json:"format" yaml:"format" validate:"oneof=console json"`
	File       string `mapstructure:"file" json:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" json:"max_age_days" yaml:"max_age_days" validate:"gte=0"`
}

// MetricsConfig names the Prometheus namespace used by the metrics adapter.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
}

// SinkConfig points attribution events at a Kafka topic and/or a webhook.
// An empty broker list or URL disables that sink.
type SinkConfig struct {
	KafkaBrokers []string `mapstructure:"kafka_brokers" json:"kafka_brokers" yaml:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic" json:"kafka_topic" yaml:"kafka_topic"`
	WebhookURL   string   `mapstructure:"webhook_url" json:"webhook_url" yaml:"webhook_url" validate:"omitempty,url"`
	// WebhookTopics limits the webhook to these topics. Empty means all.
	WebhookTopics []string `mapstructure:"webhook_topics" json:"webhook_topics" yaml:"webhook_topics"`
}

// Defaults returns the baseline configuration. BaseURL has no default.
func Defaults() Config {
	return Config{
		AttributionWindowHours: 168,
		Request: RequestConfig{
			Timeout:        10 * time.Second,
			MaxRetries:     0,
			RetryBaseDelay: 200 * time.Millisecond,
			RetryMaxDelay:  5 * time.Second,
			UserAgent:      "linkforty-go",
		},
		Storage: StorageConfig{
			Driver:    "memory",
			KeyPrefix: "",
		},
		Fingerprint: FingerprintConfig{
			CacheTTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{
			Namespace: "linkforty",
		},
		Sink: SinkConfig{
			KafkaTopic: "linkforty.attribution",
		},
	}
}

var validate = validator.New()

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.DSN == "" {
			return errors.New("config: storage.dsn is required for the sqlite driver")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return errors.New("config: storage.redis_addr is required for the redis driver")
		}
	}
	if c.Request.MaxRetries > 0 && c.Request.RetryMaxDelay > 0 && c.Request.RetryMaxDelay < c.Request.RetryBaseDelay {
		return errors.New("config: request.retry_max_delay must be >= request.retry_base_delay")
	}
	return nil
}

// EncryptionKeyBytes decodes Storage.EncryptionKey. It returns nil when unset.
func (c Config) EncryptionKeyBytes() ([]byte, error) {
	if c.Storage.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.Storage.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("config: storage.encryption_key: %w", err)
	}
	return key, nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// When cfgx.Build returns a zero value the input is decoded with a JSON
// round trip instead.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	return Prepare(cfg)
}

// Prepare fills unset fields with defaults and validates the result.
func Prepare(cfg Config) (Config, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.AttributionWindowHours == 0 {
		c.AttributionWindowHours = defaults.AttributionWindowHours
	}
	if c.Request.Timeout == 0 {
		c.Request.Timeout = defaults.Request.Timeout
	}
	if c.Request.RetryBaseDelay == 0 {
		c.Request.RetryBaseDelay = defaults.Request.RetryBaseDelay
	}
	if c.Request.RetryMaxDelay == 0 {
		c.Request.RetryMaxDelay = defaults.Request.RetryMaxDelay
	}
	if c.Request.UserAgent == "" {
		c.Request.UserAgent = defaults.Request.UserAgent
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	if c.Fingerprint.CacheTTL == 0 {
		c.Fingerprint.CacheTTL = defaults.Fingerprint.CacheTTL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Debug {
		c.Logging.Level = "debug"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = defaults.Logging.MaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = defaults.Logging.MaxAgeDays
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = defaults.Metrics.Namespace
	}
	if c.Sink.KafkaTopic == "" {
		c.Sink.KafkaTopic = defaults.Sink.KafkaTopic
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
