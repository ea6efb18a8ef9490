package config

import (
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/carewatch-api/pkg/logger"
	"github.com/jwalitptl/carewatch-api/pkg/messaging/redis"
	"github.com/jwalitptl/carewatch-api/pkg/worker"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Twilio    TwilioConfig    `mapstructure:"twilio"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	Log       LogConfig       `mapstructure:"log"`
	Security  SecurityConfig  `mapstructure:"security"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	// ServiceKey guards the webhook and function endpoints when set.
	ServiceKey string `mapstructure:"service_key"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN renders a lib/pq connection URL with credentials escaped.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

type RedisConfig struct {
	URL           string        `mapstructure:"url"`
	MaxRetries    int           `mapstructure:"max_retries"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
	PoolSize      int           `mapstructure:"pool_size"`
	MinIdleConns  int           `mapstructure:"min_idle_conns"`
	ChannelPrefix string        `mapstructure:"channel_prefix"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type TwilioConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	AccountSID string        `mapstructure:"account_sid"`
	AuthToken  string        `mapstructure:"auth_token"`
	FromNumber string        `mapstructure:"from_number"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type AlertsConfig struct {
	ChannelTimeout time.Duration `mapstructure:"channel_timeout"`
	// BreakerMaxFailures consecutive failures open a sender's circuit for BreakerTimeout.
	BreakerMaxFailures int           `mapstructure:"breaker_max_failures"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	Retention     time.Duration `mapstructure:"retention"`
}

type SecurityConfig struct {
	// NotesKey is a hex-encoded AES key for medical notes at rest. Empty stores plaintext.
	NotesKey string `mapstructure:"notes_key"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// secrets are read from CAREWATCH_* variables and win over the config file.
type secrets struct {
	DBPassword       string `envconfig:"DB_PASSWORD"`
	RedisURL         string `envconfig:"REDIS_URL"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	SMTPPassword     string `envconfig:"SMTP_PASSWORD"`
	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `envconfig:"TWILIO_PHONE_NUMBER"`
	ServiceKey       string `envconfig:"SERVICE_KEY"`
	NotesKey         string `envconfig:"NOTES_KEY"`
}

const envPrefix = "CAREWATCH"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 45*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "carewatch")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.channel_prefix", "carewatch:")

	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("smtp.port", 587)

	v.SetDefault("twilio.base_url", "https://api.twilio.com")
	v.SetDefault("twilio.timeout", 10*time.Second)

	v.SetDefault("alerts.channel_timeout", 15*time.Second)
	v.SetDefault("alerts.breaker_max_failures", 5)
	v.SetDefault("alerts.breaker_timeout", 30*time.Second)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 5*time.Second)
	v.SetDefault("outbox.retry_attempts", 5)
	v.SetDefault("outbox.retry_delay", 30*time.Second)
	v.SetDefault("outbox.retention", 7*24*time.Hour)

	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yml from the usual locations. A missing file is not
// an error; defaults and environment still apply.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	if len(paths) == 0 {
		paths = []string{".", "./config", "/app/config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.overlaySecrets(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) overlaySecrets() error {
	var s secrets
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(&c.Database.Password, s.DBPassword)
	overlay(&c.Redis.URL, s.RedisURL)
	overlay(&c.JWT.Secret, s.JWTSecret)
	overlay(&c.SMTP.Password, s.SMTPPassword)
	overlay(&c.Twilio.AccountSID, s.TwilioAccountSID)
	overlay(&c.Twilio.AuthToken, s.TwilioAuthToken)
	overlay(&c.Twilio.FromNumber, s.TwilioFromNumber)
	overlay(&c.Server.ServiceKey, s.ServiceKey)
	overlay(&c.Security.NotesKey, s.NotesKey)
	return nil
}

// Validate checks values that have no safe default.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("jwt.expiry_hours must be greater than 0")
	}
	if c.Alerts.ChannelTimeout <= 0 {
		return fmt.Errorf("alerts.channel_timeout must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 || c.Outbox.PollInterval <= 0 {
		return fmt.Errorf("outbox.batch_size and outbox.poll_interval must be greater than 0")
	}
	if c.Security.NotesKey != "" {
		if _, err := c.Security.NotesKeyBytes(); err != nil {
			return err
		}
	}
	return nil
}

func (c *OutboxConfig) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:     c.BatchSize,
		PollInterval:  c.PollInterval,
		RetryAttempts: c.RetryAttempts,
		RetryDelay:    c.RetryDelay,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:           c.URL,
		MaxRetries:    c.MaxRetries,
		RetryBackoff:  c.RetryBackoff,
		PoolSize:      c.PoolSize,
		MinIdleConns:  c.MinIdleConns,
		ChannelPrefix: c.ChannelPrefix,
	}
}

// NotesKeyBytes decodes the notes key, which must be 16, 24 or 32 bytes.
func (c *SecurityConfig) NotesKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.NotesKey)
	if err != nil {
		return nil, fmt.Errorf("security.notes_key must be hex encoded: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, fmt.Errorf("security.notes_key must decode to 16, 24 or 32 bytes, got %d", len(key))
	}
}

func (c *LogConfig) ToLoggerConfig() *logger.Config {
	return &logger.Config{
		Level:      logger.ParseLevel(c.Level),
		TimeFormat: time.RFC3339,
		Console:    c.Console,
	}
}
