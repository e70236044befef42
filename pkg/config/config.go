package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" env:"APP_ENV" default:"development" validate:"required"`
	Server      ServerConfig     `yaml:"server" envPrefix:"SERVER_"`
	Metrics     MetricsConfig    `yaml:"metrics" envPrefix:"METRICS_"`
	Log         LogConfig        `yaml:"log" envPrefix:"LOG_"`
	Market      MarketConfig     `yaml:"market" envPrefix:"MARKET_"`
	TwelveData  TwelveDataConfig `yaml:"twelvedata" envPrefix:"TWELVE_DATA_"`
	Cache       CacheConfig      `yaml:"cache" envPrefix:"CACHE_"`
	Snapshot    SnapshotConfig   `yaml:"snapshot" envPrefix:"SNAPSHOT_"`
	Regime      RegimeConfig     `yaml:"regime" envPrefix:"REGIME_"`
	Stream      StreamConfig     `yaml:"stream" envPrefix:"STREAM_"`
	RateLimit   RateLimitConfig  `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Kafka       KafkaConfig      `yaml:"kafka" envPrefix:"KAFKA_"`
	Universe    []SymbolConfig   `yaml:"universe" validate:"dive"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" default:"10s"`
	SlowRequest     time.Duration `yaml:"slow_request" env:"SLOW_REQUEST" default:"2s"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Path    string `yaml:"path" env:"PATH" default:"/metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"FORMAT" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" env:"OUTPUT" default:"stdout"`
}

// MarketConfig names the exchange and display time zones.
type MarketConfig struct {
	TimeZone      string `yaml:"time_zone" env:"TIME_ZONE" default:"America/New_York" validate:"required"`
	LocalTimeZone string `yaml:"local_time_zone" env:"LOCAL_TIME_ZONE" default:"America/Chicago" validate:"required"`
}

type TwelveDataConfig struct {
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	BaseURL string        `yaml:"base_url" env:"BASE_URL" default:"https://api.twelvedata.com" validate:"url"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" default:"15s"`
	// CreditsPerMinute caps upstream calls per API key; 0 disables the budget.
	CreditsPerMinute int `yaml:"credits_per_minute" env:"CREDITS_PER_MINUTE" validate:"gte=0"`
}

type CacheConfig struct {
	Backend   string        `yaml:"backend" env:"BACKEND" default:"memory" validate:"oneof=memory redis layered"`
	MaxSize   int           `yaml:"max_size" env:"MAX_SIZE" default:"10000" validate:"gt=0"`
	Cleanup   time.Duration `yaml:"cleanup_interval" env:"CLEANUP_INTERVAL" default:"1m"`
	// L1TTL caps the memory tier of the layered backend; 0 removes the cap.
	L1TTL     time.Duration `yaml:"l1_ttl" env:"L1_TTL" default:"1m"`
	Redis     RedisConfig   `yaml:"redis" envPrefix:"REDIS_"`
	KeyPrefix string        `yaml:"key_prefix" env:"KEY_PREFIX" default:"mcm"`
}

type RedisConfig struct {
	Host     string `yaml:"host" env:"HOST" default:"localhost"`
	Port     int    `yaml:"port" env:"PORT" default:"6379"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	PoolSize int    `yaml:"pool_size" env:"POOL_SIZE" default:"10"`
}

type SnapshotConfig struct {
	MaxConcurrency int `yaml:"max_concurrency" env:"MAX_CONCURRENCY" default:"8" validate:"gt=0"`
}

type RegimeConfig struct {
	// Classifier selects the one active regime classifier for this deployment.
	Classifier string `yaml:"classifier" env:"CLASSIFIER" default:"breadth" validate:"oneof=breadth confirmation"`
}

type StreamConfig struct {
	Interval     time.Duration `yaml:"interval" env:"INTERVAL" default:"30s"`
	PingInterval time.Duration `yaml:"ping_interval" env:"PING_INTERVAL" default:"20s"`
}

// RateLimitConfig is the per-client API throttle. A zero capacity disables it.
type RateLimitConfig struct {
	Capacity     float64 `yaml:"capacity" env:"CAPACITY" default:"10"`
	RefillPerSec float64 `yaml:"refill_per_sec" env:"REFILL_PER_SEC" default:"2"`
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled" env:"ENABLED"`
	Brokers      []string `yaml:"brokers" env:"BROKERS" envSeparator:","`
	Topic        string   `yaml:"topic" env:"TOPIC" default:"mcm.snapshots"`
	RegimeTopic  string   `yaml:"regime_topic" env:"REGIME_TOPIC" default:"mcm.regimes"`
	LogTopic     string   `yaml:"log_topic" env:"LOG_TOPIC"`
	RequiredAcks int      `yaml:"required_acks" env:"REQUIRED_ACKS" default:"-1"`
	Compression  string   `yaml:"compression" env:"COMPRESSION" default:"gzip"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"1s"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
}

// SymbolConfig is one row of the tracked universe.
type SymbolConfig struct {
	Symbol    string  `yaml:"symbol" validate:"required"`
	Name      string  `yaml:"name"`
	Threshold float64 `yaml:"threshold" validate:"gte=0,lt=1"`
	Category  string  `yaml:"category"`
	Cohort    string  `yaml:"cohort"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A .env file in the working directory is loaded first when present.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := c.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Defaults go in first so explicit zero values in the file or the
	// environment survive.
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) finish() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
// The provider API key is optional; requests that need it fail with ERR_CONFIG.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if _, err := time.LoadLocation(c.Market.TimeZone); err != nil {
		return fmt.Errorf("market.time_zone: %w", err)
	}
	if _, err := time.LoadLocation(c.Market.LocalTimeZone); err != nil {
		return fmt.Errorf("market.local_time_zone: %w", err)
	}
	return nil
}
