// Package config loads the CLI configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/domain"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Environment overrides, applied after the file.
const (
	EnvLogLevel  = "TURTLE_LOG_LEVEL"
	EnvStore     = "TURTLE_STORE"
	EnvRedisAddr = "TURTLE_REDIS_ADDR"
	// EnvEncryptionKey keeps the key out of config files.
	EnvEncryptionKey = "TURTLE_ENCRYPTION_KEY"
)

// DefaultPath is read when --config is not given. A missing default file is
// not an error.
const DefaultPath = "turtle.yaml"

var ErrInvalidConfig = errors.New("invalid config")

// Config is the CLI configuration.
type Config struct {
	LogLevel string        `yaml:"log_level" json:"log_level"`
	Canvas   domain.Canvas `yaml:"canvas" json:"canvas"`
	Store    StoreConfig   `yaml:"store" json:"store"`
	HTTP     HTTPConfig    `yaml:"http" json:"http"`
	MCP      MCPConfig     `yaml:"mcp" json:"mcp"`
}

// StoreConfig selects where sessions live.
type StoreConfig struct {
	Driver string      `yaml:"driver" json:"driver"`
	Dir    string      `yaml:"dir" json:"dir"`
	Redis  RedisConfig `yaml:"redis" json:"redis"`
	// EncryptionKey is a base64 AES-256 key. When set, records are sealed
	// before they reach the store. FallbackKeys still decrypt old records.
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" json:"fallback_keys"`
}

// RedisConfig configures the redis driver. Lock enables the distributed
// session lock for multi-replica deployments.
type RedisConfig struct {
	Addr     string   `yaml:"addr" json:"addr"`
	Password string   `yaml:"password" json:"password"`
	DB       int      `yaml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" json:"ttl"`
	Lock     bool     `yaml:"lock" json:"lock"`
	LockTTL  Duration `yaml:"lock_ttl" json:"lock_ttl"`
}

type HTTPConfig struct {
	Addr    string `yaml:"addr" json:"addr"`
	Metrics bool   `yaml:"metrics" json:"metrics"`
}

type MCPConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	Port      int    `yaml:"port" json:"port"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		Canvas:   domain.DefaultCanvas(),
		Store: StoreConfig{
			Driver: StoreMemory,
			Dir:    filepath.Join(".turtle", "sessions"),
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				Prefix:  "turtle:session:",
				LockTTL: Duration(30 * time.Second),
			},
		},
		HTTP: HTTPConfig{Addr: ":8080", Metrics: true},
		MCP:  MCPConfig{Transport: "stdio", Port: 8081},
	}
}

// Load reads path over the defaults. Files ending in .json are parsed as
// JSON, anything else as YAML. An empty path reads DefaultPath if it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := parse(data, path, &cfg); err != nil {
			return cfg, err
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func parse(data []byte, path string, cfg *Config) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvStore); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := os.Getenv(EnvEncryptionKey); v != "" {
		c.Store.EncryptionKey = v
	}
}

// Validate checks the values the CLI cannot fall back from.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("%w: canvas must be positive, got %dx%d", ErrInvalidConfig, c.Canvas.Width, c.Canvas.Height)
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("%w: store.dir is required for the file store", ErrInvalidConfig)
		}
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("%w: store.redis.addr is required for the redis store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}
	if c.Store.EncryptionKey == "" && len(c.Store.FallbackKeys) > 0 {
		return fmt.Errorf("%w: store.fallback_keys needs store.encryption_key", ErrInvalidConfig)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("%w: unknown mcp transport %q", ErrInvalidConfig, c.MCP.Transport)
	}
	return nil
}

// Duration is a time.Duration written as "30s" in config files.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	return d.set(s)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) set(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
