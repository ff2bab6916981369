package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type RedisConfig struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

type FlavorConfig struct {
	// MaxDepth bounds the number of pairings walked from the queried ingredient.
	MaxDepth int `toml:"max_depth"`
}

type BreakerConfig struct {
	MaxRequests  uint32   `toml:"max_requests"`
	Interval     Duration `toml:"interval"`
	Timeout      Duration `toml:"timeout"`
	FailureRatio float64  `toml:"failure_ratio"`
	MinRequests  uint32   `toml:"min_requests"`
}

// Duration decodes TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type CategoryConfig struct {
	Name  string `toml:"name"`
	Color string `toml:"color"`
}

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Neo4j      Neo4jConfig      `toml:"neo4j"`
	Redis      RedisConfig      `toml:"redis"`
	Flavor     FlavorConfig     `toml:"flavor"`
	Breaker    BreakerConfig    `toml:"breaker"`
	Log        LogConfig        `toml:"log"`
	Categories []CategoryConfig `toml:"categories"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			User:     "neo4j",
			Database: "neo4j",
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "flavorgraph",
		},
		Flavor: FlavorConfig{MaxDepth: 3},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     Duration{time.Minute},
			Timeout:      Duration{30 * time.Second},
			FailureRatio: 0.6,
			MinRequests:  10,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default value.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	if c.Flavor.MaxDepth < 1 {
		return fmt.Errorf("flavor.max_depth must be at least 1, got %d", c.Flavor.MaxDepth)
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be in (0, 1], got %v", c.Breaker.FailureRatio)
	}
	for i, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("categories[%d]: name is required", i)
		}
	}
	return nil
}

// ApplyEnv overrides file settings with any environment variables that are set.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"PORT":           &c.Server.Port,
		"NEO4J_URI":      &c.Neo4j.URI,
		"NEO4J_USER":     &c.Neo4j.User,
		"NEO4J_PASSWORD": &c.Neo4j.Password,
		"NEO4J_DATABASE": &c.Neo4j.Database,
		"REDIS_ADDR":     &c.Redis.Addr,
		"REDIS_PASSWORD": &c.Redis.Password,
		"LOG_LEVEL":      &c.Log.Level,
		"LOG_FORMAT":     &c.Log.Format,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_ENABLED %q: %w", v, err)
		}
		c.Redis.Enabled = enabled
	}
	if v := os.Getenv("FLAVOR_MAX_DEPTH"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FLAVOR_MAX_DEPTH %q: %w", v, err)
		}
		c.Flavor.MaxDepth = depth
	}
	return c.Validate()
}
