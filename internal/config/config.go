// Package config loads eshop settings from an optional file, ESHOP_* environment
// variables and a few legacy variable names.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Browser drivers.
const (
	BrowserHTML     = "html"
	BrowserSelenium = "selenium"
	BrowserRod      = "rod"
)

type AppConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"` // scheme and host the app is reached on, without port
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"` // Secret
}

type RedisConfig struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	DB     int    `mapstructure:"db" yaml:"db"`
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// AuthConfig guards the JSON API write routes.
//
// WARNING: contains secrets, do not log.
type AuthConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	AdminUsername     string `mapstructure:"admin_username" yaml:"admin_username"`
	AdminPasswordHash string `mapstructure:"admin_password_hash" yaml:"admin_password_hash"` // bcrypt
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" yaml:"rps"` // 0 disables limiting
	Burst int     `mapstructure:"burst" yaml:"burst"`
}

type BrowserConfig struct {
	Driver      string        `mapstructure:"driver" yaml:"driver"`
	SeleniumURL string        `mapstructure:"selenium_url" yaml:"selenium_url"`
	Headless    bool          `mapstructure:"headless" yaml:"headless"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ChromeBin   string        `mapstructure:"chrome_bin" yaml:"chrome_bin"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Config wraps the entire eshop configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app" yaml:"app"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Browser   BrowserConfig   `mapstructure:"browser" yaml:"browser"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

var defaults = map[string]any{
	"app.base_url":             "http://localhost",
	"server.port":              8080,
	"server.read_timeout":      10 * time.Second,
	"server.write_timeout":     10 * time.Second,
	"server.shutdown_timeout":  5 * time.Second,
	"storage.driver":           StorageMemory,
	"redis.addr":               "localhost:6379",
	"redis.db":                 0,
	"redis.prefix":             "eshop",
	"auth.jwt_secret":          "",
	"auth.admin_username":      "admin",
	"auth.admin_password_hash": "",
	"rate_limit.rps":           20.0,
	"rate_limit.burst":         40,
	"browser.driver":           BrowserHTML,
	"browser.selenium_url":     "http://localhost:4444/wd/hub",
	"browser.headless":         true,
	"browser.timeout":          10 * time.Second,
	"browser.chrome_bin":       "",
	"log.level":                "info",
	"log.development":          false,
	"database.url":             "",
}

// envBindings maps config keys to legacy environment variable names, checked
// after the ESHOP_ prefixed name.
var envBindings = map[string][]string{
	"database.url":    {"DATABASE_URL"},
	"redis.addr":      {"REDIS_ADDR"},
	"auth.jwt_secret": {"JWT_SECRET"},
	"app.base_url":    {"APP_BASE_URL"},
}

// Load reads filePath when it is non-empty and exists, then applies
// environment overrides.
func Load(filePath string) (*Config, error) {
	v := newViper()

	if filePath != "" {
		v.SetConfigFile(filePath)
		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", filePath, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with no file and no environment applied.
func Default() *Config {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix("ESHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envs := range envBindings {
		prefixed := "ESHOP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		inputs := slices.Concat([]string{key, prefixed}, envs)
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(inputs...)
	}
	return v
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres, StorageRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Browser.Driver {
	case BrowserHTML, BrowserSelenium, BrowserRod:
	default:
		return fmt.Errorf("unknown browser driver %q", c.Browser.Driver)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.RateLimit.RPS < 0 {
		return errors.New("rate_limit.rps cannot be negative")
	}
	return nil
}

// BaseURL composes the request origin from a scheme/host and a port,
// e.g. "http://localhost" and 8080 give "http://localhost:8080".
func BaseURL(host string, port int) string {
	return fmt.Sprintf("%s:%d", strings.TrimRight(host, "/"), port)
}
