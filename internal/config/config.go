package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the application
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// StoreConfig identifies the store pages are generated for
type StoreConfig struct {
	StoreID       string   `mapstructure:"store_id"`
	Locales       []string `mapstructure:"locales"`
	DefaultLocale string   `mapstructure:"default_locale"`
}

// PathsConfig describes where static paths come from and how they are fetched
type PathsConfig struct {
	SitemapURL           string   `mapstructure:"sitemap_url"`
	Static               []string `mapstructure:"static"`
	SkipUnroutable       bool     `mapstructure:"skip_unroutable"`
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxWorkers           int      `mapstructure:"max_workers"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
	Workers       int    `mapstructure:"workers"`
}

// Load loads configuration from a YAML file with environment variable overrides.
// An empty path means config.yaml in the current directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config.yaml file not found in current directory")
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate fails fast on missing store options or a missing path source
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Store.StoreID) == "" {
		problems = append(problems, "store.store_id is required")
	}
	if len(c.Store.Locales) == 0 {
		problems = append(problems, "store.locales is required")
	}
	for _, locale := range c.Store.Locales {
		if strings.TrimSpace(locale) == "" {
			problems = append(problems, "store.locales must not contain empty values")
			break
		}
	}
	if strings.TrimSpace(c.Store.DefaultLocale) == "" {
		problems = append(problems, "store.default_locale is required")
	}

	if c.Paths.SitemapURL == "" && len(c.Paths.Static) == 0 {
		problems = append(problems, "one of paths.sitemap_url or paths.static is required")
	}
	if c.Paths.MaxRequestsPerSecond <= 0 {
		problems = append(problems, "paths.max_requests_per_second must be positive")
	}
	if c.Paths.MaxWorkers <= 0 {
		problems = append(problems, "paths.max_workers must be positive")
	}
	if c.Redis.Workers <= 0 {
		problems = append(problems, "redis.workers must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.store_id", "")
	v.SetDefault("store.locales", []string{})
	v.SetDefault("store.default_locale", "")

	v.SetDefault("paths.sitemap_url", "")
	v.SetDefault("paths.static", []string{})
	v.SetDefault("paths.skip_unroutable", false)
	v.SetDefault("paths.timeout", 30)
	v.SetDefault("paths.max_retries", 3)
	v.SetDefault("paths.max_workers", 4)
	v.SetDefault("paths.max_requests_per_second", 10)
	v.SetDefault("paths.proxies", []string{})

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "storefront")
	v.SetDefault("database.user", "storefront_user")
	v.SetDefault("database.password", "storefront_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "storefront_pages")
	v.SetDefault("redis.min_idle_time", 120)
	v.SetDefault("redis.workers", 4)
}
