// Package config loads the service configuration from a YAML file,
// environment variables, and built-in defaults, in that order of
// precedence from lowest to highest for env over file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Log     Log     `mapstructure:"log"`
	Cache   Cache   `mapstructure:"cache"`
	Store   Store   `mapstructure:"store"`
	Metrics Metrics `mapstructure:"metrics"`
	Fetch   Fetch   `mapstructure:"fetch"`
	Sites   []Site  `mapstructure:"sites"`
}

type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// Cache selects the raw-page cache backend. The redis backend is shared
// across processes; memory is per-process and mainly for development.
type Cache struct {
	Backend  string `mapstructure:"backend"` // redis or memory
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Store selects the snapshot persistence backend.
type Store struct {
	Driver string `mapstructure:"driver"` // sqlite or postgres
	DSN    string `mapstructure:"dsn"`
}

type Metrics struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Fetch tunes the shared page fetcher.
type Fetch struct {
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	MaxRedirects   int      `mapstructure:"max_redirects"`
	Fingerprint    string   `mapstructure:"fingerprint"`
	RatePerSecond  float64  `mapstructure:"rate_per_second"`
	RateJitter     float64  `mapstructure:"rate_jitter"`
	Proxies        []string `mapstructure:"proxies"`
}

// Site declares one tracker to poll. Cookie is the site's opaque
// credential; it is passed through to requests and never logged.
type Site struct {
	Name     string `mapstructure:"name"`
	Cookie   string `mapstructure:"cookie"`
	Schedule string `mapstructure:"schedule"`
}

// Load reads configuration from path, or from the default search
// locations when path is empty. A missing file is not an error; defaults
// and SEEDWATCH_* environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/seedwatch")
	}

	v.SetEnvPrefix("SEEDWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.address", "127.0.0.1:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "seedwatch.db")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9121)
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.max_redirects", 3)
	v.SetDefault("fetch.fingerprint", "chrome")
	v.SetDefault("fetch.rate_per_second", 1)
	v.SetDefault("fetch.rate_jitter", 0.3)
}

// Validate rejects configurations that could not be acted on.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Address == "" {
		return errors.New("cache.address is required for the redis backend")
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return errors.New("store.dsn is required")
	}

	seen := make(map[string]bool, len(c.Sites))
	for i, site := range c.Sites {
		if site.Name == "" {
			return fmt.Errorf("sites[%d]: name is required", i)
		}
		if site.Cookie == "" {
			return fmt.Errorf("site %s: cookie is required", site.Name)
		}
		if seen[site.Name] {
			return fmt.Errorf("site %s is configured twice", site.Name)
		}
		seen[site.Name] = true
	}
	return nil
}
