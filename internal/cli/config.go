package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/pipeline"
	"github.com/matzehuels/popdyn/pkg/source"
	"github.com/matzehuels/popdyn/pkg/store"
)

// envPrefix prefixes environment overrides, e.g. POPDYN_STORE_DSN.
const envPrefix = "POPDYN"

// Config is the optional configuration file. Every key can also be set
// through the environment (POPDYN_ plus the upper-cased key with dots
// replaced by underscores).
type Config struct {
	Store  store.Config `mapstructure:"store"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Source SourceConfig `mapstructure:"source"`
	Layout LayoutConfig `mapstructure:"layout"`
	Server ServerConfig `mapstructure:"server"`
	Panels PanelsConfig `mapstructure:"panels"`
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Disabled bool   `mapstructure:"disabled"`
	Dir      string `mapstructure:"dir"`       // file cache directory
	RedisURL string `mapstructure:"redis_url"` // takes precedence over Dir

	// Namespace prefixes every key so several deployments can share one
	// Redis database.
	Namespace string `mapstructure:"namespace"`
}

// SourceConfig controls how remote datasets are fetched.
type SourceConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`     // cache lifetime of a fetched dataset
	Timeout time.Duration `mapstructure:"timeout"` // per-request timeout
	Refresh bool          `mapstructure:"refresh"` // ignore cached copies
}

// LayoutConfig holds the default treemap options.
type LayoutConfig struct {
	Width   float64 `mapstructure:"width"`
	Height  float64 `mapstructure:"height"`
	GroupBy string  `mapstructure:"group_by"`
	Padding float64 `mapstructure:"padding"`
}

// ServerConfig configures "serve".
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// PanelsConfig configures the panel controller.
type PanelsConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Viewport int           `mapstructure:"viewport"`
	Variant  string        `mapstructure:"variant"`
}

// Options returns the layout defaults as pipeline options.
func (l LayoutConfig) Options() pipeline.Options {
	return pipeline.Options{
		Width:   l.Width,
		Height:  l.Height,
		GroupBy: l.GroupBy,
	}.WithPadding(l.Padding)
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", store.DriverMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.database", store.DefaultMongoDatabase)

	v.SetDefault("cache.disabled", false)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.namespace", "")

	v.SetDefault("source.ttl", source.DefaultTTL)
	v.SetDefault("source.timeout", source.DefaultTimeout)
	v.SetDefault("source.refresh", false)

	v.SetDefault("layout.width", pipeline.DefaultWidth)
	v.SetDefault("layout.height", pipeline.DefaultHeight)
	v.SetDefault("layout.group_by", string(pipeline.DefaultGroupBy))
	v.SetDefault("layout.padding", 2.0)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("panels.interval", panels.DefaultInterval)
	v.SetDefault("panels.viewport", panels.DefaultViewport)
	v.SetDefault("panels.variant", string(panels.Asymmetric))
}

// defaultConfig returns the configuration used when no file is present.
func defaultConfig() *Config {
	cfg, err := loadConfig("", false)
	if err != nil {
		return &Config{}
	}
	return cfg
}

// loadConfig reads path, or config.{toml,yaml,json} from the config
// directory when path is empty and search is set. A missing default file
// is not an error; a missing explicit file is.
func loadConfig(path string, search bool) (*Config, error) {
	v := viper.New()
	setConfigDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case path != "":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	case search:
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
			v.SetConfigName("config")
			if err := v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return nil, fmt.Errorf("read config: %w", err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// configDir returns the config directory using XDG standard (~/.config/popdyn/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
