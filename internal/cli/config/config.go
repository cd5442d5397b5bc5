package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/splashsync/connector/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. SPLASH_SERVER_PORT
const EnvPrefix = "SPLASH"

// Config represents the connector configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Commit   CommitConfig   `mapstructure:"commit"`
	Log      logging.Config `mapstructure:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	Host      string `mapstructure:"host"`
	APIPrefix string `mapstructure:"api_prefix"`
	// PprofAddr serves pprof on a separate listener when set
	PprofAddr string `mapstructure:"pprof_addr"`
}

// Address returns host:port
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

// CacheConfig selects the cache backend placed in front of the store
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// CommitConfig controls commit intake and periodic flushing
type CommitConfig struct {
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	// RateLimit caps commit requests per object type and minute; 0 disables it
	RateLimit int `mapstructure:"rate_limit"`
}

// Load reads splash.yml or splash.yaml from the working directory.
// A missing file is not an error; defaults and environment apply.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads the given config file, or searches the working directory
// when path is empty.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("splash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.api_prefix", "")
	v.SetDefault("server.pprof_addr", "")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "file:splash.db?cache=shared")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("commit.flush_interval", 10*time.Second)
	v.SetDefault("commit.rate_limit", 600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// GetDatabaseURL returns the database URL from DATABASE_URL or the config
func GetDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	cfg, err := Load()
	if err != nil {
		return ""
	}
	return cfg.Database.URL
}

// FindConfigFile walks up from the working directory looking for splash.yml
func FindConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, name := range []string{"splash.yml", "splash.yaml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no splash.yml found")
		}
		dir = parent
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Server.APIPrefix != "" {
		if !strings.HasPrefix(cfg.Server.APIPrefix, "/") {
			return fmt.Errorf("server.api_prefix must start with '/', got: %s", cfg.Server.APIPrefix)
		}
		if strings.HasSuffix(cfg.Server.APIPrefix, "/") {
			return fmt.Errorf("server.api_prefix must not end with '/', got: %s", cfg.Server.APIPrefix)
		}
	}

	switch cfg.Database.Driver {
	case "sqlite3", "pgx", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite3, pgx or postgres, got: %s", cfg.Database.Driver)
	}

	switch cfg.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got: %s", cfg.Cache.Backend)
	}

	if cfg.Commit.RateLimit < 0 {
		return fmt.Errorf("commit.rate_limit must not be negative, got: %d", cfg.Commit.RateLimit)
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
