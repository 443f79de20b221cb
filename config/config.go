package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Parser    ParserConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig holds food database and block store paths
type StoreConfig struct {
	FoodDir  string `mapstructure:"food_dir"`
	BlocksDB string `mapstructure:"blocks_db"`
}

// CacheConfig holds parsed-block cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// ParserConfig holds parser/resolver behavior toggles
type ParserConfig struct {
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/macronotes/")

	// Environment variable settings
	v.SetEnvPrefix("MACRONOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*", "app://*"})

	// Store defaults
	v.SetDefault("store.food_dir", "./foods")
	v.SetDefault("store.blocks_db", "./blocks.db")

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Parser defaults
	v.SetDefault("parser.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Store.FoodDir == "" {
		return fmt.Errorf("food directory is required (set MACRONOTES_STORE_FOOD_DIR)")
	}

	if config.Store.BlocksDB == "" {
		return fmt.Errorf("blocks database path is required (set MACRONOTES_STORE_BLOCKS_DB)")
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %s", config.Cache.TTL)
	}

	return nil
}
