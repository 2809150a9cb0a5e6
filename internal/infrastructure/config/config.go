package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration
type Config struct {
	App       AppConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Shopify   ShopifyConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// AppConfig holds the public URL and listen port
type AppConfig struct {
	URL      string
	Port     string
	LogLevel string
}

// MongoConfig holds the database connection
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds the cache connection. An empty URL selects in-memory stores.
type RedisConfig struct {
	URL string
}

// ShopifyConfig holds the app credentials issued by the partner dashboard
type ShopifyConfig struct {
	APIKey     string
	APISecret  string
	Scopes     []string
	APIVersion string
}

// SecurityConfig holds token encryption and embedded-admin settings
type SecurityConfig struct {
	EncryptionKey         string
	SessionTokensRequired bool
	FrameAncestors        string
}

// RateLimitConfig throttles remote-mutating endpoints per store
type RateLimitConfig struct {
	Window time.Duration
	Max    int
}

// CacheConfig controls config-resolution caching
type CacheConfig struct {
	ConfigTTL time.Duration
}

// Load reads configuration from an optional .env file, an optional config.yaml
// and the environment. Environment variables win.
func Load() (*Config, error) {
	// .env is optional; the process environment is used as-is when it is missing
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			URL:      strings.TrimRight(v.GetString("app_url"), "/"),
			Port:     v.GetString("port"),
			LogLevel: v.GetString("log_level"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongodb_uri"),
			Database: v.GetString("mongodb_database"),
		},
		Redis: RedisConfig{
			URL: v.GetString("redis_url"),
		},
		Shopify: ShopifyConfig{
			APIKey:     v.GetString("shopify_api_key"),
			APISecret:  v.GetString("shopify_api_secret"),
			Scopes:     splitList(v.GetString("shopify_scopes")),
			APIVersion: v.GetString("shopify_api_version"),
		},
		Security: SecurityConfig{
			EncryptionKey:         v.GetString("encryption_key"),
			SessionTokensRequired: v.GetBool("session_tokens_required"),
			FrameAncestors:        v.GetString("frame_ancestors"),
		},
		RateLimit: RateLimitConfig{
			Window: v.GetDuration("rate_limit_window"),
			Max:    v.GetInt("rate_limit_max"),
		},
		Cache: CacheConfig{
			ConfigTTL: v.GetDuration("config_cache_ttl"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_url", "http://localhost:8080")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("mongodb_uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb_database", "sif_shopify")
	v.SetDefault("redis_url", "")
	v.SetDefault("shopify_api_key", "")
	v.SetDefault("shopify_api_secret", "")
	v.SetDefault("shopify_scopes", "read_products,read_themes,write_themes,read_script_tags,write_script_tags")
	v.SetDefault("shopify_api_version", "2025-01")
	v.SetDefault("encryption_key", "")
	v.SetDefault("session_tokens_required", false)
	v.SetDefault("frame_ancestors", "https://*.myshopify.com https://admin.shopify.com")
	v.SetDefault("rate_limit_window", "10s")
	v.SetDefault("rate_limit_max", 3)
	v.SetDefault("config_cache_ttl", "30s")
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.Security.EncryptionKey == "" {
		return errors.New("ENCRYPTION_KEY is required")
	}
	if c.Shopify.APIKey == "" || c.Shopify.APISecret == "" {
		return errors.New("SHOPIFY_API_KEY and SHOPIFY_API_SECRET are required")
	}
	if c.RateLimit.Window <= 0 || c.RateLimit.Max <= 0 {
		return fmt.Errorf("invalid rate limit: %d per %s", c.RateLimit.Max, c.RateLimit.Window)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
