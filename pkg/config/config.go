package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variable.
type Config struct {
	// Database Configurations
	DBPath string `mapstructure:"DB_PATH"`

	// Server Configurations
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`

	// Command Execution Configurations
	CommandTimeoutSeconds int `mapstructure:"COMMAND_TIMEOUT_SECONDS"`
	SocketReadTimeoutMs   int `mapstructure:"SOCKET_READ_TIMEOUT_MS"`
	ResponseExcerptBytes  int `mapstructure:"RESPONSE_EXCERPT_BYTES"`

	// Discovery Configurations
	DiscoveryCIDR              string `mapstructure:"DISCOVERY_CIDR"`
	DiscoveryPorts             string `mapstructure:"DISCOVERY_PORTS"`
	DiscoveryWorkerConcurrency int    `mapstructure:"DISCOVERY_WORKER_CONCURRENCY"`
	DiscoveryIntervalSeconds   int    `mapstructure:"DISCOVERY_INTERVAL_SECONDS"`
	DiscoveryProbeTimeoutMs    int    `mapstructure:"DISCOVERY_PROBE_TIMEOUT_MS"`
	DiscoveryStaleAfterMinutes int    `mapstructure:"DISCOVERY_STALE_AFTER_MINUTES"`

	// Seeding
	SeedOnStart bool `mapstructure:"SEED_ON_START"`

	// Authentication
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	AdminUser            string `mapstructure:"AVRCTL_ADMIN_USER"`
	AdminHash            string `mapstructure:"AVRCTL_ADMIN_HASH"`
	SessionDurationHours int    `mapstructure:"SESSION_DURATION_HOURS"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// 1. Set Defaults
	v.SetDefault("DB_PATH", "data/avrctl.db")
	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("COMMAND_TIMEOUT_SECONDS", 5)
	v.SetDefault("SOCKET_READ_TIMEOUT_MS", 2000)
	v.SetDefault("RESPONSE_EXCERPT_BYTES", 512)
	v.SetDefault("DISCOVERY_CIDR", "")
	v.SetDefault("DISCOVERY_PORTS", "80,8080,23")
	v.SetDefault("DISCOVERY_WORKER_CONCURRENCY", 8)
	v.SetDefault("DISCOVERY_INTERVAL_SECONDS", 300)
	v.SetDefault("DISCOVERY_PROBE_TIMEOUT_MS", 1500)
	v.SetDefault("DISCOVERY_STALE_AFTER_MINUTES", 30)
	v.SetDefault("SEED_ON_START", true)
	v.SetDefault("JWT_SECRET", "default-insecure-secret-change-me")
	v.SetDefault("AVRCTL_ADMIN_USER", "admin")
	v.SetDefault("AVRCTL_ADMIN_HASH", "$2a$10$BST/uOdLLXUyqO4fN.b9cuwVwoXEJWWFzpc4iirHiu3GcgbuJqtdu")
	v.SetDefault("SESSION_DURATION_HOURS", 24)

	// 2. Read app.yaml if exists
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// 3. Read .env if exists (overriding app.yaml)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Ignore if .env is missing
		}
	}

	// 4. Allow Viper to read Environment Variables (highest priority)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
