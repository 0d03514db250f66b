package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	JWT       JWTConfig
	Haravan   HaravanConfig
	N8N       N8NConfig
	Security  SecurityConfig
	Campaign  CampaignConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds admin JWT configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// HaravanConfig holds discount platform API configuration
type HaravanConfig struct {
	BaseURL      string
	AuthToken    string
	CollectionID int64
	MockAPI      bool
}

// N8NConfig holds automation webhook configuration
type N8NConfig struct {
	WebhookURL string
	APIKey     string
	Secret     string
}

// SecurityConfig holds secrets shared across environments
type SecurityConfig struct {
	// PhonePepper must be identical everywhere phone hashes are computed;
	// a mismatched pepper makes the same phone hash to different values.
	PhonePepper string
}

// CampaignConfig holds campaign defaults
type CampaignConfig struct {
	DefaultID string
}

// RateLimitConfig holds request throttling configuration
type RateLimitConfig struct {
	APIRequests   int // per IP per window
	APIWindowSec  int
	SpinRequests  int // per IP+phone per window
	SpinWindowSec int
}

// LoadConfig loads configuration from a config file and environment variables
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; environment variables cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "3000")
	viper.SetDefault("Server.AllowedHosts", []string{"http://localhost:5173", "http://localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "luckywheel")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("Haravan.BaseURL", "https://apis.haravan.com")
	viper.SetDefault("Haravan.CollectionID", 1004564978)
	viper.SetDefault("Haravan.MockAPI", true)
	viper.SetDefault("Security.PhonePepper", "default-pepper-change-me")
	viper.SetDefault("Campaign.DefaultID", "lucky-wheel-2025-10-14")
	viper.SetDefault("RateLimit.APIRequests", 100)
	viper.SetDefault("RateLimit.APIWindowSec", 15*60)
	viper.SetDefault("RateLimit.SpinRequests", 5)
	viper.SetDefault("RateLimit.SpinWindowSec", 60*60)
	viper.SetDefault("LogLevel", "info")
}
