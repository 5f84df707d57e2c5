package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`

	// Feature flags for live carrier rating.
	DynamicRatingEnabled  bool `mapstructure:"DYNAMIC_RATING_ENABLED"`
	FrontendDynamicRating bool `mapstructure:"FRONTEND_DYNAMIC_RATING"`

	CarrierAPIURL string `mapstructure:"CARRIER_API_URL"`
	CarrierAPIKey string `mapstructure:"CARRIER_API_KEY"`

	StorefrontAPIVersion     string `mapstructure:"STOREFRONT_API_VERSION"`
	StorefrontTimeoutSeconds int    `mapstructure:"STOREFRONT_TIMEOUT_SECONDS"`

	// Calculator type assigned to tax rates created on the fly from
	// storefront checkout totals.
	TaxCalculator string `mapstructure:"TAX_CALCULATOR"`
	// Add other configurations as needed
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")  // Or "dotenv" or "json", "yaml" etc.

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STOREFRONT_API_VERSION", "2024-01")
	viper.SetDefault("STOREFRONT_TIMEOUT_SECONDS", 5)
	viper.SetDefault("TAX_CALCULATOR", "default_tax")

	viper.AutomaticEnv() // Read in environment variables that match

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {
		// Handle errors reading the config file, but allow it if it's just "not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
