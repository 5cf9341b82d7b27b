package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Logger   Logger   `mapstructure:"logger"`
	Jupiter  Jupiter  `mapstructure:"jupiter"`
	Solana   Solana   `mapstructure:"solana"`
	Trading  Trading  `mapstructure:"trading"`
}

// Server holds the configuration for the HTTP API.
type Server struct {
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// Database holds the configuration for the trade ledger store.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Jupiter holds the configuration for the Jupiter Ultra API client.
type Jupiter struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// Solana holds the RPC endpoint and the signing key.
type Solana struct {
	RPCURL string `mapstructure:"rpc_url"`
	// SignerKey is the base58-encoded private key used to sign every
	// outgoing swap transaction.
	SignerKey string `mapstructure:"signer_key"`
}

// Trading holds the fixed base asset every buy spends and all PNL is
// denominated in.
type Trading struct {
	BaseMint string `mapstructure:"base_mint"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 5600)
	viper.SetDefault("database.dsn", "data/trades.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("jupiter.base_url", "https://lite-api.jup.ag/ultra/v1")
	viper.SetDefault("jupiter.rate_limit", 10) // requests per second
	viper.SetDefault("jupiter.rate_limit_burst", 5)
	viper.SetDefault("jupiter.timeout_seconds", 15)
	viper.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if config.Solana.SignerKey == "" {
		err = fmt.Errorf("solana.signer_key is not set")
		return
	}
	if config.Trading.BaseMint == "" {
		err = fmt.Errorf("trading.base_mint is not set")
		return
	}
	return
}
