package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. CONSOLIDATOR_WORKERS=4
const EnvPrefix = "CONSOLIDATOR"

// Config represents the application configuration
type Config struct {
	MinColumns     int               `mapstructure:"min_columns"`
	Workers        int               `mapstructure:"workers"`
	OutputFormat   string            `mapstructure:"output_format"`
	LogLevel       string            `mapstructure:"log_level"`
	AccountHolders map[string]string `mapstructure:"account_holders"` // holder code -> full name
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("min_columns", 5)
	v.SetDefault("workers", 1)
	v.SetDefault("output_format", "csv")
	v.SetDefault("log_level", "info")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Default returns the configuration used when no config file is given.
// Environment overrides still apply.
func Default() (*Config, error) {
	return decode(newViper())
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// viper lower-cases map keys; holder codes in file names are upper case.
	holders := make(map[string]string, len(config.AccountHolders))
	for code, name := range config.AccountHolders {
		holders[strings.ToUpper(code)] = name
	}
	config.AccountHolders = holders
	config.OutputFormat = strings.ToLower(strings.TrimSpace(config.OutputFormat))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.MinColumns < 1 {
		return fmt.Errorf("min_columns must be at least 1, got %d", c.MinColumns)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.OutputFormat {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("output_format must be csv or xlsx, got %q", c.OutputFormat)
	}
	return nil
}
