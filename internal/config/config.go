package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the reference API configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	ListenAddr     string `mapstructure:"listen_addr"`
	AuthToken      string `mapstructure:"auth_token"`
	SeedFile       string `mapstructure:"seed_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`

	ReadHeaderTimeoutSeconds int64         `mapstructure:"read_header_timeout"`
	ShutdownTimeoutSeconds   int64         `mapstructure:"shutdown_timeout"`
	ReadHeaderTimeout        time.Duration `mapstructure:"-"`
	ShutdownTimeout          time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "users-api")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":3000")
	v.SetDefault("auth_token", "")
	v.SetDefault("seed_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("storage_type", "memory")
	v.SetDefault("bbolt_path", "./data/users.db")
	v.SetDefault("read_header_timeout", 10) // seconds
	v.SetDefault("shutdown_timeout", 10)    // seconds

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))
	switch c.StorageType {
	case "", "none", "memory", "bbolt":
	default:
		return fmt.Errorf("invalid storage_type %q (expected memory or bbolt)", c.StorageType)
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.ReadHeaderTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid read_header_timeout (must be positive seconds)")
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid shutdown_timeout (must be positive seconds)")
	}
	c.ReadHeaderTimeout = time.Duration(c.ReadHeaderTimeoutSeconds) * time.Second
	c.ShutdownTimeout = time.Duration(c.ShutdownTimeoutSeconds) * time.Second
	return nil
}
