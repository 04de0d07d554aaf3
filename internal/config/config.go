package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// Config is the full runtime configuration: which accounts and regions
// to inventory, which services to collect, and where the store lives.
type Config struct {
	Accounts []types.Account `mapstructure:"accounts"`
	Regions  []string        `mapstructure:"regions"`
	Services []string        `mapstructure:"services"`
	Database DatabaseConfig  `mapstructure:"database"`
	Workers  int             `mapstructure:"workers"`
	// UnitTimeoutSeconds is the wall-clock budget for one
	// account/region extraction pass.
	UnitTimeoutSeconds int           `mapstructure:"unit_timeout_seconds"`
	Logging            LoggingConfig `mapstructure:"logging"`
}

// DatabaseConfig holds store settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// AllServices is every service name the collector understands, in
// dispatch order. Event services persist CloudTrail events; the rest
// reconcile resource snapshots.
var AllServices = []string{
	"ec2", "rds", "redshift", "vpc", "subnet", "eks", "lambda", "athena",
	"ec2_events", "rds_events", "vpc_events",
}

// Load reads configuration from the given file (or the default search
// path when empty), layered under DRIFTLOG_* environment overrides.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".driftlog"))
		}
	}

	v.SetEnvPrefix("DRIFTLOG")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine, defaults plus env cover local runs.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("regions", []string{"us-east-1"})
	v.SetDefault("services", AllServices)
	v.SetDefault("database.path", "driftlog.db")
	v.SetDefault("workers", 10)
	v.SetDefault("unit_timeout_seconds", 300)
	v.SetDefault("logging.level", "info")
}

// Validate rejects configurations the runner cannot act on.
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return fmt.Errorf("no accounts configured")
	}
	for _, account := range c.Accounts {
		if account.ID == "" {
			return fmt.Errorf("account with empty id")
		}
		if account.Role == "" {
			return fmt.Errorf("account %s has no role configured", account.ID)
		}
	}
	if len(c.Regions) == 0 {
		return fmt.Errorf("no regions configured")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	for _, svc := range c.Services {
		if !knownService(svc) {
			return fmt.Errorf("unknown service %q", svc)
		}
	}
	return nil
}

func knownService(name string) bool {
	for _, svc := range AllServices {
		if svc == name {
			return true
		}
	}
	return false
}
