// Package config loads defaults for reachgrep's CLI flags from an
// optional YAML file, grounded on the teacher's cmd/root.go
// viper/cobra wiring. CLI flags always take precedence over whatever a
// config file supplies.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the subset of reachgrep search flags a config file can
// default.
type Config struct {
	Ignore  []string `mapstructure:"ignore"`
	CacheDB string   `mapstructure:"cache_db"`
	Color   bool     `mapstructure:"color"`
	Legacy  bool     `mapstructure:"legacy"`
}

// Load reads cfgFile if given, otherwise looks for .reachgrep.yaml in
// the current directory and the user's home directory. A missing
// config file is not an error - Config's zero value is used instead.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".reachgrep")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
