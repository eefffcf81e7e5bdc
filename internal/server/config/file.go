package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/dmitrijs2005/pantrykeeper/internal/flagx"
)

// parseFile overlays cfg with the config file passed via -c/-config.
// JSON, YAML and TOML are accepted; durations are written as "15m", "24h".
// Keys missing from the file leave cfg untouched.
func parseFile(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}
	return readFile(cfg, path)
}

func readFile(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	return nil
}
