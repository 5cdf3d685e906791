// Package config loads device configuration from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration knobs for a device.
type Config struct {
	Storage struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"storage"`
	Presence struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"presence"`
	Gatekeeper struct {
		InviteGap time.Duration `mapstructure:"invite_gap"`
	} `mapstructure:"gatekeeper"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Load reads the configuration from disk/environment using Viper. A
// missing file is not an error; defaults and VIBELINK_* environment
// variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("vibelink")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Presence.Interval <= 0 {
		return nil, fmt.Errorf("presence.interval must be positive, got %s", cfg.Presence.Interval)
	}
	if cfg.Gatekeeper.InviteGap < 0 {
		return nil, fmt.Errorf("gatekeeper.invite_gap must not be negative, got %s", cfg.Gatekeeper.InviteGap)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.path", "./data/vibelink.db")
	v.SetDefault("presence.interval", "10s")
	v.SetDefault("gatekeeper.invite_gap", "2s")
	v.SetDefault("log.level", "info")
}
