// Package config loads runtime settings from defaults, an optional YAML file
// and SHREEJIDA_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/darshit3596/shreejida/internal/model"
)

// EnvPrefix prefixes every environment override, e.g. SHREEJIDA_LOG_LEVEL.
const EnvPrefix = "SHREEJIDA"

const appDir = "shreejida"

type Config struct {
	// SlotPath is the YAML file remembering the current database file.
	SlotPath string

	// LogLevel is one of debug, info, warn, error. Defaults to warn.
	LogLevel string

	// Shop seeds the settings of newly created database files.
	Shop ShopConfig
}

type ShopConfig struct {
	Name      string
	TagLine   string
	Address   string
	Signatory string
	Term1     string
	Term2     string
	Term3     string
}

// Load reads the configuration. An explicit path must exist; without one,
// config.yaml in the user config directory is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := model.DefaultSettings()
	v.SetDefault("slot_path", defaultSlotPath())
	v.SetDefault("log_level", "warn")
	v.SetDefault("shop.name", defaults.ShopName)
	v.SetDefault("shop.tag_line", defaults.TagLine)
	v.SetDefault("shop.address", defaults.Address)
	v.SetDefault("shop.signatory", defaults.Signatory)
	v.SetDefault("shop.term1", defaults.Term1)
	v.SetDefault("shop.term2", defaults.Term2)
	v.SetDefault("shop.term3", defaults.Term3)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(dir, appDir))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("load config: %w", err)
			}
		}
	}

	cfg := &Config{
		SlotPath: v.GetString("slot_path"),
		LogLevel: v.GetString("log_level"),
		Shop: ShopConfig{
			Name:      v.GetString("shop.name"),
			TagLine:   v.GetString("shop.tag_line"),
			Address:   v.GetString("shop.address"),
			Signatory: v.GetString("shop.signatory"),
			Term1:     v.GetString("shop.term1"),
			Term2:     v.GetString("shop.term2"),
			Term3:     v.GetString("shop.term3"),
		},
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// DefaultSettings are the settings written into a new database file.
func (c *Config) DefaultSettings() model.Settings {
	s := model.DefaultSettings()
	s.ShopName = c.Shop.Name
	s.TagLine = c.Shop.TagLine
	s.Address = c.Shop.Address
	s.Signatory = c.Shop.Signatory
	s.Term1 = c.Shop.Term1
	s.Term2 = c.Shop.Term2
	s.Term3 = c.Shop.Term3
	return s
}

func defaultSlotPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+appDir, "handle.yaml")
	}
	return filepath.Join(dir, appDir, "handle.yaml")
}
