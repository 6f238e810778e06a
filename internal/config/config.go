// Package config defines the data structures related to configuration and
// includes functions for loading and checking it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/iwvelando/rental-quote/internal/store"
	"github.com/iwvelando/rental-quote/internal/tariff"
	"github.com/iwvelando/rental-quote/pkg/constants"
	"github.com/iwvelando/rental-quote/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for rental-quote.
type Configuration struct {
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
	Output      OutputConfig      `yaml:"output,omitempty"`
	Storage     StorageConfig     `yaml:"storage,omitempty"`
	Tariffs     TariffConfig      `yaml:"tariffs,omitempty"`
	Preferences PreferencesConfig `yaml:"preferences,omitempty"`
	Clipboard   ClipboardConfig   `yaml:"clipboard,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, summary
}

// StorageConfig selects where overrides and preferences are persisted.
type StorageConfig struct {
	Backend string      `yaml:"backend,omitempty"` // file, redis, memory
	Path    string      `yaml:"path,omitempty"`
	Redis   RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig configures the redis storage backend.
type RedisConfig struct {
	Addr      string `yaml:"addr,omitempty"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db,omitempty"`
	KeyPrefix string `yaml:"keyPrefix,omitempty"`
}

// TariffConfig optionally replaces the shipped season tables.
type TariffConfig struct {
	SummerFile string `yaml:"summerFile,omitempty"`
	AutumnFile string `yaml:"autumnFile,omitempty"`
}

// PreferencesConfig holds defaults for operator preferences.
type PreferencesConfig struct {
	DefaultTheme string `yaml:"defaultTheme,omitempty"`
}

// ClipboardConfig names the programs that receive copied and shared text.
// Text is written to their standard input.
type ClipboardConfig struct {
	Command      []string `yaml:"command,omitempty"`
	ShareCommand []string `yaml:"shareCommand,omitempty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputfile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("storage.backend", constants.StorageBackendFile)
	v.SetDefault("storage.path", constants.DefaultStatePath)
	v.SetDefault("storage.redis.addr", constants.DefaultRedisAddr)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.keyprefix", constants.DefaultRedisKeyPrefix)
	v.SetDefault("tariffs.summerfile", "")
	v.SetDefault("tariffs.autumnfile", "")
	v.SetDefault("preferences.defaulttheme", constants.ThemeLight)
	v.SetDefault("clipboard.command", []string{})
	v.SetDefault("clipboard.sharecommand", []string{})
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file yields the defaults. Any key can be
// overridden from the environment, e.g. RENTAL_QUOTE_STORAGE_BACKEND=redis.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &configuration, nil
}

// Validate reports the first setting that cannot be used.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if err := validation.ValidateStorageBackend(c.Storage.Backend); err != nil {
		return err
	}
	if err := validation.ValidateTheme(c.Preferences.DefaultTheme); err != nil {
		return fmt.Errorf("preferences: %w", err)
	}
	return nil
}

// StoreOptions converts the storage section for store.Open.
func (c *Configuration) StoreOptions() store.Options {
	return store.Options{
		Backend: c.Storage.Backend,
		Path:    c.Storage.Path,
		Redis: store.RedisOptions{
			Addr:      c.Storage.Redis.Addr,
			Password:  c.Storage.Redis.Password,
			DB:        c.Storage.Redis.DB,
			KeyPrefix: c.Storage.Redis.KeyPrefix,
		},
	}
}

// LoadCatalog builds the tariff catalog, reading any configured table files.
func (c *Configuration) LoadCatalog() (tariff.Catalog, error) {
	return tariff.LoadCatalog(c.Tariffs.SummerFile, c.Tariffs.AutumnFile)
}
