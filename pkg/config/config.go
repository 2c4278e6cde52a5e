package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/dfim/dfim/pkg/history"
	"github.com/dfim/dfim/pkg/telemetry"
)

// SettingsFile is the settings file name, without extension, in the config
// directory.
const SettingsFile = "settings"

// EnvPrefix prefixes every settings environment variable.
const EnvPrefix = "DFIM"

// Settings is the host configuration.
type Settings struct {
	// PluginDir is the plugin root searched by require.
	PluginDir string `mapstructure:"plugin_dir" validate:"required"`

	// HistoryFile is the REPL history database.
	HistoryFile string `mapstructure:"history_file" validate:"required"`

	// HistorySize is the number of history lines kept. Zero keeps all.
	HistorySize int `mapstructure:"history_size" validate:"gte=0"`

	// Logging configures log output.
	Logging telemetry.LoggingConfig `mapstructure:"logging"`
}

// HistoryConfig returns the history store configuration.
func (s *Settings) HistoryConfig() history.Config {
	return history.Config{Path: s.HistoryFile, MaxLines: s.HistorySize}
}

// LoadOptions controls where settings are read from.
type LoadOptions struct {
	// Dirs supplies default paths and the settings search directory.
	Dirs Dirs

	// File is an explicit settings file. It must exist when set.
	File string
}

var validate = validator.New()

// Load reads settings from the settings file, if any, and the environment.
func Load(opts LoadOptions) (*Settings, error) {
	v := viper.New()
	setDefaults(v, opts.Dirs)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("logging.level", "DFIM_LOG_LEVEL")
	_ = v.BindEnv("logging.format", "DFIM_LOG_FORMAT")

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.AddConfigPath(opts.Dirs.Config)
		v.SetConfigName(SettingsFile)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.PluginDir = expandHome(s.PluginDir)
	s.HistoryFile = expandHome(s.HistoryFile)

	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

func setDefaults(v *viper.Viper, dirs Dirs) {
	logging := telemetry.DefaultLoggingConfig()

	v.SetDefault("plugin_dir", dirs.PluginDir())
	v.SetDefault("history_file", dirs.HistoryFile())
	v.SetDefault("history_size", 1000)
	v.SetDefault("logging.level", logging.Level)
	v.SetDefault("logging.format", logging.Format)
	v.SetDefault("logging.output", logging.Output)
	v.SetDefault("logging.time_format", logging.TimeFormat)
	v.SetDefault("logging.caller", logging.EnableCaller)
	v.SetDefault("logging.no_color", logging.NoColor)
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
