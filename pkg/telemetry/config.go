package telemetry

import (
	"fmt"
	"strings"
)

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error, fatal).
	Level string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error fatal"`

	// Format specifies the log format (console, json).
	Format string `mapstructure:"format" validate:"omitempty,oneof=console json"`

	// Output specifies where logs are written (stdout, stderr, file path).
	Output string `mapstructure:"output"`

	// TimeFormat is the timestamp format (rfc3339, unix, unixms, unixmicro).
	TimeFormat string `mapstructure:"time_format" validate:"omitempty,oneof=rfc3339 unix unixms unixmicro"`

	// EnableCaller adds file:line caller information to logs.
	EnableCaller bool `mapstructure:"caller"`

	// NoColor disables colour in console output.
	NoColor bool `mapstructure:"no_color"`
}

// DefaultLoggingConfig returns console logging to stderr at warn level.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      "warn",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "rfc3339",
	}
}

// Validate checks the configuration for values NewLogger cannot honour.
func (c LoggingConfig) Validate() error {
	if c.Level != "" && !validLevel(c.Level) {
		return fmt.Errorf("invalid log level: %s", c.Level)
	}
	switch c.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Format)
	}
	return nil
}

// LevelFromVerbosity maps the quiet flag and the verbose flag count to a
// level name. Quiet wins over verbose.
func LevelFromVerbosity(quiet bool, verbose int) string {
	switch {
	case quiet:
		return "error"
	case verbose <= 0:
		return "warn"
	case verbose == 1:
		return "info"
	case verbose == 2:
		return "debug"
	default:
		return "trace"
	}
}

func validLevel(level string) bool {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "error", "fatal":
		return true
	}
	return false
}
