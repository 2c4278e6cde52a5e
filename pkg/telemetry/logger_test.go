package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		quiet   bool
		verbose int
		want    string
	}{
		{quiet: false, verbose: 0, want: "warn"},
		{quiet: false, verbose: 1, want: "info"},
		{quiet: false, verbose: 2, want: "debug"},
		{quiet: false, verbose: 5, want: "trace"},
		{quiet: true, verbose: 3, want: "error"},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.quiet, tt.verbose); got != tt.want {
			t.Errorf("LevelFromVerbosity(%v, %d) = %s, want %s", tt.quiet, tt.verbose, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		wantErr bool
	}{
		{name: "default", cfg: DefaultLoggingConfig()},
		{name: "empty", cfg: LoggingConfig{}},
		{name: "bad level", cfg: LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: LoggingConfig{Format: "xml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestComponentLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LoggingConfig{Level: "debug", Format: "json"})

	logger.NewComponentLogger("script").Debug("hello")
	logger.Trace("filtered")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON log: %v", err)
	}
	if entry["component"] != "script" || entry["message"] != "hello" || entry["level"] != "debug" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dfim.log")
	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	logger.Info("to file")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"to file"`) {
		t.Errorf("log file missing message: %s", data)
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := NewWriterLogger(&bytes.Buffer{}, LoggingConfig{Level: "info"})
	ctx := logger.WithContext(context.Background())
	if FromContext(ctx) != logger {
		t.Error("FromContext did not return the stored logger")
	}
	if got := FromContext(context.Background()).Zerolog().GetLevel(); got != zerolog.Disabled {
		t.Errorf("fallback logger level = %v, want disabled", got)
	}
}
