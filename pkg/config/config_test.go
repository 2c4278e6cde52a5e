package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDirsFrom(t *testing.T) {
	home := func() (string, error) { return "/home/u", nil }
	noHome := func() (string, error) { return "", errors.New("no home") }

	tests := []struct {
		name       string
		env        map[string]string
		home       func() (string, error)
		wantConfig string
		wantData   string
		wantErr    bool
	}{
		{
			name:       "home defaults",
			home:       home,
			wantConfig: filepath.Join("/home/u", ".config", "dfim"),
			wantData:   filepath.Join("/home/u", ".local", "share", "dfim"),
		},
		{
			name:       "xdg overrides",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xc", "XDG_DATA_HOME": "/xd"},
			home:       noHome,
			wantConfig: filepath.Join("/xc", "dfim"),
			wantData:   filepath.Join("/xd", "dfim"),
		},
		{
			name:    "no home",
			home:    noHome,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			d, err := dirsFrom(getenv, tt.home)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if d.Config != tt.wantConfig {
				t.Errorf("Config = %s, want %s", d.Config, tt.wantConfig)
			}
			if d.Data != tt.wantData {
				t.Errorf("Data = %s, want %s", d.Data, tt.wantData)
			}
			if d.PluginDir() != filepath.Join(tt.wantData, "plugins") {
				t.Errorf("PluginDir = %s", d.PluginDir())
			}
		})
	}
}

func TestEntryModule(t *testing.T) {
	dir := t.TempDir()
	dirs := Dirs{Config: dir, Data: filepath.Join(dir, "data")}
	defaultEntry := filepath.Join(dir, EntryModuleFile)
	envEntry := filepath.Join(dir, "env.lua")
	if err := os.WriteFile(envEntry, []byte("-- env"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := entryModule("", dirs, ""); ok {
		t.Fatal("expected no entry module before dfim.lua exists")
	}
	if err := os.WriteFile(defaultEntry, []byte("-- default"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		override string
		env      string
		want     string
		wantOK   bool
	}{
		{name: "config dir", want: defaultEntry, wantOK: true},
		{name: "override wins", override: "/nowhere.lua", env: envEntry, want: "/nowhere.lua", wantOK: true},
		{name: "env file", env: envEntry, want: envEntry, wantOK: true},
		{name: "env not a file", env: dir, wantOK: false},
		{name: "env missing", env: filepath.Join(dir, "missing.lua"), wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := entryModule(tt.override, dirs, tt.env)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("entryModule = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	dirs := Dirs{Config: t.TempDir(), Data: "/data"}
	s, err := Load(LoadOptions{Dirs: dirs})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.PluginDir != dirs.PluginDir() {
		t.Errorf("PluginDir = %s", s.PluginDir)
	}
	if s.HistoryFile != dirs.HistoryFile() || s.HistorySize != 1000 {
		t.Errorf("history = %s/%d", s.HistoryFile, s.HistorySize)
	}
	if s.Logging.Level != "warn" || s.Logging.Format != "console" {
		t.Errorf("logging = %+v", s.Logging)
	}
	if hc := s.HistoryConfig(); hc.Path != s.HistoryFile || hc.MaxLines != 1000 {
		t.Errorf("HistoryConfig = %+v", hc)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	settings := "plugin_dir: /opt/dfim/plugins\nhistory_size: 50\nlogging:\n  format: json\n"
	if err := os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(settings), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DFIM_LOG_LEVEL", "debug")
	t.Setenv("DFIM_HISTORY_SIZE", "25")

	s, err := Load(LoadOptions{Dirs: Dirs{Config: dir, Data: dir}})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.PluginDir != "/opt/dfim/plugins" {
		t.Errorf("PluginDir = %s", s.PluginDir)
	}
	if s.HistorySize != 25 {
		t.Errorf("HistorySize = %d, want env value 25", s.HistorySize)
	}
	if s.Logging.Level != "debug" || s.Logging.Format != "json" {
		t.Errorf("logging = %+v", s.Logging)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "negative history", content: "history_size: -1\n"},
		{name: "bad log level", content: "logging:\n  level: loud\n"},
		{name: "bad yaml", content: "plugin_dir: [\n"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "settings"+string(rune('a'+i))+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(LoadOptions{Dirs: Dirs{Config: dir, Data: dir}, File: path}); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(LoadOptions{Dirs: Dirs{Config: dir, Data: dir}, File: filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Error("expected error for missing explicit settings file")
	}
}
