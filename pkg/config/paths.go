package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used below the XDG base directories.
const AppName = "dfim"

// EntryModuleFile is the entry module looked up in the config directory.
const EntryModuleFile = "dfim.lua"

// EnvConfig overrides the entry module location.
const EnvConfig = "DFIM_CONFIG"

// Dirs holds the resolved base directories.
type Dirs struct {
	Config string
	Data   string
}

// PluginDir returns the default plugin root.
func (d Dirs) PluginDir() string {
	return filepath.Join(d.Data, "plugins")
}

// HistoryFile returns the default REPL history database.
func (d Dirs) HistoryFile() string {
	return filepath.Join(d.Data, "history.db")
}

// DefaultDirs resolves the directories from the environment.
func DefaultDirs() (Dirs, error) {
	return dirsFrom(os.Getenv, os.UserHomeDir)
}

func dirsFrom(getenv func(string) string, home func() (string, error)) (Dirs, error) {
	var d Dirs

	homeDir := func() (string, error) {
		h, err := home()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		return h, nil
	}

	if x := getenv("XDG_CONFIG_HOME"); x != "" {
		d.Config = filepath.Join(x, AppName)
	} else {
		h, err := homeDir()
		if err != nil {
			return Dirs{}, err
		}
		d.Config = filepath.Join(h, ".config", AppName)
	}

	switch {
	case getenv("XDG_DATA_HOME") != "":
		d.Data = filepath.Join(getenv("XDG_DATA_HOME"), AppName)
	case runtime.GOOS == "windows":
		d.Data = filepath.Join(d.Config, "data")
	default:
		h, err := homeDir()
		if err != nil {
			return Dirs{}, err
		}
		d.Data = filepath.Join(h, ".local", "share", AppName)
	}
	return d, nil
}

// EntryModule returns the Lua module dfim evaluates on start. An explicit
// override always wins. Otherwise DFIM_CONFIG is used when set, and only if
// it names a file; when unset, dfim.lua in the config directory is used if it
// exists. ok is false when there is no entry module.
func EntryModule(override string, dirs Dirs) (path string, ok bool) {
	return entryModule(override, dirs, os.Getenv(EnvConfig))
}

func entryModule(override string, dirs Dirs, env string) (string, bool) {
	if override != "" {
		return override, true
	}
	if env != "" {
		if isFile(env) {
			return env, true
		}
		return "", false
	}
	p := filepath.Join(dirs.Config, EntryModuleFile)
	if isFile(p) {
		return p, true
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
