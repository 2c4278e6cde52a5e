// Package config locates dfim's directories and entry module and loads the
// host settings file.
//
// Directories follow the XDG base directory layout:
//
//	config   $XDG_CONFIG_HOME/dfim, or ~/.config/dfim
//	data     $XDG_DATA_HOME/dfim, or ~/.local/share/dfim
//	plugins  <data>/plugins
//	history  <data>/history.db
//
// Settings are read with viper from an optional settings.yaml in the config
// directory and from DFIM_ prefixed environment variables, then validated:
//
//	dirs, err := config.DefaultDirs()
//	if err != nil {
//		return err
//	}
//	settings, err := config.Load(config.LoadOptions{Dirs: dirs})
//
// The Lua entry module is resolved separately by EntryModule.
package config
