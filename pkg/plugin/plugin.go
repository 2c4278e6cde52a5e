// Package plugin discovers user-installed plugins and locates the Lua
// modules they provide.
//
// A plugin root holds one directory per plugin. Modules live below each
// plugin's lua directory:
//
//	<root>/<plugin>/lua/<module path>.lua
//	<root>/<plugin>/lua/<module path>/init.lua
//
// where <module path> is the dotted module name with every dot replaced by
// the path separator. The root is read afresh on every call, so plugins
// installed or removed while a session runs are picked up on the next
// lookup.
package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LuaDir is the directory inside a plugin that holds its modules.
const LuaDir = "lua"

// Root is a directory containing installed plugins.
type Root struct {
	// Path is the plugin root directory.
	Path string
}

// Plugin is one installed plugin directory.
type Plugin struct {
	// Name is the plugin directory name.
	Name string

	// Path is the absolute or root-relative plugin directory.
	Path string
}

// Match is a module file found inside a plugin.
type Match struct {
	// Plugin is the plugin that provides the module.
	Plugin Plugin

	// File is the path of the module file.
	File string
}

// NewRoot returns a Root for dir.
func NewRoot(dir string) Root {
	return Root{Path: dir}
}

// Exists reports whether the plugin root is an existing directory.
func (r Root) Exists() bool {
	info, err := os.Stat(r.Path)
	return err == nil && info.IsDir()
}

// Installed lists the immediate subdirectories of the root in name order.
// A missing root yields fs.ErrNotExist.
func (r Root) Installed() ([]Plugin, error) {
	entries, err := os.ReadDir(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin directory: %w", err)
	}

	plugins := make([]Plugin, 0, len(entries))
	for _, entry := range entries {
		if !isDir(r.Path, entry) {
			continue
		}
		plugins = append(plugins, Plugin{
			Name: entry.Name(),
			Path: filepath.Join(r.Path, entry.Name()),
		})
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Name < plugins[j].Name
	})
	return plugins, nil
}

// Find probes every installed plugin for the module and returns the first
// match along with the number of plugins searched. ok is false when no
// plugin provides the module.
func (r Root) Find(module string) (match Match, searched int, ok bool, err error) {
	plugins, err := r.Installed()
	if err != nil {
		return Match{}, 0, false, err
	}

	for _, p := range plugins {
		searched++
		if file, found := p.Probe(module); found {
			return Match{Plugin: p, File: file}, searched, true, nil
		}
	}
	return Match{}, searched, false, nil
}

// Probe looks for the module inside the plugin, trying <frag>.lua before
// <frag>/init.lua.
func (p Plugin) Probe(module string) (string, bool) {
	frag := ModulePath(module)
	candidates := []string{
		filepath.Join(p.Path, LuaDir, frag+".lua"),
		filepath.Join(p.Path, LuaDir, frag, "init.lua"),
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && info.Mode().IsRegular() {
			return c, true
		}
	}
	return "", false
}

// ModulePath converts a dotted module name into a relative path fragment.
func ModulePath(module string) string {
	return strings.ReplaceAll(module, ".", string(os.PathSeparator))
}

// IsNotExist reports whether err means the plugin root is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func isDir(root string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, entry.Name()))
	return err == nil && info.IsDir()
}
