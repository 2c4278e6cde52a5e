package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dfim/dfim/pkg/plugin"
)

// Resolution is the result of one module resolver. Exactly one of Loader or
// Diagnostic is set.
type Resolution struct {
	// Loader is the module chunk, called by require with the module name.
	Loader *lua.LFunction

	// Origin identifies where Loader was read from.
	Origin string

	// Diagnostic explains why the module was not found. require collects
	// the diagnostics of every searcher into its final error.
	Diagnostic string
}

// ResolverFunc locates a module by its dotted name. Not finding the module
// is reported through Resolution.Diagnostic; an error is raised in Lua and
// aborts the require.
type ResolverFunc func(L *lua.LState, module string) (Resolution, error)

// RegisterResolver appends fn to package.loaders, after the preload and
// package.path searchers and any resolver registered earlier.
func (s *Session) RegisterResolver(fn ResolverFunc) error {
	pkg, ok := s.L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return newError(KindNamespaceConflict, nil, "global `package` is not a table")
	}
	loaders, ok := s.L.GetField(pkg, "loaders").(*lua.LTable)
	if !ok {
		return newError(KindNamespaceConflict, nil, "`package.loaders` is not a table")
	}

	s.resolvers = append(s.resolvers, fn)
	loaders.Append(s.L.NewFunction(func(L *lua.LState) int {
		res, err := fn(L, L.CheckString(1))
		if err != nil {
			return s.raise(L, err)
		}
		if res.Loader == nil {
			L.Push(lua.LString(res.Diagnostic))
			return 1
		}
		L.Push(res.Loader)
		L.Push(lua.LString(res.Origin))
		return 2
	}))
	return nil
}

// Resolve runs the registered resolvers in order and returns the first
// match, or the diagnostics of all of them.
func (s *Session) Resolve(module string) (Resolution, []string, error) {
	var diags []string
	for _, fn := range s.resolvers {
		res, err := fn(s.L, module)
		if err != nil {
			return Resolution{}, diags, err
		}
		if res.Loader != nil {
			return res, diags, nil
		}
		diags = append(diags, res.Diagnostic)
	}
	return Resolution{}, diags, nil
}

// resolvePlugin finds a module inside the installed plugins.
func (s *Session) resolvePlugin(L *lua.LState, module string) (Resolution, error) {
	match, searched, found, err := s.plugins.Find(module)
	if err != nil {
		if plugin.IsNotExist(err) {
			return Resolution{Diagnostic: fmt.Sprintf("no dfim plugin directory '%s'", s.plugins.Path)}, nil
		}
		return Resolution{Diagnostic: fmt.Sprintf("cannot search dfim plugin directory '%s': %v", s.plugins.Path, err)}, nil
	}
	if !found {
		return Resolution{
			Diagnostic: fmt.Sprintf("no dfim plugins contain module '%s' (%d searched)", module, searched),
		}, nil
	}

	fn, err := L.LoadFile(match.File)
	if err != nil {
		return Resolution{}, newError(KindPluginLoad, err,
			"failed to load module '%s' from plugin %s", module, match.Plugin.Name)
	}

	s.logger.Debug().
		Str("module", module).
		Str("plugin", match.Plugin.Name).
		Str("file", match.File).
		Msg("Resolved plugin module")
	return Resolution{Loader: fn, Origin: match.File}, nil
}
