package script

import (
	"bytes"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// BuiltinModule is a Lua module compiled into the binary.
type BuiltinModule struct {
	// Name is the dotted module name below the root namespace.
	Name string

	// Chunk is the compile-checked module source. It is opaque to the
	// loader and only ever handed to the interpreter.
	Chunk []byte
}

// Builtins returns the modules compiled into the binary, in load order.
func Builtins() []BuiltinModule {
	out := make([]BuiltinModule, len(builtinModules))
	copy(out, builtinModules)
	return out
}

// loadBuiltins runs every module through package.loaded and installs its
// result at dfim.<name>. The first failure aborts.
func (s *Session) loadBuiltins(modules []BuiltinModule) error {
	loaded, err := loadedTable(s.L)
	if err != nil {
		return err
	}

	for _, m := range modules {
		modname := RootModule + "." + m.Name
		result, err := s.requireChunk(loaded, modname, m.Chunk)
		if err != nil {
			return fmt.Errorf("failed to load builtin module %s: %w", modname, err)
		}
		if _, err := SetNested(s.L, loaded, modname, result); err != nil {
			return fmt.Errorf("failed to install builtin module %s: %w", modname, err)
		}
		s.logger.Trace().Str("module", modname).Msg("Loaded builtin module")
	}
	return nil
}

// requireChunk behaves like require for a chunk that is already in memory:
// a name present in package.loaded is returned as is, otherwise the chunk is
// run with the module name as its argument and its result cached, with nil
// stored as true.
func (s *Session) requireChunk(loaded *lua.LTable, modname string, chunk []byte) (lua.LValue, error) {
	if cached := loaded.RawGetString(modname); lua.LVAsBool(cached) {
		return cached, nil
	}

	fn, err := s.L.Load(bytes.NewReader(chunk), modname)
	if err != nil {
		return nil, err
	}
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(modname)); err != nil {
		return nil, err
	}
	result := s.L.Get(-1)
	s.L.Pop(1)

	if cached := loaded.RawGetString(modname); lua.LVAsBool(cached) {
		return cached, nil
	}
	if result == lua.LNil {
		result = lua.LTrue
	}
	loaded.RawSetString(modname, result)
	return result, nil
}
