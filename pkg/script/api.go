package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dfim/dfim/pkg/value"
)

// apiRegisterFunc installs one native subsystem below the root namespace.
type apiRegisterFunc func(s *Session, root *lua.LTable) error

var nativeAPI = []apiRegisterFunc{
	registerShared,
	registerSystem,
	registerJSON,
	registerYAML,
	registerTOML,
	registerLog,
	registerSources,
	registerLayers,
}

func (s *Session) registerNativeAPI(root *lua.LTable) error {
	for _, register := range nativeAPI {
		if err := register(s, root); err != nil {
			return err
		}
	}
	return nil
}

// registerFuncs installs funcs into the table at the dotted name below root
// and returns that table.
func (s *Session) registerFuncs(root *lua.LTable, name string, funcs map[string]lua.LGFunction) (*lua.LTable, error) {
	tbl, err := EnsureContainer(s.L, root, name)
	if err != nil {
		return nil, err
	}
	s.L.SetFuncs(tbl, funcs)
	return tbl, nil
}

// checkValue converts argument n into a generic value or raises.
func (s *Session) checkValue(L *lua.LState, n int, op string) value.Value {
	v, err := FromLua(L.CheckAny(n))
	if err != nil {
		s.raise(L, wrapError(KindConversion, op, err))
	}
	return v
}

// stringList builds a Lua array from strs.
func stringList(L *lua.LState, strs []string) *lua.LTable {
	tbl := L.CreateTable(len(strs), 0)
	for i, str := range strs {
		tbl.RawSetInt(i+1, lua.LString(str))
	}
	return tbl
}
