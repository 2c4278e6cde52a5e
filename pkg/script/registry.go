package script

import (
	lua "github.com/yuin/gopher-lua"
)

// Registry keys for the session guard flags.
const (
	FlagLayerCreated = "dfim-flag-layer-created"
	FlagSourcesSet   = "dfim-flag-sources-set"
)

func (s *Session) registry() *lua.LTable {
	return s.L.Get(lua.RegistryIndex).(*lua.LTable)
}

// Flag returns the boolean stored under key in the interpreter registry.
// Missing keys and non-boolean values read as false.
func (s *Session) Flag(key string) bool {
	b, ok := s.registry().RawGetString(key).(lua.LBool)
	return ok && bool(b)
}

// SetFlag stores v under key in the interpreter registry, overwriting any
// previous boolean. A key that already holds a value of another type is
// left untouched and reported as a RegistryTypeConflict.
func (s *Session) SetFlag(key string, v bool) error {
	reg := s.registry()
	switch cur := reg.RawGetString(key).(type) {
	case *lua.LNilType, lua.LBool:
	default:
		return newError(KindRegistryTypeConflict, nil,
			"registry key %q holds a %s, expected boolean", key, cur.Type().String())
	}
	reg.RawSetString(key, lua.LBool(v))
	return nil
}
