package script

import (
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

func registerShared(s *Session, root *lua.LTable) error {
	s.L.SetFuncs(root, map[string]lua.LGFunction{
		"hostname":   s.luaHostname,
		"split":      luaSplit,
		"trim":       luaTrim,
		"startswith": luaStartsWith,
		"endswith":   luaEndsWith,
	})
	return nil
}

func (s *Session) luaHostname(L *lua.LState) int {
	name, err := os.Hostname()
	if err != nil {
		return s.raise(L, err)
	}
	L.Push(lua.LString(name))
	return 1
}

// luaSplit splits a string on a separator: split(value, sep, remove_empty).
func luaSplit(L *lua.LState) int {
	str := L.CheckString(1)
	sep := L.CheckString(2)
	removeEmpty := L.OptBool(3, false)

	parts := strings.Split(str, sep)
	out := L.CreateTable(len(parts), 0)
	for _, p := range parts {
		if removeEmpty && p == "" {
			continue
		}
		out.Append(lua.LString(p))
	}
	L.Push(out)
	return 1
}

func luaTrim(L *lua.LState) int {
	L.Push(lua.LString(strings.TrimSpace(L.CheckString(1))))
	return 1
}

func luaStartsWith(L *lua.LState) int {
	L.Push(lua.LBool(strings.HasPrefix(L.CheckString(1), L.CheckString(2))))
	return 1
}

func luaEndsWith(L *lua.LState) int {
	L.Push(lua.LBool(strings.HasSuffix(L.CheckString(1), L.CheckString(2))))
	return 1
}
