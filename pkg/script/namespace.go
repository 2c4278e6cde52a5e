package script

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// loadedTable returns package.loaded.
func loadedTable(L *lua.LState) (*lua.LTable, error) {
	pkg, ok := L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return nil, newError(KindNamespaceConflict, nil, "global `package` is not a table")
	}
	loaded, ok := L.GetField(pkg, "loaded").(*lua.LTable)
	if !ok {
		return nil, newError(KindNamespaceConflict, nil, "`package.loaded` is not a table")
	}
	return loaded, nil
}

// CreateModule returns the table stored in package.loaded under the dotted
// name, creating empty tables as needed.
func CreateModule(L *lua.LState, name string) (*lua.LTable, error) {
	loaded, err := loadedTable(L)
	if err != nil {
		return nil, err
	}
	return EnsureContainer(L, loaded, name)
}

// EnsureContainer walks the dotted name below root and returns the table at
// its end. Missing segments are created as empty tables; existing tables are
// reused, so repeated calls return the same table. A segment holding any
// other value is a NamespaceConflict.
func EnsureContainer(L *lua.LState, root *lua.LTable, dotted string) (*lua.LTable, error) {
	parts, err := splitModulePath(dotted)
	if err != nil {
		return nil, err
	}

	head := root
	for _, part := range parts {
		head, err = tableIn(L, head, part)
		if err != nil {
			return nil, err
		}
	}
	return head, nil
}

// SetNested stores value at the dotted name below root. Intermediate segments
// follow EnsureContainer; the final segment is overwritten whatever it held.
// The stored value is returned.
func SetNested(L *lua.LState, root *lua.LTable, dotted string, value lua.LValue) (lua.LValue, error) {
	parts, err := splitModulePath(dotted)
	if err != nil {
		return nil, err
	}

	head := root
	for _, part := range parts[:len(parts)-1] {
		head, err = tableIn(L, head, part)
		if err != nil {
			return nil, err
		}
	}

	tail := parts[len(parts)-1]
	head.RawSetString(tail, value)
	return head.RawGetString(tail), nil
}

func splitModulePath(dotted string) ([]string, error) {
	if dotted == "" {
		return nil, newError(KindEmptyModulePath, nil, "module path must not be empty")
	}
	parts := strings.Split(dotted, ".")
	for _, p := range parts {
		if p == "" {
			return nil, newError(KindEmptyModulePath, nil, "module path %q has an empty segment", dotted)
		}
	}
	return parts, nil
}

// tableIn returns root[name], creating an empty table when absent.
func tableIn(L *lua.LState, root *lua.LTable, name string) (*lua.LTable, error) {
	switch v := root.RawGetString(name).(type) {
	case *lua.LNilType:
		t := L.NewTable()
		root.RawSetString(name, t)
		return t, nil
	case *lua.LTable:
		return v, nil
	default:
		return nil, newError(KindNamespaceConflict, nil,
			"cannot create table `%s`, value exists with type `%s`", name, v.Type().String())
	}
}
