package script

import (
	"errors"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/dfim/dfim/pkg/source"
)

// checkMutable rejects source mutations once a layer exists.
func (s *Session) checkMutable(op string) error {
	if s.Flag(FlagLayerCreated) {
		return newError(KindPolicyViolation, nil, "sources cannot change after a layer has been created").withOp(op)
	}
	return nil
}

// SetSources replaces the whole source collection. Calling it more than
// once is allowed but logged as a warning.
func (s *Session) SetSources(entries []source.Entry) error {
	if err := s.checkMutable("sources.set"); err != nil {
		return err
	}
	if err := s.sources.Replace(entries); err != nil {
		return collectionError("sources.set", err)
	}

	if s.Flag(FlagSourcesSet) {
		s.logger.Warn().Int("count", len(entries)).Msg("Sources were set more than once; earlier sources were discarded")
	}
	return s.SetFlag(FlagSourcesSet, true)
}

// AddSource appends one entry. Adding an identical entry again is a no-op
// and reports false.
func (s *Session) AddSource(entry source.Entry) (bool, error) {
	if err := s.checkMutable("sources.add"); err != nil {
		return false, err
	}
	if cur, ok := s.sources.Get(entry.Name); ok && cur == entry.Source {
		return false, nil
	}
	if err := s.sources.Insert(entry.Name, entry.Source); err != nil {
		return false, collectionError("sources.add", err)
	}
	return true, nil
}

// RemoveSource removes the entry with the given name.
func (s *Session) RemoveSource(name string) (bool, error) {
	if err := s.checkMutable("sources.remove"); err != nil {
		return false, err
	}
	return s.sources.Remove(name), nil
}

func collectionError(op string, err error) error {
	if errors.Is(err, source.ErrEmptyName) || errors.Is(err, source.ErrDuplicateName) {
		return &Error{Kind: KindSourceParse, Op: op, Err: err}
	}
	return err
}

// DecodeEntry parses a named source. The source itself follows
// DecodeSource; a table may carry an explicit `name`, otherwise the name is
// derived from the source.
func DecodeEntry(lv lua.LValue) (source.Entry, error) {
	src, err := DecodeSource(lv)
	if err != nil {
		return source.Entry{}, err
	}

	name := src.Name()
	if tbl, ok := lv.(*lua.LTable); ok {
		switch n := tbl.RawGetString("name").(type) {
		case *lua.LNilType:
		case lua.LString:
			if n == "" {
				return source.Entry{}, newError(KindSourceParse, source.ErrEmptyName, "invalid name for %#v", src)
			}
			name = string(n)
		default:
			return source.Entry{}, newError(KindSourceParse, nil, "source name must be a string, got %s", n.Type().String())
		}
	}
	if name == "" {
		return source.Entry{}, newError(KindSourceParse, source.ErrEmptyName,
			"cannot derive a name for %#v, set `name`", src)
	}
	return source.Entry{Name: name, Source: src}, nil
}

// EncodeEntry converts an entry into the table form accepted by
// DecodeEntry.
func EncodeEntry(L *lua.LState, e source.Entry) *lua.LTable {
	tbl := L.CreateTable(1, 2)
	switch lv := EncodeSource(L, e.Source).(type) {
	case *lua.LTable:
		lv.ForEach(func(k, v lua.LValue) {
			tbl.RawSet(k, v)
		})
	default:
		tbl.RawSetInt(1, lv)
	}
	tbl.RawSetString("name", lua.LString(e.Name))
	return tbl
}

func registerSources(s *Session, root *lua.LTable) error {
	_, err := s.registerFuncs(root, "sources", map[string]lua.LGFunction{
		"set":      s.luaSourcesSet,
		"add":      s.luaSourcesAdd,
		"remove":   s.luaSourcesRemove,
		"get":      s.luaSourcesGet,
		"contains": s.luaSourcesContains,
		"list":     s.luaSourcesList,
		"names":    s.luaSourcesNames,
		"len":      s.luaSourcesLen,
	})
	return err
}

// luaSourcesSet replaces all sources: set({ "owner/repo", {dir = "~/x", name = "x"}, ... }).
func (s *Session) luaSourcesSet(L *lua.LState) int {
	list := L.CheckTable(1)
	n, ok := listLen(list)
	if !ok {
		return s.raise(L, newError(KindSourceParse, nil, "sources.set expects a list of sources"))
	}

	entries := make([]source.Entry, 0, n)
	for i := 1; i <= n; i++ {
		e, err := DecodeEntry(list.RawGetInt(i))
		if err != nil {
			return s.raise(L, wrapError(KindSourceParse, "sources.set", err))
		}
		entries = append(entries, e)
	}

	if err := s.SetSources(entries); err != nil {
		return s.raise(L, err)
	}
	return 0
}

func (s *Session) luaSourcesAdd(L *lua.LState) int {
	e, err := DecodeEntry(L.CheckAny(1))
	if err != nil {
		return s.raise(L, wrapError(KindSourceParse, "sources.add", err))
	}
	added, err := s.AddSource(e)
	if err != nil {
		return s.raise(L, err)
	}
	L.Push(lua.LBool(added))
	return 1
}

// luaSourcesRemove removes by name, or by source when no name matches.
func (s *Session) luaSourcesRemove(L *lua.LState) int {
	arg := L.CheckAny(1)
	if err := s.checkMutable("sources.remove"); err != nil {
		return s.raise(L, err)
	}

	if name, ok := arg.(lua.LString); ok && s.sources.Remove(string(name)) {
		L.Push(lua.LTrue)
		return 1
	}
	src, err := DecodeSource(arg)
	if err != nil {
		return s.raise(L, wrapError(KindSourceParse, "sources.remove", err))
	}
	_, removed := s.sources.RemoveSource(src)
	L.Push(lua.LBool(removed))
	return 1
}

func (s *Session) luaSourcesGet(L *lua.LState) int {
	src, ok := s.sources.Get(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(EncodeSource(L, src))
	return 1
}

func (s *Session) luaSourcesContains(L *lua.LState) int {
	src, err := DecodeSource(L.CheckAny(1))
	if err != nil {
		return s.raise(L, wrapError(KindSourceParse, "sources.contains", err))
	}
	L.Push(lua.LBool(s.sources.Contains(src)))
	return 1
}

func (s *Session) luaSourcesList(L *lua.LState) int {
	entries := s.sources.Entries()
	tbl := L.CreateTable(len(entries), 0)
	for i, e := range entries {
		tbl.RawSetInt(i+1, EncodeEntry(L, e))
	}
	L.Push(tbl)
	return 1
}

func (s *Session) luaSourcesNames(L *lua.LState) int {
	L.Push(stringList(L, s.sources.Names()))
	return 1
}

func (s *Session) luaSourcesLen(L *lua.LState) int {
	L.Push(lua.LNumber(s.sources.Len()))
	return 1
}

// listLen returns the length of tbl when its only keys are 1..n.
func listLen(tbl *lua.LTable) (int, bool) {
	n := tbl.Len()
	ok := true
	tbl.ForEach(func(k, _ lua.LValue) {
		num, isNum := k.(lua.LNumber)
		f := float64(num)
		if !isNum || f != math.Trunc(f) || f < 1 || f > float64(n) {
			ok = false
		}
	})
	return n, ok
}
