package script

import (
	"errors"
	"math"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/dfim/dfim/pkg/source"
	"github.com/dfim/dfim/pkg/value"
)

// ToLua converts a generic value into a Lua value. Null becomes nil, so
// nulls inside arrays leave holes and null object members are dropped.
// Integers beyond 2^53 lose precision because Lua numbers are doubles.
func ToLua(L *lua.LState, v value.Value) lua.LValue {
	switch val := v.(type) {
	case value.Null, nil:
		return lua.LNil
	case value.Bool:
		return lua.LBool(val)
	case value.Int:
		return lua.LNumber(val)
	case value.Float:
		return lua.LNumber(val)
	case value.Str:
		return lua.LString(val)
	case value.Array:
		tbl := L.CreateTable(len(val), 0)
		for i, item := range val {
			tbl.RawSetInt(i+1, ToLua(L, item))
		}
		return tbl
	case value.Object:
		tbl := L.CreateTable(0, len(val))
		for k, item := range val {
			tbl.RawSetString(k, ToLua(L, item))
		}
		return tbl
	default:
		panic("script: unknown value variant")
	}
}

// FromLua converts a Lua value into a generic value. Tables whose keys are
// exactly 1..n become arrays; every other table becomes an object, with
// number keys rendered in decimal. Functions, userdata, threads, non-scalar
// keys and self-referencing tables are conversion errors.
func FromLua(lv lua.LValue) (value.Value, error) {
	return fromLua(lv, map[*lua.LTable]bool{})
}

func fromLua(lv lua.LValue, visiting map[*lua.LTable]bool) (value.Value, error) {
	switch val := lv.(type) {
	case *lua.LNilType:
		return value.Null{}, nil
	case lua.LBool:
		return value.Bool(val), nil
	case lua.LNumber:
		return value.Number(float64(val)), nil
	case lua.LString:
		return value.Str(val), nil
	case *lua.LTable:
		if visiting[val] {
			return nil, newError(KindConversion, nil, "cannot convert recursive table")
		}
		visiting[val] = true
		defer delete(visiting, val)

		if n, ok := sequenceLen(val); ok {
			arr := make(value.Array, 0, n)
			for i := 1; i <= n; i++ {
				item, err := fromLua(val.RawGetInt(i), visiting)
				if err != nil {
					return nil, err
				}
				arr = append(arr, item)
			}
			return arr, nil
		}

		obj := make(value.Object)
		var err error
		val.ForEach(func(k, item lua.LValue) {
			if err != nil {
				return
			}
			var key string
			key, err = tableKey(k)
			if err != nil {
				return
			}
			var v value.Value
			v, err = fromLua(item, visiting)
			if err != nil {
				return
			}
			obj[key] = v
		})
		if err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, newError(KindConversion, nil, "cannot convert %s to a value", lv.Type().String())
	}
}

// sequenceLen reports whether the keys of tbl are exactly 1..n with n > 0.
func sequenceLen(tbl *lua.LTable) (int, bool) {
	count := 0
	isSeq := true
	tbl.ForEach(func(k, _ lua.LValue) {
		count++
		n, ok := k.(lua.LNumber)
		if !ok || float64(n) != math.Trunc(float64(n)) || n < 1 {
			isSeq = false
		}
	})
	if !isSeq || count == 0 {
		return 0, false
	}
	for i := 1; i <= count; i++ {
		if tbl.RawGetInt(i) == lua.LNil {
			return 0, false
		}
	}
	return count, true
}

func tableKey(k lua.LValue) (string, error) {
	switch key := k.(type) {
	case lua.LString:
		return string(key), nil
	case lua.LNumber:
		f := float64(key)
		if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<63 {
			return strconv.FormatInt(int64(f), 10), nil
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	default:
		return "", newError(KindConversion, nil, "cannot use %s as an object key", k.Type().String())
	}
}

// EncodeSource converts a source into its Lua form: a plain string for a
// repository, {dir=...} for a directory and {file=...} for a file.
func EncodeSource(L *lua.LState, src source.Source) lua.LValue {
	switch src.Kind() {
	case source.KindDirectory:
		tbl := L.CreateTable(0, 1)
		tbl.RawSetString("dir", lua.LString(src.Value()))
		return tbl
	case source.KindFile:
		tbl := L.CreateTable(0, 1)
		tbl.RawSetString("file", lua.LString(src.Value()))
		return tbl
	default:
		return lua.LString(src.Value())
	}
}

// DecodeSource parses a Lua value into a source. A string is a repository
// identifier. A table is looked up by positional index 1 (a repository
// string), then `dir`, then `file`; the first present key wins.
func DecodeSource(lv lua.LValue) (source.Source, error) {
	switch val := lv.(type) {
	case lua.LString:
		return decodeRepo(val)
	case *lua.LTable:
		if first := val.RawGetInt(1); first != lua.LNil {
			s, ok := first.(lua.LString)
			if !ok {
				return source.Source{}, newError(KindSourceParse, nil,
					"positional source must be a string, got %s", first.Type().String())
			}
			return decodeRepo(s)
		}
		if dir, ok, err := stringField(val, "dir"); err != nil {
			return source.Source{}, err
		} else if ok {
			return source.Directory(dir), nil
		}
		if file, ok, err := stringField(val, "file"); err != nil {
			return source.Source{}, err
		} else if ok {
			return source.File(file), nil
		}
		return source.Source{}, newError(KindSourceParse, nil,
			"source table needs a repository at index 1, a `dir` or a `file` key")
	default:
		return source.Source{}, newError(KindConversion, nil,
			"cannot convert %s to a source", lv.Type().String())
	}
}

func decodeRepo(s lua.LString) (source.Source, error) {
	src, err := source.Repo(string(s))
	if err != nil {
		if errors.Is(err, source.ErrInvalidSource) {
			return source.Source{}, newError(KindSourceParse, err, "invalid repository %q", string(s))
		}
		return source.Source{}, err
	}
	return src, nil
}

func stringField(tbl *lua.LTable, key string) (string, bool, error) {
	switch v := tbl.RawGetString(key).(type) {
	case *lua.LNilType:
		return "", false, nil
	case lua.LString:
		return string(v), true, nil
	default:
		return "", false, newError(KindSourceParse, nil,
			"source field `%s` must be a string, got %s", key, v.Type().String())
	}
}
