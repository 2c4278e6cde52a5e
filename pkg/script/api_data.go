package script

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/dfim/dfim/pkg/value"
)

func registerJSON(s *Session, root *lua.LTable) error {
	_, err := s.registerFuncs(root, "json", map[string]lua.LGFunction{
		"encode":      s.luaJSONEncode,
		"decode":      s.luaJSONDecode,
		"decode_file": s.luaJSONDecodeFile,
	})
	return err
}

func registerYAML(s *Session, root *lua.LTable) error {
	_, err := s.registerFuncs(root, "yaml", map[string]lua.LGFunction{
		"encode": s.luaYAMLEncode,
		"decode": s.luaYAMLDecode,
	})
	return err
}

func registerTOML(s *Session, root *lua.LTable) error {
	_, err := s.registerFuncs(root, "toml", map[string]lua.LGFunction{
		"encode": s.luaTOMLEncode,
		"decode": s.luaTOMLDecode,
	})
	return err
}

// codecError tags value conversion failures as conversion errors and
// leaves every other failure (bad syntax, I/O) unclassified.
func codecError(op string, err error) error {
	if errors.Is(err, value.ErrConversion) {
		return &Error{Kind: KindConversion, Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Session) pushDecoded(L *lua.LState, op string, v value.Value, err error) int {
	if err != nil {
		return s.raise(L, codecError(op, err))
	}
	L.Push(ToLua(L, v))
	return 1
}

func (s *Session) pushEncoded(L *lua.LState, op string, data []byte, err error) int {
	if err != nil {
		return s.raise(L, codecError(op, err))
	}
	L.Push(lua.LString(data))
	return 1
}

// luaJSONEncode renders a value as JSON: encode(value, pretty).
func (s *Session) luaJSONEncode(L *lua.LState) int {
	v := s.checkValue(L, 1, "json.encode")
	data, err := value.EncodeJSON(v, L.OptBool(2, false))
	return s.pushEncoded(L, "json.encode", data, err)
}

func (s *Session) luaJSONDecode(L *lua.LState) int {
	v, err := value.DecodeJSONString(L.CheckString(1))
	return s.pushDecoded(L, "json.decode", v, err)
}

// luaJSONDecodeFile parses a JSON file: decode_file(path, buffered). A
// buffered read streams the file instead of loading it whole.
func (s *Session) luaJSONDecodeFile(L *lua.LState) int {
	path := L.CheckString(1)
	buffered := L.OptBool(2, false)

	var r io.Reader
	if buffered {
		f, err := os.Open(path)
		if err != nil {
			return s.raise(L, fmt.Errorf("json.decode_file: %w", err))
		}
		defer f.Close()
		r = bufio.NewReader(f)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return s.raise(L, fmt.Errorf("json.decode_file: %w", err))
		}
		r = bytes.NewReader(data)
	}

	v, err := value.DecodeJSON(r)
	return s.pushDecoded(L, "json.decode_file", v, err)
}

func (s *Session) luaYAMLEncode(L *lua.LState) int {
	v := s.checkValue(L, 1, "yaml.encode")
	data, err := value.EncodeYAML(v)
	return s.pushEncoded(L, "yaml.encode", data, err)
}

func (s *Session) luaYAMLDecode(L *lua.LState) int {
	v, err := value.DecodeYAML([]byte(L.CheckString(1)))
	return s.pushDecoded(L, "yaml.decode", v, err)
}

func (s *Session) luaTOMLEncode(L *lua.LState) int {
	v := s.checkValue(L, 1, "toml.encode")
	data, err := value.EncodeTOML(v)
	return s.pushEncoded(L, "toml.encode", data, err)
}

func (s *Session) luaTOMLDecode(L *lua.LState) int {
	v, err := value.DecodeTOML(L.CheckString(1))
	return s.pushDecoded(L, "toml.decode", v, err)
}
