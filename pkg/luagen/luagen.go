// Package luagen compiles the Lua sources shipped with dfim into a Go table
// that is linked into the binary.
//
// Every .lua file below the source directory becomes one module. Its dotted
// name is the file path relative to the directory with the extension
// stripped and separators replaced by dots, so util/tbl.lua is util.tbl.
package luagen

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Module is one Lua source file.
type Module struct {
	// Name is the dotted module name.
	Name string

	// Path is the file the module was read from.
	Path string

	// Source is the file content.
	Source []byte
}

// ModuleName derives the dotted module name from a path relative to the
// source directory. Every segment must start with a letter and contain only
// letters, digits, '-' and '_'.
func ModuleName(rel string) (string, error) {
	rel = filepath.ToSlash(rel)
	if !strings.HasSuffix(rel, ".lua") {
		return "", fmt.Errorf("%s: not a lua file", rel)
	}
	segments := strings.Split(strings.TrimSuffix(rel, ".lua"), "/")
	for _, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return "", fmt.Errorf("%s: %w", rel, err)
		}
	}
	return strings.Join(segments, "."), nil
}

func validateSegment(seg string) error {
	if seg == "" {
		return fmt.Errorf("empty module name segment")
	}
	for i, r := range seg {
		switch {
		case isLetter(r):
		case i == 0:
			return fmt.Errorf("module name segment %q must start with a letter", seg)
		case r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("module name segment %q contains invalid character %q", seg, r)
		}
	}
	return nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Collect reads every .lua file below dir in lexical path order.
func Collect(dir string) ([]Module, error) {
	var modules []Module
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".lua" {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name, err := ModuleName(rel)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		modules = append(modules, Module{Name: name, Path: path, Source: src})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return modules, nil
}

// Compile checks that the module parses and compiles.
func Compile(m Module) error {
	chunk, err := parse.Parse(bytes.NewReader(m.Source), m.Path)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", m.Path, err)
	}
	if _, err := lua.Compile(chunk, m.Path); err != nil {
		return fmt.Errorf("failed to compile %s: %w", m.Path, err)
	}
	return nil
}

// Render writes the generated Go file for pkg declaring the builtin module
// table.
func Render(w io.Writer, pkg string, modules []Module) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by luagen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	fmt.Fprintf(&buf, "var builtinModules = []BuiltinModule{\n")
	for _, m := range modules {
		fmt.Fprintf(&buf, "\t{\n\t\tName:  %s,\n\t\tChunk: []byte(%s),\n\t},\n",
			strconv.Quote(m.Name), strconv.Quote(string(m.Source)))
	}
	fmt.Fprintf(&buf, "}\n")

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to format generated code: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// Generate collects and compiles every module below dir and writes the
// table to out.
func Generate(dir, out, pkg string) ([]Module, error) {
	modules, err := Collect(dir)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		if err := Compile(m); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := Render(&buf, pkg, modules); err != nil {
		return nil, err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return modules, nil
}
