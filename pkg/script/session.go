// Package script embeds the Lua runtime that evaluates dfim configuration,
// plugins and ad-hoc commands.
//
// A Session owns one interpreter together with the private state native
// functions operate on: the source collection, created layers and the guard
// flags kept in the interpreter registry. Sessions are not safe for
// concurrent use; create one per goroutine.
package script

//go:generate go run ../../cmd/luagen -dir runtime -out builtin_gen.go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/dfim/dfim/pkg/plugin"
	"github.com/dfim/dfim/pkg/source"
)

// RootModule is the name of the global namespace table.
const RootModule = "dfim"

// Status classifies the outcome of executing a chunk.
type Status int

const (
	// StatusOK means the chunk compiled and ran without error.
	StatusOK Status = iota

	// StatusIncomplete means the chunk ended before a statement was closed.
	StatusIncomplete

	// StatusBareExpression means the chunk is an expression rather than a
	// statement.
	StatusBareExpression

	// StatusError is any other compile or runtime failure.
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusIncomplete:
		return "incomplete"
	case StatusBareExpression:
		return "bare-expression"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Options configures a new session.
type Options struct {
	// Version is exposed as dfim.version.
	Version string

	// PluginDir is the plugin root searched by require. Empty disables the
	// plugin resolver.
	PluginDir string

	// Logger receives session and guest log output.
	Logger zerolog.Logger

	// Stdout receives print output. Defaults to os.Stdout.
	Stdout io.Writer
}

// Layer is a named snapshot of the source collection.
type Layer struct {
	Name    string
	Sources []source.Entry
}

// Session is one Lua interpreter with its host-side state.
type Session struct {
	// L is the underlying interpreter.
	L *lua.LState

	id        string
	version   string
	logger    zerolog.Logger
	stdout    io.Writer
	plugins   plugin.Root
	sources   *source.Collection
	layers    []Layer
	resolvers []ResolverFunc
}

// NewSession creates an interpreter with the dfim namespace, native API,
// builtin modules and plugin resolver installed. Any failure during setup
// closes the interpreter and is returned.
func NewSession(opts Options) (*Session, error) {
	s := &Session{
		L:       lua.NewState(),
		id:      uuid.NewString(),
		version: opts.Version,
		stdout:  opts.Stdout,
		sources: source.NewCollection(),
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	s.logger = opts.Logger.With().
		Str("component", "script").
		Str("session_id", s.id).
		Logger()

	if err := s.init(opts.PluginDir); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("failed to initialize lua session: %w", err)
	}

	s.logger.Debug().
		Str("plugin_dir", opts.PluginDir).
		Int("builtins", len(builtinModules)).
		Msg("Lua session ready")
	return s, nil
}

func (s *Session) init(pluginDir string) error {
	s.L.SetGlobal("print", s.L.NewFunction(s.luaPrint))

	root, err := CreateModule(s.L, RootModule)
	if err != nil {
		return err
	}
	root.RawSetString("version", lua.LString(s.version))
	root.RawSetString("target_triple", lua.LString(TargetTriple()))
	root.RawSetString("os_name", lua.LString(runtime.GOOS))
	root.RawSetString("os_family", lua.LString(osFamily()))
	root.RawSetString("arch", lua.LString(runtime.GOARCH))

	if err := s.registerNativeAPI(root); err != nil {
		return err
	}
	s.L.SetGlobal(RootModule, root)

	if err := s.loadBuiltins(builtinModules); err != nil {
		return err
	}

	if pluginDir != "" {
		s.plugins = plugin.NewRoot(pluginDir)
		if err := s.RegisterResolver(s.resolvePlugin); err != nil {
			return err
		}
	}
	return nil
}

// ID returns the session identifier used in log output.
func (s *Session) ID() string {
	return s.id
}

// Logger returns the session logger.
func (s *Session) Logger() *zerolog.Logger {
	return &s.logger
}

// Sources returns the session's source collection.
func (s *Session) Sources() *source.Collection {
	return s.sources
}

// Layers returns the layers created so far.
func (s *Session) Layers() []Layer {
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Close releases the interpreter.
func (s *Session) Close() {
	s.L.Close()
}

// Exec compiles and runs chunk, classifying the outcome. A chunk that does
// not compile is recompiled as `return <chunk>`; if that succeeds the chunk
// is a bare expression. A chunk that ends in an expression statement, which
// the parser rejects while waiting for `=`, compiles once an assignment is
// appended and is reported as a bare expression too. Otherwise a syntax
// error at end of input means the chunk is incomplete.
func (s *Session) Exec(ctx context.Context, chunk string) (Status, error) {
	fn, err := s.L.Load(strings.NewReader(chunk), "stdin")
	if err != nil {
		if s.compiles("return " + chunk) {
			return StatusBareExpression, err
		}
		if s.compiles(chunk + "\n= nil") {
			return StatusBareExpression, err
		}
		if isIncomplete(err) {
			return StatusIncomplete, err
		}
		return StatusError, err
	}

	if err := s.call(ctx, fn); err != nil {
		return StatusError, err
	}
	return StatusOK, nil
}

// ExecString runs a chunk of Lua source under the given chunk name.
func (s *Session) ExecString(ctx context.Context, code, name string) error {
	fn, err := s.L.Load(strings.NewReader(code), name)
	if err != nil {
		return err
	}
	return s.call(ctx, fn)
}

// ExecFile runs the Lua file at path.
func (s *Session) ExecFile(ctx context.Context, path string) error {
	fn, err := s.L.LoadFile(path)
	if err != nil {
		return err
	}
	return s.call(ctx, fn)
}

func (s *Session) call(ctx context.Context, fn *lua.LFunction) error {
	if ctx != nil {
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}
	return s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
}

func (s *Session) compiles(code string) bool {
	_, err := s.L.Load(strings.NewReader(code), "stdin")
	return err == nil
}

// isIncomplete reports whether err is a parser error positioned at the end
// of the input.
func isIncomplete(err error) bool {
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) || apiErr.Type != lua.ApiErrorSyntax {
		return false
	}
	var perr *parse.Error
	if !errors.As(apiErr.Cause, &perr) {
		return false
	}
	return perr.Pos.Line == parse.EOF
}

// raise converts a host error into a Lua runtime error.
func (s *Session) raise(L *lua.LState, err error) int {
	L.RaiseError("%s", err.Error())
	return 0
}

func (s *Session) luaPrint(L *lua.LState) int {
	top := L.GetTop()
	var b strings.Builder
	for i := 1; i <= top; i++ {
		if i > 1 {
			b.WriteByte('\t')
		}
		b.WriteString(L.ToStringMeta(L.Get(i)).String())
	}
	b.WriteByte('\n')
	io.WriteString(s.stdout, b.String())
	return 0
}

// TargetTriple describes the host platform as an LLVM style target triple.
func TargetTriple() string {
	arch := map[string]string{
		"amd64": "x86_64",
		"arm64": "aarch64",
		"386":   "i686",
	}[runtime.GOARCH]
	if arch == "" {
		arch = runtime.GOARCH
	}
	switch runtime.GOOS {
	case "linux":
		return arch + "-unknown-linux-gnu"
	case "darwin":
		return arch + "-apple-darwin"
	case "windows":
		return arch + "-pc-windows-msvc"
	default:
		return arch + "-unknown-" + runtime.GOOS
	}
}

func osFamily() string {
	if runtime.GOOS == "windows" {
		return "windows"
	}
	return "unix"
}
