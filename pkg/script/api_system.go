package script

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	lua "github.com/yuin/gopher-lua"

	"github.com/dfim/dfim/pkg/value"
)

// SpawnOptions controls how a child process is started.
type SpawnOptions struct {
	// Args are appended to the program for dfim.system.
	Args []string `mapstructure:"args"`

	// Cwd is the working directory of the child.
	Cwd string `mapstructure:"cwd" validate:"omitempty,dir"`

	// Env holds variables added to (or, with ClearEnv, replacing) the
	// inherited environment.
	Env map[string]string `mapstructure:"env"`

	// ClearEnv starts the child with only Env.
	ClearEnv bool `mapstructure:"clear_env"`
}

// SpawnResult is the outcome of a finished child process.
type SpawnResult struct {
	Success bool
	// Code is nil when the process was terminated by a signal.
	Code   *int
	Stdout []byte
	Stderr []byte
}

var validate = validator.New()

func registerSystem(s *Session, root *lua.LTable) error {
	s.L.SetFuncs(root, map[string]lua.LGFunction{
		"system": s.luaSystem,
		"spawn":  s.luaSpawn,
	})
	return nil
}

// DecodeSpawnOptions decodes an options value as passed from Lua.
func DecodeSpawnOptions(v value.Value) (SpawnOptions, error) {
	var opts SpawnOptions
	switch v.(type) {
	case value.Null, nil:
		return opts, nil
	case value.Object, value.Array:
	default:
		return opts, newError(KindConversion, nil, "spawn options must be a table, got %s", value.TypeName(v))
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return opts, err
	}
	if err := dec.Decode(value.Native(v)); err != nil {
		return opts, newError(KindConversion, err, "invalid spawn options")
	}
	if err := validate.Struct(&opts); err != nil {
		return opts, newError(KindConversion, err, "invalid spawn options")
	}
	return opts, nil
}

// Spawn runs argv to completion and captures its output. A non-zero exit is
// reported in the result; only a process that could not be started is an
// error.
func Spawn(argv []string, opts SpawnOptions) (*SpawnResult, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, newError(KindProcessSpawn, nil, "no program given")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = opts.Cwd
	if opts.ClearEnv || len(opts.Env) > 0 {
		cmd.Env = buildEnv(opts)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := &SpawnResult{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, newError(KindProcessSpawn, err, "failed to start %s", argv[0])
		}
	}

	if code := cmd.ProcessState.ExitCode(); code >= 0 {
		res.Code = &code
	}
	res.Success = cmd.ProcessState.Success()
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()
	return res, nil
}

func buildEnv(opts SpawnOptions) []string {
	var env []string
	if !opts.ClearEnv {
		env = os.Environ()
	}
	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+opts.Env[k])
	}
	return env
}

// luaSystem runs a program: system(prog, {args = {...}, cwd, env, clear_env}).
func (s *Session) luaSystem(L *lua.LState) int {
	prog := L.CheckString(1)
	opts := s.checkSpawnOptions(L, 2)
	return s.spawn(L, append([]string{prog}, opts.Args...), opts)
}

// luaSpawn runs a command line: spawn({prog, arg...}, {cwd, env, clear_env}).
func (s *Session) luaSpawn(L *lua.LState) int {
	v := s.checkValue(L, 1, "spawn")
	arr, ok := v.(value.Array)
	if !ok || len(arr) == 0 {
		return s.raise(L, newError(KindConversion, nil, "spawn expects a non-empty list of strings").withOp("spawn"))
	}
	argv := make([]string, len(arr))
	for i, item := range arr {
		str, ok := item.(value.Str)
		if !ok {
			return s.raise(L, newError(KindConversion, nil,
				"argument %d must be a string, got %s", i+1, value.TypeName(item)).withOp("spawn"))
		}
		argv[i] = string(str)
	}
	opts := s.checkSpawnOptions(L, 2)
	if len(opts.Args) > 0 {
		return s.raise(L, newError(KindConversion, nil, "`args` belongs in the command list").withOp("spawn"))
	}
	return s.spawn(L, argv, opts)
}

func (s *Session) checkSpawnOptions(L *lua.LState, n int) SpawnOptions {
	var v value.Value = value.Null{}
	if L.GetTop() >= n {
		v = s.checkValue(L, n, "spawn")
	}
	opts, err := DecodeSpawnOptions(v)
	if err != nil {
		s.raise(L, wrapError(KindConversion, "spawn", err))
	}
	return opts
}

func (s *Session) spawn(L *lua.LState, argv []string, opts SpawnOptions) int {
	s.logger.Debug().Strs("argv", argv).Str("cwd", opts.Cwd).Msg("Spawning process")

	res, err := Spawn(argv, opts)
	if err != nil {
		return s.raise(L, err)
	}

	tbl := L.CreateTable(0, 4)
	tbl.RawSetString("success", lua.LBool(res.Success))
	if res.Code != nil {
		tbl.RawSetString("code", lua.LNumber(*res.Code))
	}
	tbl.RawSetString("stdout", lua.LString(res.Stdout))
	tbl.RawSetString("stderr", lua.LString(res.Stderr))
	L.Push(tbl)
	return 1
}
