package script

import (
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// Guest log levels, exposed as dfim.log.levels.
const (
	LogLevelError = 1 + iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

var guestLevels = map[int]zerolog.Level{
	LogLevelError: zerolog.ErrorLevel,
	LogLevelWarn:  zerolog.WarnLevel,
	LogLevelInfo:  zerolog.InfoLevel,
	LogLevelDebug: zerolog.DebugLevel,
	LogLevelTrace: zerolog.TraceLevel,
}

func registerLog(s *Session, root *lua.LTable) error {
	m, err := s.registerFuncs(root, "log", map[string]lua.LGFunction{
		"trace": s.logAt(zerolog.TraceLevel),
		"debug": s.logAt(zerolog.DebugLevel),
		"info":  s.logAt(zerolog.InfoLevel),
		"warn":  s.logAt(zerolog.WarnLevel),
		"error": s.logAt(zerolog.ErrorLevel),
	})
	if err != nil {
		return err
	}

	levels := s.L.CreateTable(0, len(guestLevels))
	levels.RawSetString("ERROR", lua.LNumber(LogLevelError))
	levels.RawSetString("WARN", lua.LNumber(LogLevelWarn))
	levels.RawSetString("INFO", lua.LNumber(LogLevelInfo))
	levels.RawSetString("DEBUG", lua.LNumber(LogLevelDebug))
	levels.RawSetString("TRACE", lua.LNumber(LogLevelTrace))
	m.RawSetString("levels", levels)

	mt := s.L.CreateTable(0, 1)
	mt.RawSetString("__call", s.L.NewFunction(s.luaLogCall))
	s.L.SetMetatable(m, mt)
	return nil
}

// logAt returns a function logging at a fixed level: fn(msg, opts).
func (s *Session) logAt(level zerolog.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		s.guestLog(level, L.CheckString(1), L.OptTable(2, nil))
		return 0
	}
}

// luaLogCall implements dfim.log(msg, level, opts). Unknown levels log at
// info.
func (s *Session) luaLogCall(L *lua.LState) int {
	msg := L.CheckString(2)
	level, ok := guestLevels[L.OptInt(3, LogLevelInfo)]
	if !ok {
		level = zerolog.InfoLevel
	}
	s.guestLog(level, msg, L.OptTable(4, nil))
	return 0
}

func (s *Session) guestLog(level zerolog.Level, msg string, opts *lua.LTable) {
	s.logger.WithLevel(level).Str("target", logTarget(opts)).Msg(msg)
}

// logTarget renders the log target: LUA, or LUA::<target> when opts names
// one.
func logTarget(opts *lua.LTable) string {
	if opts == nil {
		return "LUA"
	}
	if t, ok := opts.RawGetString("target").(lua.LString); ok && t != "" {
		return "LUA::" + string(t)
	}
	return "LUA"
}
