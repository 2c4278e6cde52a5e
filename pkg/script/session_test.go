package script

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

func newTestSession(t *testing.T, pluginDir string) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s, err := NewSession(Options{
		Version:   "0.1.0-test",
		PluginDir: pluginDir,
		Logger:    zerolog.Nop(),
		Stdout:    &out,
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s, &out
}

// run executes code and fails the test on error.
func run(t *testing.T, s *Session, code string) {
	t.Helper()
	if err := s.ExecString(context.Background(), code, "test"); err != nil {
		t.Fatalf("lua error: %v\n%s", err, code)
	}
}

func TestExecClassification(t *testing.T) {
	s, _ := newTestSession(t, "")

	tests := []struct {
		name  string
		chunk string
		want  Status
	}{
		{name: "statement", chunk: "local x = 1", want: StatusOK},
		{name: "call", chunk: "print('hi')", want: StatusOK},
		{name: "unterminated table", chunk: "local t = {", want: StatusIncomplete},
		{name: "open block", chunk: "for i = 1, 3 do", want: StatusIncomplete},
		{name: "dangling operator", chunk: "local y = 1 +", want: StatusIncomplete},
		{name: "multi-line complete", chunk: "local t = {\n}", want: StatusOK},
		{name: "number", chunk: "42", want: StatusBareExpression},
		{name: "identifier", chunk: "dfim", want: StatusBareExpression},
		{name: "arithmetic", chunk: "1 + 1", want: StatusBareExpression},
		{name: "statement then expression", chunk: "local a = 1 a", want: StatusBareExpression},
		{name: "call then expression", chunk: "print(1) a", want: StatusBareExpression},
		{name: "expression on next line", chunk: "x = 1\ny.z", want: StatusBareExpression},
		{name: "expression inside open block", chunk: "if true then a", want: StatusIncomplete},
		{name: "syntax error", chunk: "local = 3", want: StatusError},
		{name: "runtime error", chunk: "error('boom')", want: StatusError},
		{name: "nil call", chunk: "missing_function()", want: StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Exec(context.Background(), tt.chunk)
			if got != tt.want {
				t.Fatalf("Exec(%q) = %s (%v), want %s", tt.chunk, got, err, tt.want)
			}
			if (got == StatusOK) != (err == nil) {
				t.Errorf("status %s with error %v", got, err)
			}
		})
	}
}

func TestRootMetadata(t *testing.T) {
	s, out := newTestSession(t, "")
	run(t, s, `print(dfim.version, dfim.os_name, dfim.arch, dfim.os_family, type(dfim.target_triple))`)

	family := "unix"
	if runtime.GOOS == "windows" {
		family = "windows"
	}
	want := strings.Join([]string{"0.1.0-test", runtime.GOOS, runtime.GOARCH, family, "string"}, "\t") + "\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}

	loaded, err := loadedTable(s.L)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RawGetString(RootModule) != s.L.GetGlobal(RootModule) {
		t.Error("package.loaded.dfim and the global dfim should be the same table")
	}
}

func TestExecFile(t *testing.T) {
	s, out := newTestSession(t, "")
	path := t.TempDir() + "/init.lua"
	writeTestFile(t, path, "print(dfim.trim('  padded  '))\n")

	if err := s.ExecFile(context.Background(), path); err != nil {
		t.Fatalf("ExecFile failed: %v", err)
	}
	if out.String() != "padded\n" {
		t.Errorf("got %q", out.String())
	}

	if err := s.ExecFile(context.Background(), path+".missing"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExecHonorsContext(t *testing.T) {
	s, _ := newTestSession(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := s.Exec(ctx, "while true do end")
	if status != StatusError || err == nil {
		t.Fatalf("expected cancelled loop to fail, got %s %v", status, err)
	}
	// the session stays usable after a cancelled call
	if status, err := s.Exec(context.Background(), "local ok = true"); status != StatusOK {
		t.Fatalf("session unusable after cancel: %v", err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	a, _ := newTestSession(t, "")
	b, _ := newTestSession(t, "")

	if err := a.SetFlag(FlagLayerCreated, true); err != nil {
		t.Fatal(err)
	}
	if b.Flag(FlagLayerCreated) {
		t.Error("flag leaked between sessions")
	}
	if a.ID() == b.ID() {
		t.Error("sessions share an id")
	}
	if a.L.GetGlobal("print") == lua.LNil {
		t.Error("print should be installed")
	}
}
