package script

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPluginResolution(t *testing.T) {
	root := t.TempDir()
	barFile := filepath.Join(root, "demo", "lua", "foo", "bar.lua")
	writeTestFile(t, barFile, `return { name = "bar", arg = ... }`)

	s, out := newTestSession(t, root)

	res, diags, err := s.Resolve("foo.bar")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Loader == nil || res.Origin != barFile {
		t.Fatalf("expected %s, got %+v (diagnostics %v)", barFile, res, diags)
	}

	res, diags, err = s.Resolve("foo.baz")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Loader != nil {
		t.Fatalf("foo.baz should not resolve, got %s", res.Origin)
	}
	want := "no dfim plugins contain module 'foo.baz' (1 searched)"
	if len(diags) != 1 || diags[0] != want {
		t.Errorf("diagnostics = %q, want %q", diags, want)
	}

	run(t, s, `
		local bar = require("foo.bar")
		print(bar.name, bar.arg)
		assert(require("foo.bar") == bar)
	`)
	if out.String() != "bar\tfoo.bar\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestPluginInitModule(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "kit", "lua", "kit", "init.lua"), `return "kit-init"`)

	s, out := newTestSession(t, root)
	run(t, s, `print(require("kit"))`)
	if out.String() != "kit-init\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestPluginResolverRunsLast(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "demo", "lua", "shadow.lua"), `return "plugin"`)

	s, out := newTestSession(t, root)
	run(t, s, `
		package.preload["shadow"] = function() return "preload" end
		print(require("shadow"))
	`)
	if out.String() != "preload\n" {
		t.Errorf("preload should win over plugins, got %q", out.String())
	}
}

func TestPluginNotFoundMessage(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nowhere")
	s, _ := newTestSession(t, missing)

	_, err := s.Exec(context.Background(), `require("absent.mod")`)
	if err == nil {
		t.Fatal("expected require to fail")
	}
	msg := err.Error()
	if !strings.Contains(msg, "no field package.preload['absent.mod']") {
		t.Errorf("standard searcher diagnostics missing: %s", msg)
	}
	if !strings.Contains(msg, "no dfim plugin directory '"+missing+"'") {
		t.Errorf("plugin diagnostic missing: %s", msg)
	}
}

func TestPluginLoadError(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "demo", "lua", "broken.lua"), `local x = {`)

	s, _ := newTestSession(t, root)
	if _, _, err := s.Resolve("broken"); err == nil || !strings.Contains(err.Error(), "failed to load module 'broken'") {
		t.Fatalf("expected plugin load error, got %v", err)
	}

	status, err := s.Exec(context.Background(), `require("broken")`)
	if status != StatusError || err == nil {
		t.Fatalf("expected require to fail, got %s", status)
	}
}

func TestNoPluginDir(t *testing.T) {
	s, _ := newTestSession(t, "")
	res, diags, err := s.Resolve("anything")
	if err != nil || res.Loader != nil || len(diags) != 0 {
		t.Errorf("no resolvers expected, got %+v %v %v", res, diags, err)
	}
}
