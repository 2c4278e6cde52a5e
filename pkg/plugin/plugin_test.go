package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRootInstalled(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(dir, "README"), "not a plugin")

	plugins, err := NewRoot(dir).Installed()
	if err != nil {
		t.Fatalf("Installed failed: %v", err)
	}
	var names []string
	for _, p := range plugins {
		names = append(names, p.Name)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("plugin %d: got %s, want %s", i, names[i], want[i])
		}
	}
}

func TestRootMissing(t *testing.T) {
	root := NewRoot(filepath.Join(t.TempDir(), "absent"))
	if root.Exists() {
		t.Fatal("expected missing root")
	}
	_, err := root.Installed()
	if !IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	barFile := filepath.Join(dir, "demo", LuaDir, "foo", "bar.lua")
	writeFile(t, barFile, "return {}")
	initFile := filepath.Join(dir, "other", LuaDir, "pkg", "init.lua")
	writeFile(t, initFile, "return {}")

	root := NewRoot(dir)

	tests := []struct {
		name         string
		module       string
		wantFile     string
		wantFound    bool
		wantSearched int
	}{
		{name: "nested module", module: "foo.bar", wantFile: barFile, wantFound: true, wantSearched: 1},
		{name: "init module", module: "pkg", wantFile: initFile, wantFound: true, wantSearched: 2},
		{name: "missing module", module: "foo.baz", wantFound: false, wantSearched: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, searched, found, err := root.Find(tt.module)
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if searched != tt.wantSearched {
				t.Errorf("searched = %d, want %d", searched, tt.wantSearched)
			}
			if found && match.File != tt.wantFile {
				t.Errorf("file = %s, want %s", match.File, tt.wantFile)
			}
		})
	}
}

func TestProbePrefersFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, LuaDir, "mod.lua")
	writeFile(t, file, "return 1")
	writeFile(t, filepath.Join(dir, LuaDir, "mod", "init.lua"), "return 2")

	got, ok := Plugin{Name: "p", Path: dir}.Probe("mod")
	if !ok || got != file {
		t.Errorf("Probe = %q, %v; want %q", got, ok, file)
	}
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	p := Plugin{Name: "demo", Path: dir}

	if _, err := p.Manifest(); !errors.Is(err, ErrNoManifest) {
		t.Fatalf("expected ErrNoManifest, got %v", err)
	}

	writeFile(t, filepath.Join(dir, ManifestFile), "name: demo\nversion: 1.2.0\nrequires: [core]\n")
	m, err := p.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}
	if m.Name != "demo" || m.Version != "1.2.0" || len(m.Requires) != 1 {
		t.Errorf("unexpected manifest: %+v", m)
	}

	invalid := []string{
		"version: 1.0.0\n",
		"name: demo\nversion: not-a-version\n",
		"name: [unclosed\n",
	}
	for _, data := range invalid {
		if _, err := ParseManifest([]byte(data)); err == nil {
			t.Errorf("expected error for %q", data)
		}
	}
}
