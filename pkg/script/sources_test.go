package script

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dfim/dfim/pkg/source"
)

func TestSourcesSet(t *testing.T) {
	s, out := newTestSession(t, "")
	run(t, s, `
		dfim.sources.set({
			"owner/dotfiles",
			{dir = "/home/me/shared", name = "shared"},
			{file = "/etc/dfim/extra.lua"},
		})
		print(table.concat(dfim.sources.names(), ","))
		print(dfim.sources.len())
		assert(dfim.sources.get("shared").dir == "/home/me/shared")
		assert(dfim.sources.get("dotfiles") == "owner/dotfiles")
		assert(dfim.sources.get("missing") == nil)
		assert(dfim.sources.contains({file = "/etc/dfim/extra.lua"}))
		assert(not dfim.sources.contains("owner/other"))
	`)
	if out.String() != "dotfiles,shared,extra.lua\n3\n" {
		t.Errorf("got %q", out.String())
	}
	if !s.Flag(FlagSourcesSet) {
		t.Error("sources-set flag should be raised")
	}
}

func TestSourcesSetRejectsBadNames(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{name: "duplicate explicit", code: `dfim.sources.set({{"a/x", name = "x"}, {"b/y", name = "x"}})`},
		{name: "duplicate derived", code: `dfim.sources.set({"a/same", "b/same"})`},
		{name: "empty name", code: `dfim.sources.set({{"a/x", name = ""}})`},
		{name: "underivable name", code: `dfim.sources.set({"trailing/"})`},
		{name: "non-string name", code: `dfim.sources.set({{"a/x", name = 1}})`},
		{name: "not a list", code: `dfim.sources.set({name = "x", dir = "/x"})`},
		{name: "blank repo", code: `dfim.sources.set({"   "})`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, "")
			run(t, s, `dfim.sources.set({"keep/me"})`)

			status, err := s.Exec(context.Background(), tt.code)
			if status != StatusError {
				t.Fatalf("expected error, got %s", status)
			}
			if !strings.Contains(err.Error(), "sources.set") {
				t.Errorf("error should name the operation: %v", err)
			}
			if names := s.Sources().Names(); len(names) != 1 || names[0] != "me" {
				t.Errorf("failed set must keep the old content, got %v", names)
			}
		})
	}
}

func TestDecodeEntry(t *testing.T) {
	s, _ := newTestSession(t, "")

	_, err := DecodeEntry(evalLua(t, s.L, `{"a/x", name = ""}`))
	if !errors.Is(err, ErrSourceParse) || !errors.Is(err, source.ErrEmptyName) {
		t.Errorf("expected empty name error, got %v", err)
	}

	e, err := DecodeEntry(evalLua(t, s.L, `{dir = "/srv/conf", name = "srv"}`))
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "srv" || e.Source != source.Directory("/srv/conf") {
		t.Errorf("unexpected entry %+v", e)
	}

	back, err := DecodeEntry(EncodeEntry(s.L, e))
	if err != nil || back != e {
		t.Errorf("entry round trip: got %+v, %v", back, err)
	}
}

func TestSourcesFrozenAfterLayer(t *testing.T) {
	s, _ := newTestSession(t, "")
	run(t, s, `
		dfim.sources.set({"owner/dots"})
		assert(dfim.layers.create("base") == 1)
	`)
	if !s.Flag(FlagLayerCreated) {
		t.Fatal("layer-created flag should be raised")
	}

	mutations := []string{
		`dfim.sources.set({"owner/dots"})`,
		`dfim.sources.set({})`,
		`dfim.sources.add("owner/new")`,
		`dfim.sources.remove("dots")`,
	}
	for _, code := range mutations {
		status, err := s.Exec(context.Background(), code)
		if status != StatusError || !strings.Contains(err.Error(), "after a layer has been created") {
			t.Errorf("%s: expected policy violation, got %s %v", code, status, err)
		}
	}

	if err := s.SetSources(nil); !errors.Is(err, ErrPolicyViolation) {
		t.Errorf("SetSources: expected ErrPolicyViolation, got %v", err)
	}
	if _, err := s.AddSource(source.Entry{Name: "x", Source: source.File("/x")}); !errors.Is(err, ErrPolicyViolation) {
		t.Errorf("AddSource: expected ErrPolicyViolation, got %v", err)
	}

	// reads still work and the layer kept its snapshot
	run(t, s, `assert(dfim.sources.len() == 1)`)
	layers := s.Layers()
	if len(layers) != 1 || layers[0].Name != "base" || len(layers[0].Sources) != 1 {
		t.Errorf("unexpected layers %+v", layers)
	}

	if _, err := s.CreateLayer("base"); !errors.Is(err, ErrPolicyViolation) {
		t.Errorf("duplicate layer: expected ErrPolicyViolation, got %v", err)
	}
	run(t, s, `
		dfim.layers.create("extra")
		local names = dfim.layers.list()
		assert(#names == 2 and names[2] == "extra")
	`)
}

func TestSourcesSetTwiceWarns(t *testing.T) {
	var logs bytes.Buffer
	s, err := NewSession(Options{Logger: zerolog.New(&logs).Level(zerolog.WarnLevel)})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	repo, _ := source.Repo("a/b")
	if err := s.SetSources([]source.Entry{{Name: "b", Source: repo}}); err != nil {
		t.Fatal(err)
	}
	if logs.Len() != 0 {
		t.Fatalf("first set should not warn: %s", logs.String())
	}
	if err := s.SetSources(nil); err != nil {
		t.Fatalf("second set should succeed: %v", err)
	}
	if !strings.Contains(logs.String(), "more than once") {
		t.Errorf("expected warning, got %q", logs.String())
	}
	if s.Sources().Len() != 0 {
		t.Error("second set should replace the content")
	}
}

func TestSourcesAddRemove(t *testing.T) {
	s, _ := newTestSession(t, "")
	run(t, s, `
		assert(dfim.sources.add("owner/one") == true)
		assert(dfim.sources.add("owner/one") == false)
		assert(not pcall(dfim.sources.add, "other/one"))
		assert(dfim.sources.add({dir = "/d", name = "d"}))
		assert(dfim.sources.remove("one") == true)
		assert(dfim.sources.remove({dir = "/d"}) == true)
		assert(dfim.sources.remove("owner/none") == false)
		assert(dfim.sources.len() == 0)
	`)
}

func TestSourcesListRoundTrip(t *testing.T) {
	s, _ := newTestSession(t, "")
	run(t, s, `
		dfim.sources.set({"owner/a", {file = "/f.lua", name = "f"}})
		local listed = dfim.sources.list()
		dfim.sources.set(listed)
		local again = dfim.sources.list()
		assert(#again == 2)
		assert(again[1][1] == "owner/a" and again[1].name == "a")
		assert(again[2].file == "/f.lua" and again[2].name == "f")
	`)
}
