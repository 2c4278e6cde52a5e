package source

import (
	"errors"
	"reflect"
	"testing"
)

func TestCollectionInsert(t *testing.T) {
	c := NewCollection()
	repo, _ := Repo("user/dotfiles")

	if err := c.Insert("dotfiles", repo); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := c.Insert("dotfiles", Directory("/tmp/other")); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if err := c.Insert("", Directory("/")); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	if err := c.Insert("zero", Source{}); !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource, got %v", err)
	}
	if err := c.Replace([]Entry{{Name: "zero"}}); !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource from Replace, got %v", err)
	}

	got, ok := c.Get("dotfiles")
	if !ok || got != repo {
		t.Errorf("Get() = %#v, %v", got, ok)
	}
	if !c.Contains(repo) {
		t.Error("expected Contains to report the repo")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCollectionReplace(t *testing.T) {
	c := NewCollection()
	_ = c.Insert("old", Directory("/old"))

	err := c.Replace([]Entry{
		{Name: "a", Source: Directory("/a")},
		{Name: "b", Source: File("/b")},
	})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(c.Names(), want) {
		t.Errorf("Names() = %v, want %v", c.Names(), want)
	}
	if _, ok := c.Get("old"); ok {
		t.Error("old entry should have been cleared")
	}

	// a failing replace keeps the current content
	err = c.Replace([]Entry{
		{Name: "x", Source: Directory("/x")},
		{Name: "x", Source: Directory("/y")},
	})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(c.Names(), want) {
		t.Errorf("Names() after failed replace = %v, want %v", c.Names(), want)
	}
}

func TestCollectionRemove(t *testing.T) {
	c := NewCollection()
	_ = c.Insert("a", Directory("/a"))
	_ = c.Insert("b", Directory("/b"))
	_ = c.Insert("c", Directory("/c"))

	if !c.Remove("b") {
		t.Fatal("expected b to be removed")
	}
	if c.Remove("b") {
		t.Fatal("second remove must report false")
	}
	if want := []string{"a", "c"}; !reflect.DeepEqual(c.Names(), want) {
		t.Errorf("Names() = %v, want %v", c.Names(), want)
	}
	if src, ok := c.Get("c"); !ok || src != Directory("/c") {
		t.Errorf("index not rebuilt: Get(c) = %#v, %v", src, ok)
	}

	name, ok := c.RemoveSource(Directory("/a"))
	if !ok || name != "a" {
		t.Errorf("RemoveSource() = %q, %v", name, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCollectionEntriesIsCopy(t *testing.T) {
	c := NewCollection()
	_ = c.Insert("a", Directory("/a"))

	entries := c.Entries()
	entries[0].Name = "mutated"

	if c.Names()[0] != "a" {
		t.Error("Entries must return a copy")
	}
}
