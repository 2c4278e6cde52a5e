package source

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName is returned when an entry has no usable name.
	ErrEmptyName = errors.New("source name must not be empty")

	// ErrDuplicateName is returned when a name is already taken.
	ErrDuplicateName = errors.New("duplicate source name")
)

// Entry is a named source.
type Entry struct {
	Name   string
	Source Source
}

// Collection is an insertion-ordered set of sources keyed by name.
// It is not safe for concurrent use.
type Collection struct {
	entries []Entry
	index   map[string]int
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{index: make(map[string]int)}
}

// Insert appends src under name.
func (c *Collection) Insert(name string, src Source) error {
	if name == "" {
		return fmt.Errorf("%w (source %q)", ErrEmptyName, src.String())
	}
	if src.IsZero() {
		return fmt.Errorf("%w: source for %q has no kind", ErrInvalidSource, name)
	}
	if _, exists := c.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, Entry{Name: name, Source: src})
	return nil
}

// Replace clears the collection and fills it with entries in order. The new
// content is validated as a whole first; on error the collection is left
// unchanged.
func (c *Collection) Replace(entries []Entry) error {
	next := NewCollection()
	for _, e := range entries {
		if err := next.Insert(e.Name, e.Source); err != nil {
			return err
		}
	}
	c.entries = next.entries
	c.index = next.index
	return nil
}

// Remove deletes the entry stored under name and reports whether it existed.
func (c *Collection) Remove(name string) bool {
	i, ok := c.index[name]
	if !ok {
		return false
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	c.reindex()
	return true
}

// RemoveSource deletes the first entry holding src and returns its name.
func (c *Collection) RemoveSource(src Source) (string, bool) {
	for _, e := range c.entries {
		if e.Source == src {
			c.Remove(e.Name)
			return e.Name, true
		}
	}
	return "", false
}

// Get returns the source stored under name.
func (c *Collection) Get(name string) (Source, bool) {
	i, ok := c.index[name]
	if !ok {
		return Source{}, false
	}
	return c.entries[i].Source, true
}

// Contains reports whether any entry holds src.
func (c *Collection) Contains(src Source) bool {
	for _, e := range c.entries {
		if e.Source == src {
			return true
		}
	}
	return false
}

// Entries returns a copy of the entries in insertion order.
func (c *Collection) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Names returns the entry names in insertion order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	return len(c.entries)
}

func (c *Collection) reindex() {
	c.index = make(map[string]int, len(c.entries))
	for i, e := range c.entries {
		c.index[e.Name] = i
	}
}
