// Package source defines the locations dfim collects dotfiles from and the
// ordered, name-keyed collection that holds them.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies the variant of a Source.
type Kind int

const (
	// KindRepo is a repository reference such as "user/dotfiles".
	KindRepo Kind = iota + 1
	// KindDirectory is a local directory.
	KindDirectory
	// KindFile is a single local file.
	KindFile
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindRepo:
		return "repo"
	case KindDirectory:
		return "dir"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// ErrInvalidSource is returned when a source value cannot be constructed.
var ErrInvalidSource = errors.New("invalid source")

// Source is a repository reference, a directory or a file. The zero value is
// not a valid source. Sources are comparable; two sources are equal when both
// the variant and the payload match.
type Source struct {
	kind  Kind
	value string
}

// Repo returns a repository source. The identifier must contain at least one
// non-whitespace character.
func Repo(identifier string) (Source, error) {
	if strings.TrimSpace(identifier) == "" {
		return Source{}, fmt.Errorf("%w: value must not be empty or whitespace", ErrInvalidSource)
	}
	return Source{kind: KindRepo, value: identifier}, nil
}

// Directory returns a directory source.
func Directory(path string) Source {
	return Source{kind: KindDirectory, value: path}
}

// File returns a file source.
func File(path string) Source {
	return Source{kind: KindFile, value: path}
}

// Kind returns the source variant.
func (s Source) Kind() Kind { return s.kind }

// Value returns the identifier or path carried by the source.
func (s Source) Value() string { return s.value }

// IsZero reports whether s is the zero Source.
func (s Source) IsZero() bool { return s.kind == 0 }

// Name derives a short label for the source. The result may be empty: a repo
// identifier with a trailing slash, or a path without a final normal
// component ("/", ".", "..").
func (s Source) Name() string {
	switch s.kind {
	case KindRepo:
		return s.value[strings.LastIndex(s.value, "/")+1:]
	case KindDirectory, KindFile:
		if s.value == "" || endsInDotDir(s.value) {
			return ""
		}
		base := filepath.Base(filepath.Clean(s.value))
		if base == "." || base == ".." || base == string(filepath.Separator) {
			return ""
		}
		return base
	default:
		return ""
	}
}

// endsInDotDir reports whether the last component of path, ignoring
// trailing separators, is "." or "..".
func endsInDotDir(path string) bool {
	trimmed := strings.TrimRight(path, "/"+string(filepath.Separator))
	last := trimmed[strings.LastIndexAny(trimmed, "/"+string(filepath.Separator))+1:]
	return last == "." || last == ".."
}

// String implements fmt.Stringer.
func (s Source) String() string {
	return s.value
}

// GoString renders the variant together with the payload.
func (s Source) GoString() string {
	return fmt.Sprintf("%s(%q)", s.kind, s.value)
}
