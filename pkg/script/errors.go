package script

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures of the scripting layer.
type ErrorKind string

const (
	// KindConversion is a value bridge type mismatch or a number that cannot
	// be represented.
	KindConversion ErrorKind = "conversion"

	// KindNamespaceConflict is a namespace segment that collides with a
	// non-table value.
	KindNamespaceConflict ErrorKind = "namespace-conflict"

	// KindEmptyModulePath is an empty dotted name or an empty segment in one.
	KindEmptyModulePath ErrorKind = "empty-module-path"

	// KindRegistryTypeConflict is a guard flag key that already holds a
	// non-boolean value.
	KindRegistryTypeConflict ErrorKind = "registry-type-conflict"

	// KindPolicyViolation is a guard-enforced ordering rule being broken.
	KindPolicyViolation ErrorKind = "policy-violation"

	// KindSourceParse is a source value that cannot be parsed.
	KindSourceParse ErrorKind = "source-parse"

	// KindPluginLoad is a resolved plugin file that failed to compile.
	KindPluginLoad ErrorKind = "plugin-load"

	// KindProcessSpawn is a child process that could not be started.
	KindProcessSpawn ErrorKind = "process-spawn"
)

// Error is a classified scripting error.
type Error struct {
	// Kind is the error classification.
	Kind ErrorKind

	// Message is the human-readable description.
	Message string

	// Op names the operation that failed, if known.
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		if e.Message != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrConversion           = &Error{Kind: KindConversion}
	ErrNamespaceConflict    = &Error{Kind: KindNamespaceConflict}
	ErrEmptyModulePath      = &Error{Kind: KindEmptyModulePath}
	ErrRegistryTypeConflict = &Error{Kind: KindRegistryTypeConflict}
	ErrPolicyViolation      = &Error{Kind: KindPolicyViolation}
	ErrSourceParse          = &Error{Kind: KindSourceParse}
	ErrPluginLoad           = &Error{Kind: KindPluginLoad}
	ErrProcessSpawn         = &Error{Kind: KindProcessSpawn}
)

func newError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// wrapError classifies err under kind for op, keeping an existing *Error
// intact apart from its operation name.
func wrapError(kind ErrorKind, op string, err error) *Error {
	var serr *Error
	if errors.As(err, &serr) {
		out := *serr
		out.Op = op
		return &out
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// withOp sets the operation name and returns e.
func (e *Error) withOp(op string) *Error {
	e.Op = op
	return e
}
