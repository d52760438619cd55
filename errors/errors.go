// Package errors provides the structured error type the wazero adapter
// layer uses to report parse/compile/validate/link/runtime failures: a
// small phase+kind tag pair plus an optional cause and detail string,
// built through a chained Builder rather than ad hoc fmt.Errorf calls.
package errors

import (
	"fmt"
	"strings"
)

// Phase names the pipeline stage an adapter failure occurred in.
type Phase string

const (
	PhaseCompile  Phase = "compile"  // wazero CompileModule
	PhaseDecode   Phase = "decode"   // binary module decoding
	PhaseValidate Phase = "validate" // structural validation
	PhaseRuntime  Phase = "runtime"  // instantiation and invocation
	PhaseLinking  Phase = "linking"  // import resolution against the link state
)

// Kind categorizes the failure within its phase.
type Kind string

const (
	KindInvalidData   Kind = "invalid_data"
	KindMissingImport Kind = "missing_import"
	KindInstantiation Kind = "instantiation"
)

// Error is the structured error type the adapter layer builds and
// errkind.AdapterFail wraps.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same phase and kind,
// ignoring detail/cause/path.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder accumulates an Error's fields before Build freezes it.
type Builder struct {
	err Error
}

// New starts building an Error tagged with phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

// Path records which import (or other named field) the failure concerns.
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cause attaches the underlying error, if any.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable message, formatting it with args if given.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed Error.
func (b *Builder) Build() *Error {
	return &b.err
}
