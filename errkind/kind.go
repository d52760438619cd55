// Package errkind implements the harness's error taxonomy and the
// expected-error classifier.
package errkind

import (
	"fmt"

	"github.com/wastrun/harness/errors"
)

// Kind is the flat tagged sum of errors the harness can produce or
// propagate from a pipeline stage.
//
// Kind is sealed and also satisfies the error interface, so a Kind can be
// returned directly from any pipeline stage. See the note on harness.V
// about the exhaustiveness discipline Go cannot enforce at compile time.
type Kind interface {
	error
	// Canonical returns the string the classifier matches an expected
	// prefix against.
	Canonical() string
}

// Msg is a plain message error, canonicalizing to itself.
type Msg struct{ Text string }

func (m Msg) Canonical() string { return m.Text }
func (m Msg) Error() string     { return m.Text }

// ParseFail is a parser-originated message error, canonicalizing to
// itself, same as Msg.
type ParseFail struct{ Text string }

func (m ParseFail) Canonical() string { return m.Text }
func (m ParseFail) Error() string     { return m.Text }

// AdapterFail wraps a structured failure reported by an underlying
// wazero/wasm/wat call. Canonical always projects to Err.Detail, which
// callers set to the wrapped error's own message so classification is
// unaffected by the wrapping; Error and Unwrap expose the full
// phase/kind/cause detail for logs and error-chain inspection.
type AdapterFail struct{ Err *errors.Error }

func (e AdapterFail) Canonical() string { return e.Err.Detail }
func (e AdapterFail) Error() string     { return e.Err.Error() }
func (e AdapterFail) Unwrap() error     { return e.Err.Cause }

// ConstantOutOfRange is the distinguished kind produced when a numeric
// literal overflows its target width during parsing.
type ConstantOutOfRange struct{}

func (ConstantOutOfRange) Canonical() string { return "constant out of range" }
func (ConstantOutOfRange) Error() string     { return "constant out of range" }

// UnboundLastModule is produced when an action without an explicit module
// id is resolved before any module has been instantiated.
type UnboundLastModule struct{}

func (UnboundLastModule) Canonical() string { return "unbound last module" }
func (UnboundLastModule) Error() string     { return "unbound last module" }

// UnboundModule is produced when an action names a module id with no
// matching entry in the link state.
type UnboundModule struct{ ID string }

func (e UnboundModule) Canonical() string { return fmt.Sprintf("unbound module %q", e.ID) }
func (e UnboundModule) Error() string     { return e.Canonical() }

// UnboundName is produced when a resolved module has no export with the
// requested name.
type UnboundName struct{ Name string }

func (e UnboundName) Canonical() string { return fmt.Sprintf("unbound name %q", e.Name) }
func (e UnboundName) Error() string     { return e.Canonical() }

// BadResult is produced by assert_return when the produced stack does not
// satisfy the expected result. Always fatal.
type BadResult struct{ Expected, Got string }

func (e BadResult) Canonical() string {
	return fmt.Sprintf("bad result: expected %s, got %s", e.Expected, e.Got)
}
func (e BadResult) Error() string { return e.Canonical() }

// FailedWithButExpected is produced when a pipeline stage failed, but not
// with an error matching the directive's expectation.
type FailedWithButExpected struct {
	Actual   Kind
	Expected string
}

func (e FailedWithButExpected) Canonical() string {
	return fmt.Sprintf("failed with %q but expected %q", e.Actual.Canonical(), e.Expected)
}
func (e FailedWithButExpected) Error() string { return e.Canonical() }

// DidNotFailButExpected is produced when an assert-failure directive's
// staged computation unexpectedly succeeded.
type DidNotFailButExpected struct{ Expected string }

func (e DidNotFailButExpected) Canonical() string {
	return fmt.Sprintf("did not fail but expected %q", e.Expected)
}
func (e DidNotFailButExpected) Error() string { return e.Canonical() }
