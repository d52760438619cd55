// Package errors is the adapter layer's structured error type: a
// Phase/Kind tag pair plus an optional cause and path, built through a
// chained Builder instead of scattered fmt.Errorf calls.
//
// Build an error with:
//
//	err := errors.New(errors.PhaseLinking, errors.KindMissingImport).
//		Path("spectest", "print_i32").
//		Cause(cause).
//		Detail("import %q.%q has no satisfying module", "spectest", "print_i32").
//		Build()
//
// errkind.AdapterFail wraps *Error to satisfy the harness's Kind
// interface, projecting Detail as the canonical message the conformance
// runner matches against expected-error strings.
package errors
