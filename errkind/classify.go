package errkind

import "strings"

// Canonical projects err to the string the classifier matches against an
// expected prefix. Errors that do not already implement Kind are wrapped
// in Msg using their Go Error() text, so any capability error — not just
// ones that bothered to construct a Kind — can be classified.
func Canonical(err error) string {
	return AsKind(err).Canonical()
}

// AsKind coerces err to a Kind, wrapping it in Msg if it is not already
// one.
func AsKind(err error) Kind {
	if k, ok := err.(Kind); ok {
		return k
	}
	return Msg{Text: err.Error()}
}

// CheckError reports whether k's canonical form matches expected: exact
// match, prefix match, or one of a small set of fuzzy-match carve-outs
// that reconcile known wording divergences between this harness and the
// upstream conformance corpus. These carve-outs are the sole license for
// fuzzy matching; everything else is strict prefix comparison.
func CheckError(expected string, k Kind) bool {
	s := k.Canonical()

	if s == expected || strings.HasPrefix(s, expected) {
		return true
	}

	if strings.HasPrefix(s, "constant out of range") && strings.HasPrefix(expected, "i32 constant") {
		return true
	}
	if _, ok := k.(ConstantOutOfRange); ok && strings.HasPrefix(expected, "i32 constant") {
		return true
	}
	if s == "unexpected end of section or function" && expected == "section size mismatch" {
		return true
	}

	return false
}

// CheckErrorResult wraps a staged computation that is expected to fail
// with an error matching expected. err is the result of
// that computation: nil on unexpected success, the produced error
// otherwise. Returns nil when the directive is satisfied, or the Kind to
// surface as the directive's (fatal) failure otherwise.
func CheckErrorResult(expected string, err error) error {
	if err == nil {
		return DidNotFailButExpected{Expected: expected}
	}
	k := AsKind(err)
	if CheckError(expected, k) {
		return nil
	}
	return FailedWithButExpected{Actual: k, Expected: expected}
}
