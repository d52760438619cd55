package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseLinking,
				Kind:   KindMissingImport,
				Path:   []string{"math", "add"},
				Detail: "no module registered under this name",
			},
			contains: []string{"[linking]", "missing_import", "math.add", "no module registered"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindInvalidData,
			},
			contains: []string{"[decode]", "invalid_data"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRuntime,
				Kind:   KindInstantiation,
				Detail: "start function trapped",
				Cause:  errors.New("unreachable"),
			},
			contains: []string{"[runtime]", "instantiation", "start function trapped", "caused by", "unreachable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseCompile,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestErrorIs(t *testing.T) {
	err := &Error{
		Phase: PhaseValidate,
		Kind:  KindInvalidData,
		Path:  []string{"export[3]"},
	}

	if !err.Is(&Error{Phase: PhaseValidate, Kind: KindInvalidData}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindInvalidData}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseValidate, Kind: KindMissingImport}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseValidate, Kind: KindInvalidData}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("module not found")
	err := New(PhaseLinking, KindMissingImport).
		Path("spectest", "print_i32").
		Cause(cause).
		Detail("import %q.%q has no satisfying module", "spectest", "print_i32").
		Build()

	if err.Phase != PhaseLinking {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseLinking)
	}
	if err.Kind != KindMissingImport {
		t.Errorf("Kind = %v, want %v", err.Kind, KindMissingImport)
	}
	if len(err.Path) != 2 || err.Path[0] != "spectest" || err.Path[1] != "print_i32" {
		t.Errorf("Path = %v, want [spectest print_i32]", err.Path)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	wantDetail := `import "spectest"."print_i32" has no satisfying module`
	if err.Detail != wantDetail {
		t.Errorf("Detail = %q, want %q", err.Detail, wantDetail)
	}
}

func TestBuilderDetailFormatsWithArgs(t *testing.T) {
	err := New(PhaseRuntime, KindInstantiation).
		Detail("exceeded %d bytes", 1024).
		Build()
	if err.Detail != "exceeded 1024 bytes" {
		t.Errorf("Detail = %q, want %q", err.Detail, "exceeded 1024 bytes")
	}
}

func TestBuilderDetailWithoutArgs(t *testing.T) {
	err := New(PhaseCompile, KindInvalidData).Detail("malformed section").Build()
	if err.Detail != "malformed section" {
		t.Errorf("Detail = %q, want %q", err.Detail, "malformed section")
	}
}
