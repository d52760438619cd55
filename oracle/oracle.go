// Package oracle implements the result oracle: deciding whether a
// produced value stack satisfies a symbolic expected-result list,
// including IEEE-754 NaN bit-pattern predicates and host-reference
// equality under the opaque type brand.
package oracle

import (
	"fmt"
	"math"
	"strconv"

	"github.com/wastrun/harness"
)

// UnsupportedError is a hard implementation error: match1 was asked to
// judge an ExpR or ConstLit variant it does not recognize. These must
// never be treated as a plain mismatch.
type UnsupportedError struct{ Detail string }

func (e *UnsupportedError) Error() string { return "oracle: unsupported variant: " + e.Detail }

const (
	posNanF32Bits uint32 = 0x7fc00000
	posNanF64Bits uint64 = 0x7ff8000000000000
)

// Matches reports whether expected and produced have equal length and
// satisfy Match1 position-wise, after reversing produced into the
// runtime's push order.
func Matches(expected []harness.ExpR, produced []harness.V) (bool, error) {
	if len(expected) != len(produced) {
		return false, nil
	}
	rev := harness.ReverseV(produced)
	for i, e := range expected {
		ok, err := Match1(e, rev[i])
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Match1 judges a single (expected, produced) pair.
func Match1(e harness.ExpR, v harness.V) (bool, error) {
	switch ex := e.(type) {
	case harness.ExpLiteral:
		return matchLiteral(ex.Lit, v)
	case harness.ExpNanCanon:
		return matchNanCanon(ex.Width, v), nil
	case harness.ExpNanArith:
		return matchNanArith(ex.Width, v), nil
	default:
		return false, &UnsupportedError{Detail: fmt.Sprintf("ExpR %T", e)}
	}
}

func matchLiteral(lit harness.ConstLit, v harness.V) (bool, error) {
	switch l := lit.(type) {
	case harness.LitI32:
		vi, ok := v.(harness.VI32)
		return ok && int32(l) == int32(vi), nil
	case harness.LitI64:
		vi, ok := v.(harness.VI64)
		return ok && int64(l) == int64(vi), nil
	case harness.LitF32:
		vf, ok := v.(harness.VF32)
		if !ok {
			return false, nil
		}
		return l.Bits == vf.Bits || sameDecimalF32(l.Bits, vf.Bits), nil
	case harness.LitF64:
		vf, ok := v.(harness.VF64)
		if !ok {
			return false, nil
		}
		return l.Bits == vf.Bits || sameDecimalF64(l.Bits, vf.Bits), nil
	case harness.LitV128:
		vv, ok := v.(harness.VV128)
		return ok && l.Bits == vv.Bits, nil
	case harness.LitNull:
		vr, ok := v.(harness.VRef)
		if !ok {
			return false, nil
		}
		switch l.Heap {
		case harness.HeapFunc:
			return vr.Ref.Kind == harness.RefFuncKind && vr.Ref.Func == nil, nil
		case harness.HeapExtern:
			return vr.Ref.Kind == harness.RefExternKind && vr.Ref.Extern == nil, nil
		default:
			return false, &UnsupportedError{Detail: fmt.Sprintf("HeapType %v", l.Heap)}
		}
	case harness.LitExtern:
		vr, ok := v.(harness.VRef)
		if !ok || vr.Ref.Kind != harness.RefExternKind || vr.Ref.Extern == nil {
			return false, nil
		}
		return vr.Ref.Extern.Brand.Equal(harness.HostBrand()) && vr.Ref.Extern.Payload == l.Payload, nil
	case harness.LitUnsupported:
		return false, &UnsupportedError{Detail: "Literal(Host _): " + l.Detail}
	default:
		return false, &UnsupportedError{Detail: fmt.Sprintf("ConstLit %T", lit)}
	}
}

func matchNanCanon(w harness.NanWidth, v harness.V) bool {
	switch w {
	case harness.NanWidth32:
		vf, ok := v.(harness.VF32)
		return ok && isNanF32(vf.Bits)
	case harness.NanWidth64:
		vf, ok := v.(harness.VF64)
		return ok && isNanF64(vf.Bits)
	default:
		return false
	}
}

// matchNanArith accepts any result whose bits, ANDed with the canonical
// positive NaN's bits, equal the canonical positive NaN's bits. The mask
// leaves out the sign bit, so a quiet NaN of either sign matches; the
// check stays this plain mask rather than being tightened.
func matchNanArith(w harness.NanWidth, v harness.V) bool {
	switch w {
	case harness.NanWidth32:
		vf, ok := v.(harness.VF32)
		return ok && vf.Bits&posNanF32Bits == posNanF32Bits
	case harness.NanWidth64:
		vf, ok := v.(harness.VF64)
		return ok && vf.Bits&posNanF64Bits == posNanF64Bits
	default:
		return false
	}
}

func isNanF32(bits uint32) bool { return math.IsNaN(float64(math.Float32frombits(bits))) }
func isNanF64(bits uint64) bool { return math.IsNaN(math.Float64frombits(bits)) }

// sameDecimalF32 accommodates runtime implementations that reconstruct a
// float literal whose bits differ from the source but whose canonical
// decimal rendering is identical.
func sameDecimalF32(a, b uint32) bool {
	fa := math.Float32frombits(a)
	fb := math.Float32frombits(b)
	return strconv.FormatFloat(float64(fa), 'g', -1, 32) == strconv.FormatFloat(float64(fb), 'g', -1, 32)
}

func sameDecimalF64(a, b uint64) bool {
	fa := math.Float64frombits(a)
	fb := math.Float64frombits(b)
	return strconv.FormatFloat(fa, 'g', -1, 64) == strconv.FormatFloat(fb, 'g', -1, 64)
}
