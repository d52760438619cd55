package harness

// NanWidth distinguishes the 32- and 64-bit NaN predicates the oracle
// evaluates.
type NanWidth int

const (
	NanWidth32 NanWidth = iota
	NanWidth64
)

func (w NanWidth) String() string {
	if w == NanWidth64 {
		return "f64"
	}
	return "f32"
}

// HeapType names the heap type of a null reference literal.
type HeapType int

const (
	HeapFunc HeapType = iota
	HeapExtern
)

func (h HeapType) String() string {
	if h == HeapExtern {
		return "extern"
	}
	return "func"
}

// RefKind tags which reference type a RefValue carries.
type RefKind int

const (
	RefFuncKind RefKind = iota
	RefExternKind
)

// FuncHandle is an opaque reference to an exported function, meaningful
// only to the capability.Interpreter that produced it.
type FuncHandle any

// ExternPayload is the payload of a non-null externref: an opaque host
// brand plus an integer value. Two externrefs compare equal only when
// their brands match.
type ExternPayload struct {
	Brand   Brand
	Payload int32
}

// RefValue is the Ref variant of V: either a (possibly null) funcref or a
// (possibly null) externref.
type RefValue struct {
	Kind   RefKind
	Func   FuncHandle     // nil means a null funcref; only meaningful when Kind == RefFuncKind
	Extern *ExternPayload // nil means a null externref; only meaningful when Kind == RefExternKind
}

// V is a runtime value produced by module execution.
//
// V is a sealed interface: the only implementations are the six variants
// below. A type switch over V should always carry a default case that
// hard-fails rather than silently ignoring an unrecognized variant — Go
// has no compile-time exhaustiveness check for interface variants, so this
// is the closest practical substitute.
type V interface {
	isV()
}

// VI32 is the I32(i32) variant of V.
type VI32 int32

func (VI32) isV() {}

// VI64 is the I64(i64) variant of V.
type VI64 int64

func (VI64) isV() {}

// VF32 is the F32(f32) variant of V, stored as raw IEEE-754 bits so
// bit-identical comparison and NaN predicates never round-trip through a
// Go float32 (which can canonicalize NaN payloads on some operations).
type VF32 struct{ Bits uint32 }

func (VF32) isV() {}

// VF64 is the F64(f64) variant of V, stored as raw IEEE-754 bits.
type VF64 struct{ Bits uint64 }

func (VF64) isV() {}

// VV128 is the V128(u128) variant of V.
type VV128 struct{ Bits [16]byte }

func (VV128) isV() {}

// VRef is the Ref(RefValue) variant of V.
type VRef struct{ Ref RefValue }

func (VRef) isV() {}

// ReverseV returns a new slice with vs in reverse order. Used both by the
// action executor (to convert argument order into interpreter push order)
// and the result oracle (to compare the produced stack in the runtime's
// push order).
func ReverseV(vs []V) []V {
	out := make([]V, len(vs))
	for i, v := range vs {
		out[len(vs)-1-i] = v
	}
	return out
}
