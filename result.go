package harness

// ConstLit mirrors the value-constant syntax used both for expected
// literal results and for action arguments; `Const` and `ConstLit` share
// this shape.
//
// ConstLit is sealed; see the note on V about the exhaustiveness
// discipline Go cannot enforce at compile time.
type ConstLit interface {
	isConstLit()
}

// LitI32 is an i32 constant literal.
type LitI32 int32

func (LitI32) isConstLit() {}

// LitI64 is an i64 constant literal.
type LitI64 int64

func (LitI64) isConstLit() {}

// LitF32 is an f32 constant literal, carried as raw bits.
type LitF32 struct{ Bits uint32 }

func (LitF32) isConstLit() {}

// LitF64 is an f64 constant literal, carried as raw bits.
type LitF64 struct{ Bits uint64 }

func (LitF64) isConstLit() {}

// LitV128 is a v128 constant literal.
type LitV128 struct{ Bits [16]byte }

func (LitV128) isConstLit() {}

// LitNull is a `null(heap_type)` literal.
type LitNull struct{ Heap HeapType }

func (LitNull) isConstLit() {}

// LitExtern is an `extern(i32)` literal.
type LitExtern struct{ Payload int32 }

func (LitExtern) isConstLit() {}

// LitUnsupported is the unsupported tail variant: matching against it is
// always a hard implementation error, never a silent rejection.
type LitUnsupported struct{ Detail string }

func (LitUnsupported) isConstLit() {}

// Const is an action-argument constant. It shares ConstLit's shape: the
// same `I32/64/F32/64/V128`, `null`, and `extern` literal grammar used
// for expected results.
type Const = ConstLit

// ExpR is an expected result consumed by the oracle.
//
// ExpR is sealed; see the note on V.
type ExpR interface {
	isExpR()
}

// ExpLiteral expects a concrete literal value.
type ExpLiteral struct{ Lit ConstLit }

func (ExpLiteral) isExpR() {}

// ExpNanCanon expects any NaN of the given width (sign-agnostic).
type ExpNanCanon struct{ Width NanWidth }

func (ExpNanCanon) isExpR() {}

// ExpNanArith expects an arithmetic NaN of the given width: one whose
// bits, ANDed with the canonical positive NaN's bits, equal the canonical
// positive NaN's bits. This is deliberately not the strictly symmetric
// definition some runtimes use.
type ExpNanArith struct{ Width NanWidth }

func (ExpNanArith) isExpR() {}
