package wasm

// Module is a parsed, unvalidated representation of a WebAssembly binary
// module's sections. The conformance harness only needs enough of the
// module's shape to instantiate it through wazero and to run the
// structural checks in validate.go; it carries no GC or exception-handling
// extensions, since those proposals sit outside the core 2.0
// specification this package targets (see doc.go).
type Module struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []uint32 // type indices for declared functions
	Tables   []TableType
	Memories []MemoryType
	Globals  []Global
	Exports  []Export
	Start    *uint32
	Elements []Element
	Code     []FuncBody
	Data     []DataSegment

	// DataCount holds the count from the DataCount section (ID 12),
	// required when data indices appear in code (bulk memory operations).
	DataCount *uint32

	CustomSections []CustomSection
}

// FuncType is a WebAssembly function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// ValType is a WebAssembly value type. See constants.go for ValI32,
// ValI64, ValF32, ValF64, and the reference-type constants.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValV128:
		return "v128"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	case ValRefNull:
		return "ref null"
	case ValRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Import is an imported function, table, memory, or global.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes an imported item. Kind uses KindFunc, KindTable,
// KindMemory, or KindGlobal.
type ImportDesc struct {
	Table   *TableType
	Memory  *MemoryType
	Global  *GlobalType
	TypeIdx uint32
	Kind    byte
}

// TableType describes a table with element type and size limits.
type TableType struct {
	RefElemType *RefType
	Limits      Limits
	Init        []byte
	ElemType    byte
}

// MemoryType describes a linear memory with size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for tables and memories.
type Limits struct {
	Max      *uint64
	Min      uint64
	Shared   bool
	Memory64 bool
}

// RefType is a reference type: funcref, externref, or a nullable
// ref/ref-null built from one of the abstract heap types in constants.go.
type RefType struct {
	Nullable bool
	HeapType int64 // s33: negative for abstract heap types, positive for type indices
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	ValType ValType
	Mutable bool
}

// Global is a global variable with type and initialization.
type Global struct {
	Type GlobalType
	Init []byte // raw init expression bytes
}

// Export describes an exported item. Kind uses KindFunc, KindTable,
// KindMemory, or KindGlobal.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// Element is an element segment. Flags determine the format:
//   - 0: active, tableIdx=0, offset expr, vec(funcidx)
//   - 1: passive, elemkind, vec(funcidx)
//   - 2: active, tableIdx, offset expr, elemkind, vec(funcidx)
//   - 3: declarative, elemkind, vec(funcidx)
//   - 4: active, tableIdx=0, offset expr, vec(expr)
//   - 5: passive, reftype, vec(expr)
//   - 6: active, tableIdx, offset expr, reftype, vec(expr)
//   - 7: declarative, reftype, vec(expr)
type Element struct {
	RefType  *RefType
	Offset   []byte
	FuncIdxs []uint32
	Exprs    [][]byte
	Flags    uint32
	TableIdx uint32
	ElemKind byte
	Type     ValType
}

// FuncBody is a function's local declarations and bytecode.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte // raw code bytes including end opcode
}

// LocalEntry is a group of local variables sharing a type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// DataSegment is a data segment. Flags determine the format:
//   - 0: active, memIdx=0, offset expr, vec(byte)
//   - 1: passive, vec(byte)
//   - 2: active, memIdx, offset expr, vec(byte)
type DataSegment struct {
	Offset []byte
	Init   []byte
	Flags  uint32
	MemIdx uint32
}

// CustomSection is a named custom section's raw data.
type CustomSection struct {
	Name string
	Data []byte
}

func (m *Module) NumImportedFuncs() int { return m.numImportedOfKind(KindFunc) }

func (m *Module) NumImportedGlobals() int { return m.numImportedOfKind(KindGlobal) }

func (m *Module) NumImportedTables() int { return m.numImportedOfKind(KindTable) }

func (m *Module) NumImportedMemories() int { return m.numImportedOfKind(KindMemory) }

func (m *Module) numImportedOfKind(kind byte) int {
	count := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == kind {
			count++
		}
	}
	return count
}

// NumTypes returns the number of entries in the type index space.
func (m *Module) NumTypes() int { return len(m.Types) }

// GetFuncType returns the signature of the function at funcIdx in the
// combined imported+local function index space, or nil if out of range.
func (m *Module) GetFuncType(funcIdx uint32) *FuncType {
	numImported := uint32(m.NumImportedFuncs())
	if funcIdx < numImported {
		for i, imp := range m.Imports {
			if imp.Desc.Kind == KindFunc {
				if funcIdx == 0 {
					return m.typeAt(m.Imports[i].Desc.TypeIdx)
				}
				funcIdx--
			}
		}
	}
	localIdx := funcIdx - numImported
	if int(localIdx) >= len(m.Funcs) {
		return nil
	}
	return m.typeAt(m.Funcs[localIdx])
}

func (m *Module) typeAt(typeIdx uint32) *FuncType {
	if int(typeIdx) >= len(m.Types) {
		return nil
	}
	return &m.Types[typeIdx]
}

// AddType adds a function type and returns its index, reusing an
// existing equal entry if one is present.
func (m *Module) AddType(ft FuncType) uint32 {
	for i, t := range m.Types {
		if typesEqual(t, ft) {
			return uint32(i)
		}
	}
	idx := uint32(len(m.Types))
	m.Types = append(m.Types, ft)
	return idx
}

func typesEqual(a, b FuncType) bool {
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			return false
		}
	}
	return true
}
