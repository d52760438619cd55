// Package wasm provides WebAssembly binary format parsing and encoding
// for the core module surface this harness exercises against wazero.
//
// This package parses and encodes WebAssembly binary modules conforming
// to the WebAssembly 2.0 specification, plus the handful of post-2.0
// proposals a conformance run still needs at the binary-decode layer.
// It deliberately does not carry the GC proposal (structs, arrays, rec
// groups) or the exception-handling/tag proposal (try/catch/throw,
// tags): neither is part of core 2.0, and the harness has no test
// suite driving them.
//
// # Supported Features
//
//	WebAssembly 2.0:
//	  - Core value types (i32, i64, f32, f64)
//	  - Functions, tables, memories, globals
//	  - Control flow, calls, local/global access
//	  - Memory and table operations
//	  - Import/export of all definitions
//
//	Post-2.0 Proposals:
//	  - Typed function references (call_ref, ref.as_non_null, br_on_null)
//	  - Tail calls (return_call, return_call_indirect)
//	  - SIMD (128-bit vector operations, v128 type)
//	  - Threads (atomic operations, shared memory)
//	  - Bulk memory (memory.copy, memory.fill, data.drop)
//	  - Reference types (funcref, externref, ref.null, ref.is_null)
//	  - Multi-memory (multiple memory instances)
//	  - Memory64 (64-bit memory addressing)
//
// # Parsing
//
// Parse a WebAssembly module from binary:
//
//	data, _ := os.ReadFile("module.wasm")
//	module, err := wasm.ParseModule(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Parse with validation enabled:
//
//	module, err := wasm.ParseModuleValidate(data)
//
// # Encoding
//
// Encode a module back to binary:
//
//	encoded := module.Encode()
//
// Round-trip parsing and encoding preserves module semantics:
//
//	original, _ := wasm.ParseModule(data)
//	roundtrip, _ := wasm.ParseModule(original.Encode())
//	// original and roundtrip are semantically equivalent
//
// # Module Structure
//
// A parsed module contains all sections:
//
//	module.Types      []FuncType    // Function signatures
//	module.Funcs      []uint32      // Type indices for functions
//	module.Tables     []TableType   // Table definitions
//	module.Memories   []MemoryType  // Memory definitions
//	module.Globals    []Global      // Global definitions
//	module.Imports    []Import      // Imported definitions
//	module.Exports    []Export      // Exported definitions
//	module.Code       []FuncBody    // Function bodies
//	module.Data       []DataSegment // Data segments
//	module.Elements   []Element     // Element segments
//
// # Instructions
//
// Decode instructions from bytecode:
//
//	instructions, err := wasm.DecodeInstructions(code)
//	for _, instr := range instructions {
//	    fmt.Printf("0x%02x\n", instr.Opcode)
//	}
//
// Encode instructions back to bytecode:
//
//	encoded := wasm.EncodeInstructions(instructions)
//
// # Validation
//
// Validate module structure:
//
//	if err := module.Validate(); err != nil {
//	    log.Printf("invalid module: %v", err)
//	}
//
// Validation checks:
//   - Type indices are in bounds
//   - Function, table, memory and global indices used by exports,
//     element segments, data segments and the start function are in bounds
//   - Export names are unique
//   - The start function has signature [] -> []
//   - The data count matches the data section, and the code section
//     matches the function section
//   - Memory limits are within the page maximum, and shared memories
//     declare a maximum
//
// Validate does not check instruction bodies or table limits. Names are
// checked for valid UTF-8 while parsing, not by Validate.
//
// # LEB128 Encoding
//
// The package provides LEB128 utilities used throughout; the readers take
// an io.ByteReader:
//
//	n, err := wasm.ReadLEB128u(r)  // Unsigned
//	n, err := wasm.ReadLEB128s(r)  // Signed
package wasm
