package encoder

import (
	"github.com/wastrun/harness/wat/internal/ast"
)

// sectionWriter writes one section if the module has anything to put in it.
type sectionWriter struct {
	present func(m *ast.Module) bool
	write   func(buf *Buffer, m *ast.Module)
}

// sectionOrder lists the sections in the order the binary format requires.
func sectionOrder() []sectionWriter {
	return []sectionWriter{
		{func(m *ast.Module) bool { return len(m.Types) > 0 }, encodeTypeSection},
		{func(m *ast.Module) bool { return len(m.Imports) > 0 }, encodeImportSection},
		{func(m *ast.Module) bool { return len(m.Funcs) > 0 }, encodeFuncSection},
		{func(m *ast.Module) bool { return len(m.Tables) > 0 }, encodeTableSection},
		{func(m *ast.Module) bool { return len(m.Memories) > 0 }, encodeMemorySection},
		{func(m *ast.Module) bool { return len(m.Globals) > 0 }, encodeGlobalSection},
		{func(m *ast.Module) bool { return len(m.Exports) > 0 }, encodeExportSection},
		{func(m *ast.Module) bool { return m.Start != nil }, encodeStartSection},
		{func(m *ast.Module) bool { return len(m.Elems) > 0 }, encodeElemSection},
		// DataCount must precede Code when passive data segments exist.
		{func(m *ast.Module) bool { return hasPassiveData(m) && len(m.Code) > 0 }, encodeDataCountSection},
		{func(m *ast.Module) bool { return len(m.Code) > 0 }, encodeCodeSection},
		{func(m *ast.Module) bool { return len(m.Data) > 0 }, encodeDataSection},
	}
}

func Encode(m *ast.Module) []byte {
	buf := &Buffer{}
	buf.WriteBytes([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}) // magic + version

	for _, sw := range sectionOrder() {
		if sw.present(m) {
			sw.write(buf, m)
		}
	}

	return buf.Bytes
}

func hasPassiveData(m *ast.Module) bool {
	for _, d := range m.Data {
		if d.Passive {
			return true
		}
	}
	return false
}
