// Package capability declares the contracts the script driver consumes
// for the WebAssembly parser, compiler, validator, linker, interpreter,
// and logger. These are out of scope for the core: the core
// orchestrates them and arbitrates correctness, but does not itself
// parse, validate, or interpret WebAssembly.
package capability

import (
	"context"

	"github.com/wastrun/harness"
)

// Options configures a single pipeline-stage call. The driver always
// passes Name as nil for the internal compile/link calls;
// Optimize carries the driver's own optimize parameter through unchanged.
type Options struct {
	Optimize bool
	Name     *string
}

// Parser is the text/binary front end.
type Parser interface {
	ParseTextScript(source string) (harness.Script, error)
	ParseTextModule(source string) (harness.ModuleForm, error)
	ParseTextInlineModule(source string) (harness.ModuleForm, error)
	ParseBinaryModule(data []byte) (harness.BinaryModuleData, error)
}

// Compiler lowers a parsed module toward link state.
type Compiler interface {
	CompileTextUntilLink(ls *harness.LinkState, m harness.ModuleForm, opts Options) (harness.CompiledModule, harness.EnvHandle, error)
	CompileBinaryUntilLink(ls *harness.LinkState, m harness.BinaryModuleData, opts Options) (harness.CompiledModule, harness.EnvHandle, error)
	CompileTextUntilBinary(m harness.ModuleForm, opts Options) ([]byte, error)
}

// Validator checks a decoded binary module.
type Validator interface {
	ValidateBinary(m harness.BinaryModuleData) error
}

// Linker installs and aliases modules in the link state.
type Linker interface {
	// RegisterModule aliases name to the module named by id (or Last when
	// id is nil).
	RegisterModule(ls *harness.LinkState, name string, id *string) (*harness.LinkState, error)
	// ExternModule installs a host module's exports into ls under name,
	// allocating a fresh environment for it. Unlike RegisterModule this
	// cannot fail: a host module is installed by construction, never
	// resolved against unsatisfied imports.
	ExternModule(ls *harness.LinkState, name string, hostModule any) *harness.LinkState
}

// Interpreter executes module instantiation/initialization and external
// invocations.
type Interpreter interface {
	// InterpretModule instantiates m within env, running any start
	// function and active element/data segment initializers, and
	// returns its export surface.
	InterpretModule(ctx context.Context, env harness.EnvHandle, m harness.CompiledModule, timeoutMillis, timeoutInstr *int) (harness.Exports, error)
	// Invoke calls f within env with args already in interpreter push
	// order, returning the produced stack in push order.
	Invoke(ctx context.Context, env harness.EnvHandle, f harness.FuncHandle, args []harness.V) ([]harness.V, error)
}

// Logger is an advisory sink; messages must never alter semantics.
type Logger interface {
	Infof(format string, args ...any)
}
