// Package wazeroharness is a wazero-backed implementation of the
// capability contracts: it parses and encodes modules with the harness's
// own wasm and wat packages, compiles and instantiates them with
// tetratelabs/wazero, and logs through zap.
//
// Linking is driven explicitly rather than by wazero's own namespace
// lookup: before compiling a module, every import's declared module
// name is rewritten to the internal wazero instance name of whatever
// link-state entry currently owns that name. Register therefore never
// touches wazero at all — it is a plain alias in the link state — and
// a module compiled after a register directive resolves its imports
// against the registered name correctly, including shared mutable
// globals, memory, and tables, because wazero's native instantiation
// resolves by instance identity once the names line up.
package wazeroharness

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tetratelabs/wazero"

	"github.com/wastrun/harness"
	"github.com/wastrun/harness/capability"
	"github.com/wastrun/harness/errkind"
	"github.com/wastrun/harness/errors"
	"github.com/wastrun/harness/wasm"
	"github.com/wastrun/harness/wat"
)

// moduleForm wraps WAT source text. Parsing is deferred to the compiler
// stage so a parse failure surfaces as the right pipeline-stage error
// for whichever directive is driving it.
type moduleForm struct {
	source string
}

// binaryModuleData wraps an already-decoded module alongside the raw
// bytes it was decoded from. Nothing in this package reads raw:
// compileAndLink re-encodes mod after rewriting its imports.
type binaryModuleData struct {
	mod *wasm.Module
	raw []byte
}

// compiledModule pairs the wazero-compiled binary with the decoded
// module (used to enumerate the export surface and global types after
// instantiation).
type compiledModule struct {
	bin wazero.CompiledModule
	mod *wasm.Module
}

// envHandle is the environment a compiled module will run in: the
// internal name it will be (or was) instantiated under in the shared
// wazero runtime.
type envHandle struct {
	name string
}

// Adapter implements capability.Parser, capability.Compiler,
// capability.Validator, capability.Linker, and capability.Interpreter
// over one shared wazero.Runtime.
type Adapter struct {
	runtime wazero.Runtime
}

// New wraps an existing wazero runtime. Callers typically obtain runtime
// from wazero.NewRuntime(ctx) and close it once the harness session ends.
func New(runtime wazero.Runtime) *Adapter {
	return &Adapter{runtime: runtime}
}

var (
	_ capability.Parser      = (*Adapter)(nil)
	_ capability.Compiler    = (*Adapter)(nil)
	_ capability.Validator   = (*Adapter)(nil)
	_ capability.Linker      = (*Adapter)(nil)
	_ capability.Interpreter = (*Adapter)(nil)
)

// ParseTextModule wraps source as a deferred module form; compiling is
// deferred to CompileTextUntilLink/CompileTextUntilBinary.
func (a *Adapter) ParseTextModule(source string) (harness.ModuleForm, error) {
	return &moduleForm{source: source}, nil
}

// ParseTextInlineModule behaves identically to ParseTextModule: an
// inline `(module ...)` form and a standalone module text are the same
// grammar production once the enclosing script syntax has been
// stripped.
func (a *Adapter) ParseTextInlineModule(source string) (harness.ModuleForm, error) {
	return a.ParseTextModule(source)
}

// ParseBinaryModule decodes data with the harness's own binary-format
// decoder.
func (a *Adapter) ParseBinaryModule(data []byte) (harness.BinaryModuleData, error) {
	mod, err := wasm.ParseModule(data)
	if err != nil {
		return nil, errkind.ParseFail{Text: err.Error()}
	}
	return &binaryModuleData{mod: mod, raw: data}, nil
}

// ValidateBinary runs the decoder's own validation pass over an already
// decoded module.
func (a *Adapter) ValidateBinary(m harness.BinaryModuleData) error {
	bd, ok := m.(*binaryModuleData)
	if !ok {
		return errkind.Msg{Text: "wazeroharness: ValidateBinary given a module not produced by ParseBinaryModule"}
	}
	if err := bd.mod.Validate(); err != nil {
		return errkind.AdapterFail{Err: errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Cause(err).Detail(err.Error()).Build()}
	}
	return nil
}

// CompileTextUntilBinary compiles WAT source straight to bytes without
// touching the link state; used by quoted-module handling, which only
// needs to know whether the text itself compiles.
func (a *Adapter) CompileTextUntilBinary(m harness.ModuleForm, opts capability.Options) ([]byte, error) {
	mf, ok := m.(*moduleForm)
	if !ok {
		return nil, errkind.Msg{Text: "wazeroharness: CompileTextUntilBinary given a form not produced by this parser"}
	}
	bytes, err := wat.Compile(mf.source)
	if err != nil {
		return nil, errkind.ParseFail{Text: err.Error()}
	}
	return bytes, nil
}

// CompileTextUntilLink compiles WAT source to a decoded, validated
// module and rewrites its imports against ls.
func (a *Adapter) CompileTextUntilLink(ls *harness.LinkState, m harness.ModuleForm, opts capability.Options) (harness.CompiledModule, harness.EnvHandle, error) {
	mf, ok := m.(*moduleForm)
	if !ok {
		return nil, nil, errkind.Msg{Text: "wazeroharness: CompileTextUntilLink given a form not produced by this parser"}
	}
	bytes, err := wat.Compile(mf.source)
	if err != nil {
		return nil, nil, errkind.ParseFail{Text: err.Error()}
	}
	mod, err := wasm.ParseModule(bytes)
	if err != nil {
		return nil, nil, errkind.AdapterFail{Err: errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Cause(err).Detail(err.Error()).Build()}
	}
	return a.compileAndLink(ls, mod)
}

// CompileBinaryUntilLink rewrites an already-decoded binary module's
// imports against ls and compiles it with wazero.
func (a *Adapter) CompileBinaryUntilLink(ls *harness.LinkState, m harness.BinaryModuleData, opts capability.Options) (harness.CompiledModule, harness.EnvHandle, error) {
	bd, ok := m.(*binaryModuleData)
	if !ok {
		return nil, nil, errkind.Msg{Text: "wazeroharness: CompileBinaryUntilLink given a module not produced by ParseBinaryModule"}
	}
	return a.compileAndLink(ls, bd.mod)
}

func (a *Adapter) compileAndLink(ls *harness.LinkState, mod *wasm.Module) (harness.CompiledModule, harness.EnvHandle, error) {
	if err := mod.Validate(); err != nil {
		return nil, nil, errkind.AdapterFail{Err: errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Cause(err).Detail(err.Error()).Build()}
	}
	for i := range mod.Imports {
		imp := &mod.Imports[i]
		entry, ok := ls.ByID[imp.Module]
		if !ok {
			detail := fmt.Sprintf("unknown import: %s.%s", imp.Module, imp.Name)
			return nil, nil, errkind.AdapterFail{Err: errors.New(errors.PhaseLinking, errors.KindMissingImport).
				Path(imp.Module, imp.Name).Detail(detail).Build()}
		}
		env, ok := ls.Envs[entry.EnvID].(*envHandle)
		if !ok {
			detail := fmt.Sprintf("unknown import: %s.%s (no live environment)", imp.Module, imp.Name)
			return nil, nil, errkind.AdapterFail{Err: errors.New(errors.PhaseLinking, errors.KindMissingImport).
				Path(imp.Module, imp.Name).Detail(detail).Build()}
		}
		imp.Module = env.name
	}

	compiled, err := a.runtime.CompileModule(context.Background(), mod.Encode())
	if err != nil {
		return nil, nil, errkind.AdapterFail{Err: errors.New(errors.PhaseCompile, errors.KindInvalidData).
			Cause(err).Detail(err.Error()).Build()}
	}
	return &compiledModule{bin: compiled, mod: mod}, &envHandle{name: uuid.NewString()}, nil
}
