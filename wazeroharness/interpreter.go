package wazeroharness

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wastrun/harness"
	"github.com/wastrun/harness/errkind"
	"github.com/wastrun/harness/errors"
	"github.com/wastrun/harness/wasm"
)

// wazero's public api package does not export ValueType constants for
// funcref/v128; these mirror the WebAssembly binary encoding used
// internally by wazero (see wazero/internal/wasm.ValueTypeFuncref /
// ValueTypeV128).
const (
	valueTypeFuncref api.ValueType = 0x70
	valueTypeV128    api.ValueType = 0x7b
)

// InterpretModule instantiates a compiled module under its assigned
// environment name, runs its start function and active segment
// initializers as part of wazero's own instantiation, and returns its
// export surface. timeoutMillis and timeoutInstr are accepted for
// interface compatibility but not enforced: bounding runaway guest code
// needs wazero's experimental listener/fuel hooks, which this adapter
// does not wire (see DESIGN.md).
func (a *Adapter) InterpretModule(ctx context.Context, env harness.EnvHandle, m harness.CompiledModule, timeoutMillis, timeoutInstr *int) (harness.Exports, error) {
	cm, ok := m.(*compiledModule)
	if !ok {
		return harness.Exports{}, errkind.Msg{Text: "wazeroharness: InterpretModule given a module not produced by this compiler"}
	}
	eh, ok := env.(*envHandle)
	if !ok {
		return harness.Exports{}, errkind.Msg{Text: "wazeroharness: InterpretModule given an environment not produced by this compiler"}
	}

	cfg := wazero.NewModuleConfig().WithName(eh.name)
	instance, err := a.runtime.InstantiateModule(ctx, cm.bin, cfg)
	if err != nil {
		return harness.Exports{}, errkind.AdapterFail{Err: errors.New(errors.PhaseRuntime, errors.KindInstantiation).
			Cause(err).Detail(err.Error()).Build()}
	}
	return exportsOf(cm.mod, instance), nil
}

// Invoke calls f with args already converted to wazero's flat uint64
// calling convention, then converts the result stack back using the
// function's declared result types.
func (a *Adapter) Invoke(ctx context.Context, env harness.EnvHandle, f harness.FuncHandle, args []harness.V) ([]harness.V, error) {
	fn, ok := f.(api.Function)
	if !ok {
		return nil, errkind.Msg{Text: "wazeroharness: Invoke given a function handle not produced by this interpreter"}
	}

	params := make([]uint64, len(args))
	for i, v := range args {
		u, err := toUint64(v)
		if err != nil {
			return nil, err
		}
		params[i] = u
	}

	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, errkind.AdapterFail{Err: errors.New(errors.PhaseRuntime, errors.KindInvalidData).
			Cause(err).Detail(err.Error()).Build()}
	}

	resultTypes := fn.Definition().ResultTypes()
	out := make([]harness.V, len(results))
	for i, r := range results {
		v, err := fromUint64(resultTypes[i], r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func exportsOf(mod *wasm.Module, instance api.Module) harness.Exports {
	importedGlobals := 0
	for _, imp := range mod.Imports {
		if imp.Desc.Kind == wasm.KindGlobal {
			importedGlobals++
		}
	}

	functions := make(map[string]harness.FuncHandle)
	globals := make(map[string]harness.GlobalHandle)
	for _, exp := range mod.Exports {
		switch exp.Kind {
		case wasm.KindFunc:
			if fn := instance.ExportedFunction(exp.Name); fn != nil {
				functions[exp.Name] = fn
			}
		case wasm.KindGlobal:
			g := instance.ExportedGlobal(exp.Name)
			if g == nil {
				continue
			}
			valType := wasm.ValI32
			if localIdx := int(exp.Idx) - importedGlobals; localIdx >= 0 && localIdx < len(mod.Globals) {
				valType = mod.Globals[localIdx].Type.ValType
			}
			globals[exp.Name] = globalHandle{g: g, valType: valType}
		}
	}
	return harness.Exports{Functions: functions, Globals: globals}
}

type globalHandle struct {
	g       api.Global
	valType wasm.ValType
}

func (h globalHandle) Value() (harness.V, error) {
	raw := h.g.Get()
	switch h.valType {
	case wasm.ValI32:
		return harness.VI32(int32(uint32(raw))), nil
	case wasm.ValI64:
		return harness.VI64(int64(raw)), nil
	case wasm.ValF32:
		return harness.VF32{Bits: uint32(raw)}, nil
	case wasm.ValF64:
		return harness.VF64{Bits: raw}, nil
	default:
		return nil, errkind.Msg{Text: "wazeroharness: unsupported exported global value type"}
	}
}

func toUint64(v harness.V) (uint64, error) {
	switch x := v.(type) {
	case harness.VI32:
		return uint64(uint32(x)), nil
	case harness.VI64:
		return uint64(x), nil
	case harness.VF32:
		return uint64(x.Bits), nil
	case harness.VF64:
		return x.Bits, nil
	case harness.VRef:
		if x.Ref.Kind == harness.RefExternKind && x.Ref.Extern != nil {
			// wazero treats raw 0 as a null externref, so a non-null
			// extern with payload 0 would otherwise collide with null.
			// Offset by one on the way in and undo it in fromUint64.
			return uint64(uint32(x.Ref.Extern.Payload)) + 1, nil
		}
		return 0, nil
	case harness.VV128:
		return 0, errkind.Msg{Text: "wazeroharness: v128 invoke arguments are not supported"}
	default:
		return 0, errkind.Msg{Text: "wazeroharness: unsupported argument value"}
	}
}

func fromUint64(vt api.ValueType, raw uint64) (harness.V, error) {
	switch vt {
	case api.ValueTypeI32:
		return harness.VI32(int32(uint32(raw))), nil
	case api.ValueTypeI64:
		return harness.VI64(int64(raw)), nil
	case api.ValueTypeF32:
		return harness.VF32{Bits: uint32(raw)}, nil
	case api.ValueTypeF64:
		return harness.VF64{Bits: raw}, nil
	case valueTypeFuncref:
		if raw == 0 {
			return harness.VRef{Ref: harness.RefValue{Kind: harness.RefFuncKind}}, nil
		}
		return harness.VRef{Ref: harness.RefValue{Kind: harness.RefFuncKind, Func: raw}}, nil
	case api.ValueTypeExternref:
		if raw == 0 {
			return harness.VRef{Ref: harness.RefValue{Kind: harness.RefExternKind}}, nil
		}
		// Undo the +1 offset toUint64 applies so payload 0 round-trips
		// as a non-null extern instead of colliding with null.
		return harness.VRef{Ref: harness.RefValue{
			Kind:   harness.RefExternKind,
			Extern: &harness.ExternPayload{Brand: harness.HostBrand(), Payload: int32(raw - 1)},
		}}, nil
	case valueTypeV128:
		return nil, errkind.Msg{Text: "wazeroharness: v128 results are not supported"}
	default:
		return nil, errkind.Msg{Text: "wazeroharness: unsupported result value type"}
	}
}
