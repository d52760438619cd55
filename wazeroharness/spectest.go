package wazeroharness

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wastrun/harness"
)

// spectestSource is the standard spectest module every conformance
// script implicitly imports from: print functions backed by the host,
// plus globals, a table, and a memory defined directly in wasm so they
// behave exactly like any other module's exports to the linker.
const spectestSource = `(module
  (import "spectest_extern" "print" (func $print))
  (import "spectest_extern" "print_i32" (func $print_i32 (param i32)))
  (import "spectest_extern" "print_i64" (func $print_i64 (param i64)))
  (import "spectest_extern" "print_f32" (func $print_f32 (param f32)))
  (import "spectest_extern" "print_f64" (func $print_f64 (param f64)))
  (import "spectest_extern" "print_i32_f32" (func $print_i32_f32 (param i32 f32)))
  (import "spectest_extern" "print_f64_f64" (func $print_f64_f64 (param f64 f64)))
  (global $global_i32 i32 (i32.const 666))
  (global $global_i64 i64 (i64.const 666))
  (global $global_f32 f32 (f32.const 666))
  (global $global_f64 f64 (f64.const 666))
  (table $table 10 20 funcref)
  (memory $memory 1 2)
  (export "print" (func $print))
  (export "print_i32" (func $print_i32))
  (export "print_i64" (func $print_i64))
  (export "print_f32" (func $print_f32))
  (export "print_f64" (func $print_f64))
  (export "print_i32_f32" (func $print_i32_f32))
  (export "print_f64_f64" (func $print_f64_f64))
  (export "global_i32" (global $global_i32))
  (export "global_i64" (global $global_i64))
  (export "global_f32" (global $global_f32))
  (export "global_f64" (global $global_f64))
  (export "table" (table $table))
  (export "memory" (memory $memory)))
`

// NewSpectestHost builds the host-side "spectest_extern" fixture (the
// print functions) and the spectest module form that imports them. The
// pair is meant to be passed straight through as driver.Spectest.
func NewSpectestHost(log *zap.Logger) (*HostModule, harness.ModuleForm) {
	if log == nil {
		log = zap.NewNop()
	}
	sugar := log.Sugar()

	hm := &HostModule{Functions: map[string]HostFunc{
		"print": {
			Fn: func(_ context.Context, _ api.Module, _ []uint64) {
				sugar.Info("spectest.print")
			},
		},
		"print_i32": {
			Params: []api.ValueType{api.ValueTypeI32},
			Fn: func(_ context.Context, _ api.Module, stack []uint64) {
				sugar.Infof("spectest.print_i32 %d", int32(uint32(stack[0])))
			},
		},
		"print_i64": {
			Params: []api.ValueType{api.ValueTypeI64},
			Fn: func(_ context.Context, _ api.Module, stack []uint64) {
				sugar.Infof("spectest.print_i64 %d", int64(stack[0]))
			},
		},
		"print_f32": {
			Params: []api.ValueType{api.ValueTypeF32},
			Fn: func(_ context.Context, _ api.Module, stack []uint64) {
				sugar.Infof("spectest.print_f32 bits=%#x", uint32(stack[0]))
			},
		},
		"print_f64": {
			Params: []api.ValueType{api.ValueTypeF64},
			Fn: func(_ context.Context, _ api.Module, stack []uint64) {
				sugar.Infof("spectest.print_f64 bits=%#x", stack[0])
			},
		},
		"print_i32_f32": {
			Params: []api.ValueType{api.ValueTypeI32, api.ValueTypeF32},
			Fn: func(_ context.Context, _ api.Module, stack []uint64) {
				sugar.Infof("spectest.print_i32_f32 %d bits=%#x", int32(uint32(stack[0])), uint32(stack[1]))
			},
		},
		"print_f64_f64": {
			Params: []api.ValueType{api.ValueTypeF64, api.ValueTypeF64},
			Fn: func(_ context.Context, _ api.Module, stack []uint64) {
				sugar.Infof("spectest.print_f64_f64 bits=%#x bits=%#x", stack[0], stack[1])
			},
		},
	}}

	form := &moduleForm{source: spectestSource}
	return hm, form
}
