// Package harness implements the data model for a script-driven
// WebAssembly conformance harness: runtime values, expected results, the
// link-state registry, and the script/directive shapes the driver steps
// through.
//
// # Architecture Overview
//
// The module is organized leaf-first, the way a wazero-based runtime repo
// lays out its concerns:
//
//	harness/            Root package: value model, link state, script shapes
//	├── errkind/         Error taxonomy and the expected-error classifier
//	├── oracle/          Result oracle (expected-result vs. produced stack)
//	├── resolve/         Name resolution through the link-state registry
//	├── action/          Action executor (invoke/get)
//	├── capability/      Contracts for the out-of-scope parser/compiler/
//	│                    validator/linker/interpreter/logger
//	├── driver/          Script driver state machine
//	└── wazeroharness/   wazero-backed reference implementation of the
//	    capability contracts, plus the standard spectest host module
//
// # Quick Start
//
//	rt := wazero.NewRuntime(ctx)
//	defer rt.Close(ctx)
//
//	adapter := wazeroharness.New(rt)
//	hostModule, spectestForm := wazeroharness.NewSpectestHost(nil)
//	d := driver.New(adapter, adapter, adapter, adapter, adapter, wazeroharness.NewZapLogger(nil),
//		driver.Spectest{HostModule: hostModule, Form: spectestForm})
//	ls, err := d.Run(ctx, script, false, false)
//
// # Thread Safety
//
// A Driver (and the LinkState it owns) is not safe for concurrent use: the
// script driver is a single-threaded, cooperative state machine. The
// capability implementations it calls into may be used by multiple drivers
// concurrently provided they are themselves safe for that, which
// wazeroharness's are.
package harness
