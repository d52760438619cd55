package wazeroharness

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/wastrun/harness"
	"github.com/wastrun/harness/capability"
)

func TestRegisterModuleAliasesLastWhenIDNil(t *testing.T) {
	a := newTestAdapter(t)
	ls := harness.NewLinkState()
	compileInstall(t, a, ls, "$m", addModuleWat)

	ls, err := a.RegisterModule(ls, "alias", nil)
	if err != nil {
		t.Fatalf("RegisterModule: %v", err)
	}
	entry, ok := ls.Lookup(strPtrT("alias"))
	if !ok {
		t.Fatal("alias not installed")
	}
	if entry != ls.Last {
		t.Error("alias does not point at the same entry as Last")
	}
}

func TestRegisterModuleUnboundIDFails(t *testing.T) {
	a := newTestAdapter(t)
	ls := harness.NewLinkState()
	if _, err := a.RegisterModule(ls, "alias", strPtrT("$missing")); err == nil {
		t.Fatal("expected an unbound-module error")
	}
}

func TestRegisterModuleUnboundLastFails(t *testing.T) {
	a := newTestAdapter(t)
	ls := harness.NewLinkState()
	if _, err := a.RegisterModule(ls, "alias", nil); err == nil {
		t.Fatal("expected an unbound-last-module error")
	}
}

func TestExternModuleInstallsHostFunctions(t *testing.T) {
	a := newTestAdapter(t)
	ls := harness.NewLinkState()

	called := false
	hm := &HostModule{Functions: map[string]HostFunc{
		"mark": {
			Fn: func(_ context.Context, _ api.Module, _ []uint64) { called = true },
		},
	}}
	ls = a.ExternModule(ls, "env", hm)

	importer := `(module
  (import "env" "mark" (func $mark))
  (func (export "run") call $mark))
`
	form, err := a.ParseTextModule(importer)
	if err != nil {
		t.Fatalf("ParseTextModule: %v", err)
	}
	compiled, env, err := a.CompileTextUntilLink(ls, form, capability.Options{})
	if err != nil {
		t.Fatalf("CompileTextUntilLink: %v", err)
	}
	exports, err := a.InterpretModule(context.Background(), env, compiled, nil, nil)
	if err != nil {
		t.Fatalf("InterpretModule: %v", err)
	}
	if _, err := a.Invoke(context.Background(), nil, exports.Functions["run"], nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !called {
		t.Error("host function \"mark\" was never invoked")
	}
}
