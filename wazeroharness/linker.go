package wazeroharness

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wastrun/harness"
	"github.com/wastrun/harness/errkind"
)

// RegisterModule is a pure link-state alias: it never touches wazero.
// Resolution against a registered name happens later, when some other
// module's imports are rewritten at compile time (see compileAndLink).
func (a *Adapter) RegisterModule(ls *harness.LinkState, name string, id *string) (*harness.LinkState, error) {
	entry, ok := ls.Lookup(id)
	if !ok {
		if id == nil {
			return nil, errkind.UnboundLastModule{}
		}
		return nil, errkind.UnboundModule{ID: *id}
	}
	ls.ByID[name] = entry
	return ls, nil
}

// HostFunc is one function of a host module built for ExternModule.
type HostFunc struct {
	Params  []api.ValueType
	Results []api.ValueType
	Fn      func(ctx context.Context, mod api.Module, stack []uint64)
}

// HostModule is the hostModule value ExternModule expects: a flat table
// of host functions, keyed by their exported name.
type HostModule struct {
	Functions map[string]HostFunc
}

// ExternModule instantiates hostModule's functions under name in the
// shared wazero runtime. Host modules are defined entirely in Go, so
// instantiation cannot fail short of a programmer error in the host
// function table; that case panics rather than threading an error
// through a capability signature that promises none.
func (a *Adapter) ExternModule(ls *harness.LinkState, name string, hostModule any) *harness.LinkState {
	hm, _ := hostModule.(*HostModule)
	if hm == nil {
		hm = &HostModule{}
	}

	builder := a.runtime.NewHostModuleBuilder(name)
	for fname, hf := range hm.Functions {
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(hf.Fn), hf.Params, hf.Results).
			Export(fname)
	}
	if _, err := builder.Instantiate(context.Background()); err != nil {
		panic("wazeroharness: host module " + name + " failed to instantiate: " + err.Error())
	}

	envID := ls.NewEnv(&envHandle{name: name})
	ls.Install(name, harness.Exports{}, envID)
	return ls
}
