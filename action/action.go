// Package action translates invoke/get actions into calls on the
// runtime, through the link-state registry.
package action

import (
	"context"

	"github.com/wastrun/harness"
	"github.com/wastrun/harness/capability"
	"github.com/wastrun/harness/errkind"
	"github.com/wastrun/harness/resolve"
)

// Do executes a against ls, calling into interp for Invoke and reading a
// live global value for Get.
func Do(ctx context.Context, ls *harness.LinkState, interp capability.Interpreter, a harness.Action) ([]harness.V, error) {
	switch act := a.(type) {
	case harness.Invoke:
		return doInvoke(ctx, ls, interp, act)
	case harness.Get:
		gh, err := resolve.Global(ls, act.ModID, act.Name)
		if err != nil {
			return nil, err
		}
		v, err := gh.Value()
		if err != nil {
			return nil, err
		}
		return []harness.V{v}, nil
	default:
		return nil, errkind.Msg{Text: "action: unsupported action"}
	}
}

func doInvoke(ctx context.Context, ls *harness.LinkState, interp capability.Interpreter, act harness.Invoke) ([]harness.V, error) {
	args := make([]harness.V, len(act.Args))
	for i, c := range act.Args {
		v, err := ValueOfConst(c)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	fh, envID, err := resolve.Func(ls, act.ModID, act.Name)
	if err != nil {
		return nil, err
	}
	env, ok := ls.Envs[envID]
	if !ok {
		return nil, errkind.Msg{Text: "action: resolved function names an unknown environment"}
	}

	// Reverse the argument list to form the call stack in interpreter
	// push order.
	return interp.Invoke(ctx, env, fh, harness.ReverseV(args))
}

// ValueOfConst maps a Const literal to a runtime value, minting a
// host-branded externref for Const_extern literals.
func ValueOfConst(c harness.Const) (harness.V, error) {
	switch l := c.(type) {
	case harness.LitI32:
		return harness.VI32(l), nil
	case harness.LitI64:
		return harness.VI64(l), nil
	case harness.LitF32:
		return harness.VF32{Bits: l.Bits}, nil
	case harness.LitF64:
		return harness.VF64{Bits: l.Bits}, nil
	case harness.LitV128:
		return harness.VV128{Bits: l.Bits}, nil
	case harness.LitNull:
		switch l.Heap {
		case harness.HeapFunc:
			return harness.VRef{Ref: harness.RefValue{Kind: harness.RefFuncKind}}, nil
		case harness.HeapExtern:
			return harness.VRef{Ref: harness.RefValue{Kind: harness.RefExternKind}}, nil
		default:
			return nil, errkind.Msg{Text: "action: unsupported heap type in null literal"}
		}
	case harness.LitExtern:
		return harness.VRef{Ref: harness.RefValue{
			Kind:   harness.RefExternKind,
			Extern: &harness.ExternPayload{Brand: harness.HostBrand(), Payload: l.Payload},
		}}, nil
	default:
		return nil, errkind.Msg{Text: "action: unsupported constant literal"}
	}
}
