package action

import (
	"context"
	"testing"

	"github.com/wastrun/harness"
)

type fakeInterp struct {
	gotEnv  harness.EnvHandle
	gotFunc harness.FuncHandle
	gotArgs []harness.V
	result  []harness.V
	err     error
}

func (f *fakeInterp) InterpretModule(ctx context.Context, env harness.EnvHandle, m harness.CompiledModule, timeoutMillis, timeoutInstr *int) (harness.Exports, error) {
	return harness.Exports{}, nil
}

func (f *fakeInterp) Invoke(ctx context.Context, env harness.EnvHandle, fn harness.FuncHandle, args []harness.V) ([]harness.V, error) {
	f.gotEnv = env
	f.gotFunc = fn
	f.gotArgs = args
	return f.result, f.err
}

func newLinkStateWithFunc(name string, handle harness.FuncHandle, env harness.EnvHandle) *harness.LinkState {
	ls := harness.NewLinkState()
	envID := ls.NewEnv(env)
	ls.Install("m1", harness.Exports{
		Functions: map[string]harness.FuncHandle{name: handle},
	}, envID)
	return ls
}

func TestValueOfConstVariants(t *testing.T) {
	tests := []struct {
		name string
		in   harness.Const
		want harness.V
	}{
		{"i32", harness.LitI32(5), harness.VI32(5)},
		{"i64", harness.LitI64(5), harness.VI64(5)},
		{"f32", harness.LitF32{Bits: 7}, harness.VF32{Bits: 7}},
		{"null func", harness.LitNull{Heap: harness.HeapFunc}, harness.VRef{Ref: harness.RefValue{Kind: harness.RefFuncKind}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOfConst(tt.in)
			if err != nil {
				t.Fatalf("ValueOfConst: %v", err)
			}
			if got != tt.want {
				t.Errorf("ValueOfConst(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValueOfConstExternMintsHostBrand(t *testing.T) {
	v, err := ValueOfConst(harness.LitExtern{Payload: 3})
	if err != nil {
		t.Fatalf("ValueOfConst: %v", err)
	}
	vr, ok := v.(harness.VRef)
	if !ok || vr.Ref.Extern == nil {
		t.Fatalf("expected non-null externref, got %v", v)
	}
	if !vr.Ref.Extern.Brand.Equal(harness.HostBrand()) {
		t.Error("expected minted externref to carry the host brand")
	}
	if vr.Ref.Extern.Payload != 3 {
		t.Errorf("Payload = %d", vr.Ref.Extern.Payload)
	}
}

func TestDoInvokeReversesArgsIntoPushOrder(t *testing.T) {
	handle := struct{}{}
	env := struct{ tag string }{"env1"}
	ls := newLinkStateWithFunc("f", handle, env)
	interp := &fakeInterp{result: []harness.V{harness.VI32(99)}}

	invoke := harness.Invoke{
		Name: "f",
		Args: []harness.Const{harness.LitI32(1), harness.LitI32(2), harness.LitI32(3)},
	}
	got, err := Do(context.Background(), ls, interp, invoke)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(got) != 1 || got[0] != harness.V(harness.VI32(99)) {
		t.Errorf("got = %v", got)
	}

	want := []harness.V{harness.VI32(3), harness.VI32(2), harness.VI32(1)}
	if len(interp.gotArgs) != len(want) {
		t.Fatalf("gotArgs len = %d, want %d", len(interp.gotArgs), len(want))
	}
	for i := range want {
		if interp.gotArgs[i] != want[i] {
			t.Errorf("gotArgs[%d] = %v, want %v", i, interp.gotArgs[i], want[i])
		}
	}
	if interp.gotEnv != env {
		t.Errorf("gotEnv = %v, want %v", interp.gotEnv, env)
	}
}

func TestDoGetReadsLiveGlobalValue(t *testing.T) {
	ls := harness.NewLinkState()
	envID := ls.NewEnv(struct{}{})
	ls.Install("m1", harness.Exports{
		Globals: map[string]harness.GlobalHandle{"g": testGlobal{v: harness.VI32(42)}},
	}, envID)

	got, err := Do(context.Background(), ls, &fakeInterp{}, harness.Get{Name: "g"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(got) != 1 || got[0] != harness.V(harness.VI32(42)) {
		t.Errorf("got = %v", got)
	}
}

type testGlobal struct{ v harness.V }

func (g testGlobal) Value() (harness.V, error) { return g.v, nil }
