package wazeroharness

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
)

// newTestAdapter builds an Adapter over a fresh runtime closed when t ends.
func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })
	return New(rt)
}
