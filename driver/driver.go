// Package driver implements the script driver state machine: it steps
// through a script's directives, routes each through the correct
// compile/validate/link/execute pipeline stage, catches failures at the
// right stage, and assembles the final link state.
package driver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wastrun/harness"
	"github.com/wastrun/harness/action"
	"github.com/wastrun/harness/capability"
	"github.com/wastrun/harness/errkind"
	"github.com/wastrun/harness/oracle"
)

// Spectest bundles the standard spectest host fixture the driver installs
// before processing any user directive.
type Spectest struct {
	// HostModule is the opaque host module ExternModule installs under
	// "spectest_extern", used to satisfy other modules' `(import
	// "spectest" ...)` declarations.
	HostModule any
	// Form is the standard spectest module definition itself, installed
	// under "spectest" via the ordinary compile/interpret pipeline so its
	// exports (print_i32, global_i32, table, memory, ...) are directly
	// resolvable by name.
	Form harness.ModuleForm
}

// Driver is the script-driver state machine. It is single-threaded and
// cooperative: directives are processed one at a time and each completes
// before the next begins.
type Driver struct {
	parser    capability.Parser
	compiler  capability.Compiler
	validator capability.Validator
	linker    capability.Linker
	interp    capability.Interpreter
	log       capability.Logger
	spectest  Spectest

	ls         *harness.LinkState
	currModule int
	registered bool

	onStep func(idx, total int, dir harness.Directive, err error)
}

// New constructs a Driver over the given capability implementations and
// standard spectest fixture.
func New(p capability.Parser, c capability.Compiler, v capability.Validator, l capability.Linker, i capability.Interpreter, log capability.Logger, spectest Spectest) *Driver {
	return &Driver{
		parser:    p,
		compiler:  c,
		validator: v,
		linker:    l,
		interp:    i,
		log:       log,
		spectest:  spectest,
		ls:        harness.NewLinkState(),
	}
}

// OnStep registers a callback invoked after each directive is processed,
// reporting its 0-based index, the script's total length, the directive
// itself, and the error it produced (nil on success). Intended for
// progress reporting (e.g. an interactive TUI); it has no effect on
// control flow and is never required for correctness.
func (d *Driver) OnStep(fn func(idx, total int, dir harness.Directive, err error)) {
	d.onStep = fn
}

// Run processes script to completion, returning the final link state on
// total success or the first fatal error encountered.
func (d *Driver) Run(ctx context.Context, script harness.Script, noExhaustion, optimize bool) (*harness.LinkState, error) {
	if err := d.init(ctx); err != nil {
		return nil, err
	}
	for i, dir := range script {
		err := d.step(ctx, dir, noExhaustion, optimize)
		if d.onStep != nil {
			d.onStep(i, len(script), dir, err)
		}
		if err != nil {
			return nil, err
		}
	}
	return d.ls, nil
}

// Exec runs script and discards the final link state.
func (d *Driver) Exec(ctx context.Context, script harness.Script, noExhaustion, optimize bool) error {
	_, err := d.Run(ctx, script, noExhaustion, optimize)
	return err
}

// init installs the host spectest fixture before any user directive runs.
// The host spectest module is guaranteed present in the link state before
// the first user directive is processed, registered under the name
// "spectest".
func (d *Driver) init(ctx context.Context) error {
	d.ls = d.linker.ExternModule(d.ls, "spectest_extern", d.spectest.HostModule)

	d.currModule++
	if err := d.installModule(ctx, strPtr("spectest"), d.spectest.Form, capability.Options{}); err != nil {
		return err
	}

	ls, err := d.linker.RegisterModule(d.ls, "spectest", strPtr("spectest"))
	if err != nil {
		return err
	}
	d.ls = ls
	return nil
}

func (d *Driver) step(ctx context.Context, dir harness.Directive, noExhaustion, optimize bool) error {
	opts := capability.Options{Optimize: optimize}

	switch v := dir.(type) {
	case harness.TextModule:
		d.currModule++
		return d.installModule(ctx, v.ID, v.Form, opts)

	case harness.QuotedModule:
		d.currModule++
		form, err := d.parser.ParseTextInlineModule(v.Source)
		if err != nil {
			return err
		}
		return d.installModule(ctx, nil, form, opts)

	case harness.BinaryModule:
		d.currModule++
		bm, err := d.parser.ParseBinaryModule(v.Bytes)
		if err != nil {
			return err
		}
		compiled, env, err := d.compiler.CompileBinaryUntilLink(d.ls, bm, opts)
		if err != nil {
			return err
		}
		return d.finishModule(ctx, v.ID, compiled, env)

	case harness.RegisterDirective:
		ls, err := d.linker.RegisterModule(d.ls, v.Name, v.ModID)
		if err != nil {
			return err
		}
		d.ls = ls
		d.registered = true
		return nil

	case harness.ActionDirective:
		_, err := action.Do(ctx, d.ls, d.interp, v.Act)
		return err

	case harness.AssertReturnD:
		return d.assertReturn(ctx, v)

	case harness.AssertTrapD:
		_, err := action.Do(ctx, d.ls, d.interp, v.Act)
		return errkind.CheckErrorResult(v.Expected, err)

	case harness.AssertExhaustionD:
		if noExhaustion {
			return nil
		}
		_, err := action.Do(ctx, d.ls, d.interp, v.Act)
		return errkind.CheckErrorResult(v.Expected, err)

	case harness.AssertTrapModuleD:
		d.currModule++
		return d.assertTrapModule(ctx, v, opts)

	case harness.AssertMalformedD:
		return d.assertMalformed(ctx, v, opts)

	case harness.AssertMalformedBinaryD:
		_, err := d.parser.ParseBinaryModule(v.Bytes)
		return errkind.CheckErrorResult(v.Expected, err)

	case harness.AssertMalformedQuoteD:
		return d.assertMalformedQuote(v, opts)

	case harness.AssertInvalidD:
		_, _, err := d.compiler.CompileTextUntilLink(d.ls, v.Form, opts)
		return errkind.CheckErrorResult(v.Expected, err)

	case harness.AssertInvalidBinaryD:
		return d.assertInvalidBinary(v, opts)

	case harness.AssertInvalidQuoteD:
		_, err := d.parser.ParseTextModule(v.Source)
		return errkind.CheckErrorResult(v.Expected, err)

	case harness.AssertUnlinkableD:
		_, _, err := d.compiler.CompileTextUntilLink(d.ls, v.Form, opts)
		return errkind.CheckErrorResult(v.Expected, err)

	default:
		return errkind.Msg{Text: fmt.Sprintf("driver: unsupported directive %T", dir)}
	}
}

func (d *Driver) assertReturn(ctx context.Context, v harness.AssertReturnD) error {
	produced, err := action.Do(ctx, d.ls, d.interp, v.Act)
	if err != nil {
		return err
	}
	ok, err := oracle.Matches(v.Expected, produced)
	if err != nil {
		return err
	}
	if !ok {
		return errkind.BadResult{
			Expected: fmt.Sprint(v.Expected),
			Got:      fmt.Sprint(produced),
		}
	}
	return nil
}

func (d *Driver) assertTrapModule(ctx context.Context, v harness.AssertTrapModuleD, opts capability.Options) error {
	compiled, env, err := d.compiler.CompileTextUntilLink(d.ls, v.Form, opts)
	if err != nil {
		return errkind.CheckErrorResult(v.Expected, err)
	}
	_, err = d.interp.InterpretModule(ctx, env, compiled, nil, nil)
	return errkind.CheckErrorResult(v.Expected, err)
}

// assertMalformed implements a deliberate dead-branch design: the
// directive is expected to fail parsing/compiling, so the success arm is
// semantically impossible and the directive unconditionally aborts once
// the classifier has run.
func (d *Driver) assertMalformed(ctx context.Context, v harness.AssertMalformedD, opts capability.Options) error {
	_, _, err := d.compiler.CompileTextUntilLink(d.ls, v.Form, opts)
	if cerr := errkind.CheckErrorResult(v.Expected, err); cerr != nil {
		return cerr
	}
	return errkind.Msg{Text: "assert_malformed: module compiled without error; this branch is unreachable by design"}
}

func (d *Driver) assertMalformedQuote(v harness.AssertMalformedQuoteD, opts capability.Options) error {
	directives, err := d.parser.ParseTextScript(v.Source)
	if err != nil {
		return errkind.CheckErrorResult(v.Expected, err)
	}
	if len(directives) != 1 {
		return errkind.Msg{Text: "assert_malformed_quote: multi-directive quoted script is a hard internal error"}
	}
	tm, ok := directives[0].(harness.TextModule)
	if !ok {
		return errkind.Msg{Text: "assert_malformed_quote: quoted script did not yield a single TextModule"}
	}
	_, err = d.compiler.CompileTextUntilBinary(tm.Form, opts)
	return errkind.CheckErrorResult(v.Expected, err)
}

func (d *Driver) assertInvalidBinary(v harness.AssertInvalidBinaryD, opts capability.Options) error {
	bm, err := d.parser.ParseBinaryModule(v.Bytes)
	if err != nil {
		return errkind.CheckErrorResult(v.Expected, err)
	}
	if err := d.validator.ValidateBinary(bm); err != nil {
		return errkind.CheckErrorResult(v.Expected, err)
	}
	_, _, err = d.compiler.CompileBinaryUntilLink(d.ls, bm, opts)
	return errkind.CheckErrorResult(v.Expected, err)
}

func (d *Driver) installModule(ctx context.Context, id *string, form harness.ModuleForm, opts capability.Options) error {
	compiled, env, err := d.compiler.CompileTextUntilLink(d.ls, form, opts)
	if err != nil {
		return err
	}
	return d.finishModule(ctx, id, compiled, env)
}

func (d *Driver) finishModule(ctx context.Context, id *string, compiled harness.CompiledModule, env harness.EnvHandle) error {
	exports, err := d.interp.InterpretModule(ctx, env, compiled, nil, nil)
	if err != nil {
		return err
	}
	key := uuid.NewString()
	if id != nil {
		key = *id
	}
	envID := d.ls.NewEnv(env)
	d.ls.Install(key, exports, envID)
	if d.log != nil {
		d.log.Infof("installed module %q (directive #%d)", key, d.currModule)
	}
	return nil
}

func strPtr(s string) *string { return &s }
