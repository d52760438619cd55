package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wastrun/harness/driver"
	"github.com/wastrun/harness/wazeroharness"
)

func main() {
	var (
		scriptFile  = flag.String("script", "", "Path to a .wast conformance script")
		suiteFile   = flag.String("suite", "", "Path to a YAML suite manifest listing scripts to run")
		noExh       = flag.Bool("no-exhaustion", false, "Skip assert_exhaustion directives")
		optimize    = flag.Bool("optimize", false, "Pass Optimize through to the compiler stage")
		verbose     = flag.Bool("v", false, "Log each installed module to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *scriptFile == "" && *suiteFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: wastrun -script <file.wast> [-no-exhaustion] [-optimize]")
		fmt.Fprintln(os.Stderr, "       wastrun -suite <manifest.yaml>")
		fmt.Fprintln(os.Stderr, "       wastrun -script <file.wast> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if *scriptFile == "" {
			fmt.Fprintln(os.Stderr, "Error: -i requires -script")
			os.Exit(1)
		}
		if err := runInteractive(*scriptFile, *noExh, *optimize); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *suiteFile != "" {
		results, err := runSuite(*suiteFile, *verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		failed := 0
		for _, r := range results {
			status := "ok"
			if r.err != nil {
				status = "FAIL: " + r.err.Error()
				failed++
			}
			fmt.Printf("%-40s %s\n", r.path, status)
		}
		fmt.Printf("\n%d/%d fixtures passed\n", len(results)-failed, len(results))
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	if err := run(*scriptFile, *noExh, *optimize, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(scriptFile string, noExhaustion, optimize, verbose bool) error {
	ctx := context.Background()

	data, err := os.ReadFile(scriptFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	d, adapter, closeRuntime, err := newDriver(ctx, verbose)
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	defer closeRuntime(ctx)

	script, err := adapter.ParseTextScript(string(data))
	if err != nil {
		return fmt.Errorf("parse script: %w", err)
	}

	fmt.Printf("Script: %s\n", scriptFile)
	fmt.Printf("Directives: %d\n", len(script))

	if err := d.Exec(ctx, script, noExhaustion, optimize); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Println("PASS")
	return nil
}

// newDriver builds a fresh wazero runtime, spectest fixture, and Driver,
// returning the adapter too since script parsing must go through the same
// runtime the driver's compiler/linker/interpreter use. The caller owns
// closing the returned runtime-closer once done.
func newDriver(ctx context.Context, verbose bool) (*driver.Driver, *wazeroharness.Adapter, func(context.Context) error, error) {
	rt := wazero.NewRuntime(ctx)
	adapter := wazeroharness.New(rt)

	var log *zap.Logger
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			rt.Close(ctx)
			return nil, nil, nil, fmt.Errorf("create logger: %w", err)
		}
		log = l
	}

	hostModule, spectestForm := wazeroharness.NewSpectestHost(log)
	d := driver.New(adapter, adapter, adapter, adapter, adapter, wazeroharness.NewZapLogger(log),
		driver.Spectest{HostModule: hostModule, Form: spectestForm})

	return d, adapter, rt.Close, nil
}
