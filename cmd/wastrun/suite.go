package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// suiteManifest is the YAML shape of a -suite manifest: an ordered list of
// conformance scripts to run, each independently (its own runtime, its own
// link state), so one fixture's failure can't corrupt another's.
type suiteManifest struct {
	Fixtures []suiteFixture `yaml:"fixtures"`
}

type suiteFixture struct {
	Path         string `yaml:"path"`
	NoExhaustion bool   `yaml:"noExhaustion"`
	Optimize     bool   `yaml:"optimize"`
}

type fixtureResult struct {
	path string
	err  error
}

func runSuite(manifestPath string, verbose bool) ([]fixtureResult, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest suiteManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	base := filepath.Dir(manifestPath)
	results := make([]fixtureResult, 0, len(manifest.Fixtures))
	for _, f := range manifest.Fixtures {
		path := f.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		err := runFixture(path, f.NoExhaustion, f.Optimize, verbose)
		results = append(results, fixtureResult{path: f.Path, err: err})
	}
	return results, nil
}

func runFixture(path string, noExhaustion, optimize, verbose bool) error {
	ctx := context.Background()

	data, err := os.ReadFile(path)
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

	if err := d.Exec(ctx, script, noExhaustion, optimize); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
