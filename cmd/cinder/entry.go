package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/driver"
	"cinder/compiler-go/pkg/lower"
	"cinder/compiler-go/pkg/syntax"
)

func runLower(args []string) int {
	return lowerFiles(args, true)
}

func runCheck(args []string) int {
	return lowerFiles(args, false)
}

func lowerFiles(args []string, emit bool) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	inputs, err := expandInputs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "no source files found")
		return 1
	}

	registry, err := buildRegistry(inputs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	engine := lower.New(lower.WithImportRegistry(registry))

	failed := 0
	for _, path := range inputs {
		if err := lowerFile(engine, path, emit); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed++
		} else if !emit {
			fmt.Fprintf(os.Stdout, "%s: ok\n", path)
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func lowerFile(engine *lower.Engine, path string, emit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	forms, err := syntax.DecodeProgram(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	scope := lower.NewScope(path)
	nodes, out, err := engine.LowerAll(forms, scope)
	if err != nil {
		return err
	}
	if !emit {
		return nil
	}
	for _, node := range nodes {
		fmt.Fprintln(os.Stdout, core.Render(node))
	}
	for _, module := range out.Scheduled {
		fmt.Fprintf(os.Stdout, "; module %s\n", module)
	}
	return nil
}

// expandInputs resolves the argument list to concrete source files, walking
// any directory arguments.
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", arg, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", abs, err)
		}
		if !info.IsDir() {
			if !strings.HasSuffix(abs, driver.SourceExt) {
				return nil, fmt.Errorf("%s: expected a %s file", abs, driver.SourceExt)
			}
			inputs = append(inputs, abs)
			continue
		}
		reg, err := driver.NewRegistry([]driver.SearchPath{{Path: abs}})
		if err != nil {
			return nil, err
		}
		for _, unit := range reg.Units() {
			inputs = append(inputs, unit.Path)
		}
	}
	return inputs, nil
}

// buildRegistry indexes the modules visible to the inputs: the enclosing
// package root, any locked dependency sources, and CINDER_PATH entries.
func buildRegistry(inputs []string) (*driver.Registry, error) {
	base := ""
	var extras []string
	if len(inputs) > 0 {
		manifestPath, err := findManifest(filepath.Dir(inputs[0]))
		switch {
		case err == nil:
			base = filepath.Dir(manifestPath)
			manifest, err := driver.LoadManifest(manifestPath)
			if err != nil {
				return nil, err
			}
			lockPath := filepath.Join(manifest.Dir(), "package.lock")
			lock, err := driver.LoadLockfile(lockPath)
			if err == nil {
				cacheDir, homeErr := resolveCinderHome()
				if homeErr != nil {
					return nil, homeErr
				}
				extras = lockedSearchPaths(manifest.Dir(), lock, cacheDir)
			} else if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		case errors.Is(err, errManifestNotFound):
			base = filepath.Dir(inputs[0])
		default:
			return nil, err
		}
	}
	return driver.NewRegistry(collectSearchPaths(base, extras...))
}
