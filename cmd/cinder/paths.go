package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cinder/compiler-go/pkg/driver"
)

func collectSearchPaths(base string, extra ...string) []driver.SearchPath {
	seen := make(map[string]struct{})
	var paths []driver.SearchPath

	add := func(path string) {
		if path == "" {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		paths = append(paths, driver.SearchPath{Path: abs})
	}

	for _, path := range extra {
		add(path)
	}

	if base != "" {
		add(base)
	}

	if cwd, err := os.Getwd(); err == nil {
		add(cwd)
	}

	for _, part := range splitPathListEnv(os.Getenv("CINDER_PATH")) {
		add(part)
	}

	return paths
}

func splitPathListEnv(value string) []string {
	if value == "" {
		return nil
	}
	raw := strings.Split(value, string(os.PathListSeparator))
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// lockedSearchPaths maps locked package sources to directories that can feed
// the module registry.
func lockedSearchPaths(manifestRoot string, lock *driver.Lockfile, cacheDir string) []string {
	if lock == nil {
		return nil
	}
	var extras []string
	for _, pkg := range lock.Packages {
		if pkg == nil {
			continue
		}
		source := strings.TrimSpace(pkg.Source)
		switch {
		case strings.HasPrefix(source, "path:"):
			pathSpec := strings.TrimSpace(strings.TrimPrefix(source, "path:"))
			if pathSpec == "" {
				continue
			}
			if !filepath.IsAbs(pathSpec) {
				pathSpec = filepath.Join(manifestRoot, filepath.FromSlash(pathSpec))
			}
			extras = append(extras, filepath.Clean(pathSpec))
		default:
			if pkg.Name == "" || pkg.Version == "" {
				continue
			}
			extras = append(extras, newDepsStore(cacheDir).dir(pkg.Name, pkg.Version))
		}
	}
	return extras
}

func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, driver.ManifestFile)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", driver.ManifestFile, origin, errManifestNotFound)
		}
		dir = parent
	}
}

func resolveCinderHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("CINDER_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve CINDER_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".cinder"), nil
}
