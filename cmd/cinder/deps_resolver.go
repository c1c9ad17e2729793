package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cinder/compiler-go/pkg/driver"
)

// resolvedPackage ties a lockfile entry to the directory its sources live
// in and to its own manifest, when it carries one.
type resolvedPackage struct {
	pkg      *driver.LockedPackage
	manifest *driver.Manifest
	root     string
}

// dependencyInstaller walks the manifest's dependency graph, pulls every
// package into the deps store, and reconciles the lockfile with what it
// resolved. Path dependencies stay where they are on disk; registry and git
// dependencies are snapshotted into the store.
type dependencyInstaller struct {
	manifest *driver.Manifest
	store    depsStore
	logs     []string
	resolved map[string]*resolvedPackage
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	return &dependencyInstaller{
		manifest: manifest,
		store:    newDepsStore(cacheDir),
		logs:     []string{},
	}
}

// Install resolves the whole graph and rewrites lock.Packages to match,
// reporting whether the lockfile changed.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	if d.manifest == nil {
		return false, d.logs, nil
	}
	d.resolved = make(map[string]*resolvedPackage)

	for _, name := range d.manifest.DependencyNames() {
		if err := d.install(name, d.manifest.Dependencies[name], d.manifest.Dir()); err != nil {
			return false, d.logs, err
		}
	}

	changed := false
	existing := lock.Packages
	lock.Packages = nil
	for _, pkg := range existing {
		if pkg == nil {
			continue
		}
		if _, ok := d.resolved[pkg.Name]; ok {
			lock.Packages = append(lock.Packages, pkg)
			continue
		}
		changed = true
	}
	names := make([]string, 0, len(d.resolved))
	for name := range d.resolved {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if lock.Upsert(d.resolved[name].pkg) {
			changed = true
		}
	}
	return changed, d.logs, nil
}

// install resolves one requirement and recurses into the dependencies its
// manifest declares. baseDir anchors relative path requirements.
func (d *dependencyInstaller) install(name string, spec *driver.DependencySpec, baseDir string) error {
	if spec == nil {
		return fmt.Errorf("dependency %q has no descriptor", name)
	}
	res, err := d.resolve(name, spec, baseDir)
	if err != nil {
		return err
	}
	if prev, ok := d.resolved[res.pkg.Name]; ok {
		if prev.pkg.Version != res.pkg.Version {
			return fmt.Errorf("dependency %s required at both %s and %s", res.pkg.Name, prev.pkg.Version, res.pkg.Version)
		}
		return nil
	}
	// Recording the package before recursing terminates require cycles.
	d.resolved[res.pkg.Name] = res

	if err := d.indexModules(res); err != nil {
		return err
	}
	if res.manifest != nil {
		for _, child := range res.manifest.DependencyNames() {
			if err := d.install(child, res.manifest.Dependencies[child], res.root); err != nil {
				return err
			}
		}
	}
	return nil
}

// indexModules records which module identities the package sources declare,
// so import directives can be checked against the lockfile alone.
func (d *dependencyInstaller) indexModules(res *resolvedPackage) error {
	if res.root == "" {
		return nil
	}
	if info, err := os.Stat(res.root); err != nil || !info.IsDir() {
		return nil
	}
	reg, err := driver.NewRegistry([]driver.SearchPath{{Path: res.root}})
	if err != nil {
		return fmt.Errorf("index modules for %s: %w", res.pkg.Name, err)
	}
	res.pkg.Modules = reg.Modules()
	return nil
}

func (d *dependencyInstaller) resolve(name string, spec *driver.DependencySpec, baseDir string) (*resolvedPackage, error) {
	switch {
	case spec.Path != "":
		return d.resolvePath(name, spec.Path, baseDir)
	case spec.Git != "":
		return d.resolveGit(name, spec)
	case spec.Version != "":
		return d.resolveRegistry(name, spec)
	}
	return nil, fmt.Errorf("dependency %q: unsupported descriptor", name)
}

func (d *dependencyInstaller) resolvePath(name, pathSpec, baseDir string) (*resolvedPackage, error) {
	if !filepath.IsAbs(pathSpec) {
		pathSpec = filepath.Join(baseDir, pathSpec)
	}
	dir, err := filepath.Abs(pathSpec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: resolve path %q: %w", name, pathSpec, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: stat %s: %w", name, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: %s is not a directory", name, dir)
	}

	manifest, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	version := manifest.Version
	if version == "" {
		version = "0.0.0-dev"
	}
	pkgName := manifest.Name
	if pkgName == "" {
		pkgName = sanitizeName(name)
	}
	d.logf("using %s %s from %s", pkgName, version, dir)

	return &resolvedPackage{
		pkg: &driver.LockedPackage{
			Name:    pkgName,
			Version: version,
			Source:  "path:" + dir,
		},
		manifest: manifest,
		root:     dir,
	}, nil
}

func (d *dependencyInstaller) resolveRegistry(name string, spec *driver.DependencySpec) (*resolvedPackage, error) {
	if !d.store.enabled() {
		return nil, fmt.Errorf("dependency %q: no cache directory for registry packages", name)
	}
	registry := spec.Registry
	if registry == "" {
		registry = "default"
	}
	pkg, dir, err := d.store.fetchRegistry(registry, name, strings.TrimSpace(spec.Version))
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	d.logf("installed %s %s (registry %s)", pkg.Name, pkg.Version, registry)

	manifest, err := loadOptionalManifest(filepath.Join(dir, driver.ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	return &resolvedPackage{pkg: pkg, manifest: manifest, root: dir}, nil
}

func (d *dependencyInstaller) resolveGit(name string, spec *driver.DependencySpec) (*resolvedPackage, error) {
	if !d.store.enabled() {
		return nil, fmt.Errorf("dependency %q: no cache directory for git packages", name)
	}
	pkg, dir, err := d.store.fetchGit(name, spec)
	if err != nil {
		return nil, err
	}
	d.logf("checked out %s %s", pkg.Name, pkg.Version)

	manifest, err := loadOptionalManifest(filepath.Join(dir, driver.ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	if manifest != nil && manifest.Name != "" {
		pkg.Name = manifest.Name
	}
	return &resolvedPackage{pkg: pkg, manifest: manifest, root: dir}, nil
}

func (d *dependencyInstaller) logf(format string, args ...any) {
	d.logs = append(d.logs, fmt.Sprintf(format, args...))
}

func loadOptionalManifest(path string) (*driver.Manifest, error) {
	manifest, err := driver.LoadManifest(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	return strings.ReplaceAll(name, "-", "_")
}
