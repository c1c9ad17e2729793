package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cinder/compiler-go/pkg/syntax"
)

// ManifestFile is the package manifest filename looked up when discovering
// a source root.
const ManifestFile = "package.yml"

// SourceExt is the file extension of serialized Cinder source programs.
const SourceExt = ".cnd.json"

// SearchPath describes a module search root.
type SearchPath struct {
	Path string
}

// SourceUnit aggregates one serialized program file and the module
// identities it declares.
type SourceUnit struct {
	Path    string
	Package string
	Forms   []syntax.Form
	Modules []string
}

// Registry indexes the modules declared across one or more search roots.
// It satisfies the import resolver's registry interface, so directives can
// be checked against what the packages on disk actually declare.
type Registry struct {
	roots   []SearchPath
	units   []*SourceUnit
	origins map[string]*SourceUnit
}

// NewRegistry builds a module index over the given search roots. Roots are
// deduplicated after resolution to absolute paths.
func NewRegistry(roots []SearchPath) (*Registry, error) {
	unique := make([]SearchPath, 0, len(roots))
	seen := make(map[string]struct{}, len(roots))
	for _, sp := range roots {
		if sp.Path == "" {
			continue
		}
		abs, err := filepath.Abs(sp.Path)
		if err != nil {
			return nil, fmt.Errorf("registry: resolve search path %q: %w", sp.Path, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		unique = append(unique, SearchPath{Path: abs})
	}

	reg := &Registry{
		roots:   unique,
		origins: make(map[string]*SourceUnit),
	}
	for _, root := range unique {
		if err := reg.indexRoot(root.Path); err != nil {
			return nil, err
		}
	}
	sort.Slice(reg.units, func(i, j int) bool {
		return reg.units[i].Path < reg.units[j].Path
	})
	return reg, nil
}

// Known reports whether any indexed source file declares the named module.
func (r *Registry) Known(module string) bool {
	if r == nil {
		return false
	}
	_, ok := r.origins[module]
	return ok
}

// Source returns the unit that declares the named module.
func (r *Registry) Source(module string) (*SourceUnit, bool) {
	if r == nil {
		return nil, false
	}
	unit, ok := r.origins[module]
	return unit, ok
}

// Modules lists every declared module identity in sorted order.
func (r *Registry) Modules() []string {
	names := make([]string, 0, len(r.origins))
	for name := range r.origins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Units returns the indexed source units ordered by path.
func (r *Registry) Units() []*SourceUnit {
	return r.units
}

func (r *Registry) indexRoot(rootDir string) error {
	info, err := os.Stat(rootDir)
	if err != nil {
		return fmt.Errorf("registry: stat search path %s: %w", rootDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("registry: search path %s is not a directory", rootDir)
	}
	rootName, err := discoverRootName(rootDir)
	if err != nil {
		return err
	}

	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "quarantine" {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, SourceExt) {
			return nil
		}
		unit, err := loadSourceUnit(path, rootName)
		if err != nil {
			return err
		}
		for _, mod := range unit.Modules {
			if existing, ok := r.origins[mod]; ok && existing.Path != path {
				return fmt.Errorf("registry: module %s declared in multiple files (%s, %s)", mod, existing.Path, path)
			}
			r.origins[mod] = unit
		}
		r.units = append(r.units, unit)
		return nil
	})
	if err != nil {
		return fmt.Errorf("registry: traverse %s: %w", rootDir, err)
	}
	return nil
}

func loadSourceUnit(path, rootName string) (*SourceUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	forms, err := syntax.DecodeProgram(data)
	if err != nil {
		return nil, fmt.Errorf("registry: decode %s: %w", path, err)
	}
	unit := &SourceUnit{
		Path:    path,
		Package: rootName,
		Forms:   forms,
	}
	seen := make(map[string]struct{})
	for _, form := range forms {
		collectModuleNames(form, seen)
	}
	for name := range seen {
		unit.Modules = append(unit.Modules, name)
	}
	sort.Strings(unit.Modules)
	return unit, nil
}

// collectModuleNames walks a form tree recording every defmodule whose
// reference is a statically known atom or bare alias.
func collectModuleNames(form syntax.Form, into map[string]struct{}) {
	switch f := form.(type) {
	case *syntax.Call:
		if f.Name == "defmodule" && len(f.Args) >= 1 {
			if name, ok := staticModuleName(f.Args[0]); ok {
				into[name] = struct{}{}
			}
		}
		for _, arg := range f.Args {
			collectModuleNames(arg, into)
		}
	case syntax.List:
		for _, el := range f {
			collectModuleNames(el, into)
		}
	case syntax.Tuple:
		for _, el := range f.Elems {
			collectModuleNames(el, into)
		}
	case syntax.Keywords:
		for _, pair := range f {
			collectModuleNames(pair.Value, into)
		}
	}
}

func staticModuleName(ref syntax.Form) (string, bool) {
	switch f := ref.(type) {
	case syntax.Atom:
		return string(f), true
	case syntax.Var:
		return f.Name, true
	}
	return "", false
}

// discoverRootName walks up from the root directory looking for a manifest
// and falls back to the directory basename.
func discoverRootName(rootDir string) (string, error) {
	dir := filepath.Clean(rootDir)
	for {
		candidate := filepath.Join(dir, ManifestFile)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			manifest, loadErr := LoadManifest(candidate)
			if loadErr != nil {
				return "", loadErr
			}
			if manifest.Name != "" {
				return sanitizeSegment(manifest.Name), nil
			}
			break
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("registry: stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	name := sanitizeSegment(filepath.Base(rootDir))
	if name == "" {
		name = "pkg"
	}
	return name, nil
}
