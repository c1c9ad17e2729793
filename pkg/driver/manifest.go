package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest models the package.yml contents of a Cinder package.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Authors      []string
	Targets      map[string]Target
	Dependencies map[string]*DependencySpec
}

// Target names an entry fixture of the package.
type Target struct {
	Main string
}

// DependencySpec captures one dependency requirement: a registry version, a
// git source pinned by rev/tag/branch, or a local path.
type DependencySpec struct {
	Version  string
	Git      string
	Rev      string
	Tag      string
	Branch   string
	Path     string
	Registry string
}

// LoadManifest parses package.yml from disk.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw manifestDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", abs, err)
	}

	manifest, err := raw.toManifest()
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", abs, err)
	}
	if manifest.Name == "" {
		return nil, fmt.Errorf("manifest: %s missing name", abs)
	}
	manifest.Path = abs
	return manifest, nil
}

// DependencyNames lists the declared dependencies in stable order.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dir reports the package root directory.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

type manifestDisk struct {
	Name         string               `yaml:"name"`
	Version      string               `yaml:"version"`
	License      string               `yaml:"license"`
	Authors      []string             `yaml:"authors"`
	Targets      map[string]yaml.Node `yaml:"targets"`
	Dependencies map[string]yaml.Node `yaml:"dependencies"`
}

type dependencyDisk struct {
	Version  string `yaml:"version"`
	Git      string `yaml:"git"`
	Rev      string `yaml:"rev"`
	Tag      string `yaml:"tag"`
	Branch   string `yaml:"branch"`
	Path     string `yaml:"path"`
	Registry string `yaml:"registry"`
}

func (d manifestDisk) toManifest() (*Manifest, error) {
	manifest := &Manifest{
		Name:         sanitizeSegment(d.Name),
		Version:      strings.TrimSpace(d.Version),
		Authors:      append([]string(nil), d.Authors...),
		Targets:      make(map[string]Target, len(d.Targets)),
		Dependencies: make(map[string]*DependencySpec, len(d.Dependencies)),
	}
	for name, node := range d.Targets {
		var main string
		if err := node.Decode(&main); err != nil {
			return nil, fmt.Errorf("target %s: %w", name, err)
		}
		main = strings.TrimSpace(main)
		if main == "" {
			return nil, fmt.Errorf("target %q requires an entrypoint path", name)
		}
		manifest.Targets[name] = Target{Main: main}
	}
	for name, node := range d.Dependencies {
		spec, err := decodeDependency(node)
		if err != nil {
			return nil, fmt.Errorf("dependency %s: %w", name, err)
		}
		manifest.Dependencies[sanitizeSegment(name)] = spec
	}
	return manifest, nil
}

// A dependency is written either as a bare version string or as a mapping.
func decodeDependency(node yaml.Node) (*DependencySpec, error) {
	if node.Kind == yaml.ScalarNode {
		var version string
		if err := node.Decode(&version); err != nil {
			return nil, err
		}
		return &DependencySpec{Version: strings.TrimSpace(version)}, nil
	}
	var disk dependencyDisk
	if err := node.Decode(&disk); err != nil {
		return nil, err
	}
	if disk.Version == "" && disk.Git == "" && disk.Path == "" {
		return nil, fmt.Errorf("must specify version, git, or path")
	}
	return &DependencySpec{
		Version:  strings.TrimSpace(disk.Version),
		Git:      strings.TrimSpace(disk.Git),
		Rev:      strings.TrimSpace(disk.Rev),
		Tag:      strings.TrimSpace(disk.Tag),
		Branch:   strings.TrimSpace(disk.Branch),
		Path:     strings.TrimSpace(disk.Path),
		Registry: strings.TrimSpace(disk.Registry),
	}, nil
}

// sanitizeSegment normalizes a package or module segment for use in paths
// and lockfile entries.
func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(strings.ToLower(segment))
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else if r == '-' || r == ' ' || r == '.' {
			b.WriteByte('_')
		}
	}
	return b.String()
}
