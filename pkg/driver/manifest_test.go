package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifestBasic(t *testing.T) {
	path := writeManifest(t, `
name: cinder-cli
version: "0.1.0"
license: MIT
authors:
  - Mara
  - Iris
targets:
  app: src/main.cnd.json
dependencies:
  stdlib: "~> 1.0.0"
  builder:
    git: https://github.com/example/builder.git
    rev: abc123
  local:
    path: ../local
`)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}

	if got, want := manifest.Name, "cinder_cli"; got != want {
		t.Fatalf("Name = %q, want %q", got, want)
	}
	if got := manifest.Version; got != "0.1.0" {
		t.Fatalf("Version = %q, want 0.1.0", got)
	}
	if len(manifest.Authors) != 2 || manifest.Authors[0] != "Mara" || manifest.Authors[1] != "Iris" {
		t.Fatalf("Authors unexpected: %#v", manifest.Authors)
	}

	target, ok := manifest.Targets["app"]
	if !ok {
		t.Fatalf("Targets missing app entry: %#v", manifest.Targets)
	}
	if target.Main != "src/main.cnd.json" {
		t.Fatalf("target.Main = %q, want src/main.cnd.json", target.Main)
	}

	stdlib := manifest.Dependencies["stdlib"]
	if stdlib == nil || stdlib.Version != "~> 1.0.0" {
		t.Fatalf("stdlib dependency not parsed: %#v", stdlib)
	}
	builder := manifest.Dependencies["builder"]
	if builder == nil || builder.Git == "" || builder.Rev != "abc123" {
		t.Fatalf("git dependency not captured: %#v", builder)
	}
	local := manifest.Dependencies["local"]
	if local == nil || local.Path != "../local" {
		t.Fatalf("path dependency missing: %#v", local)
	}

	if got := strings.Join(manifest.DependencyNames(), ","); got != "builder,local,stdlib" {
		t.Fatalf("DependencyNames unexpected: %s", got)
	}
	if manifest.Dir() != filepath.Dir(path) {
		t.Fatalf("Dir = %q, want %q", manifest.Dir(), filepath.Dir(path))
	}
}

func TestLoadManifestDependencyShorthand(t *testing.T) {
	path := writeManifest(t, `
name: lib
dependencies:
  stdlib: "~> 1.2.3"
  utils:
    git: https://example.com/utils.git
    tag: v1.0.0
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}

	if manifest.Dependencies["stdlib"].Version != "~> 1.2.3" {
		t.Fatalf("stdlib version mismatch: %#v", manifest.Dependencies["stdlib"])
	}
	if manifest.Dependencies["utils"].Git == "" || manifest.Dependencies["utils"].Tag != "v1.0.0" {
		t.Fatalf("git dependency not parsed: %#v", manifest.Dependencies["utils"])
	}
}

func TestLoadManifestMissingName(t *testing.T) {
	path := writeManifest(t, `
name: ""
targets:
  cli: src/main.cnd.json
`)

	_, err := LoadManifest(path)
	if err == nil {
		t.Fatal("expected error for missing name, got nil")
	}
	if !strings.Contains(err.Error(), "missing name") {
		t.Fatalf("expected missing-name error, got %v", err)
	}
}

func TestLoadManifestEmptyDependency(t *testing.T) {
	path := writeManifest(t, `
name: demo
dependencies:
  util: {}
`)

	_, err := LoadManifest(path)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "must specify version, git, or path") {
		t.Fatalf("expected dependency validation error, got %v", err)
	}
}

func TestLoadManifestTargetEntrypointRequired(t *testing.T) {
	path := writeManifest(t, `
name: demo
targets:
  cli: ""
`)

	_, err := LoadManifest(path)
	if err == nil {
		t.Fatal("expected error for empty target entrypoint, got nil")
	}
	if !strings.Contains(err.Error(), `target "cli" requires an entrypoint path`) {
		t.Fatalf("expected entrypoint error, got %v", err)
	}
}

func TestLoadManifestUnknownKey(t *testing.T) {
	path := writeManifest(t, `
name: demo
flavor: spicy
`)

	if _, err := LoadManifest(path); err == nil {
		t.Fatal("expected error for unknown manifest key, got nil")
	}
}

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}
