package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const mathFixture = `{
  "forms": [
    {"type": "call", "name": "defmodule", "line": 1, "args": [
      {"type": "atom", "value": "Math"},
      {"type": "keywords", "pairs": [
        {"key": "do", "value": {"type": "call", "name": "def", "line": 2, "args": [
          {"type": "call", "name": "add", "line": 2, "args": [
            {"type": "var", "name": "a", "line": 2},
            {"type": "var", "name": "b", "line": 2}
          ]},
          {"type": "keywords", "pairs": [
            {"key": "do", "value": {"type": "call", "name": "+", "line": 3, "args": [
              {"type": "var", "name": "a", "line": 3},
              {"type": "var", "name": "b", "line": 3}
            ]}}
          ]}
        ]}}
      ]}
    ]}
  ]
}`

const listFixture = `{
  "forms": [
    {"type": "call", "name": "defmodule", "line": 1, "args": [
      {"type": "atom", "value": "List"},
      {"type": "keywords", "pairs": []}
    ]},
    {"type": "call", "name": "defmodule", "line": 5, "args": [
      {"type": "atom", "value": "List.Sort"},
      {"type": "keywords", "pairs": []}
    ]}
  ]
}`

func TestRegistryIndexesModules(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "math.cnd.json", mathFixture)
	writeFixture(t, filepath.Join(root, "lib"), "list.cnd.json", listFixture)
	// a stray file that is not a fixture must be ignored
	writeFixture(t, root, "notes.txt", "not a fixture")

	reg, err := NewRegistry([]SearchPath{{Path: root}})
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}

	if got := strings.Join(reg.Modules(), ","); got != "List,List.Sort,Math" {
		t.Fatalf("Modules = %s, want List,List.Sort,Math", got)
	}
	for _, name := range []string{"Math", "List", "List.Sort"} {
		if !reg.Known(name) {
			t.Fatalf("Known(%s) = false, want true", name)
		}
	}
	if reg.Known("Missing") {
		t.Fatal("Known(Missing) = true, want false")
	}

	unit, ok := reg.Source("List.Sort")
	if !ok {
		t.Fatal("Source(List.Sort) missed")
	}
	if filepath.Base(unit.Path) != "list.cnd.json" {
		t.Fatalf("Source path = %s, want list.cnd.json", unit.Path)
	}
	if len(unit.Forms) != 2 {
		t.Fatalf("expected 2 decoded forms, got %d", len(unit.Forms))
	}
	if len(reg.Units()) != 2 {
		t.Fatalf("expected 2 units, got %d", len(reg.Units()))
	}
}

func TestRegistryPackageNameFromManifest(t *testing.T) {
	root := t.TempDir()
	manifest := "name: My Lib\nversion: \"0.1.0\"\n"
	if err := os.WriteFile(filepath.Join(root, ManifestFile), []byte(manifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	writeFixture(t, root, "math.cnd.json", mathFixture)

	reg, err := NewRegistry([]SearchPath{{Path: root}})
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	unit, ok := reg.Source("Math")
	if !ok {
		t.Fatal("Source(Math) missed")
	}
	if unit.Package != "my_lib" {
		t.Fatalf("Package = %q, want my_lib", unit.Package)
	}
}

func TestRegistryDuplicateModule(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "a.cnd.json", mathFixture)
	writeFixture(t, root, "b.cnd.json", mathFixture)

	_, err := NewRegistry([]SearchPath{{Path: root}})
	if err == nil {
		t.Fatal("expected duplicate-module error, got nil")
	}
	if !strings.Contains(err.Error(), "declared in multiple files") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func writeFixture(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
