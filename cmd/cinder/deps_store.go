package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"cinder/compiler-go/pkg/driver"
	"cinder/compiler-go/pkg/syntax"
)

// depsStore is the on-disk home for installed dependency sources. Each
// package version gets one directory under <cache>/deps holding only the
// material the compiler consumes: serialized programs and the manifest.
type depsStore struct {
	cache string
}

func newDepsStore(cacheDir string) depsStore {
	return depsStore{cache: cacheDir}
}

func (st depsStore) enabled() bool { return st.cache != "" }

func (st depsStore) dir(name, version string) string {
	return filepath.Join(st.cache, "deps", sanitizeName(name), versionSegment(version))
}

func (st depsStore) registryRoot() string {
	if dir := strings.TrimSpace(os.Getenv("CINDER_REGISTRY")); dir != "" {
		return dir
	}
	return filepath.Join(st.cache, "registry")
}

// sourceFile is one stored file, addressed relative to the package root.
type sourceFile struct {
	rel  string
	data []byte
}

// collectSources gathers the installable material under root: every
// serialized program plus any manifest. Programs that fail to decode are
// rejected here, before anything lands in the store.
func collectSources(root string) ([]sourceFile, error) {
	var files []sourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		program := strings.HasSuffix(d.Name(), driver.SourceExt)
		if !program && d.Name() != driver.ManifestFile {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if program {
			if _, err := syntax.DecodeProgram(data); err != nil {
				return fmt.Errorf("invalid program %s: %w", path, err)
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, sourceFile{rel: filepath.ToSlash(rel), data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	return files, nil
}

// sourceDigest hashes the collected files in relative-path order so the
// checksum is stable across hosts and directory walk orders.
func sourceDigest(files []sourceFile) string {
	h := sha256.New()
	for _, f := range files {
		fmt.Fprintf(h, "%s\n%d\n", f.rel, len(f.data))
		h.Write(f.data)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}

// stash replaces the stored copy of name@version with the given files and
// reports the store directory.
func (st depsStore) stash(name, version string, files []sourceFile) (string, error) {
	dir := st.dir(name, version)
	if err := os.RemoveAll(dir); err != nil {
		return "", err
	}
	for _, f := range files {
		dst := filepath.Join(dir, filepath.FromSlash(f.rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(dst, f.data, 0o644); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// fetchRegistry copies a published registry package into the store.
func (st depsStore) fetchRegistry(registry, name, version string) (*driver.LockedPackage, string, error) {
	pkgDir := filepath.Join(st.registryRoot(), registry, name, version)
	info, err := os.Stat(pkgDir)
	if err != nil {
		return nil, "", fmt.Errorf("package %s@%s not published under %s: %w", name, version, st.registryRoot(), err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("package %s@%s: %s is not a directory", name, version, pkgDir)
	}
	files, err := collectSources(pkgDir)
	if err != nil {
		return nil, "", fmt.Errorf("package %s@%s: %w", name, version, err)
	}
	if len(files) == 0 {
		return nil, "", fmt.Errorf("package %s@%s carries no programs", name, version)
	}
	dir, err := st.stash(name, version, files)
	if err != nil {
		return nil, "", fmt.Errorf("package %s@%s: store: %w", name, version, err)
	}
	pkg := &driver.LockedPackage{
		Name:     sanitizeName(name),
		Version:  version,
		Source:   fmt.Sprintf("registry:%s/%s@%s", registry, sanitizeName(name), version),
		Checksum: sourceDigest(files),
	}
	return pkg, dir, nil
}

// fetchGit checks out a git dependency and stores its sources. A checkout
// pinned to an explicit rev is reused from the store without cloning again.
func (st depsStore) fetchGit(name string, spec *driver.DependencySpec) (*driver.LockedPackage, string, error) {
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, "", fmt.Errorf("dependency %q: git URL required", name)
	}
	revision, label, err := gitRevision(spec)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}

	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		dir := st.dir(name, rev)
		if files, err := collectSources(dir); err == nil && len(files) > 0 {
			pkg := &driver.LockedPackage{
				Name:     sanitizeName(name),
				Version:  rev,
				Source:   fmt.Sprintf("git+%s@%s", url, rev),
				Checksum: sourceDigest(files),
			}
			return pkg, dir, nil
		}
	}

	tmp, err := os.MkdirTemp("", "cinder-git-*")
	if err != nil {
		return nil, "", err
	}
	defer os.RemoveAll(tmp)

	repo, err := git.PlainClone(tmp, false, &git.CloneOptions{URL: url})
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: clone %s: %w", name, url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: resolve %s: %w", name, revision, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return nil, "", fmt.Errorf("dependency %q: checkout %s: %w", name, revision, err)
	}

	files, err := collectSources(tmp)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}
	version := gitVersionLabel(label, hash.String())
	dir, err := st.stash(name, version, files)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: store: %w", name, err)
	}
	pkg := &driver.LockedPackage{
		Name:     sanitizeName(name),
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, hash.String()),
		Checksum: sourceDigest(files),
	}
	return pkg, dir, nil
}

func gitRevision(spec *driver.DependencySpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git dependencies require rev, tag, or branch")
}

// gitVersionLabel picks the version recorded in the lockfile: the commit
// itself for pinned revs, otherwise the tag or branch plus a short commit.
func gitVersionLabel(label, commit string) string {
	if label == "" || label == commit {
		return commit
	}
	short := commit
	if len(short) > 12 {
		short = short[:12]
	}
	return label + "+" + short
}

// versionSegment makes a version string safe to use as a store directory.
func versionSegment(version string) string {
	version = strings.TrimSpace(version)
	var b strings.Builder
	for _, r := range version {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "head"
	}
	return b.String()
}
