package driver

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFileName)
	writeFile(t, path, `
name: demo-app
version: 0.2.0
authors: Ada
main: src/main.ecl
search_paths:
  - lib
dependencies:
  strings:
    path: ../strings
  mathlib:
    git: https://example.com/mathlib.git
    tag: v1.0.0
  colors: "^1.2"
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if manifest.Name != "demo_app" {
		t.Fatalf("expected sanitized name, got %q", manifest.Name)
	}
	if len(manifest.Authors) != 1 || manifest.Authors[0] != "Ada" {
		t.Fatalf("authors = %v", manifest.Authors)
	}
	if manifest.MainPath() != filepath.Join(dir, "src", "main.ecl") {
		t.Fatalf("main path = %s", manifest.MainPath())
	}
	roots := manifest.ImportRoots()
	if len(roots) != 2 || roots[0] != dir || roots[1] != filepath.Join(dir, "lib") {
		t.Fatalf("import roots = %v", roots)
	}
	names := manifest.DependencyNames()
	if strings.Join(names, ",") != "colors,mathlib,strings" {
		t.Fatalf("dependency names = %v", names)
	}
	if dep := manifest.Dependencies["colors"]; dep.Version != "^1.2" {
		t.Fatalf("expected scalar version dependency, got %+v", dep)
	}
	if dep := manifest.Dependencies["mathlib"]; dep.Git == "" || dep.Tag != "v1.0.0" {
		t.Fatalf("unexpected git dependency %+v", dep)
	}
}

func TestLoadManifestValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFileName)
	writeFile(t, path, `
main: main.txt
dependencies:
  both:
    path: ../x
    version: "1.0"
  loose:
    branch: main
  bad:
    version: "not a version"
`)
	_, err := LoadManifest(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{
		"name must be provided",
		`main "main.txt" must be a .ecl file`,
		`dependencies.bad: invalid version constraint "not a version"`,
		"dependencies.both: path overrides cannot specify version or git source",
		"dependencies.loose: rev, tag and branch apply only to git dependencies",
		"dependencies.loose: must specify version, git, or path",
	}
	if len(verr.Issues) != len(want) {
		t.Fatalf("issues = %q", verr.Issues)
	}
	for i := range want {
		if verr.Issues[i] != want[i] {
			t.Fatalf("issue %d = %q, want %q", i, verr.Issues[i], want[i])
		}
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFileName)
	writeFile(t, path, "name: demo\ntargets: {}\n")
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "targets") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLockfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LockfileName)
	lock := NewLockfile("demo-app", "ecl deps install")
	lock.Upsert(&LockedPackage{Name: "zeta", Version: "1.0.0", Source: "path:../zeta", Dir: "/deps/zeta"})
	lock.Upsert(&LockedPackage{Name: "alpha", Version: "0.1.0", Source: "git+https://example.com/alpha.git", Checksum: "sha256:abc", Dir: "/deps/alpha"})
	lock.Upsert(&LockedPackage{Name: "zeta", Version: "1.1.0", Source: "path:../zeta", Dir: "/deps/zeta"})
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Root != "demo_app" || loaded.Tool != "ecl deps install" {
		t.Fatalf("unexpected metadata %+v", loaded)
	}
	if len(loaded.Packages) != 2 || loaded.Packages[0].Name != "alpha" {
		t.Fatalf("packages not sorted or not deduplicated: %+v", loaded.Packages)
	}
	zeta, ok := loaded.Find("zeta")
	if !ok || zeta.Version != "1.1.0" {
		t.Fatalf("expected upserted zeta 1.1.0, got %+v", zeta)
	}
	dirs := loaded.PackageDirs()
	if len(dirs) != 2 || dirs[0] != "/deps/alpha" {
		t.Fatalf("package dirs = %v", dirs)
	}
}
