package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ecl/interpreter-go/pkg/driver"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

type resolvedPackage struct {
	pkg      *driver.LockedPackage
	manifest *driver.Manifest
	root     string
}

// dependencyInstaller resolves the manifest's dependencies, and theirs,
// into locked packages with an install directory each.
type dependencyInstaller struct {
	manifest     *driver.Manifest
	manifestRoot string
	cacheDir     string
	logs         []string
	registry     *registryFetcher
	git          *gitFetcher
	resolved     map[string]*driver.LockedPackage
	resolving    map[string]bool
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	var root string
	if manifest != nil {
		root = manifest.Dir()
	}
	return &dependencyInstaller{
		manifest:     manifest,
		manifestRoot: root,
		cacheDir:     cacheDir,
		logs:         []string{},
		registry:     newRegistryFetcher(cacheDir),
		git:          newGitFetcher(cacheDir),
		resolved:     make(map[string]*driver.LockedPackage),
		resolving:    make(map[string]bool),
	}
}

// Install resolves every dependency and replaces lock.Packages. It reports
// whether the locked set changed.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	if d.manifest == nil {
		return false, d.logs, nil
	}
	d.resolved = make(map[string]*driver.LockedPackage)
	d.resolving = make(map[string]bool)

	for _, name := range d.manifest.DependencyNames() {
		spec := d.manifest.Dependencies[name]
		if spec == nil {
			return false, d.logs, fmt.Errorf("dependency %q has no descriptor", name)
		}
		if err := d.installDependency(name, cloneDependencySpec(spec), d.manifestRoot); err != nil {
			return false, d.logs, err
		}
	}

	desired := make([]*driver.LockedPackage, 0, len(d.resolved))
	for _, pkg := range d.resolved {
		desired = append(desired, pkg)
	}
	sort.SliceStable(desired, func(i, j int) bool {
		return desired[i].Name < desired[j].Name
	})

	existing := make(map[string]*driver.LockedPackage, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg != nil {
			existing[pkg.Name] = pkg
		}
	}
	changed := len(desired) != len(existing)
	for _, pkg := range desired {
		if current, ok := existing[pkg.Name]; !ok || !lockedPackageEqual(current, pkg) {
			changed = true
		}
	}

	lock.Packages = desired
	return changed, d.logs, nil
}

// installDependency resolves one dependency and then the dependencies its
// own manifest declares. Relative paths resolve against base.
func (d *dependencyInstaller) installDependency(name string, spec *driver.DependencySpec, base string) error {
	alias := sanitizeName(name)
	if _, ok := d.resolved[alias]; ok {
		return nil
	}
	if d.resolving[alias] {
		return fmt.Errorf("dependency cycle detected at %s", alias)
	}
	d.resolving[alias] = true
	defer delete(d.resolving, alias)

	resolved, err := d.resolveDependency(name, spec, base)
	if err != nil {
		return err
	}
	if resolved.manifest != nil {
		for _, childName := range resolved.manifest.DependencyNames() {
			childSpec := resolved.manifest.Dependencies[childName]
			if childSpec == nil {
				return fmt.Errorf("dependency %s lists %s without descriptor", alias, childName)
			}
			if err := d.installDependency(childName, cloneDependencySpec(childSpec), resolved.root); err != nil {
				return err
			}
		}
	}
	d.resolved[alias] = resolved.pkg
	return nil
}

func (d *dependencyInstaller) resolveDependency(name string, spec *driver.DependencySpec, base string) (*resolvedPackage, error) {
	switch {
	case spec.Path != "":
		return d.resolvePathDependency(name, spec, base)
	case spec.Git != "":
		return d.resolveGitDependency(name, spec)
	case spec.Version != "":
		return d.resolveRegistryDependency(name, spec)
	default:
		return nil, fmt.Errorf("dependency %q: unsupported descriptor", name)
	}
}

func (d *dependencyInstaller) resolvePathDependency(name string, spec *driver.DependencySpec, base string) (*resolvedPackage, error) {
	pathSpec := spec.Path
	if !filepath.IsAbs(pathSpec) {
		pathSpec = filepath.Join(base, filepath.FromSlash(pathSpec))
	}
	abs, err := filepath.Abs(pathSpec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: resolve path %q: %w", name, spec.Path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: stat %s: %w", name, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: expected directory at %s", name, abs)
	}

	manifest, err := loadOptionalManifest(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	version := "0.0.0"
	if manifest != nil && strings.TrimSpace(manifest.Version) != "" {
		version = strings.TrimSpace(manifest.Version)
	}
	checksum, err := dirChecksum(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: checksum %s: %w", name, abs, err)
	}

	d.logs = append(d.logs, fmt.Sprintf("linked path dependency %s -> %s", sanitizeName(name), d.displayPath(abs)))
	return &resolvedPackage{
		pkg: &driver.LockedPackage{
			Name:     sanitizeName(name),
			Version:  version,
			Source:   "path:" + abs,
			Checksum: checksum,
			Dir:      abs,
		},
		manifest: manifest,
		root:     abs,
	}, nil
}

func (d *dependencyInstaller) resolveRegistryDependency(name string, spec *driver.DependencySpec) (*resolvedPackage, error) {
	if d.registry == nil {
		return nil, fmt.Errorf("dependency %q: registry support unavailable", name)
	}
	regName := spec.Registry
	if regName == "" {
		regName = "default"
	}
	version := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(spec.Version), "="))

	pkg, srcDir, err := d.registry.Fetch(regName, name, version)
	if err != nil {
		return nil, err
	}
	d.logs = append(d.logs, fmt.Sprintf("downloaded %s %s from registry %s", pkg.Name, pkg.Version, regName))

	manifest, err := loadOptionalManifest(srcDir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	return &resolvedPackage{pkg: pkg, manifest: manifest, root: srcDir}, nil
}

func (d *dependencyInstaller) resolveGitDependency(name string, spec *driver.DependencySpec) (*resolvedPackage, error) {
	if d.git == nil {
		return nil, fmt.Errorf("dependency %q: git support unavailable", name)
	}
	pkg, err := d.git.Fetch(name, spec)
	if err != nil {
		return nil, err
	}
	d.logs = append(d.logs, fmt.Sprintf("fetched git dependency %s (%s)", pkg.Name, pkg.Version))

	manifest, err := loadOptionalManifest(pkg.Dir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	return &resolvedPackage{pkg: pkg, manifest: manifest, root: pkg.Dir}, nil
}

func (d *dependencyInstaller) displayPath(path string) string {
	if d.manifestRoot != "" {
		if rel, err := filepath.Rel(d.manifestRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}

// loadOptionalManifest reads dir/ecl.yml, returning nil when there is none.
func loadOptionalManifest(dir string) (*driver.Manifest, error) {
	path := filepath.Join(dir, driver.ManifestFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	manifest, err := driver.LoadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}
	return manifest, nil
}

func lockedPackageEqual(a, b *driver.LockedPackage) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name &&
		a.Version == b.Version &&
		a.Source == b.Source &&
		a.Checksum == b.Checksum &&
		a.Dir == b.Dir
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

func cloneDependencySpec(spec *driver.DependencySpec) *driver.DependencySpec {
	if spec == nil {
		return nil
	}
	clone := *spec
	return &clone
}

type registryFetcher struct {
	base string
}

func newRegistryFetcher(cacheDir string) *registryFetcher {
	if cacheDir == "" {
		return nil
	}
	return &registryFetcher{base: cacheDir}
}

// Fetch copies <registry>/<name>/<version>/src into the cache. The registry
// root is $ECL_REGISTRY, or registry/ under the cache.
func (r *registryFetcher) Fetch(registry, name, version string) (*driver.LockedPackage, string, error) {
	if r == nil {
		return nil, "", errors.New("registry fetcher not initialised")
	}
	if version == "" {
		return nil, "", fmt.Errorf("registry: dependency %q must specify a version", name)
	}
	registryDir := os.Getenv("ECL_REGISTRY")
	if registryDir == "" {
		registryDir = filepath.Join(r.base, "registry")
	}
	packageDir := filepath.Join(registryDir, registry, name, version)
	srcDir := filepath.Join(packageDir, "src")
	info, err := os.Stat(srcDir)
	if err != nil {
		return nil, "", fmt.Errorf("registry: package %s@%s not found in %s: %w", name, version, packageDir, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("registry: expected directory at %s", srcDir)
	}

	cacheSrc := filepath.Join(r.base, "pkg", "src", sanitizeName(name), sanitizePathSegment(version))
	if err := copyOrSyncDir(srcDir, cacheSrc); err != nil {
		return nil, "", fmt.Errorf("registry: copy %s -> %s: %w", srcDir, cacheSrc, err)
	}
	checksum, err := dirChecksum(cacheSrc)
	if err != nil {
		return nil, "", fmt.Errorf("registry: checksum %s: %w", cacheSrc, err)
	}

	return &driver.LockedPackage{
		Name:     sanitizeName(name),
		Version:  version,
		Source:   fmt.Sprintf("registry:%s/%s/%s", registry, sanitizeName(name), version),
		Checksum: checksum,
		Dir:      cacheSrc,
	}, cacheSrc, nil
}

func copyOrSyncDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	wanted := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		wanted[entry.Name()] = struct{}{}
	}

	// Remove stale files from destination.
	if dstEntries, err := os.ReadDir(dst); err == nil {
		for _, entry := range dstEntries {
			if _, ok := wanted[entry.Name()]; ok {
				continue
			}
			if err := os.RemoveAll(filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyOrSyncDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// dirChecksum hashes file names and contents under path in walk order,
// skipping git metadata.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type gitFetcher struct {
	cacheDir string
}

func newGitFetcher(cacheDir string) *gitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &gitFetcher{cacheDir: cacheDir}
}

func (g *gitFetcher) Fetch(name string, spec *driver.DependencySpec) (*driver.LockedPackage, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, fmt.Errorf("dependency %q: git URL required", name)
	}

	baseDir := filepath.Join(g.cacheDir, "pkg", "src", sanitizeName(name))
	version, commit, err := ensureGitCheckout(baseDir, url, spec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}

	checkoutDir := filepath.Join(baseDir, sanitizePathSegment(version))
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, err
	}

	return &driver.LockedPackage{
		Name:     sanitizeName(name),
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, commit),
		Checksum: checksum,
		Dir:      checkoutDir,
	}, nil
}

// ensureGitCheckout clones url and checks out the requested revision into
// baseDir/<version>, reusing an existing checkout of the same version.
func ensureGitCheckout(baseDir, url string, spec *driver.DependencySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor := gitRevisionFromSpec(spec)

	if explicitRev := strings.TrimSpace(spec.Rev); explicitRev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(explicitRev))
		if _, err := os.Stat(existing); err == nil {
			return explicitRev, explicitRev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Hash:  *hash,
		Force: true,
	}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

// gitRevisionFromSpec maps rev, tag or branch to a revision; with none set
// the remote HEAD is used.
func gitRevisionFromSpec(spec *driver.DependencySpec) (plumbing.Revision, string) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/remotes/origin/" + branch), branch
	}
	return plumbing.Revision("HEAD"), ""
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
