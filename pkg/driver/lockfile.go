package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockfileName sits next to ecl.yml.
const LockfileName = "ecl.lock"

// Lockfile models the ecl.lock contents.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Packages  []*LockedPackage
}

// LockedPackage captures a single installed dependency.
type LockedPackage struct {
	Name     string
	Version  string
	Source   string
	Checksum string
	// Dir is where the package's sources were installed.
	Dir string
}

// NewLockfile constructs a lockfile with metadata seeded for the provided root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      sanitizeSegment(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Packages:  []*LockedPackage{},
	}
}

// LoadLockfile parses ecl.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the locked entry for name.
func (l *Lockfile) Find(name string) (*LockedPackage, bool) {
	if l == nil {
		return nil, false
	}
	name = sanitizeSegment(name)
	for _, pkg := range l.Packages {
		if pkg != nil && pkg.Name == name {
			return pkg, true
		}
	}
	return nil, false
}

// Upsert replaces the entry with the same name or appends pkg.
func (l *Lockfile) Upsert(pkg *LockedPackage) {
	for i, existing := range l.Packages {
		if existing != nil && existing.Name == pkg.Name {
			l.Packages[i] = pkg
			return
		}
	}
	l.Packages = append(l.Packages, pkg)
}

// PackageDirs lists the install directories of locked packages in name
// order, for use as import search paths.
func (l *Lockfile) PackageDirs() []string {
	if l == nil {
		return nil
	}
	l.normalize()
	dirs := make([]string, 0, len(l.Packages))
	for _, pkg := range l.Packages {
		if pkg != nil && pkg.Dir != "" {
			dirs = append(dirs, pkg.Dir)
		}
	}
	return dirs
}

func (l *Lockfile) normalize() {
	l.Root = sanitizeSegment(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	sort.SliceStable(l.Packages, func(i, j int) bool {
		return l.Packages[i].Name < l.Packages[j].Name
	})
}

func (l *Lockfile) toDisk() lockfileDisk {
	pkgs := make([]lockfilePackage, 0, len(l.Packages))
	for _, pkg := range l.Packages {
		if pkg == nil {
			continue
		}
		pkgs = append(pkgs, lockfilePackage{
			Name:     pkg.Name,
			Version:  pkg.Version,
			Source:   pkg.Source,
			Checksum: pkg.Checksum,
			Dir:      pkg.Dir,
		})
	}
	return lockfileDisk{
		Root:      l.Root,
		Generated: l.Generated,
		Tool:      l.Tool,
		Packages:  pkgs,
	}
}

type lockfileDisk struct {
	Root      string            `yaml:"root"`
	Generated string            `yaml:"generated"`
	Tool      string            `yaml:"tool"`
	Packages  []lockfilePackage `yaml:"packages"`
}

type lockfilePackage struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Checksum string `yaml:"checksum"`
	Dir      string `yaml:"dir,omitempty"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Root:      sanitizeSegment(d.Root),
		Generated: strings.TrimSpace(d.Generated),
		Tool:      strings.TrimSpace(d.Tool),
		Packages:  make([]*LockedPackage, 0, len(d.Packages)),
	}
	for _, pkg := range d.Packages {
		lock.Packages = append(lock.Packages, &LockedPackage{
			Name:     sanitizeSegment(pkg.Name),
			Version:  strings.TrimSpace(pkg.Version),
			Source:   strings.TrimSpace(pkg.Source),
			Checksum: strings.TrimSpace(pkg.Checksum),
			Dir:      strings.TrimSpace(pkg.Dir),
		})
	}
	lock.normalize()
	return lock
}
