package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the project file looked up by the CLI.
const ManifestFileName = "ecl.yml"

// Manifest represents the parsed contents of ecl.yml.
type Manifest struct {
	Path    string
	Name    string
	Version string
	Authors []string
	// Main is the entry script run by `ecl run` without arguments,
	// relative to the manifest directory.
	Main string
	// SearchPaths are extra import directories relative to the manifest.
	SearchPaths  []string
	Dependencies map[string]*DependencySpec
}

// DependencySpec describes one entry under `dependencies:`.
type DependencySpec struct {
	Version  string
	Git      string
	Rev      string
	Tag      string
	Branch   string
	Path     string
	Registry string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses ecl.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Dir is the project root containing the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// MainPath resolves the entry script, or "" when none is configured.
func (m *Manifest) MainPath() string {
	if m == nil || m.Main == "" {
		return ""
	}
	if filepath.IsAbs(m.Main) {
		return m.Main
	}
	return filepath.Join(m.Dir(), m.Main)
}

// ImportRoots lists the project directories imports may be resolved from:
// the project root followed by the configured search paths.
func (m *Manifest) ImportRoots() []string {
	if m == nil {
		return nil
	}
	roots := []string{m.Dir()}
	for _, p := range m.SearchPaths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.Dir(), p)
		}
		roots = append(roots, p)
	}
	return roots
}

// DependencyNames returns the declared dependencies in sorted order.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for i, author := range m.Authors {
		if author == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}
	if m.Main != "" && !strings.HasSuffix(m.Main, SourceExtension) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("main %q must be a %s file", m.Main, SourceExtension))
	}
	for _, name := range m.DependencyNames() {
		for _, issue := range m.Dependencies[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	var errs []string
	if d == nil {
		return errs
	}
	if d.Path != "" && (d.Version != "" || d.Git != "") {
		errs = append(errs, "path overrides cannot specify version or git source")
	}
	if d.Git != "" && d.Version != "" {
		errs = append(errs, "git dependencies cannot also specify version")
	}
	if d.Registry != "" && (d.Git != "" || d.Path != "") {
		errs = append(errs, "registry overrides apply only to registry-based version dependencies")
	}
	refs := 0
	for _, ref := range []string{d.Rev, d.Tag, d.Branch} {
		if ref != "" {
			refs++
		}
	}
	if refs > 0 && d.Git == "" {
		errs = append(errs, "rev, tag and branch apply only to git dependencies")
	}
	if refs > 1 {
		errs = append(errs, "specify at most one of rev, tag or branch")
	}
	if d.Version == "" && d.Git == "" && d.Path == "" {
		errs = append(errs, "must specify version, git, or path")
	}
	if d.Version != "" && !isValidVersionConstraint(d.Version) {
		errs = append(errs, fmt.Sprintf("invalid version constraint %q", d.Version))
	}
	return errs
}

var versionConstraintPattern = regexp.MustCompile(`^(~>|>=|<=|>|<|=|\^)?\s*[0-9]+(\.[0-9]+){0,2}([0-9A-Za-z\-\+\.]*)?$`)

func isValidVersionConstraint(input string) bool {
	s := strings.TrimSpace(input)
	if s == "" {
		return false
	}
	if s == "*" {
		return true
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || !versionConstraintPattern.MatchString(part) {
			return false
		}
	}
	return true
}

type manifestFile struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Authors      stringList    `yaml:"authors"`
	Main         string        `yaml:"main"`
	SearchPaths  stringList    `yaml:"search_paths"`
	Dependencies dependencyMap `yaml:"dependencies"`
}

type dependencyMap map[string]*DependencySpec

type stringList []string

func (mf manifestFile) toManifest(path string) *Manifest {
	deps := make(map[string]*DependencySpec, len(mf.Dependencies))
	for name, dep := range mf.Dependencies {
		if dep == nil {
			continue
		}
		copy := *dep
		deps[name] = &copy
	}
	return &Manifest{
		Path:         path,
		Name:         sanitizeSegment(mf.Name),
		Version:      strings.TrimSpace(mf.Version),
		Authors:      mf.Authors.Clone(),
		Main:         strings.TrimSpace(mf.Main),
		SearchPaths:  mf.SearchPaths.Clone(),
		Dependencies: deps,
	}
}

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, strings.TrimSpace(str))
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	result := make(dependencyMap, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		dep := new(DependencySpec)
		if err := dep.unmarshalYAML(value.Content[i+1]); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		result[sanitizeSegment(key)] = dep
	}
	*dm = result
	return nil
}

// unmarshalYAML accepts either a bare version string or a mapping.
func (d *DependencySpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*d = DependencySpec{}
			return nil
		}
		*d = DependencySpec{Version: strings.TrimSpace(value.Value)}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Version  string `yaml:"version"`
			Git      string `yaml:"git"`
			Rev      string `yaml:"rev"`
			Tag      string `yaml:"tag"`
			Branch   string `yaml:"branch"`
			Path     string `yaml:"path"`
			Registry string `yaml:"registry"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = DependencySpec{
			Version:  strings.TrimSpace(raw.Version),
			Git:      strings.TrimSpace(raw.Git),
			Rev:      strings.TrimSpace(raw.Rev),
			Tag:      strings.TrimSpace(raw.Tag),
			Branch:   strings.TrimSpace(raw.Branch),
			Path:     strings.TrimSpace(raw.Path),
			Registry: strings.TrimSpace(raw.Registry),
		}
		return nil
	case yaml.AliasNode:
		return d.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}

// sanitizeSegment normalises a package name for use in paths and the
// lockfile.
func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "-", "_")
	return seg
}
