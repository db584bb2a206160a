package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"ecl/interpreter-go/pkg/ast"
	"ecl/interpreter-go/pkg/parser"
)

type RootKind int

const (
	RootUser RootKind = iota
	RootDependency
)

// SearchPath describes an import search root.
type SearchPath struct {
	Path string
	Kind RootKind
}

// Module is one parsed ECL file.
type Module struct {
	Path    string
	Source  *Source
	Program []ast.Statement
}

// Loader resolves import names to files and parses them. Parsed modules are
// cached by absolute path.
type Loader struct {
	searchPaths []SearchPath
	modules     map[string]*Module
}

// NewLoader constructs a loader over the given search roots. Duplicate and
// empty roots are dropped.
func NewLoader(searchPaths []SearchPath) (*Loader, error) {
	unique := make([]SearchPath, 0, len(searchPaths))
	seen := make(map[string]struct{}, len(searchPaths))
	for _, sp := range searchPaths {
		if sp.Path == "" {
			continue
		}
		abs, err := filepath.Abs(sp.Path)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve search path %q: %w", sp.Path, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		kind := sp.Kind
		if kind != RootDependency {
			kind = RootUser
		}
		unique = append(unique, SearchPath{Path: abs, Kind: kind})
	}
	return &Loader{searchPaths: unique, modules: make(map[string]*Module)}, nil
}

// SearchPaths returns the configured roots in lookup order.
func (l *Loader) SearchPaths() []SearchPath {
	return append([]SearchPath(nil), l.searchPaths...)
}

// Resolve finds the file an import of name refers to. fromDir, the
// directory of the importing file, is searched before the loader's roots.
func (l *Loader) Resolve(name, fromDir string) (string, error) {
	dirs := make([]string, 0, len(l.searchPaths)+1)
	if fromDir != "" {
		dirs = append(dirs, fromDir)
	}
	for _, sp := range l.searchPaths {
		dirs = append(dirs, sp.Path)
	}
	path, err := ResolveSourcePath(name, dirs)
	if err != nil {
		return "", fmt.Errorf("loader: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	return abs, nil
}

// Load reads and parses path. A syntax error is returned as a
// *DiagnosticError positioned in the file.
func (l *Loader) Load(path string) (*Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	if mod, ok := l.modules[abs]; ok {
		return mod, nil
	}
	src, err := ReadSource(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", abs, err)
	}
	mod, err := ParseSource(src)
	if err != nil {
		return nil, err
	}
	l.modules[abs] = mod
	return mod, nil
}

// CheckImports parses every file mod reaches through import statements,
// including imports inside function bodies and untaken branches. Each file
// is parsed once; nothing is executed.
func (l *Loader) CheckImports(mod *Module) error {
	return l.checkImports(mod, make(map[string]bool))
}

func (l *Loader) checkImports(mod *Module, seen map[string]bool) error {
	if abs, err := filepath.Abs(mod.Path); err == nil {
		seen[abs] = true
	}
	var imports []*ast.ImportStatement
	for _, stmt := range mod.Program {
		ast.Walk(stmt, func(node ast.Node) bool {
			if imp, ok := node.(*ast.ImportStatement); ok {
				imports = append(imports, imp)
			}
			return true
		})
	}
	for _, imp := range imports {
		path, err := l.Resolve(imp.Path, mod.Source.Dir())
		if err == nil && seen[path] {
			continue
		}
		var child *Module
		if err == nil {
			child, err = l.Load(path)
		}
		if err != nil {
			var diagErr *DiagnosticError
			if errors.As(err, &diagErr) {
				return err
			}
			message := fmt.Sprintf("ImportError: cannot read %q: %v", imp.Path, err)
			if errors.Is(err, fs.ErrNotExist) {
				message = fmt.Sprintf("ImportError: cannot read %q: no such file", imp.Path)
			}
			pos := imp.Span().Start
			return &DiagnosticError{Diagnostic: NewDiagnostic(mod.Source, message, pos.Line, pos.Column)}
		}
		if err := l.checkImports(child, seen); err != nil {
			return err
		}
	}
	return nil
}

// ParseSource parses src into a module without touching the filesystem.
func ParseSource(src *Source) (*Module, error) {
	program, err := parser.Parse(src.Text)
	if err != nil {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			return nil, &DiagnosticError{Diagnostic: DiagnosticFromParseError(src, parseErr)}
		}
		return nil, err
	}
	return &Module{Path: src.Path, Source: src, Program: program}, nil
}
