package interpreter

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"ecl/interpreter-go/pkg/ast"
	"ecl/interpreter-go/pkg/driver"
	"ecl/interpreter-go/pkg/runtime"
)

// evaluateImport runs another file's top-level statements in env. Imported
// definitions and variables are shared with the importer.
func (i *Interpreter) evaluateImport(node *ast.ImportStatement, env *runtime.Environment) error {
	fromDir := ""
	if i.source != nil {
		fromDir = i.source.Dir()
	}
	path, err := i.loader.Resolve(node.Path, fromDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return i.errorAt(node, "ImportError: cannot read %q: no such file", node.Path).
				withHelp("searched "+strings.Join(i.importDirs(fromDir), ", "), "")
		}
		return i.errorAt(node, "ImportError: cannot read %q: %v", node.Path, err)
	}
	if i.importing[path] {
		return i.errorAt(node, "ImportError: %q is already being imported", node.Path)
	}
	mod, err := i.loader.Load(path)
	if err != nil {
		var diagErr *driver.DiagnosticError
		if errors.As(err, &diagErr) {
			return err
		}
		return i.errorAt(node, "ImportError: cannot read %q: %v", node.Path, err)
	}

	i.importing[path] = true
	defer delete(i.importing, path)
	saved := i.source
	i.useSource(mod.Source)
	defer func() { i.source = saved }()

	err = i.evaluateStatements(mod.Program, env)
	if _, ok := err.(returnSignal); ok {
		return nil
	}
	return err
}

func (i *Interpreter) importDirs(fromDir string) []string {
	dirs := make([]string, 0, 4)
	if fromDir != "" {
		dirs = append(dirs, fromDir)
	}
	for _, sp := range i.loader.SearchPaths() {
		dirs = append(dirs, sp.Path)
	}
	return dirs
}

// markImporting records the entry file so that importing it back is
// reported as a cycle.
func (i *Interpreter) markImporting(src *driver.Source) {
	if src == nil || strings.HasPrefix(src.Path, "<") {
		return
	}
	if abs, err := filepath.Abs(src.Path); err == nil {
		i.importing[abs] = true
	}
}
