package driver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimLeft(contents, "\n")), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoaderResolvesImportingDirectoryFirst(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "app")
	depDir := filepath.Join(root, "deps", "mathlib")
	writeFile(t, filepath.Join(appDir, "helpers.ecl"), "var local = 1\n")
	writeFile(t, filepath.Join(depDir, "helpers.ecl"), "var dep = 1\n")
	writeFile(t, filepath.Join(depDir, "trig.ecl"), "func sin(x) { return x }\n")

	loader, err := NewLoader([]SearchPath{{Path: depDir, Kind: RootDependency}, {Path: depDir}})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if got := len(loader.SearchPaths()); got != 1 {
		t.Fatalf("expected duplicate search paths to collapse, got %d", got)
	}

	path, err := loader.Resolve("helpers", appDir)
	if err != nil {
		t.Fatalf("Resolve helpers: %v", err)
	}
	if path != filepath.Join(appDir, "helpers.ecl") {
		t.Fatalf("expected the importing directory to win, got %s", path)
	}

	path, err = loader.Resolve("trig.ecl", appDir)
	if err != nil {
		t.Fatalf("Resolve trig: %v", err)
	}
	if path != filepath.Join(depDir, "trig.ecl") {
		t.Fatalf("expected dependency file, got %s", path)
	}

	mod, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(mod.Program) != 1 {
		t.Fatalf("expected one statement, got %d", len(mod.Program))
	}
	again, _ := loader.Load(path)
	if again != mod {
		t.Fatalf("expected the parsed module to be cached")
	}
}

func TestLoaderMissingFile(t *testing.T) {
	loader, err := NewLoader(nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	_, err = loader.Resolve("nope", t.TempDir())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	if !strings.Contains(err.Error(), `"nope.ecl"`) {
		t.Fatalf("expected the file name in the error, got %v", err)
	}
}

func TestLoaderReportsSyntaxErrorsAsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ecl")
	writeFile(t, path, "var ok = 1\nvar broken\n")
	loader, _ := NewLoader(nil)
	_, err := loader.Load(path)
	var diagErr *DiagnosticError
	if !errors.As(err, &diagErr) {
		t.Fatalf("expected DiagnosticError, got %v", err)
	}
	diag := diagErr.Diagnostic
	if diag.Location.Line != 2 || diag.Location.Column != 5 {
		t.Fatalf("location = %d:%d", diag.Location.Line, diag.Location.Column)
	}
	if diag.SourceLine != "var broken" {
		t.Fatalf("source line = %q", diag.SourceLine)
	}
}

func TestCheckImportsFollowsNestedImports(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.ecl")
	writeFile(t, mainPath, "func setup() {\n  import \"helpers\"\n}\nif (0) { import \"extra\" }\n")
	writeFile(t, filepath.Join(dir, "helpers.ecl"), "import \"main\"\nvar h = 1\n")
	writeFile(t, filepath.Join(dir, "extra.ecl"), "var e = 2\n")
	loader, _ := NewLoader(nil)
	mod, err := loader.Load(mainPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := loader.CheckImports(mod); err != nil {
		t.Fatalf("CheckImports: %v", err)
	}

	writeFile(t, filepath.Join(dir, "extra.ecl"), "var broken\n")
	loader, _ = NewLoader(nil)
	mod, _ = loader.Load(mainPath)
	var diagErr *DiagnosticError
	if err := loader.CheckImports(mod); !errors.As(err, &diagErr) {
		t.Fatalf("expected DiagnosticError, got %v", err)
	}
	if filepath.Base(diagErr.Diagnostic.Location.Path) != "extra.ecl" || diagErr.Diagnostic.Location.Line != 1 {
		t.Fatalf("expected the error inside extra.ecl, got %+v", diagErr.Diagnostic.Location)
	}
}

func TestCheckImportsReportsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.ecl")
	writeFile(t, mainPath, "var x = 1\nimport \"absent\"\n")
	loader, _ := NewLoader(nil)
	mod, err := loader.Load(mainPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var diagErr *DiagnosticError
	if err := loader.CheckImports(mod); !errors.As(err, &diagErr) {
		t.Fatalf("expected DiagnosticError, got %v", err)
	}
	diag := diagErr.Diagnostic
	if diag.Message != `ImportError: cannot read "absent": no such file` {
		t.Fatalf("message = %q", diag.Message)
	}
	if diag.Location.Line != 2 || diag.SourceLine != `import "absent"` {
		t.Fatalf("location = %+v, line %q", diag.Location, diag.SourceLine)
	}
}

func TestSourceLines(t *testing.T) {
	src := NewSource("main.ecl", "a\r\nb\nc")
	if src.Line(2) != "b" || src.Line(3) != "c" || src.Line(4) != "" || src.Line(0) != "" {
		t.Fatalf("unexpected lines %q", src.Lines)
	}
	if NewSource("<repl>", "").Dir() != "." {
		t.Fatalf("expected pseudo paths to resolve imports from the working directory")
	}
}
