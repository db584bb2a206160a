// Package interpreter evaluates parsed ECL programs.
package interpreter

import (
	"bufio"
	"io"
	"os"
	"strings"

	"ecl/interpreter-go/pkg/ast"
	"ecl/interpreter-go/pkg/driver"
	"ecl/interpreter-go/pkg/runtime"
)

// maxCallDepth bounds user function recursion.
const maxCallDepth = 10000

// Interpreter owns all mutable evaluation state for one run: the global
// scope, the function table, the pending print buffer and the source file
// diagnostics currently refer to.
type Interpreter struct {
	global    *runtime.Environment
	functions *runtime.FunctionTable

	stdout  io.Writer
	stderr  io.Writer
	stdin   *bufio.Reader
	pending strings.Builder

	source    *driver.Source
	sources   map[string]*driver.Source
	loader    *driver.Loader
	importing map[string]bool
	depth     int
}

// New returns an interpreter wired to the process's standard streams.
func New() *Interpreter {
	loader, _ := driver.NewLoader(nil)
	return &Interpreter{
		global:    runtime.NewEnvironment(nil),
		functions: runtime.NewFunctionTable(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stdin:     bufio.NewReader(os.Stdin),
		sources:   make(map[string]*driver.Source),
		loader:    loader,
		importing: make(map[string]bool),
	}
}

// SetOutput redirects program output.
func (i *Interpreter) SetOutput(w io.Writer) { i.stdout = w }

// SetErrorOutput redirects non-fatal warnings.
func (i *Interpreter) SetErrorOutput(w io.Writer) { i.stderr = w }

// SetInput replaces the reader used by input statements.
func (i *Interpreter) SetInput(r io.Reader) { i.stdin = bufio.NewReader(r) }

// SetLoader replaces the import resolver, typically with one configured
// from a project manifest.
func (i *Interpreter) SetLoader(loader *driver.Loader) {
	if loader != nil {
		i.loader = loader
	}
}

// Run parses and executes src. Pending print output is flushed before Run
// returns, including when it returns an error.
func (i *Interpreter) Run(src *driver.Source) error {
	mod, err := driver.ParseSource(src)
	if err != nil {
		return err
	}
	i.useSource(src)
	i.markImporting(src)
	return i.Execute(mod.Program)
}

// Execute runs already parsed statements against the global scope. A
// top-level return stops the program.
func (i *Interpreter) Execute(program []ast.Statement) error {
	defer i.Flush()
	err := i.evaluateStatements(program, i.global)
	if _, ok := err.(returnSignal); ok {
		return nil
	}
	return err
}

// Flush writes any text left by print as a final line.
func (i *Interpreter) Flush() {
	if i.pending.Len() == 0 {
		return
	}
	io.WriteString(i.stdout, i.pending.String()+"\n")
	i.pending.Reset()
}

func (i *Interpreter) useSource(src *driver.Source) {
	i.source = src
	if src != nil {
		i.sources[src.Path] = src
	}
}
