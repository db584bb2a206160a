package interpreter

import (
	"fmt"

	"ecl/interpreter-go/pkg/ast"
	"ecl/interpreter-go/pkg/driver"
)

// RuntimeError is a fatal evaluation failure positioned in the source file
// that was executing.
type RuntimeError struct {
	Diagnostic driver.Diagnostic
}

func (e *RuntimeError) Error() string {
	return e.Diagnostic.Message
}

// Unwrap exposes the diagnostic to driver.AsDiagnostic.
func (e *RuntimeError) Unwrap() error {
	return &driver.DiagnosticError{Diagnostic: e.Diagnostic}
}

func (e *RuntimeError) withSuggestion(suggestion string) *RuntimeError {
	e.Diagnostic.Suggestion = suggestion
	return e
}

func (e *RuntimeError) withHelp(help, example string) *RuntimeError {
	e.Diagnostic.Help = help
	e.Diagnostic.Example = example
	return e
}

func (i *Interpreter) errorAt(node ast.Node, format string, args ...any) *RuntimeError {
	pos := node.Span().Start
	return &RuntimeError{Diagnostic: driver.NewDiagnostic(i.source, fmt.Sprintf(format, args...), pos.Line, pos.Column)}
}

func (i *Interpreter) undefinedIdentifier(node ast.Node, name string) *RuntimeError {
	return i.errorAt(node, "UndefinedIdentifier: %q is not defined", name).
		withSuggestion("did you mean to declare this variable?")
}

// warn reports a non-fatal problem on the error stream.
func (i *Interpreter) warn(node ast.Node, format string, args ...any) {
	diag := i.errorAt(node, format, args...).Diagnostic
	diag.Severity = driver.SeverityWarning
	fmt.Fprint(i.stderr, driver.DescribeDiagnostic(diag))
}
