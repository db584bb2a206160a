package driver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ecl/interpreter-go/pkg/parser"
)

// DiagnosticSeverity captures diagnostic levels.
type DiagnosticSeverity string

const (
	SeverityError   DiagnosticSeverity = "error"
	SeverityWarning DiagnosticSeverity = "warning"
)

// DiagnosticLocation references a source span for diagnostics.
type DiagnosticLocation struct {
	Path      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// Diagnostic is a positioned message plus the source line it points into.
type Diagnostic struct {
	Severity   DiagnosticSeverity
	Message    string
	Location   DiagnosticLocation
	SourceLine string
	Suggestion string
	Help       string
	Example    string
}

// DiagnosticError wraps a diagnostic for error handling.
type DiagnosticError struct {
	Diagnostic Diagnostic
}

func (e *DiagnosticError) Error() string {
	return e.Diagnostic.Message
}

// NewDiagnostic builds an error diagnostic at line:column of src.
func NewDiagnostic(src *Source, message string, line, column int) Diagnostic {
	diag := Diagnostic{
		Severity: SeverityError,
		Message:  message,
		Location: DiagnosticLocation{Line: line, Column: column},
	}
	if src != nil {
		diag.Location.Path = src.Path
		diag.SourceLine = src.Line(line)
	}
	return diag
}

// DiagnosticFromParseError positions a parser error inside src.
func DiagnosticFromParseError(src *Source, err *parser.ParseError) Diagnostic {
	diag := NewDiagnostic(src, err.Message, err.Location.Line, err.Location.Column)
	diag.Location.EndLine = err.Location.EndLine
	diag.Location.EndColumn = err.Location.EndColumn
	diag.Suggestion = err.Suggestion
	diag.Help = err.Help
	diag.Example = err.Example
	return diag
}

// AsDiagnostic extracts a diagnostic from err. Parse errors are positioned
// in src; other errors become an unpositioned diagnostic.
func AsDiagnostic(src *Source, err error) Diagnostic {
	var diagErr *DiagnosticError
	if errors.As(err, &diagErr) {
		return diagErr.Diagnostic
	}
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return DiagnosticFromParseError(src, parseErr)
	}
	diag := Diagnostic{Severity: SeverityError, Message: err.Error()}
	if src != nil {
		diag.Location.Path = src.Path
	}
	return diag
}

// CaretSpan is the number of carets drawn under the error column: the
// length of the first double-quoted name in the message, else 1.
func CaretSpan(message string) int {
	start := strings.IndexByte(message, '"')
	if start < 0 {
		return 1
	}
	end := strings.IndexByte(message[start+1:], '"')
	if end <= 0 {
		return 1
	}
	return len([]rune(message[start+1 : start+1+end]))
}

// DescribeDiagnostic renders a diagnostic for CLI output:
//
//	UndefinedIdentifier: "foo" is not defined
//	  --> main.ecl:3:9
//	  |
//	3 | println(foo)
//	  |         ^^^
//	  = did you mean to declare this variable?
func DescribeDiagnostic(diag Diagnostic) string {
	var b strings.Builder
	message := strings.TrimSpace(diag.Message)
	if diag.Severity == SeverityWarning {
		message = "warning: " + message
	}
	b.WriteString(message)
	b.WriteByte('\n')

	location := formatDiagnosticLocation(diag.Location)
	if location == "" {
		return b.String()
	}
	fmt.Fprintf(&b, "  --> %s\n", location)
	if diag.Location.Line <= 0 {
		return b.String()
	}

	number := strconv.Itoa(diag.Location.Line)
	gutter := strings.Repeat(" ", len(number)+1) + "|"
	fmt.Fprintf(&b, "%s\n", gutter)
	fmt.Fprintf(&b, "%s | %s\n", number, diag.SourceLine)
	column := diag.Location.Column
	if column < 1 {
		column = 1
	}
	fmt.Fprintf(&b, "%s %s%s\n", gutter, strings.Repeat(" ", column-1), strings.Repeat("^", CaretSpan(diag.Message)))
	if diag.Suggestion != "" {
		fmt.Fprintf(&b, "%s = %s\n", strings.Repeat(" ", len(number)+1), diag.Suggestion)
	}
	if diag.Help != "" {
		fmt.Fprintf(&b, "%s = help: %s\n", strings.Repeat(" ", len(number)+1), diag.Help)
	}
	if diag.Example != "" {
		fmt.Fprintf(&b, "%s = example: %s\n", strings.Repeat(" ", len(number)+1), diag.Example)
	}
	return b.String()
}

func formatDiagnosticLocation(loc DiagnosticLocation) string {
	path := strings.TrimSpace(loc.Path)
	line := loc.Line
	column := loc.Column
	switch {
	case path != "" && line > 0 && column > 0:
		return fmt.Sprintf("%s:%d:%d", path, line, column)
	case path != "" && line > 0:
		return fmt.Sprintf("%s:%d", path, line)
	case path != "":
		return path
	case line > 0 && column > 0:
		return fmt.Sprintf("line %d, column %d", line, column)
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return ""
	}
}
