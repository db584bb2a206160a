package parser

import (
	"fmt"

	"ecl/interpreter-go/pkg/lexer"
)

// SourceLocation captures a source span for parser diagnostics.
type SourceLocation struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// ParseError includes a message plus a best-effort source location and
// optional hints for the diagnostic renderer.
type ParseError struct {
	Message    string
	Location   SourceLocation
	Suggestion string
	Help       string
	Example    string
}

func (e *ParseError) Error() string {
	return e.Message
}

func locationForToken(tok lexer.Token) SourceLocation {
	return SourceLocation{
		Line:      tok.Pos.Line,
		Column:    tok.Pos.Column,
		EndLine:   tok.End.Line,
		EndColumn: tok.End.Column,
	}
}

func lexError(tok lexer.Token) *ParseError {
	return &ParseError{
		Message:  "LexError: " + tok.Text,
		Location: locationForToken(tok),
	}
}

// unexpectedMessages phrases the "nothing can start here" error for each
// token kind.
var unexpectedMessages = map[lexer.Kind]string{
	lexer.RightParen:   `unexpected ")" without a matching "("`,
	lexer.RightBrace:   `unexpected "}" without a matching "{"`,
	lexer.RightBracket: `unexpected "]" without a matching "["`,
	lexer.LeftBrace:    `unexpected "{": a block must follow if, else, while, for, func or expr`,
	lexer.Semicolon:    `unexpected ";" where an expression was expected`,
	lexer.Comma:        `unexpected "," outside of an argument list`,
	lexer.Colon:        `unexpected ":" outside of a parameter list`,
	lexer.Assign:       `unexpected "=": assignment needs a variable name on its left`,
	lexer.Equal:        `operator "==" is missing its left operand`,
	lexer.Plus:         `operator "+" is missing its left operand`,
	lexer.Star:         `operator "*" is missing its left operand`,
	lexer.Slash:        `operator "/" is missing its left operand`,
	lexer.Greater:      `operator ">" is missing its left operand`,
	lexer.LessEqual:    `operator "<=" is missing its left operand`,
	lexer.GreaterEqual: `operator ">=" is missing its left operand`,
	lexer.Range:        `range operator ".." is missing its start value`,
	lexer.Else:         `"else" without a matching "if"`,
	lexer.In:           `"in" can only appear in a for loop header`,
	lexer.Var:          `"var" declares a statement and cannot be used as a value`,
	lexer.For:          `"for" starts a statement and cannot be used as a value`,
	lexer.While:        `"while" starts a statement and cannot be used as a value`,
	lexer.Print:        `"print" is a statement and cannot be used as a value`,
	lexer.Println:      `"println" is a statement and cannot be used as a value`,
	lexer.Input:        `"input" is a statement and cannot be used as a value`,
	lexer.Func:         `"func" definitions must appear as statements`,
	lexer.Expr:         `"expr" definitions must appear as statements`,
	lexer.Return:       `"return" cannot be used as a value`,
	lexer.Import:       `"import" must appear as a statement`,
	lexer.EOF:          "unexpected end of input",
}

var unexpectedHelp = map[lexer.Kind][2]string{
	lexer.Else:   {"an else branch must directly follow the body of an if statement", `if (x > 1) { println("big") } else { println("small") }`},
	lexer.Assign: {"assign to a variable by name", "total = total + 1"},
	lexer.In:     {"for loops iterate over a range or collection", "for i in 0..10 { println(i) }"},
}

// unexpectedToken builds the error for a token that cannot start the
// construct being parsed.
func unexpectedToken(tok lexer.Token) *ParseError {
	if tok.Kind == lexer.Error {
		return lexError(tok)
	}
	err := &ParseError{Location: locationForToken(tok)}
	switch {
	case tok.Kind.IsTypeName():
		name := tok.Kind.Lexeme()
		err.Message = fmt.Sprintf("SyntaxError: type name %q must be written as <%s> in a declaration or %s(value) in a conversion", name, name, name)
		err.Example = fmt.Sprintf("var <%s> x = %s(value)", name, name)
	case tok.Kind == lexer.Identifier:
		err.Message = fmt.Sprintf("SyntaxError: unexpected identifier %q", tok.Text)
	case tok.Kind == lexer.Number:
		err.Message = fmt.Sprintf("SyntaxError: unexpected %s", tok.Describe())
	case tok.Kind == lexer.String:
		err.Message = "SyntaxError: unexpected string literal"
	default:
		msg, ok := unexpectedMessages[tok.Kind]
		if !ok {
			msg = fmt.Sprintf("unexpected %s", tok.Describe())
		}
		err.Message = "SyntaxError: " + msg
		if help, ok := unexpectedHelp[tok.Kind]; ok {
			err.Help = help[0]
			err.Example = help[1]
		}
	}
	return err
}

// expectedToken reports that tok appeared where want was required.
func expectedToken(tok lexer.Token, want lexer.Kind, context string) *ParseError {
	if tok.Kind == lexer.Error {
		return lexError(tok)
	}
	msg := fmt.Sprintf("SyntaxError: unexpected %s, expected %q %s", tok.Describe(), want.Lexeme(), context)
	if want == lexer.Identifier {
		msg = fmt.Sprintf("SyntaxError: unexpected %s, expected a name %s", tok.Describe(), context)
	}
	return &ParseError{
		Message:  msg,
		Location: locationForToken(tok),
	}
}

// missingInitializer is raised for `var name` without `= value`.
func missingInitializer(name lexer.Token, declared string) *ParseError {
	example := fmt.Sprintf("var %s = 0", name.Text)
	if declared != "" {
		example = fmt.Sprintf("var <%s> %s = %s", declared, name.Text, zeroLiteral(declared))
	}
	return &ParseError{
		Message:    fmt.Sprintf("SyntaxError: variable %q is declared without an initializer", name.Text),
		Location:   locationForToken(name),
		Suggestion: "add '= <value>' after the variable name",
		Help:       "every variable must be given a value when it is declared",
		Example:    example,
	}
}

func zeroLiteral(typeName string) string {
	switch typeName {
	case "str":
		return `""`
	case "bool":
		return "false"
	case "float", "double":
		return "0.0"
	default:
		return "0"
	}
}
