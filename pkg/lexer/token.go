// Package lexer turns ECL source text into positioned tokens.
package lexer

import (
	"fmt"
	"strconv"
)

// Kind identifies a lexical token.
type Kind int

const (
	EOF Kind = iota
	Error

	Identifier
	Number
	String

	LeftParen    // (
	RightParen   // )
	LeftBrace    // {
	RightBrace   // }
	LeftBracket  // [
	RightBracket // ]
	Semicolon    // ;
	Comma        // ,
	Colon        // :
	Assign       // =
	Equal        // ==
	Plus         // +
	Minus        // -
	Star         // *
	Slash        // /
	Less         // <
	Greater      // >
	LessEqual    // <=
	GreaterEqual // >=
	Range        // ..

	keywordStart
	Print
	Println
	Var
	For
	In
	If
	Else
	While
	Input
	Func
	Expr
	Return
	True
	False
	IntType
	StrType
	BoolType
	FloatType
	DoubleType
	Import
	keywordEnd
)

var kindNames = map[Kind]string{
	EOF:          "EOF",
	Error:        "Error",
	Identifier:   "Identifier",
	Number:       "Number",
	String:       "String",
	LeftParen:    "LeftParen",
	RightParen:   "RightParen",
	LeftBrace:    "LeftBrace",
	RightBrace:   "RightBrace",
	LeftBracket:  "LeftBracket",
	RightBracket: "RightBracket",
	Semicolon:    "Semicolon",
	Comma:        "Comma",
	Colon:        "Colon",
	Assign:       "Assign",
	Equal:        "Equal",
	Plus:         "Plus",
	Minus:        "Minus",
	Star:         "Multiply",
	Slash:        "Divide",
	Less:         "Less",
	Greater:      "Greater",
	LessEqual:    "LessEqual",
	GreaterEqual: "GreaterEqual",
	Range:        "Range",
	Print:        "Print",
	Println:      "Println",
	Var:          "Var",
	For:          "For",
	In:           "In",
	If:           "If",
	Else:         "Else",
	While:        "While",
	Input:        "Input",
	Func:         "Func",
	Expr:         "Expr",
	Return:       "Return",
	True:         "True",
	False:        "False",
	IntType:      "Int",
	StrType:      "Str",
	BoolType:     "Bool",
	FloatType:    "Float",
	DoubleType:   "Double",
	Import:       "Import",
}

// lexemes holds the fixed source spelling of punctuation and keywords.
var lexemes = map[Kind]string{
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	LeftBracket:  "[",
	RightBracket: "]",
	Semicolon:    ";",
	Comma:        ",",
	Colon:        ":",
	Assign:       "=",
	Equal:        "==",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Less:         "<",
	Greater:      ">",
	LessEqual:    "<=",
	GreaterEqual: ">=",
	Range:        "..",
}

var keywords = map[string]Kind{
	"print":   Print,
	"println": Println,
	"var":     Var,
	"for":     For,
	"in":      In,
	"if":      If,
	"else":    Else,
	"while":   While,
	"input":   Input,
	"func":    Func,
	"expr":    Expr,
	"return":  Return,
	"true":    True,
	"false":   False,
	"int":     IntType,
	"str":     StrType,
	"bool":    BoolType,
	"float":   FloatType,
	"double":  DoubleType,
	"import":  Import,
}

func init() {
	for word, kind := range keywords {
		lexemes[kind] = word
	}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return k > keywordStart && k < keywordEnd }

// IsTypeName reports whether k names one of the primitive value types.
func (k Kind) IsTypeName() bool {
	switch k {
	case IntType, StrType, BoolType, FloatType, DoubleType:
		return true
	default:
		return false
	}
}

// Lexeme returns the fixed spelling of a punctuation or keyword kind.
func (k Kind) Lexeme() string { return lexemes[k] }

// LookupKeyword maps an identifier to its keyword kind, or Identifier.
func LookupKeyword(word string) Kind {
	if kind, ok := keywords[word]; ok {
		return kind
	}
	return Identifier
}

// Position is a 1-based line and column pair.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("(%d, %d)", p.Line, p.Column) }

// Token is one lexical unit. Text holds the identifier name, the decoded
// string literal, or the error message; Value holds numeric literals.
type Token struct {
	Kind  Kind
	Text  string
	Value float64
	Pos   Position
	End   Position
}

func (t Token) String() string {
	switch t.Kind {
	case Identifier:
		return fmt.Sprintf("Identifier(%q)", t.Text)
	case Number:
		return "Number(" + strconv.FormatFloat(t.Value, 'f', -1, 64) + ")"
	case String:
		return fmt.Sprintf("String(%q)", t.Text)
	case Error:
		return fmt.Sprintf("Error(%q)", t.Text)
	default:
		return t.Kind.String()
	}
}

// Describe renders the token the way syntax errors refer to it.
func (t Token) Describe() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case Identifier:
		return fmt.Sprintf("%q", t.Text)
	case Number:
		return "number " + strconv.FormatFloat(t.Value, 'f', -1, 64)
	case String:
		return "string literal"
	case Error:
		return t.Text
	default:
		return fmt.Sprintf("%q", t.Kind.Lexeme())
	}
}
