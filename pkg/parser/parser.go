// Package parser builds ECL syntax trees with a single-token-lookahead
// recursive descent parser.
package parser

import (
	"ecl/interpreter-go/pkg/ast"
	"ecl/interpreter-go/pkg/lexer"
)

// Parser consumes tokens from a lexer one at a time and never backtracks.
type Parser struct {
	lex  *lexer.Lexer
	cur  lexer.Token
	prev lexer.Token
}

// New creates a parser over src and primes the first token.
func New(src string) *Parser {
	p := &Parser{lex: lexer.New(src)}
	p.cur = p.lex.NextToken()
	return p
}

// Parse is shorthand for New(src).Parse().
func Parse(src string) ([]ast.Statement, error) {
	return New(src).Parse()
}

// Parse reads statements until end of input. On failure it returns the
// first error and no statements.
func (p *Parser) Parse() ([]ast.Statement, error) {
	var program []ast.Statement
	if p.cur.Kind == lexer.Error {
		return nil, lexError(p.cur)
	}
	for {
		if err := p.skipSemicolons(); err != nil {
			return nil, err
		}
		if p.at(lexer.EOF) {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program = append(program, stmt)
	}
	return program, nil
}

// next advances to the following token. An Error token becomes a parse
// error as soon as it is current.
func (p *Parser) next() error {
	p.prev = p.cur
	p.cur = p.lex.NextToken()
	if p.cur.Kind == lexer.Error {
		return lexError(p.cur)
	}
	return nil
}

func (p *Parser) at(kind lexer.Kind) bool {
	return p.cur.Kind == kind
}

// expect consumes a token of the given kind and returns it.
func (p *Parser) expect(kind lexer.Kind, context string) (lexer.Token, error) {
	tok := p.cur
	if tok.Kind != kind {
		return tok, expectedToken(tok, kind, context)
	}
	if err := p.next(); err != nil {
		return tok, err
	}
	return tok, nil
}

// accept consumes the current token when it has the given kind.
func (p *Parser) accept(kind lexer.Kind) (bool, error) {
	if p.cur.Kind != kind {
		return false, nil
	}
	return true, p.next()
}

func (p *Parser) skipSemicolons() error {
	for p.at(lexer.Semicolon) {
		if err := p.next(); err != nil {
			return err
		}
	}
	return nil
}

func positionOf(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.Pos.Line, Column: tok.Pos.Column}
}

func endOf(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.End.Line, Column: tok.End.Column}
}

// place stamps node with a span from start to the end of the last
// consumed token.
func place[T ast.Node](p *Parser, node T, start ast.Position) T {
	ast.SetSpan(node, ast.Span{Start: start, End: endOf(p.prev)})
	return node
}

func typeNameFor(kind lexer.Kind) ast.TypeName {
	switch kind {
	case lexer.IntType:
		return ast.TypeInt
	case lexer.StrType:
		return ast.TypeStr
	case lexer.BoolType:
		return ast.TypeBool
	case lexer.FloatType:
		return ast.TypeFloat
	case lexer.DoubleType:
		return ast.TypeDouble
	default:
		return ""
	}
}
