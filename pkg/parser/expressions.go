package parser

import (
	"ecl/interpreter-go/pkg/ast"
	"ecl/interpreter-go/pkg/lexer"
)

func isBinaryOperator(kind lexer.Kind) bool {
	switch kind {
	case lexer.Plus, lexer.Minus, lexer.Star, lexer.Slash,
		lexer.Less, lexer.Greater, lexer.LessEqual, lexer.GreaterEqual,
		lexer.Equal, lexer.Range:
		return true
	default:
		return false
	}
}

// sameLine reports whether the current token starts on the line where the
// previous token ended. Juxtaposition calls never span lines, so
// `var x = 5` followed by `y = x` on the next line stays two statements.
func (p *Parser) sameLine() bool {
	return p.cur.Pos.Line == p.prev.End.Line
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseExpressionTail(left)
}

// parseExpressionTail applies call-sugar to an already parsed operand and
// then folds binary operators left to right. The arithmetic and comparison
// operators share one precedence level, so `a - b - c` is `(a - b) - c` and
// `1 + 2 * 3` is 9. A `..` binds looser: `0..n+1` is `0..(n+1)`.
func (p *Parser) parseExpressionTail(left ast.Expression) (ast.Expression, error) {
	left, err := p.applyCallSugar(left)
	if err != nil {
		return nil, err
	}
	return p.foldOperators(left, true)
}

func (p *Parser) foldOperators(left ast.Expression, allowRange bool) (ast.Expression, error) {
	for isBinaryOperator(p.cur.Kind) && (allowRange || p.cur.Kind != lexer.Range) {
		opTok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		if opTok.Kind == lexer.Range {
			if right, err = p.foldOperators(right, false); err != nil {
				return nil, err
			}
		}
		// Binary nodes are positioned at their operator.
		left = place(p, ast.NewBinaryExpression(opTok.Kind.Lexeme(), left, right), positionOf(opTok))
	}
	return left, nil
}

// parseOperand is a primary plus any call-sugar applied to it.
func (p *Parser) parseOperand() (ast.Expression, error) {
	operand, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.applyCallSugar(operand)
}

// applyCallSugar resolves juxtaposition calls by looking only at the
// operand's shape and the current token:
//
//	2 double        -> double(2)       literal then name
//	x double        -> double(x)       name then name
//	add 1 2         -> add(1, 2)       name then number
//
// Anything else is left for the operator loop.
func (p *Parser) applyCallSugar(left ast.Expression) (ast.Expression, error) {
	if !p.sameLine() {
		return left, nil
	}
	switch operand := left.(type) {
	case *ast.NumberLiteral:
		if p.at(lexer.Identifier) {
			return p.parseSugarCall(left)
		}
	case *ast.Identifier:
		switch {
		case p.at(lexer.Identifier):
			return p.parseSugarCall(left)
		case p.at(lexer.Number):
			args, err := p.parseSugarArguments()
			if err != nil {
				return nil, err
			}
			if len(args) > 0 {
				return place(p, ast.NewFunctionCall(operand.Name, args), operand.Pos()), nil
			}
		}
	}
	return left, nil
}

// parseSugarCall treats the current identifier as the callee and first as
// its leading argument.
func (p *Parser) parseSugarCall(first ast.Expression) (ast.Expression, error) {
	nameTok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	args := []ast.Expression{first}
	rest, err := p.parseSugarArguments()
	if err != nil {
		return nil, err
	}
	args = append(args, rest...)
	return place(p, ast.NewFunctionCall(nameTok.Text, args), positionOf(nameTok)), nil
}

// parseSugarArguments collects number, name and parenthesized primaries
// that follow on the same line.
func (p *Parser) parseSugarArguments() ([]ast.Expression, error) {
	var args []ast.Expression
	for p.sameLine() && (p.at(lexer.Number) || p.at(lexer.Identifier) || p.at(lexer.LeftParen)) {
		arg, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.cur
	start := positionOf(tok)
	switch tok.Kind {
	case lexer.Number:
		if err := p.next(); err != nil {
			return nil, err
		}
		return place(p, ast.NewNumberLiteral(tok.Value), start), nil
	case lexer.String:
		if err := p.next(); err != nil {
			return nil, err
		}
		return place(p, ast.NewStringLiteral(tok.Text), start), nil
	case lexer.True, lexer.False:
		if err := p.next(); err != nil {
			return nil, err
		}
		return place(p, ast.NewBooleanLiteral(tok.Kind == lexer.True), start), nil
	case lexer.Minus:
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		zero := place(p, ast.NewNumberLiteral(0), start)
		return place(p, ast.NewBinaryExpression("-", zero, operand), start), nil
	case lexer.LeftParen:
		return p.parseParenthesized()
	case lexer.LeftBrace:
		return p.parseCollectionLiteral(lexer.RightBrace, ast.ArrayInitFunction)
	case lexer.LeftBracket:
		return p.parseCollectionLiteral(lexer.RightBracket, ast.ListInitFunction)
	case lexer.If:
		return p.parseIfExpression()
	case lexer.IntType, lexer.StrType, lexer.BoolType, lexer.FloatType, lexer.DoubleType:
		return p.parseTypeConversion()
	case lexer.Identifier:
		if err := p.next(); err != nil {
			return nil, err
		}
		return p.parseIdentifierTail(tok)
	default:
		return nil, unexpectedToken(tok)
	}
}

// parseIdentifierTail finishes a primary whose name token was consumed:
// `name(args)`, `name[index]` or a plain reference.
func (p *Parser) parseIdentifierTail(nameTok lexer.Token) (ast.Expression, error) {
	start := positionOf(nameTok)
	switch {
	case p.at(lexer.LeftParen) && p.sameLine():
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		return place(p, ast.NewFunctionCall(nameTok.Text, args), start), nil
	case p.at(lexer.LeftBracket) && p.sameLine():
		index, err := p.parseIndexSuffix()
		if err != nil {
			return nil, err
		}
		return place(p, ast.NewIndexExpression(nameTok.Text, index), start), nil
	default:
		return place(p, ast.NewIdentifier(nameTok.Text), start), nil
	}
}

func (p *Parser) parseIndexSuffix() (ast.Expression, error) {
	if _, err := p.expect(lexer.LeftBracket, "before the index"); err != nil {
		return nil, err
	}
	index, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RightBracket, "after the index"); err != nil {
		return nil, err
	}
	return index, nil
}

// parseArguments parses a parenthesized, comma separated argument list.
func (p *Parser) parseArguments() ([]ast.Expression, error) {
	if _, err := p.expect(lexer.LeftParen, "before the arguments"); err != nil {
		return nil, err
	}
	args := []ast.Expression{}
	for !p.at(lexer.RightParen) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if ok, err := p.accept(lexer.Comma); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if _, err := p.expect(lexer.RightParen, "to close the argument list"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseParenthesized parses `(expr)` and the `(expr)name(args...)` call
// form, in which the grouped value becomes the first argument.
func (p *Parser) parseParenthesized() (ast.Expression, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RightParen, "to close the parenthesized expression"); err != nil {
		return nil, err
	}
	if !p.at(lexer.Identifier) || !p.sameLine() {
		return inner, nil
	}
	nameTok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	args := []ast.Expression{inner}
	for p.at(lexer.LeftParen) && p.sameLine() {
		more, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		args = append(args, more...)
	}
	return place(p, ast.NewFunctionCall(nameTok.Text, args), positionOf(nameTok)), nil
}

// parseCollectionLiteral desugars `{a, b}` and `[a, b]` into calls of the
// internal initializer functions.
func (p *Parser) parseCollectionLiteral(closer lexer.Kind, callee string) (ast.Expression, error) {
	start := positionOf(p.cur)
	if err := p.next(); err != nil {
		return nil, err
	}
	elements, err := p.parseElementsUntil(closer)
	if err != nil {
		return nil, err
	}
	return place(p, ast.NewFunctionCall(callee, elements), start), nil
}

func (p *Parser) parseElementsUntil(closer lexer.Kind) ([]ast.Expression, error) {
	elements := []ast.Expression{}
	for !p.at(closer) {
		element, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)
		if ok, err := p.accept(lexer.Comma); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if _, err := p.expect(closer, "to close the list"); err != nil {
		return nil, err
	}
	return elements, nil
}

// parseIfExpression parses `if (cond) a else b`.
func (p *Parser) parseIfExpression() (ast.Expression, error) {
	start := positionOf(p.cur)
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	then, err := p.parseBranchExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Else, "in the if expression"); err != nil {
		return nil, err
	}
	otherwise, err := p.parseBranchExpression()
	if err != nil {
		return nil, err
	}
	return place(p, ast.NewIfExpression(cond, then, otherwise), start), nil
}

// parseBranchExpression reads one arm of an if expression. `{ x }` is the
// value x; `{ x, y }` stays a collection literal.
func (p *Parser) parseBranchExpression() (ast.Expression, error) {
	if !p.at(lexer.LeftBrace) {
		return p.parseExpression()
	}
	start := positionOf(p.cur)
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.at(lexer.RightBrace) {
		if err := p.next(); err != nil {
			return nil, err
		}
		return place(p, ast.NewFunctionCall(ast.ArrayInitFunction, []ast.Expression{}), start), nil
	}
	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.RightBrace) {
		if err := p.next(); err != nil {
			return nil, err
		}
		return first, nil
	}
	if _, err := p.expect(lexer.Comma, "between list elements"); err != nil {
		return nil, err
	}
	rest, err := p.parseElementsUntil(lexer.RightBrace)
	if err != nil {
		return nil, err
	}
	elements := append([]ast.Expression{first}, rest...)
	return place(p, ast.NewFunctionCall(ast.ArrayInitFunction, elements), start), nil
}

func (p *Parser) parseTypeConversion() (ast.Expression, error) {
	typeTok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	if !p.at(lexer.LeftParen) {
		return nil, unexpectedToken(typeTok)
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RightParen, "to close the conversion"); err != nil {
		return nil, err
	}
	return place(p, ast.NewTypeConversion(typeNameFor(typeTok.Kind), value), positionOf(typeTok)), nil
}
