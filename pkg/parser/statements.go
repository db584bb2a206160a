package parser

import (
	"fmt"

	"ecl/interpreter-go/pkg/ast"
	"ecl/interpreter-go/pkg/lexer"
)

// parseStatement parses one statement plus any trailing semicolons.
func (p *Parser) parseStatement() (ast.Statement, error) {
	stmt, err := p.parseStatementBody()
	if err != nil {
		return nil, err
	}
	if err := p.skipSemicolons(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseStatementBody() (ast.Statement, error) {
	switch p.cur.Kind {
	case lexer.Func:
		return p.parseFunctionDefinition()
	case lexer.Expr:
		return p.parseExprDefinition()
	case lexer.Return:
		return p.parseReturn()
	case lexer.Var:
		return p.parseVar()
	case lexer.Less:
		declared, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		return p.parseDeclaration(declared)
	case lexer.For:
		return p.parseFor()
	case lexer.If:
		return p.parseIf()
	case lexer.While:
		return p.parseWhile()
	case lexer.Input:
		return p.parseInput()
	case lexer.Print, lexer.Println:
		return p.parsePrint()
	case lexer.Import:
		return p.parseImport()
	case lexer.Identifier:
		return p.parseIdentifierStatement()
	default:
		return asStatement(p.parseExpression())
	}
}

func asStatement(expr ast.Expression, err error) (ast.Statement, error) {
	if err != nil {
		return nil, err
	}
	return expr, nil
}

// parseBlock parses `{ statements }`.
func (p *Parser) parseBlock(context string) ([]ast.Statement, error) {
	if _, err := p.expect(lexer.LeftBrace, context); err != nil {
		return nil, err
	}
	body := []ast.Statement{}
	for {
		if err := p.skipSemicolons(); err != nil {
			return nil, err
		}
		if p.at(lexer.RightBrace) || p.at(lexer.EOF) {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if _, err := p.expect(lexer.RightBrace, "to close the block"); err != nil {
		return nil, err
	}
	return body, nil
}

// parseBody accepts either a braced block or a single statement.
func (p *Parser) parseBody(context string) ([]ast.Statement, error) {
	if p.at(lexer.LeftBrace) {
		return p.parseBlock(context)
	}
	if p.at(lexer.EOF) {
		return nil, expectedToken(p.cur, lexer.LeftBrace, context)
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return []ast.Statement{stmt}, nil
}

// parseTypeAnnotation parses `<int>`, `<str>`, and the other type names.
func (p *Parser) parseTypeAnnotation() (ast.TypeName, error) {
	if _, err := p.expect(lexer.Less, "before the type name"); err != nil {
		return "", err
	}
	if !p.cur.Kind.IsTypeName() {
		return "", &ParseError{
			Message:  fmt.Sprintf("SyntaxError: unexpected %s, expected a type name", p.cur.Describe()),
			Location: locationForToken(p.cur),
			Help:     "the available types are int, str, bool, float and double",
			Example:  "var <int> count = 0",
		}
	}
	declared := typeNameFor(p.cur.Kind)
	if err := p.next(); err != nil {
		return "", err
	}
	if _, err := p.expect(lexer.Greater, "after the type name"); err != nil {
		return "", err
	}
	return declared, nil
}

func (p *Parser) parseVar() (ast.Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	var declared ast.TypeName
	if p.at(lexer.Less) {
		t, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		declared = t
	}
	return p.parseDeclaration(declared)
}

// parseDeclaration parses what follows `var` or `var <T>`: a scalar,
// array or list declaration. Declarations are positioned at their name.
func (p *Parser) parseDeclaration(declared ast.TypeName) (ast.Statement, error) {
	nameTok, err := p.expect(lexer.Identifier, "in variable declaration")
	if err != nil {
		return nil, err
	}
	start := positionOf(nameTok)

	if p.at(lexer.LeftBracket) {
		if err := p.next(); err != nil {
			return nil, err
		}
		size, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RightBracket, "after the array size"); err != nil {
			return nil, err
		}
		if declared == "" {
			return nil, &ParseError{
				Message:  fmt.Sprintf("SyntaxError: array %q needs an element type", nameTok.Text),
				Location: locationForToken(nameTok),
				Help:     "fixed-size arrays hold a single element type written before the name",
				Example:  fmt.Sprintf("var <int> %s[3] = {1, 2, 3}", nameTok.Text),
			}
		}
		if !p.at(lexer.Assign) {
			return nil, missingInitializer(nameTok, string(declared))
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return place(p, ast.NewArrayDeclaration(nameTok.Text, declared, size, initializerList(value)), start), nil
	}

	if !p.at(lexer.Assign) {
		return nil, missingInitializer(nameTok, string(declared))
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if call, ok := collectionLiteral(value); ok {
		if declared != "" {
			return place(p, ast.NewArrayDeclaration(nameTok.Text, declared, nil, call.Arguments), start), nil
		}
		return place(p, ast.NewListDeclaration(nameTok.Text, call.Arguments), start), nil
	}
	return place(p, ast.NewVarDeclaration(nameTok.Text, declared, value), start), nil
}

func collectionLiteral(expr ast.Expression) (*ast.FunctionCall, bool) {
	call, ok := expr.(*ast.FunctionCall)
	if !ok {
		return nil, false
	}
	if call.Callee == ast.ArrayInitFunction || call.Callee == ast.ListInitFunction {
		return call, true
	}
	return nil, false
}

// initializerList unpacks a brace literal; any other value is a single
// fill initializer.
func initializerList(value ast.Expression) []ast.Expression {
	if call, ok := collectionLiteral(value); ok {
		return call.Arguments
	}
	return []ast.Expression{value}
}

func (p *Parser) parseFor() (ast.Statement, error) {
	start := positionOf(p.cur)
	if err := p.next(); err != nil {
		return nil, err
	}
	varTok, err := p.expect(lexer.Identifier, "after 'for'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.In, "after the loop variable"); err != nil {
		return nil, err
	}
	rangeExpr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody("to start the for loop body")
	if err != nil {
		return nil, err
	}
	return place(p, ast.NewForLoop(varTok.Text, rangeExpr, body), start), nil
}

// parseCondition parses the parenthesized condition of if and while.
func (p *Parser) parseCondition(keyword string) (ast.Expression, error) {
	if _, err := p.expect(lexer.LeftParen, fmt.Sprintf("after '%s'", keyword)); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RightParen, fmt.Sprintf("after the %s condition", keyword)); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	start := positionOf(p.cur)
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	then, err := p.parseBody("to start the if body")
	if err != nil {
		return nil, err
	}
	var otherwise []ast.Statement
	if p.at(lexer.Else) {
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.at(lexer.If) {
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			otherwise = []ast.Statement{nested}
		} else {
			otherwise, err = p.parseBody("to start the else body")
			if err != nil {
				return nil, err
			}
		}
	}
	return place(p, ast.NewIfStatement(cond, then, otherwise), start), nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	start := positionOf(p.cur)
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody("to start the while body")
	if err != nil {
		return nil, err
	}
	return place(p, ast.NewWhileLoop(cond, body), start), nil
}

// parseInput parses `input(prompt, name)` or `input(name)`.
func (p *Parser) parseInput() (ast.Statement, error) {
	start := positionOf(p.cur)
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LeftParen, "after 'input'"); err != nil {
		return nil, err
	}
	prompt, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.RightParen) {
		id, ok := prompt.(*ast.Identifier)
		if !ok {
			return nil, expectedToken(p.cur, lexer.Comma, "between the input prompt and the variable name")
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return place(p, ast.NewInputStatement(ast.NewStringLiteral(""), id.Name), start), nil
	}
	if _, err := p.expect(lexer.Comma, "between the input prompt and the variable name"); err != nil {
		return nil, err
	}
	target, err := p.expect(lexer.Identifier, "to receive the input")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RightParen, "to close input(...)"); err != nil {
		return nil, err
	}
	return place(p, ast.NewInputStatement(prompt, target.Text), start), nil
}

func (p *Parser) parsePrint() (ast.Statement, error) {
	keyword := p.cur
	start := positionOf(keyword)
	newline := keyword.Kind == lexer.Println
	if err := p.next(); err != nil {
		return nil, err
	}
	context := fmt.Sprintf("after '%s'", keyword.Kind.Lexeme())
	if _, err := p.expect(lexer.LeftParen, context); err != nil {
		return nil, err
	}
	var value ast.Expression
	if !p.at(lexer.RightParen) {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	if _, err := p.expect(lexer.RightParen, fmt.Sprintf("to close %s(...)", keyword.Kind.Lexeme())); err != nil {
		return nil, err
	}
	return place(p, ast.NewPrintStatement(value, newline), start), nil
}

// parseImport accepts `import "file"` and `import file`. The node is
// positioned at the file name.
func (p *Parser) parseImport() (ast.Statement, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	nameTok := p.cur
	if nameTok.Kind != lexer.String && nameTok.Kind != lexer.Identifier {
		return nil, &ParseError{
			Message:  fmt.Sprintf("SyntaxError: unexpected %s, expected a file name after 'import'", nameTok.Describe()),
			Location: locationForToken(nameTok),
			Example:  `import "helpers"`,
		}
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return place(p, ast.NewImportStatement(nameTok.Text), positionOf(nameTok)), nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	start := positionOf(p.cur)
	if err := p.next(); err != nil {
		return nil, err
	}
	switch p.cur.Kind {
	case lexer.Semicolon, lexer.RightBrace, lexer.EOF:
		return place(p, ast.NewReturnStatement(nil), start), nil
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return place(p, ast.NewReturnStatement(value), start), nil
}

func (p *Parser) parseFunctionDefinition() (ast.Statement, error) {
	start := positionOf(p.cur)
	if err := p.next(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.Identifier, "after 'func'")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock("to start the function body")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(params))
	for i, param := range params {
		names[i] = param.Name
	}
	return place(p, ast.NewFunctionDefinition(nameTok.Text, names, body), start), nil
}

func (p *Parser) parseExprDefinition() (ast.Statement, error) {
	start := positionOf(p.cur)
	if err := p.next(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.Identifier, "after 'expr'")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock("to start the expression body")
	if err != nil {
		return nil, err
	}
	return place(p, ast.NewExprDefinition(nameTok.Text, params, body), start), nil
}

// parseParameters parses `(a, <int> b, c: str)`.
func (p *Parser) parseParameters() ([]ast.TypedParameter, error) {
	if _, err := p.expect(lexer.LeftParen, "before the parameter list"); err != nil {
		return nil, err
	}
	params := []ast.TypedParameter{}
	for !p.at(lexer.RightParen) {
		var param ast.TypedParameter
		if p.at(lexer.Less) {
			hint, err := p.parseTypeAnnotation()
			if err != nil {
				return nil, err
			}
			param.TypeHint = hint
		}
		nameTok, err := p.expect(lexer.Identifier, "in the parameter list")
		if err != nil {
			return nil, err
		}
		param.Name = nameTok.Text
		if p.at(lexer.Colon) {
			if err := p.next(); err != nil {
				return nil, err
			}
			if !p.cur.Kind.IsTypeName() {
				return nil, &ParseError{
					Message:  fmt.Sprintf("SyntaxError: unexpected %s, expected a type name after ':'", p.cur.Describe()),
					Location: locationForToken(p.cur),
					Example:  "expr area(w: double, h: double) { return w * h }",
				}
			}
			param.TypeHint = typeNameFor(p.cur.Kind)
			if err := p.next(); err != nil {
				return nil, err
			}
		}
		params = append(params, param)
		if ok, err := p.accept(lexer.Comma); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if _, err := p.expect(lexer.RightParen, "to close the parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}

// parseIdentifierStatement handles statements that begin with a name:
// indexed access or assignment, plain assignment, calls and bare
// references.
func (p *Parser) parseIdentifierStatement() (ast.Statement, error) {
	nameTok := p.cur
	start := positionOf(nameTok)
	if err := p.next(); err != nil {
		return nil, err
	}
	switch p.cur.Kind {
	case lexer.LeftBracket:
		index, err := p.parseIndexSuffix()
		if err != nil {
			return nil, err
		}
		if p.at(lexer.Assign) {
			if err := p.next(); err != nil {
				return nil, err
			}
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return place(p, ast.NewIndexAssignment(nameTok.Text, index, value), start), nil
		}
		access := place(p, ast.NewIndexExpression(nameTok.Text, index), start)
		return asStatement(p.parseExpressionTail(access))
	case lexer.Assign:
		if err := p.next(); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return place(p, ast.NewAssignment(nameTok.Text, value), start), nil
	default:
		operand, err := p.parseIdentifierTail(nameTok)
		if err != nil {
			return nil, err
		}
		return asStatement(p.parseExpressionTail(operand))
	}
}
