package ast

// Short constructors for building trees by hand, mostly in tests.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Call(callee string, args ...Expression) *FunctionCall {
	return NewFunctionCall(callee, args)
}

func Brace(elements ...Expression) *FunctionCall {
	return NewFunctionCall(ArrayInitFunction, elements)
}

func Index(name string, index Expression) *IndexExpression {
	return NewIndexExpression(name, index)
}

func Convert(target TypeName, value Expression) *TypeConversion {
	return NewTypeConversion(target, value)
}

func Ternary(cond, then, otherwise Expression) *IfExpression {
	return NewIfExpression(cond, then, otherwise)
}

func Print(value Expression) *PrintStatement {
	return NewPrintStatement(value, false)
}

func Println(value Expression) *PrintStatement {
	return NewPrintStatement(value, true)
}

func Var(name string, value Expression) *VarDeclaration {
	return NewVarDeclaration(name, "", value)
}

func TypedVar(name string, declared TypeName, value Expression) *VarDeclaration {
	return NewVarDeclaration(name, declared, value)
}

func Array(name string, elem TypeName, size Expression, inits ...Expression) *ArrayDeclaration {
	return NewArrayDeclaration(name, elem, size, inits)
}

func List(name string, inits ...Expression) *ListDeclaration {
	return NewListDeclaration(name, inits)
}

func Assign(name string, value Expression) *Assignment {
	return NewAssignment(name, value)
}

func SetIndex(name string, index, value Expression) *IndexAssignment {
	return NewIndexAssignment(name, index, value)
}

func Block(stmts ...Statement) []Statement {
	return stmts
}

func For(variable string, rangeExpr Expression, body ...Statement) *ForLoop {
	return NewForLoop(variable, rangeExpr, body)
}

func While(cond Expression, body ...Statement) *WhileLoop {
	return NewWhileLoop(cond, body)
}

func If(cond Expression, then []Statement, otherwise []Statement) *IfStatement {
	return NewIfStatement(cond, then, otherwise)
}

func Fn(name string, params []string, body ...Statement) *FunctionDefinition {
	return NewFunctionDefinition(name, params, body)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}

func Imp(path string) *ImportStatement {
	return NewImportStatement(path)
}

// At sets a node's start position and returns it, for diagnostics tests.
func At[T Node](node T, line, column int) T {
	SetPosition(node, Position{Line: line, Column: column})
	return node
}
