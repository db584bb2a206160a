package ast

type NodeType string

const (
	NodeIdentifier       NodeType = "Identifier"
	NodeNumberLiteral    NodeType = "Number"
	NodeStringLiteral    NodeType = "String"
	NodeBooleanLiteral   NodeType = "Bool"
	NodeBinaryExpression NodeType = "BinaryOp"
	NodeFunctionCall     NodeType = "FunctionCall"
	NodeIfExpression     NodeType = "IfExpr"
	NodeIndexExpression  NodeType = "IndexAccess"
	NodeTypeConversion   NodeType = "TypeConversion"
	NodePrintStatement   NodeType = "Print"
	NodePrintlnStatement NodeType = "Println"
	NodeVarDeclaration   NodeType = "Var"
	NodeTypedVar         NodeType = "TypedVar"
	NodeArrayDeclaration NodeType = "ArrayDecl"
	NodeListDeclaration  NodeType = "ListDecl"
	NodeIndexAssignment  NodeType = "IndexAssign"
	NodeAssignment       NodeType = "Assign"
	NodeForLoop          NodeType = "For"
	NodeWhileLoop        NodeType = "While"
	NodeIfStatement      NodeType = "If"
	NodeInputStatement   NodeType = "Input"
	NodeFunctionDef      NodeType = "Function"
	NodeExprDefinition   NodeType = "Expr"
	NodeReturnStatement  NodeType = "Return"
	NodeImportStatement  NodeType = "Import"
)

// Internal call targets produced by collection literals.
const (
	ArrayInitFunction = "array_init"
	ListInitFunction  = "list_init"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Pos is the start of the node's span, the point diagnostics refer to.
func (n nodeImpl) Pos() Position { return n.span.Start }

// SetSpan records the source span on any node built by this package.
func SetSpan(node Node, span Span) {
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// SetPosition records a zero-width span starting at pos.
func SetPosition(node Node, pos Position) {
	SetSpan(node, Span{Start: pos, End: pos})
}

// Marker interfaces.

// Expressions may also stand alone as statements.
type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}
func (expressionMarker) statementNode()  {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// TypeName is a primitive type written in source (`int`, `str`, ...).
type TypeName string

const (
	TypeInt    TypeName = "int"
	TypeStr    TypeName = "str"
	TypeBool   TypeName = "bool"
	TypeFloat  TypeName = "float"
	TypeDouble TypeName = "double"
)

// Expressions.

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type NumberLiteral struct {
	nodeImpl
	expressionMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{
		nodeImpl: newNodeImpl(NodeBinaryExpression),
		Operator: operator,
		Left:     left,
		Right:    right,
	}
}

type FunctionCall struct {
	nodeImpl
	expressionMarker

	Callee    string       `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee string, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: args}
}

// IfExpression is the value-producing `if (c) a else b` form.
type IfExpression struct {
	nodeImpl
	expressionMarker

	Condition Expression `json:"condition"`
	Then      Expression `json:"then"`
	Else      Expression `json:"else"`
}

func NewIfExpression(condition, then, otherwise Expression) *IfExpression {
	return &IfExpression{
		nodeImpl:  newNodeImpl(NodeIfExpression),
		Condition: condition,
		Then:      then,
		Else:      otherwise,
	}
}

type IndexExpression struct {
	nodeImpl
	expressionMarker

	Name  string     `json:"name"`
	Index Expression `json:"index"`
}

func NewIndexExpression(name string, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Name: name, Index: index}
}

type TypeConversion struct {
	nodeImpl
	expressionMarker

	Target TypeName   `json:"target"`
	Value  Expression `json:"value"`
}

func NewTypeConversion(target TypeName, value Expression) *TypeConversion {
	return &TypeConversion{nodeImpl: newNodeImpl(NodeTypeConversion), Target: target, Value: value}
}

// Statements.

type PrintStatement struct {
	nodeImpl
	statementMarker

	Value   Expression `json:"value"`
	Newline bool       `json:"newline"`
}

func NewPrintStatement(value Expression, newline bool) *PrintStatement {
	kind := NodePrintStatement
	if newline {
		kind = NodePrintlnStatement
	}
	return &PrintStatement{nodeImpl: newNodeImpl(kind), Value: value, Newline: newline}
}

// VarDeclaration covers both `var x = e` and `var <T> x = e`;
// DeclaredType is empty for the untyped form.
type VarDeclaration struct {
	nodeImpl
	statementMarker

	Name         string     `json:"name"`
	DeclaredType TypeName   `json:"declaredType,omitempty"`
	Value        Expression `json:"value"`
}

func NewVarDeclaration(name string, declared TypeName, value Expression) *VarDeclaration {
	kind := NodeVarDeclaration
	if declared != "" {
		kind = NodeTypedVar
	}
	return &VarDeclaration{nodeImpl: newNodeImpl(kind), Name: name, DeclaredType: declared, Value: value}
}

// ArrayDeclaration is `var <T> name[size] = ...`. A nil Size means the
// array is sized by its initializer list.
type ArrayDeclaration struct {
	nodeImpl
	statementMarker

	Name         string       `json:"name"`
	ElementType  TypeName     `json:"elementType"`
	Size         Expression   `json:"size,omitempty"`
	Initializers []Expression `json:"initializers"`
}

func NewArrayDeclaration(name string, elem TypeName, size Expression, inits []Expression) *ArrayDeclaration {
	return &ArrayDeclaration{
		nodeImpl:     newNodeImpl(NodeArrayDeclaration),
		Name:         name,
		ElementType:  elem,
		Size:         size,
		Initializers: inits,
	}
}

type ListDeclaration struct {
	nodeImpl
	statementMarker

	Name         string       `json:"name"`
	Initializers []Expression `json:"initializers"`
}

func NewListDeclaration(name string, inits []Expression) *ListDeclaration {
	return &ListDeclaration{nodeImpl: newNodeImpl(NodeListDeclaration), Name: name, Initializers: inits}
}

type IndexAssignment struct {
	nodeImpl
	statementMarker

	Name  string     `json:"name"`
	Index Expression `json:"index"`
	Value Expression `json:"value"`
}

func NewIndexAssignment(name string, index, value Expression) *IndexAssignment {
	return &IndexAssignment{nodeImpl: newNodeImpl(NodeIndexAssignment), Name: name, Index: index, Value: value}
}

type Assignment struct {
	nodeImpl
	statementMarker

	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

func NewAssignment(name string, value Expression) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), Name: name, Value: value}
}

type ForLoop struct {
	nodeImpl
	statementMarker

	Variable string      `json:"variable"`
	Range    Expression  `json:"range"`
	Body     []Statement `json:"body"`
}

func NewForLoop(variable string, rangeExpr Expression, body []Statement) *ForLoop {
	return &ForLoop{nodeImpl: newNodeImpl(NodeForLoop), Variable: variable, Range: rangeExpr, Body: body}
}

type WhileLoop struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

func NewWhileLoop(condition Expression, body []Statement) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhileLoop), Condition: condition, Body: body}
}

// IfStatement has a nil Else when no else branch was written.
type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Then      []Statement `json:"then"`
	Else      []Statement `json:"else,omitempty"`
}

func NewIfStatement(condition Expression, then, otherwise []Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Then: then, Else: otherwise}
}

type InputStatement struct {
	nodeImpl
	statementMarker

	Prompt Expression `json:"prompt"`
	Target string     `json:"target"`
}

func NewInputStatement(prompt Expression, target string) *InputStatement {
	return &InputStatement{nodeImpl: newNodeImpl(NodeInputStatement), Prompt: prompt, Target: target}
}

type FunctionDefinition struct {
	nodeImpl
	statementMarker

	Name   string      `json:"name"`
	Params []string    `json:"params"`
	Body   []Statement `json:"body"`
}

func NewFunctionDefinition(name string, params []string, body []Statement) *FunctionDefinition {
	return &FunctionDefinition{nodeImpl: newNodeImpl(NodeFunctionDef), Name: name, Params: params, Body: body}
}

// TypedParameter is an `expr` parameter; TypeHint may be empty.
type TypedParameter struct {
	Name     string   `json:"name"`
	TypeHint TypeName `json:"typeHint,omitempty"`
}

type ExprDefinition struct {
	nodeImpl
	statementMarker

	Name   string           `json:"name"`
	Params []TypedParameter `json:"params"`
	Body   []Statement      `json:"body"`
}

func NewExprDefinition(name string, params []TypedParameter, body []Statement) *ExprDefinition {
	return &ExprDefinition{nodeImpl: newNodeImpl(NodeExprDefinition), Name: name, Params: params, Body: body}
}

// ReturnStatement has a nil Value for a bare `return`.
type ReturnStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value}
}

type ImportStatement struct {
	nodeImpl
	statementMarker

	Path string `json:"path"`
}

func NewImportStatement(path string) *ImportStatement {
	return &ImportStatement{nodeImpl: newNodeImpl(NodeImportStatement), Path: path}
}
