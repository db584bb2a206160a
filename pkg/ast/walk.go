package ast

// Children returns the direct sub-nodes of node in source order.
func Children(node Node) []Node {
	var out []Node
	addExpr := func(exprs ...Expression) {
		for _, e := range exprs {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	addStmts := func(stmts []Statement) {
		for _, s := range stmts {
			if s != nil {
				out = append(out, s)
			}
		}
	}
	switch n := node.(type) {
	case *BinaryExpression:
		addExpr(n.Left, n.Right)
	case *FunctionCall:
		addExpr(n.Arguments...)
	case *IfExpression:
		addExpr(n.Condition, n.Then, n.Else)
	case *IndexExpression:
		addExpr(n.Index)
	case *TypeConversion:
		addExpr(n.Value)
	case *PrintStatement:
		addExpr(n.Value)
	case *VarDeclaration:
		addExpr(n.Value)
	case *ArrayDeclaration:
		addExpr(n.Size)
		addExpr(n.Initializers...)
	case *ListDeclaration:
		addExpr(n.Initializers...)
	case *IndexAssignment:
		addExpr(n.Index, n.Value)
	case *Assignment:
		addExpr(n.Value)
	case *ForLoop:
		addExpr(n.Range)
		addStmts(n.Body)
	case *WhileLoop:
		addExpr(n.Condition)
		addStmts(n.Body)
	case *IfStatement:
		addExpr(n.Condition)
		addStmts(n.Then)
		addStmts(n.Else)
	case *InputStatement:
		addExpr(n.Prompt)
	case *FunctionDefinition:
		addStmts(n.Body)
	case *ExprDefinition:
		addStmts(n.Body)
	case *ReturnStatement:
		addExpr(n.Value)
	}
	return out
}

// Walk visits node and its descendants depth-first. Returning false from
// visit skips the node's children.
func Walk(node Node, visit func(Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	for _, child := range Children(node) {
		Walk(child, visit)
	}
}
