package interpreter

import (
	"fmt"

	"ecl/interpreter-go/pkg/ast"
	"ecl/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateStatements(stmts []ast.Statement, env *runtime.Environment) error {
	for _, stmt := range stmts {
		if err := i.evaluateStatement(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) error {
	switch n := node.(type) {
	case *ast.PrintStatement:
		return i.evaluatePrint(n, env)
	case *ast.VarDeclaration:
		return i.evaluateVarDeclaration(n, env)
	case *ast.ArrayDeclaration:
		return i.evaluateArrayDeclaration(n, env)
	case *ast.ListDeclaration:
		return i.evaluateListDeclaration(n, env)
	case *ast.Assignment:
		return i.evaluateAssignment(n, env)
	case *ast.IndexAssignment:
		return i.evaluateIndexAssignment(n, env)
	case *ast.ForLoop:
		return i.evaluateForLoop(n, env)
	case *ast.WhileLoop:
		return i.evaluateWhileLoop(n, env)
	case *ast.IfStatement:
		return i.evaluateIfStatement(n, env)
	case *ast.InputStatement:
		return i.evaluateInput(n, env)
	case *ast.FunctionDefinition:
		i.functions.Define(runtime.FromDefinition(n, i.sourcePath()))
		return nil
	case *ast.ExprDefinition:
		i.functions.Define(runtime.FromExprDefinition(n, i.sourcePath()))
		return nil
	case *ast.ReturnStatement:
		if n.Value == nil {
			return returnSignal{}
		}
		val, err := i.evaluateExpression(n.Value, env)
		if err != nil {
			return err
		}
		return returnSignal{value: val}
	case *ast.ImportStatement:
		return i.evaluateImport(n, env)
	case ast.Expression:
		_, err := i.evaluateExpression(n, env)
		return err
	default:
		return fmt.Errorf("unsupported statement %T", node)
	}
}

func (i *Interpreter) sourcePath() string {
	if i.source == nil {
		return ""
	}
	return i.source.Path
}

func (i *Interpreter) evaluatePrint(node *ast.PrintStatement, env *runtime.Environment) error {
	text := ""
	if node.Value != nil {
		val, err := i.evaluateExpression(node.Value, env)
		if err != nil {
			return err
		}
		text = runtime.Stringify(val)
	}
	i.pending.WriteString(text)
	if node.Newline {
		i.pending.WriteByte('\n')
		_, err := fmt.Fprint(i.stdout, i.pending.String())
		i.pending.Reset()
		return err
	}
	return nil
}

func (i *Interpreter) evaluateVarDeclaration(node *ast.VarDeclaration, env *runtime.Environment) error {
	val, err := i.evaluateExpression(node.Value, env)
	if err != nil {
		return err
	}
	if node.DeclaredType != "" {
		kind, err := i.declaredKind(node, node.DeclaredType)
		if err != nil {
			return err
		}
		converted, err := i.coerceBinding(node, node.Name, kind, val)
		if err != nil {
			return err
		}
		env.DefineTyped(node.Name, converted, kind)
		return nil
	}
	if env.HasInCurrentScope(node.Name) {
		if kind, ok := env.DeclaredType(node.Name); ok {
			converted, err := i.coerceBinding(node, node.Name, kind, val)
			if err != nil {
				return err
			}
			env.Define(node.Name, converted)
			return nil
		}
	}
	env.Define(node.Name, runtime.Clone(val))
	return nil
}

func (i *Interpreter) evaluateAssignment(node *ast.Assignment, env *runtime.Environment) error {
	val, err := i.evaluateExpression(node.Value, env)
	if err != nil {
		return err
	}
	return i.assign(node, node.Name, val, env)
}

// assign updates the nearest scope holding name, defining it in env when no
// scope does. Typed names coerce the value first.
func (i *Interpreter) assign(node ast.Node, name string, val runtime.Value, env *runtime.Environment) error {
	scope := env.Resolve(name)
	if scope == nil {
		env.Define(name, runtime.Clone(val))
		return nil
	}
	if kind, ok := scope.DeclaredType(name); ok {
		converted, err := i.coerceBinding(node, name, kind, val)
		if err != nil {
			return err
		}
		return scope.Assign(name, converted)
	}
	return scope.Assign(name, runtime.Clone(val))
}

func (i *Interpreter) declaredKind(node ast.Node, name ast.TypeName) (runtime.Kind, error) {
	kind, ok := runtime.KindFromTypeName(name)
	if !ok {
		return 0, i.errorAt(node, "TypeError: unknown type %q", string(name))
	}
	return kind, nil
}

func (i *Interpreter) coerceBinding(node ast.Node, name string, kind runtime.Kind, val runtime.Value) (runtime.Value, error) {
	converted, err := runtime.ConvertTo(val, kind)
	if err != nil {
		return nil, i.errorAt(node, "TypeError: cannot assign to %q declared as %s: %v", name, typeLabel(kind), err)
	}
	return converted, nil
}

// typeLabel is the source spelling of a scalar kind.
func typeLabel(kind runtime.Kind) string {
	switch kind {
	case runtime.KindInt:
		return string(ast.TypeInt)
	case runtime.KindStr:
		return string(ast.TypeStr)
	case runtime.KindBool:
		return string(ast.TypeBool)
	case runtime.KindFloat:
		return string(ast.TypeFloat)
	case runtime.KindDouble:
		return string(ast.TypeDouble)
	default:
		return kind.String()
	}
}

func (i *Interpreter) evaluateArrayDeclaration(node *ast.ArrayDeclaration, env *runtime.Environment) error {
	kind, err := i.declaredKind(node, node.ElementType)
	if err != nil {
		return err
	}
	inits := make([]runtime.Value, 0, len(node.Initializers))
	for _, expr := range node.Initializers {
		val, err := i.evaluateExpression(expr, env)
		if err != nil {
			return err
		}
		inits = append(inits, val)
	}
	if len(inits) == 1 {
		if elems, ok := collectionElements(inits[0]); ok {
			inits = elems
		}
	}

	size := len(inits)
	if node.Size != nil {
		sizeVal, err := i.evaluateExpression(node.Size, env)
		if err != nil {
			return err
		}
		n, err := i.indexFrom(node.Size, sizeVal)
		if err != nil {
			return err
		}
		size = n
	}

	elements := make([]runtime.Value, size)
	fill := len(inits) == 1 && node.Size != nil
	for idx := range elements {
		var src runtime.Value
		switch {
		case fill:
			src = inits[0]
		case idx < len(inits):
			src = inits[idx]
		default:
			elements[idx] = runtime.ZeroValue(kind)
			continue
		}
		converted, err := runtime.ConvertTo(src, kind)
		if err != nil {
			return i.errorAt(node, "TypeError: element %d of array %q must be %s: %v", idx, node.Name, typeLabel(kind), err)
		}
		elements[idx] = converted
	}
	env.Define(node.Name, &runtime.ArrayValue{ElementType: kind, Elements: elements})
	return nil
}

func (i *Interpreter) evaluateListDeclaration(node *ast.ListDeclaration, env *runtime.Environment) error {
	elements := make([]runtime.Value, 0, len(node.Initializers))
	for _, expr := range node.Initializers {
		val, err := i.evaluateExpression(expr, env)
		if err != nil {
			return err
		}
		elements = append(elements, runtime.Clone(val))
	}
	env.Define(node.Name, &runtime.ListValue{Elements: elements})
	return nil
}

func collectionElements(val runtime.Value) ([]runtime.Value, bool) {
	switch v := val.(type) {
	case *runtime.ArrayValue:
		return v.Elements, true
	case *runtime.ListValue:
		return v.Elements, true
	default:
		return nil, false
	}
}

func (i *Interpreter) evaluateIndexAssignment(node *ast.IndexAssignment, env *runtime.Environment) error {
	target, err := i.lookupVariable(node, node.Name, env)
	if err != nil {
		return err
	}
	indexVal, err := i.evaluateExpression(node.Index, env)
	if err != nil {
		return err
	}
	idx, err := i.indexFrom(node.Index, indexVal)
	if err != nil {
		return err
	}
	val, err := i.evaluateExpression(node.Value, env)
	if err != nil {
		return err
	}
	switch coll := target.(type) {
	case *runtime.ArrayValue:
		if idx >= len(coll.Elements) {
			return i.outOfBounds(node, node.Name, idx, len(coll.Elements), true)
		}
		converted, err := runtime.ConvertTo(val, coll.ElementType)
		if err != nil {
			return i.errorAt(node, "TypeError: element %d of array %q must be %s: %v", idx, node.Name, typeLabel(coll.ElementType), err)
		}
		coll.Elements[idx] = converted
	case *runtime.ListValue:
		if idx >= len(coll.Elements) {
			return i.outOfBounds(node, node.Name, idx, len(coll.Elements), true)
		}
		coll.Elements[idx] = runtime.Clone(val)
	default:
		return i.errorAt(node, "TypeError: %q is not an array or list", node.Name)
	}
	return nil
}

func (i *Interpreter) outOfBounds(node ast.Node, name string, idx, length int, assigning bool) *RuntimeError {
	err := i.errorAt(node, "IndexError: index %d is out of bounds for %q of length %d", idx, name, length)
	if length == 0 {
		return err.withHelp(fmt.Sprintf("%q is empty", name), "")
	}
	example := fmt.Sprintf("%s[%d]", name, length-1)
	if assigning {
		example += " = value"
	}
	return err.withHelp(fmt.Sprintf("valid indexes for %q are 0 to %d", name, length-1), example)
}

// loopHeader is an evaluated for-loop header: either a snapshot of a
// collection's elements or a half-open Int range.
type loopHeader struct {
	elements   []runtime.Value
	collection bool
	start, end int64
}

func (i *Interpreter) evaluateForLoop(node *ast.ForLoop, env *runtime.Environment) error {
	header, err := i.forLoopHeader(node, env)
	if err != nil {
		return err
	}
	if header.collection {
		for _, val := range header.elements {
			if err := i.runLoopIteration(node, val, env); err != nil {
				return err
			}
		}
		return nil
	}
	for n := header.start; n < header.end; n++ {
		if err := i.runLoopIteration(node, runtime.IntValue{Val: n}, env); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) runLoopIteration(node *ast.ForLoop, val runtime.Value, env *runtime.Environment) error {
	if err := i.assign(node, node.Variable, val, env); err != nil {
		return err
	}
	return i.evaluateStatements(node.Body, env)
}

// forLoopHeader evaluates the header once. Numeric headers yield bounds and
// are iterated without materializing the range.
func (i *Interpreter) forLoopHeader(node *ast.ForLoop, env *runtime.Environment) (loopHeader, error) {
	if isRangeHeader(node.Range) {
		return loopHeader{start: 0, end: 10}, nil
	}
	if bin, ok := node.Range.(*ast.BinaryExpression); ok && bin.Operator == ".." {
		start, err := i.numericOperand(bin.Left, env)
		if err != nil {
			return loopHeader{}, err
		}
		end, err := i.numericOperand(bin.Right, env)
		if err != nil {
			return loopHeader{}, err
		}
		return loopHeader{start: truncate(start), end: truncate(end)}, nil
	}
	val, err := i.evaluateExpression(node.Range, env)
	if err != nil {
		return loopHeader{}, err
	}
	if elems, ok := collectionElements(val); ok {
		return loopHeader{elements: append([]runtime.Value(nil), elems...), collection: true}, nil
	}
	end, err := runtime.ToFloat64(val)
	if err != nil {
		return loopHeader{}, i.errorAt(node.Range, "TypeError: loop bound cannot be used as a number: %v", err)
	}
	return loopHeader{start: 0, end: truncate(end)}, nil
}

// isRangeHeader reports the `range` and `range(...)` loop headers, which
// always iterate 0 up to 10. Their arguments are not evaluated.
func isRangeHeader(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name == "range"
	case *ast.FunctionCall:
		return e.Callee == "range"
	default:
		return false
	}
}

func (i *Interpreter) numericOperand(expr ast.Expression, env *runtime.Environment) (float64, error) {
	val, err := i.evaluateExpression(expr, env)
	if err != nil {
		return 0, err
	}
	f, err := runtime.ToFloat64(val)
	if err != nil {
		return 0, i.errorAt(expr, "TypeError: range bound cannot be used as a number: %v", err)
	}
	return f, nil
}

func (i *Interpreter) evaluateWhileLoop(node *ast.WhileLoop, env *runtime.Environment) error {
	for {
		ok, err := i.condition(node.Condition, env)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := i.evaluateStatements(node.Body, env); err != nil {
			return err
		}
	}
}

func (i *Interpreter) evaluateIfStatement(node *ast.IfStatement, env *runtime.Environment) error {
	ok, err := i.condition(node.Condition, env)
	if err != nil {
		return err
	}
	if ok {
		return i.evaluateStatements(node.Then, env)
	}
	return i.evaluateStatements(node.Else, env)
}

func (i *Interpreter) condition(expr ast.Expression, env *runtime.Environment) (bool, error) {
	val, err := i.evaluateExpression(expr, env)
	if err != nil {
		return false, err
	}
	ok, err := runtime.Truthy(val)
	if err != nil {
		return false, i.errorAt(expr, "TypeError: condition value cannot be used as a number: %v", err)
	}
	return ok, nil
}
