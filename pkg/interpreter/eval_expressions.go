package interpreter

import (
	"fmt"
	"math"

	"ecl/interpreter-go/pkg/ast"
	"ecl/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return numberValue(n.Value), nil
	case *ast.StringLiteral:
		return runtime.StrValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.Identifier:
		return i.lookupVariable(n, n.Name, env)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(n, env)
	case *ast.IfExpression:
		ok, err := i.condition(n.Condition, env)
		if err != nil {
			return nil, err
		}
		if ok {
			return i.evaluateExpression(n.Then, env)
		}
		return i.evaluateExpression(n.Else, env)
	case *ast.IndexExpression:
		return i.evaluateIndexExpression(n, env)
	case *ast.TypeConversion:
		return i.evaluateTypeConversion(n, env)
	case nil:
		return runtime.IntValue{}, nil
	default:
		return nil, fmt.Errorf("unsupported expression %T", node)
	}
}

// numberValue maps a numeric literal to Int when it has no fractional part
// and fits, otherwise to Double.
func numberValue(v float64) runtime.Value {
	if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
		return runtime.IntValue{Val: int64(v)}
	}
	return runtime.DoubleValue{Val: v}
}

func (i *Interpreter) lookupVariable(node ast.Node, name string, env *runtime.Environment) (runtime.Value, error) {
	val, err := env.Get(name)
	if err != nil {
		return nil, i.undefinedIdentifier(node, name)
	}
	return val, nil
}

func (i *Interpreter) evaluateBinaryExpression(node *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(node.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(node.Right, env)
	if err != nil {
		return nil, err
	}
	result, err := applyBinaryOperator(node.Operator, left, right)
	if err != nil {
		return nil, i.errorAt(node, "TypeError: %v", err)
	}
	return result, nil
}

func (i *Interpreter) evaluateIndexExpression(node *ast.IndexExpression, env *runtime.Environment) (runtime.Value, error) {
	target, err := i.lookupVariable(node, node.Name, env)
	if err != nil {
		return nil, err
	}
	indexVal, err := i.evaluateExpression(node.Index, env)
	if err != nil {
		return nil, err
	}
	idx, err := i.indexFrom(node.Index, indexVal)
	if err != nil {
		return nil, err
	}
	elements, ok := collectionElements(target)
	if !ok {
		return nil, i.errorAt(node, "TypeError: %q is not an array or list", node.Name)
	}
	if idx >= len(elements) {
		return nil, i.outOfBounds(node, node.Name, idx, len(elements), false)
	}
	return elements[idx], nil
}

// indexFrom truncates a numeric value to an offset; negative values clamp
// to zero.
func (i *Interpreter) indexFrom(node ast.Node, val runtime.Value) (int, error) {
	f, err := runtime.ToFloat64(val)
	if err != nil {
		return 0, i.errorAt(node, "TypeError: index value cannot be used as a number: %v", err)
	}
	n := truncate(f)
	if n < 0 {
		return 0, nil
	}
	if n > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	return int(n), nil
}

func (i *Interpreter) evaluateTypeConversion(node *ast.TypeConversion, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evaluateExpression(node.Value, env)
	if err != nil {
		return nil, err
	}
	kind, err := i.declaredKind(node, node.Target)
	if err != nil {
		return nil, err
	}
	converted, err := runtime.ConvertTo(val, kind)
	if err != nil {
		return nil, i.errorAt(node, "ConversionError: %q conversion failed: %v", string(node.Target), err)
	}
	return converted, nil
}

func truncate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}
