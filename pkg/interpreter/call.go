package interpreter

import (
	"ecl/interpreter-go/pkg/ast"
	"ecl/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateFunctionCall(node *ast.FunctionCall, env *runtime.Environment) (runtime.Value, error) {
	switch node.Callee {
	case ast.ArrayInitFunction, ast.ListInitFunction:
		list := &runtime.ListValue{Elements: make([]runtime.Value, 0, len(node.Arguments))}
		for _, arg := range node.Arguments {
			val, err := i.evaluateExpression(arg, env)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, runtime.Clone(val))
		}
		return list, nil
	}

	fn, ok := i.functions.Lookup(node.Callee)
	if !ok {
		i.warn(node, "CallError: function %q is not defined", node.Callee)
		return runtime.IntValue{}, nil
	}
	if len(node.Arguments) != fn.Arity() {
		i.warn(node, "CallError: function %q expects %d arguments but got %d", fn.Name, fn.Arity(), len(node.Arguments))
		return runtime.IntValue{}, nil
	}
	args := make([]runtime.Value, len(node.Arguments))
	for idx, arg := range node.Arguments {
		val, err := i.evaluateExpression(arg, env)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}
	return i.callFunction(node, fn, args)
}

// callFunction runs fn in a fresh scope under the global scope. Calls that
// finish without a value yield Int 0.
func (i *Interpreter) callFunction(node ast.Node, fn *runtime.Function, args []runtime.Value) (runtime.Value, error) {
	if i.depth >= maxCallDepth {
		return nil, i.errorAt(node, "RecursionError: calling %q exceeded the maximum depth of %d", fn.Name, maxCallDepth)
	}
	i.depth++
	defer func() { i.depth-- }()

	frame := runtime.NewEnvironment(i.global)
	for idx, name := range fn.Params {
		frame.Define(name, runtime.Clone(args[idx]))
	}

	saved := i.source
	if src, ok := i.sources[fn.Origin]; ok {
		i.source = src
	}
	defer func() { i.source = saved }()

	err := i.evaluateStatements(fn.Body, frame)
	if ret, ok := err.(returnSignal); ok {
		if ret.value == nil {
			return runtime.IntValue{}, nil
		}
		return ret.value, nil
	}
	if err != nil {
		return nil, err
	}
	return runtime.IntValue{}, nil
}
