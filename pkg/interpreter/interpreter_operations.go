package interpreter

import (
	"fmt"
	"math"
	"math/bits"

	"ecl/interpreter-go/pkg/runtime"
)

func applyBinaryOperator(op string, left runtime.Value, right runtime.Value) (runtime.Value, error) {
	if ls, ok := left.(runtime.StrValue); ok && op == "+" {
		if rs, ok := right.(runtime.StrValue); ok {
			return runtime.StrValue{Val: ls.Val + rs.Val}, nil
		}
	}
	if !left.Kind().IsNumeric() || !right.Kind().IsNumeric() {
		return nil, fmt.Errorf("operator %q cannot combine %s and %s", op, left.Kind(), right.Kind())
	}
	switch op {
	case "+", "-", "*", "/":
		return evaluateArithmetic(op, left, right)
	case "<", "<=", ">", ">=", "==":
		return evaluateComparison(op, left, right)
	case "..":
		return evaluateRange(left, right)
	default:
		return nil, fmt.Errorf("unsupported binary operator %q", op)
	}
}

func evaluateArithmetic(op string, left runtime.Value, right runtime.Value) (runtime.Value, error) {
	leftInt, leftIsInt := left.(runtime.IntValue)
	rightInt, rightIsInt := right.(runtime.IntValue)
	if leftIsInt && rightIsInt && op != "/" {
		lv, rv := leftInt.Val, rightInt.Val
		if n, ok := exactIntArithmetic(op, lv, rv); ok {
			return runtime.IntValue{Val: n}, nil
		}
		// Overflow widens to Double instead of wrapping.
		fl, fr := float64(lv), float64(rv)
		switch op {
		case "+":
			return runtime.DoubleValue{Val: fl + fr}, nil
		case "-":
			return runtime.DoubleValue{Val: fl - fr}, nil
		default:
			return runtime.DoubleValue{Val: fl * fr}, nil
		}
	}
	leftFloat, err := runtime.ToFloat64(left)
	if err != nil {
		return nil, err
	}
	rightFloat, err := runtime.ToFloat64(right)
	if err != nil {
		return nil, err
	}
	var val float64
	switch op {
	case "+":
		val = leftFloat + rightFloat
	case "-":
		val = leftFloat - rightFloat
	case "*":
		val = leftFloat * rightFloat
	case "/":
		// Division by zero yields zero of the result kind.
		if rightFloat != 0 {
			val = leftFloat / rightFloat
		}
	}
	return floatResult(left, right, op, val), nil
}

// exactIntArithmetic applies + - * to two Ints and reports false when the
// result does not fit in an int64.
func exactIntArithmetic(op string, lv, rv int64) (int64, bool) {
	switch op {
	case "+":
		sum := lv + rv
		return sum, (sum > lv) == (rv > 0)
	case "-":
		diff := lv - rv
		return diff, (diff < lv) == (rv > 0)
	default:
		if lv == 0 || rv == 0 {
			return 0, true
		}
		hi, lo := bits.Mul64(absUint64(lv), absUint64(rv))
		if hi != 0 {
			return 0, false
		}
		negative := (lv < 0) != (rv < 0)
		if negative {
			if lo > 1<<63 {
				return 0, false
			}
			return int64(-lo), true
		}
		if lo > math.MaxInt64 {
			return 0, false
		}
		return int64(lo), true
	}
}

func absUint64(n int64) uint64 {
	if n < 0 {
		return uint64(-n)
	}
	return uint64(n)
}

// floatResult picks the result kind for non-integer arithmetic: Double when
// either side is Double or the operator is integer division, else Float.
func floatResult(left, right runtime.Value, op string, val float64) runtime.Value {
	_, leftInt := left.(runtime.IntValue)
	_, rightInt := right.(runtime.IntValue)
	if left.Kind() == runtime.KindDouble || right.Kind() == runtime.KindDouble || (op == "/" && leftInt && rightInt) {
		return runtime.DoubleValue{Val: val}
	}
	return runtime.FloatValue{Val: float32(val)}
}

func evaluateComparison(op string, left runtime.Value, right runtime.Value) (runtime.Value, error) {
	leftFloat, err := runtime.ToFloat64(left)
	if err != nil {
		return nil, err
	}
	rightFloat, err := runtime.ToFloat64(right)
	if err != nil {
		return nil, err
	}
	var result bool
	switch op {
	case "<":
		result = leftFloat < rightFloat
	case "<=":
		result = leftFloat <= rightFloat
	case ">":
		result = leftFloat > rightFloat
	case ">=":
		result = leftFloat >= rightFloat
	case "==":
		result = leftFloat == rightFloat
	}
	return runtime.BoolValue{Val: result}, nil
}

// evaluateRange materializes start..end outside a for header as a list of
// Int.
func evaluateRange(left runtime.Value, right runtime.Value) (runtime.Value, error) {
	start, err := runtime.ToFloat64(left)
	if err != nil {
		return nil, err
	}
	end, err := runtime.ToFloat64(right)
	if err != nil {
		return nil, err
	}
	lo, hi := truncate(start), truncate(end)
	list := &runtime.ListValue{}
	for n := lo; n < hi; n++ {
		list.Elements = append(list.Elements, runtime.IntValue{Val: n})
	}
	return list, nil
}
