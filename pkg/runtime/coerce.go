package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ConversionError reports a value that cannot be represented as To.
type ConversionError struct {
	From   Kind
	To     Kind
	Detail string
}

func (e *ConversionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("cannot convert %s to %s: %s", e.From, e.To, e.Detail)
	}
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

// ConvertTo converts v to the target kind. Numeric narrowing truncates
// toward zero and saturates at the bounds of the target.
func ConvertTo(v Value, target Kind) (Value, error) {
	if v.Kind() == target {
		return v, nil
	}
	switch val := v.(type) {
	case IntValue:
		return convertNumber(float64(val.Val), val.Val, KindInt, target)
	case FloatValue:
		if target == KindStr {
			return StrValue{Val: formatFloat(float64(val.Val), 32)}, nil
		}
		return convertNumber(float64(val.Val), 0, KindFloat, target)
	case DoubleValue:
		return convertNumber(val.Val, 0, KindDouble, target)
	case BoolValue:
		return convertBool(val.Val, target)
	case StrValue:
		return convertString(val.Val, target)
	case *ArrayValue, *ListValue:
		if target == KindStr {
			return StrValue{Val: Stringify(v)}, nil
		}
	}
	return nil, &ConversionError{From: v.Kind(), To: target}
}

func convertNumber(f float64, i int64, from Kind, target Kind) (Value, error) {
	isInt := from == KindInt
	switch target {
	case KindInt:
		if isInt {
			return IntValue{Val: i}, nil
		}
		return IntValue{Val: truncateToInt(f)}, nil
	case KindFloat:
		return FloatValue{Val: float32(f)}, nil
	case KindDouble:
		return DoubleValue{Val: f}, nil
	case KindBool:
		if isInt {
			return BoolValue{Val: i != 0}, nil
		}
		return BoolValue{Val: f != 0}, nil
	case KindStr:
		if isInt {
			return StrValue{Val: strconv.FormatInt(i, 10)}, nil
		}
		return StrValue{Val: formatFloat(f, 64)}, nil
	}
	return nil, &ConversionError{From: from, To: target}
}

func truncateToInt(f float64) int64 {
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

func convertBool(b bool, target Kind) (Value, error) {
	n := 0
	if b {
		n = 1
	}
	switch target {
	case KindInt:
		return IntValue{Val: int64(n)}, nil
	case KindFloat:
		return FloatValue{Val: float32(n)}, nil
	case KindDouble:
		return DoubleValue{Val: float64(n)}, nil
	case KindStr:
		return StrValue{Val: strconv.FormatBool(b)}, nil
	}
	return nil, &ConversionError{From: KindBool, To: target}
}

func convertString(s string, target Kind) (Value, error) {
	text := strings.TrimSpace(s)
	switch target {
	case KindInt:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &ConversionError{From: KindStr, To: target, Detail: fmt.Sprintf("%q is not a whole number", s)}
		}
		return IntValue{Val: n}, nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, &ConversionError{From: KindStr, To: target, Detail: fmt.Sprintf("%q is not a number", s)}
		}
		return FloatValue{Val: float32(f)}, nil
	case KindDouble:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &ConversionError{From: KindStr, To: target, Detail: fmt.Sprintf("%q is not a number", s)}
		}
		return DoubleValue{Val: f}, nil
	case KindBool:
		switch strings.ToLower(text) {
		case "true", "1":
			return BoolValue{Val: true}, nil
		case "false", "0":
			return BoolValue{Val: false}, nil
		}
		return nil, &ConversionError{From: KindStr, To: target, Detail: fmt.Sprintf("%q is not true, false, 1 or 0", s)}
	}
	return nil, &ConversionError{From: KindStr, To: target}
}

// ToFloat64 widens any scalar to float64; it is the basis of truthiness and
// mixed arithmetic.
func ToFloat64(v Value) (float64, error) {
	switch val := v.(type) {
	case IntValue:
		return float64(val.Val), nil
	case FloatValue:
		return float64(val.Val), nil
	case DoubleValue:
		return val.Val, nil
	}
	converted, err := ConvertTo(v, KindDouble)
	if err != nil {
		return 0, err
	}
	return converted.(DoubleValue).Val, nil
}

// Truthy is the condition rule for if, while and the if expression: the
// value as a number is nonzero.
func Truthy(v Value) (bool, error) {
	f, err := ToFloat64(v)
	if err != nil {
		return false, err
	}
	return f != 0, nil
}

// Stringify renders a value the way print and println show it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case IntValue:
		return strconv.FormatInt(val.Val, 10)
	case StrValue:
		return val.Val
	case BoolValue:
		return strconv.FormatBool(val.Val)
	case FloatValue:
		return formatFloat(float64(val.Val), 32)
	case DoubleValue:
		return formatFloat(val.Val, 64)
	case *ArrayValue:
		return stringifyElements(val.Elements)
	case *ListValue:
		return stringifyElements(val.Elements)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func stringifyElements(elements []Value) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, el := range elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Stringify(el))
	}
	b.WriteByte(']')
	return b.String()
}

func formatFloat(f float64, bits int) string {
	return strconv.FormatFloat(f, 'f', -1, bits)
}
