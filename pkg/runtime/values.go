package runtime

import (
	"fmt"

	"ecl/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInt Kind = iota
	KindStr
	KindBool
	KindFloat
	KindDouble
	KindArray
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindStr:
		return "Str"
	case KindBool:
		return "Bool"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindArray:
		return "Array"
	case KindList:
		return "List"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// IsNumeric reports whether values of this kind take part in arithmetic.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat || k == KindDouble
}

// KindFromTypeName maps a source type name onto its value kind.
func KindFromTypeName(name ast.TypeName) (Kind, bool) {
	switch name {
	case ast.TypeInt:
		return KindInt, true
	case ast.TypeStr:
		return KindStr, true
	case ast.TypeBool:
		return KindBool, true
	case ast.TypeFloat:
		return KindFloat, true
	case ast.TypeDouble:
		return KindDouble, true
	default:
		return 0, false
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type IntValue struct {
	Val int64
}

func (v IntValue) Kind() Kind { return KindInt }

type StrValue struct {
	Val string
}

func (v StrValue) Kind() Kind { return KindStr }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

// FloatValue is the 32-bit floating point variant.
type FloatValue struct {
	Val float32
}

func (v FloatValue) Kind() Kind { return KindFloat }

type DoubleValue struct {
	Val float64
}

func (v DoubleValue) Kind() Kind { return KindDouble }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

// ArrayValue has a fixed length and every element has ElementType.
type ArrayValue struct {
	ElementType Kind
	Elements    []Value
}

func (v *ArrayValue) Kind() Kind { return KindArray }

// ListValue is a growable, heterogeneous sequence.
type ListValue struct {
	Elements []Value
}

func (v *ListValue) Kind() Kind { return KindList }

// Clone copies collections so that bindings never alias each other.
// Scalars are returned unchanged.
func Clone(v Value) Value {
	switch val := v.(type) {
	case *ArrayValue:
		out := &ArrayValue{ElementType: val.ElementType, Elements: make([]Value, len(val.Elements))}
		for i, el := range val.Elements {
			out.Elements[i] = Clone(el)
		}
		return out
	case *ListValue:
		out := &ListValue{Elements: make([]Value, len(val.Elements))}
		for i, el := range val.Elements {
			out.Elements[i] = Clone(el)
		}
		return out
	default:
		return v
	}
}

// ZeroValue is the padding value used for unfilled array slots.
func ZeroValue(kind Kind) Value {
	switch kind {
	case KindInt:
		return IntValue{}
	case KindStr:
		return StrValue{}
	case KindBool:
		return BoolValue{}
	case KindFloat:
		return FloatValue{}
	case KindDouble:
		return DoubleValue{}
	case KindArray:
		return &ArrayValue{}
	default:
		return &ListValue{}
	}
}
