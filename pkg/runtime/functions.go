package runtime

import (
	"sync"

	"ecl/interpreter-go/pkg/ast"
)

// Function is a user definition from a func or expr statement.
type Function struct {
	Name   string
	Params []string
	// TypeHints is parallel to Params; entries are empty when no hint was
	// written. Hints are informational and not checked at call time.
	TypeHints []ast.TypeName
	Body      []ast.Statement
	IsExpr    bool
	// Origin is the path of the file that defined the function.
	Origin string
}

// Arity is the number of declared parameters.
func (f *Function) Arity() int { return len(f.Params) }

// FunctionTable maps names to definitions. The last definition wins.
type FunctionTable struct {
	mu    sync.RWMutex
	funcs map[string]*Function
}

func NewFunctionTable() *FunctionTable {
	return &FunctionTable{funcs: make(map[string]*Function)}
}

func (t *FunctionTable) Define(fn *Function) {
	t.mu.Lock()
	t.funcs[fn.Name] = fn
	t.mu.Unlock()
}

func (t *FunctionTable) Lookup(name string) (*Function, bool) {
	t.mu.RLock()
	fn, ok := t.funcs[name]
	t.mu.RUnlock()
	return fn, ok
}

// FromDefinition converts a func statement into a table entry.
func FromDefinition(def *ast.FunctionDefinition, origin string) *Function {
	return &Function{
		Name:      def.Name,
		Params:    append([]string(nil), def.Params...),
		TypeHints: make([]ast.TypeName, len(def.Params)),
		Body:      def.Body,
		Origin:    origin,
	}
}

// FromExprDefinition converts an expr statement into a table entry.
func FromExprDefinition(def *ast.ExprDefinition, origin string) *Function {
	fn := &Function{
		Name:      def.Name,
		Params:    make([]string, len(def.Params)),
		TypeHints: make([]ast.TypeName, len(def.Params)),
		Body:      def.Body,
		IsExpr:    true,
		Origin:    origin,
	}
	for i, p := range def.Params {
		fn.Params[i] = p.Name
		fn.TypeHints[i] = p.TypeHint
	}
	return fn
}
