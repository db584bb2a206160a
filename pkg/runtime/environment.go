package runtime

import (
	"fmt"
	"sync"
)

type binding struct {
	value    Value
	declared Kind
	typed    bool
}

// Environment is one scope of ECL variables. Calls get a fresh scope whose
// parent is the global scope; lookups walk the parent chain.
type Environment struct {
	values map[string]*binding
	parent *Environment
	mu     sync.RWMutex
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]*binding),
		parent: parent,
	}
}

// Parent exposes the enclosing scope (nil when global).
func (e *Environment) Parent() *Environment {
	e.mu.RLock()
	parent := e.parent
	e.mu.RUnlock()
	return parent
}

// Define binds name in the current scope without a declared type. A type
// declared earlier for the same name in this scope is kept.
func (e *Environment) Define(name string, value Value) {
	e.mu.Lock()
	if existing, ok := e.values[name]; ok {
		existing.value = value
	} else {
		e.values[name] = &binding{value: value}
	}
	e.mu.Unlock()
}

// DefineTyped binds name in the current scope and records its declared type.
func (e *Environment) DefineTyped(name string, value Value, declared Kind) {
	e.mu.Lock()
	e.values[name] = &binding{value: value, declared: declared, typed: true}
	e.mu.Unlock()
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	if scope := e.Resolve(name); scope != nil {
		scope.mu.Lock()
		scope.values[name].value = value
		scope.mu.Unlock()
		return nil
	}
	return fmt.Errorf("Undefined variable '%s'", name)
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	if b, ok := e.lookup(name); ok {
		return b.value, nil
	}
	return nil, fmt.Errorf("Undefined variable '%s'", name)
}

// DeclaredType reports the type a name was declared with, if any.
func (e *Environment) DeclaredType(name string) (Kind, bool) {
	if b, ok := e.lookup(name); ok && b.typed {
		return b.declared, true
	}
	return 0, false
}

// Resolve returns the scope that holds name, or nil.
func (e *Environment) Resolve(name string) *Environment {
	for scope := e; scope != nil; scope = scope.Parent() {
		if scope.HasInCurrentScope(name) {
			return scope
		}
	}
	return nil
}

// lookup returns a copy of the binding for name.
func (e *Environment) lookup(name string) (binding, bool) {
	scope := e.Resolve(name)
	if scope == nil {
		return binding{}, false
	}
	scope.mu.RLock()
	defer scope.mu.RUnlock()
	b, ok := scope.values[name]
	if !ok {
		return binding{}, false
	}
	return *b, true
}

// Has reports whether the binding exists anywhere in the scope chain.
func (e *Environment) Has(name string) bool {
	return e.Resolve(name) != nil
}

// HasInCurrentScope reports whether the binding exists in the current scope.
func (e *Environment) HasInCurrentScope(name string) bool {
	e.mu.RLock()
	_, ok := e.values[name]
	e.mu.RUnlock()
	return ok
}
