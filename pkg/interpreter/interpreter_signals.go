package interpreter

import "ecl/interpreter-go/pkg/runtime"

// returnSignal unwinds a function body. A nil value means a bare return.
type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string {
	return "return"
}
