package interpreter

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ecl/interpreter-go/pkg/ast"
	"ecl/interpreter-go/pkg/runtime"
)

// evaluateInput shows pending output and the prompt, then stores one line of
// input in the target: Double when it parses as a number, else Str.
func (i *Interpreter) evaluateInput(node *ast.InputStatement, env *runtime.Environment) error {
	prompt := ""
	if node.Prompt != nil {
		val, err := i.evaluateExpression(node.Prompt, env)
		if err != nil {
			return err
		}
		prompt = runtime.Stringify(val)
	}
	i.pending.WriteString(prompt)
	if i.pending.Len() > 0 {
		if _, err := fmt.Fprint(i.stdout, i.pending.String()); err != nil {
			return err
		}
		i.pending.Reset()
	}

	line, err := i.stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("input: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")

	var val runtime.Value = runtime.StrValue{Val: line}
	if f, err := strconv.ParseFloat(strings.TrimSpace(line), 64); err == nil {
		val = runtime.DoubleValue{Val: f}
	}
	return i.assign(node, node.Target, val, env)
}
