package interpreter

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ecl/interpreter-go/pkg/driver"
)

type runResult struct {
	stdout string
	stderr string
	err    error
}

func runProgram(t *testing.T, text string) runResult {
	t.Helper()
	return runProgramWithInput(t, text, "")
}

func runProgramWithInput(t *testing.T, text, input string) runResult {
	t.Helper()
	interp := New()
	var out, errOut bytes.Buffer
	interp.SetOutput(&out)
	interp.SetErrorOutput(&errOut)
	interp.SetInput(strings.NewReader(input))
	err := interp.Run(driver.NewSource("main.ecl", text))
	return runResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func expectOutput(t *testing.T, text, want string) {
	t.Helper()
	res := runProgram(t, text)
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.stdout != want {
		t.Fatalf("expected output %q, got %q", want, res.stdout)
	}
}

func expectRuntimeError(t *testing.T, res runResult) driver.Diagnostic {
	t.Helper()
	var rtErr *RuntimeError
	if !errors.As(res.err, &rtErr) {
		t.Fatalf("expected runtime error, got %v", res.err)
	}
	return rtErr.Diagnostic
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestPrintlnVariable(t *testing.T) {
	expectOutput(t, "var x = 10; println(x);", "10\n")
}

func TestRangeLoopPrintsOnOneLine(t *testing.T) {
	expectOutput(t, "for i in 0..3 { print(i); }", "012\n")
}

func TestPrintBuffering(t *testing.T) {
	expectOutput(t, `print("a"); print("b"); println("c"); print("d")`, "abc\nd\n")
	expectOutput(t, `print("a"); println()`, "a\n")
}

func TestStringConcatenation(t *testing.T) {
	expectOutput(t, `println("a" + "b")`, "ab\n")
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"println(10 - 2 - 3)", "5\n"},
		{"println(2 * 3 + 1)", "7\n"},
		{"println(7 / 2)", "3.5\n"},
		{"println(5 / 0)", "0\n"},
		{"println(1.5 + 1)", "2.5\n"},
		{"println(float(1) + 1)", "2\n"},
		{"println(3 < 4)", "true\n"},
		{"println(3 == 3.0)", "true\n"},
		{"println(0..3)", "[0, 1, 2]\n"},
	}
	for _, tc := range cases {
		expectOutput(t, tc.source, tc.want)
	}
}

func TestIntOverflowWidensToDouble(t *testing.T) {
	expectOutput(t, "var x = 3037000500 * 3037000500\nprintln(x)", "9223372037000250000\n")
	expectOutput(t, "println(4611686018427387904 + 4611686018427387904)", "9223372036854776000\n")
	expectOutput(t, "println(3037000499 * 3037000499)", "9223372030926249001\n")
}

func TestExactIntArithmetic(t *testing.T) {
	cases := []struct {
		op     string
		lv, rv int64
		want   int64
		ok     bool
	}{
		{"+", math.MaxInt64, 1, 0, false},
		{"+", math.MinInt64, -1, 0, false},
		{"+", -5, 3, -2, true},
		{"-", math.MinInt64, 1, 0, false},
		{"-", math.MaxInt64, -1, 0, false},
		{"-", 0, math.MinInt64, 0, false},
		{"-", -1, math.MinInt64, math.MaxInt64, true},
		{"*", math.MinInt64, 1, math.MinInt64, true},
		{"*", math.MinInt64, -1, 0, false},
		{"*", 1 << 32, 1 << 31, 0, false},
		{"*", -(1 << 32), 1 << 31, math.MinInt64, true},
		{"*", -7, 6, -42, true},
		{"*", 0, math.MinInt64, 0, true},
	}
	for _, tc := range cases {
		got, ok := exactIntArithmetic(tc.op, tc.lv, tc.rv)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("%d %s %d = (%d, %v), want (%d, %v)", tc.lv, tc.op, tc.rv, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLargeLoopBoundIsIteratedLazily(t *testing.T) {
	expectOutput(t, `
func first(n) {
  for i in n { return i }
  return 99
}
var n = 1000000000
println(first(n))
println(first(0))
`, "0\n99\n")
}

func TestRangeBoundTakesArithmetic(t *testing.T) {
	expectOutput(t, "var n = 2\nfor i in 0..n+1 { print(i) }", "012\n")
}

func TestConversionsTruncate(t *testing.T) {
	expectOutput(t, "println(int(3.9))\nprintln(int(-3.9))", "3\n-3\n")
	expectOutput(t, `println(int("12") + 1)`, "13\n")
	expectOutput(t, `println(str(4) + "2")`, "42\n")
	expectOutput(t, `println(bool("TRUE"))`, "true\n")
}

func TestConversionFailureIsPositioned(t *testing.T) {
	res := runProgram(t, `println(int("abc"))`)
	diag := expectRuntimeError(t, res)
	if !strings.HasPrefix(diag.Message, `ConversionError: "int" conversion failed`) {
		t.Fatalf("unexpected message %q", diag.Message)
	}
	if diag.Location.Line != 1 || diag.Location.Column != 9 {
		t.Fatalf("expected 1:9, got %d:%d", diag.Location.Line, diag.Location.Column)
	}
}

func TestMixedOperandsAreTypeErrors(t *testing.T) {
	res := runProgram(t, `println(1 + "x")`)
	diag := expectRuntimeError(t, res)
	if diag.Message != `TypeError: operator "+" cannot combine Int and Str` {
		t.Fatalf("unexpected message %q", diag.Message)
	}
	if diag.Location.Column != 11 {
		t.Fatalf("expected the operator column, got %d", diag.Location.Column)
	}
}

func TestUndefinedIdentifierCaretCoversName(t *testing.T) {
	res := runProgram(t, "println(foo)")
	diag := expectRuntimeError(t, res)
	if diag.Message != `UndefinedIdentifier: "foo" is not defined` {
		t.Fatalf("unexpected message %q", diag.Message)
	}
	if driver.CaretSpan(diag.Message) != 3 {
		t.Fatalf("expected caret span 3, got %d", driver.CaretSpan(diag.Message))
	}
	rendered := driver.DescribeDiagnostic(diag)
	if !strings.Contains(rendered, "1 | println(foo)\n  |         ^^^\n") {
		t.Fatalf("unexpected rendering:\n%s", rendered)
	}
	if diag.Suggestion != "did you mean to declare this variable?" {
		t.Fatalf("unexpected suggestion %q", diag.Suggestion)
	}
}

func TestArrayDeclarationPadsWithZeroValues(t *testing.T) {
	expectOutput(t, "var <int> a[5] = {1, 2}\nprintln(a)", "[1, 2, 0, 0, 0]\n")
	expectOutput(t, `var <str> s[3] = "x"`+"\nprintln(s)", "[x, x, x]\n")
	expectOutput(t, "var <double> d[2] = {1, 2, 3}\nprintln(d)", "[1, 2]\n")
	expectOutput(t, "var <bool> flags = {1, 0}\nprintln(flags)", "[true, false]\n")
}

func TestArrayElementTypeIsEnforced(t *testing.T) {
	res := runProgram(t, `var <int> a[2] = {1, "x"}`)
	diag := expectRuntimeError(t, res)
	if !strings.HasPrefix(diag.Message, `TypeError: element 1 of array "a" must be int`) {
		t.Fatalf("unexpected message %q", diag.Message)
	}

	expectOutput(t, "var <int> b[2] = 0\nb[1] = \"7\"\nprintln(b)", "[0, 7]\n")
}

func TestIndexAssignmentOutOfBounds(t *testing.T) {
	res := runProgram(t, "var<int> a[3] = {1,2,3}; a[5] = 9;")
	diag := expectRuntimeError(t, res)
	if diag.Message != `IndexError: index 5 is out of bounds for "a" of length 3` {
		t.Fatalf("unexpected message %q", diag.Message)
	}
	if diag.Location.Line != 1 || diag.Location.Column != 26 {
		t.Fatalf("expected 1:26, got %d:%d", diag.Location.Line, diag.Location.Column)
	}
	if diag.Help == "" || diag.Example != "a[2] = value" {
		t.Fatalf("expected help and example, got %q / %q", diag.Help, diag.Example)
	}
}

func TestIndexAccessOutOfBounds(t *testing.T) {
	for _, idx := range []string{"3", "4", "100"} {
		res := runProgram(t, "var items = {1, 2, 3}\nprintln(items["+idx+"])")
		diag := expectRuntimeError(t, res)
		if !strings.HasPrefix(diag.Message, "IndexError: index "+idx) {
			t.Fatalf("unexpected message %q", diag.Message)
		}
		if diag.Example != "items[2]" {
			t.Fatalf("unexpected example %q", diag.Example)
		}
	}
	expectOutput(t, "var items = {1, 2, 3}\nprintln(items[2.9])\nprintln(items[-1])", "3\n1\n")
}

func TestListsHoldMixedValues(t *testing.T) {
	expectOutput(t, "var xs = {1, \"a\", true}\nxs[1] = 2.5\nfor x in xs { print(x) }", "12.5true\n")
}

func TestTypedVariablesCoerce(t *testing.T) {
	expectOutput(t, "var <int> n = 3.7; println(n); n = \"12\"; println(n)", "3\n12\n")

	res := runProgram(t, "var <int> n = 1\nn = \"abc\"")
	diag := expectRuntimeError(t, res)
	if !strings.HasPrefix(diag.Message, `TypeError: cannot assign to "n" declared as int`) {
		t.Fatalf("unexpected message %q", diag.Message)
	}
	if diag.Location.Line != 2 {
		t.Fatalf("expected line 2, got %d", diag.Location.Line)
	}
}

func TestWhileAndIf(t *testing.T) {
	expectOutput(t, "var i = 0\nwhile (i < 3) { i = i + 1 }\nprintln(i)", "3\n")
	expectOutput(t, "if (0) { println(\"yes\") } else { println(\"no\") }", "no\n")
	expectOutput(t, `println(if (1 > 2) {"big"} else {"small"})`, "small\n")
}

func TestRangeHeaderIgnoresArguments(t *testing.T) {
	expectOutput(t, "for i in range(2, 4) { print(i) }", "0123456789\n")
}

func TestForLoopOverNumericBound(t *testing.T) {
	expectOutput(t, "var n = 3\nfor i in n { print(i) }", "012\n")
}

func TestFunctionsUseTheirOwnScope(t *testing.T) {
	expectOutput(t, `var x = 1
func f() { var x = 2; return x }
println(f())
println(x)`, "2\n1\n")

	expectOutput(t, `var count = 0
func bump() { count = count + 1 }
bump()
bump()
println(count)`, "2\n")
}

func TestRecursion(t *testing.T) {
	expectOutput(t, `func fact(n) {
  if (n <= 1) { return 1 }
  return n * fact(n - 1)
}
println(fact(5))`, "120\n")
}

func TestExprDefinitions(t *testing.T) {
	res := runProgram(t, "expr area(w: double, h: double) { return w * h }\nprintln(area(2, 3))")
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.stdout != "6\n" {
		t.Fatalf("expected 6, got %q", res.stdout)
	}
}

func TestRecursionLimit(t *testing.T) {
	res := runProgram(t, "func spin(n) { return spin(n + 1) }\nspin(0)")
	diag := expectRuntimeError(t, res)
	if !strings.HasPrefix(diag.Message, `RecursionError: calling "spin"`) {
		t.Fatalf("unexpected message %q", diag.Message)
	}
}

func TestCallErrorsAreWarnings(t *testing.T) {
	res := runProgram(t, "foo(1)\nprintln(\"after\")")
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.stdout != "after\n" {
		t.Fatalf("expected program to continue, got %q", res.stdout)
	}
	if !strings.Contains(res.stderr, `warning: CallError: function "foo" is not defined`) {
		t.Fatalf("expected warning, got %q", res.stderr)
	}

	res = runProgram(t, "func add(a, b) { return a + b }\nprintln(add(1))")
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.stdout != "0\n" {
		t.Fatalf("expected skipped call to yield 0, got %q", res.stdout)
	}
	if !strings.Contains(res.stderr, `function "add" expects 2 arguments but got 1`) {
		t.Fatalf("expected arity warning, got %q", res.stderr)
	}
}

func TestTopLevelReturnStopsProgram(t *testing.T) {
	expectOutput(t, "println(1)\nreturn;\nprintln(2)", "1\n")
}

func TestPendingOutputFlushedBeforeError(t *testing.T) {
	res := runProgram(t, "print(\"partial\")\nprintln(missing)")
	if res.err == nil {
		t.Fatalf("expected error")
	}
	if res.stdout != "partial\n" {
		t.Fatalf("expected flushed output, got %q", res.stdout)
	}
}

func TestInputStoresNumbersAsDouble(t *testing.T) {
	res := runProgramWithInput(t, `input("n? ", n)
input("name? ", who)
println(n + 1)
println(who)`, "42\nbob\n")
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.stdout != "n? name? 43\nbob\n" {
		t.Fatalf("unexpected output %q", res.stdout)
	}
}

func TestInputAtEOFIsEmpty(t *testing.T) {
	res := runProgramWithInput(t, "input(\"? \", s)\nprintln(s + \"!\")", "")
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.stdout != "? !\n" {
		t.Fatalf("unexpected output %q", res.stdout)
	}
}

func TestImportSharesDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib.ecl"), "func twice(x) { return x * 2 }\nvar greeting = \"hi\"\n")
	writeFile(t, filepath.Join(dir, "main.ecl"), "import \"lib\"\nprintln(twice(21))\nprintln(greeting)\n")

	src, err := driver.ReadSource(filepath.Join(dir, "main.ecl"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	interp := New()
	var out bytes.Buffer
	interp.SetOutput(&out)
	if err := interp.Run(src); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "42\nhi\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestImportErrorsArePositionedInImportedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib.ecl"), "println(missing)\n")
	writeFile(t, filepath.Join(dir, "main.ecl"), "import lib\n")

	src, err := driver.ReadSource(filepath.Join(dir, "main.ecl"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	interp := New()
	interp.SetOutput(&bytes.Buffer{})
	diag := expectRuntimeError(t, runResult{err: interp.Run(src)})
	if filepath.Base(diag.Location.Path) != "lib.ecl" || diag.Location.Line != 1 {
		t.Fatalf("expected lib.ecl:1, got %s:%d", diag.Location.Path, diag.Location.Line)
	}
}

func TestMissingImport(t *testing.T) {
	res := runProgram(t, `import "nope_does_not_exist"`)
	diag := expectRuntimeError(t, res)
	if !strings.HasPrefix(diag.Message, `ImportError: cannot read "nope_does_not_exist"`) {
		t.Fatalf("unexpected message %q", diag.Message)
	}
	if diag.Location.Line != 1 || diag.Location.Column != 8 {
		t.Fatalf("expected 1:8, got %d:%d", diag.Location.Line, diag.Location.Column)
	}
}

func TestImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.ecl"), "import \"b\"\n")
	writeFile(t, filepath.Join(dir, "b.ecl"), "import \"a\"\n")

	src, err := driver.ReadSource(filepath.Join(dir, "a.ecl"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	diag := expectRuntimeError(t, runResult{err: New().Run(src)})
	if diag.Message != `ImportError: "a" is already being imported` {
		t.Fatalf("unexpected message %q", diag.Message)
	}
}

func TestImportUsesLoaderSearchPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "deps", "util.ecl"), "var answer = 42\n")
	loader, err := driver.NewLoader([]driver.SearchPath{{Path: filepath.Join(root, "deps"), Kind: driver.RootDependency}})
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	interp := New()
	interp.SetLoader(loader)
	var out bytes.Buffer
	interp.SetOutput(&out)
	if err := interp.Run(driver.NewSource("<repl>", "import util\nprintln(answer)")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestSyntaxErrorRunsNothing(t *testing.T) {
	res := runProgram(t, "println(1)\nvar x")
	if res.err == nil {
		t.Fatalf("expected parse error")
	}
	if res.stdout != "" {
		t.Fatalf("expected no output, got %q", res.stdout)
	}
	var diagErr *driver.DiagnosticError
	if !errors.As(res.err, &diagErr) {
		t.Fatalf("expected diagnostic error, got %T", res.err)
	}
}
