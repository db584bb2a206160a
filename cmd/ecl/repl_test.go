package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

type scriptedReader struct {
	lines   []string
	prompts []string
	history []string
}

func (r *scriptedReader) Prompt(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) AppendHistory(item string) {
	r.history = append(r.history, item)
}

func runScriptedRepl(lines ...string) (*scriptedReader, string, string, int) {
	reader := &scriptedReader{lines: lines}
	var out, errOut bytes.Buffer
	session := &replSession{reader: reader, out: &out, errOut: &errOut}
	code := session.loop()
	return reader, out.String(), errOut.String(), code
}

func TestBalanceDelimiters(t *testing.T) {
	cases := map[string]string{
		`println("hi"`:             `println("hi")`,
		`for i in 0..3 { print(i`:  `for i in 0..3 { print(i)}`,
		`println(1)`:               `println(1)`,
		`if (x > 1) { println(x) }`: `if (x > 1) { println(x) }`,
	}
	for input, want := range cases {
		if got := balanceDelimiters(input); got != want {
			t.Fatalf("balanceDelimiters(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestReplExecutesLinesOnFreshInterpreters(t *testing.T) {
	_, out, errOut, code := runScriptedRepl(
		`var x = 41`,
		`println(x + 1)`,
		`println("auto"`,
		"exit",
	)
	if code != 0 {
		t.Fatalf("repl exited %d", code)
	}
	if !strings.Contains(out, "auto\n") || !strings.HasSuffix(out, "Goodbye!\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	// Each snippet runs alone, so x is unknown on the second line.
	if !strings.Contains(errOut, `UndefinedIdentifier: "x" is not defined`) || !strings.Contains(errOut, "--> <repl>:1:9") {
		t.Fatalf("expected diagnostic for x, got:\n%s", errOut)
	}
}

func TestReplMultilineBlock(t *testing.T) {
	reader, out, errOut, code := runScriptedRepl(
		"{{",
		"var sum = 0",
		"for i in 1..5 { sum = sum + i }",
		"println(sum)",
		"}}",
		"quit",
	)
	if code != 0 || errOut != "" {
		t.Fatalf("repl = %d, stderr %q", code, errOut)
	}
	if !strings.Contains(out, "10\n") {
		t.Fatalf("expected block output, got:\n%s", out)
	}
	want := []string{promptMain, promptCont, promptCont, promptCont, promptCont, promptMain}
	if strings.Join(reader.prompts, "|") != strings.Join(want, "|") {
		t.Fatalf("prompts = %q", reader.prompts)
	}
	if len(reader.history) != 2 || !strings.Contains(reader.history[0], "println(sum)") {
		t.Fatalf("history = %q", reader.history)
	}
}

func TestReplHistoryAndCommands(t *testing.T) {
	_, out, _, code := runScriptedRepl(
		"history",
		`println(1)`,
		"history",
		"help",
		"clear",
	)
	if code != 0 {
		t.Fatalf("repl exited %d", code)
	}
	for _, want := range []string{
		"    1: history\n",
		"    2: println(1)\n",
		"    3: history\n",
		"Commands:",
		clearScreen,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestReplRejectsArguments(t *testing.T) {
	code, _, stderr := captureCLI(t, []string{"repl", "extra"})
	if code != 1 || !strings.Contains(stderr, "does not take arguments") {
		t.Fatalf("ecl repl extra = %d %q", code, stderr)
	}
}
