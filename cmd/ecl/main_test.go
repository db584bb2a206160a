package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRunExecutesScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "hello.ecl")
	writeFile(t, script, `
var name = "world"
println("hello " + name)
for i in 0..3 { print(i) }
`)

	for _, args := range [][]string{{script}, {"run", script}} {
		code, stdout, stderr := captureCLI(t, args)
		if code != 0 {
			t.Fatalf("ecl %v exited %d (stderr: %q)", args, code, stderr)
		}
		if stdout != "hello world\n012\n" {
			t.Fatalf("ecl %v stdout = %q", args, stdout)
		}
		if stderr != "" {
			t.Fatalf("ecl %v stderr = %q", args, stderr)
		}
	}
}

func TestRunResolvesExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "greet.ecl"), `println("hi")`)

	code, stdout, stderr := captureCLI(t, []string{filepath.Join(dir, "greet")})
	if code != 0 || stdout != "hi\n" {
		t.Fatalf("ecl greet = %d %q (stderr: %q)", code, stdout, stderr)
	}
}

func TestRunReportsRuntimeDiagnostic(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.ecl")
	writeFile(t, script, `
print("partial")
println(foo)
`)

	code, stdout, stderr := captureCLI(t, []string{script})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if stdout != "partial\n" {
		t.Fatalf("pending output not flushed: %q", stdout)
	}
	for _, want := range []string{
		`UndefinedIdentifier: "foo" is not defined`,
		"--> " + script + ":2:9",
		"2 | println(foo)",
		"  |         ^^^",
		"= did you mean to declare this variable?",
	} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestRunReportsSyntaxError(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "broken.ecl")
	writeFile(t, script, `
println("never")
var = 3
`)

	code, stdout, stderr := captureCLI(t, []string{script})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if stdout != "" {
		t.Fatalf("syntax error should run nothing, got %q", stdout)
	}
	if !strings.Contains(stderr, "SyntaxError") || !strings.Contains(stderr, script+":2:") {
		t.Fatalf("unexpected stderr:\n%s", stderr)
	}
}

func TestRunMissingFile(t *testing.T) {
	code, _, stderr := captureCLI(t, []string{filepath.Join(t.TempDir(), "absent.ecl")})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "Error reading file") {
		t.Fatalf("unexpected stderr: %q", stderr)
	}
}

func TestCheckParsesWithoutRunning(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.ecl")
	writeFile(t, script, `println(undefinedName)`)

	code, stdout, stderr := captureCLI(t, []string{"check", script})
	if code != 0 {
		t.Fatalf("ecl check exited %d (stderr: %q)", code, stderr)
	}
	if stdout != "check: ok\n" {
		t.Fatalf("ecl check stdout = %q", stdout)
	}

	writeFile(t, script, `println("unterminated`)
	code, _, stderr = captureCLI(t, []string{"check", script})
	if code != 1 || stderr == "" {
		t.Fatalf("expected check failure, got %d %q", code, stderr)
	}
}

func TestCheckParsesImportedFiles(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.ecl")
	writeFile(t, script, `
import "util"
println(twice(2))
`)
	writeFile(t, filepath.Join(dir, "util.ecl"), `func twice(n) { return n * 2 }`)

	code, stdout, stderr := captureCLI(t, []string{"check", script})
	if code != 0 || stdout != "check: ok\n" {
		t.Fatalf("ecl check = %d %q (stderr: %q)", code, stdout, stderr)
	}

	writeFile(t, filepath.Join(dir, "util.ecl"), `func twice(n) { return n * }`)
	code, stdout, stderr = captureCLI(t, []string{"check", script})
	if code != 1 || stdout != "" {
		t.Fatalf("expected check failure, got %d %q", code, stdout)
	}
	if !strings.Contains(stderr, filepath.Join(dir, "util.ecl")+":1:") {
		t.Fatalf("expected a diagnostic inside util.ecl, got:\n%s", stderr)
	}
}

func TestLexPrintsTokens(t *testing.T) {
	code, stdout, stderr := captureCLI(t, []string{"--debug-lexer", "var x = 1;"})
	if code != 0 {
		t.Fatalf("ecl --debug-lexer exited %d (stderr: %q)", code, stderr)
	}
	if !strings.HasPrefix(stdout, "Debugging lexer for input: 'var x = 1;'\n") {
		t.Fatalf("missing header: %q", stdout)
	}
	for _, want := range []string{
		"Position: (1, 1), Token: ",
		`Token: Identifier("x")`,
		"Token: Number(1)",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected header plus six tokens, got %d lines:\n%s", len(lines), stdout)
	}
}

func TestLexReadsSourceFiles(t *testing.T) {
	script := filepath.Join(t.TempDir(), "tokens.ecl")
	writeFile(t, script, `println("a")`)

	code, stdout, _ := captureCLI(t, []string{"lex", script})
	if code != 0 {
		t.Fatalf("ecl lex exited %d", code)
	}
	if !strings.Contains(stdout, `Token: String("a")`) {
		t.Fatalf("expected string token, got:\n%s", stdout)
	}
}

func TestVersionAndUsage(t *testing.T) {
	code, stdout, _ := captureCLI(t, []string{"--version"})
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("version = %d %q", code, stdout)
	}

	code, stdout, _ = captureCLI(t, []string{"help"})
	if code != 0 || !strings.Contains(stdout, "ecl deps install") {
		t.Fatalf("usage = %d %q", code, stdout)
	}

	code, _, stderr := captureCLI(t, []string{"--bogus"})
	if code != 1 || !strings.Contains(stderr, "unknown flag --bogus") {
		t.Fatalf("unknown flag = %d %q", code, stderr)
	}
}

func TestRunUsesManifestMainAndSearchPaths(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, "ecl.yml"), `
name: demo
version: 0.1.0
main: src/main.ecl
search_paths:
  - lib
`)
	writeFile(t, filepath.Join(project, "lib", "helpers.ecl"), `
func greet(who) { return "hello " + who }
`)
	writeFile(t, filepath.Join(project, "src", "main.ecl"), `
import "helpers"
println(greet("demo"))
`)
	chdir(t, project)

	code, stdout, stderr := captureCLI(t, []string{"run"})
	if code != 0 {
		t.Fatalf("ecl run exited %d (stderr: %q)", code, stderr)
	}
	if stdout != "hello demo\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestRunWithoutManifestRequiresFile(t *testing.T) {
	chdir(t, t.TempDir())
	code, _, stderr := captureCLI(t, []string{"run"})
	if code != 1 || !strings.Contains(stderr, "requires a source file") {
		t.Fatalf("ecl run = %d %q", code, stderr)
	}
}

func TestCollectSearchPathsOrder(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, "ecl.yml"), `
name: demo
search_paths: [vendor]
`)
	writeFile(t, filepath.Join(project, "vendor", "x.ecl"), `var x = 1`)
	extra := t.TempDir()
	t.Setenv("ECL_PATH", extra)

	manifest, err := loadManifestFrom(project)
	if err != nil {
		t.Fatalf("loadManifestFrom: %v", err)
	}
	paths := collectSearchPaths(manifest, nil)
	if len(paths) != 3 {
		t.Fatalf("expected three search paths, got %#v", paths)
	}
	if filepath.Clean(paths[0].Path) != filepath.Clean(project) {
		t.Fatalf("project root should come first: %#v", paths)
	}
	if !containsSearchPath(paths, filepath.Join(project, "vendor")) || !containsSearchPath(paths, extra) {
		t.Fatalf("missing search paths: %#v", paths)
	}
}
