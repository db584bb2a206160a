package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"ecl/interpreter-go/pkg/driver"
	"ecl/interpreter-go/pkg/interpreter"
)

const (
	promptMain    = "ecl> "
	promptCont    = "...> "
	historyFile   = ".ecl_history"
	replSourceTag = "<repl>"
	clearScreen   = "\x1B[2J\x1B[1;1H"
)

// lineReader is the part of liner.State the shell loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type replSession struct {
	reader  lineReader
	out     io.Writer
	errOut  io.Writer
	history []string
	paths   []driver.SearchPath
}

func runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "ecl repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}

	var paths []driver.SearchPath
	if manifest, err := loadManifestFrom("."); err == nil {
		lock, _ := loadLockfileForManifest(manifest)
		paths = collectSearchPaths(manifest, lock)
	} else {
		paths = collectSearchPaths(nil, nil)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	var histPath string
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	session := &replSession{reader: ln, out: os.Stdout, errOut: os.Stderr, paths: paths}
	return session.loop()
}

func (s *replSession) loop() int {
	s.printBanner()
	for {
		line, err := s.reader.Prompt(promptMain)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(s.out)
			return 0
		}
		if err != nil {
			fmt.Fprintf(s.errOut, "Error reading input: %v\n", err)
			return 1
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "{{" {
			code, ok := s.readBlock()
			if !ok {
				fmt.Fprintln(s.out)
				return 0
			}
			if code != "" {
				s.remember(code)
				s.execute(code)
			}
			continue
		}

		input = balanceDelimiters(input)
		s.remember(input)
		switch input {
		case "exit", "quit":
			fmt.Fprintln(s.out, "Goodbye!")
			return 0
		case "help":
			s.printHelp()
		case "history":
			s.printHistory()
		case "clear":
			fmt.Fprint(s.out, clearScreen)
		default:
			s.execute(input)
		}
	}
}

// readBlock collects lines until "}}". It reports false when input ends
// before the block is closed.
func (s *replSession) readBlock() (string, bool) {
	fmt.Fprintln(s.out, "Entering multiline mode. Type '}}' to execute.")
	var b strings.Builder
	for {
		line, err := s.reader.Prompt(promptCont)
		if err != nil {
			return "", false
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "}}" {
			return strings.TrimSpace(b.String()), true
		}
		b.WriteString(trimmed)
		b.WriteByte('\n')
	}
}

func (s *replSession) remember(entry string) {
	s.history = append(s.history, entry)
	s.reader.AppendHistory(strings.ReplaceAll(entry, "\n", " "))
}

// execute runs code on a fresh interpreter. Failures are reported and the
// session continues.
func (s *replSession) execute(code string) {
	src := driver.NewSource(replSourceTag, code)
	interp := interpreter.New()
	interp.SetOutput(s.out)
	interp.SetErrorOutput(s.errOut)
	if loader, err := driver.NewLoader(s.paths); err == nil {
		interp.SetLoader(loader)
	}
	if err := interp.Run(src); err != nil {
		reportError(s.errOut, src, err)
	}
}

// balanceDelimiters appends the closing parentheses and braces a single
// line leaves open.
func balanceDelimiters(input string) string {
	parens, braces := 0, 0
	for _, ch := range input {
		switch ch {
		case '(':
			parens++
		case ')':
			parens--
		case '{':
			braces++
		case '}':
			braces--
		}
	}
	var b strings.Builder
	b.WriteString(input)
	for ; parens > 0; parens-- {
		b.WriteByte(')')
	}
	for ; braces > 0; braces-- {
		b.WriteByte('}')
	}
	return b.String()
}

func (s *replSession) printBanner() {
	fmt.Fprintln(s.out, "ECL interactive shell")
	fmt.Fprintln(s.out, "Type 'help' for help, 'exit' to quit. Use '{{' to start multiline input, '}}' to run it.")
}

func (s *replSession) printHelp() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  help     show this help message")
	fmt.Fprintln(s.out, "  history  show command history")
	fmt.Fprintln(s.out, "  clear    clear the screen")
	fmt.Fprintln(s.out, "  exit     leave the shell")
	fmt.Fprintln(s.out, "  {{       start multiline input")
	fmt.Fprintln(s.out, "  }}       run multiline input")
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Examples:")
	fmt.Fprintln(s.out, "  ecl> var x = 42;")
	fmt.Fprintln(s.out, "  ecl> println(x);")
	fmt.Fprintln(s.out, "  ecl> for i in 1..3 { print(i); }")
}

func (s *replSession) printHistory() {
	if len(s.history) == 0 {
		fmt.Fprintln(s.out, "No history")
		return
	}
	fmt.Fprintln(s.out, "Command history:")
	for i, entry := range s.history {
		fmt.Fprintf(s.out, "  %3d: %s\n", i+1, entry)
	}
}
