package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ecl/interpreter-go/pkg/driver"
	"ecl/interpreter-go/pkg/interpreter"
	"ecl/interpreter-go/pkg/lexer"
)

const cliToolVersion = "ecl-cli 0.1.0-dev"

var errManifestNotFound = errors.New("ecl.yml not found")

type executionMode int

const (
	modeRun executionMode = iota
	modeCheck
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runRepl(nil)
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "check":
		return runCheck(args[1:])
	case "lex", "--debug-lexer":
		return runLex(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(os.Stderr, "unknown flag %s\n", args[0])
			printUsage(os.Stderr)
			return 1
		}
		return runEntry(args)
	}
}

func runEntry(args []string) int {
	return runEntryWithMode(args, modeRun)
}

func runCheck(args []string) int {
	return runEntryWithMode(args, modeCheck)
}

func runEntryWithMode(args []string, mode executionMode) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	if len(args) == 0 {
		manifest, err := loadManifestFrom(".")
		if err != nil {
			if errors.Is(err, errManifestNotFound) {
				fmt.Fprintf(os.Stderr, "%s requires a source file (ecl.yml not found)\n", modeCommandLabel(mode))
				return 1
			}
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			return 1
		}
		entry := manifest.MainPath()
		if entry == "" {
			fmt.Fprintf(os.Stderr, "manifest %s does not set main\n", manifest.Path)
			return 1
		}
		lock, err := loadLockfileForManifest(manifest)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		return executeEntry(entry, manifest, lock, mode)
	}

	entry := args[0]
	entryPath, err := driver.ResolveSourcePath(entry, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", entry, err)
		return 1
	}

	var manifest *driver.Manifest
	if manifestPath, findErr := findManifest(filepath.Dir(entryPath)); findErr == nil {
		m, loadErr := driver.LoadManifest(manifestPath)
		if loadErr != nil {
			fmt.Fprintf(os.Stderr, "failed to read manifest for %s: %v\n", entry, loadErr)
			return 1
		}
		manifest = m
	} else if !errors.Is(findErr, errManifestNotFound) {
		fmt.Fprintf(os.Stderr, "failed to locate manifest for %s: %v\n", entry, findErr)
		return 1
	}

	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return executeEntry(entryPath, manifest, lock, mode)
}

func executeEntry(entry string, manifest *driver.Manifest, lock *driver.Lockfile, mode executionMode) int {
	src, err := driver.ReadSource(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", entry, err)
		return 1
	}

	loader, err := driver.NewLoader(collectSearchPaths(manifest, lock))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize loader: %v\n", err)
		return 1
	}

	if mode == modeCheck {
		mod, err := driver.ParseSource(src)
		if err == nil {
			err = loader.CheckImports(mod)
		}
		if err != nil {
			reportError(os.Stderr, src, err)
			return 1
		}
		fmt.Fprintln(os.Stdout, "check: ok")
		return 0
	}

	interp := interpreter.New()
	interp.SetLoader(loader)
	if err := interp.Run(src); err != nil {
		reportError(os.Stderr, src, err)
		return 1
	}
	return 0
}

// reportError prints err as a formatted diagnostic.
func reportError(w io.Writer, src *driver.Source, err error) {
	fmt.Fprint(w, driver.DescribeDiagnostic(driver.AsDiagnostic(src, err)))
}

// collectSearchPaths orders import roots: the project directories from the
// manifest, then installed dependencies from the lockfile.
func collectSearchPaths(manifest *driver.Manifest, lock *driver.Lockfile) []driver.SearchPath {
	var paths []driver.SearchPath
	add := func(path string, kind driver.RootKind) {
		if path == "" {
			return
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			return
		}
		paths = append(paths, driver.SearchPath{Path: path, Kind: kind})
	}
	for _, root := range manifest.ImportRoots() {
		add(root, driver.RootUser)
	}
	for _, dir := range lock.PackageDirs() {
		add(dir, driver.RootDependency)
	}
	for _, part := range splitPathListEnv(os.Getenv("ECL_PATH")) {
		add(part, driver.RootUser)
	}
	return paths
}

func splitPathListEnv(value string) []string {
	if value == "" {
		return nil
	}
	raw := strings.Split(value, string(os.PathListSeparator))
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// runLex prints the token stream of a file or of the argument text itself.
func runLex(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "ecl lex requires a source file or source text")
		return 1
	}
	input := args[0]
	if strings.HasSuffix(input, driver.SourceExtension) {
		data, err := os.ReadFile(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", input, err)
			return 1
		}
		input = string(data)
	}

	fmt.Fprintf(os.Stdout, "Debugging lexer for input: '%s'\n", input)
	lx := lexer.New(input)
	for {
		pos := lx.Position()
		tok := lx.NextToken()
		fmt.Fprintf(os.Stdout, "Position: %s, Token: %s\n", pos, tok)
		if tok.Kind == lexer.EOF {
			return 0
		}
	}
}

func modeCommandLabel(mode executionMode) string {
	switch mode {
	case modeCheck:
		return "ecl check"
	default:
		return "ecl run"
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  ecl                       start the interactive shell")
	fmt.Fprintln(w, "  ecl <file>                run a script")
	fmt.Fprintln(w, "  ecl run [file]            run a script, or the manifest main")
	fmt.Fprintln(w, "  ecl check <file>          parse a script without running it")
	fmt.Fprintln(w, "  ecl lex <file|source>     print the token stream")
	fmt.Fprintln(w, "  ecl repl                  start the interactive shell")
	fmt.Fprintln(w, "  ecl deps install          install dependencies from ecl.yml")
	fmt.Fprintln(w, "  ecl deps update [name...] refresh locked dependencies")
	fmt.Fprintln(w, "  ecl version               print the tool version")
}
