// Command ecma5 is the CLI entrypoint: a script runner when given a file
// argument, an interactive REPL otherwise. It only talks to the core
// through script.Context's public ABI, the same boundary internal/hostext
// and pkg/embed use.
//
// Grounded on funvibe-funxy/cmd/funxy/main.go for the file-args shape (the
// first argument is read as a source file path as given; there is no
// extension check and "-" is not treated as stdin) and
// sentra-language-sentra/internal/repl/repl.go for the bufio.Scanner
// prompt-loop REPL shape used by the interactive mode.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/apfeltee/ecma5go/internal/engineconfig"
	"github.com/apfeltee/ecma5go/internal/script"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := engineconfig.Default()
	cfg.PrintLastThrow = true
	cfg.WarnHook = func(msg string) { fmt.Fprintln(os.Stderr, "warning:", msg) }

	if len(args) > 0 {
		return runFile(cfg, args[0])
	}
	return runREPL(cfg)
}

// runFile evaluates the named source file as a whole Input and returns the
// process exit code: 0 success, 1 uncaught exception (including a
// parse-time SyntaxError, which EvalInput reports the same way a runtime
// throw is).
func runFile(cfg engineconfig.Config, path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cs := script.Create(cfg)
	defer cs.Destroy()

	_, code := cs.EvalInput(path, string(src))
	return int(code)
}

// runREPL is a line-at-a-time read-eval-print loop, one script.Context
// shared across lines so `var`/function declarations from an earlier line
// remain visible: each line extends the same running program, the way a
// single long-lived Context treats a whole script run as one Input.
func runREPL(cfg engineconfig.Config) int {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	cfg.StringResult = true
	cfg.PrintLastThrow = false

	cs := script.Create(cfg)
	defer cs.Destroy()

	scanner := bufio.NewScanner(os.Stdin)
	lineNo := 0
	for {
		if interactive {
			fmt.Print("ecma5> ")
		}
		if !scanner.Scan() {
			break
		}
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		result, code := cs.EvalInput(fmt.Sprintf("<repl:%d>", lineNo), line)
		if code == script.ExitThrew {
			fmt.Fprintln(os.Stderr, "Uncaught:", cs.RawContext().ToString(result))
			continue
		}
		fmt.Println(cs.RawContext().ToString(result))
	}
	return 0
}
