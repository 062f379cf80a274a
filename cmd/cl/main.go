// Command cl is the CL language front end: `cl run <file>` interprets a
// source file, `cl compile <file> -o out.c` lowers it to C against the
// fixed runtime ABI, and bare `cl` opens a REPL. Grounded throughout on
// sergev-gisp/main.go's argv dispatch and REPL loop, re-targeted from
// s-expressions to CL's line-oriented statement source.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/clang/cl/eval"
	"github.com/clang/cl/lower"
	"github.com/clang/cl/parser"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		runREPL()
		return
	}

	switch args[0] {
	case "run":
		os.Exit(runCmd(args[1:]))
	case "compile":
		os.Exit(compileCmd(args[1:]))
	default:
		// No subcommand recognized: treat the bare invocation as "run" on
		// the first argument, so `cl file.cl` keeps working too.
		os.Exit(runCmd(args))
	}
}

func runCmd(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: cl run <file.cl>")
		return 2
	}
	data, err := readFileSkippingShebang(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	out := func(s string) { fmt.Print(s) }
	if err := eval.RunSource(string(data), out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func compileCmd(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	outPath := fs.String("o", "", "output C file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	// flag stops at the first positional argument; keep parsing after it
	// so that "-o" may follow the source file.
	var positional []string
	for fs.NArg() > 0 {
		positional = append(positional, fs.Arg(0))
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return 2
		}
	}
	if len(positional) != 1 {
		fmt.Fprintln(os.Stderr, "usage: cl compile <file.cl> -o out.c")
		return 2
	}
	src := positional[0]
	data, err := readFileSkippingShebang(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	prog, err := parser.Parse(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Check-only pass: run the co-resident checker/evaluator with output
	// discarded, so compile mode surfaces the same diagnostics a `run`
	// would without printing anything (spec §9).
	if err := eval.NewEvaluator(func(string) {}).Run(prog); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	c, err := lower.Lower(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	dest := *outPath
	if dest == "" {
		dest = strings.TrimSuffix(src, filepath.Ext(src)) + ".c"
	}
	if err := os.WriteFile(dest, []byte(c), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func readFileSkippingShebang(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("#!")) {
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			return data[idx+1:], nil
		}
		return []byte{}, nil
	}
	return data, nil
}

func runREPL() {
	if !isInteractive() {
		runBufferedREPL(bufio.NewReader(os.Stdin), func(s string) { fmt.Print(s) })
		return
	}
	runInteractiveREPL()
}

// replIncomplete reports whether a parse/lex error means "the statement
// isn't finished yet, keep reading lines" rather than a real syntax error.
func replIncomplete(err error) bool {
	return parser.IsIncomplete(err)
}

// runBufferedREPL drives the non-interactive REPL loop (piped stdin, tests):
// evaluated output goes to out, diagnostics to stderr.
func runBufferedREPL(reader *bufio.Reader, out func(string)) {
	ev := eval.NewEvaluator(out)
	var buffer strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if buffer.Len() == 0 {
					return
				}
			} else {
				fmt.Fprintf(os.Stderr, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(line)
		src := buffer.String()
		prog, parseErr := parser.Parse(src)
		if parseErr != nil {
			if replIncomplete(parseErr) && !errors.Is(err, io.EOF) {
				continue
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", parseErr)
			buffer.Reset()
			if errors.Is(err, io.EOF) {
				return
			}
			continue
		}
		buffer.Reset()
		if evalErr := ev.Run(prog); evalErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", evalErr)
		}
		if errors.Is(err, io.EOF) {
			return
		}
	}
}

func runInteractiveREPL() {
	ev := eval.NewEvaluator(func(s string) { fmt.Print(s) })

	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var buffer strings.Builder

	for {
		prompt := "cl> "
		if buffer.Len() > 0 {
			prompt = "... "
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Println()
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Println()
				return
			default:
				fmt.Fprintf(os.Stderr, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		src := buffer.String()
		prog, parseErr := parser.Parse(src)
		if parseErr != nil {
			if replIncomplete(parseErr) {
				continue
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", parseErr)
			buffer.Reset()
			continue
		}

		buffer.Reset()
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			state.AppendHistory(trimmed)
		}
		if evalErr := ev.Run(prog); evalErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", evalErr)
		}
	}
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".cl_history")
}

func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
