package eval

import "github.com/clang/cl/parser"

// RunSource parses and evaluates an entire CL source file, sending any
// print/println output to out. It is the convenience entry point cmd/cl's
// "run" mode and the package's own tests use end to end.
func RunSource(src string, out func(string)) error {
	prog, err := parser.Parse(src)
	if err != nil {
		return err
	}
	return NewEvaluator(out).Run(prog)
}
