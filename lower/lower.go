// Package lower walks a type-checked CL AST once and emits a single C
// translation unit that calls the frozen runtime ABI described in spec
// §4.4/§4.5.
//
// The emission style — one emit* function per AST construct, building the
// output with strings.Builder the way a compiler emits one function per
// instruction or basic block — follows
// tinyrange-ccomp/internal/codegen/x86_64/emit.go; the per-node dispatch
// shape more specifically mirrors sergev-gisp/parser/compile.go's
// compile* functions, adapted from a Scheme target to a C text target.
// Early return needed none of compile.go's call/cc trick: C already has a
// native return statement, so CL's Return lowers straight to it.
package lower

import (
	"fmt"
	"strings"

	"github.com/clang/cl/ast"
	"github.com/clang/cl/eval"
	"github.com/clang/cl/token"
)

const runtimeHeader = "cl_runtime.h"

// Lower emits a complete C translation unit for prog. The caller is
// expected to have already run the checker (e.g. via eval.RunSource with
// output discarded) so that prog is known to be well-typed; Lower still
// returns an error for constructs it cannot emit (unsupported class
// syntax, or an internal inconsistency that means the checker was
// skipped).
func Lower(prog *ast.Program) (string, error) {
	l := &lowerer{}
	return l.lowerProgram(prog)
}

type lowerer struct {
	protos       []string
	funcs        []string
	funcRetKinds map[string]eval.Kind
}

func (l *lowerer) lowerProgram(prog *ast.Program) (string, error) {
	l.funcRetKinds = map[string]eval.Kind{}
	var mainStmts []ast.Stmt

	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			l.funcRetKinds[d.Name] = eval.KindFromTypeToken(d.RetType)
		case *ast.ClassDecl:
			return "", &eval.InvalidType{Name: "class"}
		}
	}

	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if err := l.lowerFuncDecl(d); err != nil {
				return "", err
			}
		case *ast.ClassDecl:
			return "", &eval.InvalidType{Name: "class"}
		default:
			stmt, ok := decl.(ast.Stmt)
			if !ok {
				return "", fmt.Errorf("cannot lower top-level construct %T", decl)
			}
			mainStmts = append(mainStmts, unwrapStmt(stmt))
		}
	}

	mainBody, err := l.lowerMain(mainStmts)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	fmt.Fprintf(&out, "#include \"%s\"\n\n", runtimeHeader)
	for _, p := range l.protos {
		out.WriteString(p)
		out.WriteString(";\n")
	}
	if len(l.protos) > 0 {
		out.WriteString("\n")
	}
	for _, f := range l.funcs {
		out.WriteString(f)
		out.WriteString("\n\n")
	}
	out.WriteString(mainBody)
	return out.String(), nil
}

type stmtUnwrapper interface {
	Unwrap() ast.Stmt
}

func unwrapStmt(s ast.Stmt) ast.Stmt {
	for {
		u, ok := s.(stmtUnwrapper)
		if !ok {
			return s
		}
		s = u.Unwrap()
	}
}

// cType maps a CL Kind to its C spelling, per spec §4.4.
func cType(k eval.Kind) string {
	switch k {
	case eval.KindInt:
		return "int"
	case eval.KindFloat:
		return "double"
	case eval.KindString:
		return "rt_string"
	case eval.KindBool:
		return "bool"
	default:
		return "void"
	}
}

// scope is one lexical block's set of local C variable types, used to
// recover each identifier's Kind during emission. Scopes are searched
// innermost-first within a single function; CL functions are never
// nested (spec §4.2 only recognizes function declarations at the top
// level), so unlike eval.Arena, lowering needs no function-crossing
// ancestor rule — a function's own parameter/local scopes are all there
// is to search, and top-level globals are simply never visible inside one,
// matching the evaluator's behavior for the same reason.
type scope struct {
	vars map[string]eval.Kind
}

type funcCtx struct {
	scopes  []*scope
	retType eval.Kind
}

func (fc *funcCtx) push() {
	fc.scopes = append(fc.scopes, &scope{vars: map[string]eval.Kind{}})
}

func (fc *funcCtx) pop() {
	fc.scopes = fc.scopes[:len(fc.scopes)-1]
}

func (fc *funcCtx) declare(name string, k eval.Kind) {
	fc.scopes[len(fc.scopes)-1].vars[name] = k
}

func (fc *funcCtx) lookup(name string) (eval.Kind, bool) {
	for i := len(fc.scopes) - 1; i >= 0; i-- {
		if k, ok := fc.scopes[i].vars[name]; ok {
			return k, true
		}
	}
	return 0, false
}

func (l *lowerer) lowerFuncDecl(d *ast.FuncDecl) error {
	retType := eval.KindFromTypeToken(d.RetType)
	fc := &funcCtx{retType: retType}
	fc.push()

	var params []string
	for _, p := range d.Params {
		pk := eval.KindFromTypeToken(p.Type)
		fc.declare(p.Name, pk)
		params = append(params, cType(pk)+" "+p.Name)
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	sig := fmt.Sprintf("%s %s(%s)", cType(retType), d.Name, strings.Join(params, ", "))
	l.protos = append(l.protos, sig)

	var body strings.Builder
	fmt.Fprintf(&body, "%s {\n", sig)
	if err := l.lowerBlockInto(&body, fc, d.Body, 1); err != nil {
		return err
	}
	body.WriteString("}")
	l.funcs = append(l.funcs, body.String())
	fc.pop()
	return nil
}

func (l *lowerer) lowerMain(stmts []ast.Stmt) (string, error) {
	fc := &funcCtx{retType: eval.KindVoid}
	fc.push()
	var body strings.Builder
	body.WriteString("int main(void) {\n")
	for _, s := range stmts {
		if err := l.lowerStmt(&body, fc, s, 1); err != nil {
			return "", err
		}
	}
	body.WriteString(indent(1) + "return 0;\n}\n")
	return body.String(), nil
}

func indent(depth int) string {
	return strings.Repeat("    ", depth)
}

func (l *lowerer) lowerBlockInto(out *strings.Builder, fc *funcCtx, block *ast.Block, depth int) error {
	fc.push()
	defer fc.pop()
	for _, s := range block.Stmts {
		if err := l.lowerStmt(out, fc, s, depth); err != nil {
			return err
		}
	}
	return nil
}

func (l *lowerer) lowerStmt(out *strings.Builder, fc *funcCtx, stmt ast.Stmt, depth int) error {
	stmt = unwrapStmt(stmt)
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return l.lowerVarDecl(out, fc, s, depth)
	case *ast.AssignStmt:
		expr, _, err := l.lowerExpr(fc, s.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s%s = %s;\n", indent(depth), s.Name, expr)
		return nil
	case *ast.ExprStmt:
		expr, _, err := l.lowerExpr(fc, s.X)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s%s;\n", indent(depth), expr)
		return nil
	case *ast.Block:
		out.WriteString(indent(depth) + "{\n")
		if err := l.lowerBlockInto(out, fc, s, depth+1); err != nil {
			return err
		}
		out.WriteString(indent(depth) + "}\n")
		return nil
	case *ast.If:
		return l.lowerIf(out, fc, s, depth)
	case *ast.While:
		return l.lowerWhile(out, fc, s, depth)
	case *ast.Return:
		return l.lowerReturn(out, fc, s, depth)
	default:
		return fmt.Errorf("cannot lower statement %T", stmt)
	}
}

func (l *lowerer) lowerVarDecl(out *strings.Builder, fc *funcCtx, d *ast.VarDecl, depth int) error {
	k := eval.KindFromTypeToken(d.Type)
	fc.declare(d.Name, k)
	if d.Init == nil {
		fmt.Fprintf(out, "%s%s %s;\n", indent(depth), cType(k), d.Name)
		return nil
	}
	expr, _, err := l.lowerExpr(fc, d.Init)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s%s %s = %s;\n", indent(depth), cType(k), d.Name, expr)
	return nil
}

func (l *lowerer) lowerIf(out *strings.Builder, fc *funcCtx, s *ast.If, depth int) error {
	for i, branch := range s.Branches {
		cond, _, err := l.lowerExpr(fc, branch.Cond)
		if err != nil {
			return err
		}
		kw := "if"
		if i > 0 {
			kw = "} else if"
		}
		fmt.Fprintf(out, "%s%s (%s) {\n", indent(depth), kw, cond)
		if err := l.lowerBlockInto(out, fc, branch.Body, depth+1); err != nil {
			return err
		}
	}
	if s.Else != nil {
		out.WriteString(indent(depth) + "} else {\n")
		if err := l.lowerBlockInto(out, fc, s.Else, depth+1); err != nil {
			return err
		}
	}
	out.WriteString(indent(depth) + "}\n")
	return nil
}

func (l *lowerer) lowerWhile(out *strings.Builder, fc *funcCtx, s *ast.While, depth int) error {
	cond, _, err := l.lowerExpr(fc, s.Cond)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%swhile (%s) {\n", indent(depth), cond)
	if err := l.lowerBlockInto(out, fc, s.Body, depth+1); err != nil {
		return err
	}
	out.WriteString(indent(depth) + "}\n")
	return nil
}

func (l *lowerer) lowerReturn(out *strings.Builder, fc *funcCtx, s *ast.Return, depth int) error {
	if s.Result == nil {
		out.WriteString(indent(depth) + "return;\n")
		return nil
	}
	expr, _, err := l.lowerExpr(fc, s.Result)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%sreturn %s;\n", indent(depth), expr)
	return nil
}

// abiOpName maps a binary operator token to its rt_operator_<op> name
// fragment, per spec §4.4.
func abiOpName(op token.Type) (string, bool) {
	switch op {
	case token.PLUS:
		return "add", true
	case token.MINUS:
		return "sub", true
	case token.STAR:
		return "mul", true
	case token.SLASH:
		return "div", true
	case token.EQ:
		return "eq", true
	case token.NEQ:
		return "ne", true
	case token.LT:
		return "lt", true
	case token.GT:
		return "gt", true
	case token.LE:
		return "le", true
	case token.GE:
		return "ge", true
	}
	return "", false
}

// lowerExpr emits a C expression fragment for e and returns its CL Kind
// alongside it, so callers that need the type (e.g. to pick the correct
// rt_operator_* suffix one level up) don't need a second pass.
func (l *lowerer) lowerExpr(fc *funcCtx, expr ast.Expr) (string, eval.Kind, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("%d", e.Value), eval.KindInt, nil
	case *ast.FloatLit:
		return fmt.Sprintf("%g", e.Value), eval.KindFloat, nil
	case *ast.StringLit:
		return cStringLiteral(e.Value), eval.KindString, nil
	case *ast.BoolLit:
		if e.Value {
			return "true", eval.KindBool, nil
		}
		return "false", eval.KindBool, nil
	case *ast.Identifier:
		k, ok := fc.lookup(e.Name)
		if !ok {
			return "", 0, &eval.VariableNotFound{Name: e.Name}
		}
		return e.Name, k, nil
	case *ast.UnaryExpr:
		return l.lowerUnary(fc, e)
	case *ast.BinaryExpr:
		return l.lowerBinary(fc, e)
	case *ast.CallExpr:
		return l.lowerCall(fc, e)
	case *ast.MethodCall, *ast.FieldAccess, *ast.New:
		return "", 0, &eval.InvalidType{Name: "class"}
	default:
		return "", 0, fmt.Errorf("cannot lower expression %T", expr)
	}
}

func (l *lowerer) lowerUnary(fc *funcCtx, e *ast.UnaryExpr) (string, eval.Kind, error) {
	operand, k, err := l.lowerExpr(fc, e.X)
	if err != nil {
		return "", 0, err
	}
	if e.Op != token.BANG || k != eval.KindBool {
		return "", 0, &eval.IllegalOperation{Msg: "! not defined for " + k.String()}
	}
	return "!(" + operand + ")", eval.KindBool, nil
}

func (l *lowerer) lowerBinary(fc *funcCtx, e *ast.BinaryExpr) (string, eval.Kind, error) {
	left, lk, err := l.lowerExpr(fc, e.Left)
	if err != nil {
		return "", 0, err
	}
	right, rk, err := l.lowerExpr(fc, e.Right)
	if err != nil {
		return "", 0, err
	}

	// Short-circuit operators compile to native C && / ||, not calls,
	// per spec §4.4.
	if e.Op == token.AND {
		return "(" + left + " && " + right + ")", eval.KindBool, nil
	}
	if e.Op == token.OR {
		return "(" + left + " || " + right + ")", eval.KindBool, nil
	}

	opName, ok := abiOpName(e.Op)
	if !ok {
		return "", 0, &eval.IllegalOperation{Msg: "unknown operator"}
	}
	symbol := fmt.Sprintf("rt_operator_%s_%s_%s", opName, lk.String(), rk.String())
	resultKind := eval.KindBool
	switch e.Op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		if lk == eval.KindInt && rk == eval.KindInt {
			resultKind = eval.KindInt
		} else if lk == eval.KindString && rk == eval.KindString {
			resultKind = eval.KindString
		} else {
			resultKind = eval.KindFloat
		}
	}
	return fmt.Sprintf("%s(%s, %s)", symbol, left, right), resultKind, nil
}

func (l *lowerer) lowerCall(fc *funcCtx, e *ast.CallExpr) (string, eval.Kind, error) {
	argExprs := make([]string, len(e.Args))
	for i, a := range e.Args {
		expr, _, err := l.lowerExpr(fc, a)
		if err != nil {
			return "", 0, err
		}
		argExprs[i] = expr
	}

	if retKind, ok := builtinReturnKind(e.Callee); ok {
		symbol := "rt_builtin_" + e.Callee
		return fmt.Sprintf("%s(%s)", symbol, strings.Join(argExprs, ", ")), retKind, nil
	}

	retKind, ok := l.funcRetKinds[e.Callee]
	if !ok {
		return "", 0, &eval.VariableNotFound{Name: e.Callee}
	}
	return fmt.Sprintf("%s(%s)", e.Callee, strings.Join(argExprs, ", ")), retKind, nil
}

// builtinReturnKind gives each of spec §4.3's 14 builtins its return Kind,
// mirroring eval.builtinTable without depending on its unexported details.
func builtinReturnKind(name string) (eval.Kind, bool) {
	switch name {
	case "print", "println":
		return eval.KindVoid, true
	case "boolToString", "intToString", "floatToString":
		return eval.KindString, true
	case "stringToBool", "intToBool", "floatToBool":
		return eval.KindBool, true
	case "stringToInt", "boolToInt", "floatToInt":
		return eval.KindInt, true
	case "stringToFloat", "boolToFloat", "intToFloat":
		return eval.KindFloat, true
	}
	return 0, false
}

// cStringLiteral renders a CL string literal as a C99 compound literal of
// rt_string, matching the runtime's { char data[512]; unsigned short len; }
// layout (spec §4.4) without calling into the runtime at all.
func cStringLiteral(s string) string {
	if len(s) > 511 {
		s = s[:511]
	}
	return fmt.Sprintf("(rt_string){ .data = %s, .len = %d }", quoteC(s), len(s))
}

func quoteC(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
