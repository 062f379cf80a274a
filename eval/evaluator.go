package eval

import (
	"github.com/clang/cl/ast"
	"github.com/clang/cl/token"
)

// Evaluator is CL's co-resident type/scope checker and tree-walk
// evaluator: evaluation performs type checking as it proceeds (spec §4.3).
// Its shape — a struct owning a frame chain plus one eval/exec function
// per AST construct — follows the teacher's Evaluator+Env idiom, simplified
// to plain recursive Go calls since CL needs no CPS trampoline, no
// continuations, and no macros.
type Evaluator struct {
	arena     *Arena
	global    int
	builtins  map[string]Builtin
	out       func(string)
	callDepth int // >0 while executing inside a function body; return is illegal at 0 (spec §4.2/§7)
}

// NewEvaluator constructs an evaluator with the builtin function table
// installed in the global frame, mirroring the teacher's "install
// primitives into the global environment at construction time" pattern.
// out receives text written by print/println.
func NewEvaluator(out func(string)) *Evaluator {
	arena := NewArena()
	global := arena.PushGlobal()
	ev := &Evaluator{arena: arena, global: global, builtins: map[string]Builtin{}, out: out}
	for _, b := range builtinTable() {
		ev.builtins[b.Name] = b
	}
	return ev
}

func (ev *Evaluator) isReservedName(name string) bool {
	_, ok := ev.builtins[name]
	return ok
}

// Run type-checks and executes every top-level declaration/statement in
// program, in source order, against the global frame.
func (ev *Evaluator) Run(program *ast.Program) error {
	for _, decl := range program.Decls {
		if err := ev.execTopLevel(decl); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) execTopLevel(decl ast.Decl) error {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		return ev.declareFunc(ev.global, d)
	case *ast.ClassDecl:
		return unsupportedClassSyntax(d.Pos())
	default:
		if stmt, ok := decl.(ast.Stmt); ok {
			_, _, err := ev.execStmt(ev.global, stmt)
			return err
		}
		return &TypeMismatch{Msg: "unrecognized top-level construct"}
	}
}

// unsupportedClassSyntax rejects the aspirational class extension point
// (spec §9): it is parsed into an AST node but never executed.
func unsupportedClassSyntax(pos token.Position) error {
	return &InvalidType{Name: "class"}
}

func (ev *Evaluator) declareFunc(frame int, d *ast.FuncDecl) error {
	if ev.isReservedName(d.Name) {
		return &NameConflict{Msg: "'" + d.Name + "' is already a built-in function"}
	}
	fn := &Function{
		Name:          d.Name,
		RetType:       KindFromTypeToken(d.RetType),
		Params:        d.Params,
		Body:          d.Body,
		DefiningFrame: frame,
	}
	return ev.arena.DeclareFunction(frame, fn)
}

// execStmt executes one statement within frame, returning (returned,
// value, err): returned is true iff a `return` was reached, in which case
// value carries the returned value (VoidValue for a bare "return;").
// stmtUnwrapper is implemented by wrapper statements (e.g. ast.StmtDecl,
// which wraps top-level statements) that carry an inner concrete statement node.
type stmtUnwrapper interface {
	Unwrap() ast.Stmt
}

func (ev *Evaluator) execStmt(frame int, stmt ast.Stmt) (bool, Value, error) {
	for {
		if u, ok := stmt.(stmtUnwrapper); ok {
			stmt = u.Unwrap()
			continue
		}
		break
	}
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return false, Value{}, ev.execVarDecl(frame, s)
	case *ast.AssignStmt:
		return false, Value{}, ev.execAssign(frame, s)
	case *ast.ExprStmt:
		_, err := ev.evalExpr(frame, s.X)
		return false, Value{}, err
	case *ast.Block:
		child := ev.arena.PushChild(frame)
		return ev.execBlock(child, s)
	case *ast.If:
		return ev.execIf(frame, s)
	case *ast.While:
		return ev.execWhile(frame, s)
	case *ast.Return:
		return ev.execReturn(frame, s)
	default:
		return false, Value{}, &TypeMismatch{Msg: "unrecognized statement"}
	}
}

func (ev *Evaluator) execBlock(frame int, block *ast.Block) (bool, Value, error) {
	for _, stmt := range block.Stmts {
		returned, val, err := ev.execStmt(frame, stmt)
		if err != nil {
			return false, Value{}, err
		}
		if returned {
			return true, val, nil
		}
	}
	return false, Value{}, nil
}

func (ev *Evaluator) execVarDecl(frame int, d *ast.VarDecl) error {
	if ev.isReservedName(d.Name) {
		return &NameConflict{Msg: "'" + d.Name + "' is already a built-in function"}
	}
	if isFn, exists := ev.arena.ExistsInFrame(frame, d.Name); exists && isFn {
		return &NameConflict{Msg: "'" + d.Name + "' is already declared as a function in this scope"}
	}
	declType := KindFromTypeToken(d.Type)
	slot := &ValueSlot{DeclaredType: declType}
	if d.Init != nil {
		v, err := ev.evalExpr(frame, d.Init)
		if err != nil {
			return err
		}
		if v.Kind != declType {
			return &TypeMismatch{Msg: "cannot initialize " + declType.String() + " with " + v.Kind.String()}
		}
		slot.Value = v
		slot.Initialized = true
	}
	return ev.arena.DeclareValue(frame, d.Name, slot)
}

func (ev *Evaluator) execAssign(frame int, s *ast.AssignStmt) error {
	if ev.arena.IsFunctionName(frame, s.Name) {
		return &NameConflict{Msg: "'" + s.Name + "' is a function, not assignable"}
	}
	slot, ok := ev.arena.LookupValue(frame, s.Name)
	if !ok {
		return &VariableNotFound{Name: s.Name}
	}
	v, err := ev.evalExpr(frame, s.Expr)
	if err != nil {
		return err
	}
	if v.Kind != slot.DeclaredType {
		return &TypeMismatch{Msg: "cannot assign " + v.Kind.String() + " to " + slot.DeclaredType.String()}
	}
	slot.Value = v
	slot.Initialized = true
	return nil
}

func (ev *Evaluator) execIf(frame int, s *ast.If) (bool, Value, error) {
	for _, branch := range s.Branches {
		cond, err := ev.evalExpr(frame, branch.Cond)
		if err != nil {
			return false, Value{}, err
		}
		if cond.Kind != KindBool {
			return false, Value{}, &TypeMismatch{Msg: "if condition must be bool, got " + cond.Kind.String()}
		}
		if cond.B {
			child := ev.arena.PushChild(frame)
			return ev.execBlock(child, branch.Body)
		}
	}
	if s.Else != nil {
		child := ev.arena.PushChild(frame)
		return ev.execBlock(child, s.Else)
	}
	return false, Value{}, nil
}

func (ev *Evaluator) execWhile(frame int, s *ast.While) (bool, Value, error) {
	for {
		cond, err := ev.evalExpr(frame, s.Cond)
		if err != nil {
			return false, Value{}, err
		}
		if cond.Kind != KindBool {
			return false, Value{}, &TypeMismatch{Msg: "while condition must be bool, got " + cond.Kind.String()}
		}
		if !cond.B {
			return false, Value{}, nil
		}
		child := ev.arena.PushChild(frame)
		returned, val, err := ev.execBlock(child, s.Body)
		if err != nil {
			return false, Value{}, err
		}
		if returned {
			return true, val, nil
		}
	}
}

func (ev *Evaluator) execReturn(frame int, s *ast.Return) (bool, Value, error) {
	if ev.callDepth == 0 {
		return false, Value{}, &IllegalReturn{}
	}
	if s.Result == nil {
		return true, VoidValue(), nil
	}
	v, err := ev.evalExpr(frame, s.Result)
	if err != nil {
		return false, Value{}, err
	}
	return true, v, nil
}

func (ev *Evaluator) evalExpr(frame int, expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return IntValue(e.Value), nil
	case *ast.FloatLit:
		return FloatValue(e.Value), nil
	case *ast.StringLit:
		return StringValue(e.Value), nil
	case *ast.BoolLit:
		return BoolValue(e.Value), nil
	case *ast.Identifier:
		return ev.evalIdentifier(frame, e)
	case *ast.UnaryExpr:
		return ev.evalUnary(frame, e)
	case *ast.BinaryExpr:
		return ev.evalBinary(frame, e)
	case *ast.CallExpr:
		return ev.evalCall(frame, e)
	case *ast.MethodCall, *ast.FieldAccess, *ast.New:
		return Value{}, unsupportedClassSyntax(expr.Pos())
	default:
		return Value{}, &TypeMismatch{Msg: "unrecognized expression"}
	}
}

func (ev *Evaluator) evalIdentifier(frame int, e *ast.Identifier) (Value, error) {
	if ev.arena.IsFunctionName(frame, e.Name) {
		return Value{}, &TypeMismatch{Msg: "'" + e.Name + "' is a function, not a value"}
	}
	slot, ok := ev.arena.LookupValue(frame, e.Name)
	if !ok {
		return Value{}, &VariableNotFound{Name: e.Name}
	}
	if !slot.Initialized {
		return Value{}, &VariableUninitialized{Name: e.Name}
	}
	return slot.Value, nil
}

func (ev *Evaluator) evalUnary(frame int, e *ast.UnaryExpr) (Value, error) {
	v, err := ev.evalExpr(frame, e.X)
	if err != nil {
		return Value{}, err
	}
	return applyUnary(e.Op, v)
}

func (ev *Evaluator) evalBinary(frame int, e *ast.BinaryExpr) (Value, error) {
	left, err := ev.evalExpr(frame, e.Left)
	if err != nil {
		return Value{}, err
	}
	// Short-circuit: the right operand is not evaluated once the left
	// operand already determines the result (spec §4.3).
	if e.Op == token.AND {
		if left.Kind != KindBool {
			return Value{}, &IllegalOperation{Msg: "&& not defined for " + left.Kind.String()}
		}
		if !left.B {
			return BoolValue(false), nil
		}
		right, err := ev.evalExpr(frame, e.Right)
		if err != nil {
			return Value{}, err
		}
		if right.Kind != KindBool {
			return Value{}, &IllegalOperation{Msg: "&& not defined for " + right.Kind.String()}
		}
		return BoolValue(right.B), nil
	}
	if e.Op == token.OR {
		if left.Kind != KindBool {
			return Value{}, &IllegalOperation{Msg: "|| not defined for " + left.Kind.String()}
		}
		if left.B {
			return BoolValue(true), nil
		}
		right, err := ev.evalExpr(frame, e.Right)
		if err != nil {
			return Value{}, err
		}
		if right.Kind != KindBool {
			return Value{}, &IllegalOperation{Msg: "|| not defined for " + right.Kind.String()}
		}
		return BoolValue(right.B), nil
	}

	right, err := ev.evalExpr(frame, e.Right)
	if err != nil {
		return Value{}, err
	}
	if _, err := resolveBinaryType(left.Kind, e.Op, right.Kind); err != nil {
		return Value{}, err
	}
	return applyBinary(e.Op, left, right)
}

func (ev *Evaluator) evalCall(frame int, e *ast.CallExpr) (Value, error) {
	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		v, err := ev.evalExpr(frame, a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	if b, ok := ev.builtins[e.Callee]; ok {
		if len(args) != len(b.Params) {
			return Value{}, &IllegalArgumentCount{Count: len(args)}
		}
		for i, pk := range b.Params {
			if args[i].Kind != pk {
				return Value{}, &TypeMismatch{Msg: "argument " + formatInt(int64(i+1)) + " to " + e.Callee + " must be " + pk.String()}
			}
		}
		return b.Impl(args, ev.out)
	}

	fn, ok := ev.arena.LookupFunction(frame, e.Callee)
	if !ok {
		if _, isVal := ev.arena.LookupValue(frame, e.Callee); isVal {
			return Value{}, &TypeMismatch{Msg: "'" + e.Callee + "' is a value, not a function"}
		}
		return Value{}, &VariableNotFound{Name: e.Callee}
	}
	return ev.callFunction(fn, args)
}

func (ev *Evaluator) callFunction(fn *Function, args []Value) (Value, error) {
	if len(args) != len(fn.Params) {
		return Value{}, &IllegalArgumentCount{Count: len(args)}
	}
	callFrame := ev.arena.PushCall(fn.DefiningFrame)
	for i, p := range fn.Params {
		paramKind := KindFromTypeToken(p.Type)
		if args[i].Kind != paramKind {
			return Value{}, &TypeMismatch{Msg: "argument '" + p.Name + "' must be " + paramKind.String()}
		}
		if err := ev.arena.DeclareValue(callFrame, p.Name, &ValueSlot{
			DeclaredType: paramKind,
			Initialized:  true,
			Value:        args[i],
		}); err != nil {
			return Value{}, err
		}
	}
	ev.callDepth++
	returned, val, err := ev.execBlock(callFrame, fn.Body)
	ev.callDepth--
	if err != nil {
		return Value{}, err
	}
	if returned {
		if fn.RetType == KindVoid {
			if val.Kind != KindVoid {
				return Value{}, &TypeMismatch{Msg: "void function '" + fn.Name + "' returned a value"}
			}
			return VoidValue(), nil
		}
		if val.Kind != fn.RetType {
			return Value{}, &TypeMismatch{Msg: "'" + fn.Name + "' must return " + fn.RetType.String()}
		}
		return val, nil
	}
	if fn.RetType != KindVoid {
		return Value{}, &TypeMismatch{Msg: "'" + fn.Name + "' falls off the end without returning " + fn.RetType.String()}
	}
	return VoidValue(), nil
}
