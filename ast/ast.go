// Package ast defines CL's abstract syntax tree node types.
package ast

import "github.com/clang/cl/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a function or block body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression that produces a Value.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed CL source file.
type Program struct {
	Decls []Decl
}

func (p *Program) Pos() token.Position {
	if len(p.Decls) == 0 {
		return token.Position{}
	}
	return p.Decls[0].Pos()
}

// Param is one function/method parameter: a declared type and a name.
type Param struct {
	Type token.Type // a type keyword; the parser accepts token.VOID here too
	Name string
}

// FuncDecl declares a top-level function.
type FuncDecl struct {
	Name    string
	Params  []Param
	RetType token.Type // token.VOID for no return value
	Body    *Block
	Posn    token.Position
}

func (d *FuncDecl) Pos() token.Position { return d.Posn }
func (d *FuncDecl) declNode()           {}

// VarDecl declares a variable, optionally with an initializer.
// Implements both Decl (top-level) and Stmt (inside a function body).
type VarDecl struct {
	Type token.Type
	Name string
	Init Expr // nil if uninitialized
	Posn token.Position
}

func (d *VarDecl) Pos() token.Position { return d.Posn }
func (d *VarDecl) declNode()           {}
func (d *VarDecl) stmtNode()           {}

// ClassDecl is an unexecuted extension-point node (see spec §9): it is
// parsed but rejected by the checker the moment it is reached.
type ClassDecl struct {
	Name    string
	Fields  []Param
	Methods []*FuncDecl
	Posn    token.Position
}

func (d *ClassDecl) Pos() token.Position { return d.Posn }
func (d *ClassDecl) declNode()           {}

// StmtDecl lets any statement satisfy Decl at the top level.
type StmtDecl struct{ Stmt }

func (d *StmtDecl) declNode() {}

// Unwrap exposes the wrapped statement so consumers that only know the
// Stmt interface (such as the evaluator's statement dispatch) can
// recover the concrete node type without depending on this type.
func (d *StmtDecl) Unwrap() Stmt { return d.Stmt }

// Block is a brace-delimited statement sequence.
type Block struct {
	Stmts []Stmt
	Posn  token.Position
}

func (b *Block) Pos() token.Position { return b.Posn }
func (b *Block) stmtNode()           {}

// ExprStmt is a bare expression evaluated for its side effects.
type ExprStmt struct {
	X    Expr
	Posn token.Position
}

func (s *ExprStmt) Pos() token.Position { return s.Posn }
func (s *ExprStmt) stmtNode()           {}

// AssignStmt assigns a new value to an already-declared variable.
type AssignStmt struct {
	Name string
	Expr Expr
	Posn token.Position
}

func (s *AssignStmt) Pos() token.Position { return s.Posn }
func (s *AssignStmt) stmtNode()           {}

// Branch is one condition/body pair in an if/else-if chain.
type Branch struct {
	Cond Expr
	Body *Block
}

// If desugars an entire if / else-if / else chain into a flat branch list
// plus an optional trailing else block, per spec's AST shape.
type If struct {
	Branches []Branch
	Else     *Block // nil if there is no trailing else
	Posn     token.Position
}

func (s *If) Pos() token.Position { return s.Posn }
func (s *If) stmtNode()           {}

// While is a pretest loop.
type While struct {
	Cond Expr
	Body *Block
	Posn token.Position
}

func (s *While) Pos() token.Position { return s.Posn }
func (s *While) stmtNode()           {}

// Return exits the enclosing function, optionally carrying a value.
type Return struct {
	Result Expr // nil for a bare "return;"
	Posn   token.Position
}

func (s *Return) Pos() token.Position { return s.Posn }
func (s *Return) stmtNode()           {}

// Identifier references a variable or function name.
type Identifier struct {
	Name string
	Posn token.Position
}

func (e *Identifier) Pos() token.Position { return e.Posn }
func (e *Identifier) exprNode()           {}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Posn  token.Position
}

func (e *IntLit) Pos() token.Position { return e.Posn }
func (e *IntLit) exprNode()           {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Value float64
	Posn  token.Position
}

func (e *FloatLit) Pos() token.Position { return e.Posn }
func (e *FloatLit) exprNode()           {}

// StringLit is a string literal with escapes already decoded.
type StringLit struct {
	Value string
	Posn  token.Position
}

func (e *StringLit) Pos() token.Position { return e.Posn }
func (e *StringLit) exprNode()           {}

// BoolLit is a true/false literal.
type BoolLit struct {
	Value bool
	Posn  token.Position
}

func (e *BoolLit) Pos() token.Position { return e.Posn }
func (e *BoolLit) exprNode()           {}

// UnaryExpr is a prefix operator applied to a single operand.
type UnaryExpr struct {
	Op   token.Type // always token.BANG; the parser has no other unary operator
	X    Expr
	Posn token.Position
}

func (e *UnaryExpr) Pos() token.Position { return e.Posn }
func (e *UnaryExpr) exprNode()           {}

// BinaryExpr is an infix binary operator application.
type BinaryExpr struct {
	Op    token.Type
	Left  Expr
	Right Expr
	Posn  token.Position
}

func (e *BinaryExpr) Pos() token.Position { return e.Posn }
func (e *BinaryExpr) exprNode()           {}

// CallExpr invokes a named function with a fixed argument list.
type CallExpr struct {
	Callee string
	Args   []Expr
	Posn   token.Position
}

func (e *CallExpr) Pos() token.Position { return e.Posn }
func (e *CallExpr) exprNode()           {}

// MethodCall is an unexecuted extension-point node: receiver.Method(args).
type MethodCall struct {
	Receiver Expr
	Method   string
	Args     []Expr
	Posn     token.Position
}

func (e *MethodCall) Pos() token.Position { return e.Posn }
func (e *MethodCall) exprNode()           {}

// FieldAccess is an unexecuted extension-point node: receiver.Field.
type FieldAccess struct {
	Receiver Expr
	Field    string
	Posn     token.Position
}

func (e *FieldAccess) Pos() token.Position { return e.Posn }
func (e *FieldAccess) exprNode()           {}

// New is an unexecuted extension-point node: new ClassName(args).
type New struct {
	ClassName string
	Args      []Expr
	Posn      token.Position
}

func (e *New) Pos() token.Position { return e.Posn }
func (e *New) exprNode()           {}
