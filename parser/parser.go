// Package parser implements CL's recursive-descent parser: tokens in,
// *ast.Program out.
//
// The overall shape — a one-token-lookahead parser struct, a
// parseExpression precedence-climbing chain, and a peek-for-'=' trick to
// disambiguate expression statements from assignment statements — follows
// the teacher's parser.go; the declaration-dispatch rule (type keyword vs.
// identifier vs. control keyword) is CL's own, per spec §4.2.
package parser

import (
	"github.com/clang/cl/ast"
	"github.com/clang/cl/lexer"
	"github.com/clang/cl/token"
)

type parser struct {
	lx      *lexer.Lexer
	curr    token.Token
	peekTok token.Token
	hasPeek bool
}

// Parse lexes and parses an entire CL source file into a Program.
func Parse(src string) (*ast.Program, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func newParser(src string) (*parser, error) {
	p := &parser{lx: lexer.New(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func wrapLexErr(err error) error {
	if le, ok := err.(*lexer.Error); ok {
		return &Error{Pos: le.Pos, Msg: le.Msg, Incomplete: le.Incomplete}
	}
	return err
}

func (p *parser) advance() error {
	if p.hasPeek {
		p.curr = p.peekTok
		p.hasPeek = false
		return nil
	}
	tok, err := p.lx.Next()
	if err != nil {
		return wrapLexErr(err)
	}
	p.curr = tok
	return nil
}

func (p *parser) peek() (token.Token, error) {
	if !p.hasPeek {
		tok, err := p.lx.Next()
		if err != nil {
			return token.Token{}, wrapLexErr(err)
		}
		p.peekTok = tok
		p.hasPeek = true
	}
	return p.peekTok, nil
}

func (p *parser) expect(tt token.Type) (token.Token, error) {
	if p.curr.Type != tt {
		if p.curr.Type == token.EOF {
			return token.Token{}, newIncompleteError(p.curr.Pos, "expected %s, reached end of input", tt)
		}
		return token.Token{}, newError(p.curr.Pos, "expected %s, got %s %q", tt, p.curr.Type, p.curr.Lexeme)
	}
	t := p.curr
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

func (p *parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.curr.Type != token.EOF {
		decl, err := p.parseTopLevelDecl()
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog, nil
}

// parseTopLevelDecl dispatches a top-level production. A program is "a
// sequence of top-level statements" per spec §4.2: function and class
// declarations are true declarations, everything else (var decls, if,
// while, return, blocks, assignments, bare expressions) is a statement
// wrapped to satisfy ast.Decl.
func (p *parser) parseTopLevelDecl() (ast.Decl, error) {
	if token.IsTypeKeyword(p.curr.Type) {
		return p.parseTypePrefixedDecl()
	}
	if p.curr.Type == token.CLASS {
		return p.parseClassDecl()
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.StmtDecl{Stmt: stmt}, nil
}

func (p *parser) parseTypePrefixedDecl() (ast.Decl, error) {
	typeTok := p.curr
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if p.curr.Type == token.LPAREN {
		return p.finishFuncDecl(typeTok, nameTok)
	}
	return p.finishVarDecl(typeTok, nameTok)
}

func (p *parser) finishFuncDecl(typeTok, nameTok token.Token) (*ast.FuncDecl, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.Param
	for p.curr.Type != token.RPAREN {
		if !token.IsTypeKeyword(p.curr.Type) {
			return nil, newError(p.curr.Pos, "expected parameter type, got %s", p.curr.Type)
		}
		ptype := p.curr.Type
		if err := p.advance(); err != nil {
			return nil, err
		}
		pname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Type: ptype, Name: pname.Lexeme})
		if p.curr.Type == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{
		Name:    nameTok.Lexeme,
		Params:  params,
		RetType: typeTok.Type,
		Body:    body,
		Posn:    typeTok.Pos,
	}, nil
}

func (p *parser) finishVarDecl(typeTok, nameTok token.Token) (*ast.VarDecl, error) {
	decl := &ast.VarDecl{Type: typeTok.Type, Name: nameTok.Lexeme, Posn: typeTok.Pos}
	switch p.curr.Type {
	case token.SEMI:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return decl, nil
	case token.ASSIGN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.Init = init
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return decl, nil
	default:
		return nil, newError(p.curr.Pos, "expected ';' or '=' after variable name, got %s", p.curr.Type)
	}
}

// parseClassDecl recognizes the aspirational class extension point (§9)
// without ever executing it.
func (p *parser) parseClassDecl() (*ast.ClassDecl, error) {
	classTok := p.curr
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	decl := &ast.ClassDecl{Name: nameTok.Lexeme, Posn: classTok.Pos}
	for p.curr.Type != token.RBRACE {
		if p.curr.Type == token.EOF {
			return nil, newIncompleteError(p.curr.Pos, "unterminated class body")
		}
		if !token.IsTypeKeyword(p.curr.Type) {
			return nil, newError(p.curr.Pos, "expected member declaration inside class, got %s", p.curr.Type)
		}
		memberType := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		memberName, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if p.curr.Type == token.LPAREN {
			method, err := p.finishFuncDecl(memberType, memberName)
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, method)
			continue
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		decl.Fields = append(decl.Fields, ast.Param{Type: memberType.Type, Name: memberName.Lexeme})
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseBlock() (*ast.Block, error) {
	lbrace, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	block := &ast.Block{Posn: lbrace.Pos}
	for p.curr.Type != token.RBRACE {
		if p.curr.Type == token.EOF {
			return nil, newIncompleteError(p.curr.Pos, "unterminated block")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *parser) parseStatement() (ast.Stmt, error) {
	switch {
	case token.IsTypeKeyword(p.curr.Type):
		return p.parseVarDeclStmt()
	case p.curr.Type == token.IF:
		return p.parseIfStmt()
	case p.curr.Type == token.WHILE:
		return p.parseWhileStmt()
	case p.curr.Type == token.RETURN:
		return p.parseReturnStmt()
	case p.curr.Type == token.LBRACE:
		return p.parseBlock()
	case p.curr.Type == token.IDENT:
		return p.parseIdentLeadStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseVarDeclStmt() (*ast.VarDecl, error) {
	typeTok := p.curr
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return p.finishVarDecl(typeTok, nameTok)
}

// parseIdentLeadStmt disambiguates "IDENT = expr;" (assignment) and
// "IDENT(args);"/"IDENT.field;" etc (expression statement) by peeking one
// token past the identifier.
func (p *parser) parseIdentLeadStmt() (ast.Stmt, error) {
	nameTok := p.curr
	nxt, err := p.peek()
	if err != nil {
		return nil, err
	}
	if nxt.Type == token.ASSIGN {
		if err := p.advance(); err != nil { // consume IDENT
			return nil, err
		}
		if err := p.advance(); err != nil { // consume '='
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Name: nameTok.Lexeme, Expr: expr, Posn: nameTok.Pos}, nil
	}
	return p.parseExprStmt()
}

func (p *parser) parseExprStmt() (*ast.ExprStmt, error) {
	pos := p.curr.Pos
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: expr, Posn: pos}, nil
}

func (p *parser) parseIfStmt() (*ast.If, error) {
	ifTok := p.curr
	stmt := &ast.If{Posn: ifTok.Pos}
	for {
		if err := p.advance(); err != nil { // consume 'if' or 'else'
			return nil, err
		}
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Branches = append(stmt.Branches, ast.Branch{Cond: cond, Body: body})
		if p.curr.Type != token.ELSE {
			return stmt, nil
		}
		nxt, err := p.peek()
		if err != nil {
			return nil, err
		}
		if nxt.Type != token.IF {
			if err := p.advance(); err != nil { // consume 'else'
				return nil, err
			}
			elseBody, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseBody
			return stmt, nil
		}
		// else-if: loop consumes 'else' then 'if' at top of loop
		if err := p.advance(); err != nil { // consume 'else', leaving 'if' as curr
			return nil, err
		}
	}
}

func (p *parser) parseWhileStmt() (*ast.While, error) {
	whileTok := p.curr
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body, Posn: whileTok.Pos}, nil
}

func (p *parser) parseReturnStmt() (*ast.Return, error) {
	retTok := p.curr
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.curr.Type == token.SEMI {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Return{Posn: retTok.Pos}, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.Return{Result: expr, Posn: retTok.Pos}, nil
}

// Expression grammar, precedence climbing lowest to highest, per spec §4.2.

func (p *parser) parseExpression() (ast.Expr, error) {
	return p.parseLogicalOr()
}

func (p *parser) parseLogicalOr() (ast.Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == token.OR {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

func (p *parser) parseLogicalAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == token.AND {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

func (p *parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == token.EQ || p.curr.Type == token.NEQ {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

func (p *parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == token.LT || p.curr.Type == token.GT || p.curr.Type == token.LE || p.curr.Type == token.GE {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == token.PLUS || p.curr.Type == token.MINUS {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == token.STAR || p.curr.Type == token.SLASH {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: opTok.Type, Left: left, Right: right, Posn: opTok.Pos}
	}
	return left, nil
}

// parseUnary is right-associative per spec, though CL only has one unary
// operator (!), so right-associativity only matters for "!!x" chains.
func (p *parser) parseUnary() (ast.Expr, error) {
	if p.curr.Type == token.BANG {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: opTok.Type, X: operand, Posn: opTok.Pos}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles receiver.field / receiver.method(args) chains, the
// unexecuted class extension point (§9).
func (p *parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == token.DOT {
		dotTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		memberTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if p.curr.Type == token.LPAREN {
			args, err := p.parseArgumentList()
			if err != nil {
				return nil, err
			}
			expr = &ast.MethodCall{Receiver: expr, Method: memberTok.Lexeme, Args: args, Posn: dotTok.Pos}
			continue
		}
		expr = &ast.FieldAccess{Receiver: expr, Field: memberTok.Lexeme, Posn: dotTok.Pos}
	}
	return expr, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.curr
	switch tok.Type {
	case token.INT_LIT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.IntLit{Value: tok.IntVal, Posn: tok.Pos}, nil
	case token.FLOAT_LIT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.FloatLit{Value: tok.FloatVal, Posn: tok.Pos}, nil
	case token.STRING_LIT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.StringLit{Value: tok.StrVal, Posn: tok.Pos}, nil
	case token.TRUE, token.FALSE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BoolLit{Value: tok.Type == token.TRUE, Posn: tok.Pos}, nil
	case token.NEW:
		return p.parseNewExpr()
	case token.IDENT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.curr.Type == token.LPAREN {
			args, err := p.parseArgumentList()
			if err != nil {
				return nil, err
			}
			return &ast.CallExpr{Callee: tok.Lexeme, Args: args, Posn: tok.Pos}, nil
		}
		return &ast.Identifier{Name: tok.Lexeme, Posn: tok.Pos}, nil
	case token.SELF:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Identifier{Name: "self", Posn: tok.Pos}, nil
	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case token.EOF:
		return nil, newIncompleteError(tok.Pos, "expected expression, reached end of input")
	default:
		return nil, newError(tok.Pos, "expected expression, got %s", tok.Type)
	}
}

// parseNewExpr handles the unexecuted `new ClassName(args)` extension point,
// entered via the 'new' keyword token. The `ClassName.new(args)` form is not
// parsed: after a '.', parsePostfix accepts only an identifier.
func (p *parser) parseNewExpr() (ast.Expr, error) {
	newTok := p.curr
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	return &ast.New{ClassName: nameTok.Lexeme, Args: args, Posn: newTok.Pos}, nil
}

func (p *parser) parseArgumentList() ([]ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for p.curr.Type != token.RPAREN {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.curr.Type == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}
