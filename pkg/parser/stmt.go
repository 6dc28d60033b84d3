package parser

import (
	"github.com/raymyers/ralph-9cc/pkg/ast"
	"github.com/raymyers/ralph-9cc/pkg/lexer"
	"github.com/raymyers/ralph-9cc/pkg/scope"
)

// stmt parses a statement and resolves the types of every expression in it
// before it is linked into the enclosing sequence.
func (p *Parser) stmt() (ast.Stmt, error) {
	s, err := p.stmt2()
	if err != nil {
		return nil, err
	}
	if err := p.annotate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// stmt2 = "return" expr ";"
//
//	| "if" "(" expr ")" stmt ("else" stmt)?
//	| "while" "(" expr ")" stmt
//	| "for" "(" expr? ";" expr? ";" expr? ")" stmt
//	| "{" stmt* "}"
//	| declaration
//	| expr ";"
func (p *Parser) stmt2() (ast.Stmt, error) {
	tok := p.curToken()

	switch tok.Type {
	case lexer.TokenReturn:
		p.nextToken()
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenSemicolon); err != nil {
			return nil, err
		}
		return &ast.Return{X: x, Tok: tok}, nil

	case lexer.TokenIf:
		p.nextToken()
		cond, err := p.parenExpr()
		if err != nil {
			return nil, err
		}
		then, err := p.scopedStmt()
		if err != nil {
			return nil, err
		}
		node := &ast.If{Cond: cond, Then: then, Tok: tok}
		if _, ok := p.consume(lexer.TokenElse); ok {
			if node.Else, err = p.scopedStmt(); err != nil {
				return nil, err
			}
		}
		return node, nil

	case lexer.TokenWhile:
		p.nextToken()
		cond, err := p.parenExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.scopedStmt()
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: cond, Body: body, Tok: tok}, nil

	case lexer.TokenFor:
		p.nextToken()
		return p.forStmt(tok)

	case lexer.TokenLBrace:
		p.nextToken()
		return p.block(tok)
	}

	if p.isTypename() {
		return p.declaration()
	}

	s, err := p.exprStmt()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	return s, nil
}

// scopedStmt parses the body of an if, while or for so that a declaration
// made there does not outlive it.
func (p *Parser) scopedStmt() (ast.Stmt, error) {
	mark := p.syms.EnterBlock()
	defer p.syms.LeaveBlock(mark)
	return p.stmt()
}

func (p *Parser) parenExpr() (ast.Expr, error) {
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	return x, nil
}

func (p *Parser) forStmt(tok lexer.Token) (ast.Stmt, error) {
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	node := &ast.For{Tok: tok}
	var err error

	if _, ok := p.consume(lexer.TokenSemicolon); !ok {
		if node.Init, err = p.exprStmt(); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenSemicolon); err != nil {
			return nil, err
		}
	}
	if _, ok := p.consume(lexer.TokenSemicolon); !ok {
		if node.Cond, err = p.expr(); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenSemicolon); err != nil {
			return nil, err
		}
	}
	if _, ok := p.consume(lexer.TokenRParen); !ok {
		if node.Inc, err = p.exprStmt(); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
	}

	if node.Body, err = p.scopedStmt(); err != nil {
		return nil, err
	}
	return node, nil
}

// block parses the statements of a braced block after its "{"
func (p *Parser) block(tok lexer.Token) (ast.Stmt, error) {
	mark := p.syms.EnterBlock()
	defer p.syms.LeaveBlock(mark)

	node := &ast.Block{Tok: tok}
	for {
		if _, ok := p.consume(lexer.TokenRBrace); ok {
			return node, nil
		}
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		node.Body = append(node.Body, s)
	}
}

// declaration = basetype ident ("[" num "]")* ("=" expr)? ";"
//
// The variable is in scope from its name on, so its own initializer
// already sees it.
func (p *Parser) declaration() (ast.Stmt, error) {
	tok := p.curToken()
	ty, err := p.basetype()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	ty, err = p.typeSuffix(ty)
	if err != nil {
		return nil, err
	}
	v, err := p.declare(name, ty, scope.Local)
	if err != nil {
		return nil, err
	}

	if _, ok := p.consume(lexer.TokenSemicolon); ok {
		return &ast.Null{Tok: tok}, nil
	}

	assignTok, err := p.expect(lexer.TokenAssign)
	if err != nil {
		return nil, err
	}
	rhs, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenSemicolon); err != nil {
		return nil, err
	}
	lhs := &ast.VarRef{Var: v, Tok: name}
	assign := &ast.Assign{Left: lhs, Right: rhs, Tok: assignTok}
	return &ast.ExprStmt{X: assign, Tok: tok}, nil
}

func (p *Parser) exprStmt() (*ast.ExprStmt, error) {
	tok := p.curToken()
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: x, Tok: tok}, nil
}
