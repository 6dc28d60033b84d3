package parser

import (
	"github.com/raymyers/ralph-9cc/pkg/ast"
	"github.com/raymyers/ralph-9cc/pkg/ctypes"
	"github.com/raymyers/ralph-9cc/pkg/lexer"
)

// expr = assign
func (p *Parser) expr() (ast.Expr, error) {
	return p.assign()
}

// assign = equality ("=" assign)?
func (p *Parser) assign() (ast.Expr, error) {
	node, err := p.equality()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.consume(lexer.TokenAssign); ok {
		rhs, err := p.assign()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Left: node, Right: rhs, Tok: tok}, nil
	}
	return node, nil
}

// equality = relational ("==" relational | "!=" relational)*
func (p *Parser) equality() (ast.Expr, error) {
	node, err := p.relational()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.curToken()
		var op ast.BinaryOp
		switch tok.Type {
		case lexer.TokenEq:
			op = ast.OpEq
		case lexer.TokenNe:
			op = ast.OpNe
		default:
			return node, nil
		}
		p.nextToken()
		rhs, err := p.relational()
		if err != nil {
			return nil, err
		}
		node = ast.NewBinary(op, node, rhs, tok)
	}
}

// relational = add ("<" add | "<=" add | ">" add | ">=" add)*
//
// a > b is built as b < a and a >= b as b <= a.
func (p *Parser) relational() (ast.Expr, error) {
	node, err := p.add()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.curToken()
		var op ast.BinaryOp
		swap := false
		switch tok.Type {
		case lexer.TokenLt:
			op = ast.OpLt
		case lexer.TokenLe:
			op = ast.OpLe
		case lexer.TokenGt:
			op, swap = ast.OpLt, true
		case lexer.TokenGe:
			op, swap = ast.OpLe, true
		default:
			return node, nil
		}
		p.nextToken()
		rhs, err := p.add()
		if err != nil {
			return nil, err
		}
		if swap {
			node = ast.NewBinary(op, rhs, node, tok)
		} else {
			node = ast.NewBinary(op, node, rhs, tok)
		}
	}
}

// add = mul ("+" mul | "-" mul)*
func (p *Parser) add() (ast.Expr, error) {
	node, err := p.mul()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.curToken()
		switch tok.Type {
		case lexer.TokenPlus:
			p.nextToken()
			rhs, err := p.mul()
			if err != nil {
				return nil, err
			}
			if node, err = p.newAdd(node, rhs, tok); err != nil {
				return nil, err
			}
		case lexer.TokenMinus:
			p.nextToken()
			rhs, err := p.mul()
			if err != nil {
				return nil, err
			}
			if node, err = p.newSub(node, rhs, tok); err != nil {
				return nil, err
			}
		default:
			return node, nil
		}
	}
}

// newAdd builds lhs + rhs. An integer added to a pointer or array is scaled
// by the element size; the pointer operand always ends up on the left.
func (p *Parser) newAdd(lhs, rhs ast.Expr, tok lexer.Token) (ast.Expr, error) {
	if err := p.annotate(lhs); err != nil {
		return nil, err
	}
	if err := p.annotate(rhs); err != nil {
		return nil, err
	}
	lt, rt := lhs.Type(), rhs.Type()

	switch {
	case ctypes.IsInteger(lt) && ctypes.IsInteger(rt):
		return ast.NewBinary(ast.OpAdd, lhs, rhs, tok), nil
	case ctypes.HasBase(lt) && ctypes.IsInteger(rt):
		return ast.NewBinary(ast.OpPtrAdd, lhs, rhs, tok), nil
	case ctypes.IsInteger(lt) && ctypes.HasBase(rt):
		return ast.NewBinary(ast.OpPtrAdd, rhs, lhs, tok), nil
	}
	return nil, p.errorf(tok, ErrInvalidOperands, "invalid operands to + (%s and %s)", lt, rt)
}

// newSub builds lhs - rhs. Subtracting two pointers gives the distance in
// elements; an integer cannot have a pointer subtracted from it.
func (p *Parser) newSub(lhs, rhs ast.Expr, tok lexer.Token) (ast.Expr, error) {
	if err := p.annotate(lhs); err != nil {
		return nil, err
	}
	if err := p.annotate(rhs); err != nil {
		return nil, err
	}
	lt, rt := lhs.Type(), rhs.Type()

	switch {
	case ctypes.IsInteger(lt) && ctypes.IsInteger(rt):
		return ast.NewBinary(ast.OpSub, lhs, rhs, tok), nil
	case ctypes.HasBase(lt) && ctypes.IsInteger(rt):
		return ast.NewBinary(ast.OpPtrSub, lhs, rhs, tok), nil
	case ctypes.HasBase(lt) && ctypes.HasBase(rt):
		return ast.NewBinary(ast.OpPtrDiff, lhs, rhs, tok), nil
	}
	return nil, p.errorf(tok, ErrInvalidOperands, "invalid operands to - (%s and %s)", lt, rt)
}

// mul = unary ("*" unary | "/" unary)*
func (p *Parser) mul() (ast.Expr, error) {
	node, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.curToken()
		var op ast.BinaryOp
		switch tok.Type {
		case lexer.TokenStar:
			op = ast.OpMul
		case lexer.TokenSlash:
			op = ast.OpDiv
		default:
			return node, nil
		}
		p.nextToken()
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		node = ast.NewBinary(op, node, rhs, tok)
	}
}

// unary = ("+" | "-" | "&" | "*") unary
//
//	| postfix
//
// +x is x and -x is 0 - x.
func (p *Parser) unary() (ast.Expr, error) {
	tok := p.curToken()

	switch tok.Type {
	case lexer.TokenPlus:
		p.nextToken()
		return p.unary()
	case lexer.TokenMinus:
		p.nextToken()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return p.newSub(ast.NewNum(0, tok), x, tok)
	case lexer.TokenAmpersand:
		p.nextToken()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Addr{X: x, Tok: tok}, nil
	case lexer.TokenStar:
		p.nextToken()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Deref{X: x, Tok: tok}, nil
	}
	return p.postfix()
}

// postfix = primary ("[" expr "]" | "." ident)*
//
// x[y] is *(x + y).
func (p *Parser) postfix() (ast.Expr, error) {
	node, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.curToken()
		switch tok.Type {
		case lexer.TokenLBracket:
			p.nextToken()
			idx, err := p.expr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokenRBracket); err != nil {
				return nil, err
			}
			sum, err := p.newAdd(node, idx, tok)
			if err != nil {
				return nil, err
			}
			node = &ast.Deref{X: sum, Tok: tok}
		case lexer.TokenDot:
			p.nextToken()
			if node, err = p.structRef(node); err != nil {
				return nil, err
			}
		default:
			return node, nil
		}
	}
}

func (p *Parser) structRef(lhs ast.Expr) (ast.Expr, error) {
	if err := p.annotate(lhs); err != nil {
		return nil, err
	}
	st, ok := lhs.Type().(ctypes.Tstruct)
	if !ok {
		return nil, p.errorf(lhs.Token(), ErrInvalidMember, "not a struct: %s", lhs.Type())
	}

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	mem, ok := st.Member(name.Literal)
	if !ok {
		return nil, p.errorf(name, ErrInvalidMember, "no such member: %s", name.Literal)
	}
	return &ast.MemberRef{X: lhs, Member: mem, Tok: name}, nil
}

// primary = "(" "{" stmt-expr-tail
//
//	| "(" expr ")"
//	| "sizeof" "(" basetype ("[" num "]")* ")"
//	| "sizeof" unary
//	| ident func-args?
//	| str
//	| num
func (p *Parser) primary() (ast.Expr, error) {
	tok := p.curToken()

	switch tok.Type {
	case lexer.TokenLParen:
		p.nextToken()
		if _, ok := p.consume(lexer.TokenLBrace); ok {
			return p.stmtExpr(tok)
		}
		node, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
		return node, nil

	case lexer.TokenSizeof:
		p.nextToken()
		return p.sizeof(tok)

	case lexer.TokenIdent:
		p.nextToken()
		if _, ok := p.consume(lexer.TokenLParen); ok {
			args, err := p.funcArgs()
			if err != nil {
				return nil, err
			}
			return &ast.Call{Name: tok.Literal, Args: args, Tok: tok}, nil
		}
		v, ok := p.syms.Resolve(tok.Literal)
		if !ok {
			return nil, p.errorf(tok, ErrUndeclared, "undefined variable: %s", tok.Literal)
		}
		return &ast.VarRef{Var: v, Tok: tok}, nil

	case lexer.TokenString:
		p.nextToken()
		v := p.syms.NewStringLiteral(tok.Contents)
		return &ast.VarRef{Var: v, Tok: tok}, nil

	case lexer.TokenInt:
		p.nextToken()
		return ast.NewNum(tok.Value, tok), nil
	}

	return nil, p.errorf(tok, ErrExpectedExpression, "expected expression, got %s", describe(tok))
}

// sizeof folds to the size of its operand's type; the operand is never
// evaluated.
func (p *Parser) sizeof(tok lexer.Token) (ast.Expr, error) {
	var ty ctypes.Type

	if p.curTokenIs(lexer.TokenLParen) && isTypenameToken(p.peekAt(1)) {
		p.nextToken()
		base, err := p.basetype()
		if err != nil {
			return nil, err
		}
		if ty, err = p.typeSuffix(base); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen); err != nil {
			return nil, err
		}
	} else {
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		if err := p.annotate(x); err != nil {
			return nil, err
		}
		ty = x.Type()
	}

	return ast.NewNum(int64(ty.Size()), tok), nil
}

// func-args = "(" (assign ("," assign)*)? ")"
func (p *Parser) funcArgs() ([]ast.Expr, error) {
	if _, ok := p.consume(lexer.TokenRParen); ok {
		return nil, nil
	}

	var args []ast.Expr
	for {
		arg, err := p.assign()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if _, ok := p.consume(lexer.TokenComma); !ok {
			break
		}
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}
	return args, nil
}

// stmt-expr = "(" "{" stmt stmt* "}" ")"
//
// The value is that of the last statement, which must be an expression
// statement; its expression takes the statement's place in the body.
func (p *Parser) stmtExpr(tok lexer.Token) (ast.Expr, error) {
	mark := p.syms.EnterBlock()
	defer p.syms.LeaveBlock(mark)

	node := &ast.StmtExpr{Tok: tok}
	for {
		if end, ok := p.consume(lexer.TokenRBrace); ok {
			if len(node.Body) == 0 {
				return nil, p.errorf(end, ErrStmtExpr, "empty statement expression")
			}
			break
		}
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		node.Body = append(node.Body, s)
	}
	if _, err := p.expect(lexer.TokenRParen); err != nil {
		return nil, err
	}

	last := node.Body[len(node.Body)-1]
	es, ok := last.(*ast.ExprStmt)
	if !ok {
		return nil, p.errorf(last.Token(), ErrStmtExpr, "statement expression returning void is not supported")
	}
	node.Body[len(node.Body)-1] = es.X
	return node, nil
}
