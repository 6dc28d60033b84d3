// Package parser implements a recursive descent parser that builds a fully
// typed AST
package parser

import (
	"errors"
	"fmt"

	"github.com/raymyers/ralph-9cc/pkg/ast"
	"github.com/raymyers/ralph-9cc/pkg/ctypes"
	"github.com/raymyers/ralph-9cc/pkg/diag"
	"github.com/raymyers/ralph-9cc/pkg/lexer"
	"github.com/raymyers/ralph-9cc/pkg/scope"
)

// Parse errors, matched with errors.Is. Declaration errors from the type
// model and the symbol table (ctypes.ErrDuplicateMember,
// scope.ErrDuplicateGlobal) and typing errors from ast pass through
// wrapped with a position.
var (
	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrExpectedExpression = errors.New("expected expression")
	ErrUndeclared         = errors.New("undeclared identifier")
	ErrInvalidOperands    = errors.New("invalid operands")
	ErrInvalidMember      = errors.New("invalid member access")
	ErrStmtExpr           = errors.New("malformed statement expression")
	ErrArrayLength        = errors.New("invalid array length")
)

// Parser parses a token stream into a typed AST
type Parser struct {
	tokens []lexer.Token
	pos    int
	syms   *scope.Table
}

// New creates a new Parser over tokens, which must end with TokenEOF
func New(tokens []lexer.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokenEOF {
		tokens = append(tokens, lexer.Token{Type: lexer.TokenEOF})
	}
	return &Parser{
		tokens: tokens,
		syms:   scope.NewTable(),
	}
}

// Parse tokenizes and parses src
func Parse(src string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return New(tokens).ParseProgram()
}

func (p *Parser) curToken() lexer.Token {
	return p.tokens[p.pos]
}

// peekAt returns the token n positions ahead, or EOF past the end
func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken().Type == t
}

func (p *Parser) atEOF() bool {
	return p.curTokenIs(lexer.TokenEOF)
}

// consume advances past the current token if it has type t
func (p *Parser) consume(t lexer.TokenType) (lexer.Token, bool) {
	tok := p.curToken()
	if tok.Type != t {
		return tok, false
	}
	p.nextToken()
	return tok, true
}

func (p *Parser) expect(t lexer.TokenType) (lexer.Token, error) {
	if tok, ok := p.consume(t); ok {
		return tok, nil
	}
	return lexer.Token{}, p.errorf(p.curToken(), ErrUnexpectedToken, "expected %s, got %s", t, describe(p.curToken()))
}

func (p *Parser) expectIdent() (lexer.Token, error) {
	if tok, ok := p.consume(lexer.TokenIdent); ok {
		return tok, nil
	}
	return lexer.Token{}, p.errorf(p.curToken(), ErrUnexpectedToken, "expected identifier, got %s", describe(p.curToken()))
}

func (p *Parser) expectNumber() (lexer.Token, error) {
	if tok, ok := p.consume(lexer.TokenInt); ok {
		return tok, nil
	}
	return lexer.Token{}, p.errorf(p.curToken(), ErrUnexpectedToken, "expected number, got %s", describe(p.curToken()))
}

func (p *Parser) errorf(tok lexer.Token, kind error, format string, args ...any) error {
	return diag.Errorf(tok.Line, tok.Column, kind, format, args...)
}

// wrap attaches tok's position to an error from another package
func (p *Parser) wrap(tok lexer.Token, err error) error {
	var de *diag.Error
	if errors.As(err, &de) {
		return err
	}
	return diag.Errorf(tok.Line, tok.Column, err, "%v", err)
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenEOF:
		return "end of input"
	case lexer.TokenIdent, lexer.TokenInt:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	case lexer.TokenString:
		return "string literal"
	}
	return fmt.Sprintf("%q", tok.Type.String())
}

// annotate runs the typing pass over n, attaching positions to errors
func (p *Parser) annotate(n ast.Node) error {
	if err := ast.AddType(n); err != nil {
		return p.wrap(n.Token(), err)
	}
	return nil
}

// ParseProgram parses the whole token stream.
//
//	program = (global-var | function)*
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}

	for !p.atEOF() {
		isFunc, err := p.isFunction()
		if err != nil {
			return nil, err
		}
		if isFunc {
			fn, err := p.function()
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fn)
			continue
		}
		if err := p.globalVar(); err != nil {
			return nil, err
		}
	}

	prog.Globals = p.syms.Globals()
	return prog, nil
}

// isFunction looks ahead past a base type for `ident (` and then rewinds,
// so the caller parses the definition from its first token.
func (p *Parser) isFunction() (bool, error) {
	saved := p.pos
	defer func() { p.pos = saved }()

	if _, err := p.basetype(); err != nil {
		return false, err
	}
	if _, ok := p.consume(lexer.TokenIdent); !ok {
		return false, nil
	}
	_, ok := p.consume(lexer.TokenLParen)
	return ok, nil
}

// function = basetype ident "(" params? ")" "{" stmt* "}"
func (p *Parser) function() (*ast.Function, error) {
	p.syms.BeginFunction()

	tok := p.curToken()
	ret, err := p.basetype()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}

	mark := p.syms.EnterBlock()
	defer p.syms.LeaveBlock(mark)

	params, err := p.funcParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}

	var body []ast.Stmt
	for {
		if _, ok := p.consume(lexer.TokenRBrace); ok {
			break
		}
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}

	return &ast.Function{
		Name:       name.Literal,
		ReturnType: ret,
		Params:     params,
		Locals:     p.syms.Locals(),
		Body:       body,
		Tok:        tok,
	}, nil
}

// params = param ("," param)*
// param  = basetype ident ("[" num "]")*
func (p *Parser) funcParams() ([]*scope.Var, error) {
	if _, ok := p.consume(lexer.TokenRParen); ok {
		return nil, nil
	}

	var params []*scope.Var
	for {
		v, err := p.funcParam()
		if err != nil {
			return nil, err
		}
		params = append(params, v)

		if _, ok := p.consume(lexer.TokenRParen); ok {
			return params, nil
		}
		if _, err := p.expect(lexer.TokenComma); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) funcParam() (*scope.Var, error) {
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
	return p.declare(name, ty, scope.Local)
}

// global-var = basetype ident ("[" num "]")* ";"
func (p *Parser) globalVar() error {
	ty, err := p.basetype()
	if err != nil {
		return err
	}
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	ty, err = p.typeSuffix(ty)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokenSemicolon); err != nil {
		return err
	}
	_, err = p.declare(name, ty, scope.Global)
	return err
}

func (p *Parser) declare(name lexer.Token, ty ctypes.Type, storage scope.StorageClass) (*scope.Var, error) {
	v, err := p.syms.Declare(name.Literal, ty, storage)
	if err != nil {
		return nil, p.wrap(name, err)
	}
	return v, nil
}
