package parser

import (
	"fortio.org/safecast"

	"github.com/raymyers/ralph-9cc/pkg/ctypes"
	"github.com/raymyers/ralph-9cc/pkg/lexer"
)

// isTypename reports whether the current token starts a base type
func (p *Parser) isTypename() bool {
	return isTypenameToken(p.curToken())
}

func isTypenameToken(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenInt_, lexer.TokenChar, lexer.TokenStruct:
		return true
	}
	return false
}

// basetype = ("char" | "int" | struct-decl) "*"*
//
// basetype touches no scope state, which lets isFunction run it
// speculatively.
func (p *Parser) basetype() (ctypes.Type, error) {
	if !p.isTypename() {
		return nil, p.errorf(p.curToken(), ErrUnexpectedToken, "typename expected, got %s", describe(p.curToken()))
	}

	var ty ctypes.Type
	switch {
	case p.curTokenIs(lexer.TokenChar):
		p.nextToken()
		ty = ctypes.Char()
	case p.curTokenIs(lexer.TokenInt_):
		p.nextToken()
		ty = ctypes.Int()
	default:
		var err error
		if ty, err = p.structDecl(); err != nil {
			return nil, err
		}
	}

	for {
		if _, ok := p.consume(lexer.TokenStar); !ok {
			return ty, nil
		}
		ty = ctypes.Pointer(ty)
	}
}

// typeSuffix reads ("[" num "]")*. The last suffix binds tightest, so
// `int a[2][3]` is an array of 2 arrays of 3 ints.
func (p *Parser) typeSuffix(base ctypes.Type) (ctypes.Type, error) {
	if _, ok := p.consume(lexer.TokenLBracket); !ok {
		return base, nil
	}
	tok, err := p.expectNumber()
	if err != nil {
		return nil, err
	}
	n, err := safecast.Conv[int](tok.Value)
	if err != nil {
		return nil, p.errorf(tok, ErrArrayLength, "array length %s: %v", tok.Literal, err)
	}
	if _, err := p.expect(lexer.TokenRBracket); err != nil {
		return nil, err
	}
	base, err = p.typeSuffix(base)
	if err != nil {
		return nil, err
	}
	if n > ctypes.MaxArrayLen(base) {
		return nil, p.errorf(tok, ErrArrayLength, "array of %d %s is too large", n, base)
	}
	return ctypes.Array(base, n), nil
}

// struct-decl   = "struct" "{" struct-member* "}"
// struct-member = basetype ident ("[" num "]")* ";"
func (p *Parser) structDecl() (ctypes.Type, error) {
	if _, err := p.expect(lexer.TokenStruct); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenLBrace); err != nil {
		return nil, err
	}

	var layout ctypes.StructLayout
	for {
		if _, ok := p.consume(lexer.TokenRBrace); ok {
			break
		}
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
		if _, err := p.expect(lexer.TokenSemicolon); err != nil {
			return nil, err
		}
		if err := layout.Add(ctypes.Field{Name: name.Literal, Type: ty}); err != nil {
			return nil, p.wrap(name, err)
		}
	}
	return layout.Type(), nil
}
