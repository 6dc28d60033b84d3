package lexer

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenIdent  // main, foo, x
	TokenInt    // 42
	TokenString // "hello"

	// Keywords
	TokenInt_   // int
	TokenChar   // char
	TokenStruct // struct
	TokenSizeof // sizeof
	TokenReturn // return
	TokenIf     // if
	TokenElse   // else
	TokenWhile  // while
	TokenFor    // for

	// Operators
	TokenPlus      // +
	TokenMinus     // -
	TokenStar      // *
	TokenSlash     // /
	TokenAssign    // =
	TokenEq        // ==
	TokenNe        // !=
	TokenLt        // <
	TokenLe        // <=
	TokenGt        // >
	TokenGe        // >=
	TokenAmpersand // &

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenSemicolon // ;
	TokenComma     // ,
	TokenDot       // .
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenIllegal:   "ILLEGAL",
	TokenIdent:     "IDENT",
	TokenInt:       "INT",
	TokenString:    "STRING",
	TokenInt_:      "int",
	TokenChar:      "char",
	TokenStruct:    "struct",
	TokenSizeof:    "sizeof",
	TokenReturn:    "return",
	TokenIf:        "if",
	TokenElse:      "else",
	TokenWhile:     "while",
	TokenFor:       "for",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenStar:      "*",
	TokenSlash:     "/",
	TokenAssign:    "=",
	TokenEq:        "==",
	TokenNe:        "!=",
	TokenLt:        "<",
	TokenLe:        "<=",
	TokenGt:        ">",
	TokenGe:        ">=",
	TokenAmpersand: "&",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
	TokenLBracket:  "[",
	TokenRBracket:  "]",
	TokenSemicolon: ";",
	TokenComma:     ",",
	TokenDot:       ".",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int

	// Value holds the decoded value of a TokenInt.
	Value int64
	// Contents holds the decoded bytes of a TokenString, including the
	// terminating NUL.
	Contents []byte
}

// keywords maps keyword strings to token types
var keywords = map[string]TokenType{
	"int":    TokenInt_,
	"char":   TokenChar,
	"struct": TokenStruct,
	"sizeof": TokenSizeof,
	"return": TokenReturn,
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"for":    TokenFor,
}

// LookupIdent returns the token type for an identifier (keyword or IDENT)
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdent
}
