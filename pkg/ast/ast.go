// Package ast defines the typed abstract syntax tree handed to code
// generation.
package ast

import (
	"github.com/raymyers/ralph-9cc/pkg/ctypes"
	"github.com/raymyers/ralph-9cc/pkg/lexer"
	"github.com/raymyers/ralph-9cc/pkg/scope"
)

// Node is the base interface for all AST nodes
type Node interface {
	implNode()
	// Token is the token the node was built from, for diagnostics.
	Token() lexer.Token
}

// Expr is the interface for all expression nodes. Type is nil until
// AddType has run over the expression.
type Expr interface {
	Node
	implExpr()
	Type() ctypes.Type
}

// Stmt is the interface for all statement nodes
type Stmt interface {
	Node
	implStmt()
}

// BinaryOp represents binary operators
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpPtrAdd  // pointer + integer, integer scaled by the element size
	OpPtrSub  // pointer - integer, integer scaled by the element size
	OpPtrDiff // pointer - pointer, in elements
)

func (op BinaryOp) String() string {
	names := []string{"+", "-", "*", "/", "==", "!=", "<", "<=", "ptr+", "ptr-", "ptrdiff"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// Num represents an integer literal
type Num struct {
	Value int64
	Tok   lexer.Token
	Ty    ctypes.Type
}

// VarRef represents a reference to a declared variable
type VarRef struct {
	Var *scope.Var
	Tok lexer.Token
	Ty  ctypes.Type
}

// Addr represents &X
type Addr struct {
	X   Expr
	Tok lexer.Token
	Ty  ctypes.Type
}

// Deref represents *X
type Deref struct {
	X   Expr
	Tok lexer.Token
	Ty  ctypes.Type
}

// Binary represents a binary expression
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
	Tok   lexer.Token
	Ty    ctypes.Type
}

// Assign represents Left = Right
type Assign struct {
	Left  Expr
	Right Expr
	Tok   lexer.Token
	Ty    ctypes.Type
}

// MemberRef represents X.name
type MemberRef struct {
	X      Expr
	Member ctypes.Member
	Tok    lexer.Token
	Ty     ctypes.Type
}

// Call represents a function call
type Call struct {
	Name string
	Args []Expr
	Tok  lexer.Token
	Ty   ctypes.Type
}

// StmtExpr represents ({ stmt... expr; }). The last element of Body is the
// value-producing expression; the rest are statements.
type StmtExpr struct {
	Body []Node
	Tok  lexer.Token
	Ty   ctypes.Type
}

// Value returns the expression that gives the statement expression its value
func (s *StmtExpr) Value() Expr {
	if len(s.Body) == 0 {
		return nil
	}
	e, _ := s.Body[len(s.Body)-1].(Expr)
	return e
}

// Return represents a return statement
type Return struct {
	X   Expr
	Tok lexer.Token
}

// If represents if (Cond) Then else Else
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil without else
	Tok  lexer.Token
}

// While represents while (Cond) Body
type While struct {
	Cond Expr
	Body Stmt
	Tok  lexer.Token
}

// For represents for (Init; Cond; Inc) Body. Each clause may be nil.
type For struct {
	Init *ExprStmt
	Cond Expr
	Inc  *ExprStmt
	Body Stmt
	Tok  lexer.Token
}

// Block represents a compound statement
type Block struct {
	Body []Stmt
	Tok  lexer.Token
}

// ExprStmt represents an expression evaluated for its side effects
type ExprStmt struct {
	X   Expr
	Tok lexer.Token
}

// Null represents a statement that does nothing, such as a declaration
// without initializer
type Null struct {
	Tok lexer.Token
}

// Function represents a function definition
type Function struct {
	Name       string
	ReturnType ctypes.Type
	Params     []*scope.Var
	// Locals holds every local of the function, parameters included.
	Locals []*scope.Var
	Body   []Stmt
	Tok    lexer.Token
}

// Program is the parser's result
type Program struct {
	Functions []*Function
	Globals   []*scope.Var
}

// NewNum builds an untyped integer literal
func NewNum(v int64, tok lexer.Token) *Num {
	return &Num{Value: v, Tok: tok}
}

// NewBinary builds an untyped binary expression
func NewBinary(op BinaryOp, left, right Expr, tok lexer.Token) *Binary {
	return &Binary{Op: op, Left: left, Right: right, Tok: tok}
}

// Marker methods for interface implementation
func (*Num) implNode()       {}
func (*VarRef) implNode()    {}
func (*Addr) implNode()      {}
func (*Deref) implNode()     {}
func (*Binary) implNode()    {}
func (*Assign) implNode()    {}
func (*MemberRef) implNode() {}
func (*Call) implNode()      {}
func (*StmtExpr) implNode()  {}
func (*Return) implNode()    {}
func (*If) implNode()        {}
func (*While) implNode()     {}
func (*For) implNode()       {}
func (*Block) implNode()     {}
func (*ExprStmt) implNode()  {}
func (*Null) implNode()      {}

func (*Num) implExpr()       {}
func (*VarRef) implExpr()    {}
func (*Addr) implExpr()      {}
func (*Deref) implExpr()     {}
func (*Binary) implExpr()    {}
func (*Assign) implExpr()    {}
func (*MemberRef) implExpr() {}
func (*Call) implExpr()      {}
func (*StmtExpr) implExpr()  {}

func (*Return) implStmt()   {}
func (*If) implStmt()       {}
func (*While) implStmt()    {}
func (*For) implStmt()      {}
func (*Block) implStmt()    {}
func (*ExprStmt) implStmt() {}
func (*Null) implStmt()     {}

func (n *Num) Token() lexer.Token       { return n.Tok }
func (n *VarRef) Token() lexer.Token    { return n.Tok }
func (n *Addr) Token() lexer.Token      { return n.Tok }
func (n *Deref) Token() lexer.Token     { return n.Tok }
func (n *Binary) Token() lexer.Token    { return n.Tok }
func (n *Assign) Token() lexer.Token    { return n.Tok }
func (n *MemberRef) Token() lexer.Token { return n.Tok }
func (n *Call) Token() lexer.Token      { return n.Tok }
func (n *StmtExpr) Token() lexer.Token  { return n.Tok }
func (n *Return) Token() lexer.Token    { return n.Tok }
func (n *If) Token() lexer.Token        { return n.Tok }
func (n *While) Token() lexer.Token     { return n.Tok }
func (n *For) Token() lexer.Token       { return n.Tok }
func (n *Block) Token() lexer.Token     { return n.Tok }
func (n *ExprStmt) Token() lexer.Token  { return n.Tok }
func (n *Null) Token() lexer.Token      { return n.Tok }

func (n *Num) Type() ctypes.Type       { return n.Ty }
func (n *VarRef) Type() ctypes.Type    { return n.Ty }
func (n *Addr) Type() ctypes.Type      { return n.Ty }
func (n *Deref) Type() ctypes.Type     { return n.Ty }
func (n *Binary) Type() ctypes.Type    { return n.Ty }
func (n *Assign) Type() ctypes.Type    { return n.Ty }
func (n *MemberRef) Type() ctypes.Type { return n.Ty }
func (n *Call) Type() ctypes.Type      { return n.Ty }
func (n *StmtExpr) Type() ctypes.Type  { return n.Ty }
