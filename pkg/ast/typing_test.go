package ast

import (
	"errors"
	"testing"

	"github.com/raymyers/ralph-9cc/pkg/ctypes"
	"github.com/raymyers/ralph-9cc/pkg/diag"
	"github.com/raymyers/ralph-9cc/pkg/lexer"
	"github.com/raymyers/ralph-9cc/pkg/scope"
)

func ref(name string, ty ctypes.Type) *VarRef {
	return &VarRef{
		Var: &scope.Var{Name: name, Type: ty, Storage: scope.Local},
		Tok: lexer.Token{Type: lexer.TokenIdent, Literal: name, Line: 1, Column: 1},
	}
}

func num(v int64) *Num {
	return NewNum(v, lexer.Token{Type: lexer.TokenInt, Line: 1, Column: 1})
}

func TestAddTypeExpressions(t *testing.T) {
	intPtr := ctypes.Pointer(ctypes.Int())
	arr := ctypes.Array(ctypes.Char(), 4)
	st, err := ctypes.NewStruct([]ctypes.Field{{Name: "a", Type: ctypes.Int()}, {Name: "b", Type: ctypes.Char()}})
	if err != nil {
		t.Fatal(err)
	}
	member, _ := st.(ctypes.Tstruct).Member("b")

	tests := []struct {
		name string
		expr Expr
		want ctypes.Type
	}{
		{"number", num(1), ctypes.Int()},
		{"variable", ref("c", ctypes.Char()), ctypes.Char()},
		{"address of int", &Addr{X: ref("x", ctypes.Int())}, intPtr},
		{"address of array", &Addr{X: ref("a", arr)}, ctypes.Pointer(arr)},
		{"deref pointer", &Deref{X: ref("p", intPtr)}, ctypes.Int()},
		{"deref array", &Deref{X: ref("a", arr)}, ctypes.Char()},
		{"add keeps left type", NewBinary(OpAdd, ref("c", ctypes.Char()), num(1), lexer.Token{}), ctypes.Char()},
		{"mul", NewBinary(OpMul, num(2), num(3), lexer.Token{}), ctypes.Int()},
		{"pointer add", NewBinary(OpPtrAdd, ref("p", intPtr), num(1), lexer.Token{}), intPtr},
		{"pointer sub", NewBinary(OpPtrSub, ref("p", intPtr), num(1), lexer.Token{}), intPtr},
		{"pointer diff", NewBinary(OpPtrDiff, ref("p", intPtr), ref("q", intPtr), lexer.Token{}), ctypes.Int()},
		{"comparison", NewBinary(OpLt, ref("p", intPtr), ref("q", intPtr), lexer.Token{}), ctypes.Int()},
		{"equality", NewBinary(OpEq, ref("c", ctypes.Char()), num(0), lexer.Token{}), ctypes.Int()},
		{"assign", &Assign{Left: ref("c", ctypes.Char()), Right: num(1)}, ctypes.Char()},
		{"member", &MemberRef{X: ref("s", st), Member: member}, ctypes.Char()},
		{"call", &Call{Name: "f", Args: []Expr{ref("p", intPtr)}}, ctypes.Int()},
		{"statement expression", &StmtExpr{Body: []Node{&Null{}, ref("p", intPtr)}}, intPtr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := AddType(tt.expr); err != nil {
				t.Fatalf("AddType: %v", err)
			}
			if !ctypes.Equal(tt.expr.Type(), tt.want) {
				t.Errorf("Type() = %v, want %v", tt.expr.Type(), tt.want)
			}
		})
	}
}

func TestAddTypeKeepsExistingTypes(t *testing.T) {
	x := ref("x", ctypes.Int())
	x.Ty = ctypes.Char()
	if err := AddType(x); err != nil {
		t.Fatal(err)
	}
	if !ctypes.Equal(x.Type(), ctypes.Char()) {
		t.Errorf("typed node was retyped to %v", x.Type())
	}

	// A second pass over an already typed tree is a no-op.
	b := NewBinary(OpAdd, ref("a", ctypes.Int()), num(1), lexer.Token{})
	if err := AddType(b); err != nil {
		t.Fatal(err)
	}
	first := b.Type()
	if err := AddType(b); err != nil {
		t.Fatal(err)
	}
	if b.Type() != first {
		t.Errorf("second pass changed type to %v", b.Type())
	}
}

func TestAddTypeStatements(t *testing.T) {
	cond := ref("c", ctypes.Int())
	inner := NewBinary(OpAdd, num(1), num(2), lexer.Token{})
	init := &ExprStmt{X: &Assign{Left: ref("i", ctypes.Int()), Right: num(0)}}
	loop := &For{
		Init: init,
		Cond: NewBinary(OpLt, ref("i", ctypes.Int()), num(3), lexer.Token{}),
		Body: &Block{Body: []Stmt{
			&If{Cond: cond, Then: &Return{X: inner}, Else: &Null{}},
			&While{Cond: num(1), Body: &ExprStmt{X: num(2)}},
		}},
	}

	if err := AddType(loop); err != nil {
		t.Fatal(err)
	}
	for name, e := range map[string]Expr{"init": init.X, "cond": loop.Cond, "if cond": cond, "return": inner} {
		if e.Type() == nil {
			t.Errorf("%s was not typed", name)
		}
	}
}

func TestAddTypeErrors(t *testing.T) {
	pos := lexer.Token{Line: 3, Column: 7}

	deref := &Deref{X: num(1), Tok: pos}
	err := AddType(deref)
	if !errors.Is(err, ErrInvalidDeref) {
		t.Fatalf("expected ErrInvalidDeref, got %v", err)
	}
	var de *diag.Error
	if !errors.As(err, &de) || de.Line != 3 || de.Column != 7 {
		t.Errorf("expected error at 3:7, got %v", err)
	}

	assign := &Assign{Left: ref("a", ctypes.Array(ctypes.Int(), 2)), Right: num(0)}
	if err := AddType(assign); !errors.Is(err, ErrNotLvalue) {
		t.Errorf("expected ErrNotLvalue, got %v", err)
	}

	for name, e := range map[string]Expr{
		"assign to number":  &Assign{Left: num(1), Right: num(2)},
		"address of number": &Addr{X: num(1)},
		"address of call":   &Addr{X: &Call{Name: "f"}},
	} {
		if err := AddType(e); !errors.Is(err, ErrNotLvalue) {
			t.Errorf("%s: expected ErrNotLvalue, got %v", name, err)
		}
	}

	// Errors deep in a statement surface from the top.
	stmt := &Block{Body: []Stmt{&ExprStmt{X: &Deref{X: ref("c", ctypes.Char())}}}}
	if err := AddType(stmt); !errors.Is(err, ErrInvalidDeref) {
		t.Errorf("expected ErrInvalidDeref from block, got %v", err)
	}
}

func TestStmtExprValue(t *testing.T) {
	empty := &StmtExpr{}
	if empty.Value() != nil {
		t.Error("empty statement expression has no value")
	}
	last := num(3)
	se := &StmtExpr{Body: []Node{&ExprStmt{X: num(1)}, last}}
	if se.Value() != last {
		t.Errorf("Value() = %v, want the last expression", se.Value())
	}
}

func TestBinaryOpString(t *testing.T) {
	tests := map[BinaryOp]string{
		OpAdd:     "+",
		OpDiv:     "/",
		OpNe:      "!=",
		OpLe:      "<=",
		OpPtrAdd:  "ptr+",
		OpPtrDiff: "ptrdiff",
	}
	for op, want := range tests {
		if got := op.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", op, got, want)
		}
	}
}
