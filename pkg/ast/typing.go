package ast

import (
	"errors"

	"github.com/raymyers/ralph-9cc/pkg/ctypes"
	"github.com/raymyers/ralph-9cc/pkg/diag"
)

// Typing errors, matched with errors.Is
var (
	ErrInvalidDeref = errors.New("invalid pointer dereference")
	ErrNotLvalue    = errors.New("not an lvalue")
)

// AddType fills in the type of every expression under n that does not
// have one yet. Already typed subtrees are left as they are, so it is safe
// to call again on a tree that contains them.
func AddType(n Node) error {
	switch n := n.(type) {
	case nil:
		return nil
	case Expr:
		return addExprType(n)
	case *Return:
		return addExprType(n.X)
	case *ExprStmt:
		return addExprType(n.X)
	case *If:
		if err := addExprType(n.Cond); err != nil {
			return err
		}
		if err := AddType(n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			return AddType(n.Else)
		}
	case *While:
		if err := addExprType(n.Cond); err != nil {
			return err
		}
		return AddType(n.Body)
	case *For:
		if n.Init != nil {
			if err := AddType(n.Init); err != nil {
				return err
			}
		}
		if err := addExprType(n.Cond); err != nil {
			return err
		}
		if n.Inc != nil {
			if err := AddType(n.Inc); err != nil {
				return err
			}
		}
		return AddType(n.Body)
	case *Block:
		for _, s := range n.Body {
			if err := AddType(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func addExprType(e Expr) error {
	if e == nil || e.Type() != nil {
		return nil
	}

	switch e := e.(type) {
	case *Num:
		e.Ty = ctypes.Int()

	case *VarRef:
		e.Ty = e.Var.Type

	case *Addr:
		if err := addExprType(e.X); err != nil {
			return err
		}
		if !isLvalue(e.X) {
			return errorAt(e, ErrNotLvalue, "cannot take the address of a value")
		}
		e.Ty = ctypes.Pointer(e.X.Type())

	case *Deref:
		if err := addExprType(e.X); err != nil {
			return err
		}
		base, ok := ctypes.Base(e.X.Type())
		if !ok {
			return errorAt(e, ErrInvalidDeref, "invalid pointer dereference of %s", e.X.Type())
		}
		e.Ty = base

	case *Binary:
		if err := addExprType(e.Left); err != nil {
			return err
		}
		if err := addExprType(e.Right); err != nil {
			return err
		}
		switch e.Op {
		case OpEq, OpNe, OpLt, OpLe, OpPtrDiff:
			e.Ty = ctypes.Int()
		default:
			e.Ty = e.Left.Type()
		}

	case *Assign:
		if err := addExprType(e.Left); err != nil {
			return err
		}
		if err := addExprType(e.Right); err != nil {
			return err
		}
		if !isLvalue(e.Left) {
			return errorAt(e.Left, ErrNotLvalue, "cannot assign to a value")
		}
		if _, ok := e.Left.Type().(ctypes.Tarray); ok {
			return errorAt(e.Left, ErrNotLvalue, "cannot assign to array of type %s", e.Left.Type())
		}
		e.Ty = e.Left.Type()

	case *MemberRef:
		if err := addExprType(e.X); err != nil {
			return err
		}
		e.Ty = e.Member.Type

	case *Call:
		for _, arg := range e.Args {
			if err := addExprType(arg); err != nil {
				return err
			}
		}
		e.Ty = ctypes.Int()

	case *StmtExpr:
		for _, n := range e.Body {
			if err := AddType(n); err != nil {
				return err
			}
		}
		if v := e.Value(); v != nil {
			e.Ty = v.Type()
		}
	}
	return nil
}

// isLvalue reports whether e names a storage location
func isLvalue(e Expr) bool {
	switch e.(type) {
	case *VarRef, *Deref, *MemberRef:
		return true
	}
	return false
}

func errorAt(n Node, kind error, format string, args ...any) error {
	tok := n.Token()
	return diag.Errorf(tok.Line, tok.Column, kind, format, args...)
}
