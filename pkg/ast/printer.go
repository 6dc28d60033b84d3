package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/raymyers/ralph-9cc/pkg/ctypes"
	"github.com/raymyers/ralph-9cc/pkg/scope"
)

// PrintOptions selects optional annotations in printed output
type PrintOptions struct {
	// Types appends the resolved type of each statement's expression.
	Types bool
	// Locals lists each function's locals with their sizes.
	Locals bool
}

// Printer outputs the AST in a human-readable, C-like format
type Printer struct {
	w      io.Writer
	opts   PrintOptions
	indent int
}

// NewPrinter creates a new AST printer
func NewPrinter(w io.Writer, opts PrintOptions) *Printer {
	return &Printer{w: w, opts: opts}
}

// PrintProgram prints globals, then functions
func (p *Printer) PrintProgram(prog *Program) {
	for _, g := range prog.Globals {
		p.printGlobal(g)
	}
	if len(prog.Globals) > 0 && len(prog.Functions) > 0 {
		fmt.Fprintln(p.w)
	}
	for i, fn := range prog.Functions {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		p.printFunction(fn)
	}
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

func (p *Printer) printGlobal(v *scope.Var) {
	fmt.Fprint(p.w, ctypes.Declarator(v.Type, v.Name))
	if v.Contents != nil {
		fmt.Fprintf(p.w, " = %q", strings.TrimSuffix(string(v.Contents), "\x00"))
	}
	fmt.Fprintln(p.w, ";")
}

func (p *Printer) printFunction(fn *Function) {
	ret := "int"
	if fn.ReturnType != nil {
		ret = fn.ReturnType.String()
	}
	fmt.Fprintf(p.w, "%s %s(", ret, fn.Name)
	for i, param := range fn.Params {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprint(p.w, ctypes.Declarator(param.Type, param.Name))
	}
	fmt.Fprintln(p.w, ")")
	fmt.Fprintln(p.w, "{")
	p.indent++
	if p.opts.Locals {
		for _, v := range fn.Locals {
			p.writeIndent()
			fmt.Fprintf(p.w, "// local %s (%d bytes)\n", ctypes.Declarator(v.Type, v.Name), v.Type.Size())
		}
	}
	for _, s := range fn.Body {
		p.printStmt(s)
	}
	p.indent--
	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printStmt(s Stmt) {
	switch s := s.(type) {
	case *Block:
		p.writeIndent()
		fmt.Fprintln(p.w, "{")
		p.indent++
		for _, item := range s.Body {
			p.printStmt(item)
		}
		p.indent--
		p.writeIndent()
		fmt.Fprintln(p.w, "}")
	case *Return:
		p.writeIndent()
		fmt.Fprintf(p.w, "return %s;", p.topExpr(s.X))
		p.typeComment(s.X)
		fmt.Fprintln(p.w)
	case *ExprStmt:
		p.writeIndent()
		fmt.Fprintf(p.w, "%s;", p.topExpr(s.X))
		p.typeComment(s.X)
		fmt.Fprintln(p.w)
	case *Null:
		p.writeIndent()
		fmt.Fprintln(p.w, ";")
	case *If:
		p.writeIndent()
		fmt.Fprintf(p.w, "if (%s)\n", p.topExpr(s.Cond))
		p.printBody(s.Then)
		if s.Else != nil {
			p.writeIndent()
			fmt.Fprintln(p.w, "else")
			p.printBody(s.Else)
		}
	case *While:
		p.writeIndent()
		fmt.Fprintf(p.w, "while (%s)\n", p.topExpr(s.Cond))
		p.printBody(s.Body)
	case *For:
		var init, cond, inc string
		if s.Init != nil {
			init = p.topExpr(s.Init.X)
		}
		if s.Cond != nil {
			cond = " " + p.topExpr(s.Cond)
		}
		if s.Inc != nil {
			inc = " " + p.topExpr(s.Inc.X)
		}
		p.writeIndent()
		fmt.Fprintf(p.w, "for (%s;%s;%s)\n", init, cond, inc)
		p.printBody(s.Body)
	default:
		p.writeIndent()
		fmt.Fprintf(p.w, "/* unknown statement %T */\n", s)
	}
}

// printBody prints a nested statement, indenting it unless it is a block
func (p *Printer) printBody(s Stmt) {
	if _, ok := s.(*Block); ok {
		p.printStmt(s)
		return
	}
	p.indent++
	p.printStmt(s)
	p.indent--
}

func (p *Printer) typeComment(e Expr) {
	if p.opts.Types && e != nil && e.Type() != nil {
		fmt.Fprintf(p.w, " // %s", e.Type())
	}
}

// topExpr prints an expression that needs no surrounding parentheses
func (p *Printer) topExpr(e Expr) string {
	if a, ok := e.(*Assign); ok {
		return p.expr(a.Left) + " = " + p.topExpr(a.Right)
	}
	return p.expr(e)
}

func (p *Printer) expr(e Expr) string {
	switch e := e.(type) {
	case nil:
		return ""
	case *Num:
		return fmt.Sprintf("%d", e.Value)
	case *VarRef:
		return e.Var.Name
	case *Addr:
		return "&" + p.expr(e.X)
	case *Deref:
		return "*" + p.expr(e.X)
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", p.expr(e.Left), e.Op, p.expr(e.Right))
	case *Assign:
		return fmt.Sprintf("(%s = %s)", p.expr(e.Left), p.topExpr(e.Right))
	case *MemberRef:
		switch e.X.(type) {
		case *Deref, *Addr:
			return "(" + p.expr(e.X) + ")." + e.Member.Name
		}
		return p.expr(e.X) + "." + e.Member.Name
	case *Call:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = p.topExpr(a)
		}
		return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
	case *StmtExpr:
		parts := make([]string, 0, len(e.Body))
		for _, n := range e.Body {
			parts = append(parts, p.inline(n))
		}
		return "({ " + strings.Join(parts, " ") + " })"
	}
	return fmt.Sprintf("/* unknown expression %T */", e)
}

// inline renders a statement expression's element on a single line
func (p *Printer) inline(n Node) string {
	if e, ok := n.(Expr); ok {
		return p.topExpr(e) + ";"
	}
	var b strings.Builder
	sub := &Printer{w: &b}
	sub.printStmt(n.(Stmt))
	return strings.Join(strings.Fields(b.String()), " ")
}
