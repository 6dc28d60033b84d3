// Package scope tracks variables and the lexical scope chain used to
// resolve identifiers while parsing.
package scope

import (
	"errors"
	"fmt"

	"github.com/raymyers/ralph-9cc/pkg/ctypes"
)

// ErrDuplicateGlobal is returned when a global name is declared twice
var ErrDuplicateGlobal = errors.New("duplicate global")

// StorageClass says where a variable lives
type StorageClass int

const (
	Local StorageClass = iota
	Global
)

func (s StorageClass) String() string {
	if s == Local {
		return "local"
	}
	return "global"
}

// Var is a declared variable. It is created once at its declaration and
// never renamed.
type Var struct {
	Name    string
	Type    ctypes.Type
	Storage StorageClass

	// Offset is the frame offset of a local. It is left for the code
	// generator to assign.
	Offset int

	// Contents holds the bytes of a string literal global, NUL included.
	Contents []byte
}

// IsLocal reports whether v lives in a stack frame
func (v *Var) IsLocal() bool {
	return v.Storage == Local
}

// entry is one link of the scope chain. Entries are never modified or
// removed; leaving a block only moves the head back.
type entry struct {
	v    *Var
	next *entry
}

// Mark is a saved scope chain head
type Mark struct {
	head *entry
}

// Table is the symbol table for one parse: the scope chain plus the
// variables accumulated for the current function and for the program.
type Table struct {
	head    *entry
	locals  []*Var
	globals []*Var
	labels  int
}

// NewTable creates an empty symbol table
func NewTable() *Table {
	return &Table{}
}

// Declare creates a variable and makes it visible in the current scope.
// Locals are added to the current function's locals and globals to the
// program's globals.
func (t *Table) Declare(name string, ty ctypes.Type, storage StorageClass) (*Var, error) {
	if storage == Global {
		for _, g := range t.globals {
			if g.Name == name {
				return nil, fmt.Errorf("%w %q", ErrDuplicateGlobal, name)
			}
		}
	}
	v := &Var{Name: name, Type: ty, Storage: storage}
	t.push(v)
	if storage == Local {
		t.locals = append(t.locals, v)
	} else {
		t.globals = append(t.globals, v)
	}
	return v, nil
}

// NewStringLiteral materializes a string literal as an anonymous global
// char array under a fresh label.
func (t *Table) NewStringLiteral(contents []byte) *Var {
	v := &Var{
		Name:     fmt.Sprintf(".L.data.%d", t.labels),
		Type:     ctypes.Array(ctypes.Char(), len(contents)),
		Storage:  Global,
		Contents: contents,
	}
	t.labels++
	t.push(v)
	t.globals = append(t.globals, v)
	return v
}

func (t *Table) push(v *Var) {
	t.head = &entry{v: v, next: t.head}
}

// Resolve finds the innermost visible variable called name
func (t *Table) Resolve(name string) (*Var, bool) {
	for e := t.head; e != nil; e = e.next {
		if e.v.Name == name {
			return e.v, true
		}
	}
	return nil, false
}

// EnterBlock saves the scope chain head
func (t *Table) EnterBlock() Mark {
	return Mark{head: t.head}
}

// LeaveBlock restores a head saved by EnterBlock, hiding every binding
// made since.
func (t *Table) LeaveBlock(m Mark) {
	t.head = m.head
}

// BeginFunction resets the local variable accumulator
func (t *Table) BeginFunction() {
	t.locals = nil
}

// Locals returns the locals declared since BeginFunction, parameters
// first, in declaration order.
func (t *Table) Locals() []*Var {
	return t.locals
}

// Globals returns the program's globals in declaration order
func (t *Table) Globals() []*Var {
	return t.globals
}
