// Package ctypes defines the type model: integers, pointers, arrays and
// structs, together with their sizes and member layout.
package ctypes

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrDuplicateMember is returned when two struct members share a name
	ErrDuplicateMember = errors.New("duplicate member")
	// ErrStructTooLarge is returned when a struct's size does not fit an int
	ErrStructTooLarge = errors.New("struct too large")
)

// WordSize is the machine word size in bytes: the size of int and of
// every pointer.
const WordSize = 8

// Type is the interface for all types
type Type interface {
	implType()
	// Size is the number of bytes a value of the type occupies.
	Size() int
	String() string
}

// IntSize represents the width of integer types
type IntSize int

const (
	I8 IntSize = iota
	I64
)

func (s IntSize) String() string {
	names := []string{"i8", "i64"}
	if int(s) < len(names) {
		return names[s]
	}
	return "?"
}

// Tint represents integer types (char, int)
type Tint struct {
	Width IntSize
}

// Tpointer represents pointer types
type Tpointer struct {
	Elem Type
}

// Tarray represents array types
type Tarray struct {
	Elem Type
	Len  int
}

// Tstruct represents struct types. Build one with NewStruct so that member
// offsets and the total size are consistent.
type Tstruct struct {
	Members []Member
	size    int
}

// Member represents a struct member
type Member struct {
	Name   string
	Type   Type
	Offset int
}

// Field is a member declaration before layout
type Field struct {
	Name string
	Type Type
}

// Marker methods for Type interface
func (Tint) implType()     {}
func (Tpointer) implType() {}
func (Tarray) implType()   {}
func (Tstruct) implType()  {}

func (t Tint) Size() int {
	if t.Width == I8 {
		return 1
	}
	return WordSize
}

func (Tpointer) Size() int { return WordSize }

func (t Tarray) Size() int {
	return t.Elem.Size() * t.Len
}

func (t Tstruct) Size() int { return t.size }

// String methods for types
func (t Tint) String() string {
	if t.Width == I8 {
		return "char"
	}
	return "int"
}

func (t Tpointer) String() string {
	elem := t.Elem.String()
	if strings.HasSuffix(elem, "*") {
		return elem + "*"
	}
	return elem + " *"
}

func (t Tarray) String() string {
	var dims strings.Builder
	var elem Type = t
	for {
		arr, ok := elem.(Tarray)
		if !ok {
			break
		}
		fmt.Fprintf(&dims, "[%d]", arr.Len)
		elem = arr.Elem
	}
	return elem.String() + dims.String()
}

func (t Tstruct) String() string {
	var b strings.Builder
	b.WriteString("struct {")
	for _, m := range t.Members {
		fmt.Fprintf(&b, " %s;", Declarator(m.Type, m.Name))
	}
	b.WriteString(" }")
	return b.String()
}

// Common type constructors

// Int returns the word-sized int type
func Int() Type {
	return Tint{Width: I64}
}

// Char returns the byte-sized char type
func Char() Type {
	return Tint{Width: I8}
}

// Pointer returns a pointer to the given type
func Pointer(elem Type) Type {
	return Tpointer{Elem: elem}
}

// Array returns an array of n elements. n must be between 0 and
// MaxArrayLen(elem).
func Array(elem Type, n int) Type {
	if n < 0 || n > MaxArrayLen(elem) {
		panic(fmt.Sprintf("ctypes: invalid array length %d for %s", n, elem))
	}
	return Tarray{Elem: elem, Len: n}
}

// MaxArrayLen is the largest length an array of elem can have while its
// size still fits an int.
func MaxArrayLen(elem Type) int {
	size := elem.Size()
	if size == 0 {
		return math.MaxInt
	}
	return math.MaxInt / size
}

// StructLayout lays out members one at a time in declaration order with
// no padding: each member starts where the previous one ends and the
// struct size is the running total.
type StructLayout struct {
	members []Member
	offset  int
}

// Add appends a member, rejecting duplicate names and sizes past math.MaxInt
func (l *StructLayout) Add(f Field) error {
	for _, m := range l.members {
		if m.Name == f.Name {
			return fmt.Errorf("%w %q", ErrDuplicateMember, f.Name)
		}
	}
	size := f.Type.Size()
	if l.offset > math.MaxInt-size {
		return fmt.Errorf("%w: member %q at offset %d", ErrStructTooLarge, f.Name, l.offset)
	}
	l.members = append(l.members, Member{Name: f.Name, Type: f.Type, Offset: l.offset})
	l.offset += size
	return nil
}

// Type returns the struct laid out so far
func (l *StructLayout) Type() Type {
	return Tstruct{Members: l.members, size: l.offset}
}

// NewStruct lays out fields with a StructLayout
func NewStruct(fields []Field) (Type, error) {
	var l StructLayout
	for _, f := range fields {
		if err := l.Add(f); err != nil {
			return nil, err
		}
	}
	return l.Type(), nil
}

// Member looks up a member by name
func (t Tstruct) Member(name string) (Member, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// IsInteger reports whether t is char or int
func IsInteger(t Type) bool {
	_, ok := t.(Tint)
	return ok
}

// HasBase reports whether t is a pointer or an array
func HasBase(t Type) bool {
	_, ok := Base(t)
	return ok
}

// Base returns the pointed-to or element type of a pointer or array
func Base(t Type) (Type, bool) {
	switch t := t.(type) {
	case Tpointer:
		return t.Elem, true
	case Tarray:
		return t.Elem, true
	}
	return nil, false
}

// Equal checks if two types are equal. Struct types are compared
// structurally since they carry no tag name.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch ta := a.(type) {
	case Tint:
		tb, ok := b.(Tint)
		return ok && ta.Width == tb.Width
	case Tpointer:
		tb, ok := b.(Tpointer)
		return ok && Equal(ta.Elem, tb.Elem)
	case Tarray:
		tb, ok := b.(Tarray)
		return ok && ta.Len == tb.Len && Equal(ta.Elem, tb.Elem)
	case Tstruct:
		tb, ok := b.(Tstruct)
		if !ok || len(ta.Members) != len(tb.Members) {
			return false
		}
		for i, m := range ta.Members {
			n := tb.Members[i]
			if m.Name != n.Name || m.Offset != n.Offset || !Equal(m.Type, n.Type) {
				return false
			}
		}
		return true
	}
	return false
}

// Declarator renders a declaration of name with type t in C syntax, with
// array dimensions after the name: Declarator(char*[4], "x") is "char *x[4]".
func Declarator(t Type, name string) string {
	var dims strings.Builder
	for {
		arr, ok := t.(Tarray)
		if !ok {
			break
		}
		fmt.Fprintf(&dims, "[%d]", arr.Len)
		t = arr.Elem
	}
	base := t.String()
	if strings.HasSuffix(base, "*") {
		return base + name + dims.String()
	}
	return base + " " + name + dims.String()
}
