// Package types defines the type algebra used to describe values: a closed
// set of primitives, containers, records and domain scalars together with
// structural equality, canonical printers and reference-genome contexts.
//
// Types are immutable once constructed. Every transformation (field
// insertion, renaming, substitution) returns a new Type.
package types

import (
	"fmt"
	"math"
)

// Kind identifies the variant of a Type.
type Kind int

const (
	VoidKind Kind = iota
	Int32Kind
	Int64Kind
	Float32Kind
	Float64Kind
	StrKind
	BoolKind
	// CallKind is the kind of genotype calls.
	CallKind

	ArrayKind
	SetKind
	DictKind
	StructKind
	UnionKind
	TupleKind
	IntervalKind
	// LocusKind is the kind of genomic loci. Loci are tied to a reference genome.
	LocusKind
	NDArrayKind
	// VariableKind is the kind of unification variables.
	VariableKind

	kindMax
)

var kindStrings = [kindMax]string{
	VoidKind:     "void",
	Int32Kind:    "int32",
	Int64Kind:    "int64",
	Float32Kind:  "float32",
	Float64Kind:  "float64",
	StrKind:      "str",
	BoolKind:     "bool",
	CallKind:     "call",
	ArrayKind:    "array",
	SetKind:      "set",
	DictKind:     "dict",
	StructKind:   "struct",
	UnionKind:    "union",
	TupleKind:    "tuple",
	IntervalKind: "interval",
	LocusKind:    "locus",
	NDArrayKind:  "ndarray",
	VariableKind: "variable",
}

func (k Kind) String() string {
	if k < 0 || k >= kindMax {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindStrings[k]
}

// Type is a node of the type algebra. The set of implementations is closed:
// *Primitive, *Array, *Set, *Dict, *Struct, *Union, *Tuple, *Interval,
// *Locus, *NDArray and *Variable.
type Type interface {
	// Kind returns the variant of the type.
	Kind() Kind
	// String returns the display form, which Parse accepts.
	String() string
	// Parsable returns the interchange token understood by the
	// execution engine.
	Parsable() string
	// Context returns the external resources referenced by the type.
	Context() *Context

	isType()
}

// unhandled reports a Type implementation missing from a dispatch site.
func unhandled(t Type) string {
	return fmt.Sprintf("types: unhandled type %T", t)
}

// Primitive is a type without parameters.
type Primitive struct {
	kind Kind
}

var (
	Void    = &Primitive{kind: VoidKind}
	Int32   = &Primitive{kind: Int32Kind}
	Int64   = &Primitive{kind: Int64Kind}
	Float32 = &Primitive{kind: Float32Kind}
	Float64 = &Primitive{kind: Float64Kind}
	Str     = &Primitive{kind: StrKind}
	Bool    = &Primitive{kind: BoolKind}
	Call    = &Primitive{kind: CallKind}
)

func (p *Primitive) Kind() Kind        { return p.kind }
func (p *Primitive) Context() *Context { return emptyContext }
func (*Primitive) isType()             {}

// Bounds returns the inclusive range of a fixed-width integer type.
// ok is false for every other primitive.
func (p *Primitive) Bounds() (min, max int64, ok bool) {
	switch p.kind {
	case Int32Kind:
		return math.MinInt32, math.MaxInt32, true
	case Int64Kind:
		return math.MinInt64, math.MaxInt64, true
	}
	return 0, 0, false
}

// Array is an ordered, homogeneous sequence.
type Array struct {
	elem Type
	ctx  contextMemo
}

func NewArray(elem Type) *Array { return &Array{elem: elem} }

func (a *Array) Elem() Type { return a.elem }
func (a *Array) Kind() Kind { return ArrayKind }
func (*Array) isType()      {}

func (a *Array) Context() *Context {
	return a.ctx.get(a.elem.Context)
}

// Set is an unordered collection of distinct elements.
type Set struct {
	elem Type
	ctx  contextMemo
}

func NewSet(elem Type) *Set { return &Set{elem: elem} }

func (s *Set) Elem() Type { return s.elem }
func (s *Set) Kind() Kind { return SetKind }
func (*Set) isType()      {}

func (s *Set) Context() *Context {
	return s.ctx.get(s.elem.Context)
}

// Dict maps keys to values. Keys need not be strings.
type Dict struct {
	key, value Type
	ctx        contextMemo
}

func NewDict(key, value Type) *Dict { return &Dict{key: key, value: value} }

func (d *Dict) Key() Type   { return d.key }
func (d *Dict) Value() Type { return d.value }
func (d *Dict) Kind() Kind  { return DictKind }
func (*Dict) isType()       {}

// ElementType returns the entry type struct{key: K, value: V} that a dict
// is made of when traversed as an array of pairs.
func (d *Dict) ElementType() *Struct {
	return MustStruct(Field{Name: "key", Type: d.key}, Field{Name: "value", Type: d.value})
}

func (d *Dict) Context() *Context {
	return d.ctx.get(func() *Context { return UnionContexts(d.key, d.value) })
}

// Field is a named member of a struct or a case of a union.
type Field struct {
	Name string
	Type Type
}

// fieldList is an ordered list of uniquely named fields.
type fieldList struct {
	fields []Field
	index  map[string]int
}

func newFieldList(fields []Field) (fieldList, error) {
	l := fieldList{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := l.index[f.Name]; dup {
			return fieldList{}, &DuplicateFieldError{Name: f.Name}
		}
		l.index[f.Name] = i
		l.fields[i] = f
	}
	return l, nil
}

func (l *fieldList) lookup(name string) (Type, bool) {
	i, ok := l.index[name]
	if !ok {
		return nil, false
	}
	return l.fields[i].Type, true
}

func (l *fieldList) names() []string {
	names := make([]string, len(l.fields))
	for i, f := range l.fields {
		names[i] = f.Name
	}
	return names
}

func (l *fieldList) context() *Context {
	ts := make([]Type, len(l.fields))
	for i, f := range l.fields {
		ts[i] = f.Type
	}
	return UnionContexts(ts...)
}

// Struct is a record of named fields. Field order is significant.
type Struct struct {
	fieldList
	ctx contextMemo
}

// NewStruct returns a struct with the given fields in order. Field names
// must be distinct.
func NewStruct(fields ...Field) (*Struct, error) {
	l, err := newFieldList(fields)
	if err != nil {
		return nil, err
	}
	return &Struct{fieldList: l}, nil
}

// MustStruct is like NewStruct but panics on duplicate field names.
func MustStruct(fields ...Field) *Struct {
	s, err := NewStruct(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Struct) Kind() Kind { return StructKind }
func (*Struct) isType()      {}

func (s *Struct) Context() *Context {
	return s.ctx.get(s.fieldList.context)
}

// Union is a tagged union of named cases. Case order is significant.
type Union struct {
	fieldList
	ctx contextMemo
}

// NewUnion returns a union with the given cases in order. Case names must
// be distinct.
func NewUnion(cases ...Field) (*Union, error) {
	l, err := newFieldList(cases)
	if err != nil {
		return nil, err
	}
	return &Union{fieldList: l}, nil
}

// MustUnion is like NewUnion but panics on duplicate case names.
func MustUnion(cases ...Field) *Union {
	u, err := NewUnion(cases...)
	if err != nil {
		panic(err)
	}
	return u
}

func (u *Union) Kind() Kind { return UnionKind }
func (*Union) isType()      {}

// Cases returns the cases of the union in order.
func (u *Union) Cases() []Field { return append([]Field(nil), u.fields...) }

// Case returns the type of the named case.
func (u *Union) Case(name string) (Type, bool) { return u.lookup(name) }

// Len returns the number of cases.
func (u *Union) Len() int { return len(u.fields) }

func (u *Union) Context() *Context {
	return u.ctx.get(u.fieldList.context)
}

// Tuple is a fixed-length sequence of positional elements.
type Tuple struct {
	elems []Type
	ctx   contextMemo
}

func NewTuple(elems ...Type) *Tuple {
	return &Tuple{elems: append([]Type(nil), elems...)}
}

// Elems returns the element types in order.
func (t *Tuple) Elems() []Type   { return append([]Type(nil), t.elems...) }
func (t *Tuple) Elem(i int) Type { return t.elems[i] }
func (t *Tuple) Len() int        { return len(t.elems) }
func (t *Tuple) Kind() Kind      { return TupleKind }
func (*Tuple) isType()           {}

func (t *Tuple) Context() *Context {
	return t.ctx.get(func() *Context { return UnionContexts(t.elems...) })
}

// Interval is a range over an ordered point type.
type Interval struct {
	point Type
	ctx   contextMemo
}

func NewInterval(point Type) *Interval { return &Interval{point: point} }

func (i *Interval) Point() Type { return i.point }
func (i *Interval) Kind() Kind  { return IntervalKind }
func (*Interval) isType()       {}

func (i *Interval) Context() *Context {
	return i.ctx.get(i.point.Context)
}

// Locus is a genomic coordinate on the named reference genome.
type Locus struct {
	reference string
	ctx       contextMemo
}

func NewLocus(reference string) *Locus { return &Locus{reference: reference} }

// Reference returns the name of the reference genome.
func (l *Locus) Reference() string { return l.reference }
func (l *Locus) Kind() Kind        { return LocusKind }
func (*Locus) isType()             {}

func (l *Locus) Context() *Context {
	return l.ctx.get(func() *Context { return NewContext(l.reference) })
}

// NDArray is an n-dimensional array. Its rank may be a nat variable until
// unification resolves it.
type NDArray struct {
	elem Type
	rank Nat
	ctx  contextMemo
}

func NewNDArray(elem Type, rank Nat) *NDArray {
	return &NDArray{elem: elem, rank: rank}
}

func (n *NDArray) Elem() Type { return n.elem }

// RankNat returns the rank, which may be unresolved.
func (n *NDArray) RankNat() Nat { return n.rank }

// Rank returns the number of dimensions. It panics if the rank is still a
// nat variable.
func (n *NDArray) Rank() int {
	if n.rank.IsVariable() {
		panic(fmt.Sprintf("types: rank of %s is unresolved", n))
	}
	return n.rank.n
}

func (n *NDArray) Kind() Kind { return NDArrayKind }
func (*NDArray) isType()      {}

func (n *NDArray) Context() *Context {
	return n.ctx.get(n.elem.Context)
}

// Variable is a named unification variable, optionally restricted by a
// constraint. Bindings live in the unification session, not in the
// variable.
type Variable struct {
	name       string
	constraint Constraint
}

func NewVariable(name string, constraint Constraint) *Variable {
	return &Variable{name: name, constraint: constraint}
}

func (v *Variable) Name() string           { return v.name }
func (v *Variable) Constraint() Constraint { return v.constraint }
func (v *Variable) Kind() Kind             { return VariableKind }
func (v *Variable) Context() *Context      { return emptyContext }
func (*Variable) isType()                  {}

// Equal reports whether two types are structurally identical. Struct and
// union fields must appear in the same order.
func Equal(a, b Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case *Primitive:
		return true
	case *Array:
		return Equal(a.elem, b.(*Array).elem)
	case *Set:
		return Equal(a.elem, b.(*Set).elem)
	case *Dict:
		bd := b.(*Dict)
		return Equal(a.key, bd.key) && Equal(a.value, bd.value)
	case *Struct:
		return fieldsEqual(a.fields, b.(*Struct).fields)
	case *Union:
		return fieldsEqual(a.fields, b.(*Union).fields)
	case *Tuple:
		bt := b.(*Tuple)
		if len(a.elems) != len(bt.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], bt.elems[i]) {
				return false
			}
		}
		return true
	case *Interval:
		return Equal(a.point, b.(*Interval).point)
	case *Locus:
		return a.reference == b.(*Locus).reference
	case *NDArray:
		bn := b.(*NDArray)
		return a.rank == bn.rank && Equal(a.elem, bn.elem)
	case *Variable:
		bv := b.(*Variable)
		return a.name == bv.name && a.constraint == bv.constraint
	default:
		panic(unhandled(a))
	}
}

func fieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !Equal(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}
