package types

import (
	"fmt"
	"strconv"
)

// Nat is a natural number used as an ndarray rank. It is either a literal
// or a named variable resolved by unification.
type Nat struct {
	n    int
	name string
}

// NatLiteral returns the concrete natural n.
func NatLiteral(n int) Nat {
	if n < 0 {
		panic(fmt.Sprintf("types: negative nat %d", n))
	}
	return Nat{n: n}
}

// NatVariable returns an unresolved nat named name. The name must not be
// empty.
func NatVariable(name string) Nat {
	if name == "" {
		panic("types: empty nat variable name")
	}
	return Nat{name: name}
}

// ParseNat interprets an unescaped identifier as a nat: all-digit
// identifiers are literals, anything else names a variable.
func ParseNat(s string) Nat {
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return NatLiteral(n)
	}
	return NatVariable(s)
}

func (n Nat) IsVariable() bool { return n.name != "" }

// Name returns the variable name, or "" for a literal.
func (n Nat) Name() string { return n.name }

// Value returns the literal value. It panics on a variable.
func (n Nat) Value() int {
	if n.IsVariable() {
		panic(fmt.Sprintf("types: nat variable %s has no value", n.name))
	}
	return n.n
}

// String prints a variable whose name reads as a literal in backticks.
func (n Nat) String() string {
	if n.IsVariable() {
		if allDigits(n.name) {
			return quoteIdentifier(n.name)
		}
		return EscapeIdentifier(n.name)
	}
	return strconv.Itoa(n.n)
}

// Constraint restricts what a Variable may be bound to.
type Constraint string

const (
	Unconstrained     Constraint = ""
	NumericConstraint Constraint = "numeric"
	Int32Constraint   Constraint = "int32"
	Int64Constraint   Constraint = "int64"
	Float32Constraint Constraint = "float32"
	Float64Constraint Constraint = "float64"
	LocusConstraint   Constraint = "locus"
	StructConstraint  Constraint = "struct"
	UnionConstraint   Constraint = "union"
	TupleConstraint   Constraint = "tuple"
)

// ParseConstraint returns the constraint spelled s.
func ParseConstraint(s string) (Constraint, error) {
	switch c := Constraint(s); c {
	case Unconstrained, NumericConstraint, Int32Constraint, Int64Constraint,
		Float32Constraint, Float64Constraint, LocusConstraint,
		StructConstraint, UnionConstraint, TupleConstraint:
		return c, nil
	}
	return "", fmt.Errorf("unknown type variable constraint %q", s)
}

// Admits reports whether t satisfies the constraint.
func (c Constraint) Admits(t Type) bool {
	switch c {
	case Unconstrained:
		return true
	case NumericConstraint:
		return IsNumeric(t)
	case Int32Constraint:
		return Equal(t, Int32)
	case Int64Constraint:
		return Equal(t, Int64)
	case Float32Constraint:
		return Equal(t, Float32)
	case Float64Constraint:
		return Equal(t, Float64)
	case LocusConstraint:
		return t.Kind() == LocusKind
	case StructConstraint:
		return t.Kind() == StructKind
	case UnionConstraint:
		return t.Kind() == UnionKind
	case TupleConstraint:
		return t.Kind() == TupleKind
	}
	return false
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
