package typechecker

import (
	"fmt"

	"github.com/hail-is/hailtype/types"
)

// Unifier holds the variable bindings of one unification session.
// Variables with the same name share a binding within a session; separate
// Unifiers never share bindings. A Unifier is not safe for concurrent use.
type Unifier struct {
	bindings    map[string]types.Type
	natBindings map[string]types.Nat
}

func NewUnifier() *Unifier {
	return &Unifier{
		bindings:    make(map[string]types.Type),
		natBindings: make(map[string]types.Nat),
	}
}

// Lookup returns the type bound to the named variable.
func (u *Unifier) Lookup(name string) (types.Type, bool) {
	t, ok := u.bindings[name]
	return t, ok
}

// Unify matches the pattern t against candidate, binding the variables of
// t on the way. It reports false on any conflict. Bindings made before a
// conflict is found are kept; callers retrying with another pattern should
// Clear first.
//
// Struct fields and union cases are matched by position: names must agree
// pairwise in order.
func (u *Unifier) Unify(t, candidate types.Type) bool {
	if candidate == nil {
		return false
	}
	switch t := t.(type) {
	case *types.Primitive, *types.Locus:
		return types.Equal(t, candidate)
	case *types.Array:
		c, ok := candidate.(*types.Array)
		return ok && u.Unify(t.Elem(), c.Elem())
	case *types.Set:
		c, ok := candidate.(*types.Set)
		return ok && u.Unify(t.Elem(), c.Elem())
	case *types.Dict:
		c, ok := candidate.(*types.Dict)
		return ok && u.Unify(t.Key(), c.Key()) && u.Unify(t.Value(), c.Value())
	case *types.Interval:
		c, ok := candidate.(*types.Interval)
		return ok && u.Unify(t.Point(), c.Point())
	case *types.NDArray:
		c, ok := candidate.(*types.NDArray)
		return ok && u.Unify(t.Elem(), c.Elem()) && u.unifyNat(t.RankNat(), c.RankNat())
	case *types.Struct:
		c, ok := candidate.(*types.Struct)
		return ok && u.unifyFields(t.Fields(), c.Fields())
	case *types.Union:
		c, ok := candidate.(*types.Union)
		return ok && u.unifyFields(t.Cases(), c.Cases())
	case *types.Tuple:
		c, ok := candidate.(*types.Tuple)
		if !ok || t.Len() != c.Len() {
			return false
		}
		for i := 0; i < t.Len(); i++ {
			if !u.Unify(t.Elem(i), c.Elem(i)) {
				return false
			}
		}
		return true
	case *types.Variable:
		if !t.Constraint().Admits(candidate) {
			return false
		}
		if bound, ok := u.bindings[t.Name()]; ok {
			return types.Equal(bound, candidate)
		}
		u.bindings[t.Name()] = candidate
		return true
	default:
		panic(fmt.Sprintf("typechecker: unhandled type %T", t))
	}
}

func (u *Unifier) unifyFields(fs, cs []types.Field) bool {
	if len(fs) != len(cs) {
		return false
	}
	for i := range fs {
		if fs[i].Name != cs[i].Name || !u.Unify(fs[i].Type, cs[i].Type) {
			return false
		}
	}
	return true
}

func (u *Unifier) unifyNat(n, candidate types.Nat) bool {
	if !n.IsVariable() {
		return n == candidate
	}
	if bound, ok := u.natBindings[n.Name()]; ok {
		return bound == candidate
	}
	u.natBindings[n.Name()] = candidate
	return true
}

// UnifyAll unifies patterns against candidates pairwise in one session.
func (u *Unifier) UnifyAll(patterns, candidates []types.Type) bool {
	if len(patterns) != len(candidates) {
		return false
	}
	for i := range patterns {
		if !u.Unify(patterns[i], candidates[i]) {
			return false
		}
	}
	return true
}

// Subst returns t with every variable replaced by its binding. It panics
// if t mentions a variable that is not bound.
func (u *Unifier) Subst(t types.Type) types.Type {
	switch t := t.(type) {
	case *types.Primitive, *types.Locus:
		return t
	case *types.Array:
		return types.NewArray(u.Subst(t.Elem()))
	case *types.Set:
		return types.NewSet(u.Subst(t.Elem()))
	case *types.Dict:
		return types.NewDict(u.Subst(t.Key()), u.Subst(t.Value()))
	case *types.Interval:
		return types.NewInterval(u.Subst(t.Point()))
	case *types.NDArray:
		rank := t.RankNat()
		if rank.IsVariable() {
			bound, ok := u.natBindings[rank.Name()]
			if !ok {
				panic(fmt.Sprintf("typechecker: nat variable %s is unbound", rank.Name()))
			}
			rank = bound
		}
		return types.NewNDArray(u.Subst(t.Elem()), rank)
	case *types.Struct:
		return types.MustStruct(u.substFields(t.Fields())...)
	case *types.Union:
		return types.MustUnion(u.substFields(t.Cases())...)
	case *types.Tuple:
		elems := t.Elems()
		for i, e := range elems {
			elems[i] = u.Subst(e)
		}
		return types.NewTuple(elems...)
	case *types.Variable:
		bound, ok := u.bindings[t.Name()]
		if !ok {
			panic(fmt.Sprintf("typechecker: type variable %s is unbound", t))
		}
		return bound
	default:
		panic(fmt.Sprintf("typechecker: unhandled type %T", t))
	}
}

func (u *Unifier) substFields(fields []types.Field) []types.Field {
	for i, f := range fields {
		fields[i] = types.Field{Name: f.Name, Type: u.Subst(f.Type)}
	}
	return fields
}

// Resolved reports whether every variable in t is bound, so that Subst
// will succeed.
func (u *Unifier) Resolved(t types.Type) bool {
	resolved := true
	walkVariables(t, func(v *types.Variable) {
		if _, ok := u.bindings[v.Name()]; !ok {
			resolved = false
		}
	}, func(n types.Nat) {
		if _, ok := u.natBindings[n.Name()]; !ok {
			resolved = false
		}
	})
	return resolved
}

// Clear releases the bindings of every variable mentioned in t.
func (u *Unifier) Clear(t types.Type) {
	walkVariables(t, func(v *types.Variable) {
		delete(u.bindings, v.Name())
	}, func(n types.Nat) {
		delete(u.natBindings, n.Name())
	})
}

// Reset releases all bindings of the session.
func (u *Unifier) Reset() {
	clear(u.bindings)
	clear(u.natBindings)
}

// walkVariables calls onVar for each type variable and onNat for each nat
// variable reachable from t.
func walkVariables(t types.Type, onVar func(*types.Variable), onNat func(types.Nat)) {
	switch t := t.(type) {
	case *types.Primitive, *types.Locus:
	case *types.Array:
		walkVariables(t.Elem(), onVar, onNat)
	case *types.Set:
		walkVariables(t.Elem(), onVar, onNat)
	case *types.Dict:
		walkVariables(t.Key(), onVar, onNat)
		walkVariables(t.Value(), onVar, onNat)
	case *types.Interval:
		walkVariables(t.Point(), onVar, onNat)
	case *types.NDArray:
		walkVariables(t.Elem(), onVar, onNat)
		if rank := t.RankNat(); rank.IsVariable() {
			onNat(rank)
		}
	case *types.Struct:
		for _, f := range t.Fields() {
			walkVariables(f.Type, onVar, onNat)
		}
	case *types.Union:
		for _, f := range t.Cases() {
			walkVariables(f.Type, onVar, onNat)
		}
	case *types.Tuple:
		for _, e := range t.Elems() {
			walkVariables(e, onVar, onNat)
		}
	case *types.Variable:
		onVar(t)
	default:
		panic(fmt.Sprintf("typechecker: unhandled type %T", t))
	}
}

// Signature is the type of a polymorphic operation: parameter patterns
// that may share variables and a return type written in terms of them.
type Signature struct {
	Params []types.Type
	Return types.Type
}

// Instantiate matches args against the parameters in a fresh session and
// returns the return type with the resulting bindings substituted.
func (s Signature) Instantiate(args ...types.Type) (types.Type, bool) {
	u := NewUnifier()
	if !u.UnifyAll(s.Params, args) || !u.Resolved(s.Return) {
		return nil, false
	}
	return u.Subst(s.Return), true
}
