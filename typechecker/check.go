package typechecker

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/hail-is/hailtype/types"
	"github.com/hail-is/hailtype/value"
)

// VisitFunc is called by Traverse for every type and value pair, parents
// before children. Returning false skips the children of v.
type VisitFunc func(t types.Type, v any, path []string) (bool, error)

// Traverse walks t and v together. Children are visited only for
// non-nil values whose shape matches t; the visitor is responsible for
// rejecting values that do not match.
func Traverse(t types.Type, v any, visit VisitFunc) error {
	return traverse(t, v, nil, visit)
}

func traverse(t types.Type, v any, path []string, visit VisitFunc) error {
	descend, err := visit(t, v, path)
	if err != nil || !descend || v == nil {
		return err
	}
	child := func(ct types.Type, cv any, component string) error {
		return traverse(ct, cv, append(slices.Clip(path), component), visit)
	}

	switch t := t.(type) {
	case *types.Array:
		for i, e := range elements(v) {
			if err := child(t.Elem(), e, index(i)); err != nil {
				return err
			}
		}
	case *types.Set:
		for i, e := range elements(v) {
			if err := child(t.Elem(), e, index(i)); err != nil {
				return err
			}
		}
	case *types.Dict:
		entries, _ := dictEntries(v)
		for _, e := range entries {
			component := "[" + fmt.Sprint(e.Key) + "]"
			if err := child(t.Key(), e.Key, component); err != nil {
				return err
			}
			if err := child(t.Value(), e.Value, component); err != nil {
				return err
			}
		}
	case *types.Struct:
		m, _ := v.(map[string]any)
		for _, name := range sortedKeys(m) {
			ft, ok := t.Field(name)
			if !ok {
				continue
			}
			if err := child(ft, m[name], name); err != nil {
				return err
			}
		}
	case *types.Union:
		if c, ok := asCase(v); ok {
			if ct, ok := t.Case(c.Name); ok {
				return child(ct, c.Value, c.Name)
			}
		}
	case *types.Tuple:
		tup, _ := v.(value.Tuple)
		if len(tup) != t.Len() {
			return nil
		}
		for i, e := range tup {
			if err := child(t.Elem(i), e, index(i)); err != nil {
				return err
			}
		}
	case *types.Interval:
		if iv, ok := asInterval(v); ok {
			if err := child(t.Point(), iv.Start, "start"); err != nil {
				return err
			}
			return child(t.Point(), iv.End, "end")
		}
	case *types.NDArray:
		if a, ok := asNDArray(v); ok {
			for i, e := range a.Data {
				if err := child(t.Elem(), e, index(i)); err != nil {
					return err
				}
			}
		}
	case *types.Primitive, *types.Locus, *types.Variable:
	default:
		panic(fmt.Sprintf("typechecker: unhandled type %T", t))
	}
	return nil
}

// Typecheck reports the first place where v does not conform to t. Nil is
// accepted at every type.
func Typecheck(t types.Type, v any) error {
	return Traverse(t, v, func(t types.Type, v any, path []string) (bool, error) {
		if err := checkOneLevel(t, v, path); err != nil {
			return false, err
		}
		return true, nil
	})
}

// checkOneLevel checks that v has the shape of t without looking at
// children.
func checkOneLevel(t types.Type, v any, path []string) error {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	mismatch := func(want string) error {
		return &TypeError{
			Expected: t.String(),
			Found:    fmt.Sprintf("%T", v),
			Context:  fmt.Sprintf("type '%s' expected %s, but found %T", t, want, v),
			Path:     path,
		}
	}

	switch t := t.(type) {
	case *types.Primitive:
		switch t.Kind() {
		case types.VoidKind:
			return mismatch("no value")
		case types.Int32Kind, types.Int64Kind:
			return checkInteger(t, v, rv, path, mismatch)
		case types.Float32Kind, types.Float64Kind:
			if !rv.CanFloat() && !rv.CanInt() && !rv.CanUint() {
				return mismatch("a number")
			}
		case types.StrKind:
			if rv.Kind() != reflect.String {
				return mismatch("a string")
			}
		case types.BoolKind:
			if rv.Kind() != reflect.Bool {
				return mismatch("a bool")
			}
		case types.CallKind:
			if _, ok := asCall(v); !ok {
				return mismatch("a value.Call")
			}
		}
	case *types.Array:
		switch v.(type) {
		case value.Set, value.Dict, value.Tuple:
			return mismatch("a slice")
		}
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return mismatch("a slice")
		}
	case *types.Set:
		if _, ok := v.(value.Set); !ok {
			return mismatch("a value.Set")
		}
	case *types.Dict:
		if _, ok := dictEntries(v); !ok {
			return mismatch("a value.Dict or map")
		}
	case *types.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return mismatch("a map[string]any")
		}
		for name := range m {
			if _, ok := t.Field(name); !ok {
				return &FieldError{
					Expected: t.String(),
					Declared: t.Names(),
					Found:    sortedKeys(m),
					Path:     path,
				}
			}
		}
	case *types.Union:
		c, ok := asCase(v)
		if !ok {
			return mismatch("a value.Case")
		}
		if _, ok := t.Case(c.Name); !ok {
			return &TypeError{
				Expected: t.String(),
				Found:    fmt.Sprintf("case '%s'", c.Name),
				Context:  fmt.Sprintf("type '%s' has no case '%s'", t, c.Name),
				Path:     path,
			}
		}
	case *types.Tuple:
		tup, ok := v.(value.Tuple)
		if !ok {
			return mismatch("a value.Tuple")
		}
		if len(tup) != t.Len() {
			return &TypeError{
				Expected: t.String(),
				Found:    fmt.Sprintf("tuple of size %d", len(tup)),
				Context:  fmt.Sprintf("%s expected tuple of size %d, but found size %d", t, t.Len(), len(tup)),
				Path:     path,
			}
		}
	case *types.Interval:
		if _, ok := asInterval(v); !ok {
			return mismatch("a value.Interval")
		}
	case *types.Locus:
		l, ok := asLocus(v)
		if !ok {
			return mismatch("a value.Locus")
		}
		if l.Reference != t.Reference() {
			return &TypeError{
				Expected: t.String(),
				Found:    fmt.Sprintf("locus on %s", l.Reference),
				Context:  fmt.Sprintf("type '%s' encountered locus with reference genome '%s'", t, l.Reference),
				Path:     path,
			}
		}
	case *types.NDArray:
		a, ok := asNDArray(v)
		if !ok {
			return mismatch("a *value.NDArray")
		}
		if int64(len(a.Data)) != a.Size() {
			return &TypeError{
				Expected: t.String(),
				Found:    fmt.Sprintf("%d elements for shape %v", len(a.Data), a.Shape),
				Context:  fmt.Sprintf("ndarray of shape %v must hold %d elements, found %d", a.Shape, a.Size(), len(a.Data)),
				Path:     path,
			}
		}
		if len(a.Strides) != len(a.Shape) {
			return &TypeError{
				Expected: t.String(),
				Found:    fmt.Sprintf("%d strides for shape %v", len(a.Strides), a.Shape),
				Context:  fmt.Sprintf("ndarray of shape %v needs %d strides, found %d", a.Shape, len(a.Shape), len(a.Strides)),
				Path:     path,
			}
		}
		if rank := t.RankNat(); !rank.IsVariable() && rank.Value() != a.Ndim() {
			return &TypeError{
				Expected: t.String(),
				Found:    fmt.Sprintf("ndarray with %d dimensions", a.Ndim()),
				Context:  fmt.Sprintf("type '%s' expected %d dimensions, but found %d", t, rank.Value(), a.Ndim()),
				Path:     path,
			}
		}
	case *types.Variable:
		return &TypeError{
			Expected: t.String(),
			Found:    fmt.Sprintf("%T", v),
			Context:  fmt.Sprintf("cannot check a value against unresolved type variable %s", t),
			Path:     path,
		}
	default:
		panic(fmt.Sprintf("typechecker: unhandled type %T", t))
	}
	return nil
}

func checkInteger(t *types.Primitive, v any, rv reflect.Value, path []string, mismatch func(string) error) error {
	min, max, _ := t.Bounds()
	switch {
	case rv.CanInt():
		if n := rv.Int(); n < min || n > max {
			return &RangeError{Expected: t.String(), Value: v, Min: min, Max: max, Path: path}
		}
	case rv.CanUint():
		if n := rv.Uint(); n > uint64(max) {
			return &RangeError{Expected: t.String(), Value: v, Min: min, Max: max, Path: path}
		}
	default:
		return mismatch("an integer")
	}
	return nil
}

func index(i int) string { return "[" + strconv.Itoa(i) + "]" }

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// elements returns the items of a slice or array value.
func elements(v any) []any {
	switch v := v.(type) {
	case []any:
		return v
	case value.Set:
		return v
	case value.Tuple:
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// dictEntries returns the entries of a value.Dict, or of a Go map in key
// order.
func dictEntries(v any) (value.Dict, bool) {
	if d, ok := v.(value.Dict); ok {
		return d, true
	}
	d, err := value.DictFromMap(v)
	return d, err == nil
}

func asCall(v any) (value.Call, bool) {
	switch c := v.(type) {
	case value.Call:
		return c, true
	case *value.Call:
		if c != nil {
			return *c, true
		}
	}
	return value.Call{}, false
}

func asCase(v any) (value.Case, bool) {
	switch c := v.(type) {
	case value.Case:
		return c, true
	case *value.Case:
		if c != nil {
			return *c, true
		}
	}
	return value.Case{}, false
}

func asInterval(v any) (value.Interval, bool) {
	switch i := v.(type) {
	case value.Interval:
		return i, true
	case *value.Interval:
		if i != nil {
			return *i, true
		}
	}
	return value.Interval{}, false
}

func asLocus(v any) (value.Locus, bool) {
	switch l := v.(type) {
	case value.Locus:
		return l, true
	case *value.Locus:
		if l != nil {
			return *l, true
		}
	}
	return value.Locus{}, false
}

func asNDArray(v any) (*value.NDArray, bool) {
	switch a := v.(type) {
	case *value.NDArray:
		return a, a != nil
	case value.NDArray:
		return &a, true
	}
	return nil, false
}
