package codec

import (
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/hail-is/hailtype/types"
	"github.com/hail-is/hailtype/value"
)

// Encode converts v to a JSON tree under t. Nil encodes to nil at every
// type.
func Encode(t types.Type, v any) (any, error) {
	return encode(t, v, nil)
}

func encode(t types.Type, v any, path []string) (any, error) {
	if v == nil {
		return nil, nil
	}
	fail := func(format string, args ...any) error {
		return &EncodeError{
			Type:    t.String(),
			Found:   fmt.Sprintf("%T", v),
			Message: fmt.Sprintf(format, args...),
			Path:    path,
		}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}

	switch t := t.(type) {
	case *types.Primitive:
		switch t.Kind() {
		case types.VoidKind:
			return nil, fail("void has no values")
		case types.Int32Kind, types.Int64Kind:
			return encodeInteger(t, v, rv, fail)
		case types.Float32Kind, types.Float64Kind:
			var f float64
			switch {
			case rv.CanFloat():
				f = rv.Float()
			case rv.CanInt():
				f = float64(rv.Int())
			case rv.CanUint():
				f = float64(rv.Uint())
			default:
				return nil, fail("expected a number")
			}
			return encodeFloat(f, t.Kind() == types.Float32Kind), nil
		case types.StrKind:
			if rv.Kind() != reflect.String {
				return nil, fail("expected a string")
			}
			return rv.String(), nil
		case types.BoolKind:
			if rv.Kind() != reflect.Bool {
				return nil, fail("expected a bool")
			}
			return rv.Bool(), nil
		case types.CallKind:
			switch c := v.(type) {
			case value.Call:
				return c.String(), nil
			case *value.Call:
				return c.String(), nil
			}
			return nil, fail("expected a value.Call")
		}
		panic(fmt.Sprintf("codec: unhandled primitive %s", t))

	case *types.Array:
		switch v.(type) {
		case value.Set, value.Dict, value.Tuple:
			return nil, fail("expected a slice")
		}
		elems, ok := sliceElements(rv)
		if !ok {
			return nil, fail("expected a slice")
		}
		return encodeElements(t.Elem(), elems, path)

	case *types.Set:
		s, ok := v.(value.Set)
		if !ok {
			return nil, fail("expected a value.Set")
		}
		return encodeElements(t.Elem(), s, path)

	case *types.Dict:
		d, ok := v.(value.Dict)
		if !ok {
			var err error
			if d, err = value.DictFromMap(v); err != nil {
				return nil, fail("expected a value.Dict or map")
			}
		}
		out := make([]any, len(d))
		for i, e := range d {
			component := index(i)
			key, err := encode(t.Key(), e.Key, appendPath(path, component))
			if err != nil {
				return nil, err
			}
			val, err := encode(t.Value(), e.Value, appendPath(path, component))
			if err != nil {
				return nil, err
			}
			out[i] = Object{{"key", key}, {"value", val}}
		}
		return out, nil

	case *types.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fail("expected a map[string]any")
		}
		for _, name := range sortedKeys(m) {
			if _, ok := t.Field(name); !ok {
				return nil, fail("unknown field %q", name)
			}
		}
		obj := make(Object, 0, t.Len())
		for _, f := range t.Fields() {
			e, err := encode(f.Type, m[f.Name], appendPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			obj = append(obj, Member{f.Name, e})
		}
		return obj, nil

	case *types.Union:
		var c value.Case
		switch cv := v.(type) {
		case value.Case:
			c = cv
		case *value.Case:
			c = *cv
		default:
			return nil, fail("expected a value.Case")
		}
		ct, ok := t.Case(c.Name)
		if !ok {
			return nil, fail("no case %q", c.Name)
		}
		e, err := encode(ct, c.Value, appendPath(path, c.Name))
		if err != nil {
			return nil, err
		}
		return Object{{c.Name, e}}, nil

	case *types.Tuple:
		tup, ok := v.(value.Tuple)
		if !ok {
			return nil, fail("expected a value.Tuple")
		}
		if len(tup) != t.Len() {
			return nil, fail("expected %d elements, found %d", t.Len(), len(tup))
		}
		out := make([]any, len(tup))
		for i, e := range tup {
			enc, err := encode(t.Elem(i), e, appendPath(path, index(i)))
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil

	case *types.Interval:
		var iv value.Interval
		switch ivv := v.(type) {
		case value.Interval:
			iv = ivv
		case *value.Interval:
			iv = *ivv
		default:
			return nil, fail("expected a value.Interval")
		}
		start, err := encode(t.Point(), iv.Start, appendPath(path, "start"))
		if err != nil {
			return nil, err
		}
		end, err := encode(t.Point(), iv.End, appendPath(path, "end"))
		if err != nil {
			return nil, err
		}
		return Object{
			{"start", start},
			{"end", end},
			{"includeStart", iv.IncludesStart},
			{"includeEnd", iv.IncludesEnd},
		}, nil

	case *types.Locus:
		var l value.Locus
		switch lv := v.(type) {
		case value.Locus:
			l = lv
		case *value.Locus:
			l = *lv
		default:
			return nil, fail("expected a value.Locus")
		}
		if l.Reference != "" && l.Reference != t.Reference() {
			return nil, fail("locus is on reference genome '%s'", l.Reference)
		}
		return Object{{"contig", l.Contig}, {"position", l.Position}}, nil

	case *types.NDArray:
		var a *value.NDArray
		switch av := v.(type) {
		case *value.NDArray:
			a = av
		case value.NDArray:
			a = &av
		default:
			return nil, fail("expected a *value.NDArray")
		}
		if int64(len(a.Data)) != a.Size() {
			return nil, fail("shape %v holds %d elements, found %d", a.Shape, a.Size(), len(a.Data))
		}
		if len(a.Strides) != len(a.Shape) {
			return nil, fail("%d strides for %d dimensions", len(a.Strides), len(a.Shape))
		}
		if rank := t.RankNat(); !rank.IsVariable() && rank.Value() != a.Ndim() {
			return nil, fail("expected %d dimensions, found %d", rank.Value(), a.Ndim())
		}
		data, err := encodeElements(t.Elem(), a.Data, path)
		if err != nil {
			return nil, err
		}
		return Object{
			{"shape", slices.Clone(a.Shape)},
			{"strides", slices.Clone(a.Strides)},
			{"flags", 0},
			{"data", data},
			{"offset", 0},
		}, nil

	case *types.Variable:
		return nil, fail("unresolved type variable")
	default:
		panic(fmt.Sprintf("codec: unhandled type %T", t))
	}
}

func encodeInteger(t *types.Primitive, v any, rv reflect.Value, fail func(string, ...any) error) (any, error) {
	min, max, _ := t.Bounds()
	var n int64
	switch {
	case rv.CanInt():
		n = rv.Int()
	case rv.CanUint():
		u := rv.Uint()
		if u > uint64(max) {
			return nil, fail("%v out of range [%d, %d]", v, min, max)
		}
		n = int64(u)
	default:
		return nil, fail("expected an integer")
	}
	if n < min || n > max {
		return nil, fail("%v out of range [%d, %d]", v, min, max)
	}
	if t.Kind() == types.Int32Kind {
		return int32(n), nil
	}
	return n, nil
}

// encodeFloat spells non-finite values as strings, since JSON has no
// literal for them.
func encodeFloat(f float64, single bool) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if single {
		return float32(f)
	}
	return f
}

func encodeElements(t types.Type, elems []any, path []string) ([]any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		enc, err := encode(t, e, appendPath(path, index(i)))
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

func sliceElements(rv reflect.Value) ([]any, bool) {
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if s, ok := rv.Interface().([]any); ok {
		return s, true
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func index(i int) string { return fmt.Sprintf("[%d]", i) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
