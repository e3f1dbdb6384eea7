package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/hail-is/hailtype/types"
	"github.com/hail-is/hailtype/value"
)

// Decode converts the JSON tree raw to a host value under t. Null decodes
// to nil at every type.
func Decode(t types.Type, raw any) (any, error) {
	return decode(t, raw, nil)
}

func decode(t types.Type, raw any, path []string) (any, error) {
	if raw == nil {
		return nil, nil
	}
	fail := func(format string, args ...any) error {
		return &DecodeError{
			Type:     t.String(),
			Fragment: fragment(raw),
			Message:  fmt.Sprintf(format, args...),
			Path:     path,
		}
	}

	switch t := t.(type) {
	case *types.Primitive:
		switch t.Kind() {
		case types.VoidKind:
			return nil, fail("expected null")
		case types.Int32Kind, types.Int64Kind:
			return decodeInteger(t, raw, fail)
		case types.Float32Kind, types.Float64Kind:
			return decodeFloat(t, raw, fail)
		case types.StrKind:
			s, ok := raw.(string)
			if !ok {
				return nil, fail("expected a JSON string")
			}
			return s, nil
		case types.BoolKind:
			b, ok := raw.(bool)
			if !ok {
				return nil, fail("expected a JSON boolean")
			}
			return b, nil
		case types.CallKind:
			s, ok := raw.(string)
			if !ok {
				return nil, fail("expected a JSON string")
			}
			c, err := value.ParseCall(s)
			if err != nil {
				return nil, fail("%v", err)
			}
			return c, nil
		}
		panic(fmt.Sprintf("codec: unhandled primitive %s", t))

	case *types.Array:
		arr, ok := raw.([]any)
		if !ok {
			return nil, fail("expected a JSON array")
		}
		return decodeElements(t.Elem(), arr, path)

	case *types.Set:
		arr, ok := raw.([]any)
		if !ok {
			return nil, fail("expected a JSON array")
		}
		elems, err := decodeElements(t.Elem(), arr, path)
		return value.Set(elems), err

	case *types.Dict:
		arr, ok := raw.([]any)
		if !ok {
			return nil, fail("expected a JSON array of entries")
		}
		d := make(value.Dict, len(arr))
		for i, e := range arr {
			entryPath := appendPath(path, index(i))
			obj, ok := asObject(e)
			if !ok {
				return nil, &DecodeError{
					Type:     t.ElementType().String(),
					Fragment: fragment(e),
					Message:  "expected a JSON object",
					Path:     entryPath,
				}
			}
			rawKey, hasKey := obj["key"]
			rawValue, hasValue := obj["value"]
			if !hasKey || !hasValue {
				return nil, fail("entry %d must have keys \"key\" and \"value\"", i)
			}
			key, err := decode(t.Key(), rawKey, entryPath)
			if err != nil {
				return nil, err
			}
			val, err := decode(t.Value(), rawValue, entryPath)
			if err != nil {
				return nil, err
			}
			d[i] = value.Entry{Key: key, Value: val}
		}
		return d, nil

	case *types.Struct:
		obj, ok := asObject(raw)
		if !ok {
			return nil, fail("expected a JSON object")
		}
		out := make(map[string]any, t.Len())
		for _, f := range t.Fields() {
			rawField, ok := obj[f.Name]
			if !ok {
				return nil, fail("missing key %q", f.Name)
			}
			v, err := decode(f.Type, rawField, appendPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		for _, key := range sortedKeys(obj) {
			if _, ok := t.Field(key); !ok {
				return nil, fail("unexpected key %q", key)
			}
		}
		return out, nil

	case *types.Union:
		obj, ok := asObject(raw)
		if !ok || len(obj) != 1 {
			return nil, fail("expected a JSON object with exactly one key")
		}
		for name, rawCase := range obj {
			ct, ok := t.Case(name)
			if !ok {
				return nil, fail("no case %q", name)
			}
			v, err := decode(ct, rawCase, appendPath(path, name))
			if err != nil {
				return nil, err
			}
			return value.Case{Name: name, Value: v}, nil
		}
		panic("unreachable")

	case *types.Tuple:
		arr, ok := raw.([]any)
		if !ok {
			return nil, fail("expected a JSON array")
		}
		if len(arr) != t.Len() {
			return nil, fail("expected an array of length %d, found length %d", t.Len(), len(arr))
		}
		out := make(value.Tuple, len(arr))
		for i, e := range arr {
			v, err := decode(t.Elem(i), e, appendPath(path, index(i)))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case *types.Interval:
		obj, ok := asObject(raw)
		if !ok {
			return nil, fail("expected a JSON object")
		}
		for _, key := range []string{"start", "end", "includeStart", "includeEnd"} {
			if _, ok := obj[key]; !ok {
				return nil, fail("missing key %q", key)
			}
		}
		start, err := decode(t.Point(), obj["start"], appendPath(path, "start"))
		if err != nil {
			return nil, err
		}
		end, err := decode(t.Point(), obj["end"], appendPath(path, "end"))
		if err != nil {
			return nil, err
		}
		includesStart, ok1 := obj["includeStart"].(bool)
		includesEnd, ok2 := obj["includeEnd"].(bool)
		if !ok1 || !ok2 {
			return nil, fail("includeStart and includeEnd must be booleans")
		}
		return value.Interval{
			Start:         start,
			End:           end,
			IncludesStart: includesStart,
			IncludesEnd:   includesEnd,
		}, nil

	case *types.Locus:
		obj, ok := asObject(raw)
		if !ok {
			return nil, fail("expected a JSON object")
		}
		contig, ok := obj["contig"].(string)
		if !ok {
			return nil, fail("missing or non-string key \"contig\"")
		}
		rawPosition, ok := obj["position"]
		if !ok {
			return nil, fail("missing key \"position\"")
		}
		position, err := decodeInteger(types.Int32, rawPosition, fail)
		if err != nil {
			return nil, err
		}
		return value.Locus{Contig: contig, Position: position.(int32), Reference: t.Reference()}, nil

	case *types.NDArray:
		obj, ok := asObject(raw)
		if !ok {
			return nil, fail("expected a JSON object")
		}
		shape, ok := asInts(obj["shape"])
		if !ok {
			return nil, fail("missing or malformed key \"shape\"")
		}
		strides, ok := asInts(obj["strides"])
		if !ok {
			return nil, fail("missing or malformed key \"strides\"")
		}
		rawData, ok := obj["data"].([]any)
		if !ok {
			return nil, fail("missing or malformed key \"data\"")
		}
		if len(strides) != len(shape) {
			return nil, fail("%d strides for %d dimensions", len(strides), len(shape))
		}
		if rank := t.RankNat(); !rank.IsVariable() && rank.Value() != len(shape) {
			return nil, fail("expected %d dimensions, found %d", rank.Value(), len(shape))
		}
		data, err := decodeElements(t.Elem(), rawData, path)
		if err != nil {
			return nil, err
		}
		a := &value.NDArray{Shape: shape, Strides: strides, Data: data}
		if a.Size() != int64(len(data)) {
			return nil, fail("shape %v holds %d elements, found %d", shape, a.Size(), len(data))
		}
		return a, nil

	case *types.Variable:
		return nil, fail("unresolved type variable")
	default:
		panic(fmt.Sprintf("codec: unhandled type %T", t))
	}
}

func decodeInteger(t *types.Primitive, raw any, fail func(string, ...any) error) (any, error) {
	min, max, _ := t.Bounds()
	var n int64
	switch r := raw.(type) {
	case json.Number:
		v, err := strconv.ParseInt(string(r), 10, 64)
		if err != nil {
			return nil, fail("expected an integer in [%d, %d]", min, max)
		}
		n = v
	case float64:
		if r != math.Trunc(r) || r < math.MinInt64 || r >= math.MaxInt64 {
			return nil, fail("expected an integer in [%d, %d]", min, max)
		}
		n = int64(r)
	case int:
		n = int64(r)
	case int32:
		n = int64(r)
	case int64:
		n = r
	default:
		return nil, fail("expected a JSON number")
	}
	if n < min || n > max {
		return nil, fail("integer out of range [%d, %d]", min, max)
	}
	if t.Kind() == types.Int32Kind {
		return int32(n), nil
	}
	return n, nil
}

func decodeFloat(t *types.Primitive, raw any, fail func(string, ...any) error) (any, error) {
	bits := 64
	if t.Kind() == types.Float32Kind {
		bits = 32
	}
	var f float64
	switch r := raw.(type) {
	case json.Number:
		v, err := strconv.ParseFloat(string(r), bits)
		if err != nil {
			return nil, fail("expected a %d-bit float", bits)
		}
		f = v
	case string:
		switch r {
		case "NaN":
			f = math.NaN()
		case "Infinity":
			f = math.Inf(1)
		case "-Infinity":
			f = math.Inf(-1)
		default:
			return nil, fail("expected a number, \"NaN\", \"Infinity\" or \"-Infinity\"")
		}
	case float64:
		f = r
	case float32:
		f = float64(r)
	case int:
		f = float64(r)
	case int32:
		f = float64(r)
	case int64:
		f = float64(r)
	default:
		return nil, fail("expected a JSON number")
	}
	if bits == 32 {
		return float32(f), nil
	}
	return f, nil
}

func decodeElements(t types.Type, arr []any, path []string) ([]any, error) {
	out := make([]any, len(arr))
	for i, e := range arr {
		v, err := decode(t, e, appendPath(path, index(i)))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// asObject accepts objects produced by encoding/json and by Encode.
func asObject(raw any) (map[string]any, bool) {
	switch o := raw.(type) {
	case map[string]any:
		return o, true
	case Object:
		m := make(map[string]any, len(o))
		for _, member := range o {
			m[member.Key] = member.Value
		}
		return m, true
	}
	return nil, false
}

func asInts(raw any) ([]int64, bool) {
	switch r := raw.(type) {
	case []int64:
		return r, true
	case []any:
		out := make([]int64, len(r))
		for i, e := range r {
			v, err := decodeInteger(types.Int64, e, func(string, ...any) error { return errInts })
			if err != nil {
				return nil, false
			}
			out[i] = v.(int64)
		}
		return out, true
	}
	return nil, false
}

var errInts = errors.New("malformed integer list")
