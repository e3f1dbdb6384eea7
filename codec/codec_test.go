package codec

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/tools/txtar"

	"github.com/hail-is/hailtype/parser"
	"github.com/hail-is/hailtype/typechecker"
	"github.com/hail-is/hailtype/types"
	"github.com/hail-is/hailtype/value"
)

func readArchive(t *testing.T, filename string) func(string) string {
	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read test file: %v", err)
	}
	archive := txtar.Parse(data)
	return func(name string) string {
		for _, file := range archive.Files {
			if file.Name == name {
				return strings.TrimSpace(string(file.Data))
			}
		}
		t.Fatalf("%s: missing section %s", filename, name)
		return ""
	}
}

func forEachArchive(t *testing.T, dir string, run func(t *testing.T, filename string)) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txtar") {
			t.Run(entry.Name(), func(t *testing.T) {
				run(t, filepath.Join(dir, entry.Name()))
			})
		}
	}
}

// TestRoundTripExamples decodes each input, checks the result against the
// type and encodes it again.
func TestRoundTripExamples(t *testing.T) {
	forEachArchive(t, filepath.Join("test_data", "roundtrip"), func(t *testing.T, filename string) {
		section := readArchive(t, filename)
		typ := parser.MustParse(section("type.txt"))

		v, err := Unmarshal(typ, []byte(section("input.json")))
		if err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if err := typechecker.Typecheck(typ, v); err != nil {
			t.Fatalf("decoded value does not conform: %v\n%s", err, spew.Sdump(v))
		}
		out, err := Marshal(typ, v)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if want := section("output.json"); string(out) != want {
			t.Errorf("Marshal =\n%s\nwant\n%s", out, want)
		}
	})
}

func TestDecodeErrors(t *testing.T) {
	forEachArchive(t, filepath.Join("test_data", "decode_errors"), func(t *testing.T, filename string) {
		section := readArchive(t, filename)
		typ := parser.MustParse(section("type.txt"))
		expectedError := section("error.txt")

		v, err := Unmarshal(typ, []byte(section("input.json")))
		if err == nil {
			t.Fatalf("Expected error to contain '%s' but decoded %s", expectedError, spew.Sdump(v))
		}
		if !strings.Contains(err.Error(), expectedError) {
			t.Fatalf("Expected error to contain '%s' but got %s", expectedError, err.Error())
		}
	})
}

func TestDictEncoding(t *testing.T) {
	typ := parser.MustParse("dict<int32, str>")
	out, err := Marshal(typ, map[int32]string{2: "b", 1: "a"})
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"key":1,"value":"a"},{"key":2,"value":"b"}]`
	if string(out) != want {
		t.Errorf("Marshal = %s, want %s", out, want)
	}

	v, err := Unmarshal(typ, out)
	if err != nil {
		t.Fatal(err)
	}
	expected := value.Dict{{Key: int32(1), Value: "a"}, {Key: int32(2), Value: "b"}}
	if !reflect.DeepEqual(v, expected) {
		t.Errorf("Unmarshal = %s", spew.Sdump(v))
	}
}

func TestNDArrayRoundTrip(t *testing.T) {
	typ := parser.MustParse("ndarray<int32, 2>")
	a, err := value.NewNDArray([]int64{2, 3}, 4, []any{int32(1), int32(2), int32(3), int32(4), int32(5), int32(6)})
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(typ, a)
	if err != nil {
		t.Fatal(err)
	}
	v, err := Unmarshal(typ, data)
	if err != nil {
		t.Fatal(err)
	}
	got := v.(*value.NDArray)
	if !reflect.DeepEqual(got.Shape, []int64{2, 3}) || !reflect.DeepEqual(got.Strides, []int64{12, 4}) {
		t.Errorf("shape %v strides %v", got.Shape, got.Strides)
	}
	if !reflect.DeepEqual(got, a) {
		t.Errorf("round trip mismatch:\n%s", spew.Sdump(got))
	}
}

func TestRoundTripValues(t *testing.T) {
	nd, _ := value.NewNDArray([]int64{2}, 8, []any{1.5, nil})
	tests := []struct {
		typ   string
		value any
	}{
		{"int32", int32(-7)},
		{"int64", int64(math.MinInt64)},
		{"float32", float32(0.25)},
		{"str", "héllo"},
		{"bool", true},
		{"call", value.Call{Alleles: []int{1}, Phased: true}},
		{"call", value.Call{}},
		{"array<int64>", []any{int64(1), nil}},
		{"set<call>", value.Set{value.Call{Alleles: []int{0, 0}}}},
		{"dict<struct{a: int32}, array<str>>", value.Dict{{Key: map[string]any{"a": int32(1)}, Value: []any{"x"}}}},
		{"struct{a: int32, b: struct{c: bool}}", map[string]any{"a": nil, "b": map[string]any{"c": false}}},
		{"union{x: tuple(int32, str), y: void}", value.Case{Name: "x", Value: value.Tuple{int32(1), "s"}}},
		{"union{x: tuple(int32, str), y: void}", value.Case{Name: "y"}},
		{"interval<float64>", value.Interval{Start: 0.5, End: 1.5, IncludesEnd: true}},
		{"locus<GRCh37>", value.Locus{Contig: "MT", Position: 16569, Reference: "GRCh37"}},
		{"ndarray<float64, n>", nd},
		{"struct{a: int32}", nil},
	}
	for _, tt := range tests {
		typ := parser.MustParse(tt.typ)
		if err := typechecker.Typecheck(typ, tt.value); err != nil {
			t.Fatalf("%s: bad test value: %v", tt.typ, err)
		}
		data, err := Marshal(typ, tt.value)
		if err != nil {
			t.Errorf("Marshal(%s) failed: %v", tt.typ, err)
			continue
		}
		got, err := Unmarshal(typ, data)
		if err != nil {
			t.Errorf("Unmarshal(%s, %s) failed: %v", tt.typ, data, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.value) {
			t.Errorf("%s: round trip through %s gave\n%s", tt.typ, data, spew.Sdump(got))
		}

		// The tree form round-trips without going through bytes.
		tree, err := Encode(typ, tt.value)
		if err != nil {
			t.Fatal(err)
		}
		direct, err := Decode(typ, tree)
		if err != nil {
			t.Errorf("Decode(%s) of encoded tree failed: %v", tt.typ, err)
		} else if !reflect.DeepEqual(direct, tt.value) {
			t.Errorf("%s: tree round trip gave\n%s", tt.typ, spew.Sdump(direct))
		}
	}
}

// TestCheckedValuesRoundTrip encodes values the checker accepts. Decoding
// yields the canonical host form, which must encode to the same bytes and
// still pass the checker.
func TestCheckedValuesRoundTrip(t *testing.T) {
	nd, err := value.NewNDArray([]int64{2, 2}, 8, []any{1.0, 2.0, nil, 4.0})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		typ   string
		value any
	}{
		{"int32", int32(5)},
		{"int32", 7},
		{"int64", int64(math.MaxInt64)},
		{"float32", float32(1.5)},
		{"float64", 3},
		{"str", "hello"},
		{"bool", false},
		{"call", value.Call{Alleles: []int{0, 1}}},
		{"void", nil},
		{"array<int32>", []any{int32(1), nil, int32(3)}},
		{"array<str>", []string{"a", "b"}},
		{"set<str>", value.Set{"a", "b"}},
		{"dict<int32, str>", value.Dict{{Key: int32(1), Value: "a"}}},
		{"dict<str, float64>", map[string]float64{"x": 1}},
		{"struct{a: int32, b: str}", map[string]any{"a": int32(1), "b": "x"}},
		{"struct{a: int32, b: str}", map[string]any{"a": int32(1)}},
		{"union{a: int32, b: str}", value.Case{Name: "b", Value: "x"}},
		{"tuple(int32, str)", value.Tuple{int32(1), "x"}},
		{"interval<int32>", value.Interval{Start: int32(1), End: int32(5), IncludesStart: true}},
		{"locus<GRCh37>", value.Locus{Contig: "1", Position: 100, Reference: "GRCh37"}},
		{"ndarray<float64, 2>", nd},
		{"array<struct{x: array<int64>}>", []any{map[string]any{"x": []any{int64(1)}}, nil}},
		{"struct{a: int32}", nil},
		{"ndarray<int32, 1>", (*value.NDArray)(nil)},
	}
	for _, tt := range tests {
		typ := parser.MustParse(tt.typ)
		if err := typechecker.Typecheck(typ, tt.value); err != nil {
			t.Fatalf("%s: bad test value: %v", tt.typ, err)
		}
		data, err := Marshal(typ, tt.value)
		if err != nil {
			t.Errorf("Marshal(%s, %#v) failed: %v", tt.typ, tt.value, err)
			continue
		}
		got, err := Unmarshal(typ, data)
		if err != nil {
			t.Errorf("Unmarshal(%s, %s) failed: %v", tt.typ, data, err)
			continue
		}
		if err := typechecker.Typecheck(typ, got); err != nil {
			t.Errorf("%s: decoded value fails the checker: %v", tt.typ, err)
		}
		again, err := Marshal(typ, got)
		if err != nil {
			t.Errorf("Marshal(%s) of decoded value failed: %v", tt.typ, err)
		} else if string(again) != string(data) {
			t.Errorf("%s: encoded %s, re-encoded %s", tt.typ, data, again)
		}
	}
}

func TestMissingFieldDecodesAsNull(t *testing.T) {
	typ := parser.MustParse("struct{a: int32, b: str}")
	missing, err := Marshal(typ, map[string]any{"b": "x"})
	if err != nil {
		t.Fatal(err)
	}
	null, err := Marshal(typ, map[string]any{"a": nil, "b": "x"})
	if err != nil {
		t.Fatal(err)
	}
	if string(missing) != string(null) {
		t.Errorf("missing field encoded as %s, null field as %s", missing, null)
	}
	got, err := Unmarshal(typ, missing)
	if err != nil {
		t.Fatal(err)
	}
	if want := map[string]any{"a": nil, "b": "x"}; !reflect.DeepEqual(got, want) {
		t.Errorf("decoded %s", spew.Sdump(got))
	}
}

func TestNonFiniteFloats(t *testing.T) {
	for _, name := range []string{"float32", "float64"} {
		typ := parser.MustParse(name)
		for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			var v any = f
			if name == "float32" {
				v = float32(f)
			}
			data, err := Marshal(typ, v)
			if err != nil {
				t.Fatalf("Marshal(%s, %v) failed: %v", name, f, err)
			}
			got, err := Unmarshal(typ, data)
			if err != nil {
				t.Fatalf("Unmarshal(%s, %s) failed: %v", name, data, err)
			}
			g := reflect.ValueOf(got).Float()
			switch {
			case math.IsNaN(f):
				if !math.IsNaN(g) || string(data) != `"NaN"` {
					t.Errorf("%s NaN: encoded %s, decoded %v", name, data, got)
				}
			case g != f:
				t.Errorf("%s %v: encoded %s, decoded %v", name, f, data, got)
			}
		}
	}
}

func TestNullPassesThrough(t *testing.T) {
	for _, s := range []string{"void", "int32", "call", "array<str>", "struct{a: int32}", "ndarray<int32, 1>", "?x"} {
		typ := parser.MustParse(s)
		if tree, err := Encode(typ, nil); err != nil || tree != nil {
			t.Errorf("Encode(%s, nil) = %v, %v", s, tree, err)
		}
		if v, err := Decode(typ, nil); err != nil || v != nil {
			t.Errorf("Decode(%s, nil) = %v, %v", s, v, err)
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		typ   string
		value any
		want  string
	}{
		{"int32", int64(1) << 40, "out of range"},
		{"int32", "1", "expected an integer"},
		{"void", 0, "void has no values"},
		{"set<int32>", []any{int32(1)}, "expected a value.Set"},
		{"struct{a: int32}", map[string]any{"b": 1}, `unknown field "b"`},
		{"union{a: int32}", value.Case{Name: "z"}, `no case "z"`},
		{"tuple(int32)", value.Tuple{}, "expected 1 elements, found 0"},
		{"locus<GRCh38>", value.Locus{Contig: "1", Position: 1, Reference: "GRCh37"}, "reference genome 'GRCh37'"},
		{"array<struct{a: str}>", []any{map[string]any{"a": 1}}, "encode error in [0].a"},
		{"?x", 1, "unresolved type variable"},
	}
	for _, tt := range tests {
		_, err := Encode(parser.MustParse(tt.typ), tt.value)
		var eerr *EncodeError
		if !errors.As(err, &eerr) {
			t.Errorf("Encode(%s, %#v) = %v, want *EncodeError", tt.typ, tt.value, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Encode(%s, %#v) = %q, want it to contain %q", tt.typ, tt.value, err, tt.want)
		}
	}
}

func TestDecodeErrorFields(t *testing.T) {
	_, err := Unmarshal(parser.MustParse("struct{a: array<int32>}"), []byte(`{"a": [1, true]}`))
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if derr.Type != "int32" || derr.Fragment != "true" {
		t.Errorf("type %q fragment %q", derr.Type, derr.Fragment)
	}
	if got := typechecker.FormatPath(derr.Path); got != "a[1]" {
		t.Errorf("path = %q", got)
	}
}

func TestObjectMarshal(t *testing.T) {
	tree, err := Encode(types.HTSEntrySchema, map[string]any{
		"GT": value.Call{Alleles: []int{0, 1}},
		"DP": 30,
		"PL": []int32{0, 10, 100},
	})
	if err != nil {
		t.Fatal(err)
	}
	obj := tree.(Object)
	if gt, _ := obj.Get("GT"); gt != "0/1" {
		t.Errorf("GT = %v", gt)
	}
	data, err := Marshal(types.HTSEntrySchema, map[string]any{"DP": 30})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"GT":null,"AD":null,"DP":30,"GQ":null,"PL":null}`; string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}
