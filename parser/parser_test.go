package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/hail-is/hailtype/types"
	"golang.org/x/tools/txtar"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  types.Type
	}{
		{"int", types.Int32},
		{"tint32", types.Int32},
		{"int64", types.Int64},
		{"float", types.Float64},
		{"tfloat32", types.Float32},
		{"  bool  ", types.Bool},
		{"str", types.Str},
		{"call", types.Call},
		{"void", types.Void},
		{"array<int32>", types.NewArray(types.Int32)},
		{"tarray < tstr >", types.NewArray(types.Str)},
		{"set<float64>", types.NewSet(types.Float64)},
		{"dict<str, array<int64>>", types.NewDict(types.Str, types.NewArray(types.Int64))},
		{"ndarray<float64, 2>", types.NewNDArray(types.Float64, types.NatLiteral(2))},
		{"ndarray<int32, n>", types.NewNDArray(types.Int32, types.NatVariable("n"))},
		{"ndarray<int32, `3`>", types.NewNDArray(types.Int32, types.NatVariable("3"))},
		{"ndarray<int32, 03>", types.NewNDArray(types.Int32, types.NatLiteral(3))},
		{"struct{}", types.MustStruct()},
		{"struct { }", types.MustStruct()},
		{
			"struct{a: int32, `field with spaces`: int64}",
			types.MustStruct(
				types.Field{Name: "a", Type: types.Int32},
				types.Field{Name: "field with spaces", Type: types.Int64},
			),
		},
		{
			"union{ok: str, err: struct{code: int32}}",
			types.MustUnion(
				types.Field{Name: "ok", Type: types.Str},
				types.Field{Name: "err", Type: types.MustStruct(types.Field{Name: "code", Type: types.Int32})},
			),
		},
		{"tuple()", types.NewTuple()},
		{"tuple(int32, str)", types.NewTuple(types.Int32, types.Str)},
		{"interval<locus<GRCh38>>", types.NewInterval(types.NewLocus("GRCh38"))},
		{"locus[GRCh37]", types.NewLocus("GRCh37")},
		{"tlocus [ `my genome` ]", types.NewLocus("my genome")},
		{"?x", types.NewVariable("x", types.Unconstrained)},
		{"array<?x:numeric>", types.NewArray(types.NewVariable("x", types.NumericConstraint))},
		{"struct{int: int}", types.MustStruct(types.Field{Name: "int", Type: types.Int32})},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if !types.Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %s, want %s\n%s", tt.input, got, tt.want, spew.Sdump(got))
			}
		})
	}
}

var roundTripTypes = []types.Type{
	types.Void,
	types.Int32,
	types.Int64,
	types.Float32,
	types.Float64,
	types.Str,
	types.Bool,
	types.Call,
	types.NewArray(types.NewSet(types.Int32)),
	types.NewDict(types.NewLocus("GRCh37"), types.NewTuple()),
	types.NewNDArray(types.NewArray(types.Bool), types.NatLiteral(3)),
	types.NewNDArray(types.Float32, types.NatVariable("rank")),
	types.NewNDArray(types.Float32, types.NatVariable("3")),
	types.NewNDArray(types.Int64, types.NatVariable("007")),
	types.NewInterval(types.Int64),
	types.NewLocus("a genome/with:odd,chars"),
	types.NewTuple(types.Int32, types.NewTuple(types.Str), types.MustStruct()),
	types.MustUnion(),
	types.HTSEntrySchema,
	types.MustStruct(
		types.Field{Name: "a`b", Type: types.Int32},
		types.Field{Name: `back\slash`, Type: types.NewArray(types.Str)},
		types.Field{Name: "raw\xffbyte", Type: types.Int64},
		types.Field{Name: "new\nline", Type: types.MustStruct(
			types.Field{Name: "", Type: types.Bool},
			types.Field{Name: "inner", Type: types.MustUnion(types.Field{Name: "x", Type: types.Int32})},
		)},
	),
	types.NewDict(types.NewVariable("k", types.Unconstrained), types.NewVariable("v", types.StructConstraint)),
}

func TestDisplayRoundTrip(t *testing.T) {
	for _, want := range roundTripTypes {
		got, err := Parse(want.String())
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", want.String(), err)
			continue
		}
		if !types.Equal(got, want) {
			t.Errorf("Parse(%q) = %s", want.String(), got)
		}
	}
}

func TestParsableRoundTrip(t *testing.T) {
	for _, want := range roundTripTypes {
		got, err := ParseParsable(want.Parsable())
		if err != nil {
			t.Errorf("ParseParsable(%q) failed: %v", want.Parsable(), err)
			continue
		}
		if !types.Equal(got, want) {
			t.Errorf("ParseParsable(%q) = %s", want.Parsable(), got)
		}
	}
}

func TestParseParsable(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Dict[String,Array[Boolean]]", "dict<str, array<bool>>"},
		{"Struct{a:Int32,`b c`:Tuple[Float64,Call]}", "struct{a: int32, `b c`: tuple(float64, call)}"},
		{"Interval[Locus(GRCh38)]", "interval<locus<GRCh38>>"},
		{"NDArray[Float32, 2]", "ndarray<float32, 2>"},
		{"Union{x:Void}", "union{x: void}"},
		{"Set[?t:numeric]", "set<?t:numeric>"},
	}
	for _, tt := range tests {
		got, err := ParseParsable(tt.input)
		if err != nil {
			t.Errorf("ParseParsable(%q) failed: %v", tt.input, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseParsable(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}

	for _, bad := range []string{"array<int32>", "Int", "Locus[GRCh37]", "Tuple(Int32)"} {
		if _, err := ParseParsable(bad); err == nil {
			t.Errorf("ParseParsable(%q) should fail", bad)
		}
	}
}

func TestPrettyRoundTrip(t *testing.T) {
	for _, want := range roundTripTypes {
		text := types.Pretty(want, 2, 4)
		got, err := Parse(text)
		if err != nil {
			t.Errorf("Parse of pretty form failed: %v\n%s", err, text)
			continue
		}
		if !types.Equal(got, want) {
			t.Errorf("pretty form re-parsed as %s, want %s", got, want)
		}
	}
}

func TestEscapedIdentifierRoundTrip(t *testing.T) {
	input := "struct{`a\\`b`: int32}"
	first, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	s := first.(*types.Struct)
	if got := s.Index(0).Name; got != "a`b" {
		t.Fatalf("field name = %q, want %q", got, "a`b")
	}
	printed := first.String()
	if printed != input {
		t.Errorf("display form = %q, want %q", printed, input)
	}
	second, err := Parse(printed)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", printed, err)
	}
	if !types.Equal(first, second) {
		t.Errorf("re-parsed %s, want %s", second, first)
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("struct{a: int32,\n  b: bogus}")
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if perr.Pos.Line != 2 || perr.Pos.Column != 6 {
		t.Errorf("error at %d:%d, want 2:6", perr.Pos.Line, perr.Pos.Column)
	}
	if perr.Fragment != "bogus}" {
		t.Errorf("fragment = %q, want %q", perr.Fragment, "bogus}")
	}
}

func TestParseErrors(t *testing.T) {
	dir := filepath.Join("test_data", "parse_errors")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txtar") {
			t.Run(entry.Name(), func(t *testing.T) {
				testParseError(t, filepath.Join(dir, entry.Name()))
			})
		}
	}
}

func testParseError(t *testing.T, filename string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read test file: %v", err)
	}

	archive := txtar.Parse(data)

	findFile := func(name string) []byte {
		for _, file := range archive.Files {
			if file.Name == name {
				return file.Data
			}
		}
		return nil
	}

	input := strings.TrimSpace(string(findFile("input.txt")))
	expectedError := strings.TrimSpace(string(findFile("error.txt")))
	if expectedError == "" {
		t.Fatal("Failed to extract expected error")
	}

	_, err = Parse(input)
	if err == nil {
		t.Fatalf("Expected error to contain '%s' but got nil", expectedError)
	}
	if !strings.Contains(err.Error(), expectedError) {
		t.Fatalf("Expected error to contain '%s' but got %s", expectedError, err.Error())
	}
}
