package types

import "fmt"

// HTSEntrySchema is the entry schema of a matrix imported from an
// HTS genotype file.
var HTSEntrySchema = MustStruct(
	Field{Name: "GT", Type: Call},
	Field{Name: "AD", Type: NewArray(Int32)},
	Field{Name: "DP", Type: Int32},
	Field{Name: "GQ", Type: Int32},
	Field{Name: "PL", Type: NewArray(Int32)},
)

// IsNumeric reports whether t is bool, int32, int64, float32 or float64.
func IsNumeric(t Type) bool {
	switch t.Kind() {
	case BoolKind, Int32Kind, Int64Kind, Float32Kind, Float64Kind:
		return true
	}
	return false
}

// IsPrimitive reports whether t is numeric or str.
func IsPrimitive(t Type) bool {
	return IsNumeric(t) || t.Kind() == StrKind
}

// IsContainer reports whether t is an array, set or dict.
func IsContainer(t Type) bool {
	switch t.Kind() {
	case ArrayKind, SetKind, DictKind:
		return true
	}
	return false
}

// IsCompound reports whether t has child types.
func IsCompound(t Type) bool {
	switch t.Kind() {
	case StructKind, UnionKind, TupleKind, NDArrayKind:
		return true
	}
	return IsContainer(t)
}

// SummaryType returns a short description of t that elides record bodies.
func SummaryType(t Type) string {
	switch t := t.(type) {
	case *Dict:
		return fmt.Sprintf("dict<%s, %s>", SummaryType(t.key), SummaryType(t.value))
	case *Set:
		return fmt.Sprintf("set<%s>", SummaryType(t.elem))
	case *Array:
		return fmt.Sprintf("array<%s>", SummaryType(t.elem))
	case *Struct:
		return fmt.Sprintf("struct with %d fields", len(t.fields))
	case *Tuple:
		return fmt.Sprintf("tuple with %d fields", len(t.elems))
	case *Interval:
		return fmt.Sprintf("interval<%s>", SummaryType(t.point))
	}
	return t.String()
}
