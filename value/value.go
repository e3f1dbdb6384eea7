// Package value defines the host representations of values whose types
// have no direct Go counterpart: sets, tuples, dicts with arbitrary keys,
// intervals, loci, genotype calls and n-dimensional arrays.
//
// Other values use plain Go types: nil for missing values, int32, int64,
// float32, float64, string and bool for primitives, []any for arrays and
// map[string]any for structs.
package value

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
)

// Set is an unordered collection of distinct elements, kept in insertion
// order.
type Set []any

// Tuple is a fixed-length sequence of positional values.
type Tuple []any

// Entry is a single key/value pair of a Dict.
type Entry struct {
	Key   any
	Value any
}

// Dict is an ordered mapping. Keys may be of any type, including types
// that cannot be Go map keys.
type Dict []Entry

// Get returns the value stored under key, compared with reflect.DeepEqual.
func (d Dict) Get(key any) (any, bool) {
	for _, e := range d {
		if reflect.DeepEqual(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// DictFromMap converts a Go map into a Dict with keys in ascending order,
// so that encoding a map is deterministic.
func DictFromMap(m any) (Dict, error) {
	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("expected a map, found %T", m)
	}
	d := make(Dict, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		d = append(d, Entry{Key: iter.Key().Interface(), Value: iter.Value().Interface()})
	}
	slices.SortFunc(d, func(a, b Entry) int { return compareKeys(a.Key, b.Key) })
	return d, nil
}

// compareKeys orders numbers numerically, strings lexically, and anything
// else by its formatted value.
func compareKeys(a, b any) int {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.IsValid() && rb.IsValid() {
		switch {
		case ra.CanInt() && rb.CanInt():
			return cmp.Compare(ra.Int(), rb.Int())
		case ra.CanUint() && rb.CanUint():
			return cmp.Compare(ra.Uint(), rb.Uint())
		case ra.CanFloat() && rb.CanFloat():
			return cmp.Compare(ra.Float(), rb.Float())
		case ra.Kind() == reflect.String && rb.Kind() == reflect.String:
			return cmp.Compare(ra.String(), rb.String())
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Interval is a range between two points of the same type.
type Interval struct {
	Start         any
	End           any
	IncludesStart bool
	IncludesEnd   bool
}

func (i Interval) String() string {
	open, close := "(", ")"
	if i.IncludesStart {
		open = "["
	}
	if i.IncludesEnd {
		close = "]"
	}
	return fmt.Sprintf("%s%v-%v%s", open, i.Start, i.End, close)
}

// Locus is a position on a contig of a reference genome.
type Locus struct {
	Contig    string
	Position  int32
	Reference string
}

func (l Locus) String() string {
	return fmt.Sprintf("%s:%d", l.Contig, l.Position)
}

// Case is a value of a union type: the name of the active case and its
// payload.
type Case struct {
	Name  string
	Value any
}
