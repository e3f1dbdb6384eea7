package types

import (
	"fmt"
	"strings"
)

// DuplicateFieldError is returned when a struct or union would contain two
// fields with the same name.
type DuplicateFieldError struct {
	Name string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate field name '%s'", e.Name)
}

// NameCollisionError is returned when a rename maps two fields to the same
// name.
type NameCollisionError struct {
	First, Second string
	Target        string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("cannot rename two fields to the same name: attempted to rename '%s' and '%s' both to '%s'",
		e.First, e.Second, e.Target)
}

// MissingFieldError is returned when a named field does not exist.
type MissingFieldError struct {
	Name   string
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("no field '%s' among fields [%s]", e.Name, strings.Join(e.Fields, ", "))
}

var emptyStruct = MustStruct()

// Fields returns the fields in order.
func (s *Struct) Fields() []Field { return append([]Field(nil), s.fields...) }

// Names returns the field names in order.
func (s *Struct) Names() []string { return s.names() }

// Types returns the field types in order.
func (s *Struct) Types() []Type {
	ts := make([]Type, len(s.fields))
	for i, f := range s.fields {
		ts[i] = f.Type
	}
	return ts
}

func (s *Struct) Len() int { return len(s.fields) }

// Field returns the type of the named field.
func (s *Struct) Field(name string) (Type, bool) { return s.lookup(name) }

// Index returns the i-th field.
func (s *Struct) Index(i int) Field { return s.fields[i] }

// InsertFields returns s with fields added. A field whose name already
// exists replaces the old type in place; other fields are appended in
// order.
func (s *Struct) InsertFields(fields ...Field) *Struct {
	out := append([]Field(nil), s.fields...)
	index := make(map[string]int, len(s.index)+len(fields))
	for k, v := range s.index {
		index[k] = v
	}
	for _, f := range fields {
		if i, ok := index[f.Name]; ok {
			out[i] = f
			continue
		}
		index[f.Name] = len(out)
		out = append(out, f)
	}
	return &Struct{fieldList: fieldList{fields: out, index: index}}
}

// Concat returns the fields of s followed by those of other, with other's
// types winning for shared names.
func (s *Struct) Concat(other *Struct) *Struct {
	return s.InsertFields(other.fields...)
}

// Insert places t at the nested field path, creating intermediate structs
// as needed and replacing any non-struct value along the way. An empty
// path returns t itself.
func (s *Struct) Insert(path []string, t Type) Type {
	if len(path) == 0 {
		return t
	}
	child, _ := s.Field(path[0])
	cs, ok := child.(*Struct)
	if !ok {
		cs = emptyStruct
	}
	return s.InsertFields(Field{Name: path[0], Type: cs.Insert(path[1:], t)})
}

// DropFields returns s without the named fields. Unknown names are
// ignored.
func (s *Struct) DropFields(names ...string) *Struct {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var kept []Field
	for _, f := range s.fields {
		if !drop[f.Name] {
			kept = append(kept, f)
		}
	}
	return MustStruct(kept...)
}

// SelectFields returns a struct with only the named fields, in the order
// given.
func (s *Struct) SelectFields(names ...string) (*Struct, error) {
	fields := make([]Field, 0, len(names))
	for _, n := range names {
		t, ok := s.Field(n)
		if !ok {
			return nil, &MissingFieldError{Name: n, Fields: s.names()}
		}
		fields = append(fields, Field{Name: n, Type: t})
	}
	return NewStruct(fields...)
}

// Rename returns s with fields renamed according to m. Fields absent from
// m keep their names. Two fields may not end up with the same name.
func (s *Struct) Rename(m map[string]string) (*Struct, error) {
	seen := make(map[string]string, len(s.fields))
	fields := make([]Field, len(s.fields))
	for i, f := range s.fields {
		name := f.Name
		if to, ok := m[name]; ok {
			name = to
		}
		if prev, ok := seen[name]; ok {
			return nil, &NameCollisionError{First: prev, Second: f.Name, Target: name}
		}
		seen[name] = f.Name
		fields[i] = Field{Name: name, Type: f.Type}
	}
	return NewStruct(fields...)
}

// IsPrefixOf reports whether the field types of s are a positional prefix
// of those of other.
func (s *Struct) IsPrefixOf(other *Struct) bool {
	if len(s.fields) > len(other.fields) {
		return false
	}
	for i, f := range s.fields {
		if !Equal(f.Type, other.fields[i].Type) {
			return false
		}
	}
	return true
}

// IndexPath follows a path of field names through nested structs.
func (s *Struct) IndexPath(path ...string) (Type, error) {
	var t Type = s
	for _, p := range path {
		st, ok := t.(*Struct)
		if !ok {
			return nil, fmt.Errorf("cannot index field '%s' of non-struct type %s", p, t)
		}
		t, ok = st.Field(p)
		if !ok {
			return nil, &MissingFieldError{Name: p, Fields: st.names()}
		}
	}
	return t, nil
}
