// Package codec converts values to and from JSON under the direction of a
// type.
//
// Encode produces a JSON tree of nil, bool, string, numbers, []any and
// Object; Decode accepts the trees produced by Encode as well as those
// produced by encoding/json, with or without UseNumber. Values decode to
// their canonical host representations: int32 and int64 for integers,
// float32 and float64 for floats, []any for arrays, map[string]any with
// every declared field present for structs, and the value package types
// for everything else.
//
// A struct field missing from a host map encodes as null, so a missing
// field and a null field are the same value: both decode to a nil entry.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/hail-is/hailtype/types"
)

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object that keeps its keys in insertion order, so that
// struct fields are written in declaration order.
type Object []Member

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Marshal encodes v under t and returns the JSON text.
func Marshal(t types.Type, v any) ([]byte, error) {
	tree, err := Encode(t, v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// Unmarshal parses a single JSON value from data and decodes it under t.
func Unmarshal(t types.Type, data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("codec: invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("codec: invalid JSON: unexpected data after value")
	}
	return Decode(t, raw)
}

func appendPath(path []string, component string) []string {
	return append(slices.Clip(path), component)
}
