// Package hailtype exchanges type descriptors with other processes.
//
// A descriptor carries a type in parsable form together with the
// configurations of the reference genomes the type names, so that the
// receiving side can resolve every locus type without shared state.
package hailtype

import (
	"encoding/json"
	"fmt"

	"github.com/hail-is/hailtype/parser"
	"github.com/hail-is/hailtype/reference"
	"github.com/hail-is/hailtype/types"
)

// Dtype parses a type in display form, such as "array<struct{a: int32}>".
func Dtype(text string) (types.Type, error) {
	return parser.Parse(text)
}

// Descriptor is the JSON form of an exported type.
type Descriptor struct {
	Type    string          `json:"type"`
	Context *ContextPayload `json:"context,omitempty"`
}

// ContextPayload maps the reference genomes named by a type to their
// configurations.
type ContextPayload struct {
	ReferenceGenomes map[string]*reference.Config `json:"reference_genomes"`
}

// Export describes t for another process. The context is attached only
// when t names at least one reference genome.
func Export(t types.Type, reg reference.Registry) (*Descriptor, error) {
	d := &Descriptor{Type: t.Parsable()}
	ctx := t.Context()
	if ctx.IsEmpty() {
		return d, nil
	}
	configs, err := reference.Resolve(reg, ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", t, err)
	}
	d.Context = &ContextPayload{ReferenceGenomes: configs}
	return d, nil
}

// ImportContext adds the configurations of payload to reg. A nil payload
// adds nothing.
func ImportContext(payload *ContextPayload, reg *reference.MemRegistry) error {
	if payload == nil {
		return nil
	}
	for name, c := range payload.ReferenceGenomes {
		if c == nil || c.Name != name {
			return fmt.Errorf("context entry %q does not describe reference genome %q", name, name)
		}
		if err := reg.Add(c); err != nil {
			return fmt.Errorf("importing context: %w", err)
		}
	}
	return nil
}

// Import parses the type of d and registers its context in reg. Every
// reference genome the type names must be resolvable afterwards.
func Import(d *Descriptor, reg *reference.MemRegistry) (types.Type, error) {
	t, err := parser.ParseParsable(d.Type)
	if err != nil {
		return nil, fmt.Errorf("importing type: %w", err)
	}
	if err := ImportContext(d.Context, reg); err != nil {
		return nil, err
	}
	if _, err := reference.Resolve(reg, t.Context()); err != nil {
		return nil, fmt.Errorf("importing %s: %w", t, err)
	}
	return t, nil
}

// MarshalDescriptor is Export followed by JSON encoding.
func MarshalDescriptor(t types.Type, reg reference.Registry) ([]byte, error) {
	d, err := Export(t, reg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(d)
}

// UnmarshalDescriptor is JSON decoding followed by Import.
func UnmarshalDescriptor(data []byte, reg *reference.MemRegistry) (types.Type, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing descriptor: %w", err)
	}
	return Import(&d, reg)
}
