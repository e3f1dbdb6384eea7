package hailtype

import (
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"strings"

	"github.com/hail-is/hailtype/reference"
	"github.com/hail-is/hailtype/types"
)

// Catalog is a named collection of imported descriptors sharing one
// reference genome registry.
type Catalog struct {
	descriptors map[string]types.Type
	refs        *reference.MemRegistry
}

func NewCatalog() *Catalog {
	return &Catalog{
		descriptors: map[string]types.Type{},
		refs:        reference.NewMemRegistry(),
	}
}

// AddFS imports every .json descriptor in fsys, naming each after its
// path without the extension.
func (c *Catalog) AddFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".json") {
			return nil
		}
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		return c.AddDescriptor(strings.TrimSuffix(path, ".json"), content)
	})
}

// AddDescriptor imports a single JSON descriptor under name.
func (c *Catalog) AddDescriptor(name string, data []byte) error {
	if _, exists := c.descriptors[name]; exists {
		return fmt.Errorf("descriptor %s is already defined", name)
	}
	t, err := UnmarshalDescriptor(data, c.refs)
	if err != nil {
		return fmt.Errorf("descriptor %s: %w", name, err)
	}
	c.descriptors[name] = t
	return nil
}

// Lookup returns the type imported under name.
func (c *Catalog) Lookup(name string) (types.Type, bool) {
	t, ok := c.descriptors[name]
	return t, ok
}

// Names returns the descriptor names in sorted order.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.descriptors))
}

// References returns the registry holding every imported context.
func (c *Catalog) References() *reference.MemRegistry {
	return c.refs
}
