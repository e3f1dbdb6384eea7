package types

import (
	"slices"
	"sync/atomic"

	"github.com/hashicorp/go-set/v3"
)

// Context is the set of external resources, by name, that a type depends
// on. Today those are reference genomes named by locus types.
type Context struct {
	references *set.Set[string]
}

var emptyContext = &Context{references: set.New[string](0)}

// NewContext returns a context referencing the given names.
func NewContext(references ...string) *Context {
	if len(references) == 0 {
		return emptyContext
	}
	return &Context{references: set.From(references)}
}

func (c *Context) IsEmpty() bool { return c.references.Size() == 0 }

// References returns the referenced names in sorted order.
func (c *Context) References() []string {
	refs := c.references.Slice()
	slices.Sort(refs)
	return refs
}

func (c *Context) Contains(name string) bool { return c.references.Contains(name) }

// UnionContexts returns the union of the contexts of ts. Empty contexts are
// skipped, and a single non-empty context is returned as is.
func UnionContexts(ts ...Type) *Context {
	var nonEmpty []*Context
	for _, t := range ts {
		if c := t.Context(); !c.IsEmpty() {
			nonEmpty = append(nonEmpty, c)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return emptyContext
	case 1:
		return nonEmpty[0]
	}
	refs := set.New[string](0)
	for _, c := range nonEmpty {
		refs.InsertSet(c.references)
	}
	return &Context{references: refs}
}

// contextMemo publishes a computed Context at most once. Concurrent first
// calls may compute it twice; only one result is kept.
type contextMemo struct {
	p atomic.Pointer[Context]
}

func (m *contextMemo) get(compute func() *Context) *Context {
	if c := m.p.Load(); c != nil {
		return c
	}
	m.p.CompareAndSwap(nil, compute())
	return m.p.Load()
}
