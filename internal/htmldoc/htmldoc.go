// Package htmldoc renders types as HTML outlines: nested lists with one
// item per field, case or element.
package htmldoc

import (
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hail-is/hailtype/types"
)

// Render writes the outline of t to w.
func Render(w io.Writer, t types.Type) error {
	return html.Render(w, Outline(t))
}

// Outline returns the outline of t as a detached <ul class="hailtype">
// node.
func Outline(t types.Type) *html.Node {
	ul := element(atom.Ul)
	ul.Attr = []html.Attribute{{Key: "class", Val: "hailtype"}}
	ul.AppendChild(item("", t))
	return ul
}

type member struct {
	label string
	t     types.Type
}

func item(label string, t types.Type) *html.Node {
	li := element(atom.Li)
	if label != "" {
		name := element(atom.Span)
		name.Attr = []html.Attribute{{Key: "class", Val: "name"}}
		name.AppendChild(text(label))
		li.AppendChild(name)
		li.AppendChild(text(": "))
	}
	code := element(atom.Code)
	code.AppendChild(text(head(t)))
	li.AppendChild(code)

	if ms := members(t); len(ms) > 0 {
		ul := element(atom.Ul)
		for _, m := range ms {
			ul.AppendChild(item(m.label, m.t))
		}
		li.AppendChild(ul)
	}
	return li
}

// head is the text shown for t itself; compound types show their keyword
// and list their members below.
func head(t types.Type) string {
	switch t := t.(type) {
	case *types.NDArray:
		return "ndarray, rank " + t.RankNat().String()
	case *types.Array, *types.Set, *types.Dict, *types.Struct, *types.Union, *types.Tuple, *types.Interval:
		return t.Kind().String()
	}
	return t.String()
}

func members(t types.Type) []member {
	switch t := t.(type) {
	case *types.Array:
		return []member{{"element", t.Elem()}}
	case *types.Set:
		return []member{{"element", t.Elem()}}
	case *types.Dict:
		return []member{{"key", t.Key()}, {"value", t.Value()}}
	case *types.Interval:
		return []member{{"point", t.Point()}}
	case *types.NDArray:
		return []member{{"element", t.Elem()}}
	case *types.Struct:
		return fieldMembers(t.Fields())
	case *types.Union:
		return fieldMembers(t.Cases())
	case *types.Tuple:
		ms := make([]member, t.Len())
		for i := range ms {
			ms[i] = member{strconv.Itoa(i), t.Elem(i)}
		}
		return ms
	}
	return nil
}

func fieldMembers(fields []types.Field) []member {
	ms := make([]member, len(fields))
	for i, f := range fields {
		ms[i] = member{f.Name, f.Type}
	}
	return ms
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
