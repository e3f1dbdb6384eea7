package types

import (
	"fmt"
	"strings"
)

var parsableNames = [kindMax]string{
	VoidKind:    "Void",
	Int32Kind:   "Int32",
	Int64Kind:   "Int64",
	Float32Kind: "Float32",
	Float64Kind: "Float64",
	StrKind:     "String",
	BoolKind:    "Boolean",
	CallKind:    "Call",
}

func (p *Primitive) String() string   { return p.kind.String() }
func (p *Primitive) Parsable() string { return parsableNames[p.kind] }

func (a *Array) String() string   { return "array<" + a.elem.String() + ">" }
func (a *Array) Parsable() string { return "Array[" + a.elem.Parsable() + "]" }

func (s *Set) String() string   { return "set<" + s.elem.String() + ">" }
func (s *Set) Parsable() string { return "Set[" + s.elem.Parsable() + "]" }

func (d *Dict) String() string {
	return fmt.Sprintf("dict<%s, %s>", d.key, d.value)
}

func (d *Dict) Parsable() string {
	return fmt.Sprintf("Dict[%s,%s]", d.key.Parsable(), d.value.Parsable())
}

func (s *Struct) String() string   { return "struct{" + s.displayFields() + "}" }
func (s *Struct) Parsable() string { return "Struct{" + s.parsableFields() + "}" }

func (u *Union) String() string   { return "union{" + u.displayFields() + "}" }
func (u *Union) Parsable() string { return "Union{" + u.parsableFields() + "}" }

func (l *fieldList) displayFields() string {
	parts := make([]string, len(l.fields))
	for i, f := range l.fields {
		parts[i] = EscapeIdentifier(f.Name) + ": " + f.Type.String()
	}
	return strings.Join(parts, ", ")
}

func (l *fieldList) parsableFields() string {
	parts := make([]string, len(l.fields))
	for i, f := range l.fields {
		parts[i] = EscapeIdentifier(f.Name) + ":" + f.Type.Parsable()
	}
	return strings.Join(parts, ",")
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.elems))
	for i, e := range t.elems {
		parts[i] = e.String()
	}
	return "tuple(" + strings.Join(parts, ", ") + ")"
}

func (t *Tuple) Parsable() string {
	parts := make([]string, len(t.elems))
	for i, e := range t.elems {
		parts[i] = e.Parsable()
	}
	return "Tuple[" + strings.Join(parts, ",") + "]"
}

func (i *Interval) String() string   { return "interval<" + i.point.String() + ">" }
func (i *Interval) Parsable() string { return "Interval[" + i.point.Parsable() + "]" }

func (l *Locus) String() string   { return "locus<" + EscapeIdentifier(l.reference) + ">" }
func (l *Locus) Parsable() string { return "Locus(" + EscapeIdentifier(l.reference) + ")" }

func (n *NDArray) String() string {
	return fmt.Sprintf("ndarray<%s, %s>", n.elem, n.rank)
}

func (n *NDArray) Parsable() string {
	return fmt.Sprintf("NDArray[%s,%s]", n.elem.Parsable(), n.rank)
}

func (v *Variable) String() string {
	s := "?" + EscapeIdentifier(v.name)
	if v.constraint != Unconstrained {
		s += ":" + string(v.constraint)
	}
	return s
}

func (v *Variable) Parsable() string { return v.String() }

// Pretty returns the display form of t with struct, union and tuple bodies
// broken one member per line. The first line is indented by indent spaces
// and each nesting level adds increment more.
func Pretty(t Type, indent, increment int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", indent))
	writePretty(&b, t, indent, increment)
	return b.String()
}

func writePretty(b *strings.Builder, t Type, indent, increment int) {
	switch t := t.(type) {
	case *Array:
		b.WriteString("array<")
		writePretty(b, t.elem, indent, increment)
		b.WriteString(">")
	case *Set:
		b.WriteString("set<")
		writePretty(b, t.elem, indent, increment)
		b.WriteString(">")
	case *Dict:
		b.WriteString("dict<")
		writePretty(b, t.key, indent, increment)
		b.WriteString(", ")
		writePretty(b, t.value, indent, increment)
		b.WriteString(">")
	case *Interval:
		b.WriteString("interval<")
		writePretty(b, t.point, indent, increment)
		b.WriteString(">")
	case *NDArray:
		b.WriteString("ndarray<")
		writePretty(b, t.elem, indent, increment)
		b.WriteString(", ")
		b.WriteString(t.rank.String())
		b.WriteString(">")
	case *Struct:
		writePrettyFields(b, "struct", t.fields, indent, increment)
	case *Union:
		writePrettyFields(b, "union", t.fields, indent, increment)
	case *Tuple:
		if len(t.elems) == 0 {
			b.WriteString("tuple ()")
			return
		}
		b.WriteString("tuple (")
		for i, e := range t.elems {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString("\n")
			b.WriteString(strings.Repeat(" ", indent+increment))
			writePretty(b, e, indent+increment, increment)
		}
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", indent))
		b.WriteString(")")
	case *Primitive, *Locus, *Variable:
		b.WriteString(t.String())
	default:
		panic(unhandled(t))
	}
}

func writePrettyFields(b *strings.Builder, keyword string, fields []Field, indent, increment int) {
	if len(fields) == 0 {
		b.WriteString(keyword + " {}")
		return
	}
	b.WriteString(keyword + " {")
	for i, f := range fields {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", indent+increment))
		b.WriteString(EscapeIdentifier(f.Name))
		b.WriteString(": ")
		writePretty(b, f.Type, indent+increment, increment)
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString("}")
}
