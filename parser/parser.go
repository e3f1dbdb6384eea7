// Package parser parses the textual form of types, as printed by
// Type.String, back into types.
//
// The grammar, with optional whitespace allowed between all tokens:
//
//	type       = array | set | dict | ndarray | struct | union | tuple
//	           | interval | locus | variable | int64 | int32 | float32
//	           | float64 | bool | str | call | void
//	int32      = "int32" | "int"
//	int64      = "int64"
//	float32    = "float32"
//	float64    = "float64" | "float"
//	array      = "array" "<" type ">"
//	set        = "set" "<" type ">"
//	dict       = "dict" "<" type "," type ">"
//	ndarray    = "ndarray" "<" type "," identifier ">"
//	struct     = "struct" "{" [ fields ] "}"
//	union      = "union" "{" [ fields ] "}"
//	tuple      = "tuple" "(" [ type { "," type } ] ")"
//	fields     = field { "," field }
//	field      = identifier ":" type
//	interval   = "interval" "<" type ">"
//	locus      = "locus" ( "[" identifier "]" | "<" identifier ">" )
//	variable   = "?" identifier [ ":" constraint ]
//	identifier = word | "`" escaped "`"
//
// Every keyword may also be spelled with a "t" prefix (tint32, tarray, ...).
//
// ParseParsable reads the interchange form printed by Type.Parsable
// instead: capitalized keywords (Int32, String, Boolean, Array, ...),
// square brackets around type arguments and tuple elements, and
// Locus(name).
package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hail-is/hailtype/tokenizer"
	"github.com/hail-is/hailtype/types"
)

// maxFragment bounds the amount of input quoted in a ParseError.
const maxFragment = 32

type ParseError struct {
	Pos      tokenizer.Position
	Fragment string
	Message  string
}

func (e *ParseError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("line %d, column %d: %s at %q", e.Pos.Line, e.Pos.Column, e.Message, e.Fragment)
}

var keywords = map[string]bool{
	"void": true, "int": true, "int32": true, "int64": true,
	"float": true, "float32": true, "float64": true,
	"bool": true, "str": true, "call": true,
	"array": true, "set": true, "dict": true, "ndarray": true,
	"struct": true, "union": true, "tuple": true,
	"interval": true, "locus": true,
}

// displayKeyword returns the canonical spelling of w, or "" if w is not a
// keyword.
func displayKeyword(w string) string {
	if keywords[w] {
		return w
	}
	if strings.HasPrefix(w, "t") && keywords[w[1:]] {
		return w[1:]
	}
	return ""
}

var parsableKeywords = map[string]string{
	"Void": "void", "Int32": "int32", "Int64": "int64",
	"Float32": "float32", "Float64": "float64",
	"String": "str", "Boolean": "bool", "Call": "call",
	"Array": "array", "Set": "set", "Dict": "dict", "NDArray": "ndarray",
	"Struct": "struct", "Union": "union", "Tuple": "tuple",
	"Interval": "interval", "Locus": "locus",
}

func parsableKeyword(w string) string { return parsableKeywords[w] }

// syntax holds what differs between the display and parsable forms.
type syntax struct {
	parsable bool
	keyword  func(string) string
	// open and close delimit type arguments.
	open, close           string
	tupleOpen, tupleClose string
}

var (
	displaySyntax = syntax{
		keyword:    displayKeyword,
		open:       "<",
		close:      ">",
		tupleOpen:  "(",
		tupleClose: ")",
	}
	parsableSyntax = syntax{
		parsable:   true,
		keyword:    parsableKeyword,
		open:       "[",
		close:      "]",
		tupleOpen:  "[",
		tupleClose: "]",
	}
)

type parser struct {
	syntax
	input  string
	tokens []tokenizer.Token
	pos    int
}

// Parse parses the whole of text as a single type in display form.
func Parse(text string) (types.Type, error) {
	return parse(text, displaySyntax)
}

// ParseParsable parses the whole of text as a single type in parsable
// form.
func ParseParsable(text string) (types.Type, error) {
	return parse(text, parsableSyntax)
}

func parse(text string, syn syntax) (types.Type, error) {
	tokens := tokenizer.NewTokenizer(text).Tokenize()
	p := &parser{syntax: syn, input: text, tokens: tokens}
	if n := len(tokens); n > 0 && tokens[n-1].Type == tokenizer.Error {
		return nil, p.errorAt(tokens[n-1], tokens[n-1].Value)
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, p.errorAt(tok, "unexpected input after type")
	}
	return t, nil
}

// MustParse is like Parse but panics if text is malformed.
func MustParse(text string) types.Type {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

func (p *parser) peek() (tokenizer.Token, bool) {
	if p.pos >= len(p.tokens) {
		return tokenizer.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (tokenizer.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

// errorAt builds a ParseError quoting the input from tok onwards.
func (p *parser) errorAt(tok tokenizer.Token, format string, args ...interface{}) *ParseError {
	fragment := p.input[tok.Start.Offset:]
	if len(fragment) > maxFragment {
		cut := maxFragment
		for cut > 0 && !utf8.RuneStart(fragment[cut]) {
			cut--
		}
		fragment = fragment[:cut] + "..."
	}
	return &ParseError{
		Pos:      tok.Start,
		Fragment: fragment,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (p *parser) errorAtEnd(format string, args ...interface{}) *ParseError {
	pos := tokenizer.Position{Line: 1, Column: 1}
	if n := len(p.tokens); n > 0 {
		pos = p.tokens[n-1].End
	}
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func isPunct(tok tokenizer.Token, value string) bool {
	return tok.Type == tokenizer.Punct && tok.Value == value
}

func (p *parser) expect(value string) error {
	tok, ok := p.next()
	if !ok {
		return p.errorAtEnd("unexpected end of input, expected '%s'", value)
	}
	if !isPunct(tok, value) {
		return p.errorAt(tok, "expected '%s'", value)
	}
	return nil
}

// accept consumes the next token if it is the punctuation value.
func (p *parser) accept(value string) bool {
	if tok, ok := p.peek(); ok && isPunct(tok, value) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseIdentifier() (string, error) {
	tok, ok := p.next()
	if !ok {
		return "", p.errorAtEnd("unexpected end of input, expected an identifier")
	}
	switch tok.Type {
	case tokenizer.Word:
		return tok.Value, nil
	case tokenizer.EscapedIdentifier:
		s, err := types.UnescapeIdentifier(tok.Value)
		if err != nil {
			return "", p.errorAt(tok, "%s", err)
		}
		return s, nil
	}
	return "", p.errorAt(tok, "expected an identifier")
}

func (p *parser) parseType() (types.Type, error) {
	tok, ok := p.next()
	if !ok {
		return nil, p.errorAtEnd("unexpected end of input, expected a type")
	}
	if isPunct(tok, "?") {
		return p.parseVariable()
	}
	if tok.Type != tokenizer.Word {
		return nil, p.errorAt(tok, "expected a type")
	}

	switch p.keyword(tok.Value) {
	case "void":
		return types.Void, nil
	case "int", "int32":
		return types.Int32, nil
	case "int64":
		return types.Int64, nil
	case "float32":
		return types.Float32, nil
	case "float", "float64":
		return types.Float64, nil
	case "bool":
		return types.Bool, nil
	case "str":
		return types.Str, nil
	case "call":
		return types.Call, nil
	case "array":
		elem, err := p.parseAngled()
		if err != nil {
			return nil, err
		}
		return types.NewArray(elem), nil
	case "set":
		elem, err := p.parseAngled()
		if err != nil {
			return nil, err
		}
		return types.NewSet(elem), nil
	case "interval":
		point, err := p.parseAngled()
		if err != nil {
			return nil, err
		}
		return types.NewInterval(point), nil
	case "dict":
		return p.parseDict()
	case "ndarray":
		return p.parseNDArray()
	case "struct":
		fields, err := p.parseFields(tok)
		if err != nil {
			return nil, err
		}
		return types.NewStruct(fields...)
	case "union":
		cases, err := p.parseFields(tok)
		if err != nil {
			return nil, err
		}
		return types.NewUnion(cases...)
	case "tuple":
		return p.parseTuple()
	case "locus":
		return p.parseLocus()
	}
	return nil, p.errorAt(tok, "unknown type '%s'", tok.Value)
}

// parseAngled parses a single type argument, "<" type ">" in display form.
func (p *parser) parseAngled() (types.Type, error) {
	if err := p.expect(p.open); err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(p.close); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *parser) parseDict() (types.Type, error) {
	if err := p.expect(p.open); err != nil {
		return nil, err
	}
	key, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(","); err != nil {
		return nil, err
	}
	value, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(p.close); err != nil {
		return nil, err
	}
	return types.NewDict(key, value), nil
}

func (p *parser) parseNDArray() (types.Type, error) {
	if err := p.expect(p.open); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(","); err != nil {
		return nil, err
	}
	tok, _ := p.peek()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	// A backticked rank always names a variable, even when it is all
	// digits.
	rank := types.ParseNat(name)
	if tok.Type == tokenizer.EscapedIdentifier {
		if name == "" {
			return nil, p.errorAt(tok, "empty rank variable name")
		}
		rank = types.NatVariable(name)
	}
	if err := p.expect(p.close); err != nil {
		return nil, err
	}
	return types.NewNDArray(elem, rank), nil
}

// parseFields parses a brace-delimited field list. Duplicate names are
// reported at the keyword that opened the record.
func (p *parser) parseFields(start tokenizer.Token) ([]types.Field, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var fields []types.Field
	if p.accept("}") {
		return fields, nil
	}
	seen := map[string]bool{}
	for {
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, p.errorAt(start, "%s", &types.DuplicateFieldError{Name: name})
		}
		seen[name] = true
		fields = append(fields, types.Field{Name: name, Type: t})
		if p.accept("}") {
			return fields, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseTuple() (types.Type, error) {
	if err := p.expect(p.tupleOpen); err != nil {
		return nil, err
	}
	var elems []types.Type
	if p.accept(p.tupleClose) {
		return types.NewTuple(), nil
	}
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
		if p.accept(p.tupleClose) {
			return types.NewTuple(elems...), nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

// parseLocus accepts both locus[name] and locus<name> in display form,
// and Locus(name) in parsable form.
func (p *parser) parseLocus() (types.Type, error) {
	closing := "]"
	if p.parsable {
		closing = ")"
		if err := p.expect("("); err != nil {
			return nil, err
		}
	} else if p.accept("<") {
		closing = ">"
	} else if err := p.expect("["); err != nil {
		return nil, err
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expect(closing); err != nil {
		return nil, err
	}
	return types.NewLocus(name), nil
}

func (p *parser) parseVariable() (types.Type, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	constraint := types.Unconstrained
	if p.accept(":") {
		tok, ok := p.next()
		if !ok {
			return nil, p.errorAtEnd("unexpected end of input, expected a constraint")
		}
		if tok.Type != tokenizer.Word {
			return nil, p.errorAt(tok, "expected a constraint")
		}
		constraint, err = types.ParseConstraint(tok.Value)
		if err != nil {
			return nil, p.errorAt(tok, "%s", err)
		}
	}
	return types.NewVariable(name, constraint), nil
}
