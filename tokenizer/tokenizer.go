package tokenizer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/hail-is/hailtype/types"
)

// TokenizerState represents the current state of the tokenizer
type TokenizerState int

const (
	BETWEEN_TOKENS TokenizerState = iota
	WORD
	ESCAPED_IDENTIFIER
	ESCAPED_IDENTIFIER_BACKSLASH
)

// TokenType represents the type of a token
type TokenType int

const (
	// Word is a run of word characters: a keyword, a simple identifier
	// or a nat literal.
	Word TokenType = iota
	// EscapedIdentifier is a backtick-quoted identifier. Its value is
	// the raw text between the backticks.
	EscapedIdentifier
	// Punct is a single punctuation character.
	Punct
	Error
)

func (t TokenType) String() string {
	switch t {
	case Word:
		return "Word"
	case EscapedIdentifier:
		return "EscapedIdentifier"
	case Punct:
		return "Punct"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Position represents a position in the source text
type Position struct {
	Line   int
	Column int
	// Offset is the byte offset into the input.
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Start Position
	End   Position
}

// Tokenizer splits type text into tokens. Whitespace separates tokens and
// is otherwise dropped.
type Tokenizer struct {
	input           string
	state           TokenizerState
	position        Position
	currentPosition int
	tokens          []Token
	currentToken    *Token
}

// NewTokenizer creates a new tokenizer with the given input
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{
		input:           input,
		state:           BETWEEN_TOKENS,
		position:        Position{Line: 1, Column: 1},
		currentPosition: 0,
		tokens:          make([]Token, 0),
	}
}

// peek returns the next character without consuming it
func (t *Tokenizer) peek() rune {
	if t.currentPosition >= len(t.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(t.input[t.currentPosition:])
	return r
}

// advance consumes the next character and advances the position
func (t *Tokenizer) advance() rune {
	if t.currentPosition >= len(t.input) {
		return 0
	}
	char, size := utf8.DecodeRuneInString(t.input[t.currentPosition:])
	t.currentPosition += size
	t.position.Offset = t.currentPosition
	if char == '\n' {
		t.position.Line++
		t.position.Column = 1
	} else {
		t.position.Column++
	}
	return char
}

// initializeToken creates a new current token
func (t *Tokenizer) initializeToken(typ TokenType) {
	t.currentToken = &Token{
		Type:  typ,
		Start: t.position,
		End:   t.position,
	}
}

// pushCurrentToken adds the current token to the tokens slice
func (t *Tokenizer) pushCurrentToken() {
	if t.currentToken == nil {
		panic("Expected current token to be defined when pushing current token")
	}
	t.currentToken.End = t.position
	t.tokens = append(t.tokens, *t.currentToken)
	t.currentToken = nil
	t.state = BETWEEN_TOKENS
}

// pushErrorToken creates and pushes an error token
func (t *Tokenizer) pushErrorToken(message string) {
	if t.currentToken == nil {
		t.initializeToken(Error)
	}
	t.currentToken.Type = Error
	t.currentToken.Value = message
	t.pushCurrentToken()
}

// IsPunct reports whether char is one of the punctuation characters of
// the type grammar.
func IsPunct(char rune) bool {
	switch char {
	case '<', '>', '{', '}', '(', ')', '[', ']', ',', ':', '?':
		return true
	}
	return false
}

// Tokenize processes the input and returns the tokens. Tokenizing stops at
// the first error, which is the last token returned.
func (t *Tokenizer) Tokenize() []Token {
	for t.currentPosition < len(t.input) {
		char := t.peek()

		switch t.state {
		case BETWEEN_TOKENS:
			switch {
			case unicode.IsSpace(char):
				t.advance()
			case types.IsWordRune(char):
				t.initializeToken(Word)
				t.state = WORD
			case char == '`':
				t.initializeToken(EscapedIdentifier)
				t.advance()
				t.state = ESCAPED_IDENTIFIER
			case IsPunct(char):
				t.initializeToken(Punct)
				t.currentToken.Value = string(t.advance())
				t.pushCurrentToken()
			default:
				t.initializeToken(Error)
				t.advance()
				t.pushErrorToken(fmt.Sprintf("unexpected character %q", char))
				return t.tokens
			}

		case WORD:
			if types.IsWordRune(char) {
				t.currentToken.Value += string(t.advance())
			} else {
				t.pushCurrentToken()
			}

		case ESCAPED_IDENTIFIER:
			switch char {
			case '`':
				t.advance()
				t.pushCurrentToken()
			case '\\':
				t.currentToken.Value += string(t.advance())
				t.state = ESCAPED_IDENTIFIER_BACKSLASH
			default:
				t.currentToken.Value += string(t.advance())
			}

		case ESCAPED_IDENTIFIER_BACKSLASH:
			t.currentToken.Value += string(t.advance())
			t.state = ESCAPED_IDENTIFIER

		default:
			t.advance()
			t.pushErrorToken("Unknown tokenizer state")
			return t.tokens
		}
	}

	switch t.state {
	case WORD:
		t.pushCurrentToken()
	case ESCAPED_IDENTIFIER, ESCAPED_IDENTIFIER_BACKSLASH:
		t.pushErrorToken("unterminated escaped identifier")
	}

	return t.tokens
}
