package types

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsWordRune reports whether r may appear in an unescaped identifier.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsSimpleIdentifier reports whether s can be printed without backticks.
func IsSimpleIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsWordRune(r) {
			return false
		}
	}
	return true
}

// EscapeIdentifier returns s unchanged if it is a simple identifier and
// otherwise wraps it in backticks, escaping backticks, backslashes and
// control characters. Bytes that are not valid UTF-8 are written as \xHH.
func EscapeIdentifier(s string) string {
	if IsSimpleIdentifier(s) {
		return s
	}
	return quoteIdentifier(s)
}

func quoteIdentifier(s string) string {
	var b strings.Builder
	b.WriteByte('`')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&b, `\x%02x`, s[i])
			i++
			continue
		}
		i += size
		switch r {
		case '`':
			b.WriteString("\\`")
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('`')
	return b.String()
}

// UnescapeIdentifier reverses EscapeIdentifier on the text between the
// backticks of an escaped identifier.
func UnescapeIdentifier(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		if rs[i] != '\\' {
			b.WriteRune(rs[i])
			continue
		}
		i++
		if i == len(rs) {
			return "", fmt.Errorf("dangling escape in identifier %q", s)
		}
		switch rs[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'x':
			if i+2 >= len(rs) {
				return "", fmt.Errorf("short byte escape in identifier %q", s)
			}
			code, err := strconv.ParseUint(string(rs[i+1:i+3]), 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad byte escape in identifier %q", s)
			}
			b.WriteByte(byte(code))
			i += 2
		case 'u':
			if i+4 >= len(rs) {
				return "", fmt.Errorf("short unicode escape in identifier %q", s)
			}
			code, err := strconv.ParseUint(string(rs[i+1:i+5]), 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad unicode escape in identifier %q", s)
			}
			b.WriteRune(rune(code))
			i += 4
		default:
			b.WriteRune(rs[i])
		}
	}
	return b.String(), nil
}
