package codec

import (
	"encoding/json"
	"fmt"

	"github.com/hail-is/hailtype/typechecker"
)

// EncodeError represents a value that cannot be encoded under its type
type EncodeError struct {
	Type    string
	Found   string
	Message string
	Path    []string
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("cannot encode %s as '%s': %s", e.Found, e.Type, e.Message)
	if len(e.Path) > 0 {
		return fmt.Sprintf("encode error in %s: %s", typechecker.FormatPath(e.Path), msg)
	}
	return "encode error: " + msg
}

// DecodeError represents JSON whose shape does not match the type it is
// decoded under
type DecodeError struct {
	Type string
	// Fragment is the offending JSON, shortened.
	Fragment string
	Message  string
	Path     []string
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("cannot decode %s as '%s': %s", e.Fragment, e.Type, e.Message)
	if len(e.Path) > 0 {
		return fmt.Sprintf("decode error in %s: %s", typechecker.FormatPath(e.Path), msg)
	}
	return "decode error: " + msg
}

const maxFragment = 48

func fragment(raw any) string {
	b, err := json.Marshal(raw)
	s := string(b)
	if err != nil {
		s = fmt.Sprint(raw)
	}
	if len(s) > maxFragment {
		s = s[:maxFragment] + "..."
	}
	return s
}
