package core

import (
	"strings"
	"unicode"
)

// Command is one parsed input line: a command name plus its arguments
// in original order.
type Command struct {
	Name string
	Args []string
}

// ParseLine splits a raw input line into a command and arguments.
// Tokens are separated by whitespace; a double-quoted segment is part
// of a single token, embedded whitespace included. There is no escape
// character and quotes do not nest. Blank lines and lines whose first
// non-blank character is '#' yield a nil command: they are no-ops,
// not errors. A line that ends inside an open quote fails with
// ErrUnterminatedQuote.
func ParseLine(line string) (*Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	var tokens []string
	var buf strings.Builder
	inQuote := false

	flush := func() {
		if buf.Len() > 0 {
			tokens = append(tokens, buf.String())
			buf.Reset()
		}
	}

	for _, r := range trimmed {
		switch {
		case inQuote:
			if r == '"' {
				inQuote = false
			} else {
				buf.WriteRune(r)
			}
		case r == '"':
			inQuote = true
		case unicode.IsSpace(r):
			flush()
		default:
			buf.WriteRune(r)
		}
	}

	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	flush()

	// A line of empty quotes produces no tokens.
	if len(tokens) == 0 {
		return nil, nil
	}

	cmd := &Command{Name: tokens[0]}
	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd, nil
}
