package taskplan

import (
	"errors"
	"strings"
)

// SplitArgs splits s into arguments the way a POSIX shell would, without
// expansion: whitespace separates arguments, single quotes keep their
// contents literally, double quotes keep their contents except for the
// escapes \$ \` \" \\, and a backslash outside quotes escapes the next
// character. An empty (quoted) argument is kept.
func SplitArgs(s string) ([]string, error) {
	var (
		args    []string
		buf     strings.Builder
		inToken bool
		quote   rune
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			if quote == '"' && !strings.ContainsRune("$`\"\\\n", r) {
				buf.WriteByte('\\')
			}
			if r != '\n' {
				buf.WriteRune(r)
			}
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				buf.WriteRune(r)
			}
		case r == '\\':
			escaped, inToken = true, true
		case quote == '"':
			if r == '"' {
				quote = 0
			} else {
				buf.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote, inToken = r, true
		case r == ' ' || r == '\t' || r == '\n':
			if inToken {
				args = append(args, buf.String())
				buf.Reset()
				inToken = false
			}
		default:
			buf.WriteRune(r)
			inToken = true
		}
	}
	switch {
	case escaped:
		return nil, errors.New("taskplan: trailing backslash")
	case quote != 0:
		return nil, errors.New("taskplan: unterminated " + string(quote) + " quote")
	}
	if inToken {
		args = append(args, buf.String())
	}
	return args, nil
}
