package pipeline

import (
	"strings"
	"unicode"
)

// Tokenize splits line on whitespace. Double quotes group text that contains
// spaces and "" yields an empty argument. A line with an unbalanced quote is
// split on whitespace only, keeping the quote characters.
func Tokenize(line string) []string {
	if strings.Count(line, `"`)%2 != 0 {
		return strings.Fields(line)
	}

	var (
		tokens  []string
		current strings.Builder
		quoted  bool
		pending bool // current holds a token, possibly empty
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case unicode.IsSpace(r) && !quoted:
			if pending {
				tokens = append(tokens, current.String())
				current.Reset()
				pending = false
			}
		default:
			current.WriteRune(r)
			pending = true
		}
	}
	if pending {
		tokens = append(tokens, current.String())
	}
	return tokens
}
