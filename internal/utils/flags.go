package utils

import (
	"strings"
)

// SplitFlags splits a compiler flag string into tokens on whitespace,
// honoring single and double quotes so values like -DNAME="a b" survive as
// one token. Surrounding quotes around the whole string are trimmed first,
// matching how flag strings arrive from shells and config files.
func SplitFlags(s string) []string {
	s = strings.TrimSpace(s)
	s = trimMatchingQuotes(s)

	if s == "" {
		return nil
	}

	var tokens []string
	var current strings.Builder
	var quote rune

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ' ' || r == '\t':
			flush()
		default:
			current.WriteRune(r)
		}
	}

	flush()

	return tokens
}

func trimMatchingQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}

	return s
}
