package services

import (
	"strings"
	"unicode"
)

// searchQuery is the parsed form of a free-text search: Terms are OR-ed,
// every Phrase must appear and no Excluded word may appear.
type searchQuery struct {
	Terms    []string
	Phrases  []string
	Excluded []string
}

func (q searchQuery) IsEmpty() bool {
	return len(q.Terms) == 0 && len(q.Phrases) == 0 && len(q.Excluded) == 0
}

func parseSearch(text string) searchQuery {
	var q searchQuery
	rest := text
	for {
		start := strings.IndexByte(rest, '"')
		if start < 0 {
			break
		}
		end := strings.IndexByte(rest[start+1:], '"')
		if end < 0 {
			break
		}
		phrase := rest[start+1 : start+1+end]
		if words := tokenize(phrase); len(words) > 0 {
			q.Phrases = append(q.Phrases, strings.Join(words, " "))
		}
		rest = rest[:start] + " " + rest[start+1+end+1:]
	}

	for _, field := range strings.Fields(rest) {
		excluded := strings.HasPrefix(field, "-")
		for _, word := range tokenize(field) {
			if excluded {
				q.Excluded = append(q.Excluded, word)
			} else {
				q.Terms = append(q.Terms, word)
			}
		}
	}
	return q
}

// tokenize lowercases s and splits it on anything that is not a letter or
// digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
