package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// titleStopwords are dropped before comparing titles. Alongside common
// function words it includes the announcement verbs news headlines swap
// freely ("X releases Y" vs "X launches Y" describe the same event).
var titleStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {}, "for": {},
	"to": {}, "in": {}, "on": {}, "at": {}, "with": {}, "its": {}, "is": {},
	"as": {}, "by": {}, "from": {}, "into": {}, "new": {},
	"launch": {}, "launches": {}, "launched": {},
	"release": {}, "releases": {}, "released": {},
	"announce": {}, "announces": {}, "announced": {},
	"unveil": {}, "unveils": {}, "unveiled": {},
	"introduce": {}, "introduces": {}, "introduced": {},
	"debut": {}, "debuts": {}, "reveals": {}, "says": {}, "reports": {},
}

// normalizeTokens lowercases s, strips punctuation and stopwords, and
// returns the remaining token set.
func normalizeTokens(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, stop := titleStopwords[f]; stop {
			continue
		}
		tokens[f] = struct{}{}
	}
	return tokens
}

// tokenOverlap computes the Jaccard similarity of two token sets.
func tokenOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// normalizeName canonicalizes a trend or topic name for identity
// matching: lowercased, punctuation-free, single-spaced.
func normalizeName(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.Join(fields, " ")
}

// displayName renders a normalized name for presentation.
func displayName(normalized string) string {
	words := strings.Fields(normalized)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// containsKeyword reports whether the normalized keyword occurs in the
// normalized text as a substring.
func containsKeyword(text, keyword string) bool {
	return keyword != "" && strings.Contains(text, keyword)
}
