// Package tokenize splits a launcher query of the form "[[src] dest] text"
// into its language tokens and the text to translate.
package tokenize

import (
	"strings"
	"unicode"
)

// Resolver recognises language tokens. langmeta.Catalog implements it.
type Resolver interface {
	Resolve(token string) string
	Valid(code string) bool
}

// Query is a parsed launcher query. Source is empty when the backend should
// auto-detect the input language.
type Query struct {
	Source string
	Target string
	Text   string
}

// HasSource reports whether an explicit source language was given.
func (q Query) HasSource() bool {
	return q.Source != ""
}

// Parse splits input into languages and text. At most two leading tokens are
// consumed, left to right: "dest text" sets the target, "src dest text" sets
// both. A token is only taken as a language when text follows it, so a lone
// "fr" is translated as a word. Anything unrecognised stays in the text.
func Parse(input, defaultLang string, r Resolver) Query {
	q := Query{Target: defaultLang, Text: input}

	first, rest, ok := splitFirst(input)
	if !ok {
		return q
	}
	code := r.Resolve(first)
	if !r.Valid(code) {
		return q
	}
	q.Target, q.Text = code, rest

	second, rest, ok := splitFirst(rest)
	if !ok {
		return q
	}
	code = r.Resolve(second)
	if !r.Valid(code) {
		return q
	}
	q.Source = q.Target
	q.Target, q.Text = code, rest
	return q
}

// splitFirst returns the first whitespace-delimited word of s and the
// remainder with its leading whitespace removed. ok is false when s holds
// fewer than two words.
func splitFirst(s string) (first, rest string, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, "", false
	}
	first = s[:i]
	rest = strings.TrimLeftFunc(s[i:], unicode.IsSpace)
	if rest == "" {
		return first, "", false
	}
	return first, rest, true
}
