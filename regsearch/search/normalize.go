package search

import (
	"strings"
)

// NormalizedName is the comparable form of a person or business name.
// Key is the canonical string; First, Second and Third are the first three
// whitespace-delimited tokens of Key, used for alternate-ordering matches
// (compound or hyphenated names entered in a different token order).
type NormalizedName struct {
	Key    string
	First  string
	Second string
	Third  string
}

// Tokens returns the non-empty split tokens in order.
func (n NormalizedName) Tokens() []string {
	tokens := make([]string, 0, 3)
	for _, t := range []string{n.First, n.Second, n.Third} {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Honorific and role prefixes dropped when they lead an individual name.
var namePrefixes = map[string]bool{
	"DR":   true,
	"MR":   true,
	"MRS":  true,
	"MS":   true,
	"MISS": true,
	"REV":  true,
	"SIR":  true,
}

// Generational suffixes dropped when they trail an individual name.
var nameSuffixes = map[string]bool{
	"JR":  true,
	"SR":  true,
	"I":   true,
	"II":  true,
	"III": true,
	"IV":  true,
}

// Normalize canonicalizes an individual name component. It strips characters
// outside the alphanumeric + space set, drops a leading honorific prefix and
// a trailing generational suffix, collapses runs of repeated characters
// (common OCR duplication in legacy records), collapses whitespace and
// upper-cases. Empty or garbage input yields an empty key and empty tokens.
func Normalize(raw string) NormalizedName {
	tokens := nameTokens(raw)

	if len(tokens) > 1 && namePrefixes[tokens[0]] {
		tokens = tokens[1:]
	}
	if len(tokens) > 1 && nameSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}

	for i, t := range tokens {
		tokens[i] = compressRepeats(t)
	}

	return splitName(tokens)
}

// NormalizeBusiness canonicalizes a business name. Same cleanup as Normalize
// but honorifics and generational suffixes are left alone; they are part of
// legal business names.
func NormalizeBusiness(raw string) NormalizedName {
	tokens := nameTokens(raw)
	for i, t := range tokens {
		tokens[i] = compressRepeats(t)
	}
	return splitName(tokens)
}

func splitName(tokens []string) NormalizedName {
	n := NormalizedName{Key: strings.Join(tokens, " ")}
	if len(tokens) > 0 {
		n.First = tokens[0]
	}
	if len(tokens) > 1 {
		n.Second = tokens[1]
	}
	if len(tokens) > 2 {
		n.Third = tokens[2]
	}
	return n
}

// nameTokens upper-cases, strips everything outside A-Z, 0-9 and space, and
// splits on whitespace runs.
func nameTokens(raw string) []string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '-':
			// hyphenated names split into their parts
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// compressRepeats collapses runs of 2+ identical consecutive characters to a
// single occurrence.
func compressRepeats(s string) string {
	var b strings.Builder
	var last rune = -1
	for _, r := range s {
		if r == last {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	return b.String()
}
