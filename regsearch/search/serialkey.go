package search

import (
	"strings"
)

// Characters commonly confused when a serial number is keyed in from paper.
// Each maps to the digit it is most often mistaken for.
var confusable = map[rune]rune{
	'O': '0',
	'Q': '0',
	'I': '1',
	'L': '1',
	'Z': '2',
	'S': '5',
	'G': '6',
	'B': '8',
}

const serialKeyLength = 6

// SerialSearchKey derives the lossy grouping key for a manufactured home
// serial number. Confusable letters fold to their digit look-alikes, any
// remaining letters are dropped, and the result is the last six digits,
// zero-padded on the left. Two serials sharing a key are fuzzy-match
// candidates for each other.
func SerialSearchKey(serial string) string {
	var digits []rune
	for _, r := range strings.ToUpper(serial) {
		if d, ok := confusable[r]; ok {
			r = d
		}
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}

	key := string(digits)
	if len(key) > serialKeyLength {
		key = key[len(key)-serialKeyLength:]
	}
	return strings.Repeat("0", serialKeyLength-len(key)) + key
}

// AircraftSearchKey derives the grouping key for an aircraft D.O.T. serial:
// the last six alphanumeric characters, upper-cased. Aircraft serials keep
// their letters; the confusable-digit folding only applies to MH serials.
func AircraftSearchKey(serial string) string {
	var chars []rune
	for _, r := range strings.ToUpper(serial) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			chars = append(chars, r)
		}
	}

	if len(chars) > serialKeyLength {
		chars = chars[len(chars)-serialKeyLength:]
	}
	return string(chars)
}

// NormalizeSerial strips separators and upper-cases a serial or registration
// number for exact-equality comparison.
func NormalizeSerial(value string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(value) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
