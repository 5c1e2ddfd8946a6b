package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		key  string
	}{
		{"Uppercases", "smith", "SMITH"},
		{"StripsPunctuation", "O'Brien", "OBRIEN"},
		{"HyphenSplitsTokens", "smith-jones", "SMITH JONES"},
		{"DropsLeadingPrefix", "Dr. John Smith", "JOHN SMITH"},
		{"DropsTrailingSuffix", "John Smith Jr.", "JOHN SMITH"},
		{"DropsPrefixAndSuffix", "MR JOHN SMITH III", "JOHN SMITH"},
		{"CompressesRepeats", "HAMM", "HAM"},
		{"CompressesLeadingRepeats", "AARON", "ARON"},
		{"CollapsesWhitespace", "  JOHN   SMITH  ", "JOHN SMITH"},
		{"EmptyInput", "", ""},
		{"GarbageInput", "!!!???", ""},
		{"LonePrefixTokenKept", "MR", "MR"},
		{"SuffixIKept", "SMITH I", "SMITH"},
		{"LoneIKept", "I", "I"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, Normalize(tt.raw).Key)
		})
	}
}

func TestNormalizeSplitTokens(t *testing.T) {
	n := Normalize("VAN DER BERG SMITH")
	assert.Equal(t, "VAN", n.First)
	assert.Equal(t, "DER", n.Second)
	assert.Equal(t, "BERG", n.Third)
	assert.Equal(t, []string{"VAN", "DER", "BERG"}, n.Tokens())

	n = Normalize("SMITH")
	assert.Equal(t, "SMITH", n.First)
	assert.Equal(t, "", n.Second)
	assert.Equal(t, "", n.Third)
	assert.Equal(t, []string{"SMITH"}, n.Tokens())

	n = Normalize("")
	assert.Empty(t, n.Tokens())
}

func TestNormalizeBusinessKeepsHonorifics(t *testing.T) {
	assert.Equal(t, "MRS FIELDS COOKIES", NormalizeBusiness("Mrs. Fields' Cookies").Key)
	assert.Equal(t, "JANDEL HOMES LTD", NormalizeBusiness("JANDEL HOMES LTD.").Key)
}

func TestNormalizeIsPure(t *testing.T) {
	raw := "Dr. John Smith Jr."
	first := Normalize(raw)
	second := Normalize(raw)
	assert.Equal(t, first, second)
}
