package search

import (
	"github.com/bcgov/regsearch-app/regsearch/models"
)

// Thresholds are the similarity cutoffs for classification. They are
// explicit parameters rather than ambient state so concurrent searches with
// different tuning cannot interfere with each other.
type Thresholds struct {
	// LastNameShort applies when the query's normalized last name is three
	// characters or fewer; short names need a much stronger signal.
	LastNameShort float64
	LastNameLong  float64
	FirstName     float64
	BusinessName  float64
}

// DefaultThresholds mirror the constants the registry's legacy database
// functions used.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LastNameShort: 0.65,
		LastNameLong:  0.46,
		FirstName:     0.40,
		BusinessName:  0.50,
	}
}

const shortLastNameLength = 3

// The last-name-driven rule only tolerates a large length difference when
// the query name is long enough to carry the signal.
const (
	maxLastNameLengthDelta  = 3
	longLastNameTokenLength = 10
)

// Matcher scores a query name against candidate names and classifies each
// comparison EXACT or SIMILAR. It holds no per-search state; one Matcher is
// safe for concurrent searches.
type Matcher struct {
	thresholds Thresholds
	nicknames  *Nicknames
}

func NewMatcher(thresholds Thresholds, nicknames *Nicknames) *Matcher {
	if nicknames == nil {
		nicknames = DefaultNicknames()
	}
	return &Matcher{thresholds: thresholds, nicknames: nicknames}
}

// MatchIndividual compares an individual query name against a candidate
// name. Always returns a verdict; no-match is a valid outcome, not an error.
func (m *Matcher) MatchIndividual(query, candidate models.NameParts) models.MatchVerdict {
	queryLast := Normalize(query.Last)
	queryFirst := Normalize(query.First)
	candLast := Normalize(candidate.Last)
	candFirst := Normalize(candidate.First)
	candMiddle := Normalize(candidate.Middle)

	if queryLast.Key == "" || candLast.Key == "" {
		return models.MatchVerdict{}
	}

	lastEqual := queryLast.Key == candLast.Key

	if lastEqual && m.firstNameExact(queryFirst.Key, candFirst.Key, candMiddle.Key) {
		return models.MatchVerdict{IsMatch: true, MatchType: models.MatchTypeExact, Score: 1.0}
	}

	lastScore := Similarity(queryLast.Key, candLast.Key)
	firstScore := Similarity(queryFirst.Key, candFirst.Key)
	lastThreshold := m.lastNameThreshold(queryLast.Key)

	// Last-name-driven: close last names, same leading letter, first names
	// at least loosely similar.
	if lastScore >= lastThreshold &&
		queryLast.Key[0] == candLast.Key[0] &&
		firstScore >= m.thresholds.FirstName &&
		lengthCompatible(queryLast.Key, candLast.Key) {
		return models.MatchVerdict{IsMatch: true, MatchType: models.MatchTypeSimilar, Score: lastScore}
	}

	// First-name-driven: handles a compound last name keyed in as a first
	// name. The candidate's leading last-name tokens are compared against
	// the query's leading first-name tokens.
	if firstScore >= m.thresholds.FirstName &&
		tokensIntersect(leadingTokens(candLast), leadingTokens(queryFirst)) {
		return models.MatchVerdict{IsMatch: true, MatchType: models.MatchTypeSimilar, Score: firstScore}
	}

	// Reverse token match: close last names plus any shared first-name token.
	if lastScore > lastThreshold &&
		tokensIntersect(candFirst.Tokens(), queryFirst.Tokens()) {
		return models.MatchVerdict{IsMatch: true, MatchType: models.MatchTypeSimilar, Score: lastScore}
	}

	return models.MatchVerdict{Score: lastScore}
}

// MatchBusiness compares a business/organization name query against a
// candidate: byte-equality of the normalized strings is EXACT, a trigram
// score at or above the business threshold is SIMILAR.
func (m *Matcher) MatchBusiness(query, candidate string) models.MatchVerdict {
	q := NormalizeBusiness(query)
	c := NormalizeBusiness(candidate)

	if q.Key == "" || c.Key == "" {
		return models.MatchVerdict{}
	}

	if q.Key == c.Key {
		return models.MatchVerdict{IsMatch: true, MatchType: models.MatchTypeExact, Score: 1.0}
	}

	score := Similarity(q.Key, c.Key)
	if score >= m.thresholds.BusinessName {
		return models.MatchVerdict{IsMatch: true, MatchType: models.MatchTypeSimilar, Score: score}
	}

	return models.MatchVerdict{Score: score}
}

// firstNameExact applies the EXACT first-name rules: byte-equality, the
// legacy middle-initial-as-first-name convention, or a registered nickname
// equivalence.
func (m *Matcher) firstNameExact(queryFirst, candFirst, candMiddle string) bool {
	if queryFirst == candFirst && queryFirst != "" {
		return true
	}
	if candMiddle != "" && (queryFirst == candMiddle || queryFirst == candMiddle[:1]) {
		return true
	}
	return m.nicknames.AreEquivalent(queryFirst, candFirst)
}

func (m *Matcher) lastNameThreshold(queryLast string) float64 {
	if len(queryLast) <= shortLastNameLength {
		return m.thresholds.LastNameShort
	}
	return m.thresholds.LastNameLong
}

func lengthCompatible(queryLast, candLast string) bool {
	delta := len(queryLast) - len(candLast)
	if delta < 0 {
		delta = -delta
	}
	return delta <= maxLastNameLengthDelta || len(queryLast) >= longLastNameTokenLength
}

// leadingTokens returns the first one or two split tokens of a name.
func leadingTokens(n NormalizedName) []string {
	tokens := n.Tokens()
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	return tokens
}

func tokensIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
