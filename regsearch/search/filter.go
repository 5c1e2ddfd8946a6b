package search

import (
	"time"

	"github.com/bcgov/regsearch-app/regsearch/models"
)

// Eligible reports whether a candidate may appear in search results as of
// the search's snapshot timestamp. A discharged or expired registration is
// excluded regardless of match quality; a candidate failing this check is
// silently dropped, never an error.
func Eligible(candidate models.CandidateRecord, asOf time.Time) bool {
	switch candidate.Status {
	case models.StatusDischarged, models.StatusExpired:
		return false
	}

	if candidate.ExpiryTimestamp != nil && asOf.After(*candidate.ExpiryTimestamp) {
		return false
	}

	return true
}

// FilterEligible removes ineligible matches, preserving order. The same asOf
// timestamp is used for every candidate so one search sees one consistent
// temporal snapshot.
func FilterEligible(matches []models.MatchResult, asOf time.Time) []models.MatchResult {
	eligible := make([]models.MatchResult, 0, len(matches))
	for _, m := range matches {
		if Eligible(m.Candidate, asOf) {
			eligible = append(eligible, m)
		}
	}
	return eligible
}
