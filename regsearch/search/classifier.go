package search

import (
	"github.com/bcgov/regsearch-app/regsearch/models"
)

// Classify tags a matcher verdict onto a match result. It exists as its own
// step because the EXACT/SIMILAR label interacts with manual overrides: a
// caller may later override the stored match type for one result of a saved
// response, and that recorded user action must stay distinguishable from a
// freshly computed verdict. Overrides live on ConsolidatedResult
// (OverriddenMatchType); this function only ever emits computed labels.
func Classify(verdict models.MatchVerdict, candidate models.CandidateRecord, matchName string) models.MatchResult {
	return models.MatchResult{
		Candidate:       candidate,
		MatchType:       verdict.MatchType,
		SimilarityScore: verdict.Score,
		MatchName:       matchName,
	}
}
