package search

import (
	"sort"

	customErrors "github.com/bcgov/regsearch-app/regsearch/errors"
	"github.com/bcgov/regsearch-app/regsearch/models"
	"github.com/pkg/errors"
)

// ResultOrdering selects how consolidated results are sequenced.
type ResultOrdering int

const (
	// OrderByRegistrationID orders by the representative candidate's
	// registration id ascending. Default.
	OrderByRegistrationID ResultOrdering = iota
	// OrderByMatchName orders by normalized match name, ties broken by
	// registration id ascending.
	OrderByMatchName
)

// Consolidator folds raw matches into one summary record per base
// registration. Counts are strictly additive: folding the same batch twice
// doubles them, folding incrementally across batches accumulates them, and
// nothing ever decrements. It is a pure aggregation; no I/O.
type Consolidator struct {
	groups map[string]*models.ConsolidatedResult
}

func NewConsolidator() *Consolidator {
	return &Consolidator{groups: make(map[string]*models.ConsolidatedResult)}
}

// Add folds a batch of matches into the running consolidation. A match whose
// candidate has no base registration identity is a defect and aborts the
// whole batch with a ConsistencyError.
func (c *Consolidator) Add(matches ...models.MatchResult) error {
	for _, m := range matches {
		key := m.Candidate.GroupKey()
		if key == "" {
			return &customErrors.ConsistencyError{
				Err: errors.Errorf("registration id %d has no base registration identity", m.Candidate.RegistrationID),
				Msg: "match cannot be consolidated",
			}
		}

		group, ok := c.groups[key]
		if !ok {
			group = &models.ConsolidatedResult{
				BaseRegistrationNumber: m.Candidate.BaseRegistrationNumber,
				MhrNumber:              m.Candidate.MhrNumber,
				RegistrationNumber:     m.Candidate.RegistrationNumber,
				Representative:         m.Candidate,
				MatchType:              m.MatchType,
				MatchName:              m.MatchName,
			}
			c.groups[key] = group
		}

		// The lowest registration id represents the group; an EXACT verdict
		// anywhere in the group labels the whole summary EXACT.
		if m.Candidate.RegistrationID < group.Representative.RegistrationID {
			group.Representative = m.Candidate
			group.RegistrationNumber = m.Candidate.RegistrationNumber
			group.MatchName = m.MatchName
		}
		if m.MatchType == models.MatchTypeExact {
			group.MatchType = models.MatchTypeExact
		}

		switch m.Candidate.Status {
		case models.StatusActive:
			group.ActiveCount++
		case models.StatusExempt:
			group.ExemptCount++
		default:
			group.HistoricalCount++
		}
	}

	return nil
}

// Results returns the consolidated summaries in the requested order.
func (c *Consolidator) Results(ordering ResultOrdering) []models.ConsolidatedResult {
	results := make([]models.ConsolidatedResult, 0, len(c.groups))
	for _, group := range c.groups {
		results = append(results, *group)
	}

	switch ordering {
	case OrderByMatchName:
		sort.Slice(results, func(i, j int) bool {
			if results[i].MatchName != results[j].MatchName {
				return results[i].MatchName < results[j].MatchName
			}
			return results[i].Representative.RegistrationID < results[j].Representative.RegistrationID
		})
	default:
		sort.Slice(results, func(i, j int) bool {
			return results[i].Representative.RegistrationID < results[j].Representative.RegistrationID
		})
	}

	return results
}

// Consolidate is the single-pass convenience over NewConsolidator/Add/Results.
func Consolidate(matches []models.MatchResult, ordering ResultOrdering) ([]models.ConsolidatedResult, error) {
	c := NewConsolidator()
	if err := c.Add(matches...); err != nil {
		return nil, err
	}
	return c.Results(ordering), nil
}
