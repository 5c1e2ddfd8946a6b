package models

import (
	"context"
	"time"
)

// CandidateRepository contains the read-only candidate lookups the search
// pipeline needs. Implementations treat the registry schema as an oracle;
// similarity scoring happens in-process, so these methods fetch in bulk by a
// coarse key and leave the fine-grained matching to the caller.
type CandidateRepository interface {
	// GetSerialCandidates returns serial collateral rows sharing the supplied
	// derived search key (confusable-character folding collapses near-typo
	// serials onto the same key).
	GetSerialCandidates(ctx context.Context, searchKey string) ([]CandidateRecord, error)

	// GetRegistrationNumberCandidates returns candidates whose registration
	// number exactly equals the normalized value.
	GetRegistrationNumberCandidates(ctx context.Context, registrationNumber string) ([]CandidateRecord, error)

	// GetMHRNumberCandidates returns candidates whose MHR number exactly
	// equals the normalized value.
	GetMHRNumberCandidates(ctx context.Context, mhrNumber string) ([]CandidateRecord, error)

	// GetOrganizationNameCandidates returns organization-name rows whose
	// normalized name key is trigram-similar to the query key. The store's
	// similarity cutoff sits below the classification threshold, so scoring
	// still decides membership.
	GetOrganizationNameCandidates(ctx context.Context, nameKey string) ([]CandidateRecord, error)

	// GetIndividualNameCandidates returns owner/debtor name rows whose
	// normalized last name starts with the supplied character, restricted to
	// the supplied party role. Callers needing more than one leading
	// character fetch each bucket separately; buckets never overlap.
	GetIndividualNameCandidates(ctx context.Context, lastNameFirstChar string, partyType PartyType) ([]CandidateRecord, error)

	// GetRegistrationStatus resolves the registration's current lifecycle
	// state as of the supplied timestamp. Amendment and change registrations
	// report their base registration's state.
	GetRegistrationStatus(ctx context.Context, registrationID int64, asOf time.Time) (RegistrationStatus, error)
}

// SearchRepository persists finished search responses and later match-type
// overrides. Overrides only alter the stored response's presentation, never
// the underlying candidate data.
type SearchRepository interface {
	CreateSearchResponse(ctx context.Context, response *SearchResponse) error

	GetSearchResponse(ctx context.Context, searchID string) (*SearchResponse, error)

	// UpdateMatchType records a manual override of the match type for one
	// result in a stored response.
	UpdateMatchType(ctx context.Context, searchID string, resultIndex int, newMatchType MatchType) error
}

// Repository is the full set of data-store operations the search service
// depends on.
type Repository interface {
	CandidateRepository
	SearchRepository
}
