package models

import (
	"time"
)

// SearchType identifies the kind of criterion a search request carries.
type SearchType string

const (
	SearchTypeSerialNumber       SearchType = "SERIAL_NUMBER"
	SearchTypeRegistrationNumber SearchType = "REGISTRATION_NUMBER"
	SearchTypeMHRNumber          SearchType = "MHR_NUMBER"
	SearchTypeOrganizationName   SearchType = "ORGANIZATION_NAME"
	SearchTypeBusinessDebtor     SearchType = "BUSINESS_DEBTOR"
	SearchTypeIndividualName     SearchType = "INDIVIDUAL_NAME"
	SearchTypeAircraftDOT        SearchType = "AIRCRAFT_DOT"
)

// RegistrationStatus is the lifecycle state of a registration, or of a single
// owner/collateral row belonging to one.
type RegistrationStatus string

const (
	StatusActive     RegistrationStatus = "ACTIVE"
	StatusExpired    RegistrationStatus = "EXPIRED"
	StatusDischarged RegistrationStatus = "DISCHARGED"
	StatusExempt     RegistrationStatus = "EXEMPT"
	StatusHistorical RegistrationStatus = "HISTORICAL"
)

// MatchType is the quality classification a search result carries.
type MatchType string

const (
	MatchTypeExact   MatchType = "EXACT"
	MatchTypeSimilar MatchType = "SIMILAR"
)

// PartyType restricts individual-name candidates to the relevant party role.
type PartyType string

const (
	PartyTypeDebtor PartyType = "DEBTOR"
	PartyTypeOwner  PartyType = "OWNER"
)

// NameParts holds an individual name for search and candidate records.
type NameParts struct {
	Last   string `json:"last"`
	First  string `json:"first"`
	Middle string `json:"middle,omitempty"`
}

// SearchCriterion is a typed search request. Created once per search request;
// immutable.
type SearchCriterion struct {
	Type              SearchType `json:"type"`
	Value             string     `json:"value,omitempty"`
	Name              *NameParts `json:"name,omitempty"`
	PartyType         PartyType  `json:"partyType,omitempty"`
	ClientReferenceID string     `json:"clientReferenceId,omitempty"`
}

// CandidateRecord is a denormalized, read-only projection of a registration's
// searchable identity. The matching engine never mutates these rows.
type CandidateRecord struct {
	RegistrationID         int64              `json:"registrationId"`
	BaseRegistrationNumber string             `json:"baseRegistrationNumber"`
	RegistrationNumber     string             `json:"registrationNumber,omitempty"`
	MhrNumber              string             `json:"mhrNumber,omitempty"`
	RegistrationType       string             `json:"registrationType"`
	Status                 RegistrationStatus `json:"status"`

	SerialNumber     string     `json:"serialNumber,omitempty"`
	SerialType       string     `json:"serialType,omitempty"`
	OrganizationName string     `json:"organizationName,omitempty"`
	OwnerName        *NameParts `json:"ownerName,omitempty"`
	PartyType        PartyType  `json:"partyType,omitempty"`

	CreateTimestamp time.Time  `json:"createTimestamp"`
	ExpiryTimestamp *time.Time `json:"expiryTimestamp,omitempty"`
}

// GroupKey identifies the candidate's base registration for consolidation.
// MH registrations group by MHR number, PPR registrations by base
// registration number.
func (c CandidateRecord) GroupKey() string {
	if c.MhrNumber != "" {
		return c.MhrNumber
	}
	return c.BaseRegistrationNumber
}

// MatchVerdict is the Similarity Matcher's decision for one candidate.
type MatchVerdict struct {
	IsMatch   bool
	MatchType MatchType
	Score     float64
}

// MatchResult pairs a candidate with its verdict. Produced transiently per
// search; never persisted directly.
type MatchResult struct {
	Candidate       CandidateRecord `json:"candidate"`
	MatchType       MatchType       `json:"matchType"`
	SimilarityScore float64         `json:"similarityScore"`

	// MatchName is the normalized candidate name the verdict was computed
	// against, used for name-key result ordering.
	MatchName string `json:"matchName,omitempty"`
}

// ConsolidatedResult is one summary record per distinct base registration.
// Counts are additive and never decremented.
type ConsolidatedResult struct {
	BaseRegistrationNumber string          `json:"baseRegistrationNumber"`
	MhrNumber              string          `json:"mhrNumber,omitempty"`
	RegistrationNumber     string          `json:"registrationNumber,omitempty"`
	Representative         CandidateRecord `json:"representative"`
	MatchType              MatchType       `json:"matchType"`
	MatchName              string          `json:"matchName,omitempty"`

	// OverriddenMatchType records a manual match-type override by the caller.
	// A recorded override is presentation state; it never alters counts or
	// the computed verdict history.
	OverriddenMatchType MatchType `json:"overriddenMatchType,omitempty"`

	ActiveCount     int `json:"activeCount"`
	ExemptCount     int `json:"exemptCount"`
	HistoricalCount int `json:"historicalCount"`
}

// CurrentMatchType returns the override when one has been recorded, otherwise
// the computed match type.
func (r ConsolidatedResult) CurrentMatchType() MatchType {
	if r.OverriddenMatchType != "" {
		return r.OverriddenMatchType
	}
	return r.MatchType
}

// SearchResponse is the finished, immutable product of one search invocation.
// TotalResultsSize is always >= ReturnedResultsSize; a large-result threshold
// may truncate Results while still reporting the true total.
type SearchResponse struct {
	SearchID            string               `json:"searchId"`
	ClientReferenceID   string               `json:"clientReferenceId,omitempty"`
	SearchTimestamp     time.Time            `json:"searchTimestamp"`
	Criterion           SearchCriterion      `json:"criterion"`
	TotalResultsSize    int                  `json:"totalResultsSize"`
	ReturnedResultsSize int                  `json:"returnedResultsSize"`
	Results             []ConsolidatedResult `json:"results"`
}
