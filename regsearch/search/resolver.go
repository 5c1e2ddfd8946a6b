package search

import (
	"context"
	"slices"
	"time"

	customErrors "github.com/bcgov/regsearch-app/regsearch/errors"
	"github.com/bcgov/regsearch-app/regsearch/models"
	"github.com/pkg/errors"
)

// Resolver maps a typed search criterion to its candidate set and scores
// each candidate. Resolution is the only stage that touches the data store;
// every invocation re-queries it, and every candidate's registration status
// is re-resolved at call time against the single asOf snapshot.
type Resolver struct {
	repo    models.CandidateRepository
	matcher *Matcher
}

func NewResolver(repo models.CandidateRepository, matcher *Matcher) *Resolver {
	return &Resolver{repo: repo, matcher: matcher}
}

// Validate checks that the criterion's value shape matches its declared
// type. Surfaced before any data-store access.
func Validate(criterion models.SearchCriterion) error {
	switch criterion.Type {
	case models.SearchTypeIndividualName:
		if criterion.Name == nil || criterion.Name.Last == "" || criterion.Name.First == "" {
			return &customErrors.ValidationError{
				Err: errors.New("individual name search requires last and first name"),
				Msg: "invalid search criterion",
			}
		}
	case models.SearchTypeSerialNumber, models.SearchTypeRegistrationNumber,
		models.SearchTypeMHRNumber, models.SearchTypeAircraftDOT:
		if criterion.Value == "" {
			return &customErrors.ValidationError{
				Err: errors.Errorf("%s search requires a value", criterion.Type),
				Msg: "invalid search criterion",
			}
		}
	case models.SearchTypeOrganizationName, models.SearchTypeBusinessDebtor:
		if criterion.Value == "" {
			return &customErrors.ValidationError{
				Err: errors.Errorf("%s search requires a business name value", criterion.Type),
				Msg: "invalid search criterion",
			}
		}
	default:
		return &customErrors.ValidationError{
			Err: errors.Errorf("unknown search type %q", criterion.Type),
			Msg: "invalid search criterion",
		}
	}

	return nil
}

// Resolve fetches the raw candidates for the criterion and returns a scored,
// classified match per surviving candidate. Candidates the matcher rejects
// are dropped here; temporal eligibility is the next stage's concern.
func (r *Resolver) Resolve(ctx context.Context, criterion models.SearchCriterion, asOf time.Time) ([]models.MatchResult, error) {
	if err := Validate(criterion); err != nil {
		return nil, err
	}

	var matches []models.MatchResult
	var err error

	switch criterion.Type {
	case models.SearchTypeSerialNumber:
		matches, err = r.resolveSerial(ctx, criterion.Value, SerialSearchKey(criterion.Value))
	case models.SearchTypeAircraftDOT:
		matches, err = r.resolveSerial(ctx, criterion.Value, AircraftSearchKey(criterion.Value))
	case models.SearchTypeRegistrationNumber:
		matches, err = r.resolveRegistrationNumber(ctx, criterion.Value)
	case models.SearchTypeMHRNumber:
		matches, err = r.resolveMHRNumber(ctx, criterion.Value)
	case models.SearchTypeOrganizationName, models.SearchTypeBusinessDebtor:
		matches, err = r.resolveBusinessName(ctx, criterion.Value)
	case models.SearchTypeIndividualName:
		matches, err = r.resolveIndividualName(ctx, *criterion.Name, criterion.PartyType)
	}
	if err != nil {
		return nil, err
	}

	return r.refreshStatuses(ctx, matches, asOf)
}

func (r *Resolver) resolveSerial(ctx context.Context, value, searchKey string) ([]models.MatchResult, error) {
	candidates, err := r.repo.GetSerialCandidates(ctx, searchKey)
	if err != nil {
		return nil, dataAccess(err, "serial candidate fetch failed")
	}

	normalized := NormalizeSerial(value)
	matches := make([]models.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		verdict := models.MatchVerdict{IsMatch: true, MatchType: models.MatchTypeSimilar}
		verdict.Score = Similarity(normalized, NormalizeSerial(c.SerialNumber))
		if NormalizeSerial(c.SerialNumber) == normalized {
			verdict.MatchType = models.MatchTypeExact
			verdict.Score = 1.0
		}
		matches = append(matches, Classify(verdict, c, c.SerialNumber))
	}
	return matches, nil
}

func (r *Resolver) resolveRegistrationNumber(ctx context.Context, value string) ([]models.MatchResult, error) {
	candidates, err := r.repo.GetRegistrationNumberCandidates(ctx, NormalizeSerial(value))
	if err != nil {
		return nil, dataAccess(err, "registration number candidate fetch failed")
	}
	return exactMatches(candidates), nil
}

func (r *Resolver) resolveMHRNumber(ctx context.Context, value string) ([]models.MatchResult, error) {
	candidates, err := r.repo.GetMHRNumberCandidates(ctx, NormalizeSerial(value))
	if err != nil {
		return nil, dataAccess(err, "MHR number candidate fetch failed")
	}
	return exactMatches(candidates), nil
}

func (r *Resolver) resolveBusinessName(ctx context.Context, value string) ([]models.MatchResult, error) {
	query := NormalizeBusiness(value)
	if query.Key == "" {
		return nil, nil
	}

	candidates, err := r.repo.GetOrganizationNameCandidates(ctx, query.Key)
	if err != nil {
		return nil, dataAccess(err, "organization name candidate fetch failed")
	}

	var matches []models.MatchResult
	for _, c := range candidates {
		verdict := r.matcher.MatchBusiness(value, c.OrganizationName)
		if !verdict.IsMatch {
			continue
		}
		matches = append(matches, Classify(verdict, c, NormalizeBusiness(c.OrganizationName).Key))
	}
	return matches, nil
}

func (r *Resolver) resolveIndividualName(ctx context.Context, name models.NameParts, partyType models.PartyType) ([]models.MatchResult, error) {
	queryLast := Normalize(name.Last)
	if queryLast.Key == "" {
		return nil, nil
	}
	if partyType == "" {
		partyType = models.PartyTypeDebtor
	}

	// The first-name-driven rule can accept a candidate filed under a last
	// name taken from the query's first-name tokens, so each token
	// contributes a fetch bucket alongside the query last name. Buckets are
	// disjoint; a projection row lives under exactly one leading character.
	buckets := []string{queryLast.Key[:1]}
	for _, token := range Normalize(name.First).Tokens() {
		if ch := token[:1]; !slices.Contains(buckets, ch) {
			buckets = append(buckets, ch)
		}
	}

	var candidates []models.CandidateRecord
	for _, bucket := range buckets {
		batch, err := r.repo.GetIndividualNameCandidates(ctx, bucket, partyType)
		if err != nil {
			return nil, dataAccess(err, "individual name candidate fetch failed")
		}
		candidates = append(candidates, batch...)
	}

	var matches []models.MatchResult
	for _, c := range candidates {
		if c.OwnerName == nil {
			continue
		}
		verdict := r.matcher.MatchIndividual(name, *c.OwnerName)
		if !verdict.IsMatch {
			continue
		}
		matchName := Normalize(c.OwnerName.Last).Key + " " + Normalize(c.OwnerName.First).Key
		matches = append(matches, Classify(verdict, c, matchName))
	}
	return matches, nil
}

// refreshStatuses re-resolves each candidate's registration status at asOf
// so a stale projection row can never leak an out-of-date lifecycle state
// into the temporal filter.
func (r *Resolver) refreshStatuses(ctx context.Context, matches []models.MatchResult, asOf time.Time) ([]models.MatchResult, error) {
	for i := range matches {
		status, err := r.repo.GetRegistrationStatus(ctx, matches[i].Candidate.RegistrationID, asOf)
		if err != nil {
			return nil, dataAccess(err, "registration status fetch failed")
		}
		// Owner/collateral level EXEMPT and HISTORICAL states outrank the
		// base registration's lifecycle state for counting purposes.
		if matches[i].Candidate.Status != models.StatusExempt &&
			matches[i].Candidate.Status != models.StatusHistorical {
			matches[i].Candidate.Status = status
		} else if status == models.StatusDischarged || status == models.StatusExpired {
			matches[i].Candidate.Status = status
		}
	}
	return matches, nil
}

func exactMatches(candidates []models.CandidateRecord) []models.MatchResult {
	matches := make([]models.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		verdict := models.MatchVerdict{IsMatch: true, MatchType: models.MatchTypeExact, Score: 1.0}
		name := c.RegistrationNumber
		if c.MhrNumber != "" {
			name = c.MhrNumber
		}
		matches = append(matches, Classify(verdict, c, name))
	}
	return matches
}

func dataAccess(err error, msg string) error {
	return &customErrors.DataAccessError{Err: err, Msg: msg}
}
