package service

import (
	"context"
	"testing"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/bcgov/regsearch-app/regsearch/constants"
	customErrors "github.com/bcgov/regsearch-app/regsearch/errors"
	"github.com/bcgov/regsearch-app/regsearch/models"
	"github.com/bcgov/regsearch-app/regsearch/search"
)

// fakeRepo is an in-memory models.Repository. Candidate fetches serve canned
// rows; search responses round-trip through a map keyed by search id.
type fakeRepo struct {
	serialCandidates     []models.CandidateRecord
	organizationMatches  []models.CandidateRecord
	individualCandidates []models.CandidateRecord

	statuses map[int64]models.RegistrationStatus
	saved    map[string]*models.SearchResponse

	candidateErr error
	saveErr      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{saved: make(map[string]*models.SearchResponse)}
}

func (f *fakeRepo) GetSerialCandidates(ctx context.Context, searchKey string) ([]models.CandidateRecord, error) {
	return f.serialCandidates, f.candidateErr
}

func (f *fakeRepo) GetRegistrationNumberCandidates(ctx context.Context, registrationNumber string) ([]models.CandidateRecord, error) {
	return nil, f.candidateErr
}

func (f *fakeRepo) GetMHRNumberCandidates(ctx context.Context, mhrNumber string) ([]models.CandidateRecord, error) {
	return nil, f.candidateErr
}

func (f *fakeRepo) GetOrganizationNameCandidates(ctx context.Context, nameKey string) ([]models.CandidateRecord, error) {
	return f.organizationMatches, f.candidateErr
}

// GetIndividualNameCandidates serves only the rows filed under the requested
// leading character; the resolver may ask for several buckets per search.
func (f *fakeRepo) GetIndividualNameCandidates(ctx context.Context, lastNameFirstChar string, partyType models.PartyType) ([]models.CandidateRecord, error) {
	if f.candidateErr != nil {
		return nil, f.candidateErr
	}
	var rows []models.CandidateRecord
	for _, c := range f.individualCandidates {
		if c.OwnerName != nil && search.Normalize(c.OwnerName.Last).Key[:1] == lastNameFirstChar {
			rows = append(rows, c)
		}
	}
	return rows, nil
}

func (f *fakeRepo) GetRegistrationStatus(ctx context.Context, registrationID int64, asOf time.Time) (models.RegistrationStatus, error) {
	if status, ok := f.statuses[registrationID]; ok {
		return status, nil
	}
	return models.StatusActive, nil
}

func (f *fakeRepo) CreateSearchResponse(ctx context.Context, response *models.SearchResponse) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[response.SearchID] = response
	return nil
}

func (f *fakeRepo) GetSearchResponse(ctx context.Context, searchID string) (*models.SearchResponse, error) {
	response, ok := f.saved[searchID]
	if !ok {
		return nil, &customErrors.EntityNotFoundError{Err: errors.New("not found"), SearchID: searchID}
	}
	return response, nil
}

func (f *fakeRepo) UpdateMatchType(ctx context.Context, searchID string, resultIndex int, newMatchType models.MatchType) error {
	if _, ok := f.saved[searchID]; !ok {
		return errors.Errorf("no search %s", searchID)
	}
	return nil
}

type ServiceTestSuite struct {
	suite.Suite
	asOf time.Time
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupSuite() {
	s.asOf = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ServiceTestSuite) service(repo models.Repository, maxResults int) *service {
	return &service{
		repository:         repo,
		resolver:           search.NewResolver(repo, search.NewMatcher(search.DefaultThresholds(), nil)),
		maxReturnedResults: maxResults,
		logger:             logrus.New(),
		now:                func() time.Time { return s.asOf },
	}
}

func (s *ServiceTestSuite) TestSearchSerialNumber() {
	repo := newFakeRepo()
	repo.serialCandidates = []models.CandidateRecord{{
		RegistrationID: 7,
		MhrNumber:      constants.TestMhrNumber,
		SerialNumber:   "03A001644",
		Status:         models.StatusActive,
	}}

	ref := randomdata.Alphanumeric(10)
	response, err := s.service(repo, 5000).Search(context.Background(),
		models.SearchCriterion{
			Type:              models.SearchTypeSerialNumber,
			Value:             "D1644",
			ClientReferenceID: ref,
		}, search.OrderByRegistrationID)
	assert.NoError(s.T(), err)

	assert.NotEmpty(s.T(), response.SearchID)
	assert.Equal(s.T(), ref, response.ClientReferenceID)
	assert.Equal(s.T(), s.asOf, response.SearchTimestamp)
	assert.Equal(s.T(), 1, response.TotalResultsSize)
	assert.Equal(s.T(), 1, response.ReturnedResultsSize)
	assert.Equal(s.T(), models.MatchTypeSimilar, response.Results[0].MatchType)
	assert.Equal(s.T(), constants.TestMhrNumber, response.Results[0].MhrNumber)
	assert.Equal(s.T(), 1, response.Results[0].ActiveCount)

	// The finished response is persisted as stored.
	stored, err := repo.GetSearchResponse(context.Background(), response.SearchID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), response, stored)
}

func (s *ServiceTestSuite) TestSearchExcludesDischargedExactMatch() {
	// An exact name hit on a discharged registration never surfaces; a
	// similar hit on an active one does.
	repo := newFakeRepo()
	repo.individualCandidates = []models.CandidateRecord{
		{RegistrationID: 1, BaseRegistrationNumber: "100001B", PartyType: models.PartyTypeDebtor,
			OwnerName: &models.NameParts{Last: "JOHNSON", First: "ROBERT"},
			Status:    models.StatusActive},
		{RegistrationID: 2, BaseRegistrationNumber: "100002B", PartyType: models.PartyTypeDebtor,
			OwnerName: &models.NameParts{Last: "JOHNSTON", First: "ROBERT"},
			Status:    models.StatusActive},
	}
	repo.statuses = map[int64]models.RegistrationStatus{1: models.StatusDischarged}

	response, err := s.service(repo, 5000).Search(context.Background(),
		models.SearchCriterion{
			Type: models.SearchTypeIndividualName,
			Name: &models.NameParts{Last: "JOHNSON", First: "ROBERT"},
		}, search.OrderByRegistrationID)
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), 1, response.TotalResultsSize)
	assert.Equal(s.T(), "100002B", response.Results[0].BaseRegistrationNumber)
	assert.Equal(s.T(), models.MatchTypeSimilar, response.Results[0].MatchType)
}

func (s *ServiceTestSuite) TestSearchTruncatesLargeResultSets() {
	repo := newFakeRepo()
	repo.organizationMatches = []models.CandidateRecord{
		{RegistrationID: 1, BaseRegistrationNumber: "100001B",
			OrganizationName: "JANDEL HOMES LTD.", Status: models.StatusActive},
		{RegistrationID: 2, BaseRegistrationNumber: "100002B",
			OrganizationName: "JANDEL HOMES LIMITED", Status: models.StatusActive},
	}

	response, err := s.service(repo, 1).Search(context.Background(),
		models.SearchCriterion{
			Type:  models.SearchTypeOrganizationName,
			Value: "JANDEL HOMES LTD.",
		}, search.OrderByRegistrationID)
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), 2, response.TotalResultsSize)
	assert.Equal(s.T(), 1, response.ReturnedResultsSize)
	assert.Len(s.T(), response.Results, 1)
	assert.Equal(s.T(), "100001B", response.Results[0].BaseRegistrationNumber)
}

func (s *ServiceTestSuite) TestSearchNoMatches() {
	repo := newFakeRepo()

	response, err := s.service(repo, 5000).Search(context.Background(),
		models.SearchCriterion{Type: models.SearchTypeSerialNumber, Value: "D1644"},
		search.OrderByRegistrationID)
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), 0, response.TotalResultsSize)
	assert.Empty(s.T(), response.Results)
	assert.Len(s.T(), repo.saved, 1)
}

func (s *ServiceTestSuite) TestSearchValidationError() {
	repo := newFakeRepo()

	_, err := s.service(repo, 5000).Search(context.Background(),
		models.SearchCriterion{Type: models.SearchTypeIndividualName},
		search.OrderByRegistrationID)
	assert.Error(s.T(), err)
	var validationErr *customErrors.ValidationError
	assert.ErrorAs(s.T(), err, &validationErr)
	assert.Empty(s.T(), repo.saved)
}

func (s *ServiceTestSuite) TestSearchPersistFailure() {
	repo := newFakeRepo()
	repo.saveErr = errors.New("disk full")

	_, err := s.service(repo, 5000).Search(context.Background(),
		models.SearchCriterion{Type: models.SearchTypeSerialNumber, Value: "D1644"},
		search.OrderByRegistrationID)
	assert.Error(s.T(), err)
	var dataErr *customErrors.DataAccessError
	assert.ErrorAs(s.T(), err, &dataErr)
}

func (s *ServiceTestSuite) TestOverrideMatchType() {
	repo := newFakeRepo()
	repo.serialCandidates = []models.CandidateRecord{{
		RegistrationID: 7,
		MhrNumber:      constants.TestMhrNumber,
		SerialNumber:   "03A001644",
		Status:         models.StatusActive,
	}}

	svc := s.service(repo, 5000)
	response, err := svc.Search(context.Background(),
		models.SearchCriterion{Type: models.SearchTypeSerialNumber, Value: "D1644"},
		search.OrderByRegistrationID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.MatchTypeSimilar, response.Results[0].CurrentMatchType())

	updated, err := svc.OverrideMatchType(context.Background(), response.SearchID, 0, models.MatchTypeExact)
	assert.NoError(s.T(), err)

	// The override changes presentation only.
	assert.Equal(s.T(), models.MatchTypeExact, updated.Results[0].CurrentMatchType())
	assert.Equal(s.T(), models.MatchTypeSimilar, updated.Results[0].MatchType)
	assert.Equal(s.T(), 1, updated.Results[0].ActiveCount)
}

func (s *ServiceTestSuite) TestOverrideMatchTypeValidation() {
	repo := newFakeRepo()
	svc := s.service(repo, 5000)

	var validationErr *customErrors.ValidationError
	_, err := svc.OverrideMatchType(context.Background(), "some-id", 0, "CLOSE_ENOUGH")
	assert.ErrorAs(s.T(), err, &validationErr)

	repo.saved["known-id"] = &models.SearchResponse{SearchID: "known-id"}
	_, err = svc.OverrideMatchType(context.Background(), "known-id", 3, models.MatchTypeExact)
	assert.ErrorAs(s.T(), err, &validationErr)
}

func (s *ServiceTestSuite) TestOverrideMatchTypeUnknownSearch() {
	svc := s.service(newFakeRepo(), 5000)

	_, err := svc.OverrideMatchType(context.Background(), "missing", 0, models.MatchTypeExact)
	assert.Error(s.T(), err)
	var notFoundErr *customErrors.EntityNotFoundError
	assert.ErrorAs(s.T(), err, &notFoundErr)
}

func (s *ServiceTestSuite) TestGetSearchResponse() {
	repo := newFakeRepo()
	repo.saved["abc"] = &models.SearchResponse{SearchID: "abc"}

	svc := s.service(repo, 5000)
	response, err := svc.GetSearchResponse(context.Background(), "abc")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "abc", response.SearchID)

	_, err = svc.GetSearchResponse(context.Background(), "nope")
	assert.Error(s.T(), err)
}
