package regsearchcli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli"

	"github.com/bcgov/regsearch-app/regsearch/constants"
	"github.com/bcgov/regsearch-app/regsearch/models"
	"github.com/bcgov/regsearch-app/regsearch/search"
	"github.com/bcgov/regsearch-app/regsearch/service"
)

type fakeService struct {
	lastCriterion models.SearchCriterion
	lastOrdering  search.ResultOrdering
	response      *models.SearchResponse
	err           error

	overrideSearchID  string
	overrideIndex     int
	overrideMatchType models.MatchType
}

func (f *fakeService) Search(ctx context.Context, criterion models.SearchCriterion, ordering search.ResultOrdering) (*models.SearchResponse, error) {
	f.lastCriterion = criterion
	f.lastOrdering = ordering
	return f.response, f.err
}

func (f *fakeService) GetSearchResponse(ctx context.Context, searchID string) (*models.SearchResponse, error) {
	return f.response, f.err
}

func (f *fakeService) OverrideMatchType(ctx context.Context, searchID string, resultIndex int, newMatchType models.MatchType) (*models.SearchResponse, error) {
	f.overrideSearchID = searchID
	f.overrideIndex = resultIndex
	f.overrideMatchType = newMatchType
	return f.response, f.err
}

type CLITestSuite struct {
	suite.Suite
	fake *fakeService
	app  *cli.App
	out  *bytes.Buffer
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (s *CLITestSuite) SetupTest() {
	s.fake = &fakeService{response: &models.SearchResponse{
		SearchID:        "f61a4a08-4979-4a4d-a8b7-ad65c7f53b5e",
		SearchTimestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Results: []models.ConsolidatedResult{{
			BaseRegistrationNumber: constants.TestBaseRegistrationNumber,
			MatchType:              models.MatchTypeSimilar,
			ActiveCount:            1,
		}},
	}}
	newService = func() (service.Service, error) { return s.fake, nil }

	s.app = GetApp()
	s.out = new(bytes.Buffer)
	s.app.Writer = s.out
}

func (s *CLITestSuite) TestSearchCommand() {
	err := s.app.Run([]string{Name, "search",
		"--type", "INDIVIDUAL_NAME",
		"--last-name", "HAMM",
		"--first-name", "DAVID",
		"--party-type", "OWNER",
		"--order-by", "match-name",
		"--client-reference", "ref-42"})
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), models.SearchTypeIndividualName, s.fake.lastCriterion.Type)
	assert.Equal(s.T(), &models.NameParts{Last: "HAMM", First: "DAVID"}, s.fake.lastCriterion.Name)
	assert.Equal(s.T(), models.PartyTypeOwner, s.fake.lastCriterion.PartyType)
	assert.Equal(s.T(), "ref-42", s.fake.lastCriterion.ClientReferenceID)
	assert.Equal(s.T(), search.OrderByMatchName, s.fake.lastOrdering)
	assert.Contains(s.T(), s.out.String(), constants.TestBaseRegistrationNumber)
}

func (s *CLITestSuite) TestSearchCommandMissingType() {
	err := s.app.Run([]string{Name, "search", "--value", "D1644"})
	assert.EqualError(s.T(), err, "search type (--type) is required")
}

func (s *CLITestSuite) TestSearchCommandBadOrdering() {
	err := s.app.Run([]string{Name, "search", "--type", "SERIAL_NUMBER",
		"--value", "D1644", "--order-by", "newest"})
	assert.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "unknown ordering")
}

func (s *CLITestSuite) TestSearchCommandServiceError() {
	s.fake.err = errors.New("resolution failed")
	s.fake.response = nil

	err := s.app.Run([]string{Name, "search", "--type", "SERIAL_NUMBER", "--value", "D1644"})
	assert.EqualError(s.T(), err, "resolution failed")
}

func (s *CLITestSuite) TestGetSearchCommand() {
	err := s.app.Run([]string{Name, "get-search", "--search-id", s.fake.response.SearchID})
	assert.NoError(s.T(), err)
	assert.Contains(s.T(), s.out.String(), s.fake.response.SearchID)
}

func (s *CLITestSuite) TestGetSearchCommandMissingID() {
	err := s.app.Run([]string{Name, "get-search"})
	assert.EqualError(s.T(), err, "search id (--search-id) is required")
}

func (s *CLITestSuite) TestOverrideMatchCommand() {
	err := s.app.Run([]string{Name, "override-match",
		"--search-id", s.fake.response.SearchID,
		"--result-index", "0",
		"--match-type", "EXACT"})
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), s.fake.response.SearchID, s.fake.overrideSearchID)
	assert.Equal(s.T(), 0, s.fake.overrideIndex)
	assert.Equal(s.T(), models.MatchTypeExact, s.fake.overrideMatchType)
	assert.Contains(s.T(), s.out.String(), "Match type override recorded")
}

func (s *CLITestSuite) TestOverrideMatchCommandMissingArgs() {
	err := s.app.Run([]string{Name, "override-match", "--result-index", "0", "--match-type", "EXACT"})
	assert.EqualError(s.T(), err, "search id (--search-id) is required")

	err = s.app.Run([]string{Name, "override-match", "--search-id", "abc"})
	assert.EqualError(s.T(), err, "match type (--match-type) is required")
}
