package service

import (
	"context"
	"time"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bcgov/regsearch-app/log"
	"github.com/bcgov/regsearch-app/regsearch/constants"
	customErrors "github.com/bcgov/regsearch-app/regsearch/errors"
	"github.com/bcgov/regsearch-app/regsearch/models"
	"github.com/bcgov/regsearch-app/regsearch/monitoring"
	"github.com/bcgov/regsearch-app/regsearch/search"
)

// Ensure service satisfies the interface
var _ Service = &service{}

// Service contains all of the operations a caller performs against the
// search engine: running a search, retrieving a stored response, and
// recording a manual match-type override on a stored result.
type Service interface {
	Search(ctx context.Context, criterion models.SearchCriterion, ordering search.ResultOrdering) (*models.SearchResponse, error)

	GetSearchResponse(ctx context.Context, searchID string) (*models.SearchResponse, error)

	OverrideMatchType(ctx context.Context, searchID string, resultIndex int, newMatchType models.MatchType) (*models.SearchResponse, error)
}

func NewService(r models.Repository, cfg *Config) (Service, error) {
	nicknames, err := cfg.Nicknames()
	if err != nil {
		return nil, err
	}
	return &service{
		repository:         r,
		resolver:           search.NewResolver(r, search.NewMatcher(cfg.Thresholds(), nicknames)),
		maxReturnedResults: cfg.MaxReturnedResults,
		logger:             log.Search,
		now:                time.Now,
	}, nil
}

type service struct {
	repository models.Repository
	resolver   *search.Resolver

	maxReturnedResults int

	logger logrus.FieldLogger

	// now supplies the asOf snapshot timestamp. Every stage of one search
	// invocation sees the same instant.
	now func() time.Time
}

// Search runs the full pipeline for one criterion: validate, resolve and
// score candidates, filter by temporal eligibility, consolidate per base
// registration, then persist the finished response.
func (s *service) Search(ctx context.Context, criterion models.SearchCriterion, ordering search.ResultOrdering) (*models.SearchResponse, error) {
	m := monitoring.GetMonitor()
	txn := m.Start("search")
	defer m.End(txn)

	asOf := s.now().UTC()
	fields := logrus.Fields{
		"searchType":        criterion.Type,
		"clientReferenceId": criterion.ClientReferenceID,
	}

	matches, err := s.resolver.Resolve(ctx, criterion, asOf)
	if err != nil {
		s.logger.WithFields(fields).WithField("status", constants.SearchFailed).Error(err)
		return nil, err
	}

	eligible := search.FilterEligible(matches, asOf)

	results, err := search.Consolidate(eligible, ordering)
	if err != nil {
		s.logger.WithFields(fields).WithField("status", constants.SearchFailed).Error(err)
		return nil, err
	}

	response := &models.SearchResponse{
		SearchID:            uuid.NewRandom().String(),
		ClientReferenceID:   criterion.ClientReferenceID,
		SearchTimestamp:     asOf,
		Criterion:           criterion,
		TotalResultsSize:    len(results),
		ReturnedResultsSize: len(results),
		Results:             results,
	}
	if s.maxReturnedResults > 0 && len(results) > s.maxReturnedResults {
		response.Results = results[:s.maxReturnedResults]
		response.ReturnedResultsSize = s.maxReturnedResults
	}

	if err := s.repository.CreateSearchResponse(ctx, response); err != nil {
		s.logger.WithFields(fields).WithField("status", constants.SearchFailed).Error(err)
		return nil, &customErrors.DataAccessError{Err: err, Msg: "failed to persist search response"}
	}

	s.logger.WithFields(fields).WithFields(logrus.Fields{
		"searchId":            response.SearchID,
		"status":              constants.SearchComplete,
		"totalResultsSize":    response.TotalResultsSize,
		"returnedResultsSize": response.ReturnedResultsSize,
	}).Info("search complete")

	return response, nil
}

func (s *service) GetSearchResponse(ctx context.Context, searchID string) (*models.SearchResponse, error) {
	return s.repository.GetSearchResponse(ctx, searchID)
}

// OverrideMatchType records a manual reclassification of one stored result.
// The override changes the response's presentation only; counts and the
// computed verdict are untouched.
func (s *service) OverrideMatchType(ctx context.Context, searchID string, resultIndex int, newMatchType models.MatchType) (*models.SearchResponse, error) {
	if newMatchType != models.MatchTypeExact && newMatchType != models.MatchTypeSimilar {
		return nil, &customErrors.ValidationError{
			Err: errors.Errorf("unknown match type %q", newMatchType),
			Msg: "invalid match type override",
		}
	}

	response, err := s.repository.GetSearchResponse(ctx, searchID)
	if err != nil {
		return nil, err
	}

	if resultIndex < 0 || resultIndex >= len(response.Results) {
		return nil, &customErrors.ValidationError{
			Err: errors.Errorf("result index %d out of range for search %s", resultIndex, searchID),
			Msg: "invalid match type override",
		}
	}

	if err := s.repository.UpdateMatchType(ctx, searchID, resultIndex, newMatchType); err != nil {
		return nil, &customErrors.DataAccessError{Err: err, Msg: "failed to record match type override"}
	}

	response.Results[resultIndex].OverriddenMatchType = newMatchType
	s.logger.WithFields(logrus.Fields{
		"searchId":     searchID,
		"resultIndex":  resultIndex,
		"newMatchType": newMatchType,
	}).Info("match type overridden")

	return response, nil
}
