package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/pkg/errors"

	customErrors "github.com/bcgov/regsearch-app/regsearch/errors"
	"github.com/bcgov/regsearch-app/regsearch/models"
)

type queryable interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type executable interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const (
	sqlFlavor = sqlbuilder.PostgreSQL
)

// Ensure Repository satisfies the interface
var _ models.Repository = &Repository{}

// Repository reads the denormalized search projection tables and persists
// finished search responses. The projection tables are maintained by the
// registration write path; this package never writes to them.
type Repository struct {
	queryable
	executable
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db, db}
}

func NewRepositoryTx(tx *sql.Tx) *Repository {
	return &Repository{tx, tx}
}

var candidateColumns = []string{
	"registration_id", "base_registration_number", "registration_number",
	"mhr_number", "registration_type", "status",
	"create_timestamp", "expiry_timestamp",
}

func (r *Repository) GetSerialCandidates(ctx context.Context, searchKey string) ([]models.CandidateRecord, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(append(candidateColumns, "serial_number", "serial_type")...)
	sb.From("serial_collateral_search")
	sb.Where(sb.Equal("search_key", searchKey))
	sb.OrderBy("registration_id")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.CandidateRecord
	for rows.Next() {
		var c models.CandidateRecord
		var mhrNumber, serialType sql.NullString
		var expiry sql.NullTime
		if err := rows.Scan(&c.RegistrationID, &c.BaseRegistrationNumber, &c.RegistrationNumber,
			&mhrNumber, &c.RegistrationType, &c.Status,
			&c.CreateTimestamp, &expiry, &c.SerialNumber, &serialType); err != nil {
			return nil, err
		}
		c.MhrNumber = mhrNumber.String
		c.SerialType = serialType.String
		if expiry.Valid {
			c.ExpiryTimestamp = &expiry.Time
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return candidates, nil
}

func (r *Repository) GetRegistrationNumberCandidates(ctx context.Context, registrationNumber string) ([]models.CandidateRecord, error) {
	sb := registrationSelect()
	sb.Where(sb.Equal("registration_number", registrationNumber))
	return r.queryRegistrations(ctx, sb)
}

func (r *Repository) GetMHRNumberCandidates(ctx context.Context, mhrNumber string) ([]models.CandidateRecord, error) {
	sb := registrationSelect()
	sb.Where(sb.Equal("mhr_number", mhrNumber))
	return r.queryRegistrations(ctx, sb)
}

// GetOrganizationNameCandidates prefilters with the pg_trgm % operator over
// the gin-indexed name_key column. The operator's similarity limit defaults
// to 0.3, below every classification threshold, so the coarse fetch is a
// superset of what the matcher will keep.
func (r *Repository) GetOrganizationNameCandidates(ctx context.Context, nameKey string) ([]models.CandidateRecord, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(append(candidateColumns, "organization_name")...)
	sb.From("organization_name_search")
	sb.Where(fmt.Sprintf("name_key %% %s", sb.Var(nameKey)))
	sb.OrderBy("registration_id")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.CandidateRecord
	for rows.Next() {
		var c models.CandidateRecord
		var mhrNumber sql.NullString
		var expiry sql.NullTime
		if err := rows.Scan(&c.RegistrationID, &c.BaseRegistrationNumber, &c.RegistrationNumber,
			&mhrNumber, &c.RegistrationType, &c.Status,
			&c.CreateTimestamp, &expiry, &c.OrganizationName); err != nil {
			return nil, err
		}
		c.MhrNumber = mhrNumber.String
		if expiry.Valid {
			c.ExpiryTimestamp = &expiry.Time
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return candidates, nil
}

func (r *Repository) GetIndividualNameCandidates(ctx context.Context, lastNameFirstChar string, partyType models.PartyType) ([]models.CandidateRecord, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(append(candidateColumns, "last_name", "first_name", "middle_name", "party_type")...)
	sb.From("individual_name_search")
	sb.Where(
		sb.Equal("last_name_first_char", lastNameFirstChar),
		sb.Equal("party_type", partyType),
	)
	sb.OrderBy("registration_id")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.CandidateRecord
	for rows.Next() {
		var c models.CandidateRecord
		var name models.NameParts
		var mhrNumber, middleName sql.NullString
		var expiry sql.NullTime
		if err := rows.Scan(&c.RegistrationID, &c.BaseRegistrationNumber, &c.RegistrationNumber,
			&mhrNumber, &c.RegistrationType, &c.Status,
			&c.CreateTimestamp, &expiry,
			&name.Last, &name.First, &middleName, &c.PartyType); err != nil {
			return nil, err
		}
		name.Middle = middleName.String
		c.OwnerName = &name
		c.MhrNumber = mhrNumber.String
		if expiry.Valid {
			c.ExpiryTimestamp = &expiry.Time
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return candidates, nil
}

// GetRegistrationStatus resolves a registration's lifecycle state at asOf.
// Amendment and change registrations report their base registration's state,
// so a second lookup runs whenever the row is not its own base. An ACTIVE
// state with an elapsed expiry reports EXPIRED.
func (r *Repository) GetRegistrationStatus(ctx context.Context, registrationID int64, asOf time.Time) (models.RegistrationStatus, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("registration_number", "base_registration_number", "status", "expiry_timestamp")
	sb.From("registrations")
	sb.Where(sb.Equal("id", registrationID))

	var registrationNumber, baseRegistrationNumber string
	var status models.RegistrationStatus
	var expiry sql.NullTime

	query, args := sb.Build()
	row := r.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&registrationNumber, &baseRegistrationNumber, &status, &expiry); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return "", errors.Errorf("registration %d not found", registrationID)
		}
		return "", err
	}

	if registrationNumber != baseRegistrationNumber && baseRegistrationNumber != "" {
		bb := sqlFlavor.NewSelectBuilder()
		bb.Select("status", "expiry_timestamp")
		bb.From("registrations")
		bb.Where(bb.Equal("registration_number", baseRegistrationNumber))

		query, args := bb.Build()
		row := r.QueryRowContext(ctx, query, args...)
		if err := row.Scan(&status, &expiry); err != nil {
			if goerrors.Is(err, sql.ErrNoRows) {
				return "", errors.Errorf("base registration %s not found for registration %d",
					baseRegistrationNumber, registrationID)
			}
			return "", err
		}
	}

	if status == models.StatusActive && expiry.Valid && expiry.Time.Before(asOf) {
		return models.StatusExpired, nil
	}
	return status, nil
}

func (r *Repository) CreateSearchResponse(ctx context.Context, response *models.SearchResponse) error {
	criterion, err := json.Marshal(response.Criterion)
	if err != nil {
		return err
	}
	results, err := json.Marshal(response.Results)
	if err != nil {
		return err
	}

	ib := sqlFlavor.NewInsertBuilder().InsertInto("search_requests").
		Cols("search_id", "client_reference_id", "search_timestamp", "criterion",
			"total_results_size", "returned_results_size", "results").
		Values(response.SearchID, response.ClientReferenceID, response.SearchTimestamp,
			criterion, response.TotalResultsSize, response.ReturnedResultsSize, results)
	query, args := ib.Build()

	_, err = r.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) GetSearchResponse(ctx context.Context, searchID string) (*models.SearchResponse, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("search_id", "client_reference_id", "search_timestamp", "criterion",
		"total_results_size", "returned_results_size", "results")
	sb.From("search_requests")
	sb.Where(sb.Equal("search_id", searchID))

	var response models.SearchResponse
	var criterion, results []byte

	query, args := sb.Build()
	row := r.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&response.SearchID, &response.ClientReferenceID, &response.SearchTimestamp,
		&criterion, &response.TotalResultsSize, &response.ReturnedResultsSize, &results); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, &customErrors.EntityNotFoundError{Err: err, SearchID: searchID}
		}
		return nil, err
	}

	if err := json.Unmarshal(criterion, &response.Criterion); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(results, &response.Results); err != nil {
		return nil, err
	}

	if err := r.applyOverrides(ctx, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

func (r *Repository) UpdateMatchType(ctx context.Context, searchID string, resultIndex int, newMatchType models.MatchType) error {
	query, args := sqlbuilder.Buildf(`INSERT INTO search_result_overrides
		(search_id, result_index, match_type) VALUES (%s, %s, %s)
		ON CONFLICT (search_id, result_index) DO UPDATE SET match_type = EXCLUDED.match_type`,
		searchID, resultIndex, newMatchType).
		BuildWithFlavor(sqlFlavor)

	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Errorf("match type override for search %s index %d not recorded", searchID, resultIndex)
	}

	return nil
}

// applyOverrides folds recorded match-type overrides into the stored
// response's results. Overrides with an out-of-range index are skipped; the
// stored response may have been truncated after the override was recorded.
func (r *Repository) applyOverrides(ctx context.Context, response *models.SearchResponse) error {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("result_index", "match_type")
	sb.From("search_result_overrides")
	sb.Where(sb.Equal("search_id", response.SearchID))

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var index int
		var matchType models.MatchType
		if err := rows.Scan(&index, &matchType); err != nil {
			return err
		}
		if index >= 0 && index < len(response.Results) {
			response.Results[index].OverriddenMatchType = matchType
		}
	}
	return rows.Err()
}

func registrationSelect() *sqlbuilder.SelectBuilder {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(candidateColumns...)
	sb.From("registrations_search")
	sb.OrderBy("registration_id")
	return sb
}

func (r *Repository) queryRegistrations(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]models.CandidateRecord, error) {
	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.CandidateRecord
	for rows.Next() {
		var c models.CandidateRecord
		var mhrNumber sql.NullString
		var expiry sql.NullTime
		if err := rows.Scan(&c.RegistrationID, &c.BaseRegistrationNumber, &c.RegistrationNumber,
			&mhrNumber, &c.RegistrationType, &c.Status,
			&c.CreateTimestamp, &expiry); err != nil {
			return nil, err
		}
		c.MhrNumber = mhrNumber.String
		if expiry.Valid {
			c.ExpiryTimestamp = &expiry.Time
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return candidates, nil
}
