package testUtils

import (
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/bcgov/regsearch-app/conf"
	"github.com/bcgov/regsearch-app/regsearch/models"
)

// CtxMatcher allow us to validate that the caller supplied a context.Context argument
// See: https://github.com/stretchr/testify/issues/519
var CtxMatcher = mock.MatchedBy(func(ctx context.Context) bool { return true })

func setEnv(why, key, value string) {
	if err := conf.SetEnv(&testing.T{}, key, value); err != nil {
		log.Printf("Error %s env value %s to %s\n", why, key, value)
	}
}

// SetAndRestoreEnvKey replaces the current value of the env var key,
// returning a function which can be used to restore the original value
func SetAndRestoreEnvKey(key, value string) func() {
	originalValue := conf.GetEnv(key)
	setEnv("setting", key, value)
	return func() {
		setEnv("restoring", key, originalValue)
	}
}

// GetLogger returns the underlying implementation of the field logger
func GetLogger(logger logrus.FieldLogger) *logrus.Logger {
	if entry, ok := logger.(*logrus.Entry); ok {
		return entry.Logger
	}
	return logger.(*logrus.Logger)
}

// RandomRegistrationNumber returns a plausible PPR registration number.
func RandomRegistrationNumber() string {
	return fmt.Sprintf("%06d%s", randomdata.Number(1, 999999), randomdata.Letters(1))
}

// RandomMHRNumber returns a plausible six digit MHR number.
func RandomMHRNumber() string {
	return fmt.Sprintf("%06d", randomdata.Number(100000, 199999))
}

// RandomSerialNumber returns a plausible manufactured home serial number.
func RandomSerialNumber() string {
	return fmt.Sprintf("%02d%s%06d", randomdata.Number(1, 99), randomdata.Letters(1), randomdata.Number(1, 999999))
}

// RandomCandidate returns an active registration candidate with randomized
// identifiers, suitable as a fixture base.
func RandomCandidate(registrationID int64) models.CandidateRecord {
	base := RandomRegistrationNumber()
	return models.CandidateRecord{
		RegistrationID:         registrationID,
		BaseRegistrationNumber: base,
		RegistrationNumber:     base,
		RegistrationType:       "SA",
		Status:                 models.StatusActive,
		CreateTimestamp:        time.Now().UTC(),
	}
}

// RandomOwner returns a randomized individual owner name.
func RandomOwner() *models.NameParts {
	return &models.NameParts{
		Last:  randomdata.LastName(),
		First: randomdata.FirstName(randomdata.RandomGender),
	}
}
