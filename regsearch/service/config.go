package service

import (
	"github.com/bcgov/regsearch-app/conf"
	"github.com/bcgov/regsearch-app/regsearch/search"
)

// Config carries the tunable knobs of the search pipeline. Values come from
// the environment with sensible production defaults; see LoadConfig.
type Config struct {
	LastNameShortThreshold float64 `conf:"REGSEARCH_LASTNAME_SHORT_THRESHOLD" conf_default:"0.65"`
	LastNameLongThreshold  float64 `conf:"REGSEARCH_LASTNAME_LONG_THRESHOLD" conf_default:"0.46"`
	FirstNameThreshold     float64 `conf:"REGSEARCH_FIRSTNAME_THRESHOLD" conf_default:"0.40"`
	BusinessNameThreshold  float64 `conf:"REGSEARCH_BUSINESSNAME_THRESHOLD" conf_default:"0.50"`

	// MaxReturnedResults caps the number of consolidated results a stored
	// response carries. The true total is still reported.
	MaxReturnedResults int `conf:"REGSEARCH_MAX_RETURNED_RESULTS" conf_default:"5000"`

	// NicknameFile optionally points at a TOML nickname table replacing the
	// embedded default.
	NicknameFile string `conf:"REGSEARCH_NICKNAME_FILE"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := conf.Checkout(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Thresholds() search.Thresholds {
	return search.Thresholds{
		LastNameShort: c.LastNameShortThreshold,
		LastNameLong:  c.LastNameLongThreshold,
		FirstName:     c.FirstNameThreshold,
		BusinessName:  c.BusinessNameThreshold,
	}
}

// Nicknames loads the configured nickname table, falling back to the embedded
// default when no file is configured.
func (c *Config) Nicknames() (*search.Nicknames, error) {
	if c.NicknameFile == "" {
		return search.DefaultNicknames(), nil
	}
	return search.LoadNicknames(c.NicknameFile)
}
