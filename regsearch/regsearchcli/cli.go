package regsearchcli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/bcgov/regsearch-app/log"
	"github.com/bcgov/regsearch-app/regsearch/constants"
	"github.com/bcgov/regsearch-app/regsearch/database"
	"github.com/bcgov/regsearch-app/regsearch/models"
	"github.com/bcgov/regsearch-app/regsearch/models/postgres"
	"github.com/bcgov/regsearch-app/regsearch/search"
	"github.com/bcgov/regsearch-app/regsearch/service"
	"github.com/bcgov/regsearch-app/regsearch/utils"
)

// App Name and usage.  Edit them here to prevent breaking tests
const Name = "regsearch"
const Usage = "Personal Property and Manufactured Home Registry search CLI"

// Variable substitution to support testing.
var newService = func() (service.Service, error) {
	cfg, err := service.LoadConfig()
	if err != nil {
		return nil, err
	}
	return service.NewService(postgres.NewRepository(database.Connection()), cfg)
}

func GetApp() *cli.App {
	return setUpApp()
}

func commandContext() (context.Context, context.CancelFunc) {
	timeout := time.Duration(utils.GetEnvInt("REGSEARCH_CLI_TIMEOUT_SEC", 30)) * time.Second
	return context.WithTimeout(context.Background(), timeout)
}

func setUpApp() *cli.App {
	app := cli.NewApp()
	app.Name = Name
	app.Usage = Usage
	app.Version = constants.Version
	var searchType, value, lastName, firstName, middleName, partyType,
		clientReference, orderBy, searchID, matchType string
	var resultIndex int
	app.Commands = []cli.Command{
		{
			Name:  "search",
			Usage: "Run a registry search and print the consolidated response",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "type",
					Usage:       "Search type (SERIAL_NUMBER, REGISTRATION_NUMBER, MHR_NUMBER, ORGANIZATION_NAME, BUSINESS_DEBTOR, INDIVIDUAL_NAME, AIRCRAFT_DOT)",
					Destination: &searchType,
				},
				cli.StringFlag{
					Name:        "value",
					Usage:       "Search value for serial, registration, MHR and business name searches",
					Destination: &value,
				},
				cli.StringFlag{
					Name:        "last-name",
					Usage:       "Last name for individual name searches",
					Destination: &lastName,
				},
				cli.StringFlag{
					Name:        "first-name",
					Usage:       "First name for individual name searches",
					Destination: &firstName,
				},
				cli.StringFlag{
					Name:        "middle-name",
					Usage:       "Middle name for individual name searches",
					Destination: &middleName,
				},
				cli.StringFlag{
					Name:        "party-type",
					Usage:       "Party role for individual name searches (DEBTOR or OWNER)",
					Destination: &partyType,
				},
				cli.StringFlag{
					Name:        "client-reference",
					Usage:       "Caller supplied reference id carried on the response",
					Destination: &clientReference,
				},
				cli.StringFlag{
					Name:        "order-by",
					Usage:       "Result ordering: registration-id (default) or match-name",
					Destination: &orderBy,
				},
			},
			Action: func(c *cli.Context) error {
				if searchType == "" {
					return errors.New("search type (--type) is required")
				}
				ordering, err := parseOrdering(orderBy)
				if err != nil {
					return err
				}

				criterion := models.SearchCriterion{
					Type:              models.SearchType(searchType),
					Value:             value,
					PartyType:         models.PartyType(partyType),
					ClientReferenceID: clientReference,
				}
				if lastName != "" || firstName != "" {
					criterion.Name = &models.NameParts{
						Last:   lastName,
						First:  firstName,
						Middle: middleName,
					}
				}

				svc, err := newService()
				if err != nil {
					return err
				}

				ctx, cancel := commandContext()
				defer cancel()
				response, err := svc.Search(ctx, criterion, ordering)
				if err != nil {
					log.CLI.Error(err)
					return err
				}
				return printJSON(app, response)
			},
		},
		{
			Name:  "get-search",
			Usage: "Print a stored search response",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "search-id",
					Usage:       "Id of the stored search response",
					Destination: &searchID,
				},
			},
			Action: func(c *cli.Context) error {
				if searchID == "" {
					return errors.New("search id (--search-id) is required")
				}

				svc, err := newService()
				if err != nil {
					return err
				}

				ctx, cancel := commandContext()
				defer cancel()
				response, err := svc.GetSearchResponse(ctx, searchID)
				if err != nil {
					log.CLI.Error(err)
					return err
				}
				return printJSON(app, response)
			},
		},
		{
			Name:  "override-match",
			Usage: "Record a manual match-type override on one stored result",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "search-id",
					Usage:       "Id of the stored search response",
					Destination: &searchID,
				},
				cli.IntFlag{
					Name:        "result-index",
					Usage:       "Zero-based index of the result to override",
					Destination: &resultIndex,
				},
				cli.StringFlag{
					Name:        "match-type",
					Usage:       "New match type (EXACT or SIMILAR)",
					Destination: &matchType,
				},
			},
			Action: func(c *cli.Context) error {
				if searchID == "" {
					return errors.New("search id (--search-id) is required")
				}
				if matchType == "" {
					return errors.New("match type (--match-type) is required")
				}

				svc, err := newService()
				if err != nil {
					return err
				}

				ctx, cancel := commandContext()
				defer cancel()
				response, err := svc.OverrideMatchType(ctx, searchID, resultIndex, models.MatchType(matchType))
				if err != nil {
					log.CLI.Error(err)
					return err
				}
				fmt.Fprintf(app.Writer, "Match type override recorded for search %s result %d\n", searchID, resultIndex)
				return printJSON(app, response)
			},
		},
	}
	return app
}

func parseOrdering(orderBy string) (search.ResultOrdering, error) {
	switch orderBy {
	case "", "registration-id":
		return search.OrderByRegistrationID, nil
	case "match-name":
		return search.OrderByMatchName, nil
	default:
		return 0, errors.Errorf("unknown ordering %q", orderBy)
	}
}

func printJSON(app *cli.App, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Writer, "%s\n", out)
	return nil
}
