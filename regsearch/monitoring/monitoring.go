package monitoring

import (
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
	log "github.com/sirupsen/logrus"

	"github.com/bcgov/regsearch-app/conf"
)

var a *apm

type apm struct {
	App *newrelic.Application
}

func (a apm) Start(msg string) *newrelic.Transaction {
	if a.App != nil {
		return a.App.StartTransaction(msg)
	}
	return nil
}

func (a apm) End(txn *newrelic.Transaction) {
	if txn != nil {
		txn.End()
	}
}

func GetMonitor() *apm {
	if a == nil {
		target := conf.GetEnv("DEPLOYMENT_TARGET")
		if target == "" {
			target = "local"
		}
		app, err := newrelic.NewApplication(
			newrelic.ConfigAppName(fmt.Sprintf("REGSEARCH-%s", target)),
			newrelic.ConfigLicense(conf.GetEnv("NEW_RELIC_LICENSE_KEY")),
			newrelic.ConfigEnabled(conf.GetEnv("NEW_RELIC_LICENSE_KEY") != ""),
			func(cfg *newrelic.Config) {
				cfg.HighSecurity = true
			},
		)
		if err != nil {
			log.Error(err)
		}
		a = &apm{
			App: app,
		}
	}
	return a
}
