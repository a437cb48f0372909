package monitoring

import (
	"fmt"
	"net/http"

	"github.com/newrelic/go-agent/v3/newrelic"
	log "github.com/sirupsen/logrus"

	"github.com/dpcdirect/dpc-app/conf"
)

var a *apm

type apm struct {
	App *newrelic.Application
}

func GetMonitor() *apm {
	if a == nil {
		target := conf.GetEnv("DEPLOYMENT_TARGET")
		if target == "" {
			target = "local"
		}
		app, err := newrelic.NewApplication(
			newrelic.ConfigAppName(fmt.Sprintf("DPC-%s", target)),
			newrelic.ConfigLicense(conf.GetEnv("NEW_RELIC_LICENSE_KEY")),
			newrelic.ConfigEnabled(true),
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

// WrapHandler instruments the route when the agent is configured; otherwise
// the handler is returned untouched.
func (a *apm) WrapHandler(pattern string, h http.HandlerFunc) (string, http.HandlerFunc) {
	if a.App != nil {
		return newrelic.WrapHandleFunc(a.App, pattern, h)
	}
	return pattern, h
}
