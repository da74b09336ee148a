package pipeline

import (
	"context"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/safety"
	"github.com/spetersoncode/citydesk/session"
	"github.com/spetersoncode/citydesk/toolset"
	"github.com/spetersoncode/citydesk/workflow"
)

// Session keys written by the direct pipeline.
const (
	KeyResolvedCity  = "resolved_city"
	KeyWeatherReport = "weather_report"
	KeyTimeReport    = "time_report"
)

// Direct builds the model-free workflow. Non-empty filters guard the whole
// run; an intercepted request skips every lookup.
func Direct(deps toolset.Deps, filters safety.Chain) *workflow.Workflow {
	resolve := workflow.NewOutputStep("resolve_city", KeyResolvedCity,
		func(_ context.Context, s *session.Store) (string, error) {
			res, err := deps.Resolver.Extract(session.UserInput(s))
			if err != nil {
				return "", err
			}
			return res.City, nil
		})

	weather := workflow.NewOutputStep("weather", KeyWeatherReport,
		func(_ context.Context, s *session.Store) (string, error) {
			rep, err := deps.Lookup.Weather(s, resolvedCity(s))
			return reportOrMessage(rep.Report, err)
		})

	clock := workflow.NewOutputStep("time", KeyTimeReport,
		func(_ context.Context, s *session.Store) (string, error) {
			rep, err := deps.Lookup.Time(s, resolvedCity(s))
			return reportOrMessage(rep.Report, err)
		})

	combine := workflow.NewOutputStep("combine", session.KeyLastResponse,
		func(_ context.Context, s *session.Store) (string, error) {
			w, _ := session.Get[string](s, KeyWeatherReport)
			t, _ := session.Get[string](s, KeyTimeReport)
			rep, err := deps.Lookup.Combine(s, resolvedCity(s), w, t)
			if err != nil {
				return "", err
			}
			return rep.Message, nil
		})

	var root workflow.Step = workflow.NewChain(NameDirect,
		resolve,
		workflow.NewParallel("lookups", weather, clock),
		combine,
	)
	if len(filters) > 0 {
		root = workflow.Guarded(filters, root)
	}
	return workflow.New(NameDirect, root)
}

func resolvedCity(s *session.Store) string {
	c, _ := session.Get[string](s, KeyResolvedCity)
	return c
}

// reportOrMessage turns a user-facing lookup failure into the section text
// so the remaining sections still reach the combined answer.
func reportOrMessage(report string, err error) (string, error) {
	if err == nil {
		return report, nil
	}
	if msg, ok := ai.UserMessageOf(err); ok {
		return msg, nil
	}
	return "", err
}
