// Package toolset exposes the city operations as model-callable tools bound
// to one session.
//
// Each handler closes over the *session.Store it was built for, so a
// registry must be built per session. Results use the JSON shape
//
//	{"status": "success", "report": "...", "data": {...}}
//	{"status": "error", "error_message": "..."}
package toolset

import (
	"context"
	"encoding/json"
	"errors"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/city"
	"github.com/spetersoncode/citydesk/lookup"
	"github.com/spetersoncode/citydesk/safety"
	"github.com/spetersoncode/citydesk/session"
	"github.com/spetersoncode/citydesk/tool"
)

// Tool names.
const (
	ValidateCityName            = "validate_city_name"
	GetWeather                  = "get_weather"
	GetCurrentTime              = "get_current_time"
	UpdateTemperaturePreference = "update_temperature_preference"
	GetRecentCities             = "get_recent_cities"
	GetSafetyMetrics            = "get_safety_metrics"
	CombineWeatherTimeInfo      = "combine_weather_time_info"
)

// Deps are the services the tools call into.
type Deps struct {
	Resolver *city.Resolver
	Lookup   *lookup.Service
}

// DefaultDeps builds Deps over the default catalog.
func DefaultDeps() Deps {
	return Deps{Resolver: city.NewResolver(nil), Lookup: lookup.New(nil)}
}

// Result is the wire shape of every tool result.
type Result struct {
	Status       string `json:"status"`
	Report       string `json:"report,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Data         any    `json:"data,omitempty"`
}

type cityArgs struct {
	City string `json:"city" desc:"The name of the city" required:"true"`
}

type unitArgs struct {
	Unit string `json:"unit" desc:"Temperature unit to display" enum:"celsius,fahrenheit" required:"true"`
}

type noArgs struct{}

// Registrations returns the tool registrations for s, restricted to names
// when any are given. Unknown names are ignored.
func Registrations(d Deps, s *session.Store, names ...string) []tool.Registration {
	all := []tool.Registration{
		tool.Func(ValidateCityName, "Validates and normalizes a city name, correcting common misspellings.",
			func(_ context.Context, a cityArgs) (string, error) {
				res, err := d.Resolver.Resolve(a.City)
				if err != nil {
					return fail(err)
				}
				return ok(res.Message(), res)
			}),
		tool.Func(GetWeather, "Retrieves the current weather report for a specified city, in the user's preferred temperature unit.",
			func(_ context.Context, a cityArgs) (string, error) {
				rep, err := d.Lookup.Weather(s, a.City)
				if err != nil {
					return fail(err)
				}
				return ok(rep.Report, rep)
			}),
		tool.Func(GetCurrentTime, "Returns the current time in a specified city.",
			func(_ context.Context, a cityArgs) (string, error) {
				rep, err := d.Lookup.Time(s, a.City)
				if err != nil {
					return fail(err)
				}
				return ok(rep.Report, rep)
			}),
		tool.Func(UpdateTemperaturePreference, "Updates the user's preferred temperature unit.",
			func(_ context.Context, a unitArgs) (string, error) {
				conf, err := d.Lookup.UpdateTemperaturePreference(s, a.Unit)
				if err != nil {
					return fail(err)
				}
				return ok(conf.Message, conf)
			}),
		tool.Func(GetRecentCities, "Lists the cities the user recently asked about.",
			func(_ context.Context, _ noArgs) (string, error) {
				rep := d.Lookup.RecentCities(s)
				return ok(rep.Message, rep)
			}),
		tool.Func(GetSafetyMetrics, "Reports how many requests the safety system has blocked in this session.",
			func(_ context.Context, _ noArgs) (string, error) {
				rep := safety.Report(s)
				return ok(rep.Message, rep)
			}),
		tool.Func(CombineWeatherTimeInfo, "Introduces a combined weather and time answer for a city.",
			func(_ context.Context, a cityArgs) (string, error) {
				rep, err := d.Lookup.Combine(s, a.City)
				if err != nil {
					return fail(err)
				}
				return ok(rep.Message, rep)
			}),
	}

	if len(names) == 0 {
		return all
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []tool.Registration
	for _, r := range all {
		if want[r.Tool.Name] {
			out = append(out, r)
		}
	}
	return out
}

// New builds a registry for s holding the named tools, or all of them.
func New(d Deps, s *session.Store, names ...string) *tool.Registry {
	return tool.NewRegistry().Add(Registrations(d, s, names...)...)
}

// Factory returns a function building session-bound registries, for agents
// that are constructed once and run against many sessions.
func Factory(d Deps, names ...string) func(*session.Store) *tool.Registry {
	return func(s *session.Store) *tool.Registry {
		return New(d, s, names...)
	}
}

func ok(report string, data any) (string, error) {
	return encode(Result{Status: "success", Report: report, Data: data})
}

func fail(err error) (string, error) {
	msg, isUser := ai.UserMessageOf(err)
	if !isUser {
		return "", err
	}
	content, encErr := encode(Result{Status: "error", ErrorMessage: msg})
	if encErr != nil {
		return "", errors.Join(err, encErr)
	}
	return "", &tool.ResultError{Content: content, Err: err}
}

func encode(r Result) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
