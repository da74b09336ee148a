package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/agent"
	"github.com/spetersoncode/citydesk/safety"
	"github.com/spetersoncode/citydesk/session"
	"github.com/spetersoncode/citydesk/tool"
	"github.com/spetersoncode/citydesk/toolset"
	"github.com/spetersoncode/citydesk/workflow"
)

// Pipeline names.
const (
	NameDirect         = "direct"
	NameSingle         = "single"
	NameSequential     = "sequential"
	NameParallel       = "parallel"
	NameStateful       = "stateful"
	NameSafe           = "safe"
	NameSafeStandalone = "safe_standalone"
	NamePreferences    = "preferences"
)

// Session keys written by the agent pipelines.
const (
	KeyValidatedCity = "validated_city"
	KeyWeatherInfo   = "weather_info"
	KeyTimeInfo      = "time_info"
)

// Config carries what every model-backed pipeline needs.
type Config struct {
	Provider ai.ChatProvider
	Deps     toolset.Deps
	// Gate is used by the safe pipeline. Nil uses the default policy.
	Gate        *safety.Gate
	ChatOptions []ai.Option
	Logger      *zap.Logger
	// ExtraTools are offered to every agent next to its city tools, for
	// example the tools of a remote MCP server. On a name clash the city
	// tool is kept.
	ExtraTools []tool.Registration
}

// Names lists the pipelines Build accepts.
func Names() []string {
	return []string{NameSingle, NameSequential, NameParallel, NameStateful, NameSafe, NameSafeStandalone, NamePreferences}
}

// Build returns the named model-backed pipeline.
func Build(name string, cfg Config) (*workflow.Workflow, error) {
	switch name {
	case NameSingle:
		return Single(cfg), nil
	case NameSequential:
		return Sequential(cfg), nil
	case NameParallel:
		return Parallel(cfg), nil
	case NameStateful:
		return Stateful(cfg), nil
	case NameSafe:
		return Safe(cfg), nil
	case NameSafeStandalone:
		return SafeStandalone(cfg), nil
	case NamePreferences:
		return Preferences(cfg), nil
	}
	return nil, fmt.Errorf("pipeline: unknown pipeline %q", name)
}

const (
	validatorInstructions = "You are an agent that validates city names, correcting spelling errors and " +
		"expanding shorthand names to their full form. Reply with the canonical city name only."
	weatherTimeInstructions = "You are a helpful agent who can answer user questions about the time and weather in a city."
	weatherInstructions     = "You are a helpful agent who can provide weather information for a city. " +
		"The validated city is: {validated_city}. Temperatures follow the user's preferred unit ({temperature_unit})."
	timeInstructions = "You are a helpful agent who can provide current time information for a city. " +
		"The validated city is: {validated_city}."
	combinerInstructions = "You are a helpful agent who combines weather and time information for a city " +
		"into a comprehensive response. City: {validated_city}. Weather: {weather_info}. Time: {time_info}. " +
		"Call combine_weather_time_info for the city and follow its header with the weather and time."
	statefulInstructions = "You are a helpful weather assistant that remembers user preferences like temperature units. " +
		"You can provide weather and time information for cities, and you adapt your responses based on user preferences. " +
		"If a user says they prefer Celsius or Fahrenheit, use the update_temperature_preference tool. " +
		"If a user asks about their recent searches, use the get_recent_cities tool."
	safeStandaloneInstructions = "You are a helpful weather assistant that remembers user preferences like temperature units. " +
		"You can provide weather and time information for cities, and you adapt your responses based on user preferences. " +
		"You can also update user preferences when requested and show search history.\n\n" +
		"You have built-in safety features that prevent responding to dangerous or unethical requests. " +
		"If a user asks for something inappropriate, politely explain that you cannot assist with it.\n\n" +
		"If a user asks about blocked requests, use the get_safety_metrics tool."
	preferencesInstructions = "You are a helpful agent who manages user preferences, such as temperature units. " +
		"You can update preferences and provide information about current settings."
)

func (c Config) agent(name, instructions, outputKey string, filters safety.Chain, tools ...string) *agent.Agent {
	return agent.New(name, c.Provider,
		agent.WithInstructions(instructions),
		agent.WithTools(c.tools(tools...)),
		agent.WithFilters(filters),
		agent.WithOutputKey(outputKey),
		agent.WithChatOptions(c.ChatOptions...),
		agent.WithLogger(c.Logger),
	)
}

// Single is one agent with the weather and time tools.
func Single(cfg Config) *workflow.Workflow {
	a := cfg.agent("weather_time_agent", weatherTimeInstructions, session.KeyLastResponse, nil,
		toolset.GetWeather, toolset.GetCurrentTime)
	return workflow.New(NameSingle, a.Step())
}

// Sequential validates the city, then answers with the weather and time
// tools.
func Sequential(cfg Config) *workflow.Workflow {
	validator := cfg.agent("city_validation_agent", validatorInstructions, KeyValidatedCity, nil,
		toolset.ValidateCityName)
	answer := cfg.agent("weather_time_agent", weatherTimeInstructions+" The validated city is: {validated_city}.",
		session.KeyLastResponse, nil, toolset.GetWeather, toolset.GetCurrentTime)

	return workflow.New(NameSequential, workflow.NewChain(NameSequential, validator.Step(), answer.Step()))
}

// Parallel validates, looks up weather and time concurrently, then combines.
func Parallel(cfg Config) *workflow.Workflow {
	return workflow.New(NameParallel, fanOut(cfg, NameParallel, nil))
}

// Stateful is one agent that also manages preferences and history. Its
// filters only normalize empty input.
func Stateful(cfg Config) *workflow.Workflow {
	a := cfg.agent("stateful_weather_bot", statefulInstructions, session.KeyLastResponse,
		safety.Chain{safety.Normalizer{}},
		toolset.ValidateCityName, toolset.GetWeather, toolset.GetCurrentTime,
		toolset.UpdateTemperaturePreference, toolset.GetRecentCities, toolset.GetSafetyMetrics)
	return workflow.New(NameStateful, a.Step())
}

// Safe is the parallel topology with the safety chain before every model
// call. A blocked request is counted once per model call that saw it.
func Safe(cfg Config) *workflow.Workflow {
	return workflow.New(NameSafe, fanOut(cfg, NameSafe, safety.DefaultChain(cfg.gate())))
}

// SafeStandalone is one agent with every tool behind the safety chain, so
// blocked requests and the metrics that report them share a run.
func SafeStandalone(cfg Config) *workflow.Workflow {
	a := cfg.agent("safe_weather_preferences_agent", safeStandaloneInstructions, session.KeyLastResponse,
		safety.DefaultChain(cfg.gate()),
		toolset.ValidateCityName, toolset.GetWeather, toolset.GetCurrentTime,
		toolset.UpdateTemperaturePreference, toolset.GetRecentCities, toolset.GetSafetyMetrics,
		toolset.CombineWeatherTimeInfo)
	return workflow.New(NameSafeStandalone, a.Step())
}

// Preferences manages the temperature unit and reports history and safety
// metrics, behind the safety chain.
func Preferences(cfg Config) *workflow.Workflow {
	a := cfg.agent("preferences_agent", preferencesInstructions, session.KeyLastResponse,
		safety.DefaultChain(cfg.gate()),
		toolset.UpdateTemperaturePreference, toolset.GetRecentCities, toolset.GetSafetyMetrics)
	return workflow.New(NamePreferences, a.Step())
}

func (c Config) tools(names ...string) agent.ToolsFactory {
	base := toolset.Factory(c.Deps, names...)
	if len(c.ExtraTools) == 0 {
		return base
	}
	return func(s *session.Store) *tool.Registry {
		r := base(s)
		for _, reg := range c.ExtraTools {
			r.Register(reg.Tool, reg.Handler)
		}
		return r
	}
}

func (c Config) gate() *safety.Gate {
	if c.Gate != nil {
		return c.Gate
	}
	return safety.NewGate(nil, safety.WithLogger(c.Logger))
}

func fanOut(cfg Config, name string, filters safety.Chain) workflow.Step {
	validator := cfg.agent("city_validation_agent", validatorInstructions, KeyValidatedCity, filters,
		toolset.ValidateCityName)
	weather := cfg.agent("weather_agent", weatherInstructions, KeyWeatherInfo, filters, toolset.GetWeather)
	clock := cfg.agent("time_agent", timeInstructions, KeyTimeInfo, filters, toolset.GetCurrentTime)
	combiner := cfg.agent("combination_agent", combinerInstructions, session.KeyLastResponse, filters,
		toolset.CombineWeatherTimeInfo)

	return workflow.NewChain(name,
		validator.Step(),
		workflow.NewParallel("parallel_weather_time_agent", weather.Step(), clock.Step()),
		combiner.Step(),
	)
}
