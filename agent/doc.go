// Package agent runs tool-calling conversations against a ChatProvider
// with session-bound tools.
//
// An agent loops until the model answers without tool calls. Before every
// model call it runs its pre-invocation filters over the prose of the
// conversation; an intercept swaps the outgoing request for the filter's
// replacement and withholds tools for that call.
//
// # Basic Usage
//
//	a := agent.New("weather_agent", provider,
//	    agent.WithInstructions("You provide weather information for {validated_city}."),
//	    agent.WithTools(toolset.Factory(deps, toolset.GetWeather)),
//	    agent.WithFilters(safety.DefaultChain(gate)),
//	    agent.WithOutputKey("weather_info"),
//	)
//
//	result, err := a.Run(ctx, s, []citydesk.Message{citydesk.NewUserMessage("Weather in Paris?")})
//
// Instructions may reference session values as {key}. Unknown keys are left
// as written.
//
// # Termination Conditions
//
//   - The model responds without tool calls (TerminationComplete)
//   - MaxSteps is reached (TerminationMaxSteps)
//   - Timeout is exceeded (TerminationTimeout)
//   - Context is cancelled (TerminationCancelled)
//   - StopPredicate returns true (TerminationCustom)
//   - An error occurs (TerminationError)
package agent
