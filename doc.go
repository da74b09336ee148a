// Package citydesk is the state and safety layer of a weather and time
// assistant for cities.
//
// The root package holds the types shared by every layer: conversation
// [Message]s, [Tool] definitions, the [ChatProvider] interface implemented
// under provider/, and the categorized [Error] used to tell user mistakes
// from transient and permanent failures.
//
// # Packages
//
//   - session: per-session key/value state with memory and SQLite adapters
//   - catalog: the static weather, timezone and correction tables
//   - city: resolves free-form city names to canonical catalog keys
//   - lookup: weather, time, unit preference, recent cities and combined answers
//   - history: the bounded recent-cities list
//   - safety: the blocked-term gate, its metrics and the refusal prompt
//   - tool, toolset: the tool registry and the city tools bound to a session
//   - workflow, agent, pipeline: composition of lookups and model calls
//   - mcp: the city tools over the Model Context Protocol
//
// # Basic Usage
//
// Answer a question without a model:
//
//	s := session.New(nil)
//	session.SetUserInput(s, "what's the weather in londan?")
//
//	gate := safety.NewGate(nil)
//	wf := pipeline.Direct(toolset.DefaultDeps(), safety.DefaultChain(gate))
//	result, err := wf.Run(ctx, s)
//	if err != nil {
//	    if msg, ok := citydesk.UserMessageOf(err); ok {
//	        fmt.Println(msg)
//	        return
//	    }
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Output)
//
// # Error Handling
//
// Errors carry a category. User-input errors expose a message that is safe
// to show as-is:
//
//	if citydesk.CategoryOf(err) == citydesk.ErrorUserInput {
//	    msg, _ := citydesk.UserMessageOf(err)
//	    fmt.Println(msg)
//	}
//
// Transient errors (rate limits, server errors, network failures) are
// retried by the retry package.
package citydesk
