// Package tool provides the registry that maps tool names offered to a model
// onto Go handlers.
//
// Define tool arguments as a struct with tags and register a typed handler:
//
//	type WeatherArgs struct {
//	    City string `json:"city" desc:"City name" required:"true"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_weather", "Get current weather",
//	        func(ctx context.Context, args WeatherArgs) (string, error) {
//	            return lookup(args.City), nil
//	        }),
//	)
//
// # Supported Struct Tags
//
//	json:"name"      - Property name
//	desc:"text"      - Description for the model
//	required:"true"  - Mark field as required
//	enum:"a,b,c"     - Allowed values (comma-separated)
//
// Handler errors do not abort a conversation. [Registry.Execute] turns them
// into a ToolResult with IsError set so the model can recover; a
// [*ResultError] supplies the exact payload to send back.
package tool
