// Command citydesk answers weather and time questions about cities, keeping
// per-session preferences, history and safety metrics in SQLite.
package main

import (
	"context"
	"fmt"
	"os"

	ai "github.com/spetersoncode/citydesk"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		closeApp(context.Background())
		if msg, ok := ai.UserMessageOf(err); ok {
			fmt.Fprintln(os.Stderr, msg)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
