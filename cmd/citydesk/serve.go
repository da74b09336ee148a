package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/mcp"
	"github.com/spetersoncode/citydesk/toolset"
)

func init() {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "mcp",
			Short: "Serve the city tools over MCP on stdin and stdout",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				app.Logger.Info("mcp server starting", zap.String("session_id", app.ID))
				registry := toolset.New(app.Deps, app.Session)
				return mcp.ServeStdio(registry, mcp.WithCallHook(func(ctx context.Context, r ai.ToolResult) {
					if err := app.Save(ctx); err != nil {
						app.Logger.Warn("session save failed", zap.String("tool", r.Name), zap.Error(err))
					}
				}))
			},
		},
		&cobra.Command{
			Use:         "sessions",
			Short:       "List persisted sessions",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{"session": "none"},
			RunE: func(cmd *cobra.Command, _ []string) error {
				infos, err := app.db.Sessions(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tUPDATED\tKEYS")
				for _, info := range infos {
					fmt.Fprintf(w, "%s\t%s\t%d\n", info.ID, info.UpdatedAt.Format(time.RFC3339), info.Keys)
				}
				return w.Flush()
			},
		},
	)
}
