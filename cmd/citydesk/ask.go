package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/mcp"
	"github.com/spetersoncode/citydesk/pipeline"
	"github.com/spetersoncode/citydesk/retry"
	"github.com/spetersoncode/citydesk/safety"
	"github.com/spetersoncode/citydesk/session"
	"github.com/spetersoncode/citydesk/workflow"
)

func init() {
	chat := &cobra.Command{
		Use:   "chat <text>",
		Short: "Ask a model-backed pipeline about a city",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runChat,
	}
	chat.Flags().StringP("pipeline", "p", pipeline.NameSingle,
		"Pipeline: "+strings.Join(pipeline.Names(), ", "))
	chat.Flags().String("mcp-server", "", "Command line of a stdio MCP server whose tools are offered to the agents")
	chat.Flags().Int("max-attempts", retry.DefaultConfig().MaxAttempts, "Model call attempts for transient failures")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "ask <text>",
			Short: "Answer a weather and time question without a model",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				wf := pipeline.Direct(app.Deps, safety.DefaultChain(app.Gate))
				return runWorkflow(cmd, wf, strings.Join(args, " "))
			},
		},
		chat,
	)
}

func runChat(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("pipeline")
	attempts, _ := cmd.Flags().GetInt("max-attempts")

	provider, err := cfg.NewProvider(cmd.Context())
	if err != nil {
		return err
	}
	rc := retry.DefaultConfig()
	rc.MaxAttempts = attempts

	pcfg := pipeline.Config{
		Provider: retry.Wrap(provider, rc, app.Logger),
		Deps:     app.Deps,
		Gate:     app.Gate,
		Logger:   app.Logger,
	}
	if server, _ := cmd.Flags().GetString("mcp-server"); server != "" {
		remote, err := connectMCP(cmd.Context(), server)
		if err != nil {
			return err
		}
		defer remote.Close()
		pcfg.ExtraTools = remote.Registrations()
	}

	wf, err := pipeline.Build(name, pcfg)
	if err != nil {
		return err
	}
	return runWorkflow(cmd, wf, strings.Join(args, " "))
}

// connectMCP starts the server command line and lists its tools.
func connectMCP(ctx context.Context, commandLine string) (*mcp.RemoteRegistry, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, fmt.Errorf("mcp-server: empty command")
	}
	remote, err := mcp.NewRemoteRegistry(ctx, fields[0], os.Environ(), fields[1:]...)
	if err != nil {
		return nil, fmt.Errorf("mcp-server: %w", err)
	}
	names := make([]string, 0)
	for _, t := range remote.Tools() {
		names = append(names, t.Name)
	}
	app.Logger.Info("mcp tools attached", zap.String("server", fields[0]), zap.Strings("tools", names))
	return remote, nil
}

func runWorkflow(cmd *cobra.Command, wf *workflow.Workflow, text string) error {
	session.SetUserInput(app.Session, text)

	result, err := wf.Run(cmd.Context(), app.Session, workflow.WithTimeout(cfg.Timeout))
	if err != nil {
		if _, ok := ai.UserMessageOf(err); !ok {
			app.Logger.Error("workflow failed",
				zap.String("workflow", wf.Name()),
				zap.String("termination", string(result.Termination)),
				zap.Error(err))
		}
		return err
	}

	app.Logger.Info("workflow complete",
		zap.String("workflow", wf.Name()),
		zap.Int("input_tokens", result.Usage.InputTokens),
		zap.Int("output_tokens", result.Usage.OutputTokens))

	out := session.LastResponse(app.Session)
	if out == "" {
		out = result.Output
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
