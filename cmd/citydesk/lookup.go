package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/citydesk/safety"
)

func init() {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "resolve <city>",
			Short: "Validate a city name and correct common misspellings",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := app.Deps.Resolver.Resolve(strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message())
				return nil
			},
		},
		&cobra.Command{
			Use:   "weather <city>",
			Short: "Show the weather in a city using the session's unit",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rep, err := app.Deps.Lookup.Weather(app.Session, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rep.Report)
				return nil
			},
		},
		&cobra.Command{
			Use:   "time <city>",
			Short: "Show the current time in a city",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rep, err := app.Deps.Lookup.Time(app.Session, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rep.Report)
				return nil
			},
		},
		&cobra.Command{
			Use:       "unit <celsius|fahrenheit>",
			Short:     "Set the session's temperature unit",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"celsius", "fahrenheit"},
			RunE: func(cmd *cobra.Command, args []string) error {
				conf, err := app.Deps.Lookup.UpdateTemperaturePreference(app.Session, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), conf.Message)
				return nil
			},
		},
		&cobra.Command{
			Use:   "history",
			Short: "List the cities recently asked about",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), app.Deps.Lookup.RecentCities(app.Session).Message)
				return nil
			},
		},
		&cobra.Command{
			Use:   "metrics",
			Short: "Show how many requests the safety gate has blocked",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), safety.Report(app.Session).Message)
				return nil
			},
		},
	)
}
