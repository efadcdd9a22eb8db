package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose   bool
	jsonLogs  bool
	dashboard string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "taskpipe",
		Short:         "taskpipe runs a declarative plan of serial and parallel steps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.jsonLogs, "json-logs", false, "emit structured JSON logs instead of console output")
	cmd.PersistentFlags().StringVar(&flags.dashboard, "dashboard", "auto", "live dashboard mode: auto, always, never")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
