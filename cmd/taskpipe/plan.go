package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelrun/taskpipe/internal/planconfig"
	"github.com/kestrelrun/taskpipe/pkg/pipeline"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <plan-file>",
		Short: "print a level-by-level summary of a plan file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := planconfig.Load(args[0])
			if err != nil {
				return err
			}

			entries, _, err := buildRegistry().Build(spec)
			if err != nil {
				return err
			}

			p, err := pipeline.NewPipeline[AppConfig](entries)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), p.Plan().String())
			return nil
		},
	}
}
