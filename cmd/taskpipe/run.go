package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kestrelrun/taskpipe/internal/dashboard"
	"github.com/kestrelrun/taskpipe/internal/logging"
	"github.com/kestrelrun/taskpipe/internal/planconfig"
	"github.com/kestrelrun/taskpipe/pkg/pipeline"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	var workDir string

	cmd := &cobra.Command{
		Use:   "run <plan-file>",
		Short: "execute a declarative plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, flags, args[0], workDir)
		},
	}

	cmd.Flags().StringVar(&workDir, "work-dir", ".", "working directory made available to steps via AppConfig")

	return cmd
}

func runPlan(cmd *cobra.Command, flags *rootFlags, planPath, workDir string) error {
	level := "info"
	if flags.verbose {
		level = "debug"
	}

	useDashboard := shouldUseDashboard(flags.dashboard)

	logOpts := logging.Options{Level: level, JSON: flags.jsonLogs}
	if useDashboard {
		// The dashboard owns the terminal; route logs away from stdout.
		logOpts.Writer = os.Stderr
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	spec, err := planconfig.Load(planPath)
	if err != nil {
		return err
	}

	reg := buildRegistry()
	entries, cfg, err := reg.Build(spec)
	if err != nil {
		return err
	}

	appCtx := pipeline.NewContext(AppConfig{WorkDir: workDir}, logger)

	if !useDashboard {
		var observed int
		p, err := pipeline.NewPipeline(entries,
			pipeline.WithConfig[AppConfig](cfg),
			pipeline.WithObserver[AppConfig](func(planIndex, planLen int, name string, overall float64) {
				observed++
				fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] %s (%.0f%%)\n", planIndex+1, planLen, name, overall)
			}),
		)
		if err != nil {
			return err
		}

		out, runErr := p.Run(context.Background(), appCtx)
		fmt.Fprintf(cmd.OutOrStdout(), "%d/%d position(s) completed\n", observed, len(entries))
		if len(out.Errors) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d error(s) recorded during run\n", len(out.Errors))
		}
		return runErr
	}

	return runWithDashboard(cmd, entries, cfg, appCtx)
}

func runWithDashboard(cmd *cobra.Command, entries []pipeline.PlanEntry[AppConfig], cfg pipeline.Config, appCtx *pipeline.Context[AppConfig]) error {
	observer, events := dashboard.NewBridge()

	p, err := pipeline.NewPipeline(entries, pipeline.WithConfig[AppConfig](cfg), pipeline.WithObserver[AppConfig](observer))
	if err != nil {
		return err
	}

	model := dashboard.NewModel(len(entries), events)
	program := tea.NewProgram(model)

	var runErr error
	go func() {
		_, runErr = p.Run(context.Background(), appCtx)
		events <- dashboard.RunCompleteMsg{Err: runErr}
	}()

	if _, err := program.Run(); err != nil {
		return err
	}
	return runErr
}

func shouldUseDashboard(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}
