// Package shellcmd implements a pipeline.Step that runs a shell command,
// grounded on internal/plugins/command/command.go's determineShell/buildEnv
// and exec.CommandContext flow.
package shellcmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/kestrelrun/taskpipe/pkg/pipeline"
)

// Settings configures one shellcmd step.
type Settings struct {
	Command string
	Shell   string
	WorkDir string
	Env     map[string]string
}

// Step runs Settings.Command through a shell.
type Step[C any] struct {
	pipeline.BaseStep
	Settings Settings
}

// New constructs a Step from a plan's settings map.
func New[C any](id, description string, critical bool, settings map[string]any) (pipeline.Step[C], error) {
	s := Settings{}
	if v, ok := settings["command"].(string); ok {
		s.Command = v
	}
	if v, ok := settings["shell"].(string); ok {
		s.Shell = v
	}
	if v, ok := settings["work_dir"].(string); ok {
		s.WorkDir = v
	}
	if v, ok := settings["env"].(map[string]string); ok {
		s.Env = v
	}
	if s.Command == "" {
		return nil, fmt.Errorf("shellcmd step %q: command is required", id)
	}

	return Step[C]{
		BaseStep: pipeline.BaseStep{StepID: id, StepDesc: description, NonCritical: !critical},
		Settings: s,
	}, nil
}

// Run executes Settings.Command, contributing last_exit_code (int) and
// command_output (string) to the context's results. A non-zero exit is
// reported as an error, letting the step's Critical() setting decide
// whether it propagates or is swallowed.
func (s Step[C]) Run(goCtx context.Context, ctx *pipeline.Context[C]) (*pipeline.Context[C], error) {
	shell, shellArgs, err := determineShell(s.Settings.Shell)
	if err != nil {
		return nil, err
	}

	ctx.UpdateStepProgress(20)

	args := append(append([]string{}, shellArgs...), s.Settings.Command)
	cmd := exec.CommandContext(goCtx, shell, args...)
	cmd.Env = buildEnv(s.Settings.Env)
	if s.Settings.WorkDir != "" {
		cmd.Dir = s.Settings.WorkDir
	}

	output, runErr := cmd.CombinedOutput()
	ctx.UpdateStepProgress(90)

	exitCode := 0
	var exitErr *exec.ExitError
	if runErr != nil {
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("shellcmd %q: %w", s.StepID, runErr)
		}
	}

	ctx.Results["last_exit_code"] = exitCode
	ctx.Results["command_output"] = string(output)
	ctx.UpdateStepProgress(100)

	if exitCode != 0 {
		return ctx, fmt.Errorf("shellcmd %q: exit code %d: %s", s.StepID, exitCode, string(output))
	}
	return ctx, nil
}

func determineShell(explicit string) (string, []string, error) {
	if explicit != "" {
		return explicit, []string{"-c"}, nil
	}
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}, nil
	}
	if path, err := exec.LookPath("bash"); err == nil {
		return path, []string{"-c"}, nil
	}
	if path, err := exec.LookPath("sh"); err == nil {
		return path, []string{"-c"}, nil
	}
	return "", nil, fmt.Errorf("no suitable shell found")
}

func buildEnv(custom map[string]string) []string {
	env := os.Environ()
	for k, v := range custom {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
