package shellcmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelrun/taskpipe/pkg/pipeline"
)

func TestStepRunsSuccessfulCommand(t *testing.T) {
	t.Parallel()

	step, err := New[int]("echo", "say hello", true, map[string]any{
		"command": "echo hello",
	})
	require.NoError(t, err)

	out, err := step.Run(context.Background(), pipeline.NewContext(0, nil))
	require.NoError(t, err)
	require.Equal(t, 0, out.Results["last_exit_code"])
	require.Contains(t, out.Results["command_output"], "hello")
}

func TestStepReportsNonZeroExitAsError(t *testing.T) {
	t.Parallel()

	step, err := New[int]("fail", "fail on purpose", true, map[string]any{
		"command": "exit 3",
	})
	require.NoError(t, err)

	out, err := step.Run(context.Background(), pipeline.NewContext(0, nil))
	require.Error(t, err)
	require.Equal(t, 3, out.Results["last_exit_code"])
}

func TestNewRequiresCommand(t *testing.T) {
	t.Parallel()

	_, err := New[int]("x", "x", true, map[string]any{})
	require.Error(t, err)
}
