package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePlanYAML = `
plan:
  - step:
      id: greet
      description: say hello
      type: shellcmd
      settings:
        command: echo hello
  - group:
      - id: a
        description: branch a
        type: shellcmd
        settings:
          command: echo a
      - id: b
        description: branch b
        type: shellcmd
        settings:
          command: echo b
`

func writeTempPlanFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestPlanCommandPrintsLevelByLevelSummaryWithoutRunning(t *testing.T) {
	t.Parallel()

	path := writeTempPlanFile(t, samplePlanYAML)

	cmd := newPlanCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	require.Equal(t, "Level 0 (1 steps): greet\nLevel 1 (2 steps): a, b\n", out.String())
}
