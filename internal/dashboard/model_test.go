package dashboard

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestUpdateAccumulatesStepNamesAndOverall(t *testing.T) {
	t.Parallel()

	events := make(chan tea.Msg, 4)
	m := NewModel(3, events)

	next, _ := m.Update(StepProgressMsg{PlanIndex: 0, PlanLen: 3, Name: "first", Overall: 33})
	updated := next.(Model)

	require.Equal(t, []string{"first"}, updated.names)
	require.Equal(t, "first", updated.current)
	require.InDelta(t, 33, updated.overall, 0.0001)
	require.False(t, updated.done)
}

func TestUpdateRunCompleteMarksDoneAndQuits(t *testing.T) {
	t.Parallel()

	events := make(chan tea.Msg)
	m := NewModel(1, events)

	next, cmd := m.Update(RunCompleteMsg{Err: errors.New("boom")})
	updated := next.(Model)

	require.True(t, updated.done)
	require.EqualError(t, updated.err, "boom")
	require.NotNil(t, cmd)
}

func TestUpdateQuitsOnCtrlC(t *testing.T) {
	t.Parallel()

	events := make(chan tea.Msg)
	m := NewModel(1, events)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
}

func TestNewBridgeForwardsObserverCallsAsMessages(t *testing.T) {
	t.Parallel()

	observer, events := NewBridge()
	observer(0, 2, "step-a", 50)

	msg := <-events
	progressMsg, ok := msg.(StepProgressMsg)
	require.True(t, ok)
	require.Equal(t, "step-a", progressMsg.Name)
	require.InDelta(t, 50, progressMsg.Overall, 0.0001)
}
