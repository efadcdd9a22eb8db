// Package dashboard renders a live bubbletea view of a running pipeline's
// weighted progress, bridging pipeline.Observer callbacks (delivered on the
// pipeline's own goroutine) into tea.Msg values via a buffered channel,
// grounded on internal/tui/dashboard/model.go's spinner-driven Model.
package dashboard

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the dashboard's bubbletea model for a single pipeline run.
type Model struct {
	planLen int
	names   []string

	spinner  spinner.Model
	progress progress.Model

	current string
	overall float64
	done    bool
	err     error

	events <-chan tea.Msg
}

// NewModel constructs a Model that reads progress events from events until
// it receives a RunCompleteMsg.
func NewModel(planLen int, events <-chan tea.Msg) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = stepLiveStyle

	return Model{
		planLen:  planLen,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		events:   events,
	}
}

// Init starts the spinner and the first wait-for-event command.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StepProgressMsg:
		m.names = append(m.names, msg.Name)
		m.current = msg.Name
		m.overall = msg.Overall
		return m, waitForEvent(m.events)

	case RunCompleteMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// waitForEvent returns a tea.Cmd that blocks on the channel until the next
// event arrives, the bridge between the pipeline's goroutine and
// bubbletea's single-threaded Update loop.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return RunCompleteMsg{}
		}
		return msg
	}
}
