package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kestrelrun/taskpipe/pkg/pipeline"
)

// NewBridge returns an Observer that forwards each call as a
// StepProgressMsg on the returned channel, and the channel itself for
// NewModel to consume. The caller must send a RunCompleteMsg (or close the
// channel) once the driving Pipeline.Run returns.
func NewBridge() (pipeline.Observer, chan tea.Msg) {
	events := make(chan tea.Msg, 16)
	observer := func(planIndex, planLen int, name string, overallPercent float64) {
		events <- StepProgressMsg{PlanIndex: planIndex, PlanLen: planLen, Name: name, Overall: overallPercent}
	}
	return observer, events
}
