package dashboard

import (
	"fmt"
	"strings"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Pipeline run"))
	b.WriteString("\n")

	for i, name := range m.names {
		b.WriteString(stepDoneStyle.Render(fmt.Sprintf("  ✓ %s", name)))
		if i < len(m.names)-1 {
			b.WriteString("\n")
		}
	}
	if len(m.names) > 0 {
		b.WriteString("\n")
	}

	if !m.done {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), stepLiveStyle.Render(m.current)))
	}

	b.WriteString(m.progress.ViewAs(m.overall / 100.0))
	b.WriteString(fmt.Sprintf("  %.0f%%\n", m.overall))

	if m.done {
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("failed: %v\n", m.err)))
		} else {
			b.WriteString(stepDoneStyle.Render("done\n"))
		}
	}

	return b.String()
}
