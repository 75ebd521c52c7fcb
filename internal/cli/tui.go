package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kiiyya/lair/pkg/build"
)

// teaSink forwards executor events into a running bubbletea program.
// Program.Send is safe for concurrent use, so workers can call this
// directly.
type teaSink struct {
	prog *tea.Program
}

func (s *teaSink) StepChanged(pkg string, status build.Status) {
	s.prog.Send(stepMsg{pkg: pkg, status: status})
}

func (s *teaSink) ModuleCompiled(pkg, module string, result build.CompileResult) {
	s.prog.Send(moduleMsg{pkg: pkg, ok: result.OK})
}

type stepMsg struct {
	pkg    string
	status build.Status
}

type moduleMsg struct {
	pkg string
	ok  bool
}

// buildDoneMsg ends the progress display once the pipeline returns.
type buildDoneMsg struct{}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// buildModel renders one line per package as the executor touches it.
type buildModel struct {
	order []string
	state map[string]build.Status
	mods  map[string]int
	frame int
}

func newBuildModel() buildModel {
	return buildModel{
		state: map[string]build.Status{},
		mods:  map[string]int{},
	}
}

func (m buildModel) Init() tea.Cmd {
	return tick()
}

func (m buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		if _, seen := m.state[msg.pkg]; !seen {
			m.order = append(m.order, msg.pkg)
		}
		m.state[msg.pkg] = msg.status
	case moduleMsg:
		if msg.ok {
			m.mods[msg.pkg]++
		}
	case buildDoneMsg:
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m buildModel) View() string {
	var b strings.Builder
	for _, pkg := range m.order {
		b.WriteString(m.renderLine(pkg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m buildModel) renderLine(pkg string) string {
	var icon string
	switch m.state[pkg] {
	case build.Running:
		icon = styleIconSpinner.Render(spinnerFrames[m.frame%len(spinnerFrames)])
	case build.Succeeded:
		icon = styleIconSuccess.Render(iconSuccess)
	case build.Failed:
		icon = styleIconError.Render(iconError)
	case build.Aborted:
		icon = styleIconWarning.Render(iconWarning)
	default:
		icon = StyleDim.Render("·")
	}

	line := icon + " " + StyleValue.Render(pkg)
	if n := m.mods[pkg]; n > 0 {
		line += StyleDim.Render(pluralModules(n))
	}
	return line
}

func pluralModules(n int) string {
	if n == 1 {
		return " (1 module)"
	}
	return fmt.Sprintf(" (%d modules)", n)
}
