package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"snafu-upgrade/internal/buildpipeline"
)

type progressModel struct {
	title      string
	events     <-chan buildpipeline.Event
	spinner    spinner.Model
	prog       progress.Model
	cycle      int
	stageLabel string
	messages   int
	anchors    int
	items      []fileItem
	index      map[string]int
	failed     error
	width      int
	done       bool
	// interrupted is set when the user quit before the run finished.
	interrupted bool
}

type fileItem struct {
	path    string
	status  string
	applied int
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders fix-up progress.
// Files appear as the patch stage reaches them; the list is reset per cycle.
func NewProgressModel(title string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int),
		width:   80,
	}
}

// Interrupted reports whether the user quit the view before the run ended.
func Interrupted(m tea.Model) bool {
	pm, ok := m.(*progressModel)
	return ok && pm.interrupted
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(buildpipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if m.cycle == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s: cycle %d", m.title, m.cycle)
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %d messages, %d anchors\n\n", m.messages, m.anchors)

	statusWidth := 12
	nameWidth := m.width - statusWidth - 10
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := truncate(item.path, nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		line := fmt.Sprintf("  %s %s", statusStyled, name)
		if item.applied > 0 {
			line = fmt.Sprintf("%s (+%d)", line, item.applied)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.failed != nil {
		b.WriteString(styleStatus("error").Render("  " + m.failed.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.Cycle != m.cycle {
		m.cycle = ev.Cycle
		m.messages, m.anchors = 0, 0
		m.items = m.items[:0]
		m.index = make(map[string]int)
	}
	if ev.File != "" {
		m.applyFileEvent(ev)
		return nil
	}

	m.stageLabel = statusLabel(ev.Stage, ev.Status)
	if ev.Status == buildpipeline.StatusDone {
		switch ev.Stage {
		case buildpipeline.StageParse:
			m.messages = ev.Count
		case buildpipeline.StageClassify:
			m.anchors = ev.Count
		}
	}
	if ev.Status == buildpipeline.StatusError {
		m.failed = ev.Err
	}
	return m.prog.SetPercent(progressFromStage(ev.Stage, ev.Status))
}

func (m *progressModel) applyFileEvent(ev buildpipeline.Event) {
	idx, ok := m.index[ev.File]
	if !ok {
		idx = len(m.items)
		m.items = append(m.items, fileItem{path: ev.File})
		m.index[ev.File] = idx
	}
	if label := statusLabel(ev.Stage, ev.Status); label != "" {
		m.items[idx].status = label
	}
	if ev.Status == buildpipeline.StatusDone {
		m.items[idx].applied = ev.Count
	}
}

// progressFromStage maps a stage to its share of one cycle.
func progressFromStage(stage buildpipeline.Stage, status buildpipeline.Status) float64 {
	pos := 0
	for i, s := range buildpipeline.Stages {
		if s == stage {
			pos = i
			break
		}
	}
	if status == buildpipeline.StatusDone || status == buildpipeline.StatusError {
		pos++
	}
	return float64(pos) / float64(len(buildpipeline.Stages))
}

func statusLabel(stage buildpipeline.Stage, status buildpipeline.Status) string {
	switch status {
	case buildpipeline.StatusQueued:
		return "queued"
	case buildpipeline.StatusDone:
		return "done"
	case buildpipeline.StatusError:
		return "error"
	case buildpipeline.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage buildpipeline.Stage) string {
	switch stage {
	case buildpipeline.StageCheck:
		return "checking"
	case buildpipeline.StageParse:
		return "parsing"
	case buildpipeline.StageClassify:
		return "classifying"
	case buildpipeline.StagePatch:
		return "patching"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "checking", "parsing", "classifying", "patching":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
