// Package ui provides the terminal board: users, projects and tasks side by
// side with a command line underneath.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/projctl/internal/command"
	"github.com/steveyegge/projctl/internal/session"
	"github.com/steveyegge/projctl/internal/tracker"
	"github.com/steveyegge/projctl/internal/types"
)

// Run starts the board on the terminal and blocks until the user quits
func Run(ctx context.Context, sess *session.Session) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(NewModel(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type pane int

const (
	paneUsers pane = iota
	paneProjects
	paneTasks
	paneCount
)

// Model is the bubbletea model of the board
type Model struct {
	ctx  context.Context
	sess *session.Session

	focus   pane
	cursor  [paneCount]int
	grouped bool

	// project and epic currently shown in the tasks pane
	project string
	epic    string

	users    []tracker.UserRecord
	projects []tracker.ProjectRecord
	tasks    []tracker.TaskRecord
	groups   []tracker.StatusGroup

	editing bool
	input   []rune

	output   []string
	err      error
	showHelp bool

	width int
}

// NewModel builds a board over sess
func NewModel(ctx context.Context, sess *session.Session) *Model {
	m := &Model{ctx: ctx, sess: sess, focus: paneProjects, width: 100}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case ":":
		m.editing = true
		m.input = m.input[:0]
	case "tab":
		m.focus = (m.focus + 1) % paneCount
	case "shift+tab":
		m.focus = (m.focus + paneCount - 1) % paneCount
	case "up", "k":
		if m.cursor[m.focus] > 0 {
			m.cursor[m.focus]--
		}
	case "down", "j":
		if m.cursor[m.focus] < m.paneLen(m.focus)-1 {
			m.cursor[m.focus]++
		}
	case "enter":
		m.open()
	case "esc", "backspace":
		m.back()
	case "g":
		m.grouped = !m.grouped
		m.refresh()
	case "s":
		m.output, m.err = nil, m.sess.Save(m.ctx)
		if m.err == nil {
			m.output = []string{"Saved to " + m.sess.Describe()}
		}
	case "r":
		m.refresh()
	case "?", "h":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyEnter:
		m.editing = false
		m.execute(string(m.input))
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m *Model) execute(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	res, err := m.sess.Exec(m.ctx, line)
	m.output, m.err = res.Lines, err
	m.refresh()
}

// open selects the project or epic under the cursor
func (m *Model) open() {
	switch m.focus {
	case paneProjects:
		if i := m.cursor[paneProjects]; i < len(m.projects) {
			m.project, m.epic = m.projects[i].Name, ""
			m.cursor[paneTasks] = 0
			m.focus = paneTasks
			m.refresh()
		}
	case paneTasks:
		if m.epic != "" || m.grouped {
			return
		}
		if i := m.cursor[paneTasks]; i < len(m.tasks) && m.tasks[i].Level == types.LevelEpic {
			m.epic = m.tasks[i].Name
			m.cursor[paneTasks] = 0
			m.refresh()
		}
	}
}

func (m *Model) back() {
	if m.focus != paneTasks {
		return
	}
	if m.epic != "" {
		m.epic = ""
	} else {
		m.project = ""
		m.focus = paneProjects
	}
	m.cursor[paneTasks] = 0
	m.refresh()
}

func (m *Model) paneLen(p pane) int {
	switch p {
	case paneUsers:
		return len(m.users)
	case paneProjects:
		return len(m.projects)
	}
	return len(m.tasks)
}

// refresh reloads every pane from the session. A selected project or epic
// that no longer exists is dropped.
func (m *Model) refresh() {
	_ = m.sess.View(func(mgr *tracker.Manager) error {
		m.users = mgr.Users()
		m.projects = mgr.Projects()
		m.tasks, m.groups = nil, nil
		if m.project == "" {
			return nil
		}
		p, err := mgr.Project(m.project)
		if err != nil {
			m.project, m.epic = "", ""
			return nil
		}
		if m.epic != "" {
			e, err := p.Epic(m.epic)
			if err != nil {
				m.epic = ""
			} else {
				m.tasks, m.groups = e.Subtasks(), e.GroupedSubtasks()
				return nil
			}
		}
		m.tasks, m.groups = p.Tasks(), p.GroupedTasks()
		return nil
	})
	for p := pane(0); p < paneCount; p++ {
		if n := m.paneLen(p); m.cursor[p] >= n {
			m.cursor[p] = max(n-1, 0)
		}
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusStyle   = paneStyle.BorderForeground(lipgloss.Color("10"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	statusColors = map[string]lipgloss.Color{
		"Opened":         "7",
		"WorkInProgress": "11",
		"Completed":      "10",
	}
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("projctl board") + "  " + dimStyle.Render(m.sess.Describe()) + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	w := max(m.width/3-4, 16)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPane(paneUsers, "Users", m.userLines(), w),
		m.renderPane(paneProjects, "Projects", m.projectLines(), w),
		m.renderPane(paneTasks, m.tasksTitle(), m.taskLines(), w),
	))
	b.WriteString("\n")

	if m.editing {
		b.WriteString(promptStyle.Render(":") + string(m.input) + "█\n")
	} else if m.err != nil {
		b.WriteString(errorStyle.Render("Error. "+m.err.Error()) + "\n")
	} else {
		for _, l := range m.output {
			b.WriteString(l + "\n")
		}
	}
	b.WriteString(dimStyle.Render(": command | tab switch pane | enter open | esc back | g group | s save | ? help | q quit") + "\n")
	return b.String()
}

func (m *Model) renderPane(p pane, title string, lines []string, width int) string {
	style := paneStyle
	if m.focus == p && !m.editing {
		style = focusStyle
	}
	body := []string{headerStyle.Render(title)}
	for i, l := range lines {
		if m.focus == p && i == m.cursor[p] && !(p == paneTasks && m.grouped) {
			l = cursorStyle.Render(l)
		}
		body = append(body, l)
	}
	if len(lines) == 0 {
		body = append(body, dimStyle.Render("(empty)"))
	}
	return style.Width(width).Render(strings.Join(body, "\n"))
}

func (m *Model) userLines() []string {
	lines := make([]string, len(m.users))
	for i, u := range m.users {
		lines[i] = fmt.Sprintf("%d. %s", u.Index, u.Name)
	}
	return lines
}

func (m *Model) projectLines() []string {
	lines := make([]string, len(m.projects))
	for i, p := range m.projects {
		marker := " "
		if p.Name == m.project {
			marker = "*"
		}
		lines[i] = fmt.Sprintf("%s%d. %s %d/%d", marker, p.Index, p.Name, p.TaskCount, p.MaxTasks)
	}
	return lines
}

func (m *Model) tasksTitle() string {
	switch {
	case m.project == "":
		return "Tasks"
	case m.epic != "":
		return m.project + " / " + m.epic
	}
	return m.project
}

func (m *Model) taskLines() []string {
	if m.project == "" {
		return []string{dimStyle.Render("select a project")}
	}
	if m.grouped {
		var lines []string
		for _, g := range m.groups {
			lines = append(lines, statusStyle(g.Status.String()).Render(g.Status.Label()+":"))
			for _, t := range g.Tasks {
				lines = append(lines, fmt.Sprintf("  %d. %s [%s]", t.Index, t.Name, strings.Join(t.Executors, ",")))
			}
		}
		return lines
	}
	lines := make([]string, len(m.tasks))
	for i, t := range m.tasks {
		line := fmt.Sprintf("%d. %s (%s) [%s] %s", t.Index, t.Name, t.Level, strings.Join(t.Executors, ","),
			statusStyle(t.Status.String()).Render(t.Status.Label()))
		if t.Subtasks > 0 {
			line += fmt.Sprintf(" +%d", t.Subtasks)
		}
		lines[i] = line
	}
	return lines
}

func statusStyle(status string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(statusColors[status])
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  :            Enter a command (enter runs it, esc cancels)\n")
	b.WriteString("  tab          Switch pane\n")
	b.WriteString("  up/down, k/j Move cursor\n")
	b.WriteString("  enter        Open project or epic task\n")
	b.WriteString("  esc          Back\n")
	b.WriteString("  g            Toggle grouped by status\n")
	b.WriteString("  s            Save now\n")
	b.WriteString("  r            Refresh\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit (changes are saved on exit)\n\n")
	b.WriteString("Commands\n\n")
	for _, l := range command.Help() {
		b.WriteString("  " + l + "\n")
	}
}

// IsTTY returns true if w is a terminal
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
