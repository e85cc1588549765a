// Package review is the interactive approval screen shown before a plan is
// applied.
package review

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevanw/episodic/internal/plan"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	plannedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	skippedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	conflictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	arrowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Approve key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k")),
		Down:    key.NewBinding(key.WithKeys("down", "j")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x")),
		Approve: key.NewBinding(key.WithKeys("enter", "a")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
	}
}

// Model is the bubbletea model for plan review.
type Model struct {
	plan     *plan.Plan
	keys     keyMap
	cursor   int
	offset   int
	height   int
	approved bool
	done     bool
}

// NewModel wraps a plan for review. The plan is edited in place.
func NewModel(p *plan.Plan) *Model {
	return &Model{
		plan:   p,
		keys:   defaultKeyMap(),
		height: 20,
	}
}

// Approved reports whether the user accepted the plan.
func (m *Model) Approved() bool { return m.approved }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Rows available after header and footer chrome.
		m.height = msg.Height - 6
		if m.height < 3 {
			m.height = 3
		}
		m.clampScroll()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.approved = false
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			m.clampScroll()

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.plan.Items)-1 {
				m.cursor++
			}
			m.clampScroll()

		case key.Matches(msg, m.keys.Toggle):
			m.toggle()

		case key.Matches(msg, m.keys.Approve):
			if m.canApprove() {
				m.approved = true
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// toggle flips the item under the cursor between planned and skipped.
// Conflict items can only be skipped; revalidation decides whether their
// counterpart clears.
func (m *Model) toggle() {
	if len(m.plan.Items) == 0 {
		return
	}
	it := &m.plan.Items[m.cursor]
	switch it.Status {
	case plan.StatusPlanned, plan.StatusConflict:
		it.Status = plan.StatusSkipped
		it.Reason = plan.ReasonManual
	case plan.StatusSkipped:
		if it.Reason != plan.ReasonManual {
			// Items the builder skipped stay skipped.
			return
		}
		it.Status = plan.StatusPlanned
		it.Reason = ""
	}
	m.plan.Revalidate()
}

func (m *Model) canApprove() bool {
	for _, it := range m.plan.Items {
		if it.Status == plan.StatusConflict {
			return false
		}
	}
	return m.plan.Pending() > 0
}

func (m *Model) clampScroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m *Model) View() string {
	if m.done {
		return ""
	}

	var sb strings.Builder
	title := "Review rename plan"
	if m.plan.Show != "" {
		title += ": " + m.plan.Show
	}
	sb.WriteString(titleStyle.Render(title) + "\n\n")

	end := m.offset + m.height
	if end > len(m.plan.Items) {
		end = len(m.plan.Items)
	}
	for i := m.offset; i < end; i++ {
		sb.WriteString(m.renderItem(i) + "\n")
	}
	if len(m.plan.Items) == 0 {
		sb.WriteString(mutedStyle.Render("nothing to rename") + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%d to rename", m.plan.Pending()))
	if !m.canApprove() {
		sb.WriteString(mutedStyle.Render("  (resolve conflicts or skip them to approve)"))
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("space toggle  enter approve  q abort"))
	return sb.String()
}

func (m *Model) renderItem(i int) string {
	it := m.plan.Items[i]

	cursor := "  "
	if i == m.cursor {
		cursor = cursorStyle.Render("> ")
	}

	var mark string
	switch it.Status {
	case plan.StatusPlanned:
		mark = plannedStyle.Render("[x]")
	case plan.StatusConflict:
		mark = conflictStyle.Render("[!]")
	default:
		mark = skippedStyle.Render("[ ]")
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		cursor, mark,
		filepath.Base(it.SourcePath),
		arrowStyle.Render("->"),
		filepath.Base(it.DestPath),
	)
	if it.Reason != "" {
		line += " " + mutedStyle.Render("("+it.Reason+")")
	}
	return line
}

// Run opens the review screen and blocks until the user approves or aborts.
// The plan is edited in place; it returns whether execution was approved.
func Run(p *plan.Plan) (bool, error) {
	m := NewModel(p)
	prog := tea.NewProgram(m)
	if _, err := prog.Run(); err != nil {
		return false, fmt.Errorf("review screen: %w", err)
	}
	return m.approved, nil
}
