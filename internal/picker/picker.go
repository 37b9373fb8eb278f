// Package picker is a terminal list for choosing one search result.
package picker

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/pixmark/internal/clipboard"
	"github.com/example/pixmark/internal/gallery"
)

// ErrCancelled is returned when the user leaves without choosing.
var ErrCancelled = errors.New("selection cancelled")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	rowStyle      = lipgloss.NewStyle()
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))
)

// Model is the bubbletea model of the picker.
type Model struct {
	title   string
	records []gallery.ImageRecord
	cursor  int
	offset  int
	height  int
	width   int

	chosen    int
	cancelled bool
	status    string
	statusErr bool

	copyText func(string) error
}

// Option configures a Model.
type Option func(*Model)

// WithTitle sets the heading line.
func WithTitle(title string) Option { return func(m *Model) { m.title = title } }

// WithCopy replaces the clipboard writer used by the y key.
func WithCopy(fn func(string) error) Option { return func(m *Model) { m.copyText = fn } }

// New returns a picker over records.
func New(records []gallery.ImageRecord, opts ...Option) Model {
	m := Model{
		title:    "Select an image",
		records:  records,
		chosen:   -1,
		height:   20,
		copyText: clipboard.WriteText,
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-4, 1)
		m.scroll()
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(len(m.records)-1, 0)
		case "enter":
			if len(m.records) > 0 {
				m.chosen = m.cursor
				return m, tea.Quit
			}
		case "y":
			m.copyCurrent()
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
		m.scroll()
	}
	return m, nil
}

func (m *Model) copyCurrent() {
	if len(m.records) == 0 {
		return
	}
	url := m.records[m.cursor].SourceURL()
	if err := m.copyText(url); err != nil {
		m.status, m.statusErr = fmt.Sprintf("copy failed: %v", err), true
		return
	}
	m.status, m.statusErr = "copied "+url, false
}

func (m *Model) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	if len(m.records) == 0 {
		b.WriteString(dimStyle.Render("no results"))
		b.WriteString("\n")
	}
	end := min(m.offset+m.height, len(m.records))
	for i := m.offset; i < end; i++ {
		line := Row(m.records[i])
		if m.width > 4 && lipgloss.Width(line) > m.width-2 {
			line = truncate(line, m.width-2)
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "))
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString("  ")
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("↑/↓ move • enter choose • y copy url • q quit"))
	return b.String()
}

// Row formats one record as a single line.
func Row(r gallery.ImageRecord) string {
	return fmt.Sprintf("%-10d %5dx%-5d %-16s %s", r.ID, r.Width, r.Height, r.User, r.Tags)
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:max(n-1, 0)]) + "…"
}

// Chosen returns the selected record once the program has finished.
func (m Model) Chosen() (gallery.ImageRecord, error) {
	if m.cancelled || m.chosen < 0 || m.chosen >= len(m.records) {
		return gallery.ImageRecord{}, ErrCancelled
	}
	return m.records[m.chosen], nil
}

// Run shows the picker on the terminal and returns the chosen record. The UI
// is drawn on out so stdout stays clean for the result.
func Run(records []gallery.ImageRecord, out io.Writer, opts ...Option) (gallery.ImageRecord, error) {
	if out == nil {
		out = os.Stderr
	}
	p := tea.NewProgram(New(records, opts...), tea.WithAltScreen(), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return gallery.ImageRecord{}, fmt.Errorf("picker: %w", err)
	}
	return final.(Model).Chosen()
}
