package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nerd-search/report"
	"nerd-search/search"
)

// Styles (shared with CLI usage and summary output)
var (
	subHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a9b1d6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

// browser pages through files that matched or could not be searched, one
// file per screen
type browser struct {
	files   []search.FileResult
	opts    report.Options
	summary search.Summary
	index   int

	viewport viewport.Model
	ready    bool
	width    int
	height   int
	quitting bool
}

func newBrowser(results []search.FileResult, summary search.Summary, opts report.Options) browser {
	opts.Quiet = false
	opts.FilterNoResults = true
	return browser{
		files:   report.Visible(results, opts),
		opts:    opts,
		summary: summary,
	}
}

// browse runs the interactive viewer until the user quits
func browse(ctx context.Context, results []search.FileResult, summary search.Summary, opts report.Options) error {
	p := tea.NewProgram(newBrowser(results, summary, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("interactive viewer: %w", err)
	}
	return nil
}

func (m browser) Init() tea.Cmd {
	return nil
}

func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := max(msg.Height-lipgloss.Height(m.header())-1, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, bodyHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = bodyHeight
		}
		m.viewport.SetContent(m.content())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "n", "right":
			if m.index < len(m.files)-1 {
				m.index++
				m.refresh()
			}
			return m, nil
		case "p", "left":
			if m.index > 0 {
				m.index--
				m.refresh()
			}
			return m, nil
		case "j", "down":
			if m.ready {
				m.viewport.SetYOffset(m.viewport.YOffset + 1)
			}
			return m, nil
		case "k", "up":
			if m.ready {
				m.viewport.SetYOffset(m.viewport.YOffset - 1)
			}
			return m, nil
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *browser) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.content())
	m.viewport.GotoTop()
}

// content is the console rendering of the current file
func (m browser) content() string {
	if len(m.files) == 0 {
		return warningStyle.Render("No matching words found.")
	}
	return report.RenderFile(m.files[m.index], m.opts)
}

func (m browser) header() string {
	var lines []string

	var terms []string
	for _, t := range m.opts.Terms {
		terms = append(terms, fmt.Sprintf("%q", t))
	}
	lines = append(lines, subHeaderStyle.Render("🔍 Searching: "+strings.Join(terms, " ")))

	position := "no files to show"
	if len(m.files) > 0 {
		position = fmt.Sprintf("file %d of %d", m.index+1, len(m.files))
	}
	lines = append(lines, successStyle.Render(fmt.Sprintf("📋 Matched: %d of %d files • %s", m.summary.Matched, m.summary.Files, position)))

	width := m.width
	if width <= 0 {
		width = 80
	}
	lines = append(lines, separatorStyle.Render(strings.Repeat("─", width)))
	return strings.Join(lines, "\n")
}

func (m browser) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	footer := infoStyle.Render(fmt.Sprintf("n/p file • j/k scroll • q quit  %3.f%%", m.viewport.ScrollPercent()*100))
	return m.header() + "\n" + m.viewport.View() + "\n" + footer
}

// wrapTextWithIndent wraps text to width and aligns continuation lines
// under the end of prefix
func wrapTextWithIndent(prefix, text string, width int) string {
	prefixWidth := lipgloss.Width(prefix)
	indent := strings.Repeat(" ", prefixWidth)
	wrapped := lipgloss.NewStyle().Width(width - prefixWidth).Render(text)
	return prefix + strings.ReplaceAll(wrapped, "\n", "\n"+indent)
}
