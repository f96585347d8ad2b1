package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nerd-search/report"
	"nerd-search/search"
)

func browserResults() []search.FileResult {
	hit := func(path string) search.FileResult {
		return search.FileResult{
			Path:   path,
			Status: search.StatusOK,
			Counts: map[string]int{"alpha": 1},
			Matches: []search.MatchRecord{
				{Term: "alpha", Page: 1, Line: 1, Text: "alpha beta", Spans: []search.Span{{Start: 0, End: 5}}},
			},
		}
	}
	return []search.FileResult{
		hit("/docs/one.txt"),
		{Path: "/docs/empty.txt", Status: search.StatusOK, Counts: map[string]int{"alpha": 0}, Matches: []search.MatchRecord{}},
		hit("/docs/two.txt"),
		{Path: "/docs/scan.pdf", Status: search.StatusNoText, Counts: map[string]int{}, Matches: []search.MatchRecord{}},
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m browser, msg tea.Msg) (browser, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	b, ok := next.(browser)
	require.True(t, ok)
	return b, cmd
}

func TestBrowserSkipsFilesWithoutMatches(t *testing.T) {
	m := newBrowser(browserResults(), search.Summary{Files: 4, Matched: 2}, report.Options{Terms: []string{"alpha"}})

	require.Len(t, m.files, 3)
	assert.Equal(t, "/docs/one.txt", m.files[0].Path)
	assert.Equal(t, "/docs/two.txt", m.files[1].Path)
	assert.Equal(t, "/docs/scan.pdf", m.files[2].Path)
}

func TestBrowserPaging(t *testing.T) {
	m := newBrowser(browserResults(), search.Summary{Files: 4, Matched: 2}, report.Options{Terms: []string{"alpha"}})
	assert.Equal(t, "Loading...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	require.True(t, m.ready)
	assert.Contains(t, m.View(), "one.txt")
	assert.Contains(t, m.View(), "file 1 of 3")

	m, _ = update(t, m, key("p"))
	assert.Equal(t, 0, m.index, "no page before the first")

	m, _ = update(t, m, key("n"))
	assert.Equal(t, 1, m.index)
	assert.Contains(t, m.View(), "two.txt")

	m, _ = update(t, m, key("n"))
	m, _ = update(t, m, key("n"))
	assert.Equal(t, 2, m.index, "no page after the last")
	assert.Contains(t, m.View(), "[no text]")

	m, _ = update(t, m, key("p"))
	assert.Equal(t, 1, m.index)
}

func TestBrowserScroll(t *testing.T) {
	long := search.FileResult{Path: "/docs/long.txt", Status: search.StatusOK, Counts: map[string]int{"alpha": 30}}
	for i := 1; i <= 30; i++ {
		long.Matches = append(long.Matches, search.MatchRecord{Term: "alpha", Page: 1, Line: i, Text: "alpha"})
	}
	m := newBrowser([]search.FileResult{long}, search.Summary{Files: 1, Matched: 1}, report.Options{Terms: []string{"alpha"}})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 12})

	m, _ = update(t, m, key("j"))
	m, _ = update(t, m, key("j"))
	assert.Equal(t, 2, m.viewport.YOffset)

	m, _ = update(t, m, key("k"))
	assert.Equal(t, 1, m.viewport.YOffset)

	m, _ = update(t, m, key("k"))
	m, _ = update(t, m, key("k"))
	assert.Equal(t, 0, m.viewport.YOffset)
}

func TestBrowserQuit(t *testing.T) {
	m := newBrowser(browserResults(), search.Summary{}, report.Options{})
	m, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestBrowserEmpty(t *testing.T) {
	m := newBrowser(nil, search.Summary{}, report.Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Contains(t, m.View(), "No matching words found.")
	assert.Contains(t, m.View(), "no files to show")

	m, _ = update(t, m, key("n"))
	assert.Equal(t, 0, m.index)
}
