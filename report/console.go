package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nerd-search/search"
)

// Styles for console output
var (
	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7aa2f7")).
			Bold(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bb9af7"))

	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1a1b26")).
			Background(lipgloss.Color("#e0af68")).
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

// styler applies a style or passes text through for plain output
type styler func(style lipgloss.Style, s string) string

func colored(style lipgloss.Style, s string) string { return style.Render(s) }

func plain(_ lipgloss.Style, s string) string { return s }

// Console writes the human-readable report. Quiet mode prints only the
// paths of files with at least one match.
func Console(w io.Writer, results []search.FileResult, opts Options) error {
	render := plain
	if opts.Color {
		render = colored
	}
	return writeReport(w, results, opts, render)
}

// Text writes the same report as Console without any terminal styling.
// Quiet mode is ignored; a saved report is always complete.
func Text(w io.Writer, results []search.FileResult, opts Options) error {
	opts.Quiet = false
	return writeReport(w, results, opts, plain)
}

// RenderFile returns the console rendering of a single file's result
func RenderFile(r search.FileResult, opts Options) string {
	var b strings.Builder
	render := plain
	if opts.Color {
		render = colored
	}
	writeFile(&b, r, opts, render)
	return b.String()
}

func writeReport(w io.Writer, results []search.FileResult, opts Options, render styler) error {
	ew := &errWriter{w: w}
	visible := Visible(results, opts)

	if opts.Quiet {
		for _, r := range visible {
			if r.HasMatches() {
				ew.printf("%s\n", r.Path)
			}
		}
		return ew.err
	}

	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	sep := render(separatorStyle, strings.Repeat("─", width))

	matched := 0
	for i, r := range visible {
		if i > 0 {
			ew.printf("%s\n", sep)
		}
		var b strings.Builder
		writeFile(&b, r, opts, render)
		ew.printf("%s", b.String())
		if r.HasMatches() {
			matched++
		}
	}
	if matched == 0 {
		if len(visible) > 0 {
			ew.printf("%s\n", sep)
		}
		ew.printf("%s\n", render(warningStyle, "No matching words found."))
	}
	return ew.err
}

func writeFile(b *strings.Builder, r search.FileResult, opts Options, render styler) {
	switch r.Status {
	case search.StatusUnreadable, search.StatusNoText:
		label := render(errorStyle, "["+statusLabel(r.Status)+"]")
		if r.Status == search.StatusNoText {
			label = render(warningStyle, "["+statusLabel(r.Status)+"]")
		}
		fmt.Fprintf(b, "%s %s", label, render(fileStyle, r.Path))
		if r.Error != "" {
			fmt.Fprintf(b, ": %s", r.Error)
		}
		b.WriteString("\n")
		return
	}

	fmt.Fprintf(b, "📄 %s\n", render(fileStyle, r.Path))
	if !r.HasMatches() {
		fmt.Fprintf(b, "   %s\n", render(contextStyle, "no matches"))
	}

	paged := paginated(r)
	for _, tc := range OrderedCounts(r, opts.Terms) {
		line := fmt.Sprintf("'%s': %d", tc.Term, tc.Count)
		if paged && tc.Count > 0 {
			line += " on page(s): " + joinInts(Pages(r, tc.Term))
		}
		fmt.Fprintf(b, "   %s\n", render(countStyle, line))
	}

	for _, m := range r.Matches {
		fmt.Fprintf(b, "   %s\n", render(locationStyle, Location(r, m)+" · "+m.Term))
		for _, c := range m.Before {
			fmt.Fprintf(b, "       %s\n", render(contextStyle, c))
		}
		var hl strings.Builder
		for _, seg := range Segments(m.Text, m.Spans) {
			if seg.Hit {
				hl.WriteString(render(highlightStyle, seg.Text))
			} else {
				hl.WriteString(seg.Text)
			}
		}
		fmt.Fprintf(b, "     > %s\n", hl.String())
		for _, c := range m.After {
			fmt.Fprintf(b, "       %s\n", render(contextStyle, c))
		}
	}
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

// errWriter keeps the first write error so rendering code stays linear
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
