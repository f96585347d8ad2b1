// Package report renders search results as console output, plain text,
// HTML and JSON.
package report

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"nerd-search/search"
)

// Options controls what every renderer shows
type Options struct {
	// Quiet prints only the paths of files with at least one match (console only)
	Quiet bool
	// FilterNoResults drops searched files that had zero matches
	FilterNoResults bool
	// BaseURL, when set, links each file in HTML output to BaseURL + relative path
	BaseURL string
	// Root is the search root used to compute relative paths
	Root string
	// Color enables ANSI styling in console output
	Color bool
	// Terms in input order, used to order per-term counts
	Terms []string
	// Width of separators in console output
	Width int

	RunID   string
	Elapsed time.Duration
}

const defaultWidth = 60

// Visible applies FilterNoResults. Unreadable and no-text files are always
// kept so problems are never hidden.
func Visible(results []search.FileResult, opts Options) []search.FileResult {
	if !opts.FilterNoResults {
		return results
	}
	out := make([]search.FileResult, 0, len(results))
	for _, r := range results {
		if r.Status == search.StatusOK && !r.HasMatches() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RelativePath returns path relative to root using forward slashes. When
// root is the file itself the base name is used.
func RelativePath(path, root string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// Link returns the hyperlink target for path, or "" without a base URL
func Link(path string, opts Options) string {
	if opts.BaseURL == "" {
		return ""
	}
	return opts.BaseURL + RelativePath(path, opts.Root)
}

// TermCount is one entry of a file's per-term counts
type TermCount struct {
	Term  string
	Count int
}

// OrderedCounts lists counts in term input order. Terms missing from the
// options are appended alphabetically.
func OrderedCounts(r search.FileResult, terms []string) []TermCount {
	out := make([]TermCount, 0, len(r.Counts))
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		if c, ok := r.Counts[t]; ok {
			out = append(out, TermCount{Term: t, Count: c})
		}
	}
	var rest []string
	for t := range r.Counts {
		if !seen[t] {
			rest = append(rest, t)
		}
	}
	sort.Strings(rest)
	for _, t := range rest {
		out = append(out, TermCount{Term: t, Count: r.Counts[t]})
	}
	return out
}

// Pages returns the distinct pages a term matched on, ascending
func Pages(r search.FileResult, term string) []int {
	var pages []int
	seen := map[int]bool{}
	for _, m := range r.Matches {
		if m.Term == term && !seen[m.Page] {
			seen[m.Page] = true
			pages = append(pages, m.Page)
		}
	}
	sort.Ints(pages)
	return pages
}

// paginated reports whether page numbers are meaningful for the file
func paginated(r search.FileResult) bool {
	switch strings.ToLower(filepath.Ext(r.Path)) {
	case ".pdf", ".mbox":
		return true
	}
	for _, m := range r.Matches {
		if m.Page > 1 {
			return true
		}
	}
	return false
}

// Location formats a match position as "line N" or "page P, line N"
func Location(r search.FileResult, m search.MatchRecord) string {
	if paginated(r) {
		return "page " + strconv.Itoa(m.Page) + ", line " + strconv.Itoa(m.Line)
	}
	return "line " + strconv.Itoa(m.Line)
}

// Segment is a run of line text that is either highlighted or not
type Segment struct {
	Text string
	Hit  bool
}

// Segments splits text by the highlight spans. Spans are sorted, clamped
// to the text and merged where they overlap.
func Segments(text string, spans []search.Span) []Segment {
	if len(spans) == 0 {
		return []Segment{{Text: text}}
	}
	sorted := make([]search.Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 {
			s.Start = 0
		}
		if s.End > len(text) {
			s.End = len(text)
		}
		if s.End > s.Start {
			sorted = append(sorted, s)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var segs []Segment
	pos := 0
	for i := 0; i < len(sorted); i++ {
		s := sorted[i]
		for i+1 < len(sorted) && sorted[i+1].Start <= s.End {
			if sorted[i+1].End > s.End {
				s.End = sorted[i+1].End
			}
			i++
		}
		if s.Start < pos {
			s.Start = pos
		}
		if s.Start > pos {
			segs = append(segs, Segment{Text: text[pos:s.Start]})
		}
		if s.End > s.Start {
			segs = append(segs, Segment{Text: text[s.Start:s.End], Hit: true})
			pos = s.End
		}
	}
	if pos < len(text) {
		segs = append(segs, Segment{Text: text[pos:]})
	}
	return segs
}

func statusLabel(s search.Status) string {
	switch s {
	case search.StatusUnreadable:
		return "unreadable"
	case search.StatusNoText:
		return "no text"
	default:
		return string(s)
	}
}
