package search

import (
	"fmt"
)

// ProcessFile extracts path once and matches every line against every term.
// It never fails: extraction problems and panics become the file's status.
func ProcessFile(path string, terms []*Term, opts Options, reg *ExtractorRegistry) (result FileResult) {
	result = newResult(path, StatusOK)

	defer func() {
		if r := recover(); r != nil {
			result = newResult(path, StatusUnreadable)
			result.Error = fmt.Sprintf("worker failure: %v", r)
		}
	}()

	lines, status, err := reg.Extract(path)
	if status != StatusOK {
		result.Status = status
		if err != nil {
			result.Error = err.Error()
		}
		return result
	}

	for _, t := range terms {
		result.Counts[t.Text] = 0
	}
	if matches := MatchLines(lines, terms, opts.ContextLines); matches != nil {
		result.Matches = matches
	}
	for _, m := range result.Matches {
		result.Counts[m.Term]++
	}
	return result
}

func newResult(path string, status Status) FileResult {
	return FileResult{
		Path:    path,
		Status:  status,
		Matches: []MatchRecord{},
		Counts:  map[string]int{},
	}
}

// MatchLines produces match records in line order, then term input order.
// Context never crosses a page boundary.
func MatchLines(lines []SourceLine, terms []*Term, contextLines int) []MatchRecord {
	var matches []MatchRecord
	for i, line := range lines {
		for _, t := range terms {
			out := t.Match(line.Text)
			if !out.Matched {
				continue
			}
			before, after := contextFor(lines, i, contextLines)
			matches = append(matches, MatchRecord{
				Term:   t.Text,
				Page:   line.Page,
				Line:   line.Line,
				Text:   line.Text,
				Before: before,
				After:  after,
				Spans:  out.Spans,
				Score:  out.Score,
			})
		}
	}
	return matches
}

// contextFor returns up to n lines either side of lines[i] on the same page
func contextFor(lines []SourceLine, i, n int) (before, after []string) {
	before = []string{}
	after = []string{}
	if n <= 0 {
		return before, after
	}
	page := lines[i].Page

	start := i
	for start > 0 && i-start < n && lines[start-1].Page == page {
		start--
	}
	for j := start; j < i; j++ {
		before = append(before, lines[j].Text)
	}

	for j := i + 1; j < len(lines) && j-i <= n && lines[j].Page == page; j++ {
		after = append(after, lines[j].Text)
	}
	return before, after
}
