package search

import "time"

// Status is the terminal outcome of processing one file
type Status string

const (
	StatusOK         Status = "ok"
	StatusUnreadable Status = "unreadable"
	StatusNoText     Status = "no_text"
)

// SourceLine is one line of extracted document text. Page is 1 for formats
// without pagination.
type SourceLine struct {
	Page int
	Line int
	Text string
}

// Span is a half-open byte range [Start, End) within a line
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// MatchRecord describes one line that matched one term
type MatchRecord struct {
	Term   string   `json:"term"`
	Page   int      `json:"page"`
	Line   int      `json:"line"`
	Text   string   `json:"text"`
	Before []string `json:"context_before"`
	After  []string `json:"context_after"`
	Spans  []Span   `json:"spans,omitempty"`
	// Score is the fuzzy similarity (0-100); zero for exact modes.
	Score int `json:"score,omitempty"`
}

// FileResult is the outcome for a single file. Matches are ordered by
// page, line and then term input order.
type FileResult struct {
	Path    string         `json:"path"`
	Status  Status         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Matches []MatchRecord  `json:"matches"`
	Counts  map[string]int `json:"counts"`
}

// HasMatches reports whether any term matched in the file
func (r FileResult) HasMatches() bool {
	return len(r.Matches) > 0
}

// TotalMatches returns the number of match records across all terms
func (r FileResult) TotalMatches() int {
	return len(r.Matches)
}

// Summary aggregates a finished run
type Summary struct {
	Files      int           `json:"files"`
	Matched    int           `json:"matched"`
	Unreadable int           `json:"unreadable"`
	NoText     int           `json:"no_text"`
	Matches    int           `json:"matches"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Summarize counts statuses and matches across results
func Summarize(results []FileResult, elapsed time.Duration) Summary {
	s := Summary{Files: len(results), Elapsed: elapsed}
	for _, r := range results {
		switch r.Status {
		case StatusUnreadable:
			s.Unreadable++
		case StatusNoText:
			s.NoText++
		}
		if r.HasMatches() {
			s.Matched++
		}
		s.Matches += r.TotalMatches()
	}
	return s
}
