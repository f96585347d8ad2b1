package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"nerd-search/search"
)

// Report is the JSON document written by --json
type Report struct {
	RunID     string              `json:"run_id,omitempty"`
	Generated time.Time           `json:"generated"`
	Terms     []string            `json:"terms"`
	Summary   search.Summary      `json:"summary"`
	Files     []search.FileResult `json:"files"`
}

// NewReport assembles the JSON document for a finished run. The summary
// covers every searched file; Files honours FilterNoResults.
func NewReport(results []search.FileResult, opts Options) Report {
	files := Visible(results, opts)
	if files == nil {
		files = []search.FileResult{}
	}
	terms := opts.Terms
	if terms == nil {
		terms = []string{}
	}
	return Report{
		RunID:     opts.RunID,
		Generated: time.Now().UTC(),
		Terms:     terms,
		Summary:   search.Summarize(results, opts.Elapsed),
		Files:     files,
	}
}

// JSON writes the report as indented JSON
func JSON(w io.Writer, results []search.FileResult, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReport(results, opts))
}

// DecodeJSON reads a report written by JSON
func DecodeJSON(r io.Reader) (*Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &rep, nil
}
