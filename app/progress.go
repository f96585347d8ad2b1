package app

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"nerd-search/search"
)

// minFiles is the smallest run that gets a progress line
const minFiles = 5

// progress draws a single self-overwriting status line on stderr. Updates
// arrive from worker goroutines.
type progress struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	drawn   bool
}

func newProgress(w io.Writer, enabled bool) *progress {
	return &progress{w: w, enabled: enabled}
}

// Update matches search.ProgressFunc
func (p *progress) Update(stage string, processed, total int, path string) {
	if !p.enabled || stage != search.StageSearch || total < minFiles {
		return
	}
	pct := processed * 100 / total

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r\033[K⏳ Searching... %d/%d (%d%%) %s", processed, total, pct, filepath.Base(path))
	p.drawn = true
}

// Done clears the progress line so the report starts on a clean row
func (p *progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprint(p.w, "\r\033[K")
		p.drawn = false
	}
}
