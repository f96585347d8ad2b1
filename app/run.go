package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/term"

	"nerd-search/logging"
	"nerd-search/report"
	"nerd-search/search"
)

// renderFunc is the signature shared by the report writers
type renderFunc func(io.Writer, []search.FileResult, report.Options) error

// runSearch performs one complete run: compile terms, search, then report.
// Nothing is written when the context is cancelled.
func runSearch(ctx context.Context, f *cliFlags, root string, words []string, stdout, stderr io.Writer) error {
	runID := uuid.NewString()
	logger := logging.Setup(f.logLevel, f.logFormat, stderr).With("run_id", runID)
	if f.defaultsFrom != "" {
		logger.Debug("loaded defaults", "path", f.defaultsFrom)
	}

	opts := f.searchOptions()
	terms, err := search.CompileTerms(words, opts)
	if err != nil {
		return err
	}
	root = filepath.Clean(root)

	prog := newProgress(stderr, !f.quiet && !f.interactive && isTerminal(stderr))
	d := search.NewDispatcher(opts)
	d.Logger = logger.With("component", "dispatcher")
	d.OnProgress = prog.Update

	logger.Info("search started",
		"root", root,
		"terms", len(terms),
		"mode", opts.Mode().String(),
		"recursive", opts.Recursive)
	results, summary, err := d.Run(ctx, root, terms)
	prog.Done()
	if err != nil {
		return err
	}

	ropts := report.Options{
		Quiet:           f.quiet,
		FilterNoResults: f.filterNoResults,
		BaseURL:         f.baseURL,
		Root:            root,
		Color:           !f.noColor && isTerminal(stdout),
		Terms:           search.TermTexts(terms),
		Width:           terminalWidth(stdout),
		RunID:           runID,
		Elapsed:         summary.Elapsed,
	}

	if f.interactive {
		if err := browse(ctx, results, summary, ropts); err != nil {
			return err
		}
	} else if err := report.Console(stdout, results, ropts); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	outputs := []struct {
		path   string
		render renderFunc
	}{
		{f.output, report.Text},
		{f.htmlPath, report.HTML},
		{f.jsonPath, report.JSON},
	}
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := writeReportFile(out.path, out.render, results, ropts); err != nil {
			return err
		}
		logger.Info("report written", "path", out.path)
	}

	if !f.quiet {
		printSummary(stderr, summary, !f.noColor && isTerminal(stderr))
	}
	return nil
}

func writeReportFile(path string, render renderFunc, results []search.FileResult, opts report.Options) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report %s: %w", path, cerr)
		}
	}()
	if err := render(file, results, opts); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// printSummary writes the one-line run summary
func printSummary(w io.Writer, s search.Summary, color bool) {
	parts := []string{
		fmt.Sprintf("Searched %s files in %s", humanize.Comma(int64(s.Files)), s.Elapsed.Round(time.Millisecond)),
		fmt.Sprintf("%s matched", humanize.Comma(int64(s.Matched))),
		fmt.Sprintf("%s matches", humanize.Comma(int64(s.Matches))),
	}
	if s.Unreadable > 0 {
		parts = append(parts, fmt.Sprintf("%d unreadable", s.Unreadable))
	}
	if s.NoText > 0 {
		parts = append(parts, fmt.Sprintf("%d without text", s.NoText))
	}
	if rss := peakRSS(); rss > 0 {
		parts = append(parts, "peak RSS "+humanize.Bytes(rss))
	}
	line := "✓ " + strings.Join(parts, " • ")
	if color {
		line = successStyle.Render(line)
	}
	fmt.Fprintln(w, line)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the separator width for w, defaulting to 80 when
// it is not a terminal
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return min(width, 120)
}
