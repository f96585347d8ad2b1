package search

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"nerd-search/logging"
)

// ProgressFunc is an optional callback to report progress like: processed, total, path
type ProgressFunc func(stage string, processed, total int, path string)

// Progress stages
const (
	StageDiscover = "discover"
	StageSearch   = "search"
)

// Dispatcher fans files out to a bounded pool of workers and gathers their
// results in enumeration order
type Dispatcher struct {
	Options  Options
	Registry *ExtractorRegistry
	// OnProgress is called from worker goroutines and must be safe for
	// concurrent use
	OnProgress ProgressFunc
	Logger     *slog.Logger

	// process is swapped in tests to control per-file timing
	process func(path string, terms []*Term) FileResult
}

// NewDispatcher creates a dispatcher with an extractor registry matching
// the options' PDF engine
func NewDispatcher(opts Options) *Dispatcher {
	return &Dispatcher{
		Options:  opts,
		Registry: NewExtractorRegistry(opts.PDFEngine),
		Logger:   logging.WithComponent("dispatcher"),
	}
}

// workers returns the pool size, one per CPU unless configured
func (d *Dispatcher) workers(n int) int {
	w := d.Options.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if n > 0 && w > n {
		w = n
	}
	return max(w, 1)
}

// Run enumerates root and searches every file. Run-level errors (bad root,
// bad exclusion pattern, cancellation) return no results.
func (d *Dispatcher) Run(ctx context.Context, root string, terms []*Term) ([]FileResult, Summary, error) {
	d.report(StageDiscover, 0, 0, root)
	files, err := Enumerate(ctx, root, d.Options)
	if err != nil {
		return nil, Summary{}, err
	}
	d.logger().Debug("enumerated files", "root", root, "count", len(files))
	return d.RunFiles(ctx, files, terms)
}

// RunFiles searches an already enumerated file list. Results keep the
// order of files regardless of completion order.
func (d *Dispatcher) RunFiles(ctx context.Context, files []string, terms []*Term) ([]FileResult, Summary, error) {
	start := time.Now()
	results := make([]FileResult, len(files))

	if d.Registry == nil {
		d.Registry = NewExtractorRegistry(d.Options.PDFEngine)
	}
	process := d.process
	if process == nil {
		process = func(path string, terms []*Term) FileResult {
			return ProcessFile(path, terms, d.Options, d.Registry)
		}
	}

	var processed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers(len(files)))

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := safeProcess(process, path, terms)
			if res.Status != StatusOK {
				d.logger().Warn("file not searched", "path", path, "status", res.Status, "error", res.Error)
			}
			results[i] = res
			n := processed.Add(1)
			d.report(StageSearch, int(n), len(files), path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}

	summary := Summarize(results, time.Since(start))
	d.logger().Info("search complete",
		"files", summary.Files,
		"matched", summary.Matched,
		"unreadable", summary.Unreadable,
		"no_text", summary.NoText,
		"elapsed", summary.Elapsed)
	return results, summary, nil
}

// safeProcess turns a panic that escapes process into an unreadable result
func safeProcess(process func(string, []*Term) FileResult, path string, terms []*Term) (res FileResult) {
	defer func() {
		if r := recover(); r != nil {
			res = newResult(path, StatusUnreadable)
			res.Error = "worker failure"
			if err, ok := r.(error); ok {
				res.Error += ": " + err.Error()
			}
		}
	}()
	return process(path, terms)
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d *Dispatcher) report(stage string, processed, total int, path string) {
	if d.OnProgress != nil {
		d.OnProgress(stage, processed, total, path)
	}
}
