package search

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherOrderIgnoresCompletionOrder(t *testing.T) {
	root := t.TempDir()
	const n = 8
	for i := 0; i < n; i++ {
		writeLines(t, root, fmt.Sprintf("f%02d.txt", i), "x")
	}

	opts := DefaultOptions()
	opts.Workers = n
	terms, err := CompileTerms([]string{"x"}, opts)
	require.NoError(t, err)

	d := NewDispatcher(opts)
	var finished []string
	var mu sync.Mutex
	d.process = func(path string, terms []*Term) FileResult {
		// Earlier paths sleep longer so they complete last
		var idx int
		fmt.Sscanf(filepath.Base(path), "f%02d.txt", &idx)
		time.Sleep(time.Duration(n-idx) * 10 * time.Millisecond)
		mu.Lock()
		finished = append(finished, filepath.Base(path))
		mu.Unlock()
		return ProcessFile(path, terms, opts, d.Registry)
	}

	results, summary, err := d.Run(context.Background(), root, terms)
	require.NoError(t, err)
	require.Len(t, results, n)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("f%02d.txt", i), filepath.Base(r.Path))
	}
	assert.NotEqual(t, "f00.txt", finished[0], "delays should invert completion order")
	assert.Equal(t, n, summary.Files)
	assert.Equal(t, n, summary.Matched)
}

func TestDispatcherEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeLines(t, root, "a.txt", "hello world", "TODO: fix", "world peace")
	writeLines(t, root, "b.txt", "nothing here")

	opts := DefaultOptions()
	terms, err := CompileTerms([]string{"world", "TODO"}, opts)
	require.NoError(t, err)

	results, summary, err := NewDispatcher(opts).Run(context.Background(), root, terms)
	require.NoError(t, err)
	require.Len(t, results, 2)

	a, b := results[0], results[1]
	assert.Equal(t, "a.txt", filepath.Base(a.Path))
	assert.Equal(t, StatusOK, a.Status)
	assert.Equal(t, map[string]int{"world": 2, "TODO": 1}, a.Counts)
	assert.Len(t, a.Matches, 3)

	assert.Equal(t, "b.txt", filepath.Base(b.Path))
	assert.Equal(t, StatusOK, b.Status)
	assert.Equal(t, map[string]int{"world": 0, "TODO": 0}, b.Counts)
	assert.Empty(t, b.Matches)

	assert.Equal(t, Summary{Files: 2, Matched: 1, Matches: 3, Elapsed: summary.Elapsed}, summary)
}

func TestDispatcherCorruptPDFAmongValid(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "1.pdf", buildPDF(textPage("invoice total")))
	writeFile(t, root, "2.pdf", corruptPDF)
	writeFile(t, root, "3.pdf", buildPDF(textPage("no match here")))
	writeFile(t, root, "4.pdf", buildPDF(blankPage))

	opts := DefaultOptions()
	terms, err := CompileTerms([]string{"invoice"}, opts)
	require.NoError(t, err)

	results, summary, err := NewDispatcher(opts).Run(context.Background(), root, terms)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, StatusOK, results[0].Status)
	assert.Equal(t, 1, results[0].Counts["invoice"])
	assert.Equal(t, StatusUnreadable, results[1].Status)
	assert.Equal(t, StatusOK, results[2].Status)
	assert.Equal(t, StatusNoText, results[3].Status)

	assert.Equal(t, 1, summary.Unreadable)
	assert.Equal(t, 1, summary.NoText)
	assert.Equal(t, 1, summary.Matched)
}

func TestDispatcherRecoversWorkerPanic(t *testing.T) {
	root := t.TempDir()
	writeLines(t, root, "a.txt", "x")
	writeLines(t, root, "b.txt", "x")

	opts := DefaultOptions()
	terms, err := CompileTerms([]string{"x"}, opts)
	require.NoError(t, err)

	d := NewDispatcher(opts)
	d.process = func(path string, terms []*Term) FileResult {
		if filepath.Base(path) == "a.txt" {
			panic(fmt.Errorf("bad state"))
		}
		return ProcessFile(path, terms, opts, d.Registry)
	}

	results, _, err := d.Run(context.Background(), root, terms)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, StatusUnreadable, results[0].Status)
	assert.Contains(t, results[0].Error, "bad state")
	assert.Equal(t, StatusOK, results[1].Status)
	assert.Equal(t, 1, results[1].Counts["x"])
}

func TestDispatcherCancellation(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 20; i++ {
		writeLines(t, root, fmt.Sprintf("f%02d.txt", i), "x")
	}

	opts := DefaultOptions()
	opts.Workers = 2
	terms, err := CompileTerms([]string{"x"}, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(opts)
	var calls atomic.Int32
	d.process = func(path string, terms []*Term) FileResult {
		if calls.Add(1) == 1 {
			cancel()
		}
		return ProcessFile(path, terms, opts, d.Registry)
	}

	results, _, err := d.Run(ctx, root, terms)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
	assert.Less(t, int(calls.Load()), 20)
}

func TestDispatcherProgress(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 5; i++ {
		writeLines(t, root, fmt.Sprintf("f%d.txt", i), "x")
	}

	opts := DefaultOptions()
	terms, err := CompileTerms([]string{"x"}, opts)
	require.NoError(t, err)

	var mu sync.Mutex
	var searched []int
	d := NewDispatcher(opts)
	d.OnProgress = func(stage string, processed, total int, path string) {
		if stage != StageSearch {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 5, total)
		searched = append(searched, processed)
	}

	_, _, err = d.Run(context.Background(), root, terms)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, searched)
}
