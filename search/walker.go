package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"nerd-search/config"
)

// excludeRule is one compiled exclusion pattern
type excludeRule struct {
	glob string
	re   *regexp.Regexp
}

func (r excludeRule) match(s string) bool {
	if r.re != nil {
		return r.re.MatchString(s)
	}
	ok, _ := path.Match(r.glob, s)
	return ok
}

// compileExcludes validates exclusion patterns. A "re:" prefix selects a
// regular expression; anything else is a glob.
func compileExcludes(patterns []string) ([]excludeRule, error) {
	rules := make([]excludeRule, 0, len(patterns))
	for _, p := range patterns {
		if strings.HasPrefix(p, "re:") {
			re, err := regexp.Compile(strings.TrimPrefix(p, "re:"))
			if err != nil {
				return nil, fmt.Errorf("%w %q: %v", ErrInvalidExclude, p, err)
			}
			rules = append(rules, excludeRule{re: re})
			continue
		}
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidExclude, p, err)
		}
		rules = append(rules, excludeRule{glob: p})
	}
	return rules, nil
}

// FileWalker discovers supported files below a root directory
type FileWalker struct {
	recursive bool
	excludes  []excludeRule
}

// NewFileWalker creates a walker from the run options, validating the
// exclusion patterns
func NewFileWalker(opts Options) (*FileWalker, error) {
	rules, err := compileExcludes(opts.Exclude)
	if err != nil {
		return nil, err
	}
	return &FileWalker{recursive: opts.Recursive, excludes: rules}, nil
}

// isExcluded tests the base name and the slash-separated relative path
func (fw *FileWalker) isExcluded(rel string) bool {
	base := path.Base(rel)
	for _, r := range fw.excludes {
		if r.match(base) || r.match(rel) {
			return true
		}
	}
	return false
}

// FindFiles returns every supported, non-excluded file below rootPath in
// lexicographic order. Unreadable entries are skipped.
func (fw *FileWalker) FindFiles(ctx context.Context, rootPath string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}

		// Check for cancellation
		if err := ctx.Err(); err != nil {
			return err
		}

		if p == rootPath {
			return nil
		}

		rel, rerr := filepath.Rel(rootPath, p)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		// Skip hidden and excluded directories
		if d.IsDir() {
			if !fw.recursive || config.ShouldSkipDirectory(d.Name()) || fw.isExcluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if config.IsSupported(p) && !fw.isExcluded(rel) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Enumerate resolves root into the ordered list of files to search. A
// single file is returned as is when its format is supported; exclusions
// only apply to directory walks.
func Enumerate(ctx context.Context, root string, opts Options) ([]string, error) {
	fw, err := NewFileWalker(opts)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return nil, err
	}

	if !info.IsDir() {
		if !config.IsSupported(root) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, root)
		}
		return []string{root}, nil
	}
	return fw.FindFiles(ctx, root)
}
