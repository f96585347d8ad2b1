package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{
		"b.md",
		"a.txt",
		"skip.bin",
		"sub/c.txt",
		"sub/deeper/d.pdf",
		".hidden/e.txt",
		"drafts/f.txt",
	} {
		writeLines(t, root, name, "content")
	}
	return root
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestEnumerate(t *testing.T) {
	root := buildTree(t)

	tests := []struct {
		name      string
		recursive bool
		exclude   []string
		want      []string
	}{
		{"top level only", false, nil, []string{"a.txt", "b.md"}},
		{"recursive", true, nil, []string{"a.txt", "b.md", "drafts/f.txt", "sub/c.txt", "sub/deeper/d.pdf"}},
		{"glob on base name", true, []string{"*.md"}, []string{"a.txt", "drafts/f.txt", "sub/c.txt", "sub/deeper/d.pdf"}},
		{"glob on relative path", true, []string{"sub/*.txt"}, []string{"a.txt", "b.md", "drafts/f.txt", "sub/deeper/d.pdf"}},
		{"glob prunes directory", true, []string{"drafts"}, []string{"a.txt", "b.md", "sub/c.txt", "sub/deeper/d.pdf"}},
		{"regex", true, []string{`re:\.(pdf|md)$`}, []string{"a.txt", "drafts/f.txt", "sub/c.txt"}},
		{"regex on relative path", true, []string{`re:^sub/`}, []string{"a.txt", "b.md", "drafts/f.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Recursive = tt.recursive
			opts.Exclude = tt.exclude

			files, err := Enumerate(context.Background(), root, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, relPaths(t, root, files))
		})
	}
}

func TestEnumerateSingleFile(t *testing.T) {
	root := buildTree(t)
	opts := DefaultOptions()
	opts.Exclude = []string{"*.txt"}

	single := filepath.Join(root, "a.txt")
	files, err := Enumerate(context.Background(), single, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{single}, files, "a named file is not subject to exclusion")

	_, err = Enumerate(context.Background(), filepath.Join(root, "skip.bin"), opts)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestEnumerateErrors(t *testing.T) {
	root := buildTree(t)

	_, err := Enumerate(context.Background(), filepath.Join(root, "missing"), DefaultOptions())
	assert.ErrorIs(t, err, ErrPathNotFound)

	for _, pattern := range []string{"[", "re:("} {
		opts := DefaultOptions()
		opts.Exclude = []string{pattern}
		_, err = Enumerate(context.Background(), root, opts)
		assert.ErrorIs(t, err, ErrInvalidExclude, pattern)
	}
}

func TestEnumerateCancelled(t *testing.T) {
	root := buildTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Enumerate(ctx, root, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnumerateEmptyDirectory(t *testing.T) {
	files, err := Enumerate(context.Background(), t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, files)
}
