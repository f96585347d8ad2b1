package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"notes.txt", KindText},
		{"README.MD", KindText},
		{"page.html", KindMarkup},
		{"report.pdf", KindPDF},
		{"Report.PDF", KindPDF},
		{"letter.docx", KindWord},
		{"letter.odt", KindWord},
		{"legacy.doc", KindWord},
		{"inbox.mbox", KindMail},
		{"message.eml", KindMail},
		{"outlook.msg", KindMail},
		{"image.png", KindUnsupported},
		{"Makefile", KindUnsupported},
		{"archive.tar.gz", KindUnsupported},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.name))
		})
	}
}

func TestShouldSkipDirectory(t *testing.T) {
	assert.True(t, ShouldSkipDirectory(".git"))
	assert.True(t, ShouldSkipDirectory(".cache"))
	assert.False(t, ShouldSkipDirectory("docs"))
	assert.False(t, ShouldSkipDirectory("."))
}

func TestLoadDefaults(t *testing.T) {
	t.Run("missing file yields empty defaults", func(t *testing.T) {
		d, err := LoadDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Nil(t, d.FuzzyThreshold)
		assert.Empty(t, d.Path())
	})

	t.Run("reads values", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "config.yaml")
		content := "fuzzy_threshold: 70\nrecursive: true\nexclude:\n  - \"*.log\"\n  - \"re:^draft\"\npdf_engine: pdfcpu\n"
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

		d, err := LoadDefaults(p)
		require.NoError(t, err)
		require.NotNil(t, d.FuzzyThreshold)
		assert.Equal(t, 70, *d.FuzzyThreshold)
		require.NotNil(t, d.Recursive)
		assert.True(t, *d.Recursive)
		assert.Equal(t, []string{"*.log", "re:^draft"}, d.Exclude)
		assert.Equal(t, "pdfcpu", d.PDFEngine)
		assert.Equal(t, p, d.Path())
	})

	t.Run("rejects out of range threshold", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(p, []byte("fuzzy_threshold: 101\n"), 0o644))

		_, err := LoadDefaults(p)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(p, []byte("workers: [1, 2\n"), 0o644))

		_, err := LoadDefaults(p)
		assert.Error(t, err)
	})
}
