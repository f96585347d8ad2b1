package search

import (
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"nerd-search/config"
)

// Page is the text of one document page split into lines
type Page struct {
	Number int
	Lines  []string
}

// Extractor defines the interface for turning a document into text
type Extractor interface {
	// Extract reads the file at path and returns its pages in document order
	Extract(path string) ([]Page, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface
type ExtractorFunc func(path string) ([]Page, error)

// Extract calls f(path)
func (f ExtractorFunc) Extract(path string) ([]Page, error) {
	return f(path)
}

// ExtractorRegistry holds extractors for different file types
type ExtractorRegistry struct {
	extractors map[string]Extractor
}

// NewExtractorRegistry creates a new registry with built-in extractors.
// pdfEngine selects the PDF backend; "" picks the default.
func NewExtractorRegistry(pdfEngine string) *ExtractorRegistry {
	reg := &ExtractorRegistry{
		extractors: make(map[string]Extractor),
	}
	reg.registerBuiltIns(pdfEngine)
	return reg
}

// registerBuiltIns registers the built-in extractors for supported formats
func (r *ExtractorRegistry) registerBuiltIns(pdfEngine string) {
	for _, ext := range config.TextTypes {
		r.extractors[ext] = &TextExtractor{}
	}
	for _, ext := range config.MarkupTypes {
		r.extractors[ext] = &MarkupExtractor{}
	}

	// Word-processor formats
	r.extractors["docx"] = &DOCXExtractor{}
	r.extractors["odt"] = &ODTExtractor{}
	r.extractors["doc"] = &DOCExtractor{}

	// Email formats
	r.extractors["eml"] = &EMLExtractor{}
	r.extractors["mbox"] = &MBOXExtractor{}
	r.extractors["msg"] = &MSGExtractor{}

	if pdfEngine == PDFEnginePDFCPU {
		r.extractors["pdf"] = &PDFCPUExtractor{}
	} else {
		r.extractors["pdf"] = &PDFExtractor{}
	}
}

// Register installs or replaces the extractor for an extension (without dot)
func (r *ExtractorRegistry) Register(ext string, e Extractor) {
	r.extractors[strings.ToLower(strings.TrimPrefix(ext, "."))] = e
}

// GetExtractor returns the extractor for a given file extension
func (r *ExtractorRegistry) GetExtractor(ext string) (Extractor, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	extractor, exists := r.extractors[ext]
	return extractor, exists
}

// Extract runs the matching extractor and flattens its pages into source
// lines. Failures are reported through the status, never by panicking.
func (r *ExtractorRegistry) Extract(path string) (lines []SourceLine, status Status, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, StatusUnreadable, err
	}
	if info.IsDir() {
		return nil, StatusUnreadable, fmt.Errorf("%s is a directory", path)
	}
	// An empty file of any format has no lines but is not an error
	if info.Size() == 0 {
		return nil, StatusOK, nil
	}

	extractor, ok := r.GetExtractor(filepath.Ext(path))
	if !ok {
		return nil, StatusUnreadable, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	pages, err := safeExtract(extractor, path)
	switch {
	case errors.Is(err, ErrNoExtractableText):
		return nil, StatusNoText, nil
	case err != nil:
		return nil, StatusUnreadable, err
	}

	for _, p := range pages {
		for i, text := range p.Lines {
			lines = append(lines, SourceLine{Page: p.Number, Line: i + 1, Text: text})
		}
	}
	return lines, StatusOK, nil
}

// safeExtract guards against panics from third-party parsers
func safeExtract(e Extractor, path string) (pages []Page, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("extractor panic: %v", rec)
		}
	}()
	return e.Extract(path)
}

// splitLines splits on \n, \r\n and \r. A trailing terminator does not
// produce an extra empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// singlePage wraps lines as page 1
func singlePage(lines []string) []Page {
	return []Page{{Number: 1, Lines: lines}}
}

// readText reads a file as text, honouring a UTF-8 or UTF-16 byte order mark
// and replacing invalid UTF-8 with U+FFFD
func readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(f, dec))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// TextExtractor reads plain text files as a single page
type TextExtractor struct{}

// Extract implements the Extractor interface for plain text
func (e *TextExtractor) Extract(path string) ([]Page, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}
	return singlePage(splitLines(text)), nil
}

var (
	// HTML/XML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	// CSS/JavaScript blocks contained on one line
	inlineBlockRegex = regexp.MustCompile(`(?i)<(script|style)[^>]*>.*?</(script|style)>`)
)

// stripMarkup removes tags and decodes entities, keeping the text of a single line
func stripMarkup(line string) string {
	line = inlineBlockRegex.ReplaceAllString(line, " ")
	line = htmlTagRegex.ReplaceAllString(line, " ")
	return strings.TrimRight(html.UnescapeString(line), " \t")
}

// MarkupExtractor strips tags line by line so line numbers match the source
type MarkupExtractor struct{}

// Extract implements the Extractor interface for HTML and XML files
func (e *MarkupExtractor) Extract(path string) ([]Page, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}
	lines := splitLines(text)
	for i, line := range lines {
		lines[i] = stripMarkup(line)
	}
	return singlePage(lines), nil
}
