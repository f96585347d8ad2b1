package search

import (
	"fmt"
	"os"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	cpupdf "nerd-search/search/pdf"
)

// PDFExtractor extracts text page by page with github.com/ledongthuc/pdf
type PDFExtractor struct{}

// Extract implements the Extractor interface for PDF files. A page that
// fails to decode is treated as blank; if every page is blank the file has
// no extractable text.
func (e *PDFExtractor) Extract(path string) (pages []Page, err error) {
	// Guard against any panics from the PDF library.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf panic: %v", r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := lpdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	total := reader.NumPage()
	texts := make([]string, total)
	var firstErr error
	for i := 1; i <= total; i++ {
		text, err := pageText(reader, i)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("page %d: %w", i, err)
		}
		texts[i-1] = text
	}

	// A page that fails to decode counts as blank only when another page
	// has text; otherwise the document is unreadable, not textless.
	if firstErr != nil && allBlank(texts) {
		return nil, fmt.Errorf("failed to decode PDF: %w", firstErr)
	}
	return paginate(texts)
}

// pageText extracts one page. A page without content is blank, not an error.
func pageText(reader *lpdf.Reader, n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	page := reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func allBlank(texts []string) bool {
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}

// paginate converts per-page text into pages. Zero pages is an empty
// document; pages that are all blank mean there is nothing to search.
func paginate(texts []string) ([]Page, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if allBlank(texts) {
		return nil, ErrNoExtractableText
	}
	pages := make([]Page, len(texts))
	for i, t := range texts {
		pages[i] = Page{Number: i + 1, Lines: splitLines(t)}
	}
	return pages, nil
}

// PDFCPUExtractor extracts text using pdfcpu content stream dumps
type PDFCPUExtractor struct{}

// Extract implements the Extractor interface for PDF files
func (e *PDFCPUExtractor) Extract(path string) ([]Page, error) {
	texts, err := cpupdf.ExtractPages(path)
	if err != nil {
		return nil, err
	}
	return paginate(texts)
}
