// Package pdf extracts per-page text from PDF files using pdfcpu content
// stream dumps. It understands literal strings and the text positioning
// operators that start a new line; hex strings and font encodings are not
// decoded.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DefaultPerPageCap bounds the text kept for a single page
const DefaultPerPageCap = 1 << 20

var configOnce sync.Once

// disableConfigDir stops pdfcpu from creating its configuration directory
// under the user's home on first use
func disableConfigDir() {
	configOnce.Do(func() {
		model.ConfigPath = "disable"
	})
}

var pageNumberRegex = regexp.MustCompile(`(\d+)\D*$`)

// ExtractPages returns the text of every page of the PDF at path, indexed by
// page number minus one. Pages without a content stream are empty strings.
func ExtractPages(path string) (pages []string, err error) {
	disableConfigDir()

	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu PageCountFile: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "nerd_search_pdfcpu_*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// Dump content streams (PDF syntax) for all pages
	if err := api.ExtractContentFile(path, tmpDir, nil, nil); err != nil {
		return nil, fmt.Errorf("pdfcpu ExtractContentFile: %w", err)
	}

	ents, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	pages = make([]string, count)
	for _, de := range ents {
		if de.IsDir() {
			continue
		}
		base := strings.TrimSuffix(de.Name(), filepath.Ext(de.Name()))
		m := pageNumberRegex.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > count {
			continue
		}
		data, err := os.ReadFile(filepath.Join(tmpDir, de.Name()))
		if err != nil {
			return nil, err
		}
		text := ParseContent(string(data), DefaultPerPageCap)
		if pages[n-1] != "" {
			pages[n-1] += "\n" + text
		} else {
			pages[n-1] = text
		}
	}
	return pages, nil
}

// ParseContent collects the literal strings of a content stream. Operators
// that move to a new text line (ET, T*, Td, TD, ' and ") start a new output
// line. Output is capped at maxOut bytes.
func ParseContent(s string, maxOut int) string {
	var (
		out   strings.Builder
		line  strings.Builder
		op    strings.Builder
		depth int
	)

	flushLine := func() {
		text := strings.Join(strings.Fields(strings.Map(printable, line.String())), " ")
		line.Reset()
		if text == "" {
			return
		}
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(text)
	}
	flushOp := func() {
		switch op.String() {
		case "ET", "T*", "Td", "TD", "'", `"`:
			flushLine()
		}
		op.Reset()
	}

	for i := 0; i < len(s) && out.Len() < maxOut; i++ {
		c := s[i]
		if depth > 0 {
			switch c {
			case '\\':
				if i+1 >= len(s) {
					continue
				}
				i++
				switch e := s[i]; e {
				case 'n', 'r':
					line.WriteByte(' ')
				case 't':
					line.WriteByte('\t')
				case 'b', 'f':
				case '0', '1', '2', '3', '4', '5', '6', '7':
					j := i
					for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
						j++
					}
					v, _ := strconv.ParseUint(s[i:j], 8, 8)
					line.WriteByte(byte(v))
					i = j - 1
				default:
					line.WriteByte(e)
				}
			case '(':
				depth++
				line.WriteByte(c)
			case ')':
				depth--
				if depth > 0 {
					line.WriteByte(c)
				}
			default:
				line.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '(':
			flushOp()
			depth = 1
		case c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '[' || c == ']' || c == '<' || c == '>' || c == '/':
			flushOp()
		default:
			op.WriteByte(c)
		}
	}
	flushOp()
	flushLine()

	text := out.String()
	if len(text) > maxOut {
		cut := maxOut
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}

// printable maps control and non-printing runes to spaces
func printable(r rune) rune {
	if r == unicode.ReplacementChar || !unicode.IsPrint(r) {
		return ' '
	}
	return r
}
