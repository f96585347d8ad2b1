package search

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"code.sajari.com/docconv"
	"github.com/richardlehane/mscfb"
	xunicode "golang.org/x/text/encoding/unicode"
)

const wordMLNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// DOCXExtractor extracts text from .docx files (Office Open XML).
// Every w:p paragraph becomes one line, empty paragraphs included, so line
// numbers follow the document's paragraph order.
type DOCXExtractor struct{}

// Extract implements the Extractor interface for DOCX files
func (e *DOCXExtractor) Extract(path string) ([]Page, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		lines, err := docxParagraphs(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DOCX body: %w", err)
		}
		return singlePage(lines), nil
	}
	return nil, fmt.Errorf("DOCX has no word/document.xml")
}

// docxParagraphs walks the WordprocessingML token stream collecting the
// text runs of each paragraph
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		lines []string
		stack []*strings.Builder
		inT   bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Space != wordMLNamespace {
				continue
			}
			switch el.Name.Local {
			case "p":
				stack = append(stack, &strings.Builder{})
			case "t":
				inT = true
			case "tab":
				if len(stack) > 0 {
					stack[len(stack)-1].WriteByte('\t')
				}
			case "br", "cr":
				if len(stack) > 0 {
					stack[len(stack)-1].WriteByte(' ')
				}
			}
		case xml.EndElement:
			if el.Name.Space != wordMLNamespace {
				continue
			}
			switch el.Name.Local {
			case "t":
				inT = false
			case "p":
				if len(stack) == 0 {
					continue
				}
				lines = append(lines, stack[len(stack)-1].String())
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if inT && len(stack) > 0 {
				stack[len(stack)-1].Write(el)
			}
		}
	}
	return lines, nil
}

// ODTExtractor extracts text from .odt files (OpenDocument Text)
type ODTExtractor struct{}

// Extract implements the Extractor interface for ODT files
func (e *ODTExtractor) Extract(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	body, _, err := docconv.ConvertODT(f)
	if err != nil {
		return nil, fmt.Errorf("failed to convert ODT: %w", err)
	}
	return singlePage(splitLines(strings.TrimRight(body, "\n"))), nil
}

// DOCExtractor salvages text from legacy Word .doc files by reading the
// WordDocument stream of the OLE compound file
type DOCExtractor struct{}

// Extract implements the Extractor interface for DOC files
func (e *DOCExtractor) Extract(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cf, err := mscfb.New(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open compound file: %w", err)
	}

	for ent, err := cf.Next(); err == nil; ent, err = cf.Next() {
		if ent.Name != "WordDocument" {
			continue
		}
		data, rerr := io.ReadAll(ent)
		if rerr != nil {
			return nil, rerr
		}
		return singlePage(salvageLines(data)), nil
	}
	return nil, fmt.Errorf("no WordDocument stream")
}

// looksUTF16 reports whether most odd bytes are zero, which is how
// little-endian UTF-16 Latin text appears in the stream
func looksUTF16(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	zeros := 0
	pairs := len(data) / 2
	for i := 1; i < len(data); i += 2 {
		if data[i] == 0 {
			zeros++
		}
	}
	return zeros*2 > pairs
}

// decodeUTF16LE decodes little-endian UTF-16, ignoring any byte order mark
func decodeUTF16LE(data []byte) (string, error) {
	dec := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(out, "\x00")), nil
}

// salvageLines recovers readable lines from a binary text stream. Control
// bytes become spaces; lines without any letter are dropped.
func salvageLines(data []byte) []string {
	var text string
	if looksUTF16(data) {
		if s, err := decodeUTF16LE(data); err == nil {
			text = s
		}
	}
	if text == "" {
		buf := make([]rune, 0, len(data))
		for _, b := range data {
			if b == '\t' || b == '\n' || b == '\r' || (b >= 0x20 && b <= 0x7e) {
				buf = append(buf, rune(b))
			} else {
				buf = append(buf, ' ')
			}
		}
		text = string(buf)
	}

	var lines []string
	for _, line := range splitLines(text) {
		line = strings.Map(func(r rune) rune {
			if r == '\t' || !unicode.IsControl(r) {
				return r
			}
			return ' '
		}, line)
		line = strings.TrimSpace(line)
		if strings.IndexFunc(line, unicode.IsLetter) < 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
