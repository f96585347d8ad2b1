package config

import (
	"path/filepath"
	"slices"
	"strings"
)

// Kind classifies a file by the extractor family that reads it
type Kind int

const (
	KindUnsupported Kind = iota
	KindText
	KindMarkup
	KindPDF
	KindWord
	KindMail
)

// String returns the short name used in logs and reports
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMarkup:
		return "markup"
	case KindPDF:
		return "pdf"
	case KindWord:
		return "word"
	case KindMail:
		return "mail"
	default:
		return "unsupported"
	}
}

// TextTypes defines the extensions read as plain line-oriented text
var TextTypes = []string{
	"txt", "text", "md", "log", "csv", "tsv", "rst", "tex",
	"ini", "cfg", "conf", "yaml", "yml", "json",
}

// MarkupTypes are text files whose tags are stripped line by line
var MarkupTypes = []string{"html", "htm", "xhtml", "xml"}

// PDFTypes defines the paginated document extensions
var PDFTypes = []string{"pdf"}

// WordTypes defines the word-processor extensions
var WordTypes = []string{"docx", "odt", "doc"}

// MailTypes defines the email container extensions
var MailTypes = []string{"eml", "mbox", "msg"}

// KindOf returns the extractor family for a filename based on its extension
func KindOf(filename string) Kind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return KindUnsupported
	}
	switch {
	case slices.Contains(TextTypes, ext):
		return KindText
	case slices.Contains(MarkupTypes, ext):
		return KindMarkup
	case slices.Contains(PDFTypes, ext):
		return KindPDF
	case slices.Contains(WordTypes, ext):
		return KindWord
	case slices.Contains(MailTypes, ext):
		return KindMail
	}
	return KindUnsupported
}

// IsSupported reports whether a file has an extension we can extract
func IsSupported(filename string) bool {
	return KindOf(filename) != KindUnsupported
}

// AllSupportedTypes returns every supported extension without the dot
func AllSupportedTypes() []string {
	types := make([]string, 0, len(TextTypes)+len(MarkupTypes)+len(PDFTypes)+len(WordTypes)+len(MailTypes))
	types = append(types, TextTypes...)
	types = append(types, MarkupTypes...)
	types = append(types, PDFTypes...)
	types = append(types, WordTypes...)
	types = append(types, MailTypes...)
	return types
}

// ShouldSkipDirectory determines if a directory below the search root
// should be skipped during traversal. Hidden directories are never entered.
func ShouldSkipDirectory(dirName string) bool {
	return strings.HasPrefix(dirName, ".") && dirName != "." && dirName != ".."
}

// GetFileTypeDescription returns a human-readable description of file types
func GetFileTypeDescription() string {
	return "text (" + strings.Join(TextTypes, ", ") + "), markup (" + strings.Join(MarkupTypes, ", ") +
		"), pdf, word (" + strings.Join(WordTypes, ", ") + "), mail (" + strings.Join(MailTypes, ", ") + ")"
}
