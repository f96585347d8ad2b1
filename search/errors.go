package search

import "errors"

// Run-level errors. These are returned before any file is processed.
var (
	ErrPathNotFound      = errors.New("path not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoTerms           = errors.New("no search terms")
	ErrEmptyTerm         = errors.New("empty search term")
	ErrInvalidPattern    = errors.New("invalid pattern")
	ErrInvalidExclude    = errors.New("invalid exclude pattern")
	ErrInvalidThreshold  = errors.New("fuzzy threshold must be between 0 and 100")
	ErrInvalidContext    = errors.New("context lines must not be negative")
	ErrConflictingModes  = errors.New("regex and fuzzy matching cannot be combined")
	ErrUnknownPDFEngine  = errors.New("unknown pdf engine")
)

// ErrNoExtractableText is returned by paginated extractors when pages exist
// but none of them carry text (typically scanned images). It is a status,
// not a failure.
var ErrNoExtractableText = errors.New("no extractable text")
