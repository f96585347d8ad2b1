package search

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how a term is compared against a line
type Mode int

const (
	ModeSubstring Mode = iota
	ModeWholeWord
	ModeRegex
	ModeFuzzy
)

// String returns the mode name used in logs and reports
func (m Mode) String() string {
	switch m {
	case ModeWholeWord:
		return "whole-word"
	case ModeRegex:
		return "regex"
	case ModeFuzzy:
		return "fuzzy"
	default:
		return "substring"
	}
}

// DefaultFuzzyThreshold is the minimum similarity for a fuzzy match
const DefaultFuzzyThreshold = 80

// DefaultContextLines is the number of lines shown either side of a match
const DefaultContextLines = 1

// PDF engine names
const (
	PDFEngineLedongthuc = "ledongthuc"
	PDFEnginePDFCPU     = "pdfcpu"
)

// Options configures a search run. It is shared read-only by all workers.
type Options struct {
	CaseSensitive  bool
	WholeWord      bool
	Regex          bool
	Fuzzy          bool
	FuzzyThreshold int
	Recursive      bool
	Exclude        []string
	// Workers is the pool size; 0 means one per CPU.
	Workers      int
	ContextLines int
	PDFEngine    string
}

// DefaultOptions returns whole-word, case-insensitive matching with one
// line of context
func DefaultOptions() Options {
	return Options{
		WholeWord:      true,
		FuzzyThreshold: DefaultFuzzyThreshold,
		ContextLines:   DefaultContextLines,
		PDFEngine:      PDFEngineLedongthuc,
	}
}

// Mode resolves the matching mode implied by the option flags. Regex wins
// over whole-word; fuzzy is token based and ignores whole-word.
func (o Options) Mode() Mode {
	switch {
	case o.Regex:
		return ModeRegex
	case o.Fuzzy:
		return ModeFuzzy
	case o.WholeWord:
		return ModeWholeWord
	default:
		return ModeSubstring
	}
}

// Validate checks run-level settings before any work is dispatched
func (o Options) Validate() error {
	if o.Regex && o.Fuzzy {
		return ErrConflictingModes
	}
	if o.FuzzyThreshold < 0 || o.FuzzyThreshold > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreshold, o.FuzzyThreshold)
	}
	if o.ContextLines < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidContext, o.ContextLines)
	}
	switch o.PDFEngine {
	case "", PDFEngineLedongthuc, PDFEnginePDFCPU:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPDFEngine, o.PDFEngine)
	}
	return nil
}

// Term is a compiled search term. It is immutable after CompileTerms and
// safe to share between goroutines.
type Term struct {
	Text          string
	Mode          Mode
	CaseSensitive bool

	// re backs the literal and regex modes
	re *regexp.Regexp

	// fuzzy mode: normalised term text, its token count and the threshold
	folded    string
	words     int
	threshold int
}

// CompileTerms validates opts and compiles every word once, preserving
// input order. Any invalid term fails the whole run.
func CompileTerms(words []string, opts Options) ([]*Term, error) {
	if len(words) == 0 {
		return nil, ErrNoTerms
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	mode := opts.Mode()
	terms := make([]*Term, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w) == "" {
			return nil, ErrEmptyTerm
		}
		t, err := compileTerm(w, mode, opts)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func compileTerm(word string, mode Mode, opts Options) (*Term, error) {
	t := &Term{
		Text:          word,
		Mode:          mode,
		CaseSensitive: opts.CaseSensitive,
		threshold:     opts.FuzzyThreshold,
	}

	flags := ""
	if !opts.CaseSensitive {
		flags = "(?i)"
	}

	switch mode {
	case ModeRegex:
		re, err := regexp.Compile(flags + word)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, word, err)
		}
		t.re = re
	case ModeFuzzy:
		toks := tokenize(t.fold(word))
		parts := make([]string, len(toks))
		for i, tok := range toks {
			parts[i] = tok.text
		}
		t.folded = strings.Join(parts, " ")
		t.words = len(toks)
	default:
		t.re = regexp.MustCompile(flags + regexp.QuoteMeta(word))
	}
	return t, nil
}

// TermTexts returns the original strings of terms in input order
func TermTexts(terms []*Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Text
	}
	return out
}
