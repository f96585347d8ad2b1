package search

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Outcome is the result of matching one term against one line
type Outcome struct {
	Matched bool
	Spans   []Span
	// Score is the best fuzzy similarity (0-100); zero for exact modes.
	Score int
}

// Match tests a single line against the term
func (t *Term) Match(line string) Outcome {
	switch t.Mode {
	case ModeRegex:
		return t.matchRegex(line)
	case ModeFuzzy:
		return t.matchFuzzy(line)
	case ModeWholeWord:
		return t.matchLiteral(line, true)
	default:
		return t.matchLiteral(line, false)
	}
}

// isWordRune reports whether r belongs to a word (letter, digit or underscore)
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// boundaryBefore checks that the rune ending at pos is not a word rune
func boundaryBefore(s string, pos int) bool {
	if pos <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:pos])
	return !isWordRune(r)
}

// boundaryAfter checks that the rune starting at pos is not a word rune
func boundaryAfter(s string, pos int) bool {
	if pos >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[pos:])
	return !isWordRune(r)
}

// matchLiteral finds every occurrence of the quoted term. With bounded set,
// a candidate inside a longer token is rejected and the scan resumes one
// rune later so an overlapping bounded occurrence is still found.
func (t *Term) matchLiteral(line string, bounded bool) Outcome {
	var spans []Span
	pos := 0
	for pos < len(line) {
		loc := t.re.FindStringIndex(line[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end == start {
			break
		}

		if !bounded || (boundaryBefore(line, start) && boundaryAfter(line, end)) {
			spans = append(spans, Span{Start: start, End: end})
			pos = end
			continue
		}

		_, size := utf8.DecodeRuneInString(line[start:])
		pos = start + size
	}
	return Outcome{Matched: len(spans) > 0, Spans: spans}
}

// matchRegex reports a match on any occurrence. Zero-width matches count
// but produce no highlight span.
func (t *Term) matchRegex(line string) Outcome {
	locs := t.re.FindAllStringIndex(line, -1)
	if locs == nil {
		return Outcome{}
	}
	spans := make([]Span, 0, len(locs))
	for _, loc := range locs {
		if loc[1] > loc[0] {
			spans = append(spans, Span{Start: loc[0], End: loc[1]})
		}
	}
	return Outcome{Matched: true, Spans: spans}
}

// token is a whitespace-delimited word with surrounding punctuation trimmed
type token struct {
	text       string
	start, end int
}

func trimPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// tokenize splits s on whitespace and trims punctuation from each field,
// keeping byte offsets into s. A field made only of punctuation is kept as is.
func tokenize(s string) []token {
	var toks []token
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		start := i
		for i < len(s) {
			r, size = utf8.DecodeRuneInString(s[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		field := s[start:i]
		trimmed := strings.TrimLeftFunc(field, trimPunct)
		lead := len(field) - len(trimmed)
		trimmed = strings.TrimRightFunc(trimmed, trimPunct)
		if trimmed == "" {
			toks = append(toks, token{text: field, start: start, end: i})
			continue
		}
		toks = append(toks, token{text: trimmed, start: start + lead, end: start + lead + len(trimmed)})
	}
	return toks
}

func (t *Term) fold(s string) string {
	if t.CaseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// matchFuzzy scores the term against every window of consecutive tokens the
// same length as the term and keeps the best one.
func (t *Term) matchFuzzy(line string) Outcome {
	toks := tokenize(line)
	if len(toks) == 0 || t.words == 0 {
		return Outcome{}
	}

	n := t.words
	if n > len(toks) {
		n = len(toks)
	}

	best := -1
	var bestSpan Span
	parts := make([]string, n)
	for i := 0; i+n <= len(toks); i++ {
		for j := 0; j < n; j++ {
			parts[j] = t.fold(toks[i+j].text)
		}
		score := Ratio(t.folded, strings.Join(parts, " "))
		if score > best {
			best = score
			bestSpan = Span{Start: toks[i].start, End: toks[i+n-1].end}
		}
		if best == 100 {
			break
		}
	}

	if best < t.threshold {
		return Outcome{Score: best}
	}
	return Outcome{Matched: true, Spans: []Span{bestSpan}, Score: best}
}

// Ratio returns the Levenshtein similarity of a and b on a 0-100 scale,
// measured against the longer string's rune count.
func Ratio(a, b string) int {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return int(math.Round(100 * float64(longest-dist) / float64(longest)))
}
