// Package lexicon holds the lexical primitives shared by classification and
// extraction: keyword sets, numeric tokens and volume units in trader chat.
package lexicon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Prepare lower-cases and NFC-composes chat text so keyword regexes see a single form.
func Prepare(text string) string {
	return norm.NFC.String(strings.ToLower(text))
}

// KeywordSet matches whole-token keywords. Go's \b is ASCII-only, so boundaries are
// expressed with Unicode letter and number classes to handle words like "bán".
type KeywordSet struct {
	words    []string
	patterns []*regexp.Regexp
}

// NewKeywordSet compiles the keywords in priority order.
// A space inside a keyword matches any run of whitespace.
func NewKeywordSet(words ...string) (*KeywordSet, error) {
	ks := &KeywordSet{
		words:    make([]string, 0, len(words)),
		patterns: make([]*regexp.Regexp, 0, len(words)),
	}
	for _, w := range words {
		w = Prepare(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		parts := strings.Fields(w)
		for i := range parts {
			parts[i] = regexp.QuoteMeta(parts[i])
		}
		expr := `(?:^|[^\p{L}\p{N}])` + strings.Join(parts, `\s+`) + `(?:$|[^\p{L}\p{N}])`
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile keyword %q: %w", w, err)
		}
		ks.words = append(ks.words, w)
		ks.patterns = append(ks.patterns, re)
	}
	return ks, nil
}

// MustKeywordSet is NewKeywordSet for static keyword lists.
func MustKeywordSet(words ...string) *KeywordSet {
	ks, err := NewKeywordSet(words...)
	if err != nil {
		panic(err)
	}
	return ks
}

// First returns the first keyword, in set order, present in prepared text.
func (ks *KeywordSet) First(text string) (string, bool) {
	for i, re := range ks.patterns {
		if re.MatchString(text) {
			return ks.words[i], true
		}
	}
	return "", false
}

// Contains reports whether any keyword is present in prepared text.
func (ks *KeywordSet) Contains(text string) bool {
	_, ok := ks.First(text)
	return ok
}

// Words returns the normalized keywords.
func (ks *KeywordSet) Words() []string {
	out := make([]string, len(ks.words))
	copy(out, ks.words)
	return out
}

// Number is a non-negative numeric token and its byte span in the text.
type Number struct {
	Value float64
	Start int
	End   int
}

var (
	numberRe   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	negativeRe = regexp.MustCompile(`(?:^|[^\d])[-−]\d`)
	spreadRe   = regexp.MustCompile(`\d+(?:\.\d+)?(?:\s*[/-]\s*|\s+)\d+(?:\.\d+)?`)
	unitRe     = regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:u|mio|k|m)\b`)
)

// HasNegativeNumber reports a minus sign directly in front of a digit that is not a
// range separator such as "22-25".
func HasNegativeNumber(text string) bool {
	return negativeRe.MatchString(text)
}

// Numbers returns all non-negative numeric tokens in order of appearance.
func Numbers(text string) []Number {
	locs := numberRe.FindAllStringIndex(text, -1)
	out := make([]Number, 0, len(locs))
	for _, loc := range locs {
		if isNegated(text, loc[0]) {
			continue
		}
		v, err := strconv.ParseFloat(text[loc[0]:loc[1]], 64)
		if err != nil {
			continue
		}
		out = append(out, Number{Value: v, Start: loc[0], End: loc[1]})
	}
	return out
}

func isNegated(text string, start int) bool {
	prefix := text[:start]
	var sign string
	switch {
	case strings.HasSuffix(prefix, "-"):
		sign = "-"
	case strings.HasSuffix(prefix, "−"):
		sign = "−"
	default:
		return false
	}
	before := strings.TrimSuffix(prefix, sign)
	if before == "" {
		return true
	}
	last := before[len(before)-1]
	return last < '0' || last > '9'
}

// HasSpread reports a two-number quote written "N1/N2", "N1-N2" or "N1 N2".
func HasSpread(text string) bool {
	return spreadRe.MatchString(text)
}

// HasVolumeUnit reports a number followed by a volume unit.
func HasVolumeUnit(text string) bool {
	return unitRe.MatchString(text)
}
