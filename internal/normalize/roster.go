package normalize

import (
	"strings"
	"unicode"
)

// minFuzzyLen is the shortest normalized name allowed to match by substring.
const minFuzzyLen = 3

// stopwords are chat tokens that must never be read as a trader name.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		// deal vocabulary
		"done", "ok", "oke", "oki", "not", "suit", "tks", "thanks", "thank",
		"buy", "sell", "khớp", "bid", "ask", "offer", "off", "bán", "mua", "có", "còn",
		"for", "spot", "spt", "mio", "mil",
		// honorifics and particles
		"anh", "em", "chị", "chi", "bạn", "ông", "bà", "nhé", "nhe", "ơi", "nha", "với", "vs",
		"the", "and", "you", "pls",
	} {
		stopwords[Name(w)] = struct{}{}
	}
}

// Roster is an immutable set of known trader names.
type Roster struct {
	names      []string
	normalized []string
}

// NewRoster builds a roster from the given names, dropping blanks and duplicates.
// Order is preserved so lookups are deterministic.
func NewRoster(names ...string) *Roster {
	r := &Roster{}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		r.names = append(r.names, name)
		r.normalized = append(r.normalized, Name(name))
	}
	return r
}

// Len returns the number of distinct names.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// Names returns a copy of the roster names.
func (r *Roster) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Lookup resolves a name fragment to a roster name. Short names only match exactly.
func (r *Roster) Lookup(candidate string) (string, bool) {
	if r == nil {
		return "", false
	}
	nc := Name(candidate)
	if nc == "" {
		return "", false
	}
	if _, stop := stopwords[nc]; stop {
		return "", false
	}

	for i, nn := range r.normalized {
		if nn == "" {
			continue
		}
		if nn == nc {
			return r.names[i], true
		}
		if len(nc) < minFuzzyLen || len(nn) < minFuzzyLen {
			continue
		}
		if strings.Contains(nn, nc) || strings.Contains(nc, nn) {
			return r.names[i], true
		}
	}
	return "", false
}

// Find returns the first roster name mentioned anywhere in text.
func (r *Roster) Find(text string) (string, bool) {
	if r.Len() == 0 {
		return "", false
	}
	tokens := strings.FieldsFunc(text, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
	for _, tok := range tokens {
		if hasDigit(tok) {
			continue
		}
		if name, ok := r.Lookup(tok); ok {
			return name, true
		}
	}
	return "", false
}

func hasDigit(s string) bool {
	for _, c := range s {
		if unicode.IsDigit(c) {
			return true
		}
	}
	return false
}
