package lexicon

import (
	"regexp"
	"strconv"
)

// VolumePattern recognizes one way of writing a traded amount.
type VolumePattern struct {
	re    *regexp.Regexp
	Name  string
	Scale float64
}

// DefaultVolumePatterns returns the volume patterns in priority order.
// Amounts are expressed in millions; "k" amounts are scaled down.
func DefaultVolumePatterns() []VolumePattern {
	return []VolumePattern{
		{Name: "u", re: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*u\b`), Scale: 1},
		{Name: "mio", re: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mio\b`), Scale: 1},
		{Name: "mil", re: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mil\b`), Scale: 1},
		{Name: "k", re: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*k\b`), Scale: 0.001},
		{Name: "m", re: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*m\b`), Scale: 1},
		{Name: "for", re: regexp.MustCompile(`\bfor\s+(\d+(?:\.\d+)?)`), Scale: 1},
	}
}

// Volume is a matched amount and the numeric token it consumed.
type Volume struct {
	Pattern string
	Value   float64
	Token   Number
}

// FindVolume returns the first positive volume matched by the patterns, in order.
func FindVolume(text string, patterns []VolumePattern) (Volume, bool) {
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[2], m[3]
			if isNegated(text, start) {
				continue
			}
			raw, err := strconv.ParseFloat(text[start:end], 64)
			if err != nil || raw <= 0 {
				continue
			}
			return Volume{
				Pattern: p.Name,
				Value:   raw * p.Scale,
				Token:   Number{Value: raw, Start: start, End: end},
			}, true
		}
	}
	return Volume{}, false
}
