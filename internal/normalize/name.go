// Package normalize canonicalizes Vietnamese trader names for fuzzy comparison.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentGroups lists every precomposed Vietnamese letter by its base Latin letter.
var accentGroups = map[rune]string{
	'a': "àáảãạăằắẳẵặâầấẩẫậ",
	'e': "èéẻẽẹêềếểễệ",
	'i': "ìíỉĩị",
	'o': "òóỏõọôồốổỗộơờớởỡợ",
	'u': "ùúủũụưừứửữự",
	'y': "ỳýỷỹỵ",
	'd': "đ",
	'A': "ÀÁẢÃẠĂẰẮẲẴẶÂẦẤẨẪẬ",
	'E': "ÈÉẺẼẸÊỀẾỂỄỆ",
	'I': "ÌÍỈĨỊ",
	'O': "ÒÓỎÕỌÔỒỐỔỖỘƠỜỚỞỠỢ",
	'U': "ÙÚỦŨỤƯỪỨỬỮỰ",
	'Y': "ỲÝỶỸỴ",
	'D': "Đ",
}

var accentTable = buildAccentTable()

func buildAccentTable() map[rune]rune {
	table := make(map[rune]rune, 140)
	for base, accented := range accentGroups {
		for _, r := range accented {
			table[r] = base
		}
	}
	return table
}

// stripMarks removes combining marks left over after the table lookup,
// e.g. decomposed input or non-Vietnamese accents.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// RemoveAccents maps Vietnamese accented letters to their unaccented base letter.
func RemoveAccents(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	ascii := true
	for _, r := range s {
		if base, ok := accentTable[r]; ok {
			r = base
		}
		if r > unicode.MaxASCII {
			ascii = false
		}
		b.WriteRune(r)
	}

	if ascii {
		return b.String()
	}
	return stripMarks(b.String())
}

// Name canonicalizes a name fragment: accents removed, punctuation dropped,
// lower-cased, reduced to the last whitespace-delimited token. Vietnamese names
// state the given name last, so "Nguyễn Văn Toàn" becomes "toan".
func Name(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	s = RemoveAccents(s)

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, s)

	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// Match reports whether two names refer to the same person: one normalized
// form must be a substring of the other, so "Toan" matches "Nguyen Van Toan".
func Match(a, b string) bool {
	na, nb := Name(a), Name(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
