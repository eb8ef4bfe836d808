package util

import (
	"strings"
	"unicode"
)

// Slugify lowers a string to ascii letters, digits and hyphens, the same
// shape used in report file names and bank/category slugs.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		default:
			if folded := foldASCII(r); folded != 0 {
				b.WriteRune(folded)
				lastHyphen = false
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// foldASCII maps the accented letters common in Portuguese names to their
// plain ascii counterpart; anything else is dropped.
func foldASCII(r rune) rune {
	switch r {
	case 'á', 'à', 'â', 'ã', 'ä':
		return 'a'
	case 'é', 'è', 'ê', 'ë':
		return 'e'
	case 'í', 'ì', 'î', 'ï':
		return 'i'
	case 'ó', 'ò', 'ô', 'õ', 'ö':
		return 'o'
	case 'ú', 'ù', 'û', 'ü':
		return 'u'
	case 'ç':
		return 'c'
	case 'ñ':
		return 'n'
	}
	return 0
}
