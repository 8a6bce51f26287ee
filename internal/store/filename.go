package store

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxFilenameLen = 200

// asciiFold decomposes accented characters and drops everything outside ASCII,
// so "résumé.pdf" becomes "resume.pdf".
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// SanitizeFilename returns a version of name that is safe to store in a flat
// directory: ASCII letters, digits, '_', '.' and '-' only, with path separators
// and whitespace turned into underscores and leading/trailing dots and
// underscores removed. It may return "" for names with nothing usable.
func SanitizeFilename(name string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}

	folded = strings.NewReplacer("/", " ", "\\", " ").Replace(folded)
	folded = strings.Join(strings.Fields(folded), "_")

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if isSafeRune(r) {
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), "._")
	if len(out) > maxFilenameLen {
		ext := filepath.Ext(out)
		if len(ext) >= maxFilenameLen {
			ext = ""
		}
		out = out[:maxFilenameLen-len(ext)] + ext
	}
	return out
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '-':
		return true
	}
	return false
}

// validName reports whether name refers to an entry directly inside the store
// directory. Lookups accept names that were placed there out-of-band, so this
// is looser than SanitizeFilename.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
