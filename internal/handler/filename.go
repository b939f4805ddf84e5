package handler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxFilenameLen bounds the ASCII fallback filename; some clients truncate
// or reject longer Content-Disposition values.
const maxFilenameLen = 150

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// asciiFold strips diacritics so Turkish names survive the ASCII fallback
// (ö→o, ş→s). Dotless ı has no decomposition and is mapped by hand.
var asciiFold = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Map(func(r rune) rune {
		switch r {
		case 'ı':
			return 'i'
		case 'İ':
			return 'I'
		}
		return r
	}),
	norm.NFC,
)

// sanitizeFilename produces a header-safe ASCII filename. Returns
// "rapor.pdf" when nothing usable remains.
func sanitizeFilename(name string) string {
	s := strings.NewReplacer("\r", " ", "\n", " ", `"`, "").Replace(name)

	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}
	s = unsafeFilenameChars.ReplaceAllString(s, "_")

	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	if strings.Trim(s, "_.") == "" {
		return "rapor.pdf"
	}
	return s
}

// contentDisposition builds an attachment header with both the ASCII
// fallback and the RFC 5987 UTF-8 form so Turkish characters display
// correctly in modern clients.
func contentDisposition(filename string) string {
	ascii := sanitizeFilename(filename)
	encoded := url.PathEscape(strings.NewReplacer("\r", " ", "\n", " ", `"`, "").Replace(filename))
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, encoded)
}
