package content

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// Slug derives the URL-safe identifier of a title within a content type
// namespace: lower-case, drop everything outside [a-z0-9], whitespace and
// '-', turn each run of whitespace and hyphens into a single '-', trim
// hyphens at both ends, then append the type suffix.
//
// Distinct titles may produce the same slug; collisions are not resolved.
func Slug(title string, t Type) string {
	return slugBase(title) + t.Suffix()
}

func slugBase(title string) string {
	var b strings.Builder
	pendingDash := false

	for _, r := range lower.String(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		}
	}

	return b.String()
}
