package domain

import (
	"strconv"
	"strings"
)

// =============================================================================
// Slug Generation
// =============================================================================

// Slugify converts a display string to a URL-safe slug.
//
// The transformation rules are:
//   - The input is lower-cased
//   - Every maximal run of characters outside [a-z0-9] becomes one hyphen
//   - Leading and trailing hyphens are trimmed
//
// Input with no ASCII letters or digits yields "". Callers that persist the
// result must reject an empty slug themselves.
//
// Example:
//
//	Slugify("Bridge Project")      // returns "bridge-project"
//	Slugify("  Café & Bar -- 2.0") // returns "caf-bar-2-0"
//	Slugify("!!!")                 // returns ""
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}

// SuffixedSlug returns base with a numeric disambiguation suffix.
func SuffixedSlug(base string, n int) string {
	return base + "-" + strconv.Itoa(n)
}
