package speech

import "strings"

// PrimaryLanguage reduces a BCP 47 tag to its lower-cased primary subtag:
// "en-US" → "en", "ja" → "ja".
func PrimaryLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
